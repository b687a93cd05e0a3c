package auth

import (
	"regexp"

	"github.com/nerrad567/vizgate/internal/outcome"
)

// loginPattern defines the valid format for logins:
// alphanumeric, dots, hyphens, underscores, 1-64 characters.
var loginPattern = regexp.MustCompile(`^[a-zA-Z0-9._-]{1,64}$`)

// IsValidLogin checks if a login meets format requirements.
func IsValidLogin(login string) bool {
	return loginPattern.MatchString(login)
}

// Clearance levels.
const (
	ClearanceUser  = "user"
	ClearanceAdmin = "admin"
)

// dateLayout is the format of User.CreatedDate.
const dateLayout = "2006-01-02"

// User is the full account record. Only this package and its callers on
// internal paths see PasswordHash and Token.
type User struct {
	Login        string
	FirstName    string
	LastName     string
	Email        string
	PasswordHash string
	// Path is the storage fragment derived from Login.
	Path          string
	Token         string
	Accepted      bool
	ActiveProject string // "" when none
	Affiliation   string
	Origin        string
	Clearance     string
	CreatedDate   string
}

// PublicUser is a User without credentials.
type PublicUser struct {
	Login         string `json:"login"`
	FirstName     string `json:"firstname"`
	LastName      string `json:"lastname"`
	Email         string `json:"email"`
	Path          string `json:"path"`
	Accepted      bool   `json:"accepted"`
	ActiveProject string `json:"active_project,omitempty"`
	Affiliation   string `json:"affiliation"`
	Origin        string `json:"origin"`
	Clearance     string `json:"clearance"`
	CreatedDate   string `json:"created_date"`
}

// Public projects u for display.
func (u *User) Public() PublicUser {
	return PublicUser{
		Login:         u.Login,
		FirstName:     u.FirstName,
		LastName:      u.LastName,
		Email:         u.Email,
		Path:          u.Path,
		Accepted:      u.Accepted,
		ActiveProject: u.ActiveProject,
		Affiliation:   u.Affiliation,
		Origin:        u.Origin,
		Clearance:     u.Clearance,
		CreatedDate:   u.CreatedDate,
	}
}

// NewUser is a registration request.
type NewUser struct {
	FirstName   string `json:"firstname"`
	LastName    string `json:"lastname"`
	Email       string `json:"email"`
	Login       string `json:"login"`
	Password    string `json:"password"` //nolint:gosec // G117: request field, never serialised back
	Affiliation string `json:"affiliation"`
	Origin      string `json:"origin"`
}

// Session is the result of a successful login.
type Session struct {
	User  PublicUser `json:"user"`
	Token string     `json:"token"`
}

// Sentinel errors for account operations.
var (
	ErrMissingField       = outcome.New(outcome.KindValidation, "firstname, lastname, email, login and password are required")
	ErrInvalidLogin       = outcome.New(outcome.KindValidation, "login may only contain letters, digits, dots, dashes and underscores")
	ErrEmptyPassword      = outcome.New(outcome.KindValidation, "password must not be empty")
	ErrInvalidListQuery   = outcome.New(outcome.KindValidation, "unsupported sort or filter column")
	ErrDuplicateLogin     = outcome.New(outcome.KindConflict, "login already taken")
	ErrDuplicateEmail     = outcome.New(outcome.KindConflict, "email already registered")
	ErrUserNotFound       = outcome.New(outcome.KindNotFound, "user not found")
	ErrInvalidCredentials = outcome.New(outcome.KindAuth, "login or password invalid")
	ErrInvalidToken       = outcome.New(outcome.KindAuth, "invalid token")
	ErrAccountPending     = outcome.New(outcome.KindAuth, "account not confirmed yet")
	ErrAlreadyConfirmed   = outcome.New(outcome.KindState, "account already confirmed")
	ErrMailUnavailable    = outcome.New(outcome.KindState, "mail delivery is not configured")

	// ErrRegistrationUnavailable is reported when there is neither a
	// mailer nor auto-acceptance, so a new account could never be confirmed.
	ErrRegistrationUnavailable = outcome.NewWarning(outcome.KindState, "registration is disabled on this server")
)
