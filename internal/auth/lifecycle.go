package auth

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/nerrad567/vizgate/internal/events"
	"github.com/nerrad567/vizgate/internal/infrastructure/database"
	"github.com/nerrad567/vizgate/internal/mail"
	"github.com/nerrad567/vizgate/internal/outcome"
	"github.com/nerrad567/vizgate/internal/storage"
)

// resetPasswordLength is the length of generated replacement passwords.
const resetPasswordLength = 12

// Logger is the logging interface used by the lifecycle manager.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}

// RegistrationState is where a new account ended up.
type RegistrationState string

// Registration states.
const (
	StatePending  RegistrationState = "pending"
	StateAccepted RegistrationState = "accepted"
)

// Registration is the result of Register.
type Registration struct {
	User  PublicUser        `json:"user"`
	State RegistrationState `json:"state"`
}

// LifecycleConfig wires the lifecycle manager's collaborators.
type LifecycleConfig struct {
	Layout storage.Layout

	// Mailer delivers confirmation codes and reset passwords. Nil when
	// mail is not configured.
	Mailer mail.Sender

	// AutoAccept confirms new accounts immediately when there is no mailer.
	AutoAccept bool

	// BaseURL prefixes the confirmation link.
	BaseURL string

	Events events.Emitter
}

// Lifecycle drives accounts from pending to accepted and handles logins.
type Lifecycle struct {
	store      *Store
	layout     storage.Layout
	mailer     mail.Sender
	autoAccept bool
	baseURL    string
	events     events.Emitter
	logger     Logger
}

// NewLifecycle creates a lifecycle manager on store.
func NewLifecycle(store *Store, cfg LifecycleConfig) *Lifecycle {
	em := cfg.Events
	if em == nil {
		em = events.Nop{}
	}
	return &Lifecycle{
		store:      store,
		layout:     cfg.Layout,
		mailer:     cfg.Mailer,
		autoAccept: cfg.AutoAccept,
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		events:     em,
		logger:     noopLogger{},
	}
}

// SetLogger sets the logger.
func (l *Lifecycle) SetLogger(logger Logger) {
	l.logger = logger
}

// Register creates a pending account. With a mailer the confirmation link
// is sent and the account stays pending; without one, auto-acceptance
// confirms it on the spot. With neither nothing is written.
func (l *Lifecycle) Register(ctx context.Context, nu NewUser) (*Registration, error) {
	if l.mailer == nil && !l.autoAccept {
		return nil, ErrRegistrationUnavailable
	}

	user, code, err := l.store.Create(ctx, nu)
	if err != nil {
		return nil, err
	}
	l.events.Emit(ctx, events.New(events.AccountRegistered, user.Login, "", ""))
	l.logger.Info("account registered", "login", user.Login)

	if l.mailer != nil {
		if err := l.mailer.Send(ctx, user.Email, "Confirm your account", l.confirmationBody(user, code)); err != nil {
			l.logger.Error("sending confirmation mail failed", "login", user.Login, "error", err)
			return nil, &outcome.Error{
				Kind:    outcome.KindIO,
				Message: "account created but the confirmation mail could not be sent",
				Warning: true,
				Err:     err,
			}
		}
		return &Registration{User: *user, State: StatePending}, nil
	}

	if err := l.Confirm(ctx, user.Login, code); err != nil {
		return nil, err
	}
	user.Accepted = true
	return &Registration{User: *user, State: StateAccepted}, nil
}

func (l *Lifecycle) confirmationBody(u *PublicUser, code string) string {
	link := fmt.Sprintf("%s/confirm?code=%s&login=%s", l.baseURL, url.QueryEscape(code), url.QueryEscape(u.Login))
	return fmt.Sprintf("Hello %s %s,\n\nplease confirm your account by opening\n\n%s\n", u.FirstName, u.LastName, link)
}

// Confirm accepts a pending account presenting its confirmation code and
// creates the user's storage root. An account is confirmed at most once.
func (l *Lifecycle) Confirm(ctx context.Context, login, code string) error {
	var fragment string
	var created bool

	err := database.WithTx(ctx, l.store.db, func(ctx context.Context, tx database.DBTX) error {
		u, err := LookupUser(ctx, tx, login)
		if err != nil {
			return err
		}
		if u.Accepted {
			return ErrAlreadyConfirmed
		}
		if !tokensEqual(code, u.Token) {
			return ErrInvalidToken
		}
		if err := markAccepted(ctx, tx, login); err != nil {
			return err
		}

		fragment = u.Path
		created, err = l.layout.EnsureUserDir(u.Path)
		if err != nil {
			return outcome.IO("creating storage root failed", err)
		}
		return nil
	})
	if err != nil {
		if created {
			if rerr := l.layout.RemoveUserDir(fragment); rerr != nil {
				l.logger.Error("removing storage root after failed confirmation", "login", login, "error", rerr)
			}
		}
		return outcome.Wrap("confirming account failed", err)
	}

	l.events.Emit(ctx, events.New(events.AccountConfirmed, login, "", ""))
	l.logger.Info("account confirmed", "login", login)
	return nil
}

// Login checks credentials and rotates the session token. Unknown logins
// and wrong passwords report the same error.
func (l *Lifecycle) Login(ctx context.Context, login, password string) (*Session, error) {
	u, err := l.store.FindByLogin(ctx, login)
	if errors.Is(err, ErrUserNotFound) {
		l.store.verifyMissing(password)
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}

	ok, err := l.store.verifyUser(u, password)
	if err != nil {
		return nil, err
	}
	if !ok {
		l.logger.Debug("login rejected", "login", login)
		return nil, ErrInvalidCredentials
	}
	if !u.Accepted {
		return nil, ErrAccountPending
	}

	token, err := l.store.RotateToken(ctx, login)
	if err != nil {
		return nil, err
	}
	return &Session{User: u.Public(), Token: token}, nil
}

// OpenSession returns a session for an accepted account, reusing its
// current token if it has one. Used right after confirmation.
func (l *Lifecycle) OpenSession(ctx context.Context, login string) (*Session, error) {
	u, err := l.store.FindByLogin(ctx, login)
	if err != nil {
		return nil, err
	}
	if !u.Accepted {
		return nil, ErrAccountPending
	}
	token, err := l.store.EnsureToken(ctx, login)
	if err != nil {
		return nil, err
	}
	return &Session{User: u.Public(), Token: token}, nil
}

// Logout clears the session token.
func (l *Lifecycle) Logout(ctx context.Context, login string) error {
	return l.store.ClearToken(ctx, login)
}

// ResetPassword replaces the password of the account matching loginOrEmail
// with a random one and mails it to the account's address. An unknown login
// or address is not an error, so callers cannot probe which accounts exist.
func (l *Lifecycle) ResetPassword(ctx context.Context, loginOrEmail string) error {
	if l.mailer == nil {
		return ErrMailUnavailable
	}

	u, err := l.store.FindByLogin(ctx, loginOrEmail)
	if errors.Is(err, ErrUserNotFound) {
		u, err = l.store.FindByEmail(ctx, loginOrEmail)
	}
	if errors.Is(err, ErrUserNotFound) {
		l.logger.Debug("password reset for unknown account ignored")
		return nil
	}
	if err != nil {
		return err
	}

	password, err := GenerateToken(resetPasswordLength)
	if err != nil {
		return outcome.IO("generating password failed", err)
	}
	if err := l.store.SetPassword(ctx, u.Login, password); err != nil {
		return err
	}

	body := fmt.Sprintf("Hello %s %s,\n\nyour new password for %s is\n\n%s\n", u.FirstName, u.LastName, u.Login, password)
	if err := l.mailer.Send(ctx, u.Email, "Your new password", body); err != nil {
		l.logger.Error("sending reset mail failed", "login", u.Login, "error", err)
		return outcome.IO("password reset but the mail could not be sent", err)
	}
	l.logger.Info("password reset", "login", u.Login)
	return nil
}

// ChangePassword sets a new password chosen by the user.
func (l *Lifecycle) ChangePassword(ctx context.Context, login, password string) error {
	return l.store.SetPassword(ctx, login, password)
}
