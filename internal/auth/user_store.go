package auth

import (
	"context"
	"crypto/subtle"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/nerrad567/vizgate/internal/infrastructure/database"
	"github.com/nerrad567/vizgate/internal/outcome"
	"github.com/nerrad567/vizgate/internal/storage"
)

const userColumns = `login, firstname, lastname, email, password_hash, path, token,
	accepted, active_project, affiliation, origin, clearance, created_date`

// Store is the SQLite-backed credential store. It is the only writer of
// user rows apart from the active project column, which belongs to the
// project registry.
type Store struct {
	db     *sql.DB
	params Params
	now    func() time.Time
	verify func(password, encodedHash string) (bool, error)

	// dummyHash is verified against when no user matches, so lookups of
	// unknown logins cost as much as a wrong password.
	dummyMu   sync.Mutex
	dummyHash string
}

// NewStore creates a credential store on db.
func NewStore(db *sql.DB) *Store {
	return &Store{db: db, params: DefaultParams, now: time.Now, verify: VerifyHash}
}

// SetHashParams replaces the Argon2id cost settings used for new hashes.
// Existing hashes keep verifying with the parameters recorded in them.
func (s *Store) SetHashParams(p Params) {
	s.params = p
	s.dummyMu.Lock()
	s.dummyHash = ""
	s.dummyMu.Unlock()
}

// Create inserts a pending account and returns it with its confirmation
// code. No filesystem changes happen here.
func (s *Store) Create(ctx context.Context, nu NewUser) (*PublicUser, string, error) {
	if nu.FirstName == "" || nu.LastName == "" || nu.Email == "" || nu.Login == "" || nu.Password == "" {
		return nil, "", ErrMissingField
	}
	if !IsValidLogin(nu.Login) {
		return nil, "", ErrInvalidLogin
	}

	hash, err := s.params.Hash(nu.Password)
	if err != nil {
		return nil, "", outcome.IO("hashing password failed", err)
	}
	code, err := GenerateToken(TokenLength)
	if err != nil {
		return nil, "", outcome.IO("generating confirmation code failed", err)
	}

	u := &User{
		Login:        nu.Login,
		FirstName:    nu.FirstName,
		LastName:     nu.LastName,
		Email:        nu.Email,
		PasswordHash: hash,
		Path:         storage.Fragment(nu.Login),
		Token:        code,
		Affiliation:  nu.Affiliation,
		Origin:       nu.Origin,
		Clearance:    ClearanceUser,
		CreatedDate:  s.now().UTC().Format(dateLayout),
	}

	err = database.WithTx(ctx, s.db, func(ctx context.Context, tx database.DBTX) error {
		if taken, err := exists(ctx, tx, "SELECT 1 FROM users WHERE login = ?", u.Login); err != nil {
			return err
		} else if taken {
			return ErrDuplicateLogin
		}
		if taken, err := exists(ctx, tx, "SELECT 1 FROM users WHERE email = ?", u.Email); err != nil {
			return err
		} else if taken {
			return ErrDuplicateEmail
		}

		_, err := tx.ExecContext(ctx,
			`INSERT INTO users (login, firstname, lastname, email, password_hash, path, token,
			 accepted, active_project, affiliation, origin, clearance, created_date)
			 VALUES (?, ?, ?, ?, ?, ?, ?, 0, NULL, ?, ?, ?, ?)`,
			u.Login, u.FirstName, u.LastName, u.Email, u.PasswordHash, u.Path, u.Token,
			u.Affiliation, u.Origin, u.Clearance, u.CreatedDate,
		)
		if err != nil {
			return translateInsert(err)
		}
		return nil
	})
	if err != nil {
		return nil, "", outcome.Wrap("creating user failed", err)
	}

	pub := u.Public()
	return &pub, code, nil
}

// FindByLogin returns the full record for login.
func (s *Store) FindByLogin(ctx context.Context, login string) (*User, error) {
	return LookupUser(ctx, s.db, login)
}

// FindByEmail returns the full record registered with email.
func (s *Store) FindByEmail(ctx context.Context, email string) (*User, error) {
	return queryUser(ctx, s.db, "SELECT "+userColumns+" FROM users WHERE email = ?", email)
}

// FindByToken returns the user holding token. An empty token matches nobody.
func (s *Store) FindByToken(ctx context.Context, token string) (*User, error) {
	if token == "" {
		return nil, ErrUserNotFound
	}
	return queryUser(ctx, s.db, "SELECT "+userColumns+" FROM users WHERE token = ?", token)
}

// EnsureToken returns the user's token, issuing one first if none is set.
func (s *Store) EnsureToken(ctx context.Context, login string) (string, error) {
	var token string
	err := database.WithTx(ctx, s.db, func(ctx context.Context, tx database.DBTX) error {
		u, err := LookupUser(ctx, tx, login)
		if err != nil {
			return err
		}
		if u.Token != "" {
			token = u.Token
			return nil
		}
		token, err = SessionToken(login)
		if err != nil {
			return err
		}
		return setToken(ctx, tx, login, token)
	})
	if err != nil {
		return "", outcome.Wrap("issuing token failed", err)
	}
	return token, nil
}

// RotateToken always issues and stores a new session token.
func (s *Store) RotateToken(ctx context.Context, login string) (string, error) {
	token, err := SessionToken(login)
	if err != nil {
		return "", outcome.IO("issuing token failed", err)
	}
	if err := setToken(ctx, s.db, login, token); err != nil {
		return "", outcome.Wrap("issuing token failed", err)
	}
	return token, nil
}

// ClearToken removes the user's token. Used by logout.
func (s *Store) ClearToken(ctx context.Context, login string) error {
	return outcome.Wrap("clearing token failed", setToken(ctx, s.db, login, ""))
}

// SetPassword replaces the password hash with one under a fresh salt.
func (s *Store) SetPassword(ctx context.Context, login, password string) error {
	if password == "" {
		return ErrEmptyPassword
	}
	hash, err := s.params.Hash(password)
	if err != nil {
		return outcome.IO("hashing password failed", err)
	}
	return outcome.Wrap("updating password failed",
		updateOne(ctx, s.db, "UPDATE users SET password_hash = ? WHERE login = ?", hash, login))
}

// VerifyPassword reports whether candidate is the user's password. Unknown
// logins and empty candidates yield false without an error.
func (s *Store) VerifyPassword(ctx context.Context, login, candidate string) (bool, error) {
	if candidate == "" {
		return false, nil
	}
	u, err := s.FindByLogin(ctx, login)
	if errors.Is(err, ErrUserNotFound) {
		s.verifyMissing(candidate)
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return s.verifyUser(u, candidate)
}

// MarkAccepted flags the account as confirmed.
func (s *Store) MarkAccepted(ctx context.Context, login string) error {
	return outcome.Wrap("accepting user failed", markAccepted(ctx, s.db, login))
}

// LookupUser reads a user by login through q, which may be a transaction
// owned by another registry.
func LookupUser(ctx context.Context, q database.DBTX, login string) (*User, error) {
	return queryUser(ctx, q, "SELECT "+userColumns+" FROM users WHERE login = ?", login)
}

// tokensEqual compares a presented token with a stored one in constant
// time. Empty values never match.
func tokensEqual(presented, stored string) bool {
	if presented == "" || stored == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(presented), []byte(stored)) == 1
}

func (s *Store) verifyUser(u *User, candidate string) (bool, error) {
	ok, err := s.verify(candidate, u.PasswordHash)
	if err != nil {
		return false, outcome.IO("verifying password failed", fmt.Errorf("user %s: %w", u.Login, err))
	}
	return ok, nil
}

// verifyMissing runs a full verification against a throwaway hash built
// with the current parameters. The result is discarded.
func (s *Store) verifyMissing(candidate string) {
	s.dummyMu.Lock()
	if s.dummyHash == "" {
		hash, err := s.params.Hash("vizgate-no-such-user")
		if err != nil {
			s.dummyMu.Unlock()
			return
		}
		s.dummyHash = hash
	}
	hash := s.dummyHash
	s.dummyMu.Unlock()

	_, _ = s.verify(candidate, hash) //nolint:errcheck // Timing only
}

func markAccepted(ctx context.Context, q database.DBTX, login string) error {
	return updateOne(ctx, q, "UPDATE users SET accepted = 1, token = '' WHERE login = ?", login)
}

func setToken(ctx context.Context, q database.DBTX, login, token string) error {
	return updateOne(ctx, q, "UPDATE users SET token = ? WHERE login = ?", token, login)
}

// updateOne runs an UPDATE keyed on login and maps zero affected rows to
// ErrUserNotFound.
func updateOne(ctx context.Context, q database.DBTX, query string, args ...any) error {
	result, err := q.ExecContext(ctx, query, args...)
	if err != nil {
		return outcome.IO("updating user failed", err)
	}
	rows, _ := result.RowsAffected() //nolint:errcheck // always succeeds on SQLite
	if rows == 0 {
		return ErrUserNotFound
	}
	return nil
}

func exists(ctx context.Context, q database.DBTX, query string, args ...any) (bool, error) {
	var one int
	err := q.QueryRowContext(ctx, query, args...).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, outcome.IO("reading users failed", err)
	}
	return true, nil
}

func queryUser(ctx context.Context, q database.DBTX, query string, args ...any) (*User, error) {
	var u User
	var accepted int
	var active sql.NullString

	err := q.QueryRowContext(ctx, query, args...).Scan(
		&u.Login, &u.FirstName, &u.LastName, &u.Email, &u.PasswordHash, &u.Path, &u.Token,
		&accepted, &active, &u.Affiliation, &u.Origin, &u.Clearance, &u.CreatedDate,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, outcome.IO("reading user failed", err)
	}
	u.Accepted = accepted != 0
	u.ActiveProject = active.String
	return &u, nil
}

// translateInsert maps UNIQUE violations that slipped past the explicit
// checks to the matching conflict error.
func translateInsert(err error) error {
	msg := err.Error()
	if !strings.Contains(msg, "UNIQUE constraint failed") {
		return outcome.IO("inserting user failed", err)
	}
	if strings.Contains(msg, "users.email") {
		return ErrDuplicateEmail
	}
	return ErrDuplicateLogin
}
