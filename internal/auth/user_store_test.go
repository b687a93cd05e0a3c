package auth

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/nerrad567/vizgate/internal/outcome"
	"github.com/nerrad567/vizgate/internal/storage"
)

func TestStore_Create(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	pub, code, err := s.Create(ctx, annLee())
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if pub.Accepted {
		t.Error("new user should be pending")
	}
	if pub.Path != storage.Fragment("alee") {
		t.Errorf("Path = %q, want fragment of login", pub.Path)
	}
	if pub.Clearance != ClearanceUser {
		t.Errorf("Clearance = %q, want %q", pub.Clearance, ClearanceUser)
	}
	if len(code) != TokenLength {
		t.Errorf("confirmation code length = %d, want %d", len(code), TokenLength)
	}

	u, err := s.FindByLogin(ctx, "alee")
	if err != nil {
		t.Fatalf("FindByLogin() error = %v", err)
	}
	if u.Token != code {
		t.Error("stored token should be the confirmation code")
	}
	if u.PasswordHash == "" || u.PasswordHash == "s3cret!" {
		t.Errorf("PasswordHash = %q, want an argon2id hash", u.PasswordHash)
	}
	if u.ActiveProject != "" {
		t.Errorf("ActiveProject = %q, want none", u.ActiveProject)
	}
}

func TestStore_Create_Duplicates(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if _, _, err := s.Create(ctx, annLee()); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	sameLogin := annLee()
	sameLogin.Email = "other@example.com"
	if _, _, err := s.Create(ctx, sameLogin); !errors.Is(err, ErrDuplicateLogin) {
		t.Errorf("Create(same login) error = %v, want ErrDuplicateLogin", err)
	}

	sameEmail := annLee()
	sameEmail.Login = "ann2"
	_, _, err := s.Create(ctx, sameEmail)
	if !errors.Is(err, ErrDuplicateEmail) {
		t.Errorf("Create(same email) error = %v, want ErrDuplicateEmail", err)
	}
	if outcome.KindOf(err) != outcome.KindConflict {
		t.Errorf("KindOf() = %v, want conflict", outcome.KindOf(err))
	}
}

func TestStore_Create_Validation(t *testing.T) {
	s := newTestStore(t)

	tests := []struct {
		name   string
		mutate func(*NewUser)
		want   error
	}{
		{"no firstname", func(n *NewUser) { n.FirstName = "" }, ErrMissingField},
		{"no lastname", func(n *NewUser) { n.LastName = "" }, ErrMissingField},
		{"no email", func(n *NewUser) { n.Email = "" }, ErrMissingField},
		{"no login", func(n *NewUser) { n.Login = "" }, ErrMissingField},
		{"no password", func(n *NewUser) { n.Password = "" }, ErrMissingField},
		{"path-like login", func(n *NewUser) { n.Login = "../root" }, ErrInvalidLogin},
		{"pipe in login", func(n *NewUser) { n.Login = "a|b" }, ErrInvalidLogin},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			nu := annLee()
			tt.mutate(&nu)
			_, _, err := s.Create(context.Background(), nu)
			if !errors.Is(err, tt.want) {
				t.Errorf("Create() error = %v, want %v", err, tt.want)
			}
		})
	}

	if _, err := s.FindByLogin(context.Background(), "alee"); !errors.Is(err, ErrUserNotFound) {
		t.Errorf("invalid registrations must not be persisted, FindByLogin() error = %v", err)
	}
}

func TestStore_Find(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	_, code, err := s.Create(ctx, annLee())
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	if u, err := s.FindByEmail(ctx, "ann@example.com"); err != nil || u.Login != "alee" {
		t.Errorf("FindByEmail() = %v, %v", u, err)
	}
	if u, err := s.FindByToken(ctx, code); err != nil || u.Login != "alee" {
		t.Errorf("FindByToken() = %v, %v", u, err)
	}
	if _, err := s.FindByToken(ctx, ""); !errors.Is(err, ErrUserNotFound) {
		t.Errorf("FindByToken(\"\") error = %v, want ErrUserNotFound", err)
	}
	if _, err := s.FindByLogin(ctx, "nobody"); !errors.Is(err, ErrUserNotFound) {
		t.Errorf("FindByLogin(unknown) error = %v, want ErrUserNotFound", err)
	}
}

func TestStore_VerifyPassword(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if _, _, err := s.Create(ctx, annLee()); err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	u, err := s.FindByLogin(ctx, "alee")
	if err != nil {
		t.Fatalf("FindByLogin() error = %v", err)
	}

	tests := []struct {
		name      string
		login     string
		candidate string
		want      bool
	}{
		{"correct", "alee", "s3cret!", true},
		{"wrong", "alee", "s3cret", false},
		{"empty", "alee", "", false},
		{"hash as plaintext", "alee", u.PasswordHash, false},
		{"unknown login", "nobody", "s3cret!", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := s.VerifyPassword(ctx, tt.login, tt.candidate)
			if err != nil {
				t.Fatalf("VerifyPassword() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("VerifyPassword() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestStore_SetPassword(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if _, _, err := s.Create(ctx, annLee()); err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	before, _ := s.FindByLogin(ctx, "alee") //nolint:errcheck // checked below

	if err := s.SetPassword(ctx, "alee", "n3w-pass"); err != nil {
		t.Fatalf("SetPassword() error = %v", err)
	}
	if ok, _ := s.VerifyPassword(ctx, "alee", "n3w-pass"); !ok { //nolint:errcheck // bool is enough
		t.Error("new password should verify")
	}
	if ok, _ := s.VerifyPassword(ctx, "alee", "s3cret!"); ok { //nolint:errcheck // bool is enough
		t.Error("old password should no longer verify")
	}

	// Same password again still gets a fresh salt.
	if err := s.SetPassword(ctx, "alee", "s3cret!"); err != nil {
		t.Fatalf("SetPassword() error = %v", err)
	}
	after, _ := s.FindByLogin(ctx, "alee") //nolint:errcheck // checked below
	if before.PasswordHash == after.PasswordHash {
		t.Error("hash should change even for the same password")
	}

	if err := s.SetPassword(ctx, "alee", ""); !errors.Is(err, ErrEmptyPassword) {
		t.Errorf("SetPassword(\"\") error = %v, want ErrEmptyPassword", err)
	}
	if err := s.SetPassword(ctx, "nobody", "x"); !errors.Is(err, ErrUserNotFound) {
		t.Errorf("SetPassword(unknown) error = %v, want ErrUserNotFound", err)
	}
}

func TestStore_TokenRoundTrip(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if _, _, err := s.Create(ctx, annLee()); err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if err := s.MarkAccepted(ctx, "alee"); err != nil {
		t.Fatalf("MarkAccepted() error = %v", err)
	}

	first, err := s.EnsureToken(ctx, "alee")
	if err != nil {
		t.Fatalf("EnsureToken() error = %v", err)
	}
	if !strings.HasPrefix(first, "alee") || len(first) != len("alee")+TokenLength {
		t.Errorf("EnsureToken() = %q, want login + %d chars", first, TokenLength)
	}
	again, err := s.EnsureToken(ctx, "alee")
	if err != nil {
		t.Fatalf("EnsureToken() error = %v", err)
	}
	if again != first {
		t.Error("EnsureToken() should return the existing token unchanged")
	}

	rotated, err := s.RotateToken(ctx, "alee")
	if err != nil {
		t.Fatalf("RotateToken() error = %v", err)
	}
	if rotated == first {
		t.Error("RotateToken() should issue a new token")
	}
	if u, err := s.FindByToken(ctx, rotated); err != nil || u.Login != "alee" {
		t.Errorf("FindByToken(rotated) = %v, %v", u, err)
	}
	if _, err := s.FindByToken(ctx, first); !errors.Is(err, ErrUserNotFound) {
		t.Errorf("old token should no longer resolve, error = %v", err)
	}

	if err := s.ClearToken(ctx, "alee"); err != nil {
		t.Fatalf("ClearToken() error = %v", err)
	}
	if _, err := s.FindByToken(ctx, rotated); !errors.Is(err, ErrUserNotFound) {
		t.Errorf("cleared token should not resolve, error = %v", err)
	}
	if _, err := s.RotateToken(ctx, "nobody"); !errors.Is(err, ErrUserNotFound) {
		t.Errorf("RotateToken(unknown) error = %v, want ErrUserNotFound", err)
	}
}

func TestStore_MarkAccepted(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if _, _, err := s.Create(ctx, annLee()); err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if err := s.MarkAccepted(ctx, "alee"); err != nil {
		t.Fatalf("MarkAccepted() error = %v", err)
	}
	u, err := s.FindByLogin(ctx, "alee")
	if err != nil {
		t.Fatalf("FindByLogin() error = %v", err)
	}
	if !u.Accepted {
		t.Error("user should be accepted")
	}
	if u.Token != "" {
		t.Error("accepting should clear the confirmation code")
	}
}

func TestUser_Public(t *testing.T) {
	u := &User{Login: "alee", PasswordHash: "$argon2id$...", Token: "aleeXYZ", ActiveProject: "genome1"}
	pub := u.Public()
	if pub.Login != "alee" || pub.ActiveProject != "genome1" {
		t.Errorf("Public() = %+v", pub)
	}
	if u.PasswordHash != "$argon2id$..." || u.Token != "aleeXYZ" {
		t.Error("Public() must not modify the source record")
	}
}
