package auth

import (
	"context"
	"regexp"
	"sync"
	"testing"

	"github.com/nerrad567/vizgate/internal/infrastructure/database/dbtest"
	"github.com/nerrad567/vizgate/internal/storage"
)

// newTestStore returns a store on a fresh migrated database with cheap
// hashing parameters.
func newTestStore(t *testing.T) *Store {
	t.Helper()
	db := dbtest.Open(t)
	s := NewStore(db.DB)
	s.SetHashParams(testParams)
	return s
}

func annLee() NewUser {
	return NewUser{
		FirstName:   "Ann",
		LastName:    "Lee",
		Email:       "ann@example.com",
		Login:       "alee",
		Password:    "s3cret!",
		Affiliation: "BioLab",
		Origin:      "1.2.3.4",
	}
}

type sentMail struct {
	to, subject, body string
}

// fakeMailer records every message instead of delivering it.
type fakeMailer struct {
	mu   sync.Mutex
	sent []sentMail
	err  error
}

func (m *fakeMailer) Send(_ context.Context, to, subject, body string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, sentMail{to: to, subject: subject, body: body})
	return nil
}

func (m *fakeMailer) last(t *testing.T) sentMail {
	t.Helper()
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.sent) == 0 {
		t.Fatal("no mail sent")
	}
	return m.sent[len(m.sent)-1]
}

var codePattern = regexp.MustCompile(`code=([A-Za-z0-9]+)`)

// confirmationCode extracts the code from a confirmation mail.
func confirmationCode(t *testing.T, m sentMail) string {
	t.Helper()
	match := codePattern.FindStringSubmatch(m.body)
	if match == nil {
		t.Fatalf("no confirmation code in mail body %q", m.body)
	}
	return match[1]
}

func newTestLifecycle(t *testing.T, mailer *fakeMailer, autoAccept bool) (*Lifecycle, *Store, storage.Layout) {
	t.Helper()
	store := newTestStore(t)
	layout := storage.NewLayout(t.TempDir())
	cfg := LifecycleConfig{
		Layout:     layout,
		AutoAccept: autoAccept,
		BaseURL:    "https://viz.example.com/",
	}
	if mailer != nil {
		cfg.Mailer = mailer
	}
	return NewLifecycle(store, cfg), store, layout
}
