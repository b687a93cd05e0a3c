package mail

import (
	"context"
	"errors"
	"net/smtp"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSMTPSender_Send(t *testing.T) {
	s := NewSMTPSender(SMTPConfig{Host: "mail.example.com", Port: 587, Username: "u", Password: "p", From: "noreply@example.com"})

	var gotAddr, gotFrom string
	var gotTo []string
	var gotMsg []byte
	s.sendMail = func(addr string, a smtp.Auth, from string, to []string, msg []byte) error {
		gotAddr, gotFrom, gotTo, gotMsg = addr, from, to, msg
		require.NotNil(t, a)
		return nil
	}

	err := s.Send(context.Background(), "Ann Lee <ann@example.com>", "Confirm", "line1\nline2")
	require.NoError(t, err)
	assert.Equal(t, "mail.example.com:587", gotAddr)
	assert.Equal(t, "noreply@example.com", gotFrom)
	assert.Equal(t, []string{"ann@example.com"}, gotTo)
	assert.Contains(t, string(gotMsg), "Subject: Confirm\r\n")
	assert.True(t, strings.HasSuffix(string(gotMsg), "line1\r\nline2"))
}

func TestSMTPSender_InvalidRecipient(t *testing.T) {
	s := NewSMTPSender(SMTPConfig{Host: "localhost", Port: 25, From: "a@b.c"})
	s.sendMail = func(string, smtp.Auth, string, []string, []byte) error {
		t.Fatal("sendMail should not be called")
		return nil
	}
	err := s.Send(context.Background(), "not an address", "s", "b")
	assert.ErrorIs(t, err, ErrInvalidRecipient)
}

func TestSMTPSender_RelayError(t *testing.T) {
	s := NewSMTPSender(SMTPConfig{Host: "localhost", Port: 25, From: "a@b.c"})
	relayErr := errors.New("550 rejected")
	s.sendMail = func(string, smtp.Auth, string, []string, []byte) error { return relayErr }

	err := s.Send(context.Background(), "x@example.com", "s", "b")
	assert.ErrorIs(t, err, relayErr)
}

func TestSMTPSender_CancelledContext(t *testing.T) {
	s := NewSMTPSender(SMTPConfig{Host: "localhost", Port: 25, From: "a@b.c"})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, s.Send(ctx, "x@example.com", "s", "b"), context.Canceled)
}

func TestCompose_StripsHeaderInjection(t *testing.T) {
	msg := string(compose("a@b.c", "x@y.z", "hi\r\nBcc: evil@x.y", "body", time.Unix(0, 0)))
	assert.NotContains(t, msg, "\r\nBcc:")
}

type captureLogger struct{ args []any }

func (c *captureLogger) Info(_ string, args ...any) { c.args = args }

func TestLogSender(t *testing.T) {
	l := &captureLogger{}
	require.NoError(t, NewLogSender(l).Send(context.Background(), "x@y.z", "subj", "body"))
	assert.Equal(t, []any{"to", "x@y.z", "subject", "subj", "body", "body"}, l.args)
}
