// Package mail delivers account mail: registration confirmations and reset
// passwords.
package mail

import (
	"context"
	"errors"
	"fmt"
	"net"
	netmail "net/mail"
	"net/smtp"
	"strconv"
	"strings"
	"time"
)

// Sender delivers one plain-text message.
type Sender interface {
	Send(ctx context.Context, to, subject, body string) error
}

// ErrInvalidRecipient is returned when the recipient is not a valid address.
var ErrInvalidRecipient = errors.New("mail: invalid recipient")

// SMTPConfig mirrors the mail section of config.yaml.
type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

// SMTPSender sends mail through an SMTP relay.
type SMTPSender struct {
	addr string
	from string
	auth smtp.Auth

	// sendMail is smtp.SendMail; replaced in tests.
	sendMail func(addr string, a smtp.Auth, from string, to []string, msg []byte) error
}

// NewSMTPSender builds a sender for cfg. PLAIN auth is used only when a
// username is configured.
func NewSMTPSender(cfg SMTPConfig) *SMTPSender {
	s := &SMTPSender{
		addr:     net.JoinHostPort(cfg.Host, strconv.Itoa(cfg.Port)),
		from:     cfg.From,
		sendMail: smtp.SendMail,
	}
	if cfg.Username != "" {
		s.auth = smtp.PlainAuth("", cfg.Username, cfg.Password, cfg.Host)
	}
	return s
}

// Send implements Sender. smtp.SendMail has no context support, so ctx is
// only checked before dialling.
func (s *SMTPSender) Send(ctx context.Context, to, subject, body string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	rcpt, err := netmail.ParseAddress(to)
	if err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidRecipient, to)
	}
	msg := compose(s.from, rcpt.Address, subject, body, time.Now())
	if err := s.sendMail(s.addr, s.auth, s.from, []string{rcpt.Address}, msg); err != nil {
		return fmt.Errorf("sending mail to %s: %w", rcpt.Address, err)
	}
	return nil
}

func compose(from, to, subject, body string, now time.Time) []byte {
	var b strings.Builder
	b.WriteString("From: " + from + "\r\n")
	b.WriteString("To: " + to + "\r\n")
	b.WriteString("Subject: " + strings.NewReplacer("\r", "", "\n", "").Replace(subject) + "\r\n")
	b.WriteString("Date: " + now.Format(time.RFC1123Z) + "\r\n")
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/plain; charset=utf-8\r\n")
	b.WriteString("\r\n")
	b.WriteString(strings.ReplaceAll(body, "\n", "\r\n"))
	return []byte(b.String())
}

// Logger is the logging interface used by LogSender.
type Logger interface {
	Info(msg string, args ...any)
}

// LogSender writes messages to the log instead of sending them. For
// development only: the body carries confirmation codes and passwords.
type LogSender struct {
	logger Logger
}

// NewLogSender returns a LogSender writing to logger.
func NewLogSender(logger Logger) *LogSender {
	return &LogSender{logger: logger}
}

// Send implements Sender.
func (s *LogSender) Send(_ context.Context, to, subject, body string) error {
	s.logger.Info("mail", "to", to, "subject", subject, "body", body)
	return nil
}
