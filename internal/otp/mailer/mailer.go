package mailer

import (
	"context"
	"fmt"
	"net/smtp"
	"strings"
	"time"

	"eventbook/pkg/config"
	"eventbook/pkg/logger"
)

// Mailer delivers a verification code to an email address.
type Mailer interface {
	Send(ctx context.Context, to, code string) error
}

type smtpMailer struct {
	addr string
	auth smtp.Auth
	from string
	ttl  time.Duration
	log  *logger.Logger
}

// NewFromConfig returns nil when no SMTP host is configured. Callers
// treat a nil mailer as dev mode and surface the code instead of
// sending it.
func NewFromConfig(cfg *config.Config) Mailer {
	if cfg.SMTPHost == "" {
		return nil
	}

	return &smtpMailer{
		addr: fmt.Sprintf("%s:%d", cfg.SMTPHost, cfg.SMTPPort),
		auth: smtp.PlainAuth("", cfg.SMTPUser, cfg.SMTPPassword, cfg.SMTPHost),
		from: cfg.SMTPFrom,
		ttl:  cfg.OTPTTL,
		log:  cfg.Log,
	}
}

func (m *smtpMailer) Send(ctx context.Context, to, code string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	msg := buildMessage(m.from, to, code, m.ttl)

	if err := smtp.SendMail(m.addr, m.auth, m.from, []string{to}, msg); err != nil {
		return fmt.Errorf("failed to send verification email: %w", err)
	}

	m.log.Debug("Verification email sent", "to", to)
	return nil
}

func buildMessage(from, to, code string, ttl time.Duration) []byte {
	var b strings.Builder
	fmt.Fprintf(&b, "From: %s\r\n", from)
	fmt.Fprintf(&b, "To: %s\r\n", to)
	b.WriteString("Subject: Your booking verification code\r\n")
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/plain; charset=UTF-8\r\n")
	b.WriteString("\r\n")
	fmt.Fprintf(&b, "Your verification code is %s. It expires in %d minutes.\r\n", code, int(ttl.Minutes()))
	return []byte(b.String())
}
