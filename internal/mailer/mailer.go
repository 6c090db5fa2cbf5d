package mailer

import (
	"context"
	"time"

	"github.com/mailersend/mailersend-go"

	"github.com/spec-kit/event-service/internal/config"
)

// Mailer sends transactional email. All sends are fire-and-forget from the
// caller's perspective and never sit on a capacity-decision path.
type Mailer interface {
	Send(ctx context.Context, to, subject, html string) error
}

type mailerSend struct {
	client    *mailersend.Mailersend
	fromName  string
	fromEmail string
}

// New builds a MailerSend-backed mailer. Returns nil when no API key is
// configured; callers treat a nil mailer as disabled.
func New(cfg config.MailerConfig) Mailer {
	if cfg.APIKey == "" {
		return nil
	}
	return &mailerSend{
		client:    mailersend.NewMailersend(cfg.APIKey),
		fromName:  cfg.FromName,
		fromEmail: cfg.FromEmail,
	}
}

func (m *mailerSend) Send(ctx context.Context, to, subject, html string) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	message := m.client.Email.NewMessage()
	message.SetFrom(mailersend.From{Name: m.fromName, Email: m.fromEmail})
	message.SetRecipients([]mailersend.Recipient{{Email: to}})
	message.SetSubject(subject)
	message.SetHTML(html)

	_, err := m.client.Email.Send(ctx, message)
	return err
}
