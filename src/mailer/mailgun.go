package mailer

import (
	"context"
	"fmt"
	"time"

	"github.com/mailgun/mailgun-go/v4"
)

// MailgunSender delivers email through the Mailgun HTTP API
type MailgunSender struct {
	mg        *mailgun.MailgunImpl
	fromEmail string
	domain    string
}

// NewMailgunSender creates a Mailgun-backed sender
func NewMailgunSender(domain, apiKey, fromEmail string) *MailgunSender {
	return &MailgunSender{
		mg:        mailgun.NewMailgun(domain, apiKey),
		fromEmail: fromEmail,
		domain:    domain,
	}
}

// Send delivers a single email and returns the Mailgun message id
func (s *MailgunSender) Send(ctx context.Context, email *Email) (string, error) {
	from := email.From
	if from == "" {
		from = s.fromEmail
	}

	message := s.mg.NewMessage(from, email.Subject, email.Text, email.To)
	if email.HTML != "" {
		message.SetHtml(email.HTML)
	}

	ctxWithTimeout, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	_, id, err := s.mg.Send(ctxWithTimeout, message)
	if err != nil {
		return "", fmt.Errorf("failed to send email to %s: %w", email.To, err)
	}
	return id, nil
}

// Verify reports transport readiness. Mailgun is a stateless HTTP API;
// delivery problems surface per send, so only configuration is checked.
func (s *MailgunSender) Verify(ctx context.Context) error {
	if s.domain == "" || s.fromEmail == "" {
		return fmt.Errorf("mailgun transport misconfigured")
	}
	return nil
}
