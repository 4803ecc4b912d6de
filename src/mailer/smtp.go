package mailer

import (
	"bytes"
	"context"
	"fmt"
	"mime/multipart"
	"net/smtp"
	"net/textproto"
	"strings"
	"time"

	"github.com/google/uuid"
)

// SMTPSender delivers email through a plain SMTP relay.
// Uses STARTTLS when the relay offers it.
type SMTPSender struct {
	host      string
	addr      string
	auth      smtp.Auth
	fromEmail string
}

// NewSMTPSender creates an SMTP-backed sender
func NewSMTPSender(host string, port int, username, password, fromEmail string) *SMTPSender {
	var auth smtp.Auth
	if username != "" {
		auth = smtp.PlainAuth("", username, password, host)
	}
	return &SMTPSender{
		host:      host,
		addr:      fmt.Sprintf("%s:%d", host, port),
		auth:      auth,
		fromEmail: fromEmail,
	}
}

// Send delivers a single email and returns a generated message id
func (s *SMTPSender) Send(ctx context.Context, email *Email) (string, error) {
	from := email.From
	if from == "" {
		from = s.fromEmail
	}

	messageID := fmt.Sprintf("<%s@%s>", uuid.New().String(), s.host)
	msg, err := buildMessage(from, messageID, email)
	if err != nil {
		return "", fmt.Errorf("failed to build message: %w", err)
	}

	done := make(chan error, 1)
	go func() {
		done <- smtp.SendMail(s.addr, s.auth, from, []string{email.To}, msg)
	}()

	select {
	case err := <-done:
		if err != nil {
			return "", fmt.Errorf("failed to send email to %s: %w", email.To, err)
		}
		return messageID, nil
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

// Verify dials the relay and exchanges a NOOP to confirm reachability
func (s *SMTPSender) Verify(ctx context.Context) error {
	done := make(chan error, 1)
	go func() {
		client, err := smtp.Dial(s.addr)
		if err != nil {
			done <- fmt.Errorf("failed to reach SMTP relay: %w", err)
			return
		}
		defer client.Close()

		if err := client.Noop(); err != nil {
			done <- fmt.Errorf("SMTP relay not responding: %w", err)
			return
		}
		done <- client.Quit()
	}()

	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(10 * time.Second):
		return fmt.Errorf("SMTP relay verification timed out")
	}
}

// buildMessage assembles an RFC 5322 message. Text-only mail is sent as
// text/plain; mail with an HTML body becomes multipart/alternative.
func buildMessage(from, messageID string, email *Email) ([]byte, error) {
	var buf bytes.Buffer

	fmt.Fprintf(&buf, "From: %s\r\n", from)
	fmt.Fprintf(&buf, "To: %s\r\n", email.To)
	fmt.Fprintf(&buf, "Subject: %s\r\n", email.Subject)
	fmt.Fprintf(&buf, "Message-ID: %s\r\n", messageID)
	fmt.Fprintf(&buf, "Date: %s\r\n", time.Now().Format(time.RFC1123Z))
	buf.WriteString("MIME-Version: 1.0\r\n")

	if email.HTML == "" {
		buf.WriteString("Content-Type: text/plain; charset=utf-8\r\n\r\n")
		buf.WriteString(email.Text)
		buf.WriteString("\r\n")
		return buf.Bytes(), nil
	}

	writer := multipart.NewWriter(&buf)
	fmt.Fprintf(&buf, "Content-Type: multipart/alternative; boundary=%q\r\n\r\n", writer.Boundary())

	textPart, err := writer.CreatePart(textproto.MIMEHeader{
		"Content-Type": {"text/plain; charset=utf-8"},
	})
	if err != nil {
		return nil, err
	}
	if _, err := textPart.Write([]byte(email.Text)); err != nil {
		return nil, err
	}

	htmlPart, err := writer.CreatePart(textproto.MIMEHeader{
		"Content-Type": {"text/html; charset=utf-8"},
	})
	if err != nil {
		return nil, err
	}
	if _, err := htmlPart.Write([]byte(email.HTML)); err != nil {
		return nil, err
	}

	if err := writer.Close(); err != nil {
		return nil, err
	}

	// Body uses LF from multipart writer; SMTP servers accept it, but
	// normalize bare LF to CRLF to be safe.
	normalized := strings.ReplaceAll(buf.String(), "\r\n", "\n")
	normalized = strings.ReplaceAll(normalized, "\n", "\r\n")
	return []byte(normalized), nil
}
