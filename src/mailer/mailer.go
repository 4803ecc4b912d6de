package mailer

import "context"

// Email is a fully-prepared outbound message
type Email struct {
	From    string
	To      string
	Subject string
	Text    string
	HTML    string // optional
}

// Sender delivers prepared emails through a mail transport.
// Send returns the provider-assigned message id.
type Sender interface {
	Send(ctx context.Context, email *Email) (string, error)

	// Verify checks that the transport is reachable. Used by the
	// health endpoint.
	Verify(ctx context.Context) error
}
