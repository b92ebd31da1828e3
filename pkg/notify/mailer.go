// Package notify dispatches lifecycle emails to clients and records every
// send in the notification log.
package notify

import (
	"context"
	"log/slog"
)

// Message is one outbound email.
type Message struct {
	To      string
	Subject string
	Body    string
}

// Mailer delivers messages. Delivery failures must be returned, never
// panicked; callers decide whether a notification is best-effort.
type Mailer interface {
	Send(ctx context.Context, msg Message) error
}

// LogMailer writes messages to the log instead of delivering them. It is the
// default mailer when no provider is configured, which keeps local
// development and tests free of SMTP credentials.
type LogMailer struct {
	logger *slog.Logger
}

func NewLogMailer(logger *slog.Logger) *LogMailer {
	return &LogMailer{logger: logger.With("module", "mailer")}
}

func (m *LogMailer) Send(ctx context.Context, msg Message) error {
	m.logger.InfoContext(ctx, "Email dispatched (log only)",
		"to", msg.To,
		"subject", msg.Subject,
		"body_length", len(msg.Body),
	)

	return nil
}
