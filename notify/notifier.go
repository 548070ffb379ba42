// Package notify delivers alert emails. The monitor treats delivery as
// fire-and-forget: a failed send is logged by the caller, never retried.
package notify

import (
	"context"

	"github.com/rs/zerolog"
)

// Notifier sends one message to one recipient.
type Notifier interface {
	Send(ctx context.Context, to, subject, htmlBody string) error
}

// LogNotifier writes notifications to the log instead of sending them. Used
// when no Mailgun credentials are configured and in tests.
type LogNotifier struct {
	logger zerolog.Logger
}

// NewLogNotifier creates a log-only notifier.
func NewLogNotifier(logger zerolog.Logger) *LogNotifier {
	return &LogNotifier{
		logger: logger.With().Str("component", "log_notifier").Logger(),
	}
}

// Send logs the notification and reports success.
func (n *LogNotifier) Send(_ context.Context, to, subject, htmlBody string) error {
	n.logger.Info().
		Str("to", to).
		Str("subject", subject).
		Int("body_bytes", len(htmlBody)).
		Msg("notification (dry run)")
	return nil
}
