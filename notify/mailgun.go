package notify

import (
	"context"
	"fmt"

	"github.com/mailgun/mailgun-go/v4"
	"github.com/rs/zerolog"
)

// MailgunNotifier sends alert emails through the Mailgun HTTP API.
type MailgunNotifier struct {
	client *mailgun.MailgunImpl
	from   string
	logger zerolog.Logger
}

// NewMailgunNotifier creates a Mailgun-backed notifier.
func NewMailgunNotifier(domain, apiKey, from string, logger zerolog.Logger) (*MailgunNotifier, error) {
	if domain == "" || apiKey == "" {
		return nil, fmt.Errorf("mailgun domain and api key are required")
	}
	if from == "" {
		from = fmt.Sprintf("PolyLens <alerts@%s>", domain)
	}

	return &MailgunNotifier{
		client: mailgun.NewMailgun(domain, apiKey),
		from:   from,
		logger: logger.With().Str("component", "mailgun_notifier").Logger(),
	}, nil
}

// Send delivers one HTML email.
func (n *MailgunNotifier) Send(ctx context.Context, to, subject, htmlBody string) error {
	message := n.client.NewMessage(n.from, subject, "", to)
	message.SetHtml(htmlBody)

	_, id, err := n.client.Send(ctx, message)
	if err != nil {
		return fmt.Errorf("failed to send email to %s: %w", to, err)
	}

	n.logger.Info().
		Str("to", to).
		Str("message_id", id).
		Msg("email sent")
	return nil
}
