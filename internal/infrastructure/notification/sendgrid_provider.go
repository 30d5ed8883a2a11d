package notification

import (
	"context"
	"errors"
	"fmt"

	"github.com/sendgrid/rest"
	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"

	"github.com/uniformco/backoffice/internal/infrastructure/config"
)

// SendGridAPI is the subset of the SendGrid client used for sending
type SendGridAPI interface {
	SendWithContext(ctx context.Context, email *mail.SGMailV3) (*rest.Response, error)
}

// SendGridProvider sends email through the SendGrid v3 API
type SendGridProvider struct {
	client SendGridAPI
	from   *mail.Email
}

// NewSendGridProvider creates a provider from configuration
func NewSendGridProvider(cfg config.NotificationConfig) (*SendGridProvider, error) {
	if cfg.SendGridAPIKey == "" {
		return nil, errors.New("sendgrid provider requires an API key")
	}
	if cfg.FromAddress == "" {
		return nil, errors.New("sendgrid provider requires a from address")
	}
	return NewSendGridProviderWithClient(sendgrid.NewSendClient(cfg.SendGridAPIKey), cfg.FromName, cfg.FromAddress), nil
}

// NewSendGridProviderWithClient uses an existing client
func NewSendGridProviderWithClient(client SendGridAPI, fromName, fromAddress string) *SendGridProvider {
	return &SendGridProvider{client: client, from: mail.NewEmail(fromName, fromAddress)}
}

// Name returns "sendgrid"
func (p *SendGridProvider) Name() string { return ProviderSendGrid }

// Send sends one message. Non-2xx responses are errors.
func (p *SendGridProvider) Send(ctx context.Context, msg *Message) error {
	m := mail.NewSingleEmail(p.from, msg.Subject, mail.NewEmail("", msg.To), msg.Text, msg.HTML)
	if msg.ReplyTo != "" {
		m.SetReplyTo(mail.NewEmail("", msg.ReplyTo))
	}

	resp, err := p.client.SendWithContext(ctx, m)
	if err != nil {
		return fmt.Errorf("sendgrid send failed: %w", err)
	}
	if resp.StatusCode >= 300 {
		return fmt.Errorf("sendgrid send failed: status %d: %s", resp.StatusCode, resp.Body)
	}
	return nil
}
