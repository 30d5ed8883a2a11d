package notification

import (
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/ses/types"

	"github.com/uniformco/backoffice/internal/infrastructure/config"
)

// SESAPI is the subset of the SES client used for sending
type SESAPI interface {
	SendEmail(ctx context.Context, params *ses.SendEmailInput, optFns ...func(*ses.Options)) (*ses.SendEmailOutput, error)
}

// SESProvider sends email through Amazon SES
type SESProvider struct {
	client SESAPI
	source string
}

// NewSESProvider loads AWS configuration from the default chain
func NewSESProvider(ctx context.Context, cfg config.NotificationConfig) (*SESProvider, error) {
	if cfg.FromAddress == "" {
		return nil, errors.New("ses provider requires a from address")
	}
	var opts []func(*awsconfig.LoadOptions) error
	if cfg.SESRegion != "" {
		opts = append(opts, awsconfig.WithRegion(cfg.SESRegion))
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}
	return NewSESProviderWithClient(ses.NewFromConfig(awsCfg), cfg.FromName, cfg.FromAddress), nil
}

// NewSESProviderWithClient uses an existing client
func NewSESProviderWithClient(client SESAPI, fromName, fromAddress string) *SESProvider {
	source := fromAddress
	if fromName != "" {
		source = fmt.Sprintf("%s <%s>", fromName, fromAddress)
	}
	return &SESProvider{client: client, source: source}
}

// Name returns "ses"
func (p *SESProvider) Name() string { return ProviderSES }

// Send sends one message
func (p *SESProvider) Send(ctx context.Context, msg *Message) error {
	body := &types.Body{}
	if msg.HTML != "" {
		body.Html = &types.Content{Charset: aws.String("UTF-8"), Data: aws.String(msg.HTML)}
	}
	if msg.Text != "" {
		body.Text = &types.Content{Charset: aws.String("UTF-8"), Data: aws.String(msg.Text)}
	}

	input := &ses.SendEmailInput{
		Source:      aws.String(p.source),
		Destination: &types.Destination{ToAddresses: []string{msg.To}},
		Message: &types.Message{
			Subject: &types.Content{Charset: aws.String("UTF-8"), Data: aws.String(msg.Subject)},
			Body:    body,
		},
	}
	if msg.ReplyTo != "" {
		input.ReplyToAddresses = []string{msg.ReplyTo}
	}

	if _, err := p.client.SendEmail(ctx, input); err != nil {
		return fmt.Errorf("ses send failed: %w", err)
	}
	return nil
}
