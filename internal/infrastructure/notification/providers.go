package notification

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/uniformco/backoffice/internal/infrastructure/config"
)

// Provider names
const (
	ProviderLog      = "log"
	ProviderSES      = "ses"
	ProviderSendGrid = "sendgrid"
)

// NewProvider builds the configured email provider wrapped in a circuit breaker.
// The log provider is used when notifications are disabled or no provider is set.
func NewProvider(ctx context.Context, cfg config.NotificationConfig, logger *zap.Logger) (Provider, error) {
	var (
		p   Provider
		err error
	)
	name := strings.ToLower(cfg.Provider)
	if !cfg.Enabled {
		name = ProviderLog
	}
	switch name {
	case "", ProviderLog:
		return NewLogProvider(logger), nil
	case ProviderSES:
		p, err = NewSESProvider(ctx, cfg)
	case ProviderSendGrid:
		p, err = NewSendGridProvider(cfg)
	default:
		return nil, fmt.Errorf("unsupported notification provider %q", cfg.Provider)
	}
	if err != nil {
		return nil, err
	}
	return NewBreakerProvider(p, cfg.BreakerThreshold, cfg.BreakerTimeout, logger), nil
}

// LogProvider writes messages to the log instead of sending them
type LogProvider struct {
	logger *zap.Logger
}

// NewLogProvider creates a LogProvider
func NewLogProvider(logger *zap.Logger) *LogProvider {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LogProvider{logger: logger.Named("mail")}
}

// Name returns "log"
func (p *LogProvider) Name() string { return ProviderLog }

// Send logs the message headers
func (p *LogProvider) Send(_ context.Context, msg *Message) error {
	p.logger.Info("email",
		zap.String("event", msg.Event),
		zap.String("to", msg.To),
		zap.String("subject", msg.Subject),
		zap.Int("html_bytes", len(msg.HTML)),
	)
	return nil
}
