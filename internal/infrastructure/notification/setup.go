package notification

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/uniformco/backoffice/internal/infrastructure/config"
	"github.com/uniformco/backoffice/internal/infrastructure/telemetry"
)

// Transports
const (
	TransportInProcess = "inprocess"
	TransportAMQP      = "amqp"
)

// Setup is a started dispatcher plus whatever must be closed with it
type Setup struct {
	Dispatcher *Dispatcher
	publisher  *AMQPPublisher
}

// Close drains the dispatcher and closes the broker connection
func (s *Setup) Close(ctx context.Context) error {
	err := s.Dispatcher.Close(ctx)
	if s.publisher != nil {
		_ = s.publisher.Close()
	}
	return err
}

// NewSetup builds and starts the configured pipeline. With the amqp transport
// the dispatcher only publishes; cmd/notifier renders and sends.
func NewSetup(ctx context.Context, cfg *config.Config, logger *zap.Logger, metrics *telemetry.Metrics) (*Setup, error) {
	n := cfg.Notification
	dcfg := DispatcherConfig{Workers: n.Workers, QueueSize: n.QueueSize, SendTimeout: n.SendTimeout}

	var (
		sink      Sink
		publisher *AMQPPublisher
	)
	switch strings.ToLower(n.Transport) {
	case TransportAMQP:
		if n.AMQPURL == "" {
			return nil, fmt.Errorf("notification transport amqp requires an AMQP URL")
		}
		publisher = NewAMQPPublisher(n.AMQPURL, n.AMQPQueue, logger)
		sink = publisher
	case "", TransportInProcess:
		mailer, err := NewMailerFromConfig(ctx, cfg, logger, metrics)
		if err != nil {
			return nil, err
		}
		sink = mailer
	default:
		return nil, fmt.Errorf("unsupported notification transport %q", n.Transport)
	}

	d := NewDispatcher(sink, dcfg, logger, metrics)
	d.Start()
	return &Setup{Dispatcher: d, publisher: publisher}, nil
}

// NewMailerFromConfig builds the composer and provider from configuration
func NewMailerFromConfig(ctx context.Context, cfg *config.Config, logger *zap.Logger, metrics *telemetry.Metrics) (*Mailer, error) {
	provider, err := NewProvider(ctx, cfg.Notification, logger)
	if err != nil {
		return nil, err
	}
	composer := NewComposer(ComposerConfigFrom(cfg.App, cfg.Notification))
	return NewMailer(composer, provider, logger, metrics), nil
}
