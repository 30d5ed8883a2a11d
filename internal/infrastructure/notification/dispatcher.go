package notification

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/uniformco/backoffice/internal/infrastructure/logger"
	"github.com/uniformco/backoffice/internal/infrastructure/telemetry"
)

// ErrQueueFull is returned by Enqueue when the backlog is at capacity
var ErrQueueFull = errors.New("notification queue is full")

// Sink takes an envelope off the queue: the Mailer renders and sends it,
// the AMQPPublisher forwards it to the broker.
type Sink interface {
	Deliver(ctx context.Context, env Envelope) error
}

// Mailer renders envelopes and sends each message through a provider
type Mailer struct {
	composer *Composer
	provider Provider
	logger   *zap.Logger
	metrics  *telemetry.Metrics
}

// NewMailer creates a Mailer
func NewMailer(composer *Composer, provider Provider, logger *zap.Logger, metrics *telemetry.Metrics) *Mailer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Mailer{composer: composer, provider: provider, logger: logger, metrics: metrics}
}

// Deliver sends every message of env and joins the individual failures
func (m *Mailer) Deliver(ctx context.Context, env Envelope) error {
	msgs, err := m.composer.Compose(env)
	if errors.Is(err, ErrNoRecipients) {
		m.logger.Debug("notification skipped, no recipients", zap.String("event", env.Event))
		return nil
	}
	if err != nil {
		m.metrics.Notification(env.Event, telemetry.OutcomeFailed)
		return err
	}

	var errs []error
	for _, msg := range msgs {
		if err := m.provider.Send(ctx, msg); err != nil {
			m.metrics.Notification(env.Event, telemetry.OutcomeFailed)
			errs = append(errs, fmt.Errorf("send %s to %s: %w", env.Event, msg.To, err))
			continue
		}
		m.metrics.Notification(env.Event, telemetry.OutcomeSent)
	}
	return errors.Join(errs...)
}

// DispatcherConfig sizes the worker pool
type DispatcherConfig struct {
	Workers     int
	QueueSize   int
	SendTimeout time.Duration
}

type queued struct {
	ctx context.Context
	env Envelope
}

// Dispatcher is the asynchronous Sender. Notify never blocks: when the queue
// is full the notification is dropped and counted.
type Dispatcher struct {
	sink    Sink
	cfg     DispatcherConfig
	queue   chan queued
	logger  *zap.Logger
	metrics *telemetry.Metrics

	mu        sync.RWMutex
	closed    bool
	startOnce sync.Once
	wg        sync.WaitGroup
}

// NewDispatcher creates a dispatcher; call Start to launch the workers
func NewDispatcher(sink Sink, cfg DispatcherConfig, log *zap.Logger, metrics *telemetry.Metrics) *Dispatcher {
	if cfg.Workers <= 0 {
		cfg.Workers = 2
	}
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = 256
	}
	if cfg.SendTimeout <= 0 {
		cfg.SendTimeout = 15 * time.Second
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Dispatcher{
		sink:    sink,
		cfg:     cfg,
		queue:   make(chan queued, cfg.QueueSize),
		logger:  log.Named("notification"),
		metrics: metrics,
	}
}

// Start launches the workers
func (d *Dispatcher) Start() {
	d.startOnce.Do(func() {
		for i := 0; i < d.cfg.Workers; i++ {
			d.wg.Add(1)
			go d.worker()
		}
		d.logger.Info("notification dispatcher started",
			zap.Int("workers", d.cfg.Workers),
			zap.Int("queue_size", d.cfg.QueueSize),
		)
	})
}

// Notify implements Sender
func (d *Dispatcher) Notify(ctx context.Context, event string, payload any) {
	env, err := NewEnvelope(event, payload)
	if err != nil {
		d.metrics.Notification(event, telemetry.OutcomeFailed)
		d.logger.Error("notification payload not encodable", zap.String("event", event), zap.Error(err))
		return
	}
	env.RequestID = logger.RequestID(ctx)
	if err := d.Enqueue(ctx, env); err != nil {
		d.metrics.Notification(event, telemetry.OutcomeDropped)
		d.logger.Warn("notification dropped",
			zap.String("event", event),
			zap.String("request_id", env.RequestID),
			zap.Error(err),
		)
	}
}

// Enqueue queues env without blocking
func (d *Dispatcher) Enqueue(ctx context.Context, env Envelope) error {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.closed {
		return ErrQueueClosed
	}
	select {
	case d.queue <- queued{ctx: logger.Detached(ctx), env: env}:
		d.metrics.SetQueueDepth(len(d.queue))
		return nil
	default:
		return ErrQueueFull
	}
}

// Pending returns the number of queued envelopes
func (d *Dispatcher) Pending() int {
	return len(d.queue)
}

// Close stops accepting work and waits for the queue to drain or ctx to end
func (d *Dispatcher) Close(ctx context.Context) error {
	d.mu.Lock()
	if !d.closed {
		d.closed = true
		close(d.queue)
	}
	d.mu.Unlock()

	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("notification queue not drained: %w", ctx.Err())
	}
}

func (d *Dispatcher) worker() {
	defer d.wg.Done()
	for q := range d.queue {
		d.metrics.SetQueueDepth(len(d.queue))
		d.process(q)
	}
}

func (d *Dispatcher) process(q queued) {
	ctx, cancel := context.WithTimeout(q.ctx, d.cfg.SendTimeout)
	defer cancel()
	defer func() {
		if r := recover(); r != nil {
			d.logger.Error("notification sink panicked", zap.String("event", q.env.Event), zap.Any("panic", r))
		}
	}()

	if err := d.sink.Deliver(ctx, q.env); err != nil {
		d.logger.Error("notification delivery failed",
			zap.String("event", q.env.Event),
			zap.String("envelope_id", q.env.ID.String()),
			zap.String("request_id", q.env.RequestID),
			zap.Error(err),
		)
	}
}

var _ Sender = (*Dispatcher)(nil)
