package notification

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"

	"github.com/uniformco/backoffice/internal/infrastructure/cache"
)

const processedTTL = 72 * time.Hour

// AMQPPublisher forwards envelopes to a durable RabbitMQ queue. The
// connection is opened lazily and reopened after a failure.
type AMQPPublisher struct {
	url    string
	queue  string
	logger *zap.Logger

	mu   sync.Mutex
	conn *amqp.Connection
	ch   *amqp.Channel
}

// NewAMQPPublisher creates a publisher for queue
func NewAMQPPublisher(url, queue string, logger *zap.Logger) *AMQPPublisher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AMQPPublisher{url: url, queue: queue, logger: logger}
}

// Deliver publishes env as a persistent JSON message
func (p *AMQPPublisher) Deliver(ctx context.Context, env Envelope) error {
	body, err := json.Marshal(env)
	if err != nil {
		return fmt.Errorf("encode envelope: %w", err)
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	ch, err := p.channel()
	if err != nil {
		return err
	}
	err = ch.PublishWithContext(ctx, "", p.queue, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		MessageId:    env.ID.String(),
		Type:         env.Event,
		Timestamp:    env.CreatedAt,
		Body:         body,
	})
	if err != nil {
		p.reset()
		return fmt.Errorf("amqp publish: %w", err)
	}
	return nil
}

// channel returns the open channel, dialing when needed. Caller holds mu.
func (p *AMQPPublisher) channel() (*amqp.Channel, error) {
	if p.ch != nil && !p.ch.IsClosed() {
		return p.ch, nil
	}
	p.reset()

	conn, err := amqp.Dial(p.url)
	if err != nil {
		return nil, fmt.Errorf("amqp dial: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("amqp channel: %w", err)
	}
	if _, err := ch.QueueDeclare(p.queue, true, false, false, false, nil); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, fmt.Errorf("amqp queue declare: %w", err)
	}
	p.conn, p.ch = conn, ch
	p.logger.Info("amqp publisher connected", zap.String("queue", p.queue))
	return ch, nil
}

func (p *AMQPPublisher) reset() {
	if p.ch != nil {
		_ = p.ch.Close()
	}
	if p.conn != nil {
		_ = p.conn.Close()
	}
	p.ch, p.conn = nil, nil
}

// Close closes the connection
func (p *AMQPPublisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.reset()
	return nil
}

// AMQPConsumer reads envelopes from the queue and hands them to a sink.
// Envelope IDs already handled are acknowledged without redelivery.
type AMQPConsumer struct {
	url      string
	queue    string
	sink     Sink
	seen     cache.IdempotencyStore
	prefetch int
	logger   *zap.Logger
}

// NewAMQPConsumer creates a consumer; seen may be nil
func NewAMQPConsumer(url, queue string, sink Sink, seen cache.IdempotencyStore, prefetch int, logger *zap.Logger) *AMQPConsumer {
	if prefetch <= 0 {
		prefetch = 10
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AMQPConsumer{url: url, queue: queue, sink: sink, seen: seen, prefetch: prefetch, logger: logger}
}

// Run consumes until ctx is cancelled, reconnecting with backoff
func (c *AMQPConsumer) Run(ctx context.Context) error {
	backoff := time.Second
	for {
		conn, err := amqp.Dial(c.url)
		if err == nil {
			backoff = time.Second
			err = c.consume(ctx, conn)
			_ = conn.Close()
			if ctx.Err() != nil {
				return nil
			}
		}
		c.logger.Warn("amqp consumer disconnected", zap.Error(err), zap.Duration("retry_in", backoff))

		select {
		case <-ctx.Done():
			return nil
		case <-time.After(backoff):
		}
		if backoff < 30*time.Second {
			backoff *= 2
		}
	}
}

func (c *AMQPConsumer) consume(ctx context.Context, conn *amqp.Connection) error {
	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("channel open: %w", err)
	}
	defer func() { _ = ch.Close() }()

	if err := ch.Qos(c.prefetch, 0, false); err != nil {
		return fmt.Errorf("set qos: %w", err)
	}
	if _, err := ch.QueueDeclare(c.queue, true, false, false, false, nil); err != nil {
		return fmt.Errorf("queue declare: %w", err)
	}
	deliveries, err := ch.Consume(c.queue, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("queue consume: %w", err)
	}
	c.logger.Info("amqp consumer started", zap.String("queue", c.queue))

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case d, ok := <-deliveries:
			if !ok {
				return errors.New("deliveries channel closed")
			}
			c.handle(ctx, d)
		}
	}
}

// acknowledger is the part of amqp.Delivery the handler needs
type acknowledger interface {
	Ack(multiple bool) error
	Nack(multiple, requeue bool) error
}

func (c *AMQPConsumer) handle(ctx context.Context, d amqp.Delivery) {
	c.process(ctx, d.Body, d.Redelivered, d)
}

func (c *AMQPConsumer) process(ctx context.Context, body []byte, redelivered bool, ack acknowledger) {
	var env Envelope
	if err := json.Unmarshal(body, &env); err != nil {
		c.logger.Error("discarding undecodable notification", zap.Error(err))
		_ = ack.Nack(false, false)
		return
	}

	if c.seen != nil {
		done, err := c.seen.IsProcessed(ctx, env.ID.String())
		if err != nil {
			c.logger.Warn("idempotency check failed", zap.Error(err))
		}
		if done {
			_ = ack.Ack(false)
			return
		}
	}

	if err := c.sink.Deliver(ctx, env); err != nil {
		// one retry through the broker, then drop
		c.logger.Error("notification delivery failed",
			zap.String("event", env.Event),
			zap.String("envelope_id", env.ID.String()),
			zap.Bool("redelivered", redelivered),
			zap.Error(err),
		)
		_ = ack.Nack(false, !redelivered)
		return
	}

	if c.seen != nil {
		if _, err := c.seen.MarkProcessed(ctx, env.ID.String(), processedTTL); err != nil {
			c.logger.Warn("failed to record processed notification", zap.Error(err))
		}
	}
	_ = ack.Ack(false)
}
