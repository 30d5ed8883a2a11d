package notification

import (
	"context"
	"time"

	"github.com/sony/gobreaker"
	"go.uber.org/zap"
)

// BreakerProvider stops calling a failing provider for a cool-down period.
// While open, Send fails fast with gobreaker.ErrOpenState.
type BreakerProvider struct {
	next    Provider
	breaker *gobreaker.CircuitBreaker
}

// NewBreakerProvider trips after threshold consecutive failures and probes
// again once timeout has passed.
func NewBreakerProvider(next Provider, threshold uint32, timeout time.Duration, logger *zap.Logger) *BreakerProvider {
	if threshold == 0 {
		threshold = 5
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	settings := gobreaker.Settings{
		Name:        "mail-" + next.Name(),
		MaxRequests: 1,
		Timeout:     timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= threshold
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("mail circuit breaker state changed",
				zap.String("breaker", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()),
			)
		},
	}
	return &BreakerProvider{next: next, breaker: gobreaker.NewCircuitBreaker(settings)}
}

// Name returns the wrapped provider's name
func (p *BreakerProvider) Name() string { return p.next.Name() }

// State returns the breaker state
func (p *BreakerProvider) State() gobreaker.State { return p.breaker.State() }

// Send passes the message through the breaker
func (p *BreakerProvider) Send(ctx context.Context, msg *Message) error {
	_, err := p.breaker.Execute(func() (any, error) {
		return nil, p.next.Send(ctx, msg)
	})
	return err
}
