package event

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/uniformco/backoffice/internal/domain/shared"
)

type testEvent struct {
	shared.BaseDomainEvent
}

func newTestEvent(eventType string) *testEvent {
	return &testEvent{BaseDomainEvent: shared.NewBaseDomainEvent(eventType, "Test", uuid.New())}
}

type recorder struct {
	mu   sync.Mutex
	seen []string
}

func (r *recorder) handler(err error, eventTypes ...string) *HandlerFunc {
	return NewHandlerFunc(func(_ context.Context, e shared.DomainEvent) error {
		r.mu.Lock()
		defer r.mu.Unlock()
		r.seen = append(r.seen, e.EventType())
		return err
	}, eventTypes...)
}

func (r *recorder) events() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.seen...)
}

func TestInMemoryEventBus_Publish(t *testing.T) {
	ctx := context.Background()

	t.Run("routes by type", func(t *testing.T) {
		bus := NewInMemoryEventBus(zap.NewNop())
		var orders, inquiries recorder
		bus.Subscribe(orders.handler(nil, "OrderCreated"))
		bus.Subscribe(inquiries.handler(nil), "InquirySubmitted")

		require.NoError(t, bus.Publish(ctx, newTestEvent("OrderCreated"), newTestEvent("InquirySubmitted"), newTestEvent("OrderCreated")))

		assert.Equal(t, []string{"OrderCreated", "OrderCreated"}, orders.events())
		assert.Equal(t, []string{"InquirySubmitted"}, inquiries.events())
	})

	t.Run("wildcard receives everything", func(t *testing.T) {
		bus := NewInMemoryEventBus(nil)
		var all recorder
		bus.Subscribe(all.handler(nil))

		require.NoError(t, bus.Publish(ctx, newTestEvent("A"), newTestEvent("B")))
		assert.Equal(t, []string{"A", "B"}, all.events())
		assert.Equal(t, 1, bus.HandlerCount("anything"))
	})

	t.Run("handler error and panic are logged, not returned", func(t *testing.T) {
		core, logs := observer.New(zap.ErrorLevel)
		bus := NewInMemoryEventBus(zap.New(core))

		var failing, healthy recorder
		bus.Subscribe(failing.handler(errors.New("smtp down"), "OrderCreated"))
		bus.Subscribe(NewHandlerFunc(func(context.Context, shared.DomainEvent) error {
			panic("boom")
		}, "OrderCreated"))
		bus.Subscribe(healthy.handler(nil, "OrderCreated"))

		require.NoError(t, bus.Publish(ctx, newTestEvent("OrderCreated")))

		assert.Len(t, failing.events(), 1)
		assert.Len(t, healthy.events(), 1)
		assert.Equal(t, 2, logs.FilterMessage("event handler failed").Len())
	})
}

func TestInMemoryEventBus_Unsubscribe(t *testing.T) {
	ctx := context.Background()
	bus := NewInMemoryEventBus(zap.NewNop())

	var r recorder
	h := r.handler(nil, "OrderCreated", "OrderStatusChanged")
	bus.Subscribe(h)
	require.NoError(t, bus.Publish(ctx, newTestEvent("OrderCreated")))

	bus.Unsubscribe(h)
	require.NoError(t, bus.Publish(ctx, newTestEvent("OrderCreated"), newTestEvent("OrderStatusChanged")))

	assert.Equal(t, []string{"OrderCreated"}, r.events())
	assert.Zero(t, bus.HandlerCount("OrderStatusChanged"))
}

func TestInMemoryEventBus_StartStop(t *testing.T) {
	bus := NewInMemoryEventBus(zap.NewNop())
	require.NoError(t, bus.Start(context.Background()))
	require.NoError(t, bus.Stop(context.Background()))
}
