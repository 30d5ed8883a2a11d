package notification

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/uniformco/backoffice/internal/infrastructure/logger"
	"github.com/uniformco/backoffice/internal/infrastructure/telemetry"
)

type recordingSink struct {
	mu   sync.Mutex
	envs []Envelope
	err  error
}

func (s *recordingSink) Deliver(_ context.Context, env Envelope) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.envs = append(s.envs, env)
	return s.err
}

func (s *recordingSink) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.envs)
}

func TestDispatcher_DeliversAsynchronously(t *testing.T) {
	sink := &recordingSink{err: errors.New("provider down")}
	d := NewDispatcher(sink, DispatcherConfig{Workers: 3, QueueSize: 10}, zap.NewNop(), telemetry.NewMetrics())
	d.Start()

	ctx, _ := logger.WithRequestID(context.Background(), zap.NewNop(), "req-42")
	reqCtx, cancel := context.WithCancel(ctx)
	for i := 0; i < 5; i++ {
		d.Notify(reqCtx, EventInquirySubmitted, InquiryPayload{InquiryNumber: "INQ1"})
	}
	// the request finishing must not cancel delivery
	cancel()

	closeCtx, done := context.WithTimeout(context.Background(), 2*time.Second)
	defer done()
	require.NoError(t, d.Close(closeCtx))

	assert.Equal(t, 5, sink.count())
	assert.Equal(t, "req-42", sink.envs[0].RequestID)
	assert.Equal(t, EventInquirySubmitted, sink.envs[0].Event)
}

func TestDispatcher_DropsWhenFull(t *testing.T) {
	sink := &recordingSink{}
	d := NewDispatcher(sink, DispatcherConfig{Workers: 1, QueueSize: 1}, nil, nil)

	d.Notify(context.Background(), EventOrderCreated, OrderPayload{OrderNumber: "ORD1"})
	d.Notify(context.Background(), EventOrderCreated, OrderPayload{OrderNumber: "ORD2"})
	assert.Equal(t, 1, d.Pending())

	env := mustEnvelope(t, EventOrderCreated, OrderPayload{})
	assert.ErrorIs(t, d.Enqueue(context.Background(), env), ErrQueueFull)

	d.Start()
	require.NoError(t, d.Close(context.Background()))
	assert.Equal(t, 1, sink.count())
	assert.ErrorIs(t, d.Enqueue(context.Background(), env), ErrQueueClosed)

	// notify after close is a silent drop
	assert.NotPanics(t, func() { d.Notify(context.Background(), EventOrderCreated, OrderPayload{}) })
}

func TestDispatcher_UnencodablePayload(t *testing.T) {
	sink := &recordingSink{}
	d := NewDispatcher(sink, DispatcherConfig{}, nil, nil)
	d.Notify(context.Background(), EventOrderCreated, func() {})
	assert.Zero(t, d.Pending())
}

func TestMailer_Deliver(t *testing.T) {
	provider := &fakeProvider{failTo: map[string]bool{"sales@example.com": true}}
	m := NewMailer(testComposer(), provider, nil, telemetry.NewMetrics())

	err := m.Deliver(context.Background(), mustEnvelope(t, EventInquirySubmitted, InquiryPayload{
		InquiryNumber: "INQ1", CustomerName: "Acme", Email: "a@acme.edu",
	}))

	require.Error(t, err)
	assert.Contains(t, err.Error(), "sales@example.com")
	assert.Equal(t, []string{"a@acme.edu"}, provider.recipients())

	// events without recipients are not errors
	require.NoError(t, m.Deliver(context.Background(), mustEnvelope(t, EventInquiryAssigned, InquiryPayload{})))
}
