// Package notification delivers transactional email for lifecycle events.
// Delivery is best-effort: callers enqueue and move on, failures are logged
// and counted but never returned to the operation that triggered them.
package notification

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
)

// Event names
const (
	EventInquirySubmitted    = "inquiry.submitted"
	EventInquiryAssigned     = "inquiry.assigned"
	EventInquiryConverted    = "inquiry.converted"
	EventInquiryFollowUpDue  = "inquiry.follow_up_due"
	EventOrderCreated        = "order.created"
	EventOrderStatusChanged  = "order.status_changed"
	EventOrderPaymentOverdue = "order.payment_overdue"
	EventProductLowStock     = "product.low_stock"
)

var (
	ErrUnknownEvent = errors.New("unknown notification event")
	ErrNoRecipients = errors.New("notification has no recipients")
	ErrQueueClosed  = errors.New("notification queue is closed")
)

// Sender is the fire-and-forget entry point used by application services
type Sender interface {
	Notify(ctx context.Context, event string, payload any)
}

// Envelope is the unit queued in process or published to the broker
type Envelope struct {
	ID        uuid.UUID       `json:"id"`
	Event     string          `json:"event"`
	Payload   json.RawMessage `json:"payload"`
	RequestID string          `json:"request_id,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
}

// NewEnvelope marshals payload into a new envelope
func NewEnvelope(event string, payload any) (Envelope, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return Envelope{}, err
	}
	return Envelope{
		ID:        uuid.New(),
		Event:     event,
		Payload:   raw,
		CreatedAt: time.Now().UTC(),
	}, nil
}

// Message is one rendered email to one recipient
type Message struct {
	To       string
	Subject  string
	Text     string
	HTML     string
	ReplyTo  string
	Event    string
	Envelope uuid.UUID
}

// Provider sends rendered messages
type Provider interface {
	Send(ctx context.Context, msg *Message) error
	Name() string
}

// NopSender discards every notification
type NopSender struct{}

// Notify does nothing
func (NopSender) Notify(context.Context, string, any) {}
