package trade

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/uniformco/backoffice/internal/domain/shared"
)

// Aggregate type constant
const AggregateTypeOrder = "Order"

// Event type constants
const (
	EventTypeOrderCreated         = "OrderCreated"
	EventTypeOrderStatusChanged   = "OrderStatusChanged"
	EventTypeOrderPaymentRecorded = "OrderPaymentRecorded"
	EventTypeOrderPaymentOverdue  = "OrderPaymentOverdue"
)

// OrderCreatedEvent is published once an order and its stock reservation are persisted
type OrderCreatedEvent struct {
	shared.BaseDomainEvent
	OrderID     uuid.UUID       `json:"order_id"`
	OrderNumber string          `json:"order_number"`
	CustomerID  uuid.UUID       `json:"customer_id"`
	ItemCount   int             `json:"item_count"`
	TotalAmount decimal.Decimal `json:"total_amount"`
}

// NewOrderCreatedEvent creates a new OrderCreatedEvent
func NewOrderCreatedEvent(o *Order) *OrderCreatedEvent {
	return &OrderCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeOrderCreated, AggregateTypeOrder, o.ID),
		OrderID:         o.ID,
		OrderNumber:     o.OrderNumber,
		CustomerID:      o.CustomerID,
		ItemCount:       len(o.Items),
		TotalAmount:     o.TotalAmount,
	}
}

// OrderStatusChangedEvent is published on every status transition
type OrderStatusChangedEvent struct {
	shared.BaseDomainEvent
	OrderID     uuid.UUID   `json:"order_id"`
	OrderNumber string      `json:"order_number"`
	CustomerID  uuid.UUID   `json:"customer_id"`
	OldStatus   OrderStatus `json:"old_status"`
	NewStatus   OrderStatus `json:"new_status"`
	ChangedBy   *uuid.UUID  `json:"changed_by,omitempty"`
}

// NewOrderStatusChangedEvent creates a new OrderStatusChangedEvent
func NewOrderStatusChangedEvent(o *Order, old OrderStatus, by *uuid.UUID) *OrderStatusChangedEvent {
	return &OrderStatusChangedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeOrderStatusChanged, AggregateTypeOrder, o.ID),
		OrderID:         o.ID,
		OrderNumber:     o.OrderNumber,
		CustomerID:      o.CustomerID,
		OldStatus:       old,
		NewStatus:       o.Status,
		ChangedBy:       by,
	}
}

// OrderPaymentRecordedEvent is published when a payment is added
type OrderPaymentRecordedEvent struct {
	shared.BaseDomainEvent
	OrderID     uuid.UUID       `json:"order_id"`
	OrderNumber string          `json:"order_number"`
	Amount      decimal.Decimal `json:"amount"`
	PaidAmount  decimal.Decimal `json:"paid_amount"`
	OldStatus   PaymentStatus   `json:"old_status"`
	NewStatus   PaymentStatus   `json:"new_status"`
}

// NewOrderPaymentRecordedEvent creates a new OrderPaymentRecordedEvent
func NewOrderPaymentRecordedEvent(o *Order, amount decimal.Decimal, old PaymentStatus) *OrderPaymentRecordedEvent {
	return &OrderPaymentRecordedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeOrderPaymentRecorded, AggregateTypeOrder, o.ID),
		OrderID:         o.ID,
		OrderNumber:     o.OrderNumber,
		Amount:          amount,
		PaidAmount:      o.PaidAmount,
		OldStatus:       old,
		NewStatus:       o.PaymentStatus,
	}
}

// OrderPaymentOverdueEvent is published when the overdue sweep flags an order
type OrderPaymentOverdueEvent struct {
	shared.BaseDomainEvent
	OrderID     uuid.UUID       `json:"order_id"`
	OrderNumber string          `json:"order_number"`
	CustomerID  uuid.UUID       `json:"customer_id"`
	Outstanding decimal.Decimal `json:"outstanding"`
}

// NewOrderPaymentOverdueEvent creates a new OrderPaymentOverdueEvent
func NewOrderPaymentOverdueEvent(o *Order) *OrderPaymentOverdueEvent {
	return &OrderPaymentOverdueEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeOrderPaymentOverdue, AggregateTypeOrder, o.ID),
		OrderID:         o.ID,
		OrderNumber:     o.OrderNumber,
		CustomerID:      o.CustomerID,
		Outstanding:     o.Outstanding(),
	}
}
