package trade

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/uniformco/backoffice/internal/domain/shared"
)

// OrderStatus represents the production status of an order
type OrderStatus string

const (
	OrderStatusDraft        OrderStatus = "draft"
	OrderStatusPending      OrderStatus = "pending"
	OrderStatusConfirmed    OrderStatus = "confirmed"
	OrderStatusInProduction OrderStatus = "in-production"
	OrderStatusReady        OrderStatus = "ready"
	OrderStatusDelivered    OrderStatus = "delivered"
	OrderStatusCancelled    OrderStatus = "cancelled"
)

// AllOrderStatuses lists every status in lifecycle order
func AllOrderStatuses() []OrderStatus {
	return []OrderStatus{
		OrderStatusDraft, OrderStatusPending, OrderStatusConfirmed, OrderStatusInProduction,
		OrderStatusReady, OrderStatusDelivered, OrderStatusCancelled,
	}
}

// IsValid checks if the status is a valid OrderStatus
func (s OrderStatus) IsValid() bool {
	for _, v := range AllOrderStatuses() {
		if s == v {
			return true
		}
	}
	return false
}

// String returns the string representation of OrderStatus
func (s OrderStatus) String() string {
	return string(s)
}

// IsTerminal reports whether no further transitions are possible
func (s OrderStatus) IsTerminal() bool {
	return s == OrderStatusDelivered || s == OrderStatusCancelled
}

// CanTransitionTo checks if the status can transition to the target status
func (s OrderStatus) CanTransitionTo(target OrderStatus) bool {
	if s.IsTerminal() {
		return false
	}
	if target == OrderStatusCancelled {
		return true
	}
	switch s {
	case OrderStatusDraft:
		return target == OrderStatusPending
	case OrderStatusPending:
		return target == OrderStatusConfirmed
	case OrderStatusConfirmed:
		return target == OrderStatusInProduction
	case OrderStatusInProduction:
		return target == OrderStatusReady
	case OrderStatusReady:
		return target == OrderStatusDelivered || target == OrderStatusInProduction
	}
	return false
}

// OrderType distinguishes quotes and samples from regular orders
type OrderType string

const (
	OrderTypeQuote  OrderType = "quote"
	OrderTypeOrder  OrderType = "order"
	OrderTypeSample OrderType = "sample"
)

// IsValid checks if the order type is valid
func (t OrderType) IsValid() bool {
	return t == OrderTypeQuote || t == OrderTypeOrder || t == OrderTypeSample
}

// PaymentStatus is derived from PaidAmount and TotalAmount
type PaymentStatus string

const (
	PaymentStatusPending PaymentStatus = "pending"
	PaymentStatusPartial PaymentStatus = "partial"
	PaymentStatusPaid    PaymentStatus = "paid"
	PaymentStatusOverdue PaymentStatus = "overdue"
)

// IsValid checks if the payment status is valid
func (p PaymentStatus) IsValid() bool {
	switch p {
	case PaymentStatusPending, PaymentStatusPartial, PaymentStatusPaid, PaymentStatusOverdue:
		return true
	}
	return false
}

// DerivePaymentStatus applies the paid/partial/pending rule
func DerivePaymentStatus(paid, total decimal.Decimal) PaymentStatus {
	switch {
	case paid.GreaterThanOrEqual(total):
		return PaymentStatusPaid
	case paid.IsPositive():
		return PaymentStatusPartial
	default:
		return PaymentStatusPending
	}
}

// StatusChange is one entry of the order's status history
type StatusChange struct {
	ID        uuid.UUID
	Status    OrderStatus
	ChangedBy *uuid.UUID
	ChangedAt time.Time
	Notes     string
}

// QualityCheck records the outcome of the pre-dispatch inspection
type QualityCheck struct {
	Passed    bool
	CheckedBy *uuid.UUID
	CheckedAt time.Time
	Notes     string
}

// Charges are the order-level amounts added to or taken off the subtotal
type Charges struct {
	Tax          decimal.Decimal
	Discount     decimal.Decimal
	ShippingCost decimal.Decimal
}

// Order is a quote, sample or production order for a customer
type Order struct {
	shared.BaseAggregateRoot
	OrderNumber          string
	Type                 OrderType
	Status               OrderStatus
	CustomerID           uuid.UUID
	InquiryID            *uuid.UUID
	Items                []OrderItem
	Subtotal             decimal.Decimal
	Tax                  decimal.Decimal
	Discount             decimal.Decimal
	ShippingCost         decimal.Decimal
	TotalAmount          decimal.Decimal
	PaymentStatus        PaymentStatus
	PaidAmount           decimal.Decimal
	PaymentDueDate       *time.Time
	DeliveryAddress      shared.Address
	ExpectedDeliveryDate *time.Time
	ProductionStartDate  *time.Time
	ActualCompletionDate *time.Time
	ActualDeliveryDate   *time.Time
	StatusHistory        []StatusChange
	Notes                []shared.Note
	QualityCheck         *QualityCheck
	StockReserved        bool
	AssignedTo           *uuid.UUID
	CreatedBy            *uuid.UUID
	CancellationReason   string
}

// NewOrder creates a draft order with an initial history entry
func NewOrder(orderNumber string, orderType OrderType, customerID uuid.UUID, createdBy *uuid.UUID) (*Order, error) {
	if orderNumber == "" {
		return nil, shared.NewValidationError("order_number", "REQUIRED", "Order number cannot be empty")
	}
	if customerID == uuid.Nil {
		return nil, shared.NewValidationError("customer_id", "REQUIRED", "Customer ID cannot be empty")
	}
	if orderType == "" {
		orderType = OrderTypeOrder
	}
	if !orderType.IsValid() {
		return nil, shared.NewValidationError("type", "INVALID_ORDER_TYPE", "Order type must be quote, order or sample")
	}

	o := &Order{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		OrderNumber:       orderNumber,
		Type:              orderType,
		Status:            OrderStatusDraft,
		CustomerID:        customerID,
		Items:             make([]OrderItem, 0),
		Subtotal:          decimal.Zero,
		Tax:               decimal.Zero,
		Discount:          decimal.Zero,
		ShippingCost:      decimal.Zero,
		TotalAmount:       decimal.Zero,
		PaymentStatus:     PaymentStatusPending,
		PaidAmount:        decimal.Zero,
		Notes:             make([]shared.Note, 0),
		CreatedBy:         createdBy,
		AssignedTo:        createdBy,
	}
	o.StatusHistory = []StatusChange{{
		ID:        uuid.New(),
		Status:    OrderStatusDraft,
		ChangedBy: createdBy,
		ChangedAt: o.CreatedAt,
		Notes:     "Order created",
	}}
	return o, nil
}

// AddItem appends a line and recalculates totals. Only draft orders accept new items.
func (o *Order) AddItem(line OrderLine) (*OrderItem, error) {
	if o.Status != OrderStatusDraft {
		return nil, shared.NewConflictError("ORDER_NOT_DRAFT", "Items can only be changed on draft orders")
	}
	item, err := NewOrderItem(line)
	if err != nil {
		return nil, err
	}
	o.Items = append(o.Items, item)
	o.CalculateTotals()
	o.Touch()
	return &o.Items[len(o.Items)-1], nil
}

// RemoveItem drops a line from a draft order and returns it so its stock can be released
func (o *Order) RemoveItem(itemID uuid.UUID) (OrderItem, error) {
	if o.Status != OrderStatusDraft {
		return OrderItem{}, shared.NewConflictError("ORDER_NOT_DRAFT", "Items can only be changed on draft orders")
	}
	for i, item := range o.Items {
		if item.ID == itemID {
			o.Items = append(o.Items[:i], o.Items[i+1:]...)
			o.CalculateTotals()
			o.Touch()
			return item, nil
		}
	}
	return OrderItem{}, shared.NewNotFoundError("ITEM_NOT_FOUND", "Order item not found")
}

// SetCharges replaces tax, discount and shipping and recalculates totals
func (o *Order) SetCharges(c Charges) error {
	if o.Status.IsTerminal() {
		return shared.NewConflictError("ORDER_CLOSED", fmt.Sprintf("Cannot change charges of a %s order", o.Status))
	}
	if c.Tax.IsNegative() {
		return shared.NewValidationError("tax", "INVALID_AMOUNT", "Tax cannot be negative")
	}
	if c.Discount.IsNegative() {
		return shared.NewValidationError("discount", "INVALID_AMOUNT", "Discount cannot be negative")
	}
	if c.ShippingCost.IsNegative() {
		return shared.NewValidationError("shipping_cost", "INVALID_AMOUNT", "Shipping cost cannot be negative")
	}
	o.Tax = c.Tax
	o.Discount = c.Discount
	o.ShippingCost = c.ShippingCost
	o.CalculateTotals()
	o.Touch()
	return nil
}

// CalculateTotals recomputes subtotal and total from the items and charges.
// Payment status is re-derived unless the order is flagged overdue and still unpaid.
func (o *Order) CalculateTotals() {
	subtotal := decimal.Zero
	for _, item := range o.Items {
		subtotal = subtotal.Add(item.TotalPrice)
	}
	o.Subtotal = subtotal
	o.TotalAmount = subtotal.Add(o.Tax).Add(o.ShippingCost).Sub(o.Discount)
	if o.PaymentStatus != PaymentStatusOverdue || o.PaidAmount.GreaterThanOrEqual(o.TotalAmount) {
		o.PaymentStatus = DerivePaymentStatus(o.PaidAmount, o.TotalAmount)
	}
}

// UpdatePayment records a payment and re-derives the payment status
func (o *Order) UpdatePayment(amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return shared.NewValidationError("amount", "INVALID_AMOUNT", "Payment amount must be positive")
	}
	if o.Status == OrderStatusCancelled {
		return shared.NewConflictError("ORDER_CANCELLED", "Cannot record payment on a cancelled order")
	}
	old := o.PaymentStatus
	o.PaidAmount = o.PaidAmount.Add(amount)
	o.PaymentStatus = DerivePaymentStatus(o.PaidAmount, o.TotalAmount)
	o.Touch()
	o.AddDomainEvent(NewOrderPaymentRecordedEvent(o, amount, old))
	return nil
}

// SetPaymentDueDate sets the date after which an unpaid order counts as overdue
func (o *Order) SetPaymentDueDate(due *time.Time) {
	o.PaymentDueDate = due
	o.Touch()
}

// MarkOverdue flags an unpaid order whose due date has passed. Returns false when nothing changed.
func (o *Order) MarkOverdue(now time.Time) bool {
	if o.Status == OrderStatusCancelled || o.PaymentDueDate == nil || !now.After(*o.PaymentDueDate) {
		return false
	}
	if o.PaymentStatus == PaymentStatusPaid || o.PaymentStatus == PaymentStatusOverdue {
		return false
	}
	o.PaymentStatus = PaymentStatusOverdue
	o.Touch()
	o.AddDomainEvent(NewOrderPaymentOverdueEvent(o))
	return true
}

// UpdateStatus moves the order along its lifecycle, appending history and stamping milestones once
func (o *Order) UpdateStatus(status OrderStatus, actorID *uuid.UUID, notes string) error {
	if !status.IsValid() {
		return shared.NewValidationError("status", "INVALID_STATUS", "Invalid order status")
	}
	if !o.Status.CanTransitionTo(status) {
		return shared.NewConflictError("INVALID_STATE", fmt.Sprintf("Cannot change order status from %s to %s", o.Status, status))
	}
	if status == OrderStatusDelivered && o.QualityCheck != nil && !o.QualityCheck.Passed {
		return shared.NewConflictError("QUALITY_CHECK_FAILED", "Order failed quality check and cannot be delivered")
	}

	now := time.Now()
	old := o.Status
	o.Status = status
	switch status {
	case OrderStatusInProduction:
		if o.ProductionStartDate == nil {
			o.ProductionStartDate = &now
		}
	case OrderStatusReady:
		if o.ActualCompletionDate == nil {
			o.ActualCompletionDate = &now
		}
	case OrderStatusDelivered:
		if o.ActualDeliveryDate == nil {
			o.ActualDeliveryDate = &now
		}
	case OrderStatusCancelled:
		o.CancellationReason = strings.TrimSpace(notes)
	}
	o.StatusHistory = append(o.StatusHistory, StatusChange{
		ID:        uuid.New(),
		Status:    status,
		ChangedBy: actorID,
		ChangedAt: now,
		Notes:     strings.TrimSpace(notes),
	})
	o.UpdatedAt = now
	o.AddDomainEvent(NewOrderStatusChangedEvent(o, old, actorID))
	return nil
}

// RecordQualityCheck stores the inspection result
func (o *Order) RecordQualityCheck(passed bool, checkedBy *uuid.UUID, notes string) error {
	if o.Status != OrderStatusInProduction && o.Status != OrderStatusReady {
		return shared.NewConflictError("INVALID_STATE", "Quality check is only possible during production or when ready")
	}
	o.QualityCheck = &QualityCheck{
		Passed:    passed,
		CheckedBy: checkedBy,
		CheckedAt: time.Now(),
		Notes:     strings.TrimSpace(notes),
	}
	o.Touch()
	return nil
}

// AddNote appends a note
func (o *Order) AddNote(content string, authorID *uuid.UUID, internal bool) (*shared.Note, error) {
	note, err := shared.NewNote(content, authorID, internal)
	if err != nil {
		return nil, err
	}
	o.Notes = append(o.Notes, note)
	o.Touch()
	return &o.Notes[len(o.Notes)-1], nil
}

// AssignTo hands the order to a staff member
func (o *Order) AssignTo(userID uuid.UUID) error {
	if userID == uuid.Nil {
		return shared.NewValidationError("assigned_to", "REQUIRED", "Assignee cannot be empty")
	}
	o.AssignedTo = &userID
	o.Touch()
	return nil
}

// UpdateDelivery sets the delivery address and expected date
func (o *Order) UpdateDelivery(addr shared.Address, expected *time.Time) error {
	if o.Status.IsTerminal() {
		return shared.NewConflictError("ORDER_CLOSED", fmt.Sprintf("Cannot change delivery of a %s order", o.Status))
	}
	o.DeliveryAddress = addr.Trimmed()
	o.ExpectedDeliveryDate = expected
	o.Touch()
	return nil
}

// MarkStockReserved records that item quantities were taken from stock
func (o *Order) MarkStockReserved() {
	o.StockReserved = true
}

// TakeStockRelease returns the per-product quantities to put back and clears the reservation,
// so stock is restored at most once.
func (o *Order) TakeStockRelease() map[uuid.UUID]int {
	if !o.StockReserved {
		return nil
	}
	o.StockReserved = false
	return o.ReservedQuantities()
}

// ReservedQuantities sums item quantities per product
func (o *Order) ReservedQuantities() map[uuid.UUID]int {
	out := make(map[uuid.UUID]int, len(o.Items))
	for _, item := range o.Items {
		out[item.ProductID] += item.Quantity
	}
	return out
}

// CanDelete returns an error unless the order is still a draft
func (o *Order) CanDelete() error {
	if o.Status != OrderStatusDraft {
		return shared.NewConflictError("ORDER_NOT_DRAFT", fmt.Sprintf("Only draft orders can be deleted, order is %s", o.Status))
	}
	return nil
}

// Outstanding is the amount still owed
func (o *Order) Outstanding() decimal.Decimal {
	rest := o.TotalAmount.Sub(o.PaidAmount)
	if rest.IsNegative() {
		return decimal.Zero
	}
	return rest
}

// TotalQuantity sums the item quantities
func (o *Order) TotalQuantity() int {
	n := 0
	for _, item := range o.Items {
		n += item.Quantity
	}
	return n
}
