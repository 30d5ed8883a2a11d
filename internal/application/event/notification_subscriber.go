// Package event wires domain events to their side effects outside the
// aggregate: outbound notifications and report cache invalidation.
package event

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/uniformco/backoffice/internal/domain/catalog"
	"github.com/uniformco/backoffice/internal/domain/identity"
	"github.com/uniformco/backoffice/internal/domain/partner"
	"github.com/uniformco/backoffice/internal/domain/sales"
	"github.com/uniformco/backoffice/internal/domain/shared"
	"github.com/uniformco/backoffice/internal/domain/trade"
	"github.com/uniformco/backoffice/internal/infrastructure/notification"
)

// CacheInvalidator drops derived read models after a write
type CacheInvalidator interface {
	Invalidate(ctx context.Context)
}

// NotificationSubscriber maps domain events to notification payloads.
// Lookups that fail only thin out the payload; nothing here fails the
// operation that raised the event.
type NotificationSubscriber struct {
	sender    notification.Sender
	inquiries sales.InquiryRepository
	customers partner.CustomerRepository
	orders    trade.OrderRepository
	users     identity.UserRepository
	reports   CacheInvalidator
	logger    *zap.Logger
}

// NewNotificationSubscriber creates a new NotificationSubscriber. reports may be nil.
func NewNotificationSubscriber(
	sender notification.Sender,
	inquiries sales.InquiryRepository,
	customers partner.CustomerRepository,
	orders trade.OrderRepository,
	users identity.UserRepository,
	reports CacheInvalidator,
	logger *zap.Logger,
) *NotificationSubscriber {
	if sender == nil {
		sender = notification.NopSender{}
	}
	return &NotificationSubscriber{
		sender:    sender,
		inquiries: inquiries,
		customers: customers,
		orders:    orders,
		users:     users,
		reports:   reports,
		logger:    logger,
	}
}

// EventTypes implements shared.EventHandler
func (s *NotificationSubscriber) EventTypes() []string {
	return []string{
		sales.EventTypeInquirySubmitted,
		sales.EventTypeInquiryStatusChanged,
		sales.EventTypeInquiryAssigned,
		sales.EventTypeInquiryConverted,
		sales.EventTypeInquiryFollowUpDue,
		trade.EventTypeOrderCreated,
		trade.EventTypeOrderStatusChanged,
		trade.EventTypeOrderPaymentRecorded,
		trade.EventTypeOrderPaymentOverdue,
		catalog.EventTypeProductCreated,
		catalog.EventTypeProductStockChanged,
		catalog.EventTypeProductLowStock,
		partner.EventTypeCustomerCreated,
		partner.EventTypeCustomerStatusChanged,
	}
}

// Register subscribes the handler on bus
func (s *NotificationSubscriber) Register(bus shared.EventSubscriber) {
	bus.Subscribe(s)
}

// Handle implements shared.EventHandler
func (s *NotificationSubscriber) Handle(ctx context.Context, event shared.DomainEvent) error {
	// follow-up reminders are reads, everything else changes a report input
	if s.reports != nil && event.EventType() != sales.EventTypeInquiryFollowUpDue {
		s.reports.Invalidate(ctx)
	}

	switch e := event.(type) {
	case *sales.InquirySubmittedEvent:
		s.sender.Notify(ctx, notification.EventInquirySubmitted, s.inquiryPayload(ctx, e.InquiryID))
	case *sales.InquiryAssignedEvent:
		s.sender.Notify(ctx, notification.EventInquiryAssigned, s.inquiryPayload(ctx, e.InquiryID))
	case *sales.InquiryConvertedEvent:
		p := s.inquiryPayload(ctx, e.InquiryID)
		p.CustomerID = e.CustomerID.String()
		s.sender.Notify(ctx, notification.EventInquiryConverted, p)
	case *sales.InquiryFollowUpDueEvent:
		s.sender.Notify(ctx, notification.EventInquiryFollowUpDue, s.inquiryPayload(ctx, e.InquiryID))
	case *trade.OrderCreatedEvent:
		s.sender.Notify(ctx, notification.EventOrderCreated, s.orderPayload(ctx, e.OrderID))
	case *trade.OrderStatusChangedEvent:
		if e.NewStatus == trade.OrderStatusDraft {
			return nil
		}
		p := s.orderPayload(ctx, e.OrderID)
		p.OldStatus = string(e.OldStatus)
		p.NewStatus = string(e.NewStatus)
		s.sender.Notify(ctx, notification.EventOrderStatusChanged, p)
	case *trade.OrderPaymentOverdueEvent:
		s.sender.Notify(ctx, notification.EventOrderPaymentOverdue, s.orderPayload(ctx, e.OrderID))
	case *catalog.ProductLowStockEvent:
		s.sender.Notify(ctx, notification.EventProductLowStock, notification.StockPayload{
			ProductID:     e.ProductID.String(),
			Code:          e.Code,
			Name:          e.Name,
			StockQuantity: e.Quantity,
			MinStockLevel: e.ReorderLevel,
		})
	}
	return nil
}

func (s *NotificationSubscriber) inquiryPayload(ctx context.Context, id uuid.UUID) notification.InquiryPayload {
	p := notification.InquiryPayload{InquiryID: id.String()}
	i, err := s.inquiries.FindByID(ctx, id)
	if err != nil {
		s.logger.Warn("Notification lookup failed", zap.String("inquiry_id", id.String()), zap.Error(err))
		return p
	}
	p.InquiryNumber = i.InquiryNumber
	p.CustomerName = i.CustomerName
	p.Email = i.Email
	p.Phone = i.Phone
	p.Company = i.Company
	p.UniformType = i.UniformType
	p.Quantity = i.Quantity
	p.Requirements = i.Requirements.Description
	p.Source = string(i.Source)
	p.FollowUpDate = i.NextFollowUp
	p.FollowUpNotes = i.FollowUpNotes
	p.AssigneeName, p.AssigneeEmail = s.assignee(ctx, i.AssignedTo)
	return p
}

func (s *NotificationSubscriber) orderPayload(ctx context.Context, id uuid.UUID) notification.OrderPayload {
	p := notification.OrderPayload{OrderID: id.String()}
	o, err := s.orders.FindByID(ctx, id)
	if err != nil {
		s.logger.Warn("Notification lookup failed", zap.String("order_id", id.String()), zap.Error(err))
		return p
	}
	p.OrderNumber = o.OrderNumber
	p.ItemCount = len(o.Items)
	p.TotalAmount = o.TotalAmount
	p.PaidAmount = o.PaidAmount
	p.NewStatus = string(o.Status)
	p.DeliveryDate = o.ExpectedDeliveryDate
	p.PaymentDue = o.PaymentDueDate
	_, p.AssigneeEmail = s.assignee(ctx, o.AssignedTo)

	c, err := s.customers.FindByID(ctx, o.CustomerID)
	if err != nil {
		s.logger.Warn("Notification lookup failed", zap.String("customer_id", o.CustomerID.String()), zap.Error(err))
		return p
	}
	p.CustomerName = c.Name
	p.CustomerEmail = c.Email
	return p
}

func (s *NotificationSubscriber) assignee(ctx context.Context, id *uuid.UUID) (name, email string) {
	if id == nil || s.users == nil {
		return "", ""
	}
	u, err := s.users.FindByID(ctx, *id)
	if err != nil {
		s.logger.Debug("Assignee lookup failed", zap.String("user_id", id.String()), zap.Error(err))
		return "", ""
	}
	if !u.IsActive {
		return u.DisplayName, ""
	}
	return u.DisplayName, u.Email
}
