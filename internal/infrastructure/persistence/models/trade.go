package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/uniformco/backoffice/internal/domain/shared"
	"github.com/uniformco/backoffice/internal/domain/trade"
)

// OrderModel is the persistence model for the Order aggregate root.
// Items, history and notes live in child tables.
type OrderModel struct {
	AggregateModel
	OrderNumber          string              `gorm:"type:varchar(30);not null;uniqueIndex"`
	Type                 trade.OrderType     `gorm:"type:varchar(20);not null;default:'order'"`
	Status               trade.OrderStatus   `gorm:"type:varchar(20);not null;default:'draft';index"`
	CustomerID           uuid.UUID           `gorm:"type:uuid;not null;index"`
	InquiryID            *uuid.UUID          `gorm:"type:uuid;index"`
	Subtotal             decimal.Decimal     `gorm:"type:decimal(18,2);not null;default:0"`
	Tax                  decimal.Decimal     `gorm:"type:decimal(18,2);not null;default:0"`
	Discount             decimal.Decimal     `gorm:"type:decimal(18,2);not null;default:0"`
	ShippingCost         decimal.Decimal     `gorm:"type:decimal(18,2);not null;default:0"`
	TotalAmount          decimal.Decimal     `gorm:"type:decimal(18,2);not null;default:0"`
	PaymentStatus        trade.PaymentStatus `gorm:"type:varchar(20);not null;default:'pending';index"`
	PaidAmount           decimal.Decimal     `gorm:"type:decimal(18,2);not null;default:0"`
	PaymentDueDate       *time.Time          `gorm:"index"`
	DeliveryAddress      AddressColumns      `gorm:"embedded;embeddedPrefix:delivery_"`
	ExpectedDeliveryDate *time.Time
	ProductionStartDate  *time.Time
	ActualCompletionDate *time.Time
	ActualDeliveryDate   *time.Time
	QCPerformed          bool       `gorm:"column:qc_performed;not null;default:false"`
	QCPassed             bool       `gorm:"column:qc_passed;not null;default:false"`
	QCCheckedBy          *uuid.UUID `gorm:"column:qc_checked_by;type:uuid"`
	QCCheckedAt          *time.Time `gorm:"column:qc_checked_at"`
	QCNotes              string     `gorm:"column:qc_notes;type:text"`
	StockReserved        bool       `gorm:"not null;default:false"`
	AssignedTo           *uuid.UUID `gorm:"type:uuid;index"`
	CreatedBy            *uuid.UUID `gorm:"type:uuid;index"`
	CancellationReason   string     `gorm:"type:text"`
}

// TableName returns the table name for GORM
func (OrderModel) TableName() string {
	return "orders"
}

// ToDomain converts the persistence model to a domain Order. Child rows are attached by the repository.
func (m *OrderModel) ToDomain() *trade.Order {
	o := &trade.Order{
		BaseAggregateRoot:    m.AggregateRoot(),
		OrderNumber:          m.OrderNumber,
		Type:                 m.Type,
		Status:               m.Status,
		CustomerID:           m.CustomerID,
		InquiryID:            m.InquiryID,
		Items:                []trade.OrderItem{},
		Subtotal:             m.Subtotal,
		Tax:                  m.Tax,
		Discount:             m.Discount,
		ShippingCost:         m.ShippingCost,
		TotalAmount:          m.TotalAmount,
		PaymentStatus:        m.PaymentStatus,
		PaidAmount:           m.PaidAmount,
		PaymentDueDate:       m.PaymentDueDate,
		DeliveryAddress:      m.DeliveryAddress.ToDomain(),
		ExpectedDeliveryDate: m.ExpectedDeliveryDate,
		ProductionStartDate:  m.ProductionStartDate,
		ActualCompletionDate: m.ActualCompletionDate,
		ActualDeliveryDate:   m.ActualDeliveryDate,
		StatusHistory:        []trade.StatusChange{},
		Notes:                []shared.Note{},
		StockReserved:        m.StockReserved,
		AssignedTo:           m.AssignedTo,
		CreatedBy:            m.CreatedBy,
		CancellationReason:   m.CancellationReason,
	}
	if m.QCPerformed {
		qc := &trade.QualityCheck{Passed: m.QCPassed, CheckedBy: m.QCCheckedBy, Notes: m.QCNotes}
		if m.QCCheckedAt != nil {
			qc.CheckedAt = *m.QCCheckedAt
		}
		o.QualityCheck = qc
	}
	return o
}

// OrderModelFromDomain creates a persistence model from a domain Order
func OrderModelFromDomain(o *trade.Order) *OrderModel {
	m := &OrderModel{
		OrderNumber:          o.OrderNumber,
		Type:                 o.Type,
		Status:               o.Status,
		CustomerID:           o.CustomerID,
		InquiryID:            o.InquiryID,
		Subtotal:             o.Subtotal,
		Tax:                  o.Tax,
		Discount:             o.Discount,
		ShippingCost:         o.ShippingCost,
		TotalAmount:          o.TotalAmount,
		PaymentStatus:        o.PaymentStatus,
		PaidAmount:           o.PaidAmount,
		PaymentDueDate:       o.PaymentDueDate,
		DeliveryAddress:      AddressColumnsFromDomain(o.DeliveryAddress),
		ExpectedDeliveryDate: o.ExpectedDeliveryDate,
		ProductionStartDate:  o.ProductionStartDate,
		ActualCompletionDate: o.ActualCompletionDate,
		ActualDeliveryDate:   o.ActualDeliveryDate,
		StockReserved:        o.StockReserved,
		AssignedTo:           o.AssignedTo,
		CreatedBy:            o.CreatedBy,
		CancellationReason:   o.CancellationReason,
	}
	if qc := o.QualityCheck; qc != nil {
		at := qc.CheckedAt
		m.QCPerformed = true
		m.QCPassed = qc.Passed
		m.QCCheckedBy = qc.CheckedBy
		m.QCCheckedAt = &at
		m.QCNotes = qc.Notes
	}
	m.FromDomainAggregateRoot(o.BaseAggregateRoot)
	return m
}

// OrderItemModel is one order line
type OrderItemModel struct {
	ID            uuid.UUID       `gorm:"type:uuid;primaryKey"`
	OrderID       uuid.UUID       `gorm:"type:uuid;not null;index"`
	Position      int             `gorm:"not null;default:0"`
	ProductID     uuid.UUID       `gorm:"type:uuid;not null;index"`
	ProductCode   string          `gorm:"type:varchar(30)"`
	ProductName   string          `gorm:"type:varchar(200)"`
	Quantity      int             `gorm:"not null"`
	UnitPrice     decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	TotalPrice    decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	Customization string          `gorm:"type:text"`
	Notes         string          `gorm:"type:text"`
}

// TableName returns the table name for GORM
func (OrderItemModel) TableName() string {
	return "order_items"
}

// OrderItemModelsFromDomain converts order lines, keeping their position
func OrderItemModelsFromDomain(orderID uuid.UUID, items []trade.OrderItem) []OrderItemModel {
	out := make([]OrderItemModel, len(items))
	for i, it := range items {
		out[i] = OrderItemModel{
			ID:            it.ID,
			OrderID:       orderID,
			Position:      i,
			ProductID:     it.ProductID,
			ProductCode:   it.ProductCode,
			ProductName:   it.ProductName,
			Quantity:      it.Quantity,
			UnitPrice:     it.UnitPrice,
			TotalPrice:    it.TotalPrice,
			Customization: it.Customization,
			Notes:         it.Notes,
		}
	}
	return out
}

// ToDomain converts the persistence model to a domain order item
func (m OrderItemModel) ToDomain() trade.OrderItem {
	return trade.OrderItem{
		ID:            m.ID,
		ProductID:     m.ProductID,
		ProductCode:   m.ProductCode,
		ProductName:   m.ProductName,
		Quantity:      m.Quantity,
		UnitPrice:     m.UnitPrice,
		TotalPrice:    m.TotalPrice,
		Customization: m.Customization,
		Notes:         m.Notes,
	}
}

// OrderStatusChangeModel is one status history entry
type OrderStatusChangeModel struct {
	ID        uuid.UUID         `gorm:"type:uuid;primaryKey"`
	OrderID   uuid.UUID         `gorm:"type:uuid;not null;index"`
	Status    trade.OrderStatus `gorm:"type:varchar(20);not null"`
	ChangedBy *uuid.UUID        `gorm:"type:uuid"`
	ChangedAt time.Time         `gorm:"not null"`
	Notes     string            `gorm:"type:text"`
}

// TableName returns the table name for GORM
func (OrderStatusChangeModel) TableName() string {
	return "order_status_history"
}

// StatusChangeModelsFromDomain converts the history of an order
func StatusChangeModelsFromDomain(orderID uuid.UUID, history []trade.StatusChange) []OrderStatusChangeModel {
	out := make([]OrderStatusChangeModel, len(history))
	for i, h := range history {
		out[i] = OrderStatusChangeModel{
			ID:        h.ID,
			OrderID:   orderID,
			Status:    h.Status,
			ChangedBy: h.ChangedBy,
			ChangedAt: h.ChangedAt,
			Notes:     h.Notes,
		}
	}
	return out
}

// ToDomain converts the persistence model to a domain history entry
func (m OrderStatusChangeModel) ToDomain() trade.StatusChange {
	return trade.StatusChange{
		ID:        m.ID,
		Status:    m.Status,
		ChangedBy: m.ChangedBy,
		ChangedAt: m.ChangedAt,
		Notes:     m.Notes,
	}
}
