package trade

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/uniformco/backoffice/internal/domain/shared"
	"github.com/uniformco/backoffice/internal/domain/trade"
)

// ==================== Order Request DTOs ====================

// OrderItemInput is one requested order line. UnitPrice defaults to the
// product's price for the quantity.
type OrderItemInput struct {
	ProductID     uuid.UUID        `json:"product_id" binding:"required"`
	Quantity      int              `json:"quantity" binding:"required,min=1"`
	UnitPrice     *decimal.Decimal `json:"unit_price" binding:"omitempty,decimal_gte0"`
	Customization string           `json:"customization" binding:"max=1000"`
	Notes         string           `json:"notes" binding:"max=1000"`
}

// AddressInput is a delivery address in requests
type AddressInput struct {
	Street     string `json:"street" binding:"max=200"`
	City       string `json:"city" binding:"max=100"`
	State      string `json:"state" binding:"max=100"`
	PostalCode string `json:"postal_code" binding:"max=20"`
	Country    string `json:"country" binding:"max=100"`
}

// ToAddress converts the input to the domain value
func (a AddressInput) ToAddress() shared.Address {
	return shared.Address{
		Street:     a.Street,
		City:       a.City,
		State:      a.State,
		PostalCode: a.PostalCode,
		Country:    a.Country,
	}
}

// CreateOrderRequest represents a request to create an order
type CreateOrderRequest struct {
	CustomerID           uuid.UUID        `json:"customer_id" binding:"required"`
	InquiryID            *uuid.UUID       `json:"inquiry_id"`
	Type                 string           `json:"type" binding:"omitempty,oneof=quote order sample"`
	Items                []OrderItemInput `json:"items" binding:"required,min=1,max=100,dive"`
	Tax                  decimal.Decimal  `json:"tax" binding:"decimal_gte0"`
	Discount             decimal.Decimal  `json:"discount" binding:"decimal_gte0"`
	ShippingCost         decimal.Decimal  `json:"shipping_cost" binding:"decimal_gte0"`
	DeliveryAddress      *AddressInput    `json:"delivery_address"`
	ExpectedDeliveryDate *time.Time       `json:"expected_delivery_date"`
	PaymentDueDate       *time.Time       `json:"payment_due_date"`
	Notes                string           `json:"notes" binding:"max=2000"`
	AssignedTo           *uuid.UUID       `json:"assigned_to"`
}

// UpdateOrderRequest changes charges, delivery details and the payment due date
type UpdateOrderRequest struct {
	Tax                  *decimal.Decimal `json:"tax" binding:"omitempty,decimal_gte0"`
	Discount             *decimal.Decimal `json:"discount" binding:"omitempty,decimal_gte0"`
	ShippingCost         *decimal.Decimal `json:"shipping_cost" binding:"omitempty,decimal_gte0"`
	DeliveryAddress      *AddressInput    `json:"delivery_address"`
	ExpectedDeliveryDate *time.Time       `json:"expected_delivery_date"`
	PaymentDueDate       *time.Time       `json:"payment_due_date"`
}

// OrderStatusRequest moves an order to a new status
type OrderStatusRequest struct {
	Status string `json:"status" binding:"required,oneof=draft pending confirmed in-production ready delivered cancelled"`
	Notes  string `json:"notes" binding:"max=2000"`
}

// PaymentRequest records a payment against an order
type PaymentRequest struct {
	Amount decimal.Decimal `json:"amount" binding:"required,decimal_gt0"`
	Notes  string          `json:"notes" binding:"max=2000"`
}

// QualityCheckRequest records an inspection result
type QualityCheckRequest struct {
	Passed bool   `json:"passed"`
	Notes  string `json:"notes" binding:"max=2000"`
}

// NoteRequest adds a note to an order
type NoteRequest struct {
	Content    string `json:"content" binding:"required,min=1,max=2000"`
	IsInternal bool   `json:"is_internal"`
}

// AssignRequest hands an order to a staff member
type AssignRequest struct {
	UserID uuid.UUID `json:"user_id" binding:"required"`
}

// OrderListFilter represents filter options for order list
type OrderListFilter struct {
	Search        string     `form:"search"`
	Status        string     `form:"status" binding:"omitempty,oneof=draft pending confirmed in-production ready delivered cancelled"`
	PaymentStatus string     `form:"payment_status" binding:"omitempty,oneof=pending partial paid overdue"`
	Type          string     `form:"type" binding:"omitempty,oneof=quote order sample"`
	CustomerID    string     `form:"customer_id" binding:"omitempty,uuid"`
	AssignedTo    string     `form:"assigned_to" binding:"omitempty,uuid"`
	From          *time.Time `form:"from" time_format:"2006-01-02"`
	To            *time.Time `form:"to" time_format:"2006-01-02"`
	Page          int        `form:"page" binding:"omitempty,min=1"`
	PageSize      int        `form:"page_size" binding:"omitempty,min=1,max=100"`
	OrderBy       string     `form:"order_by" binding:"omitempty,oneof=order_number status payment_status total_amount created_at updated_at expected_delivery_date"`
	OrderDir      string     `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

// ==================== Order Response DTOs ====================

// OrderItemResponse represents an order line in API responses
type OrderItemResponse struct {
	ID            uuid.UUID       `json:"id"`
	ProductID     uuid.UUID       `json:"product_id"`
	ProductCode   string          `json:"product_code"`
	ProductName   string          `json:"product_name"`
	Quantity      int             `json:"quantity"`
	UnitPrice     decimal.Decimal `json:"unit_price"`
	TotalPrice    decimal.Decimal `json:"total_price"`
	Customization string          `json:"customization,omitempty"`
	Notes         string          `json:"notes,omitempty"`
}

// StatusChangeResponse is one status history entry
type StatusChangeResponse struct {
	Status    string     `json:"status"`
	ChangedBy *uuid.UUID `json:"changed_by,omitempty"`
	ChangedAt time.Time  `json:"changed_at"`
	Notes     string     `json:"notes,omitempty"`
}

// QualityCheckResponse is the recorded inspection
type QualityCheckResponse struct {
	Passed    bool       `json:"passed"`
	CheckedBy *uuid.UUID `json:"checked_by,omitempty"`
	CheckedAt time.Time  `json:"checked_at"`
	Notes     string     `json:"notes,omitempty"`
}

// OrderResponse represents an order in API responses
type OrderResponse struct {
	ID                   uuid.UUID              `json:"id"`
	OrderNumber          string                 `json:"order_number"`
	Type                 string                 `json:"type"`
	Status               string                 `json:"status"`
	CustomerID           uuid.UUID              `json:"customer_id"`
	InquiryID            *uuid.UUID             `json:"inquiry_id,omitempty"`
	Items                []OrderItemResponse    `json:"items"`
	Subtotal             decimal.Decimal        `json:"subtotal"`
	Tax                  decimal.Decimal        `json:"tax"`
	Discount             decimal.Decimal        `json:"discount"`
	ShippingCost         decimal.Decimal        `json:"shipping_cost"`
	TotalAmount          decimal.Decimal        `json:"total_amount"`
	PaymentStatus        string                 `json:"payment_status"`
	PaidAmount           decimal.Decimal        `json:"paid_amount"`
	Outstanding          decimal.Decimal        `json:"outstanding"`
	PaymentDueDate       *time.Time             `json:"payment_due_date,omitempty"`
	DeliveryAddress      shared.Address         `json:"delivery_address"`
	ExpectedDeliveryDate *time.Time             `json:"expected_delivery_date,omitempty"`
	ProductionStartDate  *time.Time             `json:"production_start_date,omitempty"`
	ActualCompletionDate *time.Time             `json:"actual_completion_date,omitempty"`
	ActualDeliveryDate   *time.Time             `json:"actual_delivery_date,omitempty"`
	StatusHistory        []StatusChangeResponse `json:"status_history,omitempty"`
	Notes                []shared.Note          `json:"notes,omitempty"`
	QualityCheck         *QualityCheckResponse  `json:"quality_check,omitempty"`
	StockReserved        bool                   `json:"stock_reserved"`
	AssignedTo           *uuid.UUID             `json:"assigned_to,omitempty"`
	CreatedBy            *uuid.UUID             `json:"created_by,omitempty"`
	CancellationReason   string                 `json:"cancellation_reason,omitempty"`
	Version              int                    `json:"version"`
	CreatedAt            time.Time              `json:"created_at"`
	UpdatedAt            time.Time              `json:"updated_at"`
}

// ToOrderResponse converts a domain Order to OrderResponse
func ToOrderResponse(o *trade.Order) OrderResponse {
	resp := ToOrderListResponse(o)
	resp.StatusHistory = make([]StatusChangeResponse, len(o.StatusHistory))
	for i, h := range o.StatusHistory {
		resp.StatusHistory[i] = StatusChangeResponse{
			Status:    string(h.Status),
			ChangedBy: h.ChangedBy,
			ChangedAt: h.ChangedAt,
			Notes:     h.Notes,
		}
	}
	resp.Notes = o.Notes
	if qc := o.QualityCheck; qc != nil {
		resp.QualityCheck = &QualityCheckResponse{
			Passed:    qc.Passed,
			CheckedBy: qc.CheckedBy,
			CheckedAt: qc.CheckedAt,
			Notes:     qc.Notes,
		}
	}
	return resp
}

// ToOrderListResponse converts an order without history and notes
func ToOrderListResponse(o *trade.Order) OrderResponse {
	items := make([]OrderItemResponse, len(o.Items))
	for i, item := range o.Items {
		items[i] = OrderItemResponse{
			ID:            item.ID,
			ProductID:     item.ProductID,
			ProductCode:   item.ProductCode,
			ProductName:   item.ProductName,
			Quantity:      item.Quantity,
			UnitPrice:     item.UnitPrice,
			TotalPrice:    item.TotalPrice,
			Customization: item.Customization,
			Notes:         item.Notes,
		}
	}
	return OrderResponse{
		ID:                   o.ID,
		OrderNumber:          o.OrderNumber,
		Type:                 string(o.Type),
		Status:               string(o.Status),
		CustomerID:           o.CustomerID,
		InquiryID:            o.InquiryID,
		Items:                items,
		Subtotal:             o.Subtotal,
		Tax:                  o.Tax,
		Discount:             o.Discount,
		ShippingCost:         o.ShippingCost,
		TotalAmount:          o.TotalAmount,
		PaymentStatus:        string(o.PaymentStatus),
		PaidAmount:           o.PaidAmount,
		Outstanding:          o.Outstanding(),
		PaymentDueDate:       o.PaymentDueDate,
		DeliveryAddress:      o.DeliveryAddress,
		ExpectedDeliveryDate: o.ExpectedDeliveryDate,
		ProductionStartDate:  o.ProductionStartDate,
		ActualCompletionDate: o.ActualCompletionDate,
		ActualDeliveryDate:   o.ActualDeliveryDate,
		StockReserved:        o.StockReserved,
		AssignedTo:           o.AssignedTo,
		CreatedBy:            o.CreatedBy,
		CancellationReason:   o.CancellationReason,
		Version:              o.Version,
		CreatedAt:            o.CreatedAt,
		UpdatedAt:            o.UpdatedAt,
	}
}
