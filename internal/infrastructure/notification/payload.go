package notification

import (
	"time"

	"github.com/shopspring/decimal"
)

// InquiryPayload describes an inquiry for inquiry.* events
type InquiryPayload struct {
	InquiryID     string     `json:"inquiry_id"`
	InquiryNumber string     `json:"inquiry_number"`
	CustomerName  string     `json:"customer_name"`
	Email         string     `json:"email"`
	Phone         string     `json:"phone,omitempty"`
	Company       string     `json:"company,omitempty"`
	UniformType   string     `json:"uniform_type,omitempty"`
	Quantity      int        `json:"quantity"`
	Requirements  string     `json:"requirements,omitempty"`
	Source        string     `json:"source,omitempty"`
	AssigneeName  string     `json:"assignee_name,omitempty"`
	AssigneeEmail string     `json:"assignee_email,omitempty"`
	FollowUpDate  *time.Time `json:"follow_up_date,omitempty"`
	FollowUpNotes string     `json:"follow_up_notes,omitempty"`
	CustomerID    string     `json:"customer_id,omitempty"`
	NewCustomer   bool       `json:"new_customer,omitempty"`
}

// OrderPayload describes an order for order.* events
type OrderPayload struct {
	OrderID       string          `json:"order_id"`
	OrderNumber   string          `json:"order_number"`
	CustomerName  string          `json:"customer_name"`
	CustomerEmail string          `json:"customer_email,omitempty"`
	ItemCount     int             `json:"item_count"`
	TotalAmount   decimal.Decimal `json:"total_amount"`
	PaidAmount    decimal.Decimal `json:"paid_amount"`
	OldStatus     string          `json:"old_status,omitempty"`
	NewStatus     string          `json:"new_status,omitempty"`
	DeliveryDate  *time.Time      `json:"delivery_date,omitempty"`
	PaymentDue    *time.Time      `json:"payment_due,omitempty"`
	AssigneeEmail string          `json:"assignee_email,omitempty"`
}

// Outstanding is the unpaid remainder
func (p OrderPayload) Outstanding() decimal.Decimal {
	return p.TotalAmount.Sub(p.PaidAmount)
}

// StockPayload describes a product that fell to its minimum level
type StockPayload struct {
	ProductID     string `json:"product_id"`
	Code          string `json:"code"`
	Name          string `json:"name"`
	StockQuantity int    `json:"stock_quantity"`
	MinStockLevel int    `json:"min_stock_level"`
}
