package partner

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/uniformco/backoffice/internal/domain/partner"
	"github.com/uniformco/backoffice/internal/domain/shared"
)

// =============================================================================
// Customer DTOs
// =============================================================================

// AddressInput is a postal address in requests
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

// CreateCustomerRequest represents a request to create a new customer
type CreateCustomerRequest struct {
	Name          string       `json:"name" binding:"required,min=1,max=100"`
	Email         string       `json:"email" binding:"required,email,max=200"`
	Phone         string       `json:"phone" binding:"max=50"`
	Company       string       `json:"company" binding:"max=200"`
	Address       AddressInput `json:"address"`
	BusinessType  string       `json:"business_type" binding:"omitempty,business_type"`
	Industry      string       `json:"industry" binding:"max=100"`
	EmployeeCount int          `json:"employee_count" binding:"gte=0"`
	Status        string       `json:"status" binding:"omitempty,oneof=prospect active inactive lead"`
	Source        string       `json:"source" binding:"max=50"`
	Tags          []string     `json:"tags" binding:"max=20,dive,min=1,max=50"`
	AssignedTo    *uuid.UUID   `json:"assigned_to"`
}

func (r CreateCustomerRequest) details() partner.CustomerDetails {
	return partner.CustomerDetails{
		Name:          r.Name,
		Email:         r.Email,
		Phone:         r.Phone,
		Company:       r.Company,
		Address:       r.Address.ToAddress(),
		BusinessType:  shared.BusinessType(r.BusinessType),
		Industry:      r.Industry,
		EmployeeCount: r.EmployeeCount,
		Source:        r.Source,
	}
}

// UpdateCustomerRequest is an allow-listed partial update. Counters, status,
// ownership and tags have their own operations and cannot be set here.
type UpdateCustomerRequest struct {
	Name          *string       `json:"name" binding:"omitempty,min=1,max=100"`
	Email         *string       `json:"email" binding:"omitempty,email,max=200"`
	Phone         *string       `json:"phone" binding:"omitempty,max=50"`
	Company       *string       `json:"company" binding:"omitempty,max=200"`
	Address       *AddressInput `json:"address"`
	BusinessType  *string       `json:"business_type" binding:"omitempty,business_type"`
	Industry      *string       `json:"industry" binding:"omitempty,max=100"`
	EmployeeCount *int          `json:"employee_count" binding:"omitempty,gte=0"`
	Source        *string       `json:"source" binding:"omitempty,max=50"`
}

func (r UpdateCustomerRequest) update() partner.CustomerUpdate {
	u := partner.CustomerUpdate{
		Name:          r.Name,
		Email:         r.Email,
		Phone:         r.Phone,
		Company:       r.Company,
		Industry:      r.Industry,
		EmployeeCount: r.EmployeeCount,
		Source:        r.Source,
	}
	if r.Address != nil {
		addr := r.Address.ToAddress()
		u.Address = &addr
	}
	if r.BusinessType != nil {
		bt := shared.BusinessType(*r.BusinessType)
		u.BusinessType = &bt
	}
	return u
}

// NoteRequest adds a note to a record
type NoteRequest struct {
	Content    string `json:"content" binding:"required,min=1,max=2000"`
	IsInternal bool   `json:"is_internal"`
}

// CommunicationRequest records a contact with a customer or lead
type CommunicationRequest struct {
	Type       string `json:"type" binding:"required,oneof=email phone meeting whatsapp sms other"`
	Direction  string `json:"direction" binding:"required,oneof=inbound outbound"`
	Subject    string `json:"subject" binding:"max=200"`
	Content    string `json:"content" binding:"required,min=1,max=5000"`
	Outcome    string `json:"outcome" binding:"max=500"`
	NextAction string `json:"next_action" binding:"max=500"`
}

// ToInput converts the request to the domain input
func (r CommunicationRequest) ToInput() shared.CommunicationInput {
	return shared.CommunicationInput{
		Type:       shared.CommunicationType(r.Type),
		Direction:  shared.Direction(r.Direction),
		Subject:    r.Subject,
		Content:    r.Content,
		Outcome:    r.Outcome,
		NextAction: r.NextAction,
	}
}

// CustomerStatusRequest changes a customer's status
type CustomerStatusRequest struct {
	Status string `json:"status" binding:"required,oneof=prospect active inactive lead"`
	Notes  string `json:"notes" binding:"max=2000"`
}

// AssignRequest hands a record to a staff member
type AssignRequest struct {
	UserID uuid.UUID `json:"user_id" binding:"required"`
	Notes  string    `json:"notes" binding:"max=2000"`
}

// TagsRequest adds and removes customer tags
type TagsRequest struct {
	Add    []string `json:"add" binding:"max=20,dive,min=1,max=50"`
	Remove []string `json:"remove" binding:"max=20,dive,min=1,max=50"`
}

// CustomerListFilter represents filter options for customer list
type CustomerListFilter struct {
	Search       string `form:"search"`
	Status       string `form:"status" binding:"omitempty,oneof=prospect active inactive lead"`
	BusinessType string `form:"business_type" binding:"omitempty,business_type"`
	AssignedTo   string `form:"assigned_to" binding:"omitempty,uuid"`
	Tag          string `form:"tag"`
	Page         int    `form:"page" binding:"omitempty,min=1"`
	PageSize     int    `form:"page_size" binding:"omitempty,min=1,max=100"`
	OrderBy      string `form:"order_by" binding:"omitempty,oneof=name email company status total_revenue total_orders created_at updated_at last_contact"`
	OrderDir     string `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

// CustomerResponse represents a customer in API responses
type CustomerResponse struct {
	ID             uuid.UUID              `json:"id"`
	Name           string                 `json:"name"`
	Email          string                 `json:"email"`
	Phone          string                 `json:"phone"`
	Company        string                 `json:"company"`
	Address        shared.Address         `json:"address"`
	FullAddress    string                 `json:"full_address"`
	BusinessType   string                 `json:"business_type"`
	Industry       string                 `json:"industry"`
	EmployeeCount  int                    `json:"employee_count"`
	Status         string                 `json:"status"`
	Source         string                 `json:"source"`
	Tags           []string               `json:"tags"`
	AssignedTo     *uuid.UUID             `json:"assigned_to,omitempty"`
	CreatedBy      *uuid.UUID             `json:"created_by,omitempty"`
	TotalOrders    int                    `json:"total_orders"`
	TotalRevenue   decimal.Decimal        `json:"total_revenue"`
	LastOrderDate  *time.Time             `json:"last_order_date,omitempty"`
	LastContact    *time.Time             `json:"last_contact,omitempty"`
	Notes          []shared.Note          `json:"notes,omitempty"`
	Communications []shared.Communication `json:"communications,omitempty"`
	Version        int                    `json:"version"`
	CreatedAt      time.Time              `json:"created_at"`
	UpdatedAt      time.Time              `json:"updated_at"`
}

// ToCustomerResponse converts a domain Customer to CustomerResponse
func ToCustomerResponse(c *partner.Customer) CustomerResponse {
	resp := ToCustomerListResponse(c)
	resp.Notes = c.Notes
	resp.Communications = c.Communications
	return resp
}

// ToCustomerListResponse converts a customer without its activity history
func ToCustomerListResponse(c *partner.Customer) CustomerResponse {
	return CustomerResponse{
		ID:            c.ID,
		Name:          c.Name,
		Email:         c.Email,
		Phone:         c.Phone,
		Company:       c.Company,
		Address:       c.Address,
		FullAddress:   c.FullAddress(),
		BusinessType:  string(c.BusinessType),
		Industry:      c.Industry,
		EmployeeCount: c.EmployeeCount,
		Status:        string(c.Status),
		Source:        c.Source,
		Tags:          c.Tags,
		AssignedTo:    c.AssignedTo,
		CreatedBy:     c.CreatedBy,
		TotalOrders:   c.TotalOrders,
		TotalRevenue:  c.TotalRevenue,
		LastOrderDate: c.LastOrderDate,
		LastContact:   c.LastContact,
		Version:       c.Version,
		CreatedAt:     c.CreatedAt,
		UpdatedAt:     c.UpdatedAt,
	}
}

// CustomerOrderSummary is one line of a customer's order history
type CustomerOrderSummary struct {
	ID            uuid.UUID       `json:"id"`
	OrderNumber   string          `json:"order_number"`
	Type          string          `json:"type"`
	Status        string          `json:"status"`
	PaymentStatus string          `json:"payment_status"`
	TotalAmount   decimal.Decimal `json:"total_amount"`
	PaidAmount    decimal.Decimal `json:"paid_amount"`
	ItemCount     int             `json:"item_count"`
	CreatedAt     time.Time       `json:"created_at"`
}
