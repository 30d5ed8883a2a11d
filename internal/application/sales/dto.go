package sales

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	partnerapp "github.com/uniformco/backoffice/internal/application/partner"
	"github.com/uniformco/backoffice/internal/domain/sales"
	"github.com/uniformco/backoffice/internal/domain/shared"
)

// ==================== Inquiry Request DTOs ====================

// SubmitInquiryRequest is the public contact form, also used by staff entering a lead
type SubmitInquiryRequest struct {
	CustomerName  string                  `json:"customer_name" binding:"required,min=1,max=100"`
	Email         string                  `json:"email" binding:"required,email,max=200"`
	Phone         string                  `json:"phone" binding:"max=50"`
	Company       string                  `json:"company" binding:"max=200"`
	BusinessType  string                  `json:"business_type" binding:"omitempty,business_type"`
	Industry      string                  `json:"industry" binding:"max=100"`
	EmployeeCount int                     `json:"employee_count" binding:"gte=0"`
	Address       partnerapp.AddressInput `json:"address"`
	UniformType   string                  `json:"uniform_type" binding:"max=50"`
	Quantity      int                     `json:"quantity" binding:"gte=0"`
	Requirements  string                  `json:"requirements" binding:"max=5000"`
	BudgetMin     *decimal.Decimal        `json:"budget_min" binding:"omitempty,decimal_gte0"`
	BudgetMax     *decimal.Decimal        `json:"budget_max" binding:"omitempty,decimal_gte0"`
	Timeline      string                  `json:"timeline" binding:"max=200"`
	Customization string                  `json:"customization" binding:"max=2000"`
	Source        string                  `json:"source" binding:"omitempty,oneof=website phone email referral social_media exhibition walk_in other"`
	Campaign      string                  `json:"campaign" binding:"max=100"`
	Referrer      string                  `json:"referrer" binding:"max=500"`
	LandingPage   string                  `json:"landing_page" binding:"max=500"`
	Priority      string                  `json:"priority" binding:"omitempty,oneof=low medium high urgent"`
}

func (r SubmitInquiryRequest) submission() sales.Submission {
	return sales.Submission{
		CustomerName:  r.CustomerName,
		Email:         r.Email,
		Phone:         r.Phone,
		Company:       r.Company,
		BusinessType:  shared.BusinessType(r.BusinessType),
		Industry:      r.Industry,
		EmployeeCount: r.EmployeeCount,
		Address:       r.Address.ToAddress(),
		UniformType:   r.UniformType,
		Quantity:      r.Quantity,
		Requirements: sales.Requirements{
			Description:   r.Requirements,
			BudgetMin:     r.BudgetMin,
			BudgetMax:     r.BudgetMax,
			Timeline:      r.Timeline,
			Customization: r.Customization,
		},
		Source: sales.Source(r.Source),
		Attribution: sales.Attribution{
			Campaign:    r.Campaign,
			Referrer:    r.Referrer,
			LandingPage: r.LandingPage,
		},
		Priority: sales.Priority(r.Priority),
	}
}

// CreateInquiryRequest is a lead entered by staff
type CreateInquiryRequest struct {
	SubmitInquiryRequest
	AssignedTo *uuid.UUID `json:"assigned_to"`
}

// UpdateInquiryRequest changes contact, requirement and priority fields; nil fields are left alone
type UpdateInquiryRequest struct {
	CustomerName  *string                  `json:"customer_name" binding:"omitempty,min=1,max=100"`
	Email         *string                  `json:"email" binding:"omitempty,email,max=200"`
	Phone         *string                  `json:"phone" binding:"omitempty,max=50"`
	Company       *string                  `json:"company" binding:"omitempty,max=200"`
	BusinessType  *string                  `json:"business_type" binding:"omitempty,business_type"`
	Industry      *string                  `json:"industry" binding:"omitempty,max=100"`
	EmployeeCount *int                     `json:"employee_count" binding:"omitempty,gte=0"`
	Address       *partnerapp.AddressInput `json:"address"`
	UniformType   *string                  `json:"uniform_type" binding:"omitempty,max=50"`
	Quantity      *int                     `json:"quantity" binding:"omitempty,gte=0"`
	Requirements  *string                  `json:"requirements" binding:"omitempty,max=5000"`
	BudgetMin     *decimal.Decimal         `json:"budget_min" binding:"omitempty,decimal_gte0"`
	BudgetMax     *decimal.Decimal         `json:"budget_max" binding:"omitempty,decimal_gte0"`
	Timeline      *string                  `json:"timeline" binding:"omitempty,max=200"`
	Customization *string                  `json:"customization" binding:"omitempty,max=2000"`
	Priority      *string                  `json:"priority" binding:"omitempty,oneof=low medium high urgent"`
}

func (r UpdateInquiryRequest) apply(s sales.Submission) sales.Submission {
	set := func(dst *string, v *string) {
		if v != nil {
			*dst = *v
		}
	}
	set(&s.CustomerName, r.CustomerName)
	set(&s.Email, r.Email)
	set(&s.Phone, r.Phone)
	set(&s.Company, r.Company)
	set(&s.Industry, r.Industry)
	set(&s.UniformType, r.UniformType)
	set(&s.Requirements.Description, r.Requirements)
	set(&s.Requirements.Timeline, r.Timeline)
	set(&s.Requirements.Customization, r.Customization)
	if r.BusinessType != nil {
		s.BusinessType = shared.BusinessType(*r.BusinessType)
	}
	if r.EmployeeCount != nil {
		s.EmployeeCount = *r.EmployeeCount
	}
	if r.Address != nil {
		s.Address = r.Address.ToAddress()
	}
	if r.Quantity != nil {
		s.Quantity = *r.Quantity
	}
	if r.BudgetMin != nil {
		s.Requirements.BudgetMin = r.BudgetMin
	}
	if r.BudgetMax != nil {
		s.Requirements.BudgetMax = r.BudgetMax
	}
	if r.Priority != nil {
		s.Priority = sales.Priority(*r.Priority)
	}
	return s
}

// InquiryStatusRequest moves an inquiry to a new status
type InquiryStatusRequest struct {
	Status string `json:"status" binding:"required,oneof=new contacted quoted converted lost closed"`
	Notes  string `json:"notes" binding:"max=2000"`
}

// FollowUpRequest schedules the next follow-up
type FollowUpRequest struct {
	NextFollowUp time.Time `json:"next_follow_up" binding:"required"`
	Notes        string    `json:"notes" binding:"max=1000"`
}

// ConvertInquiryRequest turns an inquiry into a customer. Status applies to the
// customer and defaults to prospect for new customers.
type ConvertInquiryRequest struct {
	AssignedTo *uuid.UUID `json:"assigned_to"`
	Status     string     `json:"status" binding:"omitempty,oneof=prospect active inactive lead"`
	Notes      string     `json:"notes" binding:"max=2000"`
}

// LinkOrderRequest records the order produced from a converted inquiry
type LinkOrderRequest struct {
	OrderID uuid.UUID `json:"order_id" binding:"required"`
}

// InquiryListFilter represents filter options for inquiry list
type InquiryListFilter struct {
	Search       string     `form:"search"`
	Status       string     `form:"status" binding:"omitempty,oneof=new contacted quoted converted lost closed"`
	Priority     string     `form:"priority" binding:"omitempty,oneof=low medium high urgent"`
	Source       string     `form:"source" binding:"omitempty,oneof=website phone email referral social_media exhibition walk_in other"`
	BusinessType string     `form:"business_type" binding:"omitempty,business_type"`
	AssignedTo   string     `form:"assigned_to" binding:"omitempty,uuid"`
	From         *time.Time `form:"from" time_format:"2006-01-02"`
	To           *time.Time `form:"to" time_format:"2006-01-02"`
	Page         int        `form:"page" binding:"omitempty,min=1"`
	PageSize     int        `form:"page_size" binding:"omitempty,min=1,max=100"`
	OrderBy      string     `form:"order_by" binding:"omitempty,oneof=created_at updated_at inquiry_number customer_name status priority source next_follow_up quantity"`
	OrderDir     string     `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

// ==================== Inquiry Response DTOs ====================

// ConversionResponse is the conversion record of an inquiry
type ConversionResponse struct {
	CustomerID      *uuid.UUID      `json:"customer_id,omitempty"`
	OrderID         *uuid.UUID      `json:"order_id,omitempty"`
	ConversionDate  *time.Time      `json:"conversion_date,omitempty"`
	ConversionValue decimal.Decimal `json:"conversion_value"`
}

// InquiryResponse represents an inquiry in API responses
type InquiryResponse struct {
	ID                uuid.UUID              `json:"id"`
	InquiryNumber     string                 `json:"inquiry_number"`
	CustomerName      string                 `json:"customer_name"`
	Email             string                 `json:"email"`
	Phone             string                 `json:"phone"`
	Company           string                 `json:"company"`
	BusinessType      string                 `json:"business_type"`
	Industry          string                 `json:"industry"`
	EmployeeCount     int                    `json:"employee_count"`
	Address           shared.Address         `json:"address"`
	UniformType       string                 `json:"uniform_type"`
	Quantity          int                    `json:"quantity"`
	Requirements      sales.Requirements     `json:"requirements"`
	Source            string                 `json:"source"`
	Attribution       sales.Attribution      `json:"attribution"`
	Status            string                 `json:"status"`
	Priority          string                 `json:"priority"`
	AssignedTo        *uuid.UUID             `json:"assigned_to,omitempty"`
	AssignedDate      *time.Time             `json:"assigned_date,omitempty"`
	NextFollowUp      *time.Time             `json:"next_follow_up,omitempty"`
	FollowUpNotes     string                 `json:"follow_up_notes,omitempty"`
	LastContact       *time.Time             `json:"last_contact,omitempty"`
	FirstResponseTime *time.Time             `json:"first_response_time,omitempty"`
	ResolutionTime    *time.Time             `json:"resolution_time,omitempty"`
	ConvertedTo       ConversionResponse     `json:"converted_to"`
	Notes             []shared.Note          `json:"notes,omitempty"`
	Communications    []shared.Communication `json:"communications,omitempty"`
	Version           int                    `json:"version"`
	CreatedAt         time.Time              `json:"created_at"`
	UpdatedAt         time.Time              `json:"updated_at"`
}

// SubmissionReceipt is what the public form caller gets back
type SubmissionReceipt struct {
	InquiryNumber string    `json:"inquiry_number"`
	Status        string    `json:"status"`
	SubmittedAt   time.Time `json:"submitted_at"`
}

// ConvertResult is the outcome of a conversion
type ConvertResult struct {
	Customer      partnerapp.CustomerResponse `json:"customer"`
	Inquiry       InquiryResponse             `json:"inquiry"`
	IsNewCustomer bool                        `json:"is_new_customer"`
	FilledFields  []string                    `json:"filled_fields,omitempty"`
}

// ToInquiryResponse converts a domain Inquiry to InquiryResponse
func ToInquiryResponse(i *sales.Inquiry) InquiryResponse {
	resp := ToInquiryListResponse(i)
	resp.Notes = i.Notes
	resp.Communications = i.Communications
	return resp
}

// ToInquiryListResponse converts an inquiry without its activity history
func ToInquiryListResponse(i *sales.Inquiry) InquiryResponse {
	return InquiryResponse{
		ID:                i.ID,
		InquiryNumber:     i.InquiryNumber,
		CustomerName:      i.CustomerName,
		Email:             i.Email,
		Phone:             i.Phone,
		Company:           i.Company,
		BusinessType:      string(i.BusinessType),
		Industry:          i.Industry,
		EmployeeCount:     i.EmployeeCount,
		Address:           i.Address,
		UniformType:       i.UniformType,
		Quantity:          i.Quantity,
		Requirements:      i.Requirements,
		Source:            string(i.Source),
		Attribution:       i.Attribution,
		Status:            string(i.Status),
		Priority:          string(i.Priority),
		AssignedTo:        i.AssignedTo,
		AssignedDate:      i.AssignedDate,
		NextFollowUp:      i.NextFollowUp,
		FollowUpNotes:     i.FollowUpNotes,
		LastContact:       i.LastContact,
		FirstResponseTime: i.FirstResponseTime,
		ResolutionTime:    i.ResolutionTime,
		ConvertedTo: ConversionResponse{
			CustomerID:      i.ConvertedTo.CustomerID,
			OrderID:         i.ConvertedTo.OrderID,
			ConversionDate:  i.ConvertedTo.ConversionDate,
			ConversionValue: i.ConvertedTo.ConversionValue,
		},
		Version:   i.Version,
		CreatedAt: i.CreatedAt,
		UpdatedAt: i.UpdatedAt,
	}
}
