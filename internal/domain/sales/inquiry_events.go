package sales

import (
	"github.com/google/uuid"

	"github.com/uniformco/backoffice/internal/domain/shared"
)

// Aggregate type constant
const AggregateTypeInquiry = "Inquiry"

// Event type constants
const (
	EventTypeInquirySubmitted     = "InquirySubmitted"
	EventTypeInquiryStatusChanged = "InquiryStatusChanged"
	EventTypeInquiryAssigned      = "InquiryAssigned"
	EventTypeInquiryConverted     = "InquiryConverted"
	EventTypeInquiryFollowUpDue   = "InquiryFollowUpDue"
)

// InquirySubmittedEvent is published when a new lead arrives
type InquirySubmittedEvent struct {
	shared.BaseDomainEvent
	InquiryID     uuid.UUID `json:"inquiry_id"`
	InquiryNumber string    `json:"inquiry_number"`
	CustomerName  string    `json:"customer_name"`
	Email         string    `json:"email"`
	Company       string    `json:"company,omitempty"`
	Quantity      int       `json:"quantity"`
	Requirements  string    `json:"requirements,omitempty"`
	Source        Source    `json:"source"`
}

// NewInquirySubmittedEvent creates a new InquirySubmittedEvent
func NewInquirySubmittedEvent(i *Inquiry) *InquirySubmittedEvent {
	return &InquirySubmittedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeInquirySubmitted, AggregateTypeInquiry, i.ID),
		InquiryID:       i.ID,
		InquiryNumber:   i.InquiryNumber,
		CustomerName:    i.CustomerName,
		Email:           i.Email,
		Company:         i.Company,
		Quantity:        i.Quantity,
		Requirements:    i.Requirements.Description,
		Source:          i.Source,
	}
}

// InquiryStatusChangedEvent is published on each status change
type InquiryStatusChangedEvent struct {
	shared.BaseDomainEvent
	InquiryID     uuid.UUID     `json:"inquiry_id"`
	InquiryNumber string        `json:"inquiry_number"`
	OldStatus     InquiryStatus `json:"old_status"`
	NewStatus     InquiryStatus `json:"new_status"`
	ChangedBy     *uuid.UUID    `json:"changed_by,omitempty"`
}

// NewInquiryStatusChangedEvent creates a new InquiryStatusChangedEvent
func NewInquiryStatusChangedEvent(i *Inquiry, old InquiryStatus, by *uuid.UUID) *InquiryStatusChangedEvent {
	return &InquiryStatusChangedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeInquiryStatusChanged, AggregateTypeInquiry, i.ID),
		InquiryID:       i.ID,
		InquiryNumber:   i.InquiryNumber,
		OldStatus:       old,
		NewStatus:       i.Status,
		ChangedBy:       by,
	}
}

// InquiryAssignedEvent is published when a lead gets an owner
type InquiryAssignedEvent struct {
	shared.BaseDomainEvent
	InquiryID     uuid.UUID  `json:"inquiry_id"`
	InquiryNumber string     `json:"inquiry_number"`
	CustomerName  string     `json:"customer_name"`
	AssignedTo    uuid.UUID  `json:"assigned_to"`
	AssignedBy    *uuid.UUID `json:"assigned_by,omitempty"`
}

// NewInquiryAssignedEvent creates a new InquiryAssignedEvent
func NewInquiryAssignedEvent(i *Inquiry, by *uuid.UUID) *InquiryAssignedEvent {
	var to uuid.UUID
	if i.AssignedTo != nil {
		to = *i.AssignedTo
	}
	return &InquiryAssignedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeInquiryAssigned, AggregateTypeInquiry, i.ID),
		InquiryID:       i.ID,
		InquiryNumber:   i.InquiryNumber,
		CustomerName:    i.CustomerName,
		AssignedTo:      to,
		AssignedBy:      by,
	}
}

// InquiryConvertedEvent is published when a lead becomes a customer
type InquiryConvertedEvent struct {
	shared.BaseDomainEvent
	InquiryID     uuid.UUID `json:"inquiry_id"`
	InquiryNumber string    `json:"inquiry_number"`
	CustomerID    uuid.UUID `json:"customer_id"`
	CustomerName  string    `json:"customer_name"`
}

// NewInquiryConvertedEvent creates a new InquiryConvertedEvent
func NewInquiryConvertedEvent(i *Inquiry, customerID uuid.UUID) *InquiryConvertedEvent {
	return &InquiryConvertedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeInquiryConverted, AggregateTypeInquiry, i.ID),
		InquiryID:       i.ID,
		InquiryNumber:   i.InquiryNumber,
		CustomerID:      customerID,
		CustomerName:    i.CustomerName,
	}
}

// InquiryFollowUpDueEvent is raised by the follow-up sweep
type InquiryFollowUpDueEvent struct {
	shared.BaseDomainEvent
	InquiryID     uuid.UUID  `json:"inquiry_id"`
	InquiryNumber string     `json:"inquiry_number"`
	CustomerName  string     `json:"customer_name"`
	AssignedTo    *uuid.UUID `json:"assigned_to,omitempty"`
	FollowUpNotes string     `json:"follow_up_notes,omitempty"`
}

// NewInquiryFollowUpDueEvent creates a new InquiryFollowUpDueEvent
func NewInquiryFollowUpDueEvent(i *Inquiry) *InquiryFollowUpDueEvent {
	return &InquiryFollowUpDueEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeInquiryFollowUpDue, AggregateTypeInquiry, i.ID),
		InquiryID:       i.ID,
		InquiryNumber:   i.InquiryNumber,
		CustomerName:    i.CustomerName,
		AssignedTo:      i.AssignedTo,
		FollowUpNotes:   i.FollowUpNotes,
	}
}
