package sales

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/uniformco/backoffice/internal/domain/shared"
)

// InquiryStatus is the lead lifecycle status
type InquiryStatus string

const (
	InquiryStatusNew       InquiryStatus = "new"
	InquiryStatusContacted InquiryStatus = "contacted"
	InquiryStatusQuoted    InquiryStatus = "quoted"
	InquiryStatusConverted InquiryStatus = "converted"
	InquiryStatusLost      InquiryStatus = "lost"
	InquiryStatusClosed    InquiryStatus = "closed"
)

// AllInquiryStatuses lists every inquiry status
func AllInquiryStatuses() []InquiryStatus {
	return []InquiryStatus{
		InquiryStatusNew, InquiryStatusContacted, InquiryStatusQuoted,
		InquiryStatusConverted, InquiryStatusLost, InquiryStatusClosed,
	}
}

// IsValid checks if the status is valid
func (s InquiryStatus) IsValid() bool {
	for _, v := range AllInquiryStatuses() {
		if s == v {
			return true
		}
	}
	return false
}

// IsActive reports whether the lead is still being worked
func (s InquiryStatus) IsActive() bool {
	return s == InquiryStatusNew || s == InquiryStatusContacted || s == InquiryStatusQuoted
}

// CanTransitionTo checks if the status can transition to the target status.
// Active leads may move anywhere, lost and closed leads may only be reopened, converted is terminal.
func (s InquiryStatus) CanTransitionTo(target InquiryStatus) bool {
	switch {
	case s.IsActive():
		return target.IsValid()
	case s == InquiryStatusLost || s == InquiryStatusClosed:
		return target == InquiryStatusContacted
	}
	return false
}

// Priority ranks how urgently a lead should be handled
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
	PriorityUrgent Priority = "urgent"
)

// IsValid checks if the priority is valid
func (p Priority) IsValid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh, PriorityUrgent:
		return true
	}
	return false
}

// Source is the channel an inquiry came in through
type Source string

const (
	SourceWebsite     Source = "website"
	SourcePhone       Source = "phone"
	SourceEmail       Source = "email"
	SourceReferral    Source = "referral"
	SourceSocialMedia Source = "social_media"
	SourceExhibition  Source = "exhibition"
	SourceWalkIn      Source = "walk_in"
	SourceOther       Source = "other"
)

// IsValid checks if the source is valid
func (s Source) IsValid() bool {
	switch s {
	case SourceWebsite, SourcePhone, SourceEmail, SourceReferral,
		SourceSocialMedia, SourceExhibition, SourceWalkIn, SourceOther:
		return true
	}
	return false
}

// Requirements describe what the lead wants made
type Requirements struct {
	Description   string           `json:"description"`
	BudgetMin     *decimal.Decimal `json:"budget_min,omitempty"`
	BudgetMax     *decimal.Decimal `json:"budget_max,omitempty"`
	Timeline      string           `json:"timeline,omitempty"`
	Customization string           `json:"customization,omitempty"`
}

// Attribution captures marketing data from the submission
type Attribution struct {
	Campaign    string `json:"campaign,omitempty"`
	Referrer    string `json:"referrer,omitempty"`
	LandingPage string `json:"landing_page,omitempty"`
}

// Conversion links a converted inquiry to the customer and order it produced
type Conversion struct {
	CustomerID      *uuid.UUID
	OrderID         *uuid.UUID
	ConversionDate  *time.Time
	ConversionValue decimal.Decimal
}

// Submission is the contact form payload, also used for staff-entered leads
type Submission struct {
	CustomerName  string
	Email         string
	Phone         string
	Company       string
	BusinessType  shared.BusinessType
	Industry      string
	EmployeeCount int
	Address       shared.Address
	UniformType   string
	Quantity      int
	Requirements  Requirements
	Source        Source
	Attribution   Attribution
	Priority      Priority
}

// Inquiry is an unconverted sales lead
type Inquiry struct {
	shared.BaseAggregateRoot
	InquiryNumber     string
	CustomerName      string
	Email             string
	Phone             string
	Company           string
	BusinessType      shared.BusinessType
	Industry          string
	EmployeeCount     int
	Address           shared.Address
	UniformType       string
	Quantity          int
	Requirements      Requirements
	Source            Source
	Attribution       Attribution
	Status            InquiryStatus
	Priority          Priority
	Notes             []shared.Note
	Communications    []shared.Communication
	AssignedTo        *uuid.UUID
	AssignedDate      *time.Time
	NextFollowUp      *time.Time
	FollowUpNotes     string
	LastContact       *time.Time
	FirstResponseTime *time.Time
	ResolutionTime    *time.Time
	ConvertedTo       Conversion
}

// NewInquiry creates a new inquiry in status new
func NewInquiry(number string, s Submission) (*Inquiry, error) {
	if number == "" {
		return nil, shared.NewValidationError("inquiry_number", "REQUIRED", "Inquiry number cannot be empty")
	}
	i := &Inquiry{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		InquiryNumber:     number,
		Status:            InquiryStatusNew,
		Notes:             make([]shared.Note, 0),
		Communications:    make([]shared.Communication, 0),
		ConvertedTo:       Conversion{ConversionValue: decimal.Zero},
	}
	if err := i.apply(s); err != nil {
		return nil, err
	}
	i.AddDomainEvent(NewInquirySubmittedEvent(i))
	return i, nil
}

func (i *Inquiry) apply(s Submission) error {
	name := strings.TrimSpace(s.CustomerName)
	if err := shared.ValidateLength("customer_name", name, 1, 100); err != nil {
		return err
	}
	if err := shared.ValidateEmail("email", s.Email); err != nil {
		return err
	}
	if err := shared.ValidatePhone("phone", s.Phone); err != nil {
		return err
	}
	if err := shared.ValidateLength("company", s.Company, 0, 200); err != nil {
		return err
	}
	if s.BusinessType == "" {
		s.BusinessType = shared.BusinessTypeOther
	}
	if !s.BusinessType.IsValid() {
		return shared.NewValidationError("business_type", "INVALID_BUSINESS_TYPE", "Invalid business type")
	}
	if s.EmployeeCount < 0 {
		return shared.NewValidationError("employee_count", "INVALID_EMPLOYEE_COUNT", "Employee count cannot be negative")
	}
	if s.Quantity < 0 {
		return shared.NewValidationError("quantity", "INVALID_QUANTITY", "Quantity cannot be negative")
	}
	if err := shared.ValidateLength("requirements", s.Requirements.Description, 0, 5000); err != nil {
		return err
	}
	if r := s.Requirements; r.BudgetMin != nil && r.BudgetMax != nil && r.BudgetMax.LessThan(*r.BudgetMin) {
		return shared.NewValidationError("budget_max", "INVALID_BUDGET", "Budget maximum cannot be below the minimum")
	}
	if s.Source == "" {
		s.Source = SourceWebsite
	}
	if !s.Source.IsValid() {
		return shared.NewValidationError("source", "INVALID_SOURCE", "Invalid inquiry source")
	}
	if s.Priority == "" {
		s.Priority = PriorityMedium
	}
	if !s.Priority.IsValid() {
		return shared.NewValidationError("priority", "INVALID_PRIORITY", "Invalid priority")
	}

	i.CustomerName = name
	i.Email = shared.NormalizeEmail(s.Email)
	i.Phone = strings.TrimSpace(s.Phone)
	i.Company = strings.TrimSpace(s.Company)
	i.BusinessType = s.BusinessType
	i.Industry = strings.TrimSpace(s.Industry)
	i.EmployeeCount = s.EmployeeCount
	i.Address = s.Address.Trimmed()
	i.UniformType = strings.TrimSpace(s.UniformType)
	i.Quantity = s.Quantity
	i.Requirements = s.Requirements
	i.Requirements.Description = strings.TrimSpace(s.Requirements.Description)
	i.Source = s.Source
	i.Attribution = s.Attribution
	i.Priority = s.Priority
	return nil
}

// Submission returns the editable fields
func (i *Inquiry) Submission() Submission {
	return Submission{
		CustomerName:  i.CustomerName,
		Email:         i.Email,
		Phone:         i.Phone,
		Company:       i.Company,
		BusinessType:  i.BusinessType,
		Industry:      i.Industry,
		EmployeeCount: i.EmployeeCount,
		Address:       i.Address,
		UniformType:   i.UniformType,
		Quantity:      i.Quantity,
		Requirements:  i.Requirements,
		Source:        i.Source,
		Attribution:   i.Attribution,
		Priority:      i.Priority,
	}
}

// UpdateDetails replaces the lead's contact and requirement fields
func (i *Inquiry) UpdateDetails(s Submission) error {
	if i.IsConverted() {
		return shared.NewConflictError("INQUIRY_CONVERTED", "Converted inquiries cannot be edited")
	}
	if err := i.apply(s); err != nil {
		return err
	}
	i.Touch()
	return nil
}

// SetPriority changes the priority
func (i *Inquiry) SetPriority(p Priority) error {
	if !p.IsValid() {
		return shared.NewValidationError("priority", "INVALID_PRIORITY", "Invalid priority")
	}
	i.Priority = p
	i.Touch()
	return nil
}

// AddNote appends a note
func (i *Inquiry) AddNote(content string, authorID *uuid.UUID, internal bool) (*shared.Note, error) {
	note, err := shared.NewNote(content, authorID, internal)
	if err != nil {
		return nil, err
	}
	i.Notes = append(i.Notes, note)
	i.Touch()
	return &i.Notes[len(i.Notes)-1], nil
}

// AddCommunication appends a communication, refreshes LastContact
// and records the first outbound response time.
func (i *Inquiry) AddCommunication(in shared.CommunicationInput, authorID *uuid.UUID) (*shared.Communication, error) {
	comm, err := shared.NewCommunication(in, authorID)
	if err != nil {
		return nil, err
	}
	i.Communications = append(i.Communications, comm)
	at := comm.Date
	i.LastContact = &at
	if comm.Direction == shared.DirectionOutbound && i.FirstResponseTime == nil {
		i.FirstResponseTime = &at
	}
	i.Touch()
	return &i.Communications[len(i.Communications)-1], nil
}

// UpdateStatus changes the status and documents the change in an internal note
func (i *Inquiry) UpdateStatus(status InquiryStatus, actorID *uuid.UUID, notes string) error {
	if !status.IsValid() {
		return shared.NewValidationError("status", "INVALID_STATUS", "Invalid inquiry status")
	}
	if !i.Status.CanTransitionTo(status) {
		return shared.NewConflictError("INVALID_STATE", fmt.Sprintf("Cannot change inquiry status from %s to %s", i.Status, status))
	}
	return i.setStatus(status, actorID, notes)
}

// setStatus records the change without consulting the lifecycle rules
func (i *Inquiry) setStatus(status InquiryStatus, actorID *uuid.UUID, notes string) error {
	old := i.Status
	now := time.Now()
	i.Status = status
	if status == InquiryStatusConverted {
		if i.ResolutionTime == nil {
			i.ResolutionTime = &now
		}
		if i.ConvertedTo.ConversionDate == nil {
			i.ConvertedTo.ConversionDate = &now
		}
	}

	text := fmt.Sprintf("Status changed from %s to %s", old, status)
	if notes = strings.TrimSpace(notes); notes != "" {
		text += ": " + notes
	}
	if _, err := i.AddNote(text, actorID, true); err != nil {
		return err
	}
	i.AddDomainEvent(NewInquiryStatusChangedEvent(i, old, actorID))
	return nil
}

// AssignTo sets the owner and assignment date, optionally recording a note
func (i *Inquiry) AssignTo(userID uuid.UUID, actorID *uuid.UUID, notes string) error {
	if userID == uuid.Nil {
		return shared.NewValidationError("assigned_to", "INVALID_ASSIGNEE", "Assignee is required")
	}
	now := time.Now()
	i.AssignedTo = &userID
	i.AssignedDate = &now
	i.Touch()
	if notes = strings.TrimSpace(notes); notes != "" {
		if _, err := i.AddNote(notes, actorID, true); err != nil {
			return err
		}
	}
	i.AddDomainEvent(NewInquiryAssignedEvent(i, actorID))
	return nil
}

// ScheduleFollowUp sets the next follow-up date and notes
func (i *Inquiry) ScheduleFollowUp(date time.Time, notes string) error {
	if date.IsZero() {
		return shared.NewValidationError("next_follow_up", "REQUIRED", "Follow-up date is required")
	}
	if err := shared.ValidateLength("follow_up_notes", notes, 0, 1000); err != nil {
		return err
	}
	i.NextFollowUp = &date
	i.FollowUpNotes = strings.TrimSpace(notes)
	i.Touch()
	return nil
}

// FollowUpDue reports whether an active lead has a follow-up at or before now
func (i *Inquiry) FollowUpDue(now time.Time) bool {
	return i.Status.IsActive() && i.NextFollowUp != nil && !i.NextFollowUp.After(now)
}

// IsConverted reports whether the inquiry is linked to a customer
func (i *Inquiry) IsConverted() bool {
	return i.ConvertedTo.CustomerID != nil
}

// MarkConverted links the inquiry to its customer. It can only happen once,
// from any status, so lost and closed leads can still be won back.
func (i *Inquiry) MarkConverted(customerID uuid.UUID, actorID *uuid.UUID) error {
	if i.IsConverted() {
		return shared.NewConflictError("INQUIRY_ALREADY_CONVERTED", "Inquiry has already been converted")
	}
	if customerID == uuid.Nil {
		return shared.NewValidationError("customer_id", "REQUIRED", "Customer ID cannot be empty")
	}
	if i.Status != InquiryStatusConverted {
		if err := i.setStatus(InquiryStatusConverted, actorID, "Converted to customer"); err != nil {
			return err
		}
	}
	now := time.Now()
	i.ConvertedTo.CustomerID = &customerID
	if i.ConvertedTo.ConversionDate == nil {
		i.ConvertedTo.ConversionDate = &now
	}
	if i.ResolutionTime == nil {
		i.ResolutionTime = &now
	}
	i.NextFollowUp = nil
	i.Touch()
	i.AddDomainEvent(NewInquiryConvertedEvent(i, customerID))
	return nil
}

// LinkOrder records the order produced from a converted inquiry
func (i *Inquiry) LinkOrder(orderID uuid.UUID, value decimal.Decimal) error {
	if !i.IsConverted() {
		return shared.NewConflictError("INQUIRY_NOT_CONVERTED", "Inquiry must be converted before linking an order")
	}
	if value.IsNegative() {
		return shared.NewValidationError("conversion_value", "INVALID_AMOUNT", "Conversion value cannot be negative")
	}
	i.ConvertedTo.OrderID = &orderID
	i.ConvertedTo.ConversionValue = value
	i.Touch()
	return nil
}

// CanDelete rejects deletion of converted inquiries
func (i *Inquiry) CanDelete() error {
	if i.Status == InquiryStatusConverted || i.IsConverted() {
		return shared.NewConflictError("INQUIRY_CONVERTED", "Converted inquiries cannot be deleted")
	}
	return nil
}

// ResponseDuration is the time between submission and the first outbound contact
func (i *Inquiry) ResponseDuration() (time.Duration, bool) {
	if i.FirstResponseTime == nil {
		return 0, false
	}
	return i.FirstResponseTime.Sub(i.CreatedAt), true
}
