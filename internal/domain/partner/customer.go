package partner

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/uniformco/backoffice/internal/domain/shared"
)

// CustomerStatus represents where a customer is in the sales relationship
type CustomerStatus string

const (
	CustomerStatusProspect CustomerStatus = "prospect"
	CustomerStatusActive   CustomerStatus = "active"
	CustomerStatusInactive CustomerStatus = "inactive"
	CustomerStatusLead     CustomerStatus = "lead"
)

// IsValid checks if the status is valid
func (s CustomerStatus) IsValid() bool {
	switch s {
	case CustomerStatusProspect, CustomerStatusActive, CustomerStatusInactive, CustomerStatusLead:
		return true
	}
	return false
}

// String returns the string representation
func (s CustomerStatus) String() string {
	return string(s)
}

// TagConvertedInquiry marks customers created by converting an inquiry
const TagConvertedInquiry = "converted-inquiry"

// CustomerDetails are the caller-editable contact and classification fields
type CustomerDetails struct {
	Name          string
	Email         string
	Phone         string
	Company       string
	Address       shared.Address
	BusinessType  shared.BusinessType
	Industry      string
	EmployeeCount int
	Source        string
}

// CustomerUpdate is an allow-listed partial update; nil fields are left alone
type CustomerUpdate struct {
	Name          *string
	Email         *string
	Phone         *string
	Company       *string
	Address       *shared.Address
	BusinessType  *shared.BusinessType
	Industry      *string
	EmployeeCount *int
	Source        *string
}

// Customer is a business or individual buyer
type Customer struct {
	shared.BaseAggregateRoot
	Name           string
	Email          string
	Phone          string
	Company        string
	Address        shared.Address
	BusinessType   shared.BusinessType
	Industry       string
	EmployeeCount  int
	Status         CustomerStatus
	Source         string
	Tags           []string
	AssignedTo     *uuid.UUID
	CreatedBy      *uuid.UUID
	TotalOrders    int
	TotalRevenue   decimal.Decimal
	LastOrderDate  *time.Time
	LastContact    *time.Time
	Notes          []shared.Note
	Communications []shared.Communication
}

// NewCustomer creates a new customer
func NewCustomer(d CustomerDetails, status CustomerStatus, createdBy *uuid.UUID) (*Customer, error) {
	if status == "" {
		status = CustomerStatusProspect
	}
	if !status.IsValid() {
		return nil, shared.NewValidationError("status", "INVALID_STATUS", "Invalid customer status")
	}
	c := &Customer{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Status:            status,
		Tags:              make([]string, 0),
		CreatedBy:         createdBy,
		TotalRevenue:      decimal.Zero,
		Notes:             make([]shared.Note, 0),
		Communications:    make([]shared.Communication, 0),
	}
	if err := c.apply(d); err != nil {
		return nil, err
	}

	c.AddDomainEvent(NewCustomerCreatedEvent(c))
	return c, nil
}

func (c *Customer) apply(d CustomerDetails) error {
	name := strings.TrimSpace(d.Name)
	if err := shared.ValidateLength("name", name, 1, 100); err != nil {
		return err
	}
	email := shared.NormalizeEmail(d.Email)
	if err := shared.ValidateEmail("email", email); err != nil {
		return err
	}
	phone := strings.TrimSpace(d.Phone)
	if err := shared.ValidatePhone("phone", phone); err != nil {
		return err
	}
	if err := shared.ValidateLength("company", d.Company, 0, 200); err != nil {
		return err
	}
	// an unset business type stays empty so a later merge can fill it
	if d.BusinessType != "" && !d.BusinessType.IsValid() {
		return shared.NewValidationError("business_type", "INVALID_BUSINESS_TYPE", "Invalid business type")
	}
	if d.EmployeeCount < 0 {
		return shared.NewValidationError("employee_count", "INVALID_EMPLOYEE_COUNT", "Employee count cannot be negative")
	}

	c.Name = name
	c.Email = email
	c.Phone = phone
	c.Company = strings.TrimSpace(d.Company)
	c.Address = d.Address.Trimmed()
	c.BusinessType = d.BusinessType
	c.Industry = strings.TrimSpace(d.Industry)
	c.EmployeeCount = d.EmployeeCount
	c.Source = strings.TrimSpace(d.Source)
	return nil
}

// Details returns the editable fields as a CustomerDetails value
func (c *Customer) Details() CustomerDetails {
	return CustomerDetails{
		Name:          c.Name,
		Email:         c.Email,
		Phone:         c.Phone,
		Company:       c.Company,
		Address:       c.Address,
		BusinessType:  c.BusinessType,
		Industry:      c.Industry,
		EmployeeCount: c.EmployeeCount,
		Source:        c.Source,
	}
}

// Update applies an allow-listed partial update
func (c *Customer) Update(u CustomerUpdate) error {
	d := c.Details()
	if u.Name != nil {
		d.Name = *u.Name
	}
	if u.Email != nil {
		d.Email = *u.Email
	}
	if u.Phone != nil {
		d.Phone = *u.Phone
	}
	if u.Company != nil {
		d.Company = *u.Company
	}
	if u.Address != nil {
		d.Address = *u.Address
	}
	if u.BusinessType != nil {
		d.BusinessType = *u.BusinessType
	}
	if u.Industry != nil {
		d.Industry = *u.Industry
	}
	if u.EmployeeCount != nil {
		d.EmployeeCount = *u.EmployeeCount
	}
	if u.Source != nil {
		d.Source = *u.Source
	}
	if err := c.apply(d); err != nil {
		return err
	}
	c.Touch()
	c.AddDomainEvent(NewCustomerUpdatedEvent(c))
	return nil
}

// FillMissing copies fields from src only where the customer's field is empty.
// It returns the names of the fields that were filled.
func (c *Customer) FillMissing(src CustomerDetails) []string {
	filled := make([]string, 0)
	fill := func(name string, dst *string, v string) {
		if strings.TrimSpace(*dst) == "" && strings.TrimSpace(v) != "" {
			*dst = strings.TrimSpace(v)
			filled = append(filled, name)
		}
	}

	fill("company", &c.Company, src.Company)
	if c.Phone == "" && shared.ValidatePhone("phone", strings.TrimSpace(src.Phone)) == nil {
		fill("phone", &c.Phone, src.Phone)
	}
	if c.BusinessType == "" && src.BusinessType.IsValid() {
		c.BusinessType = src.BusinessType
		filled = append(filled, "business_type")
	}
	fill("industry", &c.Industry, src.Industry)
	if c.EmployeeCount == 0 && src.EmployeeCount > 0 {
		c.EmployeeCount = src.EmployeeCount
		filled = append(filled, "employee_count")
	}
	fill("address.street", &c.Address.Street, src.Address.Street)
	fill("address.city", &c.Address.City, src.Address.City)
	fill("address.state", &c.Address.State, src.Address.State)
	fill("address.postal_code", &c.Address.PostalCode, src.Address.PostalCode)
	fill("address.country", &c.Address.Country, src.Address.Country)

	if len(filled) > 0 {
		c.Touch()
	}
	return filled
}

// AddNote appends a note
func (c *Customer) AddNote(content string, authorID *uuid.UUID, internal bool) (*shared.Note, error) {
	note, err := shared.NewNote(content, authorID, internal)
	if err != nil {
		return nil, err
	}
	c.Notes = append(c.Notes, note)
	c.Touch()
	return &c.Notes[len(c.Notes)-1], nil
}

// AddCommunication appends a communication record and refreshes LastContact
func (c *Customer) AddCommunication(in shared.CommunicationInput, authorID *uuid.UUID) (*shared.Communication, error) {
	comm, err := shared.NewCommunication(in, authorID)
	if err != nil {
		return nil, err
	}
	c.Communications = append(c.Communications, comm)
	c.MarkContacted(comm.Date)
	return &c.Communications[len(c.Communications)-1], nil
}

// MarkContacted sets LastContact
func (c *Customer) MarkContacted(at time.Time) {
	c.LastContact = &at
	c.Touch()
}

// UpdateStatus sets the status, optionally recording a note
func (c *Customer) UpdateStatus(status CustomerStatus, actorID *uuid.UUID, notes string) error {
	if !status.IsValid() {
		return shared.NewValidationError("status", "INVALID_STATUS", "Invalid customer status")
	}
	old := c.Status
	c.Status = status
	c.Touch()
	if notes = strings.TrimSpace(notes); notes != "" {
		if _, err := c.AddNote(notes, actorID, true); err != nil {
			return err
		}
	}
	if old != status {
		c.AddDomainEvent(NewCustomerStatusChangedEvent(c, old, status))
	}
	return nil
}

// AssignTo sets the staff owner, optionally recording a note
func (c *Customer) AssignTo(userID uuid.UUID, actorID *uuid.UUID, notes string) error {
	if userID == uuid.Nil {
		return shared.NewValidationError("assigned_to", "INVALID_ASSIGNEE", "Assignee is required")
	}
	c.AssignedTo = &userID
	c.Touch()
	if notes = strings.TrimSpace(notes); notes != "" {
		if _, err := c.AddNote(notes, actorID, true); err != nil {
			return err
		}
	}
	return nil
}

// AddTag adds a tag once
func (c *Customer) AddTag(tag string) {
	tag = strings.ToLower(strings.TrimSpace(tag))
	if tag == "" || c.HasTag(tag) {
		return
	}
	c.Tags = append(c.Tags, tag)
	c.Touch()
}

// RemoveTag removes a tag if present
func (c *Customer) RemoveTag(tag string) {
	tag = strings.ToLower(strings.TrimSpace(tag))
	out := c.Tags[:0]
	for _, t := range c.Tags {
		if t != tag {
			out = append(out, t)
		}
	}
	c.Tags = out
	c.Touch()
}

// HasTag reports whether the customer carries tag
func (c *Customer) HasTag(tag string) bool {
	for _, t := range c.Tags {
		if t == tag {
			return true
		}
	}
	return false
}

// RecordCompletedOrder bumps the running totals. Only the order completion path calls it.
func (c *Customer) RecordCompletedOrder(amount decimal.Decimal, at time.Time) error {
	if amount.IsNegative() {
		return shared.NewValidationError("amount", "INVALID_AMOUNT", "Order amount cannot be negative")
	}
	c.TotalOrders++
	c.TotalRevenue = c.TotalRevenue.Add(amount)
	if c.LastOrderDate == nil || at.After(*c.LastOrderDate) {
		c.LastOrderDate = &at
	}
	if c.Status == CustomerStatusProspect || c.Status == CustomerStatusLead {
		c.Status = CustomerStatusActive
	}
	c.Touch()
	return nil
}

// FullAddress returns the non-empty address components joined by ", "
func (c *Customer) FullAddress() string {
	return c.Address.Full()
}
