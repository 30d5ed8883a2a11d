package sales

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	partnerapp "github.com/uniformco/backoffice/internal/application/partner"
	"github.com/uniformco/backoffice/internal/domain/identity"
	"github.com/uniformco/backoffice/internal/domain/partner"
	"github.com/uniformco/backoffice/internal/domain/sales"
	"github.com/uniformco/backoffice/internal/domain/shared"
	"github.com/uniformco/backoffice/internal/domain/trade"
)

const (
	maxNumberAttempts = 3
	reconcileBatch    = 100
)

var errInquiryNotFound = shared.NewNotFoundError("INQUIRY_NOT_FOUND", "Inquiry not found")

// Metrics receives the business counters of the lead workflow
type Metrics interface {
	InquirySubmitted(source string)
	InquiryConverted(newCustomer bool)
}

type nopMetrics struct{}

func (nopMetrics) InquirySubmitted(string) {}
func (nopMetrics) InquiryConverted(bool)   {}

// InquiryService handles lead intake, the lead lifecycle and conversion to customers
type InquiryService struct {
	inquiryRepo  sales.InquiryRepository
	customerRepo partner.CustomerRepository
	orderRepo    trade.OrderRepository
	numbers      shared.NumberGenerator
	tx           shared.TransactionManager
	events       shared.EventPublisher
	metrics      Metrics
	logger       *zap.Logger
	now          func() time.Time
}

// NewInquiryService creates a new InquiryService. metrics may be nil.
func NewInquiryService(
	inquiryRepo sales.InquiryRepository,
	customerRepo partner.CustomerRepository,
	orderRepo trade.OrderRepository,
	numbers shared.NumberGenerator,
	tx shared.TransactionManager,
	events shared.EventPublisher,
	metrics Metrics,
	logger *zap.Logger,
) *InquiryService {
	if metrics == nil {
		metrics = nopMetrics{}
	}
	return &InquiryService{
		inquiryRepo:  inquiryRepo,
		customerRepo: customerRepo,
		orderRepo:    orderRepo,
		numbers:      numbers,
		tx:           tx,
		events:       events,
		metrics:      metrics,
		logger:       logger,
		now:          func() time.Time { return time.Now().UTC() },
	}
}

// Submit records a lead from the public contact form
func (s *InquiryService) Submit(ctx context.Context, req SubmitInquiryRequest) (*SubmissionReceipt, error) {
	// public callers cannot choose how urgent they are
	req.Priority = ""
	inquiry, err := s.create(ctx, req.submission(), func(*sales.Inquiry) error { return nil })
	if err != nil {
		return nil, err
	}
	return &SubmissionReceipt{
		InquiryNumber: inquiry.InquiryNumber,
		Status:        string(inquiry.Status),
		SubmittedAt:   inquiry.CreatedAt,
	}, nil
}

// Create records a lead entered by staff. Staff own the leads they enter.
func (s *InquiryService) Create(ctx context.Context, actor identity.Principal, req CreateInquiryRequest) (*InquiryResponse, error) {
	if err := identity.Authorize(actor, identity.ResourceInquiries, identity.ActionCreate, nil); err != nil {
		return nil, err
	}
	submission := req.submission()
	if submission.Source == "" {
		submission.Source = sales.SourcePhone
	}
	inquiry, err := s.create(ctx, submission, func(i *sales.Inquiry) error {
		assignee := actor.UserID
		if req.AssignedTo != nil && identity.CanSeeAll(actor) {
			assignee = *req.AssignedTo
		} else if identity.CanSeeAll(actor) {
			return nil
		}
		return i.AssignTo(assignee, shared.UserRef(actor.UserID), "")
	})
	if err != nil {
		return nil, err
	}
	resp := ToInquiryResponse(inquiry)
	return &resp, nil
}

// create numbers and stores a new inquiry, retrying when the number collides
func (s *InquiryService) create(ctx context.Context, submission sales.Submission, prepare func(*sales.Inquiry) error) (*sales.Inquiry, error) {
	var inquiry *sales.Inquiry
	var err error
	for attempt := 1; ; attempt++ {
		err = s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
			number, err := s.numbers.Next(ctx, s.now())
			if err != nil {
				return err
			}
			inquiry, err = sales.NewInquiry(number, submission)
			if err != nil {
				return err
			}
			if err := prepare(inquiry); err != nil {
				return err
			}
			return s.inquiryRepo.Create(ctx, inquiry)
		})
		if errors.Is(err, shared.ErrDuplicateNumber) && attempt < maxNumberAttempts {
			s.logger.Warn("Inquiry number collision, retrying", zap.Int("attempt", attempt))
			if err := shared.ResyncNumbers(ctx, s.numbers, s.now()); err != nil {
				s.logger.Warn("Failed to resync inquiry numbers", zap.Error(err))
			}
			continue
		}
		break
	}
	if err != nil {
		return nil, err
	}

	shared.PublishAndClear(ctx, s.events, inquiry)
	s.metrics.InquirySubmitted(string(inquiry.Source))
	s.logger.Info("Inquiry received",
		zap.String("inquiry_id", inquiry.ID.String()),
		zap.String("inquiry_number", inquiry.InquiryNumber),
		zap.String("source", string(inquiry.Source)),
		zap.Int("quantity", inquiry.Quantity))
	return inquiry, nil
}

// GetByID retrieves an inquiry by ID
func (s *InquiryService) GetByID(ctx context.Context, actor identity.Principal, id uuid.UUID) (*InquiryResponse, error) {
	inquiry, err := s.load(ctx, actor, id, identity.ActionRead)
	if err != nil {
		return nil, err
	}
	resp := ToInquiryResponse(inquiry)
	return &resp, nil
}

// List retrieves a page of inquiries visible to the caller
func (s *InquiryService) List(ctx context.Context, actor identity.Principal, filter InquiryListFilter) (*shared.Paginated[InquiryResponse], error) {
	if err := identity.Authorize(actor, identity.ResourceInquiries, identity.ActionRead, nil); err != nil {
		return nil, err
	}

	f := shared.DefaultFilter()
	f.Search = filter.Search
	if filter.Page > 0 {
		f.Page = filter.Page
	}
	if filter.PageSize > 0 {
		f.PageSize = filter.PageSize
	}
	if filter.OrderBy != "" {
		f.OrderBy = filter.OrderBy
	}
	if filter.OrderDir != "" {
		f.OrderDir = filter.OrderDir
	}
	if filter.Status != "" {
		f.Filters["status"] = filter.Status
	}
	if filter.Priority != "" {
		f.Filters["priority"] = filter.Priority
	}
	if filter.Source != "" {
		f.Filters["source"] = filter.Source
	}
	if filter.BusinessType != "" {
		f.Filters["business_type"] = filter.BusinessType
	}
	if filter.AssignedTo != "" {
		f.Filters["assigned_to"] = filter.AssignedTo
	}
	if filter.From != nil {
		f.Filters["from"] = filter.From.UTC()
	}
	if filter.To != nil {
		// the end date is inclusive
		f.Filters["to"] = filter.To.UTC().AddDate(0, 0, 1)
	}
	if scope, ok := identity.VisibilityScope(actor); ok {
		f.Filters["visible_to"] = scope
	}

	inquiries, err := s.inquiryRepo.FindAll(ctx, f)
	if err != nil {
		return nil, err
	}
	total, err := s.inquiryRepo.Count(ctx, f)
	if err != nil {
		return nil, err
	}

	items := make([]InquiryResponse, len(inquiries))
	for i := range inquiries {
		items[i] = ToInquiryListResponse(&inquiries[i])
	}
	page := shared.NewPaginated(items, total, f.Page, f.PageSize)
	return &page, nil
}

// Update changes contact, requirement and priority fields of an unconverted inquiry
func (s *InquiryService) Update(ctx context.Context, actor identity.Principal, id uuid.UUID, req UpdateInquiryRequest) (*InquiryResponse, error) {
	inquiry, err := s.load(ctx, actor, id, identity.ActionUpdate)
	if err != nil {
		return nil, err
	}
	if err := inquiry.UpdateDetails(req.apply(inquiry.Submission())); err != nil {
		return nil, err
	}
	return s.save(ctx, inquiry)
}

// AddNote appends a note
func (s *InquiryService) AddNote(ctx context.Context, actor identity.Principal, id uuid.UUID, req partnerapp.NoteRequest) (*InquiryResponse, error) {
	inquiry, err := s.load(ctx, actor, id, identity.ActionUpdate)
	if err != nil {
		return nil, err
	}
	if _, err := inquiry.AddNote(req.Content, shared.UserRef(actor.UserID), req.IsInternal); err != nil {
		return nil, err
	}
	return s.save(ctx, inquiry)
}

// AddCommunication records a contact with the lead
func (s *InquiryService) AddCommunication(ctx context.Context, actor identity.Principal, id uuid.UUID, req partnerapp.CommunicationRequest) (*InquiryResponse, error) {
	inquiry, err := s.load(ctx, actor, id, identity.ActionUpdate)
	if err != nil {
		return nil, err
	}
	if _, err := inquiry.AddCommunication(req.ToInput(), shared.UserRef(actor.UserID)); err != nil {
		return nil, err
	}
	return s.save(ctx, inquiry)
}

// UpdateStatus moves the inquiry along its lifecycle
func (s *InquiryService) UpdateStatus(ctx context.Context, actor identity.Principal, id uuid.UUID, req InquiryStatusRequest) (*InquiryResponse, error) {
	inquiry, err := s.load(ctx, actor, id, identity.ActionUpdate)
	if err != nil {
		return nil, err
	}
	if err := inquiry.UpdateStatus(sales.InquiryStatus(req.Status), shared.UserRef(actor.UserID), req.Notes); err != nil {
		return nil, err
	}
	return s.save(ctx, inquiry)
}

// Assign hands the inquiry to a staff member. Staff may only claim for themselves.
func (s *InquiryService) Assign(ctx context.Context, actor identity.Principal, id uuid.UUID, req partnerapp.AssignRequest) (*InquiryResponse, error) {
	inquiry, err := s.load(ctx, actor, id, identity.ActionUpdate)
	if err != nil {
		return nil, err
	}
	if !identity.CanSeeAll(actor) && req.UserID != actor.UserID {
		return nil, identity.ErrPermissionDenied
	}
	if err := inquiry.AssignTo(req.UserID, shared.UserRef(actor.UserID), req.Notes); err != nil {
		return nil, err
	}
	return s.save(ctx, inquiry)
}

// ScheduleFollowUp sets the next follow-up date
func (s *InquiryService) ScheduleFollowUp(ctx context.Context, actor identity.Principal, id uuid.UUID, req FollowUpRequest) (*InquiryResponse, error) {
	inquiry, err := s.load(ctx, actor, id, identity.ActionUpdate)
	if err != nil {
		return nil, err
	}
	if !inquiry.Status.IsActive() {
		return nil, shared.NewConflictError("INVALID_STATE", fmt.Sprintf("Cannot schedule a follow-up for a %s inquiry", inquiry.Status))
	}
	if err := inquiry.ScheduleFollowUp(req.NextFollowUp.UTC(), req.Notes); err != nil {
		return nil, err
	}
	return s.save(ctx, inquiry)
}

// Delete removes an inquiry that was never converted
func (s *InquiryService) Delete(ctx context.Context, actor identity.Principal, id uuid.UUID) error {
	inquiry, err := s.load(ctx, actor, id, identity.ActionDelete)
	if err != nil {
		return err
	}
	if err := inquiry.CanDelete(); err != nil {
		return err
	}
	if err := s.inquiryRepo.Delete(ctx, inquiry.ID); err != nil {
		return notFound(err)
	}
	s.logger.Info("Inquiry deleted",
		zap.String("inquiry_id", id.String()),
		zap.String("inquiry_number", inquiry.InquiryNumber),
		zap.String("actor", actor.Username))
	return nil
}

// Convert turns the inquiry into a customer. An existing customer with the same
// email only has its empty fields filled; otherwise a new customer is created.
// Both records are written in one transaction.
func (s *InquiryService) Convert(ctx context.Context, actor identity.Principal, id uuid.UUID, req ConvertInquiryRequest) (*ConvertResult, error) {
	if err := identity.Authorize(actor, identity.ResourceCustomers, identity.ActionCreate, nil); err != nil {
		return nil, err
	}
	status := partner.CustomerStatus(req.Status)
	if status != "" && !status.IsValid() {
		return nil, shared.NewValidationError("status", "INVALID_STATUS", "Invalid customer status")
	}
	if req.AssignedTo != nil && !identity.CanSeeAll(actor) && *req.AssignedTo != actor.UserID {
		return nil, identity.ErrPermissionDenied
	}

	var (
		inquiry  *sales.Inquiry
		customer *partner.Customer
		isNew    bool
		filled   []string
	)
	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		var err error
		inquiry, err = s.load(ctx, actor, id, identity.ActionUpdate)
		if err != nil {
			return err
		}
		if inquiry.IsConverted() {
			return shared.NewConflictError("INQUIRY_ALREADY_CONVERTED", "Inquiry has already been converted")
		}

		customer, err = s.customerRepo.FindByEmail(ctx, inquiry.Email)
		switch {
		case err == nil:
			filled, err = s.mergeInto(ctx, customer, inquiry, actor, status, req)
		case errors.Is(err, shared.ErrNotFound):
			isNew = true
			customer, err = s.createFrom(ctx, inquiry, actor, status, req)
		}
		if err != nil {
			return err
		}

		return s.stamp(ctx, inquiry, customer.ID, shared.UserRef(actor.UserID))
	})
	if err != nil {
		return nil, err
	}

	shared.PublishAndClear(ctx, s.events, customer)
	shared.PublishAndClear(ctx, s.events, inquiry)
	s.metrics.InquiryConverted(isNew)
	s.logger.Info("Inquiry converted",
		zap.String("inquiry_id", inquiry.ID.String()),
		zap.String("inquiry_number", inquiry.InquiryNumber),
		zap.String("customer_id", customer.ID.String()),
		zap.Bool("new_customer", isNew),
		zap.Strings("filled_fields", filled),
		zap.String("actor", actor.Username))

	return &ConvertResult{
		Customer:      partnerapp.ToCustomerResponse(customer),
		Inquiry:       ToInquiryResponse(inquiry),
		IsNewCustomer: isNew,
		FilledFields:  filled,
	}, nil
}

func inquiryDetails(i *sales.Inquiry) partner.CustomerDetails {
	return partner.CustomerDetails{
		Name:          i.CustomerName,
		Email:         i.Email,
		Phone:         i.Phone,
		Company:       i.Company,
		Address:       i.Address,
		BusinessType:  i.BusinessType,
		Industry:      i.Industry,
		EmployeeCount: i.EmployeeCount,
		Source:        string(i.Source),
	}
}

func (s *InquiryService) mergeInto(ctx context.Context, customer *partner.Customer, inquiry *sales.Inquiry, actor identity.Principal, status partner.CustomerStatus, req ConvertInquiryRequest) ([]string, error) {
	actorRef := shared.UserRef(actor.UserID)
	filled := customer.FillMissing(inquiryDetails(inquiry))
	if req.AssignedTo != nil {
		if err := customer.AssignTo(*req.AssignedTo, actorRef, ""); err != nil {
			return nil, err
		}
	}
	if status != "" {
		if err := customer.UpdateStatus(status, actorRef, ""); err != nil {
			return nil, err
		}
	}
	customer.MarkContacted(s.now())

	text := fmt.Sprintf("Converted from inquiry %s", inquiry.InquiryNumber)
	if len(filled) > 0 {
		text += "; filled " + strings.Join(filled, ", ")
	}
	if note := strings.TrimSpace(req.Notes); note != "" {
		text += ". " + note
	}
	if _, err := customer.AddNote(text, actorRef, true); err != nil {
		return nil, err
	}
	if err := s.customerRepo.Save(ctx, customer); err != nil {
		return nil, err
	}
	return filled, nil
}

func (s *InquiryService) createFrom(ctx context.Context, inquiry *sales.Inquiry, actor identity.Principal, status partner.CustomerStatus, req ConvertInquiryRequest) (*partner.Customer, error) {
	actorRef := shared.UserRef(actor.UserID)
	if status == "" {
		status = partner.CustomerStatusProspect
	}
	customer, err := partner.NewCustomer(inquiryDetails(inquiry), status, actorRef)
	if err != nil {
		return nil, err
	}

	assignee := actor.UserID
	switch {
	case req.AssignedTo != nil:
		assignee = *req.AssignedTo
	case inquiry.AssignedTo != nil:
		assignee = *inquiry.AssignedTo
	}
	if err := customer.AssignTo(assignee, actorRef, ""); err != nil {
		return nil, err
	}
	customer.AddTag(partner.TagConvertedInquiry)
	customer.MarkContacted(s.now())

	text := fmt.Sprintf("Converted from inquiry %s", inquiry.InquiryNumber)
	if d := inquiry.Requirements.Description; d != "" {
		text += ". Requirements: " + d
	}
	if note := strings.TrimSpace(req.Notes); note != "" {
		text += ". " + note
	}
	if _, err := customer.AddNote(text, actorRef, false); err != nil {
		return nil, err
	}
	if err := s.customerRepo.Create(ctx, customer); err != nil {
		return nil, err
	}
	return customer, nil
}

// stamp marks the inquiry converted and documents the conversion as an outbound communication
func (s *InquiryService) stamp(ctx context.Context, inquiry *sales.Inquiry, customerID uuid.UUID, actorID *uuid.UUID) error {
	if err := inquiry.MarkConverted(customerID, actorID); err != nil {
		return err
	}
	if _, err := inquiry.AddCommunication(shared.CommunicationInput{
		Type:      shared.CommunicationOther,
		Direction: shared.DirectionOutbound,
		Subject:   "Converted to customer",
		Content:   fmt.Sprintf("Inquiry converted to customer %s", customerID),
	}, actorID); err != nil {
		return err
	}
	if err := s.inquiryRepo.Save(ctx, inquiry); err != nil {
		return notFound(err)
	}
	return nil
}

// LinkOrder records the order produced from a converted inquiry and its value
func (s *InquiryService) LinkOrder(ctx context.Context, actor identity.Principal, id uuid.UUID, req LinkOrderRequest) (*InquiryResponse, error) {
	inquiry, err := s.load(ctx, actor, id, identity.ActionUpdate)
	if err != nil {
		return nil, err
	}
	order, err := s.orderRepo.FindByID(ctx, req.OrderID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.NewValidationError("order_id", "ORDER_NOT_FOUND", "Order not found")
		}
		return nil, err
	}
	if inquiry.IsConverted() && *inquiry.ConvertedTo.CustomerID != order.CustomerID {
		return nil, shared.NewConflictError("ORDER_CUSTOMER_MISMATCH", "Order belongs to a different customer than the converted inquiry")
	}
	if err := inquiry.LinkOrder(order.ID, order.TotalAmount); err != nil {
		return nil, err
	}
	return s.save(ctx, inquiry)
}

// DueFollowUps lists active inquiries whose follow-up date has passed, limited
// to the caller's own leads for staff
func (s *InquiryService) DueFollowUps(ctx context.Context, actor identity.Principal) ([]InquiryResponse, error) {
	if err := identity.Authorize(actor, identity.ResourceInquiries, identity.ActionRead, nil); err != nil {
		return nil, err
	}
	due, err := s.inquiryRepo.FindDueFollowUps(ctx, s.now())
	if err != nil {
		return nil, err
	}
	items := make([]InquiryResponse, 0, len(due))
	for i := range due {
		owner := identity.Ownership{AssignedTo: due[i].AssignedTo}
		if identity.Authorize(actor, identity.ResourceInquiries, identity.ActionRead, &owner) != nil {
			continue
		}
		items = append(items, ToInquiryListResponse(&due[i]))
	}
	return items, nil
}

// RemindFollowUps raises a follow-up reminder for every due inquiry and returns how many were raised
func (s *InquiryService) RemindFollowUps(ctx context.Context) (int, error) {
	due, err := s.inquiryRepo.FindDueFollowUps(ctx, s.now())
	if err != nil {
		return 0, err
	}
	for i := range due {
		if err := s.events.Publish(ctx, sales.NewInquiryFollowUpDueEvent(&due[i])); err != nil {
			s.logger.Warn("Failed to publish follow-up reminder",
				zap.String("inquiry_id", due[i].ID.String()),
				zap.Error(err))
		}
	}
	if len(due) > 0 {
		s.logger.Info("Follow-up reminders raised", zap.Int("count", len(due)))
	}
	return len(due), nil
}

// ReconcileConversions repairs conversions where a customer was created from an
// inquiry but the inquiry itself was never stamped. A customer qualifies when it
// carries the converted-inquiry tag and a note citing the inquiry number, and the
// inquiry with that number and email has no conversion link.
func (s *InquiryService) ReconcileConversions(ctx context.Context) (int, error) {
	f := shared.DefaultFilter()
	f.PageSize = reconcileBatch
	f.OrderBy = "created_at"
	f.OrderDir = "asc"
	f.Filters["tag"] = partner.TagConvertedInquiry

	repaired := 0
	for {
		customers, err := s.customerRepo.FindAll(ctx, f)
		if err != nil {
			return repaired, err
		}
		for i := range customers {
			n, err := s.reconcileCustomer(ctx, &customers[i])
			if err != nil {
				return repaired, err
			}
			repaired += n
		}
		if len(customers) < f.PageSize {
			break
		}
		f.Page++
	}
	if repaired > 0 {
		s.logger.Warn("Repaired half-finished conversions", zap.Int("count", repaired))
	}
	return repaired, nil
}

func (s *InquiryService) reconcileCustomer(ctx context.Context, listed *partner.Customer) (int, error) {
	unstamped, err := s.inquiryRepo.FindUnstampedByEmail(ctx, listed.Email)
	if err != nil || len(unstamped) == 0 {
		return 0, err
	}
	// list results carry no notes
	customer, err := s.customerRepo.FindByID(ctx, listed.ID)
	if err != nil {
		return 0, err
	}

	repaired := 0
	for i := range unstamped {
		inquiry := &unstamped[i]
		if !citesInquiry(customer, inquiry.InquiryNumber) {
			continue
		}
		if err := s.stamp(ctx, inquiry, customer.ID, nil); err != nil {
			s.logger.Error("Failed to repair conversion",
				zap.String("inquiry_id", inquiry.ID.String()),
				zap.String("customer_id", customer.ID.String()),
				zap.Error(err))
			continue
		}
		shared.PublishAndClear(ctx, s.events, inquiry)
		s.logger.Info("Conversion repaired",
			zap.String("inquiry_number", inquiry.InquiryNumber),
			zap.String("customer_id", customer.ID.String()))
		repaired++
	}
	return repaired, nil
}

func citesInquiry(c *partner.Customer, number string) bool {
	for _, n := range c.Notes {
		if strings.Contains(n.Content, number) {
			return true
		}
	}
	return false
}

func (s *InquiryService) load(ctx context.Context, actor identity.Principal, id uuid.UUID, action identity.Action) (*sales.Inquiry, error) {
	if err := identity.Authorize(actor, identity.ResourceInquiries, action, nil); err != nil {
		return nil, err
	}
	inquiry, err := s.inquiryRepo.FindByID(ctx, id)
	if err != nil {
		return nil, notFound(err)
	}
	owner := identity.Ownership{AssignedTo: inquiry.AssignedTo}
	if err := identity.AuthorizeRecord(actor, identity.ResourceInquiries, action, owner, errInquiryNotFound); err != nil {
		return nil, err
	}
	return inquiry, nil
}

func (s *InquiryService) save(ctx context.Context, inquiry *sales.Inquiry) (*InquiryResponse, error) {
	if err := s.inquiryRepo.Save(ctx, inquiry); err != nil {
		return nil, notFound(err)
	}
	shared.PublishAndClear(ctx, s.events, inquiry)
	resp := ToInquiryResponse(inquiry)
	return &resp, nil
}

func notFound(err error) error {
	if errors.Is(err, shared.ErrNotFound) {
		return errInquiryNotFound
	}
	return err
}
