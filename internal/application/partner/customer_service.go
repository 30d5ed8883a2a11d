package partner

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/uniformco/backoffice/internal/domain/identity"
	"github.com/uniformco/backoffice/internal/domain/partner"
	"github.com/uniformco/backoffice/internal/domain/shared"
	"github.com/uniformco/backoffice/internal/domain/trade"
)

var errCustomerNotFound = shared.NewNotFoundError("CUSTOMER_NOT_FOUND", "Customer not found")

// CustomerService handles customer-related business operations
type CustomerService struct {
	customerRepo partner.CustomerRepository
	orderRepo    trade.OrderRepository
	events       shared.EventPublisher
	logger       *zap.Logger
}

// NewCustomerService creates a new CustomerService
func NewCustomerService(
	customerRepo partner.CustomerRepository,
	orderRepo trade.OrderRepository,
	events shared.EventPublisher,
	logger *zap.Logger,
) *CustomerService {
	return &CustomerService{
		customerRepo: customerRepo,
		orderRepo:    orderRepo,
		events:       events,
		logger:       logger,
	}
}

// Create creates a new customer
func (s *CustomerService) Create(ctx context.Context, actor identity.Principal, req CreateCustomerRequest) (*CustomerResponse, error) {
	if err := identity.Authorize(actor, identity.ResourceCustomers, identity.ActionCreate, nil); err != nil {
		return nil, err
	}

	exists, err := s.customerRepo.ExistsByEmail(ctx, shared.NormalizeEmail(req.Email))
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, shared.NewConflictError("CUSTOMER_ALREADY_EXISTS", "Customer with this email already exists").WithField("email")
	}

	customer, err := partner.NewCustomer(req.details(), partner.CustomerStatus(req.Status), shared.UserRef(actor.UserID))
	if err != nil {
		return nil, err
	}
	for _, tag := range req.Tags {
		customer.AddTag(tag)
	}

	switch {
	case req.AssignedTo != nil && identity.CanSeeAll(actor):
		if err := customer.AssignTo(*req.AssignedTo, shared.UserRef(actor.UserID), ""); err != nil {
			return nil, err
		}
	case actor.Role == identity.RoleStaff:
		// staff own what they create
		_ = customer.AssignTo(actor.UserID, nil, "")
	}

	if err := s.customerRepo.Create(ctx, customer); err != nil {
		return nil, err
	}
	shared.PublishAndClear(ctx, s.events, customer)

	s.logger.Info("Customer created",
		zap.String("customer_id", customer.ID.String()),
		zap.String("email", customer.Email),
		zap.String("actor", actor.Username))

	resp := ToCustomerResponse(customer)
	return &resp, nil
}

// GetByID retrieves a customer by ID
func (s *CustomerService) GetByID(ctx context.Context, actor identity.Principal, id uuid.UUID) (*CustomerResponse, error) {
	customer, err := s.load(ctx, actor, id, identity.ActionRead)
	if err != nil {
		return nil, err
	}
	resp := ToCustomerResponse(customer)
	return &resp, nil
}

// List retrieves a page of customers visible to the caller
func (s *CustomerService) List(ctx context.Context, actor identity.Principal, filter CustomerListFilter) (*shared.Paginated[CustomerResponse], error) {
	if err := identity.Authorize(actor, identity.ResourceCustomers, identity.ActionRead, nil); err != nil {
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
	if filter.BusinessType != "" {
		f.Filters["business_type"] = filter.BusinessType
	}
	if filter.AssignedTo != "" {
		f.Filters["assigned_to"] = filter.AssignedTo
	}
	if filter.Tag != "" {
		f.Filters["tag"] = filter.Tag
	}
	if scope, ok := identity.VisibilityScope(actor); ok {
		f.Filters["visible_to"] = scope
	}

	customers, err := s.customerRepo.FindAll(ctx, f)
	if err != nil {
		return nil, err
	}
	total, err := s.customerRepo.Count(ctx, f)
	if err != nil {
		return nil, err
	}

	items := make([]CustomerResponse, len(customers))
	for i := range customers {
		items[i] = ToCustomerListResponse(&customers[i])
	}
	page := shared.NewPaginated(items, total, f.Page, f.PageSize)
	return &page, nil
}

// Update applies an allow-listed partial update
func (s *CustomerService) Update(ctx context.Context, actor identity.Principal, id uuid.UUID, req UpdateCustomerRequest) (*CustomerResponse, error) {
	customer, err := s.load(ctx, actor, id, identity.ActionUpdate)
	if err != nil {
		return nil, err
	}

	if req.Email != nil {
		email := shared.NormalizeEmail(*req.Email)
		if email != customer.Email {
			exists, err := s.customerRepo.ExistsByEmail(ctx, email)
			if err != nil {
				return nil, err
			}
			if exists {
				return nil, shared.NewConflictError("CUSTOMER_ALREADY_EXISTS", "Customer with this email already exists").WithField("email")
			}
		}
	}

	if err := customer.Update(req.update()); err != nil {
		return nil, err
	}
	return s.save(ctx, customer)
}

// Delete removes a customer that has no orders
func (s *CustomerService) Delete(ctx context.Context, actor identity.Principal, id uuid.UUID) error {
	customer, err := s.load(ctx, actor, id, identity.ActionDelete)
	if err != nil {
		return err
	}

	orders, err := s.orderRepo.CountByCustomer(ctx, customer.ID)
	if err != nil {
		return err
	}
	if orders > 0 {
		return shared.NewConflictError("CUSTOMER_HAS_ORDERS", "Customer has orders and cannot be deleted; set the status to inactive instead")
	}

	if err := s.customerRepo.Delete(ctx, customer.ID); err != nil {
		return notFound(err)
	}
	s.logger.Info("Customer deleted", zap.String("customer_id", id.String()), zap.String("actor", actor.Username))
	return nil
}

// AddNote appends a note to the customer
func (s *CustomerService) AddNote(ctx context.Context, actor identity.Principal, id uuid.UUID, req NoteRequest) (*CustomerResponse, error) {
	customer, err := s.load(ctx, actor, id, identity.ActionUpdate)
	if err != nil {
		return nil, err
	}
	if _, err := customer.AddNote(req.Content, shared.UserRef(actor.UserID), req.IsInternal); err != nil {
		return nil, err
	}
	return s.save(ctx, customer)
}

// AddCommunication records a contact and refreshes LastContact
func (s *CustomerService) AddCommunication(ctx context.Context, actor identity.Principal, id uuid.UUID, req CommunicationRequest) (*CustomerResponse, error) {
	customer, err := s.load(ctx, actor, id, identity.ActionUpdate)
	if err != nil {
		return nil, err
	}
	if _, err := customer.AddCommunication(req.ToInput(), shared.UserRef(actor.UserID)); err != nil {
		return nil, err
	}
	return s.save(ctx, customer)
}

// UpdateStatus moves the customer to another status
func (s *CustomerService) UpdateStatus(ctx context.Context, actor identity.Principal, id uuid.UUID, req CustomerStatusRequest) (*CustomerResponse, error) {
	customer, err := s.load(ctx, actor, id, identity.ActionUpdate)
	if err != nil {
		return nil, err
	}
	if err := customer.UpdateStatus(partner.CustomerStatus(req.Status), shared.UserRef(actor.UserID), req.Notes); err != nil {
		return nil, err
	}
	return s.save(ctx, customer)
}

// Assign hands the customer to a staff member. Staff may only claim for themselves.
func (s *CustomerService) Assign(ctx context.Context, actor identity.Principal, id uuid.UUID, req AssignRequest) (*CustomerResponse, error) {
	customer, err := s.load(ctx, actor, id, identity.ActionUpdate)
	if err != nil {
		return nil, err
	}
	if !identity.CanSeeAll(actor) && req.UserID != actor.UserID {
		return nil, identity.ErrPermissionDenied
	}
	if err := customer.AssignTo(req.UserID, shared.UserRef(actor.UserID), req.Notes); err != nil {
		return nil, err
	}
	return s.save(ctx, customer)
}

// UpdateTags adds and removes tags
func (s *CustomerService) UpdateTags(ctx context.Context, actor identity.Principal, id uuid.UUID, req TagsRequest) (*CustomerResponse, error) {
	customer, err := s.load(ctx, actor, id, identity.ActionUpdate)
	if err != nil {
		return nil, err
	}
	for _, tag := range req.Remove {
		customer.RemoveTag(tag)
	}
	for _, tag := range req.Add {
		customer.AddTag(tag)
	}
	return s.save(ctx, customer)
}

// Orders lists the customer's order history, newest first
func (s *CustomerService) Orders(ctx context.Context, actor identity.Principal, id uuid.UUID, page, pageSize int) (*shared.Paginated[CustomerOrderSummary], error) {
	customer, err := s.load(ctx, actor, id, identity.ActionRead)
	if err != nil {
		return nil, err
	}

	f := shared.DefaultFilter()
	if page > 0 {
		f.Page = page
	}
	if pageSize > 0 {
		f.PageSize = min(pageSize, 100)
	}
	orders, err := s.orderRepo.FindByCustomer(ctx, customer.ID, f)
	if err != nil {
		return nil, err
	}
	total, err := s.orderRepo.CountByCustomer(ctx, customer.ID)
	if err != nil {
		return nil, err
	}

	items := make([]CustomerOrderSummary, len(orders))
	for i, o := range orders {
		items[i] = CustomerOrderSummary{
			ID:            o.ID,
			OrderNumber:   o.OrderNumber,
			Type:          string(o.Type),
			Status:        string(o.Status),
			PaymentStatus: string(o.PaymentStatus),
			TotalAmount:   o.TotalAmount,
			PaidAmount:    o.PaidAmount,
			ItemCount:     len(o.Items),
			CreatedAt:     o.CreatedAt,
		}
	}
	result := shared.NewPaginated(items, total, f.Page, f.PageSize)
	return &result, nil
}

// CountByStatus returns customer counts by status
func (s *CustomerService) CountByStatus(ctx context.Context) (map[string]int64, error) {
	counts, err := s.customerRepo.CountByStatus(ctx)
	if err != nil {
		return nil, err
	}
	out := map[string]int64{
		string(partner.CustomerStatusProspect): 0,
		string(partner.CustomerStatusActive):   0,
		string(partner.CustomerStatusInactive): 0,
		string(partner.CustomerStatusLead):     0,
	}
	for status, n := range counts {
		out[string(status)] = n
	}
	out["total"] = counts[partner.CustomerStatusProspect] + counts[partner.CustomerStatusActive] +
		counts[partner.CustomerStatusInactive] + counts[partner.CustomerStatusLead]
	return out, nil
}

func (s *CustomerService) load(ctx context.Context, actor identity.Principal, id uuid.UUID, action identity.Action) (*partner.Customer, error) {
	if err := identity.Authorize(actor, identity.ResourceCustomers, action, nil); err != nil {
		return nil, err
	}
	customer, err := s.customerRepo.FindByID(ctx, id)
	if err != nil {
		return nil, notFound(err)
	}
	owner := identity.Ownership{AssignedTo: customer.AssignedTo, CreatedBy: customer.CreatedBy}
	if err := identity.AuthorizeRecord(actor, identity.ResourceCustomers, action, owner, errCustomerNotFound); err != nil {
		return nil, err
	}
	return customer, nil
}

func (s *CustomerService) save(ctx context.Context, customer *partner.Customer) (*CustomerResponse, error) {
	if err := s.customerRepo.Save(ctx, customer); err != nil {
		return nil, notFound(err)
	}
	shared.PublishAndClear(ctx, s.events, customer)
	resp := ToCustomerResponse(customer)
	return &resp, nil
}

func notFound(err error) error {
	if errors.Is(err, shared.ErrNotFound) {
		return errCustomerNotFound
	}
	return err
}
