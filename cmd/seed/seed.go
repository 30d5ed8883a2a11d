package main

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	catalogapp "github.com/uniformco/backoffice/internal/application/catalog"
	identityapp "github.com/uniformco/backoffice/internal/application/identity"
	partnerapp "github.com/uniformco/backoffice/internal/application/partner"
	salesapp "github.com/uniformco/backoffice/internal/application/sales"
	tradeapp "github.com/uniformco/backoffice/internal/application/trade"
	"github.com/uniformco/backoffice/internal/domain/identity"
	"github.com/uniformco/backoffice/internal/domain/shared"
)

// options controls how much demo data is generated
type options struct {
	Password  string
	Customers int
	Inquiries int
	Orders    int
	Seed      uint64
}

// summary counts what a run created
type summary struct {
	Users     int
	Products  int
	Customers int
	Inquiries int
	Converted int
	Orders    int
}

type seeder struct {
	userRepo  identity.UserRepository
	users     *identityapp.UserService
	customers *partnerapp.CustomerService
	products  *catalogapp.ProductService
	inquiries *salesapp.InquiryService
	orders    *tradeapp.OrderService
	faker     *gofakeit.Faker
	log       *zap.Logger
}

type demoUser struct {
	username string
	name     string
	role     identity.Role
}

var demoUsers = []demoUser{
	{"admin", "Site Administrator", identity.RoleAdmin},
	{"manager", "Sales Manager", identity.RoleManager},
	{"anna", "Anna Staff", identity.RoleStaff},
	{"ben", "Ben Staff", identity.RoleStaff},
}

var (
	businessTypes = []string{"school", "college", "hotel", "hospital", "corporate", "industrial", "individual", "other"}
	uniformTypes  = []string{"school", "corporate", "hospital", "hotel", "industrial", "security", "sports"}
	sources       = []string{"website", "phone", "email", "referral", "social_media", "exhibition", "walk_in"}
	timelines     = []string{"Before the new term", "Within 4 weeks", "Next quarter", "Flexible"}
)

// run is idempotent for users and products; customers, inquiries and orders
// are added on every run.
func (s *seeder) run(ctx context.Context, catalogue io.Reader, opts options) (*summary, error) {
	sum := &summary{}

	principals, created, err := s.ensureUsers(ctx, opts.Password)
	if err != nil {
		return nil, err
	}
	sum.Users = created
	admin, manager := principals[0], principals[1]
	staff := principals[2:]

	imported, err := s.products.Import(ctx, admin, catalogue)
	if err != nil {
		return nil, fmt.Errorf("import catalogue: %w", err)
	}
	sum.Products = len(imported.Created)
	for _, e := range imported.Errors {
		s.log.Warn("Catalogue row rejected", zap.Int("line", e.Line), zap.String("column", e.Column), zap.String("message", e.Message))
	}

	var customerIDs []uuid.UUID
	for i := 0; i < opts.Customers; i++ {
		owner := staff[i%len(staff)]
		resp, err := s.customers.Create(ctx, owner, s.customerRequest())
		if shared.IsKind(err, shared.KindConflict) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("create customer: %w", err)
		}
		customerIDs = append(customerIDs, resp.ID)
	}
	sum.Customers = len(customerIDs)

	for i := 0; i < opts.Inquiries; i++ {
		receipt, err := s.inquiries.Submit(ctx, s.inquiryRequest())
		if err != nil {
			return nil, fmt.Errorf("submit inquiry: %w", err)
		}
		sum.Inquiries++

		// every third inquiry is won and becomes a customer
		if i%3 != 0 {
			continue
		}
		found, err := s.inquiries.List(ctx, admin, salesapp.InquiryListFilter{Search: receipt.InquiryNumber, PageSize: 1})
		if err != nil || len(found.Items) == 0 {
			return nil, fmt.Errorf("find inquiry %s: %w", receipt.InquiryNumber, err)
		}
		owner := staff[i%len(staff)].UserID
		result, err := s.inquiries.Convert(ctx, manager, found.Items[0].ID, salesapp.ConvertInquiryRequest{
			AssignedTo: &owner,
			Notes:      "Converted during demo seeding",
		})
		if err != nil {
			return nil, fmt.Errorf("convert inquiry: %w", err)
		}
		sum.Converted++
		if result.IsNewCustomer {
			customerIDs = append(customerIDs, result.Customer.ID)
		}
	}

	if len(customerIDs) == 0 || opts.Orders == 0 {
		return sum, nil
	}
	catalog, err := s.products.List(ctx, admin, catalogapp.ProductListFilter{PageSize: 100})
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	if len(catalog.Items) == 0 {
		return sum, nil
	}

	for i := 0; i < opts.Orders; i++ {
		req := tradeapp.CreateOrderRequest{
			CustomerID:   customerIDs[s.faker.IntRange(0, len(customerIDs)-1)],
			ShippingCost: decimal.NewFromInt(int64(s.faker.IntRange(0, 25))),
		}
		lines := s.faker.IntRange(1, 3)
		picked := map[uuid.UUID]bool{}
		for j := 0; j < lines; j++ {
			p := catalog.Items[s.faker.IntRange(0, len(catalog.Items)-1)]
			if picked[p.ID] {
				continue
			}
			picked[p.ID] = true
			req.Items = append(req.Items, tradeapp.OrderItemInput{
				ProductID: p.ID,
				Quantity:  s.faker.IntRange(1, 5),
			})
		}

		order, err := s.orders.Create(ctx, manager, req)
		if errors.Is(err, shared.ErrInsufficientStock) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("create order: %w", err)
		}
		sum.Orders++
		if err := s.progress(ctx, manager, order); err != nil {
			return nil, err
		}
	}
	return sum, nil
}

// progress moves some orders along so reports have more than drafts
func (s *seeder) progress(ctx context.Context, actor identity.Principal, order *tradeapp.OrderResponse) error {
	steps := []string{"pending", "confirmed", "in-production"}[:s.faker.IntRange(0, 3)]
	for _, status := range steps {
		if _, err := s.orders.UpdateStatus(ctx, actor, order.ID, tradeapp.OrderStatusRequest{Status: status}); err != nil {
			return fmt.Errorf("advance order %s to %s: %w", order.OrderNumber, status, err)
		}
	}
	if len(steps) >= 2 {
		deposit := order.TotalAmount.Div(decimal.NewFromInt(2)).Round(2)
		if deposit.IsPositive() {
			if _, err := s.orders.RecordPayment(ctx, actor, order.ID, tradeapp.PaymentRequest{Amount: deposit, Notes: "Deposit"}); err != nil {
				return fmt.Errorf("record deposit on %s: %w", order.OrderNumber, err)
			}
		}
	}
	return nil
}

// ensureUsers creates the demo accounts that are missing and returns their
// principals in demoUsers order.
func (s *seeder) ensureUsers(ctx context.Context, password string) ([]identity.Principal, int, error) {
	principals := make([]identity.Principal, 0, len(demoUsers))
	created := 0
	for _, du := range demoUsers {
		exists, err := s.userRepo.ExistsByUsername(ctx, du.username)
		if err != nil {
			return nil, 0, err
		}
		if !exists {
			if _, err := s.users.Create(ctx, identityapp.CreateUserInput{
				Username:    du.username,
				Email:       du.username + "@uniformco.example",
				Password:    password,
				DisplayName: du.name,
				Role:        string(du.role),
			}); err != nil {
				return nil, 0, fmt.Errorf("create user %s: %w", du.username, err)
			}
			created++
		}
		u, err := s.userRepo.FindByUsername(ctx, du.username)
		if err != nil {
			return nil, 0, err
		}
		principals = append(principals, u.Principal())
	}
	return principals, created, nil
}

func (s *seeder) address() partnerapp.AddressInput {
	return partnerapp.AddressInput{
		Street:     s.faker.Street(),
		City:       s.faker.City(),
		State:      s.faker.State(),
		PostalCode: s.faker.Zip(),
		Country:    s.faker.Country(),
	}
}

func (s *seeder) customerRequest() partnerapp.CreateCustomerRequest {
	return partnerapp.CreateCustomerRequest{
		Name:          s.faker.Name(),
		Email:         s.faker.Email(),
		Phone:         s.faker.Phone(),
		Company:       s.faker.Company(),
		Address:       s.address(),
		BusinessType:  s.faker.RandomString(businessTypes),
		EmployeeCount: s.faker.IntRange(5, 2000),
		Source:        s.faker.RandomString(sources),
	}
}

func (s *seeder) inquiryRequest() salesapp.SubmitInquiryRequest {
	uniform := s.faker.RandomString(uniformTypes)
	qty := s.faker.IntRange(20, 800)
	budget := decimal.NewFromInt(int64(qty * s.faker.IntRange(10, 40)))
	return salesapp.SubmitInquiryRequest{
		CustomerName:  s.faker.Name(),
		Email:         s.faker.Email(),
		Phone:         s.faker.Phone(),
		Company:       s.faker.Company(),
		BusinessType:  s.faker.RandomString(businessTypes),
		EmployeeCount: s.faker.IntRange(5, 2000),
		Address:       s.address(),
		UniformType:   uniform,
		Quantity:      qty,
		Requirements:  fmt.Sprintf("%d %s uniforms in %s with embroidered logo", qty, uniform, s.faker.Color()),
		BudgetMax:     &budget,
		Timeline:      s.faker.RandomString(timelines),
		Source:        s.faker.RandomString(sources),
	}
}
