package trade

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/uniformco/backoffice/internal/domain/catalog"
	"github.com/uniformco/backoffice/internal/domain/identity"
	"github.com/uniformco/backoffice/internal/domain/partner"
	"github.com/uniformco/backoffice/internal/domain/shared"
	"github.com/uniformco/backoffice/internal/domain/trade"
)

// maxNumberAttempts bounds the retries when a freshly issued order number collides
const maxNumberAttempts = 3

var (
	errOrderNotFound    = shared.NewNotFoundError("ORDER_NOT_FOUND", "Order not found")
	errCustomerNotFound = shared.NewNotFoundError("CUSTOMER_NOT_FOUND", "Customer not found").WithField("customer_id")
)

// Metrics receives the business counters of the order workflow
type Metrics interface {
	OrderCreated(total decimal.Decimal)
	StockRejected()
}

type nopMetrics struct{}

func (nopMetrics) OrderCreated(decimal.Decimal) {}
func (nopMetrics) StockRejected()               {}

// OrderService handles order creation, stock reservation and the order lifecycle
type OrderService struct {
	orderRepo    trade.OrderRepository
	productRepo  catalog.ProductRepository
	customerRepo partner.CustomerRepository
	numbers      shared.NumberGenerator
	tx           shared.TransactionManager
	events       shared.EventPublisher
	metrics      Metrics
	logger       *zap.Logger
	now          func() time.Time
}

// NewOrderService creates a new OrderService. metrics may be nil.
func NewOrderService(
	orderRepo trade.OrderRepository,
	productRepo catalog.ProductRepository,
	customerRepo partner.CustomerRepository,
	numbers shared.NumberGenerator,
	tx shared.TransactionManager,
	events shared.EventPublisher,
	metrics Metrics,
	logger *zap.Logger,
) *OrderService {
	if metrics == nil {
		metrics = nopMetrics{}
	}
	return &OrderService{
		orderRepo:    orderRepo,
		productRepo:  productRepo,
		customerRepo: customerRepo,
		numbers:      numbers,
		tx:           tx,
		events:       events,
		metrics:      metrics,
		logger:       logger,
		now:          func() time.Time { return time.Now().UTC() },
	}
}

// Create validates every line, then issues an order number and reserves stock
// for all lines in one transaction. A line that cannot be covered aborts the
// whole order and no stock is taken.
func (s *OrderService) Create(ctx context.Context, actor identity.Principal, req CreateOrderRequest) (*OrderResponse, error) {
	if err := identity.Authorize(actor, identity.ResourceOrders, identity.ActionCreate, nil); err != nil {
		return nil, err
	}
	if len(req.Items) == 0 {
		return nil, shared.NewValidationError("items", "ITEMS_REQUIRED", "An order needs at least one item")
	}

	customer, err := s.customerRepo.FindByID(ctx, req.CustomerID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, errCustomerNotFound
		}
		return nil, err
	}
	owner := identity.Ownership{AssignedTo: customer.AssignedTo, CreatedBy: customer.CreatedBy}
	if err := identity.AuthorizeRecord(actor, identity.ResourceCustomers, identity.ActionRead, owner, errCustomerNotFound); err != nil {
		return nil, err
	}

	products, lines, err := s.resolveLines(ctx, req.Items)
	if err != nil {
		return nil, err
	}

	var order *trade.Order
	for attempt := 1; ; attempt++ {
		order, err = s.buildOrder(ctx, actor, req, lines)
		if err != nil {
			return nil, err
		}
		err = s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
			number, err := s.numbers.Next(ctx, s.now())
			if err != nil {
				return err
			}
			order.OrderNumber = number
			if err := s.reserve(ctx, order.ReservedQuantities(), products); err != nil {
				return err
			}
			order.MarkStockReserved()
			return s.orderRepo.Create(ctx, order)
		})
		if errors.Is(err, shared.ErrDuplicateNumber) && attempt < maxNumberAttempts {
			s.logger.Warn("Order number collision, retrying", zap.Int("attempt", attempt))
			if err := shared.ResyncNumbers(ctx, s.numbers, s.now()); err != nil {
				s.logger.Warn("Failed to resync order numbers", zap.Error(err))
			}
			continue
		}
		break
	}
	if err != nil {
		return nil, err
	}

	order.AddDomainEvent(trade.NewOrderCreatedEvent(order))
	shared.PublishAndClear(ctx, s.events, order)
	s.metrics.OrderCreated(order.TotalAmount)
	s.publishLowStock(ctx, order.ReservedQuantities(), products)

	s.logger.Info("Order created",
		zap.String("order_id", order.ID.String()),
		zap.String("order_number", order.OrderNumber),
		zap.String("customer_id", order.CustomerID.String()),
		zap.Int("items", len(order.Items)),
		zap.String("total", order.TotalAmount.String()),
		zap.String("actor", actor.Username))

	resp := ToOrderResponse(order)
	return &resp, nil
}

func (s *OrderService) buildOrder(ctx context.Context, actor identity.Principal, req CreateOrderRequest, lines []trade.OrderLine) (*trade.Order, error) {
	// placeholder number, replaced inside the transaction
	order, err := trade.NewOrder("PENDING", trade.OrderType(req.Type), req.CustomerID, shared.UserRef(actor.UserID))
	if err != nil {
		return nil, err
	}
	order.InquiryID = req.InquiryID
	for _, line := range lines {
		if _, err := order.AddItem(line); err != nil {
			return nil, err
		}
	}
	if err := order.SetCharges(trade.Charges{Tax: req.Tax, Discount: req.Discount, ShippingCost: req.ShippingCost}); err != nil {
		return nil, err
	}
	if req.DeliveryAddress != nil || req.ExpectedDeliveryDate != nil {
		var addr shared.Address
		if req.DeliveryAddress != nil {
			addr = req.DeliveryAddress.ToAddress()
		}
		if err := order.UpdateDelivery(addr, req.ExpectedDeliveryDate); err != nil {
			return nil, err
		}
	}
	if req.PaymentDueDate != nil {
		order.SetPaymentDueDate(req.PaymentDueDate)
	}
	if req.Notes != "" {
		if _, err := order.AddNote(req.Notes, shared.UserRef(actor.UserID), false); err != nil {
			return nil, err
		}
	}
	if req.AssignedTo != nil && identity.CanSeeAll(actor) {
		if err := order.AssignTo(*req.AssignedTo); err != nil {
			return nil, err
		}
	}
	return order, nil
}

// resolveLines checks every requested line against the catalog and fills in
// product snapshots and default prices
func (s *OrderService) resolveLines(ctx context.Context, items []OrderItemInput) (map[uuid.UUID]*catalog.Product, []trade.OrderLine, error) {
	ids := make([]uuid.UUID, 0, len(items))
	for _, item := range items {
		ids = append(ids, item.ProductID)
	}
	found, err := s.productRepo.FindByIDs(ctx, ids)
	if err != nil {
		return nil, nil, err
	}
	products := make(map[uuid.UUID]*catalog.Product, len(found))
	for i := range found {
		products[found[i].ID] = &found[i]
	}

	lines := make([]trade.OrderLine, len(items))
	for i, item := range items {
		line, err := s.resolveLine(products[item.ProductID], item, fmt.Sprintf("items[%d]", i))
		if err != nil {
			return nil, nil, err
		}
		lines[i] = line
	}
	return products, lines, nil
}

func (s *OrderService) resolveLine(product *catalog.Product, item OrderItemInput, field string) (trade.OrderLine, error) {
	if product == nil {
		return trade.OrderLine{}, shared.NewValidationError(field+".product_id", "PRODUCT_NOT_FOUND", "Product not found")
	}
	if !product.IsActive {
		return trade.OrderLine{}, shared.NewValidationError(field+".product_id", "PRODUCT_INACTIVE", fmt.Sprintf("Product %s is not available for ordering", product.Code))
	}
	if item.Quantity <= 0 {
		return trade.OrderLine{}, shared.NewValidationError(field+".quantity", "INVALID_QUANTITY", "Quantity must be positive")
	}
	price := product.PriceForQuantity(item.Quantity)
	if item.UnitPrice != nil {
		price = *item.UnitPrice
	}
	return trade.OrderLine{
		ProductID:     product.ID,
		ProductCode:   product.Code,
		ProductName:   product.Name,
		Quantity:      item.Quantity,
		UnitPrice:     price,
		Customization: item.Customization,
		Notes:         item.Notes,
	}, nil
}

// reserve takes quantities from stock with guarded decrements. Must run inside a transaction.
func (s *OrderService) reserve(ctx context.Context, quantities map[uuid.UUID]int, products map[uuid.UUID]*catalog.Product) error {
	for productID, qty := range quantities {
		if err := s.productRepo.ReserveStock(ctx, productID, qty); err != nil {
			if errors.Is(err, shared.ErrInsufficientStock) {
				s.metrics.StockRejected()
				code := productID.String()
				if p := products[productID]; p != nil {
					code = p.Code
				}
				return shared.NewConflictError("INSUFFICIENT_STOCK", fmt.Sprintf("Insufficient stock for product %s", code)).WithField("items")
			}
			return err
		}
	}
	return nil
}

func (s *OrderService) release(ctx context.Context, quantities map[uuid.UUID]int) error {
	for productID, qty := range quantities {
		if err := s.productRepo.ReleaseStock(ctx, productID, qty); err != nil {
			if errors.Is(err, shared.ErrNotFound) {
				s.logger.Warn("Cannot release stock of deleted product", zap.String("product_id", productID.String()), zap.Int("quantity", qty))
				continue
			}
			return err
		}
	}
	return nil
}

// publishLowStock raises a low-stock event for every product the reservation
// pushed from in-stock to its reorder level or below
func (s *OrderService) publishLowStock(ctx context.Context, quantities map[uuid.UUID]int, before map[uuid.UUID]*catalog.Product) {
	if s.events == nil {
		return
	}
	ids := make([]uuid.UUID, 0, len(quantities))
	for id := range quantities {
		if p := before[id]; p != nil && !p.NeedsReorder() {
			ids = append(ids, id)
		}
	}
	if len(ids) == 0 {
		return
	}
	after, err := s.productRepo.FindByIDs(ctx, ids)
	if err != nil {
		s.logger.Warn("Low stock check failed", zap.Error(err))
		return
	}
	for i := range after {
		if after[i].NeedsReorder() {
			_ = s.events.Publish(ctx, catalog.NewProductLowStockEvent(&after[i]))
		}
	}
}

// GetByID retrieves an order by ID
func (s *OrderService) GetByID(ctx context.Context, actor identity.Principal, id uuid.UUID) (*OrderResponse, error) {
	order, err := s.load(ctx, actor, id, identity.ActionRead)
	if err != nil {
		return nil, err
	}
	resp := ToOrderResponse(order)
	return &resp, nil
}

// List retrieves a page of orders visible to the caller
func (s *OrderService) List(ctx context.Context, actor identity.Principal, filter OrderListFilter) (*shared.Paginated[OrderResponse], error) {
	if err := identity.Authorize(actor, identity.ResourceOrders, identity.ActionRead, nil); err != nil {
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
	if filter.PaymentStatus != "" {
		f.Filters["payment_status"] = filter.PaymentStatus
	}
	if filter.Type != "" {
		f.Filters["type"] = filter.Type
	}
	if filter.CustomerID != "" {
		f.Filters["customer_id"] = filter.CustomerID
	}
	if filter.AssignedTo != "" {
		f.Filters["assigned_to"] = filter.AssignedTo
	}
	if filter.From != nil {
		f.Filters["from"] = *filter.From
	}
	if filter.To != nil {
		// the whole end day is included
		f.Filters["to"] = filter.To.AddDate(0, 0, 1)
	}
	if scope, ok := identity.VisibilityScope(actor); ok {
		f.Filters["visible_to"] = scope
	}

	orders, err := s.orderRepo.FindAll(ctx, f)
	if err != nil {
		return nil, err
	}
	total, err := s.orderRepo.Count(ctx, f)
	if err != nil {
		return nil, err
	}

	items := make([]OrderResponse, len(orders))
	for i := range orders {
		items[i] = ToOrderListResponse(&orders[i])
	}
	page := shared.NewPaginated(items, total, f.Page, f.PageSize)
	return &page, nil
}

// Update changes charges, delivery details and the payment due date
func (s *OrderService) Update(ctx context.Context, actor identity.Principal, id uuid.UUID, req UpdateOrderRequest) (*OrderResponse, error) {
	order, err := s.load(ctx, actor, id, identity.ActionUpdate)
	if err != nil {
		return nil, err
	}

	if req.Tax != nil || req.Discount != nil || req.ShippingCost != nil {
		charges := trade.Charges{Tax: order.Tax, Discount: order.Discount, ShippingCost: order.ShippingCost}
		if req.Tax != nil {
			charges.Tax = *req.Tax
		}
		if req.Discount != nil {
			charges.Discount = *req.Discount
		}
		if req.ShippingCost != nil {
			charges.ShippingCost = *req.ShippingCost
		}
		if err := order.SetCharges(charges); err != nil {
			return nil, err
		}
	}
	if req.DeliveryAddress != nil || req.ExpectedDeliveryDate != nil {
		addr := order.DeliveryAddress
		if req.DeliveryAddress != nil {
			addr = req.DeliveryAddress.ToAddress()
		}
		expected := order.ExpectedDeliveryDate
		if req.ExpectedDeliveryDate != nil {
			expected = req.ExpectedDeliveryDate
		}
		if err := order.UpdateDelivery(addr, expected); err != nil {
			return nil, err
		}
	}
	if req.PaymentDueDate != nil {
		order.SetPaymentDueDate(req.PaymentDueDate)
	}
	return s.save(ctx, order)
}

// AddItem adds a line to a draft order, reserving its stock
func (s *OrderService) AddItem(ctx context.Context, actor identity.Principal, id uuid.UUID, req OrderItemInput) (*OrderResponse, error) {
	order, err := s.load(ctx, actor, id, identity.ActionUpdate)
	if err != nil {
		return nil, err
	}
	product, err := s.productRepo.FindByID(ctx, req.ProductID)
	if err != nil && !errors.Is(err, shared.ErrNotFound) {
		return nil, err
	}
	line, err := s.resolveLine(product, req, "product_id")
	if err != nil {
		return nil, err
	}
	if _, err := order.AddItem(line); err != nil {
		return nil, err
	}

	quantities := map[uuid.UUID]int{line.ProductID: line.Quantity}
	products := map[uuid.UUID]*catalog.Product{product.ID: product}
	err = s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		if order.StockReserved {
			if err := s.reserve(ctx, quantities, products); err != nil {
				return err
			}
		}
		return s.orderRepo.Save(ctx, order)
	})
	if err != nil {
		return nil, notFound(err)
	}
	if order.StockReserved {
		s.publishLowStock(ctx, quantities, products)
	}
	resp := ToOrderResponse(order)
	return &resp, nil
}

// RemoveItem drops a line from a draft order and returns its stock
func (s *OrderService) RemoveItem(ctx context.Context, actor identity.Principal, id, itemID uuid.UUID) (*OrderResponse, error) {
	order, err := s.load(ctx, actor, id, identity.ActionUpdate)
	if err != nil {
		return nil, err
	}
	removed, err := order.RemoveItem(itemID)
	if err != nil {
		return nil, err
	}
	err = s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		if order.StockReserved {
			if err := s.release(ctx, map[uuid.UUID]int{removed.ProductID: removed.Quantity}); err != nil {
				return err
			}
		}
		return s.orderRepo.Save(ctx, order)
	})
	if err != nil {
		return nil, notFound(err)
	}
	resp := ToOrderResponse(order)
	return &resp, nil
}

// UpdateStatus moves the order along its lifecycle. Cancelling returns the
// reserved stock; delivery books the revenue on the customer and the products.
func (s *OrderService) UpdateStatus(ctx context.Context, actor identity.Principal, id uuid.UUID, req OrderStatusRequest) (*OrderResponse, error) {
	order, err := s.load(ctx, actor, id, identity.ActionUpdate)
	if err != nil {
		return nil, err
	}
	status := trade.OrderStatus(req.Status)
	if err := order.UpdateStatus(status, shared.UserRef(actor.UserID), req.Notes); err != nil {
		return nil, err
	}

	err = s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		switch status {
		case trade.OrderStatusCancelled:
			if err := s.release(ctx, order.TakeStockRelease()); err != nil {
				return err
			}
		case trade.OrderStatusDelivered:
			if err := s.bookDelivery(ctx, order); err != nil {
				return err
			}
		}
		return s.orderRepo.Save(ctx, order)
	})
	if err != nil {
		return nil, notFound(err)
	}
	shared.PublishAndClear(ctx, s.events, order)

	s.logger.Info("Order status changed",
		zap.String("order_id", order.ID.String()),
		zap.String("order_number", order.OrderNumber),
		zap.String("status", req.Status),
		zap.String("actor", actor.Username))

	resp := ToOrderResponse(order)
	return &resp, nil
}

func (s *OrderService) bookDelivery(ctx context.Context, order *trade.Order) error {
	customer, err := s.customerRepo.FindByID(ctx, order.CustomerID)
	if err != nil {
		return fmt.Errorf("load customer %s: %w", order.CustomerID, err)
	}
	at := s.now()
	if order.ActualDeliveryDate != nil {
		at = *order.ActualDeliveryDate
	}
	if err := customer.RecordCompletedOrder(order.TotalAmount, at); err != nil {
		return err
	}
	if err := s.customerRepo.Save(ctx, customer); err != nil {
		return err
	}
	for _, item := range order.Items {
		if err := s.productRepo.RecordSale(ctx, item.ProductID, item.Quantity, item.TotalPrice); err != nil && !errors.Is(err, shared.ErrNotFound) {
			return err
		}
	}
	return nil
}

// RecordPayment adds a payment and re-derives the payment status
func (s *OrderService) RecordPayment(ctx context.Context, actor identity.Principal, id uuid.UUID, req PaymentRequest) (*OrderResponse, error) {
	order, err := s.load(ctx, actor, id, identity.ActionUpdate)
	if err != nil {
		return nil, err
	}
	if err := order.UpdatePayment(req.Amount); err != nil {
		return nil, err
	}
	if req.Notes != "" {
		note := fmt.Sprintf("Payment of %s recorded: %s", req.Amount.StringFixed(2), req.Notes)
		if _, err := order.AddNote(note, shared.UserRef(actor.UserID), true); err != nil {
			return nil, err
		}
	}
	resp, err := s.save(ctx, order)
	if err != nil {
		return nil, err
	}
	s.logger.Info("Order payment recorded",
		zap.String("order_id", order.ID.String()),
		zap.String("amount", req.Amount.String()),
		zap.String("payment_status", string(order.PaymentStatus)),
		zap.String("actor", actor.Username))
	return resp, nil
}

// RecordQualityCheck stores an inspection result
func (s *OrderService) RecordQualityCheck(ctx context.Context, actor identity.Principal, id uuid.UUID, req QualityCheckRequest) (*OrderResponse, error) {
	order, err := s.load(ctx, actor, id, identity.ActionUpdate)
	if err != nil {
		return nil, err
	}
	if err := order.RecordQualityCheck(req.Passed, shared.UserRef(actor.UserID), req.Notes); err != nil {
		return nil, err
	}
	return s.save(ctx, order)
}

// AddNote appends a note to the order
func (s *OrderService) AddNote(ctx context.Context, actor identity.Principal, id uuid.UUID, req NoteRequest) (*OrderResponse, error) {
	order, err := s.load(ctx, actor, id, identity.ActionUpdate)
	if err != nil {
		return nil, err
	}
	if _, err := order.AddNote(req.Content, shared.UserRef(actor.UserID), req.IsInternal); err != nil {
		return nil, err
	}
	return s.save(ctx, order)
}

// Assign hands the order to a user. Staff may only take orders themselves.
func (s *OrderService) Assign(ctx context.Context, actor identity.Principal, id uuid.UUID, req AssignRequest) (*OrderResponse, error) {
	order, err := s.load(ctx, actor, id, identity.ActionUpdate)
	if err != nil {
		return nil, err
	}
	if !identity.CanSeeAll(actor) && req.UserID != actor.UserID {
		return nil, identity.ErrPermissionDenied
	}
	if err := order.AssignTo(req.UserID); err != nil {
		return nil, err
	}
	return s.save(ctx, order)
}

// Delete removes a draft order and returns its reserved stock
func (s *OrderService) Delete(ctx context.Context, actor identity.Principal, id uuid.UUID) error {
	order, err := s.load(ctx, actor, id, identity.ActionDelete)
	if err != nil {
		return err
	}
	if err := order.CanDelete(); err != nil {
		return err
	}
	err = s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		if err := s.release(ctx, order.TakeStockRelease()); err != nil {
			return err
		}
		return s.orderRepo.Delete(ctx, order.ID)
	})
	if err != nil {
		return notFound(err)
	}
	s.logger.Info("Order deleted",
		zap.String("order_id", id.String()),
		zap.String("order_number", order.OrderNumber),
		zap.String("actor", actor.Username))
	return nil
}

// MarkOverduePayments flags unpaid orders whose due date has passed and
// returns how many were flagged. Individual failures are logged and skipped.
func (s *OrderService) MarkOverduePayments(ctx context.Context) (int, error) {
	now := s.now()
	candidates, err := s.orderRepo.FindOverdueCandidates(ctx, now)
	if err != nil {
		return 0, err
	}
	flagged := 0
	for i := range candidates {
		order := &candidates[i]
		if !order.MarkOverdue(now) {
			continue
		}
		if err := s.orderRepo.Save(ctx, order); err != nil {
			s.logger.Warn("Failed to flag overdue order",
				zap.String("order_id", order.ID.String()),
				zap.Error(err))
			continue
		}
		shared.PublishAndClear(ctx, s.events, order)
		flagged++
	}
	if flagged > 0 {
		s.logger.Info("Overdue payments flagged", zap.Int("count", flagged))
	}
	return flagged, nil
}

func (s *OrderService) load(ctx context.Context, actor identity.Principal, id uuid.UUID, action identity.Action) (*trade.Order, error) {
	if err := identity.Authorize(actor, identity.ResourceOrders, action, nil); err != nil {
		return nil, err
	}
	order, err := s.orderRepo.FindByID(ctx, id)
	if err != nil {
		return nil, notFound(err)
	}
	owner := identity.Ownership{AssignedTo: order.AssignedTo, CreatedBy: order.CreatedBy}
	if err := identity.AuthorizeRecord(actor, identity.ResourceOrders, action, owner, errOrderNotFound); err != nil {
		return nil, err
	}
	return order, nil
}

func (s *OrderService) save(ctx context.Context, order *trade.Order) (*OrderResponse, error) {
	if err := s.orderRepo.Save(ctx, order); err != nil {
		return nil, notFound(err)
	}
	shared.PublishAndClear(ctx, s.events, order)
	resp := ToOrderResponse(order)
	return &resp, nil
}

func notFound(err error) error {
	if errors.Is(err, shared.ErrNotFound) {
		return errOrderNotFound
	}
	return err
}
