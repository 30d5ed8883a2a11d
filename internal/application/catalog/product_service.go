package catalog

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/uniformco/backoffice/internal/domain/catalog"
	"github.com/uniformco/backoffice/internal/domain/identity"
	"github.com/uniformco/backoffice/internal/domain/shared"
	"github.com/uniformco/backoffice/internal/domain/trade"
	"github.com/uniformco/backoffice/internal/infrastructure/storage"
)

var errProductNotFound = shared.NewNotFoundError("PRODUCT_NOT_FOUND", "Product not found")

// ProductService handles product-related business operations
type ProductService struct {
	productRepo catalog.ProductRepository
	orderRepo   trade.OrderRepository
	store       storage.ObjectStorage
	events      shared.EventPublisher
	logger      *zap.Logger
}

// NewProductService creates a new ProductService. store may be nil, in which
// case the images of deleted products stay in object storage.
func NewProductService(
	productRepo catalog.ProductRepository,
	orderRepo trade.OrderRepository,
	store storage.ObjectStorage,
	events shared.EventPublisher,
	logger *zap.Logger,
) *ProductService {
	return &ProductService{
		productRepo: productRepo,
		orderRepo:   orderRepo,
		store:       store,
		events:      events,
		logger:      logger,
	}
}

// Create creates a new product
func (s *ProductService) Create(ctx context.Context, actor identity.Principal, req CreateProductRequest) (*ProductResponse, error) {
	if err := identity.Authorize(actor, identity.ResourceProducts, identity.ActionCreate, nil); err != nil {
		return nil, err
	}

	product, err := catalog.NewProduct(req.details(), req.StockQuantity, shared.UserRef(actor.UserID))
	if err != nil {
		return nil, err
	}

	exists, err := s.productRepo.ExistsByCode(ctx, product.Code)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, shared.NewConflictError("PRODUCT_ALREADY_EXISTS", "A product with this code already exists").WithField("code")
	}

	if err := s.productRepo.Create(ctx, product); err != nil {
		return nil, err
	}
	shared.PublishAndClear(ctx, s.events, product)

	s.logger.Info("Product created",
		zap.String("product_id", product.ID.String()),
		zap.String("code", product.Code),
		zap.String("actor", actor.Username))

	resp := ToProductResponse(product)
	return &resp, nil
}

// GetByID retrieves a product by ID
func (s *ProductService) GetByID(ctx context.Context, actor identity.Principal, id uuid.UUID) (*ProductResponse, error) {
	product, err := s.load(ctx, actor, id, identity.ActionRead)
	if err != nil {
		return nil, err
	}
	resp := ToProductResponse(product)
	return &resp, nil
}

// List retrieves a page of products
func (s *ProductService) List(ctx context.Context, actor identity.Principal, filter ProductListFilter) (*shared.Paginated[ProductResponse], error) {
	if err := identity.Authorize(actor, identity.ResourceProducts, identity.ActionRead, nil); err != nil {
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
	if filter.Category != "" {
		f.Filters["category"] = filter.Category
	}
	if filter.UniformType != "" {
		f.Filters["uniform_type"] = filter.UniformType
	}
	if filter.StockStatus != "" {
		f.Filters["stock_status"] = filter.StockStatus
	}
	if filter.IsActive != nil {
		f.Filters["is_active"] = *filter.IsActive
	}
	if filter.MinPrice != nil {
		f.Filters["min_price"] = *filter.MinPrice
	}
	if filter.MaxPrice != nil {
		f.Filters["max_price"] = *filter.MaxPrice
	}

	products, err := s.productRepo.FindAll(ctx, f)
	if err != nil {
		return nil, err
	}
	total, err := s.productRepo.Count(ctx, f)
	if err != nil {
		return nil, err
	}

	items := make([]ProductResponse, len(products))
	for i := range products {
		items[i] = ToProductResponse(&products[i])
	}
	page := shared.NewPaginated(items, total, f.Page, f.PageSize)
	return &page, nil
}

// Update applies a partial update to the catalog fields
func (s *ProductService) Update(ctx context.Context, actor identity.Principal, id uuid.UUID, req UpdateProductRequest) (*ProductResponse, error) {
	product, err := s.load(ctx, actor, id, identity.ActionUpdate)
	if err != nil {
		return nil, err
	}

	oldCode := product.Code
	if err := product.Update(req.apply(product.Details())); err != nil {
		return nil, err
	}
	if product.Code != oldCode {
		exists, err := s.productRepo.ExistsByCode(ctx, product.Code)
		if err != nil {
			return nil, err
		}
		if exists {
			return nil, shared.NewConflictError("PRODUCT_ALREADY_EXISTS", "A product with this code already exists").WithField("code")
		}
	}
	if req.IsActive != nil {
		if *req.IsActive {
			product.Activate()
		} else {
			product.Deactivate()
		}
	}
	return s.save(ctx, product)
}

// Delete removes a product. Only managers and admins may delete, and a product
// referenced by a non-draft order is kept; deactivate it instead.
func (s *ProductService) Delete(ctx context.Context, actor identity.Principal, id uuid.UUID) error {
	if err := identity.Authorize(actor, identity.ResourceProducts, identity.ActionDelete, &identity.Ownership{}); err != nil {
		return err
	}
	product, err := s.productRepo.FindByID(ctx, id)
	if err != nil {
		return notFound(err)
	}

	inUse, err := s.orderRepo.CountActiveByProduct(ctx, product.ID)
	if err != nil {
		return err
	}
	if inUse > 0 {
		return shared.NewConflictError("PRODUCT_IN_USE", "Product is referenced by orders and cannot be deleted; deactivate it instead")
	}

	if err := s.productRepo.Delete(ctx, product.ID); err != nil {
		return notFound(err)
	}
	if s.store != nil {
		for _, img := range product.Images {
			deleteObjects(ctx, s.store, s.logger, img)
		}
	}
	s.logger.Info("Product deleted",
		zap.String("product_id", id.String()),
		zap.String("code", product.Code),
		zap.Int("images", len(product.Images)),
		zap.String("actor", actor.Username))
	return nil
}

// UpdateStock adjusts the stock level. A drop from in-stock to the reorder
// level raises a low-stock event.
func (s *ProductService) UpdateStock(ctx context.Context, actor identity.Principal, id uuid.UUID, req StockUpdateRequest) (*ProductResponse, error) {
	product, err := s.load(ctx, actor, id, identity.ActionUpdate)
	if err != nil {
		return nil, err
	}

	wasStocked := !product.NeedsReorder()
	if err := product.UpdateStock(req.Quantity, catalog.StockOperation(req.Operation)); err != nil {
		return nil, err
	}
	if wasStocked && product.NeedsReorder() {
		product.AddDomainEvent(catalog.NewProductLowStockEvent(product))
	}

	resp, err := s.save(ctx, product)
	if err != nil {
		return nil, err
	}
	s.logger.Info("Product stock updated",
		zap.String("product_id", product.ID.String()),
		zap.String("operation", req.Operation),
		zap.Int("quantity", req.Quantity),
		zap.Int("stock", product.StockQuantity),
		zap.String("reason", req.Reason),
		zap.String("actor", actor.Username))
	return resp, nil
}

// Activate makes a product orderable again
func (s *ProductService) Activate(ctx context.Context, actor identity.Principal, id uuid.UUID) (*ProductResponse, error) {
	product, err := s.load(ctx, actor, id, identity.ActionUpdate)
	if err != nil {
		return nil, err
	}
	product.Activate()
	return s.save(ctx, product)
}

// Deactivate hides a product from new orders
func (s *ProductService) Deactivate(ctx context.Context, actor identity.Principal, id uuid.UUID) (*ProductResponse, error) {
	product, err := s.load(ctx, actor, id, identity.ActionUpdate)
	if err != nil {
		return nil, err
	}
	product.Deactivate()
	return s.save(ctx, product)
}

// LowStock lists active products at or below their reorder level
func (s *ProductService) LowStock(ctx context.Context, actor identity.Principal) ([]ProductResponse, error) {
	if err := identity.Authorize(actor, identity.ResourceProducts, identity.ActionRead, nil); err != nil {
		return nil, err
	}
	products, err := s.productRepo.FindLowStock(ctx)
	if err != nil {
		return nil, err
	}
	items := make([]ProductResponse, len(products))
	for i := range products {
		items[i] = ToProductResponse(&products[i])
	}
	return items, nil
}

func (s *ProductService) load(ctx context.Context, actor identity.Principal, id uuid.UUID, action identity.Action) (*catalog.Product, error) {
	if err := identity.Authorize(actor, identity.ResourceProducts, action, nil); err != nil {
		return nil, err
	}
	product, err := s.productRepo.FindByID(ctx, id)
	if err != nil {
		return nil, notFound(err)
	}
	return product, nil
}

func (s *ProductService) save(ctx context.Context, product *catalog.Product) (*ProductResponse, error) {
	if err := s.productRepo.Save(ctx, product); err != nil {
		return nil, notFound(err)
	}
	shared.PublishAndClear(ctx, s.events, product)
	resp := ToProductResponse(product)
	return &resp, nil
}

func notFound(err error) error {
	if errors.Is(err, shared.ErrNotFound) {
		return errProductNotFound
	}
	return err
}
