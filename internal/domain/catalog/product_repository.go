package catalog

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/uniformco/backoffice/internal/domain/shared"
)

// ProductRepository defines the interface for product persistence
type ProductRepository interface {
	// FindByID finds a product by ID, images included
	FindByID(ctx context.Context, id uuid.UUID) (*Product, error)

	// FindByCode finds a product by its catalog code
	FindByCode(ctx context.Context, code string) (*Product, error)

	// FindByIDs finds several products at once
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]Product, error)

	// FindAll finds products matching the filter.
	// Supported filter keys: category, uniform_type, is_active, stock_status, min_price, max_price
	FindAll(ctx context.Context, filter shared.Filter) ([]Product, error)

	// Count counts products matching the filter
	Count(ctx context.Context, filter shared.Filter) (int64, error)

	// FindLowStock returns active products at or below their reorder level
	FindLowStock(ctx context.Context) ([]Product, error)

	// Create inserts a new product
	Create(ctx context.Context, product *Product) error

	// Save updates a product with optimistic locking and syncs its images
	Save(ctx context.Context, product *Product) error

	// Delete deletes a product
	Delete(ctx context.Context, id uuid.UUID) error

	// ExistsByCode checks if a product code is taken
	ExistsByCode(ctx context.Context, code string) (bool, error)

	// ReserveStock atomically decrements stock only if at least qty units remain.
	// Returns shared.ErrInsufficientStock when the guard fails.
	ReserveStock(ctx context.Context, id uuid.UUID, qty int) error

	// ReleaseStock atomically returns qty units to stock
	ReleaseStock(ctx context.Context, id uuid.UUID, qty int) error

	// RecordSale atomically bumps the sold counters
	RecordSale(ctx context.Context, id uuid.UUID, qty int, amount decimal.Decimal) error
}
