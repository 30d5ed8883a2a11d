package trade

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/uniformco/backoffice/internal/domain/shared"
)

// OrderRepository defines the interface for order persistence
type OrderRepository interface {
	// FindByID finds an order with items, history and notes
	FindByID(ctx context.Context, id uuid.UUID) (*Order, error)

	// FindByOrderNumber finds an order by its number
	FindByOrderNumber(ctx context.Context, number string) (*Order, error)

	// FindAll finds orders matching the filter.
	// Supported filter keys: status, payment_status, type, customer_id, assigned_to, from, to, visible_to
	FindAll(ctx context.Context, filter shared.Filter) ([]Order, error)

	// Count counts orders matching the filter
	Count(ctx context.Context, filter shared.Filter) (int64, error)

	// FindByCustomer lists a customer's orders, newest first
	FindByCustomer(ctx context.Context, customerID uuid.UUID, filter shared.Filter) ([]Order, error)

	// FindOverdueCandidates returns unpaid, non-cancelled orders whose payment due date is before asOf
	FindOverdueCandidates(ctx context.Context, asOf time.Time) ([]Order, error)

	// Create inserts an order with its items and history
	Create(ctx context.Context, order *Order) error

	// Save updates an order with optimistic locking and syncs its children
	Save(ctx context.Context, order *Order) error

	// Delete deletes an order and its children
	Delete(ctx context.Context, id uuid.UUID) error

	// CountByCustomer counts orders referencing a customer
	CountByCustomer(ctx context.Context, customerID uuid.UUID) (int64, error)

	// CountActiveByProduct counts non-draft orders with a line for the product
	CountActiveByProduct(ctx context.Context, productID uuid.UUID) (int64, error)
}
