package partner

import (
	"context"

	"github.com/google/uuid"

	"github.com/uniformco/backoffice/internal/domain/shared"
)

// CustomerRepository defines the interface for customer persistence
type CustomerRepository interface {
	// FindByID finds a customer by ID
	FindByID(ctx context.Context, id uuid.UUID) (*Customer, error)

	// FindByEmail finds a customer by email (case-insensitive)
	FindByEmail(ctx context.Context, email string) (*Customer, error)

	// FindAll finds customers matching the filter.
	// Supported filter keys: status, business_type, assigned_to, tag, visible_to
	FindAll(ctx context.Context, filter shared.Filter) ([]Customer, error)

	// Count counts customers matching the filter
	Count(ctx context.Context, filter shared.Filter) (int64, error)

	// Create inserts a new customer together with its notes and communications
	Create(ctx context.Context, customer *Customer) error

	// Save updates an existing customer with optimistic locking and appends new notes and communications
	Save(ctx context.Context, customer *Customer) error

	// Delete deletes a customer
	Delete(ctx context.Context, id uuid.UUID) error

	// ExistsByEmail checks if a customer with the email exists
	ExistsByEmail(ctx context.Context, email string) (bool, error)

	// CountByStatus counts customers per status
	CountByStatus(ctx context.Context) (map[CustomerStatus]int64, error)
}
