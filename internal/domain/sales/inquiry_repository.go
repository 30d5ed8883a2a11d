package sales

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/uniformco/backoffice/internal/domain/shared"
)

// InquiryRepository defines the interface for inquiry persistence
type InquiryRepository interface {
	// FindByID finds an inquiry with notes and communications
	FindByID(ctx context.Context, id uuid.UUID) (*Inquiry, error)

	// FindByNumber finds an inquiry by its number
	FindByNumber(ctx context.Context, number string) (*Inquiry, error)

	// FindAll finds inquiries matching the filter.
	// Supported filter keys: status, priority, source, business_type, assigned_to, from, to, visible_to
	FindAll(ctx context.Context, filter shared.Filter) ([]Inquiry, error)

	// Count counts inquiries matching the filter
	Count(ctx context.Context, filter shared.Filter) (int64, error)

	// FindDueFollowUps returns active inquiries with a follow-up at or before asOf
	FindDueFollowUps(ctx context.Context, asOf time.Time) ([]Inquiry, error)

	// FindUnstampedByEmail returns inquiries with the email that carry no conversion link
	FindUnstampedByEmail(ctx context.Context, email string) ([]Inquiry, error)

	// Create inserts a new inquiry
	Create(ctx context.Context, inquiry *Inquiry) error

	// Save updates an inquiry with optimistic locking and appends new notes and communications
	Save(ctx context.Context, inquiry *Inquiry) error

	// Delete deletes an inquiry
	Delete(ctx context.Context, id uuid.UUID) error
}
