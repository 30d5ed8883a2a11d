package persistence

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/uniformco/backoffice/internal/domain/sales"
	"github.com/uniformco/backoffice/internal/domain/shared"
	"github.com/uniformco/backoffice/internal/infrastructure/persistence/datascope"
	"github.com/uniformco/backoffice/internal/infrastructure/persistence/models"
)

// GormInquiryRepository implements InquiryRepository using GORM
type GormInquiryRepository struct {
	db *gorm.DB
}

// NewGormInquiryRepository creates a new GormInquiryRepository
func NewGormInquiryRepository(db *gorm.DB) *GormInquiryRepository {
	return &GormInquiryRepository{db: db}
}

// FindByID finds an inquiry with notes and communications
func (r *GormInquiryRepository) FindByID(ctx context.Context, id uuid.UUID) (*sales.Inquiry, error) {
	return r.findOne(ctx, "id = ?", id)
}

// FindByNumber finds an inquiry by its number
func (r *GormInquiryRepository) FindByNumber(ctx context.Context, number string) (*sales.Inquiry, error) {
	return r.findOne(ctx, "inquiry_number = ?", number)
}

func (r *GormInquiryRepository) findOne(ctx context.Context, cond string, arg any) (*sales.Inquiry, error) {
	db := conn(ctx, r.db)
	var model models.InquiryModel
	if err := db.Where(cond, arg).First(&model).Error; err != nil {
		return nil, translate(err, nil)
	}
	inquiry := model.ToDomain()
	notes, comms, err := loadActivity(db, models.OwnerInquiry, inquiry.ID, true)
	if err != nil {
		return nil, err
	}
	inquiry.Notes, inquiry.Communications = notes, comms
	return inquiry, nil
}

// FindAll finds inquiries matching the filter. Activity is not loaded for lists.
func (r *GormInquiryRepository) FindAll(ctx context.Context, filter shared.Filter) ([]sales.Inquiry, error) {
	query := r.applyFilter(conn(ctx, r.db).Model(&models.InquiryModel{}), filter)
	query = paginate(query, filter, InquirySortFields, "created_at")

	var inquiryModels []models.InquiryModel
	if err := query.Find(&inquiryModels).Error; err != nil {
		return nil, err
	}
	return toInquiries(inquiryModels), nil
}

// Count counts inquiries matching the filter
func (r *GormInquiryRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	var count int64
	query := r.applyFilter(conn(ctx, r.db).Model(&models.InquiryModel{}), filter)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// FindDueFollowUps returns active inquiries with a follow-up at or before asOf
func (r *GormInquiryRepository) FindDueFollowUps(ctx context.Context, asOf time.Time) ([]sales.Inquiry, error) {
	var inquiryModels []models.InquiryModel
	if err := conn(ctx, r.db).
		Where("next_follow_up IS NOT NULL AND next_follow_up <= ?", asOf).
		Where("status IN ?", []sales.InquiryStatus{sales.InquiryStatusNew, sales.InquiryStatusContacted, sales.InquiryStatusQuoted}).
		Order("next_follow_up ASC").
		Find(&inquiryModels).Error; err != nil {
		return nil, err
	}
	return toInquiries(inquiryModels), nil
}

// FindUnstampedByEmail returns inquiries with the email that carry no conversion link
func (r *GormInquiryRepository) FindUnstampedByEmail(ctx context.Context, email string) ([]sales.Inquiry, error) {
	db := conn(ctx, r.db)
	var inquiryModels []models.InquiryModel
	if err := db.
		Where("email = ? AND converted_customer_id IS NULL", shared.NormalizeEmail(email)).
		Order("created_at ASC").
		Find(&inquiryModels).Error; err != nil {
		return nil, err
	}
	inquiries := toInquiries(inquiryModels)
	for i := range inquiries {
		notes, comms, err := loadActivity(db, models.OwnerInquiry, inquiries[i].ID, true)
		if err != nil {
			return nil, err
		}
		inquiries[i].Notes, inquiries[i].Communications = notes, comms
	}
	return inquiries, nil
}

// Create inserts a new inquiry
func (r *GormInquiryRepository) Create(ctx context.Context, inquiry *sales.Inquiry) error {
	return inTx(ctx, r.db, func(tx *gorm.DB) error {
		if err := tx.Create(models.InquiryModelFromDomain(inquiry)).Error; err != nil {
			return translate(err, shared.ErrDuplicateNumber)
		}
		return appendActivity(tx, models.OwnerInquiry, inquiry.ID, inquiry.Notes, inquiry.Communications)
	})
}

// Save updates an inquiry with optimistic locking and appends new notes and communications
func (r *GormInquiryRepository) Save(ctx context.Context, inquiry *sales.Inquiry) error {
	err := inTx(ctx, r.db, func(tx *gorm.DB) error {
		model := models.InquiryModelFromDomain(inquiry)
		model.Version = inquiry.Version + 1
		if err := saveVersioned(tx, model, inquiry.ID, inquiry.Version); err != nil {
			return translate(err, shared.ErrDuplicateNumber)
		}
		return appendActivity(tx, models.OwnerInquiry, inquiry.ID, inquiry.Notes, inquiry.Communications)
	})
	if err != nil {
		return err
	}
	inquiry.Version++
	return nil
}

// Delete deletes an inquiry and its activity
func (r *GormInquiryRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return inTx(ctx, r.db, func(tx *gorm.DB) error {
		result := tx.Delete(&models.InquiryModel{}, "id = ?", id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return shared.ErrNotFound
		}
		return deleteActivity(tx, models.OwnerInquiry, id)
	})
}

func toInquiries(ms []models.InquiryModel) []sales.Inquiry {
	out := make([]sales.Inquiry, len(ms))
	for i := range ms {
		out[i] = *ms[i].ToDomain()
	}
	return out
}

// applyFilter applies search and filter keys; pagination is added by the caller
func (r *GormInquiryRepository) applyFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
	query = searchAny(query, filter.Search, "inquiry_number", "customer_name", "email", "company")

	for key, value := range filter.Filters {
		switch key {
		case "status":
			query = query.Where("status = ?", value)
		case "priority":
			query = query.Where("priority = ?", value)
		case "source":
			query = query.Where("source = ?", value)
		case "business_type":
			query = query.Where("business_type = ?", value)
		case "assigned_to":
			query = query.Where("assigned_to = ?", value)
		case "from":
			query = query.Where("created_at >= ?", value)
		case "to":
			query = query.Where("created_at < ?", value)
		case "visible_to":
			userID, _ := datascope.FromFilter(value)
			query = query.Scopes(datascope.Visible(userID, datascope.AssigneeOnly))
		}
	}
	return query
}

// Ensure GormInquiryRepository implements InquiryRepository
var _ sales.InquiryRepository = (*GormInquiryRepository)(nil)
