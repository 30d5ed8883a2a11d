package persistence

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/uniformco/backoffice/internal/domain/partner"
	"github.com/uniformco/backoffice/internal/domain/shared"
	"github.com/uniformco/backoffice/internal/infrastructure/persistence/datascope"
	"github.com/uniformco/backoffice/internal/infrastructure/persistence/models"
)

var errCustomerExists = shared.NewConflictError("CUSTOMER_ALREADY_EXISTS", "A customer with this email already exists").WithField("email")

// GormCustomerRepository implements CustomerRepository using GORM
type GormCustomerRepository struct {
	db *gorm.DB
}

// NewGormCustomerRepository creates a new GormCustomerRepository
func NewGormCustomerRepository(db *gorm.DB) *GormCustomerRepository {
	return &GormCustomerRepository{db: db}
}

// FindByID finds a customer by its ID
func (r *GormCustomerRepository) FindByID(ctx context.Context, id uuid.UUID) (*partner.Customer, error) {
	return r.findOne(ctx, "id = ?", id)
}

// FindByEmail finds a customer by email
func (r *GormCustomerRepository) FindByEmail(ctx context.Context, email string) (*partner.Customer, error) {
	return r.findOne(ctx, "email = ?", shared.NormalizeEmail(email))
}

func (r *GormCustomerRepository) findOne(ctx context.Context, cond string, arg any) (*partner.Customer, error) {
	db := conn(ctx, r.db)
	var model models.CustomerModel
	if err := db.Where(cond, arg).First(&model).Error; err != nil {
		return nil, translate(err, nil)
	}
	customer := model.ToDomain()
	notes, comms, err := loadActivity(db, models.OwnerCustomer, customer.ID, true)
	if err != nil {
		return nil, err
	}
	customer.Notes, customer.Communications = notes, comms
	return customer, nil
}

// FindAll finds all customers matching the filter
func (r *GormCustomerRepository) FindAll(ctx context.Context, filter shared.Filter) ([]partner.Customer, error) {
	query := r.applyFilter(conn(ctx, r.db).Model(&models.CustomerModel{}), filter)
	query = paginate(query, filter, CustomerSortFields, "created_at")

	var customerModels []models.CustomerModel
	if err := query.Find(&customerModels).Error; err != nil {
		return nil, err
	}
	customers := make([]partner.Customer, len(customerModels))
	for i := range customerModels {
		customers[i] = *customerModels[i].ToDomain()
	}
	return customers, nil
}

// Count counts customers matching the filter
func (r *GormCustomerRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	var count int64
	query := r.applyFilter(conn(ctx, r.db).Model(&models.CustomerModel{}), filter)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Create inserts a new customer together with its notes and communications
func (r *GormCustomerRepository) Create(ctx context.Context, customer *partner.Customer) error {
	return inTx(ctx, r.db, func(tx *gorm.DB) error {
		if err := tx.Create(models.CustomerModelFromDomain(customer)).Error; err != nil {
			return translate(err, errCustomerExists)
		}
		return appendActivity(tx, models.OwnerCustomer, customer.ID, customer.Notes, customer.Communications)
	})
}

// Save updates a customer with optimistic locking and appends new notes and communications
func (r *GormCustomerRepository) Save(ctx context.Context, customer *partner.Customer) error {
	err := inTx(ctx, r.db, func(tx *gorm.DB) error {
		model := models.CustomerModelFromDomain(customer)
		model.Version = customer.Version + 1
		if err := saveVersioned(tx, model, customer.ID, customer.Version); err != nil {
			return translate(err, errCustomerExists)
		}
		return appendActivity(tx, models.OwnerCustomer, customer.ID, customer.Notes, customer.Communications)
	})
	if err != nil {
		return err
	}
	customer.Version++
	return nil
}

// Delete deletes a customer and its activity
func (r *GormCustomerRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return inTx(ctx, r.db, func(tx *gorm.DB) error {
		result := tx.Delete(&models.CustomerModel{}, "id = ?", id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return shared.ErrNotFound
		}
		return deleteActivity(tx, models.OwnerCustomer, id)
	})
}

// ExistsByEmail checks if a customer with the given email exists
func (r *GormCustomerRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	if email == "" {
		return false, nil
	}
	var count int64
	if err := conn(ctx, r.db).Model(&models.CustomerModel{}).
		Where("email = ?", shared.NormalizeEmail(email)).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// CountByStatus counts customers per status
func (r *GormCustomerRepository) CountByStatus(ctx context.Context) (map[partner.CustomerStatus]int64, error) {
	var rows []struct {
		Status partner.CustomerStatus
		Count  int64
	}
	if err := conn(ctx, r.db).Model(&models.CustomerModel{}).
		Select("status, COUNT(*) AS count").
		Group("status").
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	out := make(map[partner.CustomerStatus]int64, len(rows))
	for _, row := range rows {
		out[row.Status] = row.Count
	}
	return out, nil
}

// applyFilter applies search and filter keys; pagination is added by the caller
func (r *GormCustomerRepository) applyFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
	query = searchAny(query, filter.Search, "name", "email", "company", "phone")

	for key, value := range filter.Filters {
		switch key {
		case "status":
			query = query.Where("status = ?", value)
		case "business_type":
			query = query.Where("business_type = ?", value)
		case "assigned_to":
			query = query.Where("assigned_to = ?", value)
		case "tag":
			if tag, ok := value.(string); ok && tag != "" {
				query = jsonArrayContains(query, "tags", tag)
			}
		case "visible_to":
			userID, _ := datascope.FromFilter(value)
			query = query.Scopes(datascope.Visible(userID, datascope.WithCreator))
		}
	}
	return query
}

// Ensure GormCustomerRepository implements CustomerRepository
var _ partner.CustomerRepository = (*GormCustomerRepository)(nil)
