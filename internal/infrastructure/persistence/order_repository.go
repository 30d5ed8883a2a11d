package persistence

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/uniformco/backoffice/internal/domain/shared"
	"github.com/uniformco/backoffice/internal/domain/trade"
	"github.com/uniformco/backoffice/internal/infrastructure/persistence/datascope"
	"github.com/uniformco/backoffice/internal/infrastructure/persistence/models"
)

// GormOrderRepository implements OrderRepository using GORM.
// Orders are always returned with items, status history and notes.
type GormOrderRepository struct {
	db *gorm.DB
}

// NewGormOrderRepository creates a new GormOrderRepository
func NewGormOrderRepository(db *gorm.DB) *GormOrderRepository {
	return &GormOrderRepository{db: db}
}

// FindByID finds an order by its ID
func (r *GormOrderRepository) FindByID(ctx context.Context, id uuid.UUID) (*trade.Order, error) {
	return r.findOne(ctx, "id = ?", id)
}

// FindByOrderNumber finds an order by its number
func (r *GormOrderRepository) FindByOrderNumber(ctx context.Context, number string) (*trade.Order, error) {
	return r.findOne(ctx, "order_number = ?", number)
}

func (r *GormOrderRepository) findOne(ctx context.Context, cond string, arg any) (*trade.Order, error) {
	db := conn(ctx, r.db)
	var model models.OrderModel
	if err := db.Where(cond, arg).First(&model).Error; err != nil {
		return nil, translate(err, nil)
	}
	orders, err := r.hydrate(db, []models.OrderModel{model})
	if err != nil {
		return nil, err
	}
	return &orders[0], nil
}

// FindAll finds all orders matching the filter
func (r *GormOrderRepository) FindAll(ctx context.Context, filter shared.Filter) ([]trade.Order, error) {
	db := conn(ctx, r.db)
	query := r.applyFilter(db.Model(&models.OrderModel{}), filter)
	query = paginate(query, filter, OrderSortFields, "created_at")

	var orderModels []models.OrderModel
	if err := query.Find(&orderModels).Error; err != nil {
		return nil, err
	}
	return r.hydrate(db, orderModels)
}

// Count counts orders matching the filter
func (r *GormOrderRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	var count int64
	query := r.applyFilter(conn(ctx, r.db).Model(&models.OrderModel{}), filter)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// FindByCustomer lists a customer's orders, newest first
func (r *GormOrderRepository) FindByCustomer(ctx context.Context, customerID uuid.UUID, filter shared.Filter) ([]trade.Order, error) {
	if filter.Filters == nil {
		filter.Filters = map[string]any{}
	}
	filter.Filters["customer_id"] = customerID
	if filter.OrderBy == "" {
		filter.OrderBy, filter.OrderDir = "created_at", "desc"
	}
	return r.FindAll(ctx, filter)
}

// FindOverdueCandidates returns unpaid, non-cancelled orders whose payment due date is before asOf
func (r *GormOrderRepository) FindOverdueCandidates(ctx context.Context, asOf time.Time) ([]trade.Order, error) {
	db := conn(ctx, r.db)
	var orderModels []models.OrderModel
	if err := db.
		Where("payment_due_date < ?", asOf).
		Where("payment_status IN ?", []trade.PaymentStatus{trade.PaymentStatusPending, trade.PaymentStatusPartial}).
		Where("status NOT IN ?", []trade.OrderStatus{trade.OrderStatusCancelled, trade.OrderStatusDraft}).
		Order("payment_due_date ASC").
		Find(&orderModels).Error; err != nil {
		return nil, err
	}
	return r.hydrate(db, orderModels)
}

// Create inserts an order with its items, history and notes
func (r *GormOrderRepository) Create(ctx context.Context, order *trade.Order) error {
	return inTx(ctx, r.db, func(tx *gorm.DB) error {
		if err := tx.Create(models.OrderModelFromDomain(order)).Error; err != nil {
			return translate(err, shared.ErrDuplicateNumber)
		}
		return r.syncChildren(tx, order)
	})
}

// Save updates an order with optimistic locking and syncs its children
func (r *GormOrderRepository) Save(ctx context.Context, order *trade.Order) error {
	err := inTx(ctx, r.db, func(tx *gorm.DB) error {
		model := models.OrderModelFromDomain(order)
		model.Version = order.Version + 1
		if err := saveVersioned(tx, model, order.ID, order.Version); err != nil {
			return translate(err, shared.ErrDuplicateNumber)
		}
		return r.syncChildren(tx, order)
	})
	if err != nil {
		return err
	}
	order.Version++
	return nil
}

// Delete deletes an order and its children
func (r *GormOrderRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return inTx(ctx, r.db, func(tx *gorm.DB) error {
		if err := tx.Where("order_id = ?", id).Delete(&models.OrderItemModel{}).Error; err != nil {
			return err
		}
		if err := tx.Where("order_id = ?", id).Delete(&models.OrderStatusChangeModel{}).Error; err != nil {
			return err
		}
		if err := deleteActivity(tx, models.OwnerOrder, id); err != nil {
			return err
		}
		result := tx.Delete(&models.OrderModel{}, "id = ?", id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return shared.ErrNotFound
		}
		return nil
	})
}

// CountByCustomer counts orders referencing a customer
func (r *GormOrderRepository) CountByCustomer(ctx context.Context, customerID uuid.UUID) (int64, error) {
	var count int64
	if err := conn(ctx, r.db).Model(&models.OrderModel{}).
		Where("customer_id = ?", customerID).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// CountActiveByProduct counts non-draft orders with a line for the product
func (r *GormOrderRepository) CountActiveByProduct(ctx context.Context, productID uuid.UUID) (int64, error) {
	var count int64
	if err := conn(ctx, r.db).Model(&models.OrderModel{}).
		Joins("JOIN order_items ON order_items.order_id = orders.id").
		Where("order_items.product_id = ? AND orders.status <> ?", productID, trade.OrderStatusDraft).
		Distinct("orders.id").
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// syncChildren replaces the item rows and appends new history entries and notes
func (r *GormOrderRepository) syncChildren(tx *gorm.DB, order *trade.Order) error {
	if err := tx.Where("order_id = ?", order.ID).Delete(&models.OrderItemModel{}).Error; err != nil {
		return err
	}
	if len(order.Items) > 0 {
		items := models.OrderItemModelsFromDomain(order.ID, order.Items)
		if err := tx.Create(&items).Error; err != nil {
			return err
		}
	}
	if len(order.StatusHistory) > 0 {
		history := models.StatusChangeModelsFromDomain(order.ID, order.StatusHistory)
		if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&history).Error; err != nil {
			return err
		}
	}
	return appendActivity(tx, models.OwnerOrder, order.ID, order.Notes, nil)
}

// hydrate converts models and attaches items, history and notes in three queries
func (r *GormOrderRepository) hydrate(db *gorm.DB, orderModels []models.OrderModel) ([]trade.Order, error) {
	orders := make([]trade.Order, len(orderModels))
	if len(orderModels) == 0 {
		return orders, nil
	}
	ids := make([]uuid.UUID, len(orderModels))
	index := make(map[uuid.UUID]int, len(orderModels))
	for i := range orderModels {
		orders[i] = *orderModels[i].ToDomain()
		ids[i] = orderModels[i].ID
		index[orderModels[i].ID] = i
	}

	var items []models.OrderItemModel
	if err := db.Where("order_id IN ?", ids).Order("position ASC").Find(&items).Error; err != nil {
		return nil, err
	}
	for _, it := range items {
		o := &orders[index[it.OrderID]]
		o.Items = append(o.Items, it.ToDomain())
	}

	var history []models.OrderStatusChangeModel
	if err := db.Where("order_id IN ?", ids).Order("changed_at ASC").Find(&history).Error; err != nil {
		return nil, err
	}
	for _, h := range history {
		o := &orders[index[h.OrderID]]
		o.StatusHistory = append(o.StatusHistory, h.ToDomain())
	}

	var notes []models.NoteModel
	if err := db.Where("owner_type = ? AND owner_id IN ?", models.OwnerOrder, ids).
		Order("created_at ASC").Find(&notes).Error; err != nil {
		return nil, err
	}
	for _, n := range notes {
		o := &orders[index[n.OwnerID]]
		o.Notes = append(o.Notes, n.ToDomain())
	}
	return orders, nil
}

// applyFilter applies search and filter keys; pagination is added by the caller
func (r *GormOrderRepository) applyFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
	query = searchAny(query, filter.Search, "order_number")

	for key, value := range filter.Filters {
		switch key {
		case "status":
			query = query.Where("status = ?", value)
		case "payment_status":
			query = query.Where("payment_status = ?", value)
		case "type":
			query = query.Where("type = ?", value)
		case "customer_id":
			query = query.Where("customer_id = ?", value)
		case "assigned_to":
			query = query.Where("assigned_to = ?", value)
		case "from":
			query = query.Where("created_at >= ?", value)
		case "to":
			query = query.Where("created_at < ?", value)
		case "visible_to":
			userID, _ := datascope.FromFilter(value)
			query = query.Scopes(datascope.Visible(userID, datascope.WithCreator))
		}
	}
	return query
}

// Ensure GormOrderRepository implements OrderRepository
var _ trade.OrderRepository = (*GormOrderRepository)(nil)
