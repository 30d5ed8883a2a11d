package persistence

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/uniformco/backoffice/internal/domain/catalog"
	"github.com/uniformco/backoffice/internal/domain/shared"
	"github.com/uniformco/backoffice/internal/infrastructure/persistence/models"
)

var errProductExists = shared.NewConflictError("PRODUCT_ALREADY_EXISTS", "A product with this code already exists").WithField("code")

// GormProductRepository implements ProductRepository using GORM
type GormProductRepository struct {
	db *gorm.DB
}

// NewGormProductRepository creates a new GormProductRepository
func NewGormProductRepository(db *gorm.DB) *GormProductRepository {
	return &GormProductRepository{db: db}
}

// FindByID finds a product by its ID, images included
func (r *GormProductRepository) FindByID(ctx context.Context, id uuid.UUID) (*catalog.Product, error) {
	return r.findOne(ctx, "id = ?", id)
}

// FindByCode finds a product by its code
func (r *GormProductRepository) FindByCode(ctx context.Context, code string) (*catalog.Product, error) {
	return r.findOne(ctx, "code = ?", strings.ToUpper(strings.TrimSpace(code)))
}

func (r *GormProductRepository) findOne(ctx context.Context, cond string, arg any) (*catalog.Product, error) {
	db := conn(ctx, r.db)
	var model models.ProductModel
	if err := db.Where(cond, arg).First(&model).Error; err != nil {
		return nil, translate(err, nil)
	}
	products, err := r.withImages(db, []models.ProductModel{model})
	if err != nil {
		return nil, err
	}
	return &products[0], nil
}

// FindByIDs finds multiple products by their IDs
func (r *GormProductRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]catalog.Product, error) {
	if len(ids) == 0 {
		return []catalog.Product{}, nil
	}
	db := conn(ctx, r.db)
	var productModels []models.ProductModel
	if err := db.Where("id IN ?", ids).Find(&productModels).Error; err != nil {
		return nil, err
	}
	return r.withImages(db, productModels)
}

// FindAll finds all products matching the filter
func (r *GormProductRepository) FindAll(ctx context.Context, filter shared.Filter) ([]catalog.Product, error) {
	db := conn(ctx, r.db)
	query := r.applyFilter(db.Model(&models.ProductModel{}), filter)
	query = paginate(query, filter, ProductSortFields, "created_at")

	var productModels []models.ProductModel
	if err := query.Find(&productModels).Error; err != nil {
		return nil, err
	}
	return r.withImages(db, productModels)
}

// Count counts products matching the filter
func (r *GormProductRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	var count int64
	query := r.applyFilter(conn(ctx, r.db).Model(&models.ProductModel{}), filter)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// FindLowStock returns active products at or below their reorder level
func (r *GormProductRepository) FindLowStock(ctx context.Context) ([]catalog.Product, error) {
	db := conn(ctx, r.db)
	var productModels []models.ProductModel
	if err := db.Where("is_active = ? AND stock_quantity <= reorder_level", true).
		Order("stock_quantity ASC, code ASC").
		Find(&productModels).Error; err != nil {
		return nil, err
	}
	return r.withImages(db, productModels)
}

// Create inserts a new product with its images
func (r *GormProductRepository) Create(ctx context.Context, product *catalog.Product) error {
	return inTx(ctx, r.db, func(tx *gorm.DB) error {
		if err := tx.Create(models.ProductModelFromDomain(product)).Error; err != nil {
			return translate(err, errProductExists)
		}
		return r.replaceImages(tx, product)
	})
}

// Save updates a product with optimistic locking and syncs its images
func (r *GormProductRepository) Save(ctx context.Context, product *catalog.Product) error {
	err := inTx(ctx, r.db, func(tx *gorm.DB) error {
		model := models.ProductModelFromDomain(product)
		model.Version = product.Version + 1
		if err := saveVersioned(tx, model, product.ID, product.Version); err != nil {
			return translate(err, errProductExists)
		}
		return r.replaceImages(tx, product)
	})
	if err != nil {
		return err
	}
	product.Version++
	return nil
}

// Delete deletes a product and its image rows
func (r *GormProductRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return inTx(ctx, r.db, func(tx *gorm.DB) error {
		if err := tx.Where("product_id = ?", id).Delete(&models.ProductImageModel{}).Error; err != nil {
			return err
		}
		result := tx.Delete(&models.ProductModel{}, "id = ?", id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return shared.ErrNotFound
		}
		return nil
	})
}

// ExistsByCode checks if a product code is taken
func (r *GormProductRepository) ExistsByCode(ctx context.Context, code string) (bool, error) {
	var count int64
	if err := conn(ctx, r.db).Model(&models.ProductModel{}).
		Where("code = ?", strings.ToUpper(strings.TrimSpace(code))).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// ReserveStock decrements stock only while enough units remain. The guard and
// the decrement are one statement, so two concurrent reservations can never
// both succeed against the same last units.
func (r *GormProductRepository) ReserveStock(ctx context.Context, id uuid.UUID, qty int) error {
	if qty <= 0 {
		return shared.NewValidationError("quantity", "INVALID_QUANTITY", "Quantity must be positive")
	}
	db := conn(ctx, r.db)
	result := db.Model(&models.ProductModel{}).
		Where("id = ? AND stock_quantity >= ?", id, qty).
		UpdateColumns(map[string]any{
			"stock_quantity": gorm.Expr("stock_quantity - ?", qty),
			"version":        gorm.Expr("version + 1"),
			"updated_at":     time.Now().UTC(),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		if err := r.mustExist(db, id); err != nil {
			return err
		}
		return shared.ErrInsufficientStock
	}
	return nil
}

// ReleaseStock returns qty units to stock
func (r *GormProductRepository) ReleaseStock(ctx context.Context, id uuid.UUID, qty int) error {
	if qty <= 0 {
		return nil
	}
	db := conn(ctx, r.db)
	result := db.Model(&models.ProductModel{}).
		Where("id = ?", id).
		UpdateColumns(map[string]any{
			"stock_quantity": gorm.Expr("stock_quantity + ?", qty),
			"version":        gorm.Expr("version + 1"),
			"updated_at":     time.Now().UTC(),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// RecordSale bumps the sold counters of a product
func (r *GormProductRepository) RecordSale(ctx context.Context, id uuid.UUID, qty int, amount decimal.Decimal) error {
	result := conn(ctx, r.db).Model(&models.ProductModel{}).
		Where("id = ?", id).
		UpdateColumns(map[string]any{
			"total_sold":    gorm.Expr("total_sold + ?", qty),
			"total_revenue": gorm.Expr("total_revenue + ?", amount),
			"version":       gorm.Expr("version + 1"),
			"updated_at":    time.Now().UTC(),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func (r *GormProductRepository) mustExist(db *gorm.DB, id uuid.UUID) error {
	var n int64
	if err := db.Model(&models.ProductModel{}).Where("id = ?", id).Count(&n).Error; err != nil {
		return err
	}
	if n == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// replaceImages rewrites the image rows of a product from the aggregate
func (r *GormProductRepository) replaceImages(tx *gorm.DB, product *catalog.Product) error {
	if err := tx.Where("product_id = ?", product.ID).Delete(&models.ProductImageModel{}).Error; err != nil {
		return err
	}
	if len(product.Images) == 0 {
		return nil
	}
	rows := models.ProductImageModelsFromDomain(product.ID, product.Images)
	return tx.Create(&rows).Error
}

// withImages converts models and attaches their images with one extra query
func (r *GormProductRepository) withImages(db *gorm.DB, productModels []models.ProductModel) ([]catalog.Product, error) {
	products := make([]catalog.Product, len(productModels))
	if len(productModels) == 0 {
		return products, nil
	}
	ids := make([]uuid.UUID, len(productModels))
	index := make(map[uuid.UUID]int, len(productModels))
	for i := range productModels {
		products[i] = *productModels[i].ToDomain()
		ids[i] = productModels[i].ID
		index[productModels[i].ID] = i
	}

	var images []models.ProductImageModel
	if err := db.Where("product_id IN ?", ids).Order("sort_order ASC").Find(&images).Error; err != nil {
		return nil, err
	}
	for _, img := range images {
		i := index[img.ProductID]
		products[i].Images = append(products[i].Images, img.ToDomain())
	}
	return products, nil
}

// applyFilter applies search and filter keys; pagination is added by the caller
func (r *GormProductRepository) applyFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
	query = searchAny(query, filter.Search, "code", "name", "description")

	for key, value := range filter.Filters {
		switch key {
		case "category":
			query = query.Where("category = ?", value)
		case "uniform_type":
			query = query.Where("uniform_type = ?", value)
		case "is_active":
			query = query.Where("is_active = ?", value)
		case "stock_status":
			switch catalog.StockStatus(toString(value)) {
			case catalog.StockOut:
				query = query.Where("stock_quantity <= 0")
			case catalog.StockLow:
				query = query.Where("stock_quantity > 0 AND stock_quantity <= reorder_level")
			case catalog.StockIn:
				query = query.Where("stock_quantity > reorder_level")
			}
		case "min_price":
			query = query.Where("COALESCE(special_price, base_price) >= ?", value)
		case "max_price":
			query = query.Where("COALESCE(special_price, base_price) <= ?", value)
		}
	}
	return query
}

// Ensure GormProductRepository implements ProductRepository
var _ catalog.ProductRepository = (*GormProductRepository)(nil)
