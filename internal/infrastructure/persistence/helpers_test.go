package persistence

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/uniformco/backoffice/internal/domain/catalog"
	"github.com/uniformco/backoffice/internal/domain/partner"
	"github.com/uniformco/backoffice/internal/domain/sales"
	"github.com/uniformco/backoffice/internal/domain/shared"
	"github.com/uniformco/backoffice/internal/domain/trade"
	"github.com/uniformco/backoffice/internal/infrastructure/config"
)

// setupTestDB opens a migrated in-memory sqlite database
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	cfg := &config.DatabaseConfig{Driver: "sqlite", Path: ":memory:"}
	database, err := Open(sqlite.Open(cfg.DSN()), cfg, zap.NewNop(), gormlogger.Silent)
	require.NoError(t, err)
	require.NoError(t, database.AutoMigrate())
	t.Cleanup(func() { _ = database.Close() })
	return database.DB
}

func newTestCustomer(t *testing.T, email string) *partner.Customer {
	t.Helper()
	c, err := partner.NewCustomer(partner.CustomerDetails{
		Name:         "Greenfield School",
		Email:        email,
		Phone:        "+1 555 0100",
		BusinessType: shared.BusinessTypeSchool,
		Address:      shared.Address{City: "Springfield", Country: "US"},
	}, partner.CustomerStatusProspect, nil)
	require.NoError(t, err)
	return c
}

func newTestProduct(t *testing.T, code string, stock int) *catalog.Product {
	t.Helper()
	p, err := catalog.NewProduct(catalog.ProductDetails{
		Code:         code,
		Name:         "Polo shirt " + code,
		Category:     catalog.CategoryShirt,
		UniformType:  catalog.UniformSchool,
		BasePrice:    decimal.NewFromInt(20),
		ReorderLevel: 5,
		Sizes:        []string{"S", "M", "L"},
		BulkPricing: []catalog.PriceTier{
			{MinQuantity: 50, MaxQuantity: 0, UnitPrice: decimal.NewFromInt(15)},
		},
	}, stock, nil)
	require.NoError(t, err)
	return p
}

func newTestOrder(t *testing.T, number string, customerID uuid.UUID, p *catalog.Product, qty int) *trade.Order {
	t.Helper()
	o, err := trade.NewOrder(number, trade.OrderTypeOrder, customerID, nil)
	require.NoError(t, err)
	_, err = o.AddItem(trade.OrderLine{
		ProductID:   p.ID,
		ProductCode: p.Code,
		ProductName: p.Name,
		Quantity:    qty,
		UnitPrice:   p.PriceForQuantity(qty),
	})
	require.NoError(t, err)
	return o
}

func newTestInquiry(t *testing.T, number, email string) *sales.Inquiry {
	t.Helper()
	i, err := sales.NewInquiry(number, sales.Submission{
		CustomerName: "Jane Doe",
		Email:        email,
		Company:      "Greenfield School",
		BusinessType: shared.BusinessTypeSchool,
		Quantity:     120,
		Requirements: sales.Requirements{Description: "Winter blazers"},
		Source:       sales.SourceWebsite,
	})
	require.NoError(t, err)
	return i
}
