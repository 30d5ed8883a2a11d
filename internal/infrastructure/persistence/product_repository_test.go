package persistence

import (
	"context"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/uniformco/backoffice/internal/domain/catalog"
	"github.com/uniformco/backoffice/internal/domain/shared"
)

func TestGormProductRepository_RoundTrip(t *testing.T) {
	ctx := context.Background()
	repo := NewGormProductRepository(setupTestDB(t))

	p := newTestProduct(t, "pol-01", 40)
	img, err := catalog.NewProductImage("products/a.jpg", "/files/products/a.jpg", "products/a_thumb.jpg", "/files/products/a_thumb.jpg", "front")
	require.NoError(t, err)
	require.NoError(t, p.AddImage(img))
	require.NoError(t, repo.Create(ctx, p))

	found, err := repo.FindByCode(ctx, "POL-01")
	require.NoError(t, err)
	assert.Equal(t, "POL-01", found.Code)
	assert.Equal(t, []string{"S", "M", "L"}, found.Sizes)
	require.Len(t, found.BulkPricing, 1)
	assert.True(t, found.BulkPricing[0].UnitPrice.Equal(decimal.NewFromInt(15)))
	require.Len(t, found.Images, 1)
	assert.True(t, found.Images[0].IsPrimary)

	second, err := catalog.NewProductImage("products/b.jpg", "/files/products/b.jpg", "", "", "")
	require.NoError(t, err)
	require.NoError(t, found.AddImage(second))
	require.NoError(t, found.SetPrimaryImage(second.ID))
	require.NoError(t, repo.Save(ctx, found))

	reloaded, err := repo.FindByID(ctx, p.ID)
	require.NoError(t, err)
	primary, ok := reloaded.PrimaryImage()
	require.True(t, ok)
	assert.Equal(t, second.ID, primary.ID)
	assert.Len(t, reloaded.Images, 2)
}

func TestGormProductRepository_DuplicateCode(t *testing.T) {
	ctx := context.Background()
	repo := NewGormProductRepository(setupTestDB(t))

	require.NoError(t, repo.Create(ctx, newTestProduct(t, "BLZ-1", 1)))
	err := repo.Create(ctx, newTestProduct(t, "blz-1", 1))
	assert.True(t, shared.IsKind(err, shared.KindConflict))
}

func TestGormProductRepository_ReserveStock(t *testing.T) {
	ctx := context.Background()
	repo := NewGormProductRepository(setupTestDB(t))

	p := newTestProduct(t, "TRS-1", 10)
	require.NoError(t, repo.Create(ctx, p))

	require.NoError(t, repo.ReserveStock(ctx, p.ID, 4))
	err := repo.ReserveStock(ctx, p.ID, 7)
	assert.ErrorIs(t, err, shared.ErrInsufficientStock)

	found, err := repo.FindByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 6, found.StockQuantity)

	require.NoError(t, repo.ReleaseStock(ctx, p.ID, 4))
	found, err = repo.FindByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 10, found.StockQuantity)

	assert.ErrorIs(t, repo.ReserveStock(ctx, uuid.New(), 1), shared.ErrNotFound)
}

func TestGormProductRepository_ReserveStockConcurrent(t *testing.T) {
	ctx := context.Background()
	repo := NewGormProductRepository(setupTestDB(t))

	p := newTestProduct(t, "SKT-1", 5)
	require.NoError(t, repo.Create(ctx, p))

	var wg sync.WaitGroup
	var mu sync.Mutex
	succeeded := 0
	for range 10 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if repo.ReserveStock(ctx, p.ID, 1) == nil {
				mu.Lock()
				succeeded++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 5, succeeded)
	found, err := repo.FindByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, found.StockQuantity)
}

func TestGormProductRepository_StaleSaveAfterReservation(t *testing.T) {
	ctx := context.Background()
	repo := NewGormProductRepository(setupTestDB(t))

	p := newTestProduct(t, "JKT-1", 10)
	require.NoError(t, repo.Create(ctx, p))

	stale, err := repo.FindByID(ctx, p.ID)
	require.NoError(t, err)
	require.NoError(t, repo.ReserveStock(ctx, p.ID, 3))

	stale.Name = "Renamed"
	assert.ErrorIs(t, repo.Save(ctx, stale), shared.ErrConcurrencyConflict)
}

func TestGormProductRepository_Filters(t *testing.T) {
	ctx := context.Background()
	repo := NewGormProductRepository(setupTestDB(t))

	require.NoError(t, repo.Create(ctx, newTestProduct(t, "A-1", 0)))
	require.NoError(t, repo.Create(ctx, newTestProduct(t, "A-2", 3)))
	require.NoError(t, repo.Create(ctx, newTestProduct(t, "A-3", 30)))

	for status, want := range map[catalog.StockStatus]int{
		catalog.StockOut: 1,
		catalog.StockLow: 1,
		catalog.StockIn:  1,
	} {
		filter := shared.DefaultFilter()
		filter.Filters["stock_status"] = status
		got, err := repo.FindAll(ctx, filter)
		require.NoError(t, err)
		assert.Len(t, got, want, string(status))
	}

	low, err := repo.FindLowStock(ctx)
	require.NoError(t, err)
	require.Len(t, low, 2)
	assert.Equal(t, "A-1", low[0].Code)

	filter := shared.DefaultFilter()
	filter.Filters["min_price"] = 25
	n, err := repo.Count(ctx, filter)
	require.NoError(t, err)
	assert.Zero(t, n)

	filter = shared.DefaultFilter()
	filter.Filters["max_price"] = 25
	n, err = repo.Count(ctx, filter)
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)
}

func TestGormProductRepository_RecordSale(t *testing.T) {
	ctx := context.Background()
	repo := NewGormProductRepository(setupTestDB(t))

	p := newTestProduct(t, "SPT-9", 10)
	require.NoError(t, repo.Create(ctx, p))
	require.NoError(t, repo.RecordSale(ctx, p.ID, 3, decimal.RequireFromString("60.00")))

	found, err := repo.FindByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, found.TotalSold)
	assert.True(t, found.TotalRevenue.Equal(decimal.NewFromInt(60)))
}
