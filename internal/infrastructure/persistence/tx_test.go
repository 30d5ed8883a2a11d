package persistence

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/uniformco/backoffice/internal/domain/shared"
)

func TestGormTransactionManager_RollsBackOnError(t *testing.T) {
	db := setupTestDB(t)
	tm := NewGormTransactionManager(db)
	customers := NewGormCustomerRepository(db)
	products := NewGormProductRepository(db)
	ctx := context.Background()

	p := newTestProduct(t, "TX-1", 3)
	require.NoError(t, products.Create(ctx, p))

	boom := errors.New("boom")
	err := tm.WithinTransaction(ctx, func(ctx context.Context) error {
		require.NoError(t, customers.Create(ctx, newTestCustomer(t, "tx@example.com")))
		require.NoError(t, products.ReserveStock(ctx, p.ID, 2))
		return boom
	})
	assert.ErrorIs(t, err, boom)

	_, err = customers.FindByEmail(ctx, "tx@example.com")
	assert.ErrorIs(t, err, shared.ErrNotFound)
	found, err := products.FindByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, found.StockQuantity)
}

func TestGormTransactionManager_NestedJoinsOuter(t *testing.T) {
	db := setupTestDB(t)
	tm := NewGormTransactionManager(db)
	customers := NewGormCustomerRepository(db)
	ctx := context.Background()

	err := tm.WithinTransaction(ctx, func(ctx context.Context) error {
		if err := tm.WithinTransaction(ctx, func(ctx context.Context) error {
			return customers.Create(ctx, newTestCustomer(t, "inner@example.com"))
		}); err != nil {
			return err
		}
		return shared.ErrInvalidState
	})
	assert.ErrorIs(t, err, shared.ErrInvalidState)

	_, err = customers.FindByEmail(ctx, "inner@example.com")
	assert.ErrorIs(t, err, shared.ErrNotFound)
}
