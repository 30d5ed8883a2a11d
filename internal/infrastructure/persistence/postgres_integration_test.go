//go:build integration

package persistence

import (
	"context"
	"errors"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/uniformco/backoffice/internal/domain/shared"
	"github.com/uniformco/backoffice/internal/infrastructure/config"
	"github.com/uniformco/backoffice/internal/infrastructure/migration"
)

// setupPostgres starts a throwaway PostgreSQL container and applies the
// embedded migrations. Run with: go test -tags integration ./internal/infrastructure/persistence/...
func setupPostgres(t *testing.T) *gorm.DB {
	t.Helper()
	ctx := context.Background()

	container, err := tcpostgres.Run(ctx,
		"postgres:16-alpine",
		tcpostgres.WithDatabase("backoffice_test"),
		tcpostgres.WithUsername("postgres"),
		tcpostgres.WithPassword("postgres"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second)),
	)
	require.NoError(t, err, "start postgres container")
	t.Cleanup(func() { _ = container.Terminate(context.Background()) })

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	cfg := &config.DatabaseConfig{Driver: "postgres", MaxOpenConns: 20, MaxIdleConns: 5}
	database, err := Open(postgres.Open(dsn), cfg, zap.NewNop(), gormlogger.Silent)
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close() })

	sqlDB, err := database.DB.DB()
	require.NoError(t, err)
	m, err := migration.New(sqlDB, zap.NewNop())
	require.NoError(t, err)
	require.NoError(t, m.Up())

	return database.DB
}

func TestPostgres_ConcurrentReservationsNeverOversell(t *testing.T) {
	db := setupPostgres(t)
	repo := NewGormProductRepository(db)
	ctx := context.Background()

	p := newTestProduct(t, "BLAZER-01", 10)
	require.NoError(t, repo.Create(ctx, p))

	const buyers = 25
	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		reserved int
		rejected int
	)
	for i := 0; i < buyers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := repo.ReserveStock(ctx, p.ID, 1)
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				reserved++
			case errors.Is(err, shared.ErrInsufficientStock):
				rejected++
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 10, reserved)
	assert.Equal(t, buyers-10, rejected)

	stored, err := repo.FindByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, stored.StockQuantity)
}

func TestPostgres_ConcurrentNumbersAreUnique(t *testing.T) {
	db := setupPostgres(t)
	gen := NewOrderNumberGenerator(db, "ORD")
	at := time.Date(2026, 10, 15, 9, 0, 0, 0, time.UTC)

	const n = 20
	numbers := make([]string, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			num, err := gen.Next(context.Background(), at)
			assert.NoError(t, err)
			numbers[i] = num
		}(i)
	}
	wg.Wait()

	sort.Strings(numbers)
	assert.Equal(t, "ORD2026100001", numbers[0])
	assert.Equal(t, "ORD2026100020", numbers[n-1])
	for i := 1; i < n; i++ {
		assert.NotEqual(t, numbers[i-1], numbers[i])
	}
}
