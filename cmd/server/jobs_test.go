package main

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	salesapp "github.com/uniformco/backoffice/internal/application/sales"
	tradeapp "github.com/uniformco/backoffice/internal/application/trade"
	"github.com/uniformco/backoffice/internal/infrastructure/config"
	"github.com/uniformco/backoffice/internal/infrastructure/persistence"
	"github.com/uniformco/backoffice/internal/infrastructure/scheduler"
	"github.com/uniformco/backoffice/internal/infrastructure/telemetry"
	"github.com/uniformco/backoffice/internal/testutil"
)

func testSchedule() config.SchedulerConfig {
	return config.SchedulerConfig{
		FollowUpSchedule:  "0 8 * * *",
		OverdueSchedule:   "30 1 * * *",
		LowStockSchedule:  "0 7 * * 1",
		ReconcileSchedule: "15 2 * * *",
	}
}

func TestRegisterJobs(t *testing.T) {
	db := testutil.NewTestDB(t)
	log := zap.NewNop()
	events := testutil.NewRecordingPublisher()
	metrics := telemetry.NewMetrics()

	customers := persistence.NewGormCustomerRepository(db)
	products := persistence.NewGormProductRepository(db)
	orders := persistence.NewGormOrderRepository(db)
	inquiries := persistence.NewGormInquiryRepository(db)
	tx := persistence.NewGormTransactionManager(db)

	deps := jobDeps{
		inquiries: salesapp.NewInquiryService(inquiries, customers, orders,
			persistence.NewInquiryNumberGenerator(db, "INQ"), tx, events, metrics, log),
		orders: tradeapp.NewOrderService(orders, products, customers,
			persistence.NewOrderNumberGenerator(db, "ORD"), tx, events, metrics, log),
		products: products,
		metrics:  metrics,
		log:      log,
	}

	s := scheduler.New(scheduler.Config{JobTimeout: time.Minute}, log, metrics)
	require.NoError(t, registerJobs(s, testSchedule(), deps))
	assert.ElementsMatch(t, []string{
		jobFollowUpReminders, jobOverduePayments, jobReconcileConversions, jobLowStock,
	}, s.Jobs())

	t.Run("every sweep runs on an empty database", func(t *testing.T) {
		for _, name := range s.Jobs() {
			assert.NoError(t, s.RunNow(context.Background(), name), name)
		}
	})

	t.Run("low stock sweep updates the gauge", func(t *testing.T) {
		testutil.CreateProduct(t, db, "TIE-01", 2)
		testutil.CreateProduct(t, db, "SHIRT-01", 40)

		require.NoError(t, s.RunNow(context.Background(), jobLowStock))

		rec := httptest.NewRecorder()
		metrics.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
		assert.Contains(t, rec.Body.String(), "backoffice_low_stock_products 1")
	})

	t.Run("second registration is rejected", func(t *testing.T) {
		assert.ErrorIs(t, registerJobs(s, testSchedule(), deps), scheduler.ErrDuplicateJob)
	})
}

func TestRegisterJobs_InvalidSchedule(t *testing.T) {
	cfg := testSchedule()
	cfg.OverdueSchedule = "every tuesday"

	s := scheduler.New(scheduler.Config{}, zap.NewNop(), nil)
	err := registerJobs(s, cfg, jobDeps{log: zap.NewNop()})

	assert.ErrorIs(t, err, scheduler.ErrInvalidSchedule)
}

func TestStaticPath(t *testing.T) {
	assert.Equal(t, "/uploads", staticPath("/uploads"))
	assert.Equal(t, "/media/files", staticPath("https://cdn.uniformco.test/media/files"))
	assert.Equal(t, "/uploads", staticPath("https://cdn.uniformco.test"))
}
