package persistence

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/uniformco/backoffice/internal/domain/report"
	"github.com/uniformco/backoffice/internal/domain/sales"
	"github.com/uniformco/backoffice/internal/domain/trade"
)

func seedReportData(ctx context.Context, t *testing.T, repo *GormReportRepository) {
	t.Helper()
	db := repo.db
	orders := NewGormOrderRepository(db)
	products := NewGormProductRepository(db)
	inquiries := NewGormInquiryRepository(db)

	polo := newTestProduct(t, "POL-1", 0)
	blazer := newTestProduct(t, "BLZ-1", 3)
	require.NoError(t, products.Create(ctx, polo))
	require.NoError(t, products.Create(ctx, blazer))

	customerID := uuid.New()
	booked := newTestOrder(t, "ORD2024010001", customerID, polo, 10)
	require.NoError(t, booked.UpdateStatus(trade.OrderStatusPending, nil, ""))
	require.NoError(t, booked.UpdatePayment(decimal.NewFromInt(50)))
	second := newTestOrder(t, "ORD2024010002", customerID, blazer, 2)
	require.NoError(t, second.UpdateStatus(trade.OrderStatusPending, nil, ""))
	draft := newTestOrder(t, "ORD2024010003", customerID, blazer, 99)
	for _, o := range []*trade.Order{booked, second, draft} {
		require.NoError(t, orders.Create(ctx, o))
	}

	converted := newTestInquiry(t, "INQ2024010001", "a@example.com")
	require.NoError(t, converted.MarkConverted(customerID, nil))
	open := newTestInquiry(t, "INQ2024010002", "b@example.com")
	referral := newTestInquiry(t, "INQ2024010003", "c@example.com")
	referral.Source = sales.SourceReferral
	for _, i := range []*sales.Inquiry{converted, open, referral} {
		require.NoError(t, inquiries.Create(ctx, i))
	}
}

func TestGormReportRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewGormReportRepository(setupTestDB(t))
	seedReportData(ctx, t, repo)

	now := time.Now().UTC()
	f := report.Filter{From: now.Add(-time.Hour), To: now.Add(time.Hour), TopN: 5}

	t.Run("count by status", func(t *testing.T) {
		counts, err := repo.CountByStatus(ctx, "orders")
		require.NoError(t, err)
		assert.Equal(t, int64(2), counts[string(trade.OrderStatusPending)])
		assert.Equal(t, int64(1), counts[string(trade.OrderStatusDraft)])

		_, err = repo.CountByStatus(ctx, "users; DROP TABLE users")
		assert.Error(t, err)
	})

	t.Run("stock summary", func(t *testing.T) {
		s, err := repo.StockSummary(ctx)
		require.NoError(t, err)
		assert.Equal(t, report.StockSummary{Total: 2, Active: 2, LowStock: 1, OutOfStock: 1}, s)
	})

	t.Run("revenue excludes drafts", func(t *testing.T) {
		rev, err := repo.RevenueSummary(ctx, f)
		require.NoError(t, err)
		assert.True(t, rev.Booked.Equal(decimal.NewFromInt(240)), rev.Booked.String())
		assert.True(t, rev.Paid.Equal(decimal.NewFromInt(50)))
		assert.True(t, rev.Outstanding.Equal(decimal.NewFromInt(190)))
		assert.True(t, rev.Delivered.IsZero())
	})

	t.Run("sales by month", func(t *testing.T) {
		rows, err := repo.SalesByMonth(ctx, f)
		require.NoError(t, err)
		require.Len(t, rows, 1)
		assert.Equal(t, now.Format("2006-01"), rows[0].Month)
		assert.Equal(t, int64(2), rows[0].OrderCount)
	})

	t.Run("inquiries by source", func(t *testing.T) {
		rows, err := repo.InquiriesBy(ctx, "source", f)
		require.NoError(t, err)
		require.Len(t, rows, 2)
		assert.Equal(t, string(sales.SourceWebsite), rows[0].Key)
		assert.Equal(t, int64(2), rows[0].Count)
		assert.Equal(t, int64(1), rows[0].Converted)

		_, err = repo.InquiriesBy(ctx, "email", f)
		assert.Error(t, err)
	})

	t.Run("conversion", func(t *testing.T) {
		c, err := repo.Conversion(ctx, f)
		require.NoError(t, err)
		assert.Equal(t, int64(3), c.Total)
		assert.Equal(t, int64(1), c.Converted)
		assert.Equal(t, "33.33", c.Rate.StringFixed(2))
	})

	t.Run("top products", func(t *testing.T) {
		rows, err := repo.TopProducts(ctx, f)
		require.NoError(t, err)
		require.Len(t, rows, 2)
		assert.Equal(t, 1, rows[0].Rank)
		assert.Equal(t, "POL-1", rows[0].Code)
		assert.Equal(t, int64(10), rows[0].Quantity)
	})
}
