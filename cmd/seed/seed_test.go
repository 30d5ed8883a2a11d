package main

import (
	"bytes"
	"context"
	"testing"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/uniformco/backoffice/internal/domain/identity"
	"github.com/uniformco/backoffice/internal/domain/sales"
	"github.com/uniformco/backoffice/internal/domain/shared"
	"github.com/uniformco/backoffice/internal/infrastructure/config"
	"github.com/uniformco/backoffice/internal/infrastructure/persistence"
	"github.com/uniformco/backoffice/internal/infrastructure/persistence/models"
	"github.com/uniformco/backoffice/internal/testutil"
)

func TestSeeder_Run(t *testing.T) {
	db := testutil.NewTestDB(t)
	events := testutil.NewRecordingPublisher()
	s := newSeeder(db, config.NumberingConfig{InquiryPrefix: "INQ", OrderPrefix: "ORD"}, events, gofakeit.New(42), zap.NewNop())
	ctx := context.Background()

	sum, err := s.run(ctx, bytes.NewReader(defaultCatalogue), options{
		Password:  "Uniform2026",
		Customers: 6,
		Inquiries: 6,
		Orders:    8,
	})
	require.NoError(t, err)

	assert.Equal(t, 4, sum.Users)
	assert.Equal(t, 17, sum.Products)
	assert.Equal(t, 6, sum.Inquiries)
	assert.Equal(t, 2, sum.Converted)
	assert.Positive(t, sum.Orders)

	var n int64
	require.NoError(t, db.Model(&models.CustomerModel{}).Count(&n).Error)
	assert.GreaterOrEqual(t, n, int64(sum.Customers+1))

	converted := shared.DefaultFilter()
	converted.Filters["status"] = string(sales.InquiryStatusConverted)
	count, err := persistence.NewGormInquiryRepository(db).Count(ctx, converted)
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)

	all := shared.DefaultFilter()
	all.PageSize = 100
	orders, err := persistence.NewGormOrderRepository(db).FindAll(ctx, all)
	require.NoError(t, err)
	assert.Len(t, orders, sum.Orders)
	for _, o := range orders {
		assert.True(t, o.StockReserved)
	}

	// staff own what they created
	staff, err := persistence.NewGormUserRepository(db).FindByUsername(ctx, "anna")
	require.NoError(t, err)
	assert.Equal(t, identity.RoleStaff, staff.Role)
	mine := shared.DefaultFilter()
	mine.Filters["assigned_to"] = staff.ID.String()
	owned, err := persistence.NewGormCustomerRepository(db).FindAll(ctx, mine)
	require.NoError(t, err)
	assert.NotEmpty(t, owned)
}

func TestSeeder_RunTwiceKeepsUsersAndProducts(t *testing.T) {
	db := testutil.NewTestDB(t)
	s := newSeeder(db, config.NumberingConfig{InquiryPrefix: "INQ", OrderPrefix: "ORD"}, testutil.NewRecordingPublisher(), gofakeit.New(7), zap.NewNop())
	opts := options{Password: "Uniform2026"}

	_, err := s.run(context.Background(), bytes.NewReader(defaultCatalogue), opts)
	require.NoError(t, err)
	again, err := s.run(context.Background(), bytes.NewReader(defaultCatalogue), opts)
	require.NoError(t, err)

	assert.Zero(t, again.Users)
	assert.Zero(t, again.Products)
}
