package persistence

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/uniformco/backoffice/internal/domain/report"
	"github.com/uniformco/backoffice/internal/domain/sales"
	"github.com/uniformco/backoffice/internal/domain/trade"
)

// GormReportRepository implements report.Repository with aggregate queries
type GormReportRepository struct {
	db *gorm.DB
}

// NewGormReportRepository creates a new GormReportRepository
func NewGormReportRepository(db *gorm.DB) *GormReportRepository {
	return &GormReportRepository{db: db}
}

var statusTables = map[string]bool{"customers": true, "orders": true, "inquiries": true}

var inquiryDimensions = map[string]bool{"source": true, "business_type": true, "priority": true, "status": true}

// billable are the order statuses that count as booked business
var billable = []trade.OrderStatus{
	trade.OrderStatusPending, trade.OrderStatusConfirmed, trade.OrderStatusInProduction,
	trade.OrderStatusReady, trade.OrderStatusDelivered,
}

// CountByStatus counts rows per status of customers, orders or inquiries
func (r *GormReportRepository) CountByStatus(ctx context.Context, table string) (map[string]int64, error) {
	if !statusTables[table] {
		return nil, fmt.Errorf("no status report for table %q", table)
	}
	var rows []struct {
		Status string
		Count  int64
	}
	if err := conn(ctx, r.db).Table(table).
		Select("status, COUNT(*) AS count").
		Group("status").
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	out := make(map[string]int64, len(rows))
	for _, row := range rows {
		out[row.Status] = row.Count
	}
	return out, nil
}

// StockSummary counts products by stock state
func (r *GormReportRepository) StockSummary(ctx context.Context) (report.StockSummary, error) {
	var s report.StockSummary
	err := conn(ctx, r.db).Table("products").
		Select(`COUNT(*) AS total,
			COALESCE(SUM(CASE WHEN is_active THEN 1 ELSE 0 END), 0) AS active,
			COALESCE(SUM(CASE WHEN stock_quantity > 0 AND stock_quantity <= reorder_level THEN 1 ELSE 0 END), 0) AS low_stock,
			COALESCE(SUM(CASE WHEN stock_quantity <= 0 THEN 1 ELSE 0 END), 0) AS out_of_stock`).
		Scan(&s).Error
	return s, err
}

// RevenueSummary sums order money for booked orders created in the window
func (r *GormReportRepository) RevenueSummary(ctx context.Context, f report.Filter) (report.RevenueSummary, error) {
	var row struct {
		Booked    decimal.Decimal
		Delivered decimal.Decimal
		Paid      decimal.Decimal
	}
	err := conn(ctx, r.db).Table("orders").
		Select(`COALESCE(SUM(total_amount), 0) AS booked,
			COALESCE(SUM(CASE WHEN status = ? THEN total_amount ELSE 0 END), 0) AS delivered,
			COALESCE(SUM(paid_amount), 0) AS paid`, trade.OrderStatusDelivered).
		Where("status IN ? AND created_at >= ? AND created_at < ?", billable, f.From, f.To).
		Scan(&row).Error
	if err != nil {
		return report.RevenueSummary{}, err
	}
	outstanding := row.Booked.Sub(row.Paid)
	if outstanding.IsNegative() {
		outstanding = decimal.Zero
	}
	return report.RevenueSummary{
		Booked:      row.Booked,
		Delivered:   row.Delivered,
		Paid:        row.Paid,
		Outstanding: outstanding,
	}, nil
}

// SalesByMonth groups booked orders by calendar month
func (r *GormReportRepository) SalesByMonth(ctx context.Context, f report.Filter) ([]report.MonthlySales, error) {
	db := conn(ctx, r.db)
	month := monthExpr(db, "created_at")
	var rows []report.MonthlySales
	err := db.Table("orders").
		Select(month+" AS month, COUNT(*) AS order_count, COALESCE(SUM(total_amount), 0) AS revenue, COALESCE(SUM(paid_amount), 0) AS paid").
		Where("status IN ? AND created_at >= ? AND created_at < ?", billable, f.From, f.To).
		Group(month).
		Order("month ASC").
		Scan(&rows).Error
	return rows, err
}

// InquiriesBy counts inquiries per value of source, business_type, priority or status
func (r *GormReportRepository) InquiriesBy(ctx context.Context, dimension string, f report.Filter) ([]report.Breakdown, error) {
	if !inquiryDimensions[dimension] {
		return nil, fmt.Errorf("cannot break inquiries down by %q", dimension)
	}
	var rows []struct {
		Bucket    string
		Count     int64
		Converted int64
	}
	err := conn(ctx, r.db).Table("inquiries").
		Select(dimension+" AS bucket, COUNT(*) AS count, COALESCE(SUM(CASE WHEN status = ? THEN 1 ELSE 0 END), 0) AS converted",
			sales.InquiryStatusConverted).
		Where("created_at >= ? AND created_at < ?", f.From, f.To).
		Group(dimension).
		Order("count DESC").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	out := make([]report.Breakdown, len(rows))
	for i, row := range rows {
		out[i] = report.Breakdown{Key: row.Bucket, Count: row.Count, Converted: row.Converted}
	}
	return out, nil
}

// Conversion computes the inquiry conversion rate for the window
func (r *GormReportRepository) Conversion(ctx context.Context, f report.Filter) (report.ConversionStats, error) {
	var row struct {
		Total     int64
		Converted int64
	}
	err := conn(ctx, r.db).Table("inquiries").
		Select("COUNT(*) AS total, COALESCE(SUM(CASE WHEN status = ? THEN 1 ELSE 0 END), 0) AS converted",
			sales.InquiryStatusConverted).
		Where("created_at >= ? AND created_at < ?", f.From, f.To).
		Scan(&row).Error
	if err != nil {
		return report.ConversionStats{}, err
	}
	return report.NewConversionStats(row.Total, row.Converted), nil
}

// TopProducts ranks products by units on booked orders
func (r *GormReportRepository) TopProducts(ctx context.Context, f report.Filter) ([]report.ProductRanking, error) {
	var rows []struct {
		ProductID uuid.UUID
		Code      string
		Name      string
		Quantity  int64
		Revenue   decimal.Decimal
	}
	err := conn(ctx, r.db).Table("order_items oi").
		Select(`oi.product_id AS product_id, MAX(oi.product_code) AS code, MAX(oi.product_name) AS name,
			COALESCE(SUM(oi.quantity), 0) AS quantity, COALESCE(SUM(oi.total_price), 0) AS revenue`).
		Joins("JOIN orders o ON o.id = oi.order_id").
		Where("o.status IN ? AND o.created_at >= ? AND o.created_at < ?", billable, f.From, f.To).
		Group("oi.product_id").
		Order("quantity DESC").
		Limit(f.TopN).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	out := make([]report.ProductRanking, len(rows))
	for i, row := range rows {
		out[i] = report.ProductRanking{
			Rank:      i + 1,
			ProductID: row.ProductID,
			Code:      row.Code,
			Name:      row.Name,
			Quantity:  row.Quantity,
			Revenue:   row.Revenue,
		}
	}
	return out, nil
}

// monthExpr renders a YYYY-MM expression for column in the connected dialect
func monthExpr(db *gorm.DB, column string) string {
	switch db.Dialector.Name() {
	case "postgres":
		return "to_char(" + column + ", 'YYYY-MM')"
	case "mysql":
		return "DATE_FORMAT(" + column + ", '%Y-%m')"
	default:
		return "substr(" + column + ", 1, 7)"
	}
}

var _ report.Repository = (*GormReportRepository)(nil)
