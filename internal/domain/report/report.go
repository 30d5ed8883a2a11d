// Package report holds the read models behind the dashboard and the
// management reports. They are computed by queries, never stored.
package report

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Filter bounds a report to [From, To)
type Filter struct {
	From time.Time `json:"from"`
	To   time.Time `json:"to"`
	TopN int       `json:"top_n,omitempty"`
}

// DefaultFilter covers the last twelve months up to now
func DefaultFilter(now time.Time) Filter {
	start := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location()).AddDate(0, -11, 0)
	return Filter{From: start, To: now.Add(time.Second), TopN: 10}
}

// Normalize fills in missing bounds and clamps TopN
func (f Filter) Normalize(now time.Time) Filter {
	def := DefaultFilter(now)
	if f.From.IsZero() {
		f.From = def.From
	}
	if f.To.IsZero() {
		f.To = def.To
	}
	if f.TopN <= 0 || f.TopN > 100 {
		f.TopN = def.TopN
	}
	return f
}

// StockSummary counts products by stock state
type StockSummary struct {
	Total      int64 `json:"total"`
	Active     int64 `json:"active"`
	LowStock   int64 `json:"low_stock"`
	OutOfStock int64 `json:"out_of_stock"`
}

// RevenueSummary aggregates order money for non-cancelled orders
type RevenueSummary struct {
	Booked      decimal.Decimal `json:"booked"`
	Delivered   decimal.Decimal `json:"delivered"`
	Paid        decimal.Decimal `json:"paid"`
	Outstanding decimal.Decimal `json:"outstanding"`
}

// Dashboard is the landing-page overview
type Dashboard struct {
	Customers   map[string]int64 `json:"customers"`
	Orders      map[string]int64 `json:"orders"`
	Inquiries   map[string]int64 `json:"inquiries"`
	Products    StockSummary     `json:"products"`
	Revenue     RevenueSummary   `json:"revenue"`
	Conversion  ConversionStats  `json:"conversion"`
	GeneratedAt time.Time        `json:"generated_at"`
}

// MonthlySales is one month of booked orders
type MonthlySales struct {
	Month      string          `json:"month"` // YYYY-MM
	OrderCount int64           `json:"order_count"`
	Revenue    decimal.Decimal `json:"revenue"`
	Paid       decimal.Decimal `json:"paid"`
}

// Breakdown counts inquiries for one value of a dimension
type Breakdown struct {
	Key       string `json:"key"`
	Count     int64  `json:"count"`
	Converted int64  `json:"converted"`
}

// ConversionStats is the inquiry to customer conversion rate
type ConversionStats struct {
	Total     int64           `json:"total"`
	Converted int64           `json:"converted"`
	Rate      decimal.Decimal `json:"rate"` // percentage, two decimals
}

// NewConversionStats derives the rate from the two counts
func NewConversionStats(total, converted int64) ConversionStats {
	rate := decimal.Zero
	if total > 0 {
		rate = decimal.NewFromInt(converted).Mul(decimal.NewFromInt(100)).Div(decimal.NewFromInt(total)).Round(2)
	}
	return ConversionStats{Total: total, Converted: converted, Rate: rate}
}

// ProductRanking is one row of the best sellers list
type ProductRanking struct {
	Rank      int             `json:"rank"`
	ProductID uuid.UUID       `json:"product_id"`
	Code      string          `json:"code"`
	Name      string          `json:"name"`
	Quantity  int64           `json:"quantity"`
	Revenue   decimal.Decimal `json:"revenue"`
}

// Repository runs the report queries
type Repository interface {
	CountByStatus(ctx context.Context, table string) (map[string]int64, error)
	StockSummary(ctx context.Context) (StockSummary, error)
	RevenueSummary(ctx context.Context, f Filter) (RevenueSummary, error)
	SalesByMonth(ctx context.Context, f Filter) ([]MonthlySales, error)
	InquiriesBy(ctx context.Context, dimension string, f Filter) ([]Breakdown, error)
	Conversion(ctx context.Context, f Filter) (ConversionStats, error)
	TopProducts(ctx context.Context, f Filter) ([]ProductRanking, error)
}
