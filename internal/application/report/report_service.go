package report

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/uniformco/backoffice/internal/domain/catalog"
	"github.com/uniformco/backoffice/internal/domain/identity"
	"github.com/uniformco/backoffice/internal/domain/report"
	"github.com/uniformco/backoffice/internal/domain/shared"
	"github.com/uniformco/backoffice/internal/infrastructure/cache"
)

// CachePrefix namespaces every cached report
const CachePrefix = "report:"

// ===================== Request / Response DTOs =====================

// ReportFilter defines the request filter for reports. To is inclusive.
type ReportFilter struct {
	From *time.Time `form:"from" time_format:"2006-01-02"`
	To   *time.Time `form:"to" time_format:"2006-01-02"`
	TopN int        `form:"top_n" binding:"omitempty,min=1,max=100"`
}

// LowStockItem is one product that needs reordering
type LowStockItem struct {
	ProductID     string          `json:"product_id"`
	Code          string          `json:"code"`
	Name          string          `json:"name"`
	Category      string          `json:"category"`
	StockQuantity int             `json:"stock_quantity"`
	ReorderLevel  int             `json:"reorder_level"`
	StockStatus   string          `json:"stock_status"`
	UnitPrice     decimal.Decimal `json:"unit_price"`
}

// InquiryReport breaks inquiries down by one dimension
type InquiryReport struct {
	Dimension  string                 `json:"dimension"`
	From       time.Time              `json:"from"`
	To         time.Time              `json:"to"`
	Buckets    []report.Breakdown     `json:"buckets"`
	Conversion report.ConversionStats `json:"conversion"`
}

// SalesReport is booked sales per month with the window totals
type SalesReport struct {
	From   time.Time             `json:"from"`
	To     time.Time             `json:"to"`
	Months []report.MonthlySales `json:"months"`
	Totals report.RevenueSummary `json:"totals"`
}

// ===================== Service =====================

// ReportService provides the read-only dashboard and management reports.
// Results are cached for ttl when a cache is configured; cache failures are
// logged and the report is computed from the database.
type ReportService struct {
	repo        report.Repository
	productRepo catalog.ProductRepository
	cache       cache.Cache
	ttl         time.Duration
	logger      *zap.Logger
	now         func() time.Time
}

// NewReportService creates a new ReportService. store may be nil.
func NewReportService(repo report.Repository, productRepo catalog.ProductRepository, store cache.Cache, ttl time.Duration, logger *zap.Logger) *ReportService {
	return &ReportService{
		repo:        repo,
		productRepo: productRepo,
		cache:       store,
		ttl:         ttl,
		logger:      logger,
		now:         func() time.Time { return time.Now().UTC() },
	}
}

// Dashboard returns counts by status for every entity, stock state, revenue and conversion
func (s *ReportService) Dashboard(ctx context.Context, actor identity.Principal) (*report.Dashboard, error) {
	if err := authorize(actor); err != nil {
		return nil, err
	}
	f := report.DefaultFilter(s.now())
	var d report.Dashboard
	err := s.cached(ctx, "dashboard", &d, func() error {
		var err error
		if d.Customers, err = s.repo.CountByStatus(ctx, "customers"); err != nil {
			return err
		}
		if d.Orders, err = s.repo.CountByStatus(ctx, "orders"); err != nil {
			return err
		}
		if d.Inquiries, err = s.repo.CountByStatus(ctx, "inquiries"); err != nil {
			return err
		}
		if d.Products, err = s.repo.StockSummary(ctx); err != nil {
			return err
		}
		if d.Revenue, err = s.repo.RevenueSummary(ctx, f); err != nil {
			return err
		}
		if d.Conversion, err = s.repo.Conversion(ctx, f); err != nil {
			return err
		}
		d.GeneratedAt = s.now()
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &d, nil
}

// Sales returns booked sales grouped by month
func (s *ReportService) Sales(ctx context.Context, actor identity.Principal, filter ReportFilter) (*SalesReport, error) {
	if err := authorize(actor); err != nil {
		return nil, err
	}
	f := s.window(filter)
	out := SalesReport{From: f.From, To: f.To}
	err := s.cached(ctx, key("sales", f), &out, func() error {
		var err error
		if out.Months, err = s.repo.SalesByMonth(ctx, f); err != nil {
			return err
		}
		out.Totals, err = s.repo.RevenueSummary(ctx, f)
		return err
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// Inquiries breaks inquiries down by source, business_type, priority or status
func (s *ReportService) Inquiries(ctx context.Context, actor identity.Principal, dimension string, filter ReportFilter) (*InquiryReport, error) {
	if err := authorize(actor); err != nil {
		return nil, err
	}
	switch dimension {
	case "source", "business_type", "priority", "status":
	default:
		return nil, shared.NewValidationError("dimension", "INVALID_DIMENSION", "Dimension must be one of source, business_type, priority, status")
	}
	f := s.window(filter)
	out := InquiryReport{Dimension: dimension, From: f.From, To: f.To}
	err := s.cached(ctx, key("inquiries:"+dimension, f), &out, func() error {
		var err error
		if out.Buckets, err = s.repo.InquiriesBy(ctx, dimension, f); err != nil {
			return err
		}
		out.Conversion, err = s.repo.Conversion(ctx, f)
		return err
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// Conversion returns the inquiry to customer conversion rate
func (s *ReportService) Conversion(ctx context.Context, actor identity.Principal, filter ReportFilter) (*report.ConversionStats, error) {
	if err := authorize(actor); err != nil {
		return nil, err
	}
	f := s.window(filter)
	var out report.ConversionStats
	err := s.cached(ctx, key("conversion", f), &out, func() error {
		var err error
		out, err = s.repo.Conversion(ctx, f)
		return err
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// TopProducts ranks products by units on booked orders
func (s *ReportService) TopProducts(ctx context.Context, actor identity.Principal, filter ReportFilter) ([]report.ProductRanking, error) {
	if err := authorize(actor); err != nil {
		return nil, err
	}
	f := s.window(filter)
	var out []report.ProductRanking
	err := s.cached(ctx, key("top-products", f), &out, func() error {
		var err error
		out, err = s.repo.TopProducts(ctx, f)
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// LowStock lists active products at or below their reorder level. It is never cached.
func (s *ReportService) LowStock(ctx context.Context, actor identity.Principal) ([]LowStockItem, error) {
	if err := authorize(actor); err != nil {
		return nil, err
	}
	products, err := s.productRepo.FindLowStock(ctx)
	if err != nil {
		return nil, err
	}
	items := make([]LowStockItem, len(products))
	for i := range products {
		p := &products[i]
		items[i] = LowStockItem{
			ProductID:     p.ID.String(),
			Code:          p.Code,
			Name:          p.Name,
			Category:      string(p.Category),
			StockQuantity: p.StockQuantity,
			ReorderLevel:  p.ReorderLevel,
			StockStatus:   string(p.StockStatus()),
			UnitPrice:     p.EffectivePrice(),
		}
	}
	return items, nil
}

// Invalidate drops every cached report
func (s *ReportService) Invalidate(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.DeletePrefix(ctx, CachePrefix); err != nil {
		s.logger.Warn("Failed to invalidate report cache", zap.Error(err))
	}
}

// cached fills dest from the cache or by running compute, then stores the result
func (s *ReportService) cached(ctx context.Context, name string, dest any, compute func() error) error {
	k := CachePrefix + name
	if s.cache != nil && s.ttl > 0 {
		hit, err := cache.GetJSON(ctx, s.cache, k, dest)
		if err != nil {
			s.logger.Warn("Report cache read failed", zap.String("key", k), zap.Error(err))
		}
		if hit {
			return nil
		}
	}
	if err := compute(); err != nil {
		return fmt.Errorf("compute %s report: %w", name, err)
	}
	if s.cache != nil && s.ttl > 0 {
		if err := cache.SetJSON(ctx, s.cache, k, dest, s.ttl); err != nil {
			s.logger.Warn("Report cache write failed", zap.String("key", k), zap.Error(err))
		}
	}
	return nil
}

func (s *ReportService) window(filter ReportFilter) report.Filter {
	var f report.Filter
	if filter.From != nil {
		f.From = filter.From.UTC()
	}
	if filter.To != nil {
		f.To = filter.To.UTC().AddDate(0, 0, 1)
	}
	f.TopN = filter.TopN
	return f.Normalize(s.now())
}

func key(name string, f report.Filter) string {
	return fmt.Sprintf("%s:%s:%s:%d", name, f.From.Format("20060102"), f.To.Format("2006010215"), f.TopN)
}

func authorize(actor identity.Principal) error {
	return identity.Authorize(actor, identity.ResourceReports, identity.ActionRead, nil)
}
