package main

import (
	"context"

	"go.uber.org/zap"

	salesapp "github.com/uniformco/backoffice/internal/application/sales"
	tradeapp "github.com/uniformco/backoffice/internal/application/trade"
	"github.com/uniformco/backoffice/internal/domain/catalog"
	"github.com/uniformco/backoffice/internal/infrastructure/config"
	"github.com/uniformco/backoffice/internal/infrastructure/scheduler"
	"github.com/uniformco/backoffice/internal/infrastructure/telemetry"
)

// Job names, also used by the manual-run endpoint
const (
	jobFollowUpReminders    = "follow-up-reminders"
	jobOverduePayments      = "overdue-payments"
	jobReconcileConversions = "reconcile-conversions"
	jobLowStock             = "low-stock"
)

type jobDeps struct {
	inquiries *salesapp.InquiryService
	orders    *tradeapp.OrderService
	products  catalog.ProductRepository
	metrics   *telemetry.Metrics
	log       *zap.Logger
}

// registerJobs adds the back-office sweeps. Jobs are registered even when the
// scheduler is disabled so admins can still run them by hand.
func registerJobs(s *scheduler.Scheduler, cfg config.SchedulerConfig, d jobDeps) error {
	jobs := []struct {
		name     string
		schedule string
		fn       scheduler.JobFunc
	}{
		{jobFollowUpReminders, cfg.FollowUpSchedule, func(ctx context.Context) error {
			n, err := d.inquiries.RemindFollowUps(ctx)
			d.log.Info("Follow-up reminders raised", zap.Int("count", n))
			return err
		}},
		{jobOverduePayments, cfg.OverdueSchedule, func(ctx context.Context) error {
			n, err := d.orders.MarkOverduePayments(ctx)
			d.log.Info("Orders marked overdue", zap.Int("count", n))
			return err
		}},
		{jobReconcileConversions, cfg.ReconcileSchedule, func(ctx context.Context) error {
			n, err := d.inquiries.ReconcileConversions(ctx)
			d.log.Info("Converted inquiries reconciled", zap.Int("count", n))
			return err
		}},
		{jobLowStock, cfg.LowStockSchedule, func(ctx context.Context) error {
			low, err := d.products.FindLowStock(ctx)
			if err != nil {
				return err
			}
			d.metrics.SetLowStock(len(low))
			if len(low) > 0 {
				codes := make([]string, len(low))
				for i := range low {
					codes[i] = low[i].Code
				}
				d.log.Warn("Products below reorder level", zap.Strings("codes", codes))
			}
			return nil
		}},
	}

	for _, j := range jobs {
		if err := s.Register(j.name, j.schedule, j.fn); err != nil {
			return err
		}
	}
	return nil
}
