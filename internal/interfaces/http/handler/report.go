package handler

import (
	"context"
	"errors"
	"net/http"
	"slices"
	"time"

	"github.com/gin-gonic/gin"

	reportapp "github.com/uniformco/backoffice/internal/application/report"
	"github.com/uniformco/backoffice/internal/infrastructure/scheduler"
	"github.com/uniformco/backoffice/internal/interfaces/http/dto"
)

// JobRunner exposes the background sweeps for manual runs
type JobRunner interface {
	Jobs() []string
	Next(name string) time.Time
	RunNow(ctx context.Context, name string) error
}

// ReportHandler handles report-related API endpoints
type ReportHandler struct {
	BaseHandler
	reportService *reportapp.ReportService
	jobs          JobRunner
}

// NewReportHandler creates a new ReportHandler
func NewReportHandler(reportService *reportapp.ReportService) *ReportHandler {
	return &ReportHandler{
		reportService: reportService,
	}
}

// SetJobRunner sets the scheduler used for job status and manual runs
func (h *ReportHandler) SetJobRunner(jobs JobRunner) {
	h.jobs = jobs
}

// JobStatus describes one scheduled job
type JobStatus struct {
	Name    string     `json:"name"`
	NextRun *time.Time `json:"next_run,omitempty"`
}

// Dashboard godoc
// @Summary      Headline figures for the dashboard
// @Tags         reports
// @Security     BearerAuth
// @Router       /reports/dashboard [get]
func (h *ReportHandler) Dashboard(c *gin.Context) {
	p, ok := h.principal(c)
	if !ok {
		return
	}

	dashboard, err := h.reportService.Dashboard(c.Request.Context(), p)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, dashboard)
}

// Sales godoc
// @Summary      Sales trend and breakdowns
// @Tags         reports
// @Security     BearerAuth
// @Param        from   query  string  false  "YYYY-MM-DD"
// @Param        to     query  string  false  "YYYY-MM-DD"
// @Router       /reports/sales [get]
func (h *ReportHandler) Sales(c *gin.Context) {
	p, ok := h.principal(c)
	if !ok {
		return
	}

	var filter reportapp.ReportFilter
	if !h.bindQuery(c, &filter) {
		return
	}

	sales, err := h.reportService.Sales(c.Request.Context(), p, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, sales)
}

// Inquiries godoc
// @Summary      Inquiry counts grouped by one dimension
// @Tags         reports
// @Security     BearerAuth
// @Param        dimension  path  string  true  "source, status, business_type or priority"
// @Router       /reports/inquiries/{dimension} [get]
func (h *ReportHandler) Inquiries(c *gin.Context) {
	p, ok := h.principal(c)
	if !ok {
		return
	}

	var filter reportapp.ReportFilter
	if !h.bindQuery(c, &filter) {
		return
	}

	report, err := h.reportService.Inquiries(c.Request.Context(), p, c.Param("dimension"), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, report)
}

// Conversion godoc
// @Summary      Inquiry to customer conversion rate
// @Tags         reports
// @Security     BearerAuth
// @Router       /reports/conversion [get]
func (h *ReportHandler) Conversion(c *gin.Context) {
	p, ok := h.principal(c)
	if !ok {
		return
	}

	var filter reportapp.ReportFilter
	if !h.bindQuery(c, &filter) {
		return
	}

	stats, err := h.reportService.Conversion(c.Request.Context(), p, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, stats)
}

// TopProducts godoc
// @Summary      Best selling products
// @Tags         reports
// @Security     BearerAuth
// @Router       /reports/top-products [get]
func (h *ReportHandler) TopProducts(c *gin.Context) {
	p, ok := h.principal(c)
	if !ok {
		return
	}

	var filter reportapp.ReportFilter
	if !h.bindQuery(c, &filter) {
		return
	}

	ranking, err := h.reportService.TopProducts(c.Request.Context(), p, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, ranking)
}

// LowStock godoc
// @Summary      Low stock report
// @Tags         reports
// @Security     BearerAuth
// @Router       /reports/low-stock [get]
func (h *ReportHandler) LowStock(c *gin.Context) {
	p, ok := h.principal(c)
	if !ok {
		return
	}

	items, err := h.reportService.LowStock(c.Request.Context(), p)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, items)
}

// Refresh godoc
// @Summary      Drop every cached report
// @Tags         reports
// @Security     BearerAuth
// @Router       /reports/refresh [post]
func (h *ReportHandler) Refresh(c *gin.Context) {
	h.reportService.Invalidate(c.Request.Context())
	h.Success(c, MessageResponse{Message: "Report cache cleared"})
}

// Jobs godoc
// @Summary      List scheduled jobs
// @Tags         reports
// @Security     BearerAuth
// @Router       /reports/jobs [get]
func (h *ReportHandler) Jobs(c *gin.Context) {
	if h.jobs == nil {
		h.Success(c, []JobStatus{})
		return
	}

	names := h.jobs.Jobs()
	slices.Sort(names)
	statuses := make([]JobStatus, 0, len(names))
	for _, name := range names {
		s := JobStatus{Name: name}
		if next := h.jobs.Next(name); !next.IsZero() {
			s.NextRun = &next
		}
		statuses = append(statuses, s)
	}

	h.Success(c, statuses)
}

// RunJob godoc
// @Summary      Run a scheduled job immediately
// @Tags         reports
// @Security     BearerAuth
// @Router       /reports/jobs/{name}/run [post]
func (h *ReportHandler) RunJob(c *gin.Context) {
	if h.jobs == nil {
		h.Error(c, http.StatusServiceUnavailable, dto.ErrCodeDependency, "Scheduler is not running")
		return
	}

	name := c.Param("name")
	if err := h.jobs.RunNow(c.Request.Context(), name); err != nil {
		if errors.Is(err, scheduler.ErrJobNotFound) {
			h.Error(c, http.StatusNotFound, dto.ErrCodeNotFound, "Job not found: "+name)
			return
		}
		h.HandleError(c, err)
		return
	}

	h.Success(c, MessageResponse{Message: "Job " + name + " completed"})
}
