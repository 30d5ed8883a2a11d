// Package telemetry exposes Prometheus metrics for HTTP traffic, notification
// delivery and the business events of the back office.
package telemetry

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/shopspring/decimal"
)

const namespace = "backoffice"

// Notification outcomes
const (
	OutcomeSent    = "sent"
	OutcomeFailed  = "failed"
	OutcomeDropped = "dropped"
)

// Metrics holds every collector on a private registry. A nil *Metrics is
// valid and records nothing.
type Metrics struct {
	registry *prometheus.Registry

	httpRequests *prometheus.CounterVec
	httpDuration *prometheus.HistogramVec

	notifications *prometheus.CounterVec
	queueDepth    prometheus.Gauge

	inquiriesSubmitted *prometheus.CounterVec
	conversions        *prometheus.CounterVec
	ordersCreated      prometheus.Counter
	orderAmount        prometheus.Counter
	stockRejections    prometheus.Counter
	lowStockProducts   prometheus.Gauge
	jobRuns            *prometheus.CounterVec
}

// NewMetrics creates the collectors and registers them with Go runtime and
// process collectors.
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "http", Name: "requests_total",
			Help: "HTTP requests by method, route and status code.",
		}, []string{"method", "route", "status"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace, Subsystem: "http", Name: "request_duration_seconds",
			Help:    "HTTP request latency by method and route.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"}),
		notifications: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "notification", Name: "messages_total",
			Help: "Notification deliveries by event and outcome.",
		}, []string{"event", "outcome"}),
		queueDepth: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace, Subsystem: "notification", Name: "queue_depth",
			Help: "Notifications waiting for a worker.",
		}),
		inquiriesSubmitted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Name: "inquiries_submitted_total",
			Help: "Inquiries received by source.",
		}, []string{"source"}),
		conversions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Name: "inquiry_conversions_total",
			Help: "Inquiry conversions, split by whether a customer was created.",
		}, []string{"new_customer"}),
		ordersCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Name: "orders_created_total",
			Help: "Orders created.",
		}),
		orderAmount: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Name: "order_amount_total",
			Help: "Sum of order totals at creation.",
		}),
		stockRejections: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Name: "stock_reservation_rejections_total",
			Help: "Orders rejected for insufficient stock.",
		}),
		lowStockProducts: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace, Name: "low_stock_products",
			Help: "Active products at or below their minimum stock level.",
		}),
		jobRuns: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "scheduler", Name: "runs_total",
			Help: "Scheduled job runs by job and outcome.",
		}, []string{"job", "outcome"}),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.httpRequests, m.httpDuration,
		m.notifications, m.queueDepth,
		m.inquiriesSubmitted, m.conversions,
		m.ordersCreated, m.orderAmount, m.stockRejections, m.lowStockProducts,
		m.jobRuns,
	)
	return m
}

// Registry returns the underlying registry
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// ObserveHTTP records one finished request. Route is the matched pattern, not the raw path.
func (m *Metrics) ObserveHTTP(method, route string, status int, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.httpDuration.WithLabelValues(method, route).Observe(elapsed.Seconds())
}

// Notification counts a delivery outcome for an event
func (m *Metrics) Notification(event, outcome string) {
	if m == nil {
		return
	}
	m.notifications.WithLabelValues(event, outcome).Inc()
}

// SetQueueDepth reports the notification backlog
func (m *Metrics) SetQueueDepth(n int) {
	if m == nil {
		return
	}
	m.queueDepth.Set(float64(n))
}

// InquirySubmitted counts a new inquiry
func (m *Metrics) InquirySubmitted(source string) {
	if m == nil {
		return
	}
	m.inquiriesSubmitted.WithLabelValues(source).Inc()
}

// InquiryConverted counts a conversion
func (m *Metrics) InquiryConverted(newCustomer bool) {
	if m == nil {
		return
	}
	m.conversions.WithLabelValues(strconv.FormatBool(newCustomer)).Inc()
}

// OrderCreated counts an order and adds its total
func (m *Metrics) OrderCreated(total decimal.Decimal) {
	if m == nil {
		return
	}
	m.ordersCreated.Inc()
	m.orderAmount.Add(total.InexactFloat64())
}

// StockRejected counts an order refused for insufficient stock
func (m *Metrics) StockRejected() {
	if m == nil {
		return
	}
	m.stockRejections.Inc()
}

// SetLowStock reports the number of low-stock products
func (m *Metrics) SetLowStock(n int) {
	if m == nil {
		return
	}
	m.lowStockProducts.Set(float64(n))
}

// JobRun counts a scheduled job execution
func (m *Metrics) JobRun(job string, err error) {
	if m == nil {
		return
	}
	outcome := "success"
	if err != nil {
		outcome = "failure"
	}
	m.jobRuns.WithLabelValues(job, outcome).Inc()
}
