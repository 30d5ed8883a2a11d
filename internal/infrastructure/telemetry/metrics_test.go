package telemetry

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics_Counters(t *testing.T) {
	m := NewMetrics()

	m.ObserveHTTP(http.MethodGet, "/api/v1/orders", http.StatusOK, 20*time.Millisecond)
	m.ObserveHTTP(http.MethodGet, "/api/v1/orders", http.StatusOK, 30*time.Millisecond)
	m.Notification("inquiry.submitted", OutcomeSent)
	m.Notification("inquiry.submitted", OutcomeDropped)
	m.InquirySubmitted("website")
	m.InquiryConverted(true)
	m.OrderCreated(decimal.NewFromFloat(955.5))
	m.StockRejected()
	m.SetLowStock(4)
	m.JobRun("follow_up_reminders", nil)
	m.JobRun("follow_up_reminders", errors.New("db down"))

	assert.Equal(t, 2.0, testutil.ToFloat64(m.httpRequests.WithLabelValues("GET", "/api/v1/orders", "200")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.notifications.WithLabelValues("inquiry.submitted", OutcomeDropped)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.conversions.WithLabelValues("true")))
	assert.Equal(t, 955.5, testutil.ToFloat64(m.orderAmount))
	assert.Equal(t, 4.0, testutil.ToFloat64(m.lowStockProducts))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.jobRuns.WithLabelValues("follow_up_reminders", "failure")))
}

func TestMetrics_NilIsNoop(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.ObserveHTTP("GET", "/", 200, time.Millisecond)
		m.Notification("x", OutcomeSent)
		m.OrderCreated(decimal.NewFromInt(1))
		m.JobRun("x", nil)
	})
}

func TestMetrics_Handler(t *testing.T) {
	m := NewMetrics()
	m.InquirySubmitted("referral")

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `backoffice_inquiries_submitted_total{source="referral"} 1`)
	assert.Contains(t, rec.Body.String(), "go_goroutines")
}
