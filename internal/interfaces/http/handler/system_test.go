package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockPinger struct {
	mock.Mock
}

func (m *mockPinger) Ping(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

func serveSystem(h *SystemHandler, method, path string) *httptest.ResponseRecorder {
	r := gin.New()
	r.GET("/health", h.Health)
	r.GET("/ready", h.Ready)
	r.GET("/metrics", h.Metrics)
	r.GET("/info", h.GetSystemInfo)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(method, path, nil))
	return w
}

func TestSystemHandler_Ready(t *testing.T) {
	t.Run("all checks pass", func(t *testing.T) {
		db := new(mockPinger)
		db.On("Ping", mock.Anything).Return(nil)
		h := NewSystemHandler("1.2.0", map[string]Pinger{"database": db}, nil)

		w := serveSystem(h, http.MethodGet, "/ready")

		assert.Equal(t, http.StatusOK, w.Code)
		var resp ReadinessResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, "ready", resp.Status)
		assert.Equal(t, "ok", resp.Checks["database"])
		db.AssertExpectations(t)
	})

	t.Run("one check fails", func(t *testing.T) {
		db := new(mockPinger)
		db.On("Ping", mock.Anything).Return(nil)
		redis := new(mockPinger)
		redis.On("Ping", mock.Anything).Return(errors.New("dial tcp: connection refused"))
		h := NewSystemHandler("1.2.0", map[string]Pinger{"database": db, "cache": redis}, nil)

		w := serveSystem(h, http.MethodGet, "/ready")

		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
		var resp ReadinessResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, "not_ready", resp.Status)
		assert.Equal(t, "ok", resp.Checks["database"])
		assert.Contains(t, resp.Checks["cache"], "connection refused")
	})
}

func TestSystemHandler_HealthAndInfo(t *testing.T) {
	h := NewSystemHandler("1.2.0", nil, nil)

	w := serveSystem(h, http.MethodGet, "/health")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"healthy"`)

	w = serveSystem(h, http.MethodGet, "/info")
	require.Equal(t, http.StatusOK, w.Code)
	info := data(t, w)
	assert.Equal(t, "Uniform Back Office API", info["name"])
	assert.Equal(t, "1.2.0", info["version"])
}

func TestSystemHandler_Metrics(t *testing.T) {
	w := serveSystem(NewSystemHandler("dev", nil, nil), http.MethodGet, "/metrics")
	assert.Equal(t, http.StatusNotFound, w.Code)

	exposition := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("backoffice_http_requests_total 3\n"))
	})
	w = serveSystem(NewSystemHandler("dev", nil, exposition), http.MethodGet, "/metrics")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "backoffice_http_requests_total")
}
