package router

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/uniformco/backoffice/internal/domain/identity"
	"github.com/uniformco/backoffice/internal/infrastructure/auth"
	"github.com/uniformco/backoffice/internal/infrastructure/config"
	"github.com/uniformco/backoffice/internal/interfaces/http/handler"
	"github.com/uniformco/backoffice/internal/interfaces/http/middleware"
	"github.com/uniformco/backoffice/internal/testutil"
)

func mountedEngine(t *testing.T) (*gin.Engine, *auth.JWTService) {
	t.Helper()
	jwtService := auth.NewJWTService(config.JWTConfig{
		Secret:                 "router-test-secret-key-32-chars!",
		RefreshSecret:          "router-test-refresh-secret-32-ch",
		AccessTokenExpiration:  time.Minute,
		RefreshTokenExpiration: time.Hour,
		Issuer:                 "router-test",
		MaxRefreshCount:        1,
	})

	engine := gin.New()
	engine.Use(middleware.RequestID())
	// Handlers other than System are never reached: every request below is
	// stopped by a guard.
	Mount(engine, Handlers{
		System: handler.NewSystemHandler("test", nil, nil),
	}, Guards{
		Authenticate: middleware.JWTAuthMiddleware(jwtService),
	})
	return engine, jwtService
}

func bearer(t *testing.T, svc *auth.JWTService, p identity.Principal) string {
	t.Helper()
	pair, err := svc.GenerateTokenPair(p)
	require.NoError(t, err)
	return pair.AccessToken
}

func TestMount_RegistersBackOfficeRoutes(t *testing.T) {
	engine, _ := mountedEngine(t)

	registered := map[string]bool{}
	for _, r := range engine.Routes() {
		registered[r.Method+" "+r.Path] = true
	}

	for _, route := range []string{
		"GET /health",
		"GET /ready",
		"GET /metrics",
		"POST /api/v1/public/inquiries",
		"POST /api/v1/auth/login",
		"POST /api/v1/auth/logout",
		"PUT /api/v1/users/:id/permissions",
		"PATCH /api/v1/customers/:id/tags",
		"GET /api/v1/customers/:id/orders",
		"POST /api/v1/products/:id/images",
		"DELETE /api/v1/orders/:id/items/:item_id",
		"POST /api/v1/inquiries/:id/convert",
		"GET /api/v1/inquiries/follow-ups/due",
		"GET /api/v1/reports/inquiries/:dimension",
		"POST /api/v1/reports/jobs/:name/run",
	} {
		assert.True(t, registered[route], "missing route %s", route)
	}
}

func TestMount_Guards(t *testing.T) {
	engine, svc := mountedEngine(t)
	staff := bearer(t, svc, testutil.StaffPrincipal(testutil.NewTestUUID("staff")))
	manager := bearer(t, svc, testutil.ManagerPrincipal())

	tests := []struct {
		name   string
		method string
		path   string
		token  string
		want   int
	}{
		{"no token", http.MethodGet, "/api/v1/customers", "", http.StatusUnauthorized},
		{"staff reports", http.MethodGet, "/api/v1/reports/dashboard", staff, http.StatusForbidden},
		{"staff users", http.MethodGet, "/api/v1/users", staff, http.StatusForbidden},
		{"manager users", http.MethodGet, "/api/v1/users", manager, http.StatusForbidden},
		{"manager report jobs", http.MethodGet, "/api/v1/reports/jobs", manager, http.StatusForbidden},
		{"system info needs auth", http.MethodGet, "/api/v1/system/info", "", http.StatusUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, tt.path, nil)
			if tt.token != "" {
				req.Header.Set("Authorization", "Bearer "+tt.token)
			}
			w := httptest.NewRecorder()
			engine.ServeHTTP(w, req)
			assert.Equal(t, tt.want, w.Code)
		})
	}
}

func TestMount_ProbesArePublic(t *testing.T) {
	engine, svc := mountedEngine(t)

	w := serve(engine, http.MethodGet, "/health")
	assert.Equal(t, http.StatusOK, w.Code)

	w = serve(engine, http.MethodGet, "/ready")
	assert.Equal(t, http.StatusOK, w.Code)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/system/info", nil)
	req.Header.Set("Authorization", "Bearer "+bearer(t, svc, testutil.StaffPrincipal(testutil.NewTestUUID("s"))))
	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Uniform Back Office API")
}
