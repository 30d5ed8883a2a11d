package handler

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"

	catalogapp "github.com/uniformco/backoffice/internal/application/catalog"
	identityapp "github.com/uniformco/backoffice/internal/application/identity"
	partnerapp "github.com/uniformco/backoffice/internal/application/partner"
	reportapp "github.com/uniformco/backoffice/internal/application/report"
	salesapp "github.com/uniformco/backoffice/internal/application/sales"
	tradeapp "github.com/uniformco/backoffice/internal/application/trade"
	"github.com/uniformco/backoffice/internal/domain/identity"
	"github.com/uniformco/backoffice/internal/infrastructure/auth"
	"github.com/uniformco/backoffice/internal/infrastructure/cache"
	"github.com/uniformco/backoffice/internal/infrastructure/config"
	"github.com/uniformco/backoffice/internal/infrastructure/imaging"
	"github.com/uniformco/backoffice/internal/infrastructure/persistence"
	"github.com/uniformco/backoffice/internal/infrastructure/storage"
	"github.com/uniformco/backoffice/internal/interfaces/http/middleware"
	"github.com/uniformco/backoffice/internal/testutil"
)

// apiServer runs the handlers over real services backed by in-memory sqlite
type apiServer struct {
	t         *testing.T
	db        *gorm.DB
	engine    *gin.Engine
	jwt       *auth.JWTService
	blacklist *auth.InMemoryTokenBlacklist
	events    *testutil.RecordingPublisher
}

func newAPIServer(t *testing.T) *apiServer {
	t.Helper()
	db := testutil.NewTestDB(t)
	log := zap.NewNop()
	events := testutil.NewRecordingPublisher()
	jwtService := auth.NewJWTService(config.JWTConfig{
		Secret:                 "handler-test-secret-key-32-chars",
		RefreshSecret:          "handler-test-refresh-key-32-char",
		AccessTokenExpiration:  15 * time.Minute,
		RefreshTokenExpiration: time.Hour,
		Issuer:                 "handler-test",
		MaxRefreshCount:        5,
	})
	blacklist := auth.NewInMemoryTokenBlacklist()

	store, err := storage.NewLocalStorage(t.TempDir(), "http://files.test")
	require.NoError(t, err)

	users := persistence.NewGormUserRepository(db)
	customers := persistence.NewGormCustomerRepository(db)
	products := persistence.NewGormProductRepository(db)
	orders := persistence.NewGormOrderRepository(db)
	inquiries := persistence.NewGormInquiryRepository(db)
	tx := persistence.NewGormTransactionManager(db)

	authH := NewAuthHandler(identityapp.NewAuthService(users, jwtService, blacklist, events, log))
	userH := NewUserHandler(identityapp.NewUserService(users, blacklist, time.Hour, events, log))
	customerH := NewCustomerHandler(partnerapp.NewCustomerService(customers, orders, events, log))
	productH := NewProductHandler(
		catalogapp.NewProductService(products, orders, store, events, log),
		catalogapp.NewImageService(products, imaging.NewPipeline(config.ImageConfig{MaxWidth: 200, ThumbnailWidth: 50}), store, log),
	)
	orderH := NewOrderHandler(tradeapp.NewOrderService(orders, products, customers,
		persistence.NewOrderNumberGenerator(db, "ORD"), tx, events, nil, log))
	inquiryH := NewInquiryHandler(salesapp.NewInquiryService(inquiries, customers, orders,
		persistence.NewInquiryNumberGenerator(db, "INQ"), tx, events, nil, log))
	reportH := NewReportHandler(reportapp.NewReportService(
		persistence.NewGormReportRepository(db), products, cache.NewMemoryStore(), time.Minute, log))

	engine := gin.New()
	engine.Use(middleware.RequestID())
	authn := middleware.JWTAuthMiddlewareWithConfig(middleware.JWTMiddlewareConfig{
		JWTService:     jwtService,
		TokenBlacklist: blacklist,
	})

	api := engine.Group("/api/v1")
	api.POST("/public/inquiries", inquiryH.Submit)
	api.POST("/auth/login", authH.Login)
	api.POST("/auth/refresh", authH.RefreshToken)

	secured := api.Group("", authn)
	secured.POST("/auth/logout", authH.Logout)
	secured.GET("/auth/me", authH.GetCurrentUser)
	secured.PUT("/auth/password", authH.ChangePassword)

	secured.POST("/users", userH.Create)
	secured.GET("/users", userH.List)
	secured.PUT("/users/:id/permissions", userH.SetPermissions)
	secured.POST("/users/:id/deactivate", userH.Deactivate)

	secured.POST("/customers", customerH.Create)
	secured.GET("/customers", customerH.List)
	secured.GET("/customers/:id", customerH.GetByID)
	secured.POST("/customers/:id/notes", customerH.AddNote)
	secured.GET("/customers/:id/orders", customerH.Orders)

	secured.POST("/products", productH.Create)
	secured.POST("/products/import", productH.Import)
	secured.GET("/products/:id", productH.GetByID)
	secured.PATCH("/products/:id/stock", productH.UpdateStock)
	secured.POST("/products/:id/images", productH.UploadImage)
	secured.DELETE("/products/:id/images/:image_id", productH.RemoveImage)

	secured.POST("/orders", orderH.Create)
	secured.GET("/orders/:id", orderH.GetByID)
	secured.PATCH("/orders/:id/status", orderH.UpdateStatus)
	secured.POST("/orders/:id/payments", orderH.RecordPayment)

	secured.GET("/inquiries", inquiryH.List)
	secured.GET("/inquiries/:id", inquiryH.GetByID)
	secured.POST("/inquiries/:id/convert", inquiryH.Convert)

	secured.GET("/reports/dashboard", reportH.Dashboard)

	return &apiServer{
		t:         t,
		db:        db,
		engine:    engine,
		jwt:       jwtService,
		blacklist: blacklist,
		events:    events,
	}
}

// tokenFor issues an access token for a stored user
func (s *apiServer) tokenFor(u *identity.User) string {
	s.t.Helper()
	pair, err := s.jwt.GenerateTokenPair(u.Principal())
	require.NoError(s.t, err)
	return pair.AccessToken
}

func (s *apiServer) do(method, path, token string, body any) *httptest.ResponseRecorder {
	s.t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(s.t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return s.send(req, token)
}

func (s *apiServer) send(req *http.Request, token string) *httptest.ResponseRecorder {
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	s.engine.ServeHTTP(w, req)
	return w
}

// data decodes the success payload into a generic map
func data(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	resp := decode(t, w)
	require.True(t, resp.Success, w.Body.String())
	m, ok := resp.Data.(map[string]any)
	require.True(t, ok, "data is not an object: %s", w.Body.String())
	return m
}

func errCode(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	resp := decode(t, w)
	require.NotNil(t, resp.Error, w.Body.String())
	return resp.Error.Code
}
