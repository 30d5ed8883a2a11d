package middleware

import (
	"context"
	"encoding/json"
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
	"github.com/uniformco/backoffice/internal/interfaces/http/dto"
	"github.com/uniformco/backoffice/internal/testutil"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newTestJWTService() *auth.JWTService {
	return auth.NewJWTService(config.JWTConfig{
		Secret:                 "test-secret-key-at-least-32-chars",
		RefreshSecret:          "test-refresh-secret-key-32-chars",
		AccessTokenExpiration:  15 * time.Minute,
		RefreshTokenExpiration: 7 * 24 * time.Hour,
		Issuer:                 "test-issuer",
		MaxRefreshCount:        10,
	})
}

func protectedRouter(cfg JWTMiddlewareConfig, handler gin.HandlerFunc) *gin.Engine {
	router := gin.New()
	router.Use(RequestID(), JWTAuthMiddlewareWithConfig(cfg))
	router.GET("/test", handler)
	return router
}

func get(router http.Handler, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func errorCode(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var resp dto.Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotNil(t, resp.Error)
	return resp.Error.Code
}

func TestJWTAuthMiddleware_ValidTokenSetsPrincipal(t *testing.T) {
	svc := newTestJWTService()
	staff := testutil.StaffPrincipal(testutil.NewTestUUID("staff"))
	pair, err := svc.GenerateTokenPair(staff)
	require.NoError(t, err)

	var got identity.Principal
	router := protectedRouter(JWTMiddlewareConfig{JWTService: svc}, func(c *gin.Context) {
		got, _ = GetPrincipal(c)
		c.Status(http.StatusOK)
	})

	rec := get(router, pair.AccessToken)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, staff.UserID, got.UserID)
	assert.Equal(t, identity.RoleStaff, got.Role)
	assert.True(t, got.Permissions.Has(identity.ResourceInquiries))
	assert.False(t, got.Permissions.Has(identity.ResourceReports))
}

func TestJWTAuthMiddleware_Rejections(t *testing.T) {
	svc := newTestJWTService()
	pair, err := svc.GenerateTokenPair(testutil.ManagerPrincipal())
	require.NoError(t, err)

	router := protectedRouter(JWTMiddlewareConfig{JWTService: svc}, func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	t.Run("missing header", func(t *testing.T) {
		rec := get(router, "")
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Equal(t, dto.ErrCodeTokenInvalid, errorCode(t, rec))
	})

	t.Run("garbage token", func(t *testing.T) {
		rec := get(router, "not.a.jwt")
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("refresh token used as access token", func(t *testing.T) {
		rec := get(router, pair.RefreshToken)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}

func TestJWTAuthMiddleware_Blacklist(t *testing.T) {
	svc := newTestJWTService()
	p := testutil.ManagerPrincipal()
	pair, err := svc.GenerateTokenPair(p)
	require.NoError(t, err)
	claims, err := svc.ValidateAccessToken(pair.AccessToken)
	require.NoError(t, err)

	t.Run("revoked jti", func(t *testing.T) {
		bl := auth.NewInMemoryTokenBlacklist()
		require.NoError(t, bl.AddToBlacklist(context.Background(), claims.ID, time.Minute))
		router := protectedRouter(JWTMiddlewareConfig{JWTService: svc, TokenBlacklist: bl}, func(c *gin.Context) {
			c.Status(http.StatusOK)
		})

		rec := get(router, pair.AccessToken)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Equal(t, dto.ErrCodeTokenRevoked, errorCode(t, rec))
	})

	t.Run("user invalidated after issue", func(t *testing.T) {
		bl := auth.NewInMemoryTokenBlacklist()
		require.NoError(t, bl.InvalidateUser(context.Background(), p.UserID.String(), time.Hour))
		router := protectedRouter(JWTMiddlewareConfig{JWTService: svc, TokenBlacklist: bl}, func(c *gin.Context) {
			c.Status(http.StatusOK)
		})

		rec := get(router, pair.AccessToken)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}
