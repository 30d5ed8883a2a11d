package handler

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/uniformco/backoffice/internal/domain/identity"
	"github.com/uniformco/backoffice/internal/interfaces/http/dto"
	"github.com/uniformco/backoffice/internal/testutil"
)

func login(t *testing.T, s *apiServer, username, password string) (access, refresh string) {
	t.Helper()
	w := s.do(http.MethodPost, "/api/v1/auth/login", "", LoginRequest{Username: username, Password: password})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	token := data(t, w)["token"].(map[string]any)
	return token["access_token"].(string), token["refresh_token"].(string)
}

func TestAuthHandler_Login(t *testing.T) {
	s := newAPIServer(t)
	testutil.CreateUser(t, s.db, "maria", identity.RoleManager)

	t.Run("valid credentials", func(t *testing.T) {
		w := s.do(http.MethodPost, "/api/v1/auth/login", "", LoginRequest{Username: "maria", Password: testutil.TestPassword})
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())

		body := data(t, w)
		token := body["token"].(map[string]any)
		assert.NotEmpty(t, token["access_token"])
		assert.NotEmpty(t, token["refresh_token"])
		assert.Equal(t, "Bearer", token["token_type"])
		user := body["user"].(map[string]any)
		assert.Equal(t, "maria", user["username"])
		assert.Equal(t, "manager", user["role"])
	})

	t.Run("wrong password", func(t *testing.T) {
		w := s.do(http.MethodPost, "/api/v1/auth/login", "", LoginRequest{Username: "maria", Password: "Wrong2024x"})
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Equal(t, "INVALID_CREDENTIALS", errCode(t, w))
	})

	t.Run("unknown user looks the same", func(t *testing.T) {
		w := s.do(http.MethodPost, "/api/v1/auth/login", "", LoginRequest{Username: "nobody", Password: testutil.TestPassword})
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Equal(t, "INVALID_CREDENTIALS", errCode(t, w))
	})

	t.Run("missing password", func(t *testing.T) {
		w := s.do(http.MethodPost, "/api/v1/auth/login", "", map[string]string{"username": "maria"})
		assert.Equal(t, http.StatusBadRequest, w.Code)
		resp := decode(t, w)
		assert.Equal(t, dto.ErrCodeValidation, resp.Error.Code)
		assert.Equal(t, "password", resp.Error.Field)
	})
}

func TestAuthHandler_MeAndLogout(t *testing.T) {
	s := newAPIServer(t)
	testutil.CreateUser(t, s.db, "sam", identity.RoleStaff)
	access, refresh := login(t, s, "sam", testutil.TestPassword)

	w := s.do(http.MethodGet, "/api/v1/auth/me", access, nil)
	require.Equal(t, http.StatusOK, w.Code)
	me := data(t, w)
	assert.Equal(t, "sam", me["username"])
	assert.ElementsMatch(t, []any{"customers", "products", "orders", "inquiries"}, me["permissions"])

	w = s.do(http.MethodPost, "/api/v1/auth/logout", access, LogoutRequest{RefreshToken: refresh})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = s.do(http.MethodGet, "/api/v1/auth/me", access, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, dto.ErrCodeTokenRevoked, errCode(t, w))

	w = s.do(http.MethodPost, "/api/v1/auth/refresh", "", RefreshTokenRequest{RefreshToken: refresh})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthHandler_RefreshIsSingleUse(t *testing.T) {
	s := newAPIServer(t)
	testutil.CreateUser(t, s.db, "sam", identity.RoleStaff)
	_, refresh := login(t, s, "sam", testutil.TestPassword)

	w := s.do(http.MethodPost, "/api/v1/auth/refresh", "", RefreshTokenRequest{RefreshToken: refresh})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	token := data(t, w)["token"].(map[string]any)
	assert.NotEqual(t, refresh, token["refresh_token"])

	w = s.do(http.MethodPost, "/api/v1/auth/refresh", "", RefreshTokenRequest{RefreshToken: refresh})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthHandler_ChangePasswordEndsSessions(t *testing.T) {
	s := newAPIServer(t)
	testutil.CreateUser(t, s.db, "sam", identity.RoleStaff)
	access, _ := login(t, s, "sam", testutil.TestPassword)

	w := s.do(http.MethodPut, "/api/v1/auth/password", access, ChangePasswordRequest{
		OldPassword: "not-the-password",
		NewPassword: "Summer2025x",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(http.MethodPut, "/api/v1/auth/password", access, ChangePasswordRequest{
		OldPassword: testutil.TestPassword,
		NewPassword: "Summer2025x",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = s.do(http.MethodGet, "/api/v1/auth/me", access, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	login(t, s, "sam", "Summer2025x")
}
