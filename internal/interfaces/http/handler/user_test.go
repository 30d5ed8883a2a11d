package handler

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/uniformco/backoffice/internal/domain/identity"
	"github.com/uniformco/backoffice/internal/testutil"
)

func TestUserHandler_CreateAndGrant(t *testing.T) {
	s := newAPIServer(t)
	admin := s.tokenFor(testutil.CreateUser(t, s.db, "root", identity.RoleAdmin))

	w := s.do(http.MethodPost, "/api/v1/users", admin, map[string]any{
		"username": "anna",
		"email":    "anna@uniformco.test",
		"password": "Winter-Coats-42",
		"role":     "staff",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	user := data(t, w)
	assert.ElementsMatch(t, []any{"customers", "products", "orders", "inquiries"}, user["permissions"])
	assert.NotContains(t, w.Body.String(), "Winter-Coats-42")

	w = s.do(http.MethodPut, "/api/v1/users/"+user["id"].(string)+"/permissions", admin, map[string]any{
		"permissions": []string{"customers", "reports"},
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.ElementsMatch(t, []any{"customers", "reports"}, data(t, w)["permissions"])

	w = s.do(http.MethodPost, "/api/v1/users", admin, map[string]any{
		"username": "anna",
		"email":    "anna.second@uniformco.test",
		"password": "Winter-Coats-42",
		"role":     "staff",
	})
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "USERNAME_ALREADY_EXISTS", errCode(t, w))

	w = s.do(http.MethodPost, "/api/v1/users", admin, map[string]any{
		"username":    "ben",
		"password":    "Winter-Coats-42",
		"role":        "staff",
		"permissions": []string{"payroll"},
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestUserHandler_Deactivate(t *testing.T) {
	s := newAPIServer(t)
	root := testutil.CreateUser(t, s.db, "root", identity.RoleAdmin)
	admin := s.tokenFor(root)
	staff := testutil.CreateUser(t, s.db, "anna", identity.RoleStaff)
	staffToken := s.tokenFor(staff)

	w := s.do(http.MethodPost, "/api/v1/users/"+root.ID.String()+"/deactivate", admin, nil)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "CANNOT_DEACTIVATE_SELF", errCode(t, w))

	w = s.do(http.MethodPost, "/api/v1/users/"+staff.ID.String()+"/deactivate", admin, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, false, data(t, w)["is_active"])

	w = s.do(http.MethodGet, "/api/v1/auth/me", staffToken, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = s.do(http.MethodPost, "/api/v1/auth/login", "", map[string]any{
		"username": "anna",
		"password": testutil.TestPassword,
	})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "ACCOUNT_DEACTIVATED", errCode(t, w))
}
