package handler

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/uniformco/backoffice/internal/domain/identity"
	"github.com/uniformco/backoffice/internal/testutil"
)

func TestCustomerHandler_StaffSeeTheirOwnRecords(t *testing.T) {
	s := newAPIServer(t)
	anna := s.tokenFor(testutil.CreateUser(t, s.db, "anna", identity.RoleStaff))
	ben := s.tokenFor(testutil.CreateUser(t, s.db, "ben", identity.RoleStaff))
	manager := s.tokenFor(testutil.CreateUser(t, s.db, "maria", identity.RoleManager))
	testutil.CreateCustomer(t, s.db, "walkin@shop.test", nil)

	w := s.do(http.MethodPost, "/api/v1/customers", anna, map[string]any{
		"name":          "Hillside Clinic",
		"email":         "Office@Hillside.test",
		"business_type": "hospital",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	created := data(t, w)
	assert.Equal(t, "office@hillside.test", created["email"])
	assert.Equal(t, "prospect", created["status"])
	id := created["id"].(string)

	w = s.do(http.MethodGet, "/api/v1/customers/"+id, ben, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = s.do(http.MethodGet, "/api/v1/customers/"+id, manager, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	listTotal := func(token string) int64 {
		w := s.do(http.MethodGet, "/api/v1/customers", token, nil)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		return decode(t, w).Meta.Total
	}
	assert.Equal(t, int64(2), listTotal(anna))
	assert.Equal(t, int64(1), listTotal(ben))
	assert.Equal(t, int64(2), listTotal(manager))

	w = s.do(http.MethodPost, "/api/v1/customers", ben, map[string]any{
		"name":  "Hillside Clinic",
		"email": "office@hillside.test",
	})
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestCustomerHandler_Notes(t *testing.T) {
	s := newAPIServer(t)
	manager := s.tokenFor(testutil.CreateUser(t, s.db, "maria", identity.RoleManager))
	customer := testutil.CreateCustomer(t, s.db, "bursar@greenfield.test", nil)
	path := "/api/v1/customers/" + customer.ID.String() + "/notes"

	w := s.do(http.MethodPost, path, manager, map[string]any{"content": "Wants navy blazers for autumn"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	notes := data(t, w)["notes"].([]any)
	require.Len(t, notes, 1)

	w = s.do(http.MethodPost, path, manager, map[string]any{"content": ""})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCustomerHandler_OrdersOfUnknownCustomer(t *testing.T) {
	s := newAPIServer(t)
	manager := s.tokenFor(testutil.CreateUser(t, s.db, "maria", identity.RoleManager))

	w := s.do(http.MethodGet, "/api/v1/customers/"+testutil.NewTestUUID("ghost").String()+"/orders", manager, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}
