package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/uniformco/backoffice/internal/domain/shared"
	"github.com/uniformco/backoffice/internal/interfaces/http/dto"
	"github.com/uniformco/backoffice/internal/interfaces/http/middleware"
)

func init() {
	gin.SetMode(gin.TestMode)
	middleware.SetupValidator()
}

func decode(t *testing.T, w *httptest.ResponseRecorder) dto.Response {
	t.Helper()
	var resp dto.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp), w.Body.String())
	return resp
}

func TestBaseHandler_SuccessResponses(t *testing.T) {
	h := &BaseHandler{}

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	h.Success(c, map[string]string{"key": "value"})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, decode(t, w).Success)

	w = httptest.NewRecorder()
	c, _ = gin.CreateTestContext(w)
	h.Created(c, map[string]string{"id": "123"})
	assert.Equal(t, http.StatusCreated, w.Code)

	w = httptest.NewRecorder()
	c, _ = gin.CreateTestContext(w)
	h.successWithMeta(c, []string{"a", "b"}, 45, 2, 20)
	resp := decode(t, w)
	require.NotNil(t, resp.Meta)
	assert.Equal(t, int64(45), resp.Meta.Total)
	assert.Equal(t, 3, resp.Meta.TotalPages)
}

func TestBaseHandler_HandleError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		status   int
		code     string
		message  string
		hasField bool
	}{
		{
			name:     "validation",
			err:      shared.NewValidationError("email", "INVALID_EMAIL", "Email is not valid"),
			status:   http.StatusBadRequest,
			code:     "INVALID_EMAIL",
			message:  "Email is not valid",
			hasField: true,
		},
		{
			name:    "not found",
			err:     shared.NewNotFoundError("NOT_FOUND", "Customer not found"),
			status:  http.StatusNotFound,
			code:    dto.ErrCodeNotFound,
			message: "Customer not found",
		},
		{
			name:    "insufficient stock wrapped",
			err:     fmt.Errorf("reserve: %w", shared.NewConflictError("INSUFFICIENT_STOCK", "Only 3 left")),
			status:  http.StatusConflict,
			code:    dto.ErrCodeInsufficientStock,
			message: "Only 3 left",
		},
		{
			name:    "not owner",
			err:     shared.NewAuthorizationError("NOT_OWNER", "You can only access records assigned to you"),
			status:  http.StatusForbidden,
			code:    "NOT_OWNER",
			message: "You can only access records assigned to you",
		},
		{
			name:    "storage down",
			err:     shared.NewDependencyError("STORAGE_UNAVAILABLE", "Image storage is unavailable"),
			status:  http.StatusBadGateway,
			code:    "STORAGE_UNAVAILABLE",
			message: "Image storage is unavailable",
		},
		{
			name:    "unexpected error hides details",
			err:     errors.New("pq: connection refused on 10.0.0.4"),
			status:  http.StatusInternalServerError,
			code:    dto.ErrCodeInternal,
			message: "An internal error occurred",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := &BaseHandler{}
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
			c.Set("request_id", "req-1")

			h.HandleError(c, tt.err)

			assert.Equal(t, tt.status, w.Code)
			resp := decode(t, w)
			assert.False(t, resp.Success)
			require.NotNil(t, resp.Error)
			assert.Equal(t, tt.code, resp.Error.Code)
			assert.Equal(t, tt.message, resp.Error.Message)
			assert.Equal(t, "req-1", resp.Error.RequestID)
			assert.Equal(t, tt.hasField, resp.Error.Field != "")
			assert.NotContains(t, w.Body.String(), "10.0.0.4")
			assert.Len(t, c.Errors, 1)
		})
	}
}

func TestBaseHandler_PathID(t *testing.T) {
	h := &BaseHandler{}
	engine := gin.New()
	engine.GET("/items/:id", func(c *gin.Context) {
		if id, ok := h.pathID(c, "id"); ok {
			c.String(http.StatusOK, id.String())
		}
	})

	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/items/not-a-uuid", nil))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, dto.ErrCodeInvalidInput, decode(t, w).Error.Code)

	w = httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/items/6ba7b810-9dad-11d1-80b4-00c04fd430c8", nil))
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestBaseHandler_BindJSON(t *testing.T) {
	type body struct {
		Name  string `json:"name" binding:"required"`
		Email string `json:"email" binding:"required,email"`
	}
	h := &BaseHandler{}
	engine := gin.New()
	engine.POST("/", func(c *gin.Context) {
		var b body
		if h.bindJSON(c, &b) {
			c.Status(http.StatusNoContent)
		}
	})

	post := func(payload string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(payload))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		engine.ServeHTTP(w, req)
		return w
	}

	w := post(`{"name":`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, dto.ErrCodeInvalidJSON, decode(t, w).Error.Code)

	w = post(`{"email":"nope"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	resp := decode(t, w)
	assert.Equal(t, dto.ErrCodeValidation, resp.Error.Code)
	assert.Len(t, resp.Error.Details, 2)

	w = post(`{"name":"Acme","email":"buyer@acme.test"}`)
	assert.Equal(t, http.StatusNoContent, w.Code)
}
