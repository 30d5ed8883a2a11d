package router

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func serve(engine *gin.Engine, method, path string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)
	return w
}

func TestNewRouter(t *testing.T) {
	r := NewRouter(gin.New())
	assert.Equal(t, "v1", r.apiVersion)
	assert.Empty(t, r.registrars)

	r = NewRouter(gin.New(), WithAPIVersion("v2"))
	assert.Equal(t, "v2", r.apiVersion)
}

func TestDomainGroup_RegistersEveryVerb(t *testing.T) {
	engine := gin.New()
	g := NewDomainGroup("orders", "/orders")
	ok := func(c *gin.Context) { c.String(http.StatusOK, c.Request.Method) }
	g.GET("", ok).
		POST("", ok).
		PUT("/:id", ok).
		PATCH("/:id/status", ok).
		DELETE("/:id", ok)

	NewRouter(engine).Register(g).Setup()

	tests := []struct {
		method string
		path   string
	}{
		{http.MethodGet, "/api/v1/orders"},
		{http.MethodPost, "/api/v1/orders"},
		{http.MethodPut, "/api/v1/orders/42"},
		{http.MethodPatch, "/api/v1/orders/42/status"},
		{http.MethodDelete, "/api/v1/orders/42"},
	}
	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			w := serve(engine, tt.method, tt.path)
			assert.Equal(t, http.StatusOK, w.Code)
			assert.Equal(t, tt.method, w.Body.String())
		})
	}
	assert.Equal(t, "orders", g.Name())
	assert.Equal(t, "/orders", g.Prefix())
}

func TestRouter_MiddlewareOrder(t *testing.T) {
	engine := gin.New()
	var trail []string
	mark := func(name string) gin.HandlerFunc {
		return func(c *gin.Context) {
			trail = append(trail, name)
			c.Next()
		}
	}

	catalog := NewDomainGroup("catalog", "/catalog").Use(mark("group"))
	products := catalog.Group("products", "/products").Use(mark("subgroup"))
	products.GET("", func(c *gin.Context) {
		trail = append(trail, "handler")
		c.Status(http.StatusOK)
	})

	NewRouter(engine).Use(mark("api")).Register(catalog).Setup()

	w := serve(engine, http.MethodGet, "/api/v1/catalog/products")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []string{"api", "group", "subgroup", "handler"}, trail)
}

func TestRouter_MultipleGroups(t *testing.T) {
	engine := gin.New()
	customers := NewDomainGroup("customers", "/customers")
	customers.GET("", func(c *gin.Context) { c.String(http.StatusOK, "customers") })
	inquiries := NewDomainGroup("inquiries", "/inquiries")
	inquiries.GET("", func(c *gin.Context) { c.String(http.StatusOK, "inquiries") })

	NewRouter(engine).Register(customers).Register(inquiries).Setup()

	assert.Equal(t, "customers", serve(engine, http.MethodGet, "/api/v1/customers").Body.String())
	assert.Equal(t, "inquiries", serve(engine, http.MethodGet, "/api/v1/inquiries").Body.String())
	assert.Equal(t, http.StatusNotFound, serve(engine, http.MethodGet, "/api/v1/suppliers").Code)
}
