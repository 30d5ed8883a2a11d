package router

import (
	"github.com/gin-gonic/gin"

	"github.com/uniformco/backoffice/internal/domain/identity"
	"github.com/uniformco/backoffice/internal/interfaces/http/handler"
	"github.com/uniformco/backoffice/internal/interfaces/http/middleware"
)

// Handlers bundles the HTTP handlers mounted by Mount
type Handlers struct {
	Auth     *handler.AuthHandler
	User     *handler.UserHandler
	Customer *handler.CustomerHandler
	Product  *handler.ProductHandler
	Order    *handler.OrderHandler
	Inquiry  *handler.InquiryHandler
	Report   *handler.ReportHandler
	System   *handler.SystemHandler
}

// Guards is the per-route middleware. Authenticate is required; the limits
// are skipped when nil.
type Guards struct {
	Authenticate gin.HandlerFunc
	PublicLimit  gin.HandlerFunc
	AuthLimit    gin.HandlerFunc
	UploadLimit  gin.HandlerFunc
}

func (g Guards) chain(handlers ...gin.HandlerFunc) []gin.HandlerFunc {
	out := make([]gin.HandlerFunc, 0, len(handlers))
	for _, h := range handlers {
		if h != nil {
			out = append(out, h)
		}
	}
	return out
}

// Mount registers the probes at the root and the back-office API under /api/v1
func Mount(engine *gin.Engine, h Handlers, g Guards) {
	engine.GET("/health", h.System.Health)
	engine.GET("/ready", h.System.Ready)
	engine.GET("/metrics", h.System.Metrics)

	r := NewRouter(engine, WithAPIVersion("v1"))
	for _, group := range Groups(h, g) {
		r.Register(group)
	}
	r.Setup()
}

// Groups builds the domain route groups
func Groups(h Handlers, g Guards) []*DomainGroup {
	authed := func(resource identity.Resource) []gin.HandlerFunc {
		return []gin.HandlerFunc{g.Authenticate, middleware.RequireResource(resource)}
	}

	// Website form, no account
	public := NewDomainGroup("public", "/public").Use(g.chain(g.PublicLimit)...)
	public.POST("/inquiries", h.Inquiry.Submit)

	auth := NewDomainGroup("auth", "/auth")
	auth.POST("/login", g.chain(g.AuthLimit, h.Auth.Login)...)
	auth.POST("/refresh", g.chain(g.AuthLimit, h.Auth.RefreshToken)...)
	auth.POST("/logout", g.Authenticate, h.Auth.Logout)
	auth.GET("/me", g.Authenticate, h.Auth.GetCurrentUser)
	auth.PUT("/password", g.Authenticate, h.Auth.ChangePassword)

	users := NewDomainGroup("users", "/users").Use(g.Authenticate, middleware.RequireAdmin())
	users.POST("", h.User.Create)
	users.GET("", h.User.List)
	users.GET("/stats/count", h.User.Count)
	users.GET("/:id", h.User.GetByID)
	users.PUT("/:id", h.User.Update)
	users.DELETE("/:id", h.User.Delete)
	users.PUT("/:id/permissions", h.User.SetPermissions)
	users.POST("/:id/activate", h.User.Activate)
	users.POST("/:id/deactivate", h.User.Deactivate)
	users.POST("/:id/reset-password", h.User.ResetPassword)

	customers := NewDomainGroup("customers", "/customers").Use(authed(identity.ResourceCustomers)...)
	customers.POST("", h.Customer.Create)
	customers.GET("", h.Customer.List)
	customers.GET("/stats/count", h.Customer.CountByStatus)
	customers.GET("/:id", h.Customer.GetByID)
	customers.PUT("/:id", h.Customer.Update)
	customers.DELETE("/:id", h.Customer.Delete)
	customers.POST("/:id/notes", h.Customer.AddNote)
	customers.POST("/:id/communications", h.Customer.AddCommunication)
	customers.PATCH("/:id/status", h.Customer.UpdateStatus)
	customers.PATCH("/:id/assign", h.Customer.Assign)
	customers.PATCH("/:id/tags", h.Customer.UpdateTags)
	customers.GET("/:id/orders", h.Customer.Orders)

	products := NewDomainGroup("products", "/products").Use(authed(identity.ResourceProducts)...)
	products.POST("", h.Product.Create)
	products.GET("", h.Product.List)
	products.GET("/low-stock", h.Product.LowStock)
	products.POST("/import", g.chain(g.UploadLimit, h.Product.Import)...)
	products.GET("/:id", h.Product.GetByID)
	products.PUT("/:id", h.Product.Update)
	products.DELETE("/:id", h.Product.Delete)
	products.PATCH("/:id/stock", h.Product.UpdateStock)
	products.POST("/:id/activate", h.Product.Activate)
	products.POST("/:id/deactivate", h.Product.Deactivate)
	products.POST("/:id/images", g.chain(g.UploadLimit, h.Product.UploadImage)...)
	products.PUT("/:id/images/:image_id/primary", h.Product.SetPrimaryImage)
	products.DELETE("/:id/images/:image_id", h.Product.RemoveImage)

	orders := NewDomainGroup("orders", "/orders").Use(authed(identity.ResourceOrders)...)
	orders.POST("", h.Order.Create)
	orders.GET("", h.Order.List)
	orders.GET("/:id", h.Order.GetByID)
	orders.PUT("/:id", h.Order.Update)
	orders.DELETE("/:id", h.Order.Delete)
	orders.POST("/:id/items", h.Order.AddItem)
	orders.DELETE("/:id/items/:item_id", h.Order.RemoveItem)
	orders.PATCH("/:id/status", h.Order.UpdateStatus)
	orders.POST("/:id/payments", h.Order.RecordPayment)
	orders.POST("/:id/quality-checks", h.Order.RecordQualityCheck)
	orders.POST("/:id/notes", h.Order.AddNote)
	orders.PATCH("/:id/assign", h.Order.Assign)

	inquiries := NewDomainGroup("inquiries", "/inquiries").Use(authed(identity.ResourceInquiries)...)
	inquiries.POST("", h.Inquiry.Create)
	inquiries.GET("", h.Inquiry.List)
	inquiries.GET("/follow-ups/due", h.Inquiry.DueFollowUps)
	inquiries.GET("/:id", h.Inquiry.GetByID)
	inquiries.PUT("/:id", h.Inquiry.Update)
	inquiries.DELETE("/:id", h.Inquiry.Delete)
	inquiries.POST("/:id/notes", h.Inquiry.AddNote)
	inquiries.POST("/:id/communications", h.Inquiry.AddCommunication)
	inquiries.PATCH("/:id/status", h.Inquiry.UpdateStatus)
	inquiries.PATCH("/:id/assign", h.Inquiry.Assign)
	inquiries.PUT("/:id/follow-up", h.Inquiry.ScheduleFollowUp)
	inquiries.POST("/:id/convert", h.Inquiry.Convert)
	inquiries.POST("/:id/orders", h.Inquiry.LinkOrder)

	reports := NewDomainGroup("reports", "/reports").Use(authed(identity.ResourceReports)...)
	reports.GET("/dashboard", h.Report.Dashboard)
	reports.GET("/sales", h.Report.Sales)
	reports.GET("/inquiries/:dimension", h.Report.Inquiries)
	reports.GET("/conversion", h.Report.Conversion)
	reports.GET("/top-products", h.Report.TopProducts)
	reports.GET("/low-stock", h.Report.LowStock)
	admin := reports.Group("report-admin", "").Use(middleware.RequireAdmin())
	admin.POST("/refresh", h.Report.Refresh)
	admin.GET("/jobs", h.Report.Jobs)
	admin.POST("/jobs/:name/run", h.Report.RunJob)

	system := NewDomainGroup("system", "/system").Use(g.Authenticate)
	system.GET("/info", h.System.GetSystemInfo)

	return []*DomainGroup{public, auth, users, customers, products, orders, inquiries, reports, system}
}
