package router

import (
	"github.com/gin-gonic/gin"
	"github.com/storefront/backend/internal/interfaces/http/handler"
)

// Handlers are the API handlers mounted by StorefrontRoutes
type Handlers struct {
	Auth         *handler.AuthHandler
	Category     *handler.CategoryHandler
	Subcategory  *handler.SubcategoryHandler
	Product      *handler.ProductHandler
	Order        *handler.OrderHandler
	Notification *handler.NotificationHandler
	Stream       *handler.StreamHub
	System       *handler.SystemHandler
}

// Guards are the per-route middleware. Admin protects writes and the admin
// feed; StreamAdmin also accepts the token as a query parameter. JSONBody and
// UploadBody cap request bodies.
type Guards struct {
	Admin       gin.HandlerFunc
	StreamAdmin gin.HandlerFunc
	JSONBody    gin.HandlerFunc
	UploadBody  gin.HandlerFunc
}

func (g Guards) withDefaults() Guards {
	pass := func(c *gin.Context) { c.Next() }
	if g.JSONBody == nil {
		g.JSONBody = pass
	}
	if g.UploadBody == nil {
		g.UploadBody = pass
	}
	if g.StreamAdmin == nil {
		g.StreamAdmin = g.Admin
	}
	return g
}

// StorefrontRoutes builds the route groups of the public storefront and the admin panel.
// Reads of the catalog and order placement are public; everything else needs an admin token.
func StorefrontRoutes(h Handlers, g Guards) []RouteRegistrar {
	g = g.withDefaults()
	admin, body, upload := g.Admin, g.JSONBody, g.UploadBody

	auth := NewDomainGroup("auth", "/auth").
		POST("/login", body, h.Auth.Login).
		POST("/logout", admin, h.Auth.Logout)

	categories := NewDomainGroup("categories", "/categories").
		GET("", h.Category.List).
		GET("/all", h.Category.All).
		GET("/:id", h.Category.GetByID).
		GET("/:id/subcategories", h.Category.Subcategories).
		POST("", admin, body, h.Category.Create).
		PUT("/:id", admin, body, h.Category.Update).
		DELETE("/:id", admin, h.Category.Delete).
		POST("/:id/image", admin, upload, h.Category.UploadImage)

	subcategories := NewDomainGroup("subcategories", "/subcategories").
		GET("", h.Subcategory.List).
		GET("/all", h.Subcategory.All).
		GET("/:id", h.Subcategory.GetByID).
		GET("/:id/products", h.Subcategory.Products).
		POST("", admin, body, h.Subcategory.Create).
		PUT("/:id", admin, body, h.Subcategory.Update).
		DELETE("/:id", admin, h.Subcategory.Delete).
		POST("/:id/image", admin, upload, h.Subcategory.UploadImage)

	products := NewDomainGroup("products", "/products").
		GET("", h.Product.List).
		GET("/all", h.Product.All).
		GET("/search", h.Product.Search).
		GET("/:id", h.Product.GetByID).
		POST("", admin, body, h.Product.Create).
		PUT("/:id", admin, body, h.Product.Update).
		DELETE("/:id", admin, h.Product.Delete).
		POST("/:id/images", admin, upload, h.Product.UploadImages)

	orders := NewDomainGroup("orders", "/orders").
		POST("", body, h.Order.Create).
		GET("", admin, h.Order.List).
		GET("/:id", admin, h.Order.GetByID).
		PUT("/:id/status", admin, body, h.Order.UpdateStatus).
		PUT("/:id/pay", admin, body, h.Order.MarkPaid).
		PUT("/:id/deliver", admin, h.Order.MarkDelivered).
		DELETE("/:id", admin, h.Order.Delete)

	notifications := NewDomainGroup("notifications", "/notifications").
		GET("/stream", g.StreamAdmin, h.Stream.Stream).
		GET("", admin, h.Notification.List).
		PUT("/read-all", admin, h.Notification.MarkAllRead).
		PUT("/:id/read", admin, h.Notification.MarkRead).
		DELETE("/:id", admin, h.Notification.Delete)

	system := NewDomainGroup("system", "/system").
		GET("/info", h.System.Info)

	return []RouteRegistrar{auth, categories, subcategories, products, orders, notifications, system}
}
