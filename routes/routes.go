package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yashrajoria/shoptube-backend/controllers"
	"github.com/yashrajoria/shoptube-backend/middleware"
	"github.com/yashrajoria/shoptube-backend/models"
)

const ServiceName = "shoptube-backend"

// Controllers bundles every handler set registered on the engine.
type Controllers struct {
	Auth          *controllers.AuthController
	Catalog       *controllers.CatalogController
	Cart          *controllers.CartController
	Subscriptions *controllers.SubscriptionController
	Checkout      *controllers.CheckoutController
	Orders        *controllers.OrderController
	Seller        *controllers.SellerController
	Admin         *controllers.AdminController
	Notifications *controllers.NotificationController
}

// RegisterRoutes wires every endpoint. authLimiter guards the credential
// endpoints; pass nil to disable it.
func RegisterRoutes(r *gin.Engine, c Controllers, authn middleware.Authenticator, authLimiter gin.HandlerFunc) {
	r.GET("/health", func(ctx *gin.Context) {
		ctx.JSON(http.StatusOK, gin.H{"status": "healthy", "service": ServiceName})
	})

	requireAuth := middleware.AuthMiddleware(authn)
	optionalAuth := middleware.OptionalAuth(authn)

	api := r.Group("/api")

	// Auth
	authGroup := api.Group("/auth")
	if authLimiter != nil {
		authGroup.Use(authLimiter)
	}
	authGroup.POST("/signup", c.Auth.Signup)
	authGroup.POST("/login", c.Auth.Login)
	authGroup.POST("/logout", c.Auth.Logout)
	api.GET("/session", optionalAuth, c.Auth.Session)

	account := api.Group("/account", requireAuth)
	account.GET("/profile", c.Auth.Profile)
	account.PUT("/profile", c.Auth.UpdateProfile)
	account.PUT("/password", c.Auth.ChangePassword)

	// Public catalog
	api.GET("/marketplace", c.Catalog.Marketplace)
	api.GET("/products", c.Catalog.ListProducts)
	api.GET("/products/batch", c.Catalog.GetProductsByIDs)
	api.GET("/products/:id", c.Catalog.GetProduct)
	api.GET("/shops/:id", c.Catalog.GetShop)

	// Payment return flow and gateway callbacks are unauthenticated.
	api.GET("/chapa/verify/:tx_ref", c.Checkout.Verify)
	api.GET("/chapa/callback/:tx_ref", c.Checkout.Callback)
	api.POST("/chapa/callback/:tx_ref", c.Checkout.Callback)
	api.POST("/stripe/webhook", c.Checkout.StripeWebhook)

	api.GET("/orders/:id", optionalAuth, c.Orders.GetOrder)

	customer := api.Group("", requireAuth, middleware.RequireRole(models.RoleCustomer))
	customer.POST("/chapa", c.Checkout.Initiate)
	customer.POST("/checkout", c.Checkout.Initiate)

	customer.GET("/cart", c.Cart.GetCart)
	customer.POST("/cart", c.Cart.AddToCart)
	customer.DELETE("/cart", c.Cart.ClearCart)
	customer.PUT("/cart/:id", c.Cart.UpdateItem)
	customer.DELETE("/cart/:id", c.Cart.RemoveItem)

	customer.GET("/wishlist", c.Cart.GetWishlist)
	customer.POST("/wishlist", c.Cart.AddToWishlist)
	customer.DELETE("/wishlist/:id", c.Cart.RemoveFromWishlist)

	customer.POST("/subscriptions/:sellerId", c.Subscriptions.Subscribe)
	customer.DELETE("/subscriptions/:sellerId", c.Subscriptions.Unsubscribe)
	customer.GET("/subscriptions/:sellerId/status", c.Subscriptions.Status)

	customer.GET("/customer/dashboard", c.Orders.CustomerDashboard)
	customer.GET("/customer/orders", c.Orders.ListCustomerOrders)
	customer.GET("/customer/subscriptions", c.Subscriptions.List)

	seller := api.Group("/seller", requireAuth, middleware.RequireRole(models.RoleSeller))
	seller.GET("/dashboard", c.Seller.Dashboard)
	seller.GET("/orders", c.Seller.Orders)
	seller.GET("/products", c.Seller.Products)
	seller.POST("/products", c.Seller.CreateProduct)
	seller.POST("/products/image-upload", c.Seller.PresignImage)
	seller.GET("/subscribers", c.Seller.Subscribers)
	seller.GET("/profile", c.Seller.Profile)
	seller.PUT("/profile", c.Seller.UpdateProfile)

	admin := api.Group("/admin", requireAuth, middleware.RequireRole(models.RoleAdmin))
	admin.GET("/dashboard", c.Admin.Dashboard)
	admin.GET("/sellers/pending", c.Admin.PendingSellers)
	admin.POST("/sellers/:profileId/approve", c.Admin.ApproveSeller)
	admin.GET("/customers", c.Admin.Customers)
	admin.GET("/users/recent", c.Admin.RecentUsers)
	admin.GET("/products/recent", c.Admin.RecentProducts)
	admin.GET("/orders/recent", c.Admin.RecentOrders)
	admin.GET("/analytics", c.Admin.Analytics)

	notifications := api.Group("/notifications", requireAuth)
	notifications.GET("", c.Notifications.List)
	notifications.GET("/unread-count", c.Notifications.UnreadCount)
	notifications.PUT("/read-all", c.Notifications.MarkAllRead)
	notifications.PUT("/:id/read", c.Notifications.MarkRead)
}
