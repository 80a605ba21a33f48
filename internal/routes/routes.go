package routes

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/example/bazaar/internal/config"
	"github.com/example/bazaar/internal/handlers"
	"github.com/example/bazaar/internal/middleware"
	"github.com/example/bazaar/internal/models"
	"github.com/example/bazaar/internal/ratelimit"
	"github.com/example/bazaar/internal/services"
)

// Register wires up all HTTP routes.
func Register(app *fiber.App, db *gorm.DB, cfg *config.Config, limiter ratelimit.Limiter, log *zap.Logger) {
	smsService := services.NewSMSService(cfg.SMSGateway, cfg.SMSToken, cfg.SMSSender, log)
	otpService := services.NewOTPService(db, limiter, smsService, cfg.IsProduction(), log)
	catalogService := services.NewCatalogService(db, services.DefaultCategoryAliases)
	cartService := services.NewCartService(db)
	orderService := services.NewOrderService(db, log)
	relationService := services.NewRelationService(db)
	reviewService := services.NewReviewService(db)
	shopService := services.NewShopService(db)

	authHandler := handlers.NewAuthHandler(db, otpService, cfg)
	catalogHandler := handlers.NewCatalogHandler(catalogService, reviewService)
	productHandler := handlers.NewProductHandler(db, shopService)
	cartHandler := handlers.NewCartHandler(cartService)
	orderHandler := handlers.NewOrderHandler(orderService)
	relationHandler := handlers.NewRelationHandler(relationService)
	reviewHandler := handlers.NewReviewHandler(reviewService)
	shopHandler := handlers.NewShopHandler(shopService)
	profileHandler := handlers.NewProfileHandler(db)
	adminHandler := handlers.NewAdminHandler(db, orderService)

	api := app.Group("/api")

	// Auth routes
	auth := api.Group("/auth")
	auth.Post("/otp/request", authHandler.RequestOTP)
	auth.Post("/otp/verify", authHandler.VerifyOTP)
	auth.Post("/admin/login", authHandler.AdminLogin)

	// Public catalog
	products := api.Group("/products")
	products.Get("/", catalogHandler.ListProducts)
	products.Get("/:id", catalogHandler.GetProduct)
	products.Get("/:id/reviews", catalogHandler.ListReviews)

	// Protected routes
	protected := api.Group("", middleware.AuthMiddleware(cfg))

	protected.Get("/profile", profileHandler.GetProfile)
	protected.Put("/profile", profileHandler.UpdateProfile)
	protected.Get("/profile/addresses", profileHandler.ListAddresses)
	protected.Post("/profile/addresses", profileHandler.CreateAddress)
	protected.Put("/profile/addresses/:id/default", profileHandler.SetDefaultAddress)
	protected.Delete("/profile/addresses/:id", profileHandler.DeleteAddress)

	protected.Post("/cart", cartHandler.AddItem)
	protected.Get("/cart", cartHandler.GetCart)
	protected.Put("/cart/:id", cartHandler.UpdateItem)
	protected.Delete("/cart/:id", cartHandler.RemoveItem)
	protected.Delete("/cart", cartHandler.ClearCart)

	protected.Post("/orders", orderHandler.CreateOrder)
	protected.Get("/orders", orderHandler.ListOrders)
	protected.Get("/orders/:id", orderHandler.GetOrder)

	protected.Post("/wishlist/:productId", relationHandler.ToggleWishlist)
	protected.Delete("/wishlist/:productId", relationHandler.RemoveWishlist)
	protected.Get("/wishlist", relationHandler.ListWishlist)
	protected.Post("/bookings/:productId", relationHandler.ToggleBooking)
	protected.Get("/bookings", relationHandler.ListBookings)

	protected.Post("/products/:id/reviews", reviewHandler.AddReview)

	protected.Post("/shops/register", shopHandler.Register)

	// Merchant routes
	merchant := protected.Group("", middleware.RequireRole(models.RoleMerchant, models.RoleAdmin))
	merchant.Get("/shops/me", shopHandler.GetMyShop)
	merchant.Post("/merchant/products", productHandler.CreateProduct)
	merchant.Get("/merchant/products", productHandler.ListMyProducts)
	merchant.Put("/merchant/products/:id", productHandler.UpdateProduct)
	merchant.Delete("/merchant/products/:id", productHandler.DeleteProduct)
	merchant.Put("/orders/:id/status", orderHandler.UpdateStatus)

	// Admin routes
	admin := protected.Group("/admin", middleware.RequireRole(models.RoleAdmin))
	admin.Get("/users", adminHandler.ListUsers)
	admin.Put("/users/:id/role", adminHandler.UpdateUserRole)
	admin.Post("/orders/reconcile", adminHandler.ReconcileOrders)
}
