// internal/interfaces/http/routes/routes.go
package routes

import (
	"time"

	"github.com/gin-gonic/gin"
	goredis "github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/your-org/storefront-api/internal/config"
	"github.com/your-org/storefront-api/internal/domain/cart"
	"github.com/your-org/storefront-api/internal/domain/order"
	"github.com/your-org/storefront-api/internal/domain/payment"
	"github.com/your-org/storefront-api/internal/domain/product"
	"github.com/your-org/storefront-api/internal/domain/user"
	"github.com/your-org/storefront-api/internal/interfaces/http/handlers"
	"github.com/your-org/storefront-api/internal/interfaces/http/middleware"
	"github.com/your-org/storefront-api/internal/pkg/auth"
	"github.com/your-org/storefront-api/internal/pkg/gateway"
)

const mirrorTTL = 24 * time.Hour

// SetupRoutes wires the service graph and registers all API routes
func SetupRoutes(rg *gin.RouterGroup, db *gorm.DB, redisClient *goredis.Client, cfg *config.Config) {
	logger := newLogger(cfg)

	// Catalog, with the sample fallback source when enabled.
	var fallback product.Source
	if cfg.Catalog.EnableSampleFallback {
		fallback = product.NewSampleCatalog()
	}
	productService := product.NewService(db, fallback, logger)

	// Cart: authoritative store wrapped by the Redis-backed mirror.
	cartService := cart.NewService(cart.NewGormRepository(db), productService)
	mirror := cart.NewMirrorStore(redisClient, mirrorTTL)
	carts := cart.NewFallbackService(cartService, mirror, logger)

	// Orders and payment reconciliation. Checkout reads the cart
	// through the same facade the cart endpoints use.
	orderRepo := order.NewGormRepository(db)
	orderService := order.NewService(orderRepo, carts, gateway.NewClient(cfg), cfg.App.Currency, logger)
	paymentService := payment.NewService(orderRepo, cfg.Gateway.KeySecret, logger)

	userService := user.NewService(db, cfg)

	setupAuthRoutes(rg, cfg, handlers.NewAuthHandler(userService))
	setupProductRoutes(rg, cfg, handlers.NewProductHandler(productService))
	setupCartRoutes(rg, cfg, handlers.NewCartHandler(carts))
	setupOrderRoutes(rg, cfg, handlers.NewOrderHandler(orderService, paymentService))
}

func setupAuthRoutes(rg *gin.RouterGroup, cfg *config.Config, h *handlers.AuthHandler) {
	authGroup := rg.Group("/auth")
	{
		authGroup.POST("/register", h.Register)
		authGroup.POST("/login", h.Login)
		authGroup.POST("/refresh", h.Refresh)

		protected := authGroup.Group("")
		protected.Use(middleware.AuthMiddleware(cfg))
		{
			protected.GET("/profile", h.Profile)
		}
	}
}

func setupProductRoutes(rg *gin.RouterGroup, cfg *config.Config, h *handlers.ProductHandler) {
	products := rg.Group("/products")
	{
		products.GET("", h.List)
		products.GET("/:id", h.Get)

		manage := products.Group("")
		manage.Use(
			middleware.AuthMiddleware(cfg),
			middleware.RequireCapability(auth.Principal.CanManageCatalog),
		)
		{
			manage.POST("", h.Create)
			manage.PUT("/:id", h.Update)
			manage.DELETE("/:id", h.Delete)
		}
	}
}

func setupCartRoutes(rg *gin.RouterGroup, cfg *config.Config, h *handlers.CartHandler) {
	carts := rg.Group("/cart")
	carts.Use(middleware.AuthMiddleware(cfg))
	{
		carts.GET("", h.Get)
		carts.GET("/count", h.Count)
		carts.POST("/add", h.Add)
		carts.PUT("/update/:productId", h.Update)
		carts.DELETE("/remove/:productId", h.Remove)
		carts.DELETE("/clear", h.Clear)
	}
}

func setupOrderRoutes(rg *gin.RouterGroup, cfg *config.Config, h *handlers.OrderHandler) {
	orders := rg.Group("/orders")
	orders.Use(middleware.AuthMiddleware(cfg))
	{
		orders.POST("", h.Create)
		orders.GET("", h.List)
		orders.GET("/all",
			middleware.RequireCapability(auth.Principal.CanViewAllOrders),
			h.ListAll)
		orders.GET("/:id", h.Get)
		orders.POST("/:id/verify-payment", h.VerifyPayment)
		orders.PUT("/:id/status",
			middleware.RequireCapability(auth.Principal.CanManageOrders),
			h.UpdateStatus)
	}
}

// newLogger builds the application logger the services share
func newLogger(cfg *config.Config) *logrus.Logger {
	logger := logrus.New()

	if cfg.Logging.Format == "json" {
		logger.SetFormatter(&logrus.JSONFormatter{TimestampFormat: time.RFC3339})
	} else {
		logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true, TimestampFormat: time.RFC3339})
	}

	level, err := logrus.ParseLevel(cfg.Logging.Level)
	if err != nil {
		level = logrus.InfoLevel
	}
	logger.SetLevel(level)

	return logger
}
