// internal/router/router.go
package router

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
	"gorm.io/gorm"

	"github.com/javajoker/toolhatch-backend/internal/config"
	"github.com/javajoker/toolhatch-backend/internal/events"
	"github.com/javajoker/toolhatch-backend/internal/handlers"
	"github.com/javajoker/toolhatch-backend/internal/middleware"
	"github.com/javajoker/toolhatch-backend/internal/reviews"
	"github.com/javajoker/toolhatch-backend/internal/services"
)

const version = "1.0.0"

// Dependencies are the external collaborators the HTTP surface is built on.
// Indexer may be nil when no search cluster is configured.
type Dependencies struct {
	DB        *gorm.DB
	Config    *config.Config
	Logger    *logrus.Logger
	Publisher events.Publisher
	Indexer   services.ProductIndexer
	Gateway   services.PaymentGateway
	Notifier  services.PaymentNotifier
	Linker    services.DownloadLinker
	Reviews   *reviews.Pool
}

type App struct {
	Engine   *gin.Engine
	Products *services.ProductService

	callbacks   *services.CallbackQueue
	limiter     *middleware.RateLimiter
	authLimiter *middleware.RateLimiter
	stop        chan struct{}
	closeOnce   sync.Once
}

func Initialize(deps Dependencies) *App {
	cfg := deps.Config
	if deps.Logger == nil {
		deps.Logger = logrus.StandardLogger()
	}
	if deps.Reviews == nil {
		deps.Reviews = reviews.NewPool(nil)
	}

	// Initialize services
	userService := services.NewUserService(deps.DB)
	authService := services.NewAuthService(deps.DB, cfg)
	productService := services.NewProductService(deps.DB, deps.Indexer)
	cartService := services.NewCartService(deps.DB)
	orderService := services.NewOrderService(deps.DB, deps.Publisher, cfg.Kafka.OrderTopic)
	paymentService := services.NewPaymentService(deps.DB, orderService, deps.Gateway, deps.Notifier, cfg.Payment)
	reviewService := services.NewReviewService(deps.DB, deps.Reviews)
	downloadService := services.NewDownloadService(deps.DB, orderService, deps.Linker)
	adminService := services.NewAdminService(deps.DB)

	callbacks := services.NewCallbackQueue(cfg.Payment.CallbackQueueSize, cfg.Payment.CallbackWorkers, paymentService.ApplyCallback)

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(authService, userService)
	userHandler := handlers.NewUserHandler(userService)
	productHandler := handlers.NewProductHandler(productService)
	cartHandler := handlers.NewCartHandler(cartService)
	orderHandler := handlers.NewOrderHandler(orderService, downloadService)
	paymentHandler := handlers.NewPaymentHandler(paymentService, callbacks)
	reviewHandler := handlers.NewReviewHandler(reviewService)
	adminHandler := handlers.NewAdminHandler(adminService)

	app := &App{
		Products:    productService,
		callbacks:   callbacks,
		limiter:     middleware.NewRateLimiter(rate.Every(100*time.Millisecond), 20),
		authLimiter: middleware.NewRateLimiter(rate.Every(12*time.Second), 5),
		stop:        make(chan struct{}),
	}

	r := gin.New()

	// Global middleware
	r.Use(gin.Recovery())
	r.Use(middleware.RequestLogger(deps.Logger))
	r.Use(middleware.CORS(cfg.Frontend.BaseURL))
	r.Use(app.limiter.Middleware())

	r.GET("/", func(c *gin.Context) {
		c.String(http.StatusOK, "ToolHatch API is running!")
	})
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"version": version,
		})
	})

	api := r.Group("/api")
	{
		// Accounts
		api.POST("/create-user", app.authLimiter.Middleware(), userHandler.CreateUser)
		api.POST("/login", app.authLimiter.Middleware(), authHandler.Login)
		api.GET("/me", middleware.AuthRequired(), authHandler.Me)
		api.POST("/log-developer", userHandler.LogDeveloper)

		// Catalog
		api.GET("/categories", productHandler.GetCategories)
		api.GET("/products", productHandler.GetProducts)
		api.GET("/products/:id", productHandler.GetProduct)
		api.GET("/products/category/:id", productHandler.GetProductsByCategory)
		api.GET("/search", productHandler.SearchProducts)

		// Cart
		api.GET("/cart/:userId", cartHandler.GetCart)
		api.POST("/add-to-cart", cartHandler.AddToCart)
		api.DELETE("/cart/:userId/:productId", cartHandler.RemoveFromCart)

		// Orders
		api.POST("/create-order", orderHandler.CreateOrder)
		api.GET("/order-status/:id", orderHandler.GetOrderStatus)
		api.GET("/orders/:id", orderHandler.GetOrder)
		api.GET("/orders/:id/downloads", orderHandler.GetDownloads)

		// Payments
		api.POST("/create-payment", paymentHandler.CreatePayment)
		api.POST("/check-payment-status/:orderId", paymentHandler.CheckPaymentStatus)
		api.POST("/payment-callback", paymentHandler.PaymentCallback)

		// Reviews
		api.POST("/reviews", reviewHandler.CreateReview)
		api.GET("/reviews/product/:productId", reviewHandler.GetProductReviews)
		api.GET("/reviews/product/:productId/sample", reviewHandler.GetSampleReviews)

		admin := api.Group("/admin")
		admin.Use(middleware.AuthRequired(), middleware.AdminRequired())
		{
			admin.GET("/orders", adminHandler.GetOrders)
			admin.GET("/stats", adminHandler.GetDashboardStats)
			admin.POST("/add-product", productHandler.CreateProduct)
			admin.DELETE("/remove-product/:id", productHandler.RemoveProduct)
		}
	}

	app.Engine = r
	return app
}

// Start launches the callback workers and the limiter eviction loops.
func (a *App) Start() {
	a.callbacks.Start()
	go a.limiter.Run(a.stop)
	go a.authLimiter.Run(a.stop)
}

// Close drains queued payment callbacks. Call it after the HTTP server has
// stopped accepting requests.
func (a *App) Close() {
	a.closeOnce.Do(func() {
		close(a.stop)
		a.callbacks.Close()
	})
}
