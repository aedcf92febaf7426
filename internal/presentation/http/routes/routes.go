package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/jkorir/sellpoint-api/internal/config"
	"github.com/jkorir/sellpoint-api/internal/presentation/http/handler"
	"github.com/jkorir/sellpoint-api/internal/presentation/http/middleware"
	"github.com/jkorir/sellpoint-api/pkg/utils"
)

// Handlers holds all the HTTP handlers used for route registration.
type Handlers struct {
	Auth     *handler.AuthHandler
	Product  *handler.ProductHandler
	Customer *handler.CustomerHandler
	Checkout *handler.CheckoutHandler
	Sale     *handler.SaleHandler
	Printer  *handler.PrinterHandler
}

// Deps holds shared dependencies needed by the routes.
type Deps struct {
	JWTManager *utils.JWTManager
	Cfg        *config.Config
}

// Setup creates the Gin router and registers all routes.
func Setup(h *Handlers, deps *Deps) *gin.Engine {
	router := gin.New()

	router.Use(gin.Recovery())
	router.Use(middleware.LoggerMiddleware())
	router.Use(middleware.CORSMiddleware(&deps.Cfg.CORS))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "ok",
			"service": deps.Cfg.App.Name,
		})
	})

	rateLimiter := middleware.NewUserRateLimiter(middleware.DefaultRateLimiterConfig())

	v1 := router.Group("/api/v1")
	{
		// Public routes
		v1.POST("/auth/login", h.Auth.Login)

		// Authenticated routes
		authed := v1.Group("")
		authed.Use(middleware.AuthMiddleware(deps.JWTManager))
		authed.Use(rateLimiter.Middleware())
		{
			products := authed.Group("/products")
			{
				products.GET("", h.Product.List)
				products.GET("/:id", h.Product.Get)
				products.POST("", middleware.RequireRole("admin"), h.Product.Create)
			}

			customers := authed.Group("/customers")
			{
				customers.GET("", h.Customer.List)
				customers.GET("/:id", h.Customer.Get)
				customers.POST("", h.Customer.Create)
				customers.PATCH("/:id", h.Customer.Update)
			}

			sessions := authed.Group("/checkout/sessions")
			{
				sessions.POST("", h.Checkout.Open)
				sessions.GET("/:id", h.Checkout.Get)
				sessions.DELETE("/:id", h.Checkout.Close)
				sessions.POST("/:id/items", h.Checkout.AddItem)
				sessions.PUT("/:id/items", h.Checkout.UpdateQuantity)
				sessions.DELETE("/:id/items/:productId", h.Checkout.RemoveItem)
				sessions.DELETE("/:id/items", h.Checkout.ClearCart)
				sessions.PUT("/:id/selection", h.Checkout.UpdateSelection)
				sessions.POST("/:id/customer", h.Checkout.AttachCustomer)
				sessions.POST("/:id/proceed", h.Checkout.Proceed)
				sessions.POST("/:id/review", h.Checkout.Review)
				sessions.POST("/:id/back", h.Checkout.Back)
				sessions.POST("/:id/confirm", h.Checkout.Confirm)
				sessions.POST("/:id/reset", h.Checkout.Reset)
				sessions.GET("/:id/receipt", h.Checkout.Receipt)
				sessions.POST("/:id/receipt/print", h.Checkout.PrintReceipt)
			}

			sales := authed.Group("/sales")
			{
				sales.GET("", h.Sale.List)
				sales.GET("/:id", h.Sale.Get)
				sales.GET("/:id/receipt", h.Sale.Receipt)
				sales.POST("/:id/payments", h.Sale.PayDue)
				sales.POST("/:id/void", middleware.RequireRole("admin"), h.Sale.Void)
			}

			printers := authed.Group("/printer")
			{
				printers.GET("/status", h.Printer.Status)
				printers.POST("/test", h.Printer.TestPrint)
			}
		}
	}

	return router
}
