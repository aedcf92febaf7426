package main

import (
	"context"
	"log"

	"github.com/gin-gonic/gin"
	"github.com/jkorir/sellpoint-api/internal/application/service"
	"github.com/jkorir/sellpoint-api/internal/cache"
	"github.com/jkorir/sellpoint-api/internal/config"
	"github.com/jkorir/sellpoint-api/internal/domain/entity"
	"github.com/jkorir/sellpoint-api/internal/infrastructure/database"
	"github.com/jkorir/sellpoint-api/internal/infrastructure/repository"
	"github.com/jkorir/sellpoint-api/internal/presentation/http/handler"
	"github.com/jkorir/sellpoint-api/internal/presentation/http/routes"
	"github.com/jkorir/sellpoint-api/pkg/printer"
	"github.com/jkorir/sellpoint-api/pkg/utils"
)

func main() {
	// Load configuration
	cfg := config.Load()

	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	// Connect to database
	db, err := database.NewPostgresDB(&cfg.Database)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	if err := database.AutoMigrate(db); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}
	if err := database.SeedDefaultData(db); err != nil {
		log.Printf("Warning: Failed to seed default data: %v", err)
	}

	// Initialize JWT manager
	jwtManager := utils.NewJWTManager(cfg.JWT.Secret, cfg.JWT.ExpiryHours)

	// Initialize repositories
	userRepo := repository.NewUserRepository(db)
	productRepo := repository.NewProductRepository(db)
	customerRepo := repository.NewCustomerRepository(db)
	saleRepo := repository.NewSaleRepository(db)

	// Initialize sale-list cache (Redis or no-op)
	var saleListCache cache.SaleListCache = cache.NoopSaleListCache{}
	if cfg.Redis.Enabled {
		redisCache := cache.NewRedisSaleListCache(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err := redisCache.Ping(context.Background()); err != nil {
			log.Printf("Warning: Redis unreachable, sale list caching disabled: %v", err)
		} else {
			saleListCache = redisCache
			defer redisCache.Close()
		}
	}

	// Initialize services
	authService := service.NewAuthService(userRepo, jwtManager)
	productService := service.NewProductService(productRepo)
	customerService := service.NewCustomerService(customerRepo)
	saleService := service.NewSaleService(saleRepo, customerRepo, productRepo, saleListCache)

	gateway := service.NewSaleGateway(saleRepo, productRepo, customerRepo)
	gateway.RegisterCommitHook(func(ctx context.Context, _ *entity.Sale) {
		if err := saleListCache.Invalidate(ctx); err != nil {
			log.Printf("Warning: sale list cache invalidation failed: %v", err)
		}
	})

	checkoutService := service.NewCheckoutService(
		productRepo,
		customerRepo,
		gateway,
		cfg.Sales.TaxRateBps,
		cfg.Sales.SessionTTL,
	)
	checkoutService.StartJanitor(context.Background())

	// Initialize receipt printer
	device, err := printer.NewPrinterFromConfig(cfg.Printer.Type, cfg.Printer.USBPath, cfg.Printer.Address)
	if err != nil {
		log.Printf("Warning: Failed to initialize printer: %v", err)
		device = printer.NewNullPrinter()
	}
	receiptService := service.NewReceiptService(
		checkoutService,
		device,
		entity.ReceiptHeader{
			StoreName: cfg.Business.StoreName,
			Address:   cfg.Business.Address,
			Phone:     cfg.Business.Phone,
			TaxPIN:    cfg.Business.TaxPIN,
		},
		cfg.Sales.Currency,
		entity.ReceiptLayout(cfg.Printer.Layout),
	)

	// Initialize handlers and routes
	handlers := &routes.Handlers{
		Auth:     handler.NewAuthHandler(authService),
		Product:  handler.NewProductHandler(productService),
		Customer: handler.NewCustomerHandler(customerService),
		Checkout: handler.NewCheckoutHandler(checkoutService, receiptService),
		Sale:     handler.NewSaleHandler(saleService, receiptService),
		Printer:  handler.NewPrinterHandler(receiptService),
	}
	router := routes.Setup(handlers, &routes.Deps{
		JWTManager: jwtManager,
		Cfg:        cfg,
	})

	addr := ":" + cfg.App.Port
	log.Printf("Starting %s on %s", cfg.App.Name, addr)
	if err := router.Run(addr); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
