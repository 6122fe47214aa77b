// Package main provides the main entry point for the Nkwabiz SMS and business management platform
package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/nkwabiz/nkwabiz/app/handlers"
	"github.com/nkwabiz/nkwabiz/app/middleware"
	"github.com/nkwabiz/nkwabiz/app/router"
	"github.com/nkwabiz/nkwabiz/app/scheduler"
	"github.com/nkwabiz/nkwabiz/app/services"
	businessflow "github.com/nkwabiz/nkwabiz/business_flow"
	"github.com/nkwabiz/nkwabiz/config"
	"github.com/nkwabiz/nkwabiz/models"
	"github.com/nkwabiz/nkwabiz/repository"
	"github.com/redis/go-redis/v9"
	"gopkg.in/natefinch/lumberjack.v2"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// Application represents the main application structure
type Application struct {
	router    *router.FiberRouter
	config    *config.ProductionConfig
	server    *fiber.App
	stopFuncs []func()
}

func main() {
	log.Println("Starting Nkwabiz application...")

	// Load production configuration
	cfg, err := config.LoadProductionConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	setupLogging(cfg.Logging)

	// Initialize application
	app, err := initializeApplication(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize application: %v", err)
	}

	// Setup routes
	app.router.SetupRoutes()

	// Handle shutdown signals
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	// Start server in goroutine
	go func() {
		address := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
		log.Printf("Server starting on %s", address)

		if err := app.server.Listen(address); err != nil {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for shutdown signal
	<-sigChan
	log.Println("Shutting down gracefully...")

	// Stop background workers
	for _, fn := range app.stopFuncs {
		fn()
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()

	if err := app.server.ShutdownWithContext(shutdownCtx); err != nil {
		log.Printf("Error during shutdown: %v", err)
	}

	log.Println("Server stopped")
}

// setupLogging routes the standard logger through a rotating file
// writer when file output is configured
func setupLogging(cfg config.LoggingConfig) {
	if cfg.Output == "stdout" || cfg.FilePath == "" {
		return
	}

	rotator := &lumberjack.Logger{
		Filename:   cfg.FilePath,
		MaxSize:    cfg.MaxSize,
		MaxBackups: cfg.MaxBackups,
		MaxAge:     cfg.MaxAge,
		Compress:   cfg.Compress,
	}

	if cfg.Output == "both" {
		log.SetOutput(io.MultiWriter(os.Stdout, rotator))
		return
	}
	log.SetOutput(rotator)
}

// initializeDatabase initializes the database connection with connection pooling
func initializeDatabase(cfg config.DatabaseConfig) (*gorm.DB, error) {
	dsn := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.Name, cfg.SSLMode)

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Get underlying sql.DB for connection pooling configuration
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}

	// Configure connection pooling
	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	sqlDB.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	// Test the connection
	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	log.Printf("Database connection established with %d max open connections, %d max idle connections",
		cfg.MaxOpenConns, cfg.MaxIdleConns)

	return db, nil
}

// migrateModels keeps the schema current on startup
func migrateModels(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.User{},
		&models.Message{},
		&models.SMSBatch{},
		&models.Product{},
		&models.SalesHistory{},
		&models.Expense{},
		&models.Payment{},
		&models.Store{},
		&models.BlogPost{},
		&models.Service{},
		&models.ServiceSale{},
		&models.APIKey{},
	)
}

// initializeCache initializes the Redis client and verifies connectivity
func initializeCache(cfg config.CacheConfig) (*redis.Client, error) {
	if !cfg.Enabled {
		return nil, nil
	}

	opt, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		return nil, fmt.Errorf("invalid redis url: %w", err)
	}
	// Override DB if provided in config
	opt.DB = cfg.RedisDB

	rc := redis.NewClient(opt)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rc.Ping(ctx).Err(); err != nil {
		_ = rc.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	log.Printf("Redis connection established to %s (db=%d)", cfg.RedisURL, cfg.RedisDB)
	return rc, nil
}

// startCacheHealthMonitor starts a background goroutine that periodically pings Redis
// to detect connectivity issues. The returned cancel function stops the monitor.
func startCacheHealthMonitor(parent context.Context, client *redis.Client, interval time.Duration) func() {
	monitorCtx, cancel := context.WithCancel(parent)
	if interval <= 0 {
		interval = 30 * time.Second
	}
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-monitorCtx.Done():
				return
			case <-ticker.C:
				ctx, c := context.WithTimeout(context.Background(), 3*time.Second)
				if err := client.Ping(ctx).Err(); err != nil {
					log.Printf("Redis healthcheck failed: %v", err)
				}
				c()
			}
		}
	}()
	return cancel
}

// initializeApplication initializes the main application components
func initializeApplication(cfg *config.ProductionConfig) (*Application, error) {
	var stopFuncs []func()

	// Initialize database
	db, err := initializeDatabase(cfg.Database)
	if err != nil {
		return nil, err
	}

	if err := migrateModels(db); err != nil {
		return nil, fmt.Errorf("failed to migrate models: %w", err)
	}

	rc, err := initializeCache(cfg.Cache)
	if err != nil {
		return nil, err
	}
	if rc != nil {
		cancel := startCacheHealthMonitor(context.Background(), rc, cfg.Cache.DefaultTTL)
		stopFuncs = append(stopFuncs, cancel)
	}

	// Initialize repositories
	userRepo := repository.NewUserRepository(db)
	messageRepo := repository.NewMessageRepository(db)
	batchRepo := repository.NewSMSBatchRepository(db)
	productRepo := repository.NewProductRepository(db)
	salesRepo := repository.NewSalesHistoryRepository(db)
	expenseRepo := repository.NewExpenseRepository(db)
	paymentRepo := repository.NewPaymentRepository(db)
	storeRepo := repository.NewStoreRepository(db)
	blogRepo := repository.NewBlogPostRepository(db)
	serviceRepo := repository.NewServiceRepository(db)
	serviceSaleRepo := repository.NewServiceSaleRepository(db)
	apiKeyRepo := repository.NewAPIKeyRepository(db)

	// Initialize services
	tokenService, err := services.NewTokenService(
		cfg.JWT.AccessTokenTTL,
		cfg.JWT.RefreshTokenTTL,
		cfg.JWT.Issuer,
		cfg.JWT.Audience,
		cfg.JWT.SecretKey,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize token service: %w", err)
	}

	gateway := services.NewSMSGateway(&cfg.SMS)
	paystack := services.NewPaystackClient(&cfg.Paystack)
	emailService := services.NewEmailService(&cfg.Email)
	notifier := services.NewWebhookNotifier(&cfg.Developer)

	var rateLimiter services.RateLimiter
	if rc != nil {
		rateLimiter = services.NewRedisRateLimiter(rc, cfg.Cache.RedisPrefix)
	} else {
		rateLimiter = services.NewInMemoryRateLimiter()
	}

	// Initialize flows
	authFlow := businessflow.NewAuthFlow(userRepo, paymentRepo, tokenService, &cfg.JWT, db)
	passwordFlow := businessflow.NewPasswordFlow(userRepo, emailService, &cfg.Email, cfg.Security.ResetTokenTTL, db)
	smsFlow := businessflow.NewSMSFlow(userRepo, messageRepo, batchRepo, gateway, &cfg.SMS, db)
	deliveryFlow := businessflow.NewDeliveryReportFlow(userRepo, messageRepo, apiKeyRepo, notifier, &cfg.SMS, db)
	productFlow := businessflow.NewProductFlow(productRepo, salesRepo, paymentRepo, db)
	expenseFlow := businessflow.NewExpenseFlow(expenseRepo, db)
	paymentFlow := businessflow.NewPaymentFlow(userRepo, paymentRepo, paystack, &cfg.SMS, db)
	dashboardFlow := businessflow.NewDashboardFlow(userRepo, messageRepo, productRepo, salesRepo, expenseRepo, paymentRepo)
	storeFlow := businessflow.NewStoreFlow(storeRepo, productRepo, db)
	blogFlow := businessflow.NewBlogFlow(blogRepo, db)
	serviceFlow := businessflow.NewServiceFlow(serviceRepo, serviceSaleRepo, db)
	developerFlow := businessflow.NewDeveloperFlow(apiKeyRepo, messageRepo, db)
	exportFlow := businessflow.NewExportFlow(productRepo, salesRepo, paymentRepo)

	// Initialize handlers
	h := router.Handlers{
		Auth:      handlers.NewAuthHandler(authFlow, passwordFlow),
		SMS:       handlers.NewSMSHandler(smsFlow, deliveryFlow),
		Product:   handlers.NewProductHandler(productFlow),
		Expense:   handlers.NewExpenseHandler(expenseFlow),
		Dashboard: handlers.NewDashboardHandler(dashboardFlow),
		Payment:   handlers.NewPaymentHandler(paymentFlow, paystack),
		Store:     handlers.NewStoreHandler(storeFlow),
		Blog:      handlers.NewBlogHandler(blogFlow, &cfg.Security),
		Service:   handlers.NewServiceHandler(serviceFlow),
		Developer: handlers.NewDeveloperHandler(developerFlow, smsFlow),
		Export:    handlers.NewExportHandler(exportFlow),
	}

	// Initialize middleware
	authMiddleware := middleware.NewAuthMiddleware(tokenService)
	apiKeyMiddleware := middleware.NewAPIKeyMiddleware(developerFlow, rateLimiter, &cfg.Developer)

	// Initialize router
	appRouter := router.NewFiberRouter(cfg, h, authMiddleware, apiKeyMiddleware)

	if cfg.Scheduler.ExpirySweepEnabled {
		sched := scheduler.NewExpiryScheduler(messageRepo, log.Default(), cfg.Scheduler)
		stopFuncs = append(stopFuncs, sched.Start(context.Background()))
	}

	fiberRouter := appRouter.(*router.FiberRouter)
	application := &Application{
		router:    fiberRouter,
		config:    cfg,
		server:    fiberRouter.GetApp(),
		stopFuncs: stopFuncs,
	}

	return application, nil
}
