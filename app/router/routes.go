// Package router provides HTTP routing, middleware configuration, and server setup for the web application
package router

import (
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"log"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/adaptor"
	"github.com/gofiber/fiber/v3/middleware/compress"
	"github.com/gofiber/fiber/v3/middleware/cors"
	"github.com/gofiber/fiber/v3/middleware/helmet"
	"github.com/gofiber/fiber/v3/middleware/limiter"
	"github.com/gofiber/fiber/v3/middleware/logger"
	"github.com/gofiber/fiber/v3/middleware/recover"
	"github.com/gofiber/fiber/v3/middleware/requestid"
	"github.com/nkwabiz/nkwabiz/app/dto"
	"github.com/nkwabiz/nkwabiz/app/handlers"
	"github.com/nkwabiz/nkwabiz/app/middleware"
	"github.com/nkwabiz/nkwabiz/config"
	"github.com/nkwabiz/nkwabiz/utils"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Router interface for HTTP routing
type Router interface {
	SetupRoutes()
	Start(address string) error
	GetApp() *fiber.App
}

// Handlers bundles the HTTP handlers wired into the router
type Handlers struct {
	Auth      *handlers.AuthHandler
	SMS       *handlers.SMSHandler
	Product   *handlers.ProductHandler
	Expense   *handlers.ExpenseHandler
	Dashboard *handlers.DashboardHandler
	Payment   *handlers.PaymentHandler
	Store     *handlers.StoreHandler
	Blog      *handlers.BlogHandler
	Service   *handlers.ServiceHandler
	Developer *handlers.DeveloperHandler
	Export    *handlers.ExportHandler
}

// FiberRouter implements Router using Fiber v3
type FiberRouter struct {
	app      *fiber.App
	cfg      *config.ProductionConfig
	h        Handlers
	authMW   *middleware.AuthMiddleware
	apiKeyMW *middleware.APIKeyMiddleware
}

// NewFiberRouter creates a new Fiber router
func NewFiberRouter(cfg *config.ProductionConfig, h Handlers, authMW *middleware.AuthMiddleware, apiKeyMW *middleware.APIKeyMiddleware) Router {
	app := fiber.New(fiber.Config{
		AppName:      "Nkwabiz API",
		ServerHeader: "Nkwabiz",
		ErrorHandler: errorHandler,
		BodyLimit:    cfg.Server.BodyLimit,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
		JSONEncoder:  json.Marshal,
		JSONDecoder:  json.Unmarshal,
	})

	return &FiberRouter{
		app:      app,
		cfg:      cfg,
		h:        h,
		authMW:   authMW,
		apiKeyMW: apiKeyMW,
	}
}

// SetupRoutes configures all application routes
func (r *FiberRouter) SetupRoutes() {
	log.Println("Setting up routes...")

	r.setupMiddleware()

	if r.cfg.Server.EnableMetrics {
		r.app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))
	}

	api := r.app.Group("/api/v1")

	// Health check route (no rate limiting)
	api.Get("/health", r.h.Auth.HealthCheck)

	// General rate limiting for all API routes
	api.Use(limiter.New(limiter.Config{
		Max:        r.cfg.Security.GlobalRateLimit,
		Expiration: r.cfg.Security.RateLimitWindow,
		KeyGenerator: func(c fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: rateLimitReached,
		Next: func(c fiber.Ctx) bool {
			return c.Path() == "/api/v1/health"
		},
	}))

	// Auth routes with stricter rate limiting
	auth := api.Group("/auth")
	auth.Use(limiter.New(limiter.Config{
		Max:        r.cfg.Security.AuthRateLimit,
		Expiration: r.cfg.Security.RateLimitWindow,
		KeyGenerator: func(c fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: rateLimitReached,
	}))

	auth.Post("/signup", r.h.Auth.Signup)
	auth.Post("/login", r.h.Auth.Login)
	auth.Post("/refresh", r.h.Auth.RefreshToken)
	auth.Post("/logout", r.authMW.Authenticate(), r.h.Auth.Logout)
	auth.Post("/forgot-password", r.h.Auth.ForgotPassword)
	auth.Post("/reset-password", r.h.Auth.ResetPassword)
	auth.Post("/change-password", r.authMW.Authenticate(), r.h.Auth.ChangePassword)

	// Provider delivery callbacks arrive unauthenticated, both verbs
	api.Post("/sms/delivery-report", r.h.SMS.DeliveryReport)
	api.Get("/sms/delivery-report", r.h.SMS.DeliveryReport)

	sms := api.Group("/sms", r.authMW.Authenticate())
	sms.Post("/send", r.h.SMS.Send)
	sms.Post("/estimate", r.h.SMS.Estimate)
	sms.Get("/history", r.h.SMS.History)
	sms.Get("/balance", r.h.SMS.Balance)

	products := api.Group("/products", r.authMW.Authenticate())
	products.Post("/", r.h.Product.Create)
	products.Get("/", r.h.Product.List)
	products.Get("/low-stock", r.h.Product.LowStock)
	products.Put("/:uuid", r.h.Product.Update)
	products.Post("/:uuid/archive", r.h.Product.Archive)

	sales := api.Group("/sales", r.authMW.Authenticate())
	sales.Post("/", r.h.Product.RecordSale)
	sales.Get("/", r.h.Product.Sales)
	sales.Get("/summary", r.h.Product.SalesSummary)

	expenses := api.Group("/expenses", r.authMW.Authenticate())
	expenses.Post("/", r.h.Expense.Create)
	expenses.Get("/", r.h.Expense.List)
	expenses.Get("/summary", r.h.Expense.Summary)
	expenses.Put("/:uuid", r.h.Expense.Update)
	expenses.Delete("/:uuid", r.h.Expense.Delete)

	api.Get("/dashboard", r.authMW.Authenticate(), r.h.Dashboard.Overview)

	payments := api.Group("/payments")
	payments.Get("/bundles", r.h.Payment.Bundles)
	payments.Post("/webhook", r.h.Payment.Webhook)
	payments.Post("/initiate", r.authMW.Authenticate(), r.h.Payment.Initiate)
	payments.Get("/verify/:reference", r.authMW.Authenticate(), r.h.Payment.Verify)
	payments.Get("/history", r.authMW.Authenticate(), r.h.Payment.History)

	store := api.Group("/store")
	store.Put("/", r.authMW.Authenticate(), r.h.Store.Upsert)
	store.Get("/mine", r.authMW.Authenticate(), r.h.Store.Mine)
	store.Get("/:slug", r.h.Store.Public)

	blog := api.Group("/blog")
	blog.Post("/", r.h.Blog.Create)
	blog.Get("/", r.h.Blog.List)
	blog.Get("/:slug", r.h.Blog.BySlug)

	srv := api.Group("/services", r.authMW.Authenticate())
	srv.Post("/", r.h.Service.Create)
	srv.Get("/", r.h.Service.List)
	srv.Post("/sales", r.h.Service.RecordSale)
	srv.Get("/sales", r.h.Service.Sales)
	srv.Put("/:uuid", r.h.Service.Update)
	srv.Post("/:uuid/archive", r.h.Service.Archive)

	developer := api.Group("/developer")
	keys := developer.Group("/keys", r.authMW.Authenticate())
	keys.Post("/", r.h.Developer.CreateKey)
	keys.Get("/", r.h.Developer.ListKeys)
	keys.Delete("/:uuid", r.h.Developer.RevokeKey)
	keys.Put("/:uuid/webhook", r.h.Developer.ConfigureWebhook)
	keys.Delete("/:uuid/webhook", r.h.Developer.DisableWebhook)
	developer.Post("/sms/send", r.apiKeyMW.Authenticate(), r.h.Developer.Send)
	developer.Get("/stats", r.apiKeyMW.Authenticate(), r.h.Developer.Stats)

	export := api.Group("/export", r.authMW.Authenticate())
	export.Get("/products", r.h.Export.Products)
	export.Get("/sales", r.h.Export.Sales)

	// Not found handler
	r.app.Use(r.notFoundHandler)

	log.Println("Routes configured successfully")
}

// SetupMiddleware configures global middleware
func (r *FiberRouter) setupMiddleware() {
	// Request ID middleware - must be first
	r.app.Use(requestid.New(requestid.Config{
		Header: "X-Request-ID",
		Generator: func() string {
			return generateRequestID()
		},
	}))

	// Security headers middleware
	r.app.Use(helmet.New(helmet.Config{
		XSSProtection:             "1; mode=block",
		ContentTypeNosniff:        "nosniff",
		XFrameOptions:             "DENY",
		HSTSMaxAge:                31536000, // 1 year
		HSTSExcludeSubdomains:     false,
		ContentSecurityPolicy:     "default-src 'self'; script-src 'self' 'unsafe-inline'; style-src 'self' 'unsafe-inline'; img-src 'self' data: https:; font-src 'self' https:; connect-src 'self' https:; frame-ancestors 'none';",
		ReferrerPolicy:            "strict-origin-when-cross-origin",
		CrossOriginEmbedderPolicy: "require-corp",
		CrossOriginOpenerPolicy:   "same-origin",
		CrossOriginResourcePolicy: "cross-origin",
		OriginAgentCluster:        "?1",
		XDNSPrefetchControl:       "off",
		XDownloadOptions:          "noopen",
		XPermittedCrossDomain:     "none",
	}))

	// CORS middleware with production settings
	r.app.Use(cors.New(cors.Config{
		AllowOrigins: r.cfg.Security.AllowedOrigins,
		AllowMethods: r.cfg.Security.AllowedMethods,
		AllowHeaders: r.cfg.Security.AllowedHeaders,
		ExposeHeaders: []string{
			"X-Request-ID",
			"X-Response-Time",
		},
		AllowCredentials: r.cfg.Security.AllowCredentials,
		MaxAge:           r.cfg.Security.CORSMaxAge,
	}))

	// Compression middleware for performance
	if r.cfg.Server.EnableCompression {
		r.app.Use(compress.New(compress.Config{
			Level: compress.Level(r.cfg.Server.CompressionLevel),
			Next: func(c fiber.Ctx) bool {
				// Workbook downloads are already compressed
				contentType := c.Get("Content-Type")
				return contentType == "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
			},
		}))
	}

	// Structured request logging
	r.app.Use(logger.New(logger.Config{
		Format:     `{"time":"${time}","pid":"${pid}","request_id":"${locals:requestid}","level":"info","method":"${method}","path":"${path}","protocol":"${protocol}","ip":"${ip}","user_agent":"${ua}","status":${status},"latency":"${latency}","bytes_in":${bytesReceived},"bytes_out":${bytesSent},"referer":"${referer}"}` + "\n",
		TimeFormat: time.RFC3339,
		TimeZone:   "UTC",
		Next: func(c fiber.Ctx) bool {
			return c.Path() == "/api/v1/health"
		},
	}))

	// Prometheus request metrics
	if r.cfg.Server.EnableMetrics {
		r.app.Use(middleware.Metrics())
	}

	// Custom security middleware
	r.app.Use(r.securityMiddleware)

	// Recovery middleware with custom error handling
	r.app.Use(recover.New(recover.Config{
		EnableStackTrace: true,
		StackTraceHandler: func(c fiber.Ctx, e interface{}) {
			log.Printf(`{"time":"%s","level":"error","request_id":"%s","event":"panic","error":"%v","path":"%s","method":"%s","ip":"%s"}`,
				utils.UTCNow().Format(time.RFC3339),
				c.Locals("requestid"),
				e,
				c.Path(),
				c.Method(),
				c.IP(),
			)
		},
	}))
}

// Custom security middleware
func (r *FiberRouter) securityMiddleware(c fiber.Ctx) error {
	c.Set("X-Response-Time", utils.UTCNow().Format(time.RFC3339))
	c.Set("Server", "Nkwabiz")

	return c.Next()
}

// Start starts the HTTP server
func (r *FiberRouter) Start(address string) error {
	log.Printf("Starting server on %s", address)
	return r.app.Listen(address)
}

// GetApp returns the Fiber app instance
func (r *FiberRouter) GetApp() *fiber.App {
	return r.app
}

func rateLimitReached(c fiber.Ctx) error {
	return c.Status(fiber.StatusTooManyRequests).JSON(dto.APIResponse{
		Success: false,
		Message: "Too many requests. Please try again later.",
		Error: dto.ErrorDetail{
			Code: "RATE_LIMIT_EXCEEDED",
		},
	})
}

func (r *FiberRouter) notFoundHandler(c fiber.Ctx) error {
	requestID := c.Locals("requestid")

	return c.Status(fiber.StatusNotFound).JSON(dto.APIResponse{
		Success: false,
		Message: "The requested resource was not found",
		Error: dto.ErrorDetail{
			Code: "NOT_FOUND",
			Details: fiber.Map{
				"path":       c.Path(),
				"method":     c.Method(),
				"request_id": requestID,
			},
		},
	})
}

// Global error handler
func errorHandler(c fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError

	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
	}

	log.Printf("Error %d: %v", code, err)

	requestID := c.Locals("requestid")

	return c.Status(code).JSON(dto.APIResponse{
		Success: false,
		Message: "An internal server error occurred",
		Error: dto.ErrorDetail{
			Code: "INTERNAL_ERROR",
			Details: fiber.Map{
				"timestamp":  utils.UTCNow().Unix(),
				"request_id": requestID,
			},
		},
	})
}

// generateRequestID creates a unique request ID
func generateRequestID() string {
	bytes := make([]byte, 8)
	rand.Read(bytes)
	return hex.EncodeToString(bytes)
}
