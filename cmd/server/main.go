package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"
	sentryfiber "github.com/getsentry/sentry-go/fiber"
	"gorm.io/gorm"

	"github.com/ahmetcoskunkizilkaya/rantbox/internal/cache"
	"github.com/ahmetcoskunkizilkaya/rantbox/internal/config"
	"github.com/ahmetcoskunkizilkaya/rantbox/internal/database"
	"github.com/ahmetcoskunkizilkaya/rantbox/internal/filter"
	"github.com/ahmetcoskunkizilkaya/rantbox/internal/handlers"
	"github.com/ahmetcoskunkizilkaya/rantbox/internal/logging"
	"github.com/ahmetcoskunkizilkaya/rantbox/internal/middleware"
	"github.com/ahmetcoskunkizilkaya/rantbox/internal/payments"
	"github.com/ahmetcoskunkizilkaya/rantbox/internal/routes"
	"github.com/ahmetcoskunkizilkaya/rantbox/internal/services"
	"github.com/ahmetcoskunkizilkaya/rantbox/internal/store"
	"github.com/gofiber/fiber/v2"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
)

func main() {
	cfg := config.Load()

	// Structured logging (JSON to stdout)
	stdout := logging.Setup(cfg.LogLevel)

	if cfg.JWTSecret == "" {
		slog.Error("JWT_SECRET environment variable is required")
		os.Exit(1)
	}
	if cfg.StoreDriver == "postgres" && cfg.DBPassword == "" {
		slog.Error("DB_PASSWORD environment variable is required")
		os.Exit(1)
	}

	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	// Store
	st, db, err := openStore(ctx, cfg)
	if err != nil {
		slog.Error("store initialization failed", "driver", cfg.StoreDriver, "error", err)
		os.Exit(1)
	}

	// Database log handler (ERROR+ async batch) and 30-day retention
	var dbLogHandler *logging.DBHandler
	if db != nil {
		dbLogHandler = logging.NewDBHandler(db, 5*time.Second)
		slog.SetDefault(slog.New(logging.NewMultiHandler(stdout, dbLogHandler)))
		logging.StartCleanup(ctx, db)
	}

	// Webhook event dedup: Redis when configured, else the store itself
	var claimer store.EventClaimer = st
	var redisClaimer *cache.RedisClaimer
	if cfg.RedisAddr != "" {
		client, err := cache.NewRedisClient(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err != nil {
			slog.Error("redis connection failed", "addr", cfg.RedisAddr, "error", err)
			os.Exit(1)
		}
		redisClaimer = cache.NewRedisClaimer(client, "rantbox", 0)
		claimer = redisClaimer
		slog.Info("redis webhook dedup enabled", "addr", cfg.RedisAddr)
	}

	// Payment gateway
	if cfg.StripeWebhookSecret == "" {
		if cfg.AppEnv == "production" {
			slog.Error("STRIPE_WEBHOOK_SECRET environment variable is required in production")
			os.Exit(1)
		}
		slog.Warn("STRIPE_WEBHOOK_SECRET is not set; every webhook will be rejected")
	}
	if cfg.StripeSecretKey == "" {
		slog.Warn("STRIPE_SECRET_KEY is not set; checkout will fail")
	}
	gateway := payments.NewStripeGateway(cfg.StripeSecretKey, cfg.StripeWebhookSecret)

	// Services
	ledgerService := services.NewLedgerService(st, cfg.AdminEmails)
	var postOpts []services.PostOption
	if cfg.SpendCreditOnPost {
		postOpts = append(postOpts, services.WithCreditSpend(ledgerService))
	}
	postService := services.NewPostService(st, filter.Default(), postOpts...)
	paymentService := services.NewPaymentService(gateway, st, st, claimer, ledgerService)
	authService := services.NewAuthService(st, cfg.JWTSecret, cfg.JWTAccessExpiry).
		WithReservedEmails(ledgerService.IsAdminEmail)

	// Handlers
	h := routes.Handlers{
		Health:  handlers.NewHealthHandler(st, cfg.StoreDriver),
		Auth:    handlers.NewAuthHandler(authService),
		Posts:   handlers.NewPostHandler(postService),
		Account: handlers.NewAccountHandler(ledgerService),
		Payment: handlers.NewPaymentHandler(paymentService, cfg),
		Admin:   handlers.NewAdminHandler(postService, ledgerService),
	}

	postLimiter := middleware.PerMinute(cfg.PostRatePerMinute, cfg.PostRateBurst)
	postLimiter.StartSweeper(ctx, 10*time.Minute)

	// Sentry error tracking
	if cfg.SentryDSN != "" {
		if err := sentry.Init(sentry.ClientOptions{
			Dsn:              cfg.SentryDSN,
			EnableTracing:    true,
			TracesSampleRate: 0.2,
			Environment:      cfg.AppEnv,
		}); err != nil {
			slog.Error("sentry init failed", "error", err)
		} else {
			defer sentry.Flush(2 * time.Second)
		}
	}

	// Fiber app
	app := fiber.New(fiber.Config{
		BodyLimit:    1 * 1024 * 1024,
		ErrorHandler: customErrorHandler,
	})

	// Sentry middleware
	app.Use(sentryfiber.New(sentryfiber.Options{
		Repanic:         true,
		WaitForDelivery: false,
	}))

	// Global middleware
	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(fiberlogger.New(fiberlogger.Config{
		Format: "${time} | ${status} | ${latency} | ${ip} | ${method} | ${path} | ${locals:requestid}\n",
	}))
	app.Use(middleware.CORS(cfg))
	app.Use(func(c *fiber.Ctx) error {
		c.Set("X-Content-Type-Options", "nosniff")
		c.Set("X-Frame-Options", "DENY")
		c.Set("X-XSS-Protection", "1; mode=block")
		return c.Next()
	})

	// Routes
	routes.Setup(app, cfg, h, ledgerService, postLimiter)

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		slog.Info("server starting", "port", cfg.Port, "store", cfg.StoreDriver)
		if err := app.Listen(":" + cfg.Port); err != nil {
			slog.Error("server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	<-quit
	slog.Info("shutting down server...")

	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		slog.Error("server shutdown error", "error", err)
	}

	stop()
	if dbLogHandler != nil {
		// Restore stdout-only logging before the sink goes away.
		slog.SetDefault(slog.New(stdout))
		dbLogHandler.Stop()
	}
	if redisClaimer != nil {
		if err := redisClaimer.Close(); err != nil {
			slog.Error("redis close error", "error", err)
		}
	}
	if err := st.Close(); err != nil {
		slog.Error("store close error", "error", err)
	}
	sentry.Flush(2 * time.Second)

	slog.Info("server stopped")
}

// openStore returns the configured backend. db is non-nil for the SQL
// drivers so the log sink can share the connection.
func openStore(ctx context.Context, cfg *config.Config) (store.Store, *gorm.DB, error) {
	switch cfg.StoreDriver {
	case "memory":
		mem := store.NewMemoryStore()
		if cfg.SeedDemoPosts {
			mem.Seed(store.DemoPosts(time.Now())...)
			slog.Info("seeded demo posts")
		}
		return mem, nil, nil

	case "postgres", "sqlite":
		db, err := database.Connect(cfg)
		if err != nil {
			return nil, nil, err
		}
		if err := database.Migrate(db); err != nil {
			return nil, nil, fmt.Errorf("migration failed: %w", err)
		}
		return store.NewGormStore(db), db, nil

	case "firestore":
		if cfg.FirestoreProjectID == "" {
			return nil, nil, errors.New("FIRESTORE_PROJECT_ID is required for the firestore store")
		}
		fs, err := store.NewFirestoreStore(ctx, cfg.FirestoreProjectID)
		if err != nil {
			return nil, nil, err
		}
		return fs, nil, nil
	}
	return nil, nil, fmt.Errorf("unknown STORE_DRIVER %q", cfg.StoreDriver)
}

func customErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := "Internal server error"
	var e *fiber.Error
	if errors.As(err, &e) {
		code = e.Code
		message = e.Message
	}

	// Only expose error details for client errors (4xx), not server errors (5xx)
	if code >= 500 {
		slog.Error("unhandled server error",
			"method", c.Method(),
			"path", c.Path(),
			"request_id", c.Locals("requestid"),
			"error", err.Error(),
		)
		message = "Internal server error"
	}

	return c.Status(code).JSON(fiber.Map{
		"error":   true,
		"message": message,
	})
}
