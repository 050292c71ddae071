package routes

import (
	"time"

	"github.com/ahmetcoskunkizilkaya/rantbox/internal/config"
	"github.com/ahmetcoskunkizilkaya/rantbox/internal/handlers"
	"github.com/ahmetcoskunkizilkaya/rantbox/internal/middleware"
	"github.com/ahmetcoskunkizilkaya/rantbox/internal/services"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
)

type Handlers struct {
	Health  *handlers.HealthHandler
	Auth    *handlers.AuthHandler
	Posts   *handlers.PostHandler
	Account *handlers.AccountHandler
	Payment *handlers.PaymentHandler
	Admin   *handlers.AdminHandler
}

func Setup(
	app *fiber.App,
	cfg *config.Config,
	h Handlers,
	ledger *services.LedgerService,
	postLimiter *middleware.IPRateLimiter,
) {
	api := app.Group("/api")

	// General API rate limiter: 120 req/min per IP
	api.Use(limiter.New(limiter.Config{
		Max:               120,
		Expiration:        1 * time.Minute,
		LimiterMiddleware: limiter.SlidingWindow{},
		KeyGenerator:      func(c *fiber.Ctx) string { return c.IP() },
		Next: func(c *fiber.Ctx) bool {
			// Gateway retries must never be throttled.
			return c.Path() == "/api/stripe-webhook"
		},
	}))

	api.Get("/health", h.Health.Check)

	// Posts: public, creation optionally authenticated
	api.Get("/posts", h.Posts.List)
	api.Post("/posts", middleware.RateLimit(postLimiter), middleware.OptionalJWT(cfg), h.Posts.Create)
	api.Get("/posts/:id", h.Posts.Get)
	api.Post("/posts/:id/like", h.Posts.Like)
	api.Post("/posts/:id/report", h.Posts.Report)
	api.Get("/hugs/random", h.Posts.RandomHug)
	api.Get("/credit-packages", h.Account.CreditPackages)

	// Auth-specific rate limit: 10 req/min per IP (stricter)
	auth := api.Group("/auth")
	auth.Use(limiter.New(limiter.Config{
		Max:               10,
		Expiration:        1 * time.Minute,
		LimiterMiddleware: limiter.SlidingWindow{},
		KeyGenerator:      func(c *fiber.Ctx) string { return c.IP() },
	}))
	auth.Post("/register", h.Auth.Register)
	auth.Post("/login", h.Auth.Login)

	account := api.Group("/account", middleware.JWTProtected(cfg))
	account.Post("/session", h.Account.Session)
	account.Get("/", h.Account.Get)
	account.Get("/credits", h.Account.Credits)

	// Payments: the webhook authenticates by signature, not JWT
	api.Post("/create-checkout-session", h.Payment.CreateCheckout)
	api.Post("/stripe-webhook", h.Payment.HandleStripe)

	admin := api.Group("/admin", middleware.OptionalJWT(cfg), middleware.AdminRequired(ledger, cfg))
	admin.Get("/posts", h.Admin.ListPosts)
	admin.Put("/posts/:id/moderation", h.Admin.Moderate)
	admin.Get("/stats", h.Admin.Stats)
	admin.Put("/accounts/:uid/credits", h.Admin.SetCredits)
}
