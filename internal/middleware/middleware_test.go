package middleware

import (
	"context"
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/ahmetcoskunkizilkaya/rantbox/internal/config"
	"github.com/ahmetcoskunkizilkaya/rantbox/internal/models"
	"github.com/ahmetcoskunkizilkaya/rantbox/internal/services"
	"github.com/ahmetcoskunkizilkaya/rantbox/internal/store"
	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
)

func testConfig() *config.Config {
	return &config.Config{JWTSecret: "test-secret", AdminToken: "letmein", AdminEmails: "boss@example.com"}
}

func signToken(t *testing.T, secret, sub, email string) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":   sub,
		"email": email,
		"name":  "Test",
		"exp":   time.Now().Add(time.Hour).Unix(),
	})
	s, err := token.SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return s
}

func get(t *testing.T, app *fiber.App, path string, headers map[string]string) (int, string) {
	t.Helper()
	req := httptest.NewRequest("GET", path, nil)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	return resp.StatusCode, string(body)
}

func TestOptionalJWT(t *testing.T) {
	cfg := testConfig()
	app := fiber.New()
	app.Get("/whoami", OptionalJWT(cfg), func(c *fiber.Ctx) error {
		if id, ok := GetIdentity(c); ok {
			return c.SendString(id.UID)
		}
		return c.SendString("anonymous")
	})

	tests := []struct {
		name   string
		header string
		want   string
	}{
		{"no header", "", "anonymous"},
		{"valid token", "Bearer " + signToken(t, cfg.JWTSecret, "user123", "u@example.com"), "user123"},
		{"wrong secret", "Bearer " + signToken(t, "other", "user123", "u@example.com"), "anonymous"},
		{"garbage", "Bearer not-a-token", "anonymous"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			headers := map[string]string{}
			if tt.header != "" {
				headers["Authorization"] = tt.header
			}
			status, body := get(t, app, "/whoami", headers)
			if status != fiber.StatusOK || body != tt.want {
				t.Errorf("got %d %q, want 200 %q", status, body, tt.want)
			}
		})
	}
}

func TestJWTProtected(t *testing.T) {
	cfg := testConfig()
	app := fiber.New()
	app.Get("/me", JWTProtected(cfg), func(c *fiber.Ctx) error {
		id, _ := GetIdentity(c)
		return c.SendString(id.Email)
	})

	if status, _ := get(t, app, "/me", nil); status != fiber.StatusUnauthorized {
		t.Errorf("no token status = %d", status)
	}
	status, body := get(t, app, "/me", map[string]string{
		"Authorization": "Bearer " + signToken(t, cfg.JWTSecret, "user123", "u@example.com"),
	})
	if status != fiber.StatusOK || body != "u@example.com" {
		t.Errorf("valid token = %d %q", status, body)
	}
}

func TestAdminRequired(t *testing.T) {
	cfg := testConfig()
	mem := store.NewMemoryStore()
	ledger := services.NewLedgerService(mem, cfg.AdminEmails)
	if err := mem.CreateAccount(context.Background(), &models.Account{UID: "flagged", IsAdmin: true}); err != nil {
		t.Fatalf("CreateAccount: %v", err)
	}

	app := fiber.New()
	app.Get("/admin", OptionalJWT(cfg), AdminRequired(ledger, cfg), func(c *fiber.Ctx) error {
		return c.SendString("ok")
	})

	bearer := func(sub, email string) map[string]string {
		return map[string]string{"Authorization": "Bearer " + signToken(t, cfg.JWTSecret, sub, email)}
	}
	tests := []struct {
		name    string
		headers map[string]string
		want    int
	}{
		{"anonymous", nil, fiber.StatusUnauthorized},
		{"admin token", map[string]string{"X-Admin-Token": "letmein"}, fiber.StatusOK},
		{"wrong admin token", map[string]string{"X-Admin-Token": "nope"}, fiber.StatusUnauthorized},
		{"admin email", bearer("someone", "Boss@example.com"), fiber.StatusOK},
		{"admin flag", bearer("flagged", "flagged@example.com"), fiber.StatusOK},
		{"regular user", bearer("user123", "u@example.com"), fiber.StatusForbidden},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if status, _ := get(t, app, "/admin", tt.headers); status != tt.want {
				t.Errorf("status = %d, want %d", status, tt.want)
			}
		})
	}
}

func TestRateLimit(t *testing.T) {
	rl := PerMinute(1, 2)
	app := fiber.New()
	app.Get("/post", RateLimit(rl), func(c *fiber.Ctx) error {
		return c.SendString("ok")
	})

	want := []int{fiber.StatusOK, fiber.StatusOK, fiber.StatusTooManyRequests}
	for i, w := range want {
		if status, _ := get(t, app, "/post", nil); status != w {
			t.Errorf("request %d status = %d, want %d", i+1, status, w)
		}
	}

	if n := rl.Sweep(-time.Second); n != 1 {
		t.Errorf("Sweep removed %d visitors, want 1", n)
	}
	if status, _ := get(t, app, "/post", nil); status != fiber.StatusOK {
		t.Errorf("after sweep status = %d", status)
	}
}
