package middleware

import (
	"github.com/ahmetcoskunkizilkaya/rantbox/internal/config"
	"github.com/ahmetcoskunkizilkaya/rantbox/internal/dto"
	"github.com/ahmetcoskunkizilkaya/rantbox/internal/services"
	"github.com/gofiber/fiber/v2"
)

// AdminRequired admits a request when any of these hold:
// 1. X-Admin-Token matches the configured token
// 2. the caller's email is in ADMIN_EMAILS
// 3. the caller's account has isAdmin set
//
// It expects OptionalJWT to run first so the token header works without a JWT.
func AdminRequired(ledger *services.LedgerService, cfg *config.Config) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if cfg.AdminToken != "" && c.Get("X-Admin-Token") == cfg.AdminToken {
			return c.Next()
		}

		id, ok := GetIdentity(c)
		if !ok {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
				Error: true, Message: "Unauthorized",
			})
		}

		if ledger.IsAdminEmail(id.Email) {
			return c.Next()
		}

		if account, ok := ledger.GetAccount(c.UserContext(), id.UID); ok && account.IsAdmin {
			return c.Next()
		}

		return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{
			Error: true, Message: "Admin access required",
		})
	}
}
