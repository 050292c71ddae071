package middleware

import (
	"github.com/ahmetcoskunkizilkaya/rantbox/internal/services"
	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
)

// GetIdentity reads the verified caller from the JWT stored by JWTProtected
// or OptionalJWT.
func GetIdentity(c *fiber.Ctx) (services.Identity, bool) {
	token, ok := c.Locals("user").(*jwt.Token)
	if !ok || token == nil || !token.Valid {
		return services.Identity{}, false
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return services.Identity{}, false
	}

	sub, _ := claims["sub"].(string)
	if sub == "" {
		return services.Identity{}, false
	}
	email, _ := claims["email"].(string)
	name, _ := claims["name"].(string)

	return services.Identity{UID: sub, Email: email, DisplayName: name}, true
}
