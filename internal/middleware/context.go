package middleware

import (
	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/taonaire/catalog-backend/internal/services"
)

// CurrentUser returns the identity of an authenticated request.
func CurrentUser(c *fiber.Ctx) (*services.TokenClaims, bool) {
	token, ok := c.Locals("user").(*jwt.Token)
	if !ok || !token.Valid {
		return nil, false
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, false
	}

	identity, err := services.ClaimsFromMap(claims)
	if err != nil {
		return nil, false
	}
	return identity, true
}
