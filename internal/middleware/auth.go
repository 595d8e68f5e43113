// Package middleware provides HTTP middleware for the fiber app.
package middleware

import (
	"strings"

	"cardvault/internal/models"
	"cardvault/internal/utils"

	"github.com/gofiber/fiber/v2"
)

// Auth validates the bearer token and stores the user claims in the
// request locals under "claims".
func Auth() fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get("Authorization")
		if authHeader == "" {
			return utils.Unauthorized(c, "missing authorization header")
		}
		if !strings.HasPrefix(authHeader, "Bearer ") {
			return utils.Unauthorized(c, "invalid authorization format")
		}

		tokenString := strings.TrimPrefix(authHeader, "Bearer ")
		_, claims, err := utils.ParseToken(tokenString)
		if err != nil {
			return utils.Unauthorized(c, "invalid token")
		}

		c.Locals("claims", claims)
		return c.Next()
	}
}

// RequirePermission gates a route on a specific permission.
func RequirePermission(permission string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		claims, ok := c.Locals("claims").(*models.UserClaims)
		if !ok || claims == nil {
			return utils.Unauthorized(c, "invalid claims")
		}
		if !claims.HasPermission(permission) {
			return utils.Forbidden(c, "insufficient permissions")
		}
		return c.Next()
	}
}
