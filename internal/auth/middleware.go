package auth

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	apperrors "github.com/trugen/triage-service/pkg/util/errorutil"
)

// RequireAdmin returns a middleware that validates the bearer token on
// admin routes.
func RequireAdmin(tokens *TokenManager) fiber.Handler {
	return func(c *fiber.Ctx) error {
		header := c.Get(fiber.HeaderAuthorization)
		if !strings.HasPrefix(header, "Bearer ") {
			return apperrors.NewUnauthorized("bearer token required")
		}
		claims, err := tokens.ParseToken(strings.TrimPrefix(header, "Bearer "))
		if err != nil {
			return apperrors.NewUnauthorized("invalid or expired token")
		}
		if claims.Subject != "admin" {
			return apperrors.NewForbidden("admin token required")
		}
		return c.Next()
	}
}
