package auth

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/session-service/internal/domain"
)

const claimsKey = "auth_claims"

// Require enforces required on the Authorization header. Every failure is
// reported as ErrForbidden so callers cannot tell which check failed.
func (g *Gate) Require(required domain.Role) fiber.Handler {
	return func(c *fiber.Ctx) error {
		claims, ok := g.authorize(c.Get(fiber.HeaderAuthorization), required)
		if !ok {
			return domain.ErrForbidden
		}
		c.Locals(claimsKey, claims)
		return c.Next()
	}
}

// ClaimsFromContext retrieves the claims stored by Require.
func ClaimsFromContext(c *fiber.Ctx) (*domain.TokenClaims, bool) {
	val := c.Locals(claimsKey)
	if val == nil {
		return nil, false
	}
	claims, ok := val.(*domain.TokenClaims)
	return claims, ok
}
