package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/session-service/internal/auth"
	"github.com/spec-kit/session-service/internal/domain"
)

const indexGreeting = "Hello World with Security!"

// IndexHandler serves the protected greeting.
type IndexHandler struct{}

// NewIndexHandler constructs handler.
func NewIndexHandler() *IndexHandler {
	return &IndexHandler{}
}

// Index handles GET /api/v1/index. It must sit behind Gate.Require.
func (h *IndexHandler) Index(c *fiber.Ctx) error {
	if _, ok := auth.ClaimsFromContext(c); !ok {
		return domain.ErrForbidden
	}
	return c.SendString(indexGreeting)
}
