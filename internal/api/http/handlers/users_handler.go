package handlers

import (
	"context"
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/session-service/internal/api/dto"
	"github.com/spec-kit/session-service/internal/domain"
	apperrors "github.com/spec-kit/session-service/pkg/util"
)

// SessionFlows is the part of the session service the handlers call.
type SessionFlows interface {
	Register(ctx context.Context, email, password, nickname string) (*domain.TokenPair, error)
	Login(ctx context.Context, email, password string) (*domain.TokenPair, error)
	Refresh(ctx context.Context, refreshToken string) (*domain.TokenPair, error)
}

// UsersHandler exposes the register, login and token endpoints.
type UsersHandler struct {
	sessions SessionFlows
}

// NewUsersHandler constructs handler.
func NewUsersHandler(sessions SessionFlows) *UsersHandler {
	return &UsersHandler{sessions: sessions}
}

// Register handles POST /api/v1/users/register.
func (h *UsersHandler) Register(c *fiber.Ctx) error {
	var req dto.NewUser
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload")
	}
	if req.Email == "" || req.Password == "" || req.Nickname == "" {
		return apperrors.NewValidationError("email, password and nickname are required")
	}

	pair, err := h.sessions.Register(c.UserContext(), req.Email, req.Password, req.Nickname)
	if err != nil {
		return err
	}
	return c.Status(http.StatusOK).JSON(dto.NewTokenResponse(pair))
}

// Login handles POST /api/v1/users/login.
func (h *UsersHandler) Login(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload")
	}
	if req.Email == "" || req.Password == "" {
		return apperrors.NewValidationError("email and password are required")
	}

	pair, err := h.sessions.Login(c.UserContext(), req.Email, req.Password)
	if err != nil {
		return err
	}
	return c.JSON(dto.NewTokenResponse(pair))
}

// Token handles POST /api/v1/users/token.
func (h *UsersHandler) Token(c *fiber.Ctx) error {
	var req dto.RefreshAuthRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload")
	}
	if req.RefreshToken == "" {
		return apperrors.NewValidationError("refreshToken is required")
	}

	pair, err := h.sessions.Refresh(c.UserContext(), req.RefreshToken)
	if err != nil {
		return err
	}
	return c.JSON(dto.NewTokenResponse(pair))
}
