package auth

import (
	"errors"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/spec-kit/session-service/internal/domain"
)

func TestGate_Authorize(t *testing.T) {
	codec := newTestCodec(t, &fakeClock{t: time.Now()})
	gate := NewGate(codec)

	userToken, _, err := codec.Mint(uuid.New(), uuid.New(), []domain.Role{"user"}, domain.TokenAccess)
	if err != nil {
		t.Fatalf("Mint: %v", err)
	}
	adminToken, _, err := codec.Mint(uuid.New(), uuid.New(), []domain.Role{domain.RoleAdmin}, domain.TokenAccess)
	if err != nil {
		t.Fatalf("Mint: %v", err)
	}

	tests := []struct {
		name     string
		token    string
		required domain.Role
		want     Decision
	}{
		{"role matches ignoring case", userToken, domain.RoleUser, Allow},
		{"bearer prefix", "Bearer " + userToken, domain.RoleUser, Allow},
		{"role missing", adminToken, domain.RoleUser, Deny},
		{"admin allowed", adminToken, domain.RoleAdmin, Allow},
		{"invalid token", "garbage", domain.RoleUser, Deny},
		{"empty token", "", domain.RoleUser, Deny},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := gate.Authorize(tt.token, tt.required); got != tt.want {
				t.Fatalf("Authorize = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestGate_Require(t *testing.T) {
	codec := newTestCodec(t, &fakeClock{t: time.Now()})
	gate := NewGate(codec)

	identityID := uuid.New()
	token, _, err := codec.Mint(identityID, uuid.New(), []domain.Role{domain.RoleUser}, domain.TokenAccess)
	if err != nil {
		t.Fatalf("Mint: %v", err)
	}

	app := fiber.New(fiber.Config{ErrorHandler: func(c *fiber.Ctx, err error) error {
		if errors.Is(err, domain.ErrForbidden) {
			return c.SendStatus(fiber.StatusForbidden)
		}
		return c.SendStatus(fiber.StatusInternalServerError)
	}})
	app.Get("/user", gate.Require(domain.RoleUser), func(c *fiber.Ctx) error {
		claims, ok := ClaimsFromContext(c)
		if !ok || claims.IdentityID != identityID {
			return c.SendStatus(fiber.StatusTeapot)
		}
		return c.SendStatus(fiber.StatusOK)
	})
	app.Get("/admin", gate.Require(domain.RoleAdmin), func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	})

	tests := []struct {
		name   string
		path   string
		header string
		want   int
	}{
		{"allowed", "/user", "Bearer " + token, fiber.StatusOK},
		{"missing header", "/user", "", fiber.StatusForbidden},
		{"wrong role", "/admin", "Bearer " + token, fiber.StatusForbidden},
		{"bad token", "/user", "Bearer nope", fiber.StatusForbidden},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(fiber.MethodGet, tt.path, nil)
			if tt.header != "" {
				req.Header.Set(fiber.HeaderAuthorization, tt.header)
			}
			resp, err := app.Test(req)
			if err != nil {
				t.Fatalf("app.Test: %v", err)
			}
			if resp.StatusCode != tt.want {
				t.Fatalf("status = %d, want %d", resp.StatusCode, tt.want)
			}
		})
	}
}
