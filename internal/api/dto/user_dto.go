package dto

import (
	"time"

	"github.com/spec-kit/session-service/internal/domain"
)

// NewUser payload for registration.
type NewUser struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Nickname string `json:"nickname"`
}

// LoginRequest payload for login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// RefreshAuthRequest payload for token refresh.
type RefreshAuthRequest struct {
	RefreshToken string `json:"refreshToken"`
}

// TokenResponse is returned by register, login and token.
type TokenResponse struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
	ExpiresIn    int64  `json:"expiresIn"`
}

// NewTokenResponse converts a domain pair.
func NewTokenResponse(pair *domain.TokenPair) TokenResponse {
	return TokenResponse{
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		ExpiresIn:    pair.ExpiresIn,
	}
}

// timestampLayout has second precision and no zone; the value is always UTC.
const timestampLayout = "2006-01-02T15:04:05"

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Message      string `json:"message"`
	Status       int    `json:"status"`
	Timestamp    string `json:"timestamp"`
	InternalCode string `json:"internalCode"`
}

// NewErrorResponse stamps the body with the current time.
func NewErrorResponse(message string, status int, code string, now time.Time) ErrorResponse {
	return ErrorResponse{
		Message:      message,
		Status:       status,
		Timestamp:    now.UTC().Format(timestampLayout),
		InternalCode: code,
	}
}
