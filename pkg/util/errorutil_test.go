package util

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/spec-kit/session-service/internal/domain"
)

func TestToDomainError(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		code   string
		status int
	}{
		{"email taken", domain.ErrEmailTaken, CodeEmailTaken, http.StatusBadRequest},
		{"invalid credentials", domain.ErrInvalidCredentials, CodeInvalidCredentials, http.StatusBadRequest},
		{"wrapped invalid token", fmt.Errorf("%w: signature", domain.ErrInvalidToken), CodeInvalidToken, http.StatusUnauthorized},
		{"expired token", domain.ErrExpiredToken, CodeExpiredToken, http.StatusForbidden},
		{"identity not found", fmt.Errorf("open: %w", domain.ErrIdentityNotFound), CodeIdentityNotFound, http.StatusForbidden},
		{"forbidden", domain.ErrForbidden, CodeForbidden, http.StatusForbidden},
		{"validation", NewValidationError("email required"), CodeValidation, http.StatusBadRequest},
		{"internal", errors.New("connection reset by peer"), CodeInternal, http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			de := ToDomainError(tt.err)
			if de.Code != tt.code || de.HTTPStatus != tt.status {
				t.Fatalf("got %s/%d, want %s/%d", de.Code, de.HTTPStatus, tt.code, tt.status)
			}
		})
	}
}

func TestToDomainError_InternalHidesCause(t *testing.T) {
	cause := errors.New("password authentication failed for user postgres")
	de := ToDomainError(cause)
	if de.Message == cause.Error() {
		t.Fatal("internal message leaks cause")
	}
	if !errors.Is(de, cause) {
		t.Fatal("cause should stay reachable for logging")
	}
}

func TestToDomainError_Nil(t *testing.T) {
	if ToDomainError(nil) != nil {
		t.Fatal("expected nil")
	}
}
