package domain

import (
	"time"

	"github.com/google/uuid"
)

// TokenKind distinguishes the two tokens minted per session.
type TokenKind int

const (
	TokenAccess TokenKind = iota
	TokenRefresh
)

func (k TokenKind) String() string {
	switch k {
	case TokenAccess:
		return "access"
	case TokenRefresh:
		return "refresh"
	default:
		return "unknown"
	}
}

// TokenClaims is the verified content of a token.
type TokenClaims struct {
	IdentityID uuid.UUID
	SessionID  uuid.UUID
	Roles      []Role
	ExpiresAt  time.Time
}

// HasRole reports whether the claims carry role, ignoring case.
func (c *TokenClaims) HasRole(role Role) bool {
	if c == nil {
		return false
	}
	for _, r := range c.Roles {
		if r.Is(role) {
			return true
		}
	}
	return false
}

// TokenPair is returned by every session-opening flow.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
	ExpiresIn    int64
}
