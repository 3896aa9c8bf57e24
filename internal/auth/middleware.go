package auth

import "github.com/spec-kit/session-service/internal/domain"

// Decision is the outcome of an authorization check.
type Decision int

const (
	Deny Decision = iota
	Allow
)

// TokenVerifier verifies bearer tokens.
type TokenVerifier interface {
	Verify(token string) (*domain.TokenClaims, error)
}

// Gate authorizes requests from the signed claims alone. It never consults
// the session ledger, so an access token stays usable until it expires.
type Gate struct {
	tokens TokenVerifier
}

// NewGate constructs a gate.
func NewGate(tokens TokenVerifier) *Gate {
	return &Gate{tokens: tokens}
}

// Authorize allows the token only if it verifies and carries required.
func (g *Gate) Authorize(token string, required domain.Role) Decision {
	if _, ok := g.authorize(token, required); ok {
		return Allow
	}
	return Deny
}

func (g *Gate) authorize(token string, required domain.Role) (*domain.TokenClaims, bool) {
	claims, err := g.tokens.Verify(token)
	if err != nil {
		return nil, false
	}
	if !claims.HasRole(required) {
		return nil, false
	}
	return claims, true
}
