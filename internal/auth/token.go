package auth

import (
	"errors"
	"fmt"
	"strings"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/spec-kit/session-service/internal/config"
	"github.com/spec-kit/session-service/internal/domain"
)

const (
	// Issuer is the fixed iss claim.
	Issuer = "RLBackend"
	// Subject is the fixed sub claim identifying the client audience.
	Subject = "RLClient"

	bearerPrefix = "Bearer "
)

// ErrCodecConfig is returned by NewClaimCodec for unusable configuration.
var ErrCodecConfig = errors.New("invalid token codec configuration")

// Claims describes the JWT payload.
type Claims struct {
	UserID       string   `json:"userId"`
	ConnectionID string   `json:"connectionId"`
	Roles        []string `json:"roles"`
	jwt.RegisteredClaims
}

// ClaimCodec mints and verifies HS256 session tokens. It holds no mutable state.
type ClaimCodec struct {
	secret     []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
	now        func() time.Time
	parser     *jwt.Parser
}

// CodecOption customises a ClaimCodec.
type CodecOption func(*ClaimCodec)

// WithClock replaces the time source used for minting and expiry checks.
func WithClock(now func() time.Time) CodecOption {
	return func(c *ClaimCodec) {
		if now != nil {
			c.now = now
		}
	}
}

// NewClaimCodec builds a codec from auth configuration.
func NewClaimCodec(cfg config.AuthConfig, opts ...CodecOption) (*ClaimCodec, error) {
	if cfg.Secret == "" {
		return nil, fmt.Errorf("%w: empty secret", ErrCodecConfig)
	}
	if cfg.AccessTTL <= 0 || cfg.RefreshTTL <= 0 {
		return nil, fmt.Errorf("%w: token lifetimes must be positive", ErrCodecConfig)
	}

	c := &ClaimCodec{
		secret:     []byte(cfg.Secret),
		accessTTL:  cfg.AccessTTL,
		refreshTTL: cfg.RefreshTTL,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	c.parser = jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(Issuer),
		jwt.WithSubject(Subject),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(c.now),
	)
	return c, nil
}

// AccessTTL returns the lifetime of access tokens.
func (c *ClaimCodec) AccessTTL() time.Duration {
	return c.accessTTL
}

// Mint builds and signs a token bound to the identity and session.
func (c *ClaimCodec) Mint(identityID, sessionID uuid.UUID, roles []domain.Role, kind domain.TokenKind) (string, time.Time, error) {
	var ttl time.Duration
	switch kind {
	case domain.TokenAccess:
		ttl = c.accessTTL
	case domain.TokenRefresh:
		ttl = c.refreshTTL
	default:
		return "", time.Time{}, fmt.Errorf("unknown token kind %d", kind)
	}

	names := make([]string, len(roles))
	for i, r := range roles {
		names[i] = string(r)
	}

	claims := &Claims{
		UserID:       identityID.String(),
		ConnectionID: sessionID.String(),
		Roles:        names,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    Issuer,
			Subject:   Subject,
			ExpiresAt: jwt.NewNumericDate(c.now().Add(ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(c.secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return tokenString, claims.ExpiresAt.Time, nil
}

// Verify checks signature, issuer, subject and expiry and returns the bound claims.
// An optional "Bearer " prefix is ignored. Session liveness is not checked here.
func (c *ClaimCodec) Verify(tokenStr string) (*domain.TokenClaims, error) {
	tokenStr = strings.TrimPrefix(strings.TrimSpace(tokenStr), bearerPrefix)
	if tokenStr == "" {
		return nil, domain.ErrInvalidToken
	}

	parsed, err := c.parser.ParseWithClaims(tokenStr, &Claims{}, func(*jwt.Token) (interface{}, error) {
		return c.secret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidToken, err)
	}

	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid {
		return nil, domain.ErrInvalidToken
	}

	identityID, err := uuid.Parse(claims.UserID)
	if err != nil {
		return nil, fmt.Errorf("%w: userId: %v", domain.ErrInvalidToken, err)
	}
	sessionID, err := uuid.Parse(claims.ConnectionID)
	if err != nil {
		return nil, fmt.Errorf("%w: connectionId: %v", domain.ErrInvalidToken, err)
	}

	roles := make([]domain.Role, len(claims.Roles))
	for i, r := range claims.Roles {
		roles[i] = domain.Role(r)
	}

	return &domain.TokenClaims{
		IdentityID: identityID,
		SessionID:  sessionID,
		Roles:      roles,
		ExpiresAt:  claims.ExpiresAt.Time,
	}, nil
}
