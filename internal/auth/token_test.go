package auth

import (
	"errors"
	"strings"
	"testing"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/spec-kit/session-service/internal/config"
	"github.com/spec-kit/session-service/internal/domain"
)

type fakeClock struct{ t time.Time }

func (f *fakeClock) Now() time.Time          { return f.t }
func (f *fakeClock) Advance(d time.Duration) { f.t = f.t.Add(d) }

func testAuthConfig() config.AuthConfig {
	return config.AuthConfig{
		Secret:     "test-secret",
		AccessTTL:  60 * time.Second,
		RefreshTTL: 7 * 24 * time.Hour,
	}
}

func newTestCodec(t *testing.T, clock *fakeClock) *ClaimCodec {
	t.Helper()
	codec, err := NewClaimCodec(testAuthConfig(), WithClock(clock.Now))
	if err != nil {
		t.Fatalf("NewClaimCodec: %v", err)
	}
	return codec
}

func TestNewClaimCodec_RejectsBadConfig(t *testing.T) {
	tests := []struct {
		name string
		mut  func(*config.AuthConfig)
	}{
		{"empty secret", func(c *config.AuthConfig) { c.Secret = "" }},
		{"zero access ttl", func(c *config.AuthConfig) { c.AccessTTL = 0 }},
		{"negative refresh ttl", func(c *config.AuthConfig) { c.RefreshTTL = -time.Hour }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := testAuthConfig()
			tt.mut(&cfg)
			if _, err := NewClaimCodec(cfg); !errors.Is(err, ErrCodecConfig) {
				t.Fatalf("want ErrCodecConfig, got %v", err)
			}
		})
	}
}

func TestClaimCodec_RoundTrip(t *testing.T) {
	clock := &fakeClock{t: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}
	codec := newTestCodec(t, clock)

	identityID, sessionID := uuid.New(), uuid.New()
	roles := []domain.Role{domain.RoleUser, domain.RoleAdmin}

	for _, kind := range []domain.TokenKind{domain.TokenAccess, domain.TokenRefresh} {
		t.Run(kind.String(), func(t *testing.T) {
			token, exp, err := codec.Mint(identityID, sessionID, roles, kind)
			if err != nil {
				t.Fatalf("Mint: %v", err)
			}
			if strings.Count(token, ".") != 2 {
				t.Fatalf("expected three-part token, got %q", token)
			}

			claims, err := codec.Verify(token)
			if err != nil {
				t.Fatalf("Verify: %v", err)
			}
			if claims.IdentityID != identityID || claims.SessionID != sessionID {
				t.Errorf("ids mismatch: got %s/%s", claims.IdentityID, claims.SessionID)
			}
			if len(claims.Roles) != len(roles) || claims.Roles[0] != roles[0] || claims.Roles[1] != roles[1] {
				t.Errorf("roles = %v, want %v", claims.Roles, roles)
			}
			if !claims.ExpiresAt.Equal(exp) {
				t.Errorf("ExpiresAt = %s, want %s", claims.ExpiresAt, exp)
			}
		})
	}
}

func TestClaimCodec_TTLPerKind(t *testing.T) {
	clock := &fakeClock{t: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}
	codec := newTestCodec(t, clock)

	_, accessExp, err := codec.Mint(uuid.New(), uuid.New(), nil, domain.TokenAccess)
	if err != nil {
		t.Fatalf("Mint access: %v", err)
	}
	_, refreshExp, err := codec.Mint(uuid.New(), uuid.New(), nil, domain.TokenRefresh)
	if err != nil {
		t.Fatalf("Mint refresh: %v", err)
	}
	if got := accessExp.Sub(clock.Now()); got != 60*time.Second {
		t.Errorf("access ttl = %s", got)
	}
	if got := refreshExp.Sub(clock.Now()); got != 7*24*time.Hour {
		t.Errorf("refresh ttl = %s", got)
	}
}

func TestClaimCodec_ExpiredAccessToken(t *testing.T) {
	clock := &fakeClock{t: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}
	codec := newTestCodec(t, clock)

	token, _, err := codec.Mint(uuid.New(), uuid.New(), []domain.Role{domain.RoleUser}, domain.TokenAccess)
	if err != nil {
		t.Fatalf("Mint: %v", err)
	}

	clock.Advance(59 * time.Second)
	if _, err := codec.Verify(token); err != nil {
		t.Fatalf("Verify before expiry: %v", err)
	}

	clock.Advance(2 * time.Second)
	if _, err := codec.Verify(token); !errors.Is(err, domain.ErrInvalidToken) {
		t.Fatalf("want ErrInvalidToken after expiry, got %v", err)
	}
}

func TestClaimCodec_BearerPrefix(t *testing.T) {
	codec := newTestCodec(t, &fakeClock{t: time.Now()})

	token, _, err := codec.Mint(uuid.New(), uuid.New(), []domain.Role{domain.RoleUser}, domain.TokenAccess)
	if err != nil {
		t.Fatalf("Mint: %v", err)
	}
	if _, err := codec.Verify("Bearer " + token); err != nil {
		t.Fatalf("Verify with prefix: %v", err)
	}
}

func TestClaimCodec_RejectsTampering(t *testing.T) {
	clock := &fakeClock{t: time.Now()}
	codec := newTestCodec(t, clock)

	token, _, err := codec.Mint(uuid.New(), uuid.New(), []domain.Role{domain.RoleUser}, domain.TokenAccess)
	if err != nil {
		t.Fatalf("Mint: %v", err)
	}

	otherCfg := testAuthConfig()
	otherCfg.Secret = "another-secret"
	other, err := NewClaimCodec(otherCfg, WithClock(clock.Now))
	if err != nil {
		t.Fatalf("NewClaimCodec: %v", err)
	}
	foreign, _, err := other.Mint(uuid.New(), uuid.New(), nil, domain.TokenAccess)
	if err != nil {
		t.Fatalf("Mint: %v", err)
	}

	parts := strings.Split(token, ".")
	tampered := parts[0] + "." + parts[1] + "." + strings.Repeat("A", len(parts[2]))

	none := jwt.NewWithClaims(jwt.SigningMethodNone, &Claims{
		UserID:       uuid.NewString(),
		ConnectionID: uuid.NewString(),
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    Issuer,
			Subject:   Subject,
			ExpiresAt: jwt.NewNumericDate(clock.Now().Add(time.Hour)),
		},
	})
	unsigned, err := none.SignedString(jwt.UnsafeAllowNoneSignatureType)
	if err != nil {
		t.Fatalf("SignedString none: %v", err)
	}

	for name, tok := range map[string]string{
		"empty":         "",
		"garbage":       "not-a-token",
		"bad signature": tampered,
		"other secret":  foreign,
		"alg none":      unsigned,
	} {
		t.Run(name, func(t *testing.T) {
			if _, err := codec.Verify(tok); !errors.Is(err, domain.ErrInvalidToken) {
				t.Fatalf("want ErrInvalidToken, got %v", err)
			}
		})
	}
}

func TestClaimCodec_RejectsForeignIssuer(t *testing.T) {
	clock := &fakeClock{t: time.Now()}
	codec := newTestCodec(t, clock)

	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, &Claims{
		UserID:       uuid.NewString(),
		ConnectionID: uuid.NewString(),
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "someone-else",
			Subject:   Subject,
			ExpiresAt: jwt.NewNumericDate(clock.Now().Add(time.Hour)),
		},
	})
	signed, err := tok.SignedString([]byte(testAuthConfig().Secret))
	if err != nil {
		t.Fatalf("SignedString: %v", err)
	}
	if _, err := codec.Verify(signed); !errors.Is(err, domain.ErrInvalidToken) {
		t.Fatalf("want ErrInvalidToken, got %v", err)
	}
}
