package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spec-kit/session-service/internal/auth"
	"github.com/spec-kit/session-service/internal/domain"
	"github.com/spec-kit/session-service/internal/events"
	"github.com/spec-kit/session-service/internal/observability"
	"github.com/spec-kit/session-service/internal/repository"
	apperrors "github.com/spec-kit/session-service/pkg/util"
)

const (
	flowRegister = "register"
	flowLogin    = "login"
	flowRefresh  = "refresh"
)

// SessionService runs the register, login and refresh flows. Every flow ends
// by opening a new session, which supersedes the identity's previous one.
type SessionService struct {
	credentials repository.CredentialStore
	ledger      repository.SessionLedger
	tokens      *auth.ClaimCodec
	dispatcher  events.Dispatcher
	metrics     *observability.Metrics
	logger      *zap.Logger
}

// SessionDependencies encapsulates collaborators for the session service.
// Dispatcher, Metrics and Logger are optional.
type SessionDependencies struct {
	Credentials repository.CredentialStore
	Ledger      repository.SessionLedger
	Tokens      *auth.ClaimCodec
	Dispatcher  events.Dispatcher
	Metrics     *observability.Metrics
	Logger      *zap.Logger
}

// NewSessionService builds the service.
func NewSessionService(deps SessionDependencies) *SessionService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SessionService{
		credentials: deps.Credentials,
		ledger:      deps.Ledger,
		tokens:      deps.Tokens,
		dispatcher:  deps.Dispatcher,
		metrics:     deps.Metrics,
		logger:      logger,
	}
}

// Register creates an identity with the default role and opens its first session.
// The identity is kept even if opening the session fails afterwards.
func (s *SessionService) Register(ctx context.Context, email, password, nickname string) (pair *domain.TokenPair, err error) {
	defer func() { s.record(flowRegister, err) }()

	email = normalizeEmail(email)
	nickname = strings.TrimSpace(nickname)
	if email == "" || password == "" || nickname == "" {
		return nil, fmt.Errorf("%w: email, password and nickname are required", domain.ErrValidation)
	}

	identityID, err := s.credentials.CreateIdentity(ctx, email, nickname, password)
	if err != nil {
		return nil, err
	}

	sessionID, err := s.ledger.OpenSession(ctx, identityID)
	if err != nil {
		s.logger.Warn("identity created without session",
			zap.String("identity_id", identityID.String()), zap.Error(err))
		return nil, err
	}

	pair, err = s.issue(identityID, sessionID, domain.DefaultRole)
	if err != nil {
		return nil, err
	}

	s.publish(ctx, events.NewEvent(events.EventIdentityRegistered, identityID, sessionID, nil))
	return pair, nil
}

// Login checks credentials and opens a session carrying the identity's current role.
func (s *SessionService) Login(ctx context.Context, email, password string) (pair *domain.TokenPair, err error) {
	defer func() { s.record(flowLogin, err) }()

	email = normalizeEmail(email)
	if email == "" || password == "" {
		return nil, fmt.Errorf("%w: email and password are required", domain.ErrValidation)
	}

	identityID, role, err := s.credentials.VerifyCredentials(ctx, email, password)
	if err != nil {
		return nil, err
	}

	sessionID, err := s.ledger.OpenSession(ctx, identityID)
	if err != nil {
		return nil, err
	}

	pair, err = s.issue(identityID, sessionID, role)
	if err != nil {
		return nil, err
	}

	s.publish(ctx, events.NewEvent(events.EventSessionOpened, identityID, sessionID, nil))
	return pair, nil
}

// Refresh exchanges a token whose session is still open for a new pair bound
// to a new session. The presented session is closed, so each refresh token
// works once.
func (s *SessionService) Refresh(ctx context.Context, refreshToken string) (pair *domain.TokenPair, err error) {
	defer func() { s.record(flowRefresh, err) }()

	claims, err := s.tokens.Verify(refreshToken)
	if err != nil {
		return nil, err
	}

	live, err := s.ledger.IsLive(ctx, claims.IdentityID, claims.SessionID)
	if err != nil {
		return nil, err
	}
	if !live {
		return nil, domain.ErrExpiredToken
	}

	role, err := s.credentials.RoleOf(ctx, claims.IdentityID)
	if err != nil {
		return nil, err
	}

	sessionID, err := s.ledger.OpenSession(ctx, claims.IdentityID)
	if err != nil {
		return nil, err
	}

	pair, err = s.issue(claims.IdentityID, sessionID, role)
	if err != nil {
		return nil, err
	}

	s.publish(ctx, events.NewEvent(events.EventSessionRefreshed, claims.IdentityID, sessionID,
		events.SessionRefreshedPayload{PreviousSessionID: claims.SessionID}))
	return pair, nil
}

func (s *SessionService) issue(identityID, sessionID uuid.UUID, role domain.Role) (*domain.TokenPair, error) {
	roles := []domain.Role{role}

	access, _, err := s.tokens.Mint(identityID, sessionID, roles, domain.TokenAccess)
	if err != nil {
		return nil, fmt.Errorf("mint access token: %w", err)
	}
	refresh, _, err := s.tokens.Mint(identityID, sessionID, roles, domain.TokenRefresh)
	if err != nil {
		return nil, fmt.Errorf("mint refresh token: %w", err)
	}

	return &domain.TokenPair{
		AccessToken:  access,
		RefreshToken: refresh,
		ExpiresIn:    int64(s.tokens.AccessTTL() / time.Second),
	}, nil
}

func (s *SessionService) publish(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	if err := s.dispatcher.Publish(ctx, event); err != nil {
		s.logger.Warn("event handler failed",
			zap.String("event_type", string(event.Type)), zap.Error(err))
	}
}

func (s *SessionService) record(flow string, err error) {
	outcome := "ok"
	if err != nil {
		outcome = apperrors.ToDomainError(err).Code
	}
	s.metrics.RecordFlow(flow, outcome)
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
