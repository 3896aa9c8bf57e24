package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/session-service/internal/domain"
)

// SessionLedger tracks session records and keeps at most one open session
// per identity.
type SessionLedger interface {
	// OpenSession closes every open session of the identity and opens a new
	// one as a single atomic step.
	OpenSession(ctx context.Context, identityID uuid.UUID) (uuid.UUID, error)
	// IsLive reports whether sessionID belongs to identityID and is still open.
	// Unknown sessions are not an error.
	IsLive(ctx context.Context, identityID, sessionID uuid.UUID) (bool, error)
	// Sessions lists all sessions of the identity, newest first.
	Sessions(ctx context.Context, identityID uuid.UUID) ([]domain.Session, error)
}

type sessionRepository struct {
	pool *pgxpool.Pool
	now  func() time.Time
}

// NewSessionRepository returns a Postgres-backed SessionLedger.
func NewSessionRepository(pool *pgxpool.Pool) SessionLedger {
	return &sessionRepository{pool: pool, now: time.Now}
}

// OpenSession locks the identity row so concurrent opens for the same
// identity run one after another.
func (r *sessionRepository) OpenSession(ctx context.Context, identityID uuid.UUID) (uuid.UUID, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return uuid.Nil, fmt.Errorf("begin open session: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var locked uuid.UUID
	err = tx.QueryRow(ctx, `SELECT id FROM users WHERE id = $1 FOR UPDATE`, identityID).Scan(&locked)
	if errors.Is(err, pgx.ErrNoRows) {
		return uuid.Nil, fmt.Errorf("open session for %s: %w", identityID, domain.ErrIdentityNotFound)
	}
	if err != nil {
		return uuid.Nil, fmt.Errorf("lock user: %w", err)
	}

	now := r.now().UTC()

	if _, err := tx.Exec(ctx, `
        UPDATE sessions SET closed_at = $2
        WHERE user_id = $1 AND closed_at IS NULL`, identityID, now); err != nil {
		return uuid.Nil, fmt.Errorf("close sessions: %w", err)
	}

	id := uuid.New()
	if _, err := tx.Exec(ctx, `
        INSERT INTO sessions (id, user_id, opened_at, closed_at)
        VALUES ($1, $2, $3, NULL)`, id, identityID, now); err != nil {
		return uuid.Nil, fmt.Errorf("insert session: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return uuid.Nil, fmt.Errorf("commit open session: %w", err)
	}
	return id, nil
}

func (r *sessionRepository) IsLive(ctx context.Context, identityID, sessionID uuid.UUID) (bool, error) {
	const query = `
        SELECT closed_at IS NULL
        FROM sessions WHERE id = $1 AND user_id = $2`

	var live bool
	if err := r.pool.QueryRow(ctx, query, sessionID, identityID).Scan(&live); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return false, nil
		}
		return false, fmt.Errorf("load session: %w", err)
	}
	return live, nil
}

func (r *sessionRepository) Sessions(ctx context.Context, identityID uuid.UUID) ([]domain.Session, error) {
	const query = `
        SELECT id, user_id, opened_at, closed_at
        FROM sessions WHERE user_id = $1
        ORDER BY opened_at DESC, closed_at IS NULL DESC`

	rows, err := r.pool.Query(ctx, query, identityID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var sessions []domain.Session
	for rows.Next() {
		var s domain.Session
		if err := rows.Scan(&s.ID, &s.IdentityID, &s.OpenedAt, &s.ClosedAt); err != nil {
			return nil, err
		}
		sessions = append(sessions, s)
	}
	return sessions, rows.Err()
}
