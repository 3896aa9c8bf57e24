package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/session-service/internal/auth"
	"github.com/spec-kit/session-service/internal/domain"
)

const uniqueViolation = "23505"

// CredentialStore persists identities and checks submitted credentials.
type CredentialStore interface {
	CreateIdentity(ctx context.Context, email, nickname, secret string) (uuid.UUID, error)
	// VerifyCredentials returns ErrInvalidCredentials for an unknown email and
	// for a wrong secret alike.
	VerifyCredentials(ctx context.Context, email, secret string) (uuid.UUID, domain.Role, error)
	RoleOf(ctx context.Context, identityID uuid.UUID) (domain.Role, error)
}

type userRepository struct {
	pool   *pgxpool.Pool
	hasher auth.PasswordHasher
}

// NewUserRepository returns a Postgres-backed CredentialStore.
func NewUserRepository(pool *pgxpool.Pool, hasher auth.PasswordHasher) CredentialStore {
	return &userRepository{pool: pool, hasher: hasher}
}

func (r *userRepository) CreateIdentity(ctx context.Context, email, nickname, secret string) (uuid.UUID, error) {
	hash, err := r.hasher.Hash(secret)
	if err != nil {
		return uuid.Nil, fmt.Errorf("hash password: %w", err)
	}

	const query = `
        INSERT INTO users (id, email, nickname, password_hash, role_id)
        VALUES ($1, $2, $3, $4, (SELECT id FROM roles WHERE description = $5))`

	id := uuid.New()
	if _, err := r.pool.Exec(ctx, query, id, email, nickname, hash, string(domain.DefaultRole)); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return uuid.Nil, domain.ErrEmailTaken
		}
		return uuid.Nil, fmt.Errorf("insert user: %w", err)
	}
	return id, nil
}

func (r *userRepository) VerifyCredentials(ctx context.Context, email, secret string) (uuid.UUID, domain.Role, error) {
	const query = `
        SELECT u.id, u.password_hash, r.description
        FROM users u JOIN roles r ON r.id = u.role_id
        WHERE u.email = $1`

	var (
		id          uuid.UUID
		hash        string
		description string
	)
	if err := r.pool.QueryRow(ctx, query, email).Scan(&id, &hash, &description); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return uuid.Nil, "", domain.ErrInvalidCredentials
		}
		return uuid.Nil, "", fmt.Errorf("load credentials: %w", err)
	}

	if err := r.hasher.Compare(hash, secret); err != nil {
		return uuid.Nil, "", domain.ErrInvalidCredentials
	}

	role, err := parseStoredRole(description)
	if err != nil {
		return uuid.Nil, "", err
	}
	return id, role, nil
}

func (r *userRepository) RoleOf(ctx context.Context, identityID uuid.UUID) (domain.Role, error) {
	const query = `
        SELECT r.description
        FROM users u JOIN roles r ON r.id = u.role_id
        WHERE u.id = $1`

	var description string
	if err := r.pool.QueryRow(ctx, query, identityID).Scan(&description); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", domain.ErrIdentityNotFound
		}
		return "", fmt.Errorf("load role: %w", err)
	}
	return parseStoredRole(description)
}

func parseStoredRole(description string) (domain.Role, error) {
	role, ok := domain.ParseRole(description)
	if !ok {
		return "", fmt.Errorf("unknown role %q", strings.TrimSpace(description))
	}
	return role, nil
}
