package repository

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/spec-kit/session-service/internal/domain"
)

const (
	fieldIdentity = "identity_id"
	fieldOpenedAt = "opened_at"
	fieldClosedAt = "closed_at"
)

// All keys of one identity share the {identity} hash tag, so the script only
// touches a single cluster slot.
//
// KEYS[1] active session pointer
// KEYS[2] set of the identity's session ids
// KEYS[3] hash of the new session
// ARGV[1] new session id, ARGV[2] identity id, ARGV[3] now (unix nanos)
// ARGV[4] session hash key prefix, ARGV[5] retention of closed sessions in ms (0 keeps them)
const openSessionScript = `
local prev = redis.call("GET", KEYS[1])
local closed = 0
if prev then
  local prevKey = ARGV[4] .. prev
  if redis.call("EXISTS", prevKey) == 1 and redis.call("HEXISTS", prevKey, "closed_at") == 0 then
    redis.call("HSET", prevKey, "closed_at", ARGV[3])
    closed = 1
  end
  local retention = tonumber(ARGV[5])
  if retention and retention > 0 then
    redis.call("PEXPIRE", prevKey, retention)
  end
end
redis.call("HSET", KEYS[3], "identity_id", ARGV[2], "opened_at", ARGV[3])
redis.call("SET", KEYS[1], ARGV[1])
redis.call("SADD", KEYS[2], ARGV[1])
return closed
`

var openSessionLua = redis.NewScript(openSessionScript)

type redisSessionRepository struct {
	client    redis.UniversalClient
	prefix    string
	retention time.Duration
	now       func() time.Time
}

// NewRedisSessionRepository returns a Redis-backed SessionLedger. Closed
// sessions expire after retention; zero keeps them forever.
func NewRedisSessionRepository(client redis.UniversalClient, prefix string, retention time.Duration) SessionLedger {
	if prefix == "" {
		prefix = "sess"
	}
	return &redisSessionRepository{client: client, prefix: prefix, retention: retention, now: time.Now}
}

func (r *redisSessionRepository) identityPrefix(identityID uuid.UUID) string {
	return fmt.Sprintf("%s:{%s}:", r.prefix, identityID)
}

func (r *redisSessionRepository) activeKey(identityID uuid.UUID) string {
	return r.identityPrefix(identityID) + "active"
}

func (r *redisSessionRepository) setKey(identityID uuid.UUID) string {
	return r.identityPrefix(identityID) + "sessions"
}

func (r *redisSessionRepository) sessionKeyPrefix(identityID uuid.UUID) string {
	return r.identityPrefix(identityID) + "session:"
}

func (r *redisSessionRepository) sessionKey(identityID, sessionID uuid.UUID) string {
	return r.sessionKeyPrefix(identityID) + sessionID.String()
}

func (r *redisSessionRepository) OpenSession(ctx context.Context, identityID uuid.UUID) (uuid.UUID, error) {
	id := uuid.New()
	now := r.now().UnixNano()

	keys := []string{r.activeKey(identityID), r.setKey(identityID), r.sessionKey(identityID, id)}
	err := openSessionLua.Run(ctx, r.client, keys,
		id.String(),
		identityID.String(),
		strconv.FormatInt(now, 10),
		r.sessionKeyPrefix(identityID),
		r.retention.Milliseconds(),
	).Err()
	if err != nil {
		return uuid.Nil, fmt.Errorf("open session: %w", err)
	}
	return id, nil
}

func (r *redisSessionRepository) IsLive(ctx context.Context, identityID, sessionID uuid.UUID) (bool, error) {
	fields, err := r.client.HGetAll(ctx, r.sessionKey(identityID, sessionID)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return false, nil
		}
		return false, fmt.Errorf("load session: %w", err)
	}
	if len(fields) == 0 || fields[fieldIdentity] != identityID.String() {
		return false, nil
	}
	_, closed := fields[fieldClosedAt]
	return !closed, nil
}

func (r *redisSessionRepository) Sessions(ctx context.Context, identityID uuid.UUID) ([]domain.Session, error) {
	ids, err := r.client.SMembers(ctx, r.setKey(identityID)).Result()
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}

	cmds := make([]*redis.MapStringStringCmd, len(ids))
	pipe := r.client.Pipeline()
	for i, raw := range ids {
		cmds[i] = pipe.HGetAll(ctx, r.sessionKeyPrefix(identityID)+raw)
	}
	if len(ids) > 0 {
		if _, err := pipe.Exec(ctx); err != nil && !errors.Is(err, redis.Nil) {
			return nil, fmt.Errorf("load sessions: %w", err)
		}
	}

	sessions := make([]domain.Session, 0, len(ids))
	for i, raw := range ids {
		fields, err := cmds[i].Result()
		if err != nil || len(fields) == 0 {
			// expired by retention
			continue
		}
		s, err := decodeSession(raw, fields)
		if err != nil {
			return nil, err
		}
		sessions = append(sessions, s)
	}

	sort.Slice(sessions, func(i, j int) bool {
		if !sessions[i].OpenedAt.Equal(sessions[j].OpenedAt) {
			return sessions[i].OpenedAt.After(sessions[j].OpenedAt)
		}
		return sessions[i].Active() && !sessions[j].Active()
	})
	return sessions, nil
}

func decodeSession(rawID string, fields map[string]string) (domain.Session, error) {
	id, err := uuid.Parse(rawID)
	if err != nil {
		return domain.Session{}, fmt.Errorf("session id %q: %w", rawID, err)
	}
	identityID, err := uuid.Parse(fields[fieldIdentity])
	if err != nil {
		return domain.Session{}, fmt.Errorf("session %s identity: %w", rawID, err)
	}
	openedAt, err := parseNanos(fields[fieldOpenedAt])
	if err != nil {
		return domain.Session{}, fmt.Errorf("session %s opened_at: %w", rawID, err)
	}

	s := domain.Session{ID: id, IdentityID: identityID, OpenedAt: openedAt}
	if raw, ok := fields[fieldClosedAt]; ok {
		closedAt, err := parseNanos(raw)
		if err != nil {
			return domain.Session{}, fmt.Errorf("session %s closed_at: %w", rawID, err)
		}
		s.ClosedAt = &closedAt
	}
	return s, nil
}

func parseNanos(raw string) (time.Time, error) {
	n, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return time.Time{}, err
	}
	return time.Unix(0, n).UTC(), nil
}
