package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"realmbridge/internal/directory/models"
	id "realmbridge/pkg/domain"
)

const (
	sessionKeyPrefix       = "session:"
	userSessionKeyPrefix   = "user_sessions:"
	tenantSessionKeyPrefix = "tenant_sessions:"

	// maxSessionsPerUser caps how many sessions ListByUser loads.
	maxSessionsPerUser = 100

	defaultSessionTTL = 24 * time.Hour
)

type sessionJSON struct {
	ID        string `json:"id"`
	UserID    string `json:"user_id"`
	TenantKey string `json:"tenant_key"`
	CreatedAt int64  `json:"created_at"` // Unix nano
	ExpiresAt int64  `json:"expires_at"` // Unix nano
}

func sessionToJSON(s *models.Session) *sessionJSON {
	return &sessionJSON{
		ID:        s.ID.String(),
		UserID:    s.UserID.String(),
		TenantKey: s.TenantKey.String(),
		CreatedAt: s.CreatedAt.UnixNano(),
		ExpiresAt: s.ExpiresAt.UnixNano(),
	}
}

func sessionFromJSON(j *sessionJSON) (*models.Session, error) {
	sessionID, err := uuid.Parse(j.ID)
	if err != nil {
		return nil, fmt.Errorf("parse session id: %w", err)
	}
	userID, err := uuid.Parse(j.UserID)
	if err != nil {
		return nil, fmt.Errorf("parse user id: %w", err)
	}
	return &models.Session{
		ID:        id.SessionID(sessionID),
		UserID:    id.UserID(userID),
		TenantKey: id.TenantKey(j.TenantKey),
		CreatedAt: time.Unix(0, j.CreatedAt).UTC(),
		ExpiresAt: time.Unix(0, j.ExpiresAt).UTC(),
	}, nil
}

// RedisStore persists sessions in Redis so every instance sees the same logins.
// Each session is indexed under its user and its tenant for bulk revocation.
type RedisStore struct {
	client *redis.Client
}

// NewRedis constructs a Redis-backed session store.
func NewRedis(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func sessionKey(sessionID string) string      { return sessionKeyPrefix + sessionID }
func userSessionsKey(userID id.UserID) string { return userSessionKeyPrefix + userID.String() }
func tenantSessionsKey(t id.TenantKey) string { return tenantSessionKeyPrefix + t.String() }

func (s *RedisStore) Create(ctx context.Context, session *models.Session) error {
	if session == nil {
		return fmt.Errorf("session is required")
	}
	data, err := json.Marshal(sessionToJSON(session))
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}

	ttl := session.ExpiresAt.Sub(session.CreatedAt)
	if ttl <= 0 {
		ttl = defaultSessionTTL
	}
	sid := session.ID.String()
	userKey := userSessionsKey(session.UserID)
	tenantKey := tenantSessionsKey(session.TenantKey)

	pipe := s.client.TxPipeline()
	pipe.Set(ctx, sessionKey(sid), data, ttl)
	pipe.SAdd(ctx, userKey, sid)
	pipe.Expire(ctx, userKey, ttl+time.Hour)
	pipe.SAdd(ctx, tenantKey, sid)
	pipe.Expire(ctx, tenantKey, ttl+time.Hour)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("create session: %w", err)
	}
	return nil
}

// ListByUser loads the user's live sessions. Index entries whose session key has
// expired are skipped.
func (s *RedisStore) ListByUser(ctx context.Context, userID id.UserID) ([]*models.Session, error) {
	sessionIDs, err := s.client.SRandMemberN(ctx, userSessionsKey(userID), maxSessionsPerUser).Result()
	if err != nil {
		return nil, fmt.Errorf("list session ids by user: %w", err)
	}
	sessions := make([]*models.Session, 0, len(sessionIDs))
	if len(sessionIDs) == 0 {
		return sessions, nil
	}

	pipe := s.client.Pipeline()
	cmds := make([]*redis.StringCmd, len(sessionIDs))
	for i, sid := range sessionIDs {
		cmds[i] = pipe.Get(ctx, sessionKey(sid))
	}
	if _, err := pipe.Exec(ctx); err != nil && !errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("load sessions: %w", err)
	}

	for _, cmd := range cmds {
		data, err := cmd.Result()
		if err != nil {
			continue
		}
		var j sessionJSON
		if err := json.Unmarshal([]byte(data), &j); err != nil {
			continue
		}
		if session, err := sessionFromJSON(&j); err == nil {
			sessions = append(sessions, session)
		}
	}
	return sessions, nil
}

// DeleteByUser removes every session of the user and reports how many live
// sessions were removed.
func (s *RedisStore) DeleteByUser(ctx context.Context, userID id.UserID) (int, error) {
	return s.deleteIndexed(ctx, userSessionsKey(userID))
}

// DeleteByTenant removes every session opened under the tenant.
func (s *RedisStore) DeleteByTenant(ctx context.Context, tenant id.TenantKey) (int, error) {
	return s.deleteIndexed(ctx, tenantSessionsKey(tenant))
}

// deleteIndexed removes only the index entries it read, so a session created
// while the delete runs stays reachable through its index.
func (s *RedisStore) deleteIndexed(ctx context.Context, indexKey string) (int, error) {
	sessionIDs, err := s.client.SMembers(ctx, indexKey).Result()
	if err != nil {
		return 0, fmt.Errorf("list session ids for delete: %w", err)
	}
	if len(sessionIDs) == 0 {
		return 0, nil
	}

	keys := make([]string, len(sessionIDs))
	members := make([]any, len(sessionIDs))
	for i, sid := range sessionIDs {
		keys[i] = sessionKey(sid)
		members[i] = sid
	}
	pipe := s.client.TxPipeline()
	del := pipe.Del(ctx, keys...)
	pipe.SRem(ctx, indexKey, members...)
	if _, err := pipe.Exec(ctx); err != nil {
		return 0, fmt.Errorf("delete sessions: %w", err)
	}
	return int(del.Val()), nil
}
