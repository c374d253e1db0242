package session

import (
	"context"
	"fmt"
	"sync"

	"realmbridge/internal/directory/models"
	id "realmbridge/pkg/domain"
	"realmbridge/pkg/requestcontext"
)

// InMemorySessionStore stores sessions in memory for tests/dev.
type InMemorySessionStore struct {
	mu       sync.RWMutex
	sessions map[id.SessionID]*models.Session
}

// New constructs an empty in-memory session store.
func New() *InMemorySessionStore {
	return &InMemorySessionStore{sessions: make(map[id.SessionID]*models.Session)}
}

func (s *InMemorySessionStore) Create(_ context.Context, session *models.Session) error {
	if session == nil {
		return fmt.Errorf("session is required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	c := *session
	s.sessions[session.ID] = &c
	return nil
}

// ListByUser returns the user's sessions that have not expired at the request time.
func (s *InMemorySessionStore) ListByUser(ctx context.Context, userID id.UserID) ([]*models.Session, error) {
	now := requestcontext.Now(ctx)
	s.mu.RLock()
	defer s.mu.RUnlock()

	sessions := make([]*models.Session, 0)
	for _, session := range s.sessions {
		if session.UserID == userID && session.ExpiresAt.After(now) {
			c := *session
			sessions = append(sessions, &c)
		}
	}
	return sessions, nil
}

func (s *InMemorySessionStore) DeleteByUser(_ context.Context, userID id.UserID) (int, error) {
	return s.deleteWhere(func(session *models.Session) bool { return session.UserID == userID }), nil
}

func (s *InMemorySessionStore) DeleteByTenant(_ context.Context, tenant id.TenantKey) (int, error) {
	return s.deleteWhere(func(session *models.Session) bool { return session.TenantKey == tenant }), nil
}

func (s *InMemorySessionStore) deleteWhere(match func(*models.Session) bool) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	deleted := 0
	for key, session := range s.sessions {
		if match(session) {
			delete(s.sessions, key)
			deleted++
		}
	}
	return deleted
}
