package user

import (
	"context"
	"fmt"
	"iter"
	"strings"
	"sync"
	"time"

	"realmbridge/internal/directory/models"
	id "realmbridge/pkg/domain"
	"realmbridge/pkg/platform/sentinel"
)

// InMemoryUserStore keeps users in memory for tests and the demo environment.
// Emails are unique per tenant, compared case-insensitively.
type InMemoryUserStore struct {
	mu      sync.RWMutex
	users   map[id.UserID]*models.User
	byEmail map[string]id.UserID
	order   []id.UserID
}

func NewInMemoryUserStore() *InMemoryUserStore {
	return &InMemoryUserStore{
		users:   make(map[id.UserID]*models.User),
		byEmail: make(map[string]id.UserID),
	}
}

func emailKey(tenant id.TenantKey, email string) string {
	return tenant.String() + "\x00" + strings.ToLower(email)
}

func (s *InMemoryUserStore) Create(_ context.Context, u *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := emailKey(u.TenantKey, u.Email)
	if _, taken := s.byEmail[key]; taken {
		return fmt.Errorf("email %s: %w", u.Email, sentinel.ErrAlreadyUsed)
	}
	c := *u
	s.users[u.ID] = &c
	s.byEmail[key] = u.ID
	s.order = append(s.order, u.ID)
	return nil
}

func (s *InMemoryUserStore) FindByID(_ context.Context, userID id.UserID) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.users[userID]
	if !ok {
		return nil, fmt.Errorf("user not found: %w", sentinel.ErrNotFound)
	}
	c := *u
	return &c, nil
}

func (s *InMemoryUserStore) FindByEmail(_ context.Context, tenant id.TenantKey, email string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	userID, ok := s.byEmail[emailKey(tenant, email)]
	if !ok {
		return nil, fmt.Errorf("user not found: %w", sentinel.ErrNotFound)
	}
	c := *s.users[userID]
	return &c, nil
}

// List yields a snapshot of the tenant's users taken when iteration starts,
// in creation order.
func (s *InMemoryUserStore) List(_ context.Context, tenant id.TenantKey) iter.Seq2[*models.User, error] {
	return func(yield func(*models.User, error) bool) {
		s.mu.RLock()
		var snapshot []*models.User
		for _, userID := range s.order {
			if u := s.users[userID]; u.TenantKey == tenant {
				c := *u
				snapshot = append(snapshot, &c)
			}
		}
		s.mu.RUnlock()

		for _, u := range snapshot {
			if !yield(u, nil) {
				return
			}
		}
	}
}

func (s *InMemoryUserStore) UpdateRole(_ context.Context, userID id.UserID, role models.Role, now time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[userID]
	if !ok {
		return fmt.Errorf("user not found: %w", sentinel.ErrNotFound)
	}
	u.Role = role
	u.UpdatedAt = now
	return nil
}

// UpdateEmail fails with ErrAlreadyUsed when another user of the same tenant
// owns the address.
func (s *InMemoryUserStore) UpdateEmail(_ context.Context, userID id.UserID, email string, now time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[userID]
	if !ok {
		return fmt.Errorf("user not found: %w", sentinel.ErrNotFound)
	}
	newKey := emailKey(u.TenantKey, email)
	if owner, taken := s.byEmail[newKey]; taken && owner != userID {
		return fmt.Errorf("email %s: %w", email, sentinel.ErrAlreadyUsed)
	}
	delete(s.byEmail, emailKey(u.TenantKey, u.Email))
	s.byEmail[newKey] = userID
	u.Email = email
	u.UpdatedAt = now
	return nil
}

func (s *InMemoryUserStore) UpdateStatus(_ context.Context, userID id.UserID, status models.Status, now time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[userID]
	if !ok {
		return fmt.Errorf("user not found: %w", sentinel.ErrNotFound)
	}
	u.Status = status
	u.UpdatedAt = now
	return nil
}

// SetAPIKeyIfEmpty stores key unless the user already has one, and returns
// whichever key is stored afterwards.
func (s *InMemoryUserStore) SetAPIKeyIfEmpty(_ context.Context, userID id.UserID, key string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[userID]
	if !ok {
		return "", fmt.Errorf("user not found: %w", sentinel.ErrNotFound)
	}
	if u.APIKey == "" {
		u.APIKey = key
	}
	return u.APIKey, nil
}
