package tenant

import (
	"context"
	"fmt"
	"sync"
	"time"

	"realmbridge/internal/tenant/models"
	id "realmbridge/pkg/domain"
	"realmbridge/pkg/platform/sentinel"
)

// ErrNotFound is returned when a tenant is not found.
var ErrNotFound = sentinel.ErrNotFound

// InMemory stores tenants in memory for tests and the demo environment.
// Every read returns a copy.
type InMemory struct {
	mu      sync.RWMutex
	tenants map[id.TenantKey]*models.Tenant
}

func NewInMemory() *InMemory {
	return &InMemory{tenants: make(map[id.TenantKey]*models.Tenant)}
}

// Create stores t unless its key is taken.
func (s *InMemory) Create(_ context.Context, t *models.Tenant) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.tenants[t.Key]; exists {
		return fmt.Errorf("tenant key %s: %w", t.Key, sentinel.ErrAlreadyUsed)
	}
	s.tenants[t.Key] = t.Clone()
	return nil
}

func (s *InMemory) FindByKey(_ context.Context, key id.TenantKey) (*models.Tenant, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if t, ok := s.tenants[key]; ok {
		return t.Clone(), nil
	}
	return nil, ErrNotFound
}

// Deactivate flips the tenant to deactivated under the store lock, so only one
// of several concurrent callers observes changed=true.
func (s *InMemory) Deactivate(_ context.Context, key id.TenantKey, now time.Time) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.tenants[key]
	if !ok {
		return false, ErrNotFound
	}
	return t.Deactivate(now), nil
}

// AddDomain appends domain to the tenant; added is false when it was already allowed.
func (s *InMemory) AddDomain(_ context.Context, key id.TenantKey, domain models.AllowedDomain, now time.Time) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.tenants[key]
	if !ok {
		return false, ErrNotFound
	}
	return t.AddDomain(domain.Domain, domain.AllowSubdomains, now), nil
}

// Count returns the total number of tenants.
func (s *InMemory) Count(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.tenants), nil
}
