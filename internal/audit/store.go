package audit

import (
	"context"
	"errors"
	"sync"

	id "realmbridge/pkg/domain"
)

// Store is an append-only audit sink.
type Store interface {
	Append(ctx context.Context, event Event) error
}

// InMemoryStore keeps recent events for tests, the demo environment and
// operators inspecting a running process. With a capacity it holds only the
// newest events.
type InMemoryStore struct {
	mu       sync.RWMutex
	events   []Event
	capacity int
}

type StoreOption func(*InMemoryStore)

// WithCapacity keeps at most n events, dropping the oldest. n <= 0 means unbounded.
func WithCapacity(n int) StoreOption {
	return func(s *InMemoryStore) {
		s.capacity = n
	}
}

func NewInMemoryStore(opts ...StoreOption) *InMemoryStore {
	s := &InMemoryStore{}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *InMemoryStore) Append(_ context.Context, event Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.capacity > 0 && len(s.events) >= s.capacity {
		n := copy(s.events, s.events[len(s.events)-s.capacity+1:])
		clear(s.events[n:])
		s.events = s.events[:n]
	}
	s.events = append(s.events, event)
	return nil
}

// ListByTenant returns the events of one tenant in append order.
func (s *InMemoryStore) ListByTenant(_ context.Context, key id.TenantKey) ([]Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []Event
	for _, e := range s.events {
		if e.TenantKey == key {
			out = append(out, e)
		}
	}
	return out, nil
}

// Actions lists the recorded actions in order.
func (s *InMemoryStore) Actions() []Action {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Action, 0, len(s.events))
	for _, e := range s.events {
		out = append(out, e.Action)
	}
	return out
}

// FanOut appends every event to each store and joins their errors.
type FanOut []Store

func (f FanOut) Append(ctx context.Context, event Event) error {
	var errs []error
	for _, s := range f {
		if err := s.Append(ctx, event); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
