//go:build integration

// Package containers starts the Postgres and Kafka instances the integration
// suites run against. Each test binary starts at most one of each; suites in
// the same package share them and isolate themselves by truncating tables or
// using their own topic.
package containers

import (
	"sync"
	"testing"
)

// Shared hands out the process-wide containers, starting each on first use.
type Shared struct {
	mu       sync.Mutex
	postgres *PostgresContainer
	kafka    *KafkaContainer
}

var shared = &Shared{}

// GetManager returns the containers shared by every suite in the test binary.
func GetManager() *Shared {
	return shared
}

// GetPostgres returns the shared Postgres container with the bridge schema applied.
func (s *Shared) GetPostgres(t *testing.T) *PostgresContainer {
	t.Helper()
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.postgres == nil {
		s.postgres = NewPostgresContainer(t)
	}
	return s.postgres
}

// GetKafka returns the shared broker the audit sink publishes to.
func (s *Shared) GetKafka(t *testing.T) *KafkaContainer {
	t.Helper()
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.kafka == nil {
		s.kafka = NewKafkaContainer(t)
	}
	return s.kafka
}
