package service

import (
	"log/slog"
	"time"

	"realmbridge/internal/audit"
	dirmetrics "realmbridge/internal/directory/metrics"
)

const defaultSessionTTL = 24 * time.Hour

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithAuditPublisher(publisher audit.Sink) Option {
	return func(s *Service) {
		s.publisher = publisher
	}
}

func WithMetrics(m *dirmetrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

// WithSessionTTL sets the lifetime of sessions opened by OpenSession.
func WithSessionTTL(ttl time.Duration) Option {
	return func(s *Service) {
		if ttl > 0 {
			s.sessionTTL = ttl
		}
	}
}

// WithAPIKeyGenerator replaces the random key source.
func WithAPIKeyGenerator(gen func() (string, error)) Option {
	return func(s *Service) {
		if gen != nil {
			s.newAPIKey = gen
		}
	}
}
