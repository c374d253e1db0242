package service

import (
	"log/slog"

	"realmbridge/internal/audit"
	tenantmetrics "realmbridge/internal/tenant/metrics"
)

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

func WithMetrics(m *tenantmetrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}
