// Package kafka ships audit events to a Kafka topic, keyed by tenant so one
// tenant's events stay ordered within a partition.
package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"realmbridge/internal/audit"
	"realmbridge/internal/platform/kafka/producer"
	"realmbridge/pkg/platform/circuit"
)

var ErrDegraded = errors.New("audit delivery degraded")

// Producer is satisfied by *producer.Producer.
type Producer interface {
	Produce(ctx context.Context, msg *producer.Message) error
}

type Sink struct {
	producer Producer
	topic    string
	breaker  *circuit.Breaker
	logger   *slog.Logger
}

type Option func(*Sink)

// WithBreaker tracks delivery failures; Health reports the breaker state and
// state changes are logged.
func WithBreaker(b *circuit.Breaker, logger *slog.Logger) Option {
	return func(s *Sink) {
		s.breaker = b
		s.logger = logger
	}
}

func NewSink(p Producer, topic string, opts ...Option) *Sink {
	s := &Sink{producer: p, topic: topic}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Health fails while the breaker is open. Without a breaker it always passes.
func (s *Sink) Health(context.Context) error {
	if s.breaker != nil && s.breaker.IsOpen() {
		return ErrDegraded
	}
	return nil
}

func (s *Sink) Append(ctx context.Context, event audit.Event) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal audit event: %w", err)
	}
	msg := &producer.Message{
		Topic: s.topic,
		Key:   []byte(event.TenantKey),
		Value: payload,
		Headers: map[string]string{
			"action": string(event.Action),
		},
	}
	if event.RequestID != "" {
		msg.Headers["request_id"] = event.RequestID
	}
	err = s.producer.Produce(ctx, msg)
	s.record(ctx, err)
	if err != nil {
		return fmt.Errorf("publish audit event: %w", err)
	}
	return nil
}

func (s *Sink) record(ctx context.Context, err error) {
	if s.breaker == nil {
		return
	}
	switch s.breaker.Record(err) {
	case circuit.Opened:
		if s.logger != nil {
			s.logger.WarnContext(ctx, "audit delivery to kafka is failing", "topic", s.topic, "error", err)
		}
	case circuit.Closed:
		if s.logger != nil {
			s.logger.InfoContext(ctx, "audit delivery to kafka recovered", "topic", s.topic)
		}
	case circuit.NoChange:
	}
}

var _ audit.Store = (*Sink)(nil)
