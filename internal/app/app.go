// Package app is the composition root: it turns a Config into a running
// http.Handler and owns the lifetime of the backing connections.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"realmbridge/internal/audit"
	auditkafka "realmbridge/internal/audit/kafka"
	bridgehandler "realmbridge/internal/bridge/handler"
	bridgeservice "realmbridge/internal/bridge/service"
	dirmetrics "realmbridge/internal/directory/metrics"
	dirservice "realmbridge/internal/directory/service"
	sessionstore "realmbridge/internal/directory/store/session"
	userstore "realmbridge/internal/directory/store/user"
	"realmbridge/internal/identity"
	"realmbridge/internal/migration"
	migrationmetrics "realmbridge/internal/migration/metrics"
	"realmbridge/internal/platform/config"
	"realmbridge/internal/platform/database"
	"realmbridge/internal/platform/health"
	"realmbridge/internal/platform/kafka/producer"
	poolmetrics "realmbridge/internal/platform/metrics"
	"realmbridge/internal/platform/redis"
	"realmbridge/internal/seeder"
	tenantmetrics "realmbridge/internal/tenant/metrics"
	tenantservice "realmbridge/internal/tenant/service"
	tenantstore "realmbridge/internal/tenant/store/tenant"
	"realmbridge/internal/token"
	tokenmetrics "realmbridge/internal/token/metrics"
	httptransport "realmbridge/internal/transport/http"
	"realmbridge/migrations"
	"realmbridge/pkg/platform/circuit"
	"realmbridge/pkg/platform/middleware/request"
	"realmbridge/pkg/platform/tracer"
)

const (
	auditBufferSize      = 256
	producerCloseTimeout = 5 * time.Second
)

// App holds the assembled handler and the resources Close releases.
type App struct {
	Handler http.Handler
	// Audit keeps the newest events emitted in this process, newest last.
	Audit *audit.InMemoryStore
	// Directory provisions users; the bridge itself never creates them.
	Directory *dirservice.Service

	logger    *slog.Logger
	pool      *database.Pool
	redis     *redis.Client
	producer  *producer.Producer
	publisher *audit.Publisher
	pools     *poolmetrics.Pools
}

// Build connects the configured stores and wires every service. reg receives
// all metrics and is exposed on /metrics.
func Build(ctx context.Context, cfg config.Config, logger *slog.Logger, reg *prometheus.Registry) (_ *App, err error) {
	a := &App{
		Audit:  audit.NewInMemoryStore(audit.WithCapacity(cfg.Audit.RetainEvents)),
		logger: logger,
		pools:  poolmetrics.NewWithRegistry(reg),
	}
	defer func() {
		if err != nil {
			a.Close()
		}
	}()

	probes := health.New(cfg.Environment)

	tenants, users, err := a.openUserStores(ctx, cfg, probes)
	if err != nil {
		return nil, err
	}
	sessions, err := a.openSessionStore(ctx, cfg, probes)
	if err != nil {
		return nil, err
	}
	if err := a.openAudit(cfg, probes); err != nil {
		return nil, err
	}

	keys, err := token.NewStaticKeyProvider(cfg.Token.TenantKeys, cfg.Token.DefaultKey)
	if err != nil {
		return nil, err
	}
	otel := tracer.NewOTel()

	tenantSvc := tenantservice.New(tenants,
		tenantservice.WithLogger(logger),
		tenantservice.WithAuditPublisher(a.publisher),
		tenantservice.WithMetrics(tenantmetrics.NewWithRegistry(reg)),
	)
	directory := dirservice.New(users, sessions,
		dirservice.WithLogger(logger),
		dirservice.WithAuditPublisher(a.publisher),
		dirservice.WithMetrics(dirmetrics.NewWithRegistry(reg)),
		dirservice.WithSessionTTL(cfg.SessionTTL),
	)
	verifier := token.NewVerifier(keys,
		token.WithRequireExpiry(cfg.Token.RequireExpiry),
		token.WithLeeway(cfg.Token.Leeway),
		token.WithMetrics(tokenmetrics.NewWithRegistry(reg)),
		token.WithTracer(otel),
		token.WithLogger(logger),
	)
	resolver := identity.NewResolver(tenantSvc, identity.NewPassthroughAuthenticator(directory),
		identity.WithLogger(logger),
	)
	engine := migration.New(tenantSvc, directory,
		migration.WithLogger(logger),
		migration.WithAuditPublisher(a.publisher),
		migration.WithMetrics(migrationmetrics.NewWithRegistry(reg)),
		migration.WithTracer(otel),
	)
	a.Directory = directory
	bridge := bridgeservice.New(verifier, resolver, tenantSvc, directory, engine,
		bridgeservice.WithLogger(logger),
		bridgeservice.WithLenientLifecycle(cfg.LenientLifecycle),
	)

	if cfg.DemoSeed {
		if err := seeder.New(tenantSvc, directory, logger).SeedAll(ctx); err != nil {
			return nil, err
		}
	}

	a.Handler = httptransport.NewRouter(
		bridgehandler.New(bridge, bridgehandler.NewSessionCompleter(directory), logger),
		probes,
		promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}),
		request.NewMetricsWithRegistry(reg),
		httptransport.RouterConfig{
			RootDomain:   cfg.Server.RootDomain,
			MaxBodyBytes: cfg.Server.MaxBodyBytes,
		},
		logger,
	)
	return a, nil
}

func (a *App) openUserStores(ctx context.Context, cfg config.Config, probes *health.Handler) (tenantservice.Store, dirservice.UserStore, error) {
	pool, err := database.New(ctx, database.DefaultConfig(cfg.Storage.DatabaseURL))
	if err != nil {
		return nil, nil, err
	}
	if pool == nil {
		a.logger.InfoContext(ctx, "using in-memory tenant and user stores")
		return tenantstore.NewInMemory(), userstore.NewInMemoryUserStore(), nil
	}
	a.pool = pool
	if err := migrations.Apply(ctx, pool.DB()); err != nil {
		return nil, nil, fmt.Errorf("apply migrations: %w", err)
	}
	probes.RegisterCheck("postgres", pool.Health)
	return tenantstore.NewPostgres(pool.DB()), userstore.NewPostgres(pool.DB()), nil
}

func (a *App) openSessionStore(ctx context.Context, cfg config.Config, probes *health.Handler) (dirservice.SessionStore, error) {
	client, err := redis.New(ctx, redis.DefaultConfig(cfg.Storage.RedisURL))
	if err != nil {
		return nil, err
	}
	if client == nil {
		a.logger.InfoContext(ctx, "using in-memory session store")
		return sessionstore.New(), nil
	}
	a.redis = client
	probes.RegisterCheck("redis", client.Health)
	return sessionstore.NewRedis(client.Client), nil
}

// openAudit always keeps events in memory; with brokers configured they are
// also shipped to Kafka from a buffered background publisher.
func (a *App) openAudit(cfg config.Config, probes *health.Handler) error {
	if len(cfg.Audit.KafkaBrokers) == 0 {
		a.publisher = audit.NewPublisher(a.Audit, audit.WithPublisherLogger(a.logger))
		return nil
	}
	p, err := producer.New(producer.DefaultConfig(strings.Join(cfg.Audit.KafkaBrokers, ",")), a.logger)
	if err != nil {
		return err
	}
	a.producer = p
	sink := auditkafka.NewSink(p, cfg.Audit.Topic,
		auditkafka.WithBreaker(circuit.New("audit-kafka"), a.logger))
	probes.RegisterCheck("kafka", p.Health)
	probes.RegisterCheck("audit_delivery", sink.Health)
	a.publisher = audit.NewPublisher(
		audit.FanOut{a.Audit, sink},
		audit.WithAsyncBuffer(auditBufferSize),
		audit.WithPublisherLogger(a.logger),
	)
	return nil
}

// RecordPoolStats publishes connection pool gauges; call it periodically.
func (a *App) RecordPoolStats() {
	if a.pool != nil {
		a.pools.RecordDB(a.pool.Stats())
	}
	if a.redis != nil {
		a.pools.RecordRedis(a.redis.PoolStats())
	}
}

// Close drains queued audit events before closing the producer and stores.
func (a *App) Close() {
	if a.publisher != nil {
		a.publisher.Close()
	}
	if a.producer != nil {
		a.producer.Close(producerCloseTimeout)
	}
	if err := a.redis.Close(); err != nil {
		a.logger.Warn("failed to close redis", "error", err)
	}
	if err := a.pool.Close(); err != nil {
		a.logger.Warn("failed to close database", "error", err)
	}
}
