// Package migration moves a tenant's users from one email domain to another.
package migration

import (
	"context"
	"fmt"
	"iter"
	"log/slog"
	"time"

	"realmbridge/internal/audit"
	dirmodels "realmbridge/internal/directory/models"
	migrationmetrics "realmbridge/internal/migration/metrics"
	tenantmodels "realmbridge/internal/tenant/models"
	id "realmbridge/pkg/domain"
	dErrors "realmbridge/pkg/domain-errors"
	"realmbridge/pkg/platform/tracer"
)

// TenantRegistry is the subset of the tenant registry the engine uses.
type TenantRegistry interface {
	Get(ctx context.Context, key id.TenantKey) (*tenantmodels.Tenant, error)
	AddDomain(ctx context.Context, key id.TenantKey, newDomain string, allowSubdomains bool) (bool, error)
}

// UserDirectory is the subset of the user directory the engine uses.
type UserDirectory interface {
	ListUsers(ctx context.Context, tenant id.TenantKey) iter.Seq2[dirmodels.UserSummary, error]
	InvalidateSessions(ctx context.Context, user dirmodels.UserSummary) (int, error)
	RewriteEmail(ctx context.Context, user dirmodels.UserSummary, newEmail string) error
}

type Engine struct {
	tenants   TenantRegistry
	users     UserDirectory
	logger    *slog.Logger
	publisher audit.Sink
	audit     *audit.Emitter
	metrics   *migrationmetrics.Metrics
	tracer    tracer.Tracer
}

type Option func(*Engine)

func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
	}
}

func WithAuditPublisher(publisher audit.Sink) Option {
	return func(e *Engine) {
		e.publisher = publisher
	}
}

func WithMetrics(m *migrationmetrics.Metrics) Option {
	return func(e *Engine) {
		e.metrics = m
	}
}

func WithTracer(t tracer.Tracer) Option {
	return func(e *Engine) {
		e.tracer = t
	}
}

func New(tenants TenantRegistry, users UserDirectory, opts ...Option) *Engine {
	e := &Engine{
		tenants: tenants,
		users:   users,
		tracer:  tracer.NewNoop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	e.audit = audit.NewEmitter(e.logger, e.publisher)
	return e
}

// Migrate allows req.NewDomain on the tenant, then rewrites the address of
// every user in req.OldDomain, revoking an active user's sessions before the
// rewrite. Per-user failures are collected in the report and never abort the
// run. The returned error is non-nil only when the tenant cannot be resolved,
// the new domain cannot be added, the request is invalid, or ctx is canceled;
// in the last case the partial report is returned with it. Overlapping runs
// are not serialized; the last email rewrite wins.
func (e *Engine) Migrate(ctx context.Context, req Request) (report *Report, err error) {
	oldDomain, newDomain, err := validate(req)
	if err != nil {
		return nil, err
	}

	started := time.Now()
	ctx, span := e.tracer.Start(ctx, tracer.SpanMigrationRun,
		tracer.String(tracer.AttrTenant, req.TenantKey.String()),
		tracer.String(tracer.AttrOldDomain, oldDomain),
		tracer.String(tracer.AttrNewDomain, newDomain),
	)
	defer func() {
		if report != nil {
			span.SetAttributes(
				tracer.Int(tracer.AttrMigrated, report.Migrated),
				tracer.Int(tracer.AttrSkipped, report.Skipped),
				tracer.Int(tracer.AttrFailed, report.Failed),
				tracer.Bool(tracer.AttrAborted, report.Aborted),
			)
		}
		if e.metrics != nil {
			e.metrics.ObserveDuration(time.Since(started))
		}
		span.End(err)
	}()

	tenant, err := e.tenants.Get(ctx, req.TenantKey)
	if err != nil {
		return nil, err
	}
	if _, err := e.tenants.AddDomain(ctx, tenant.Key, newDomain, req.AllowSubdomains); err != nil {
		return nil, err
	}

	// Users are enumerated after the domain is added; addresses created
	// concurrently in the old domain may be missed.
	report = &Report{TenantKey: tenant.Key, OldDomain: oldDomain, NewDomain: newDomain}
	for user, listErr := range e.users.ListUsers(ctx, tenant.Key) {
		if ctx.Err() != nil {
			report.Aborted = true
			break
		}
		if listErr != nil {
			report.fail(Failure{Stage: StageEnumerate, Cause: listErr})
			e.observe(migrationmetrics.ResultFailed)
			span.AddEvent(tracer.EventUserFailed, tracer.String(tracer.AttrStage, string(StageEnumerate)))
			break
		}
		e.migrateUser(ctx, span, report, user)
	}

	e.audit.Emit(ctx, audit.Event{
		Action:    audit.ActionTenantDomainMigrated,
		TenantKey: tenant.Key,
		Detail:    fmt.Sprintf("%s -> %s migrated=%d failed=%d", oldDomain, newDomain, report.Migrated, report.Failed),
	})
	if e.logger != nil {
		e.logger.InfoContext(ctx, "domain migration finished",
			"tenant_key", tenant.Key.String(),
			"old_domain", oldDomain,
			"new_domain", newDomain,
			"migrated", report.Migrated,
			"skipped", report.Skipped,
			"failed", report.Failed,
			"aborted", report.Aborted,
		)
	}

	if report.Aborted {
		return report, dErrors.Wrap(ctx.Err(), dErrors.CodeCanceled, "domain migration canceled")
	}
	return report, nil
}

func (e *Engine) migrateUser(ctx context.Context, span tracer.Span, report *Report, user dirmodels.UserSummary) {
	if !id.EmailDomainIs(user.Email, report.OldDomain) {
		report.Skipped++
		e.observe(migrationmetrics.ResultSkipped)
		return
	}
	newEmail, _ := id.ReplaceEmailDomain(user.Email, report.NewDomain)

	if stage, err := e.moveUser(ctx, user, newEmail); err != nil {
		report.fail(Failure{UserID: user.ID, Email: user.Email, Stage: stage, Cause: err})
		e.observe(migrationmetrics.ResultFailed)
		span.AddEvent(tracer.EventUserFailed,
			tracer.String(tracer.AttrUserID, user.ID.String()),
			tracer.String(tracer.AttrStage, string(stage)),
		)
		if e.logger != nil {
			e.logger.WarnContext(ctx, "user migration failed",
				"tenant_key", report.TenantKey.String(),
				"user_id", user.ID.String(),
				"stage", string(stage),
				"error", err,
			)
		}
		return
	}

	report.Migrated++
	e.observe(migrationmetrics.ResultMigrated)
	span.AddEvent(tracer.EventUserMigrated, tracer.String(tracer.AttrUserID, user.ID.String()))
}

// moveUser revokes sessions strictly before the rewrite; a failed revocation
// leaves the address untouched.
func (e *Engine) moveUser(ctx context.Context, user dirmodels.UserSummary, newEmail string) (Stage, error) {
	if user.Active {
		if _, err := e.users.InvalidateSessions(ctx, user); err != nil {
			return StageInvalidate, err
		}
	}
	if err := e.users.RewriteEmail(ctx, user, newEmail); err != nil {
		return StageRewrite, err
	}
	return "", nil
}

func (e *Engine) observe(result string) {
	if e.metrics != nil {
		e.metrics.ObserveUser(result)
	}
}

func validate(req Request) (oldDomain, newDomain string, err error) {
	if req.TenantKey.IsNil() {
		return "", "", dErrors.New(dErrors.CodeValidation, "tenant key is required")
	}
	if oldDomain, err = id.NormalizeDomain(req.OldDomain); err != nil {
		return "", "", dErrors.Wrap(err, dErrors.CodeValidation, "invalid old domain")
	}
	if newDomain, err = id.NormalizeDomain(req.NewDomain); err != nil {
		return "", "", dErrors.Wrap(err, dErrors.CodeValidation, "invalid new domain")
	}
	if oldDomain == newDomain {
		return "", "", dErrors.New(dErrors.CodeValidation, "old and new domain must differ")
	}
	return oldDomain, newDomain, nil
}
