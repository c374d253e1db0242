// Package service implements the tenant registry: creation, lookup,
// deactivation and allowed-domain management.
package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"realmbridge/internal/audit"
	tenantmetrics "realmbridge/internal/tenant/metrics"
	"realmbridge/internal/tenant/models"
	id "realmbridge/pkg/domain"
	dErrors "realmbridge/pkg/domain-errors"
	"realmbridge/pkg/platform/sentinel"
	"realmbridge/pkg/requestcontext"
)

// Store is the persistence contract for tenants. Implementations return
// sentinel errors; Service translates them.
type Store interface {
	Create(ctx context.Context, t *models.Tenant) error
	FindByKey(ctx context.Context, key id.TenantKey) (*models.Tenant, error)
	Deactivate(ctx context.Context, key id.TenantKey, now time.Time) (bool, error)
	AddDomain(ctx context.Context, key id.TenantKey, domain models.AllowedDomain, now time.Time) (bool, error)
}

type Service struct {
	tenants   Store
	logger    *slog.Logger
	publisher audit.Sink
	metrics   *tenantmetrics.Metrics
	audit     *audit.Emitter
}

func New(tenants Store, opts ...Option) *Service {
	s := &Service{tenants: tenants}
	for _, opt := range opts {
		opt(s)
	}
	s.audit = audit.NewEmitter(s.logger, s.publisher)
	return s
}

// Create registers a tenant under rawKey. The lower-cased display name becomes
// the tenant's first allowed domain.
func (s *Service) Create(ctx context.Context, rawKey, displayName string) (*models.Tenant, error) {
	key, err := id.ParseTenantKey(rawKey)
	if err != nil {
		return nil, err
	}
	t, err := models.NewTenant(key, displayName, requestcontext.Now(ctx))
	if err != nil {
		return nil, err
	}

	if err := s.tenants.Create(ctx, t); err != nil {
		if errors.Is(err, sentinel.ErrAlreadyUsed) {
			return nil, dErrors.Wrap(err, dErrors.CodeConflict, "tenant already exists")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to create tenant")
	}

	if s.metrics != nil {
		s.metrics.TenantCreated.Inc()
	}
	s.audit.Emit(ctx, audit.Event{
		Action:    audit.ActionTenantCreated,
		TenantKey: t.Key,
		Detail:    t.Domains[0].Domain,
	})
	return t, nil
}

func (s *Service) Get(ctx context.Context, key id.TenantKey) (*models.Tenant, error) {
	if key.IsNil() {
		return nil, dErrors.New(dErrors.CodeValidation, "tenant key is required")
	}
	t, err := s.tenants.FindByKey(ctx, key)
	if err != nil {
		return nil, wrapTenantErr(err, "failed to load tenant")
	}
	return t, nil
}

// Deactivate soft-disables a tenant. changed is false when it already was.
func (s *Service) Deactivate(ctx context.Context, key id.TenantKey) (changed bool, err error) {
	if key.IsNil() {
		return false, dErrors.New(dErrors.CodeValidation, "tenant key is required")
	}
	changed, err = s.tenants.Deactivate(ctx, key, requestcontext.Now(ctx))
	if err != nil {
		return false, wrapTenantErr(err, "failed to deactivate tenant")
	}
	if !changed {
		return false, nil
	}

	if s.metrics != nil {
		s.metrics.TenantDeactivated.Inc()
	}
	s.audit.Emit(ctx, audit.Event{Action: audit.ActionTenantDeactivated, TenantKey: key})
	return true, nil
}

// AddDomain allows domain for the tenant. Adding an already allowed domain is a
// no-op that keeps the existing subdomain flag; added reports which case applied.
func (s *Service) AddDomain(ctx context.Context, key id.TenantKey, domain string, allowSubdomains bool) (added bool, err error) {
	if key.IsNil() {
		return false, dErrors.New(dErrors.CodeValidation, "tenant key is required")
	}
	normalized, err := id.NormalizeDomain(domain)
	if err != nil {
		return false, err
	}

	added, err = s.tenants.AddDomain(ctx, key, models.AllowedDomain{
		Domain:          normalized,
		AllowSubdomains: allowSubdomains,
	}, requestcontext.Now(ctx))
	if err != nil {
		return false, wrapTenantErr(err, "failed to add tenant domain")
	}
	if !added {
		return false, nil
	}

	if s.metrics != nil {
		s.metrics.DomainAdded.Inc()
	}
	s.audit.Emit(ctx, audit.Event{
		Action:    audit.ActionTenantDomainAdded,
		TenantKey: key,
		Detail:    normalized,
	})
	return true, nil
}

func wrapTenantErr(err error, action string) error {
	if errors.Is(err, sentinel.ErrNotFound) {
		return dErrors.Wrap(err, dErrors.CodeNotFound, "tenant not found")
	}
	return dErrors.Wrap(err, dErrors.CodeInternal, action)
}
