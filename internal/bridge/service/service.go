// Package service is the bridge façade: every operation first verifies the
// caller's external token, then authenticates, issues a credential or runs a
// tenant lifecycle change. Lifecycle changes reach across tenants, so their
// tokens must be signed with the platform key; a tenant's own key only
// authenticates users of that tenant.
package service

import (
	"context"
	"log/slog"

	dirmodels "realmbridge/internal/directory/models"
	"realmbridge/internal/identity"
	"realmbridge/internal/migration"
	tenantmodels "realmbridge/internal/tenant/models"
	"realmbridge/internal/token"
	id "realmbridge/pkg/domain"
	dErrors "realmbridge/pkg/domain-errors"
)

type TokenVerifier interface {
	Verify(ctx context.Context, tenantHint, rawToken string) (*token.Claims, error)
	VerifyPlatform(ctx context.Context, tenantHint, rawToken string) (*token.Claims, error)
}

type IdentityResolver interface {
	Resolve(ctx context.Context, tenantHint string, claims *token.Claims) (identity.ResolutionResult, error)
}

type TenantRegistry interface {
	Create(ctx context.Context, rawKey, displayName string) (*tenantmodels.Tenant, error)
	Deactivate(ctx context.Context, key id.TenantKey) (bool, error)
}

type UserDirectory interface {
	UpdateRole(ctx context.Context, user *dirmodels.User, role *dirmodels.Role) error
	GetAPIKey(ctx context.Context, user *dirmodels.User) (*dirmodels.Credential, error)
	InvalidateTenantSessions(ctx context.Context, tenant id.TenantKey) (int, error)
}

type DomainMigrator interface {
	Migrate(ctx context.Context, req migration.Request) (*migration.Report, error)
}

// MigrateRequest carries the raw transport fields of a domain migration.
type MigrateRequest struct {
	TenantKey       string
	OldDomain       string
	NewDomain       string
	AllowSubdomains bool
}

type Service struct {
	verifier   TokenVerifier
	resolver   IdentityResolver
	tenants    TenantRegistry
	directory  UserDirectory
	migrations DomainMigrator
	logger     *slog.Logger
	lenient    bool
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

// WithLenientLifecycle makes create, deactivate and migrate report success,
// echoing their input, when the request fails validation. The error is logged.
// Auth, conflict and not-found errors are still returned.
func WithLenientLifecycle(enabled bool) Option {
	return func(s *Service) {
		s.lenient = enabled
	}
}

func New(verifier TokenVerifier, resolver IdentityResolver, tenants TenantRegistry, directory UserDirectory, migrations DomainMigrator, opts ...Option) *Service {
	s := &Service{
		verifier:   verifier,
		resolver:   resolver,
		tenants:    tenants,
		directory:  directory,
		migrations: migrations,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Authenticate verifies rawToken and resolves its claims within the hinted tenant.
func (s *Service) Authenticate(ctx context.Context, tenantHint, rawToken string) (identity.ResolutionResult, error) {
	claims, err := s.verifier.Verify(ctx, tenantHint, rawToken)
	if err != nil {
		return identity.ResolutionResult{}, err
	}
	return s.resolver.Resolve(ctx, tenantHint, claims)
}

// IssueCredential returns the API key of the user the token names. A role
// claim is applied to the user before the key is issued.
func (s *Service) IssueCredential(ctx context.Context, tenantHint, rawToken string) (*dirmodels.Credential, error) {
	claims, err := s.verifier.Verify(ctx, tenantHint, rawToken)
	if err != nil {
		return nil, err
	}
	res, err := s.resolver.Resolve(ctx, tenantHint, claims)
	if err != nil {
		return nil, err
	}
	if !res.Found() {
		return nil, dErrors.Wrap(identity.ErrUnknownUser, dErrors.CodeUnauthorized, identity.ErrUnknownUser.Error())
	}

	if claims.Role != nil {
		role, err := dirmodels.ParseRole(*claims.Role)
		if err != nil {
			return nil, err
		}
		if err := s.directory.UpdateRole(ctx, res.User, &role); err != nil {
			return nil, err
		}
	}
	return s.directory.GetAPIKey(ctx, res.User)
}

// CreateTenant registers a tenant and returns its key.
func (s *Service) CreateTenant(ctx context.Context, tenantHint, rawToken, rawKey, displayName string) (string, error) {
	if _, err := s.verifier.VerifyPlatform(ctx, tenantHint, rawToken); err != nil {
		return "", err
	}
	t, err := s.tenants.Create(ctx, rawKey, displayName)
	if err != nil {
		if s.swallow(ctx, "create tenant", rawKey, err) {
			return rawKey, nil
		}
		return "", err
	}
	return t.Key.String(), nil
}

// DeactivateTenant disables a tenant and revokes every session opened under
// it. Repeating the call is harmless and retries a revocation that failed.
func (s *Service) DeactivateTenant(ctx context.Context, tenantHint, rawToken, rawKey string) (string, error) {
	if _, err := s.verifier.VerifyPlatform(ctx, tenantHint, rawToken); err != nil {
		return "", err
	}
	key, err := id.ParseTenantKey(rawKey)
	if err == nil {
		err = s.deactivate(ctx, key)
	}
	if err != nil {
		if s.swallow(ctx, "deactivate tenant", rawKey, err) {
			return rawKey, nil
		}
		return "", err
	}
	return key.String(), nil
}

// deactivate flips the state before revoking, so no login can open a session
// after the revocation. Sessions are revoked on every call: a failure after the
// flip must not leave them live once the tenant already reads deactivated.
func (s *Service) deactivate(ctx context.Context, key id.TenantKey) error {
	changed, err := s.tenants.Deactivate(ctx, key)
	if err != nil {
		return err
	}
	revoked, err := s.directory.InvalidateTenantSessions(ctx, key)
	if err != nil {
		return err
	}
	if s.logger != nil && (changed || revoked > 0) {
		s.logger.InfoContext(ctx, "tenant deactivated",
			"tenant_key", key.String(),
			"state_changed", changed,
			"sessions_revoked", revoked,
		)
	}
	return nil
}

// MigrateDomain allows req.NewDomain on the tenant and moves the users of
// req.OldDomain to it.
func (s *Service) MigrateDomain(ctx context.Context, tenantHint, rawToken string, req MigrateRequest) (*migration.Report, error) {
	if _, err := s.verifier.VerifyPlatform(ctx, tenantHint, rawToken); err != nil {
		return nil, err
	}
	key, err := id.ParseTenantKey(req.TenantKey)
	var report *migration.Report
	if err == nil {
		report, err = s.migrations.Migrate(ctx, migration.Request{
			TenantKey:       key,
			OldDomain:       req.OldDomain,
			NewDomain:       req.NewDomain,
			AllowSubdomains: req.AllowSubdomains,
		})
	}
	if err != nil {
		if s.swallow(ctx, "migrate domain", req.TenantKey, err) {
			return &migration.Report{
				TenantKey: id.TenantKey(req.TenantKey),
				OldDomain: req.OldDomain,
				NewDomain: req.NewDomain,
			}, nil
		}
		return report, err
	}
	return report, nil
}

// swallow reports whether err is dropped under the lenient lifecycle policy.
func (s *Service) swallow(ctx context.Context, op, rawKey string, err error) bool {
	if !s.lenient {
		return false
	}
	if !dErrors.HasCode(err, dErrors.CodeValidation) && !dErrors.HasCode(err, dErrors.CodeBadRequest) {
		return false
	}
	if s.logger != nil {
		s.logger.WarnContext(ctx, "lifecycle request rejected, reporting success",
			"operation", op,
			"tenant_key", rawKey,
			"error", err,
		)
	}
	return true
}
