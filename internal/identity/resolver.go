package identity

import (
	"context"
	"log/slog"

	"realmbridge/internal/token"
	id "realmbridge/pkg/domain"
	dErrors "realmbridge/pkg/domain-errors"
)

// Resolver turns verified claims into a ResolutionResult. It never creates users.
type Resolver struct {
	tenants TenantLookup
	auth    Authenticator
	logger  *slog.Logger
}

type ResolverOption func(*Resolver)

func WithLogger(logger *slog.Logger) ResolverOption {
	return func(r *Resolver) {
		r.logger = logger
	}
}

func NewResolver(tenants TenantLookup, auth Authenticator, opts ...ResolverOption) *Resolver {
	r := &Resolver{tenants: tenants, auth: auth}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Resolve looks the claimed address up in the tenant named by tenantHint.
// The address is user@realm exactly as claimed.
func (r *Resolver) Resolve(ctx context.Context, tenantHint string, claims *token.Claims) (ResolutionResult, error) {
	key, err := id.ParseTenantKey(tenantHint)
	if err != nil {
		return ResolutionResult{}, unauthorized(ErrUnknownTenant)
	}
	tenant, err := r.tenants.Get(ctx, key)
	if err != nil {
		if dErrors.HasCode(err, dErrors.CodeNotFound) {
			return ResolutionResult{}, unauthorized(ErrUnknownTenant)
		}
		return ResolutionResult{}, err
	}
	if !tenant.IsActive() {
		return ResolutionResult{}, unauthorized(ErrTenantDeactivated)
	}

	email := claims.Email()
	user, found, err := r.auth.Authenticate(ctx, tenant.Key, email)
	if err != nil {
		return ResolutionResult{}, dErrors.Wrap(err, dErrors.CodeInternal, "failed to look up user")
	}
	if found {
		return ResolutionResult{
			Kind:      KindExisting,
			User:      user,
			Email:     user.Email,
			FullName:  user.FullName,
			TenantKey: tenant.Key,
		}, nil
	}

	if r.logger != nil {
		r.logger.DebugContext(ctx, "no local user for claimed address",
			"tenant_key", tenant.Key.String(),
		)
	}
	return ResolutionResult{
		Kind:      KindNotFound,
		Email:     email,
		FullName:  claims.User,
		TenantKey: tenant.Key,
	}, nil
}

func unauthorized(reason error) error {
	return dErrors.Wrap(reason, dErrors.CodeUnauthorized, reason.Error())
}
