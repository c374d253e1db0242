// Package identity maps verified token claims to a local, tenant-scoped user.
package identity

import (
	"context"
	"errors"

	dirmodels "realmbridge/internal/directory/models"
	tenantmodels "realmbridge/internal/tenant/models"
	id "realmbridge/pkg/domain"
)

// Failure reasons, wrapped in CodeUnauthorized domain errors.
var (
	ErrUnknownTenant     = errors.New("unknown tenant")
	ErrTenantDeactivated = errors.New("tenant deactivated")
	ErrUnknownUser       = errors.New("unknown user")
)

type Kind string

const (
	KindExisting Kind = "existing"
	KindNotFound Kind = "not_found"
)

// ResolutionResult is either an existing user (Kind existing, User set) or the
// data needed to provision one (Kind not_found). Email and TenantKey are set in
// both cases.
type ResolutionResult struct {
	Kind      Kind
	User      *dirmodels.User
	Email     string
	FullName  string
	TenantKey id.TenantKey
}

func (r ResolutionResult) Found() bool {
	return r.Kind == KindExisting
}

// TenantLookup is satisfied by the tenant registry.
type TenantLookup interface {
	Get(ctx context.Context, key id.TenantKey) (*tenantmodels.Tenant, error)
}

// Authenticator decides whether an address names a user of the tenant. found is
// false, with a nil error, when no user qualifies.
type Authenticator interface {
	Authenticate(ctx context.Context, tenant id.TenantKey, email string) (user *dirmodels.User, found bool, err error)
}
