package identity

import (
	"context"

	dirmodels "realmbridge/internal/directory/models"
	id "realmbridge/pkg/domain"
	dErrors "realmbridge/pkg/domain-errors"
)

// UserFinder is satisfied by the user directory.
type UserFinder interface {
	FindByEmail(ctx context.Context, tenant id.TenantKey, email string) (*dirmodels.User, error)
}

// PassthroughAuthenticator trusts the token: an active user with the address is
// authenticated without any password. Inactive users are treated as absent.
type PassthroughAuthenticator struct {
	users UserFinder
}

func NewPassthroughAuthenticator(users UserFinder) *PassthroughAuthenticator {
	return &PassthroughAuthenticator{users: users}
}

func (a *PassthroughAuthenticator) Authenticate(ctx context.Context, tenant id.TenantKey, email string) (*dirmodels.User, bool, error) {
	u, err := a.users.FindByEmail(ctx, tenant, email)
	if err != nil {
		if dErrors.HasCode(err, dErrors.CodeNotFound) {
			return nil, false, nil
		}
		return nil, false, err
	}
	if !u.IsActive() {
		return nil, false, nil
	}
	return u, true, nil
}
