package testutil

import (
	"time"

	"github.com/google/uuid"

	dirmodels "realmbridge/internal/directory/models"
	tenantmodels "realmbridge/internal/tenant/models"
	id "realmbridge/pkg/domain"
)

// FixedTime is the clock most fixtures are stamped with.
var FixedTime = time.Date(2026, 3, 3, 9, 0, 0, 0, time.UTC)

// UserBuilder provides a fluent interface for building test users.
type UserBuilder struct {
	user *dirmodels.User
}

func NewUserBuilder() *UserBuilder {
	return &UserBuilder{
		user: &dirmodels.User{
			ID:        id.UserID(uuid.New()),
			TenantKey: "acme",
			Email:     "test@acme.com",
			Role:      dirmodels.RoleMember,
			Status:    dirmodels.StatusActive,
			CreatedAt: FixedTime,
			UpdatedAt: FixedTime,
		},
	}
}

func (b *UserBuilder) WithTenant(key id.TenantKey) *UserBuilder {
	b.user.TenantKey = key
	return b
}

func (b *UserBuilder) WithEmail(email string) *UserBuilder {
	b.user.Email = email
	return b
}

func (b *UserBuilder) WithRole(role dirmodels.Role) *UserBuilder {
	b.user.Role = role
	return b
}

func (b *UserBuilder) Inactive() *UserBuilder {
	b.user.Status = dirmodels.StatusInactive
	return b
}

func (b *UserBuilder) Build() *dirmodels.User {
	return b.user
}

// SessionBuilder builds sessions for a user, live for an hour by default.
type SessionBuilder struct {
	session *dirmodels.Session
}

func NewSessionBuilder(user *dirmodels.User) *SessionBuilder {
	return &SessionBuilder{session: dirmodels.NewSession(user, FixedTime, time.Hour)}
}

func (b *SessionBuilder) ExpiringAt(t time.Time) *SessionBuilder {
	b.session.ExpiresAt = t
	return b
}

func (b *SessionBuilder) Build() *dirmodels.Session {
	return b.session
}

// TenantBuilder builds an active tenant whose first domain is "<key>.com".
type TenantBuilder struct {
	tenant *tenantmodels.Tenant
}

func NewTenantBuilder(key id.TenantKey) *TenantBuilder {
	return &TenantBuilder{
		tenant: &tenantmodels.Tenant{
			Key:         key,
			DisplayName: key.String() + ".com",
			Status:      tenantmodels.StatusActive,
			Domains:     []tenantmodels.AllowedDomain{{Domain: key.String() + ".com"}},
			CreatedAt:   FixedTime,
			UpdatedAt:   FixedTime,
		},
	}
}

func (b *TenantBuilder) WithDomain(domain string, allowSubdomains bool) *TenantBuilder {
	b.tenant.Domains = append(b.tenant.Domains, tenantmodels.AllowedDomain{Domain: domain, AllowSubdomains: allowSubdomains})
	return b
}

func (b *TenantBuilder) Deactivated() *TenantBuilder {
	at := FixedTime
	b.tenant.Status = tenantmodels.StatusDeactivated
	b.tenant.DeactivatedAt = &at
	return b
}

func (b *TenantBuilder) Build() *tenantmodels.Tenant {
	return b.tenant
}
