// Package seeder populates a fresh deployment with a demo tenant.
package seeder

import (
	"context"
	"fmt"
	"log/slog"

	dirmodels "realmbridge/internal/directory/models"
	tenantmodels "realmbridge/internal/tenant/models"
	id "realmbridge/pkg/domain"
	dErrors "realmbridge/pkg/domain-errors"
)

const (
	DemoTenant = "demo"
	DemoDomain = "demo.example"
)

type TenantRegistry interface {
	Create(ctx context.Context, rawKey, displayName string) (*tenantmodels.Tenant, error)
}

type UserRegistrar interface {
	Register(ctx context.Context, tenant id.TenantKey, email, fullName string, role dirmodels.Role) (*dirmodels.User, error)
}

// Seeder creates the demo tenant and its users. Running it twice is harmless:
// records that already exist are left alone.
type Seeder struct {
	tenants TenantRegistry
	users   UserRegistrar
	logger  *slog.Logger
}

func New(tenants TenantRegistry, users UserRegistrar, logger *slog.Logger) *Seeder {
	return &Seeder{tenants: tenants, users: users, logger: logger}
}

func (s *Seeder) SeedAll(ctx context.Context) error {
	s.logger.InfoContext(ctx, "seeding demo data")

	if _, err := s.tenants.Create(ctx, DemoTenant, DemoDomain); err != nil && !dErrors.HasCode(err, dErrors.CodeConflict) {
		return fmt.Errorf("failed to seed tenant: %w", err)
	}

	demoUsers := []struct {
		local    string
		fullName string
		role     dirmodels.Role
	}{
		{"owner", "Olivia Owner", dirmodels.RoleOwner},
		{"admin", "Adam Admin", dirmodels.RoleAdministrator},
		{"alice", "Alice Member", dirmodels.RoleMember},
		{"guest", "", dirmodels.RoleGuest},
	}

	created := 0
	for _, u := range demoUsers {
		email := id.JoinEmail(u.local, DemoDomain)
		_, err := s.users.Register(ctx, id.TenantKey(DemoTenant), email, u.fullName, u.role)
		switch {
		case err == nil:
			created++
		case dErrors.HasCode(err, dErrors.CodeConflict):
		default:
			return fmt.Errorf("failed to seed user %s: %w", email, err)
		}
	}

	s.logger.InfoContext(ctx, "demo data seeded",
		"tenant_key", DemoTenant,
		"users_created", created,
	)
	return nil
}
