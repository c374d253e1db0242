package seeder

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dirservice "realmbridge/internal/directory/service"
	sessionstore "realmbridge/internal/directory/store/session"
	userstore "realmbridge/internal/directory/store/user"
	tenantservice "realmbridge/internal/tenant/service"
	tenantstore "realmbridge/internal/tenant/store/tenant"
	id "realmbridge/pkg/domain"
)

func TestSeedAllIsIdempotent(t *testing.T) {
	ctx := context.Background()
	tenants := tenantservice.New(tenantstore.NewInMemory())
	users := dirservice.New(userstore.NewInMemoryUserStore(), sessionstore.New())
	s := New(tenants, users, slog.New(slog.NewTextHandler(io.Discard, nil)))

	require.NoError(t, s.SeedAll(ctx))
	require.NoError(t, s.SeedAll(ctx))

	tenant, err := tenants.Get(ctx, DemoTenant)
	require.NoError(t, err)
	assert.True(t, tenant.HasDomain(DemoDomain))

	var emails []string
	for u, err := range users.ListUsers(ctx, id.TenantKey(DemoTenant)) {
		require.NoError(t, err)
		emails = append(emails, u.Email)
	}
	assert.ElementsMatch(t, []string{
		"owner@demo.example",
		"admin@demo.example",
		"alice@demo.example",
		"guest@demo.example",
	}, emails)
}
