package user

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"realmbridge/internal/directory/models"
	id "realmbridge/pkg/domain"
	"realmbridge/pkg/platform/sentinel"
)

var now = time.Date(2026, 3, 3, 0, 0, 0, 0, time.UTC)

func mustUser(t *testing.T, s *InMemoryUserStore, tenant id.TenantKey, email string) *models.User {
	t.Helper()
	u, err := models.NewUser(tenant, email, "", models.RoleMember, now)
	require.NoError(t, err)
	require.NoError(t, s.Create(context.Background(), u))
	return u
}

func TestInMemoryUserStore_EmailIsUniquePerTenant(t *testing.T) {
	s := NewInMemoryUserStore()
	ctx := context.Background()
	mustUser(t, s, "acme", "a@old.com")

	dup, err := models.NewUser("acme", "A@OLD.com", "", models.RoleMember, now)
	require.NoError(t, err)
	assert.ErrorIs(t, s.Create(ctx, dup), sentinel.ErrAlreadyUsed)

	other, err := models.NewUser("beta", "a@old.com", "", models.RoleMember, now)
	require.NoError(t, err)
	assert.NoError(t, s.Create(ctx, other))
}

func TestInMemoryUserStore_FindByEmailIgnoresCase(t *testing.T) {
	s := NewInMemoryUserStore()
	u := mustUser(t, s, "acme", "Alice@Acme.com")

	found, err := s.FindByEmail(context.Background(), "acme", "alice@acme.COM")
	require.NoError(t, err)
	assert.Equal(t, u.ID, found.ID)

	_, err = s.FindByEmail(context.Background(), "beta", "alice@acme.com")
	assert.ErrorIs(t, err, sentinel.ErrNotFound)
}

func TestInMemoryUserStore_ListIsTenantScopedSnapshot(t *testing.T) {
	s := NewInMemoryUserStore()
	ctx := context.Background()
	a := mustUser(t, s, "acme", "a@old.com")
	mustUser(t, s, "beta", "x@beta.com")
	b := mustUser(t, s, "acme", "b@old.com")

	var seen []id.UserID
	for u, err := range s.List(ctx, "acme") {
		require.NoError(t, err)
		seen = append(seen, u.ID)
		// Writes during iteration must not deadlock.
		require.NoError(t, s.UpdateEmail(ctx, u.ID, u.Email+".moved", now))
	}
	assert.Equal(t, []id.UserID{a.ID, b.ID}, seen)
}

func TestInMemoryUserStore_UpdateEmail(t *testing.T) {
	s := NewInMemoryUserStore()
	ctx := context.Background()
	a := mustUser(t, s, "acme", "a@old.com")
	mustUser(t, s, "acme", "a@new.com")

	assert.ErrorIs(t, s.UpdateEmail(ctx, a.ID, "A@new.com", now), sentinel.ErrAlreadyUsed)

	require.NoError(t, s.UpdateEmail(ctx, a.ID, "a@newer.com", now))
	_, err := s.FindByEmail(ctx, "acme", "a@old.com")
	assert.ErrorIs(t, err, sentinel.ErrNotFound, "old address is released")

	found, err := s.FindByEmail(ctx, "acme", "a@newer.com")
	require.NoError(t, err)
	assert.Equal(t, a.ID, found.ID)

	assert.ErrorIs(t, s.UpdateEmail(ctx, id.UserID{}, "x@y.com", now), sentinel.ErrNotFound)
}

func TestInMemoryUserStore_SetAPIKeyIfEmpty(t *testing.T) {
	s := NewInMemoryUserStore()
	ctx := context.Background()
	u := mustUser(t, s, "acme", "a@old.com")

	key, err := s.SetAPIKeyIfEmpty(ctx, u.ID, "first")
	require.NoError(t, err)
	assert.Equal(t, "first", key)

	key, err = s.SetAPIKeyIfEmpty(ctx, u.ID, "second")
	require.NoError(t, err)
	assert.Equal(t, "first", key)
}

func TestInMemoryUserStore_ReturnsCopies(t *testing.T) {
	s := NewInMemoryUserStore()
	u := mustUser(t, s, "acme", "a@old.com")

	found, err := s.FindByID(context.Background(), u.ID)
	require.NoError(t, err)
	found.Role = models.RoleOwner

	again, err := s.FindByID(context.Background(), u.ID)
	require.NoError(t, err)
	assert.Equal(t, models.RoleMember, again.Role)
}
