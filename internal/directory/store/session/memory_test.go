package session

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"realmbridge/internal/directory/models"
	id "realmbridge/pkg/domain"
	"realmbridge/pkg/requestcontext"
	"realmbridge/pkg/testutil"
)

var now = time.Date(2026, 3, 3, 12, 0, 0, 0, time.UTC)

func newSession(user id.UserID, tenant id.TenantKey, ttl time.Duration) *models.Session {
	return &models.Session{
		ID:        id.SessionID(uuid.New()),
		UserID:    user,
		TenantKey: tenant,
		CreatedAt: now,
		ExpiresAt: now.Add(ttl),
	}
}

func TestInMemorySessionStore_ListByUserSkipsExpired(t *testing.T) {
	s := New()
	ctx := requestcontext.WithTime(context.Background(), now.Add(30*time.Minute))
	alice := id.UserID(uuid.New())

	live := newSession(alice, "acme", time.Hour)
	require.NoError(t, s.Create(ctx, live))
	require.NoError(t, s.Create(ctx, newSession(alice, "acme", time.Minute)))
	require.NoError(t, s.Create(ctx, newSession(id.UserID(uuid.New()), "acme", time.Hour)))

	sessions, err := s.ListByUser(ctx, alice)
	require.NoError(t, err)
	require.Len(t, sessions, 1)
	assert.Equal(t, live.ID, sessions[0].ID)
}

func TestInMemorySessionStore_Delete(t *testing.T) {
	s := New()
	ctx := context.Background()
	alice, bob := id.UserID(uuid.New()), id.UserID(uuid.New())
	for _, sess := range []*models.Session{
		newSession(alice, "acme", time.Hour),
		newSession(alice, "acme", time.Hour),
		newSession(bob, "acme", time.Hour),
		newSession(id.UserID(uuid.New()), "beta", time.Hour),
	} {
		require.NoError(t, s.Create(ctx, sess))
	}

	n, err := s.DeleteByUser(ctx, alice)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	n, err = s.DeleteByUser(ctx, alice)
	require.NoError(t, err)
	assert.Zero(t, n, "deleting twice is not an error")

	n, err = s.DeleteByTenant(ctx, "acme")
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	n, err = s.DeleteByTenant(ctx, "beta")
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestInMemorySessionStore_DeleteByTenantIsScoped(t *testing.T) {
	s := New()
	ctx := requestcontext.WithTime(context.Background(), testutil.FixedTime)

	alice := testutil.NewUserBuilder().WithEmail("alice@acme.com").Build()
	bob := testutil.NewUserBuilder().WithTenant("beta").WithEmail("bob@beta.com").Build()
	require.NoError(t, s.Create(ctx, testutil.NewSessionBuilder(alice).Build()))
	require.NoError(t, s.Create(ctx, testutil.NewSessionBuilder(alice).ExpiringAt(testutil.FixedTime.Add(time.Minute)).Build()))
	require.NoError(t, s.Create(ctx, testutil.NewSessionBuilder(bob).Build()))

	n, err := s.DeleteByTenant(ctx, "acme")
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	left, err := s.ListByUser(ctx, bob.ID)
	require.NoError(t, err)
	assert.Len(t, left, 1)
}
