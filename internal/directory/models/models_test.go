package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "realmbridge/pkg/domain-errors"
)

func TestParseRole(t *testing.T) {
	r, err := ParseRole(" Administrator ")
	require.NoError(t, err)
	assert.Equal(t, RoleAdministrator, r)

	_, err = ParseRole("superuser")
	assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation))
}

func TestNewUser(t *testing.T) {
	now := time.Now()

	u, err := NewUser("acme", "a@old.com", "a", "", now)
	require.NoError(t, err)
	assert.Equal(t, RoleMember, u.Role)
	assert.True(t, u.IsActive())
	assert.False(t, u.ID.IsNil())
	assert.Equal(t, UserSummary{ID: u.ID, TenantKey: u.TenantKey, Email: "a@old.com", Active: true}, u.Summary())

	for _, email := range []string{"no-at-sign", "@old.com", "a@"} {
		_, err := NewUser("acme", email, "", RoleMember, now)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation), email)
	}

	_, err = NewUser("acme", "a@old.com", "", Role("root"), now)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation))
}

func TestNewSession(t *testing.T) {
	now := time.Now()
	u, err := NewUser("acme", "a@old.com", "", RoleMember, now)
	require.NoError(t, err)

	s := NewSession(u, now, time.Hour)
	assert.Equal(t, u.ID, s.UserID)
	assert.Equal(t, u.TenantKey, s.TenantKey)
	assert.Equal(t, now.Add(time.Hour), s.ExpiresAt)
}
