package models

import (
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"

	id "realmbridge/pkg/domain"
	dErrors "realmbridge/pkg/domain-errors"
)

// Role is a tenant-scoped permission level.
type Role string

const (
	RoleOwner         Role = "owner"
	RoleAdministrator Role = "administrator"
	RoleModerator     Role = "moderator"
	RoleMember        Role = "member"
	RoleGuest         Role = "guest"
)

var roles = []Role{RoleOwner, RoleAdministrator, RoleModerator, RoleMember, RoleGuest}

func (r Role) Valid() bool {
	return slices.Contains(roles, r)
}

// ParseRole accepts role names case-insensitively.
func ParseRole(s string) (Role, error) {
	r := Role(strings.ToLower(strings.TrimSpace(s)))
	if !r.Valid() {
		return "", dErrors.New(dErrors.CodeValidation, "unknown role "+s)
	}
	return r, nil
}

type Status string

const (
	StatusActive   Status = "active"
	StatusInactive Status = "inactive"
)

// User is an identity owned by exactly one tenant.
type User struct {
	ID        id.UserID
	TenantKey id.TenantKey
	Email     string
	FullName  string
	Role      Role
	Status    Status
	APIKey    string
	CreatedAt time.Time
	UpdatedAt time.Time
}

func NewUser(tenantKey id.TenantKey, email, fullName string, role Role, now time.Time) (*User, error) {
	if tenantKey.IsNil() {
		return nil, dErrors.New(dErrors.CodeValidation, "tenant key is required")
	}
	if local, domain, ok := id.SplitEmail(email); !ok || local == "" || domain == "" {
		return nil, dErrors.New(dErrors.CodeValidation, "invalid email address")
	}
	if role == "" {
		role = RoleMember
	}
	if !role.Valid() {
		return nil, dErrors.New(dErrors.CodeValidation, "unknown role "+string(role))
	}
	return &User{
		ID:        id.UserID(uuid.New()),
		TenantKey: tenantKey,
		Email:     email,
		FullName:  fullName,
		Role:      role,
		Status:    StatusActive,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

func (u *User) IsActive() bool {
	return u.Status == StatusActive
}

// UserSummary is the element of a tenant user listing.
type UserSummary struct {
	ID        id.UserID
	TenantKey id.TenantKey
	Email     string
	Active    bool
}

func (u *User) Summary() UserSummary {
	return UserSummary{ID: u.ID, TenantKey: u.TenantKey, Email: u.Email, Active: u.IsActive()}
}

// Session is a live login of a user. Sessions are owned by the session store.
type Session struct {
	ID        id.SessionID
	UserID    id.UserID
	TenantKey id.TenantKey
	CreatedAt time.Time
	ExpiresAt time.Time
}

func NewSession(user *User, now time.Time, ttl time.Duration) *Session {
	return &Session{
		ID:        id.SessionID(uuid.New()),
		UserID:    user.ID,
		TenantKey: user.TenantKey,
		CreatedAt: now,
		ExpiresAt: now.Add(ttl),
	}
}

// Credential is the API key of a user together with the address it belongs to.
type Credential struct {
	APIKey string `json:"api_key"`
	Email  string `json:"email"`
}
