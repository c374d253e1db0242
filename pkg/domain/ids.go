// Package domain provides type-safe identifiers to prevent mixing up IDs at compile time.
package domain

import (
	"regexp"
	"strings"

	"github.com/google/uuid"

	dErrors "realmbridge/pkg/domain-errors"
)

// Distinct ID types - compiler prevents passing UserID where SessionID is expected.
type (
	UserID    uuid.UUID
	SessionID uuid.UUID
)

// TenantKey is the globally unique string key of a tenant (its subdomain).
type TenantKey string

var tenantKeyPattern = regexp.MustCompile(`^[a-z0-9][a-z0-9-]{0,39}$`)

// Parse functions - use at trust boundaries (handlers, API inputs).

func ParseUserID(s string) (UserID, error) {
	id, err := parseUUID(s, "user ID")
	return UserID(id), err
}

func ParseSessionID(s string) (SessionID, error) {
	id, err := parseUUID(s, "session ID")
	return SessionID(id), err
}

// ParseTenantKey lower-cases and validates a tenant key.
func ParseTenantKey(s string) (TenantKey, error) {
	key := strings.ToLower(strings.TrimSpace(s))
	if key == "" {
		return "", dErrors.New(dErrors.CodeValidation, "tenant key cannot be empty")
	}
	if !tenantKeyPattern.MatchString(key) {
		return "", dErrors.New(dErrors.CodeValidation, "invalid tenant key format")
	}
	return TenantKey(key), nil
}

func (id UserID) String() string    { return uuid.UUID(id).String() }
func (id SessionID) String() string { return uuid.UUID(id).String() }
func (k TenantKey) String() string  { return string(k) }

func (id UserID) IsNil() bool    { return uuid.UUID(id) == uuid.Nil }
func (id SessionID) IsNil() bool { return uuid.UUID(id) == uuid.Nil }
func (k TenantKey) IsNil() bool  { return k == "" }

func parseUUID(s, label string) (uuid.UUID, error) {
	if s == "" {
		return uuid.Nil, dErrors.New(dErrors.CodeValidation, label+" cannot be empty")
	}
	id, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, dErrors.New(dErrors.CodeValidation, "invalid "+label+" format")
	}
	if id == uuid.Nil {
		return uuid.Nil, dErrors.New(dErrors.CodeValidation, label+" cannot be nil")
	}
	return id, nil
}
