package models

import (
	"slices"
	"strings"
	"time"

	id "realmbridge/pkg/domain"
	dErrors "realmbridge/pkg/domain-errors"
)

type Status string

const (
	StatusActive      Status = "active"
	StatusDeactivated Status = "deactivated"
)

// AllowedDomain is an email domain users of a tenant may have addresses in.
type AllowedDomain struct {
	Domain          string `json:"domain"`
	AllowSubdomains bool   `json:"allow_subdomains"`
}

// Tenant is an isolated realm of users. Tenants are never deleted; a
// deactivated tenant accepts no new authentications.
type Tenant struct {
	Key           id.TenantKey    `json:"key"`
	DisplayName   string          `json:"display_name"`
	Status        Status          `json:"status"`
	Domains       []AllowedDomain `json:"domains"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
	DeactivatedAt *time.Time      `json:"deactivated_at,omitempty"`
}

const maxDisplayNameLength = 128

// NewTenant builds an active tenant whose first allowed domain is its display
// name, lower-cased and without subdomains. The name is free text: a name such
// as "Acme Co" is seeded as "acme co" and simply never matches an address.
func NewTenant(key id.TenantKey, displayName string, now time.Time) (*Tenant, error) {
	if key.IsNil() {
		return nil, dErrors.New(dErrors.CodeValidation, "tenant key cannot be empty")
	}
	displayName = strings.TrimSpace(displayName)
	if displayName == "" {
		return nil, dErrors.New(dErrors.CodeValidation, "tenant display name cannot be empty")
	}
	if len(displayName) > maxDisplayNameLength {
		return nil, dErrors.New(dErrors.CodeValidation, "tenant display name must be 128 characters or less")
	}
	return &Tenant{
		Key:         key,
		DisplayName: displayName,
		Status:      StatusActive,
		Domains:     []AllowedDomain{{Domain: strings.ToLower(displayName)}},
		CreatedAt:   now,
		UpdatedAt:   now,
	}, nil
}

func (t *Tenant) IsActive() bool {
	return t.Status == StatusActive
}

// Deactivate reports whether the call changed the tenant. Deactivating an
// already deactivated tenant is a no-op.
func (t *Tenant) Deactivate(now time.Time) bool {
	if !t.IsActive() {
		return false
	}
	t.Status = StatusDeactivated
	t.UpdatedAt = now
	t.DeactivatedAt = &now
	return true
}

// HasDomain reports whether domain (already normalized) is allowed.
func (t *Tenant) HasDomain(domain string) bool {
	return slices.ContainsFunc(t.Domains, func(d AllowedDomain) bool {
		return d.Domain == domain
	})
}

// AddDomain appends domain unless it is already allowed, in which case the
// existing entry and its subdomain flag are kept.
func (t *Tenant) AddDomain(domain string, allowSubdomains bool, now time.Time) bool {
	if t.HasDomain(domain) {
		return false
	}
	t.Domains = append(t.Domains, AllowedDomain{Domain: domain, AllowSubdomains: allowSubdomains})
	t.UpdatedAt = now
	return true
}

// Clone returns a deep copy so in-memory stores never share slices with callers.
func (t *Tenant) Clone() *Tenant {
	c := *t
	c.Domains = slices.Clone(t.Domains)
	if t.DeactivatedAt != nil {
		at := *t.DeactivatedAt
		c.DeactivatedAt = &at
	}
	return &c
}
