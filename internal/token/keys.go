package token

import (
	"context"
	"strings"

	dErrors "realmbridge/pkg/domain-errors"
)

// KeyProvider resolves the shared secret a tenant signs its tokens with, and
// the platform secret that authorizes tenant lifecycle changes.
// Implementations return ErrKeyNotFound when no key applies.
type KeyProvider interface {
	LookupKey(ctx context.Context, tenantHint string) ([]byte, error)
	PlatformKey(ctx context.Context) ([]byte, error)
}

// StaticKeyProvider serves keys fixed at construction time: one per tenant
// plus an optional default used for tenants without their own key.
type StaticKeyProvider struct {
	keys       map[string][]byte
	defaultKey []byte
}

// NewStaticKeyProvider copies keys so later changes to the map are not observed.
// Tenant hints are matched case-insensitively.
func NewStaticKeyProvider(keys map[string]string, defaultKey string) (*StaticKeyProvider, error) {
	p := &StaticKeyProvider{keys: make(map[string][]byte, len(keys))}
	for tenant, key := range keys {
		tenant = strings.ToLower(strings.TrimSpace(tenant))
		if tenant == "" || key == "" {
			return nil, dErrors.New(dErrors.CodeConfig, "tenant signing keys must have a tenant and a non-empty key")
		}
		p.keys[tenant] = []byte(key)
	}
	if defaultKey != "" {
		p.defaultKey = []byte(defaultKey)
	}
	return p, nil
}

func (p *StaticKeyProvider) LookupKey(_ context.Context, tenantHint string) ([]byte, error) {
	if key, ok := p.keys[strings.ToLower(strings.TrimSpace(tenantHint))]; ok {
		return key, nil
	}
	if p.defaultKey != nil {
		return p.defaultKey, nil
	}
	return nil, ErrKeyNotFound
}

// PlatformKey returns the default key. Tenant keys never qualify.
func (p *StaticKeyProvider) PlatformKey(_ context.Context) ([]byte, error) {
	if p.defaultKey == nil {
		return nil, ErrKeyNotFound
	}
	return p.defaultKey, nil
}

var _ KeyProvider = (*StaticKeyProvider)(nil)
