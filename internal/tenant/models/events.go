package models

import id "realmbridge/pkg/domain"

// Domain events capture what happened to a tenant. The service layer
// publishes them to the audit system.

type TenantCreated struct {
	TenantKey id.TenantKey
}

type TenantDeactivated struct {
	TenantKey id.TenantKey
}

type TenantDomainAdded struct {
	TenantKey       id.TenantKey
	Domain          string
	AllowSubdomains bool
}
