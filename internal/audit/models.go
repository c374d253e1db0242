package audit

import (
	"time"

	id "realmbridge/pkg/domain"
)

// Event is emitted from domain logic to capture key actions. Keep it
// transport-agnostic so stores and sinks can fan out.
type Event struct {
	Timestamp time.Time    `json:"timestamp"`
	Action    Action       `json:"action"`
	TenantKey id.TenantKey `json:"tenant_key,omitempty"`
	UserID    string       `json:"user_id,omitempty"`
	Email     string       `json:"email,omitempty"`
	Detail    string       `json:"detail,omitempty"`
	RequestID string       `json:"request_id,omitempty"`
}

type Action string

const (
	ActionTenantCreated        Action = "tenant_created"
	ActionTenantDeactivated    Action = "tenant_deactivated"
	ActionTenantDomainAdded    Action = "tenant_domain_added"
	ActionTenantDomainMigrated Action = "tenant_domain_migrated"
	ActionUserEmailChanged     Action = "user_email_changed"
	ActionSessionsRevoked      Action = "sessions_revoked"
	ActionCredentialIssued     Action = "credential_issued"
	ActionRoleChanged          Action = "role_changed"
)
