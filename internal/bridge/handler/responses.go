package handler

import (
	"realmbridge/internal/migration"
	dErrors "realmbridge/pkg/domain-errors"
	"realmbridge/pkg/platform/httputil"
)

type APIKeyResponse struct {
	APIKey string `json:"api_key"`
	Email  string `json:"email"`
}

type CreateRealmResponse struct {
	DomainID string `json:"domain_id"`
}

type RealmResponse struct {
	RealmID string `json:"realm_id"`
}

type MigrationFailureResponse struct {
	UserID string `json:"user_id,omitempty"`
	Email  string `json:"email,omitempty"`
	Stage  string `json:"stage"`
	Error  string `json:"error"`
}

type AllowDomainResponse struct {
	RealmID         string                     `json:"realm_id"`
	OldDomainName   string                     `json:"old_domain_name"`
	AllowDomainName string                     `json:"allow_domain_name"`
	Migrated        int                        `json:"migrated"`
	Skipped         int                        `json:"skipped"`
	Failed          int                        `json:"failed"`
	Failures        []MigrationFailureResponse `json:"failures"`
	Aborted         bool                       `json:"aborted,omitempty"`
}

// toAllowDomainResponse reports failure causes by error code only.
func toAllowDomainResponse(r *migration.Report) AllowDomainResponse {
	resp := AllowDomainResponse{
		RealmID:         r.TenantKey.String(),
		OldDomainName:   r.OldDomain,
		AllowDomainName: r.NewDomain,
		Migrated:        r.Migrated,
		Skipped:         r.Skipped,
		Failed:          r.Failed,
		Failures:        make([]MigrationFailureResponse, 0, len(r.Failures)),
		Aborted:         r.Aborted,
	}
	for _, f := range r.Failures {
		item := MigrationFailureResponse{
			Email: f.Email,
			Stage: string(f.Stage),
			Error: httputil.DomainCodeToHTTPCode(dErrors.CodeOf(f.Cause)),
		}
		if !f.UserID.IsNil() {
			item.UserID = f.UserID.String()
		}
		resp.Failures = append(resp.Failures, item)
	}
	return resp
}
