package migration

import id "realmbridge/pkg/domain"

// Request asks for every user of TenantKey whose address is in OldDomain to be
// moved to NewDomain. NewDomain is allowed on the tenant first.
type Request struct {
	TenantKey       id.TenantKey
	OldDomain       string
	NewDomain       string
	AllowSubdomains bool
}

// Stage names the step at which a user's migration failed.
type Stage string

const (
	StageEnumerate  Stage = "enumerate"
	StageInvalidate Stage = "invalidate_sessions"
	StageRewrite    Stage = "rewrite_email"
)

// Failure records one user that could not be migrated. UserID is zero for
// enumeration failures.
type Failure struct {
	UserID id.UserID
	Email  string
	Stage  Stage
	Cause  error
}

// Report is the outcome of a migration. Migrated+Skipped+Failed counts every
// user visited; Aborted is set when the run stopped on cancellation.
type Report struct {
	TenantKey id.TenantKey
	OldDomain string
	NewDomain string
	Migrated  int
	Skipped   int
	Failed    int
	Failures  []Failure
	Aborted   bool
}

func (r *Report) fail(f Failure) {
	r.Failed++
	r.Failures = append(r.Failures, f)
}
