package handler

import (
	"net/url"
	"strconv"
	"strings"

	"realmbridge/pkg/validation"
)

// TokenRequest is the body of the login and API key endpoints. An empty token
// is left to the verifier, which reports it as malformed.
type TokenRequest struct {
	JSONWebToken string `json:"json_web_token" form:"json_web_token"`
}

func (r *TokenRequest) BindForm(values url.Values) {
	r.JSONWebToken = values.Get("json_web_token")
}

func (r *TokenRequest) Normalize() {
	r.JSONWebToken = strings.TrimSpace(r.JSONWebToken)
}

// Presence of the lifecycle fields is checked here; their content is checked
// by the services so the lenient lifecycle policy can apply to it.

type CreateRealmRequest struct {
	JSONWebToken string `json:"json_web_token" form:"json_web_token"`
	DomainID     string `json:"domain_id" form:"domain_id" validate:"required,notblank"`
	DomainName   string `json:"domain_name" form:"domain_name" validate:"required,notblank"`
}

func (r *CreateRealmRequest) BindForm(values url.Values) {
	r.JSONWebToken = values.Get("json_web_token")
	r.DomainID = values.Get("domain_id")
	r.DomainName = values.Get("domain_name")
}

func (r *CreateRealmRequest) Normalize() {
	r.JSONWebToken = strings.TrimSpace(r.JSONWebToken)
	r.DomainID = strings.TrimSpace(r.DomainID)
	r.DomainName = strings.TrimSpace(r.DomainName)
}

func (r *CreateRealmRequest) Validate() error {
	return validation.Validate(r)
}

type DeactivateRealmRequest struct {
	JSONWebToken string `json:"json_web_token" form:"json_web_token"`
	RealmID      string `json:"realm_id" form:"realm_id" validate:"required,notblank"`
}

func (r *DeactivateRealmRequest) BindForm(values url.Values) {
	r.JSONWebToken = values.Get("json_web_token")
	r.RealmID = values.Get("realm_id")
}

func (r *DeactivateRealmRequest) Normalize() {
	r.JSONWebToken = strings.TrimSpace(r.JSONWebToken)
	r.RealmID = strings.TrimSpace(r.RealmID)
}

func (r *DeactivateRealmRequest) Validate() error {
	return validation.Validate(r)
}

type AllowDomainRequest struct {
	JSONWebToken    string `json:"json_web_token" form:"json_web_token"`
	RealmID         string `json:"realm_id" form:"realm_id" validate:"required,notblank"`
	OldDomainName   string `json:"old_domain_name" form:"old_domain_name" validate:"required,notblank"`
	AllowDomainName string `json:"allow_domain_name" form:"allow_domain_name" validate:"required,notblank"`
	AllowSubdomain  bool   `json:"allow_subdomain" form:"allow_subdomain"`
}

// BindForm accepts the usual HTML truthy spellings for allow_subdomain.
func (r *AllowDomainRequest) BindForm(values url.Values) {
	r.JSONWebToken = values.Get("json_web_token")
	r.RealmID = values.Get("realm_id")
	r.OldDomainName = values.Get("old_domain_name")
	r.AllowDomainName = values.Get("allow_domain_name")
	r.AllowSubdomain = parseFormBool(values.Get("allow_subdomain"))
}

func (r *AllowDomainRequest) Normalize() {
	r.JSONWebToken = strings.TrimSpace(r.JSONWebToken)
	r.RealmID = strings.TrimSpace(r.RealmID)
	r.OldDomainName = strings.TrimSpace(r.OldDomainName)
	r.AllowDomainName = strings.TrimSpace(r.AllowDomainName)
}

func (r *AllowDomainRequest) Validate() error {
	return validation.Validate(r)
}

func parseFormBool(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "on", "yes":
		return true
	}
	b, _ := strconv.ParseBool(v)
	return b
}
