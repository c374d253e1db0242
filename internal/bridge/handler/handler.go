// Package handler exposes the bridge over HTTP. Every endpoint takes a form or
// JSON body carrying json_web_token; the tenant hint comes from the request
// context, set by the tenant hint middleware.
package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	bridgeservice "realmbridge/internal/bridge/service"
	dirmodels "realmbridge/internal/directory/models"
	"realmbridge/internal/identity"
	"realmbridge/internal/migration"
	"realmbridge/pkg/platform/httputil"
	"realmbridge/pkg/requestcontext"
)

// Service is the bridge façade.
type Service interface {
	Authenticate(ctx context.Context, tenantHint, rawToken string) (identity.ResolutionResult, error)
	IssueCredential(ctx context.Context, tenantHint, rawToken string) (*dirmodels.Credential, error)
	CreateTenant(ctx context.Context, tenantHint, rawToken, rawKey, displayName string) (string, error)
	DeactivateTenant(ctx context.Context, tenantHint, rawToken, rawKey string) (string, error)
	MigrateDomain(ctx context.Context, tenantHint, rawToken string, req bridgeservice.MigrateRequest) (*migration.Report, error)
}

type Handler struct {
	bridge    Service
	completer RemoteLoginCompleter
	logger    *slog.Logger
}

func New(bridge Service, completer RemoteLoginCompleter, logger *slog.Logger) *Handler {
	return &Handler{bridge: bridge, completer: completer, logger: logger}
}

func (h *Handler) Register(r chi.Router) {
	r.Post("/zimbra/jwt", h.HandleLogin)
	r.Post("/zimbra/api_key", h.HandleAPIKey)
	r.Post("/zimbra/realm/create", h.HandleCreateRealm)
	r.Post("/zimbra/realm/deactivate", h.HandleDeactivateRealm)
	r.Post("/zimbra/realm/allow_domain", h.HandleAllowDomain)
}

// HandleLogin resolves the token's identity and hands it to the completer.
func (h *Handler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	hint := requestcontext.TenantHint(ctx).String()

	req, ok := httputil.DecodeAndPrepare[TokenRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	res, err := h.bridge.Authenticate(ctx, hint, req.JSONWebToken)
	if err != nil {
		h.fail(ctx, w, "token login failed", hint, err)
		return
	}
	body, err := h.completer.Complete(ctx, res)
	if err != nil {
		h.fail(ctx, w, "login completion failed", hint, err)
		return
	}

	h.logger.InfoContext(ctx, "token login resolved",
		"request_id", requestID,
		"tenant_key", res.TenantKey.String(),
		"resolution", string(res.Kind),
	)
	httputil.WriteJSON(w, http.StatusOK, body)
}

func (h *Handler) HandleAPIKey(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	hint := requestcontext.TenantHint(ctx).String()

	req, ok := httputil.DecodeAndPrepare[TokenRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	cred, err := h.bridge.IssueCredential(ctx, hint, req.JSONWebToken)
	if err != nil {
		h.fail(ctx, w, "api key issuance failed", hint, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, APIKeyResponse{APIKey: cred.APIKey, Email: cred.Email})
}

func (h *Handler) HandleCreateRealm(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	hint := requestcontext.TenantHint(ctx).String()

	req, ok := httputil.DecodeAndPrepare[CreateRealmRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	key, err := h.bridge.CreateTenant(ctx, hint, req.JSONWebToken, req.DomainID, req.DomainName)
	if err != nil {
		h.fail(ctx, w, "realm creation failed", hint, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, CreateRealmResponse{DomainID: key})
}

func (h *Handler) HandleDeactivateRealm(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	hint := requestcontext.TenantHint(ctx).String()

	req, ok := httputil.DecodeAndPrepare[DeactivateRealmRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	key, err := h.bridge.DeactivateTenant(ctx, hint, req.JSONWebToken, req.RealmID)
	if err != nil {
		h.fail(ctx, w, "realm deactivation failed", hint, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, RealmResponse{RealmID: key})
}

// HandleAllowDomain allows a new domain on the realm and migrates the users of
// the old one. Per-user failures are part of a 200 response.
func (h *Handler) HandleAllowDomain(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	hint := requestcontext.TenantHint(ctx).String()

	req, ok := httputil.DecodeAndPrepare[AllowDomainRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	report, err := h.bridge.MigrateDomain(ctx, hint, req.JSONWebToken, bridgeservice.MigrateRequest{
		TenantKey:       req.RealmID,
		OldDomain:       req.OldDomainName,
		NewDomain:       req.AllowDomainName,
		AllowSubdomains: req.AllowSubdomain,
	})
	if err != nil {
		h.fail(ctx, w, "domain migration failed", hint, err)
		return
	}

	h.logger.InfoContext(ctx, "domain migration completed",
		"request_id", requestID,
		"tenant_key", report.TenantKey.String(),
		"migrated", report.Migrated,
		"failed", report.Failed,
	)
	httputil.WriteJSON(w, http.StatusOK, toAllowDomainResponse(report))
}

func (h *Handler) fail(ctx context.Context, w http.ResponseWriter, msg, hint string, err error) {
	h.logger.WarnContext(ctx, msg,
		"error", err,
		"tenant_hint", hint,
		"request_id", requestcontext.RequestID(ctx),
	)
	httputil.WriteError(w, err)
}
