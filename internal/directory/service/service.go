// Package service implements the user directory: lookup, lazy enumeration,
// role and email changes, session revocation and API keys.
package service

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"log/slog"
	"strconv"
	"time"

	"realmbridge/internal/audit"
	dirmetrics "realmbridge/internal/directory/metrics"
	"realmbridge/internal/directory/models"
	id "realmbridge/pkg/domain"
	dErrors "realmbridge/pkg/domain-errors"
	"realmbridge/pkg/platform/sentinel"
	"realmbridge/pkg/requestcontext"
	"realmbridge/pkg/secrets"
)

// UserStore persists users. Emails are unique per tenant, case-insensitively.
type UserStore interface {
	Create(ctx context.Context, u *models.User) error
	FindByID(ctx context.Context, userID id.UserID) (*models.User, error)
	FindByEmail(ctx context.Context, tenant id.TenantKey, email string) (*models.User, error)
	List(ctx context.Context, tenant id.TenantKey) iter.Seq2[*models.User, error]
	UpdateRole(ctx context.Context, userID id.UserID, role models.Role, now time.Time) error
	UpdateEmail(ctx context.Context, userID id.UserID, email string, now time.Time) error
	UpdateStatus(ctx context.Context, userID id.UserID, status models.Status, now time.Time) error
	SetAPIKeyIfEmpty(ctx context.Context, userID id.UserID, key string) (string, error)
}

// SessionStore owns sessions; the directory only opens and revokes them.
type SessionStore interface {
	Create(ctx context.Context, session *models.Session) error
	ListByUser(ctx context.Context, userID id.UserID) ([]*models.Session, error)
	DeleteByUser(ctx context.Context, userID id.UserID) (int, error)
	DeleteByTenant(ctx context.Context, tenant id.TenantKey) (int, error)
}

type Service struct {
	users      UserStore
	sessions   SessionStore
	logger     *slog.Logger
	publisher  audit.Sink
	metrics    *dirmetrics.Metrics
	audit      *audit.Emitter
	sessionTTL time.Duration
	newAPIKey  func() (string, error)
}

func New(users UserStore, sessions SessionStore, opts ...Option) *Service {
	s := &Service{
		users:      users,
		sessions:   sessions,
		sessionTTL: defaultSessionTTL,
		newAPIKey:  secrets.GenerateAPIKey,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.audit = audit.NewEmitter(s.logger, s.publisher)
	return s
}

// Register creates an active user in the tenant.
func (s *Service) Register(ctx context.Context, tenant id.TenantKey, email, fullName string, role models.Role) (*models.User, error) {
	u, err := models.NewUser(tenant, email, fullName, role, requestcontext.Now(ctx))
	if err != nil {
		return nil, err
	}
	if err := s.users.Create(ctx, u); err != nil {
		if errors.Is(err, sentinel.ErrAlreadyUsed) {
			return nil, dErrors.Wrap(err, dErrors.CodeConflict, "email already registered in tenant")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to register user")
	}
	return u, nil
}

// FindByEmail looks the address up within one tenant, ignoring case.
func (s *Service) FindByEmail(ctx context.Context, tenant id.TenantKey, email string) (*models.User, error) {
	u, err := s.users.FindByEmail(ctx, tenant, email)
	if err != nil {
		return nil, wrapUserErr(err, "failed to find user")
	}
	return u, nil
}

func (s *Service) FindByID(ctx context.Context, userID id.UserID) (*models.User, error) {
	u, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, wrapUserErr(err, "failed to load user")
	}
	return u, nil
}

// OpenSession starts a session for a bridged login.
func (s *Service) OpenSession(ctx context.Context, user *models.User) (*models.Session, error) {
	session := models.NewSession(user, requestcontext.Now(ctx), s.sessionTTL)
	if err := s.sessions.Create(ctx, session); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to open session")
	}
	if s.metrics != nil {
		s.metrics.SessionsOpened.Inc()
	}
	return session, nil
}

// GetAPIKey returns the user's API key, generating and storing one on first use.
// Concurrent first uses converge on whichever key the store kept.
func (s *Service) GetAPIKey(ctx context.Context, user *models.User) (*models.Credential, error) {
	if user.APIKey != "" {
		return &models.Credential{APIKey: user.APIKey, Email: user.Email}, nil
	}
	candidate, err := s.newAPIKey()
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to generate api key")
	}
	stored, err := s.users.SetAPIKeyIfEmpty(ctx, user.ID, candidate)
	if err != nil {
		return nil, wrapUserErr(err, "failed to store api key")
	}
	user.APIKey = stored

	if stored == candidate {
		if s.metrics != nil {
			s.metrics.CredentialsIssued.Inc()
		}
		s.audit.Emit(ctx, audit.Event{
			Action:    audit.ActionCredentialIssued,
			TenantKey: user.TenantKey,
			UserID:    user.ID.String(),
			Email:     user.Email,
		})
	}
	return &models.Credential{APIKey: stored, Email: user.Email}, nil
}

// ListUsers yields the tenant's users lazily in a single pass. A store failure
// is yielded once as an internal error and ends the sequence.
func (s *Service) ListUsers(ctx context.Context, tenant id.TenantKey) iter.Seq2[models.UserSummary, error] {
	return func(yield func(models.UserSummary, error) bool) {
		for u, err := range s.users.List(ctx, tenant) {
			if err != nil {
				yield(models.UserSummary{}, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list users"))
				return
			}
			if !yield(u.Summary(), nil) {
				return
			}
		}
	}
}

// UpdateRole sets the user's role. A nil role or the current role is a no-op.
func (s *Service) UpdateRole(ctx context.Context, user *models.User, role *models.Role) error {
	if role == nil || *role == user.Role {
		return nil
	}
	if !role.Valid() {
		return dErrors.New(dErrors.CodeValidation, "unknown role "+string(*role))
	}
	if err := s.users.UpdateRole(ctx, user.ID, *role, requestcontext.Now(ctx)); err != nil {
		return wrapUserErr(err, "failed to update role")
	}
	previous := user.Role
	user.Role = *role

	s.audit.Emit(ctx, audit.Event{
		Action:    audit.ActionRoleChanged,
		TenantKey: user.TenantKey,
		UserID:    user.ID.String(),
		Detail:    fmt.Sprintf("%s -> %s", previous, *role),
	})
	return nil
}

// RewriteEmail moves the user to newEmail. Another user of the tenant owning
// the address is a conflict.
func (s *Service) RewriteEmail(ctx context.Context, user models.UserSummary, newEmail string) error {
	if local, domain, ok := id.SplitEmail(newEmail); !ok || local == "" || domain == "" {
		return dErrors.New(dErrors.CodeValidation, "invalid email address")
	}
	if err := s.users.UpdateEmail(ctx, user.ID, newEmail, requestcontext.Now(ctx)); err != nil {
		if errors.Is(err, sentinel.ErrAlreadyUsed) {
			return dErrors.Wrap(err, dErrors.CodeConflict, "email already used in tenant")
		}
		return wrapUserErr(err, "failed to rewrite email")
	}

	if s.metrics != nil {
		s.metrics.EmailsRewritten.Inc()
	}
	s.audit.Emit(ctx, audit.Event{
		Action:    audit.ActionUserEmailChanged,
		TenantKey: user.TenantKey,
		UserID:    user.ID.String(),
		Email:     newEmail,
		Detail:    user.Email,
	})
	return nil
}

// InvalidateSessions revokes every session of the user and returns how many
// were revoked.
func (s *Service) InvalidateSessions(ctx context.Context, user models.UserSummary) (int, error) {
	n, err := s.sessions.DeleteByUser(ctx, user.ID)
	if err != nil {
		return 0, dErrors.Wrap(err, dErrors.CodeInternal, "failed to revoke sessions")
	}
	s.recordRevoked(ctx, audit.Event{
		TenantKey: user.TenantKey,
		UserID:    user.ID.String(),
		Email:     user.Email,
	}, n)
	return n, nil
}

// InvalidateTenantSessions revokes every session opened under the tenant. It
// is safe to repeat; a call that finds nothing to revoke emits no audit event.
func (s *Service) InvalidateTenantSessions(ctx context.Context, tenant id.TenantKey) (int, error) {
	n, err := s.sessions.DeleteByTenant(ctx, tenant)
	if err != nil {
		return 0, dErrors.Wrap(err, dErrors.CodeInternal, "failed to revoke tenant sessions")
	}
	if n > 0 {
		s.recordRevoked(ctx, audit.Event{TenantKey: tenant}, n)
	}
	return n, nil
}

func (s *Service) recordRevoked(ctx context.Context, event audit.Event, n int) {
	if s.metrics != nil {
		s.metrics.SessionsRevoked.Add(float64(n))
	}
	event.Action = audit.ActionSessionsRevoked
	event.Detail = strconv.Itoa(n)
	s.audit.Emit(ctx, event)
}

// ListSessions returns the user's live sessions.
func (s *Service) ListSessions(ctx context.Context, userID id.UserID) ([]*models.Session, error) {
	sessions, err := s.sessions.ListByUser(ctx, userID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list sessions")
	}
	return sessions, nil
}

// SetStatus activates or deactivates a user. Inactive users cannot log in.
func (s *Service) SetStatus(ctx context.Context, userID id.UserID, status models.Status) error {
	if status != models.StatusActive && status != models.StatusInactive {
		return dErrors.New(dErrors.CodeValidation, "unknown user status "+string(status))
	}
	if err := s.users.UpdateStatus(ctx, userID, status, requestcontext.Now(ctx)); err != nil {
		return wrapUserErr(err, "failed to update user status")
	}
	return nil
}

func wrapUserErr(err error, action string) error {
	if errors.Is(err, sentinel.ErrNotFound) {
		return dErrors.Wrap(err, dErrors.CodeNotFound, "user not found")
	}
	return dErrors.Wrap(err, dErrors.CodeInternal, action)
}
