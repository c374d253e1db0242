package service

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"realmbridge/internal/audit"
	dirmodels "realmbridge/internal/directory/models"
	dirservice "realmbridge/internal/directory/service"
	sessionstore "realmbridge/internal/directory/store/session"
	userstore "realmbridge/internal/directory/store/user"
	"realmbridge/internal/identity"
	"realmbridge/internal/migration"
	tenantmodels "realmbridge/internal/tenant/models"
	tenantservice "realmbridge/internal/tenant/service"
	tenantstore "realmbridge/internal/tenant/store/tenant"
	"realmbridge/internal/token"
	id "realmbridge/pkg/domain"
	dErrors "realmbridge/pkg/domain-errors"
)

const (
	acmeKey  = "acme-secret"
	adminKey = "platform-secret"
)

type BridgeSuite struct {
	suite.Suite
	ctx       context.Context
	audit     *audit.InMemoryStore
	tenants   *tenantservice.Service
	directory *dirservice.Service
	sessions  *flakySessionStore
	logs      *bytes.Buffer
	svc       *Service
}

func TestBridgeSuite(t *testing.T) {
	suite.Run(t, new(BridgeSuite))
}

func (s *BridgeSuite) SetupTest() {
	s.ctx = context.Background()
	s.audit = audit.NewInMemoryStore()
	publisher := audit.NewPublisher(s.audit)
	s.tenants = tenantservice.New(tenantstore.NewInMemory(), tenantservice.WithAuditPublisher(publisher))
	s.sessions = &flakySessionStore{InMemorySessionStore: sessionstore.New()}
	s.directory = dirservice.New(userstore.NewInMemoryUserStore(), s.sessions, dirservice.WithAuditPublisher(publisher))
	s.build(false)

	_, err := s.tenants.Create(s.ctx, "acme", "acme.com")
	s.Require().NoError(err)
}

// build wires the façade over the suite's registry and directory.
func (s *BridgeSuite) build(lenient bool) {
	keys, err := token.NewStaticKeyProvider(map[string]string{"acme": acmeKey}, adminKey)
	s.Require().NoError(err)

	s.logs = &bytes.Buffer{}
	logger := slog.New(slog.NewJSONHandler(s.logs, nil))
	resolver := identity.NewResolver(s.tenants, identity.NewPassthroughAuthenticator(s.directory))
	s.svc = New(
		token.NewVerifier(keys),
		resolver,
		s.tenants,
		s.directory,
		migration.New(s.tenants, s.directory),
		WithLogger(logger),
		WithLenientLifecycle(lenient),
	)
}

// flakySessionStore fails the next failTenantDeletes tenant-wide revocations.
type flakySessionStore struct {
	*sessionstore.InMemorySessionStore
	failTenantDeletes int
}

func (f *flakySessionStore) DeleteByTenant(ctx context.Context, tenant id.TenantKey) (int, error) {
	if f.failTenantDeletes > 0 {
		f.failTenantDeletes--
		return 0, errors.New("session backend unavailable")
	}
	return f.InMemorySessionStore.DeleteByTenant(ctx, tenant)
}

func (s *BridgeSuite) sign(key, user, realm string, role *string) string {
	now := time.Now()
	raw, err := token.Sign([]byte(key), token.Claims{User: user, Realm: realm, Role: role}, now, now.Add(time.Hour))
	s.Require().NoError(err)
	return raw
}

func (s *BridgeSuite) TestAuthenticate() {
	alice, err := s.directory.Register(s.ctx, "acme", "alice@acme.com", "Alice", dirmodels.RoleMember)
	s.Require().NoError(err)

	s.Run("existing user", func() {
		res, err := s.svc.Authenticate(s.ctx, "acme", s.sign(acmeKey, "alice", "acme.com", nil))
		s.Require().NoError(err)
		s.True(res.Found())
		s.Equal(alice.ID, res.User.ID)
	})

	s.Run("unknown user", func() {
		res, err := s.svc.Authenticate(s.ctx, "acme", s.sign(acmeKey, "bob", "acme.com", nil))
		s.Require().NoError(err)
		s.Equal(identity.KindNotFound, res.Kind)
		s.Equal("bob@acme.com", res.Email)
	})

	s.Run("token signed for another tenant", func() {
		_, err := s.svc.Authenticate(s.ctx, "acme", s.sign(adminKey, "alice", "acme.com", nil))
		s.True(dErrors.HasCode(err, dErrors.CodeUnauthorized))
		s.ErrorIs(err, token.ErrInvalidSignature)
	})
}

func (s *BridgeSuite) TestIssueCredential() {
	alice, err := s.directory.Register(s.ctx, "acme", "alice@acme.com", "", dirmodels.RoleMember)
	s.Require().NoError(err)

	s.Run("applies role then issues a stable key", func() {
		role := "Administrator"
		first, err := s.svc.IssueCredential(s.ctx, "acme", s.sign(acmeKey, "alice", "acme.com", &role))
		s.Require().NoError(err)
		s.Equal("alice@acme.com", first.Email)
		s.NotEmpty(first.APIKey)

		stored, err := s.directory.FindByID(s.ctx, alice.ID)
		s.Require().NoError(err)
		s.Equal(dirmodels.RoleAdministrator, stored.Role)

		second, err := s.svc.IssueCredential(s.ctx, "acme", s.sign(acmeKey, "alice", "acme.com", nil))
		s.Require().NoError(err)
		s.Equal(first.APIKey, second.APIKey)
	})

	s.Run("unknown role", func() {
		role := "emperor"
		_, err := s.svc.IssueCredential(s.ctx, "acme", s.sign(acmeKey, "alice", "acme.com", &role))
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
	})

	s.Run("unknown user", func() {
		_, err := s.svc.IssueCredential(s.ctx, "acme", s.sign(acmeKey, "bob", "acme.com", nil))
		s.True(dErrors.HasCode(err, dErrors.CodeUnauthorized))
		s.ErrorIs(err, identity.ErrUnknownUser)
	})
}

func (s *BridgeSuite) TestCreateTenant() {
	raw := s.sign(adminKey, "ops", "platform.io", nil)

	key, err := s.svc.CreateTenant(s.ctx, "platform", raw, "beta", "beta.io")
	s.Require().NoError(err)
	s.Equal("beta", key)

	_, err = s.svc.CreateTenant(s.ctx, "platform", raw, "beta", "other.io")
	s.True(dErrors.HasCode(err, dErrors.CodeConflict))

	t, err := s.tenants.Get(s.ctx, "beta")
	s.Require().NoError(err)
	s.Equal([]tenantmodels.AllowedDomain{{Domain: "beta.io"}}, t.Domains)

	_, err = s.svc.CreateTenant(s.ctx, "platform", raw, "gamma", "  ")
	s.True(dErrors.HasCode(err, dErrors.CodeValidation))

	_, err = s.svc.CreateTenant(s.ctx, "platform", "garbage", "gamma", "gamma.io")
	s.ErrorIs(err, token.ErrMalformedToken)
}

func (s *BridgeSuite) TestCreateTenantTwiceWithFreeTextName() {
	s.tenants = tenantservice.New(tenantstore.NewInMemory())
	s.build(false)
	raw := s.sign(adminKey, "ops", "platform.io", nil)

	key, err := s.svc.CreateTenant(s.ctx, "platform", raw, "acme", "Acme Co")
	s.Require().NoError(err)
	s.Equal("acme", key)

	for _, name := range []string{"Acme Co", "anything", "other.com"} {
		_, err = s.svc.CreateTenant(s.ctx, "platform", raw, "acme", name)
		s.True(dErrors.HasCode(err, dErrors.CodeConflict), name)
	}

	t, err := s.tenants.Get(s.ctx, "acme")
	s.Require().NoError(err)
	s.Equal("Acme Co", t.DisplayName)
	s.Equal([]tenantmodels.AllowedDomain{{Domain: "acme co"}}, t.Domains)
	s.True(t.IsActive())
}

func (s *BridgeSuite) TestLifecycleRejectsTenantKeys() {
	_, err := s.tenants.Create(s.ctx, "victim", "victim.com")
	s.Require().NoError(err)
	_, err = s.directory.Register(s.ctx, "victim", "v@victim.com", "", "")
	s.Require().NoError(err)
	acmeSigned := s.sign(acmeKey, "ops", "acme.com", nil)

	s.Run("create", func() {
		_, err := s.svc.CreateTenant(s.ctx, "acme", acmeSigned, "rogue", "rogue.com")
		s.True(dErrors.HasCode(err, dErrors.CodeUnauthorized))
		s.ErrorIs(err, token.ErrInvalidSignature)
		_, err = s.tenants.Get(s.ctx, "rogue")
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})

	s.Run("deactivate another tenant", func() {
		_, err := s.svc.DeactivateTenant(s.ctx, "acme", acmeSigned, "victim")
		s.True(dErrors.HasCode(err, dErrors.CodeUnauthorized))
		victim, err := s.tenants.Get(s.ctx, "victim")
		s.Require().NoError(err)
		s.True(victim.IsActive())
	})

	s.Run("deactivate own tenant", func() {
		_, err := s.svc.DeactivateTenant(s.ctx, "acme", acmeSigned, "acme")
		s.True(dErrors.HasCode(err, dErrors.CodeUnauthorized))
	})

	s.Run("migrate another tenant", func() {
		_, err := s.svc.MigrateDomain(s.ctx, "acme", acmeSigned, MigrateRequest{
			TenantKey: "victim",
			OldDomain: "victim.com",
			NewDomain: "evil.com",
		})
		s.True(dErrors.HasCode(err, dErrors.CodeUnauthorized))
		_, err = s.directory.FindByEmail(s.ctx, "victim", "v@victim.com")
		s.NoError(err)
	})
}

func (s *BridgeSuite) TestDeactivateTenantRevokesSessionsOnce() {
	alice, err := s.directory.Register(s.ctx, "acme", "alice@acme.com", "", "")
	s.Require().NoError(err)
	_, err = s.directory.OpenSession(s.ctx, alice)
	s.Require().NoError(err)
	raw := s.sign(adminKey, "ops", "platform.io", nil)

	for range 2 {
		key, err := s.svc.DeactivateTenant(s.ctx, "acme", raw, "acme")
		s.Require().NoError(err)
		s.Equal("acme", key)
	}

	live, err := s.directory.ListSessions(s.ctx, alice.ID)
	s.Require().NoError(err)
	s.Empty(live)

	var deactivations, revocations int
	for _, a := range s.audit.Actions() {
		switch a {
		case audit.ActionTenantDeactivated:
			deactivations++
		case audit.ActionSessionsRevoked:
			revocations++
		}
	}
	s.Equal(1, deactivations)
	s.Equal(1, revocations)

	_, err = s.svc.Authenticate(s.ctx, "acme", s.sign(acmeKey, "alice", "acme.com", nil))
	s.ErrorIs(err, identity.ErrTenantDeactivated)
}

func (s *BridgeSuite) TestDeactivateRetryRevokesAfterFailedRevocation() {
	alice, err := s.directory.Register(s.ctx, "acme", "alice@acme.com", "", "")
	s.Require().NoError(err)
	_, err = s.directory.OpenSession(s.ctx, alice)
	s.Require().NoError(err)
	raw := s.sign(adminKey, "ops", "platform.io", nil)
	s.sessions.failTenantDeletes = 1

	_, err = s.svc.DeactivateTenant(s.ctx, "platform", raw, "acme")
	s.True(dErrors.HasCode(err, dErrors.CodeInternal))
	t, err := s.tenants.Get(s.ctx, "acme")
	s.Require().NoError(err)
	s.False(t.IsActive())

	_, err = s.svc.DeactivateTenant(s.ctx, "platform", raw, "acme")
	s.Require().NoError(err)

	live, err := s.directory.ListSessions(s.ctx, alice.ID)
	s.Require().NoError(err)
	s.Empty(live)
}

func (s *BridgeSuite) TestDeactivateUnknownTenant() {
	_, err := s.svc.DeactivateTenant(s.ctx, "ghost", s.sign(adminKey, "ops", "platform.io", nil), "ghost")
	s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
}

func (s *BridgeSuite) TestMigrateDomain() {
	_, err := s.directory.Register(s.ctx, "acme", "a@acme.com", "", "")
	s.Require().NoError(err)
	raw := s.sign(adminKey, "ops", "platform.io", nil)

	report, err := s.svc.MigrateDomain(s.ctx, "acme", raw, MigrateRequest{
		TenantKey: "acme",
		OldDomain: "acme.com",
		NewDomain: "acme.io",
	})
	s.Require().NoError(err)
	s.Equal(1, report.Migrated)

	_, err = s.directory.FindByEmail(s.ctx, "acme", "a@acme.io")
	s.NoError(err)

	_, err = s.svc.MigrateDomain(s.ctx, "acme", raw, MigrateRequest{TenantKey: "acme", OldDomain: "x.com", NewDomain: "x.com"})
	s.True(dErrors.HasCode(err, dErrors.CodeValidation))
}

func (s *BridgeSuite) TestLenientLifecycleSwallowsValidationOnly() {
	s.build(true)
	raw := s.sign(adminKey, "ops", "platform.io", nil)

	key, err := s.svc.CreateTenant(s.ctx, "platform", raw, "gamma", "")
	s.Require().NoError(err)
	s.Equal("gamma", key, "input is echoed")
	_, err = s.tenants.Get(s.ctx, "gamma")
	s.True(dErrors.HasCode(err, dErrors.CodeNotFound), "nothing was created")
	s.Contains(s.logs.String(), "lifecycle request rejected")

	key, err = s.svc.DeactivateTenant(s.ctx, "platform", raw, "Not A Key!")
	s.Require().NoError(err)
	s.Equal("Not A Key!", key)

	report, err := s.svc.MigrateDomain(s.ctx, "acme", raw,
		MigrateRequest{TenantKey: "acme", OldDomain: "x.com", NewDomain: "x.com"})
	s.Require().NoError(err)
	s.Zero(report.Migrated)

	_, err = s.svc.CreateTenant(s.ctx, "platform", raw, "acme", "acme.com")
	s.True(dErrors.HasCode(err, dErrors.CodeConflict), "conflicts are never swallowed")

	_, err = s.svc.CreateTenant(s.ctx, "platform", "garbage", "delta", "delta.io")
	s.True(dErrors.HasCode(err, dErrors.CodeUnauthorized), "auth errors are never swallowed")
}
