//go:build integration

package migration_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	dirmodels "realmbridge/internal/directory/models"
	dirservice "realmbridge/internal/directory/service"
	sessionstore "realmbridge/internal/directory/store/session"
	userstore "realmbridge/internal/directory/store/user"
	"realmbridge/internal/migration"
	tenantservice "realmbridge/internal/tenant/service"
	tenantstore "realmbridge/internal/tenant/store/tenant"
	id "realmbridge/pkg/domain"
	"realmbridge/pkg/platform/sentinel"
	"realmbridge/pkg/testutil/containers"
)

// PostgresMigrationSuite runs the domain migration against the Postgres stores.
type PostgresMigrationSuite struct {
	suite.Suite
	pg        *containers.PostgresContainer
	ctx       context.Context
	users     *userstore.PostgresStore
	tenants   *tenantservice.Service
	directory *dirservice.Service
	engine    *migration.Engine
}

func TestPostgresMigrationSuite(t *testing.T) {
	suite.Run(t, new(PostgresMigrationSuite))
}

func (s *PostgresMigrationSuite) SetupSuite() {
	s.pg = containers.GetManager().GetPostgres(s.T())
	s.ctx = context.Background()
}

func (s *PostgresMigrationSuite) SetupTest() {
	s.Require().NoError(s.pg.TruncateAll(s.ctx))

	s.users = userstore.NewPostgres(s.pg.DB)
	s.tenants = tenantservice.New(tenantstore.NewPostgres(s.pg.DB))
	s.directory = dirservice.New(s.users, sessionstore.New())
	s.engine = migration.New(s.tenants, s.directory)

	_, err := s.tenants.Create(s.ctx, "acme", "old.com")
	s.Require().NoError(err)
}

func (s *PostgresMigrationSuite) register(email string) *dirmodels.User {
	u, err := s.directory.Register(s.ctx, "acme", email, "", dirmodels.RoleMember)
	s.Require().NoError(err)
	return u
}

func (s *PostgresMigrationSuite) TestMigrateRewritesMatchingUsers() {
	alice := s.register("alice@old.com")
	s.register("bob@other.com")

	report, err := s.engine.Migrate(s.ctx, migration.Request{TenantKey: "acme", OldDomain: "old.com", NewDomain: "new.com"})
	s.Require().NoError(err)
	s.Equal(1, report.Migrated)
	s.Equal(1, report.Skipped)

	got, err := s.users.FindByID(s.ctx, alice.ID)
	s.Require().NoError(err)
	s.Equal("alice@new.com", got.Email)

	tenant, err := s.tenants.Get(s.ctx, "acme")
	s.Require().NoError(err)
	s.True(tenant.HasDomain("new.com"))
}

func (s *PostgresMigrationSuite) TestConflictingTargetIsReportedPerUser() {
	s.register("carol@old.com")
	s.register("carol@new.com")

	report, err := s.engine.Migrate(s.ctx, migration.Request{TenantKey: "acme", OldDomain: "old.com", NewDomain: "new.com"})
	s.Require().NoError(err)
	s.Equal(0, report.Migrated)
	s.Equal(1, report.Failed)
	s.Require().Len(report.Failures, 1)
	s.Equal(migration.StageRewrite, report.Failures[0].Stage)
}

func (s *PostgresMigrationSuite) TestEmailsStayUniquePerTenant() {
	s.register("dave@old.com")

	u, err := dirmodels.NewUser(id.TenantKey("acme"), "DAVE@old.com", "", dirmodels.RoleMember, time.Now())
	s.Require().NoError(err)
	s.ErrorIs(s.users.Create(s.ctx, u), sentinel.ErrAlreadyUsed)
}
