package tenant

import (
	"context"
	"database/sql"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/suite"

	"realmbridge/internal/tenant/models"
	id "realmbridge/pkg/domain"
	"realmbridge/pkg/platform/sentinel"
)

type PostgresStoreSuite struct {
	suite.Suite
	db    *sql.DB
	mock  sqlmock.Sqlmock
	store *PostgresStore
	ctx   context.Context
}

func TestPostgresStoreSuite(t *testing.T) {
	suite.Run(t, new(PostgresStoreSuite))
}

func (s *PostgresStoreSuite) SetupTest() {
	db, mock, err := sqlmock.New()
	s.Require().NoError(err)
	s.db, s.mock = db, mock
	s.store = NewPostgres(db)
	s.ctx = context.Background()
}

func (s *PostgresStoreSuite) TearDownTest() {
	s.NoError(s.mock.ExpectationsWereMet())
	_ = s.db.Close()
}

func (s *PostgresStoreSuite) tenant() *models.Tenant {
	t, err := models.NewTenant(id.TenantKey("acme"), "acme.com", now)
	s.Require().NoError(err)
	return t
}

func (s *PostgresStoreSuite) TestCreateInsertsTenantAndSeedDomain() {
	t := s.tenant()

	s.mock.ExpectBegin()
	s.mock.ExpectExec(regexp.QuoteMeta("INSERT INTO tenants")).
		WithArgs("acme", "acme.com", "active", now, now).
		WillReturnResult(sqlmock.NewResult(0, 1))
	s.mock.ExpectExec(regexp.QuoteMeta("INSERT INTO tenant_domains")).
		WithArgs("acme", "acme.com", false, now).
		WillReturnResult(sqlmock.NewResult(1, 1))
	s.mock.ExpectCommit()

	s.NoError(s.store.Create(s.ctx, t))
}

func (s *PostgresStoreSuite) TestCreateDuplicateKeyIsAlreadyUsed() {
	s.mock.ExpectBegin()
	s.mock.ExpectExec(regexp.QuoteMeta("INSERT INTO tenants")).
		WillReturnError(&pgconn.PgError{Code: pgUniqueViolation})
	s.mock.ExpectRollback()

	s.ErrorIs(s.store.Create(s.ctx, s.tenant()), sentinel.ErrAlreadyUsed)
}

func (s *PostgresStoreSuite) TestFindByKeyLoadsDomainsInOrder() {
	s.mock.ExpectQuery(regexp.QuoteMeta("FROM tenants")).
		WithArgs("acme").
		WillReturnRows(sqlmock.NewRows([]string{"key", "display_name", "status", "created_at", "updated_at", "deactivated_at"}).
			AddRow("acme", "acme.com", "deactivated", now, now, now))
	s.mock.ExpectQuery(regexp.QuoteMeta("FROM tenant_domains")).
		WithArgs("acme").
		WillReturnRows(sqlmock.NewRows([]string{"domain", "allow_subdomains"}).
			AddRow("acme.com", false).
			AddRow("new.com", true))

	t, err := s.store.FindByKey(s.ctx, "acme")
	s.Require().NoError(err)
	s.Equal(models.StatusDeactivated, t.Status)
	s.Require().NotNil(t.DeactivatedAt)
	s.Equal([]models.AllowedDomain{{Domain: "acme.com"}, {Domain: "new.com", AllowSubdomains: true}}, t.Domains)
}

func (s *PostgresStoreSuite) TestFindByKeyNotFound() {
	s.mock.ExpectQuery(regexp.QuoteMeta("FROM tenants")).
		WithArgs("ghost").
		WillReturnError(sql.ErrNoRows)

	_, err := s.store.FindByKey(s.ctx, "ghost")
	s.ErrorIs(err, sentinel.ErrNotFound)
}

func (s *PostgresStoreSuite) TestDeactivate() {
	s.Run("active tenant changes", func() {
		s.mock.ExpectExec(regexp.QuoteMeta("AND status = 'active'")).
			WithArgs("acme", now).
			WillReturnResult(sqlmock.NewResult(0, 1))

		changed, err := s.store.Deactivate(s.ctx, "acme", now)
		s.Require().NoError(err)
		s.True(changed)
	})

	s.Run("already deactivated is a no-op", func() {
		s.mock.ExpectExec(regexp.QuoteMeta("UPDATE tenants")).
			WillReturnResult(sqlmock.NewResult(0, 0))
		s.mock.ExpectQuery(regexp.QuoteMeta("SELECT EXISTS")).
			WithArgs("acme").
			WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

		changed, err := s.store.Deactivate(s.ctx, "acme", now)
		s.Require().NoError(err)
		s.False(changed)
	})

	s.Run("unknown tenant", func() {
		s.mock.ExpectExec(regexp.QuoteMeta("UPDATE tenants")).
			WillReturnResult(sqlmock.NewResult(0, 0))
		s.mock.ExpectQuery(regexp.QuoteMeta("SELECT EXISTS")).
			WithArgs("ghost").
			WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))

		_, err := s.store.Deactivate(s.ctx, "ghost", now)
		s.ErrorIs(err, sentinel.ErrNotFound)
	})
}

func (s *PostgresStoreSuite) TestAddDomain() {
	s.Run("new domain touches the tenant", func() {
		s.mock.ExpectExec(regexp.QuoteMeta("ON CONFLICT (tenant_key, domain) DO NOTHING")).
			WithArgs("acme", "new.com", true, now).
			WillReturnResult(sqlmock.NewResult(2, 1))
		s.mock.ExpectExec(regexp.QuoteMeta("UPDATE tenants SET updated_at")).
			WithArgs("acme", now).
			WillReturnResult(sqlmock.NewResult(0, 1))

		added, err := s.store.AddDomain(s.ctx, "acme", models.AllowedDomain{Domain: "new.com", AllowSubdomains: true}, now)
		s.Require().NoError(err)
		s.True(added)
	})

	s.Run("duplicate is a no-op", func() {
		s.mock.ExpectExec(regexp.QuoteMeta("INSERT INTO tenant_domains")).
			WillReturnResult(sqlmock.NewResult(0, 0))

		added, err := s.store.AddDomain(s.ctx, "acme", models.AllowedDomain{Domain: "new.com"}, now)
		s.Require().NoError(err)
		s.False(added)
	})

	s.Run("unknown tenant", func() {
		s.mock.ExpectExec(regexp.QuoteMeta("INSERT INTO tenant_domains")).
			WillReturnError(&pgconn.PgError{Code: pgForeignKeyViolation})

		_, err := s.store.AddDomain(s.ctx, "ghost", models.AllowedDomain{Domain: "new.com"}, now)
		s.ErrorIs(err, sentinel.ErrNotFound)
	})
}
