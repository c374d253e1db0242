package user

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/suite"

	"realmbridge/internal/directory/models"
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

var columns = []string{"id", "tenant_key", "email", "full_name", "role", "status", "api_key", "created_at", "updated_at"}

func (s *PostgresStoreSuite) TestCreateDuplicateEmail() {
	u, err := models.NewUser("acme", "a@old.com", "a", models.RoleMember, now)
	s.Require().NoError(err)

	s.mock.ExpectExec(regexp.QuoteMeta("INSERT INTO users")).
		WithArgs(uuid.UUID(u.ID), "acme", "a@old.com", "a", "member", "active", now, now).
		WillReturnError(&pgconn.PgError{Code: "23505"})

	s.ErrorIs(s.store.Create(s.ctx, u), sentinel.ErrAlreadyUsed)
}

func (s *PostgresStoreSuite) TestFindByEmail() {
	userID := uuid.New()
	s.mock.ExpectQuery(regexp.QuoteMeta("WHERE tenant_key = $1 AND lower(email) = lower($2)")).
		WithArgs("acme", "A@old.com").
		WillReturnRows(sqlmock.NewRows(columns).
			AddRow(userID.String(), "acme", "a@old.com", "a", "moderator", "inactive", "", now, now))

	u, err := s.store.FindByEmail(s.ctx, "acme", "A@old.com")
	s.Require().NoError(err)
	s.Equal(id.UserID(userID), u.ID)
	s.Equal(models.RoleModerator, u.Role)
	s.False(u.IsActive())
}

func (s *PostgresStoreSuite) TestFindByIDNotFound() {
	s.mock.ExpectQuery(regexp.QuoteMeta("WHERE id = $1")).
		WillReturnError(sql.ErrNoRows)

	_, err := s.store.FindByID(s.ctx, id.UserID(uuid.New()))
	s.ErrorIs(err, sentinel.ErrNotFound)
}

func (s *PostgresStoreSuite) TestListStreamsRowsAndSurfacesErrors() {
	a, b := uuid.New(), uuid.New()
	s.mock.ExpectQuery(regexp.QuoteMeta("ORDER BY created_at, id")).
		WithArgs("acme").
		WillReturnRows(sqlmock.NewRows(columns).
			AddRow(a.String(), "acme", "a@old.com", "", "member", "active", "", now, now).
			AddRow(b.String(), "acme", "b@old.com", "", "member", "active", "", now, now).
			RowError(1, errors.New("connection lost")))

	var (
		emails  []string
		iterErr error
	)
	for u, err := range s.store.List(s.ctx, "acme") {
		if err != nil {
			iterErr = err
			break
		}
		emails = append(emails, u.Email)
	}
	s.Equal([]string{"a@old.com"}, emails)
	s.Error(iterErr)
}

func (s *PostgresStoreSuite) TestUpdateEmail() {
	userID := id.UserID(uuid.New())

	s.Run("conflict", func() {
		s.mock.ExpectExec(regexp.QuoteMeta("UPDATE users SET email")).
			WithArgs(uuid.UUID(userID), "a@new.com", now).
			WillReturnError(&pgconn.PgError{Code: "23505"})
		s.ErrorIs(s.store.UpdateEmail(s.ctx, userID, "a@new.com", now), sentinel.ErrAlreadyUsed)
	})

	s.Run("unknown user", func() {
		s.mock.ExpectExec(regexp.QuoteMeta("UPDATE users SET email")).
			WillReturnResult(sqlmock.NewResult(0, 0))
		s.ErrorIs(s.store.UpdateEmail(s.ctx, userID, "a@new.com", now), sentinel.ErrNotFound)
	})

	s.Run("success", func() {
		s.mock.ExpectExec(regexp.QuoteMeta("UPDATE users SET email")).
			WillReturnResult(sqlmock.NewResult(0, 1))
		s.NoError(s.store.UpdateEmail(s.ctx, userID, "a@new.com", now))
	})
}

func (s *PostgresStoreSuite) TestSetAPIKeyIfEmptyReturnsStoredKey() {
	userID := id.UserID(uuid.New())
	s.mock.ExpectQuery(regexp.QuoteMeta("COALESCE(api_key, $2)")).
		WithArgs(uuid.UUID(userID), "candidate").
		WillReturnRows(sqlmock.NewRows([]string{"api_key"}).AddRow("existing"))

	key, err := s.store.SetAPIKeyIfEmpty(s.ctx, userID, "candidate")
	s.Require().NoError(err)
	s.Equal("existing", key)
}
