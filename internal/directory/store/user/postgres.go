package user

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"iter"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"

	"realmbridge/internal/directory/models"
	id "realmbridge/pkg/domain"
	"realmbridge/pkg/platform/sentinel"
)

const userColumns = `id, tenant_key, email, full_name, role, status, COALESCE(api_key, ''), created_at, updated_at`

// PostgresStore persists users in PostgreSQL.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Create(ctx context.Context, u *models.User) error {
	if u == nil {
		return fmt.Errorf("user is required")
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO users (id, tenant_key, email, full_name, role, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`, uuid.UUID(u.ID), u.TenantKey.String(), u.Email, u.FullName, string(u.Role), string(u.Status), u.CreatedAt, u.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("email %s: %w", u.Email, sentinel.ErrAlreadyUsed)
		}
		return fmt.Errorf("create user: %w", err)
	}
	return nil
}

func (s *PostgresStore) FindByID(ctx context.Context, userID id.UserID) (*models.User, error) {
	u, err := scanUser(s.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = $1`, uuid.UUID(userID)))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("user not found: %w", sentinel.ErrNotFound)
		}
		return nil, fmt.Errorf("find user by id: %w", err)
	}
	return u, nil
}

func (s *PostgresStore) FindByEmail(ctx context.Context, tenant id.TenantKey, email string) (*models.User, error) {
	u, err := scanUser(s.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE tenant_key = $1 AND lower(email) = lower($2)`,
		tenant.String(), email))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("user not found: %w", sentinel.ErrNotFound)
		}
		return nil, fmt.Errorf("find user by email: %w", err)
	}
	return u, nil
}

// List streams the tenant's users. Rows stay open until iteration ends, so the
// view is whatever the database returns while reading; no snapshot is taken.
func (s *PostgresStore) List(ctx context.Context, tenant id.TenantKey) iter.Seq2[*models.User, error] {
	return func(yield func(*models.User, error) bool) {
		rows, err := s.db.QueryContext(ctx,
			`SELECT `+userColumns+` FROM users WHERE tenant_key = $1 ORDER BY created_at, id`, tenant.String())
		if err != nil {
			yield(nil, fmt.Errorf("list users: %w", err))
			return
		}
		defer rows.Close()

		for rows.Next() {
			u, err := scanUser(rows)
			if err != nil {
				yield(nil, fmt.Errorf("scan user: %w", err))
				return
			}
			if !yield(u, nil) {
				return
			}
		}
		if err := rows.Err(); err != nil {
			yield(nil, fmt.Errorf("iterate users: %w", err))
		}
	}
}

func (s *PostgresStore) UpdateRole(ctx context.Context, userID id.UserID, role models.Role, now time.Time) error {
	return s.execOne(ctx, "update user role",
		`UPDATE users SET role = $2, updated_at = $3 WHERE id = $1`,
		uuid.UUID(userID), string(role), now)
}

func (s *PostgresStore) UpdateEmail(ctx context.Context, userID id.UserID, email string, now time.Time) error {
	err := s.execOne(ctx, "update user email",
		`UPDATE users SET email = $2, updated_at = $3 WHERE id = $1`,
		uuid.UUID(userID), email, now)
	if isUniqueViolation(err) {
		return fmt.Errorf("email %s: %w", email, sentinel.ErrAlreadyUsed)
	}
	return err
}

func (s *PostgresStore) UpdateStatus(ctx context.Context, userID id.UserID, status models.Status, now time.Time) error {
	return s.execOne(ctx, "update user status",
		`UPDATE users SET status = $2, updated_at = $3 WHERE id = $1`,
		uuid.UUID(userID), string(status), now)
}

// SetAPIKeyIfEmpty keeps an existing key; concurrent first uses agree on one key.
func (s *PostgresStore) SetAPIKeyIfEmpty(ctx context.Context, userID id.UserID, key string) (string, error) {
	var stored string
	err := s.db.QueryRowContext(ctx,
		`UPDATE users SET api_key = COALESCE(api_key, $2) WHERE id = $1 RETURNING api_key`,
		uuid.UUID(userID), key).Scan(&stored)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", fmt.Errorf("user not found: %w", sentinel.ErrNotFound)
		}
		return "", fmt.Errorf("set api key: %w", err)
	}
	return stored, nil
}

func (s *PostgresStore) execOne(ctx context.Context, action, query string, args ...any) error {
	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		if isUniqueViolation(err) {
			return err
		}
		return fmt.Errorf("%s: %w", action, err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s rows: %w", action, err)
	}
	if rows == 0 {
		return fmt.Errorf("user not found: %w", sentinel.ErrNotFound)
	}
	return nil
}

type userRow interface {
	Scan(dest ...any) error
}

func scanUser(row userRow) (*models.User, error) {
	var (
		u                    models.User
		userID               uuid.UUID
		tenant, role, status string
	)
	if err := row.Scan(&userID, &tenant, &u.Email, &u.FullName, &role, &status, &u.APIKey, &u.CreatedAt, &u.UpdatedAt); err != nil {
		return nil, err
	}
	u.ID = id.UserID(userID)
	u.TenantKey = id.TenantKey(tenant)
	u.Role = models.Role(role)
	u.Status = models.Status(status)
	return &u, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return false
}
