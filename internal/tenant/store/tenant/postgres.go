package tenant

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgconn"

	"realmbridge/internal/tenant/models"
	id "realmbridge/pkg/domain"
	"realmbridge/pkg/platform/sentinel"
)

const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
)

// PostgresStore persists tenants and their allowed domains in PostgreSQL.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// Create inserts the tenant and its seeded domains in one transaction.
func (s *PostgresStore) Create(ctx context.Context, t *models.Tenant) (err error) {
	if t == nil {
		return fmt.Errorf("tenant is required")
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin create tenant: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO tenants (key, display_name, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)
	`, t.Key.String(), t.DisplayName, string(t.Status), t.CreatedAt, t.UpdatedAt)
	if err != nil {
		if pgCode(err) == pgUniqueViolation {
			return fmt.Errorf("tenant key %s: %w", t.Key, sentinel.ErrAlreadyUsed)
		}
		return fmt.Errorf("insert tenant: %w", err)
	}

	for _, d := range t.Domains {
		if _, err = tx.ExecContext(ctx, `
			INSERT INTO tenant_domains (tenant_key, domain, allow_subdomains, created_at)
			VALUES ($1, $2, $3, $4)
		`, t.Key.String(), d.Domain, d.AllowSubdomains, t.CreatedAt); err != nil {
			return fmt.Errorf("insert tenant domain: %w", err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit create tenant: %w", err)
	}
	return nil
}

func (s *PostgresStore) FindByKey(ctx context.Context, key id.TenantKey) (*models.Tenant, error) {
	t, err := scanTenant(s.db.QueryRowContext(ctx, `
		SELECT key, display_name, status, created_at, updated_at, deactivated_at
		FROM tenants
		WHERE key = $1
	`, key.String()))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find tenant by key: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT domain, allow_subdomains
		FROM tenant_domains
		WHERE tenant_key = $1
		ORDER BY id
	`, key.String())
	if err != nil {
		return nil, fmt.Errorf("list tenant domains: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var d models.AllowedDomain
		if err := rows.Scan(&d.Domain, &d.AllowSubdomains); err != nil {
			return nil, fmt.Errorf("scan tenant domain: %w", err)
		}
		t.Domains = append(t.Domains, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate tenant domains: %w", err)
	}
	return t, nil
}

// Deactivate transitions an active tenant; changed is false when it was
// already deactivated.
func (s *PostgresStore) Deactivate(ctx context.Context, key id.TenantKey, now time.Time) (bool, error) {
	res, err := s.db.ExecContext(ctx, `
		UPDATE tenants
		SET status = 'deactivated', updated_at = $2, deactivated_at = $2
		WHERE key = $1 AND status = 'active'
	`, key.String(), now)
	if err != nil {
		return false, fmt.Errorf("deactivate tenant: %w", err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("deactivate tenant rows: %w", err)
	}
	if rows > 0 {
		return true, nil
	}

	var exists bool
	if err := s.db.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM tenants WHERE key = $1)`, key.String()).Scan(&exists); err != nil {
		return false, fmt.Errorf("check tenant exists: %w", err)
	}
	if !exists {
		return false, sentinel.ErrNotFound
	}
	return false, nil
}

// AddDomain inserts the domain unless the tenant already allows it; the existing
// row and its subdomain flag win on conflict.
func (s *PostgresStore) AddDomain(ctx context.Context, key id.TenantKey, domain models.AllowedDomain, now time.Time) (bool, error) {
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO tenant_domains (tenant_key, domain, allow_subdomains, created_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (tenant_key, domain) DO NOTHING
	`, key.String(), domain.Domain, domain.AllowSubdomains, now)
	if err != nil {
		if pgCode(err) == pgForeignKeyViolation {
			return false, sentinel.ErrNotFound
		}
		return false, fmt.Errorf("add tenant domain: %w", err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("add tenant domain rows: %w", err)
	}
	if rows == 0 {
		return false, nil
	}
	if _, err := s.db.ExecContext(ctx, `UPDATE tenants SET updated_at = $2 WHERE key = $1`, key.String(), now); err != nil {
		return true, fmt.Errorf("touch tenant: %w", err)
	}
	return true, nil
}

// Count returns the total number of tenants.
func (s *PostgresStore) Count(ctx context.Context) (int, error) {
	var count int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM tenants`).Scan(&count); err != nil {
		return 0, fmt.Errorf("count tenants: %w", err)
	}
	return count, nil
}

type tenantRow interface {
	Scan(dest ...any) error
}

func scanTenant(row tenantRow) (*models.Tenant, error) {
	var (
		t             models.Tenant
		key, status   string
		deactivatedAt sql.NullTime
	)
	if err := row.Scan(&key, &t.DisplayName, &status, &t.CreatedAt, &t.UpdatedAt, &deactivatedAt); err != nil {
		return nil, err
	}
	t.Key = id.TenantKey(key)
	t.Status = models.Status(status)
	if deactivatedAt.Valid {
		at := deactivatedAt.Time
		t.DeactivatedAt = &at
	}
	return &t, nil
}

func pgCode(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code
	}
	return ""
}
