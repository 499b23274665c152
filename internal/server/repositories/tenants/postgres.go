package tenants

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/figmints/meetsync/internal/common"
	"github.com/figmints/meetsync/internal/dbx"
	"github.com/figmints/meetsync/internal/server/models"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

const tenantColumns = `id, name, url, account_manager, strategist, created_at, updated_at`

func scanTenant(row interface{ Scan(dest ...any) error }) (*models.Tenant, error) {
	t := &models.Tenant{}
	err := row.Scan(&t.ID, &t.Name, &t.URL, &t.AccountManager, &t.Strategist, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return t, nil
}

func (r *PostgresRepository) Create(ctx context.Context, tenant *models.Tenant) (*models.Tenant, error) {
	query := `INSERT INTO tenants (id, name, url, account_manager, strategist)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING created_at, updated_at`

	err := r.db.QueryRowContext(ctx, query,
		tenant.ID, tenant.Name, tenant.URL, tenant.AccountManager, tenant.Strategist).
		Scan(&tenant.CreatedAt, &tenant.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return tenant, nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*models.Tenant, error) {
	query := `SELECT ` + tenantColumns + ` FROM tenants WHERE id = $1`

	t, err := scanTenant(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return t, nil
}

func (r *PostgresRepository) List(ctx context.Context, scopeTenantID string) ([]*models.Tenant, error) {
	// The scope filter is applied in SQL so a narrowed caller can never
	// widen the result set.
	query := `SELECT ` + tenantColumns + ` FROM tenants
		 WHERE $1 = '' OR id = NULLIF($1, '')::uuid
		 ORDER BY name`

	rows, err := r.db.QueryContext(ctx, query, scopeTenantID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var result []*models.Tenant
	for rows.Next() {
		t, err := scanTenant(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, t)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return result, nil
}

func (r *PostgresRepository) Update(ctx context.Context, tenant *models.Tenant) error {
	query := `UPDATE tenants SET
			name = $2, url = $3, account_manager = $4, strategist = $5, updated_at = now()
		 WHERE id = $1`

	res, err := r.db.ExecContext(ctx, query,
		tenant.ID, tenant.Name, tenant.URL, tenant.AccountManager, tenant.Strategist)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return common.ErrorNotFound
	}

	return nil
}
