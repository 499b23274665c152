package sessions

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/figmints/meetsync/internal/common"
	"github.com/figmints/meetsync/internal/dbx"
	"github.com/figmints/meetsync/internal/server/models"
	"github.com/google/uuid"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

const sessionColumns = `id, tenant_id, session_date::text, status, score_average, created_at, updated_at`

func scanSession(row interface{ Scan(dest ...any) error }) (*models.MeetingSession, error) {
	s := &models.MeetingSession{}
	err := row.Scan(&s.ID, &s.TenantID, &s.SessionDate, &s.Status, &s.ScoreAverage, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return s, nil
}

// FindOrCreate implements "insert, and on conflict re-read". The INSERT with
// ON CONFLICT DO NOTHING returns no row when another session already holds
// the (tenant_id, session_date) slot, in which case the existing row is read
// back. Uniqueness is enforced by the constraint, not in application memory.
func (r *PostgresRepository) FindOrCreate(ctx context.Context, tenantID, sessionDate string) (*models.MeetingSession, error) {
	insert := `INSERT INTO meetings (id, tenant_id, session_date, status)
		 VALUES ($1, $2, $3::date, $4)
		 ON CONFLICT (tenant_id, session_date) DO NOTHING
		 RETURNING ` + sessionColumns

	s, err := scanSession(r.db.QueryRowContext(ctx, insert,
		uuid.NewString(), tenantID, sessionDate, models.SessionInProgress))
	if err == nil {
		return s, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("db error: %w", err)
	}

	query := `SELECT ` + sessionColumns + ` FROM meetings
		 WHERE tenant_id = $1 AND session_date = $2::date`

	s, err = scanSession(r.db.QueryRowContext(ctx, query, tenantID, sessionDate))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			// Lost slot vanished between insert and read; treat as a race
			// left unresolved by the caller's retry.
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return s, nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*models.MeetingSession, error) {
	query := `SELECT ` + sessionColumns + ` FROM meetings WHERE id = $1`

	s, err := scanSession(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return s, nil
}

func (r *PostgresRepository) ListByTenant(ctx context.Context, tenantID string) ([]*models.MeetingSession, error) {
	query := `SELECT ` + sessionColumns + ` FROM meetings
		 WHERE tenant_id = $1 ORDER BY session_date DESC`

	rows, err := r.db.QueryContext(ctx, query, tenantID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var result []*models.MeetingSession
	for rows.Next() {
		s, err := scanSession(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return result, nil
}

func (r *PostgresRepository) SetStatus(ctx context.Context, id string, status models.SessionStatus, scoreAverage *float64) error {
	query := `UPDATE meetings SET status = $2, score_average = $3, updated_at = now()
		 WHERE id = $1`

	res, err := r.db.ExecContext(ctx, query, id, status, scoreAverage)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return common.ErrorNotFound
	}

	return nil
}
