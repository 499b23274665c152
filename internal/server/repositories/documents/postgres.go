package documents

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/figmints/meetsync/internal/common"
	"github.com/figmints/meetsync/internal/dbx"
	"github.com/figmints/meetsync/internal/meeting"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Get(ctx context.Context, sessionID string) (*meeting.Document, time.Time, error) {
	query := `SELECT body, updated_at FROM session_documents WHERE session_id = $1`

	var body []byte
	var updatedAt time.Time
	err := r.db.QueryRowContext(ctx, query, sessionID).Scan(&body, &updatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, time.Time{}, common.ErrorNotFound
		}
		return nil, time.Time{}, fmt.Errorf("db error: %w", err)
	}

	doc := &meeting.Document{}
	if err := json.Unmarshal(body, doc); err != nil {
		return nil, time.Time{}, fmt.Errorf("document decode error: %w", err)
	}

	return doc, updatedAt, nil
}

func (r *PostgresRepository) Put(ctx context.Context, sessionID string, doc *meeting.Document) error {
	body, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("document encode error: %w", err)
	}

	query := `INSERT INTO session_documents (session_id, body, updated_at)
		 VALUES ($1, $2, now())
		 ON CONFLICT (session_id) DO UPDATE SET body = excluded.body, updated_at = now()`

	if _, err := r.db.ExecContext(ctx, query, sessionID, body); err != nil {
		return fmt.Errorf("db error: %w", err)
	}

	return nil
}
