package store

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

// SQLiteStore implements Store using a DBTX (either *sql.DB or *sql.Tx).
type SQLiteStore struct {
	db dbx.DBTX
}

// NewSQLiteStore returns a new SQLiteStore bound to the given DBTX.
func NewSQLiteStore(db dbx.DBTX) *SQLiteStore {
	return &SQLiteStore{db: db}
}

func marshalDoc(doc *meeting.Document) (string, error) {
	if doc == nil {
		doc = meeting.Empty()
	}
	b, err := json.Marshal(doc)
	if err != nil {
		return "", fmt.Errorf("failed to marshal document: %w", err)
	}
	return string(b), nil
}

func unmarshalDoc(s string) (*meeting.Document, error) {
	doc := &meeting.Document{}
	if err := json.Unmarshal([]byte(s), doc); err != nil {
		return nil, fmt.Errorf("failed to unmarshal document: %w", err)
	}
	return doc, nil
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339Nano)
}

func parseTime(s string) time.Time {
	if s == "" {
		return time.Time{}
	}
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}
	}
	return t
}

// SaveRecord upserts a session record by (tenant_id, session_id).
func (r *SQLiteStore) SaveRecord(ctx context.Context, rec *SessionRecord) error {
	doc, err := marshalDoc(rec.Document)
	if err != nil {
		return err
	}

	query := ` INSERT INTO session_records (tenant_id, session_id, tenant_name, session_date, document, last_saved_at, updated_at)
			values (?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT(tenant_id, session_id) DO UPDATE SET tenant_name = excluded.tenant_name,
				session_date = excluded.session_date,
				document = excluded.document,
				last_saved_at = excluded.last_saved_at,
				updated_at = excluded.updated_at
	`
	_, err = r.db.ExecContext(ctx, query,
		rec.TenantID, rec.SessionID, rec.TenantName, rec.SessionDate, doc,
		formatTime(rec.LastSavedAt), formatTime(rec.UpdatedAt))
	if err != nil {
		return fmt.Errorf("failed to upsert session record: %w", err)
	}
	return nil
}

// GetRecord returns one session record or common.ErrorNotFound.
func (r *SQLiteStore) GetRecord(ctx context.Context, tenantID, sessionID string) (*SessionRecord, error) {
	query := `select tenant_name, session_date, document, last_saved_at, updated_at
		from session_records where tenant_id=? and session_id=?`
	row := r.db.QueryRowContext(ctx, query, tenantID, sessionID)

	rec := &SessionRecord{TenantID: tenantID, SessionID: sessionID}
	var doc, lastSaved, updated string
	if err := row.Scan(&rec.TenantName, &rec.SessionDate, &doc, &lastSaved, &updated); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("query row scan failed: %w", err)
	}

	d, err := unmarshalDoc(doc)
	if err != nil {
		return nil, err
	}
	rec.Document = d
	rec.LastSavedAt = parseTime(lastSaved)
	rec.UpdatedAt = parseTime(updated)
	return rec, nil
}

// ListRecords lists a tenant's records, newest session date first.
func (r *SQLiteStore) ListRecords(ctx context.Context, tenantID string) ([]*SessionRecord, error) {
	query := `select session_id, tenant_name, session_date, document, last_saved_at, updated_at
		from session_records where tenant_id=? order by session_date desc`
	rows, err := r.db.QueryContext(ctx, query, tenantID)
	if err != nil {
		return nil, fmt.Errorf("failed to select session records: %w", err)
	}
	defer rows.Close()

	var result []*SessionRecord
	for rows.Next() {
		rec := &SessionRecord{TenantID: tenantID}
		var doc, lastSaved, updated string
		if err := rows.Scan(&rec.SessionID, &rec.TenantName, &rec.SessionDate, &doc, &lastSaved, &updated); err != nil {
			return nil, err
		}
		d, err := unmarshalDoc(doc)
		if err != nil {
			return nil, err
		}
		rec.Document = d
		rec.LastSavedAt = parseTime(lastSaved)
		rec.UpdatedAt = parseTime(updated)
		result = append(result, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// SaveBackup upserts a per-date backup by (tenant_id, session_date).
func (r *SQLiteStore) SaveBackup(ctx context.Context, b *Backup) error {
	doc, err := marshalDoc(b.Document)
	if err != nil {
		return err
	}

	query := ` INSERT INTO document_backups (tenant_id, session_date, document, saved_at)
			values (?, ?, ?, ?)
			ON CONFLICT(tenant_id, session_date) DO UPDATE SET document = excluded.document,
				saved_at = excluded.saved_at
	`
	_, err = r.db.ExecContext(ctx, query, b.TenantID, b.SessionDate, doc, formatTime(b.SavedAt))
	if err != nil {
		return fmt.Errorf("failed to upsert backup: %w", err)
	}
	return nil
}

// GetBackup returns one backup or common.ErrorNotFound.
func (r *SQLiteStore) GetBackup(ctx context.Context, tenantID, sessionDate string) (*Backup, error) {
	query := `select document, saved_at from document_backups where tenant_id=? and session_date=?`
	row := r.db.QueryRowContext(ctx, query, tenantID, sessionDate)

	b := &Backup{TenantID: tenantID, SessionDate: sessionDate}
	var doc, saved string
	if err := row.Scan(&doc, &saved); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("query row scan failed: %w", err)
	}

	d, err := unmarshalDoc(doc)
	if err != nil {
		return nil, err
	}
	b.Document = d
	b.SavedAt = parseTime(saved)
	return b, nil
}

// SaveAutosave overwrites the single autosave slot.
func (r *SQLiteStore) SaveAutosave(ctx context.Context, a *Autosave) error {
	doc, err := marshalDoc(a.Document)
	if err != nil {
		return err
	}

	query := ` INSERT INTO autosave (slot, tenant_id, session_id, session_date, document, saved_at)
			values (0, ?, ?, ?, ?, ?)
			ON CONFLICT(slot) DO UPDATE SET tenant_id = excluded.tenant_id,
				session_id = excluded.session_id,
				session_date = excluded.session_date,
				document = excluded.document,
				saved_at = excluded.saved_at
	`
	_, err = r.db.ExecContext(ctx, query, a.TenantID, a.SessionID, a.SessionDate, doc, formatTime(a.SavedAt))
	if err != nil {
		return fmt.Errorf("failed to upsert autosave: %w", err)
	}
	return nil
}

// GetAutosave returns the autosave slot or common.ErrorNotFound when empty.
func (r *SQLiteStore) GetAutosave(ctx context.Context) (*Autosave, error) {
	query := `select tenant_id, session_id, session_date, document, saved_at from autosave where slot=0`
	row := r.db.QueryRowContext(ctx, query)

	a := &Autosave{}
	var doc, saved string
	if err := row.Scan(&a.TenantID, &a.SessionID, &a.SessionDate, &doc, &saved); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("query row scan failed: %w", err)
	}

	d, err := unmarshalDoc(doc)
	if err != nil {
		return nil, err
	}
	a.Document = d
	a.SavedAt = parseTime(saved)
	return a, nil
}

// ClearAutosave empties the autosave slot.
func (r *SQLiteStore) ClearAutosave(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, `delete from autosave where slot=0`); err != nil {
		return fmt.Errorf("failed to clear autosave: %w", err)
	}
	return nil
}
