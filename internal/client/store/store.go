// Package store is the client's local persistence layer: a SQLite database
// holding meeting documents keyed by session, per-date backups, and a
// single autosave slot. It is the fallback chain the client reads from when
// the server cannot be reached.
package store

import (
	"context"
	"time"

	"github.com/figmints/meetsync/internal/meeting"
)

// SessionRecord is the locally persisted copy of one meeting document.
// LastSavedAt is zero until the server has confirmed a save.
type SessionRecord struct {
	TenantID    string
	SessionID   string
	TenantName  string
	SessionDate string
	Document    *meeting.Document
	LastSavedAt time.Time
	UpdatedAt   time.Time
}

// Backup is a per-date snapshot, written on every local save so an older
// copy survives even if the keyed record is corrupted.
type Backup struct {
	TenantID    string
	SessionDate string
	Document    *meeting.Document
	SavedAt     time.Time
}

// Autosave is the single-slot snapshot of whichever document was open last.
type Autosave struct {
	TenantID    string
	SessionID   string
	SessionDate string
	Document    *meeting.Document
	SavedAt     time.Time
}

// Store is the local persistence interface used by the sync engine.
type Store interface {
	SaveRecord(ctx context.Context, r *SessionRecord) error
	GetRecord(ctx context.Context, tenantID, sessionID string) (*SessionRecord, error)
	ListRecords(ctx context.Context, tenantID string) ([]*SessionRecord, error)

	SaveBackup(ctx context.Context, b *Backup) error
	GetBackup(ctx context.Context, tenantID, sessionDate string) (*Backup, error)

	SaveAutosave(ctx context.Context, a *Autosave) error
	GetAutosave(ctx context.Context) (*Autosave, error)
	ClearAutosave(ctx context.Context) error
}
