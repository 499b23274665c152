// Package sync owns the client-side document lifecycle: loading a meeting
// document with a local fallback chain, tracking dirty state, pushing saves
// to the server with coalescing, and snapshotting every edit locally so the
// note taker's work survives a crash or a dead network.
package sync

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/figmints/meetsync/internal/client/api"
	"github.com/figmints/meetsync/internal/client/store"
	"github.com/figmints/meetsync/internal/common"
	"github.com/figmints/meetsync/internal/logging"
	"github.com/figmints/meetsync/internal/meeting"
)

// State is the engine's position in the document lifecycle.
type State string

const (
	StateUnopened   State = "unopened"
	StateLoading    State = "loading"
	StateClean      State = "clean"
	StateDirty      State = "dirty"
	StateSaving     State = "saving"
	StateSaveFailed State = "save_failed"
	StateClosed     State = "closed"
)

// ErrNoOpenDocument is returned by operations that need an open document.
var ErrNoOpenDocument = errors.New("no open document")

// ErrDocumentOpen is returned by Open and Resume while a document is still
// open. The caller must Close first.
var ErrDocumentOpen = errors.New("a document is already open")

// localIDPrefix marks sessions that were opened offline and have no
// server-assigned id yet. They are resolved on the next successful save.
const localIDPrefix = "local:"

// Gateway is the server surface the engine needs.
type Gateway interface {
	ResolveSession(ctx context.Context, tenantID, sessionDate string) (*api.Session, error)
	GetDocument(ctx context.Context, sessionID string) (*meeting.Document, time.Time, error)
	PutDocument(ctx context.Context, sessionID string, doc *meeting.Document) error
}

// Engine drives one open meeting document at a time.
//
// Saves never overlap: a Save issued while another is in flight is coalesced
// into a single follow-up push carrying the latest state. Every edit is
// persisted locally before any network traffic, so a failed save loses
// nothing.
type Engine struct {
	gateway          Gateway
	store            store.Store
	scheduler        Scheduler
	logger           logging.Logger
	autosaveInterval time.Duration
	now              func() time.Time

	mu          sync.Mutex
	state       State
	tenantID    string
	tenantName  string
	sessionID   string
	sessionDate string
	doc         *meeting.Document
	gen         uint64
	savedGen    uint64
	lastSavedAt time.Time
	saving      bool
	pendingSave bool
}

func NewEngine(gateway Gateway, st store.Store, scheduler Scheduler,
	autosaveInterval time.Duration, logger logging.Logger) *Engine {
	return &Engine{
		gateway:          gateway,
		store:            st,
		scheduler:        scheduler,
		logger:           logger,
		autosaveInterval: autosaveInterval,
		now:              time.Now,
		state:            StateUnopened,
	}
}

func cloneDoc(doc *meeting.Document) *meeting.Document {
	b, _ := json.Marshal(doc)
	out := &meeting.Document{}
	_ = json.Unmarshal(b, out)
	return out
}

// Open loads the document for (tenant, date). The server is asked first;
// when it cannot be reached the engine falls back to the local chain: the
// keyed session record, then the autosave slot, then an empty document.
// Navigation goes through Close: opening on top of an open document is
// rejected.
func (e *Engine) Open(ctx context.Context, tenantID, tenantName, sessionDate string) error {
	e.mu.Lock()
	switch e.state {
	case StateUnopened, StateClosed:
	default:
		e.mu.Unlock()
		return ErrDocumentOpen
	}
	prev := e.state
	e.state = StateLoading
	e.tenantID = tenantID
	e.tenantName = tenantName
	e.sessionDate = sessionDate
	e.mu.Unlock()

	session, err := e.gateway.ResolveSession(ctx, tenantID, sessionDate)
	if err != nil {
		if common.IsRetriable(err) || errors.Is(err, common.ErrorUnavailable) {
			e.logger.Warn(ctx, "server unreachable, opening from local store", "error", err)
			return e.openLocal(ctx, "")
		}
		e.mu.Lock()
		e.state = prev
		e.mu.Unlock()
		return err
	}

	doc, updatedAt, err := e.gateway.GetDocument(ctx, session.ID)
	if err != nil {
		if common.IsRetriable(err) {
			e.logger.Warn(ctx, "document load failed, opening from local store", "error", err)
			return e.openLocal(ctx, session.ID)
		}
		e.mu.Lock()
		e.state = prev
		e.mu.Unlock()
		return err
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	e.sessionID = session.ID
	e.doc = doc
	e.gen = 0
	e.savedGen = 0
	e.lastSavedAt = updatedAt
	e.state = StateClean

	// Write-through so the session is available offline next time.
	if err := e.persistLocalLocked(ctx); err != nil {
		e.logger.Warn(ctx, "local write-through failed", "error", err)
	}
	return nil
}

// openLocal finishes Open from local data. sessionID may be empty when even
// resolution failed; a synthetic id is used until the next successful save.
func (e *Engine) openLocal(ctx context.Context, sessionID string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	tenantID, sessionDate := e.tenantID, e.sessionDate

	if rec, ok := e.findRecordLocked(ctx, sessionID); ok {
		e.sessionID = rec.SessionID
		e.doc = rec.Document
		e.lastSavedAt = rec.LastSavedAt
		e.gen = 0
		e.savedGen = 0
		if rec.LastSavedAt.IsZero() || rec.UpdatedAt.After(rec.LastSavedAt) {
			// Unconfirmed local edits: push on the next save.
			e.gen = 1
			e.state = StateDirty
		} else {
			e.state = StateClean
		}
		return nil
	}

	if a, err := e.store.GetAutosave(ctx); err == nil &&
		a.TenantID == tenantID && a.SessionDate == sessionDate {
		e.sessionID = a.SessionID
		e.doc = a.Document
		e.lastSavedAt = time.Time{}
		e.gen = 1
		e.savedGen = 0
		e.state = StateDirty
		return nil
	}

	if sessionID == "" {
		sessionID = localIDPrefix + tenantID + ":" + sessionDate
	}
	e.sessionID = sessionID
	e.doc = meeting.Empty()
	e.gen = 0
	e.savedGen = 0
	e.lastSavedAt = time.Time{}
	e.state = StateClean
	return nil
}

// findRecordLocked looks up the keyed local record, by session id when known,
// otherwise by session date.
func (e *Engine) findRecordLocked(ctx context.Context, sessionID string) (*store.SessionRecord, bool) {
	if sessionID != "" {
		rec, err := e.store.GetRecord(ctx, e.tenantID, sessionID)
		if err == nil {
			return rec, true
		}
		if !errors.Is(err, common.ErrorNotFound) {
			e.logger.Warn(ctx, "local record unreadable", "error", err)
		}
		return nil, false
	}

	records, err := e.store.ListRecords(ctx, e.tenantID)
	if err != nil {
		e.logger.Warn(ctx, "local record listing failed", "error", err)
		return nil, false
	}
	for _, rec := range records {
		if rec.SessionDate == e.sessionDate {
			return rec, true
		}
	}
	return nil, false
}

// Resume reopens whatever document the autosave slot holds. Used at startup
// to recover a session the previous process never closed.
func (e *Engine) Resume(ctx context.Context) error {
	e.mu.Lock()
	switch e.state {
	case StateUnopened, StateClosed:
	default:
		e.mu.Unlock()
		return ErrDocumentOpen
	}
	e.mu.Unlock()

	a, err := e.store.GetAutosave(ctx)
	if err != nil {
		return err
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	e.tenantID = a.TenantID
	e.tenantName = ""
	e.sessionID = a.SessionID
	e.sessionDate = a.SessionDate
	e.doc = a.Document
	e.gen = 1
	e.savedGen = 0
	e.lastSavedAt = time.Time{}
	e.state = StateDirty
	return nil
}

// Edit applies a mutation to the open document and snapshots the result
// locally before returning. The document is dirty afterwards.
func (e *Engine) Edit(ctx context.Context, fn func(*meeting.Document)) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	switch e.state {
	case StateClean, StateDirty, StateSaving, StateSaveFailed:
	default:
		return ErrNoOpenDocument
	}

	fn(e.doc)
	e.gen++
	if e.state != StateSaving {
		e.state = StateDirty
	}

	if err := e.persistLocalLocked(ctx); err != nil {
		e.logger.Error(ctx, "local snapshot failed", "error", err)
		return err
	}
	return nil
}

// persistLocalLocked writes the keyed record, the per-date backup, and the
// autosave slot. Caller holds e.mu.
func (e *Engine) persistLocalLocked(ctx context.Context) error {
	now := e.now()

	if err := e.store.SaveRecord(ctx, &store.SessionRecord{
		TenantID:    e.tenantID,
		SessionID:   e.sessionID,
		TenantName:  e.tenantName,
		SessionDate: e.sessionDate,
		Document:    e.doc,
		LastSavedAt: e.lastSavedAt,
		UpdatedAt:   now,
	}); err != nil {
		return err
	}

	if err := e.store.SaveBackup(ctx, &store.Backup{
		TenantID:    e.tenantID,
		SessionDate: e.sessionDate,
		Document:    e.doc,
		SavedAt:     now,
	}); err != nil {
		return err
	}

	return e.store.SaveAutosave(ctx, &store.Autosave{
		TenantID:    e.tenantID,
		SessionID:   e.sessionID,
		SessionDate: e.sessionDate,
		Document:    e.doc,
		SavedAt:     now,
	})
}

// Save pushes the current document to the server. If a save is already in
// flight the request is coalesced: the running save issues one follow-up
// push with the latest state and this call returns immediately.
//
// A failed push leaves the engine in StateSaveFailed, but the document is
// already snapshotted locally, so nothing is lost.
func (e *Engine) Save(ctx context.Context) error {
	e.mu.Lock()

	switch e.state {
	case StateClean, StateDirty, StateSaving, StateSaveFailed:
	default:
		e.mu.Unlock()
		return ErrNoOpenDocument
	}

	if e.saving {
		e.pendingSave = true
		e.mu.Unlock()
		return nil
	}
	if e.gen == e.savedGen && e.state == StateClean {
		e.mu.Unlock()
		return nil
	}

	e.saving = true
	e.state = StateSaving

	for {
		genSnapshot := e.gen
		docCopy := cloneDoc(e.doc)
		sessionID := e.sessionID
		tenantID, sessionDate := e.tenantID, e.sessionDate
		e.mu.Unlock()

		// Sessions opened offline have no server id yet.
		if strings.HasPrefix(sessionID, localIDPrefix) {
			session, err := e.gateway.ResolveSession(ctx, tenantID, sessionDate)
			if err != nil {
				return e.failSave(ctx, err)
			}
			e.mu.Lock()
			e.sessionID = session.ID
			e.mu.Unlock()
			sessionID = session.ID
		}

		if err := e.gateway.PutDocument(ctx, sessionID, docCopy); err != nil {
			return e.failSave(ctx, err)
		}

		e.mu.Lock()
		e.savedGen = genSnapshot
		e.lastSavedAt = e.now()
		if err := e.persistLocalLocked(ctx); err != nil {
			e.logger.Warn(ctx, "local snapshot after save failed", "error", err)
		}

		if e.gen > e.savedGen || e.pendingSave {
			e.pendingSave = false
			continue
		}

		e.saving = false
		e.state = StateClean
		e.mu.Unlock()
		return nil
	}
}

// failSave downgrades a failed push to a local-only save. The snapshot still
// lands in the local store and lastSavedAt still advances: the user's edits
// are safe on disk even though the server never saw them.
func (e *Engine) failSave(ctx context.Context, err error) error {
	e.logger.Warn(ctx, "save failed, changes kept locally", "error", err)

	e.mu.Lock()
	defer e.mu.Unlock()

	e.saving = false
	e.pendingSave = false
	e.lastSavedAt = e.now()
	if perr := e.persistLocalLocked(ctx); perr != nil {
		e.logger.Error(ctx, "local snapshot after failed save", "error", perr)
	}
	e.state = StateSaveFailed
	return err
}

// StartAutosave begins periodic pushes of dirty state.
func (e *Engine) StartAutosave() {
	e.scheduler.Start(e.autosaveInterval, func() {
		e.mu.Lock()
		needed := (e.state == StateDirty || e.state == StateSaveFailed) && !e.saving
		e.mu.Unlock()

		if needed {
			_ = e.Save(context.Background())
		}
	})
}

// Close flushes the document locally and releases it. Close never touches
// the network: a dirty document stays in the local store and the autosave
// slot, ready for Resume. A clean close clears the autosave slot.
func (e *Engine) Close(ctx context.Context) error {
	e.scheduler.Stop()

	e.mu.Lock()
	defer e.mu.Unlock()

	switch e.state {
	case StateUnopened, StateClosed:
		return nil
	}

	var err error
	if e.gen > e.savedGen {
		err = e.persistLocalLocked(ctx)
	} else {
		err = e.store.ClearAutosave(ctx)
	}

	e.state = StateClosed
	e.doc = nil
	return err
}

// State returns the current lifecycle state.
func (e *Engine) State() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

// Document returns a copy of the open document.
func (e *Engine) Document() *meeting.Document {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.doc == nil {
		return nil
	}
	return cloneDoc(e.doc)
}

// Dirty reports whether unconfirmed edits exist.
func (e *Engine) Dirty() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.gen > e.savedGen
}

// LastSavedAt returns when the document was last saved, to the server or,
// after a failed push, to the local store. Zero if never saved.
func (e *Engine) LastSavedAt() time.Time {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.lastSavedAt
}

// SessionID returns the open session's id.
func (e *Engine) SessionID() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.sessionID
}

// SessionDate returns the open session's date.
func (e *Engine) SessionDate() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.sessionDate
}
