package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/figmints/meetsync/internal/common"
	"github.com/figmints/meetsync/internal/logging"
	"github.com/figmints/meetsync/internal/meeting"
	"github.com/figmints/meetsync/internal/server/archive"
	"github.com/figmints/meetsync/internal/server/auth"
	"github.com/figmints/meetsync/internal/server/models"
	"github.com/figmints/meetsync/internal/server/repositories/documents"
	"github.com/figmints/meetsync/internal/server/repositories/sessions"
)

// SessionService resolves meeting sessions and owns the server side of
// document persistence.
type SessionService struct {
	sessions  sessions.Repository
	documents documents.Repository
	archiver  archive.Archiver
	logger    logging.Logger
}

func NewSessionService(sessions sessions.Repository, documents documents.Repository,
	archiver archive.Archiver, logger logging.Logger) *SessionService {
	return &SessionService{sessions: sessions, documents: documents, archiver: archiver, logger: logger}
}

// Resolve maps (tenantID, sessionDate) to exactly one meeting session,
// creating it on first access. Idempotent: repeated calls for the same date
// never create duplicates and never alter the existing session.
func (s *SessionService) Resolve(ctx context.Context, caller *models.User, tenantID, sessionDate string) (*models.MeetingSession, error) {
	if err := auth.AuthorizeTenant(caller, tenantID); err != nil {
		return nil, err
	}
	if _, err := time.Parse("2006-01-02", sessionDate); err != nil {
		return nil, fmt.Errorf("%w: session_date must be YYYY-MM-DD", common.ErrorValidation)
	}

	return s.sessions.FindOrCreate(ctx, tenantID, sessionDate)
}

// authorizeSession loads a session and checks the caller may touch its
// tenant. A session belonging to a foreign tenant is reported as not found,
// so probing ids cannot reveal which sessions exist.
func (s *SessionService) authorizeSession(ctx context.Context, caller *models.User, sessionID string) (*models.MeetingSession, error) {
	session, err := s.sessions.GetByID(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if err := auth.AuthorizeTenant(caller, session.TenantID); err != nil {
		if errors.Is(err, common.ErrorForbidden) {
			return nil, common.ErrorNotFound
		}
		return nil, err
	}
	return session, nil
}

// GetDocument returns the session's document, or an empty default if it has
// never been saved.
func (s *SessionService) GetDocument(ctx context.Context, caller *models.User, sessionID string) (*meeting.Document, time.Time, error) {
	if _, err := s.authorizeSession(ctx, caller, sessionID); err != nil {
		return nil, time.Time{}, err
	}

	doc, updatedAt, err := s.documents.Get(ctx, sessionID)
	if errors.Is(err, common.ErrorNotFound) {
		return meeting.Empty(), time.Time{}, nil
	}
	if err != nil {
		return nil, time.Time{}, err
	}

	return doc, updatedAt, nil
}

// PutDocument replaces the session's document and refreshes the session's
// score average. Last write wins; there is no merge of concurrent edits.
func (s *SessionService) PutDocument(ctx context.Context, caller *models.User, sessionID string, doc *meeting.Document) error {
	session, err := s.authorizeSession(ctx, caller, sessionID)
	if err != nil {
		return err
	}
	if doc == nil {
		return fmt.Errorf("%w: document body is required", common.ErrorValidation)
	}

	if err := s.documents.Put(ctx, sessionID, doc); err != nil {
		return err
	}

	avg := doc.ScoreAverage()
	if err := s.sessions.SetStatus(ctx, sessionID, session.Status, &avg); err != nil {
		s.logger.Warn(ctx, "score average update failed", "session_id", sessionID, "error", err)
	}

	return nil
}

// ListByTenant returns a tenant's sessions, newest first.
func (s *SessionService) ListByTenant(ctx context.Context, caller *models.User, tenantID string) ([]*models.MeetingSession, error) {
	if err := auth.AuthorizeTenant(caller, tenantID); err != nil {
		return nil, err
	}
	return s.sessions.ListByTenant(ctx, tenantID)
}

// Complete marks a session completed and archives a snapshot of its document
// to object storage. Archiving is best-effort and never fails the request.
func (s *SessionService) Complete(ctx context.Context, caller *models.User, sessionID string) (*models.MeetingSession, error) {
	session, err := s.authorizeSession(ctx, caller, sessionID)
	if err != nil {
		return nil, err
	}

	doc, _, err := s.documents.Get(ctx, sessionID)
	if errors.Is(err, common.ErrorNotFound) {
		doc = meeting.Empty()
	} else if err != nil {
		return nil, err
	}

	avg := doc.ScoreAverage()
	if err := s.sessions.SetStatus(ctx, sessionID, models.SessionCompleted, &avg); err != nil {
		return nil, err
	}
	session.Status = models.SessionCompleted
	session.ScoreAverage = &avg

	if body, err := json.Marshal(doc); err == nil {
		key := fmt.Sprintf("tenants/%s/sessions/%s-%s.json", session.TenantID, session.SessionDate, session.ID)
		if err := s.archiver.Archive(ctx, key, body); err != nil {
			s.logger.Warn(ctx, "session archive failed", "session_id", sessionID, "error", err)
		}
	}

	return session, nil
}
