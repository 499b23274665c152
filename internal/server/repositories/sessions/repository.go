package sessions

import (
	"context"

	"github.com/figmints/meetsync/internal/server/models"
)

// Repository describes persistence for meeting sessions.
type Repository interface {
	// FindOrCreate returns the session for (tenantID, sessionDate), creating
	// it with status in_progress on first access. The operation is atomic
	// with respect to the (tenant_id, session_date) unique constraint: a
	// concurrent creation for the same pair is resolved by re-reading the
	// winning row, never by failing or duplicating.
	FindOrCreate(ctx context.Context, tenantID, sessionDate string) (*models.MeetingSession, error)

	// GetByID returns a session, common.ErrorNotFound if absent.
	GetByID(ctx context.Context, id string) (*models.MeetingSession, error)

	// ListByTenant returns sessions of one tenant, newest date first.
	ListByTenant(ctx context.Context, tenantID string) ([]*models.MeetingSession, error)

	// SetStatus updates the lifecycle status and score average.
	SetStatus(ctx context.Context, id string, status models.SessionStatus, scoreAverage *float64) error
}
