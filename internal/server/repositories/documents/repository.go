package documents

import (
	"context"
	"time"

	"github.com/figmints/meetsync/internal/meeting"
)

// Repository describes persistence for session documents. A document is
// stored and replaced whole; there is no partial patch.
type Repository interface {
	// Get returns the document for a session and its last update time,
	// common.ErrorNotFound if the session has never been saved.
	Get(ctx context.Context, sessionID string) (*meeting.Document, time.Time, error)

	// Put replaces the document for a session (upsert).
	Put(ctx context.Context, sessionID string, doc *meeting.Document) error
}
