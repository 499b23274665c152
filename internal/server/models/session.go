package models

import "time"

// SessionStatus is the lifecycle state of a meeting session.
type SessionStatus string

const (
	SessionDraft      SessionStatus = "draft"
	SessionInProgress SessionStatus = "in_progress"
	SessionCompleted  SessionStatus = "completed"
)

// MeetingSession is one tracked meeting for a tenant on a calendar date.
// At most one session exists per (TenantID, SessionDate); the sessions
// repository enforces this with a unique constraint.
type MeetingSession struct {
	ID           string
	TenantID     string
	SessionDate  string // calendar date, YYYY-MM-DD, no time component
	Status       SessionStatus
	ScoreAverage *float64
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
