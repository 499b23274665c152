// Package api is the client's HTTP gateway to the meetsync server.
package api

import (
	"context"
	"time"

	"github.com/figmints/meetsync/internal/meeting"
)

// Identity is the caller summary returned by the auth endpoints.
type Identity struct {
	ID        string `json:"id"`
	Email     string `json:"email"`
	Role      string `json:"role"`
	TenantID  string `json:"tenant_id,omitempty"`
	FirstName string `json:"first_name,omitempty"`
	LastName  string `json:"last_name,omitempty"`
}

// Tenant is a client organization as seen over the API.
type Tenant struct {
	ID             string `json:"id"`
	Name           string `json:"name"`
	URL            string `json:"url,omitempty"`
	AccountManager string `json:"account_manager,omitempty"`
	Strategist     string `json:"strategist,omitempty"`
}

// Session is one meeting session as seen over the API.
type Session struct {
	ID           string   `json:"id"`
	TenantID     string   `json:"tenant_id"`
	SessionDate  string   `json:"session_date"`
	Status       string   `json:"status"`
	ScoreAverage *float64 `json:"score_average,omitempty"`
}

// Client is the server API surface the CLI and the sync engine consume.
// Implementations map HTTP statuses to the common sentinel errors; transport
// failures surface as common.ErrorUnavailable so callers can fall back to
// the local store.
type Client interface {
	Login(ctx context.Context, email, password string) (*Identity, error)
	Logout(ctx context.Context) error
	Me(ctx context.Context) (*Identity, error)

	ListTenants(ctx context.Context) ([]Tenant, error)
	ListSessions(ctx context.Context, tenantID string) ([]Session, error)

	ResolveSession(ctx context.Context, tenantID, sessionDate string) (*Session, error)
	GetDocument(ctx context.Context, sessionID string) (*meeting.Document, time.Time, error)
	PutDocument(ctx context.Context, sessionID string, doc *meeting.Document) error
	CompleteSession(ctx context.Context, sessionID string) (*Session, error)
}
