// Package repomanager wires the concrete repositories to one database handle
// and exposes them behind a single interface, so services receive their
// storage by injection and tests can substitute fakes.
package repomanager

import (
	"context"
	"database/sql"

	"github.com/figmints/meetsync/internal/server/repositories/documents"
	"github.com/figmints/meetsync/internal/server/repositories/sessions"
	"github.com/figmints/meetsync/internal/server/repositories/tenants"
	"github.com/figmints/meetsync/internal/server/repositories/users"
)

type RepositoryManager interface {
	Conn() *sql.DB
	Users() users.Repository
	Tenants() tenants.Repository
	Sessions() sessions.Repository
	Documents() documents.Repository
	RunMigrations(ctx context.Context) error
	Close() error
}
