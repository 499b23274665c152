// Package cli implements the interactive meetsync client: a small REPL for
// opening a tenant's meeting for a date, taking notes, and letting the sync
// engine keep the server and the local store up to date.
package cli

import (
	"bufio"
	"context"
	"database/sql"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/figmints/meetsync/internal/client/api"
	"github.com/figmints/meetsync/internal/client/config"
	"github.com/figmints/meetsync/internal/client/store"
	"github.com/figmints/meetsync/internal/client/sync"
	"github.com/figmints/meetsync/internal/logging"
)

type App struct {
	config   *config.Config
	api      api.Client
	store    store.Store
	engine   *sync.Engine
	db       *sql.DB
	identity *api.Identity
	tenants  []api.Tenant
	reader   *bufio.Reader
	out      io.Writer
}

func NewApp(c *config.Config) (*App, error) {
	ctx := context.Background()

	db, err := store.InitDatabase(ctx, c.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("error initializing database: %w", err)
	}

	logger := logging.NewSlogLogger(slog.New(slog.NewTextHandler(os.Stderr, nil)))

	apiClient := api.NewHTTPClient(c.ServerAddr, c.RequestTimeout)
	st := store.NewSQLiteStore(db)
	engine := sync.NewEngine(apiClient, st,
		sync.NewTickerScheduler(), c.AutosaveInterval, logger)

	return &App{
		config: c,
		api:    apiClient,
		store:  st,
		engine: engine,
		db:     db,
		reader: bufio.NewReader(os.Stdin),
		out:    os.Stdout,
	}, nil
}

func (a *App) Run(ctx context.Context) {
	defer a.db.Close()
	a.Root(ctx)
}

func (a *App) isLoggedIn() bool {
	return a.identity != nil
}

func (a *App) hasOpenDocument() bool {
	switch a.engine.State() {
	case sync.StateClean, sync.StateDirty, sync.StateSaving, sync.StateSaveFailed:
		return true
	}
	return false
}

// status renders the REPL prompt segment: identity, open session, and the
// engine state.
func (a *App) status() string {
	if !a.isLoggedIn() {
		return "not logged in"
	}
	if !a.hasOpenDocument() {
		return a.identity.Email
	}
	return fmt.Sprintf("%s | %s | %s", a.identity.Email, a.engine.SessionDate(), a.engine.State())
}
