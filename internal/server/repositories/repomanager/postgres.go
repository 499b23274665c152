package repomanager

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/figmints/meetsync/internal/server/migrations"
	"github.com/figmints/meetsync/internal/server/repositories/documents"
	"github.com/figmints/meetsync/internal/server/repositories/sessions"
	"github.com/figmints/meetsync/internal/server/repositories/tenants"
	"github.com/figmints/meetsync/internal/server/repositories/users"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
)

type PostgresManager struct {
	db        *sql.DB
	users     users.Repository
	tenants   tenants.Repository
	sessions  sessions.Repository
	documents documents.Repository
}

func NewPostgresManager(dsn string) (RepositoryManager, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("db open error: %w", err)
	}

	return &PostgresManager{
		db:        db,
		users:     users.NewPostgresRepository(db),
		tenants:   tenants.NewPostgresRepository(db),
		sessions:  sessions.NewPostgresRepository(db),
		documents: documents.NewPostgresRepository(db),
	}, nil
}

func (m *PostgresManager) Conn() *sql.DB { return m.db }

func (m *PostgresManager) Users() users.Repository         { return m.users }
func (m *PostgresManager) Tenants() tenants.Repository     { return m.tenants }
func (m *PostgresManager) Sessions() sessions.Repository   { return m.sessions }
func (m *PostgresManager) Documents() documents.Repository { return m.documents }

// RunMigrations sets up goose with the embedded migrations and applies them.
func (m *PostgresManager) RunMigrations(ctx context.Context) error {
	goose.SetBaseFS(migrations.Migrations)

	if err := goose.SetDialect("postgres"); err != nil {
		return err
	}

	return goose.UpContext(ctx, m.db, ".")
}

func (m *PostgresManager) Close() error { return m.db.Close() }
