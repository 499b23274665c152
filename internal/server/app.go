// Package server wires the meetsync server together: storage, migrations,
// services, and the HTTP API, with graceful shutdown on SIGINT/SIGTERM.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/figmints/meetsync/internal/logging"
	"github.com/figmints/meetsync/internal/server/archive"
	"github.com/figmints/meetsync/internal/server/auth"
	"github.com/figmints/meetsync/internal/server/config"
	"github.com/figmints/meetsync/internal/server/httpapi"
	"github.com/figmints/meetsync/internal/server/repositories/repomanager"
	"github.com/figmints/meetsync/internal/server/services"
	"github.com/figmints/meetsync/internal/server/telemetry"
)

type App struct {
	config  *config.Config
	logger  logging.Logger
	manager repomanager.RepositoryManager
	server  *httpapi.Server
}

func NewApp(c *config.Config) (*App, error) {
	logger := logging.NewSlogLogger(slog.New(slog.NewJSONHandler(os.Stdout, nil)))

	manager, err := repomanager.NewPostgresManager(c.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	var archiver archive.Archiver = &archive.Nop{}
	if c.ArchiveBucket != "" {
		a, err := archive.NewS3Archiver(context.Background(), archive.S3Config{
			AccessKey:    c.ArchiveAccessKey,
			SecretKey:    c.ArchiveSecretKey,
			Bucket:       c.ArchiveBucket,
			Region:       c.ArchiveRegion,
			BaseEndpoint: c.ArchiveEndpoint,
		})
		if err != nil {
			return nil, fmt.Errorf("archive init error: %w", err)
		}
		archiver = a
	}

	tokens := auth.NewTokenService([]byte(c.SecretKey), c.TokenValidity)
	userService := services.NewUserService(manager.Users(), tokens, logger)
	tenantService := services.NewTenantService(manager.Tenants())
	sessionService := services.NewSessionService(manager.Sessions(), manager.Documents(), archiver, logger)

	handler := httpapi.NewHandler(userService, tenantService, sessionService, c.TokenValidity, logger)
	server := httpapi.NewServer(c.EndpointAddr, handler, logger)

	return &App{config: c, logger: logger, manager: manager, server: server}, nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

func (app *App) Run(ctx context.Context) error {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	shutdownTracing := telemetry.Setup("meetsync-server")

	app.logger.Info(ctx, "starting app")

	if err := app.manager.RunMigrations(ctx); err != nil {
		return fmt.Errorf("migrations: %w", err)
	}

	app.initSignalHandler(cancelFunc)

	errCh := make(chan error, 1)
	go func() {
		errCh <- app.server.Run(ctx)
	}()

	var runErr error
	select {
	case <-ctx.Done():
	case runErr = <-errCh:
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.server.Shutdown(shutdownCtx); err != nil {
		app.logger.Error(shutdownCtx, "http shutdown", "error", err)
	}
	if err := shutdownTracing(shutdownCtx); err != nil {
		app.logger.Error(shutdownCtx, "tracing shutdown", "error", err)
	}
	if err := app.manager.Close(); err != nil {
		app.logger.Error(shutdownCtx, "db close", "error", err)
	}

	return runErr
}
