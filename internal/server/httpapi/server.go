package httpapi

import (
	"context"
	"net/http"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/figmints/meetsync/internal/logging"
)

// Server owns the HTTP listener lifecycle.
type Server struct {
	srv    *http.Server
	logger logging.Logger
}

func NewServer(addr string, handler *Handler, logger logging.Logger) *Server {
	return &Server{
		srv: &http.Server{
			Addr:              addr,
			Handler:           otelhttp.NewHandler(handler.Routes(), "meetsync"),
			ReadHeaderTimeout: 5 * time.Second,
		},
		logger: logger,
	}
}

// Run serves until the listener fails or Shutdown is called.
func (s *Server) Run(ctx context.Context) error {
	s.logger.Info(ctx, "http server starting", "addr", s.srv.Addr)
	if err := s.srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown drains in-flight requests and stops the listener.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info(ctx, "http server stopping")
	return s.srv.Shutdown(ctx)
}
