// Package server exposes the status-resolution engine over HTTP.
package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	apperrors "github.com/3leaps/verdict/internal/errors"
	"github.com/3leaps/verdict/internal/observability"
	"github.com/3leaps/verdict/internal/server/handlers"
	"github.com/3leaps/verdict/internal/server/middleware"
	"github.com/3leaps/verdict/pkg/query"
)

// Server hosts the HTTP API.
type Server struct {
	host    string
	port    int
	router  chi.Router
	httpSrv *http.Server
}

// New builds a Server serving svc.
func New(host string, port int, svc query.Service, version string) *Server {
	r := chi.NewRouter()
	r.Use(middleware.Recovery)
	r.Use(middleware.RequestLogger)
	r.NotFound(apperrors.NotFoundHandler)
	r.MethodNotAllowed(apperrors.MethodNotAllowedHandler)

	sh := handlers.NewStatusHandlers(svc)
	r.Get("/health", handlers.Health(version))
	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/status", sh.MatchingStatuses)
		r.Get("/jobs", sh.JobsByStatus)
		r.Get("/builders", sh.Builders)
	})

	return &Server{host: host, port: port, router: r}
}

// Handler returns the root HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Port returns the configured listen port.
func (s *Server) Port() int {
	return s.port
}

// Addr returns the configured listen address.
func (s *Server) Addr() string {
	return fmt.Sprintf("%s:%d", s.host, s.port)
}

// ListenAndServe blocks until ctx is cancelled or the listener fails, then
// shuts down gracefully within shutdownTimeout.
func (s *Server) ListenAndServe(ctx context.Context, readTimeout, writeTimeout, idleTimeout, shutdownTimeout time.Duration) error {
	s.httpSrv = &http.Server{
		Addr:         s.Addr(),
		Handler:      s.router,
		ReadTimeout:  readTimeout,
		WriteTimeout: writeTimeout,
		IdleTimeout:  idleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		observability.ServerLogger.Info("Listening", zap.String("addr", s.Addr()))
		errCh <- s.httpSrv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err == http.ErrServerClosed {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return s.httpSrv.Shutdown(shutdownCtx)
	}
}
