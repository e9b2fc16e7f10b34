// Package server exposes the rule evaluator over HTTP: a multipart
// upload endpoint that runs checks and returns the report, plus
// check metadata, run history and health endpoints.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/sync/errgroup"

	"github.com/leapstack-labs/dqcheck/internal/store"
)

// DefaultMaxUploadBytes caps uploads when no limit is configured.
const DefaultMaxUploadBytes = 32 << 20 // 32 MiB

// Config holds configuration for the HTTP server.
type Config struct {
	Port           int
	MaxUploadBytes int64
	RulesPath      string // server-side default rules file, used when the request carries none
	Store          store.Store
	Logger         *slog.Logger
}

// Server is the HTTP service.
type Server struct {
	port      int
	maxUpload int64
	rulesPath string
	store     store.Store
	logger    *slog.Logger
}

// New creates a server from config.
func New(cfg Config) *Server {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	maxUpload := cfg.MaxUploadBytes
	if maxUpload <= 0 {
		maxUpload = DefaultMaxUploadBytes
	}
	return &Server{
		port:      cfg.Port,
		maxUpload: maxUpload,
		rulesPath: cfg.RulesPath,
		store:     cfg.Store,
		logger:    logger,
	}
}

// Routes builds the HTTP handler. Exposed separately from Serve so
// tests can drive it with httptest.
func (s *Server) Routes() http.Handler {
	r := chi.NewMux()
	r.Use(
		middleware.Logger,
		middleware.Recoverer,
		middleware.Compress(5),
	)

	r.Get("/healthz", s.handleHealth)
	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/check", s.handleCheck)
		r.Get("/checks", s.handleChecks)
		r.Get("/runs", s.handleRuns)
	})

	return r
}

// Serve starts the server and blocks until the context is cancelled
// or the listener fails.
func (s *Server) Serve(ctx context.Context) error {
	addr := fmt.Sprintf(":%d", s.port)
	s.logger.Info("starting server", "addr", fmt.Sprintf("http://localhost:%d", s.port))

	eg, egctx := errgroup.WithContext(ctx)

	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext: func(_ net.Listener) context.Context {
			return egctx
		},
	}

	eg.Go(func() error {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	})

	eg.Go(func() error {
		<-egctx.Done()
		s.logger.Info("shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	return eg.Wait()
}
