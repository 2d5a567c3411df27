// Package server serves the environment report over HTTP: an HTML page at /,
// JSON or YAML at /report, plus health and Prometheus endpoints.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/alexalbu001/envreport/pkg"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/time/rate"
)

// Collector produces a report for a region.
type Collector interface {
	Collect(ctx context.Context, region string) (*pkg.EnvironmentReport, error)
}

// Server represents the HTTP server
type Server struct {
	config      *Config
	collector   Collector
	httpServer  *http.Server
	rateLimiter *rate.Limiter
	mu          sync.RWMutex
	ready       bool
	now         func() time.Time
}

// NewServer creates a new server instance
func NewServer(config *Config, collector Collector) *Server {
	if config == nil {
		config = DefaultConfig()
	}

	s := &Server{
		config:      config,
		collector:   collector,
		rateLimiter: rate.NewLimiter(config.RateLimit, config.RateLimitBurst),
		now:         time.Now,
	}

	s.httpServer = &http.Server{
		Addr:         config.Address,
		Handler:      s.setupRoutes(),
		ReadTimeout:  config.ReadTimeout,
		WriteTimeout: config.WriteTimeout,
		IdleTimeout:  config.IdleTimeout,
	}

	return s
}

// setupRoutes configures all HTTP routes and middleware
func (s *Server) setupRoutes() http.Handler {
	mux := http.NewServeMux()

	// System endpoints (no rate limiting)
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("GET /ready", s.handleReady)
	mux.Handle("GET /metrics", promhttp.Handler())

	// Every report request hits AWS, so these are rate limited
	mux.HandleFunc("GET /{$}", s.withMiddleware(s.handlePage))
	mux.HandleFunc("GET /report", s.withMiddleware(s.handleReport))

	return mux
}

// SetReady marks the server as ready to serve traffic
func (s *Server) SetReady(ready bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ready = ready
}

// Start serves until ctx is canceled, then shuts down gracefully.
func (s *Server) Start(ctx context.Context) error {
	s.SetReady(true)

	slog.Info("starting server",
		slog.String("address", s.httpServer.Addr),
		slog.String("region", s.config.Region),
		slog.Any("rateLimit", s.config.RateLimit),
		slog.Int("rateLimitBurst", s.config.RateLimitBurst))

	errChan := make(chan error, 1)
	go func() {
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- err
		}
	}()

	select {
	case <-ctx.Done():
		return s.Shutdown(context.Background())
	case err := <-errChan:
		return fmt.Errorf("server error: %w", err)
	}
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	s.SetReady(false)

	shutdownCtx, cancel := context.WithTimeout(ctx, s.config.ShutdownTimeout)
	defer cancel()

	slog.Info("shutting down server")
	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down server: %w", err)
	}
	slog.Info("server stopped gracefully")
	return nil
}
