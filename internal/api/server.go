// internal/api/server.go
package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	apihandler "github.com/fundboard/fundboard/internal/api/handler/api"
	"github.com/fundboard/fundboard/internal/api/middleware"
	"github.com/fundboard/fundboard/internal/metrics"
	"github.com/fundboard/fundboard/internal/relay"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// DefaultWriteTimeout applies when Config.WriteTimeout is unset.
const DefaultWriteTimeout = 30 * time.Second

// Server represents the HTTP server for fundboard
type Server struct {
	httpServer *http.Server
	logger     *zap.Logger
	mux        *http.ServeMux
}

// Config holds server configuration
type Config struct {
	Host string
	Port int
	// WriteTimeout must leave room for a full snapshot load, fallback included.
	WriteTimeout time.Duration

	// Domain is the registered upstream domain the relay may reach.
	Domain                    string
	CacheMaxAge               time.Duration
	CacheStaleWhileRevalidate time.Duration

	MetricsEnabled bool
	MetricsPath    string
}

// Dependencies holds the components the handlers call into.
type Dependencies struct {
	Relay     relay.Fetcher
	Snapshots apihandler.SnapshotLoader
	Metrics   *metrics.Registry
}

// NewServer creates a new HTTP server
func NewServer(cfg Config, deps Dependencies, logger *zap.Logger) (*Server, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if deps.Relay == nil {
		return nil, fmt.Errorf("relay fetcher is required")
	}
	if deps.Snapshots == nil {
		return nil, fmt.Errorf("snapshot loader is required")
	}

	mux := http.NewServeMux()

	s := &Server{
		logger: logger,
		mux:    mux,
	}
	s.setupRoutes(cfg, deps)

	var handler http.Handler = mux
	if deps.Metrics != nil {
		handler = metrics.HTTPMiddleware(deps.Metrics)(handler)
	}
	handler = metrics.LoggingMiddleware(logger)(handler)

	writeTimeout := cfg.WriteTimeout
	if writeTimeout <= 0 {
		writeTimeout = DefaultWriteTimeout
	}

	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: writeTimeout,
		IdleTimeout:  60 * time.Second,
	}

	return s, nil
}

// setupRoutes configures all HTTP routes
func (s *Server) setupRoutes(cfg Config, deps Dependencies) {
	relayHandler := apihandler.NewRelayHandler(deps.Relay, cfg.Domain, cfg.CacheMaxAge, cfg.CacheStaleWhileRevalidate)
	cors := middleware.CORS(http.MethodGet, http.MethodOptions)
	s.mux.Handle("GET /relay", cors(http.HandlerFunc(relayHandler.Relay)))
	s.mux.Handle("OPTIONS /relay", cors(http.HandlerFunc(relayHandler.Relay)))

	snapshotHandler := apihandler.NewSnapshotHandler(deps.Snapshots, s.logger)
	s.mux.HandleFunc("GET /api/snapshot", snapshotHandler.Get)
	s.mux.HandleFunc("GET /api/health", s.handleHealth)

	if cfg.MetricsEnabled && deps.Metrics != nil {
		path := cfg.MetricsPath
		if path == "" {
			path = "/metrics"
		}
		s.mux.Handle("GET "+path, promhttp.HandlerFor(deps.Metrics, promhttp.HandlerOpts{}))
	}
}

// Handler returns the fully wrapped handler.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// Start starts the HTTP server
func (s *Server) Start() error {
	s.logger.Info("starting HTTP server", zap.String("addr", s.httpServer.Addr))
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down HTTP server")
	return s.httpServer.Shutdown(ctx)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"ok"}`))
}
