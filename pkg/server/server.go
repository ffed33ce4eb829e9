package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"sync"

	"datacrunch-hq/relay/pkg/config"
	"datacrunch-hq/relay/pkg/proxy/handlers"
	"datacrunch-hq/relay/pkg/proxy/middleware"
	"datacrunch-hq/relay/pkg/telemetry/health"
	"datacrunch-hq/relay/pkg/telemetry/metrics"
	"datacrunch-hq/relay/pkg/telemetry/tracing"
)

// ServiceName is reported by GET /.
const ServiceName = "Relay API"

// Dependencies are the components the routes are served from.
type Dependencies struct {
	Dispatcher handlers.Dispatcher
	Catalogue  handlers.ModelCatalogue
	Templates  handlers.TemplateCatalogue

	// Usage is nil when the ledger is disabled; /api/v1/ai/usage then
	// answers 503.
	Usage handlers.UsageReporter

	// Metrics is nil when metrics are disabled; /metrics is then not routed
	// and HTTP requests are not recorded.
	Metrics *metrics.Collector

	// Health backs GET /ready. Nil leaves the route unregistered.
	Health *health.Checker

	// Tracer is nil or disabled when tracing is off.
	Tracer *tracing.Tracer

	Version string
}

// Server is the relay's HTTP server.
type Server struct {
	config       *config.ServerConfig
	metricsPath  string
	deps         Dependencies
	httpServer   *http.Server
	listener     net.Listener
	shutdownChan chan struct{}
	shutdownOnce sync.Once
	stopOnce     sync.Once
	mu           sync.RWMutex
	isRunning    bool
}

// NewServer creates a server. metricsPath is where the collector is exposed
// when deps.Metrics is set; empty uses config.DefaultMetricsPath.
func NewServer(cfg *config.ServerConfig, metricsPath string, deps Dependencies) *Server {
	if metricsPath == "" {
		metricsPath = config.DefaultMetricsPath
	}
	return &Server{
		config:       cfg,
		metricsPath:  metricsPath,
		deps:         deps,
		shutdownChan: make(chan struct{}),
	}
}

// Start listens on the configured address and serves until ctx is done,
// Stop is called, or the listener fails. It then shuts down gracefully.
func (s *Server) Start(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.config.ListenAddress)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.config.ListenAddress, err)
	}
	return s.Serve(ctx, ln)
}

// Serve is Start on an existing listener.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	s.mu.Lock()
	if s.isRunning {
		s.mu.Unlock()
		_ = ln.Close()
		return errors.New("server is already running")
	}
	s.isRunning = true
	s.listener = ln
	s.httpServer = &http.Server{
		Handler:        s.setupRoutes(),
		ReadTimeout:    s.config.ReadTimeout,
		WriteTimeout:   s.config.WriteTimeout,
		IdleTimeout:    s.config.IdleTimeout,
		MaxHeaderBytes: s.config.MaxHeaderBytes,
	}
	httpServer := s.httpServer
	s.mu.Unlock()

	errChan := make(chan error, 1)
	go func() {
		slog.Info("starting relay server",
			"address", ln.Addr().String(),
			"metrics", s.deps.Metrics != nil,
			"ledger", s.deps.Usage != nil,
		)

		if err := httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- fmt.Errorf("server error: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		slog.Info("context cancelled, initiating shutdown")
		return s.Shutdown(context.Background())
	case err := <-errChan:
		s.mu.Lock()
		s.isRunning = false
		s.mu.Unlock()
		return err
	case <-s.shutdownChan:
		slog.Info("shutdown requested")
		return s.Shutdown(context.Background())
	}
}

// Stop asks a running Start or Serve to shut down.
func (s *Server) Stop() {
	s.stopOnce.Do(func() { close(s.shutdownChan) })
}

// Shutdown gracefully shuts down the server, waiting up to the configured
// shutdown timeout for in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error

	s.shutdownOnce.Do(func() {
		s.mu.RLock()
		running, httpServer := s.isRunning, s.httpServer
		s.mu.RUnlock()
		if !running {
			return
		}

		slog.Info("initiating graceful shutdown", "timeout", s.config.ShutdownTimeout.String())

		shutdownCtx, cancel := context.WithTimeout(ctx, s.config.ShutdownTimeout)
		defer cancel()

		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			slog.Error("error during server shutdown", "error", err)
			shutdownErr = fmt.Errorf("server shutdown error: %w", err)
		}

		s.mu.Lock()
		s.isRunning = false
		s.mu.Unlock()

		slog.Info("relay server stopped")
	})

	return shutdownErr
}

// setupRoutes registers every route and applies the middleware chain.
func (s *Server) setupRoutes() http.Handler {
	mux := http.NewServeMux()
	handle := func(pattern string, h http.Handler) {
		mux.Handle(pattern, middleware.Route(h))
	}

	d := s.deps
	handle("POST /api/v1/ai/process", handlers.NewProcessHandler(d.Dispatcher, d.Templates, s.config.MaxBodyBytes))
	handle("GET /api/v1/ai/providers", &handlers.ProvidersHandler{Dispatcher: d.Dispatcher})
	handle("GET /api/v1/ai/status", &handlers.StatusHandler{Dispatcher: d.Dispatcher})
	handle("POST /api/v1/ai/unblock/{provider}", &handlers.UnblockHandler{Dispatcher: d.Dispatcher})
	handle("GET /api/v1/ai/prompt-templates", &handlers.PromptTemplatesHandler{Templates: d.Templates})
	handle("GET /api/v1/ai/models", &handlers.ModelsHandler{Catalogue: d.Catalogue})
	handle("GET /api/v1/ai/models/{id}", &handlers.ModelHandler{Catalogue: d.Catalogue})
	handle("GET /api/v1/ai/usage", handlers.NewUsageHandler(d.Usage))
	handle("GET /health", handlers.HealthHandler{})
	if d.Health != nil {
		handle("GET /ready", d.Health.ReadinessHandler())
	}
	handle("GET /{$}", &handlers.RootHandler{Name: ServiceName, Version: d.Version})

	var recorder middleware.HTTPRecorder
	if d.Metrics != nil && d.Metrics.Enabled() {
		handle("GET "+s.metricsPath, d.Metrics.Handler())
		recorder = d.Metrics
	}

	var handler http.Handler = mux
	handler = middleware.TimeoutMiddleware(s.config.RequestTimeout)(handler)
	handler = middleware.CORSMiddleware(middleware.NewCORSConfig(s.config.CORS))(handler)
	handler = middleware.TracingMiddleware(d.Tracer)(handler)
	handler = middleware.RequestIDMiddleware(handler)
	handler = middleware.LoggingMiddleware(recorder)(handler)
	handler = middleware.RecoveryMiddleware(handler)

	return handler
}

// IsRunning returns true if the server is running.
func (s *Server) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isRunning
}

// Addr returns the listening address, or nil before Serve.
func (s *Server) Addr() net.Addr {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.listener == nil {
		return nil
	}
	return s.listener.Addr()
}

// Handler returns the configured HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.setupRoutes()
}
