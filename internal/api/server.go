package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/nerrad567/vizgate/internal/access"
	"github.com/nerrad567/vizgate/internal/auth"
	"github.com/nerrad567/vizgate/internal/infrastructure/config"
	"github.com/nerrad567/vizgate/internal/infrastructure/logging"
	"github.com/nerrad567/vizgate/internal/project"
	"github.com/nerrad567/vizgate/internal/view"
)

// gracefulShutdownTimeout is the maximum time to wait for in-flight requests
// to complete during shutdown.
const gracefulShutdownTimeout = 10 * time.Second

// OperationRecorder receives one entry per handled request. The InfluxDB
// client implements it.
type OperationRecorder interface {
	RecordOperation(operation, status string)
}

// HealthCheck reports whether a dependency is usable.
type HealthCheck func(ctx context.Context) error

// Deps holds the dependencies required by the API server.
type Deps struct {
	Config    config.APIConfig
	Logger    *logging.Logger
	Users     *auth.Store
	Lifecycle *auth.Lifecycle
	Projects  *project.Registry
	Views     *view.Registry
	Access    *access.Resolver

	// Fallback is the context served to requests without usable credentials.
	Fallback access.Context

	// Metrics is optional.
	Metrics OperationRecorder

	// Health lists named dependency checks for GET /health.
	Health map[string]HealthCheck

	Version string
}

// Server is the HTTP API server.
//
// It is created with New() and started with Start().
type Server struct {
	cfg       config.APIConfig
	logger    *logging.Logger
	users     *auth.Store
	lifecycle *auth.Lifecycle
	projects  *project.Registry
	views     *view.Registry
	access    *access.Resolver
	fallback  access.Context
	metrics   OperationRecorder
	health    map[string]HealthCheck
	version   string
	server    *http.Server
}

// New creates a new API server with the given dependencies.
//
// The server is not started until Start() is called.
func New(deps Deps) (*Server, error) {
	if deps.Logger == nil {
		return nil, fmt.Errorf("logger is required")
	}
	if deps.Users == nil || deps.Lifecycle == nil || deps.Projects == nil || deps.Views == nil || deps.Access == nil {
		return nil, fmt.Errorf("users, lifecycle, projects, views and access are required")
	}

	return &Server{
		cfg:       deps.Config,
		logger:    deps.Logger,
		users:     deps.Users,
		lifecycle: deps.Lifecycle,
		projects:  deps.Projects,
		views:     deps.Views,
		access:    deps.Access,
		fallback:  deps.Fallback,
		metrics:   deps.Metrics,
		health:    deps.Health,
		version:   deps.Version,
	}, nil
}

// Handler returns the router. Tests drive it through httptest.
func (s *Server) Handler() http.Handler {
	return s.buildRouter()
}

// Start begins listening for HTTP connections in a background goroutine.
// The server can be stopped with Close().
func (s *Server) Start(_ context.Context) error {
	s.server = &http.Server{
		Addr:              fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port),
		Handler:           s.buildRouter(),
		ReadTimeout:       time.Duration(s.cfg.Timeouts.Read) * time.Second,
		ReadHeaderTimeout: time.Duration(s.cfg.Timeouts.Read) * time.Second,
		WriteTimeout:      time.Duration(s.cfg.Timeouts.Write) * time.Second,
		IdleTimeout:       time.Duration(s.cfg.Timeouts.Idle) * time.Second,
	}

	go func() {
		var err error
		if s.cfg.TLS.Enabled {
			s.logger.Info("API server starting with TLS",
				"address", s.server.Addr,
				"cert", s.cfg.TLS.CertFile,
			)
			err = s.server.ListenAndServeTLS(s.cfg.TLS.CertFile, s.cfg.TLS.KeyFile)
		} else {
			s.logger.Info("API server starting", "address", s.server.Addr)
			err = s.server.ListenAndServe()
		}
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("API server error", "error", err)
		}
	}()

	return nil
}

// Close gracefully shuts down the API server.
//
// It waits up to 10 seconds for in-flight requests to complete,
// then forcefully closes remaining connections.
func (s *Server) Close() error {
	if s.server == nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), gracefulShutdownTimeout)
	defer cancel()

	s.logger.Info("API server shutting down")
	if err := s.server.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutting down API server: %w", err)
	}
	return nil
}

// HealthCheck verifies the API server is running.
func (s *Server) HealthCheck(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return fmt.Errorf("api health check: %w", ctx.Err())
	default:
	}

	if s.server == nil {
		return fmt.Errorf("api server not started")
	}
	return nil
}
