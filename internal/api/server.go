package api

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/storefront/catalog/internal/infrastructure/config"
	"github.com/storefront/catalog/internal/infrastructure/logging"
	"github.com/storefront/catalog/internal/infrastructure/metrics"
	"github.com/storefront/catalog/internal/product"
)

// gracefulShutdownTimeout is the maximum time to wait for in-flight requests
// to complete during shutdown.
const gracefulShutdownTimeout = 10 * time.Second

// Deps holds the dependencies required by the API server.
type Deps struct {
	Config   config.APIConfig
	Logger   *logging.Logger
	Products product.Repository
	Metrics  *metrics.Metrics // optional
	Version  string
}

// Server is the HTTP API server for the catalog service.
//
// It owns the route table and the listening socket. The server is created
// with New() and started with Start().
type Server struct {
	cfg      config.APIConfig
	logger   *logging.Logger
	products product.Repository
	metrics  *metrics.Metrics
	version  string
	routes   *RouteTable
	server   *http.Server
	listener net.Listener
	errs     chan error
}

// New creates a new API server and assembles its route table.
//
// The server is not started until Start() is called. A route registration
// failure is returned here so it surfaces at startup.
func New(deps Deps) (*Server, error) {
	if deps.Logger == nil {
		return nil, fmt.Errorf("logger is required")
	}
	if deps.Products == nil {
		return nil, fmt.Errorf("product repository is required")
	}

	s := &Server{
		cfg:      deps.Config,
		logger:   deps.Logger,
		products: deps.Products,
		metrics:  deps.Metrics,
		version:  deps.Version,
		errs:     make(chan error, 1),
	}

	routes := NewRouteTable()
	if err := s.registerRoutes(routes); err != nil {
		return nil, fmt.Errorf("registering routes: %w", err)
	}
	s.routes = routes

	return s, nil
}

// Handler returns the dispatching handler for the server's route table.
func (s *Server) Handler() http.Handler {
	return s.buildRouter(s.routes)
}

// Start binds the listening socket and serves in a background goroutine.
//
// The bind happens before Start returns: if the address is invalid or in
// use the error comes back here and nothing is served.
func (s *Server) Start(ctx context.Context) error {
	if s.server != nil {
		return fmt.Errorf("api server already started")
	}

	addr := s.cfg.Address()
	var lc net.ListenConfig
	ln, err := lc.Listen(ctx, "tcp", addr)
	if err != nil {
		return fmt.Errorf("binding %s: %w", addr, err)
	}
	s.listener = ln

	s.server = &http.Server{
		Handler:           s.Handler(),
		ReadTimeout:       s.cfg.Timeouts.ReadTimeout(),
		ReadHeaderTimeout: s.cfg.Timeouts.ReadTimeout(),
		WriteTimeout:      s.cfg.Timeouts.WriteTimeout(),
		IdleTimeout:       s.cfg.Timeouts.IdleTimeout(),
	}

	go func() {
		if err := s.server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("API server error", "error", err)
			s.errs <- err
		}
		close(s.errs)
	}()

	s.logger.Info("API server listening", "address", ln.Addr().String())
	return nil
}

// Addr returns the bound address once started, or the configured one.
func (s *Server) Addr() string {
	if s.listener != nil {
		return s.listener.Addr().String()
	}
	return s.cfg.Address()
}

// Errors delivers a fatal serve error, if one occurs, and is closed when
// the server stops.
func (s *Server) Errors() <-chan error {
	return s.errs
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

// HealthCheck verifies the API server is running and responsive.
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
