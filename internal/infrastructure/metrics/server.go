package metrics

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/storefront/catalog/internal/infrastructure/logging"
)

// shutdownTimeout bounds Close.
const shutdownTimeout = 5 * time.Second

// readHeaderTimeout protects the operator listener from slow clients.
const readHeaderTimeout = 5 * time.Second

// Server publishes a Metrics registry at /metrics on its own listener.
type Server struct {
	addr     string
	metrics  *Metrics
	logger   *logging.Logger
	server   *http.Server
	listener net.Listener
	errs     chan error
}

// NewServer creates a metrics server for addr. It does not listen until Start.
func NewServer(addr string, m *Metrics, logger *logging.Logger) *Server {
	return &Server{
		addr:    addr,
		metrics: m,
		logger:  logger,
		errs:    make(chan error, 1),
	}
}

// Start binds the listener and serves in the background. A bind failure
// is returned directly.
func (s *Server) Start() error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", s.metrics.Handler())

	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return fmt.Errorf("binding metrics listener on %s: %w", s.addr, err)
	}
	s.listener = ln
	s.server = &http.Server{
		Handler:           mux,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	go func() {
		if err := s.server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("metrics server error", "error", err)
			s.errs <- err
		}
		close(s.errs)
	}()

	s.logger.Info("metrics server listening", "address", ln.Addr().String())
	return nil
}

// Addr returns the bound address, or the configured one before Start.
func (s *Server) Addr() string {
	if s.listener != nil {
		return s.listener.Addr().String()
	}
	return s.addr
}

// Errors delivers a serve failure, if one happens, and is closed when the
// server stops.
func (s *Server) Errors() <-chan error {
	return s.errs
}

// Close shuts the listener down.
func (s *Server) Close() error {
	if s.server == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := s.server.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutting down metrics server: %w", err)
	}
	return nil
}
