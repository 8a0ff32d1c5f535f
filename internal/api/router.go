package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// registerRoutes fills the public route table.
func (s *Server) registerRoutes(t *RouteTable) error {
	if err := t.Register(http.MethodGet, "/", http.HandlerFunc(s.handleIndex)); err != nil {
		return err
	}
	return t.Register(http.MethodGet, "/products", http.HandlerFunc(s.handleListProducts))
}

// buildRouter creates the chi router for a route table.
//
// Anything the table does not match, including a known path requested
// with another method, gets a 404 and no handler runs.
func (s *Server) buildRouter(routes *RouteTable) http.Handler {
	r := chi.NewRouter()

	r.Use(s.requestIDMiddleware)
	r.Use(s.loggingMiddleware)
	r.Use(s.metricsMiddleware)
	r.Use(s.recoveryMiddleware)

	r.NotFound(s.handleNotFound)
	r.MethodNotAllowed(s.handleNotFound)

	for _, route := range routes.Routes() {
		r.Method(route.Method, route.Pattern, route.Handler)
	}

	return r
}

// handleNotFound answers unmatched requests.
func (s *Server) handleNotFound(w http.ResponseWriter, _ *http.Request) {
	writeNotFound(w, "resource not found")
}
