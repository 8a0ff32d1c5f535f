package api

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
)

var (
	// ErrInvalidRoute is returned by Register for an unknown method or a
	// malformed path pattern.
	ErrInvalidRoute = errors.New("invalid route")

	// ErrDuplicateRoute is returned by Register when the (method, pattern)
	// pair is already taken.
	ErrDuplicateRoute = errors.New("duplicate route")
)

// knownMethods are the methods a route may be registered for.
var knownMethods = map[string]bool{
	http.MethodGet:     true,
	http.MethodHead:    true,
	http.MethodPost:    true,
	http.MethodPut:     true,
	http.MethodPatch:   true,
	http.MethodDelete:  true,
	http.MethodOptions: true,
}

// Route associates a method and path pattern with a handler.
type Route struct {
	Method  string
	Pattern string
	Handler http.Handler
}

// RouteTable collects routes at startup. It is filled before the server
// starts and only read afterwards, so it needs no locking.
type RouteTable struct {
	routes []Route
	seen   map[string]bool
}

// NewRouteTable returns an empty table.
func NewRouteTable() *RouteTable {
	return &RouteTable{seen: make(map[string]bool)}
}

// Register adds a route. Problems are configuration errors and are
// reported here, at startup, rather than when a request arrives.
func (t *RouteTable) Register(method, pattern string, h http.Handler) error {
	if !knownMethods[method] {
		return fmt.Errorf("%w: unsupported method %q", ErrInvalidRoute, method)
	}
	if err := validatePattern(pattern); err != nil {
		return fmt.Errorf("%w: %s %s: %w", ErrInvalidRoute, method, pattern, err)
	}
	if h == nil {
		return fmt.Errorf("%w: %s %s: nil handler", ErrInvalidRoute, method, pattern)
	}

	key := method + " " + pattern
	if t.seen[key] {
		return fmt.Errorf("%w: %s", ErrDuplicateRoute, key)
	}
	t.seen[key] = true
	t.routes = append(t.routes, Route{Method: method, Pattern: pattern, Handler: h})
	return nil
}

// Routes returns the registered routes in registration order.
func (t *RouteTable) Routes() []Route {
	out := make([]Route, len(t.routes))
	copy(out, t.routes)
	return out
}

// validatePattern accepts absolute URL paths without whitespace, query or
// fragment.
func validatePattern(pattern string) error {
	if !strings.HasPrefix(pattern, "/") {
		return errors.New("pattern must start with /")
	}
	if strings.ContainsAny(pattern, " \t\r\n?#") {
		return errors.New("pattern must not contain whitespace, ? or #")
	}
	if _, err := url.ParseRequestURI(pattern); err != nil {
		return fmt.Errorf("pattern is not a valid path: %w", err)
	}
	return nil
}
