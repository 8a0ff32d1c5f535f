// Package api implements the HTTP server for the catalog service.
//
// This package provides:
//   - The route table (RouteTable) with startup-time validation
//   - GET / (fixed greeting) and GET /products (JSON array of products)
//   - 404 JSON errors for every unmatched method and path
//   - Middleware stack (request ID, logging, metrics, panic recovery)
//
// # Lifecycle
//
//	server, err := api.New(deps)
//	if err != nil {
//	    return err // route table problems
//	}
//	if err := server.Start(ctx); err != nil {
//	    return err // bind failures
//	}
//	defer server.Close()
//
// # Errors
//
// Store failures while listing products are logged with the request ID and
// reported to the client as a generic 500. Responses are encoded fully
// before the status line is written, so a failure never yields a partial body.
package api
