// Package database provides the relational store connection pool for the
// catalog service.
//
// This package manages:
//   - Opening a pooled *sql.DB for SQLite (mattn/go-sqlite3) or PostgreSQL (lib/pq)
//   - Bounded, per-request connection checkout through Acquire
//   - Embedded schema migrations
//   - Health checks and lifecycle management
//
// The pool is created once at startup and shared by every request. Handlers
// never hold a connection across requests: they Acquire, query, and Close.
//
// Usage:
//
//	db, err := database.Open(ctx, database.Config{Path: "./data/catalog.db"})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer db.Close()
//
//	conn, err := db.Acquire(ctx)
//	if err != nil {
//	    return err // wraps ErrPoolExhausted or ErrStoreUnavailable
//	}
//	defer conn.Close()
//
// Migration Strategy:
//
// Migrations are forward-only. Each file is named
// YYYYMMDD_HHMMSS_description.sql and embedded in the binary by the
// top-level migrations package, which registers it with RegisterSchema.
package database
