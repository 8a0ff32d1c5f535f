package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	_ "github.com/lib/pq"           // PostgreSQL driver
	_ "github.com/mattn/go-sqlite3" // SQLite driver
)

// Supported driver names, as registered with database/sql.
const (
	DriverSQLite   = "sqlite3"
	DriverPostgres = "postgres"
)

// Database configuration constants.
const (
	// dirPermissions is the permission mode for the SQLite database directory.
	dirPermissions = 0750

	// filePermissions is the permission mode for the SQLite database file.
	filePermissions = 0600

	// msPerSecond converts seconds to milliseconds.
	msPerSecond = 1000

	// connectionTimeout is the timeout for verifying database connectivity.
	connectionTimeout = 5 * time.Second

	// connMaxIdleTime is how long idle connections are kept open.
	connMaxIdleTime = 30 * time.Minute

	// DefaultAcquireTimeout bounds Acquire when Config.AcquireTimeout is unset.
	DefaultAcquireTimeout = 2 * time.Second
)

// Provider hands out per-request connections from a shared pool.
//
// The returned *sql.Conn is owned by the caller until Close, which returns
// it to the pool.
type Provider interface {
	Acquire(ctx context.Context) (*sql.Conn, error)
}

// DB wraps a sql.DB pool and acts as the service's connection provider.
// It also carries migration support, health checks and lifecycle management.
type DB struct {
	*sql.DB
	driver         string
	path           string
	acquireTimeout time.Duration
}

// Config contains database configuration options.
// These map to the database section of config.yaml.
type Config struct {
	// Driver is "sqlite3" (default) or "postgres".
	Driver string

	// DSN is the postgres connection string. Unused for sqlite3.
	DSN string

	// Path is the filesystem path to the SQLite database file.
	// The directory will be created if it doesn't exist.
	Path string

	// WALMode enables Write-Ahead Logging so readers don't block each other.
	WALMode bool

	// BusyTimeout is the maximum time to wait for a SQLite lock (seconds).
	BusyTimeout int

	// MaxOpenConns caps the pool. Acquire waits when every connection is
	// checked out.
	MaxOpenConns int

	// MaxIdleConns is the number of connections kept ready between requests.
	MaxIdleConns int

	// ConnMaxLifetime recycles connections older than this. Zero keeps them.
	ConnMaxLifetime time.Duration

	// AcquireTimeout bounds how long Acquire waits for a free connection.
	AcquireTimeout time.Duration
}

// Open creates the connection pool described by cfg.
//
// It performs the following setup:
//  1. For sqlite3, creates the database directory and builds a DSN with pragmas
//  2. Opens the pool and applies its limits
//  3. Verifies the connection with a ping
//
// The pool is built once at startup and shared by every request; any error
// here is fatal to the process.
func Open(ctx context.Context, cfg Config) (*DB, error) {
	driver := cfg.Driver
	if driver == "" {
		driver = DriverSQLite
	}

	var connStr string
	switch driver {
	case DriverSQLite:
		if cfg.Path == "" {
			return nil, fmt.Errorf("sqlite3 database path is required")
		}
		if err := os.MkdirAll(filepath.Dir(cfg.Path), dirPermissions); err != nil {
			return nil, fmt.Errorf("creating database directory: %w", err)
		}
		connStr = sqliteDSN(cfg)
	case DriverPostgres:
		if cfg.DSN == "" {
			return nil, fmt.Errorf("postgres DSN is required")
		}
		connStr = cfg.DSN
	default:
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}

	sqlDB, err := sql.Open(driver, connStr)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	maxOpen := cfg.MaxOpenConns
	if maxOpen < 1 {
		maxOpen = 1
	}
	sqlDB.SetMaxOpenConns(maxOpen)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	sqlDB.SetConnMaxIdleTime(connMaxIdleTime)

	db := New(sqlDB, driver, cfg.AcquireTimeout)
	db.path = cfg.Path

	pingCtx, cancel := context.WithTimeout(ctx, connectionTimeout)
	defer cancel()

	if err := db.PingContext(pingCtx); err != nil {
		sqlDB.Close() //nolint:errcheck // Best effort cleanup on error path
		return nil, fmt.Errorf("verifying database connection: %w", err)
	}

	if driver == DriverSQLite {
		// The file exists after the ping; restrict it to the owner.
		_ = os.Chmod(cfg.Path, filePermissions) //nolint:errcheck // Non-fatal on filesystems without modes
	}

	return db, nil
}

// New wraps an already opened pool. Open is the normal entry point; New
// exists for pools built elsewhere (for example by sqlmock in tests).
func New(sqlDB *sql.DB, driver string, acquireTimeout time.Duration) *DB {
	if acquireTimeout <= 0 {
		acquireTimeout = DefaultAcquireTimeout
	}
	return &DB{
		DB:             sqlDB,
		driver:         driver,
		acquireTimeout: acquireTimeout,
	}
}

// sqliteDSN builds the go-sqlite3 connection string.
// See: https://github.com/mattn/go-sqlite3#connection-string
func sqliteDSN(cfg Config) string {
	connStr := fmt.Sprintf("file:%s?_busy_timeout=%d&_foreign_keys=on",
		cfg.Path,
		cfg.BusyTimeout*msPerSecond,
	)
	if cfg.WALMode {
		connStr += "&_journal_mode=WAL&_synchronous=NORMAL"
	}
	return connStr
}

// Acquire checks a connection out of the pool.
//
// It waits at most the configured acquire timeout. If the pool stays
// saturated for that long the error wraps ErrPoolExhausted; any other
// failure to obtain a connection, including a dial that outlasts the
// timeout, wraps ErrStoreUnavailable. Cancellation
// of ctx itself is reported as the context error.
//
// The caller must Close the returned connection to give it back.
func (db *DB) Acquire(ctx context.Context) (*sql.Conn, error) {
	acquireCtx, cancel := context.WithTimeout(ctx, db.acquireTimeout)
	defer cancel()

	conn, err := db.DB.Conn(acquireCtx)
	if err == nil {
		return conn, nil
	}

	switch {
	case ctx.Err() != nil:
		return nil, fmt.Errorf("acquiring connection: %w", ctx.Err())
	case errors.Is(err, context.DeadlineExceeded) && db.saturated():
		return nil, fmt.Errorf("%w: no connection within %s", ErrPoolExhausted, db.acquireTimeout)
	default:
		// A timeout with free slots means the dial itself stalled.
		return nil, fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
	}
}

// saturated reports whether every connection the pool may open is checked out.
func (db *DB) saturated() bool {
	stats := db.DB.Stats()
	return stats.MaxOpenConnections > 0 && stats.InUse >= stats.MaxOpenConnections
}

// AcquireTimeout reports the bound applied by Acquire.
func (db *DB) AcquireTimeout() time.Duration {
	return db.acquireTimeout
}

// Close closes the pool gracefully.
// It should be called when the application shuts down.
func (db *DB) Close() error {
	if db.DB == nil {
		return nil
	}
	if err := db.DB.Close(); err != nil {
		return fmt.Errorf("closing database: %w", err)
	}
	return nil
}

// Driver returns the database/sql driver name backing the pool.
func (db *DB) Driver() string {
	return db.driver
}

// Path returns the filesystem path to the SQLite database file.
// It is empty for postgres pools.
func (db *DB) Path() string {
	return db.path
}

// HealthCheck verifies the database is accessible and functioning.
// It performs a simple query to ensure the connection is alive.
func (db *DB) HealthCheck(ctx context.Context) error {
	var result int
	err := db.QueryRowContext(ctx, "SELECT 1").Scan(&result)
	if err != nil {
		return fmt.Errorf("database health check failed: %w", err)
	}
	return nil
}

// Stats returns database connection pool statistics.
func (db *DB) Stats() sql.DBStats {
	return db.DB.Stats()
}

// ExecContext executes a query that doesn't return rows.
// Placeholders are written as ? and rebound for the active driver.
func (db *DB) ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error) {
	result, err := db.DB.ExecContext(ctx, db.rebind(query), args...)
	if err != nil {
		return nil, fmt.Errorf("executing query: %w", err)
	}
	return result, nil
}

// QueryRowContext executes a query that returns at most one row.
// Placeholders are written as ? and rebound for the active driver.
func (db *DB) QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row {
	return db.DB.QueryRowContext(ctx, db.rebind(query), args...)
}

// BeginTx starts a new transaction with the given options.
//
// Example:
//
//	tx, err := db.BeginTx(ctx, nil)
//	if err != nil {
//	    return err
//	}
//	defer tx.Rollback() // No-op if committed
//
//	// ... execute queries on tx ...
//
//	return tx.Commit()
func (db *DB) BeginTx(ctx context.Context, opts *sql.TxOptions) (*sql.Tx, error) {
	tx, err := db.DB.BeginTx(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("starting transaction: %w", err)
	}
	return tx, nil
}

// rebind rewrites ? placeholders as $1, $2, ... for postgres.
// Queries in this package never contain a literal question mark.
func (db *DB) rebind(query string) string {
	if db.driver != DriverPostgres || !strings.Contains(query, "?") {
		return query
	}

	var b strings.Builder
	b.Grow(len(query) + 8)
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
