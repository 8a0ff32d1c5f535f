package database

import (
	"context"
	"fmt"
	"io/fs"
	"regexp"
	"sort"
	"strings"
	"time"
)

// migrationFile matches YYYYMMDD_HHMMSS_description.sql.
var migrationFile = regexp.MustCompile(`^(\d{8}_\d{6})_([a-z0-9_]+)\.sql$`)

// schema holds the migrations Migrate applies. The top-level migrations
// package registers the embedded product schema in init.
var schema fs.FS

// RegisterSchema sets the filesystem Migrate reads. Files sit at its root;
// a nil fsys means there is nothing to apply.
func RegisterSchema(fsys fs.FS) {
	schema = fsys
}

// Migration is one forward-only schema change.
type Migration struct {
	Version string // YYYYMMDD_HHMMSS
	Name    string
	SQL     string
}

// MigrationReport summarises a Migrate call.
type MigrationReport struct {
	// Applied lists the versions applied by this call, oldest first.
	Applied []string

	// Known is the number of migrations in the registered schema.
	Known int
}

// Migrate brings the store up to the registered schema.
//
// Pending migrations run oldest first, each in its own transaction
// together with its schema_migrations record. A failure stops the run:
// earlier migrations stay committed and the next call resumes at the
// failed one.
func (db *DB) Migrate(ctx context.Context) (MigrationReport, error) {
	migrations, err := loadMigrations(schema)
	if err != nil {
		return MigrationReport{}, fmt.Errorf("loading migrations: %w", err)
	}
	report := MigrationReport{Known: len(migrations)}
	if len(migrations) == 0 {
		return report, nil
	}

	if _, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			applied_at TEXT NOT NULL
		)
	`); err != nil {
		return report, fmt.Errorf("creating migrations table: %w", err)
	}

	applied, err := db.appliedVersions(ctx)
	if err != nil {
		return report, err
	}

	for _, m := range migrations {
		if applied[m.Version] {
			continue
		}
		if err := db.applyMigration(ctx, m); err != nil {
			return report, fmt.Errorf("applying migration %s (%s): %w", m.Version, m.Name, err)
		}
		report.Applied = append(report.Applied, m.Version)
	}
	return report, nil
}

// appliedVersions returns the set of versions recorded in schema_migrations.
func (db *DB) appliedVersions(ctx context.Context) (map[string]bool, error) {
	rows, err := db.DB.QueryContext(ctx, "SELECT version FROM schema_migrations")
	if err != nil {
		return nil, fmt.Errorf("querying applied migrations: %w", err)
	}
	defer rows.Close()

	applied := make(map[string]bool)
	for rows.Next() {
		var version string
		if err := rows.Scan(&version); err != nil {
			return nil, fmt.Errorf("scanning applied migration: %w", err)
		}
		applied[version] = true
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating applied migrations: %w", err)
	}
	return applied, nil
}

// applyMigration runs m and records it in one transaction.
func (db *DB) applyMigration(ctx context.Context, m Migration) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback() //nolint:errcheck // Rollback is no-op after commit

	if _, err := tx.ExecContext(ctx, m.SQL); err != nil {
		return fmt.Errorf("executing SQL: %w", err)
	}
	if _, err := tx.ExecContext(ctx,
		db.rebind("INSERT INTO schema_migrations (version, name, applied_at) VALUES (?, ?, ?)"),
		m.Version,
		m.Name,
		time.Now().UTC().Format(time.RFC3339),
	); err != nil {
		return fmt.Errorf("recording migration: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing migration: %w", err)
	}
	return nil
}

// loadMigrations reads every .sql file at the root of fsys, sorted by
// version. A misnamed .sql file or a repeated version is an error, so a
// typo cannot silently skip a schema change.
func loadMigrations(fsys fs.FS) ([]Migration, error) {
	if fsys == nil {
		return nil, nil
	}

	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return nil, fmt.Errorf("reading schema directory: %w", err)
	}

	seen := make(map[string]string)
	var migrations []Migration
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		m, ok, err := parseMigrationName(entry.Name())
		if err != nil {
			return nil, err
		}
		if !ok {
			continue
		}
		if prev, dup := seen[m.Version]; dup {
			return nil, fmt.Errorf("version %s used by both %s and %s", m.Version, prev, entry.Name())
		}
		seen[m.Version] = entry.Name()

		body, err := fs.ReadFile(fsys, entry.Name())
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", entry.Name(), err)
		}
		m.SQL = string(body)
		migrations = append(migrations, m)
	}

	sort.Slice(migrations, func(i, j int) bool {
		return migrations[i].Version < migrations[j].Version
	})
	return migrations, nil
}

// parseMigrationName splits a filename into version and name. Non-SQL files
// are skipped (ok is false); SQL files must follow the naming scheme.
func parseMigrationName(filename string) (m Migration, ok bool, err error) {
	if !strings.HasSuffix(filename, ".sql") {
		return Migration{}, false, nil
	}
	parts := migrationFile.FindStringSubmatch(filename)
	if parts == nil {
		return Migration{}, false, fmt.Errorf("migration %q must be named YYYYMMDD_HHMMSS_description.sql", filename)
	}
	return Migration{Version: parts[1], Name: parts[2]}, true, nil
}
