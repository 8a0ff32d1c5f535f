// Catalog - read-only product listing service
//
// This is the main entry point for the catalog HTTP service. It serves a
// greeting at GET / and the product table at GET /products, backed by a
// SQLite or PostgreSQL connection pool.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	_ "github.com/storefront/catalog/migrations"

	"github.com/storefront/catalog/internal/api"
	"github.com/storefront/catalog/internal/infrastructure/config"
	"github.com/storefront/catalog/internal/infrastructure/database"
	"github.com/storefront/catalog/internal/infrastructure/logging"
	"github.com/storefront/catalog/internal/infrastructure/metrics"
	"github.com/storefront/catalog/internal/product"
)

// Version information - set at build time via ldflags
// Example: go build -ldflags "-X main.version=1.0.0 -X main.commit=abc123"
var (
	version = "dev"     // Semantic version (e.g., "1.0.0")
	commit  = "unknown" // Git commit hash
	date    = "unknown" // Build date
)

// Default configuration file path
const defaultConfigPath = "configs/config.yaml"

func main() {
	// Cancel on Ctrl+C or SIGTERM for graceful shutdown
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// run is the actual application logic, separated from main for testability.
//
// Every startup step (config, pool, migrations, routes, socket bind) either
// succeeds or returns an error before anything is served. Once serving, run
// blocks until ctx is cancelled or a listener fails.
func run(ctx context.Context) error {
	// Use default logger until config is loaded
	log := logging.Default()
	log.Info("starting catalog",
		"version", version,
		"commit", commit,
		"build_date", date,
	)

	configPath := getConfigPath()
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	log = logging.New(cfg.Logging, version)
	log.Info("configuration loaded",
		"path", configPath,
		"level", cfg.Logging.Level,
		"format", cfg.Logging.Format,
	)

	db, err := database.Open(ctx, databaseConfig(cfg.Database))
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer func() {
		log.Info("closing database")
		if closeErr := db.Close(); closeErr != nil {
			log.Error("error closing database", "error", closeErr)
		}
	}()
	log.Info("database connected",
		"driver", db.Driver(),
		"max_open_conns", cfg.Database.MaxOpenConns,
		"acquire_timeout", db.AcquireTimeout(),
	)

	if cfg.Database.AutoMigrate {
		report, migrateErr := db.Migrate(ctx)
		if migrateErr != nil {
			return fmt.Errorf("running migrations: %w", migrateErr)
		}
		log.Info("database migrations complete",
			"applied", len(report.Applied),
			"known", report.Known,
		)
	}

	m := metrics.New()
	if regErr := m.RegisterDBStats(db.DB, "catalog"); regErr != nil {
		return fmt.Errorf("registering pool metrics: %w", regErr)
	}

	apiServer, err := api.New(api.Deps{
		Config:   cfg.API,
		Logger:   log.With("component", "api"),
		Products: product.NewSQLRepository(db),
		Metrics:  m,
		Version:  version,
	})
	if err != nil {
		return fmt.Errorf("creating API server: %w", err)
	}
	if startErr := apiServer.Start(ctx); startErr != nil {
		return fmt.Errorf("starting API server: %w", startErr)
	}

	var metricsServer *metrics.Server
	if cfg.Metrics.Enabled {
		metricsServer = metrics.NewServer(cfg.Metrics.Address(), m, log.With("component", "metrics"))
		if startErr := metricsServer.Start(); startErr != nil {
			apiServer.Close() //nolint:errcheck // Startup already failed
			return fmt.Errorf("starting metrics server: %w", startErr)
		}
	} else {
		log.Info("metrics listener disabled")
	}

	if err := healthCheck(ctx, db, apiServer); err != nil {
		apiServer.Close() //nolint:errcheck // Startup already failed
		if metricsServer != nil {
			metricsServer.Close() //nolint:errcheck // Startup already failed
		}
		return fmt.Errorf("health check failed: %w", err)
	}
	log.Info("initialisation complete, serving", "address", apiServer.Addr())

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return serveErr("api", apiServer.Errors())
	})
	if metricsServer != nil {
		g.Go(func() error {
			return serveErr("metrics", metricsServer.Errors())
		})
	}
	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutdown signal received, cleaning up")
		if closeErr := apiServer.Close(); closeErr != nil {
			log.Error("error stopping API server", "error", closeErr)
		}
		if metricsServer != nil {
			if closeErr := metricsServer.Close(); closeErr != nil {
				log.Error("error stopping metrics server", "error", closeErr)
			}
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return err
	}

	log.Info("catalog stopped")
	return nil
}

// healthCheck verifies the store answers queries and the API is serving
// before startup is declared complete.
func healthCheck(ctx context.Context, db *database.DB, apiServer *api.Server) error {
	if err := db.HealthCheck(ctx); err != nil {
		return fmt.Errorf("database: %w", err)
	}
	if err := apiServer.HealthCheck(ctx); err != nil {
		return fmt.Errorf("api: %w", err)
	}
	return nil
}

// serveErr waits for a listener to stop and reports why, if it failed.
func serveErr(name string, errs <-chan error) error {
	if err, ok := <-errs; ok {
		return fmt.Errorf("%s server: %w", name, err)
	}
	return nil
}

// databaseConfig converts the file settings into pool options.
func databaseConfig(c config.DatabaseConfig) database.Config {
	return database.Config{
		Driver:          c.Driver,
		DSN:             c.DSN,
		Path:            c.Path,
		WALMode:         c.WALMode,
		BusyTimeout:     c.BusyTimeout,
		MaxOpenConns:    c.MaxOpenConns,
		MaxIdleConns:    c.MaxIdleConns,
		ConnMaxLifetime: time.Duration(c.ConnMaxLifetime) * time.Second,
		AcquireTimeout:  time.Duration(c.AcquireTimeout) * time.Millisecond,
	}
}

// getConfigPath returns the configuration file path.
// It checks CATALOG_CONFIG environment variable first, then uses default.
func getConfigPath() string {
	if path := os.Getenv("CATALOG_CONFIG"); path != "" {
		return path
	}
	return defaultConfigPath
}
