package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

// clearEnv blanks every variable applyEnvOverrides reads so the host
// environment cannot leak into a test.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"DATABASE_URL",
		"CATALOG_DATABASE_DRIVER",
		"CATALOG_DATABASE_DSN",
		"CATALOG_DATABASE_PATH",
		"CATALOG_API_HOST",
		"CATALOG_API_PORT",
		"CATALOG_LOG_LEVEL",
	} {
		t.Setenv(key, "")
	}
	t.Setenv("CATALOG_ENV_FILE", filepath.Join(t.TempDir(), "absent.env"))
}

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	configPath := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(configPath, []byte(content), 0600); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}
	return configPath
}

func TestLoad_ValidConfig(t *testing.T) {
	clearEnv(t)
	configPath := writeConfig(t, `
database:
  driver: "sqlite3"
  path: "/tmp/test.db"
  wal_mode: true
  busy_timeout: 5
  max_open_conns: 4
api:
  host: "0.0.0.0"
  port: 8080
`)

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Database.Path != "/tmp/test.db" {
		t.Errorf("Database.Path = %q, want %q", cfg.Database.Path, "/tmp/test.db")
	}
	if cfg.Database.MaxOpenConns != 4 {
		t.Errorf("Database.MaxOpenConns = %d, want 4", cfg.Database.MaxOpenConns)
	}
	if cfg.API.Port != 8080 {
		t.Errorf("API.Port = %d, want 8080", cfg.API.Port)
	}
	// Unset keys keep their defaults.
	if cfg.Database.AcquireTimeout != 2000 {
		t.Errorf("Database.AcquireTimeout = %d, want default 2000", cfg.Database.AcquireTimeout)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load("/nonexistent/path/config.yaml")
	if err == nil {
		t.Error("Load() expected error for missing file, got nil")
	}
}

func TestLoad_InvalidYAML(t *testing.T) {
	configPath := writeConfig(t, "invalid: [yaml: content")

	_, err := Load(configPath)
	if err == nil {
		t.Error("Load() expected error for invalid YAML, got nil")
	}
}

func TestLoad_ValidationFailure(t *testing.T) {
	clearEnv(t)
	configPath := writeConfig(t, `
database:
  driver: "postgres"
  dsn: ""
`)

	_, err := Load(configPath)
	if err == nil {
		t.Fatal("Load() expected validation error for empty postgres dsn, got nil")
	}
	if !strings.Contains(err.Error(), "database.dsn") {
		t.Errorf("error = %v, want mention of database.dsn", err)
	}
}

func TestLoad_InvalidPortEnv(t *testing.T) {
	clearEnv(t)
	configPath := writeConfig(t, "api:\n  port: 8080\n")
	t.Setenv("CATALOG_API_PORT", "not-a-number")

	if _, err := Load(configPath); err == nil {
		t.Error("Load() expected error for non-numeric CATALOG_API_PORT, got nil")
	}
}

func TestConfig_Validate(t *testing.T) {
	valid := func() *Config { return defaultConfig() }

	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr bool
	}{
		{name: "defaults", mutate: func(*Config) {}, wantErr: false},
		{
			name:    "ephemeral port",
			mutate:  func(c *Config) { c.API.Port = 0 },
			wantErr: false,
		},
		{
			name: "postgres with dsn",
			mutate: func(c *Config) {
				c.Database.Driver = DriverPostgres
				c.Database.DSN = "postgres://localhost/catalog?sslmode=disable"
			},
			wantErr: false,
		},
		{
			name:    "missing sqlite path",
			mutate:  func(c *Config) { c.Database.Path = "" },
			wantErr: true,
		},
		{
			name:    "unknown driver",
			mutate:  func(c *Config) { c.Database.Driver = "mysql" },
			wantErr: true,
		},
		{
			name:    "zero pool size",
			mutate:  func(c *Config) { c.Database.MaxOpenConns = 0 },
			wantErr: true,
		},
		{
			name:    "negative idle",
			mutate:  func(c *Config) { c.Database.MaxIdleConns = -1 },
			wantErr: true,
		},
		{
			name:    "zero acquire timeout",
			mutate:  func(c *Config) { c.Database.AcquireTimeout = 0 },
			wantErr: true,
		},
		{
			name:    "invalid port high",
			mutate:  func(c *Config) { c.API.Port = 70000 },
			wantErr: true,
		},
		{
			name: "invalid metrics port",
			mutate: func(c *Config) {
				c.Metrics.Enabled = true
				c.Metrics.Port = -1
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestConfig_Validate_AggregatesErrors(t *testing.T) {
	cfg := defaultConfig()
	cfg.Database.Path = ""
	cfg.API.Port = 70000

	err := cfg.Validate()
	if err == nil {
		t.Fatal("Validate() expected error")
	}
	for _, want := range []string{"database.path", "api.port"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("error %q does not mention %q", err, want)
		}
	}
}

func TestAPITimeoutConfig_Durations(t *testing.T) {
	timeouts := APITimeoutConfig{Read: 30, Write: 45, Idle: 60}

	if got := timeouts.ReadTimeout(); got != 30*time.Second {
		t.Errorf("ReadTimeout() = %v, want 30s", got)
	}
	if got := timeouts.WriteTimeout(); got != 45*time.Second {
		t.Errorf("WriteTimeout() = %v, want 45s", got)
	}
	if got := timeouts.IdleTimeout(); got != time.Minute {
		t.Errorf("IdleTimeout() = %v, want 1m", got)
	}
}

// unsetEnv removes key for the rest of the test and restores it afterwards.
func unsetEnv(t *testing.T, key string) {
	t.Helper()
	t.Setenv(key, "")
	os.Unsetenv(key) //nolint:errcheck // Restored by t.Setenv cleanup
}

func writeEnvFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), ".env")
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatalf("failed to write env file: %v", err)
	}
	return path
}

func TestLoad_EnvFile(t *testing.T) {
	clearEnv(t)
	unsetEnv(t, "DATABASE_URL")
	t.Setenv("CATALOG_ENV_FILE", writeEnvFile(t, "DATABASE_URL=postgres://catalog:secret@db:5432/catalog\n"))

	cfg, err := Load(writeConfig(t, "logging:\n  level: info\n"))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Database.Driver != DriverPostgres {
		t.Errorf("Database.Driver = %q, want %q", cfg.Database.Driver, DriverPostgres)
	}
	if cfg.Database.DSN != "postgres://catalog:secret@db:5432/catalog" {
		t.Errorf("Database.DSN = %q, want value from env file", cfg.Database.DSN)
	}
}

func TestLoad_EnvFileDoesNotOverrideEnvironment(t *testing.T) {
	clearEnv(t)
	t.Setenv("DATABASE_URL", "postgres://from-environment/catalog")
	t.Setenv("CATALOG_ENV_FILE", writeEnvFile(t, "DATABASE_URL=postgres://from-file/catalog\n"))

	cfg, err := Load(writeConfig(t, "logging:\n  level: info\n"))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Database.DSN != "postgres://from-environment/catalog" {
		t.Errorf("Database.DSN = %q, want the environment value", cfg.Database.DSN)
	}
}

func TestLoad_MissingEnvFile(t *testing.T) {
	clearEnv(t)

	cfg, err := Load(writeConfig(t, "logging:\n  level: info\n"))
	if err != nil {
		t.Fatalf("Load() with no env file error = %v", err)
	}
	if cfg.Database.Driver != DriverSQLite {
		t.Errorf("Database.Driver = %q, want %q", cfg.Database.Driver, DriverSQLite)
	}
}

func TestEnvFilePath(t *testing.T) {
	t.Setenv("CATALOG_ENV_FILE", "")
	if got := envFilePath(); got != defaultEnvFile {
		t.Errorf("envFilePath() = %q, want %q", got, defaultEnvFile)
	}

	t.Setenv("CATALOG_ENV_FILE", "/etc/catalog/env")
	if got := envFilePath(); got != "/etc/catalog/env" {
		t.Errorf("envFilePath() = %q, want override", got)
	}
}

func TestApplyEnvOverrides(t *testing.T) {
	clearEnv(t)
	cfg := defaultConfig()

	t.Setenv("CATALOG_DATABASE_PATH", "/custom/path.db")
	t.Setenv("CATALOG_API_HOST", "192.168.1.1")
	t.Setenv("CATALOG_API_PORT", "8081")
	t.Setenv("CATALOG_LOG_LEVEL", "debug")

	if err := applyEnvOverrides(cfg); err != nil {
		t.Fatalf("applyEnvOverrides() error = %v", err)
	}

	if cfg.Database.Path != "/custom/path.db" {
		t.Errorf("Database.Path = %q, want %q", cfg.Database.Path, "/custom/path.db")
	}
	if cfg.API.Host != "192.168.1.1" {
		t.Errorf("API.Host = %q, want %q", cfg.API.Host, "192.168.1.1")
	}
	if cfg.API.Port != 8081 {
		t.Errorf("API.Port = %d, want 8081", cfg.API.Port)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("Logging.Level = %q, want %q", cfg.Logging.Level, "debug")
	}
}

func TestApplyEnvOverrides_DatabaseURL(t *testing.T) {
	clearEnv(t)
	cfg := defaultConfig()

	t.Setenv("DATABASE_URL", "postgres://user:pass@db/catalog")

	if err := applyEnvOverrides(cfg); err != nil {
		t.Fatalf("applyEnvOverrides() error = %v", err)
	}

	if cfg.Database.Driver != DriverPostgres {
		t.Errorf("Database.Driver = %q, want %q", cfg.Database.Driver, DriverPostgres)
	}
	if cfg.Database.DSN != "postgres://user:pass@db/catalog" {
		t.Errorf("Database.DSN = %q", cfg.Database.DSN)
	}
}

func TestDefaultConfig(t *testing.T) {
	cfg := defaultConfig()

	if cfg.Database.Driver != DriverSQLite {
		t.Errorf("defaultConfig Database.Driver = %q, want %q", cfg.Database.Driver, DriverSQLite)
	}
	if cfg.Database.Path == "" {
		t.Error("defaultConfig should have non-empty Database.Path")
	}
	if got := cfg.API.Address(); got != "127.0.0.1:3000" {
		t.Errorf("defaultConfig API.Address() = %q, want 127.0.0.1:3000", got)
	}
	if cfg.Metrics.Enabled {
		t.Error("defaultConfig should leave metrics disabled")
	}
}
