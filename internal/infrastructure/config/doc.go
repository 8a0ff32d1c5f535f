// Package config handles loading and validating catalog service configuration.
//
// This package manages:
//   - Loading configuration from YAML files
//   - Overriding with environment variables
//   - Validation of required fields
//   - Default value handling
//
// Security Considerations:
//   - Database credentials should be supplied via CATALOG_DATABASE_DSN or
//     DATABASE_URL rather than committed to the config file
//   - The config file should have restricted permissions (0600)
//
// Configuration is read once at startup; nothing here is consulted per request.
//
// Usage:
//
//	cfg, err := config.Load("configs/config.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(cfg.API.Address())
package config
