// Package logging provides structured logging for the catalog service.
//
// It wraps log/slog with the service's conventions:
//
//   - JSON output for production, text output for development
//   - Default fields (service, version) on all log entries
//   - Level-based filtering (debug, info, warn, error)
//
// Configuration comes from the logging section of config.yaml:
//
//	logging:
//	  level: "info"      # debug, info, warn, error
//	  format: "json"     # json, text
//	  output: "stdout"   # stdout, stderr, discard
//
// Usage:
//
//	logger := logging.New(cfg.Logging, version)
//	logger.Info("listening", "address", addr)
//	logger.Error("query failed", "error", err)
//
// Never log database credentials; log the driver and host instead.
package logging
