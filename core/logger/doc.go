// Package logger provides a structured logging facility based on Zap.
//
// It offers a configured logger instance that supports different environments
// (development vs production). Every reconciliation run is tagged with a
// run_id via WithRun so the interleaved output of concurrent fetch workers
// can be correlated, and the serve command uses WithRayID to correlate logs
// belonging to a single HTTP request.
//
// # Configuration
//
// The package supports configuration for:
//   - Level: debug, info, warn, error
//   - Encoding: json (production) or console (development)
//
// # Usage
//
//	log, _ := logger.New(&logger.Config{Level: "info"})
//	run := logger.WithRun(log, "backfill")
//	run.Info("Sync started")
package logger
