// Package logging builds the structured zap logger for plannerd.
//
// # Overview
//
// The package produces a *zap.Logger with:
//   - Dual output (stdout + OpenTelemetry via the otelzap bridge)
//   - Encoder-level secret redaction (field names and value patterns)
//   - Helpers for extracting correlation fields from a context
//
// # Usage
//
// Create the logger from config:
//
//	cfg := logging.NewDefaultConfig()
//	logger, err := logging.New(cfg, tel.LoggerProvider())
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer logging.Sync(logger)
//
// Attach request correlation where a context is available:
//
//	logger.With(logging.ContextFields(ctx)...).Info("plan generated",
//	    zap.String("plan_id", plan.ID))
//
// # Secret Redaction
//
// Secrets are redacted at two layers:
//  1. Domain primitives (config.Secret type)
//  2. Encoder-level field name filtering and pattern matching
//
// Use helpers for manual redaction:
//
//	logger.Info("auth received",
//	    logging.RedactedString("authorization", authHeader))
package logging
