// Package logging provides structured logging using uber/zap.
//
// This package offers production-ready logging with two modes:
//   - Production: JSON output, one object per line with
//     timestamp/level/logger/message keys
//   - Development: Colored console output for human readability
//
// An optional log file can be configured alongside stdout; in production
// mode the file receives the same JSON line format, which makes it
// machine-parseable without a log shipper in front.
//
// Example Usage:
//
//	logger := logging.NewDefault()
//	logger.Info("Server starting", zap.String("port", "8000"))
//	logger.Error("Failed to load catalog", zap.Error(err))
package logging
