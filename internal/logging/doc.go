// Package logging provides structured logging for the sds011 tool.
//
// This package wraps zap logger with convenience functions for common logging
// patterns used throughout the driver. CLI output stays on stdout via fmt;
// zap carries diagnostics only, and is silent unless explicitly enabled.
//
// # Log Levels
//
// The package supports standard log levels:
//   - Debug: Detailed debugging info (hex dumps, frame resync, retries)
//   - Info: Normal operations (port opened, commands acknowledged)
//   - Warn: Non-fatal issues (unacknowledged commands, dropped frames)
//   - Error: Fatal issues (port failures, stream termination)
//
// # Structured Logging
//
// All log functions use structured fields for queryability:
//
//	logging.Info("Work period set",
//	    zap.Int("minutes", 5),
//	    zap.String("port", "/dev/ttyUSB0"),
//	)
//
// # Wire Debugging
//
// LogRawBytes dumps raw frame bytes in hex and ASCII at debug level:
//
//	logging.LogRawBytes("frame received", raw)
//
// # Configuration
//
// Logging is off by default so measurement output stays clean. Set the
// SDS011_LOG_LEVEL environment variable (debug, info, warn, error) or call
// Initialize at startup:
//
//	if err := logging.InitializeFromEnv(); err != nil {
//	    log.Fatal(err)
//	}
//	defer logging.Sync()
//
// # Thread Safety
//
// All logging functions are safe for concurrent use. The underlying zap
// logger handles synchronization automatically.
package logging
