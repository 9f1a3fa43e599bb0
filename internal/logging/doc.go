// Package logging provides structured logging for ztdash.
//
// This package wraps a zap logger with package-level convenience functions.
// The dashboard owns the terminal while it runs, so entries are written to a
// rotating log file (lumberjack) instead of stdout or stderr.
//
// # Log Levels
//
//   - Debug: every API request, refresh timings, tracker decisions
//   - Info: operator actions (join, leave, authorize, command dispatch)
//   - Warn: failed requests, malformed configuration, rejected bindings
//   - Error: failures that end the program
//
// # Configuration
//
// Logging is silent unless a level is given, either by the --log-level flag
// or the ZTDASH_LOG_LEVEL environment variable:
//
//	if err := logging.Initialize(logging.Options{Level: "debug", File: path}); err != nil {
//	    return err
//	}
//	defer logging.Sync()
//
// # Thread Safety
//
// All logging functions are safe for concurrent use once Initialize has
// returned.
package logging
