// Package logging provides a simple leveled logging interface for vidshelf.
//
// It supports the following log levels:
//   - DEBUG: Verbose debugging information (per-file extraction failures, scan details)
//   - INFO: General operational messages
//   - WARN: Warning conditions
//   - ERROR: Error conditions
//   - FATAL: Fatal errors that terminate the application
//
// The log level is read from the LOG_LEVEL (or DEBUG) environment variable on
// first use and can be overridden with SetLevel, which the CLI does for
// --log-level.
package logging
