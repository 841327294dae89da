// Package logging assembles structured slog loggers and formatting helpers used
// across yt2wp.
//
// It owns the console and JSON handlers, centralizes level and output
// plumbing, and exposes context-aware helpers so pipeline stages automatically
// tag log lines with the run ID, stage, and download attempt. The package also
// provides a no-op logger for tests and wiring code that cannot fail.
package logging
