// Package logging assembles structured slog loggers shared across the
// pipeline.
//
// It owns the console and JSON handlers, centralizes level and output
// plumbing, and exposes context-aware helpers so stage code automatically
// tags log lines with the run identifier, active stage, and chunk index.
// The package also provides a no-op logger for tests and wiring code that
// cannot fail.
package logging
