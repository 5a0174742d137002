// Package log provides structured logging for paramval tools.
//
// Package: log
// Title: paramval Structured Logging
// Description: Leveled logger with persistent fields, JSON and text formatters,
//              severity-aware logging of structured errors and operation timers.
//              The arithmetic packages never log; the engine, the store, the
//              evaluation service and the CLI do.
// Author: msto63
// Version: v0.2.0
// Created: 2025-01-24
// Modified: 2026-09-15
//
// Change History:
// - 2025-01-24 v0.1.0: Initial implementation with structured logging
// - 2026-09-15 v0.2.0: Dropped async mode, console and logfmt formats
//
// Usage:
//
//	logger := log.NewWithConfig(log.Config{Level: log.LevelDebug, Format: log.FormatText})
//	logger = logger.WithField("run_id", runID)
//	timer := logger.StartTimer("cancel")
//	...
//	timer.Stop()
package log
