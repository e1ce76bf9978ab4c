// Package log provides structured logging for exprkit.
//
// Package: log
// Title: exprkit Structured Logging
// Description: Leveled, structured logger with immutable context cloning,
//              JSON/text/console/logfmt formatters, operation timers and
//              integration with the coded error type of foundation/core/error.
// Author: msto63
// Version: v0.2.0
// Created: 2026-09-28
// Modified: 2026-10-12
//
// Change History:
// - 2026-09-28 v0.1.0: Initial implementation with structured logging
// - 2026-10-12 v0.2.0: Removed async buffering, LogError maps error severity
//
// Usage:
//
//	import exlog "github.com/msto63/exprkit/foundation/core/log"
//
//	logger := exlog.New().
//		WithLevel(exlog.LevelDebug).
//		WithField("component", "parser")
//
//	logger.Debug("parse started", exlog.Fields{"input": text})
//
//	timer := logger.StartTimer("evaluate")
//	// ... work
//	timer.Stop()
package log
