// ============================================================================
// exprkit - Expression Toolkit
// ============================================================================
//
// Package:     logging
// Description: Factory functions for creating service loggers
// Author:      msto63
// Created:     2026-10-05
// License:     MIT
// ============================================================================

package logging

import (
	"io"
	"os"

	exlog "github.com/msto63/exprkit/foundation/core/log"
	"github.com/msto63/exprkit/pkg/core/config"
)

// LoggerConfig holds configuration for creating loggers
type LoggerConfig struct {
	// Service name
	ServiceName string

	// Log level (trace, debug, info, warn, error)
	Level string

	// Output format: json, text, console or logfmt (default: json)
	Format string

	// Output defaults to stderr
	Output io.Writer

	// Additional outputs besides Output
	AdditionalOutputs []io.Writer

	// LevelVar, when set, makes the level adjustable at runtime and
	// Level only initialises it
	LevelVar *exlog.LevelVar

	EnableCaller bool
}

// DefaultLoggerConfig returns a default configuration
func DefaultLoggerConfig(serviceName string) LoggerConfig {
	return LoggerConfig{
		ServiceName: serviceName,
		Level:       "info",
		Format:      "json",
	}
}

// NewLogger creates a foundation logger from cfg
func NewLogger(cfg LoggerConfig) *exlog.Logger {
	level := ParseLevel(cfg.Level)

	var output io.Writer = os.Stderr
	if cfg.Output != nil {
		output = cfg.Output
	}
	if len(cfg.AdditionalOutputs) > 0 {
		writers := append([]io.Writer{output}, cfg.AdditionalOutputs...)
		output = io.MultiWriter(writers...)
	}

	format, err := exlog.ParseFormat(cfg.Format)
	if err != nil {
		format = exlog.FormatJSON
	}

	if cfg.LevelVar != nil {
		cfg.LevelVar.Set(level)
	}

	return exlog.NewWithConfig(exlog.Config{
		Level:        level,
		LevelVar:     cfg.LevelVar,
		Format:       format,
		Output:       output,
		Name:         cfg.ServiceName,
		EnableCaller: cfg.EnableCaller,
	})
}

// FromConfig creates a logger from the [general] section of the application
// configuration
func FromConfig(cfg *config.Config, serviceName string, levelVar *exlog.LevelVar) *exlog.Logger {
	return NewLogger(LoggerConfig{
		ServiceName: serviceName,
		Level:       cfg.General.LogLevel,
		Format:      cfg.General.LogFormat,
		LevelVar:    levelVar,
	})
}

// NewSimpleLogger creates a logger with default settings
func NewSimpleLogger(serviceName string) *exlog.Logger {
	return NewLogger(DefaultLoggerConfig(serviceName))
}

// ParseLevel converts a level name, falling back to info
func ParseLevel(level string) exlog.Level {
	parsed, err := exlog.ParseLevel(level)
	if err != nil {
		return exlog.LevelInfo
	}
	return parsed
}

// Logger wraps the foundation logger with key/value style methods
type Logger struct {
	*exlog.Logger
	name string
}

// New creates a key/value logger with default settings
func New(name string) *Logger {
	return &Logger{
		Logger: NewSimpleLogger(name),
		name:   name,
	}
}

// Wrap adapts an existing foundation logger
func Wrap(logger *exlog.Logger) *Logger {
	return &Logger{Logger: logger, name: logger.Name()}
}

// Foundation returns the wrapped foundation logger
func (l *Logger) Foundation() *exlog.Logger {
	return l.Logger
}

// With returns a logger carrying the given key/value pairs on every entry
func (l *Logger) With(keysAndValues ...interface{}) *Logger {
	return &Logger{
		Logger: l.Logger.WithFields(toFields(keysAndValues...)),
		name:   l.name,
	}
}

// Debug logs a debug message with key/value pairs
func (l *Logger) Debug(msg string, keysAndValues ...interface{}) {
	l.Logger.Debug(msg, toFields(keysAndValues...))
}

// Info logs an info message with key/value pairs
func (l *Logger) Info(msg string, keysAndValues ...interface{}) {
	l.Logger.Info(msg, toFields(keysAndValues...))
}

// Warn logs a warning message with key/value pairs
func (l *Logger) Warn(msg string, keysAndValues ...interface{}) {
	l.Logger.Warn(msg, toFields(keysAndValues...))
}

// Error logs an error message with key/value pairs
func (l *Logger) Error(msg string, keysAndValues ...interface{}) {
	l.Logger.Error(msg, toFields(keysAndValues...))
}

// toFields converts key/value pairs; a trailing key without value and
// non-string keys are dropped
func toFields(keysAndValues ...interface{}) exlog.Fields {
	if len(keysAndValues) == 0 {
		return nil
	}

	fields := make(exlog.Fields)
	for i := 0; i < len(keysAndValues)-1; i += 2 {
		key, ok := keysAndValues[i].(string)
		if !ok {
			continue
		}
		fields[key] = keysAndValues[i+1]
	}
	return fields
}
