// Package logging provides configurable zap logger creation for the
// extraction pipeline and CLI.
package logging

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Style selects the log output format
type Style string

const (
	StyleTerminal Style = "terminal"
	StyleJson     Style = "json"
	StyleNoop     Style = "noop"
)

// Config holds logger settings
type Config struct {
	// Style is one of terminal, json, noop. Default: terminal.
	Style Style

	// Level is a zap level name (debug, info, warn, error). Default: info.
	Level string
}

// NewLogger creates a zap logger based on the Config settings.
// If config is nil or has empty values, defaults to terminal style with
// info level. Unrecognized styles fall back to terminal output.
func NewLogger(c *Config) *zap.Logger {
	var err error
	var logger *zap.Logger

	style := StyleTerminal
	level := zapcore.InfoLevel

	if c != nil {
		if c.Style != "" {
			style = c.Style
		}
		if c.Level != "" {
			lvl, parseErr := zapcore.ParseLevel(c.Level)
			if parseErr == nil {
				level = lvl
			}
		}
	}

	switch style {
	case StyleNoop:
		return zap.NewNop()
	case StyleJson:
		cfg := zap.NewProductionConfig()
		cfg.Level = zap.NewAtomicLevelAt(level)
		logger, err = cfg.Build(zap.AddStacktrace(zap.ErrorLevel))
	default:
		// StyleTerminal, and the fallback for unknown styles
		cfg := zap.NewDevelopmentConfig()
		cfg.Level = zap.NewAtomicLevelAt(level)
		logger, err = cfg.Build(zap.AddStacktrace(zap.ErrorLevel))
	}

	if err != nil {
		return zap.NewNop()
	}
	return logger
}
