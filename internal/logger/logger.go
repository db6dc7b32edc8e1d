// Package logger centralizes slog initialization so every package gets the
// same level and format without repeating setup, controlled by the
// LOG_LEVEL/LOG_FORMAT environment variables.
package logger

import (
	"log/slog"
	"os"
	"strings"
)

// defaultLogger is reused process-wide so independently-initialized
// packages never disagree about output destination or level.
var defaultLogger *slog.Logger

// Setup initializes the default logger. Output is fixed to stderr; this
// package does not manage file handles or remote aggregation.
func Setup() *slog.Logger {
	lvl := slog.LevelInfo
	switch strings.ToLower(os.Getenv("LOG_LEVEL")) {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	}
	format := strings.ToLower(os.Getenv("LOG_FORMAT"))
	var h slog.Handler
	if format == "json" {
		h = slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: lvl})
	} else {
		h = slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl})
	}
	defaultLogger = slog.New(h)
	return defaultLogger
}

// L returns the default logger, initializing it with Setup on first use.
func L() *slog.Logger {
	if defaultLogger == nil {
		return Setup()
	}
	return defaultLogger
}
