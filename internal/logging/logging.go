// Package logging builds the process logger.
//
// Development runs get colored, human-readable output via tint; every other
// environment logs JSON so log shippers can parse it.
package logging

import (
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/lmittmann/tint"
)

// New returns a logger for the given environment and level name
// (debug, info, warn, error; anything else means info).
func New(w io.Writer, env, level string) *slog.Logger {
	lvl := ParseLevel(level)
	if env == "development" {
		return slog.New(tint.NewHandler(w, &tint.Options{
			Level:      lvl,
			TimeFormat: time.Kitchen,
		}))
	}
	return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: lvl}))
}

// ParseLevel maps a level name to a slog level.
func ParseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
