// Package logging provides structured logging configuration for the
// offload subsystem: slog handlers with per-component level filtering.
package logging

import (
	"fmt"
	"log/slog"
	"strings"
)

// Level is a log level with support for trace below slog's built-in
// levels. Values match slog.Level constants for debug through error.
type Level int

const (
	// LevelTrace is the most verbose level, below debug.
	LevelTrace Level = -8
	// LevelDebug matches slog.LevelDebug.
	LevelDebug Level = -4
	// LevelInfo matches slog.LevelInfo.
	LevelInfo Level = 0
	// LevelWarn matches slog.LevelWarn.
	LevelWarn Level = 4
	// LevelError matches slog.LevelError.
	LevelError Level = 8
)

// ParseLevel parses trace, debug, info, warn or error,
// case-insensitively.
func ParseLevel(s string) (Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "trace":
		return LevelTrace, nil
	case "debug":
		return LevelDebug, nil
	case "info":
		return LevelInfo, nil
	case "warn", "warning":
		return LevelWarn, nil
	case "error", "err":
		return LevelError, nil
	default:
		return LevelInfo, fmt.Errorf("unknown log level: %q", s)
	}
}

// ToSlog converts Level to slog.Level.
func (l Level) ToSlog() slog.Level { return slog.Level(l) }

// String returns the level name.
func (l Level) String() string {
	switch l {
	case LevelTrace:
		return "trace"
	case LevelDebug:
		return "debug"
	case LevelInfo:
		return "info"
	case LevelWarn:
		return "warn"
	case LevelError:
		return "error"
	default:
		return fmt.Sprintf("Level(%d)", int(l))
	}
}
