// Package logging configures the daemon's structured logger: level,
// format, optional file rotation, and redaction of sensitive fields.
package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

type Format string

const (
	FormatText Format = "text"
	FormatJSON Format = "json"
)

// Config selects the logger's level/format/destination. FilePath, when
// set and Output is nil, routes through a FileRotator instead of
// stderr; MaxSize/MaxAge/MaxBackups/Compress tune that rotation.
// RedactPatterns names attribute keys (substring match) whose values
// are replaced with "[REDACTED]" before they reach the handler.
type Config struct {
	Level     string
	Format    Format
	Output    io.Writer // overrides FilePath when non-nil; defaults to os.Stderr
	Component string

	FilePath       string
	MaxSize        int64 // megabytes
	MaxAge         int   // days
	MaxBackups     int
	Compress       bool
	AddSource      bool
	RedactPatterns []string
}

func New(cfg Config) *slog.Logger {
	level := parseLevel(cfg.Level)
	out := cfg.Output
	if out == nil {
		if cfg.FilePath != "" {
			rotator, err := NewFileRotator(&RotatorConfig{
				FilePath:   cfg.FilePath,
				MaxSize:    cfg.MaxSize,
				MaxAge:     cfg.MaxAge,
				MaxBackups: cfg.MaxBackups,
				Compress:   cfg.Compress,
			})
			if err == nil {
				out = rotator
			}
		}
		if out == nil {
			out = os.Stderr
		}
	}

	opts := &slog.HandlerOptions{
		Level:       level,
		AddSource:   cfg.AddSource,
		ReplaceAttr: redactor(cfg.RedactPatterns),
	}
	var handler slog.Handler
	if cfg.Format == FormatJSON {
		handler = slog.NewJSONHandler(out, opts)
	} else {
		handler = slog.NewTextHandler(out, opts)
	}

	logger := slog.New(handler)
	if cfg.Component != "" {
		logger = logger.With("component", cfg.Component)
	}
	return logger
}

// redactor builds a slog.HandlerOptions.ReplaceAttr that blanks any
// attribute whose key contains one of patterns, case-insensitively.
// A nil return (empty patterns) is a no-op, matching the zero Config.
func redactor(patterns []string) func(groups []string, a slog.Attr) slog.Attr {
	if len(patterns) == 0 {
		return nil
	}
	lower := make([]string, len(patterns))
	for i, p := range patterns {
		lower[i] = strings.ToLower(p)
	}
	return func(groups []string, a slog.Attr) slog.Attr {
		key := strings.ToLower(a.Key)
		for _, p := range lower {
			if strings.Contains(key, p) {
				a.Value = slog.StringValue("[REDACTED]")
				return a
			}
		}
		return a
	}
}

func parseLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
