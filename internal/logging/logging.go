// Package logging configures the process-wide slog logger.
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
)

type Options struct {
	Level string
	// Format is "json" (default) or "text".
	Format string
	// File, when set, receives a copy of every record in addition to stderr.
	File string
	// Stderr replaces os.Stderr; used by tests.
	Stderr io.Writer
}

// New builds a logger from opts and installs it as the slog default. The
// returned cleanup closes the log file, if any, and must be deferred.
func New(opts Options) (*slog.Logger, func(), error) {
	out := opts.Stderr
	if out == nil {
		out = os.Stderr
	}
	writers := []io.Writer{out}
	cleanup := func() {}

	if opts.File != "" {
		f, err := os.OpenFile(opts.File, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0600)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open log file: %w", err)
		}
		writers = append(writers, f)
		cleanup = func() { _ = f.Close() }
	}

	w := io.MultiWriter(writers...)
	handlerOpts := &slog.HandlerOptions{Level: ParseLevel(opts.Level)}

	var handler slog.Handler
	if strings.EqualFold(opts.Format, "text") {
		handler = slog.NewTextHandler(w, handlerOpts)
	} else {
		handler = slog.NewJSONHandler(w, handlerOpts)
	}

	logger := slog.New(handler).With("app", "konsinyasi")
	slog.SetDefault(logger)
	return logger, cleanup, nil
}

// ParseLevel maps a level name to a slog level, defaulting to info.
func ParseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
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
