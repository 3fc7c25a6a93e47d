// Copyright 2026 The pkgquery Authors
// SPDX-License-Identifier: MIT

// Package log configures structured logging for pkgquery using log/slog.
package log

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
)

// Setup configures the default slog logger based on verbosity flags.
//
//   - quiet mode:   only WARN and ERROR messages
//   - normal mode:  INFO and above
//   - verbose mode: DEBUG and above
//
// Output is written to stderr using slog.TextHandler.
func Setup(verbose, quiet bool) {
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level(verbose, quiet),
	})
	slog.SetDefault(slog.New(handler))
}

func level(verbose, quiet bool) slog.Level {
	switch {
	case quiet:
		return slog.LevelWarn
	case verbose:
		return slog.LevelDebug
	default:
		return slog.LevelInfo
	}
}

// NewRunLogger returns a logger for one query run. Records go to the
// default logger's handler and, at WARN and above, to the error log at
// path (created with its parent directories, appended to if present). The
// returned closer closes the error log. attrs are added to every record.
func NewRunLogger(path string, attrs ...any) (*slog.Logger, io.Closer, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return nil, nil, fmt.Errorf("create log directory: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600) //nolint:gosec // configured path
	if err != nil {
		return nil, nil, fmt.Errorf("open error log: %w", err)
	}

	file := slog.NewTextHandler(f, &slog.HandlerOptions{Level: slog.LevelWarn})
	logger := slog.New(Fanout(slog.Default().Handler(), file)).With(attrs...)
	return logger, f, nil
}

// Fanout returns a handler that passes each record to every handler that
// is enabled for its level.
func Fanout(handlers ...slog.Handler) slog.Handler {
	return fanout(handlers)
}

type fanout []slog.Handler

func (f fanout) Enabled(ctx context.Context, l slog.Level) bool {
	for _, h := range f {
		if h.Enabled(ctx, l) {
			return true
		}
	}
	return false
}

func (f fanout) Handle(ctx context.Context, r slog.Record) error {
	var errs []error
	for _, h := range f {
		if h.Enabled(ctx, r.Level) {
			errs = append(errs, h.Handle(ctx, r.Clone()))
		}
	}
	return errors.Join(errs...)
}

func (f fanout) WithAttrs(attrs []slog.Attr) slog.Handler {
	out := make(fanout, len(f))
	for i, h := range f {
		out[i] = h.WithAttrs(attrs)
	}
	return out
}

func (f fanout) WithGroup(name string) slog.Handler {
	out := make(fanout, len(f))
	for i, h := range f {
		out[i] = h.WithGroup(name)
	}
	return out
}
