// Package logging builds the process logger: a truncated log file that
// records everything at the configured level, and stderr for warnings.
package logging

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/term"
)

const (
	logFileMode = 0o600
	logDirMode  = 0o700
)

type Options struct {
	File   string
	Level  string
	Format string
	// Stderr receives warn and above. Nil means os.Stderr.
	Stderr io.Writer
}

// New opens the log file, truncating any previous run. The returned close
// func flushes and closes the file.
func New(opts Options) (*slog.Logger, func() error, error) {
	level, err := ParseLevel(opts.Level)
	if err != nil {
		return nil, nil, err
	}

	stderr := opts.Stderr
	if stderr == nil {
		stderr = os.Stderr
	}

	handlers := []slog.Handler{newConsoleHandler(stderr, max(level, slog.LevelWarn))}
	closeFn := func() error { return nil }

	if opts.File != "" {
		if err := os.MkdirAll(filepath.Dir(opts.File), logDirMode); err != nil {
			return nil, nil, fmt.Errorf("create log directory: %w", err)
		}

		f, err := os.OpenFile(opts.File, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, logFileMode)
		if err != nil {
			return nil, nil, fmt.Errorf("open log file: %w", err)
		}

		handlerOpts := &slog.HandlerOptions{Level: level}
		var fileHandler slog.Handler
		if strings.EqualFold(opts.Format, "json") {
			fileHandler = slog.NewJSONHandler(f, handlerOpts)
		} else {
			fileHandler = slog.NewTextHandler(f, handlerOpts)
		}

		handlers = append(handlers, fileHandler)
		closeFn = f.Close
	}

	return slog.New(teeHandler(handlers)), closeFn, nil
}

func ParseLevel(raw string) (slog.Level, error) {
	var level slog.Level
	if strings.TrimSpace(raw) == "" {
		return slog.LevelInfo, nil
	}
	if err := level.UnmarshalText([]byte(raw)); err != nil {
		return 0, fmt.Errorf("parse log level %q: %w", raw, err)
	}

	return level, nil
}

// newConsoleHandler writes text to a terminal and JSON to anything else.
func newConsoleHandler(w io.Writer, level slog.Level) slog.Handler {
	opts := &slog.HandlerOptions{Level: level}
	if f, ok := w.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		return slog.NewTextHandler(w, opts)
	}

	return slog.NewJSONHandler(w, opts)
}

type teeHandler []slog.Handler

func (t teeHandler) Enabled(ctx context.Context, level slog.Level) bool {
	for _, h := range t {
		if h.Enabled(ctx, level) {
			return true
		}
	}

	return false
}

func (t teeHandler) Handle(ctx context.Context, record slog.Record) error {
	var errs []error
	for _, h := range t {
		if !h.Enabled(ctx, record.Level) {
			continue
		}
		if err := h.Handle(ctx, record.Clone()); err != nil {
			errs = append(errs, err)
		}
	}

	return errors.Join(errs...)
}

func (t teeHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	out := make(teeHandler, len(t))
	for i, h := range t {
		out[i] = h.WithAttrs(attrs)
	}

	return out
}

func (t teeHandler) WithGroup(name string) slog.Handler {
	out := make(teeHandler, len(t))
	for i, h := range t {
		out[i] = h.WithGroup(name)
	}

	return out
}
