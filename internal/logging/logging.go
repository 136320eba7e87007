// Package logging configures the process-wide logger for the aeat-sender
// CLI: a text handler on stderr at the configured level, optionally fanned
// out to a rotating JSON file that always records at debug. Every record
// passes through a redactor so credential material cannot leak into either
// sink.
package logging

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"gopkg.in/natefinch/lumberjack.v2"
)

// Options controls the sinks built by Setup.
type Options struct {
	// Level is the console threshold: debug, info, warn or error.
	Level string

	// File enables the rotating file sink when non-empty. The file
	// records at debug regardless of Level, so a quiet console still
	// leaves a full trail.
	File string

	// MaxSizeMB and MaxBackups bound the rotating file sink.
	MaxSizeMB  int
	MaxBackups int

	// Console overrides the console sink, which defaults to os.Stderr.
	Console io.Writer
}

// Setup builds the logger. The returned close function flushes and closes
// the file sink; call it on exit. It is safe to call when no file sink was
// configured.
func Setup(opts Options) (*slog.Logger, func(), error) {
	level, err := ParseLevel(opts.Level)
	if err != nil {
		return nil, nil, err
	}

	console := opts.Console
	if console == nil {
		console = os.Stderr
	}

	handlers := []slog.Handler{
		slog.NewTextHandler(console, &slog.HandlerOptions{Level: level}),
	}

	closeFn := func() {}
	if opts.File != "" {
		rotator := &lumberjack.Logger{
			Filename:   opts.File,
			MaxSize:    opts.MaxSizeMB,
			MaxBackups: opts.MaxBackups,
		}
		handlers = append(handlers, slog.NewJSONHandler(rotator, &slog.HandlerOptions{
			Level: slog.LevelDebug,
		}))
		closeFn = func() { _ = rotator.Close() }
	}

	var handler slog.Handler
	if len(handlers) == 1 {
		handler = handlers[0]
	} else {
		handler = fanout(handlers)
	}

	return slog.New(Redact(handler)), closeFn, nil
}

// ParseLevel maps a level name to its slog value.
func ParseLevel(name string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "info":
		return slog.LevelInfo, nil
	case "debug":
		return slog.LevelDebug, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return 0, fmt.Errorf("unknown log level %q", name)
	}
}

// fanout forwards records to several handlers with independent levels.
type fanout []slog.Handler

func (f fanout) Enabled(ctx context.Context, level slog.Level) bool {
	for _, h := range f {
		if h.Enabled(ctx, level) {
			return true
		}
	}
	return false
}

func (f fanout) Handle(ctx context.Context, record slog.Record) error {
	var errs []error
	for _, h := range f {
		if !h.Enabled(ctx, record.Level) {
			continue
		}
		if err := h.Handle(ctx, record.Clone()); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (f fanout) WithAttrs(attrs []slog.Attr) slog.Handler {
	next := make(fanout, len(f))
	for i, h := range f {
		next[i] = h.WithAttrs(attrs)
	}
	return next
}

func (f fanout) WithGroup(name string) slog.Handler {
	next := make(fanout, len(f))
	for i, h := range f {
		next[i] = h.WithGroup(name)
	}
	return next
}
