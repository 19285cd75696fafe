// Package logging sets up the process logger. Logs go to a file so that
// the terminal stays free for the game screen.
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
)

// Options selects the sink.
type Options struct {
	Level slog.Level
	File  string // "-" logs to stderr
}

// Open returns a text logger writing to opts.File and the closer for the
// file.
func Open(opts Options) (*slog.Logger, io.Closer, error) {
	if opts.File == "-" {
		return New(os.Stderr, opts.Level), nopCloser{}, nil
	}
	if opts.File == "" {
		return nil, nil, fmt.Errorf("log file path is empty")
	}
	if err := os.MkdirAll(filepath.Dir(opts.File), 0o755); err != nil {
		return nil, nil, fmt.Errorf("create log dir: %w", err)
	}
	f, err := os.OpenFile(opts.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("open log file: %w", err)
	}
	return New(f, opts.Level), f, nil
}

// New returns a text logger on w.
func New(w io.Writer, level slog.Level) *slog.Logger {
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// Discard returns a logger that drops everything.
func Discard() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
