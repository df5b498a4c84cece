package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
)

// Options selects the level and sink of the process logger.
type Options struct {
	Level string
	// File is the log file path; empty logs to Stderr.
	File string
	// MaxSizeMB rotates the file once it reaches this size; 0 never rotates.
	MaxSizeMB int
	// Stderr defaults to os.Stderr.
	Stderr io.Writer
}

// ParseLevel converts a configured level name to a slog level.
func ParseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return slog.LevelInfo, fmt.Errorf("unknown log level %q", s)
}

// New builds the text logger shared by every component. The returned closer
// releases the log file and is never nil.
func New(opts Options) (*slog.Logger, io.Closer, error) {
	level, err := ParseLevel(opts.Level)
	if err != nil {
		return nil, nil, err
	}

	var w io.Writer = opts.Stderr
	if w == nil {
		w = os.Stderr
	}
	var closer io.Closer = nopCloser{}
	if opts.File != "" {
		f, err := OpenRotatingFile(opts.File, int64(opts.MaxSizeMB)*1024*1024)
		if err != nil {
			return nil, nil, err
		}
		w, closer = f, f
	}

	log := slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
	return log, closer, nil
}

// Discard returns a logger that drops every record.
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
