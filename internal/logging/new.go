package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	rotatelogs "github.com/lestrrat-go/file-rotatelogs"
)

const (
	BackendSlog = "slog"
	BackendZap  = "zap"

	FormatText = "text"
	FormatJSON = "json"
)

// Options selects the backend and destination.
// An empty File means stderr; otherwise output rotates daily next to File.
type Options struct {
	Backend string
	Level   string
	Format  string
	File    string
	MaxAge  time.Duration
}

// New builds a Logger from opts. The returned closer releases the log file
// and must be called on shutdown; it is a no-op for stderr.
func New(opts Options) (Logger, io.Closer, error) {
	var (
		w      io.Writer = os.Stderr
		closer io.Closer = nopCloser{}
	)

	if opts.File != "" {
		rl, err := newRotator(opts.File, opts.MaxAge)
		if err != nil {
			return nil, nil, fmt.Errorf("open log file: %w", err)
		}
		w, closer = rl, rl
	}

	l, err := NewWriter(w, opts)
	if err != nil {
		_ = closer.Close()
		return nil, nil, err
	}
	return l, closer, nil
}

// NewWriter builds a Logger writing to w.
func NewWriter(w io.Writer, opts Options) (Logger, error) {
	switch strings.ToLower(opts.Backend) {
	case "", BackendSlog:
		hopts := &slog.HandlerOptions{Level: slogLevel(opts.Level)}
		var h slog.Handler
		if opts.Format == FormatJSON {
			h = slog.NewJSONHandler(w, hopts)
		} else {
			h = slog.NewTextHandler(w, hopts)
		}
		return NewSlogLogger(slog.New(h)), nil
	case BackendZap:
		return NewZapLogger(newZap(w, opts.Level, opts.Format)), nil
	default:
		return nil, fmt.Errorf("unknown log backend %q", opts.Backend)
	}
}

// Nop returns a logger that discards everything.
func Nop() Logger {
	return NewSlogLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func newRotator(path string, maxAge time.Duration) (*rotatelogs.RotateLogs, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return nil, err
	}
	if maxAge <= 0 {
		maxAge = 7 * 24 * time.Hour
	}
	return rotatelogs.New(
		path+".%Y%m%d",
		rotatelogs.WithLinkName(path),
		rotatelogs.WithRotationTime(24*time.Hour),
		rotatelogs.WithMaxAge(maxAge),
	)
}

func slogLevel(l string) slog.Level {
	switch strings.ToLower(l) {
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

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
