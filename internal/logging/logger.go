// Package logging wraps log/slog with consistent field names for dual-number
// evaluation.
package logging

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/san-kum/dualx/internal/dual"
)

// Logger wraps slog.Logger with dualx-specific helpers.
type Logger struct {
	*slog.Logger
}

// New creates a Logger writing to w. format is "text" or "json".
// A nil w writes to stderr.
func New(w io.Writer, level slog.Level, format string) (*Logger, error) {
	if w == nil {
		w = os.Stderr
	}
	opts := &slog.HandlerOptions{Level: level}

	var h slog.Handler
	switch strings.ToLower(format) {
	case "", "text":
		h = slog.NewTextHandler(w, opts)
	case "json":
		h = slog.NewJSONHandler(w, opts)
	default:
		return nil, fmt.Errorf("unknown log format %q (want text or json)", format)
	}
	return &Logger{Logger: slog.New(h)}, nil
}

// NewTextLogger creates a Logger that outputs human-readable text to stderr.
func NewTextLogger(level slog.Level) *Logger {
	return &Logger{Logger: slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))}
}

// NewJSONLogger creates a Logger that outputs JSON to stderr.
func NewJSONLogger(level slog.Level) *Logger {
	return &Logger{Logger: slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level}))}
}

// Noop returns a Logger that discards everything.
func Noop() *Logger {
	return &Logger{Logger: slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.Level(1000)}))}
}

// ParseLevel maps debug, info, warn and error to slog levels.
func ParseLevel(s string) (slog.Level, error) {
	var l slog.Level
	if err := l.UnmarshalText([]byte(strings.TrimSpace(s))); err != nil {
		return slog.LevelInfo, fmt.Errorf("unknown log level %q", s)
	}
	return l, nil
}

// WithChain tags every record with the chain being evaluated.
func (l *Logger) WithChain(name string) *Logger {
	return &Logger{Logger: l.Logger.With("chain", name)}
}

// WithRun tags every record with a stored run ID.
func (l *Logger) WithRun(id string) *Logger {
	return &Logger{Logger: l.Logger.With("run", id)}
}

// LogAdvisory logs a numerical-instability advisory.
func (l *Logger) LogAdvisory(ctx context.Context, a dual.Advisory) {
	l.WarnContext(ctx, a.Message,
		"op", a.Op,
		"index", a.Index,
		"value", a.Value,
		"flagged", max(len(a.Indices), 1),
	)
}

// LogEval logs the outcome of a single evaluation.
func (l *Logger) LogEval(ctx context.Context, x float64, result dual.Number, err error) {
	if err != nil {
		l.ErrorContext(ctx, "evaluation failed",
			"x", x,
			"error", err,
		)
		return
	}
	l.DebugContext(ctx, "evaluation completed",
		"x", x,
		"result", result.String(),
		"advisories", len(result.Advisories()),
	)
}

// LogSweep logs a finished sweep.
func (l *Logger) LogSweep(ctx context.Context, mode string, samples, failed, advisories int) {
	if failed > 0 {
		l.WarnContext(ctx, "sweep completed with failures",
			"mode", mode,
			"samples", samples,
			"failed", failed,
			"advisories", advisories,
		)
		return
	}
	l.InfoContext(ctx, "sweep completed",
		"mode", mode,
		"samples", samples,
		"advisories", advisories,
	)
}

// AdvisorySink returns a dual.Sink that logs each advisory at WARN.
func (l *Logger) AdvisorySink(ctx context.Context) dual.Sink {
	return dual.SinkFunc(func(a dual.Advisory) {
		l.LogAdvisory(ctx, a)
	})
}
