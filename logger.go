package chunkindex

import (
	"context"
	"io"
	"log/slog"
	"os"
)

// Logger wraps slog.Logger with chunkindex-specific helpers.
type Logger struct {
	*slog.Logger
}

// NewLogger creates a new Logger with the given handler.
// If handler is nil, uses the default text handler to stderr.
func NewLogger(handler slog.Handler) *Logger {
	if handler == nil {
		handler = slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelInfo,
		})
	}
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NewTextLogger creates a Logger that outputs human-readable text logs.
func NewTextLogger(level slog.Level) *Logger {
	return NewLogger(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
}

// NoopLogger creates a Logger that discards all log output.
func NoopLogger() *Logger {
	return NewLogger(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{
		Level: slog.Level(127),
	}))
}

// LogLoad logs the outcome of loading an index file.
func (l *Logger) LogLoad(ctx context.Context, path string, records int, err error) {
	if err != nil {
		l.ErrorContext(ctx, "load failed",
			"path", path,
			"error", err,
		)
	} else {
		l.DebugContext(ctx, "load completed",
			"path", path,
			"records", records,
		)
	}
}

// LogZeroVector logs a record whose embedding had zero norm at load time.
// Such a record stays a zero vector and scores 0 against every query.
func (l *Logger) LogZeroVector(ctx context.Context, record int) {
	l.WarnContext(ctx, "embedding has zero norm, left unnormalized",
		"record", record,
	)
}

// LogSearch logs a search operation.
func (l *Logger) LogSearch(ctx context.Context, k, resultsFound int, err error) {
	if err != nil {
		l.ErrorContext(ctx, "search failed",
			"k", k,
			"error", err,
		)
	} else {
		l.DebugContext(ctx, "search completed",
			"k", k,
			"results", resultsFound,
		)
	}
}
