package ung

import (
	"context"
	"log/slog"
	"os"
)

// Logger wraps slog.Logger with UNG-specific context helpers.
// This provides structured logging with consistent field names across
// build, search, and persistence operations.
type Logger struct {
	*slog.Logger
}

// NewLogger creates a new Logger with the given handler.
// If handler is nil, uses a text handler writing to stderr at Info level.
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

// NewJSONLogger creates a Logger that outputs JSON-formatted logs.
func NewJSONLogger(level slog.Level) *Logger {
	handler := slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NewTextLogger creates a Logger that outputs human-readable text logs.
func NewTextLogger(level slog.Level) *Logger {
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NoopLogger creates a Logger that discards all log output.
func NoopLogger() *Logger {
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.Level(1000), // unreachable level
	})
	return &Logger{
		Logger: slog.New(handler),
	}
}

// WithGroup adds a group name to the logger, matching slog semantics but
// preserving the *Logger wrapper type.
func (l *Logger) WithGroup(group string) *Logger {
	return &Logger{Logger: l.Logger.WithGroup(group)}
}

// WithPointCount adds a point-count field to the logger.
func (l *Logger) WithPointCount(n int) *Logger {
	return &Logger{Logger: l.Logger.With("points", n)}
}

// WithGroupCount adds a label-group-count field to the logger.
func (l *Logger) WithGroupCount(n int) *Logger {
	return &Logger{Logger: l.Logger.With("groups", n)}
}

// LogBuildStart logs the start of an index build.
func (l *Logger) LogBuildStart(ctx context.Context, points, dim int) {
	l.InfoContext(ctx, "build started",
		"points", points,
		"dimension", dim,
	)
}

// LogBuildGroup logs completion of a single label group's Vamana subgraph.
func (l *Logger) LogBuildGroup(ctx context.Context, groupID uint32, size int, elapsedMS int64, err error) {
	if err != nil {
		l.ErrorContext(ctx, "group build failed",
			"group", groupID,
			"size", size,
			"error", err,
		)
		return
	}
	l.DebugContext(ctx, "group build completed",
		"group", groupID,
		"size", size,
		"elapsed_ms", elapsedMS,
	)
}

// LogBuildComplete logs completion of a full index build.
func (l *Logger) LogBuildComplete(ctx context.Context, points, groups, crossEdges int, elapsedMS int64, err error) {
	if err != nil {
		l.ErrorContext(ctx, "build failed",
			"points", points,
			"error", err,
		)
		return
	}
	l.InfoContext(ctx, "build completed",
		"points", points,
		"groups", groups,
		"cross_edges", crossEdges,
		"elapsed_ms", elapsedMS,
	)
}

// LogSearch logs a single search operation.
func (l *Logger) LogSearch(ctx context.Context, k, resultsFound int, hops int, err error) {
	if err != nil {
		l.ErrorContext(ctx, "search failed",
			"k", k,
			"error", err,
		)
		return
	}
	l.DebugContext(ctx, "search completed",
		"k", k,
		"results", resultsFound,
		"hops", hops,
	)
}

// LogSave logs a persisted-snapshot write.
func (l *Logger) LogSave(ctx context.Context, path string, bytesWritten int64, err error) {
	if err != nil {
		l.ErrorContext(ctx, "save failed",
			"path", path,
			"error", err,
		)
		return
	}
	l.InfoContext(ctx, "save completed",
		"path", path,
		"bytes", bytesWritten,
	)
}

// LogLoad logs a persisted-snapshot read.
func (l *Logger) LogLoad(ctx context.Context, path string, points int, err error) {
	if err != nil {
		l.ErrorContext(ctx, "load failed",
			"path", path,
			"error", err,
		)
		return
	}
	l.InfoContext(ctx, "load completed",
		"path", path,
		"points", points,
	)
}
