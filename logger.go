package gip

import (
	"context"
	"log/slog"
	"os"
)

// Logger wraps slog.Logger with retrieval-specific context.
// This provides structured logging with consistent field names.
type Logger struct {
	*slog.Logger
}

// NewLogger creates a new Logger with the given handler.
// If handler is nil, uses default text handler to stderr.
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
// level sets the minimum log level (e.g., slog.LevelDebug, slog.LevelInfo).
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
// Use this to disable logging entirely.
func NoopLogger() *Logger {
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.Level(1000), // Unreachable level
	})
	return &Logger{
		Logger: slog.New(handler),
	}
}

// WithQueryID adds a query id field to the logger.
func (l *Logger) WithQueryID(id string) *Logger {
	return &Logger{
		Logger: l.Logger.With("query_id", id),
	}
}

// WithShard adds shard coordinates to the logger.
func (l *Logger) WithShard(shardIdx, totalShards int) *Logger {
	return &Logger{
		Logger: l.Logger.With("shard", shardIdx, "total_shards", totalShards),
	}
}

// LogQuery logs one query's retrieval outcome.
func (l *Logger) LogQuery(ctx context.Context, queryID string, k, resultsFound int, err error) {
	if err != nil {
		l.ErrorContext(ctx, "query failed",
			"query_id", queryID,
			"k", k,
			"error", err,
		)
	} else {
		l.DebugContext(ctx, "query completed",
			"query_id", queryID,
			"k", k,
			"results", resultsFound,
		)
	}
}

// LogRun logs a completed retrieval run.
func (l *Logger) LogRun(ctx context.Context, stats RunStats) {
	l.InfoContext(ctx, "retrieval run completed",
		"queries", stats.Queries,
		"wall_seconds", stats.WallSeconds,
		"per_query_seconds", stats.PerQuerySeconds,
		"avg_important_dims", stats.AvgImportantDims,
	)
}

// LogSnapshotLoad logs a corpus snapshot load.
func (l *Logger) LogSnapshotLoad(ctx context.Context, name string, rows, dimension int, err error) {
	if err != nil {
		l.ErrorContext(ctx, "snapshot load failed",
			"name", name,
			"error", err,
		)
	} else {
		l.InfoContext(ctx, "snapshot loaded",
			"name", name,
			"rows", rows,
			"dimension", dimension,
		)
	}
}
