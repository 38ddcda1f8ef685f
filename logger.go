package compound

import (
	"context"
	"io"
	"log/slog"
	"os"

	"github.com/hupe1980/compound/schema"
)

// Logger wraps slog.Logger with registry-specific helpers. Every record
// carries the schema key under "key".
type Logger struct {
	*slog.Logger
}

// NewLogger creates a new Logger with the given handler.
// If handler is nil, uses a text handler at info level on stderr.
func NewLogger(handler slog.Handler) *Logger {
	if handler == nil {
		handler = slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo})
	}
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NewJSONLogger creates a Logger that writes JSON records to w (stderr if
// nil) at level and above.
func NewJSONLogger(w io.Writer, level slog.Level) *Logger {
	return NewLogger(slog.NewJSONHandler(orStderr(w), &slog.HandlerOptions{Level: level}))
}

// NewTextLogger creates a Logger that writes key=value records to w
// (stderr if nil) at level and above.
func NewTextLogger(w io.Writer, level slog.Level) *Logger {
	return NewLogger(slog.NewTextHandler(orStderr(w), &slog.HandlerOptions{Level: level}))
}

// NoopLogger creates a Logger that discards all log output.
func NoopLogger() *Logger {
	return NewLogger(slog.DiscardHandler)
}

func orStderr(w io.Writer) io.Writer {
	if w == nil {
		return os.Stderr
	}
	return w
}

// WithKey adds a schema key field to the logger.
func (l *Logger) WithKey(key string) *Logger {
	return &Logger{
		Logger: l.Logger.With("key", key),
	}
}

// WithPolicy adds a compatibility policy field to the logger.
func (l *Logger) WithPolicy(p Policy) *Logger {
	return &Logger{
		Logger: l.Logger.With("policy", p.String()),
	}
}

// WithCount adds a count field to the logger.
func (l *Logger) WithCount(count int) *Logger {
	return &Logger{
		Logger: l.Logger.With("count", count),
	}
}

// LogBuild logs the compilation of a record codec.
func (l *Logger) LogBuild(ctx context.Context, key string, layout schema.Layout, err error) {
	if err != nil {
		l.ErrorContext(ctx, "record codec build failed",
			"key", key,
			"error", err,
		)
	} else {
		l.DebugContext(ctx, "record codec built",
			"key", key,
			"size", layout.Size,
			"members", len(layout.Members),
		)
	}
}

// LogReplace logs a registered layout being superseded.
func (l *Logger) LogReplace(ctx context.Context, key string, registered, requested schema.Layout) {
	l.WarnContext(ctx, "registered layout replaced",
		"key", key,
		"registered", registered.String(),
		"requested", requested.String(),
	)
}

// LogConflict logs a requested layout rejected by the compatibility policy.
func (l *Logger) LogConflict(ctx context.Context, key string, policy Policy, rel schema.Compatibility) {
	l.WithPolicy(policy).WarnContext(ctx, "layout conflicts with registered layout",
		"key", key,
		"relation", rel.String(),
	)
}

// LogBatch logs a batch encode or decode.
func (l *Logger) LogBatch(ctx context.Context, op, key string, count int, err error) {
	if err != nil {
		l.ErrorContext(ctx, op+" failed",
			"key", key,
			"count", count,
			"error", err,
		)
	} else {
		l.DebugContext(ctx, op+" completed",
			"key", key,
			"count", count,
		)
	}
}
