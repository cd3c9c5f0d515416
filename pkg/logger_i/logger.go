package logger_i

import (
	"context"
	"io"
	"log/slog"
	"os"

	"github.com/akolanti/newschat/internal/config"
)

// Logger resolves slog.Default on every call, so package level loggers pick up Init.
type Logger struct {
	args []any
}

func Init(level slog.Level, isProd bool) {
	InitWithWriter(os.Stdout, level, isProd)
}

func InitWithWriter(w io.Writer, level slog.Level, isProd bool) {
	options := &slog.HandlerOptions{
		Level: level,
	}

	var handler slog.Handler
	if isProd {
		handler = slog.NewJSONHandler(w, options)
	} else {
		handler = slog.NewTextHandler(w, options)
	}
	slog.SetDefault(slog.New(handler))
}

func NewLogger(section string) *Logger {
	return &Logger{
		args: []any{"component", section},
	}
}

// TraceID returns the trace id carried by ctx, or "" when there is none.
func TraceID(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	trace, _ := ctx.Value(config.TRACE_ID_KEY).(string)
	return trace
}

// WithTrace tags the logger with the trace id carried by ctx.
func (l *Logger) WithTrace(ctx context.Context) *Logger {
	return l.With("traceId", TraceID(ctx))
}

func (l *Logger) Info(msg string, args ...any) {
	l.log(slog.LevelInfo, msg, args...)
}

func (l *Logger) Error(msg string, args ...any) {
	l.log(slog.LevelError, msg, args...)
}

func (l *Logger) Warn(msg string, args ...any) {
	l.log(slog.LevelWarn, msg, args...)
}

func (l *Logger) Debug(msg string, args ...any) {
	l.log(slog.LevelDebug, msg, args...)
}

func (l *Logger) log(level slog.Level, msg string, args ...any) {
	base := slog.Default()
	if !base.Enabled(context.Background(), level) {
		return
	}
	base.With(l.args...).Log(context.Background(), level, msg, args...)
}

func (l *Logger) With(args ...any) *Logger {
	merged := make([]any, 0, len(l.args)+len(args))
	merged = append(merged, l.args...)
	merged = append(merged, args...)
	return &Logger{args: merged}
}
