package observe

import (
	"context"
	"io"
	"os"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/trace"
)

// ParseLogLevel parses a string log level. Unknown values map to info.
func ParseLogLevel(s string) zerolog.Level {
	switch s {
	case "debug":
		return zerolog.DebugLevel
	case "warn":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}

// structuredLogger is a JSON logger backed by zerolog.
type structuredLogger struct {
	zl zerolog.Logger
}

// NewLogger creates a new structured logger writing to stderr.
func NewLogger(level string) Logger {
	return NewLoggerWithWriter(level, os.Stderr)
}

// NewLoggerWithWriter creates a new structured logger with a custom writer.
func NewLoggerWithWriter(level string, w io.Writer) Logger {
	zl := zerolog.New(zerolog.SyncWriter(w)).
		Level(ParseLogLevel(level)).
		With().
		Timestamp().
		Logger()
	return &structuredLogger{zl: zl}
}

// With returns a logger with fetch context attached.
func (l *structuredLogger) With(meta FetchMeta) Logger {
	return &structuredLogger{
		zl: l.zl.With().
			Str(AttrVideoID, meta.VideoID).
			Str(AttrQuality, meta.Quality).
			Logger(),
	}
}

func (l *structuredLogger) Info(ctx context.Context, msg string, fields ...Field) {
	l.log(ctx, zerolog.InfoLevel, msg, fields)
}

func (l *structuredLogger) Warn(ctx context.Context, msg string, fields ...Field) {
	l.log(ctx, zerolog.WarnLevel, msg, fields)
}

func (l *structuredLogger) Error(ctx context.Context, msg string, fields ...Field) {
	l.log(ctx, zerolog.ErrorLevel, msg, fields)
}

func (l *structuredLogger) Debug(ctx context.Context, msg string, fields ...Field) {
	l.log(ctx, zerolog.DebugLevel, msg, fields)
}

func (l *structuredLogger) log(ctx context.Context, level zerolog.Level, msg string, fields []Field) {
	event := l.zl.WithLevel(level)
	if event == nil {
		return
	}

	for _, f := range fields {
		if isRedactedField(f.Key) {
			event = event.Str(f.Key, "[REDACTED]")
			continue
		}
		event = event.Interface(f.Key, f.Value)
	}

	if ctx != nil {
		if sc := trace.SpanContextFromContext(ctx); sc.IsValid() {
			event = event.
				Str("trace_id", sc.TraceID().String()).
				Str("span_id", sc.SpanID().String())
		}
	}

	event.Msg(msg)
}

var redactedKeys = func() map[string]bool {
	m := make(map[string]bool, len(RedactedFields))
	for _, k := range RedactedFields {
		m[k] = true
	}
	return m
}()

func isRedactedField(key string) bool {
	return redactedKeys[key]
}

type nopLogger struct{}

// NopLogger returns a logger that discards everything.
func NopLogger() Logger {
	return nopLogger{}
}

func (nopLogger) Info(context.Context, string, ...Field)  {}
func (nopLogger) Warn(context.Context, string, ...Field)  {}
func (nopLogger) Error(context.Context, string, ...Field) {}
func (nopLogger) Debug(context.Context, string, ...Field) {}
func (l nopLogger) With(FetchMeta) Logger                 { return l }

var (
	_ Logger = (*structuredLogger)(nil)
	_ Logger = nopLogger{}
)
