package observe

import (
	"context"
	"time"
)

// FetchFunc is the signature of a delegated media fetch.
type FetchFunc func(ctx context.Context, meta FetchMeta) ([]byte, error)

// Middleware wraps delegated fetches with tracing, metrics and logging.
//
// Contract:
//   - Concurrency: Wrap returns a thread-safe FetchFunc.
//   - Context: propagates context through tracing spans.
//   - Errors: errors from the wrapped function are recorded and returned unchanged.
//   - Ownership: payloads are passed through without modification.
type Middleware struct {
	tracer  Tracer
	metrics Metrics
	logger  Logger
}

// NewMiddleware creates a new Middleware with the given observability components.
// Nil components are replaced with no-op implementations.
func NewMiddleware(tracer Tracer, metrics Metrics, logger Logger) *Middleware {
	if tracer == nil {
		tracer = NopTracer()
	}
	if metrics == nil {
		metrics = NopMetrics()
	}
	if logger == nil {
		logger = NopLogger()
	}
	return &Middleware{
		tracer:  tracer,
		metrics: metrics,
		logger:  logger,
	}
}

// NopMiddleware returns a Middleware that records nothing.
func NopMiddleware() *Middleware {
	return NewMiddleware(nil, nil, nil)
}

// MiddlewareFromObserver creates a Middleware from an Observer.
func MiddlewareFromObserver(obs Observer) (*Middleware, error) {
	if obs == nil {
		return nil, ErrNilObserver
	}

	metrics, err := NewMetrics(obs.Meter())
	if err != nil {
		return nil, err
	}

	return NewMiddleware(NewTracer(obs.Tracer()), metrics, obs.Logger()), nil
}

// Wrap wraps a FetchFunc with tracing, metrics and logging.
func (m *Middleware) Wrap(fn FetchFunc) FetchFunc {
	return func(ctx context.Context, meta FetchMeta) ([]byte, error) {
		ctx, span := m.tracer.StartSpan(ctx, meta)

		start := time.Now()
		data, err := fn(ctx, meta)
		duration := time.Since(start)

		m.tracer.EndSpan(span, err)
		m.metrics.RecordFetch(ctx, meta, duration, err)

		logger := m.logger.With(meta)
		fields := []Field{
			{Key: "duration_ms", Value: float64(duration.Microseconds()) / 1000},
		}

		if err != nil {
			fields = append(fields, Field{Key: "error", Value: err.Error()})
			logger.Error(ctx, "media fetch failed", fields...)
		} else {
			fields = append(fields, Field{Key: "bytes", Value: len(data)})
			logger.Info(ctx, "media fetch completed", fields...)
		}

		return data, err
	}
}

// RecordCacheLookup records a cache hit or miss for meta.
func (m *Middleware) RecordCacheLookup(ctx context.Context, meta FetchMeta, hit bool) {
	m.metrics.RecordCacheLookup(ctx, meta, hit)
	if hit {
		m.logger.With(meta).Debug(ctx, "media cache hit")
	}
}

// RecordConstruction records one factory invocation.
func (m *Middleware) RecordConstruction(ctx context.Context, duration time.Duration, err error) {
	m.metrics.RecordConstruction(ctx, duration, err)

	fields := []Field{
		{Key: "duration_ms", Value: float64(duration.Microseconds()) / 1000},
	}
	if err != nil {
		fields = append(fields, Field{Key: "error", Value: err.Error()})
		m.logger.Warn(ctx, "video service construction failed", fields...)
		return
	}
	m.logger.Info(ctx, "video service constructed", fields...)
}
