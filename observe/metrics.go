package observe

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Metric names.
const (
	MetricFetchTotal         = "media.fetch.total"
	MetricFetchErrors        = "media.fetch.errors"
	MetricFetchDuration      = "media.fetch.duration_ms"
	MetricCacheHits          = "media.cache.hits"
	MetricCacheMisses        = "media.cache.misses"
	MetricServiceConstructed = "media.service.constructions"
)

// Metrics records proxy metrics.
//
// Contract:
// - Concurrency: implementations must be safe for concurrent use.
// - Context: must return quickly.
// - Errors: implementations must not panic.
type Metrics interface {
	// RecordFetch records a delegated fetch with duration and error status.
	RecordFetch(ctx context.Context, meta FetchMeta, duration time.Duration, err error)

	// RecordCacheLookup records a cache hit or miss.
	RecordCacheLookup(ctx context.Context, meta FetchMeta, hit bool)

	// RecordConstruction records one invocation of the service factory.
	RecordConstruction(ctx context.Context, duration time.Duration, err error)
}

type metricsImpl struct {
	totalCount   metric.Int64Counter
	errorCount   metric.Int64Counter
	durationHist metric.Float64Histogram
	hits         metric.Int64Counter
	misses       metric.Int64Counter
	constructed  metric.Int64Counter
}

// NewMetrics creates a Metrics instance with the given meter.
func NewMetrics(meter metric.Meter) (Metrics, error) {
	m := &metricsImpl{}
	var err error

	if m.totalCount, err = meter.Int64Counter(MetricFetchTotal,
		metric.WithDescription("Total number of delegated media fetches"),
		metric.WithUnit("{call}"),
	); err != nil {
		return nil, err
	}

	if m.errorCount, err = meter.Int64Counter(MetricFetchErrors,
		metric.WithDescription("Total number of failed delegated media fetches"),
		metric.WithUnit("{error}"),
	); err != nil {
		return nil, err
	}

	if m.durationHist, err = meter.Float64Histogram(MetricFetchDuration,
		metric.WithDescription("Delegated media fetch duration in milliseconds"),
		metric.WithUnit("ms"),
	); err != nil {
		return nil, err
	}

	if m.hits, err = meter.Int64Counter(MetricCacheHits,
		metric.WithDescription("Requests served from the proxy cache"),
		metric.WithUnit("{request}"),
	); err != nil {
		return nil, err
	}

	if m.misses, err = meter.Int64Counter(MetricCacheMisses,
		metric.WithDescription("Requests that missed the proxy cache"),
		metric.WithUnit("{request}"),
	); err != nil {
		return nil, err
	}

	if m.constructed, err = meter.Int64Counter(MetricServiceConstructed,
		metric.WithDescription("Invocations of the real service factory"),
		metric.WithUnit("{call}"),
	); err != nil {
		return nil, err
	}

	return m, nil
}

// RecordFetch records metrics for a delegated fetch.
// Only quality is attached; video IDs are unbounded.
func (m *metricsImpl) RecordFetch(ctx context.Context, meta FetchMeta, duration time.Duration, err error) {
	opt := metric.WithAttributes(attribute.String(AttrQuality, meta.Quality))

	m.totalCount.Add(ctx, 1, opt)
	if err != nil {
		m.errorCount.Add(ctx, 1, opt)
	}
	m.durationHist.Record(ctx, float64(duration.Microseconds())/1000, opt)
}

func (m *metricsImpl) RecordCacheLookup(ctx context.Context, meta FetchMeta, hit bool) {
	opt := metric.WithAttributes(attribute.String(AttrQuality, meta.Quality))
	if hit {
		m.hits.Add(ctx, 1, opt)
		return
	}
	m.misses.Add(ctx, 1, opt)
}

func (m *metricsImpl) RecordConstruction(ctx context.Context, _ time.Duration, err error) {
	m.constructed.Add(ctx, 1, metric.WithAttributes(attribute.Bool(AttrError, err != nil)))
}

type noopMetrics struct{}

// NopMetrics returns a Metrics implementation that records nothing.
func NopMetrics() Metrics {
	return noopMetrics{}
}

func (noopMetrics) RecordFetch(context.Context, FetchMeta, time.Duration, error) {}
func (noopMetrics) RecordCacheLookup(context.Context, FetchMeta, bool)           {}
func (noopMetrics) RecordConstruction(context.Context, time.Duration, error)     {}
