package proxy

import (
	"bytes"
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/jonwraymond/mediaproxy/cache"
	"github.com/jonwraymond/mediaproxy/health"
	"github.com/jonwraymond/mediaproxy/observe"
	"github.com/jonwraymond/mediaproxy/resilience"
)

// ProxyVideoService is a VideoService that constructs the real service on
// first demand and memoizes downloads per (video ID, quality).
//
// Contract:
//   - Concurrency: safe for concurrent use.
//   - Context: values from the caller's context reach the real service, but
//     its cancellation does not. A delegated fetch is shared by every
//     concurrent miss on the key and finishes even if the caller that started
//     it gives up; bound it with WithExecutor and resilience.WithTimeout.
//     Each caller stops waiting when its own context is done.
//   - Errors: factory failures wrap ErrFactory, invalid results wrap
//     ErrContractViolation and real service errors are wrapped with %w.
//     No error is ever cached.
//   - Ownership: returned slices belong to the caller.
type ProxyVideoService struct {
	factory Factory
	store   cache.Store
	keyer   cache.Keyer
	mw      *observe.Middleware
	exec    *resilience.Executor
	name    string

	// mu serializes construction; service is set at most once.
	mu      sync.Mutex
	service VideoService
	ready   atomic.Bool

	statusMu sync.RWMutex
	lastErr  error

	flights singleflight.Group

	factoryCalls atomic.Int64
	fetches      atomic.Int64
	hits         atomic.Int64
	misses       atomic.Int64
}

// Stats is a snapshot of proxy counters.
type Stats struct {
	// FactoryCalls counts factory invocations, failed ones included.
	FactoryCalls int64
	// Fetches counts calls delegated to the real service.
	Fetches int64
	Hits    int64
	Misses  int64
	// Entries is the number of cached payloads.
	Entries int
}

// New creates a proxy around factory. The factory is not invoked.
func New(factory Factory, opts ...Option) (*ProxyVideoService, error) {
	if factory == nil {
		return nil, fmt.Errorf("%w: factory is nil", ErrInvalidArgument)
	}

	p := &ProxyVideoService{
		factory: factory,
		store:   cache.NewMemoryStore(),
		keyer:   cache.NewDefaultKeyer(),
		mw:      observe.NopMiddleware(),
		name:    DefaultName,
	}
	for _, opt := range opts {
		if err := opt(p); err != nil {
			return nil, err
		}
	}
	return p, nil
}

// DownloadCompressed returns the compressed payload for videoID at quality,
// serving repeated requests from the cache.
func (p *ProxyVideoService) DownloadCompressed(ctx context.Context, videoID, quality string) ([]byte, error) {
	key := cache.Key{VideoID: videoID, Quality: quality}
	meta := observe.FetchMeta{VideoID: videoID, Quality: quality}

	if data, ok := p.store.Get(key); ok {
		p.hits.Add(1)
		p.mw.RecordCacheLookup(ctx, meta, true)
		return bytes.Clone(data), nil
	}
	p.misses.Add(1)
	p.mw.RecordCacheLookup(ctx, meta, false)

	flight, err := p.keyer.Derive(key)
	if err != nil {
		flight = key.String()
	}

	// The flight outlives any single caller's cancellation; each caller
	// stops waiting on its own ctx.
	flightCtx := context.WithoutCancel(ctx)
	ch := p.flights.DoChan(flight, func() (any, error) {
		return p.fill(flightCtx, key, meta)
	})

	select {
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return bytes.Clone(res.Val.([]byte)), nil
	case <-ctx.Done():
		return nil, fmt.Errorf("proxy: download %s: %w", key, ctx.Err())
	}
}

// fill runs once per in-flight key. The store is re-checked because an
// earlier flight for the same key may have completed after our lookup.
func (p *ProxyVideoService) fill(ctx context.Context, key cache.Key, meta observe.FetchMeta) ([]byte, error) {
	if data, ok := p.store.Get(key); ok {
		return data, nil
	}

	svc, err := p.ensureService(ctx)
	if err != nil {
		return nil, err
	}

	fetch := p.mw.Wrap(func(ctx context.Context, meta observe.FetchMeta) ([]byte, error) {
		p.fetches.Add(1)
		data, err := svc.DownloadCompressed(ctx, meta.VideoID, meta.Quality)
		if err != nil {
			return nil, err
		}
		if data == nil {
			return nil, fmt.Errorf("%w: got nil slice", ErrContractViolation)
		}
		return data, nil
	})

	var data []byte
	err = p.exec.Execute(ctx, func(ctx context.Context) error {
		var ferr error
		data, ferr = fetch(ctx, meta)
		return ferr
	})
	if err != nil {
		return nil, fmt.Errorf("proxy: download %s: %w", key, err)
	}

	stored, _ := p.store.Add(key, data)
	return stored, nil
}

// ensureService returns the real service, invoking the factory if no
// service has been constructed yet.
func (p *ProxyVideoService) ensureService(ctx context.Context) (VideoService, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.service != nil {
		return p.service, nil
	}

	p.factoryCalls.Add(1)
	start := time.Now()
	svc, err := p.factory()
	switch {
	case err != nil:
		err = fmt.Errorf("%w: %w", ErrFactory, err)
	case svc == nil:
		err = fmt.Errorf("%w: factory returned nil service", ErrFactory)
	}
	p.mw.RecordConstruction(ctx, time.Since(start), err)

	p.statusMu.Lock()
	p.lastErr = err
	p.statusMu.Unlock()

	if err != nil {
		return nil, err
	}

	p.service = svc
	p.ready.Store(true)
	return svc, nil
}

// Initialized reports whether the real service has been constructed.
func (p *ProxyVideoService) Initialized() bool {
	return p.ready.Load()
}

// Stats returns a snapshot of the proxy counters.
func (p *ProxyVideoService) Stats() Stats {
	return Stats{
		FactoryCalls: p.factoryCalls.Load(),
		Fetches:      p.fetches.Load(),
		Hits:         p.hits.Load(),
		Misses:       p.misses.Load(),
		Entries:      p.store.Len(),
	}
}

// Name returns the health checker name.
func (p *ProxyVideoService) Name() string {
	return p.name
}

// Check reports Healthy once the real service exists, Degraded before the
// first construction attempt and Unhealthy after a failed attempt.
// Check never invokes the factory.
func (p *ProxyVideoService) Check(_ context.Context) health.Result {
	stats := p.Stats()
	details := map[string]any{
		"factory_calls": stats.FactoryCalls,
		"fetches":       stats.Fetches,
		"entries":       stats.Entries,
	}

	if p.Initialized() {
		return health.Healthy("video service constructed").WithDetails(details)
	}

	p.statusMu.RLock()
	lastErr := p.lastErr
	p.statusMu.RUnlock()

	if lastErr != nil {
		return health.Unhealthy("video service construction failed", lastErr).WithDetails(details)
	}
	return health.Degraded("video service not yet constructed").WithDetails(details)
}

var (
	_ VideoService   = (*ProxyVideoService)(nil)
	_ health.Checker = (*ProxyVideoService)(nil)
)
