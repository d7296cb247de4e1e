// Package proxy provides a lazily-constructed caching front for a video
// service.
//
// A ProxyVideoService stands in for a real VideoService that is expensive to
// construct. The real service is built through a Factory the first time a
// request misses the cache, and every successful download is memoized by
// (video ID, quality) for the lifetime of the proxy.
//
// # Basic Usage
//
//	videos, err := proxy.New(func() (proxy.VideoService, error) {
//	    return remote.NewClient(ctx, cfg)
//	})
//	if err != nil {
//	    return err
//	}
//
//	data, err := videos.DownloadCompressed(ctx, "intro", "low")
//
// # Guarantees
//
//   - Construction never calls the factory.
//   - The factory runs only on a cache miss and succeeds at most once. A
//     failed construction is reported as ErrFactory and retried by the next
//     miss.
//   - Each key is fetched from the real service at most once after success.
//     Concurrent misses on one key share a single delegated call.
//   - Stored bytes are private; callers always receive their own copy.
//   - Errors and results that are not byte sequences are never cached.
//
// # Composition
//
// Options attach a custom cache.Store, telemetry via observe.Middleware and
// a resilience.Executor around the delegated call:
//
//	videos, err := proxy.New(factory,
//	    proxy.WithObserver(obs),
//	    proxy.WithExecutor(resilience.NewExecutor(
//	        resilience.WithCircuitBreaker(resilience.NewCircuitBreaker(resilience.CircuitBreakerConfig{})),
//	        resilience.WithTimeout(10*time.Second),
//	    )),
//	)
package proxy
