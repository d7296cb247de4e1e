// Package resilience guards calls to the real video service.
//
// The proxy never retries on its own; these patterns bound how long, how
// often and how concurrently a delegated fetch may run:
//
//   - Circuit Breaker: stops calling an upstream that keeps failing
//     (backed by sony/gobreaker).
//
//   - Rate Limiter: token bucket on delegated fetches
//     (backed by golang.org/x/time/rate).
//
//   - Bulkhead: caps concurrent delegated fetches
//     (backed by golang.org/x/sync/semaphore).
//
//   - Timeout: bounds a single delegated fetch.
//
// # Usage
//
//	executor := resilience.NewExecutor(
//	    resilience.WithRateLimiter(resilience.NewRateLimiter(resilience.RateLimiterConfig{Rate: 50, Burst: 10})),
//	    resilience.WithBulkhead(resilience.NewBulkhead(resilience.BulkheadConfig{MaxConcurrent: 4})),
//	    resilience.WithCircuitBreaker(resilience.NewCircuitBreaker(resilience.CircuitBreakerConfig{Name: "video-service"})),
//	    resilience.WithTimeout(10*time.Second),
//	)
//
//	err := executor.Execute(ctx, func(ctx context.Context) error {
//	    data, err = svc.DownloadCompressed(ctx, id, quality)
//	    return err
//	})
package resilience
