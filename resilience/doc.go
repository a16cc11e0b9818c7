// Package resilience wraps memoized computations with failure handling.
//
// A memo cache never retries a failed computation on its own: a failure is
// returned to the caller and the key stays absent. When the computation
// talks to something unreliable, the policies in this package can be put
// in front of it before it is handed to the cache.
//
// # Patterns
//
//   - CircuitBreaker: stops calling a computation that keeps failing and
//     probes it again after a reset timeout.
//
//   - Retry: retries failed attempts with exponential or constant backoff.
//
//   - RateLimiter: token bucket limit on how often the computation runs.
//
//   - Bulkhead: bound on computations running at the same time. It
//     satisfies memo.Limiter and can be passed to memo.WithLimiter.
//
//   - Timeout: bound on how long one attempt may take.
//
// # Usage
//
//	exec := resilience.NewExecutor(
//	    resilience.WithRetry(resilience.NewRetry(resilience.RetryConfig{MaxAttempts: 3})),
//	    resilience.WithTimeout(2*time.Second),
//	)
//
//	cache := memo.NewConcurrent(resilience.Load(exec, fetchQuote))
//	quote, err := cache.Value(ctx, "ACME")
//
// The executor applies the rate limiter first, then the bulkhead, the
// circuit breaker, retry, and finally the per-attempt timeout.
package resilience
