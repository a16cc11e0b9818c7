package resilience

import (
	"context"
	"sync"
	"time"
)

// Executor composes the resilience patterns around one operation.
type Executor struct {
	circuitBreaker *CircuitBreaker
	retry          *Retry
	rateLimiter    *RateLimiter
	bulkhead       *Bulkhead
	timeout        *Timeout
}

// ExecutorOption configures an Executor.
type ExecutorOption func(*Executor)

// NewExecutor creates a new resilience executor.
func NewExecutor(opts ...ExecutorOption) *Executor {
	e := &Executor{}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// WithCircuitBreaker adds a circuit breaker to the executor.
func WithCircuitBreaker(cb *CircuitBreaker) ExecutorOption {
	return func(e *Executor) {
		e.circuitBreaker = cb
	}
}

// WithRetry adds retry logic to the executor.
func WithRetry(r *Retry) ExecutorOption {
	return func(e *Executor) {
		e.retry = r
	}
}

// WithRateLimiter adds rate limiting to the executor.
func WithRateLimiter(rl *RateLimiter) ExecutorOption {
	return func(e *Executor) {
		e.rateLimiter = rl
	}
}

// WithBulkhead adds a concurrency bound to the executor.
func WithBulkhead(b *Bulkhead) ExecutorOption {
	return func(e *Executor) {
		e.bulkhead = b
	}
}

// WithTimeout bounds every attempt to timeout.
func WithTimeout(timeout time.Duration) ExecutorOption {
	return func(e *Executor) {
		e.timeout = NewTimeout(TimeoutConfig{Timeout: timeout})
	}
}

// WithTimeoutConfig adds a preconfigured Timeout to the executor.
func WithTimeoutConfig(t *Timeout) ExecutorOption {
	return func(e *Executor) {
		e.timeout = t
	}
}

// Execute runs op through the configured patterns, outermost first:
// rate limiter, bulkhead, circuit breaker, retry, timeout.
// The timeout applies per attempt.
func (e *Executor) Execute(ctx context.Context, op func(context.Context) error) error {
	execute := op

	type layer interface {
		Execute(context.Context, func(context.Context) error) error
	}
	wrap := func(l layer) {
		inner := execute
		execute = func(ctx context.Context) error {
			return l.Execute(ctx, inner)
		}
	}

	if e.timeout != nil {
		wrap(e.timeout)
	}
	if e.retry != nil {
		wrap(e.retry)
	}
	if e.circuitBreaker != nil {
		wrap(e.circuitBreaker)
	}
	if e.bulkhead != nil {
		wrap(e.bulkhead)
	}
	if e.rateLimiter != nil {
		wrap(e.rateLimiter)
	}

	return execute(ctx)
}

// Call runs a value-returning op through e. On error the zero value is
// returned. A nil executor runs op directly.
func Call[V any](ctx context.Context, e *Executor, op func(context.Context) (V, error)) (V, error) {
	if e == nil {
		return op(ctx)
	}

	var (
		mu     sync.Mutex
		result V
	)
	err := e.Execute(ctx, func(ctx context.Context) error {
		v, err := op(ctx)
		if err != nil {
			return err
		}
		// Attempts abandoned by a timeout may still finish later.
		mu.Lock()
		result = v
		mu.Unlock()
		return nil
	})
	if err != nil {
		var zero V
		return zero, err
	}

	mu.Lock()
	defer mu.Unlock()
	return result, nil
}

// Load adapts a keyed computation so every run goes through e. The result
// is ready to hand to memo.NewConcurrent.
func Load[K, V any](e *Executor, fn func(context.Context, K) (V, error)) func(context.Context, K) (V, error) {
	return func(ctx context.Context, key K) (V, error) {
		return Call(ctx, e, func(ctx context.Context) (V, error) {
			return fn(ctx, key)
		})
	}
}
