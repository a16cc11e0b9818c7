package resilience_test

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jonwraymond/memoize/memo"
	"github.com/jonwraymond/memoize/resilience"
)

func ExampleNewCircuitBreaker() {
	cb := resilience.NewCircuitBreaker(resilience.CircuitBreakerConfig{
		MaxFailures:  2,
		ResetTimeout: time.Minute,
	})
	ctx := context.Background()

	fmt.Println("Initial state:", cb.State())

	for i := 0; i < 2; i++ {
		_ = cb.Execute(ctx, func(context.Context) error {
			return errors.New("upstream unavailable")
		})
	}
	fmt.Println("After failures:", cb.State())

	err := cb.Execute(ctx, func(context.Context) error { return nil })
	fmt.Println("Rejected:", errors.Is(err, resilience.ErrCircuitOpen))

	cb.Reset()
	fmt.Println("After reset:", cb.State())
	// Output:
	// Initial state: closed
	// After failures: open
	// Rejected: true
	// After reset: closed
}

func ExampleRetry_Execute() {
	r := resilience.NewRetry(resilience.RetryConfig{
		MaxAttempts:  3,
		InitialDelay: time.Millisecond,
	})

	attempts := 0
	err := r.Execute(context.Background(), func(context.Context) error {
		attempts++
		if attempts < 3 {
			return errors.New("transient")
		}
		return nil
	})

	fmt.Println("attempts:", attempts, "err:", err)
	// Output:
	// attempts: 3 err: <nil>
}

func ExampleLoad() {
	exec := resilience.NewExecutor(
		resilience.WithRetry(resilience.NewRetry(resilience.RetryConfig{
			MaxAttempts:  2,
			InitialDelay: time.Millisecond,
		})),
		resilience.WithTimeout(time.Second),
	)

	failedOnce := false
	price := func(_ context.Context, sku string) (int, error) {
		if !failedOnce {
			failedOnce = true
			return 0, errors.New("pricing service hiccup")
		}
		return len(sku) * 100, nil
	}

	cache := memo.NewConcurrent(resilience.Load(exec, price))

	ctx := context.Background()
	v, err := cache.Value(ctx, "apple")
	fmt.Println(v, err)
	// Output:
	// 500 <nil>
}

func ExampleBulkhead() {
	b := resilience.NewBulkhead(resilience.BulkheadConfig{MaxConcurrent: 2})

	cache := memo.NewConcurrent(func(_ context.Context, n int) (int, error) {
		return n * 2, nil
	}, memo.WithLimiter(b))

	v, _ := cache.Value(context.Background(), 21)
	fmt.Println(v, b.Metrics().MaxActive)
	// Output:
	// 42 1
}
