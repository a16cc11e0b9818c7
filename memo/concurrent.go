package memo

import (
	"context"
	"runtime/debug"
	"strconv"
	"sync"

	"golang.org/x/sync/singleflight"
)

// LoadFunc is the context-aware computation wrapped by Concurrent.
type LoadFunc[K comparable, V any] func(ctx context.Context, key K) (V, error)

// Recorder receives one call per lookup.
//
// Contract:
// - Concurrency: implementations must be safe for concurrent use.
// - Errors: recording is best-effort and must not panic.
type Recorder interface {
	RecordLookup(ctx context.Context, hit bool)
}

// Limiter bounds how many computations run at once.
// Execute must not return before op has returned.
type Limiter interface {
	Execute(ctx context.Context, op func(context.Context) error) error
}

// Option configures a Concurrent cache.
type Option func(*options)

type options struct {
	recorder Recorder
	limiter  Limiter
}

// WithRecorder reports every lookup as a hit or a miss.
func WithRecorder(r Recorder) Option {
	return func(o *options) {
		if r != nil {
			o.recorder = r
		}
	}
}

// WithLimiter runs computations through l.
func WithLimiter(l Limiter) Option {
	return func(o *options) {
		o.limiter = l
	}
}

type nopRecorder struct{}

func (nopRecorder) RecordLookup(context.Context, bool) {}

// Concurrent is a memoizing cache that is safe for concurrent use.
//
// Callers asking for the same missing key share a single in-flight
// computation. The flight re-checks stored values before computing, so a
// key is computed successfully at most once even across flights.
//
// Contract:
//   - Context: Value returns ctx.Err() as soon as the caller's context ends.
//     The computation itself runs with a context that keeps the caller's
//     values but not its cancellation, so other waiters still get a result.
//   - Errors: an error is shared by every waiter of that flight and is not stored.
//   - Panics: recovered and returned as *PanicError; the key is not stored.
//   - Recursion: a computation may ask for other keys, but asking for its own
//     key deadlocks.
type Concurrent[K comparable, V any] struct {
	compute LoadFunc[K, V]
	opts    options

	mu     sync.RWMutex
	values map[K]V
	// flights maps a key with a computation in progress to its flight id.
	// Ids are never reused, so distinct keys never share a flight.
	flights map[K]uint64
	nextID  uint64

	group singleflight.Group
	stats atomicStats
}

// NewConcurrent creates a goroutine-safe cache bound to fn.
func NewConcurrent[K comparable, V any](fn LoadFunc[K, V], opts ...Option) *Concurrent[K, V] {
	o := options{recorder: nopRecorder{}}
	for _, opt := range opts {
		opt(&o)
	}
	return &Concurrent[K, V]{
		compute: fn,
		opts:    o,
		values:  make(map[K]V),
		flights: make(map[K]uint64),
	}
}

// Value returns the value for key, computing and storing it on first use.
func (c *Concurrent[K, V]) Value(ctx context.Context, key K) (V, error) {
	var zero V

	if v, ok := c.load(key); ok {
		c.stats.hits.Add(1)
		c.opts.recorder.RecordLookup(ctx, true)
		return v, nil
	}
	c.stats.misses.Add(1)
	c.opts.recorder.RecordLookup(ctx, false)

	if c.compute == nil {
		return zero, ErrNilCompute
	}
	if err := ctx.Err(); err != nil {
		return zero, err
	}

	flightCtx := context.WithoutCancel(ctx)
	id := c.flightID(key)
	ch := c.group.DoChan(strconv.FormatUint(id, 10), func() (any, error) {
		defer c.land(key, id)
		if v, ok := c.load(key); ok {
			return v, nil
		}
		return c.run(flightCtx, key)
	})

	select {
	case res := <-ch:
		if res.Err != nil {
			return zero, res.Err
		}
		v, _ := res.Val.(V)
		return v, nil
	case <-ctx.Done():
		return zero, ctx.Err()
	}
}

func (c *Concurrent[K, V]) run(ctx context.Context, key K) (v V, err error) {
	defer func() {
		if r := recover(); r != nil {
			var zero V
			v, err = zero, &PanicError{Value: r, Stack: debug.Stack()}
		}
		if err != nil {
			c.stats.failures.Add(1)
		}
	}()

	c.stats.computes.Add(1)
	if c.opts.limiter != nil {
		err = c.opts.limiter.Execute(ctx, func(ctx context.Context) error {
			var opErr error
			v, opErr = c.compute(ctx, key)
			return opErr
		})
	} else {
		v, err = c.compute(ctx, key)
	}
	if err != nil {
		var zero V
		return zero, err
	}

	c.mu.Lock()
	c.values[key] = v
	c.mu.Unlock()
	return v, nil
}

func (c *Concurrent[K, V]) load(key K) (V, bool) {
	c.mu.RLock()
	v, ok := c.values[key]
	c.mu.RUnlock()
	return v, ok
}

// Len returns the number of stored values.
func (c *Concurrent[K, V]) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.values)
}

// Contains reports whether a value is stored for key. It never computes.
func (c *Concurrent[K, V]) Contains(key K) bool {
	_, ok := c.load(key)
	return ok
}

// Stats returns a snapshot of the lookup counters.
func (c *Concurrent[K, V]) Stats() Stats {
	return c.stats.snapshot()
}

// flightID returns the id of the flight computing key, allocating one if
// none is in progress.
func (c *Concurrent[K, V]) flightID(key K) uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	if id, ok := c.flights[key]; ok {
		return id
	}
	c.nextID++
	c.flights[key] = c.nextID
	return c.nextID
}

// land retires flight id for key. A later miss starts a new flight.
func (c *Concurrent[K, V]) land(key K, id uint64) {
	c.mu.Lock()
	if c.flights[key] == id {
		delete(c.flights, key)
	}
	c.mu.Unlock()
}
