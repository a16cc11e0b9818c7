package memo

// ComputeFunc is the computation wrapped by a Cache.
//
// It is presumed pure: the same key always yields the same value. The cache
// does not enforce this; for an impure function the first successful result
// for a key is the one remembered.
type ComputeFunc[K comparable, V any] func(key K) (V, error)

// Cache memoizes a single-argument computation per key.
//
// Contract:
//   - Evaluation: the computation succeeds at most once per distinct key.
//   - Errors: computation errors are returned unchanged and never stored.
//   - Panics: a panic propagates to the caller of Value; the key is not stored.
//   - Concurrency: not safe for concurrent use. Use Concurrent, or guard
//     calls to Value with a mutex.
type Cache[K comparable, V any] struct {
	compute ComputeFunc[K, V]
	values  map[K]V
	stats   Stats
}

// New creates a cache bound to fn.
func New[K comparable, V any](fn ComputeFunc[K, V]) *Cache[K, V] {
	return &Cache[K, V]{
		compute: fn,
		values:  make(map[K]V),
	}
}

// NewPure creates a cache bound to a computation that cannot fail.
func NewPure[K comparable, V any](fn func(K) V) *Cache[K, V] {
	if fn == nil {
		return New[K, V](nil)
	}
	return New(func(key K) (V, error) {
		return fn(key), nil
	})
}

// Value returns the value for key, computing and storing it on first use.
//
// The map is written only after the computation returns, so the computation
// may itself call Value for other keys (recursive memoization).
func (c *Cache[K, V]) Value(key K) (V, error) {
	if v, ok := c.values[key]; ok {
		c.stats.Hits++
		return v, nil
	}
	c.stats.Misses++

	if c.compute == nil {
		var zero V
		return zero, ErrNilCompute
	}

	c.stats.Computes++
	returned := false
	defer func() {
		if !returned {
			c.stats.Failures++
		}
	}()
	v, err := c.compute(key)
	returned = true
	if err != nil {
		c.stats.Failures++
		var zero V
		return zero, err
	}

	c.values[key] = v
	return v, nil
}

// Len returns the number of stored values.
func (c *Cache[K, V]) Len() int {
	return len(c.values)
}

// Contains reports whether a value is stored for key. It never computes.
func (c *Cache[K, V]) Contains(key K) bool {
	_, ok := c.values[key]
	return ok
}

// Stats returns a snapshot of the lookup counters.
func (c *Cache[K, V]) Stats() Stats {
	return c.stats
}
