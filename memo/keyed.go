package memo

import "fmt"

// Keyed memoizes a computation whose input is not comparable.
//
// Each input is reduced to a string key by a Keyer; inputs that produce the
// same key share one stored value. Like Cache, Keyed is not safe for
// concurrent use.
type Keyed[In any, V any] struct {
	name    string
	keyer   Keyer
	compute func(In) (V, error)
	values  map[string]V
	stats   Stats
}

// NewKeyed creates a keyed cache. If keyer is nil, DefaultKeyer is used.
func NewKeyed[In any, V any](name string, keyer Keyer, fn func(In) (V, error)) *Keyed[In, V] {
	if keyer == nil {
		keyer = NewDefaultKeyer()
	}
	return &Keyed[In, V]{
		name:    name,
		keyer:   keyer,
		compute: fn,
		values:  make(map[string]V),
	}
}

// Value returns the value for in, computing and storing it on first use.
// A key that cannot be derived is reported as an error wrapping ErrInvalidKey
// and nothing is computed.
func (k *Keyed[In, V]) Value(in In) (V, error) {
	var zero V

	key, err := k.Key(in)
	if err != nil {
		return zero, err
	}

	if v, ok := k.values[key]; ok {
		k.stats.Hits++
		return v, nil
	}
	k.stats.Misses++

	if k.compute == nil {
		return zero, ErrNilCompute
	}

	k.stats.Computes++
	returned := false
	defer func() {
		if !returned {
			k.stats.Failures++
		}
	}()
	v, err := k.compute(in)
	returned = true
	if err != nil {
		k.stats.Failures++
		return zero, err
	}
	k.values[key] = v
	return v, nil
}

// Key returns the validated key for in.
func (k *Keyed[In, V]) Key(in In) (string, error) {
	key, err := k.keyer.Key(k.name, in)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrInvalidKey, err)
	}
	if err := ValidateKey(key); err != nil {
		return "", err
	}
	return key, nil
}

// Len returns the number of stored values.
func (k *Keyed[In, V]) Len() int {
	return len(k.values)
}

// Stats returns a snapshot of the lookup counters.
func (k *Keyed[In, V]) Stats() Stats {
	return k.stats
}
