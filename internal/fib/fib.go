// Package fib computes Fibonacci numbers with a memoized recursion.
package fib

import (
	"errors"
	"fmt"

	"github.com/jonwraymond/memoize/memo"
)

// MaxN is the largest n whose Fibonacci number fits in a uint64.
const MaxN = 93

// ErrOverflow is returned for n > MaxN.
var ErrOverflow = errors.New("fib: result overflows uint64")

// Sequence remembers every Fibonacci number it has computed.
// It is not safe for concurrent use.
type Sequence struct {
	cache *memo.Cache[int, uint64]
}

// NewSequence returns an empty Sequence.
func NewSequence() *Sequence {
	s := &Sequence{}
	s.cache = memo.New(s.compute)
	return s
}

// Nth returns the nth Fibonacci number, with Nth(1) == Nth(2) == 1.
// Nth(n) is 0 for n <= 0.
func (s *Sequence) Nth(n int) (uint64, error) {
	return s.cache.Value(n)
}

func (s *Sequence) compute(n int) (uint64, error) {
	switch {
	case n <= 0:
		return 0, nil
	case n <= 2:
		return 1, nil
	case n > MaxN:
		return 0, fmt.Errorf("%w: n=%d, max %d", ErrOverflow, n, MaxN)
	}

	a, err := s.cache.Value(n - 1)
	if err != nil {
		return 0, err
	}
	b, err := s.cache.Value(n - 2)
	if err != nil {
		return 0, err
	}
	return a + b, nil
}

// Len returns the number of remembered values.
func (s *Sequence) Len() int {
	return s.cache.Len()
}

// Stats returns the underlying cache counters.
func (s *Sequence) Stats() memo.Stats {
	return s.cache.Stats()
}

// Nth computes the nth Fibonacci number with a fresh Sequence.
func Nth(n int) (uint64, error) {
	return NewSequence().Nth(n)
}
