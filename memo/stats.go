package memo

import "sync/atomic"

// Stats counts cache lookups.
type Stats struct {
	// Hits is the number of lookups answered from stored values.
	Hits uint64
	// Misses is the number of lookups that found no stored value.
	Misses uint64
	// Computes is the number of times the computation was invoked.
	Computes uint64
	// Failures is the number of computations that returned an error or panicked.
	Failures uint64
}

// HitRatio returns Hits / (Hits + Misses), or 0 when nothing was looked up.
func (s Stats) HitRatio() float64 {
	total := s.Hits + s.Misses
	if total == 0 {
		return 0
	}
	return float64(s.Hits) / float64(total)
}

// atomicStats is the goroutine-safe counterpart of Stats.
type atomicStats struct {
	hits     atomic.Uint64
	misses   atomic.Uint64
	computes atomic.Uint64
	failures atomic.Uint64
}

func (s *atomicStats) snapshot() Stats {
	return Stats{
		Hits:     s.hits.Load(),
		Misses:   s.misses.Load(),
		Computes: s.computes.Load(),
		Failures: s.failures.Load(),
	}
}
