// Package memo provides memoizing caches for on-demand computations.
//
// A cache is bound to one computation at construction and remembers the
// result for every key it has been asked about. Results accumulate for the
// lifetime of the cache: nothing is evicted, expired or invalidated.
//
// Three shapes are provided:
//
//   - Cache: the sequential core. It holds no locks; callers serialize
//     concurrent use themselves.
//   - Concurrent: a goroutine-safe variant in which concurrent callers for
//     the same missing key share one in-flight computation.
//   - Keyed: memoizes computations whose input is not comparable (maps,
//     slices) by deriving a deterministic string key with a Keyer.
//
// Failed computations are never stored, so a later call for the same key
// computes again.
package memo
