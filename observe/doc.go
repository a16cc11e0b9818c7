// Package observe provides observability primitives for memoized computations.
//
// It traces and times the computations behind a cache, counts lookup hits and
// misses, and writes structured logs. It performs no caching itself: callers
// wrap their computation with Wrap and hand Middleware.Recorder to a
// memo.Concurrent cache.
package observe
