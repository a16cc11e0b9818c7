// Package health reports on the growth of memo caches.
//
// Memo caches never evict, so memory grows with every distinct key. The
// checks in this package turn a cache's entry count into a Status that a
// caller can log or act on.
//
// # Basic Usage
//
//	cache := memo.New(expensive)
//	check := health.NewEntriesChecker("fib", cache, health.EntriesCheckerConfig{
//	    Warning:  10_000,
//	    Critical: 100_000,
//	})
//
//	agg := health.NewAggregator()
//	agg.Register(check.Name(), check)
//
//	report := agg.Report(ctx)
//	log.Println(report.Status)
package health
