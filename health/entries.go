package health

import (
	"context"
	"fmt"
)

// Sizer reports how many entries a cache holds. memo.Cache, memo.Concurrent
// and memo.Keyed all satisfy it.
type Sizer interface {
	Len() int
}

// EntriesCheckerConfig configures the entry-count checker.
type EntriesCheckerConfig struct {
	// Warning is the entry count at which the cache is reported degraded.
	// Default: 10,000
	Warning int

	// Critical is the entry count at which the cache is reported unhealthy.
	// Default: 10 × Warning
	Critical int
}

// EntriesChecker reports a cache's growth against fixed thresholds.
type EntriesChecker struct {
	name   string
	cache  Sizer
	config EntriesCheckerConfig
}

// NewEntriesChecker creates a checker named name over cache.
func NewEntriesChecker(name string, cache Sizer, config EntriesCheckerConfig) *EntriesChecker {
	if config.Warning <= 0 {
		config.Warning = 10_000
	}
	if config.Critical <= config.Warning {
		config.Critical = config.Warning * 10
	}
	return &EntriesChecker{name: name, cache: cache, config: config}
}

// Name returns the name of this checker.
func (c *EntriesChecker) Name() string {
	return c.name
}

// Check compares the current entry count to the thresholds.
func (c *EntriesChecker) Check(ctx context.Context) Result {
	if err := ctx.Err(); err != nil {
		return Unhealthy("context cancelled", err)
	}

	n := c.cache.Len()
	details := map[string]any{
		"entries":  n,
		"warning":  c.config.Warning,
		"critical": c.config.Critical,
	}

	switch {
	case n >= c.config.Critical:
		err := fmt.Errorf("%w: %d entries, critical at %d", ErrCheckFailed, n, c.config.Critical)
		return Unhealthy("cache size critical", err).WithDetails(details)
	case n >= c.config.Warning:
		return Degraded(fmt.Sprintf("cache holds %d entries", n)).WithDetails(details)
	default:
		return Healthy(fmt.Sprintf("cache holds %d entries", n)).WithDetails(details)
	}
}

// SizerFunc adapts a function to Sizer.
type SizerFunc func() int

// Len calls f.
func (f SizerFunc) Len() int { return f() }
