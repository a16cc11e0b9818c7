package health

import (
	"context"
	"encoding/json"
	"errors"
	"sync/atomic"
	"testing"
	"time"
)

func staticChecker(name string, r Result) Checker {
	return NewCheckerFunc(name, func(context.Context) Result { return r })
}

func TestNewAggregator(t *testing.T) {
	tests := []struct {
		name         string
		config       []AggregatorConfig
		wantTimeout  time.Duration
		wantParallel bool
	}{
		{"defaults", nil, 10 * time.Second, true},
		{"explicit", []AggregatorConfig{{Timeout: 5 * time.Second}}, 5 * time.Second, false},
		{"zero timeout", []AggregatorConfig{{Parallel: true}}, 10 * time.Second, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			agg := NewAggregator(tt.config...)
			if agg.config.Timeout != tt.wantTimeout || agg.config.Parallel != tt.wantParallel {
				t.Errorf("config = %+v", agg.config)
			}
		})
	}
}

func TestAggregator_RegisterUnregister(t *testing.T) {
	agg := NewAggregator()
	agg.Register("b", staticChecker("b", Healthy("ok")))
	agg.Register("a", staticChecker("a", Healthy("ok")))
	agg.Register("b", staticChecker("b", Degraded("replaced")))

	names := agg.CheckerNames()
	if len(names) != 2 || names[0] != "b" || names[1] != "a" {
		t.Errorf("CheckerNames() = %v, want [b a]", names)
	}

	r, err := agg.Check(context.Background(), "b")
	if err != nil || r.Message != "replaced" {
		t.Errorf("Check(b) = %+v, %v", r, err)
	}

	agg.Unregister("b")
	if _, err := agg.Check(context.Background(), "b"); !errors.Is(err, ErrCheckerNotFound) {
		t.Errorf("Check(b) after Unregister error = %v, want %v", err, ErrCheckerNotFound)
	}
	if names := agg.CheckerNames(); len(names) != 1 || names[0] != "a" {
		t.Errorf("CheckerNames() = %v, want [a]", names)
	}
}

func TestAggregator_CheckAll(t *testing.T) {
	for _, parallel := range []bool{true, false} {
		agg := NewAggregator(AggregatorConfig{Timeout: time.Second, Parallel: parallel})
		agg.Register("one", staticChecker("one", Healthy("ok")))
		agg.Register("two", staticChecker("two", Degraded("big")))

		results := agg.CheckAll(context.Background())
		if len(results) != 2 {
			t.Fatalf("parallel=%v: got %d results, want 2", parallel, len(results))
		}
		if results["two"].Status != StatusDegraded {
			t.Errorf("parallel=%v: two = %v", parallel, results["two"].Status)
		}
		if agg.OverallStatus(results) != StatusDegraded {
			t.Errorf("parallel=%v: overall = %v", parallel, agg.OverallStatus(results))
		}
	}
}

func TestAggregator_SequentialRunsOneAtATime(t *testing.T) {
	agg := NewAggregator(AggregatorConfig{Timeout: time.Second, Parallel: false})

	var running, peak atomic.Int32
	for _, name := range []string{"a", "b", "c"} {
		agg.Register(name, NewCheckerFunc(name, func(context.Context) Result {
			n := running.Add(1)
			if n > peak.Load() {
				peak.Store(n)
			}
			time.Sleep(5 * time.Millisecond)
			running.Add(-1)
			return Healthy("ok")
		}))
	}

	agg.CheckAll(context.Background())
	if peak.Load() != 1 {
		t.Errorf("peak concurrency = %d, want 1", peak.Load())
	}
}

func TestAggregator_CheckTimeout(t *testing.T) {
	agg := NewAggregator(AggregatorConfig{Timeout: 20 * time.Millisecond, Parallel: true})
	agg.Register("slow", NewCheckerFunc("slow", func(ctx context.Context) Result {
		time.Sleep(time.Second)
		return Healthy("too late")
	}))

	r := agg.CheckAll(context.Background())["slow"]
	if r.Status != StatusUnhealthy || !errors.Is(r.Error, ErrCheckTimeout) {
		t.Errorf("slow = %+v, want unhealthy timeout", r)
	}
}

func TestAggregator_OverallStatus(t *testing.T) {
	agg := NewAggregator()

	tests := []struct {
		name    string
		results map[string]Result
		want    Status
	}{
		{"empty", nil, StatusHealthy},
		{"all healthy", map[string]Result{"a": Healthy(""), "b": Healthy("")}, StatusHealthy},
		{"one degraded", map[string]Result{"a": Healthy(""), "b": Degraded("")}, StatusDegraded},
		{"unhealthy wins", map[string]Result{"a": Degraded(""), "b": Unhealthy("", nil)}, StatusUnhealthy},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := agg.OverallStatus(tt.results); got != tt.want {
				t.Errorf("OverallStatus() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestAggregator_Report(t *testing.T) {
	agg := NewAggregator()
	agg.Register("fib", NewEntriesChecker("fib", fixedSize(25), EntriesCheckerConfig{Warning: 10, Critical: 20}))
	agg.Register("workout", NewEntriesChecker("workout", fixedSize(1), EntriesCheckerConfig{}))

	report := agg.Report(context.Background())
	if report.Status != "unhealthy" {
		t.Errorf("Status = %q, want unhealthy", report.Status)
	}
	if report.Checks["fib"].Error == "" {
		t.Error("fib check should carry its error")
	}

	data, err := json.Marshal(report)
	if err != nil {
		t.Fatalf("json.Marshal() error = %v", err)
	}
	var decoded map[string]any
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("json.Unmarshal() error = %v", err)
	}
	checks, _ := decoded["checks"].(map[string]any)
	if len(checks) != 2 {
		t.Errorf("serialized checks = %v", decoded["checks"])
	}
}

func TestAggregator_AsChecker(t *testing.T) {
	agg := NewAggregator()
	agg.Register("a", staticChecker("a", Healthy("ok")))
	agg.Register("b", staticChecker("b", Degraded("big")))

	c := agg.Checker()
	if c.Name() != "aggregate" {
		t.Errorf("Name() = %q, want aggregate", c.Name())
	}
	r := c.Check(context.Background())
	if r.Status != StatusDegraded || r.Message != "some checks degraded" {
		t.Errorf("Check() = %v %q", r.Status, r.Message)
	}
	if len(r.Details) != 2 {
		t.Errorf("Details = %v", r.Details)
	}
}
