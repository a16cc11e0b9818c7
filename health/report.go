package health

import (
	"context"
	"time"
)

// Report is a serializable summary of a CheckAll run.
type Report struct {
	Status    string                 `json:"status"`
	Timestamp string                 `json:"timestamp"`
	Checks    map[string]CheckReport `json:"checks,omitempty"`

	results map[string]Result
}

// CheckReport is the serializable form of one Result.
type CheckReport struct {
	Status   string         `json:"status"`
	Message  string         `json:"message,omitempty"`
	Duration string         `json:"duration,omitempty"`
	Details  map[string]any `json:"details,omitempty"`
	Error    string         `json:"error,omitempty"`
}

// Report runs every check and summarizes the results.
func (a *Aggregator) Report(ctx context.Context) Report {
	results := a.CheckAll(ctx)

	report := Report{
		Status:    a.OverallStatus(results).String(),
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Checks:    make(map[string]CheckReport, len(results)),
		results:   results,
	}
	for name, result := range results {
		check := CheckReport{
			Status:   result.Status.String(),
			Message:  result.Message,
			Duration: result.Duration.String(),
			Details:  result.Details,
		}
		if result.Error != nil {
			check.Error = result.Error.Error()
		}
		report.Checks[name] = check
	}
	return report
}
