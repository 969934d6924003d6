package baseline

import (
	"time"

	"github.com/ot-nemoto/s3-secure-baseline/pkg/accesslog"
	"github.com/ot-nemoto/s3-secure-baseline/pkg/policy"
)

// Status is the per-dimension outcome state of a bucket after one pass.
type Status string

const (
	// StatusApplied indicates the dimension is compliant (already was, or an
	// apply write just made it so).
	StatusApplied Status = "applied"

	// StatusNeedsChange indicates configuration exists but differs from the
	// canonical shape; only reported, never written, in dry-run.
	StatusNeedsChange Status = "needs_change"

	// StatusNotApplied indicates the dimension is entirely unconfigured.
	StatusNotApplied Status = "not_applied"

	// StatusSkipped indicates the dimension was excluded by a mode flag.
	// Distinct from StatusNotApplied and excluded from failure aggregation.
	StatusSkipped Status = "skipped"

	// StatusError indicates a read or write against the store failed for
	// this dimension.
	StatusError Status = "error"
)

// Dimension names one of the two reconciled properties.
type Dimension string

const (
	// DimensionPolicy is the deny-insecure-transport bucket policy dimension.
	DimensionPolicy Dimension = "policy"

	// DimensionLogging is the server access logging dimension.
	DimensionLogging Dimension = "logging"
)

// DimensionResult is the outcome of one dimension for one bucket.
type DimensionResult struct {
	// Status is the final status after this run.
	Status Status `json:"status"`

	// Error holds the error detail when Status is StatusError.
	Error string `json:"error,omitempty"`
}

// PolicyDiff captures the before/after policy documents when display of
// pending changes is requested. Before is nil when no policy was attached.
type PolicyDiff struct {
	Before *policy.Document `json:"before"`
	After  *policy.Document `json:"after"`
}

// LoggingDiff captures the before/after logging configuration when display
// of pending changes is requested. Before is nil when logging was disabled.
type LoggingDiff struct {
	Before *accesslog.Config `json:"before"`
	After  *accesslog.Config `json:"after"`
}

// Outcome is the reconciliation result for one bucket.
type Outcome struct {
	// Bucket is the bucket name.
	Bucket string `json:"bucket"`

	// Policy is the deny-insecure-transport dimension result.
	Policy DimensionResult `json:"policy"`

	// Logging is the access logging dimension result.
	Logging DimensionResult `json:"logging"`

	// PolicyDiff is populated when policy display is requested and a change
	// is pending.
	PolicyDiff *PolicyDiff `json:"policy_diff,omitempty"`

	// LoggingDiff is populated when logging display is requested and a
	// change is pending.
	LoggingDiff *LoggingDiff `json:"logging_diff,omitempty"`
}

// Succeeded returns true if every processed dimension ended applied.
// Skipped dimensions do not count against success.
func (o Outcome) Succeeded() bool {
	for _, d := range []DimensionResult{o.Policy, o.Logging} {
		if d.Status == StatusSkipped {
			continue
		}
		if d.Status != StatusApplied {
			return false
		}
	}
	return true
}

// Failed returns true if any dimension ended in error.
func (o Outcome) Failed() bool {
	return o.Policy.Status == StatusError || o.Logging.Status == StatusError
}

// StatusCounts aggregates per-status bucket counts for one dimension.
type StatusCounts struct {
	Applied     int `json:"applied"`
	NeedsChange int `json:"needs_change"`
	NotApplied  int `json:"not_applied"`
	Skipped     int `json:"skipped"`
	Errors      int `json:"errors"`
}

// add increments the counter matching st.
func (c *StatusCounts) add(st Status) {
	switch st {
	case StatusApplied:
		c.Applied++
	case StatusNeedsChange:
		c.NeedsChange++
	case StatusNotApplied:
		c.NotApplied++
	case StatusSkipped:
		c.Skipped++
	case StatusError:
		c.Errors++
	}
}

// Summary aggregates a run's outcomes.
type Summary struct {
	// Total is the number of buckets processed.
	Total int `json:"total"`

	// Policy counts statuses across the policy dimension.
	Policy StatusCounts `json:"policy"`

	// Logging counts statuses across the logging dimension.
	Logging StatusCounts `json:"logging"`

	// Succeeded is the number of buckets with every processed dimension
	// applied.
	Succeeded int `json:"succeeded"`

	// PartialFailures is the number of buckets with at least one
	// non-applied or errored dimension.
	PartialFailures int `json:"partial_failures"`
}

// Summarize aggregates outcomes into a summary.
func Summarize(outcomes []Outcome) Summary {
	s := Summary{Total: len(outcomes)}
	for _, o := range outcomes {
		s.Policy.add(o.Policy.Status)
		s.Logging.add(o.Logging.Status)
		if o.Succeeded() {
			s.Succeeded++
		} else {
			s.PartialFailures++
		}
	}
	return s
}

// Report is the full result of one reconciliation pass.
type Report struct {
	// RunID uniquely identifies this pass.
	RunID string `json:"run_id"`

	// AccountID is the account the pass ran against.
	AccountID string `json:"account_id"`

	// LogSink is the canonical log-sink bucket name.
	LogSink string `json:"log_sink"`

	// DryRun records whether writes were suppressed.
	DryRun bool `json:"dry_run"`

	// StartedAt is when the pass started.
	StartedAt time.Time `json:"started_at"`

	// CompletedAt is when the pass finished.
	CompletedAt time.Time `json:"completed_at"`

	// Outcomes lists per-bucket results in worklist order.
	Outcomes []Outcome `json:"outcomes"`

	// Summary aggregates the outcomes.
	Summary Summary `json:"summary"`
}

// HasFailures returns true if any bucket ended with an errored dimension.
func (r *Report) HasFailures() bool {
	for _, o := range r.Outcomes {
		if o.Failed() {
			return true
		}
	}
	return false
}
