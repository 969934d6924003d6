package stores

import (
	"context"
	"time"
)

// RunRecord is one recorded reconciliation pass.
type RunRecord struct {
	ID              string    `json:"id"`
	AccountID       string    `json:"account_id"`
	DryRun          bool      `json:"dry_run"`
	StartedAt       time.Time `json:"started_at"`
	CompletedAt     time.Time `json:"completed_at"`
	Total           int       `json:"total"`
	Succeeded       int       `json:"succeeded"`
	PartialFailures int       `json:"partial_failures"`
	CreatedAt       time.Time `json:"created_at"`
}

// OutcomeRecord is one bucket's result within a recorded run.
type OutcomeRecord struct {
	RunID         string  `json:"run_id"`
	Bucket        string  `json:"bucket"`
	PolicyStatus  string  `json:"policy_status"`
	LoggingStatus string  `json:"logging_status"`
	PolicyError   *string `json:"policy_error,omitempty"`
	LoggingError  *string `json:"logging_error,omitempty"`
}

// Store defines the run-history persistence layer. Recording is optional
// and strictly write-after-the-fact: the reconciliation itself never reads
// from it.
type Store interface {
	// Lifecycle
	Init(ctx context.Context) error
	Close() error
	Migrate(ctx context.Context) error

	// RecordRun persists a run and its per-bucket outcomes atomically.
	RecordRun(ctx context.Context, run *RunRecord, outcomes []OutcomeRecord) error

	// GetRun retrieves one run and its outcomes.
	GetRun(ctx context.Context, id string) (*RunRecord, []OutcomeRecord, error)

	// ListRuns returns recorded runs, newest first.
	ListRuns(ctx context.Context, limit, offset int) ([]*RunRecord, error)
}
