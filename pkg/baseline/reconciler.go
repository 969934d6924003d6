package baseline

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/ot-nemoto/s3-secure-baseline/pkg/accesslog"
	"github.com/ot-nemoto/s3-secure-baseline/pkg/policy"
)

// MaxConcurrency bounds the worker pool; unconstrained parallelism against
// the bucket API is unsafe under its rate limits.
const MaxConcurrency = 16

// Options control one reconciliation pass.
type Options struct {
	// DryRun suppresses every write and records would-be outcomes.
	DryRun bool

	// PolicyOnly restricts the pass to the policy dimension; logging is
	// reported as skipped.
	PolicyOnly bool

	// LoggingOnly restricts the pass to the logging dimension; policy is
	// reported as skipped.
	LoggingOnly bool

	// ShowPolicy records before/after policy documents on outcomes with a
	// pending change.
	ShowPolicy bool

	// ShowLogging records before/after logging configs on outcomes with a
	// pending change.
	ShowLogging bool

	// Concurrency is the worker pool size; values outside [1, MaxConcurrency]
	// are clamped.
	Concurrency int
}

// Reconciler drives the per-bucket workflow: classify both dimensions,
// decide, optionally apply, record.
type Reconciler struct {
	client StorageClient
	opts   Options
	logger zerolog.Logger
}

// NewReconciler creates a reconciler over the given client.
func NewReconciler(client StorageClient, opts Options, logger zerolog.Logger) *Reconciler {
	if opts.Concurrency < 1 {
		opts.Concurrency = 1
	}
	if opts.Concurrency > MaxConcurrency {
		opts.Concurrency = MaxConcurrency
	}
	return &Reconciler{
		client: client,
		opts:   opts,
		logger: logger.With().Str("component", "reconciler").Logger(),
	}
}

// Run processes the worklist and returns the aggregated report. One bucket's
// failure never aborts the run; errors are recorded against that bucket's
// dimension and processing continues. Cancellation is honored between
// buckets, never between a bucket's two dimensions, so a policy/logging pair
// is never left half-applied.
func (r *Reconciler) Run(ctx context.Context, accountID string, worklist []string) *Report {
	target := accesslog.CanonicalTarget(accountID)
	report := &Report{
		RunID:     uuid.NewString(),
		AccountID: accountID,
		LogSink:   target.Bucket,
		DryRun:    r.opts.DryRun,
		StartedAt: time.Now(),
	}

	// Each worker writes only its own outcome slot, so the report stays in
	// worklist order without locking.
	outcomes := make([]Outcome, len(worklist))
	indexes := make(chan int)
	var wg sync.WaitGroup
	for w := 0; w < r.opts.Concurrency; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range indexes {
				outcomes[i] = r.reconcileBucket(ctx, worklist[i], target)
			}
		}()
	}

feed:
	for i := range worklist {
		select {
		case <-ctx.Done():
			break feed
		case indexes <- i:
		}
	}
	close(indexes)
	wg.Wait()

	// Buckets never started because of cancellation keep zero-valued
	// statuses; drop them from the report rather than misreporting.
	for _, o := range outcomes {
		if o.Bucket == "" {
			continue
		}
		report.Outcomes = append(report.Outcomes, o)
	}

	report.CompletedAt = time.Now()
	report.Summary = Summarize(report.Outcomes)
	return report
}

// reconcileBucket runs both dimensions for one bucket.
func (r *Reconciler) reconcileBucket(ctx context.Context, bucket string, target accesslog.Target) Outcome {
	r.logger.Debug().Str("bucket", bucket).Msg("Processing bucket")
	outcome := Outcome{Bucket: bucket}

	if r.opts.LoggingOnly {
		outcome.Policy = DimensionResult{Status: StatusSkipped}
	} else {
		outcome.Policy, outcome.PolicyDiff = r.reconcilePolicy(ctx, bucket)
	}

	if r.opts.PolicyOnly {
		outcome.Logging = DimensionResult{Status: StatusSkipped}
	} else {
		outcome.Logging, outcome.LoggingDiff = r.reconcileLogging(ctx, bucket, target)
	}

	return outcome
}

// reconcilePolicy classifies the bucket's policy and, outside dry-run,
// writes the merged document when a change is required.
func (r *Reconciler) reconcilePolicy(ctx context.Context, bucket string) (DimensionResult, *PolicyDiff) {
	current, err := r.client.GetBucketPolicy(ctx, bucket)
	if err != nil {
		readErr := NewReadError(bucket, "bucket policy", err)
		r.logger.Error().Err(readErr).Str("bucket", bucket).Msg("Policy read failed")
		return DimensionResult{Status: StatusError, Error: readErr.Error()}, nil
	}

	class := policy.Classify(current, bucket)
	if class == policy.ClassificationApplied {
		r.logger.Info().Str("bucket", bucket).Msg("Deny insecure transport policy already applied")
		return DimensionResult{Status: StatusApplied}, nil
	}

	merged := policy.Merge(current, bucket)
	var diff *PolicyDiff
	if r.opts.ShowPolicy {
		diff = &PolicyDiff{Before: current, After: merged}
	}

	if r.opts.DryRun {
		r.logger.Info().
			Str("bucket", bucket).
			Str("classification", string(class)).
			Msg("[dry-run] Would apply deny insecure transport policy")
		return DimensionResult{Status: Status(class)}, diff
	}

	if err := r.client.PutBucketPolicy(ctx, bucket, merged); err != nil {
		writeErr := NewWriteError(bucket, "bucket policy", err)
		r.logger.Error().Err(writeErr).Str("bucket", bucket).Msg("Policy write failed")
		return DimensionResult{Status: StatusError, Error: writeErr.Error()}, diff
	}

	r.logger.Info().Str("bucket", bucket).Msg("Applied deny insecure transport policy")
	return DimensionResult{Status: StatusApplied}, diff
}

// reconcileLogging classifies the bucket's access logging and, outside
// dry-run, replaces it with the canonical configuration when it differs.
func (r *Reconciler) reconcileLogging(ctx context.Context, bucket string, target accesslog.Target) (DimensionResult, *LoggingDiff) {
	current, err := r.client.GetBucketLogging(ctx, bucket)
	if err != nil {
		readErr := NewReadError(bucket, "logging configuration", err)
		r.logger.Error().Err(readErr).Str("bucket", bucket).Msg("Logging read failed")
		return DimensionResult{Status: StatusError, Error: readErr.Error()}, nil
	}

	class := accesslog.Classify(current, target)
	if class == accesslog.ClassificationApplied {
		r.logger.Info().Str("bucket", bucket).Msg("Access logging already configured")
		return DimensionResult{Status: StatusApplied}, nil
	}

	desired := target.Config()
	var diff *LoggingDiff
	if r.opts.ShowLogging {
		diff = &LoggingDiff{Before: current, After: &desired}
	}

	if class == accesslog.ClassificationNeedsChange {
		r.logger.Warn().
			Str("bucket", bucket).
			Str("current_target", current.TargetBucket).
			Str("canonical_target", target.Bucket).
			Msg("Access logging enabled but pointed at a non-canonical destination")
	}

	if r.opts.DryRun {
		r.logger.Info().
			Str("bucket", bucket).
			Str("classification", string(class)).
			Str("target", target.Bucket).
			Msg("[dry-run] Would configure access logging")
		return DimensionResult{Status: Status(class)}, diff
	}

	if err := r.client.PutBucketLogging(ctx, bucket, desired); err != nil {
		writeErr := NewWriteError(bucket, "logging configuration", err)
		r.logger.Error().Err(writeErr).Str("bucket", bucket).Msg("Logging write failed")
		return DimensionResult{Status: StatusError, Error: writeErr.Error()}, diff
	}

	r.logger.Info().
		Str("bucket", bucket).
		Str("target", target.Bucket).
		Str("prefix", target.Prefix).
		Msg("Configured access logging")
	return DimensionResult{Status: StatusApplied}, diff
}
