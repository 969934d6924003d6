package stores

import (
	"context"

	"github.com/ot-nemoto/s3-secure-baseline/pkg/baseline"
)

// RecordReport converts a reconciliation report into history records and
// persists them.
func RecordReport(ctx context.Context, s Store, report *baseline.Report) error {
	run := &RunRecord{
		ID:              report.RunID,
		AccountID:       report.AccountID,
		DryRun:          report.DryRun,
		StartedAt:       report.StartedAt,
		CompletedAt:     report.CompletedAt,
		Total:           report.Summary.Total,
		Succeeded:       report.Summary.Succeeded,
		PartialFailures: report.Summary.PartialFailures,
	}

	outcomes := make([]OutcomeRecord, 0, len(report.Outcomes))
	for _, o := range report.Outcomes {
		rec := OutcomeRecord{
			RunID:         report.RunID,
			Bucket:        o.Bucket,
			PolicyStatus:  string(o.Policy.Status),
			LoggingStatus: string(o.Logging.Status),
		}
		if o.Policy.Error != "" {
			msg := o.Policy.Error
			rec.PolicyError = &msg
		}
		if o.Logging.Error != "" {
			msg := o.Logging.Error
			rec.LoggingError = &msg
		}
		outcomes = append(outcomes, rec)
	}

	return s.RecordRun(ctx, run, outcomes)
}
