package baseline

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/ot-nemoto/s3-secure-baseline/pkg/accesslog"
	"github.com/ot-nemoto/s3-secure-baseline/pkg/policy"
)

// EnsureLogSink guarantees the canonical log-sink bucket exists before the
// worklist is processed. An existing sink is left untouched; re-running
// performs no mutating calls. A missing sink is created with public access
// blocked and seeded with a two-statement policy: the log delivery allow
// statement and the managed deny statement, built through the same merge
// path as every other bucket.
//
// In dry-run the creation is reported but not performed. Any failure here is
// fatal to the run: without a working sink, logging classification for the
// whole fleet would misreport against a nonexistent target.
func EnsureLogSink(ctx context.Context, client StorageClient, accountID string, dryRun bool, logger zerolog.Logger) (string, error) {
	sink := accesslog.CanonicalTarget(accountID).Bucket

	exists, err := client.BucketExists(ctx, sink)
	if err != nil {
		return "", NewSinkCreateError(sink, err)
	}
	if exists {
		logger.Debug().Str("bucket", sink).Msg("Log sink already exists")
		return sink, nil
	}

	if dryRun {
		logger.Info().Str("bucket", sink).Msg("[dry-run] Would create log sink")
		return sink, nil
	}

	logger.Info().Str("bucket", sink).Msg("Creating log sink")
	if err := client.CreateBucket(ctx, sink); err != nil {
		return "", NewSinkCreateError(sink, err)
	}

	seed := &policy.Document{
		Version:   policy.Version,
		Statement: policy.Statements{policy.LogDeliveryStatement(sink, accountID)},
	}
	doc := policy.Merge(seed, sink)
	if err := client.PutBucketPolicy(ctx, sink, doc); err != nil {
		return "", NewSinkCreateError(sink, err)
	}

	logger.Info().Str("bucket", sink).Msg("Created log sink")
	return sink, nil
}
