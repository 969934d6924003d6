// Package accesslog models S3 server access logging configuration and the
// canonical account-scoped log destination it is reconciled toward.
package accesslog

import "fmt"

// Config is a bucket's access logging configuration. A nil *Config means
// logging is disabled.
type Config struct {
	// TargetBucket is the bucket receiving the access logs.
	TargetBucket string `json:"TargetBucket"`

	// TargetPrefix is the key prefix under which log objects are written.
	TargetPrefix string `json:"TargetPrefix"`
}

// Target is the canonical log destination for one account.
type Target struct {
	// Bucket is the log-sink bucket name.
	Bucket string `json:"bucket"`

	// Prefix is the canonical log object prefix.
	Prefix string `json:"prefix"`
}

// CanonicalTarget derives the canonical destination for an account:
// bucket access-logs-<account>, prefix AWSLogs/<account>/S3/.
func CanonicalTarget(accountID string) Target {
	return Target{
		Bucket: fmt.Sprintf("access-logs-%s", accountID),
		Prefix: fmt.Sprintf("AWSLogs/%s/S3/", accountID),
	}
}

// Config returns the logging configuration to submit for this target.
// A bucket has exactly one logging configuration, so replacement is always
// total; there is nothing to merge.
func (t Target) Config() Config {
	return Config{TargetBucket: t.Bucket, TargetPrefix: t.Prefix}
}

// Classification is the compliance state of a logging configuration with
// respect to the canonical target.
type Classification string

const (
	// ClassificationApplied indicates logging is enabled and both target
	// bucket and prefix equal the canonical values.
	ClassificationApplied Classification = "applied"

	// ClassificationNeedsChange indicates logging is enabled but the target
	// bucket and/or prefix differ from the canonical values.
	ClassificationNeedsChange Classification = "needs_change"

	// ClassificationNotApplied indicates logging is disabled.
	ClassificationNotApplied Classification = "not_applied"
)

// Classify determines the compliance state of cfg against the canonical
// target. A nil cfg means logging is disabled.
func Classify(cfg *Config, target Target) Classification {
	if cfg == nil {
		return ClassificationNotApplied
	}
	if cfg.TargetBucket == target.Bucket && cfg.TargetPrefix == target.Prefix {
		return ClassificationApplied
	}
	return ClassificationNeedsChange
}
