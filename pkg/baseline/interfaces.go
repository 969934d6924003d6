package baseline

import (
	"context"

	"github.com/ot-nemoto/s3-secure-baseline/pkg/accesslog"
	"github.com/ot-nemoto/s3-secure-baseline/pkg/policy"
)

// StorageClient is the contract with the bucket store. The reconciler only
// ever issues these calls; credential resolution, retries, and wire formats
// live behind the implementation.
type StorageClient interface {
	// AccountID resolves the owning account identifier.
	AccountID(ctx context.Context) (string, error)

	// ListBuckets enumerates all bucket names owned by the account, in the
	// store's order.
	ListBuckets(ctx context.Context) ([]string, error)

	// BucketExists reports whether the named bucket exists.
	BucketExists(ctx context.Context, bucket string) (bool, error)

	// CreateBucket creates the named bucket with public access blocked.
	CreateBucket(ctx context.Context, bucket string) error

	// GetBucketPolicy fetches the bucket's policy document. A nil document
	// with a nil error means no policy is attached.
	GetBucketPolicy(ctx context.Context, bucket string) (*policy.Document, error)

	// PutBucketPolicy replaces the bucket's policy with the complete given
	// document. The store has no partial-update primitive; callers must
	// always submit the full desired document.
	PutBucketPolicy(ctx context.Context, bucket string, doc *policy.Document) error

	// GetBucketLogging fetches the bucket's access logging configuration.
	// A nil config with a nil error means logging is disabled.
	GetBucketLogging(ctx context.Context, bucket string) (*accesslog.Config, error)

	// PutBucketLogging replaces the bucket's access logging configuration.
	PutBucketLogging(ctx context.Context, bucket string, cfg accesslog.Config) error
}
