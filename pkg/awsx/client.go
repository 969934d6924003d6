// Package awsx implements the baseline storage client contract on top of
// aws-sdk-go-v2, against S3 for bucket operations and STS for identity.
package awsx

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/aws-sdk-go-v2/service/sts"
	"github.com/aws/smithy-go"

	"github.com/ot-nemoto/s3-secure-baseline/pkg/accesslog"
	"github.com/ot-nemoto/s3-secure-baseline/pkg/policy"
)

// Options configure the AWS session.
type Options struct {
	// Profile is the shared-config profile name; empty selects the default
	// credential chain.
	Profile string

	// Region overrides the region from the shared config.
	Region string
}

// Client implements baseline.StorageClient against live AWS APIs.
type Client struct {
	s3     *s3.Client
	sts    *sts.Client
	region string
}

// New builds a client from the default credential chain, optionally pinned
// to a profile and region.
func New(ctx context.Context, opts Options) (*Client, error) {
	var loadOpts []func(*awsconfig.LoadOptions) error
	if opts.Profile != "" {
		loadOpts = append(loadOpts, awsconfig.WithSharedConfigProfile(opts.Profile))
	}
	if opts.Region != "" {
		loadOpts = append(loadOpts, awsconfig.WithRegion(opts.Region))
	}

	cfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS configuration: %w", err)
	}

	return &Client{
		s3:     s3.NewFromConfig(cfg),
		sts:    sts.NewFromConfig(cfg),
		region: cfg.Region,
	}, nil
}

// Region returns the resolved session region.
func (c *Client) Region() string {
	return c.region
}

// AccountID resolves the caller's account id via STS.
func (c *Client) AccountID(ctx context.Context) (string, error) {
	out, err := c.sts.GetCallerIdentity(ctx, &sts.GetCallerIdentityInput{})
	if err != nil {
		return "", err
	}
	return aws.ToString(out.Account), nil
}

// ListBuckets enumerates every bucket owned by the account.
func (c *Client) ListBuckets(ctx context.Context) ([]string, error) {
	out, err := c.s3.ListBuckets(ctx, &s3.ListBucketsInput{})
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(out.Buckets))
	for _, b := range out.Buckets {
		names = append(names, aws.ToString(b.Name))
	}
	return names, nil
}

// BucketExists probes the bucket with a HEAD request.
func (c *Client) BucketExists(ctx context.Context, bucket string) (bool, error) {
	_, err := c.s3.HeadBucket(ctx, &s3.HeadBucketInput{Bucket: aws.String(bucket)})
	if err != nil {
		var notFound *s3types.NotFound
		if errors.As(err, &notFound) {
			return false, nil
		}
		var apiErr smithy.APIError
		if errors.As(err, &apiErr) && apiErr.ErrorCode() == "NotFound" {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// CreateBucket creates the bucket in the session region with public access
// blocked. us-east-1 rejects an explicit LocationConstraint and is the only
// region that does.
func (c *Client) CreateBucket(ctx context.Context, bucket string) error {
	input := &s3.CreateBucketInput{Bucket: aws.String(bucket)}
	if c.region != "" && c.region != "us-east-1" {
		input.CreateBucketConfiguration = &s3types.CreateBucketConfiguration{
			LocationConstraint: s3types.BucketLocationConstraint(c.region),
		}
	}
	if _, err := c.s3.CreateBucket(ctx, input); err != nil {
		return err
	}

	_, err := c.s3.PutPublicAccessBlock(ctx, &s3.PutPublicAccessBlockInput{
		Bucket: aws.String(bucket),
		PublicAccessBlockConfiguration: &s3types.PublicAccessBlockConfiguration{
			BlockPublicAcls:       aws.Bool(true),
			BlockPublicPolicy:     aws.Bool(true),
			IgnorePublicAcls:      aws.Bool(true),
			RestrictPublicBuckets: aws.Bool(true),
		},
	})
	return err
}

// GetBucketPolicy fetches and parses the bucket policy. A missing policy is
// reported as nil, nil: it is an expected state, not an error.
func (c *Client) GetBucketPolicy(ctx context.Context, bucket string) (*policy.Document, error) {
	out, err := c.s3.GetBucketPolicy(ctx, &s3.GetBucketPolicyInput{Bucket: aws.String(bucket)})
	if err != nil {
		var apiErr smithy.APIError
		if errors.As(err, &apiErr) && apiErr.ErrorCode() == "NoSuchBucketPolicy" {
			return nil, nil
		}
		return nil, err
	}
	return policy.ParseDocument([]byte(aws.ToString(out.Policy)))
}

// PutBucketPolicy replaces the bucket policy with the full document.
func (c *Client) PutBucketPolicy(ctx context.Context, bucket string, doc *policy.Document) error {
	body, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("failed to serialize policy document: %w", err)
	}
	_, err = c.s3.PutBucketPolicy(ctx, &s3.PutBucketPolicyInput{
		Bucket: aws.String(bucket),
		Policy: aws.String(string(body)),
	})
	return err
}

// GetBucketLogging fetches the access logging configuration. Disabled
// logging is reported as nil, nil.
func (c *Client) GetBucketLogging(ctx context.Context, bucket string) (*accesslog.Config, error) {
	out, err := c.s3.GetBucketLogging(ctx, &s3.GetBucketLoggingInput{Bucket: aws.String(bucket)})
	if err != nil {
		return nil, err
	}
	if out.LoggingEnabled == nil {
		return nil, nil
	}
	return &accesslog.Config{
		TargetBucket: aws.ToString(out.LoggingEnabled.TargetBucket),
		TargetPrefix: aws.ToString(out.LoggingEnabled.TargetPrefix),
	}, nil
}

// PutBucketLogging replaces the access logging configuration.
func (c *Client) PutBucketLogging(ctx context.Context, bucket string, cfg accesslog.Config) error {
	_, err := c.s3.PutBucketLogging(ctx, &s3.PutBucketLoggingInput{
		Bucket: aws.String(bucket),
		BucketLoggingStatus: &s3types.BucketLoggingStatus{
			LoggingEnabled: &s3types.LoggingEnabled{
				TargetBucket: aws.String(cfg.TargetBucket),
				TargetPrefix: aws.String(cfg.TargetPrefix),
			},
		},
	})
	return err
}
