package commands

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ot-nemoto/s3-secure-baseline/pkg/accesslog"
	"github.com/ot-nemoto/s3-secure-baseline/pkg/awsx"
	"github.com/ot-nemoto/s3-secure-baseline/pkg/policy"
)

func newShowCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show",
		Short: "Inspect a bucket's baseline state",
		Long: `Inspect the current and proposed state of one bucket without
changing anything.

The proposed state is what a run with --apply would leave in place.`,
	}

	cmd.AddCommand(newShowPolicyCommand())
	cmd.AddCommand(newShowLoggingCommand())

	return cmd
}

func newShowPolicyCommand() *cobra.Command {
	var (
		profile string
		region  string
	)

	cmd := &cobra.Command{
		Use:   "policy <bucket>",
		Short: "Show a bucket's current and proposed policy",
		Example: `  # Inspect the policy of one bucket
  s3baseline show policy app-data

  # With a named profile
  s3baseline show policy app-data --profile audit`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			bucket := args[0]
			ctx := cmd.Context()

			client, err := awsx.New(ctx, awsx.Options{Profile: profile, Region: region})
			if err != nil {
				return err
			}

			current, err := client.GetBucketPolicy(ctx, bucket)
			if err != nil {
				return err
			}

			class := policy.Classify(current, bucket)
			proposed := policy.Merge(current, bucket)

			var cur any
			if current != nil {
				cur = current
			}
			return printState(bucket, string(class), cur, proposed)
		},
	}

	cmd.Flags().StringVarP(&profile, "profile", "p", "", "AWS shared-config profile")
	cmd.Flags().StringVar(&region, "region", "", "AWS region override")

	return cmd
}

func newShowLoggingCommand() *cobra.Command {
	var (
		profile string
		region  string
	)

	cmd := &cobra.Command{
		Use:   "logging <bucket>",
		Short: "Show a bucket's current and proposed logging config",
		Example: `  # Inspect the access-logging config of one bucket
  s3baseline show logging app-data`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			bucket := args[0]
			ctx := cmd.Context()

			client, err := awsx.New(ctx, awsx.Options{Profile: profile, Region: region})
			if err != nil {
				return err
			}

			accountID, err := client.AccountID(ctx)
			if err != nil {
				return err
			}
			target := accesslog.CanonicalTarget(accountID)

			current, err := client.GetBucketLogging(ctx, bucket)
			if err != nil {
				return err
			}

			class := accesslog.Classify(current, target)
			proposed := target.Config()

			var cur any
			if current != nil {
				cur = current
			}
			return printState(bucket, string(class), cur, proposed)
		},
	}

	cmd.Flags().StringVarP(&profile, "profile", "p", "", "AWS shared-config profile")
	cmd.Flags().StringVar(&region, "region", "", "AWS region override")

	return cmd
}

// printState emits the bucket's state either as one JSON object or as a
// labelled pair of indented documents.
func printState(bucket, status string, current, proposed any) error {
	if jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(map[string]any{
			"bucket":   bucket,
			"status":   status,
			"current":  current,
			"proposed": proposed,
		})
	}

	fmt.Printf("Bucket: %s\nStatus: %s\n\n", bucket, status)

	fmt.Println("Current:")
	if err := printJSON(current); err != nil {
		return err
	}
	fmt.Println()

	fmt.Println("Proposed:")
	return printJSON(proposed)
}

func printJSON(v any) error {
	if v == nil {
		fmt.Println("  (none)")
		return nil
	}
	data, err := json.MarshalIndent(v, "  ", "  ")
	if err != nil {
		return err
	}
	fmt.Printf("  %s\n", data)
	return nil
}
