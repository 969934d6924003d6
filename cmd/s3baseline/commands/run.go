package commands

import (
	"context"
	"fmt"
	"os"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/ot-nemoto/s3-secure-baseline/pkg/awsx"
	"github.com/ot-nemoto/s3-secure-baseline/pkg/baseline"
	"github.com/ot-nemoto/s3-secure-baseline/pkg/config"
	"github.com/ot-nemoto/s3-secure-baseline/pkg/stores"
)

func newRunCommand() *cobra.Command {
	var (
		apply       bool
		bucket      string
		profile     string
		region      string
		excludes    []string
		policyOnly  bool
		loggingOnly bool
		showPolicy  bool
		showLogging bool
		concurrency int
		history     string
	)

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Reconcile the secure baseline across buckets",
		Long: `Reconcile every bucket in the account against the secure baseline.

For each bucket two dimensions are checked and, with --apply, fixed:

  policy   the insecure-transport deny statement in the bucket policy
  logging  server access logging into the account's log sink bucket

Without --apply this is a dry run: the report shows what would change
and nothing is written. The log sink bucket is created on demand during
apply runs and is itself excluded from reconciliation.`,
		Example: `  # Dry run over all buckets
  s3baseline run

  # Apply the baseline for real
  s3baseline run --apply

  # Single bucket, policy dimension only
  s3baseline run --bucket app-data --policy-only

  # Skip two buckets and show pending policy documents
  s3baseline run --exclude tmp-scratch --exclude legacy --show-policy

  # Apply with 8 workers, recording the run
  s3baseline run --apply --concurrency 8 --history ~/.s3baseline/history.db`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Default()
			if configPath != "" {
				loaded, err := config.LoadFile(configPath)
				if err != nil {
					return err
				}
				cfg = loaded
			}

			// Flags set on the command line win over the file.
			flags := cmd.Flags()
			if flags.Changed("apply") {
				cfg.Apply = apply
			}
			if flags.Changed("bucket") {
				cfg.Bucket = bucket
			}
			if flags.Changed("profile") {
				cfg.Profile = profile
			}
			if flags.Changed("region") {
				cfg.Region = region
			}
			if flags.Changed("exclude") {
				cfg.Exclude = excludes
			}
			if flags.Changed("policy-only") {
				cfg.PolicyOnly = policyOnly
			}
			if flags.Changed("logging-only") {
				cfg.LoggingOnly = loggingOnly
			}
			if flags.Changed("show-policy") {
				cfg.ShowPolicy = showPolicy
			}
			if flags.Changed("show-logging") {
				cfg.ShowLogging = showLogging
			}
			if flags.Changed("concurrency") {
				cfg.Concurrency = concurrency
			}
			if flags.Changed("history") {
				cfg.History = history
			}

			if err := cfg.Validate(); err != nil {
				return err
			}

			return runReconciliation(cmd.Context(), cfg)
		},
	}

	cmd.Flags().BoolVar(&apply, "apply", false, "write changes (default is dry run)")
	cmd.Flags().StringVarP(&bucket, "bucket", "b", "", "reconcile a single bucket")
	cmd.Flags().StringVarP(&profile, "profile", "p", "", "AWS shared-config profile")
	cmd.Flags().StringVar(&region, "region", "", "AWS region override")
	cmd.Flags().StringSliceVarP(&excludes, "exclude", "e", nil, "bucket names to skip (repeatable)")
	cmd.Flags().BoolVar(&policyOnly, "policy-only", false, "reconcile the policy dimension only")
	cmd.Flags().BoolVar(&loggingOnly, "logging-only", false, "reconcile the logging dimension only")
	cmd.Flags().BoolVar(&showPolicy, "show-policy", false, "print before/after policy documents for pending changes")
	cmd.Flags().BoolVar(&showLogging, "show-logging", false, "print before/after logging configs for pending changes")
	cmd.Flags().IntVar(&concurrency, "concurrency", 1, "worker pool size (1-16)")
	cmd.Flags().StringVar(&history, "history", "", "SQLite database path for run history")

	return cmd
}

func runReconciliation(ctx context.Context, cfg config.Config) error {
	dryRun := !cfg.Apply

	client, err := awsx.New(ctx, awsx.Options{Profile: cfg.Profile, Region: cfg.Region})
	if err != nil {
		return err
	}

	accountID, err := client.AccountID(ctx)
	if err != nil {
		return err
	}

	log.Info().
		Str("account", accountID).
		Str("region", client.Region()).
		Bool("dry_run", dryRun).
		Msg("Starting reconciliation")

	sink, err := baseline.EnsureLogSink(ctx, client, accountID, dryRun, log.Logger)
	if err != nil {
		return err
	}

	buckets, err := client.ListBuckets(ctx)
	if err != nil {
		return err
	}

	worklist := baseline.ResolveWorklist(buckets, cfg.Exclude, sink)
	if cfg.Bucket != "" {
		worklist, err = baseline.SelectBucket(worklist, cfg.Exclude, sink, cfg.Bucket)
		if err != nil {
			return err
		}
	}

	rec := baseline.NewReconciler(client, baseline.Options{
		DryRun:      dryRun,
		PolicyOnly:  cfg.PolicyOnly,
		LoggingOnly: cfg.LoggingOnly,
		ShowPolicy:  cfg.ShowPolicy,
		ShowLogging: cfg.ShowLogging,
		Concurrency: cfg.Concurrency,
	}, log.Logger)

	report := rec.Run(ctx, accountID, worklist)

	if jsonOutput {
		if err := report.RenderJSON(os.Stdout); err != nil {
			return err
		}
	} else {
		report.Render(os.Stdout)
	}

	if cfg.History != "" {
		if err := recordHistory(ctx, cfg.History, report); err != nil {
			log.Warn().Err(err).Msg("Failed to record run history")
		}
	}

	if ctx.Err() != nil {
		return fmt.Errorf("reconciliation interrupted: %w", ctx.Err())
	}
	if cfg.Apply && report.HasFailures() {
		return fmt.Errorf("%d of %d buckets had failures", report.Summary.PartialFailures, report.Summary.Total)
	}
	return nil
}

func recordHistory(ctx context.Context, path string, report *baseline.Report) error {
	store, err := stores.NewSQLiteStore(path)
	if err != nil {
		return err
	}
	if err := store.Init(ctx); err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	if err := store.Migrate(ctx); err != nil {
		return err
	}
	return stores.RecordReport(ctx, store, report)
}
