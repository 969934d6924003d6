package commands

import (
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/ot-nemoto/s3-secure-baseline/pkg/stores"
)

func newHistoryCommand() *cobra.Command {
	var (
		historyPath string
		limit       int
		offset      int
	)

	cmd := &cobra.Command{
		Use:   "history [run-id]",
		Short: "List or inspect recorded runs",
		Long: `List runs recorded in the history database, or show one run's
per-bucket outcomes when a run ID is given.

Runs are recorded only when the run command is given --history (or the
history key in the config file).`,
		Example: `  # List recent runs
  s3baseline history --history ~/.s3baseline/history.db

  # Show one run in full
  s3baseline history 5f7c9a1e-... --history ~/.s3baseline/history.db`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if historyPath == "" {
				return fmt.Errorf("a history database path is required (--history)")
			}

			ctx := cmd.Context()
			store, err := stores.NewSQLiteStore(historyPath)
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

			if len(args) == 1 {
				return showRun(cmd, store, args[0])
			}

			runs, err := store.ListRuns(ctx, limit, offset)
			if err != nil {
				return err
			}

			if jsonOutput {
				enc := json.NewEncoder(os.Stdout)
				enc.SetIndent("", "  ")
				return enc.Encode(runs)
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "RUN ID\tACCOUNT\tMODE\tSTARTED\tBUCKETS\tOK\tFAILED")
			for _, r := range runs {
				mode := "apply"
				if r.DryRun {
					mode = "dry-run"
				}
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d\t%d\t%d\n",
					r.ID, r.AccountID, mode,
					r.StartedAt.Format("2006-01-02 15:04:05"),
					r.Total, r.Succeeded, r.PartialFailures)
			}
			return w.Flush()
		},
	}

	cmd.Flags().StringVar(&historyPath, "history", "", "SQLite database path for run history")
	cmd.Flags().IntVar(&limit, "limit", 20, "maximum number of runs to list")
	cmd.Flags().IntVar(&offset, "offset", 0, "number of runs to skip")

	return cmd
}

func showRun(cmd *cobra.Command, store *stores.SQLiteStore, id string) error {
	run, outcomes, err := store.GetRun(cmd.Context(), id)
	if err != nil {
		return err
	}

	if jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(map[string]any{
			"run":      run,
			"outcomes": outcomes,
		})
	}

	mode := "apply"
	if run.DryRun {
		mode = "dry-run"
	}
	fmt.Printf("Run:      %s\n", run.ID)
	fmt.Printf("Account:  %s\n", run.AccountID)
	fmt.Printf("Mode:     %s\n", mode)
	fmt.Printf("Started:  %s\n", run.StartedAt.Format("2006-01-02 15:04:05"))
	fmt.Printf("Duration: %s\n", run.CompletedAt.Sub(run.StartedAt))
	fmt.Printf("Buckets:  %d total, %d ok, %d failed\n\n", run.Total, run.Succeeded, run.PartialFailures)

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "BUCKET\tPOLICY\tLOGGING\tERROR")
	for _, o := range outcomes {
		errMsg := ""
		if o.PolicyError != nil {
			errMsg = *o.PolicyError
		} else if o.LoggingError != nil {
			errMsg = *o.LoggingError
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", o.Bucket, o.PolicyStatus, o.LoggingStatus, errMsg)
	}
	return w.Flush()
}
