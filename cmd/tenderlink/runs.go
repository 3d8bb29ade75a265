package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/tenderlink/tenderlink/internal/audit"
)

const defaultAuditDB = ".tenderlink/audit.db"

var runsCmd = &cobra.Command{
	Use:   "runs [run-id]",
	Short: "List recorded review runs",
	Long: `List review runs recorded by 'tenderlink pairs --audit-db'.

With a run id, show the pairs stored for that run.

Examples:
  # List the 10 most recent runs
  tenderlink runs

  # Show the pairs of one run
  tenderlink runs 3f0c2a8e-9d1b-4c57-a2f3-1b7e0d6c9a41

  # Delete a run
  tenderlink runs 3f0c2a8e-9d1b-4c57-a2f3-1b7e0d6c9a41 --delete`,
	Args: cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		opts := runsOptions{}
		opts.auditDB, _ = cmd.Flags().GetString("audit-db")
		opts.limit, _ = cmd.Flags().GetInt("limit")
		opts.delete, _ = cmd.Flags().GetBool("delete")
		if len(args) == 1 {
			opts.runID = args[0]
		}

		if err := runRuns(context.Background(), opts, cmd.OutOrStdout()); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	},
}

func init() {
	auditDB := os.Getenv("TENDERLINK_AUDIT_DB")
	if auditDB == "" {
		auditDB = defaultAuditDB
	}
	runsCmd.Flags().String("audit-db", auditDB, "SQLite audit database")
	runsCmd.Flags().Int("limit", 10, "Maximum runs to list (0 = all)")
	runsCmd.Flags().Bool("delete", false, "Delete the given run")
	rootCmd.AddCommand(runsCmd)
}

type runsOptions struct {
	auditDB string
	runID   string
	limit   int
	delete  bool
}

func runRuns(ctx context.Context, opts runsOptions, w io.Writer) error {
	if opts.delete && opts.runID == "" {
		return fmt.Errorf("--delete requires a run id")
	}
	if _, err := os.Stat(opts.auditDB); err != nil {
		return fmt.Errorf("audit database %s: %w", opts.auditDB, err)
	}

	store, err := audit.Open(ctx, opts.auditDB)
	if err != nil {
		return fmt.Errorf("failed to open audit database: %w", err)
	}
	defer store.Close()

	green := color.New(color.FgGreen).SprintFunc()
	cyan := color.New(color.FgCyan).SprintFunc()

	switch {
	case opts.delete:
		if err := store.DeleteRun(ctx, opts.runID); err != nil {
			return err
		}
		fmt.Fprintf(w, "%s Deleted run %s\n", green("✓"), opts.runID)
		return nil

	case opts.runID != "":
		run, err := store.GetRun(ctx, opts.runID)
		if err != nil {
			return err
		}
		pairs, err := store.PairsForRun(ctx, opts.runID)
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "%s  %s\n", cyan(run.ID), run.Label)
		fmt.Fprintf(w, "  Created: %s\n", run.CreatedAt.Local().Format("2006-01-02 15:04:05"))
		fmt.Fprintf(w, "  Threshold: %.2f  Weights: %s\n", run.Threshold, run.Weights)
		fmt.Fprintf(w, "  Records: %d  Pairs: %d\n\n", run.RecordCount, run.PairCount)
		for _, p := range pairs {
			fmt.Fprintf(w, "  %.3f  #%d %s <-> #%d %s\n", p.Score.Total, p.LeftIndex, p.LeftRef, p.RightIndex, p.RightRef)
		}
		return nil
	}

	runs, err := store.ListRuns(ctx, opts.limit)
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Fprintln(w, "No runs recorded")
		return nil
	}
	for _, r := range runs {
		fmt.Fprintf(w, "%s  %s  %-24s  threshold %.2f  %d records  %d pairs\n",
			cyan(r.ID), r.CreatedAt.Local().Format("2006-01-02 15:04"), r.Label,
			r.Threshold, r.RecordCount, r.PairCount)
	}
	return nil
}
