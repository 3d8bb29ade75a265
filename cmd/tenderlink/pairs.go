package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/tenderlink/tenderlink/internal/audit"
	"github.com/tenderlink/tenderlink/internal/deduplication"
	"github.com/tenderlink/tenderlink/internal/export"
	"github.com/tenderlink/tenderlink/internal/types"
)

var pairsCmd = &cobra.Command{
	Use:   "pairs <input>",
	Short: "Report probable near-duplicate pairs for review",
	Long: `Score every pair of records and list those at or above the threshold.

Pairs are printed highest score first, followed by the clusters they form.
Scoring is quadratic in the batch size, so batches larger than
--max-batch-size (max_batch_size in the config, 5000 if neither is set) are
refused. Pass --max-batch-size 0 to lift the limit.

Examples:
  # Show the 20 most similar pairs at the configured threshold
  tenderlink pairs notices.jsonl

  # Lower the threshold and export everything for review
  tenderlink pairs notices.csv --threshold 0.7 --limit 0 --xlsx review.xlsx

  # Record the run so it can be listed later with 'tenderlink runs'
  tenderlink pairs notices.jsonl --audit-db .tenderlink/audit.db`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		opts := pairsOptions{input: args[0]}
		opts.inputFormat, _ = cmd.Flags().GetString("format")
		opts.xlsxPath, _ = cmd.Flags().GetString("xlsx")
		opts.auditDB, _ = cmd.Flags().GetString("audit-db")
		opts.limit, _ = cmd.Flags().GetInt("limit")

		cfg, err := loadConfig()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		opts.threshold = cfg.Threshold
		if cmd.Flags().Changed("threshold") {
			opts.threshold, _ = cmd.Flags().GetFloat64("threshold")
		}
		maxBatch, _ := cmd.Flags().GetInt("max-batch-size")
		cfg = withBatchLimit(cfg, maxBatch, cmd.Flags().Changed("max-batch-size"))
		if err := cfg.Validate(); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()

		if err := runPairs(ctx, opts, cfg, cmd.OutOrStdout()); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	},
}

func init() {
	pairsCmd.Flags().Float64("threshold", deduplication.DefaultThreshold, "Minimum similarity (0.0-1.0) for a reported pair (default: from config)")
	pairsCmd.Flags().String("format", "", "Input format: json, jsonl or csv (default: from extension)")
	pairsCmd.Flags().String("xlsx", "", "Write pairs and clusters to this XLSX workbook")
	pairsCmd.Flags().String("audit-db", os.Getenv("TENDERLINK_AUDIT_DB"), "Record the run in this SQLite audit database")
	pairsCmd.Flags().Int("limit", 20, "Maximum pairs to print (0 = all)")
	pairsCmd.Flags().Int("max-batch-size", defaultMaxBatchSize, "Refuse batches with more records than this (0 = unlimited; default: from config, else 5000)")
	rootCmd.AddCommand(pairsCmd)
}

// defaultMaxBatchSize bounds the quadratic pair scoring run from the command
// line when neither the config nor --max-batch-size sets a limit.
const defaultMaxBatchSize = 5000

// withBatchLimit picks the batch guard: an explicit flag wins, then a
// configured limit, then defaultMaxBatchSize.
func withBatchLimit(cfg deduplication.Config, flagValue int, flagSet bool) deduplication.Config {
	switch {
	case flagSet:
		cfg.MaxBatchSize = flagValue
	case cfg.MaxBatchSize == 0:
		cfg.MaxBatchSize = defaultMaxBatchSize
	}
	return cfg
}

type pairsOptions struct {
	input       string
	inputFormat string
	threshold   float64
	xlsxPath    string
	auditDB     string
	limit       int
}

func runPairs(ctx context.Context, opts pairsOptions, cfg deduplication.Config, w io.Writer) error {
	records, err := readRecords(opts.input, opts.inputFormat, cfg.Verbose)
	if err != nil {
		return err
	}

	pairs, err := deduplication.FindDuplicates(ctx, records, opts.threshold, cfg)
	if err != nil {
		return err
	}
	clusters := deduplication.ClusterPairs(len(records), pairs)

	printPairs(w, pairs, clusters, len(records), opts)

	green := color.New(color.FgGreen).SprintFunc()
	if opts.xlsxPath != "" {
		data, err := export.PairsXLSX(sortedByScore(pairs), clusters)
		if err != nil {
			return fmt.Errorf("failed to build workbook: %w", err)
		}
		if err := os.WriteFile(opts.xlsxPath, data, 0644); err != nil {
			return fmt.Errorf("failed to write %s: %w", opts.xlsxPath, err)
		}
		fmt.Fprintf(w, "%s Wrote %s\n", green("✓"), opts.xlsxPath)
	}

	if opts.auditDB != "" {
		store, err := audit.Open(ctx, opts.auditDB)
		if err != nil {
			return fmt.Errorf("failed to open audit database: %w", err)
		}
		defer store.Close()

		run := &audit.Run{
			Label:       filepath.Base(opts.input),
			Threshold:   opts.threshold,
			Weights:     cfg.Weights,
			RecordCount: len(records),
		}
		if err := store.SaveRun(ctx, run, pairs); err != nil {
			return err
		}
		fmt.Fprintf(w, "%s Recorded run %s\n", green("✓"), run.ID)
	}
	return nil
}

func printPairs(w io.Writer, pairs []types.DuplicatePair, clusters [][]int, n int, opts pairsOptions) {
	if len(pairs) == 0 {
		green := color.New(color.FgGreen).SprintFunc()
		fmt.Fprintf(w, "%s No pairs at or above %.2f among %d records\n", green("✓"), opts.threshold, n)
		return
	}

	yellow := color.New(color.FgYellow).SprintFunc()
	cyan := color.New(color.FgCyan).SprintFunc()

	fmt.Fprintf(w, "\n%s Found %d pair(s) at or above %.2f among %d records:\n\n",
		yellow("⚠"), len(pairs), opts.threshold, n)

	shown := sortedByScore(pairs)
	if opts.limit > 0 && len(shown) > opts.limit {
		shown = shown[:opts.limit]
	}
	for _, p := range shown {
		bd := p.Score.Breakdown
		fmt.Fprintf(w, "%s  %s <-> %s\n", cyan(fmt.Sprintf("%.3f", p.Score.Total)),
			recordRef(p.Left, p.LeftIndex), recordRef(p.Right, p.RightIndex))
		fmt.Fprintf(w, "  %s\n  %s\n", p.Left.Title, p.Right.Title)
		fmt.Fprintf(w, "  title %.2f  buyer %.2f  cpv %.2f  value %.2f\n\n", bd.Title, bd.Buyer, bd.CPV, bd.Value)
	}
	if len(shown) < len(pairs) {
		fmt.Fprintf(w, "... %d more (use --limit 0 to show all)\n\n", len(pairs)-len(shown))
	}

	fmt.Fprintf(w, "%d cluster(s):\n", len(clusters))
	for i, c := range clusters {
		fmt.Fprintf(w, "  %d: %v\n", i+1, c)
	}
	fmt.Fprintln(w)
}
