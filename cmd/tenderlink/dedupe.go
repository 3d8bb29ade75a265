package main

import (
	"fmt"
	"io"
	"log"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/tenderlink/tenderlink/internal/deduplication"
	"github.com/tenderlink/tenderlink/internal/recordio"
	"github.com/tenderlink/tenderlink/internal/types"
)

var dedupeCmd = &cobra.Command{
	Use:   "dedupe <input>",
	Short: "Collapse exact duplicates to one canonical record each",
	Long: `Collapse records that share a fingerprint to their most complete member.

The input may be a JSON array, JSON Lines or CSV file; the format is taken
from the extension unless --format is given. Canonical records are written
in the order their group first appears.

Examples:
  # Write the deduplicated batch to stdout as JSON
  tenderlink dedupe notices.jsonl

  # Write JSON Lines to a file and print the duplicate groups
  tenderlink dedupe notices.csv -o unique.jsonl --report`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		opts := dedupeOptions{input: args[0]}
		opts.output, _ = cmd.Flags().GetString("output")
		opts.inputFormat, _ = cmd.Flags().GetString("format")
		opts.outputFormat, _ = cmd.Flags().GetString("output-format")
		opts.report, _ = cmd.Flags().GetBool("report")

		cfg, err := loadConfig()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		opts.verbose = cfg.Verbose

		if err := runDedupe(opts, cmd.OutOrStdout(), cmd.ErrOrStderr()); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	},
}

func init() {
	dedupeCmd.Flags().StringP("output", "o", "", "Output file (default: stdout as JSON)")
	dedupeCmd.Flags().String("format", "", "Input format: json, jsonl or csv (default: from extension)")
	dedupeCmd.Flags().String("output-format", "", "Output format (default: from output extension)")
	dedupeCmd.Flags().Bool("report", false, "Print duplicate groups and statistics")
	rootCmd.AddCommand(dedupeCmd)
}

type dedupeOptions struct {
	input        string
	output       string
	inputFormat  string
	outputFormat string
	report       bool
	verbose      bool // Log suspicious input records
}

// runDedupe writes records to stdout only when no output file is given;
// the summary always goes to stderr so piped JSON stays clean.
func runDedupe(opts dedupeOptions, stdout, stderr io.Writer) error {
	records, err := readRecords(opts.input, opts.inputFormat, opts.verbose)
	if err != nil {
		return err
	}

	result := deduplication.DeduplicateWithReport(records)
	if err := result.Validate(); err != nil {
		return fmt.Errorf("inconsistent result: %w", err)
	}

	if opts.output == "" {
		format := recordio.FormatJSON
		if opts.outputFormat != "" {
			if format, err = recordio.ParseFormat(opts.outputFormat); err != nil {
				return err
			}
		}
		if err := recordio.Write(stdout, result.Records, format); err != nil {
			return err
		}
	} else if err := recordio.WriteFile(opts.output, result.Records, recordio.Format(opts.outputFormat)); err != nil {
		return err
	}

	green := color.New(color.FgGreen).SprintFunc()
	fmt.Fprintf(stderr, "%s %d records -> %d unique (%d duplicates removed)\n",
		green("✓"), result.Stats.TotalRecords, result.Stats.UniqueCount, result.Stats.DuplicatesRemoved)

	if opts.report {
		printGroups(stderr, result)
	}
	return nil
}

func printGroups(w io.Writer, result *deduplication.Result) {
	cyan := color.New(color.FgCyan).SprintFunc()
	bold := color.New(color.Bold).SprintFunc()

	if result.Stats.MultiMemberGroups == 0 {
		fmt.Fprintln(w, "No duplicate groups found")
		return
	}

	fmt.Fprintf(w, "\n%s (%d, largest has %d members):\n\n",
		bold("Duplicate groups"), result.Stats.MultiMemberGroups, result.Stats.LargestGroup)
	for _, g := range result.Groups {
		if g.Size() < 2 {
			continue
		}
		fmt.Fprintf(w, "%s  %s\n", cyan(g.Fingerprint.Short()), g.Canonical().Title)
		for i, r := range g.Members {
			marker := " "
			if i == g.CanonicalIndex {
				marker = "*"
			}
			fmt.Fprintf(w, "  %s %s\n", marker, recordRef(r, g.MemberIndices[i]))
		}
		fmt.Fprintln(w)
	}
	fmt.Fprintf(w, "Processed in %dms\n", result.Stats.ProcessingTimeMs)
}

// readRecords loads a batch and, when verbose, logs every record that
// fails Record.Validate. Invalid records are still returned.
func readRecords(path, format string, verbose bool) ([]types.Record, error) {
	records, err := recordio.ReadFile(path, recordio.Format(format))
	if err != nil {
		return nil, err
	}
	if verbose {
		for i := range records {
			if err := records[i].Validate(); err != nil {
				log.Printf("[DEDUP] Warning: record %s: %v", recordRef(records[i], i), err)
			}
		}
	}
	return records, nil
}

// recordRef names a record by source id, falling back to its batch position.
func recordRef(r types.Record, index int) string {
	if r.ID == "" {
		return fmt.Sprintf("#%d", index)
	}
	if r.Source == "" {
		return r.ID
	}
	return r.Source + "/" + r.ID
}
