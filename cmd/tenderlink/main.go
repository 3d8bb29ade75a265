package main

import (
	"fmt"
	"log"
	"os"

	"github.com/spf13/cobra"

	"github.com/tenderlink/tenderlink/internal/deduplication"
)

var (
	configPath string
	verbose    bool
)

var rootCmd = &cobra.Command{
	Use:   "tenderlink",
	Short: "Find and merge duplicate procurement notices",
	Long: `tenderlink merges procurement notices collected from several sources.

Records with the same normalized title, buyer, CPV codes and country are
certain duplicates and are collapsed to their most complete member
('tenderlink dedupe'). Records that are merely alike are reported as scored
pairs for human review ('tenderlink pairs').

Configuration is read from the file given with --config and then from
TENDERLINK_DEDUP_* environment variables, which take precedence.`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		log.SetOutput(cmd.ErrOrStderr())
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to a YAML config file (default: tenderlink.yaml if present)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Log progress to stderr")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

const defaultConfigFile = "tenderlink.yaml"

// loadConfig layers the config file, environment and --verbose over the
// defaults. A missing default file is not an error; a missing explicit
// file is.
func loadConfig() (deduplication.Config, error) {
	path := configPath
	if path == "" {
		path = defaultConfigFile
	} else if _, err := os.Stat(path); err != nil {
		return deduplication.Config{}, fmt.Errorf("config file: %w", err)
	}

	cfg, err := deduplication.LoadConfigFile(path)
	if err != nil {
		return deduplication.Config{}, err
	}
	cfg, err = deduplication.ApplyEnv(cfg)
	if err != nil {
		return deduplication.Config{}, err
	}
	if verbose {
		cfg.Verbose = true
	}
	return cfg, nil
}
