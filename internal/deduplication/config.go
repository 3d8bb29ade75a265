package deduplication

import (
	"fmt"
	"math"
	"os"
	"runtime"
	"strconv"

	"github.com/tenderlink/tenderlink/internal/similarity"
)

// DefaultThreshold is the similarity at or above which a pair is reported
// as a probable duplicate.
const DefaultThreshold = 0.8

// Config holds configuration for the deduplication engine
type Config struct {
	// Weights controls how much title, buyer, CPV codes and value amount
	// contribute to a pair's similarity score
	// Default: 0.4 / 0.3 / 0.2 / 0.1
	Weights similarity.Weights

	// Threshold is the minimum similarity (0.0-1.0) for FindDuplicates to
	// report a pair when the caller does not pass its own
	// Higher values = fewer, more certain pairs for review
	// Default: 0.8
	Threshold float64

	// Workers is the number of goroutines scoring pairs in FindDuplicates
	// 0 means runtime.GOMAXPROCS(0); 1 scores sequentially
	// Output order never depends on this value
	// Default: 0
	Workers int

	// MaxBatchSize caps the number of records FindDuplicates accepts
	// Pair scoring is O(n²); callers that want a guard set it themselves
	// 0 means unlimited
	// Default: 0
	MaxBatchSize int

	// Verbose enables [DEDUP] log lines
	// Default: false (library callers stay quiet)
	Verbose bool
}

// DefaultConfig returns the default deduplication configuration
//
// The weights and threshold are the hand-tuned production values. They are
// kept overridable rather than derived.
func DefaultConfig() Config {
	return Config{
		Weights:      similarity.DefaultWeights(),
		Threshold:    DefaultThreshold,
		Workers:      0,    // One per CPU
		MaxBatchSize: 0,
		Verbose:      false,
	}
}

// Validate checks if the configuration has valid values
func (c Config) Validate() error {
	if err := validateThreshold(c.Threshold); err != nil {
		return err
	}
	if err := c.Weights.Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidWeights, err)
	}
	if c.Workers < 0 {
		return fmt.Errorf("workers cannot be negative (got %d)", c.Workers)
	}
	if c.Workers > 1024 {
		return fmt.Errorf("workers too large (got %d, max 1024)", c.Workers)
	}
	if c.MaxBatchSize < 0 {
		return fmt.Errorf("max_batch_size cannot be negative (got %d)", c.MaxBatchSize)
	}
	return nil
}

// String returns a human-readable representation of the config
func (c Config) String() string {
	return fmt.Sprintf(
		"Config{Threshold: %.2f, Weights: [%s], Workers: %d, MaxBatchSize: %d, Verbose: %t}",
		c.Threshold, c.Weights, c.Workers, c.MaxBatchSize, c.Verbose,
	)
}

// workerCount resolves the effective number of scoring goroutines.
func (c Config) workerCount() int {
	if c.Workers > 0 {
		return c.Workers
	}
	return runtime.GOMAXPROCS(0)
}

func validateThreshold(threshold float64) error {
	if math.IsNaN(threshold) || threshold < 0.0 || threshold > 1.0 {
		return fmt.Errorf("%w: must be between 0.0 and 1.0 (got %v)", ErrInvalidThreshold, threshold)
	}
	return nil
}

// ConfigFromEnv creates a Config from environment variables, falling back to defaults
//
// Environment variables:
//   - TENDERLINK_DEDUP_THRESHOLD: Minimum similarity (0.0-1.0) for a reported pair (default: 0.8)
//   - TENDERLINK_DEDUP_WEIGHT_TITLE: Title weight (default: 0.4)
//   - TENDERLINK_DEDUP_WEIGHT_BUYER: Buyer name weight (default: 0.3)
//   - TENDERLINK_DEDUP_WEIGHT_CPV: CPV code weight (default: 0.2)
//   - TENDERLINK_DEDUP_WEIGHT_VALUE: Value amount weight (default: 0.1)
//   - TENDERLINK_DEDUP_WORKERS: Pair scoring goroutines, 0 = one per CPU (default: 0)
//   - TENDERLINK_DEDUP_MAX_BATCH_SIZE: Largest batch FindDuplicates accepts, 0 = unlimited (default: 0)
//   - TENDERLINK_DEDUP_VERBOSE: Log progress (default: false)
//
// Returns an error if any environment variable has an invalid value.
func ConfigFromEnv() (Config, error) {
	return ApplyEnv(DefaultConfig())
}

// ApplyEnv overrides fields of cfg with any TENDERLINK_DEDUP_* variables that are set.
func ApplyEnv(cfg Config) (Config, error) {
	if err := parseEnvFloat("TENDERLINK_DEDUP_THRESHOLD", &cfg.Threshold); err != nil {
		return cfg, err
	}
	if err := parseEnvFloat("TENDERLINK_DEDUP_WEIGHT_TITLE", &cfg.Weights.Title); err != nil {
		return cfg, err
	}
	if err := parseEnvFloat("TENDERLINK_DEDUP_WEIGHT_BUYER", &cfg.Weights.Buyer); err != nil {
		return cfg, err
	}
	if err := parseEnvFloat("TENDERLINK_DEDUP_WEIGHT_CPV", &cfg.Weights.CPV); err != nil {
		return cfg, err
	}
	if err := parseEnvFloat("TENDERLINK_DEDUP_WEIGHT_VALUE", &cfg.Weights.Value); err != nil {
		return cfg, err
	}
	if err := parseEnvInt("TENDERLINK_DEDUP_WORKERS", &cfg.Workers); err != nil {
		return cfg, err
	}
	if err := parseEnvInt("TENDERLINK_DEDUP_MAX_BATCH_SIZE", &cfg.MaxBatchSize); err != nil {
		return cfg, err
	}
	if err := parseEnvBool("TENDERLINK_DEDUP_VERBOSE", &cfg.Verbose); err != nil {
		return cfg, err
	}

	// Validate the final configuration
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("invalid configuration from environment: %w", err)
	}

	return cfg, nil
}

// parseEnvFloat parses a float64 from an environment variable
func parseEnvFloat(key string, dest *float64) error {
	value := os.Getenv(key)
	if value == "" {
		return nil // Use default
	}
	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return fmt.Errorf("invalid value for %s: %w", key, err)
	}
	*dest = parsed
	return nil
}

// parseEnvInt parses an int from an environment variable
func parseEnvInt(key string, dest *int) error {
	value := os.Getenv(key)
	if value == "" {
		return nil // Use default
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fmt.Errorf("invalid value for %s: %w", key, err)
	}
	*dest = parsed
	return nil
}

// parseEnvBool parses a bool from an environment variable
func parseEnvBool(key string, dest *bool) error {
	value := os.Getenv(key)
	if value == "" {
		return nil // Use default
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return fmt.Errorf("invalid value for %s: %w", key, err)
	}
	*dest = parsed
	return nil
}
