package deduplication

import (
	"context"
	"fmt"
	"log"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/tenderlink/tenderlink/internal/similarity"
	"github.com/tenderlink/tenderlink/internal/types"
)

// FindDuplicates scores every unordered pair of records and returns those
// whose similarity is at or above threshold.
//
// Pairs are ordered by (LeftIndex, RightIndex) regardless of cfg.Workers.
// A threshold outside [0,1], invalid weights or an oversized batch are
// rejected before any scoring starts. Cost is O(n²); callers may set
// cfg.MaxBatchSize to guard against runaway batches.
//
// ctx is only used to let callers abandon a long run; on cancellation no
// pairs are returned.
func FindDuplicates(ctx context.Context, records []types.Record, threshold float64, cfg Config) ([]types.DuplicatePair, error) {
	if err := validateThreshold(threshold); err != nil {
		return nil, err
	}
	if err := cfg.Weights.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidWeights, err)
	}
	if cfg.MaxBatchSize > 0 && len(records) > cfg.MaxBatchSize {
		return nil, fmt.Errorf("%w: %d records (max %d)", ErrBatchTooLarge, len(records), cfg.MaxBatchSize)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	startTime := time.Now()
	n := len(records)
	if n < 2 {
		return nil, nil
	}

	// rows[i] holds the matches (i, j) with j > i. Each goroutine owns
	// exactly one row, so no locking is needed and merging in row order
	// gives the same output as a sequential scan.
	rows := make([][]types.DuplicatePair, n-1)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(cfg.workerCount())

	for i := 0; i < n-1; i++ {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			rows[i] = scoreRow(records, i, threshold, cfg.Weights)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var pairs []types.DuplicatePair
	for _, row := range rows {
		pairs = append(pairs, row...)
	}

	if cfg.Verbose {
		log.Printf("[DEDUP] Scored %d pairs across %d records in %v: %d at or above %.2f",
			Comparisons(n), n, time.Since(startTime).Round(time.Millisecond), len(pairs), threshold)
	}
	return pairs, nil
}

// scoreRow compares records[i] with every later record.
func scoreRow(records []types.Record, i int, threshold float64, w similarity.Weights) []types.DuplicatePair {
	var found []types.DuplicatePair
	for j := i + 1; j < len(records); j++ {
		s := similarity.Score(records[i], records[j], w)
		if s.Total >= threshold {
			found = append(found, types.DuplicatePair{
				Left:       records[i],
				Right:      records[j],
				LeftIndex:  i,
				RightIndex: j,
				Score:      s,
			})
		}
	}
	return found
}

// Comparisons returns the number of unordered pairs among n records.
func Comparisons(n int) int {
	if n < 2 {
		return 0
	}
	return n * (n - 1) / 2
}
