// Package deduplication links procurement notices that describe the same
// real-world opportunity.
//
// # Overview
//
// Notices arrive from overlapping sources (scrapers, feeds, CSV and XML
// dumps) that re-publish the same tender under different reference numbers,
// spellings and levels of completeness. This package decides which records
// belong together and which single record to keep.
//
// # Architecture
//
// The engine has two entry points built from the sibling packages:
//
//  1. Deduplicate: fingerprint.Group, then resolve.SelectBest per group.
//     Exact-after-normalization matching, O(n). This is the ingestion path.
//  2. FindDuplicates: similarity.Score for every pair, filtered by a
//     threshold. Fuzzy, O(n²). This is a review/audit path and never changes
//     what Deduplicate keeps.
//
// Both are pure functions over immutable records. Nothing is persisted and
// no network or disk I/O happens here.
//
// # Configuration
//
// The defaults are the hand-tuned production values:
//   - Weights: title 0.4, buyer 0.3, CPV 0.2, value 0.1
//   - Threshold: 0.8
//   - Workers: one per CPU for pair scoring
//   - MaxBatchSize: unlimited; callers bound their own batches
//
// See DefaultConfig(), ConfigFromEnv() and LoadConfigFile().
//
// # Usage Examples
//
// Ingestion:
//
//	unique := deduplication.Deduplicate(batch)
//	for _, r := range unique {
//	    store.UpsertByReference(ctx, r)
//	}
//
// Review report:
//
//	cfg := deduplication.DefaultConfig()
//	pairs, err := deduplication.FindDuplicates(ctx, batch, cfg.Threshold, cfg)
//	if err != nil {
//	    return fmt.Errorf("find duplicates: %w", err)
//	}
//	for _, cluster := range deduplication.ClusterPairs(len(batch), pairs) {
//	    log.Printf("possible duplicates: %v", cluster)
//	}
//
// # Error Handling
//
// Record data never causes an error: missing text compares as empty, missing
// CPV codes as an empty set and a missing value amount as neutral. The only
// errors are configuration errors (ErrInvalidThreshold, ErrInvalidWeights,
// ErrBatchTooLarge), reported before any work starts, plus the context error
// if the caller cancels FindDuplicates.
package deduplication
