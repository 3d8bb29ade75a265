package deduplication

import "errors"

// Configuration errors. They are returned before any record is scored, so a
// failing call never yields partial results.
var (
	ErrInvalidThreshold = errors.New("invalid threshold")
	ErrInvalidWeights   = errors.New("invalid weights")
	ErrBatchTooLarge    = errors.New("batch too large")
)
