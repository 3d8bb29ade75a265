package main

import (
	"cmp"
	"slices"

	"github.com/tenderlink/tenderlink/internal/types"
)

// sortedByScore returns a copy of pairs ordered by descending total, ties
// kept in index order.
func sortedByScore(pairs []types.DuplicatePair) []types.DuplicatePair {
	sorted := slices.Clone(pairs)
	slices.SortStableFunc(sorted, func(a, b types.DuplicatePair) int {
		return cmp.Compare(b.Score.Total, a.Score.Total)
	})
	return sorted
}
