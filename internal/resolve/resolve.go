// Package resolve picks the canonical record of a duplicate group.
package resolve

import (
	"strings"
	"unicode/utf8"

	"github.com/tenderlink/tenderlink/internal/normalize"
	"github.com/tenderlink/tenderlink/internal/types"
)

// Completeness signals and the points each one contributes.
const (
	TitlePoints   = 0.3 // normalized title longer than MinTitleLength
	SummaryPoints = 0.2 // summary longer than MinSummaryLength
	CPVPoints     = 0.2 // at least one CPV code
	BuyerPoints   = 0.1 // buyer name with letters or digits
	ValuePoints   = 0.1 // value amount present and positive
	URLPoints     = 0.1 // URL present

	MinTitleLength   = 10
	MinSummaryLength = 20
)

// QualityScore rates how complete a record is, from 0.0 to 1.0.
func QualityScore(r types.Record) float64 {
	score := 0.0
	if utf8.RuneCountInString(normalize.Text(r.Title)) > MinTitleLength {
		score += TitlePoints
	}
	if utf8.RuneCountInString(strings.TrimSpace(r.Summary)) > MinSummaryLength {
		score += SummaryPoints
	}
	if len(normalize.Codes(r.CPVCodes)) > 0 {
		score += CPVPoints
	}
	// Same presence rule as the fingerprint: a buyer that normalizes to
	// nothing is absent.
	if normalize.Text(r.BuyerName) != "" {
		score += BuyerPoints
	}
	if r.ValueAmount != nil && *r.ValueAmount > 0 {
		score += ValuePoints
	}
	if strings.TrimSpace(r.URL) != "" {
		score += URLPoints
	}
	return score
}

// SelectBestIndex returns the position of the most complete record in group.
// Ties go to the earliest record. An empty group yields -1.
func SelectBestIndex(group []types.Record) int {
	switch len(group) {
	case 0:
		return -1
	case 1:
		return 0
	}

	best := 0
	bestScore := QualityScore(group[0])
	for i := 1; i < len(group); i++ {
		// Strictly greater keeps the first-seen record on ties.
		if s := QualityScore(group[i]); s > bestScore {
			best, bestScore = i, s
		}
	}
	return best
}

// SelectBest returns the most complete record in group, or the zero Record
// if group is empty.
func SelectBest(group []types.Record) types.Record {
	idx := SelectBestIndex(group)
	if idx < 0 {
		return types.Record{}
	}
	return group[idx]
}
