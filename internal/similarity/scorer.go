// Package similarity scores how alike two procurement records are.
//
// The score is a weighted average of four independent sub-scores (title,
// buyer name, CPV codes, value amount), each in [0,1]. Every function in
// this package is pure and safe for concurrent use.
package similarity

import (
	"fmt"
	"math"

	"github.com/tenderlink/tenderlink/internal/types"
)

// Weights sets how much each attribute contributes to the total score.
// They need not sum to 1; Score divides by their sum.
type Weights struct {
	Title float64 `yaml:"title" json:"title"`
	Buyer float64 `yaml:"buyer" json:"buyer"`
	CPV   float64 `yaml:"cpv" json:"cpv"`
	Value float64 `yaml:"value" json:"value"`
}

// DefaultWeights returns the hand-tuned production weights.
func DefaultWeights() Weights {
	return Weights{
		Title: 0.4,
		Buyer: 0.3,
		CPV:   0.2,
		Value: 0.1,
	}
}

// Sum returns the total of all weights.
func (w Weights) Sum() float64 {
	return w.Title + w.Buyer + w.CPV + w.Value
}

// Validate checks that every weight is a finite non-negative number and that
// at least one is positive.
func (w Weights) Validate() error {
	named := []struct {
		name  string
		value float64
	}{
		{"title", w.Title},
		{"buyer", w.Buyer},
		{"cpv", w.CPV},
		{"value", w.Value},
	}
	for _, n := range named {
		if math.IsNaN(n.value) || math.IsInf(n.value, 0) {
			return fmt.Errorf("%s weight must be finite (got %v)", n.name, n.value)
		}
		if n.value < 0 {
			return fmt.Errorf("%s weight cannot be negative (got %.2f)", n.name, n.value)
		}
	}
	if w.Sum() <= 0 {
		return fmt.Errorf("weights must not all be zero")
	}
	return nil
}

// String returns a compact representation for logs.
func (w Weights) String() string {
	return fmt.Sprintf("title=%.2f buyer=%.2f cpv=%.2f value=%.2f", w.Title, w.Buyer, w.CPV, w.Value)
}

// Score computes the weighted similarity of a and b.
//
// The result is symmetric in its arguments and always within [0,1]. With
// all-zero weights the total is 0.
func Score(a, b types.Record, w Weights) types.SimilarityScore {
	bd := types.ScoreBreakdown{
		Title: Text(a.Title, b.Title),
		Buyer: Text(a.BuyerName, b.BuyerName),
		CPV:   CodeSet(a.CPVCodes, b.CPVCodes),
		Value: ValueProximity(a.ValueAmount, b.ValueAmount),
	}

	total := 0.0
	if sum := w.Sum(); sum > 0 {
		total = (bd.Title*w.Title + bd.Buyer*w.Buyer + bd.CPV*w.CPV + bd.Value*w.Value) / sum
	}

	return types.SimilarityScore{
		Total:     clamp01(total),
		Breakdown: bd,
	}
}

func clamp01(v float64) float64 {
	if v < 0 || math.IsNaN(v) {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
