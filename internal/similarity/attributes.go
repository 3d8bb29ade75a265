package similarity

import (
	"math"

	"github.com/tenderlink/tenderlink/internal/normalize"
)

// NeutralValueScore is returned when either value amount is missing.
// A missing amount is not evidence that two notices differ.
const NeutralValueScore = 0.5

// CodeSet compares two CPV code sets with the Jaccard index.
//
// If either set is empty the result is 0.0, not neutral. This deliberately
// differs from ValueProximity's handling of missing amounts.
func CodeSet(a, b []string) float64 {
	ca := normalize.Codes(a)
	cb := normalize.Codes(b)
	if len(ca) == 0 || len(cb) == 0 {
		return 0.0
	}
	return Jaccard(ca, cb)
}

// ValueProximity compares two value amounts by relative difference:
// max(0, 1 - |a-b| / ((a+b)/2)).
//
// A nil or non-finite amount yields NeutralValueScore. Two zeros score 1.0
// and a single zero scores 0.0.
func ValueProximity(a, b *float64) float64 {
	if !finite(a) || !finite(b) {
		return NeutralValueScore
	}
	va, vb := *a, *b
	if va == 0 && vb == 0 {
		return 1.0
	}
	if va == 0 || vb == 0 {
		return 0.0
	}

	mean := (va + vb) / 2
	if mean <= 0 {
		// Only reachable with negative amounts, which sources should never emit.
		return 0.0
	}
	return math.Max(0.0, 1.0-math.Abs(va-vb)/mean)
}

func finite(v *float64) bool {
	return v != nil && !math.IsNaN(*v) && !math.IsInf(*v, 0)
}
