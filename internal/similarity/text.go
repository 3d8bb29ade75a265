package similarity

import (
	"strings"
	"unicode/utf8"

	"github.com/tenderlink/tenderlink/internal/normalize"
)

// Text compares two free-text fields.
//
// Both strings are normalized first. An empty side scores 0.0, identical
// normalized strings score 1.0, anything else scores the mean of the token
// Jaccard index and the Levenshtein similarity.
func Text(a, b string) float64 {
	na := normalize.Text(a)
	nb := normalize.Text(b)
	if na == "" || nb == "" {
		return 0.0
	}
	if na == nb {
		return 1.0
	}
	return (Jaccard(strings.Fields(na), strings.Fields(nb)) + LevenshteinSimilarity(na, nb)) / 2
}

// Jaccard returns |A ∩ B| / |A ∪ B| over the distinct elements of a and b.
// Two empty inputs score 0.0.
func Jaccard(a, b []string) float64 {
	setA := toSet(a)
	setB := toSet(b)
	if len(setA) == 0 && len(setB) == 0 {
		return 0.0
	}

	intersection := 0
	for elem := range setA {
		if _, ok := setB[elem]; ok {
			intersection++
		}
	}
	union := len(setA) + len(setB) - intersection
	if union == 0 {
		return 0.0
	}
	return float64(intersection) / float64(union)
}

// Levenshtein returns the rune-level edit distance between a and b.
func Levenshtein(a, b string) int {
	ra := []rune(a)
	rb := []rune(b)
	if len(ra) == 0 {
		return len(rb)
	}
	if len(rb) == 0 {
		return len(ra)
	}

	// Two rows are enough: row i only depends on row i-1.
	prev := make([]int, len(rb)+1)
	curr := make([]int, len(rb)+1)
	for j := range prev {
		prev[j] = j
	}

	for i := 1; i <= len(ra); i++ {
		curr[0] = i
		for j := 1; j <= len(rb); j++ {
			cost := 1
			if ra[i-1] == rb[j-1] {
				cost = 0
			}
			curr[j] = min(
				prev[j]+1,      // deletion
				curr[j-1]+1,    // insertion
				prev[j-1]+cost, // substitution
			)
		}
		prev, curr = curr, prev
	}
	return prev[len(rb)]
}

// LevenshteinSimilarity maps the edit distance to [0,1] as
// 1 - distance/max(len(a), len(b)). Two empty strings score 0.0.
func LevenshteinSimilarity(a, b string) float64 {
	maxLen := max(utf8.RuneCountInString(a), utf8.RuneCountInString(b))
	if maxLen == 0 {
		return 0.0
	}
	return 1.0 - float64(Levenshtein(a, b))/float64(maxLen)
}

func toSet(items []string) map[string]struct{} {
	set := make(map[string]struct{}, len(items))
	for _, it := range items {
		set[it] = struct{}{}
	}
	return set
}
