// Package normalize canonicalizes record fields for comparison.
//
// Normalized values are only ever used to compare records; they are never
// written back onto a record.
package normalize

import (
	"sort"
	"strings"
	"unicode"
)

// Text lower-cases s, replaces every rune that is neither a letter, a digit
// nor whitespace with a space, collapses whitespace runs and trims.
// It never fails; empty input yields "".
func Text(s string) string {
	if s == "" {
		return ""
	}

	var b strings.Builder
	b.Grow(len(s))
	pendingSpace := false
	for _, r := range strings.ToLower(s) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			if pendingSpace && b.Len() > 0 {
				b.WriteByte(' ')
			}
			pendingSpace = false
			b.WriteRune(r)
			continue
		}
		// Punctuation, symbols and whitespace all act as separators.
		pendingSpace = true
	}
	return b.String()
}

// Tokens splits the normalized form of s on whitespace.
func Tokens(s string) []string {
	return strings.Fields(Text(s))
}

// Country trims and upper-cases a country code.
func Country(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}

// Codes returns the distinct, trimmed, non-empty codes in ascending order.
// The input slice is not modified.
func Codes(codes []string) []string {
	if len(codes) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(codes))
	out := make([]string, 0, len(codes))
	for _, c := range codes {
		c = strings.TrimSpace(c)
		if c == "" {
			continue
		}
		if _, dup := seen[c]; dup {
			continue
		}
		seen[c] = struct{}{}
		out = append(out, c)
	}
	sort.Strings(out)
	return out
}
