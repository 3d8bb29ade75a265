// Package fingerprint groups records that are identical after normalization.
//
// A fingerprint is a SHA-256 digest over a fixed, order-independent
// serialization of a record's identity-bearing fields. Grouping by
// fingerprint is O(n) and drives batch deduplication; fuzzy matching is left
// to the similarity package.
package fingerprint

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"

	"github.com/tenderlink/tenderlink/internal/normalize"
	"github.com/tenderlink/tenderlink/internal/types"
)

// Compute derives the fingerprint of r from its normalized title, normalized
// buyer name, sorted CPV codes and upper-cased buyer country.
//
// Every field is written as "tag=value" followed by a zero byte, including
// empty ones, so a value can never shift into a neighbouring slot.
func Compute(r types.Record) types.Fingerprint {
	hasher := sha256.New()
	write := func(tag, value string) {
		_, _ = hasher.Write([]byte(tag))
		_, _ = hasher.Write([]byte{'='})
		_, _ = hasher.Write([]byte(value))
		_, _ = hasher.Write([]byte{0})
	}

	write("title", normalize.Text(r.Title))
	write("buyer", normalize.Text(r.BuyerName))
	write("cpv", strings.Join(normalize.Codes(r.CPVCodes), ";"))
	write("country", normalize.Country(r.BuyerCountry))

	return types.Fingerprint(hex.EncodeToString(hasher.Sum(nil)))
}
