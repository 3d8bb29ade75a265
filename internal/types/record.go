package types

import (
	"fmt"
	"math"
	"strings"
)

// Record is a single procurement notice as decoded from one source.
//
// Records are treated as immutable values: the engine copies and selects
// them but never writes to a field. Optional text fields use the empty
// string for "absent"; ValueAmount uses nil.
type Record struct {
	ID           string   `json:"id"`               // Source-assigned reference, never used for identity
	Source       string   `json:"source,omitempty"` // Name of the feed or scraper that produced the record
	Title        string   `json:"title"`
	Summary      string   `json:"summary,omitempty"`
	BuyerName    string   `json:"buyer_name,omitempty"`
	BuyerCountry string   `json:"buyer_country,omitempty"` // ISO 3166 alpha-2, may be empty
	CPVCodes     []string `json:"cpv_codes,omitempty"`     // Order carries no meaning
	ValueAmount  *float64 `json:"value_amount,omitempty"`
	Currency     string   `json:"currency,omitempty"`
	URL          string   `json:"url,omitempty"`
}

// HasValue reports whether the record carries a value amount.
func (r Record) HasValue() bool {
	return r.ValueAmount != nil
}

// Value returns the value amount, or 0 if absent.
func (r Record) Value() float64 {
	if r.ValueAmount == nil {
		return 0
	}
	return *r.ValueAmount
}

// Validate reports field values that no source should produce.
//
// The deduplication engine tolerates every one of these and never calls
// Validate itself; ingestion tooling uses it to flag suspicious input.
func (r *Record) Validate() error {
	if strings.TrimSpace(r.Title) == "" {
		return fmt.Errorf("title is required")
	}
	if r.ValueAmount != nil {
		v := *r.ValueAmount
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("value_amount must be a finite number (got %v)", v)
		}
		if v < 0 {
			return fmt.Errorf("value_amount cannot be negative (got %.2f)", v)
		}
	}
	if c := strings.TrimSpace(r.BuyerCountry); c != "" && len(c) != 2 {
		return fmt.Errorf("buyer_country must be a 2-letter code (got %q)", r.BuyerCountry)
	}
	return nil
}

// Float returns a pointer to v. Handy for building records in code and tests.
func Float(v float64) *float64 {
	return &v
}
