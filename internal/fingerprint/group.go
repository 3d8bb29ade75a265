package fingerprint

import "github.com/tenderlink/tenderlink/internal/types"

// Bucket is one equivalence class of a batch.
type Bucket struct {
	Fingerprint types.Fingerprint
	Records     []types.Record // In input order
	Indices     []int          // Positions of Records in the input batch
}

// Group partitions records by fingerprint in a single pass.
//
// Buckets are returned in the order their first member appears in the
// input, and members keep their input order. Every record lands in exactly
// one bucket.
func Group(records []types.Record) []Bucket {
	if len(records) == 0 {
		return nil
	}

	byPrint := make(map[types.Fingerprint]int, len(records))
	buckets := make([]Bucket, 0, len(records))
	for i, r := range records {
		fp := Compute(r)
		pos, ok := byPrint[fp]
		if !ok {
			pos = len(buckets)
			byPrint[fp] = pos
			buckets = append(buckets, Bucket{Fingerprint: fp})
		}
		buckets[pos].Records = append(buckets[pos].Records, r)
		buckets[pos].Indices = append(buckets[pos].Indices, i)
	}
	return buckets
}

// GroupMap returns the same partition as Group keyed by fingerprint.
// Map iteration order is random; use Group when order matters.
func GroupMap(records []types.Record) map[types.Fingerprint][]types.Record {
	out := make(map[types.Fingerprint][]types.Record)
	for _, b := range Group(records) {
		out[b.Fingerprint] = b.Records
	}
	return out
}
