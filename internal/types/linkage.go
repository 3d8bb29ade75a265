package types

// Fingerprint is the hex-encoded digest of a record's identity-bearing
// fields after normalization. Equal fingerprints mean certain duplicates.
type Fingerprint string

// Short returns the first 12 characters, enough to tell groups apart in logs.
func (f Fingerprint) Short() string {
	if len(f) <= 12 {
		return string(f)
	}
	return string(f[:12])
}

// ScoreBreakdown holds the per-attribute sub-scores, each in [0,1].
type ScoreBreakdown struct {
	Title float64 `json:"title"`
	Buyer float64 `json:"buyer"`
	CPV   float64 `json:"cpv"`
	Value float64 `json:"value"`
}

// SimilarityScore is the weighted similarity of an unordered record pair.
type SimilarityScore struct {
	Total     float64        `json:"total"`
	Breakdown ScoreBreakdown `json:"breakdown"`
}

// DuplicateGroup is a set of records sharing a fingerprint together with
// the member chosen to represent them.
type DuplicateGroup struct {
	Fingerprint Fingerprint `json:"fingerprint"`

	// Members are in input order.
	Members []Record `json:"members"`

	// MemberIndices are the positions of Members in the input batch.
	MemberIndices []int `json:"member_indices"`

	// CanonicalIndex indexes into Members.
	CanonicalIndex int `json:"canonical_index"`
}

// Canonical returns the representative record of the group.
func (g DuplicateGroup) Canonical() Record {
	return g.Members[g.CanonicalIndex]
}

// Size returns the number of members.
func (g DuplicateGroup) Size() int {
	return len(g.Members)
}

// DuplicatePair is a probable near-duplicate reported for review.
// LeftIndex is always smaller than RightIndex.
type DuplicatePair struct {
	Left       Record          `json:"left"`
	Right      Record          `json:"right"`
	LeftIndex  int             `json:"left_index"`
	RightIndex int             `json:"right_index"`
	Score      SimilarityScore `json:"score"`
}
