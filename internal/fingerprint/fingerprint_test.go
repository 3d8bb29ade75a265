package fingerprint

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tenderlink/tenderlink/internal/types"
)

func TestComputeIsStable(t *testing.T) {
	r := types.Record{
		Title:        "Supply of Office Furniture",
		BuyerName:    "Ministry of Finance",
		BuyerCountry: "EE",
		CPVCodes:     []string{"39130000", "39100000"},
	}

	fp := Compute(r)
	assert.Len(t, string(fp), 64)
	assert.Equal(t, fp, Compute(r))
	// Case, code order and country case do not matter.
	assert.Equal(t, fp, Compute(types.Record{
		Title:        "supply of office furniture",
		BuyerName:    "MINISTRY OF FINANCE",
		BuyerCountry: "ee",
		CPVCodes:     []string{"39100000", "39130000"},
	}))
}

func TestComputeNormalizes(t *testing.T) {
	base := types.Record{
		Title:        "Road maintenance: Lot 1",
		BuyerName:    "City of Tartu",
		BuyerCountry: "EE",
		CPVCodes:     []string{"45233141", "50230000"},
	}
	variant := types.Record{
		ID:           "different-ref",
		Title:        "  ROAD MAINTENANCE - lot 1 ",
		Summary:      "Summary is not part of the fingerprint",
		BuyerName:    "city of tartu",
		BuyerCountry: " ee",
		CPVCodes:     []string{"50230000", " 45233141", "45233141"},
		ValueAmount:  types.Float(10),
		URL:          "https://example.org/x",
	}
	assert.Equal(t, Compute(base), Compute(variant))
}

func TestComputeDistinguishesFields(t *testing.T) {
	base := types.Record{Title: "a", BuyerName: "b", BuyerCountry: "DE", CPVCodes: []string{"1"}}

	changes := map[string]types.Record{
		"title":   {Title: "x", BuyerName: "b", BuyerCountry: "DE", CPVCodes: []string{"1"}},
		"buyer":   {Title: "a", BuyerName: "x", BuyerCountry: "DE", CPVCodes: []string{"1"}},
		"country": {Title: "a", BuyerName: "b", BuyerCountry: "FR", CPVCodes: []string{"1"}},
		"cpv":     {Title: "a", BuyerName: "b", BuyerCountry: "DE", CPVCodes: []string{"2"}},
	}
	for field, r := range changes {
		assert.NotEqual(t, Compute(base), Compute(r), "changing %s must change the fingerprint", field)
	}

	// Values must not bleed across field boundaries.
	shifted1 := types.Record{Title: "a b", BuyerName: ""}
	shifted2 := types.Record{Title: "a", BuyerName: "b"}
	assert.NotEqual(t, Compute(shifted1), Compute(shifted2))
}

func TestComputeEmptyRecord(t *testing.T) {
	assert.Equal(t, Compute(types.Record{}), Compute(types.Record{ID: "x", Summary: "y"}))
}

func TestGroup(t *testing.T) {
	records := []types.Record{
		{ID: "1", Title: "Bridge repair", BuyerName: "Roads Dept"},
		{ID: "2", Title: "School meals", BuyerName: "County Council"},
		{ID: "3", Title: "BRIDGE REPAIR", BuyerName: "roads dept."},
		{ID: "4", Title: "Street lighting"},
		{ID: "5", Title: "School Meals!", BuyerName: "County  Council"},
	}

	buckets := Group(records)
	require.Len(t, buckets, 3)

	assert.Equal(t, []int{0, 2}, buckets[0].Indices)
	assert.Equal(t, []int{1, 4}, buckets[1].Indices)
	assert.Equal(t, []int{3}, buckets[2].Indices)
	assert.Equal(t, "1", buckets[0].Records[0].ID)
	assert.Equal(t, "3", buckets[0].Records[1].ID)
}

func TestGroupPartitionsBatch(t *testing.T) {
	records := []types.Record{
		{ID: "a", Title: "X"}, {ID: "b", Title: "x"}, {ID: "c", Title: "Y"},
		{ID: "d"}, {ID: "e"}, {ID: "f", Title: "y", BuyerCountry: "SE"},
	}

	seen := make(map[int]bool)
	total := 0
	for _, b := range Group(records) {
		require.Len(t, b.Indices, len(b.Records))
		for k, idx := range b.Indices {
			assert.False(t, seen[idx], "index %d in two buckets", idx)
			seen[idx] = true
			assert.Equal(t, records[idx].ID, b.Records[k].ID)
			assert.Equal(t, b.Fingerprint, Compute(b.Records[k]))
		}
		total += len(b.Records)
	}
	assert.Equal(t, len(records), total)
	assert.Len(t, seen, len(records))
}

func TestGroupEmpty(t *testing.T) {
	assert.Nil(t, Group(nil))
	assert.Empty(t, GroupMap(nil))
}

func TestGroupMap(t *testing.T) {
	records := []types.Record{{ID: "1", Title: "A"}, {ID: "2", Title: "a"}, {ID: "3", Title: "b"}}
	m := GroupMap(records)
	require.Len(t, m, 2)
	assert.Len(t, m[Compute(records[0])], 2)
	assert.Len(t, m[Compute(records[2])], 1)
}
