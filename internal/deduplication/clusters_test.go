package deduplication

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/tenderlink/tenderlink/internal/types"
)

func pair(l, r int) types.DuplicatePair {
	return types.DuplicatePair{LeftIndex: l, RightIndex: r}
}

func TestClusterPairs(t *testing.T) {
	tests := []struct {
		name  string
		n     int
		pairs []types.DuplicatePair
		want  [][]int
	}{
		{"no pairs", 5, nil, nil},
		{"single pair", 5, []types.DuplicatePair{pair(1, 3)}, [][]int{{1, 3}}},
		{
			"transitive chain",
			6,
			[]types.DuplicatePair{pair(0, 2), pair(2, 5), pair(1, 4)},
			[][]int{{0, 2, 5}, {1, 4}},
		},
		{
			"ordered by smallest member",
			8,
			[]types.DuplicatePair{pair(6, 7), pair(3, 4), pair(0, 7)},
			[][]int{{0, 6, 7}, {3, 4}},
		},
		{
			"out of range pairs ignored",
			3,
			[]types.DuplicatePair{pair(0, 9), pair(-1, 2), pair(1, 2)},
			[][]int{{1, 2}},
		},
		{"empty batch", 0, []types.DuplicatePair{pair(0, 1)}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ClusterPairs(tt.n, tt.pairs))
		})
	}
}
