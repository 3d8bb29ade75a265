package deduplication

import (
	"sort"

	"github.com/tenderlink/tenderlink/internal/types"
)

// ClusterPairs joins near-duplicate pairs into connected components so that
// a reviewer sees "these four notices look alike" rather than six pairs.
//
// n is the size of the batch the pairs came from; pairs referring to
// indices outside [0,n) are ignored. Only components with two or more
// members are returned. Members are sorted ascending and clusters are
// ordered by their smallest member.
func ClusterPairs(n int, pairs []types.DuplicatePair) [][]int {
	if n <= 0 || len(pairs) == 0 {
		return nil
	}

	uf := newUnionFind(n)
	for _, p := range pairs {
		if p.LeftIndex < 0 || p.LeftIndex >= n || p.RightIndex < 0 || p.RightIndex >= n {
			continue
		}
		uf.union(p.LeftIndex, p.RightIndex)
	}

	byRoot := make(map[int][]int)
	for i := 0; i < n; i++ {
		root := uf.find(i)
		byRoot[root] = append(byRoot[root], i)
	}

	var clusters [][]int
	for _, members := range byRoot {
		if len(members) > 1 {
			// Members were appended in ascending order already.
			clusters = append(clusters, members)
		}
	}
	sort.Slice(clusters, func(a, b int) bool {
		return clusters[a][0] < clusters[b][0]
	})
	return clusters
}

type unionFind struct {
	parent []int
	rank   []int
}

func newUnionFind(n int) *unionFind {
	uf := &unionFind{parent: make([]int, n), rank: make([]int, n)}
	for i := range uf.parent {
		uf.parent[i] = i
	}
	return uf
}

func (u *unionFind) find(x int) int {
	for u.parent[x] != x {
		u.parent[x] = u.parent[u.parent[x]]
		x = u.parent[x]
	}
	return x
}

func (u *unionFind) union(a, b int) {
	ra, rb := u.find(a), u.find(b)
	if ra == rb {
		return
	}
	switch {
	case u.rank[ra] < u.rank[rb]:
		u.parent[ra] = rb
	case u.rank[ra] > u.rank[rb]:
		u.parent[rb] = ra
	default:
		u.parent[rb] = ra
		u.rank[ra]++
	}
}
