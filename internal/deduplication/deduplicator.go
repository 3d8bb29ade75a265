package deduplication

import (
	"fmt"
	"time"

	"github.com/tenderlink/tenderlink/internal/fingerprint"
	"github.com/tenderlink/tenderlink/internal/resolve"
	"github.com/tenderlink/tenderlink/internal/types"
)

// Deduplicate collapses every fingerprint group of records to its most
// complete member.
//
// Canonical records are returned in the order their group first appears in
// the input. The operation is idempotent: deduplicating its own output
// returns that output unchanged.
func Deduplicate(records []types.Record) []types.Record {
	return DeduplicateWithReport(records).Records
}

// DeduplicateWithReport is Deduplicate plus the groups it formed and
// statistics about the run.
func DeduplicateWithReport(records []types.Record) *Result {
	startTime := time.Now()

	buckets := fingerprint.Group(records)
	result := &Result{
		Records: make([]types.Record, 0, len(buckets)),
		Groups:  make([]types.DuplicateGroup, 0, len(buckets)),
	}

	for _, b := range buckets {
		best := resolve.SelectBestIndex(b.Records)
		result.Records = append(result.Records, b.Records[best])
		result.Groups = append(result.Groups, types.DuplicateGroup{
			Fingerprint:    b.Fingerprint,
			Members:        b.Records,
			MemberIndices:  b.Indices,
			CanonicalIndex: best,
		})

		if len(b.Records) > 1 {
			result.Stats.MultiMemberGroups++
		}
		if len(b.Records) > result.Stats.LargestGroup {
			result.Stats.LargestGroup = len(b.Records)
		}
	}

	result.Stats.TotalRecords = len(records)
	result.Stats.UniqueCount = len(result.Records)
	result.Stats.DuplicatesRemoved = len(records) - len(result.Records)
	result.Stats.ProcessingTimeMs = time.Since(startTime).Milliseconds()
	return result
}

// Result represents the result of batch deduplication
type Result struct {
	// Records are the canonical records, one per group, in group-first-seen order
	Records []types.Record `json:"records"`

	// Groups partition the input batch; Groups[i].Canonical() == Records[i]
	Groups []types.DuplicateGroup `json:"groups"`

	// Statistics about the deduplication process
	Stats Stats `json:"stats"`
}

// Stats provides metrics about the deduplication process
type Stats struct {
	// TotalRecords is the number of input records
	TotalRecords int `json:"total_records"`

	// UniqueCount is the number of canonical records kept
	UniqueCount int `json:"unique_count"`

	// DuplicatesRemoved is TotalRecords - UniqueCount
	DuplicatesRemoved int `json:"duplicates_removed"`

	// MultiMemberGroups is the number of groups with two or more members
	MultiMemberGroups int `json:"multi_member_groups"`

	// LargestGroup is the size of the biggest group
	LargestGroup int `json:"largest_group"`

	// ProcessingTimeMs is the time taken for deduplication in milliseconds
	ProcessingTimeMs int64 `json:"processing_time_ms"`
}

// Validate checks that the result is internally consistent
func (r *Result) Validate() error {
	if len(r.Records) != len(r.Groups) {
		return fmt.Errorf("records length (%d) does not match groups length (%d)",
			len(r.Records), len(r.Groups))
	}
	if r.Stats.UniqueCount != len(r.Records) {
		return fmt.Errorf("stats.unique_count (%d) does not match records length (%d)",
			r.Stats.UniqueCount, len(r.Records))
	}
	if r.Stats.TotalRecords != r.Stats.UniqueCount+r.Stats.DuplicatesRemoved {
		return fmt.Errorf("stats.total_records (%d) does not match unique + removed (%d)",
			r.Stats.TotalRecords, r.Stats.UniqueCount+r.Stats.DuplicatesRemoved)
	}

	// Groups must partition the input indices
	seen := make(map[int]bool, r.Stats.TotalRecords)
	members := 0
	for i, g := range r.Groups {
		if len(g.Members) == 0 {
			return fmt.Errorf("group %d is empty", i)
		}
		if len(g.MemberIndices) != len(g.Members) {
			return fmt.Errorf("group %d has %d members but %d indices", i, len(g.Members), len(g.MemberIndices))
		}
		if g.CanonicalIndex < 0 || g.CanonicalIndex >= len(g.Members) {
			return fmt.Errorf("group %d canonical index %d out of range (size %d)",
				i, g.CanonicalIndex, len(g.Members))
		}
		for _, idx := range g.MemberIndices {
			if idx < 0 || idx >= r.Stats.TotalRecords {
				return fmt.Errorf("group %d contains invalid index %d (total: %d)", i, idx, r.Stats.TotalRecords)
			}
			if seen[idx] {
				return fmt.Errorf("index %d appears in more than one group", idx)
			}
			seen[idx] = true
		}
		members += len(g.Members)
	}
	if members != r.Stats.TotalRecords {
		return fmt.Errorf("groups cover %d records, expected %d", members, r.Stats.TotalRecords)
	}
	return nil
}
