package gohalo

import (
	"cmp"
	"fmt"
	"slices"
)

// ApplyHierarchy sets ParentID and NSub for every record. parents[g] is the
// id of the group that directly contains group g, or 0 if g is a field
// group. NSub counts every descendant, not just direct children.
func ApplyHierarchy(records []PropertyRecord, parents []int64) error {
	ngroup := len(records) - 1
	if len(parents) != len(records) {
		return fmt.Errorf(
			"The hierarchy has %d entries, but there are %d records.",
			len(parents), len(records),
		)
	}
	for g := 1; g <= ngroup; g++ {
		if p := parents[g]; p < 0 || p > int64(ngroup) || p == int64(g) {
			return fmt.Errorf("Group %d has invalid parent %d.", g, p)
		}
		records[g].ParentID = parents[g]
		records[g].NSub = 0
	}

	for g := 1; g <= ngroup; g++ {
		depth := 0
		for p := parents[g]; p > 0; p = parents[p] {
			if depth++; depth > ngroup {
				return fmt.Errorf("The parents of group %d form a cycle.", g)
			}
			records[p].NSub++
		}
	}
	return nil
}

// ReorderBySize returns the ids of every group ordered from the most to the
// least particles. Ties are ordered by id.
func ReorderBySize(records []PropertyRecord) []int64 {
	ids := make([]int64, 0, max(len(records)-1, 0))
	for g := 1; g < len(records); g++ {
		ids = append(ids, int64(g))
	}
	slices.SortFunc(ids, func(a, b int64) int {
		if c := cmp.Compare(records[b].Num, records[a].Num); c != 0 {
			return c
		}
		return cmp.Compare(a, b)
	})
	return ids
}
