package catalog

import (
	"fmt"

	"github.com/phil-mansfield/table"
)

// ReadHierarchy reads a two-column table of group ids and the ids of their
// direct parents and returns the parent array for ngroup groups. Groups not
// listed, and groups with non-positive parents, are field groups.
func ReadHierarchy(file string, ngroup int) ([]int64, error) {
	cols, err := table.ReadTable(file, []int{0, 1}, nil)
	if err != nil {
		return nil, fmt.Errorf("Could not read hierarchy from %s: %w", file, err)
	}

	parents := make([]int64, ngroup+1)
	for i := range cols[0] {
		g, p := int64(cols[0][i]), int64(cols[1][i])
		if g < 1 || g > int64(ngroup) {
			return nil, fmt.Errorf(
				"%s lists group %d, but there are %d groups.", file, g, ngroup,
			)
		}
		parents[g] = max(p, 0)
	}
	return parents, nil
}
