package gohalo

import (
	"cmp"
	"fmt"
	"slices"
)

// Groups is the offset table produced by IndexGroups. Group g occupies
// ps[Offset[g] : Offset[g]+NumInGroup[g]] and unassigned particles occupy
// the trailing slice. Index 0 of both arrays is unused.
type Groups struct {
	NumInGroup    []int
	Offset        []int
	NumUnassigned int
	Total         int
}

// NGroup returns the number of groups.
func (gr *Groups) NGroup() int { return len(gr.NumInGroup) - 1 }

// Slice returns the particles of group g.
func (gr *Groups) Slice(ps []Particle, g int) []Particle {
	start := gr.Offset[g]
	return ps[start : start+gr.NumInGroup[g]]
}

// Unassigned returns the particles that belong to no group.
func (gr *Groups) Unassigned(ps []Particle) []Particle {
	return ps[gr.Total-gr.NumUnassigned : gr.Total]
}

// Partition checks that every particle is counted exactly once.
func (gr *Groups) Partition() error {
	sum := gr.NumUnassigned
	for g := 1; g < len(gr.NumInGroup); g++ {
		sum += gr.NumInGroup[g]
	}
	if sum != gr.Total {
		return fmt.Errorf(
			"Group counts sum to %d, but there are %d particles.",
			sum, gr.Total,
		)
	}
	return nil
}

// groupOf returns the sort key of a particle: its group id, or ngroup+1 for
// unassigned particles.
func groupOf(p *Particle, pfof []int64, ngroup int) (int, error) {
	if p.ID < 0 || p.ID >= int64(len(pfof)) {
		return 0, fmt.Errorf(
			"Particle ID %d is outside the group id array of length %d.",
			p.ID, len(pfof),
		)
	}
	g := pfof[p.ID]
	if g <= 0 {
		return ngroup + 1, nil
	} else if g > int64(ngroup) {
		return 0, fmt.Errorf(
			"Particle %d has group id %d, but there are only %d groups.",
			p.ID, g, ngroup,
		)
	}
	return int(g), nil
}

// CountGroups computes the offset table for ps without reordering it.
func CountGroups(ps []Particle, pfof []int64, ngroup int) (*Groups, error) {
	if ngroup < 0 {
		return nil, fmt.Errorf("Group count must be non-negative, not %d.",
			ngroup)
	}
	gr := &Groups{
		NumInGroup: make([]int, ngroup+1),
		Offset:     make([]int, ngroup+1),
		Total:      len(ps),
	}
	for i := range ps {
		g, err := groupOf(&ps[i], pfof, ngroup)
		if err != nil {
			return nil, err
		}
		if g == ngroup+1 {
			gr.NumUnassigned++
		} else {
			gr.NumInGroup[g]++
		}
	}
	for g := 2; g <= ngroup; g++ {
		gr.Offset[g] = gr.Offset[g-1] + gr.NumInGroup[g-1]
	}
	return gr, nil
}

// IndexGroups reorders ps so that each group is contiguous, ordered by group
// id with unassigned particles last, and returns the offset table. The
// reorder is a stable counting sort so repeated calls with the same pfof
// give identical arrangements.
func IndexGroups(ps []Particle, pfof []int64, ngroup int) (*Groups, error) {
	gr, err := CountGroups(ps, pfof, ngroup)
	if err != nil {
		return nil, err
	}

	next := make([]int, ngroup+2)
	copy(next, gr.Offset)
	next[ngroup+1] = gr.Total - gr.NumUnassigned

	sorted := make([]Particle, len(ps))
	for i := range ps {
		// Ids were validated by CountGroups.
		g, _ := groupOf(&ps[i], pfof, ngroup)
		sorted[next[g]] = ps[i]
		next[g]++
	}
	copy(ps, sorted)

	return gr, nil
}

// RestoreOrder sorts ps by ID. Applied after any sequence of group, radius,
// and energy sorts it returns the buffer to its original order as long as
// the input was ordered by ID.
func RestoreOrder(ps []Particle) {
	slices.SortStableFunc(ps, func(a, b Particle) int {
		return cmp.Compare(a.ID, b.ID)
	})
}

// checkNumInGroup compares a caller-supplied count array to gr.
func checkNumInGroup(numInGroup []int, gr *Groups) error {
	if numInGroup == nil {
		return nil
	}
	if len(numInGroup) != len(gr.NumInGroup) {
		return fmt.Errorf(
			"numInGroup has length %d, but there are %d groups.",
			len(numInGroup), gr.NGroup(),
		)
	}
	for g := 1; g < len(numInGroup); g++ {
		if numInGroup[g] != gr.NumInGroup[g] {
			return fmt.Errorf(
				"numInGroup[%d] = %d, but group %d has %d particles.",
				g, numInGroup[g], g, gr.NumInGroup[g],
			)
		}
	}
	return nil
}
