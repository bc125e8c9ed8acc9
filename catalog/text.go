package catalog

import (
	"fmt"

	"github.com/phil-mansfield/gohalo"
	"github.com/phil-mansfield/table"
	"gonum.org/v1/gonum/floats"
)

// Columns of a text particle file. The species columns are optional.
const (
	idCol = iota
	xCol
	yCol
	zCol
	vxCol
	vyCol
	vzCol
	massCol
	typeCol
	uCol
	metalCol
	sfrCol
	ageCol

	numBaseCols    = massCol + 1
	numSpeciesCols = ageCol + 1
)

// ReadTextParticles reads a whitespace-separated particle table with the
// columns
//
//	id x y z vx vy vz mass [type u metal sfr age]
//
// The bracketed columns are read only if species is true. Ids are read as
// floating point values and so must be below 2^53.
func ReadTextParticles(file string, species bool) ([]gohalo.Particle, error) {
	n := numBaseCols
	if species {
		n = numSpeciesCols
	}
	colIdxs := make([]int, n)
	for i := range colIdxs {
		colIdxs[i] = i
	}

	cols, err := table.ReadTable(file, colIdxs, nil)
	if err != nil {
		return nil, fmt.Errorf("Could not read particles from %s: %w", file, err)
	}
	ps := make([]gohalo.Particle, len(cols[idCol]))
	if len(ps) > 0 && floats.Min(cols[massCol]) < 0 {
		return nil, fmt.Errorf("The particles in %s have negative masses.", file)
	}

	for i := range ps {
		p := &ps[i]
		p.ID = int64(cols[idCol][i])
		p.Pos[0], p.Pos[1], p.Pos[2] = cols[xCol][i], cols[yCol][i], cols[zCol][i]
		p.Vel[0], p.Vel[1], p.Vel[2] = cols[vxCol][i], cols[vyCol][i], cols[vzCol][i]
		p.Mass = cols[massCol][i]
		if !species {
			continue
		}
		p.Type = gohalo.ParticleType(cols[typeCol][i])
		p.U, p.Metal = cols[uCol][i], cols[metalCol][i]
		p.SFR, p.Age = cols[sfrCol][i], cols[ageCol][i]
	}
	return ps, nil
}

// ReadGroupIDs reads a two-column table of particle ids and group ids and
// returns the group id array indexed by the dense ids of ids, along with the
// number of groups. Particles missing from the file are unassigned.
func ReadGroupIDs(file string, ids *IDMap) (pfof []int64, ngroup int, err error) {
	cols, err := table.ReadTable(file, []int{0, 1}, nil)
	if err != nil {
		return nil, 0, fmt.Errorf("Could not read group ids from %s: %w", file, err)
	}

	pfof = make([]int64, ids.Len())
	if len(cols[1]) > 0 {
		ngroup = max(int(floats.Max(cols[1])), 0)
	}
	for i := range cols[0] {
		d, ok := ids.Dense(int64(cols[0][i]))
		if !ok {
			return nil, 0, fmt.Errorf(
				"%s assigns a group to particle %d, which was never read.",
				file, int64(cols[0][i]),
			)
		}
		pfof[d] = int64(cols[1][i])
	}
	return pfof, ngroup, nil
}
