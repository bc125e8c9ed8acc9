package gohalo

import (
	"math"
	"slices"
	"time"

	"github.com/phil-mansfield/gohalo/geom"
	"github.com/phil-mansfield/gohalo/logging"
)

// SortByBindingEnergy orders the particles of every group from most to
// least bound and returns the ordering as one ParticleList per group, with
// slot 0 empty. records receives each group's centroid, energies, and
// most bound particle and may be nil.
//
// numInGroup, if not nil, must match the group sizes implied by pfof. If
// opt.SeparateFiles is set, ps is returned to ID order. Otherwise it is left
// grouped with each group sorted by energy.
func SortByBindingEnergy(
	ps []Particle, pfof []int64, ngroup int, numInGroup []int,
	records []PropertyRecord, opt *Options,
) ([]ParticleList, error) {
	defer logging.Stage("binding energy sort", time.Now())
	defer opt.Metrics.Stage("sort", time.Now())

	gr, err := IndexGroups(ps, pfof, ngroup)
	if err != nil {
		return nil, err
	}
	if err := checkNumInGroup(numInGroup, gr); err != nil {
		return nil, err
	}
	if records == nil {
		records = newRecords(gr)
	} else if err := checkRecords(records, gr); err != nil {
		return nil, err
	} else {
		for g := 1; g < len(records); g++ {
			records[g].GroupID, records[g].Num = int64(g), gr.NumInGroup[g]
		}
	}

	lists := make([]ParticleList, ngroup+1)
	err = forEachGroup(ps, gr, records, opt, func(t *groupTask) error {
		if len(t.ps) == 0 {
			return nil
		}
		t.centroid()
		t.bindingEnergy()
		lists[t.g] = t.sortByEnergy()
		return nil
	})
	if err != nil {
		return nil, err
	}

	if opt.SeparateFiles {
		RestoreOrder(ps)
	}
	return lists, nil
}

// sortByEnergy reorders the group's particles by ascending total energy and
// records its most bound particle.
func (t *groupTask) sortByEnergy() ParticleList {
	ps, ws, rec, L := t.ps, t.ws, t.rec, t.opt.Period
	n := len(ps)

	for i := range ps {
		ws.ekeys[i] = energyKey{i, ws.energy[i]}
	}
	slices.SortFunc(ws.ekeys, compareEnergyKeys)

	copy(ws.parts, ps)
	list := ParticleList{IDs: make([]int64, n), Unbound: n}
	for k, key := range ws.ekeys {
		ps[k] = ws.parts[key.idx]
		list.IDs[k] = ps[k].ID
		if key.e > 0 && list.Unbound == n {
			list.Unbound = k
		}
	}

	mb := &ps[0]
	rec.MostBoundID, rec.MostBoundPos, rec.MostBoundVel = mb.ID, mb.Pos, mb.Vel
	rec.UnboundIndex = list.Unbound

	r2 := 0.0
	for i := range ps {
		r2 = math.Max(r2, geom.Disp(ps[i].Pos, mb.Pos, L).Norm2())
	}
	rec.RMostBound = math.Sqrt(r2)

	return list
}
