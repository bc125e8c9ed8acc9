package gohalo

import (
	"math"
	"slices"

	"github.com/phil-mansfield/gohalo/geom"
	"github.com/phil-mansfield/gohalo/kdtree"
)

// directPotential writes the softened potential energy of every particle to
// pot by direct summation over pairs.
func directPotential(xs []geom.Vec, ms, pot []float64, G, eps float64) {
	eps2 := eps * eps
	clear(pot)
	for i := range xs {
		for j := i + 1; j < len(xs); j++ {
			d2 := xs[i].Sub(xs[j]).Norm2() + eps2
			if d2 <= 0 {
				continue
			}
			phi := -G / math.Sqrt(d2)
			pot[i] += phi * ms[j]
			pot[j] += phi * ms[i]
		}
	}
	for i := range pot {
		pot[i] *= ms[i]
	}
}

// treePotential is directPotential with distant nodes replaced by their
// monopoles.
func treePotential(
	xs []geom.Vec, ms, pot []float64, G, eps float64, con *kdtree.Config,
	workers int,
) {
	tree := kdtree.New(xs, ms, con)
	tree.Potential(G, eps, pot, workers)
	for i := range pot {
		pot[i] *= ms[i]
	}
}

// potentials fills ws.pot and each particle's Potential field.
func (t *groupTask) potentials() {
	ps, ws, opt := t.ps, t.ws, t.opt
	if len(ps) < opt.ParallelThreshold {
		directPotential(ws.rel, ws.mass, ws.pot, opt.G, opt.Softening)
	} else {
		// Centroid-relative positions are already unwrapped.
		treePotential(ws.rel, ws.mass, ws.pot, opt.G, opt.Softening,
			opt.treeConfig(0), t.sp.workers)
	}
	for i := range ps {
		ps[i].Potential = ws.pot[i]
	}
}

// potentialFrame moves the group's CM to its most bound particle and its
// CMVel to the mean velocity of the particles nearest to it. It returns the
// change in CMVel.
func (t *groupTask) potentialFrame() geom.Vec {
	ws, rec, opt := t.ws, t.rec, t.opt
	n := len(t.ps)
	if n == 0 {
		return geom.Vec{}
	}

	imin := 0
	for i := range ws.pot {
		if ws.pot[i] < ws.pot[imin] {
			imin = i
		}
	}
	npot := max(opt.NPotRef, int(opt.FracPotRef*float64(n)))
	npot = min(max(npot, 1), n)

	ws.skeys = ws.skeys[:0]
	for i := range ws.rel {
		ws.skeys = append(ws.skeys, radKey{i, ws.rel[i].Sub(ws.rel[imin]).Norm2()})
	}
	slices.SortFunc(ws.skeys, compareRadKeys)

	mass, mv := 0.0, geom.Vec{}
	for _, k := range ws.skeys[:npot] {
		mass += ws.mass[k.idx]
		mv = mv.Add(ws.relVel[k.idx].Scale(ws.mass[k.idx]))
	}
	if mass <= 0 {
		return geom.Vec{}
	}
	dv := mv.Scale(1 / mass)

	rec.CM = geom.WrapVec(rec.CM.Add(ws.rel[imin]), opt.Period)
	rec.CMVel = rec.CMVel.Add(dv)
	return dv
}

// energySums are the additive totals of an energy pass.
type energySums struct {
	t, pot                     float64
	bound, gasBound, starBound int
	gas, star                  int
}

func addEnergySums(a, b energySums) energySums {
	return energySums{
		a.t + b.t, a.pot + b.pot,
		a.bound + b.bound, a.gasBound + b.gasBound, a.starBound + b.starBound,
		a.gas + b.gas, a.star + b.star,
	}
}

// bindingEnergy computes the potential, kinetic, and total energy of every
// particle in the group, leaving total energies in ws.energy, and sets the
// group's energy totals and bound fractions. Kinetic energies of gas include
// internal energy.
func (t *groupTask) bindingEnergy() {
	ps, ws, rec, opt := t.ps, t.ws, t.rec, t.opt
	t.potentials()

	dv := geom.Vec{}
	if opt.PotRef {
		dv = t.potentialFrame()
	}

	sums := reduce(t.sp, len(ps), func(start, end int) energySums {
		s := energySums{}
		for i := start; i < end; i++ {
			p := &ps[i]
			v := ws.relVel[i].Sub(dv)
			T := 0.5 * p.Mass * v.Norm2()
			if p.Type == Gas {
				T += p.Mass * p.U
			}
			e := T + ws.pot[i]
			ws.energy[i] = e

			s.t += T
			s.pot += ws.pot[i]
			bound := e < 0
			if bound {
				s.bound++
			}
			switch p.Type {
			case Gas:
				s.gas++
				if bound {
					s.gasBound++
				}
			case Star:
				s.star++
				if bound {
					s.starBound++
				}
			}
		}
		return s
	}, addEnergySums)

	// Every pair appears twice in the sum of particle potentials.
	rec.T, rec.Pot = sums.t, 0.5*sums.pot
	if len(ps) > 0 {
		rec.Efrac = float64(sums.bound) / float64(len(ps))
	}
	if opt.Species.Has(GasSpecies) && sums.gas > 0 {
		rec.Gas.Efrac = float64(sums.gasBound) / float64(sums.gas)
	}
	if opt.Species.Has(StarSpecies) && sums.star > 0 {
		rec.Star.Efrac = float64(sums.starBound) / float64(sums.star)
	}
}
