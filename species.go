package gohalo

import (
	"math"
	"slices"

	"github.com/phil-mansfield/gohalo/geom"
)

// speciesAccumulator computes the properties of one particle species within
// a group. It runs after the group's kinematics.
type speciesAccumulator interface {
	species() Species
	accumulate(t *groupTask)
}

// accumulatorsFor returns the accumulators of every species in sp.
func accumulatorsFor(sp Species) []speciesAccumulator {
	all := []speciesAccumulator{
		gasAccumulator{}, starAccumulator{}, bhAccumulator{},
		interloperAccumulator{},
	}
	out := []speciesAccumulator{}
	for _, acc := range all {
		if sp.Has(acc.species()) {
			out = append(out, acc)
		}
	}
	return out
}

type gasAccumulator struct{}

func (gasAccumulator) species() Species { return GasSpecies }

func (gasAccumulator) accumulate(t *groupTask) {
	gas := &t.rec.Gas
	var u, z, sfr float64
	t.baryonProps(Gas, gas, func(p *Particle) {
		u += p.Mass * p.U
		z += p.Mass * p.Metal
		sfr += p.Mass * p.SFR
	})
	if gas.Mass > 0 {
		gas.Temp, gas.Metal, gas.SFR = u/gas.Mass, z/gas.Mass, sfr/gas.Mass
	}
}

type starAccumulator struct{}

func (starAccumulator) species() Species { return StarSpecies }

func (starAccumulator) accumulate(t *groupTask) {
	star := &t.rec.Star
	var age, z float64
	t.baryonProps(Star, star, func(p *Particle) {
		age += p.Mass * p.Age
		z += p.Mass * p.Metal
	})
	if star.Mass > 0 {
		star.Age, star.Metal = age/star.Mass, z/star.Mass
	}
}

type bhAccumulator struct{}

func (bhAccumulator) species() Species { return BHSpecies }

func (bhAccumulator) accumulate(t *groupTask) {
	t.rec.NBH, t.rec.MBH = countType(t.ps, BlackHole)
}

type interloperAccumulator struct{}

func (interloperAccumulator) species() Species { return InterloperSpecies }

func (interloperAccumulator) accumulate(t *groupTask) {
	t.rec.NInterloper, t.rec.MInterloper = countType(t.ps, Interloper)
}

func countType(ps []Particle, typ ParticleType) (n int, mass float64) {
	for i := range ps {
		if ps[i].Type == typ {
			n++
			mass += ps[i].Mass
		}
	}
	return n, mass
}

// baryonProps fills the properties that gas and stars share from the group
// members of type typ. each is called once on every member.
func (t *groupTask) baryonProps(
	typ ParticleType, out *SpeciesProps, each func(p *Particle),
) {
	ps, ws, rec, opt := t.ps, t.ws, t.rec, t.opt

	ws.sx, ws.sv, ws.sm = ws.sx[:0], ws.sv[:0], ws.sm[:0]
	for i := range ps {
		if ps[i].Type != typ {
			continue
		}
		ws.sx = append(ws.sx, ws.rel[i])
		ws.sv = append(ws.sv, ws.relVel[i])
		ws.sm = append(ws.sm, ps[i].Mass)
		each(&ps[i])
	}

	out.N = len(ws.sm)
	if out.N == 0 {
		return
	}
	c := shrinkingCentroid(t.sp, ws.sx, ws.sv, ws.sm, nil, opt)
	out.Mass, out.CM, out.CMVel = c.mass, c.cm, c.cmVel
	if out.Mass <= 0 {
		return
	}

	apertures := [4]float64{rec.Rmax, opt.Aperture30, opt.Aperture50,
		rec.R500c()}
	var apMass [4]float64
	for k := range ws.sx {
		ws.sx[k] = ws.sx[k].Sub(out.CM)
		ws.sv[k] = ws.sv[k].Sub(out.CMVel)
		r2 := ws.sx[k].Norm2()
		for a, r := range apertures {
			if r2 <= r*r {
				apMass[a] += ws.sm[k]
			}
		}
	}
	out.MassInRmax, out.Mass30kpc = apMass[0], apMass[1]
	out.Mass50kpc, out.Mass500c = apMass[2], apMass[3]

	if out.N < minShapeNum {
		return
	}

	ks := kinematicsOf(t.sp, ws.sx, ws.sv, ws.sm, nil, -1, -1)
	out.J = ks.j
	out.VelDisp = ks.velDisp.Scale(1 / out.Mass)
	out.Sigma = sigma(&out.VelDisp)
	out.T = ks.ekin
	out.Krot = krot(t.sp, ws.sx, ws.sv, ws.sm, nil, ks.j, ks.ekin)
	out.RHalfMass = halfMassRadius(ws.sx, ws.sm, out.Mass, ws)

	sh := shapeOf(t.sp, ws.sx, ws.sm, nil, ws.rot, opt.MorphTolerance)
	out.Q, out.S, out.EigenVec = sh.q, sh.s, sh.axes
}

// halfMassRadius returns the first radius at which the enclosed mass of xs
// exceeds half of mass. It sorts into ws.skeys.
func halfMassRadius(xs []geom.Vec, ms []float64, mass float64, ws *workspace) float64 {
	ws.skeys = ws.skeys[:0]
	for k := range xs {
		ws.skeys = append(ws.skeys, radKey{k, xs[k].Norm2()})
	}
	slices.SortFunc(ws.skeys, compareRadKeys)

	enc := 0.0
	for _, k := range ws.skeys {
		enc += ms[k.idx]
		if enc > 0.5*mass {
			return math.Sqrt(k.r2)
		}
	}
	return 0
}
