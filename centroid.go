package gohalo

import (
	"math"

	"github.com/phil-mansfield/gohalo/geom"
)

// moments are the zeroth and first mass moments of a set of particles.
type moments struct {
	n      int
	mass   float64
	mx, mv geom.Vec
}

func addMoments(a, b moments) moments {
	return moments{a.n + b.n, a.mass + b.mass, a.mx.Add(b.mx), a.mv.Add(b.mv)}
}

// centroid is the result of a shrinking-sphere centroid calculation.
type centroid struct {
	n          int
	mass, size float64
	cm, cmVel  geom.Vec
}

// particleIndex returns the k-th member of the set described by idx, where
// a nil idx means every particle.
func particleIndex(idx []int, k int) int {
	if idx == nil {
		return k
	}
	return idx[k]
}

func setLen(idx []int, xs []geom.Vec) int {
	if idx == nil {
		return len(xs)
	}
	return len(idx)
}

// momentsWithin sums the moments of the particles within sqrt(r2) of origin.
// A negative r2 includes every particle.
func momentsWithin(
	sp *splitter, xs, vs []geom.Vec, ms []float64, idx []int,
	origin geom.Vec, r2 float64,
) moments {
	return reduce(sp, setLen(idx, xs), func(start, end int) moments {
		mom := moments{}
		for k := start; k < end; k++ {
			i := particleIndex(idx, k)
			if r2 >= 0 && xs[i].Sub(origin).Norm2() > r2 {
				continue
			}
			mom.n++
			mom.mass += ms[i]
			mom.mx = mom.mx.Add(xs[i].Scale(ms[i]))
			mom.mv = mom.mv.Add(vs[i].Scale(ms[i]))
		}
		return mom
	}, addMoments)
}

// maxDist2 returns the largest squared distance between origin and a
// particle in the set.
func maxDist2(sp *splitter, xs []geom.Vec, idx []int, origin geom.Vec) float64 {
	return reduce(sp, setLen(idx, xs), func(start, end int) float64 {
		max2 := 0.0
		for k := start; k < end; k++ {
			r2 := xs[particleIndex(idx, k)].Sub(origin).Norm2()
			max2 = math.Max(max2, r2)
		}
		return max2
	}, math.Max)
}

// shrinkingCentroid computes the mass-weighted centroid of the particle set.
// If the set is large enough, the centroid is refined by repeatedly shrinking
// the squared radius of an aperture around it by CMAdjustFac until no more
// than CMFrac of the set remains inside. The centroid velocity is then taken
// from the last accepted aperture. size is measured from the unrefined
// centroid.
func shrinkingCentroid(
	sp *splitter, xs, vs []geom.Vec, ms []float64, idx []int, opt *Options,
) centroid {
	c := centroid{n: setLen(idx, xs)}
	if c.n == 0 {
		return c
	}

	all := momentsWithin(sp, xs, vs, ms, idx, geom.Vec{}, -1)
	c.mass = all.mass
	if all.mass <= 0 {
		return c
	}
	c.cm = all.mx.Scale(1 / all.mass)
	c.cmVel = all.mv.Scale(1 / all.mass)

	size2 := maxDist2(sp, xs, idx, c.cm)
	c.size = math.Sqrt(size2)

	if !opt.shrinks(c.n) {
		return c
	}

	target := opt.CMFrac * float64(c.n)
	ri, rcmv := size2, size2
	for {
		ri *= opt.CMAdjustFac
		if ri <= 0 {
			break
		}
		in := momentsWithin(sp, xs, vs, ms, idx, c.cm, ri)
		if in.mass <= 0 || float64(in.n) <= target {
			break
		}
		c.cm = in.mx.Scale(1 / in.mass)
		rcmv = ri
	}

	in := momentsWithin(sp, xs, vs, ms, idx, c.cm, rcmv)
	if in.mass > 0 {
		c.cmVel = in.mv.Scale(1 / in.mass)
	}
	return c
}

// centroid fills in the group's mass, size, CM, and CMVel, and loads the
// workspace with centroid-relative positions and velocities sorted by
// radius. Periodic groups are unwrapped about their first particle.
func (t *groupTask) centroid() {
	ps, ws, rec, L := t.ps, t.ws, t.rec, t.opt.Period
	if len(ps) == 0 {
		return
	}

	ref := ps[0].Pos
	for i := range ps {
		ws.unwrapped[i] = geom.Disp(ps[i].Pos, ref, L)
		ws.relVel[i] = ps[i].Vel
		ws.mass[i] = ps[i].Mass
	}
	c := shrinkingCentroid(t.sp, ws.unwrapped, ws.relVel, ws.mass, nil, t.opt)

	rec.Mass, rec.Size = c.mass, c.size
	rec.CM = geom.WrapVec(ref.Add(c.cm), L)
	rec.CMVel = c.cmVel

	ws.relativize(ps, rec.CM, rec.CMVel, L)
}
