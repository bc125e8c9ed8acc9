package gohalo

import (
	"math"

	"github.com/phil-mansfield/gohalo/geom"
	"github.com/phil-mansfield/gohalo/tensor"
)

// kinematicSums are the additive kinematic moments of a set of particles
// measured in a frame centered on their centroid.
type kinematicSums struct {
	j, j200c, j200m geom.Vec
	velDisp         tensor.Matrix3
	ekin            float64
}

func addKinematicSums(a, b kinematicSums) kinematicSums {
	return kinematicSums{
		j:       a.j.Add(b.j),
		j200c:   a.j200c.Add(b.j200c),
		j200m:   a.j200m.Add(b.j200m),
		velDisp: a.velDisp.Add(&b.velDisp),
		ekin:    a.ekin + b.ekin,
	}
}

func addFloats(a, b float64) float64 { return a + b }

// kinematicsOf sums the angular momentum, velocity dispersion, and kinetic
// energy of a particle set. Angular momentum is also summed separately for
// the particles with squared radius below r200c2 and r200m2.
func kinematicsOf(
	sp *splitter, xs, vs []geom.Vec, ms []float64, idx []int,
	r200c2, r200m2 float64,
) kinematicSums {
	return reduce(sp, setLen(idx, xs), func(start, end int) kinematicSums {
		s := kinematicSums{}
		for k := start; k < end; k++ {
			i := particleIndex(idx, k)
			x, v, m := xs[i], vs[i], ms[i]

			j := x.Cross(v).Scale(m)
			s.j = s.j.Add(j)
			r2 := x.Norm2()
			if r2 < r200c2 {
				s.j200c = s.j200c.Add(j)
			}
			if r2 < r200m2 {
				s.j200m = s.j200m.Add(j)
			}

			s.velDisp.SymOuter3(v, v, m)
			s.ekin += 0.5 * m * v.Norm2()
		}
		return s
	}, addKinematicSums)
}

// rotationOf returns sum m (jz/R)^2, where jz is the specific angular
// momentum of a particle along axis and R is its distance from the axis.
func rotationOf(
	sp *splitter, xs, vs []geom.Vec, ms []float64, idx []int, axis geom.Vec,
) float64 {
	return reduce(sp, setLen(idx, xs), func(start, end int) float64 {
		sum := 0.0
		for k := start; k < end; k++ {
			i := particleIndex(idx, k)
			x := xs[i]
			z := x.Dot(axis)
			R2 := x.Norm2() - z*z
			if R2 <= 0 {
				continue
			}
			jz := x.Cross(vs[i]).Dot(axis)
			sum += ms[i] * jz * jz / R2
		}
		return sum
	}, addFloats)
}

// direction returns the unit vector along v.
func direction(v geom.Vec) (geom.Vec, bool) {
	n := v.Norm()
	if n == 0 || math.IsNaN(n) {
		return geom.Vec{}, false
	}
	return v.Scale(1 / n), true
}

// krot is the fraction of kinetic energy in ordered rotation about the
// angular momentum axis.
func krot(
	sp *splitter, xs, vs []geom.Vec, ms []float64, idx []int,
	j geom.Vec, ekin float64,
) float64 {
	axis, ok := direction(j)
	if !ok || ekin <= 0 {
		return 0
	}
	return 0.5 * rotationOf(sp, xs, vs, ms, idx, axis) / ekin
}

// sigma is the geometric mean velocity dispersion of a dispersion tensor.
func sigma(velDisp *tensor.Matrix3) float64 {
	return math.Pow(math.Abs(velDisp.Det()), 1.0/6)
}

// bullockSpin is the spin parameter of Bullock et al. (2001) for a sphere of
// mass m and radius r with angular momentum j.
func bullockSpin(j geom.Vec, m, r, G float64) float64 {
	if m <= 0 || r <= 0 || G <= 0 {
		return 0
	}
	return j.Norm() / (m * math.Sqrt(2*G*m*r))
}

// radialProfile scans the radius keys outward, setting the peak of the
// circular velocity curve and the half-mass radius. The peak is only
// searched where at least 1/sqrt(N) of the group's mass is enclosed.
func (t *groupTask) radialProfile() {
	rec, ws, G := t.rec, t.ws, t.opt.G
	n := len(ws.keys)
	if n == 0 || rec.Mass <= 0 {
		return
	}

	minMass := rec.Mass / math.Sqrt(float64(n))
	half := 0.5 * rec.Mass
	enc, halfFound := 0.0, false
	for j, k := range ws.keys {
		enc += ws.mass[k.idx]
		r := math.Sqrt(k.r2)
		if !halfFound && enc > half {
			rec.RHalfMass, halfFound = r, true
		}
		if r <= 0 || enc < minMass {
			continue
		}
		if vc := math.Sqrt(G * enc / r); vc > rec.Vmax {
			rec.Vmax, rec.Rmax, rec.MassAtVmax = vc, r, enc
			rec.RVNum = j + 1
		}
	}
}

// kinematics computes the angular momentum, dispersion, rotation, spin,
// concentration, and shape of the group along with their analogues for the
// particles inside Rmax. Overdensity radii must already be set.
func (t *groupTask) kinematics() {
	rec, ws, opt := t.rec, t.ws, t.opt
	t.radialProfile()

	r200c, r200m := rec.R200c(), rec.R200m()
	ks := kinematicsOf(t.sp, ws.rel, ws.relVel, ws.mass, nil,
		r200c*r200c, r200m*r200m)
	rec.J, rec.J200c, rec.J200m = ks.j, ks.j200c, ks.j200m
	if rec.Mass > 0 {
		rec.VelDisp = ks.velDisp.Scale(1 / rec.Mass)
	}
	rec.Sigma = sigma(&rec.VelDisp)
	rec.Krot = krot(t.sp, ws.rel, ws.relVel, ws.mass, nil, ks.j, ks.ekin)
	rec.LambdaB = bullockSpin(rec.J, rec.M200c(), r200c, opt.G)

	t.concentration()

	sh := shapeOf(t.sp, ws.rel, ws.mass, nil, ws.rot, opt.MorphTolerance)
	rec.Q, rec.S, rec.EigenVec = sh.q, sh.s, sh.axes

	if rec.RVNum == 0 {
		return
	}
	ws.subset = ws.subset[:0]
	for _, k := range ws.keys[:rec.RVNum] {
		ws.subset = append(ws.subset, k.idx)
	}

	rv := kinematicsOf(t.sp, ws.rel, ws.relVel, ws.mass, ws.subset, -1, -1)
	rec.RVJ = rv.j
	if rec.MassAtVmax > 0 {
		rec.RVVelDisp = rv.velDisp.Scale(1 / rec.MassAtVmax)
	}
	rec.RVSigma = sigma(&rec.RVVelDisp)
	rec.RVKrot = krot(t.sp, ws.rel, ws.relVel, ws.mass, ws.subset, rv.j, rv.ekin)
	rec.RVLambdaB = bullockSpin(rv.j, rec.MassAtVmax, rec.Rmax, opt.G)

	if rec.RVNum >= minShapeNum {
		sh := shapeOf(t.sp, ws.rel, ws.mass, ws.subset, ws.rot,
			opt.MorphTolerance)
		rec.RVQ, rec.RVS, rec.RVEigenVec = sh.q, sh.s, sh.axes
	}
}
