package gohalo

import (
	"github.com/phil-mansfield/gohalo/geom"
	"github.com/phil-mansfield/gohalo/tensor"
)

// PosSigmaTensor returns the mass-weighted covariance of the positions of ps
// about cm. Positions are taken as minimum-image displacements in a box of
// width L, or directly if L is zero.
func PosSigmaTensor(ps []Particle, cm geom.Vec, L float64) tensor.Matrix3 {
	out, mass := tensor.Matrix3{}, 0.0
	for i := range ps {
		dx := geom.Disp(ps[i].Pos, cm, L)
		out.SymOuter3(dx, dx, ps[i].Mass)
		mass += ps[i].Mass
	}
	if mass <= 0 {
		return tensor.Matrix3{}
	}
	return out.Scale(1 / mass)
}

// InertiaTensor returns the moment of inertia tensor of ps about cm,
// I_ij = sum m (r^2 delta_ij - x_i x_j).
func InertiaTensor(ps []Particle, cm geom.Vec, L float64) tensor.Matrix3 {
	out := tensor.Matrix3{}
	for i := range ps {
		dx := geom.Disp(ps[i].Pos, cm, L)
		r2 := dx.Norm2()
		for d := 0; d < 3; d++ {
			out[d][d] += ps[i].Mass * r2
		}
		out.SymOuter3(dx, dx, -ps[i].Mass)
	}
	return out
}

// PhaseCM returns the mass-weighted mean phase-space position of ps with
// positions measured from origin.
func PhaseCM(ps []Particle, origin geom.Vec, L float64) tensor.Vec6 {
	out, mass := tensor.Vec6{}, 0.0
	for i := range ps {
		w := phaseVec(geom.Disp(ps[i].Pos, origin, L), ps[i].Vel)
		for d := range w {
			out[d] += ps[i].Mass * w[d]
		}
		mass += ps[i].Mass
	}
	if mass <= 0 {
		return tensor.Vec6{}
	}
	for d := range out {
		out[d] /= mass
	}
	return out
}

// PhaseSigmaTensor returns the mass-weighted covariance of the phase-space
// positions of ps about their PhaseCM.
func PhaseSigmaTensor(ps []Particle, origin geom.Vec, L float64) tensor.Matrix6 {
	cm := PhaseCM(ps, origin, L)
	out, mass := tensor.Matrix6{}, 0.0
	for i := range ps {
		w := phaseVec(geom.Disp(ps[i].Pos, origin, L), ps[i].Vel)
		for d := range w {
			w[d] -= cm[d]
		}
		out.SymOuter6(w, ps[i].Mass)
		mass += ps[i].Mass
	}
	if mass <= 0 {
		return tensor.Matrix6{}
	}
	return out.Scale(1 / mass)
}

func phaseVec(x, v geom.Vec) tensor.Vec6 {
	return tensor.Vec6{x[0], x[1], x[2], v[0], v[1], v[2]}
}
