package gohalo

import (
	"math"

	"github.com/phil-mansfield/gohalo/geom"
	"github.com/phil-mansfield/gohalo/tensor"
)

const (
	// maxShapeIter bounds the reduced inertia tensor iteration.
	maxShapeIter = 10
	// minShapeNum is the smallest particle set given a shape, dispersion, or
	// rotation measurement.
	minShapeNum = 10
)

// shape is the result of an iterated reduced inertia tensor measurement.
// The rows of axes are the major, intermediate, and minor axes.
type shape struct {
	q, s float64
	axes tensor.Matrix3
}

// reducedTensor returns sum m x x^T / a^2 with a^2 = x^2 + y^2/q^2 + z^2/s^2.
// xs is compact and ms is addressed through idx.
func reducedTensor(
	sp *splitter, xs []geom.Vec, ms []float64, idx []int, q, s float64,
) tensor.Matrix3 {
	q2, s2 := q*q, s*s
	return reduce(sp, len(xs), func(start, end int) tensor.Matrix3 {
		out := tensor.Matrix3{}
		for k := start; k < end; k++ {
			x := xs[k]
			a2 := x[0]*x[0] + x[1]*x[1]/q2 + x[2]*x[2]/s2
			if a2 <= 0 {
				continue
			}
			out.SymOuter3(x, x, ms[particleIndex(idx, k)]/a2)
		}
		return out
	}, func(a, b tensor.Matrix3) tensor.Matrix3 { return a.Add(&b) })
}

// shapeOf measures the axis ratios of a particle set with the iterative
// method of Dubinski & Carlberg (1991). Positions are copied into rot, which
// must be at least as long as the set, and rotated there into the current
// principal frame on each step. The iteration stops once both axis ratios
// change by no more than tol.
func shapeOf(
	sp *splitter, xs []geom.Vec, ms []float64, idx []int, rot []geom.Vec,
	tol float64,
) shape {
	sh := shape{q: 1, s: 1, axes: tensor.Identity3()}
	n := setLen(idx, xs)
	if n == 0 {
		return sh
	}

	rot = rot[:n]
	for k := range rot {
		rot[k] = xs[particleIndex(idx, k)]
	}

	for iter := 0; iter < maxShapeIter; iter++ {
		q, s := sh.q, sh.s

		I := reducedTensor(sp, rot, ms, idx, q, s)
		vals, vecs, ok := tensor.EigenSym3(&I)
		if !ok || vals[2] <= 0 {
			break
		}
		sh.q = math.Sqrt(math.Max(vals[1], 0) / vals[2])
		sh.s = math.Sqrt(math.Max(vals[0], 0) / vals[2])
		if sh.q == 0 || sh.s == 0 {
			// Planar sets have no third axis to reduce by.
			sh.q, sh.s = math.Max(sh.q, tol), math.Max(sh.s, tol)
		}

		// Eigenvectors come back in ascending order as columns.
		step := tensor.Matrix3{}
		for r := 0; r < 3; r++ {
			step[r] = [3]float64(vecs.Column(2 - r))
		}
		sh.axes = step.Mult(&sh.axes)

		sp.run(n, func(_, start, end int) {
			for k := start; k < end; k++ {
				rot[k] = step.MultVec(rot[k])
			}
		})

		if math.Abs(sh.q-q) <= tol && math.Abs(sh.s-s) <= tol {
			break
		}
	}

	return sh
}
