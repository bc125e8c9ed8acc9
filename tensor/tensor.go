/*package tensor contains routines for small, symmetric matrices: the 3x3
tensors that show up in dispersion, inertia, and shape calculations and the
6x6 phase-space covariance tensors.

Eigen-decompositions are delegated to gonum. Everything else is written out
by hand because the matrices are tiny and fixed-size.
*/
package tensor

import (
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/phil-mansfield/gohalo/geom"
)

// Matrix3 is a 3x3 matrix stored in row-major order.
type Matrix3 [3][3]float64

// Identity3 returns the 3x3 identity matrix.
func Identity3() Matrix3 {
	return Matrix3{{1, 0, 0}, {0, 1, 0}, {0, 0, 1}}
}

// Add returns m1 + m2.
func (m1 *Matrix3) Add(m2 *Matrix3) Matrix3 {
	out := Matrix3{}
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			out[i][j] = m1[i][j] + m2[i][j]
		}
	}
	return out
}

// Scale returns m * a.
func (m *Matrix3) Scale(a float64) Matrix3 {
	out := Matrix3{}
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			out[i][j] = m[i][j] * a
		}
	}
	return out
}

// Transpose returns the transpose of m.
func (m *Matrix3) Transpose() Matrix3 {
	out := Matrix3{}
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			out[i][j] = m[j][i]
		}
	}
	return out
}

// Mult returns the matrix product m1 * m2.
func (m1 *Matrix3) Mult(m2 *Matrix3) Matrix3 {
	out := Matrix3{}
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			for k := 0; k < 3; k++ {
				out[i][j] += m1[i][k] * m2[k][j]
			}
		}
	}
	return out
}

// MultVec returns the product m * v.
func (m *Matrix3) MultVec(v geom.Vec) geom.Vec {
	return geom.Vec{
		m[0][0]*v[0] + m[0][1]*v[1] + m[0][2]*v[2],
		m[1][0]*v[0] + m[1][1]*v[1] + m[1][2]*v[2],
		m[2][0]*v[0] + m[2][1]*v[1] + m[2][2]*v[2],
	}
}

// Det returns the determinant of m.
func (m *Matrix3) Det() float64 {
	return m[0][0]*(m[1][1]*m[2][2]-m[1][2]*m[2][1]) -
		m[0][1]*(m[1][0]*m[2][2]-m[1][2]*m[2][0]) +
		m[0][2]*(m[1][0]*m[2][1]-m[1][1]*m[2][0])
}

func (m *Matrix3) Trace() float64 { return m[0][0] + m[1][1] + m[2][2] }

// SymOuter3 adds w * a b^T to m, symmetrized so that m stays symmetric under
// floating point round-off.
func (m *Matrix3) SymOuter3(a, b geom.Vec, w float64) {
	for i := 0; i < 3; i++ {
		m[i][i] += w * a[i] * b[i]
		for j := i + 1; j < 3; j++ {
			x := 0.5 * w * (a[i]*b[j] + a[j]*b[i])
			m[i][j] += x
			m[j][i] += x
		}
	}
}

// Column returns the j-th column of m.
func (m *Matrix3) Column(j int) geom.Vec {
	return geom.Vec{m[0][j], m[1][j], m[2][j]}
}

// EigenSym3 returns the eigenvalues of the symmetric matrix m in ascending
// order along with the corresponding unit eigenvectors as the columns of
// vecs. Each column is oriented so that its largest-magnitude component is
// positive. ok is false if the decomposition failed, in which case the
// identity is returned for vecs.
func EigenSym3(m *Matrix3) (vals [3]float64, vecs Matrix3, ok bool) {
	data := make([]float64, 9)
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			data[3*i+j] = 0.5 * (m[i][j] + m[j][i])
		}
	}

	var es mat.EigenSym
	if !es.Factorize(mat.NewSymDense(3, data), true) {
		return vals, Identity3(), false
	}
	es.Values(vals[:])

	ev := &mat.Dense{}
	es.VectorsTo(ev)
	for j := 0; j < 3; j++ {
		sign := columnSign(ev, j, 3)
		for i := 0; i < 3; i++ {
			vecs[i][j] = sign * ev.At(i, j)
		}
	}

	return vals, vecs, true
}

// columnSign returns the factor that makes the largest-magnitude entry of
// column j non-negative.
func columnSign(m *mat.Dense, j, n int) float64 {
	best, sign := -1.0, 1.0
	for i := 0; i < n; i++ {
		if x := math.Abs(m.At(i, j)); x > best {
			best = x
			if m.At(i, j) < 0 {
				sign = -1
			} else {
				sign = +1
			}
		}
	}
	return sign
}
