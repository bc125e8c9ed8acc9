package tensor

import (
	"gonum.org/v1/gonum/mat"
)

// Matrix6 is a 6x6 matrix stored in row-major order. It is used for the
// covariance of the combined position-velocity vector.
type Matrix6 [6][6]float64

// Vec6 is a phase-space vector: three position components followed by three
// velocity components.
type Vec6 [6]float64

// Add returns m1 + m2.
func (m1 *Matrix6) Add(m2 *Matrix6) Matrix6 {
	out := Matrix6{}
	for i := 0; i < 6; i++ {
		for j := 0; j < 6; j++ {
			out[i][j] = m1[i][j] + m2[i][j]
		}
	}
	return out
}

// Scale returns m * a.
func (m *Matrix6) Scale(a float64) Matrix6 {
	out := Matrix6{}
	for i := 0; i < 6; i++ {
		for j := 0; j < 6; j++ {
			out[i][j] = m[i][j] * a
		}
	}
	return out
}

// Transpose returns the transpose of m.
func (m *Matrix6) Transpose() Matrix6 {
	out := Matrix6{}
	for i := 0; i < 6; i++ {
		for j := 0; j < 6; j++ {
			out[i][j] = m[j][i]
		}
	}
	return out
}

// SymOuter6 adds w * a a^T to m.
func (m *Matrix6) SymOuter6(a Vec6, w float64) {
	for i := 0; i < 6; i++ {
		for j := i; j < 6; j++ {
			x := w * a[i] * a[j]
			m[i][j] += x
			if i != j {
				m[j][i] += x
			}
		}
	}
}

func (m *Matrix6) dense() *mat.Dense {
	data := make([]float64, 36)
	for i := 0; i < 6; i++ {
		copy(data[6*i:6*i+6], m[i][:])
	}
	return mat.NewDense(6, 6, data)
}

// Det returns the determinant of m.
func (m *Matrix6) Det() float64 {
	return mat.Det(m.dense())
}

// EigenSym6 is the 6x6 analogue of EigenSym3: ascending eigenvalues and
// column eigenvectors.
func EigenSym6(m *Matrix6) (vals [6]float64, vecs Matrix6, ok bool) {
	data := make([]float64, 36)
	for i := 0; i < 6; i++ {
		for j := 0; j < 6; j++ {
			data[6*i+j] = 0.5 * (m[i][j] + m[j][i])
		}
	}

	var es mat.EigenSym
	if !es.Factorize(mat.NewSymDense(6, data), true) {
		for i := 0; i < 6; i++ {
			vecs[i][i] = 1
		}
		return vals, vecs, false
	}
	es.Values(vals[:])

	ev := &mat.Dense{}
	es.VectorsTo(ev)
	for j := 0; j < 6; j++ {
		sign := columnSign(ev, j, 6)
		for i := 0; i < 6; i++ {
			vecs[i][j] = sign * ev.At(i, j)
		}
	}
	return vals, vecs, true
}
