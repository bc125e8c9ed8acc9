package tensor

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phil-mansfield/gohalo/geom"
)

func randomSym3(gen *rand.Rand) Matrix3 {
	m := Matrix3{}
	for i := 0; i < 3; i++ {
		for j := i; j < 3; j++ {
			m[i][j] = gen.Float64()*2 - 1
			m[j][i] = m[i][j]
		}
	}
	return m
}

func TestDet(t *testing.T) {
	tests := []struct {
		m   Matrix3
		det float64
	}{
		{Identity3(), 1},
		{Matrix3{{2, 0, 0}, {0, 3, 0}, {0, 0, 4}}, 24},
		{Matrix3{{1, 2, 3}, {4, 5, 6}, {7, 8, 9}}, 0},
		{Matrix3{{2, -1, 0}, {-1, 2, -1}, {0, -1, 2}}, 4},
	}

	for i, test := range tests {
		assert.InDelta(t, test.det, test.m.Det(), 1e-12, "%d) Det", i)
	}
}

func TestEigenSym3Reconstruction(t *testing.T) {
	gen := rand.New(rand.NewSource(1337))

	for trial := 0; trial < 50; trial++ {
		m := randomSym3(gen)
		vals, vecs, ok := EigenSym3(&m)
		require.True(t, ok)

		assert.True(t, vals[0] <= vals[1] && vals[1] <= vals[2],
			"%d) eigenvalues %v are not ascending", trial, vals)

		for j := 0; j < 3; j++ {
			v := vecs.Column(j)
			mv := m.MultVec(v)
			for i := 0; i < 3; i++ {
				assert.InDelta(t, vals[j]*v[i], mv[i], 1e-9,
					"%d) column %d is not an eigenvector", trial, j)
			}
			assert.InDelta(t, 1.0, v.Norm(), 1e-9)
		}

		prod := vals[0] * vals[1] * vals[2]
		assert.InDelta(t, m.Det(), prod, 1e-9)
	}
}

func TestEigenSym3Degenerate(t *testing.T) {
	id := Identity3()
	m := id.Scale(2)
	vals, vecs, ok := EigenSym3(&m)
	require.True(t, ok)
	assert.InDeltaSlice(t, []float64{2, 2, 2}, vals[:], 1e-12)

	// Repeat calls must agree exactly.
	vals2, vecs2, _ := EigenSym3(&m)
	assert.Equal(t, vals, vals2)
	assert.Equal(t, vecs, vecs2)
	assert.InDelta(t, 1.0, math.Abs(vecs.Det()), 1e-12)
}

func TestMultTranspose(t *testing.T) {
	gen := rand.New(rand.NewSource(7))
	m := randomSym3(gen)
	_, vecs, ok := EigenSym3(&m)
	require.True(t, ok)

	vt := vecs.Transpose()
	id := vt.Mult(&vecs)
	exp := Identity3()
	for i := 0; i < 3; i++ {
		assert.InDeltaSlice(t, exp[i][:], id[i][:], 1e-9)
	}
}

func TestSymOuter3(t *testing.T) {
	m := Matrix3{}
	m.SymOuter3(geom.Vec{1, 2, 3}, geom.Vec{1, 2, 3}, 2)
	assert.Equal(t, Matrix3{{2, 4, 6}, {4, 8, 12}, {6, 12, 18}}, m)
	assert.Equal(t, m, m.Transpose())
}

func TestMatrix6(t *testing.T) {
	m := Matrix6{}
	for i := 0; i < 6; i++ {
		m[i][i] = float64(i + 1)
	}
	assert.InDelta(t, 720.0, m.Det(), 1e-9)

	vals, _, ok := EigenSym6(&m)
	require.True(t, ok)
	assert.InDeltaSlice(t, []float64{1, 2, 3, 4, 5, 6}, vals[:], 1e-9)

	n := Matrix6{}
	n.SymOuter6(Vec6{1, 0, 0, 0, 0, 1}, 1)
	assert.Equal(t, 1.0, n[0][5])
	assert.Equal(t, 1.0, n[5][0])
	assert.InDelta(t, 0.0, n.Det(), 1e-12)
}
