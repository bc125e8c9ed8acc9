package gohalo

import (
	"testing"

	"github.com/phil-mansfield/gohalo/geom"
	"github.com/stretchr/testify/assert"
)

func axisCross() []Particle {
	ps := []Particle{}
	for d := 0; d < 3; d++ {
		x := geom.Vec{}
		x[d] = float64(d + 1)
		ps = append(ps,
			Particle{Pos: x, Vel: x.Scale(2), Mass: 1},
			Particle{Pos: x.Scale(-1), Vel: x.Scale(-2), Mass: 1},
		)
	}
	return ps
}

func TestPosSigmaTensor(t *testing.T) {
	sig := PosSigmaTensor(axisCross(), geom.Vec{}, 0)
	for d := 0; d < 3; d++ {
		x := float64(d + 1)
		assert.InDelta(t, x*x/3, sig[d][d], 1e-12)
	}
	assert.Equal(t, 0.0, sig[0][1])
}

func TestInertiaTensor(t *testing.T) {
	ps := axisCross()
	I := InertiaTensor(ps, geom.Vec{}, 0)
	r2 := 0.0
	for _, p := range ps {
		r2 += p.Mass * p.Pos.Norm2()
	}
	assert.InDelta(t, 2*r2, I.Trace(), 1e-12)
	// I_xx = sum m (y^2 + z^2).
	assert.InDelta(t, 2*(4+9), I[0][0], 1e-12)
}

func TestPhaseSigmaTensor(t *testing.T) {
	ps := axisCross()
	cm := PhaseCM(ps, geom.Vec{}, 0)
	for d := range cm {
		assert.InDelta(t, 0, cm[d], 1e-12)
	}

	sig := PhaseSigmaTensor(ps, geom.Vec{}, 0)
	// Velocities are twice the positions.
	assert.InDelta(t, 2*sig[0][0], sig[0][3], 1e-12)
	assert.InDelta(t, 4*sig[1][1], sig[4][4], 1e-12)
	assert.InDelta(t, 0, sig.Det(), 1e-9)
}

func TestPhaseCMPeriodic(t *testing.T) {
	ps := []Particle{{Pos: geom.Vec{9.5, 0, 0}, Mass: 1}, {Pos: geom.Vec{0.5, 0, 0}, Mass: 1}}
	cm := PhaseCM(ps, geom.Vec{}, 10)
	assert.InDelta(t, 0, cm[0], 1e-12)
}
