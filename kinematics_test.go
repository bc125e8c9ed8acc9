package gohalo

import (
	"math"
	"math/rand"
	"testing"

	"github.com/phil-mansfield/gohalo/geom"
	"github.com/phil-mansfield/gohalo/tensor"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runKinematics(ps []Particle, opt *Options, workers int) *PropertyRecord {
	task := newTestTask(ps, opt, workers)
	task.centroid()
	task.exclusiveMasses()
	task.kinematics()
	return task.rec
}

func TestRadialProfileUniform(t *testing.T) {
	// vc^2 = G M r^2 / R^3 peaks at the edge.
	R := 0.1
	ps := uniformSphere(4000, R, 41)
	rec := runKinematics(ps, testOptions(), 1)

	assert.InDelta(t, math.Sqrt(1/R), rec.Vmax, 1e-3)
	assert.InDelta(t, R, rec.Rmax, 1e-3)
	assert.InDelta(t, 1, rec.MassAtVmax, 1e-3)
	assert.Equal(t, len(ps), rec.RVNum)
	assert.InDelta(t, R*math.Cbrt(0.5), rec.RHalfMass, 1e-3)
}

func TestSolidBodyRotation(t *testing.T) {
	omega := 3.0
	ps := uniformSphere(4000, 1, 43)
	for i := range ps {
		ps[i].Vel = geom.Vec{0, 0, omega}.Cross(ps[i].Pos)
	}

	for _, workers := range []int{1, 4} {
		rec := runKinematics(ps, testOptions(), workers)

		// I_zz = 2/5 M R^2 for a uniform sphere.
		assert.InDelta(t, 0.4*omega, rec.J[2], 0.05)
		assert.Less(t, math.Abs(rec.J[0]), 0.05)
		assert.Less(t, math.Abs(rec.J[1]), 0.05)
		assert.InDelta(t, 1, rec.Krot, 0.01)
		assert.Greater(t, rec.LambdaB, 0.0)
		assert.LessOrEqual(t, rec.J200c.Norm(), rec.J.Norm())
		assert.InDelta(t, 1, rec.RVKrot, 0.01)
	}
}

func TestVelocityDispersion(t *testing.T) {
	r := rand.New(rand.NewSource(47))
	sig := 2.0
	ps := uniformSphere(20000, 1, 47)
	for i := range ps {
		for d := 0; d < 3; d++ {
			ps[i].Vel[d] = sig * r.NormFloat64()
		}
	}
	rec := runKinematics(ps, testOptions(), 4)

	assert.InDelta(t, sig, rec.Sigma, 0.05*sig)
	for d := 0; d < 3; d++ {
		assert.InDelta(t, sig*sig, rec.VelDisp[d][d], 0.05*sig*sig)
	}
	// One of three velocity components is azimuthal.
	assert.InDelta(t, 1.0/3, rec.Krot, 0.05)
}

func TestDegenerateGroups(t *testing.T) {
	opt := testOptions()
	one := []Particle{{ID: 0, Mass: 1, Pos: geom.Vec{1, 1, 1}}}
	rec := runKinematics(one, opt, 1)
	assert.Equal(t, 0.0, rec.Vmax)
	assert.Equal(t, 0, rec.RVNum)
	assert.Equal(t, 0.0, rec.Krot)
	assert.Equal(t, 0.0, rec.LambdaB)
	assert.False(t, math.IsNaN(rec.Sigma))
}

func TestNFWConcentration(t *testing.T) {
	c, ok := nfwConcentration(2, 1000, 7)
	require.True(t, ok)
	assert.Less(t, math.Abs(2-nfwVmaxVvir2(c)), 1e-6)
	assert.Greater(t, c, nfwMinC)

	// Monotonic: larger ratios need larger concentrations.
	c2, ok := nfwConcentration(4, 1000, 7)
	require.True(t, ok)
	assert.Greater(t, c2, c)

	tests := []struct {
		vv2 float64
		n   int
	}{
		{1.05, 1000}, {0.5, 1000}, {2, 99}, {40, 1000},
	}
	for _, test := range tests {
		c, ok := nfwConcentration(test.vv2, test.n, 7)
		assert.False(t, ok)
		assert.Equal(t, 7.0, c)
	}
}

func TestBrent(t *testing.T) {
	x, ok := brent(func(x float64) float64 { return x*x - 2 }, 0, 2, 1e-12, 100)
	require.True(t, ok)
	assert.InDelta(t, math.Sqrt2, x, 1e-10)

	_, ok = brent(func(x float64) float64 { return x*x + 1 }, -1, 1, 1e-12, 100)
	assert.False(t, ok)
}

// ellipsoid fills the ellipsoid with axes (1, q, s) rotated by rot.
func ellipsoid(n int, q, s float64, rot *tensor.Matrix3, seed int64) []Particle {
	r := rand.New(rand.NewSource(seed))
	ps := make([]Particle, 0, n)
	for len(ps) < n {
		u := geom.Vec{2*r.Float64() - 1, 2*r.Float64() - 1, 2*r.Float64() - 1}
		if u.Norm2() > 1 {
			continue
		}
		x := rot.MultVec(geom.Vec{u[0], q * u[1], s * u[2]})
		ps = append(ps, Particle{ID: int64(len(ps)), Pos: x, Mass: 1})
	}
	return ps
}

func TestShape(t *testing.T) {
	theta := 0.6
	rot := tensor.Matrix3{
		{math.Cos(theta), -math.Sin(theta), 0},
		{math.Sin(theta), math.Cos(theta), 0},
		{0, 0, 1},
	}
	ps := ellipsoid(20000, 0.6, 0.3, &rot, 53)
	xs, _, ms := positions(ps)

	sh := shapeOf(&splitter{4}, xs, ms, nil, make([]geom.Vec, len(xs)), 1e-3)
	assert.InDelta(t, 0.6, sh.q, 0.03)
	assert.InDelta(t, 0.3, sh.s, 0.03)

	// The major axis is the rotated x axis, up to sign.
	major := geom.Vec(sh.axes[0])
	assert.InDelta(t, 1, math.Abs(major.Dot(rot.Column(0))), 0.01)
	minor := geom.Vec(sh.axes[2])
	assert.InDelta(t, 1, math.Abs(minor[2]), 0.01)

	// The input positions are untouched.
	assert.Equal(t, ps[0].Pos, xs[0])
}

func TestShapeSphere(t *testing.T) {
	ps := uniformSphere(10000, 1, 59)
	xs, _, ms := positions(ps)
	sh := shapeOf(&splitter{1}, xs, ms, nil, make([]geom.Vec, len(xs)), 1e-3)
	assert.InDelta(t, 1, sh.q, 0.05)
	assert.InDelta(t, 1, sh.s, 0.05)
}
