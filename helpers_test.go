package gohalo

import (
	"math"
	"math/rand"

	"github.com/phil-mansfield/gohalo/geom"
)

// randomDirection returns a unit vector drawn uniformly from the sphere.
func randomDirection(r *rand.Rand) geom.Vec {
	z := 2*r.Float64() - 1
	phi := 2 * math.Pi * r.Float64()
	rho := math.Sqrt(1 - z*z)
	return geom.Vec{rho * math.Cos(phi), rho * math.Sin(phi), z}
}

// antithetic returns n particles of mass m at the radii produced by radius
// in mirrored pairs, so that their centroid is exactly at the origin.
func antithetic(
	n int, m float64, seed int64, radius func(i int) float64,
) []Particle {
	r := rand.New(rand.NewSource(seed))
	ps := make([]Particle, 0, n)
	for i := 0; i < n/2; i++ {
		x := randomDirection(r).Scale(radius(i))
		ps = append(ps,
			Particle{Pos: x, Mass: m},
			Particle{Pos: x.Scale(-1), Mass: m},
		)
	}
	for i := range ps {
		ps[i].ID = int64(i)
	}
	return ps
}

// uniformSphere returns n particles of total mass 1 filling a sphere of
// radius R.
func uniformSphere(n int, R float64, seed int64) []Particle {
	return antithetic(n, 1/float64(n), seed, func(i int) float64 {
		return R * math.Cbrt((float64(i)+0.5)/float64(n/2))
	})
}

// isothermalSphere returns n particles of total mass 1 with M(<r) = r for
// r < 1, i.e. a density proportional to r^-2.
func isothermalSphere(n int, seed int64) []Particle {
	return antithetic(n, 1/float64(n), seed, func(i int) float64 {
		return (float64(i) + 0.5) / float64(n/2)
	})
}

// gaussianCloud returns n particles of unit mass with positions drawn from
// an isotropic Gaussian of width sigma about center.
func gaussianCloud(n int, sigma float64, center geom.Vec, r *rand.Rand) []Particle {
	ps := make([]Particle, n)
	for i := range ps {
		for d := 0; d < 3; d++ {
			ps[i].Pos[d] = center[d] + sigma*r.NormFloat64()
		}
		ps[i].Mass = 1
	}
	return ps
}

// singleGroup returns the group id array for n particles all in group 1.
func singleGroup(n int) []int64 {
	pfof := make([]int64, n)
	for i := range pfof {
		pfof[i] = 1
	}
	return pfof
}

// testOptions are the defaults with fixed worker count and cosmology.
func testOptions() *Options {
	opt := DefaultOptions(0.004775, 0.3)
	opt.G = 1
	opt.Workers = 4
	opt.Init()
	return opt
}

// newTestTask loads ps into a stand-alone group task.
func newTestTask(ps []Particle, opt *Options, workers int) *groupTask {
	ws := newWorkspace(0)
	ws.grow(len(ps))
	return &groupTask{
		g: 1, ps: ps, rec: &PropertyRecord{GroupID: 1, Num: len(ps)},
		opt: opt, ws: ws, sp: &splitter{workers},
	}
}

func positions(ps []Particle) ([]geom.Vec, []geom.Vec, []float64) {
	xs := make([]geom.Vec, len(ps))
	vs := make([]geom.Vec, len(ps))
	ms := make([]float64, len(ps))
	for i := range ps {
		xs[i], vs[i], ms[i] = ps[i].Pos, ps[i].Vel, ps[i].Mass
	}
	return xs, vs, ms
}
