package gohalo

import (
	"math/rand"
	"testing"

	"github.com/phil-mansfield/gohalo/geom"
	"github.com/stretchr/testify/assert"
)

func TestShrinkingCentroidSymmetric(t *testing.T) {
	ps := uniformSphere(10000, 2, 3)
	xs, vs, ms := positions(ps)
	opt := testOptions()

	for _, workers := range []int{1, 4} {
		c := shrinkingCentroid(&splitter{workers}, xs, vs, ms, nil, opt)
		assert.InDelta(t, 1.0, c.mass, 1e-10)
		for d := 0; d < 3; d++ {
			assert.InDelta(t, 0, c.cm[d], 1e-10)
		}
		assert.InDelta(t, 2, c.size, 0.02)
	}
}

func TestShrinkingCentroidTail(t *testing.T) {
	r := rand.New(rand.NewSource(5))
	core := gaussianCloud(9000, 1, geom.Vec{}, r)
	tail := gaussianCloud(1000, 0.5, geom.Vec{10, 0, 0}, r)
	xs, vs, ms := positions(append(core, tail...))
	opt := testOptions()

	naive := 0.0
	for i := range xs {
		naive += xs[i][0] / float64(len(xs))
	}
	c := shrinkingCentroid(&splitter{1}, xs, vs, ms, nil, opt)

	assert.InDelta(t, 1, naive, 0.1)
	assert.Less(t, c.cm.Norm(), 0.2)
	assert.Less(t, c.cm.Norm(), naive)
}

func TestShrinkingCentroidSmall(t *testing.T) {
	// Below CMMinNum/CMFrac particles the plain centroid is used.
	r := rand.New(rand.NewSource(9))
	ps := gaussianCloud(100, 1, geom.Vec{1, 2, 3}, r)
	ps[0].Pos = geom.Vec{100, 0, 0}
	xs, vs, ms := positions(ps)

	c := shrinkingCentroid(&splitter{1}, xs, vs, ms, nil, testOptions())
	mean := geom.Vec{}
	for i := range xs {
		mean = mean.Add(xs[i].Scale(1.0 / 100))
	}
	for d := 0; d < 3; d++ {
		assert.InDelta(t, mean[d], c.cm[d], 1e-10)
	}
}

func TestShrinkingCentroidMassless(t *testing.T) {
	xs := []geom.Vec{{1, 0, 0}, {0, 1, 0}}
	vs := make([]geom.Vec, 2)
	ms := []float64{0, 0}

	c := shrinkingCentroid(&splitter{1}, xs, vs, ms, nil, testOptions())
	assert.Equal(t, 0.0, c.mass)
	assert.Equal(t, geom.Vec{}, c.cm)

	c = shrinkingCentroid(&splitter{1}, nil, nil, nil, nil, testOptions())
	assert.Equal(t, 0, c.n)
}

func TestGroupCentroidPeriodic(t *testing.T) {
	// A sphere straddling the box edge has its centroid on the edge.
	L := 10.0
	ps := uniformSphere(2000, 1, 21)
	for i := range ps {
		ps[i].Pos = geom.WrapVec(ps[i].Pos, L)
	}
	opt := testOptions()
	opt.Period = L
	opt.Init()

	task := newTestTask(ps, opt, 1)
	task.centroid()
	for d := 0; d < 3; d++ {
		x := geom.Periodic(task.rec.CM[d], L)
		assert.InDelta(t, 0, x, 1e-8)
	}
	assert.InDelta(t, 1, task.rec.Size, 0.02)
	assert.InDelta(t, 1, task.rec.Mass, 1e-10)
}
