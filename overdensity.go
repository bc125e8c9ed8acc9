package gohalo

import (
	"math"
	"slices"
	"time"

	"github.com/phil-mansfield/gohalo/cosmo"
	"github.com/phil-mansfield/gohalo/geom"
	"github.com/phil-mansfield/gohalo/kdtree"
	"github.com/phil-mansfield/gohalo/logging"
)

// minEnclosedFrac is the smallest fraction of a group's mass that may define
// an overdensity radius.
const minEnclosedFrac = 0.01

// exclusiveMasses walks inward from the outermost member particle and sets
// each overdensity mass and radius at the first radius whose mean enclosed
// density reaches the definition's threshold. Definitions that are never
// reached fall back to the group's mass and size.
func (t *groupTask) exclusiveMasses() {
	rec, ws := t.rec, t.ws
	th := t.opt.Thresholds()

	found := [cosmo.NumRadii]bool{}
	nFound := 0

	enc := rec.Mass
	for j := len(ws.keys) - 1; j >= 0 && nFound < cosmo.NumRadii; j-- {
		k := ws.keys[j]
		if enc >= minEnclosedFrac*rec.Mass && k.r2 > 0 {
			r := math.Sqrt(k.r2)
			rho := cosmo.LogDensity(enc, r)
			for d := range th {
				if !found[d] && rho >= th[d] {
					rec.M[d], rec.R[d] = enc, r
					found[d] = true
					nFound++
				}
			}
		}
		enc -= ws.mass[k.idx]
	}

	for d := range found {
		if !found[d] {
			rec.M[d], rec.R[d] = rec.Mass, rec.Size
			t.opt.Metrics.Fallback("overdensity")
		}
	}
}

// soSearchRadius is the radius of the ball searched for a group's inclusive
// masses. It is inflated when the group is denser than the lowest threshold
// so that every overdensity sphere is bracketed.
func soSearchRadius(rec *PropertyRecord, opt *Options) float64 {
	if rec.Size <= 0 || rec.Mass <= 0 {
		return 0
	}
	rho := cosmo.LogDensity(rec.Mass, rec.Size)
	fac := math.Max(1, math.Exp((rho-opt.Thresholds().Lowest())/3))
	return rec.Size * opt.SOSearchFac * fac
}

// soMinNum is the number of innermost particles used to seed an inclusive
// walk over n particles.
func soMinNum(n int, opt *Options) int {
	minNum := max(int(0.05*float64(n)), int(float64(opt.HaloMinSize)*0.05+4))
	return min(minNum, n)
}

// interpolateCrossing finds where the log density crosses val between two
// consecutive samples, (rPrev, mPrev) with log density rhoPrev and (r, m)
// with log density rho, interpolating linearly in log-log space.
func interpolateCrossing(
	val, rPrev, mPrev, rhoPrev, r, m, rho float64,
) (mOut, rOut float64) {
	f := (val - rhoPrev) / (rho - rhoPrev)
	rOut = math.Exp(math.Log(r/rPrev)*f + math.Log(rPrev))
	mOut = math.Exp(math.Log(m/mPrev)*f + math.Log(mPrev))
	return mOut, rOut
}

// inclusiveWalk computes spherical overdensity masses about a group's
// centroid from the sorted radius keys of every particle near it. It
// returns the number of particles inside the 200m sphere.
func inclusiveWalk(
	keys []radKey, mass []float64, rec *PropertyRecord, opt *Options,
) int {
	inc := &rec.Inclusive
	th := opt.Thresholds()
	n := len(keys)
	inside := n

	found := [cosmo.NumRadii]bool{}
	nFound := 0

	minNum := soMinNum(n, opt)
	if minNum > 0 {
		enc := 0.0
		for j := 0; j < minNum; j++ {
			enc += mass[keys[j].idx]
		}
		rPrev := math.Sqrt(keys[minNum-1].r2)
		rhoPrev := cosmo.LogDensity(enc, rPrev)

		for j := minNum; j < n && nFound < cosmo.NumRadii; j++ {
			m := mass[keys[j].idx]
			r := math.Sqrt(keys[j].r2)
			mPrev := enc
			enc += m
			rho := cosmo.LogDensity(enc, r)

			for d := range th {
				if found[d] || rho > th[d] {
					continue
				}
				if rhoPrev > th[d] && rPrev > 0 && mPrev > 0 {
					inc.M[d], inc.R[d] = interpolateCrossing(
						th[d], rPrev, mPrev, rhoPrev, r, enc, rho,
					)
				} else {
					inc.M[d], inc.R[d] = enc, r
				}
				found[d] = true
				nFound++
				if cosmo.Radius(d) == cosmo.R200m {
					inside = j
				}
			}
			rPrev, rhoPrev = r, rho
		}
	}

	for d := range found {
		if !found[d] {
			inc.M[d], inc.R[d] = rec.Mass, rec.Size
			opt.Metrics.Fallback("inclusive")
		}
	}

	enc, half := 0.0, 0.5*inc.M[cosmo.R200m]
	for j := 0; j < inside; j++ {
		enc += mass[keys[j].idx]
		if enc > half {
			inc.RHalfMass = math.Sqrt(keys[j].r2)
			break
		}
	}
	return inside
}

// inclusiveScratch is the per-worker memory of ComputeInclusiveMasses.
type inclusiveScratch struct {
	hits  []int
	disps []geom.Vec
	keys  []radKey
	mass  []float64
}

// ComputeInclusiveMasses measures spherical overdensity masses for every
// group against all particles in ps rather than just the group's members.
// records must already hold each group's Mass, Size, and CM. The search
// tree is built over ps and released before returning.
func ComputeInclusiveMasses(
	ps []Particle, gr *Groups, records []PropertyRecord, opt *Options,
) error {
	defer logging.Stage("inclusive masses", time.Now())
	defer opt.Metrics.Stage("inclusive", time.Now())

	pos := make([]geom.Vec, len(ps))
	mass := make([]float64, len(ps))
	for i := range ps {
		pos[i], mass[i] = ps[i].Pos, ps[i].Mass
	}
	con := &kdtree.Config{BucketSize: opt.HaloMinSize, Period: opt.Period}
	tree := kdtree.New(pos, mass, con)

	scratch := make(chan *inclusiveScratch, opt.Workers)
	for i := 0; i < opt.Workers; i++ {
		scratch <- &inclusiveScratch{}
	}

	return forEachIndex(1, gr.NGroup()+1, opt.Workers, func(i int) error {
		s := <-scratch
		defer func() { scratch <- s }()

		rec := &records[i]
		rec.Inclusive.Mass = rec.Mass
		rec.Inclusive.Size = rec.Size
		rec.Inclusive.CM = rec.CM

		r := soSearchRadius(rec, opt)
		s.hits, s.disps = tree.BallQueryDisp(rec.CM, r, s.hits[:0], s.disps[:0])
		s.keys = s.keys[:0]
		for j := range s.hits {
			s.keys = append(s.keys, radKey{j, s.disps[j].Norm2()})
		}
		slices.SortFunc(s.keys, compareRadKeys)

		s.mass = s.mass[:0]
		for _, j := range s.hits {
			s.mass = append(s.mass, mass[j])
		}
		inside := inclusiveWalk(s.keys, s.mass, rec, opt)

		if opt.SOParticles {
			rec.SOParticles = make([]int64, inside)
			for j := 0; j < inside; j++ {
				rec.SOParticles[j] = ps[s.hits[s.keys[j].idx]].ID
			}
		}
		return nil
	})
}
