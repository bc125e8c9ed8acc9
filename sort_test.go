package gohalo

import (
	"math/rand"
	"testing"

	"github.com/phil-mansfield/gohalo/geom"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// boundCluster returns two groups of nBound cold particles each, every one
// with nFast escaping particles in its outskirts, and some unassigned
// particles.
func boundCluster(nBound, nFast int) ([]Particle, []int64) {
	r := rand.New(rand.NewSource(71))
	ps := []Particle{}
	pfof := []int64{}
	for g, center := range []geom.Vec{{0, 0, 0}, {50, 0, 0}} {
		group := gaussianCloud(nBound+nFast, 1, center, r)
		for i := nBound; i < len(group); i++ {
			group[i].Pos = center.Add(randomDirection(r).Scale(5))
			group[i].Vel = randomDirection(r).Scale(1e3)
		}
		ps = append(ps, group...)
		for range group {
			pfof = append(pfof, int64(g+1))
		}
	}
	ps = append(ps, gaussianCloud(17, 10, geom.Vec{}, r)...)
	pfof = append(pfof, make([]int64, 17)...)

	// Interleave so that grouping has something to do.
	r.Shuffle(len(ps), func(i, j int) {
		ps[i], ps[j] = ps[j], ps[i]
		pfof[i], pfof[j] = pfof[j], pfof[i]
	})
	for i := range ps {
		ps[i].ID = int64(i)
	}
	return ps, pfof
}

func TestSortByBindingEnergy(t *testing.T) {
	nBound, nFast := 400, 10
	ps, pfof := boundCluster(nBound, nFast)
	orig := append([]Particle{}, ps...)

	opt := testOptions()
	opt.SeparateFiles = true
	records := make([]PropertyRecord, 3)
	lists, err := SortByBindingEnergy(ps, pfof, 2, nil, records, opt)
	require.NoError(t, err)
	require.Len(t, lists, 3)
	assert.Empty(t, lists[0].IDs)

	for g := 1; g <= 2; g++ {
		list, rec := lists[g], records[g]
		require.Len(t, list.IDs, nBound+nFast)
		assert.Equal(t, nBound, list.Unbound)
		assert.Equal(t, nBound, rec.UnboundIndex)
		assert.Equal(t, list.IDs[0], rec.MostBoundID)
		assert.Equal(t, orig[rec.MostBoundID].Pos, rec.MostBoundPos)
		assert.Greater(t, rec.RMostBound, 0.0)

		for _, id := range list.IDs {
			assert.Equal(t, int64(g), pfof[id])
		}
		for _, id := range list.IDs[nBound:] {
			assert.Greater(t, orig[id].Vel.Norm(), 100.0)
		}
	}

	for i := range ps {
		assert.Equal(t, orig[i].ID, ps[i].ID)
		assert.Equal(t, orig[i].Pos, ps[i].Pos)
		assert.Equal(t, orig[i].Vel, ps[i].Vel)
	}
}

func TestSortByBindingEnergyGrouped(t *testing.T) {
	ps, pfof := boundCluster(100, 5)
	opt := testOptions()
	opt.SeparateFiles = false

	lists, err := SortByBindingEnergy(ps, pfof, 2, nil, nil, opt)
	require.NoError(t, err)

	gr, err := CountGroups(ps, pfof, 2)
	require.NoError(t, err)
	for g := 1; g <= 2; g++ {
		group := gr.Slice(ps, g)
		for k := range group {
			assert.Equal(t, lists[g].IDs[k], group[k].ID)
			if k > 0 {
				assert.LessOrEqual(t, group[k-1].Potential+kinetic(group[k-1]),
					group[k].Potential+kinetic(group[k])+1e-6)
			}
		}
	}
}

// kinetic approximates a particle's kinetic energy in a frame at rest,
// which is adequate for cold groups.
func kinetic(p Particle) float64 { return 0.5 * p.Mass * p.Vel.Norm2() }

func TestSortByBindingEnergyErrors(t *testing.T) {
	ps, pfof := boundCluster(20, 1)
	opt := testOptions()

	_, err := SortByBindingEnergy(ps, pfof, 2, []int{0, 3, 21}, nil, opt)
	assert.Error(t, err)

	_, err = SortByBindingEnergy(ps, pfof, 2, nil, make([]PropertyRecord, 2), opt)
	assert.Error(t, err)
}
