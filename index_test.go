package gohalo

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func randomAssignment(n, ngroup int, seed int64) ([]Particle, []int64) {
	r := rand.New(rand.NewSource(seed))
	ps := make([]Particle, n)
	pfof := make([]int64, n)
	for i := range ps {
		ps[i].ID = int64(i)
		ps[i].Pos[0] = r.Float64()
		pfof[i] = int64(r.Intn(ngroup+2)) - 1
	}
	return ps, pfof
}

func TestIndexGroups(t *testing.T) {
	tests := []struct {
		n, ngroup int
	}{
		{0, 0}, {10, 0}, {1000, 1}, {1000, 7}, {50, 100},
	}

	for _, test := range tests {
		ps, pfof := randomAssignment(test.n, test.ngroup, 7)
		gr, err := IndexGroups(ps, pfof, test.ngroup)
		require.NoError(t, err)
		require.NoError(t, gr.Partition())
		assert.Equal(t, test.ngroup, gr.NGroup())

		for g := 1; g <= gr.NGroup(); g++ {
			for _, p := range gr.Slice(ps, g) {
				assert.Equal(t, int64(g), pfof[p.ID])
			}
		}
		for _, p := range gr.Unassigned(ps) {
			assert.LessOrEqual(t, pfof[p.ID], int64(0))
		}
	}
}

func TestIndexGroupsIdempotent(t *testing.T) {
	ps, pfof := randomAssignment(500, 5, 11)
	_, err := IndexGroups(ps, pfof, 5)
	require.NoError(t, err)
	first := append([]Particle{}, ps...)

	_, err = IndexGroups(ps, pfof, 5)
	require.NoError(t, err)
	assert.Equal(t, first, ps)
}

func TestRestoreOrder(t *testing.T) {
	ps, pfof := randomAssignment(500, 5, 13)
	orig := append([]Particle{}, ps...)

	_, err := IndexGroups(ps, pfof, 5)
	require.NoError(t, err)
	RestoreOrder(ps)
	assert.Equal(t, orig, ps)
}

func TestIndexGroupsErrors(t *testing.T) {
	ps, pfof := randomAssignment(10, 2, 17)

	_, err := IndexGroups(ps, pfof[:5], 2)
	assert.Error(t, err)

	pfof[3] = 9
	_, err = IndexGroups(ps, pfof, 2)
	assert.Error(t, err)

	_, err = IndexGroups(ps, pfof, -1)
	assert.Error(t, err)
}

func TestCheckNumInGroup(t *testing.T) {
	ps, pfof := randomAssignment(100, 3, 19)
	gr, err := CountGroups(ps, pfof, 3)
	require.NoError(t, err)

	assert.NoError(t, checkNumInGroup(nil, gr))
	assert.NoError(t, checkNumInGroup(append([]int{}, gr.NumInGroup...), gr))
	assert.Error(t, checkNumInGroup([]int{0, 1}, gr))

	bad := append([]int{}, gr.NumInGroup...)
	bad[2]++
	assert.Error(t, checkNumInGroup(bad, gr))
}
