package main

import (
	"bytes"
	"math"
	"math/rand"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phil-mansfield/gohalo"
	"github.com/phil-mansfield/gohalo/catalog"
	"github.com/phil-mansfield/gohalo/geom"
	"github.com/phil-mansfield/gohalo/io"
)

func TestGetModeName(t *testing.T) {
	a, b := "", ""
	vars := map[string]*string{"A": &a, "B": &b}

	_, err := getModeName(vars)
	assert.Error(t, err)

	a = "a.config"
	name, err := getModeName(vars)
	require.NoError(t, err)
	assert.Equal(t, "A", name)

	b = "b.config"
	_, err = getModeName(vars)
	assert.Error(t, err)
}

func TestProfile(t *testing.T) {
	ps := []gohalo.Particle{
		{Pos: geom.Vec{3, 0, 0}, Mass: 1},
		{Pos: geom.Vec{0, 0, 0}, Mass: 2},
		{Pos: geom.Vec{0, 1, 0}, Mass: 1},
	}
	rs, ms, vcs := profile(ps, geom.Vec{}, 0, 4)

	assert.Equal(t, []float64{1, 3}, rs)
	assert.Equal(t, []float64{3, 4}, ms)
	assert.InDelta(t, math.Sqrt(12), vcs[0], 1e-12)
	assert.InDelta(t, math.Sqrt(16.0/3), vcs[1], 1e-12)
}

// twoGroups returns 40 particles in group 1 near the origin, 60 in group 2
// near (5, 5, 5), and 10 in no group. Catalog ids are 1000 + 7i.
func twoGroups(t *testing.T) (
	ps []gohalo.Particle, ids *catalog.IDMap, pfof []int64,
) {
	r := rand.New(rand.NewSource(17))
	ps = make([]gohalo.Particle, 110)
	groups := make([]int64, len(ps))
	for i := range ps {
		var center geom.Vec
		switch {
		case i < 40:
			groups[i] = 1
		case i < 100:
			groups[i], center = 2, geom.Vec{5, 5, 5}
		default:
			center = geom.Vec{20, 20, 20}
		}
		for d := 0; d < 3; d++ {
			ps[i].Pos[d] = center[d] + r.Float64() - 0.5
			ps[i].Vel[d] = 0.01 * r.NormFloat64()
		}
		ps[i].ID, ps[i].Mass = 1000+7*int64(i), 0.01
	}

	ids = catalog.NewIDMap()
	require.NoError(t, ids.Add(ps))
	pfof = make([]int64, len(ps))
	for i := range ps {
		pfof[ps[i].ID] = groups[i]
	}
	return ps, ids, pfof
}

func testConfig(t *testing.T) *io.PropertiesConfig {
	con, err := io.ReadPropertiesString(`[Properties]
Input = in.txt
Output = out.txt
GroupFile = groups.txt
RhoBackground = 1
OmegaM = 0.3
`)
	require.NoError(t, err)
	return con
}

func TestRunPropertiesMostBound(t *testing.T) {
	ps, ids, pfof := twoGroups(t)
	con := testConfig(t)
	opt := gohalo.OptionsFromConfig(con)

	run, err := runProperties(con, opt, ps, pfof, 2)
	require.NoError(t, err)
	require.Len(t, run.records, 3)
	require.Len(t, run.lists, 3)

	buf := &bytes.Buffer{}
	require.NoError(t, catalog.WriteProperties(buf, run.records, ids))
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 3)
	header := strings.Fields(strings.TrimPrefix(lines[0], "# "))
	col := -1
	for i, name := range header {
		if name == "MostBoundID" {
			col = i
		}
	}
	require.NotEqual(t, -1, col)

	for g, num := range []int{0, 40, 60} {
		if g == 0 {
			continue
		}
		list := run.lists[g]
		require.Len(t, list.IDs, num)
		assert.Equal(t, list.IDs[0], run.records[g].MostBoundID)

		orig := ids.Original(list.IDs[0])
		assert.Equal(t, int64(0), (orig-1000)%7)
		assert.Equal(t, int64(g), pfof[list.IDs[0]])

		row := strings.Fields(lines[g])
		assert.Equal(t, strconv.FormatInt(orig, 10), row[col])
	}
}

func TestSizeOrder(t *testing.T) {
	ps, _, pfof := twoGroups(t)
	con := testConfig(t)
	run, err := runProperties(con, gohalo.OptionsFromConfig(con), ps, pfof, 2)
	require.NoError(t, err)

	out := sizeOrder(run.records)
	require.Len(t, out, 3)
	assert.Equal(t, int64(2), out[1].GroupID)
	assert.Equal(t, 60, out[1].Num)
	assert.Equal(t, int64(1), out[2].GroupID)
	assert.Equal(t, run.records[1].MostBoundID, out[2].MostBoundID)
}
