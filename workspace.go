package gohalo

import (
	"cmp"
	"slices"

	"github.com/phil-mansfield/gohalo/geom"
)

// radKey orders the particles of a group without moving them. idx is the
// particle's index within the group slice.
type radKey struct {
	idx int
	r2  float64
}

func compareRadKeys(a, b radKey) int {
	if c := cmp.Compare(a.r2, b.r2); c != 0 {
		return c
	}
	return cmp.Compare(a.idx, b.idx)
}

// energyKey is radKey's counterpart for binding energy sorts.
type energyKey struct {
	idx int
	e   float64
}

func compareEnergyKeys(a, b energyKey) int {
	if c := cmp.Compare(a.e, b.e); c != 0 {
		return c
	}
	return cmp.Compare(a.idx, b.idx)
}

// workspace is the scratch memory used by one worker for one group at a
// time. Nothing in a workspace outlives the group it was loaded for.
type workspace struct {
	id int

	// rel and relVel are positions relative to the group's centroid and
	// velocities relative to its centroid velocity, in group slice order.
	rel, relVel []geom.Vec
	// rot is a rotated copy of rel used by the shape iteration.
	rot []geom.Vec
	// unwrapped positions relative to the first particle of the group.
	unwrapped []geom.Vec
	// sx, sv, and sm hold a compacted copy of one species at a time.
	sx, sv []geom.Vec
	sm     []float64
	// parts is a copy of the group's particles used while reordering them.
	parts []Particle

	keys   []radKey
	skeys  []radKey
	ekeys  []energyKey
	mass   []float64
	pot    []float64
	energy []float64
	subset []int
}

func newWorkspace(id int) *workspace {
	return &workspace{id: id}
}

// grow ensures every buffer can hold n particles and slices them to n.
func (ws *workspace) grow(n int) {
	if cap(ws.rel) < n {
		ws.rel = make([]geom.Vec, n)
		ws.relVel = make([]geom.Vec, n)
		ws.rot = make([]geom.Vec, n)
		ws.unwrapped = make([]geom.Vec, n)
		ws.sx = make([]geom.Vec, 0, n)
		ws.sv = make([]geom.Vec, 0, n)
		ws.sm = make([]float64, 0, n)
		ws.parts = make([]Particle, n)
		ws.keys = make([]radKey, n)
		ws.skeys = make([]radKey, 0, n)
		ws.ekeys = make([]energyKey, n)
		ws.mass = make([]float64, n)
		ws.pot = make([]float64, n)
		ws.energy = make([]float64, n)
		ws.subset = make([]int, 0, n)
	}
	ws.rel = ws.rel[:n]
	ws.relVel = ws.relVel[:n]
	ws.rot = ws.rot[:n]
	ws.unwrapped = ws.unwrapped[:n]
	ws.sx, ws.sv, ws.sm = ws.sx[:0], ws.sv[:0], ws.sm[:0]
	ws.parts = ws.parts[:n]
	ws.keys = ws.keys[:n]
	ws.skeys = ws.skeys[:0]
	ws.ekeys = ws.ekeys[:n]
	ws.mass = ws.mass[:n]
	ws.pot = ws.pot[:n]
	ws.energy = ws.energy[:n]
	ws.subset = ws.subset[:0]
}

// relativize fills rel and relVel for ps about the given frame along with
// the radius keys, sorted by ascending radius.
func (ws *workspace) relativize(
	ps []Particle, cm, cmVel geom.Vec, L float64,
) {
	for i := range ps {
		ws.rel[i] = geom.Disp(ps[i].Pos, cm, L)
		ws.relVel[i] = ps[i].Vel.Sub(cmVel)
		ws.mass[i] = ps[i].Mass
		ws.keys[i] = radKey{i, ws.rel[i].Norm2()}
	}
	slices.SortFunc(ws.keys, compareRadKeys)
}

// pool hands out workspaces to concurrent workers.
type pool chan *workspace

func newPool(workers int) pool {
	p := make(pool, workers)
	for i := 0; i < workers; i++ {
		p <- newWorkspace(i)
	}
	return p
}

func (p pool) get() *workspace   { return <-p }
func (p pool) put(ws *workspace) { p <- ws }
