/*package kdtree implements a bucketed k-d tree over particle positions. The
tree supports fixed-radius ball queries and a monopole approximation of the
softened gravitational potential, optionally inside a periodic box.

A Tree never reorders the positions it was built from. It keeps its own
permutation, Index, so that callers can always map tree order back to their
own ordering.
*/
package kdtree

import (
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/phil-mansfield/gohalo/geom"
)

const (
	DefaultBucketSize = 8
	DefaultTheta      = 0.5
)

// Config controls the construction and evaluation of a Tree.
type Config struct {
	// BucketSize is the maximum number of particles in a leaf.
	BucketSize int
	// Period is the width of the periodic box. Zero turns off wrapping.
	Period float64
	// Theta is the opening angle used by Potential.
	Theta float64
}

// DefaultConfig returns a non-periodic configuration with the default
// bucket size and opening angle.
func DefaultConfig() *Config {
	return &Config{BucketSize: DefaultBucketSize, Theta: DefaultTheta}
}

type node struct {
	start, end  int // range of Index covered by this node
	left, right int // children, or -1 for leaves

	bounds r3.Box
	center r3.Vec
	mass   float64
	size   float64
}

func (n *node) isLeaf() bool { return n.left < 0 }

// Tree is a k-d tree over a set of positions.
type Tree struct {
	// Index[i] is the caller's index of the i-th particle in tree order.
	Index []int

	pos   []geom.Vec
	mass  []float64
	nodes []node
	con   Config
}

// New builds a tree over pos. mass may be nil, in which case every particle
// has unit mass. The tree holds references to pos and mass, so neither may be
// modified while the tree is in use.
func New(pos []geom.Vec, mass []float64, con *Config) *Tree {
	t := &Tree{}
	t.Init(pos, mass, con)
	return t
}

// Init (re)builds t over pos and mass, reusing t's buffers when possible.
func (t *Tree) Init(pos []geom.Vec, mass []float64, con *Config) {
	if con == nil {
		con = DefaultConfig()
	}
	if con.BucketSize < 0 {
		panic("kdtree: negative bucket size.")
	} else if mass != nil && len(mass) != len(pos) {
		panic("kdtree: len(mass) != len(pos).")
	}

	t.con = *con
	if t.con.BucketSize == 0 {
		t.con.BucketSize = DefaultBucketSize
	}
	if t.con.Theta <= 0 {
		t.con.Theta = DefaultTheta
	}

	t.pos, t.mass = pos, mass
	t.nodes = t.nodes[:0]

	if cap(t.Index) >= len(pos) {
		t.Index = t.Index[:len(pos)]
	} else {
		t.Index = make([]int, len(pos))
	}
	for i := range t.Index {
		t.Index[i] = i
	}

	if len(pos) == 0 {
		return
	}
	t.build(0, len(pos))
}

// Len returns the number of particles in the tree.
func (t *Tree) Len() int { return len(t.Index) }

// Period returns the width of the tree's periodic box.
func (t *Tree) Period() float64 { return t.con.Period }

func (t *Tree) m(i int) float64 {
	if t.mass == nil {
		return 1
	}
	return t.mass[i]
}

// build constructs the node covering Index[start:end] and returns its
// position in t.nodes.
func (t *Tree) build(start, end int) int {
	ni := len(t.nodes)
	t.nodes = append(t.nodes, node{start: start, end: end, left: -1, right: -1})

	nd := node{start: start, end: end, left: -1, right: -1}
	t.summarize(&nd)

	if end-start > t.con.BucketSize {
		dim := widestDim(nd.bounds)
		mid := (start + end) / 2
		t.quickSelect(start, end-1, mid, dim)

		nd.left = t.build(start, mid)
		nd.right = t.build(mid, end)
	}

	t.nodes[ni] = nd
	return ni
}

// summarize computes the bounds, mass, and center of mass of a node.
func (t *Tree) summarize(nd *node) {
	p0 := t.pos[t.Index[nd.start]]
	nd.bounds.Min = r3.Vec{X: p0[0], Y: p0[1], Z: p0[2]}
	nd.bounds.Max = nd.bounds.Min

	var cm r3.Vec
	for i := nd.start; i < nd.end; i++ {
		j := t.Index[i]
		p, m := t.pos[j], t.m(j)
		v := r3.Vec{X: p[0], Y: p[1], Z: p[2]}

		nd.bounds.Min.X = min(nd.bounds.Min.X, v.X)
		nd.bounds.Min.Y = min(nd.bounds.Min.Y, v.Y)
		nd.bounds.Min.Z = min(nd.bounds.Min.Z, v.Z)
		nd.bounds.Max.X = max(nd.bounds.Max.X, v.X)
		nd.bounds.Max.Y = max(nd.bounds.Max.Y, v.Y)
		nd.bounds.Max.Z = max(nd.bounds.Max.Z, v.Z)

		cm = r3.Add(cm, r3.Scale(m, v))
		nd.mass += m
	}

	if nd.mass > 0 {
		nd.center = r3.Scale(1/nd.mass, cm)
	} else {
		nd.center = r3.Scale(0.5, r3.Add(nd.bounds.Min, nd.bounds.Max))
	}

	d := r3.Sub(nd.bounds.Max, nd.bounds.Min)
	nd.size = max(d.X, d.Y, d.Z)
}

func widestDim(b r3.Box) int {
	d := r3.Sub(b.Max, b.Min)
	if d.X >= d.Y && d.X >= d.Z {
		return 0
	} else if d.Y >= d.Z {
		return 1
	}
	return 2
}

// quickSelect partially orders Index[left:right+1] so that the k-th element
// is in its sorted position along dim.
func (t *Tree) quickSelect(left, right, k, dim int) {
	for left < right {
		p := t.partition(left, right, t.medianOfThree(left, right, dim), dim)
		if k == p {
			return
		} else if k < p {
			right = p - 1
		} else {
			left = p + 1
		}
	}
}

func (t *Tree) key(i, dim int) float64 { return t.pos[t.Index[i]][dim] }

func (t *Tree) medianOfThree(left, right, dim int) int {
	mid := (left + right) / 2
	a, b, c := t.key(left, dim), t.key(mid, dim), t.key(right, dim)
	if (a <= b && b <= c) || (c <= b && b <= a) {
		return mid
	} else if (b <= a && a <= c) || (c <= a && a <= b) {
		return left
	}
	return right
}

func (t *Tree) partition(left, right, pivot, dim int) int {
	idx := t.Index
	pv := t.key(pivot, dim)
	idx[pivot], idx[right] = idx[right], idx[pivot]

	store := left
	for i := left; i < right; i++ {
		if t.key(i, dim) < pv {
			idx[store], idx[i] = idx[i], idx[store]
			store++
		}
	}
	idx[right], idx[store] = idx[store], idx[right]
	return store
}

// boxDist2 returns the squared minimum-image distance between x and the
// bounding box b.
func (t *Tree) boxDist2(x geom.Vec, b *r3.Box) float64 {
	lo := [3]float64{b.Min.X, b.Min.Y, b.Min.Z}
	hi := [3]float64{b.Max.X, b.Max.Y, b.Max.Z}
	L := t.con.Period

	d2 := 0.0
	for k := 0; k < 3; k++ {
		var d float64
		if x[k] < lo[k] {
			d = lo[k] - x[k]
			if L > 0 {
				d = min(d, max(x[k]+L-hi[k], 0))
			}
		} else if x[k] > hi[k] {
			d = x[k] - hi[k]
			if L > 0 {
				d = min(d, max(lo[k]+L-x[k], 0))
			}
		}
		d2 += d * d
	}
	return d2
}
