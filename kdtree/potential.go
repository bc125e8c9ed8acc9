package kdtree

import (
	"math"
	"runtime"

	"github.com/phil-mansfield/gohalo/geom"
)

// Potential writes the softened gravitational potential per unit mass,
// phi_i = -G sum_j m_j / sqrt(r_ij^2 + eps^2), of every particle to out. out
// is in the caller's ordering. Distant nodes are replaced by their monopole
// when size^2 < theta^2 d^2 and the node does not contain the particle.
//
// The particles are divided between workers goroutines. Non-positive
// workers uses runtime.NumCPU().
func (t *Tree) Potential(G, eps float64, out []float64, workers int) {
	if len(out) != t.Len() {
		panic("kdtree: len(out) != tree length.")
	}
	if len(out) == 0 {
		return
	}
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	if workers > len(out) {
		workers = len(out)
	}

	done := make(chan int, workers)
	for id := 0; id < workers-1; id++ {
		go t.chanPotential(id, workers, G, eps, out, done)
	}
	t.chanPotential(workers-1, workers, G, eps, out, done)

	for i := 0; i < workers; i++ {
		<-done
	}
}

// chanPotential evaluates the potential of a contiguous chunk of particles
// and reports its id on done.
func (t *Tree) chanPotential(
	id, workers int, G, eps float64, out []float64, done chan<- int,
) {
	n := len(out)
	start, end := id*n/workers, (id+1)*n/workers

	stack := make([]int, 0, 64)
	for i := start; i < end; i++ {
		out[i] = -G * t.specificPotential(i, eps, stack)
	}

	done <- id
}

// specificPotential returns sum_j m_j / sqrt(r_ij^2 + eps^2) for the
// particle with caller index target.
func (t *Tree) specificPotential(target int, eps float64, stack []int) float64 {
	x := t.pos[target]
	L, theta2, eps2 := t.con.Period, t.con.Theta*t.con.Theta, eps*eps

	sum := 0.0
	stack = append(stack[:0], 0)
	for len(stack) > 0 {
		ni := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		nd := &t.nodes[ni]

		if nd.isLeaf() {
			for i := nd.start; i < nd.end; i++ {
				j := t.Index[i]
				if j == target {
					continue
				}
				r2 := geom.Disp(t.pos[j], x, L).Norm2()
				sum += t.m(j) / math.Sqrt(r2+eps2)
			}
			continue
		}

		c := geom.Vec{nd.center.X, nd.center.Y, nd.center.Z}
		d2 := geom.Disp(c, x, L).Norm2()
		if nd.size*nd.size < theta2*d2 && t.boxDist2(x, &nd.bounds) > 0 {
			sum += nd.mass / math.Sqrt(d2+eps2)
			continue
		}

		stack = append(stack, nd.right, nd.left)
	}

	return sum
}
