package kdtree

import (
	"github.com/phil-mansfield/gohalo/geom"
)

// BallQuery appends the caller indices of every particle within r of center
// to out and returns the extended slice. Non-positive radii return out
// unchanged.
func (t *Tree) BallQuery(center geom.Vec, r float64, out []int) []int {
	out, _ = t.ballQuery(center, r, out, nil, false)
	return out
}

// BallQueryDisp is identical to BallQuery, but also appends the
// minimum-image displacement of each returned particle from center to disp.
func (t *Tree) BallQueryDisp(
	center geom.Vec, r float64, out []int, disp []geom.Vec,
) ([]int, []geom.Vec) {
	return t.ballQuery(center, r, out, disp, true)
}

func (t *Tree) ballQuery(
	center geom.Vec, r float64, out []int, disp []geom.Vec, keepDisp bool,
) ([]int, []geom.Vec) {
	if r <= 0 || len(t.nodes) == 0 {
		return out, disp
	}
	r2 := r * r
	L := t.con.Period

	stack := make([]int, 1, 64)
	stack[0] = 0
	for len(stack) > 0 {
		ni := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		nd := &t.nodes[ni]

		if t.boxDist2(center, &nd.bounds) > r2 {
			continue
		}

		if !nd.isLeaf() {
			stack = append(stack, nd.right, nd.left)
			continue
		}

		for i := nd.start; i < nd.end; i++ {
			j := t.Index[i]
			dx := geom.Disp(t.pos[j], center, L)
			if dx.Norm2() <= r2 {
				out = append(out, j)
				if keepDisp {
					disp = append(disp, dx)
				}
			}
		}
	}

	return out, disp
}
