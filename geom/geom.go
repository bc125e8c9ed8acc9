/*package geom contains the small vector routines used by the property
engines: basic arithmetic on three-vectors and minimum-image displacements
inside periodic boxes.
*/
package geom

import (
	"math"
)

// Vec is a three dimensional vector.
type Vec [3]float64

// Add returns v1 + v2.
func (v1 Vec) Add(v2 Vec) Vec {
	return Vec{v1[0] + v2[0], v1[1] + v2[1], v1[2] + v2[2]}
}

// Sub returns v1 - v2.
func (v1 Vec) Sub(v2 Vec) Vec {
	return Vec{v1[0] - v2[0], v1[1] - v2[1], v1[2] - v2[2]}
}

// Scale returns v * a.
func (v Vec) Scale(a float64) Vec {
	return Vec{v[0] * a, v[1] * a, v[2] * a}
}

// AddAt writes v1 + v2 to out.
func (v1 *Vec) AddAt(v2, out *Vec) {
	out[0], out[1], out[2] = v1[0]+v2[0], v1[1]+v2[1], v1[2]+v2[2]
}

// SubAt writes v1 - v2 to out.
func (v1 *Vec) SubAt(v2, out *Vec) {
	out[0], out[1], out[2] = v1[0]-v2[0], v1[1]-v2[1], v1[2]-v2[2]
}

func (v1 Vec) Dot(v2 Vec) float64 {
	return v1[0]*v2[0] + v1[1]*v2[1] + v1[2]*v2[2]
}

// Cross returns the cross product v1 x v2.
func (v1 Vec) Cross(v2 Vec) Vec {
	return Vec{
		v1[1]*v2[2] - v1[2]*v2[1],
		v1[2]*v2[0] - v1[0]*v2[2],
		v1[0]*v2[1] - v1[1]*v2[0],
	}
}

func (v Vec) Norm2() float64 { return v.Dot(v) }
func (v Vec) Norm() float64  { return math.Sqrt(v.Dot(v)) }

// Periodic returns the minimum-image version of the displacement dx within a
// box of width L. Non-positive widths turn off wrapping.
func Periodic(dx, L float64) float64 {
	if L <= 0 {
		return dx
	}
	if dx > L/2 {
		return dx - L
	} else if dx < -L/2 {
		return dx + L
	}
	return dx
}

// PeriodicVec applies Periodic to every component of dx.
func PeriodicVec(dx Vec, L float64) Vec {
	if L <= 0 {
		return dx
	}
	return Vec{Periodic(dx[0], L), Periodic(dx[1], L), Periodic(dx[2], L)}
}

// Disp returns the minimum-image displacement from origin to x.
func Disp(x, origin Vec, L float64) Vec {
	return PeriodicVec(x.Sub(origin), L)
}

// Wrap maps x into [0, L). Non-positive widths leave x untouched.
func Wrap(x, L float64) float64 {
	if L <= 0 {
		return x
	}
	if x < 0 {
		return x + L
	} else if x >= L {
		return x - L
	}
	return x
}

// WrapVec applies Wrap to every component of v.
func WrapVec(v Vec, L float64) Vec {
	return Vec{Wrap(v[0], L), Wrap(v[1], L), Wrap(v[2], L)}
}
