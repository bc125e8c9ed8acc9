package gohalo

import (
	"math"
)

const (
	// Bracket, tolerance, and iteration limit of the NFW concentration fit.
	nfwMinC, nfwMaxC = 1.9, 1000.0
	nfwTol           = 1e-10
	nfwMaxIter       = 100

	// Vmax^2/Vvir^2 outside (nfwMinRatio, nfwMaxRatio] or groups with fewer
	// than nfwMinNum particles use the radius ratio instead of a fit.
	nfwMinRatio = 1.05
	nfwMaxRatio = 36
	nfwMinNum   = 100
)

// nfwVmaxVvir2 is Vmax^2/Vvir^2 of an NFW halo with concentration c.
func nfwVmaxVvir2(c float64) float64 {
	return 0.216 * c / (math.Log1p(c) - c/(1+c))
}

// nfwConcentration inverts nfwVmaxVvir2. ratio is returned unchanged when
// the group is too small or vv2 is outside the range the NFW profile can
// produce, and ok is false.
func nfwConcentration(vv2 float64, n int, ratio float64) (c float64, ok bool) {
	if vv2 <= nfwMinRatio || vv2 > nfwMaxRatio || n < nfwMinNum {
		return ratio, false
	}
	f := func(c float64) float64 { return vv2 - nfwVmaxVvir2(c) }
	c, ok = brent(f, nfwMinC, nfwMaxC, nfwTol, nfwMaxIter)
	if !ok {
		return ratio, false
	}
	return c, true
}

// concentration sets VmaxVvir2 and CNFW. Groups without a 200c radius use
// their mass and size in its place.
func (t *groupTask) concentration() {
	rec, G := t.rec, t.opt.G

	m, r := rec.M200c(), rec.R200c()
	if r <= 0 || m <= 0 {
		m, r = rec.Mass, rec.Size
	}
	if r > 0 && m > 0 {
		rec.VmaxVvir2 = rec.Vmax * rec.Vmax / (G * m / r)
	}

	ratio := 0.0
	if rec.Rmax > 0 {
		ratio = r / rec.Rmax
	}
	var ok bool
	rec.CNFW, ok = nfwConcentration(rec.VmaxVvir2, len(t.ps), ratio)
	if !ok {
		t.opt.Metrics.Fallback("concentration")
	}
}

// brent finds a root of f in [a, b] with Brent's method. ok is false if
// f(a) and f(b) have the same sign or maxIter steps do not reach tol.
func brent(
	f func(float64) float64, a, b, tol float64, maxIter int,
) (root float64, ok bool) {
	const eps = 3e-16

	fa, fb := f(a), f(b)
	if (fa > 0 && fb > 0) || (fa < 0 && fb < 0) {
		return 0, false
	}

	c, fc := b, fb
	var d, e float64
	for i := 0; i < maxIter; i++ {
		if (fb > 0 && fc > 0) || (fb < 0 && fc < 0) {
			c, fc = a, fa
			d = b - a
			e = d
		}
		if math.Abs(fc) < math.Abs(fb) {
			a, b, c = b, c, b
			fa, fb, fc = fb, fc, fb
		}

		tol1 := 2*eps*math.Abs(b) + 0.5*tol
		xm := 0.5 * (c - b)
		if math.Abs(xm) <= tol1 || fb == 0 {
			return b, true
		}

		if math.Abs(e) >= tol1 && math.Abs(fa) > math.Abs(fb) {
			// Inverse quadratic interpolation, or secant when a == c.
			s := fb / fa
			var p, q float64
			if a == c {
				p = 2 * xm * s
				q = 1 - s
			} else {
				q = fa / fc
				r := fb / fc
				p = s * (2*xm*q*(q-r) - (b-a)*(r-1))
				q = (q - 1) * (r - 1) * (s - 1)
			}
			if p > 0 {
				q = -q
			}
			p = math.Abs(p)

			min1 := 3*xm*q - math.Abs(tol1*q)
			min2 := math.Abs(e * q)
			if 2*p < math.Min(min1, min2) {
				e = d
				d = p / q
			} else {
				d = xm
				e = d
			}
		} else {
			d = xm
			e = d
		}

		a, fa = b, fb
		if math.Abs(d) > tol1 {
			b += d
		} else {
			b += math.Copysign(tol1, xm)
		}
		fb = f(b)
	}

	return b, false
}
