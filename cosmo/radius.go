package cosmo

import (
	"math"
)

// Radius identifies one of the overdensity definitions used for halo
// boundaries.
type Radius int

const (
	RVir Radius = iota
	R200c
	R200m
	R500c
	RBN98

	NumRadii = 5
)

var logFourThirdsPi = math.Log(4 * math.Pi / 3)

func (r Radius) String() string {
	switch r {
	case RVir:
		return "RVir"
	case R200c:
		return "R200c"
	case R200m:
		return "R200m"
	case R500c:
		return "R500c"
	case RBN98:
		return "RBN98"
	}
	panic("Unrecognized Radius value.")
}

// Thresholds holds the natural log of the enclosed density that defines each
// Radius.
type Thresholds [NumRadii]float64

// NewThresholds computes the thresholds for a background matter density
// rhoBg and matter density parameter omegaM. The critical density is taken
// to be rhoBg / omegaM. virLevel is the virial overdensity relative to the
// background. A non-positive virLevel selects the BN98 value.
func NewThresholds(rhoBg, omegaM, virLevel float64) Thresholds {
	bn98 := BN98(omegaM)
	if virLevel <= 0 {
		virLevel = bn98
	}
	rhoC := rhoBg / omegaM

	th := Thresholds{}
	th[RVir] = math.Log(virLevel * rhoBg)
	th[R200c] = math.Log(200 * rhoC)
	th[R200m] = math.Log(200 * rhoBg)
	th[R500c] = math.Log(500 * rhoC)
	th[RBN98] = math.Log(bn98 * rhoBg)
	return th
}

// LogDensity returns the log of the mean density of a sphere of mass m and
// radius r.
func LogDensity(m, r float64) float64 {
	return math.Log(m) - 3*math.Log(r) - logFourThirdsPi
}

// Lowest returns the smallest threshold. This is the definition with the
// largest radius for any monotonically decreasing profile.
func (th *Thresholds) Lowest() float64 {
	lo := th[0]
	for _, x := range th[1:] {
		lo = math.Min(lo, x)
	}
	return lo
}
