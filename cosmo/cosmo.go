/*package cosmo computes the background densities and overdensity thresholds
used to define halo masses and radii.

All densities are in the caller's internal units: the critical density is
computed from a Hubble rate and gravitational constant expressed in those
same units.
*/
package cosmo

import (
	"math"
)

// HubbleFrac calculates h(z) = H(z)/H0 for a flat universe with no radiation.
func HubbleFrac(omegaM, omegaL, z float64) float64 {
	return math.Sqrt(omegaM*math.Pow(1.0+z, 3.0) + omegaL)
}

// OmegaMz returns the matter density parameter at redshift z.
func OmegaMz(omegaM, omegaL, z float64) float64 {
	h := HubbleFrac(omegaM, omegaL, z)
	return omegaM * math.Pow(1+z, 3) / (h * h)
}

// RhoCritical returns the critical density 3 H^2 / (8 pi G).
func RhoCritical(H, G float64) float64 {
	return 3 * H * H / (8 * math.Pi * G)
}

// BN98 returns the Bryan & Norman (1998) virial overdensity relative to the
// mean matter density, (18 pi^2 + 82 x - 39 x^2) / Omega_m with
// x = Omega_m - 1.
func BN98(omegaM float64) float64 {
	x := omegaM - 1
	return (18*math.Pi*math.Pi + 82*x - 39*x*x) / omegaM
}
