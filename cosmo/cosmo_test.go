package cosmo

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBN98(t *testing.T) {
	// At Omega_m = 1 the fit reduces to 18 pi^2.
	assert.InDelta(t, 18*math.Pi*math.Pi, BN98(1), 1e-10)
	// Omega_m = 0.3 gives Delta_c ~ 102, i.e. ~340 relative to the mean.
	assert.InDelta(t, 340, BN98(0.3), 5)
}

func TestThresholds(t *testing.T) {
	rhoBg, omegaM := 2.5, 0.3
	th := NewThresholds(rhoBg, omegaM, 0)

	assert.InDelta(t, math.Log(200*rhoBg/omegaM), th[R200c], 1e-12)
	assert.InDelta(t, math.Log(200*rhoBg), th[R200m], 1e-12)
	assert.InDelta(t, math.Log(500*rhoBg/omegaM), th[R500c], 1e-12)
	assert.Equal(t, th[RBN98], th[RVir])
	assert.Equal(t, th[R200m], th.Lowest())

	th = NewThresholds(rhoBg, omegaM, 178)
	assert.InDelta(t, math.Log(178*rhoBg), th[RVir], 1e-12)
}

func TestLowest(t *testing.T) {
	th := NewThresholds(1, 0.3, 100)
	assert.Equal(t, th[RVir], th.Lowest())
}

func TestLogDensity(t *testing.T) {
	m, r := 1e3, 2.0
	rho := m / (4 * math.Pi / 3 * r * r * r)
	assert.InDelta(t, math.Log(rho), LogDensity(m, r), 1e-12)
}

func TestRhoCritical(t *testing.T) {
	// In units with G = 1 and H = 1.
	assert.InDelta(t, 3/(8*math.Pi), RhoCritical(1, 1), 1e-15)
	assert.InDelta(t, 1.0, HubbleFrac(0.3, 0.7, 0), 1e-15)
	assert.InDelta(t, 0.3, OmegaMz(0.3, 0.7, 0), 1e-15)
	assert.InDelta(t, 2.4/3.1, OmegaMz(0.3, 0.7, 1), 1e-12)
	assert.InDelta(t, math.Sqrt(3.1), HubbleFrac(0.3, 0.7, 1), 1e-12)
}
