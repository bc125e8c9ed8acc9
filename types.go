package gohalo

import (
	"github.com/phil-mansfield/gohalo/cosmo"
	"github.com/phil-mansfield/gohalo/geom"
	"github.com/phil-mansfield/gohalo/tensor"
)

// ParticleType tags the species of a particle.
type ParticleType int

const (
	Dark ParticleType = iota
	Gas
	Star
	BlackHole
	Interloper
)

func (t ParticleType) String() string {
	switch t {
	case Dark:
		return "Dark"
	case Gas:
		return "Gas"
	case Star:
		return "Star"
	case BlackHole:
		return "BlackHole"
	case Interloper:
		return "Interloper"
	}
	return "Unknown"
}

// Particle is a single simulation particle. Only ID is treated as identity:
// particle buffers are reordered freely by every stage of a pass.
type Particle struct {
	ID       int64
	Pos, Vel geom.Vec
	Mass     float64
	Type     ParticleType

	// Potential is scratch space written by the binding energy engine.
	Potential float64

	// Species-specific fields. U is the specific internal energy of gas.
	U, Metal, SFR, Age float64
}

// Species is the set of baryonic species for which per-species properties
// are computed.
type Species uint8

const (
	GasSpecies Species = 1 << iota
	StarSpecies
	BHSpecies
	InterloperSpecies

	NoSpecies  Species = 0
	AllSpecies         = GasSpecies | StarSpecies | BHSpecies | InterloperSpecies
)

// Has returns true if every species in x is enabled in s.
func (s Species) Has(x Species) bool { return s&x == x }

// SpeciesProps holds the properties of a single species within a group.
// Positions are relative to the group's CM and velocities are relative to
// its CMVel.
type SpeciesProps struct {
	N    int
	Mass float64

	CM, CMVel geom.Vec
	J         geom.Vec
	VelDisp   tensor.Matrix3
	Sigma     float64
	RHalfMass float64
	Krot      float64
	T         float64

	Q, S     float64
	EigenVec tensor.Matrix3

	Efrac float64

	MassInRmax, Mass30kpc, Mass50kpc, Mass500c float64

	// Mass-weighted means. Temp is in units of specific internal energy.
	Temp, Metal, SFR, Age float64
}

// InclusiveMasses are overdensity masses measured from every particle in the
// simulation rather than the group's own members.
type InclusiveMasses struct {
	Mass, Size, RHalfMass float64
	CM                    geom.Vec

	M, R [cosmo.NumRadii]float64
}

// PropertyRecord holds every property computed for a single group.
type PropertyRecord struct {
	GroupID int64
	Num     int

	Mass, Size, RHalfMass float64
	CM, CMVel             geom.Vec

	// Overdensity masses and radii, indexed by cosmo.Radius.
	M, R [cosmo.NumRadii]float64

	Vmax, Rmax, MassAtVmax float64
	J, J200c, J200m        geom.Vec
	LambdaB                float64

	VelDisp tensor.Matrix3
	Sigma   float64
	Krot    float64

	VmaxVvir2, CNFW float64

	Q, S     float64
	EigenVec tensor.Matrix3

	// Quantities measured within Rmax.
	RVNum             int
	RVSigma           float64
	RVJ               geom.Vec
	RVVelDisp         tensor.Matrix3
	RVKrot, RVLambdaB float64
	RVQ, RVS          float64
	RVEigenVec        tensor.Matrix3

	// Kinetic and potential energy totals and the bound fraction.
	T, Pot, Efrac float64

	MostBoundPos, MostBoundVel geom.Vec
	MostBoundID                int64
	UnboundIndex               int
	RMostBound                 float64

	NSub     int
	ParentID int64

	Gas, Star   SpeciesProps
	NBH         int
	MBH         float64
	NInterloper int
	MInterloper float64

	Inclusive   InclusiveMasses
	SOParticles []int64
}

// MVir and friends are convenience accessors for the overdensity arrays.
func (rec *PropertyRecord) MVir() float64  { return rec.M[cosmo.RVir] }
func (rec *PropertyRecord) RVir() float64  { return rec.R[cosmo.RVir] }
func (rec *PropertyRecord) M200c() float64 { return rec.M[cosmo.R200c] }
func (rec *PropertyRecord) R200c() float64 { return rec.R[cosmo.R200c] }
func (rec *PropertyRecord) M200m() float64 { return rec.M[cosmo.R200m] }
func (rec *PropertyRecord) R200m() float64 { return rec.R[cosmo.R200m] }
func (rec *PropertyRecord) M500c() float64 { return rec.M[cosmo.R500c] }
func (rec *PropertyRecord) R500c() float64 { return rec.R[cosmo.R500c] }
func (rec *PropertyRecord) MBN98() float64 { return rec.M[cosmo.RBN98] }
func (rec *PropertyRecord) RBN98() float64 { return rec.R[cosmo.RBN98] }

// ParticleList is the binding-energy ordered membership of one group: IDs
// runs from most to least bound and IDs[Unbound:] have positive energy.
type ParticleList struct {
	IDs     []int64
	Unbound int
}
