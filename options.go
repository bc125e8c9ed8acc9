package gohalo

import (
	"runtime"

	"github.com/phil-mansfield/gohalo/cosmo"
	"github.com/phil-mansfield/gohalo/io"
	"github.com/phil-mansfield/gohalo/kdtree"
	"github.com/phil-mansfield/gohalo/metrics"
)

// Options is the immutable parameter bundle read by every engine. Build one
// with DefaultOptions or OptionsFromConfig and call Init before use.
//
// RhoBackground is the mean matter density at Redshift. A non-positive
// value is derived from G, Hubble, OmegaM and OmegaL.
type Options struct {
	G, Hubble      float64
	OmegaM, OmegaL float64
	Redshift       float64
	RhoBackground  float64
	Softening      float64
	VirialLevel    float64
	Period         float64
	HaloMinSize    int

	CMFrac, CMAdjustFac float64
	CMMinNum            int

	PotRef     bool
	NPotRef    int
	FracPotRef float64

	InclusiveHalos bool
	SOSearchFac    float64
	SOParticles    bool

	Species                Species
	Aperture30, Aperture50 float64

	ParallelThreshold, Workers int
	Theta                      float64
	BucketSize                 int
	MorphTolerance             float64

	// SeparateFiles restores id order at the end of SortByBindingEnergy.
	SeparateFiles bool

	// Metrics may be nil.
	Metrics *metrics.Recorder

	rhoBg      float64
	thresholds cosmo.Thresholds
	initted    bool
}

// DefaultOptions returns options for a non-periodic volume with the given
// background density and matter density parameter.
func DefaultOptions(rhoBg, omegaM float64) *Options {
	opt := &Options{
		G: 43.0211349, Hubble: 100,
		OmegaM: omegaM, OmegaL: 1 - omegaM,
		RhoBackground: rhoBg,
		VirialLevel:   -1,
		HaloMinSize:   20,

		CMFrac: 0.1, CMAdjustFac: 0.7, CMMinNum: 50,
		NPotRef: 10, FracPotRef: 0.1,
		SOSearchFac: 2,

		Aperture30: 0.03, Aperture50: 0.05,

		ParallelThreshold: 10000,
		Workers:           runtime.NumCPU(),
		Theta:             kdtree.DefaultTheta,
		BucketSize:        kdtree.DefaultBucketSize,
		MorphTolerance:    1e-2,
	}
	opt.Init()
	return opt
}

// OptionsFromConfig converts a checked [Properties] config to Options.
func OptionsFromConfig(con *io.PropertiesConfig) *Options {
	opt := &Options{
		G: con.G, Hubble: con.Hubble,
		OmegaM: con.OmegaM, OmegaL: con.OmegaL,
		Redshift:      con.Redshift,
		RhoBackground: con.RhoBackground,
		Softening:     con.Softening,
		VirialLevel:   con.VirialLevel,
		Period:        con.BoxSize,
		HaloMinSize:   con.HaloMinSize,

		CMFrac: con.CMFrac, CMAdjustFac: con.CMAdjustFac,
		CMMinNum: con.CMMinNum,

		PotRef: con.PotRef, NPotRef: con.NPotRef, FracPotRef: con.FracPotRef,

		InclusiveHalos: con.InclusiveHalos,
		SOSearchFac:    con.SOSearchFac,
		SOParticles:    con.SOParticles,

		Aperture30: con.Aperture30, Aperture50: con.Aperture50,

		ParallelThreshold: con.ParallelThreshold,
		Workers:           con.Workers,
		Theta:             con.Theta,
		BucketSize:        con.BucketSize,
		MorphTolerance:    con.MorphTolerance,

		SeparateFiles: true,
	}

	if con.OmegaL < 0 {
		opt.OmegaL = 1 - con.OmegaM
	}
	if !con.ValidWorkers() {
		opt.Workers = runtime.NumCPU()
	}
	if con.Gas {
		opt.Species |= GasSpecies
	}
	if con.Star {
		opt.Species |= StarSpecies
	}
	if con.BH {
		opt.Species |= BHSpecies
	}
	if con.Interloper {
		opt.Species |= InterloperSpecies
	}

	opt.Init()
	return opt
}

// Init computes derived quantities. It must be called again after any
// field is changed.
func (opt *Options) Init() {
	if opt.Workers <= 0 {
		opt.Workers = runtime.NumCPU()
	}
	omegaM := cosmo.OmegaMz(opt.OmegaM, opt.OmegaL, opt.Redshift)
	opt.rhoBg = opt.RhoBackground
	if opt.rhoBg <= 0 {
		H := opt.Hubble * cosmo.HubbleFrac(opt.OmegaM, opt.OmegaL, opt.Redshift)
		opt.rhoBg = omegaM * cosmo.RhoCritical(H, opt.G)
	}
	opt.thresholds = cosmo.NewThresholds(opt.rhoBg, omegaM, opt.VirialLevel)
	opt.initted = true
}

// Background returns the mean matter density used by every overdensity
// definition.
func (opt *Options) Background() float64 {
	if !opt.initted {
		panic("Options used before Init was called.")
	}
	return opt.rhoBg
}

// Thresholds returns the log density thresholds of each overdensity
// definition.
func (opt *Options) Thresholds() *cosmo.Thresholds {
	if !opt.initted {
		panic("Options used before Init was called.")
	}
	return &opt.thresholds
}

// treeConfig is the tree configuration for positions in a box of width
// period, or unbounded positions if period is zero.
func (opt *Options) treeConfig(period float64) *kdtree.Config {
	return &kdtree.Config{
		BucketSize: opt.BucketSize, Period: period, Theta: opt.Theta,
	}
}

// shrinks reports whether a group of n particles uses the shrinking-sphere
// centroid.
func (opt *Options) shrinks(n int) bool {
	return float64(n)*opt.CMFrac >= float64(opt.CMMinNum)
}
