package io

import (
	"fmt"
	"strings"

	"gopkg.in/gcfg.v1"
)

const (
	ExamplePropertiesFile = `[Properties]

#######################
# Required Parameters #
#######################

# Particle file and the format it is written in. InputFormat must be one of
# [ Text | Gadget-2 ]. Text files contain the columns
#     id x y z vx vy vz mass [type u metal sfr age]
# and lines starting with # are ignored.
Input = path/to/particles.txt
InputFormat = Text

# Two column text file giving the group id of each particle id. Group ids of
# 0 or below mark particles which do not belong to any group.
GroupFile = path/to/groups.txt

# File which the property catalog will be written to. OutputFormat must be
# one of [ Text | SQLite ].
Output = path/to/catalog.txt
OutputFormat = Text

# Matter density parameter at redshift zero.
OmegaM = 0.27

#######################
# Optional Parameters #
#######################

# Gravitational constant and Hubble constant in internal units. The defaults
# correspond to Mpc/h, km/s and 10^10 Msun/h. OmegaL defaults to 1 - OmegaM.
# G = 43.0211349
# Hubble = 100
# OmegaL = 0.73

# Redshift of the snapshot. Gadget-2 input reads it from the file header.
# Redshift = 0

# Mean matter density at Redshift in internal units. If it is not set, it is
# computed from G, Hubble, OmegaM and OmegaL. The critical density is
# RhoBackground divided by the matter density parameter at Redshift.
# RhoBackground = 27.75

# Plummer softening length used by the potential calculation.
# Softening = 0

# Overdensity of the virial radius relative to RhoBackground. Any value at
# or below zero uses the Bryan & Norman (1998) fit.
# VirialLevel = -1

# Width of the periodic box. Zero means the volume is not periodic.
# BoxSize = 0

# Groups with fewer particles than this are not searched for inclusive
# masses. Also used as the bucket size of the inclusive search tree.
# HaloMinSize = 20

# Parameters of the shrinking-sphere centroid. The aperture shrinks its
# squared radius by CMAdjustFac every step until fewer than CMFrac of the
# group's particles remain inside. Groups where CMFrac*N < CMMinNum use
# the plain centroid.
# CMFrac = 0.1
# CMAdjustFac = 0.7
# CMMinNum = 50

# If PotRef is set, kinetic energies are measured relative to the velocity
# of the max(NPotRef, FracPotRef*N) particles nearest the potential minimum.
# PotRef = false
# NPotRef = 10
# FracPotRef = 0.1

# InclusiveHalos turns on spherical overdensity masses measured against
# every particle rather than just group members. SOSearchFac inflates the
# search radius. SOParticles writes the ids of every particle within each
# group's inclusive R200m to the binary catalog SOCatalog.
# InclusiveHalos = false
# SOSearchFac = 2
# SOParticles = false
# SOCatalog = path/to/so_particles.bin

# Species which get their own properties.
# Gas = false
# Star = false
# BH = false
# Interloper = false

# Aperture radii used for species masses, in internal length units.
# Aperture30 = 0.03
# Aperture50 = 0.05

# Groups with at least ParallelThreshold particles are computed one at a time
# with every worker splitting the particles. Smaller groups are split across
# workers. Workers defaults to the number of cores.
# ParallelThreshold = 10000
# Workers = 8

# Tree parameters for large-group potentials.
# Theta = 0.5
# BucketSize = 8

# Convergence tolerance of the shape iteration.
# MorphTolerance = 0.01

# Parent table with the columns (group id, parent id). Parent ids of 0 or
# below mark field halos.
# HierarchyFile = path/to/hierarchy.txt

# Binary catalog of each group's particle ids, ordered by binding energy.
# ParticleCatalog = path/to/particles.bin

# Write catalog rows from the largest group to the smallest rather than in
# group id order.
# SortBySize = false

# Image written by the -PlotProfile mode.
# PlotFile = profile.png

# LogMode must be one of [ Nil | Performance | Debug ].
# LogMode = Nil

# Output files which are useful for profiling and debugging. Generally, there
# isn't a reason to use these unless something goes wrong. MetricsFile is
# written in the Prometheus textfile format.
# ProfileFile = prof.out
# LogFile = log.out
# MetricsFile = metrics.prom`
)

type SharedConfig struct {
	// Required
	Input, Output string
	// Optional
	LogFile, ProfileFile string
}

func (con *SharedConfig) ValidInput() bool {
	return con.Input != ""
}
func (con *SharedConfig) ValidOutput() bool {
	return con.Output != ""
}
func (con *SharedConfig) ValidLogFile() bool {
	return con.LogFile != ""
}
func (con *SharedConfig) ValidProfileFile() bool {
	return con.ProfileFile != ""
}

type PropertiesConfig struct {
	SharedConfig

	// Required
	InputFormat, OutputFormat string
	GroupFile                 string
	RhoBackground, OmegaM     float64

	// Optional
	G, Hubble, OmegaL float64
	Redshift          float64
	Softening         float64
	VirialLevel       float64
	BoxSize           float64
	HaloMinSize       int

	CMFrac, CMAdjustFac float64
	CMMinNum            int

	PotRef     bool
	NPotRef    int
	FracPotRef float64

	InclusiveHalos bool
	SOSearchFac    float64
	SOParticles    bool
	SOCatalog      string

	Gas, Star, BH, Interloper bool
	Aperture30, Aperture50    float64

	ParallelThreshold, Workers int
	Theta                      float64
	BucketSize                 int
	MorphTolerance             float64

	HierarchyFile, ParticleCatalog string
	SortBySize                     bool
	PlotFile                       string
	LogMode, MetricsFile           string
}

var (
	InputFormats  = []string{"Text", "Gadget-2"}
	OutputFormats = []string{"Text", "SQLite"}
	LogModes      = []string{"Nil", "Performance", "Debug"}
)

func DefaultPropertiesWrapper() *PropertiesWrapper {
	con := PropertiesConfig{}
	con.InputFormat = "Text"
	con.OutputFormat = "Text"
	con.OmegaM = -1
	con.RhoBackground = -1

	con.G = 43.0211349
	con.Hubble = 100
	con.OmegaL = -1
	con.VirialLevel = -1
	con.HaloMinSize = 20

	con.CMFrac = 0.1
	con.CMAdjustFac = 0.7
	con.CMMinNum = 50

	con.NPotRef = 10
	con.FracPotRef = 0.1
	con.SOSearchFac = 2

	con.Aperture30 = 0.03
	con.Aperture50 = 0.05

	con.ParallelThreshold = 10000
	con.Workers = -1
	con.Theta = 0.5
	con.BucketSize = 8
	con.MorphTolerance = 1e-2

	con.PlotFile = "profile.png"
	con.LogMode = "Nil"
	return &PropertiesWrapper{con}
}

func oneOf(s string, opts []string) bool {
	for _, opt := range opts {
		if strings.ToLower(s) == strings.ToLower(opt) {
			return true
		}
	}
	return false
}

func (con *PropertiesConfig) ValidInputFormat() bool {
	return oneOf(con.InputFormat, InputFormats)
}
func (con *PropertiesConfig) ValidOutputFormat() bool {
	return oneOf(con.OutputFormat, OutputFormats)
}
func (con *PropertiesConfig) ValidGroupFile() bool {
	return con.GroupFile != ""
}
func (con *PropertiesConfig) ValidRhoBackground() bool {
	return con.RhoBackground > 0
}
func (con *PropertiesConfig) ValidOmegaM() bool {
	return con.OmegaM > 0
}
func (con *PropertiesConfig) ValidG() bool {
	return con.G > 0
}
func (con *PropertiesConfig) ValidHubble() bool {
	return con.Hubble > 0
}
func (con *PropertiesConfig) ValidRedshift() bool {
	return con.Redshift >= 0
}
func (con *PropertiesConfig) ValidSoftening() bool {
	return con.Softening >= 0
}
func (con *PropertiesConfig) ValidBoxSize() bool {
	return con.BoxSize >= 0
}
func (con *PropertiesConfig) ValidHaloMinSize() bool {
	return con.HaloMinSize > 0
}
func (con *PropertiesConfig) ValidCMFrac() bool {
	return con.CMFrac > 0 && con.CMFrac < 1
}
func (con *PropertiesConfig) ValidCMAdjustFac() bool {
	return con.CMAdjustFac > 0 && con.CMAdjustFac < 1
}
func (con *PropertiesConfig) ValidCMMinNum() bool {
	return con.CMMinNum > 0
}
func (con *PropertiesConfig) ValidNPotRef() bool {
	return con.NPotRef > 0
}
func (con *PropertiesConfig) ValidFracPotRef() bool {
	return con.FracPotRef > 0 && con.FracPotRef <= 1
}
func (con *PropertiesConfig) ValidSOSearchFac() bool {
	return con.SOSearchFac >= 1
}
func (con *PropertiesConfig) ValidAperture30() bool {
	return con.Aperture30 > 0
}
func (con *PropertiesConfig) ValidAperture50() bool {
	return con.Aperture50 > 0
}
func (con *PropertiesConfig) ValidParallelThreshold() bool {
	return con.ParallelThreshold > 0
}
func (con *PropertiesConfig) ValidWorkers() bool {
	return con.Workers > 0
}
func (con *PropertiesConfig) ValidTheta() bool {
	return con.Theta >= 0 && con.Theta < 1
}
func (con *PropertiesConfig) ValidBucketSize() bool {
	return con.BucketSize > 0
}
func (con *PropertiesConfig) ValidMorphTolerance() bool {
	return con.MorphTolerance > 0
}
func (con *PropertiesConfig) ValidHierarchyFile() bool {
	return con.HierarchyFile != ""
}
func (con *PropertiesConfig) ValidParticleCatalog() bool {
	return con.ParticleCatalog != ""
}
func (con *PropertiesConfig) ValidSOCatalog() bool {
	return con.SOCatalog != ""
}
func (con *PropertiesConfig) ValidLogMode() bool {
	return oneOf(con.LogMode, LogModes)
}
func (con *PropertiesConfig) ValidMetricsFile() bool {
	return con.MetricsFile != ""
}

// Check returns an error describing the first invalid required parameter
// or out-of-range optional parameter.
func (con *PropertiesConfig) Check() error {
	switch {
	case !con.ValidInput():
		return fmt.Errorf("Invalid/non-existent 'Input' value.")
	case !con.ValidOutput():
		return fmt.Errorf("Invalid/non-existent 'Output' value.")
	case !con.ValidGroupFile():
		return fmt.Errorf("Invalid/non-existent 'GroupFile' value.")
	case !con.ValidInputFormat():
		return fmt.Errorf(
			"Invalid 'InputFormat' value, '%s'. The only accepted formats "+
				"are: %s.", con.InputFormat, strings.Join(InputFormats, ", "),
		)
	case !con.ValidOutputFormat():
		return fmt.Errorf(
			"Invalid 'OutputFormat' value, '%s'. The only accepted formats "+
				"are: %s.", con.OutputFormat, strings.Join(OutputFormats, ", "),
		)
	case !con.ValidOmegaM():
		return fmt.Errorf("Invalid/non-existent 'OmegaM' value.")
	case !con.ValidG():
		return fmt.Errorf("'G' must be positive, but is %g.", con.G)
	case !con.ValidRhoBackground() && !con.ValidHubble():
		return fmt.Errorf("'RhoBackground' is not set, so 'Hubble' must be "+
			"positive, but is %g.", con.Hubble)
	case !con.ValidRedshift():
		return fmt.Errorf("'Redshift' must be non-negative, but is %g.",
			con.Redshift)
	case !con.ValidSoftening():
		return fmt.Errorf("'Softening' must be non-negative, but is %g.",
			con.Softening)
	case !con.ValidBoxSize():
		return fmt.Errorf("'BoxSize' must be non-negative, but is %g.",
			con.BoxSize)
	case !con.ValidHaloMinSize():
		return fmt.Errorf("'HaloMinSize' must be positive, but is %d.",
			con.HaloMinSize)
	case !con.ValidCMFrac():
		return fmt.Errorf("'CMFrac' must be in range (0, 1), but is %g.",
			con.CMFrac)
	case !con.ValidCMAdjustFac():
		return fmt.Errorf("'CMAdjustFac' must be in range (0, 1), but is %g.",
			con.CMAdjustFac)
	case !con.ValidCMMinNum():
		return fmt.Errorf("'CMMinNum' must be positive, but is %d.",
			con.CMMinNum)
	case !con.ValidNPotRef():
		return fmt.Errorf("'NPotRef' must be positive, but is %d.",
			con.NPotRef)
	case !con.ValidFracPotRef():
		return fmt.Errorf("'FracPotRef' must be in range (0, 1], but is %g.",
			con.FracPotRef)
	case !con.ValidSOSearchFac():
		return fmt.Errorf("'SOSearchFac' must be at least 1, but is %g.",
			con.SOSearchFac)
	case !con.ValidAperture30() || !con.ValidAperture50():
		return fmt.Errorf("Aperture radii must be positive, but are %g "+
			"and %g.", con.Aperture30, con.Aperture50)
	case !con.ValidParallelThreshold():
		return fmt.Errorf("'ParallelThreshold' must be positive, but is %d.",
			con.ParallelThreshold)
	case !con.ValidTheta():
		return fmt.Errorf("'Theta' must be in range [0, 1), but is %g.",
			con.Theta)
	case !con.ValidBucketSize():
		return fmt.Errorf("'BucketSize' must be positive, but is %d.",
			con.BucketSize)
	case !con.ValidMorphTolerance():
		return fmt.Errorf("'MorphTolerance' must be positive, but is %g.",
			con.MorphTolerance)
	case con.SOParticles && !con.InclusiveHalos:
		return fmt.Errorf("'SOParticles' is set, but 'InclusiveHalos' is not.")
	case con.SOParticles && !con.ValidSOCatalog():
		return fmt.Errorf("'SOParticles' is set, but 'SOCatalog' is not.")
	case !con.ValidLogMode():
		return fmt.Errorf(
			"Invalid 'LogMode' value, '%s'. The only accepted modes are: %s.",
			con.LogMode, strings.Join(LogModes, ", "),
		)
	}
	return nil
}

type PropertiesWrapper struct {
	Properties PropertiesConfig
}

// ReadPropertiesConfig reads and checks a [Properties] file.
func ReadPropertiesConfig(fname string) (*PropertiesConfig, error) {
	wrap := DefaultPropertiesWrapper()
	if err := gcfg.ReadFileInto(wrap, fname); err != nil {
		return nil, err
	}
	con := &wrap.Properties
	if err := con.Check(); err != nil {
		return nil, err
	}
	return con, nil
}

// ReadPropertiesString is ReadPropertiesConfig for an in-memory file.
func ReadPropertiesString(str string) (*PropertiesConfig, error) {
	wrap := DefaultPropertiesWrapper()
	if err := gcfg.ReadStringInto(wrap, str); err != nil {
		return nil, err
	}
	con := &wrap.Properties
	if err := con.Check(); err != nil {
		return nil, err
	}
	return con, nil
}
