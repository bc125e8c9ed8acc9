package catalog

import (
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"os"

	"github.com/phil-mansfield/gohalo"
	"github.com/phil-mansfield/gohalo/geom"
)

// Header describes meta-information about a particle file.
type Header struct {
	Cosmo CosmologyHeader

	Mass       float64 // Mass of one particle
	Count      int64   // Number of particles in file
	TotalCount int64   // Number of particles in all files
	TotalWidth float64 // Width of the sim's bounding box
}

// CosmologyHeader contains information describing the cosmological
// context in which the simulation was run.
type CosmologyHeader struct {
	Z      float64
	OmegaM float64
	OmegaL float64
	H100   float64
}

// gadgetHeader is the formatting for meta-information used by Gadget 2.
type gadgetHeader struct {
	NPart                                     [6]uint32
	Mass                                      [6]float64
	Time, Redshift                            float64
	FlagSfr, FlagFeedback                     int32
	NPartTotal                                [6]uint32
	FlagCooling, NumFiles                     int32
	BoxSize, Omega0, OmegaLambda, HubbleParam float64
	FlagStellarAge, HashTabSize               int32

	Padding [88]byte
}

// Standardize returns a Header that corresponds to the source Gadget 2
// header. Counts above 2^32 keep their high bits in the gas slot, as
// LGadget does.
func (gh *gadgetHeader) Standardize() *Header {
	h := &Header{}

	h.Count = int64(gh.NPart[1]) + int64(gh.NPart[0])<<32
	h.TotalCount = int64(gh.NPartTotal[1]) + int64(gh.NPartTotal[0])<<32
	h.Mass = gh.Mass[1]
	h.TotalWidth = gh.BoxSize

	h.Cosmo.Z = gh.Redshift
	h.Cosmo.OmegaM = gh.Omega0
	h.Cosmo.OmegaL = gh.OmegaLambda
	h.Cosmo.H100 = gh.HubbleParam

	return h
}

// readBlock reads one Fortran-style record, checking that its leading and
// trailing markers agree with the size of data.
func readBlock(r io.Reader, order binary.ByteOrder, data interface{}) error {
	var head, tail int32
	if err := binary.Read(r, order, &head); err != nil {
		return err
	}
	if err := binary.Read(r, order, data); err != nil {
		return err
	}
	if err := binary.Read(r, order, &tail); err != nil {
		return err
	}
	if size := binary.Size(data); head != tail || int(head) != size {
		return fmt.Errorf(
			"Block markers %d and %d do not match a block of %d bytes.",
			head, tail, size,
		)
	}
	return nil
}

func readGadgetHeader(r io.Reader, order binary.ByteOrder) (*gadgetHeader, error) {
	gh := &gadgetHeader{}
	if err := readBlock(r, order, gh); err != nil {
		return nil, err
	}
	return gh, nil
}

// ReadGadgetHeader reads the header of a Gadget 2 file.
func ReadGadgetHeader(path string, order binary.ByteOrder) (*Header, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	gh, err := readGadgetHeader(f, order)
	if err != nil {
		return nil, fmt.Errorf("Could not read header of %s: %w", path, err)
	}
	return gh.Standardize(), nil
}

// ReadGadget reads the dark matter particles of a Gadget 2 file written with
// the given byte order. Positions are wrapped into the box and velocities
// are converted from Gadget's internal units to peculiar velocities.
func ReadGadget(
	path string, order binary.ByteOrder,
) (*Header, []gohalo.Particle, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, err
	}
	defer f.Close()

	gh, err := readGadgetHeader(f, order)
	if err != nil {
		return nil, nil, fmt.Errorf("Could not read header of %s: %w", path, err)
	}
	h := gh.Standardize()

	floatBuf := make([]float32, 3*h.Count)
	intBuf := make([]int64, h.Count)
	ps := make([]gohalo.Particle, h.Count)

	if err := readBlock(f, order, floatBuf); err != nil {
		return nil, nil, fmt.Errorf("Could not read positions of %s: %w", path, err)
	}
	for i := range ps {
		for d := 0; d < 3; d++ {
			ps[i].Pos[d] = geom.Wrap(float64(floatBuf[3*i+d]), gh.BoxSize)
		}
	}

	if err := readBlock(f, order, floatBuf); err != nil {
		return nil, nil, fmt.Errorf("Could not read velocities of %s: %w", path, err)
	}
	rootA := math.Sqrt(gh.Time)
	for i := range ps {
		for d := 0; d < 3; d++ {
			ps[i].Vel[d] = float64(floatBuf[3*i+d]) * rootA
		}
	}

	if err := readBlock(f, order, intBuf); err != nil {
		return nil, nil, fmt.Errorf("Could not read ids of %s: %w", path, err)
	}
	for i := range ps {
		ps[i].ID = intBuf[i]
		ps[i].Mass = h.Mass
		ps[i].Type = gohalo.Dark
	}

	return h, ps, nil
}
