package io

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExamplePropertiesFile(t *testing.T) {
	con, err := ReadPropertiesString(ExamplePropertiesFile)
	require.NoError(t, err)

	assert.Equal(t, "path/to/particles.txt", con.Input)
	assert.Equal(t, "Text", con.InputFormat)
	assert.Equal(t, 0.27, con.OmegaM)
	assert.False(t, con.ValidRhoBackground())
	assert.Equal(t, 0.0, con.Redshift)

	// Commented-out values keep their defaults.
	assert.Equal(t, 0.1, con.CMFrac)
	assert.Equal(t, 0.7, con.CMAdjustFac)
	assert.Equal(t, 50, con.CMMinNum)
	assert.Equal(t, 20, con.HaloMinSize)
	assert.Equal(t, -1.0, con.VirialLevel)
	assert.False(t, con.PotRef)
	assert.False(t, con.ValidWorkers())
}

func TestPropertiesCheck(t *testing.T) {
	base := `[Properties]
Input = in.txt
Output = out.txt
GroupFile = groups.txt
RhoBackground = 1
OmegaM = 0.3
`
	tests := []struct {
		extra string
		ok    bool
	}{
		{"", true},
		{"InputFormat = Gadget-2\n", true},
		{"InputFormat = gadget-2\n", true},
		{"InputFormat = HDF5\n", false},
		{"OutputFormat = SQLite\n", true},
		{"OutputFormat = FITS\n", false},
		{"CMFrac = 1.5\n", false},
		{"CMAdjustFac = 0\n", false},
		{"Softening = -1\n", false},
		{"Theta = 1\n", false},
		{"LogMode = Performance\n", true},
		{"LogMode = Loud\n", false},
		{"Gas = true\nStar = true\n", true},
		{"SOSearchFac = 0.5\n", false},
		{"Redshift = -1\n", false},
		{"Redshift = 2\n", true},
		{"SOParticles = true\n", false},
		{"InclusiveHalos = true\nSOParticles = true\n", false},
		{"InclusiveHalos = true\nSOParticles = true\nSOCatalog = so.bin\n", true},
		{"SortBySize = true\n", true},
	}

	for i, test := range tests {
		con, err := ReadPropertiesString(base + test.extra)
		if test.ok {
			assert.NoError(t, err, "%d) %q", i, test.extra)
			assert.NotNil(t, con)
		} else {
			assert.Error(t, err, "%d) %q", i, test.extra)
		}
	}
}

func TestPropertiesMissingRequired(t *testing.T) {
	_, err := ReadPropertiesString(`[Properties]
Input = in.txt
Output = out.txt
RhoBackground = 1
OmegaM = 0.3
`)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "GroupFile")
}

func TestReadPropertiesConfig(t *testing.T) {
	fname := filepath.Join(t.TempDir(), "props.config")
	require.NoError(t, os.WriteFile(fname, []byte(ExamplePropertiesFile), 0644))

	con, err := ReadPropertiesConfig(fname)
	require.NoError(t, err)
	assert.Equal(t, "path/to/groups.txt", con.GroupFile)

	_, err = ReadPropertiesConfig(filepath.Join(t.TempDir(), "missing"))
	assert.Error(t, err)
}

func TestPropertiesDerivedBackground(t *testing.T) {
	base := `[Properties]
Input = in.txt
Output = out.txt
GroupFile = groups.txt
OmegaM = 0.3
`
	con, err := ReadPropertiesString(base)
	require.NoError(t, err)
	assert.False(t, con.ValidRhoBackground())

	_, err = ReadPropertiesString(base + "Hubble = 0\n")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Hubble")

	_, err = ReadPropertiesString(base + "Hubble = 0\nRhoBackground = 2\n")
	assert.NoError(t, err)
}
