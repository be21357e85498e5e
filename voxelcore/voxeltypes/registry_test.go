package voxeltypes

import (
	"fmt"
	"image/color"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gekko3d/chunkvox/voxelcore/chunks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testRegistry = `
voxel_types:
  - name: granite
    mass_density: 2700
    color: [120, 120, 130]
  - name: wood
    mass_density: 600
    color: [140, 90, 40]
`

func TestLoadRegistry(t *testing.T) {
	path := filepath.Join(t.TempDir(), "voxel_types.yaml")
	require.NoError(t, os.WriteFile(path, []byte(testRegistry), 0o644))

	r, err := LoadRegistry(path)
	require.NoError(t, err)
	assert.Equal(t, 2, r.Len())

	wood, ok := r.TypeByName("wood")
	require.True(t, ok)
	assert.Equal(t, chunks.VoxelType(1), wood)
	assert.Equal(t, []float64{2700, 600}, r.MassDensities())
	assert.Equal(t, color.RGBA{140, 90, 40, 255}, r.Color(wood))
	assert.Equal(t, "granite", r.Specification(0).Name)

	_, ok = r.TypeByName("iron")
	assert.False(t, ok)
	assert.Panics(t, func() { r.Specification(5) })
}

func TestRegistryErrors(t *testing.T) {
	_, err := LoadRegistry(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)

	_, err = ParseRegistry([]byte("voxel_types: [oops"))
	assert.Error(t, err)

	_, err = ParseRegistry([]byte("voxel_types:\n  - name: a\n    mass_density: 1\n  - name: a\n    mass_density: 2\n"))
	assert.ErrorContains(t, err, "duplicate")

	_, err = ParseRegistry([]byte("voxel_types:\n  - name: a\n    mass_density: 0\n"))
	assert.ErrorContains(t, err, "mass density")

	var b strings.Builder
	b.WriteString("voxel_types:\n")
	for i := 0; i < 256; i++ {
		fmt.Fprintf(&b, "  - name: t%d\n    mass_density: 1\n", i)
	}
	_, err = ParseRegistry([]byte(b.String()))
	assert.ErrorContains(t, err, "maximum")
}
