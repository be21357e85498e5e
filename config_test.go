package chunkvox

import (
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/chewxy/math32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "world.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestDefaultConfigIsValid(t *testing.T) {
	assert.NoError(t, DefaultConfig().Validate())
}

func TestLoadConfigOverridesDefaults(t *testing.T) {
	path := writeConfig(t, `
voxel_extent: 0.5
voxel_types: types/rock.yaml
logging:
  debug: true
absorption:
  max_splits_per_object: 3
`)
	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, 0.5, cfg.VoxelExtent)
	assert.Equal(t, DefaultConfig().GenerationWorkers, cfg.GenerationWorkers)
	assert.Equal(t, filepath.Join(filepath.Dir(path), "types", "rock.yaml"), cfg.VoxelTypesPath)
	assert.True(t, cfg.Logging.Debug)
	assert.Equal(t, "chunkvox", cfg.Logging.Prefix)
	assert.Equal(t, float32(4), cfg.Absorption.Rate)
	assert.Equal(t, 3, cfg.Absorption.MaxSplitsPerObject)
}

func TestLoadConfigErrors(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)

	_, err = LoadConfig(writeConfig(t, "voxel_extent: [1, 2]\n"))
	assert.Error(t, err)

	_, err = LoadConfig(writeConfig(t, "voxel_extent: 0\ngeneration_workers: 0\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "voxel_extent")
	assert.Contains(t, err.Error(), "generation_workers")
}

func TestValidateRejectsNonFiniteValues(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Absorption.Rate = math32.NaN()
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "absorption.rate")

	cfg = DefaultConfig()
	cfg.Absorption.Rate = math32.Inf(1)
	cfg.VoxelExtent = math.NaN()
	cfg.BroadphaseCellSize = math32.Inf(1)
	err = cfg.Validate()
	require.Error(t, err)
	for _, field := range []string{"absorption.rate", "voxel_extent", "broadphase_cell_size"} {
		assert.Contains(t, err.Error(), field)
	}

	_, err = LoadConfig(writeConfig(t, "absorption:\n  rate: .nan\n"))
	assert.ErrorContains(t, err, "absorption.rate")
}

func TestResolvePathsKeepsAbsolutePaths(t *testing.T) {
	cfg := DefaultConfig()
	abs := filepath.Join(t.TempDir(), "types.yaml")
	cfg.VoxelTypesPath = abs
	cfg.ResolvePaths("/elsewhere")
	assert.Equal(t, abs, cfg.VoxelTypesPath)

	cfg.VoxelTypesPath = ""
	cfg.ResolvePaths("/elsewhere")
	assert.Empty(t, cfg.VoxelTypesPath)
}
