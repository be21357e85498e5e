package chunkvox

import (
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"

	"github.com/chewxy/math32"
	"gopkg.in/yaml.v3"
)

type LoggingConfig struct {
	Prefix   string `yaml:"prefix"`
	Debug    bool   `yaml:"debug"`
	Disabled bool   `yaml:"disabled"`
}

type AbsorptionConfig struct {
	// Rate is the signed distance increase per second at a brush center, in
	// voxels.
	Rate float32 `yaml:"rate"`
	// MaxSplitsPerObject bounds the regions split off one object per Apply.
	// Zero splits until the object is connected.
	MaxSplitsPerObject int `yaml:"max_splits_per_object"`
}

// Config is the YAML configuration of a voxel object world.
type Config struct {
	VoxelExtent       float64 `yaml:"voxel_extent"`
	GenerationWorkers int     `yaml:"generation_workers"`
	// VoxelTypesPath points to a voxel type registry file. Relative paths are
	// resolved against the config file's directory.
	VoxelTypesPath     string           `yaml:"voxel_types"`
	BroadphaseCellSize float32          `yaml:"broadphase_cell_size"`
	Logging            LoggingConfig    `yaml:"logging"`
	Absorption         AbsorptionConfig `yaml:"absorption"`
}

func DefaultConfig() Config {
	return Config{
		VoxelExtent:        0.25,
		GenerationWorkers:  4,
		BroadphaseCellSize: 8.0,
		Logging:            LoggingConfig{Prefix: "chunkvox"},
		Absorption:         AbsorptionConfig{Rate: 4.0},
	}
}

// LoadConfig reads a YAML config on top of DefaultConfig and resolves its
// paths against the file's directory.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("config %s: %w", path, err)
	}
	cfg.ResolvePaths(filepath.Dir(path))
	return cfg, nil
}

func (c Config) Validate() error {
	var errs []error
	if !(c.VoxelExtent > 0) || math.IsInf(c.VoxelExtent, 1) {
		errs = append(errs, fmt.Errorf("voxel_extent must be finite and positive, got %g", c.VoxelExtent))
	}
	if c.GenerationWorkers < 1 {
		errs = append(errs, fmt.Errorf("generation_workers must be at least 1, got %d", c.GenerationWorkers))
	}
	if !(c.BroadphaseCellSize > 0) || math32.IsInf(c.BroadphaseCellSize, 1) {
		errs = append(errs, fmt.Errorf("broadphase_cell_size must be finite and positive, got %g", c.BroadphaseCellSize))
	}
	if !(c.Absorption.Rate >= 0) || math32.IsInf(c.Absorption.Rate, 1) {
		errs = append(errs, fmt.Errorf("absorption.rate must be finite and not negative, got %g", c.Absorption.Rate))
	}
	if c.Absorption.MaxSplitsPerObject < 0 {
		errs = append(errs, fmt.Errorf("absorption.max_splits_per_object must not be negative, got %d", c.Absorption.MaxSplitsPerObject))
	}
	return errors.Join(errs...)
}

// ResolvePaths makes relative paths absolute with respect to root.
func (c *Config) ResolvePaths(root string) {
	if c.VoxelTypesPath != "" && !filepath.IsAbs(c.VoxelTypesPath) {
		c.VoxelTypesPath = filepath.Join(root, c.VoxelTypesPath)
	}
}
