// Package voxeltypes holds the names and physical properties of voxel types.
package voxeltypes

import (
	"fmt"
	"image/color"
	"os"

	"github.com/gekko3d/chunkvox/voxelcore/chunks"
	"gopkg.in/yaml.v3"
)

// Specification describes one voxel type. Color is used by debug views.
type Specification struct {
	Name        string   `yaml:"name"`
	MassDensity float64  `yaml:"mass_density"`
	Color       [3]uint8 `yaml:"color"`
}

type registryFile struct {
	VoxelTypes []Specification `yaml:"voxel_types"`
}

// Registry maps voxel types, in declaration order, to their specifications.
type Registry struct {
	specs  []Specification
	byName map[string]chunks.VoxelType
}

func NewRegistry(specs []Specification) (*Registry, error) {
	if len(specs) > chunks.MaxVoxelTypes {
		return nil, fmt.Errorf("%d voxel types exceed the maximum of %d", len(specs), chunks.MaxVoxelTypes)
	}
	r := &Registry{specs: specs, byName: make(map[string]chunks.VoxelType, len(specs))}
	for i, spec := range specs {
		if spec.Name == "" {
			return nil, fmt.Errorf("voxel type %d has no name", i)
		}
		if _, dup := r.byName[spec.Name]; dup {
			return nil, fmt.Errorf("duplicate voxel type %q", spec.Name)
		}
		if !(spec.MassDensity > 0) {
			return nil, fmt.Errorf("voxel type %q has non-positive mass density %g", spec.Name, spec.MassDensity)
		}
		r.byName[spec.Name] = chunks.VoxelType(i)
	}
	return r, nil
}

func ParseRegistry(data []byte) (*Registry, error) {
	var file registryFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse voxel types: %w", err)
	}
	return NewRegistry(file.VoxelTypes)
}

func LoadRegistry(path string) (*Registry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read voxel types: %w", err)
	}
	r, err := ParseRegistry(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return r, nil
}

func (r *Registry) Len() int { return len(r.specs) }

func (r *Registry) TypeByName(name string) (chunks.VoxelType, bool) {
	t, ok := r.byName[name]
	return t, ok
}

// Specification panics for a type that is not registered.
func (r *Registry) Specification(t chunks.VoxelType) Specification {
	if int(t) >= len(r.specs) {
		panic(fmt.Sprintf("voxeltypes: type %d not registered (%d types)", t, len(r.specs)))
	}
	return r.specs[t]
}

// MassDensities is indexed by voxel type.
func (r *Registry) MassDensities() []float64 {
	out := make([]float64, len(r.specs))
	for i, spec := range r.specs {
		out[i] = spec.MassDensity
	}
	return out
}

func (r *Registry) Color(t chunks.VoxelType) color.RGBA {
	if int(t) >= len(r.specs) {
		return color.RGBA{255, 0, 255, 255}
	}
	c := r.specs[t].Color
	return color.RGBA{c[0], c[1], c[2], 255}
}
