package generation

import "github.com/gekko3d/chunkvox/voxelcore/chunks"

// SameVoxelType gives every voxel the same type.
type SameVoxelType chunks.VoxelType

func (t SameVoxelType) VoxelTypeAt(int, int, int) chunks.VoxelType { return chunks.VoxelType(t) }

// LayeredVoxelTypes stacks types in bands of Thickness voxels along Axis,
// starting at index 0. Voxels beyond the last band keep the last type.
type LayeredVoxelTypes struct {
	Axis      int
	Thickness int
	Types     []chunks.VoxelType
}

func (l LayeredVoxelTypes) VoxelTypeAt(i, j, k int) chunks.VoxelType {
	if len(l.Types) == 0 {
		return 0
	}
	idx := [3]int{i, j, k}[l.Axis]
	band := 0
	if l.Thickness > 0 {
		band = idx / l.Thickness
	}
	return l.Types[min(max(band, 0), len(l.Types)-1)]
}
