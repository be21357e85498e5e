// Package mesh builds per-chunk face meshes of voxel objects and keeps them
// in sync with edits.
package mesh

import (
	"github.com/gekko3d/chunkvox/voxelcore/chunks"
	"github.com/go-gl/mathgl/mgl32"
)

// ChunkMesh holds one quad per exposed voxel face of a chunk. Positions are
// in object space (voxel corners scaled by the voxel extent).
type ChunkMesh struct {
	ChunkIndices [3]int
	Positions    []mgl32.Vec3
	Normals      []mgl32.Vec3
	VoxelTypes   []chunks.VoxelType
	Indices      []uint32
}

func (m *ChunkMesh) QuadCount() int { return len(m.Positions) / 4 }

func (m *ChunkMesh) TriangleCount() int { return len(m.Indices) / 3 }

// BuildChunkMesh returns nil when the chunk has no exposed faces. Uniform
// chunks are always fully obscured and never have any.
func BuildChunkMesh(obj *chunks.ChunkedVoxelObject, ci [3]int) *ChunkMesh {
	voxels := obj.NonUniformChunkVoxels(ci)
	if voxels == nil {
		return nil
	}
	m := &ChunkMesh{ChunkIndices: ci}
	extent := float32(obj.VoxelExtent())
	origin := [3]int{ci[0] * chunks.ChunkSize, ci[1] * chunks.ChunkSize, ci[2] * chunks.ChunkSize}
	for idx, v := range voxels {
		if v.IsEmpty() || v.IsFullyObscured() {
			continue
		}
		local := chunks.LocalVoxelIndices(idx)
		corner := mgl32.Vec3{
			float32(origin[0] + local[0]),
			float32(origin[1] + local[1]),
			float32(origin[2] + local[2]),
		}
		for dim := 0; dim < 3; dim++ {
			for _, up := range [2]bool{false, true} {
				if !v.HasAdjacent(dim, up) {
					m.addFace(corner, dim, up, extent, v.Type())
				}
			}
		}
	}
	if len(m.Indices) == 0 {
		return nil
	}
	return m
}

var unitAxes = [3]mgl32.Vec3{{1, 0, 0}, {0, 1, 0}, {0, 0, 1}}

// addFace appends a quad wound counter-clockwise as seen from outside.
func (m *ChunkMesh) addFace(corner mgl32.Vec3, dim int, up bool, extent float32, voxelType chunks.VoxelType) {
	ea := unitAxes[(dim+1)%3]
	eb := unitAxes[(dim+2)%3]
	normal := unitAxes[dim]
	base := corner
	var quad [4]mgl32.Vec3
	if up {
		base = base.Add(normal)
		quad = [4]mgl32.Vec3{base, base.Add(ea), base.Add(ea).Add(eb), base.Add(eb)}
	} else {
		normal = normal.Mul(-1)
		quad = [4]mgl32.Vec3{base, base.Add(eb), base.Add(ea).Add(eb), base.Add(ea)}
	}

	first := uint32(len(m.Positions))
	for _, p := range quad {
		m.Positions = append(m.Positions, p.Mul(extent))
		m.Normals = append(m.Normals, normal)
		m.VoxelTypes = append(m.VoxelTypes, voxelType)
	}
	m.Indices = append(m.Indices, first, first+1, first+2, first, first+2, first+3)
}
