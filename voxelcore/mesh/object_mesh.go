package mesh

import (
	"slices"

	"github.com/gekko3d/chunkvox/voxelcore/chunks"
)

// MeshDiff lists the chunks whose meshes changed during a sync, each sorted
// by chunk index.
type MeshDiff struct {
	Added   [][3]int
	Changed [][3]int
	Removed [][3]int
}

func (d MeshDiff) IsEmpty() bool {
	return len(d.Added) == 0 && len(d.Changed) == 0 && len(d.Removed) == 0
}

// ChunkedVoxelObjectMesh is the set of chunk meshes of one object.
type ChunkedVoxelObjectMesh struct {
	chunkMeshes   map[[3]int]*ChunkMesh
	triangleCount int
}

// Create meshes every chunk of the object. It leaves the object's
// invalidated set alone.
func Create(obj *chunks.ChunkedVoxelObject) *ChunkedVoxelObjectMesh {
	m := &ChunkedVoxelObjectMesh{chunkMeshes: make(map[[3]int]*ChunkMesh)}
	counts := obj.ChunkCounts()
	for i := 0; i < counts[0]; i++ {
		for j := 0; j < counts[1]; j++ {
			for k := 0; k < counts[2]; k++ {
				ci := [3]int{i, j, k}
				if cm := BuildChunkMesh(obj, ci); cm != nil {
					m.chunkMeshes[ci] = cm
					m.triangleCount += cm.TriangleCount()
				}
			}
		}
	}
	return m
}

// SyncWithVoxelObject rebuilds the meshes of the object's invalidated chunks
// and clears its invalidated set.
func (m *ChunkedVoxelObjectMesh) SyncWithVoxelObject(obj *chunks.ChunkedVoxelObject) MeshDiff {
	var diff MeshDiff
	for _, ci := range obj.InvalidatedMeshChunkIndices() {
		old, existed := m.chunkMeshes[ci]
		if existed {
			m.triangleCount -= old.TriangleCount()
		}
		cm := BuildChunkMesh(obj, ci)
		switch {
		case cm == nil && existed:
			delete(m.chunkMeshes, ci)
			diff.Removed = append(diff.Removed, ci)
		case cm == nil:
		case existed:
			m.chunkMeshes[ci] = cm
			m.triangleCount += cm.TriangleCount()
			diff.Changed = append(diff.Changed, ci)
		default:
			m.chunkMeshes[ci] = cm
			m.triangleCount += cm.TriangleCount()
			diff.Added = append(diff.Added, ci)
		}
	}
	obj.ClearInvalidatedMeshChunks()
	return diff
}

func (m *ChunkedVoxelObjectMesh) ChunkMesh(ci [3]int) (*ChunkMesh, bool) {
	cm, ok := m.chunkMeshes[ci]
	return cm, ok
}

// ChunkIndices returns the chunks that have a mesh, in chunk index order.
func (m *ChunkedVoxelObjectMesh) ChunkIndices() [][3]int {
	out := make([][3]int, 0, len(m.chunkMeshes))
	for ci := range m.chunkMeshes {
		out = append(out, ci)
	}
	slices.SortFunc(out, compareChunkIndices)
	return out
}

func compareChunkIndices(a, b [3]int) int {
	for d := 0; d < 3; d++ {
		if a[d] != b[d] {
			return a[d] - b[d]
		}
	}
	return 0
}

func (m *ChunkedVoxelObjectMesh) ChunkMeshCount() int { return len(m.chunkMeshes) }

func (m *ChunkedVoxelObjectMesh) TriangleCount() int { return m.triangleCount }

func (m *ChunkedVoxelObjectMesh) QuadCount() int { return m.triangleCount / 2 }

// MeshedChunkedVoxelObject couples a voxel object with its mesh.
type MeshedChunkedVoxelObject struct {
	Object *chunks.ChunkedVoxelObject
	Mesh   *ChunkedVoxelObjectMesh
}

// NewMeshedChunkedVoxelObject meshes the whole object, so any pending
// invalidations are already reflected and get cleared.
func NewMeshedChunkedVoxelObject(obj *chunks.ChunkedVoxelObject) *MeshedChunkedVoxelObject {
	obj.ClearInvalidatedMeshChunks()
	return &MeshedChunkedVoxelObject{Object: obj, Mesh: Create(obj)}
}

func (m *MeshedChunkedVoxelObject) SyncMeshWithObject() MeshDiff {
	return m.Mesh.SyncWithVoxelObject(m.Object)
}
