package chunks

import "sync"

// scratch holds transient buffers for one top-level operation. It is taken
// from a pool on entry and must be released on every exit path.
type scratch struct {
	localRegions unionFind
	rootLabels   [ChunkVoxelCount]uint16
	chunkIndices []int
	voxels       [ChunkVoxelCount]Voxel
}

var scratchPool = sync.Pool{
	New: func() any { return new(scratch) },
}

func acquireScratch() *scratch {
	return scratchPool.Get().(*scratch)
}

func (s *scratch) release() {
	s.chunkIndices = s.chunkIndices[:0]
	scratchPool.Put(s)
}
