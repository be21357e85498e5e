package chunks

import (
	"fmt"
	"sort"

	"github.com/go-gl/mathgl/mgl32"
)

// IndexRange is a half-open range of indices.
type IndexRange struct {
	Start, End int
}

func (r IndexRange) Len() int {
	if r.End <= r.Start {
		return 0
	}
	return r.End - r.Start
}

func (r IndexRange) IsEmpty() bool { return r.End <= r.Start }

func (r IndexRange) Contains(i int) bool { return i >= r.Start && i < r.End }

func (r IndexRange) intersect(o IndexRange) IndexRange {
	return IndexRange{Start: max(r.Start, o.Start), End: min(r.End, o.End)}
}

// ChunkedVoxelObject is a sparse voxel volume split into cubic chunks of
// ChunkSize voxels. It is not safe for concurrent use.
type ChunkedVoxelObject struct {
	voxelExtent float64
	chunkCounts [3]int

	occupiedChunkRanges [3]IndexRange
	occupiedVoxelRanges [3]IndexRange

	originOffsetInRoot [3]int

	chunks []chunk
	arena  voxelArena

	splitDetector         splitDetector
	invalidatedMeshChunks map[int]struct{}
	batchingModifications bool
}

func newChunkedVoxelObject(voxelExtent float64, chunkCounts [3]int) *ChunkedVoxelObject {
	if voxelExtent <= 0 {
		panic(fmt.Sprintf("chunks: voxel extent must be positive, got %g", voxelExtent))
	}
	total := chunkCounts[0] * chunkCounts[1] * chunkCounts[2]
	obj := &ChunkedVoxelObject{
		voxelExtent:           voxelExtent,
		chunkCounts:           chunkCounts,
		chunks:                make([]chunk, total),
		invalidatedMeshChunks: make(map[int]struct{}),
	}
	for i := range obj.chunks {
		obj.chunks[i] = emptyChunk()
	}
	return obj
}

func (o *ChunkedVoxelObject) VoxelExtent() float64 { return o.voxelExtent }

func (o *ChunkedVoxelObject) ChunkCounts() [3]int { return o.chunkCounts }

// GridShape is the number of voxels covered by the chunk grid along each axis.
func (o *ChunkedVoxelObject) GridShape() [3]int {
	return [3]int{o.chunkCounts[0] * ChunkSize, o.chunkCounts[1] * ChunkSize, o.chunkCounts[2] * ChunkSize}
}

func (o *ChunkedVoxelObject) OccupiedChunkRanges() [3]IndexRange { return o.occupiedChunkRanges }

func (o *ChunkedVoxelObject) OccupiedVoxelRanges() [3]IndexRange { return o.occupiedVoxelRanges }

// OriginOffsetInRoot is the voxel offset of this object's grid within the
// object it was ultimately split off from.
func (o *ChunkedVoxelObject) OriginOffsetInRoot() [3]int { return o.originOffsetInRoot }

func (o *ChunkedVoxelObject) chunkLinearIdx(ci [3]int) int {
	return ci[0]*o.chunkCounts[1]*o.chunkCounts[2] + ci[1]*o.chunkCounts[2] + ci[2]
}

func (o *ChunkedVoxelObject) chunkIdxFromLinear(idx int) [3]int {
	cz := o.chunkCounts[2]
	cyz := o.chunkCounts[1] * cz
	return [3]int{idx / cyz, (idx / cz) % o.chunkCounts[1], idx % cz}
}

func (o *ChunkedVoxelObject) chunkInGrid(ci [3]int) bool {
	for dim := 0; dim < 3; dim++ {
		if ci[dim] < 0 || ci[dim] >= o.chunkCounts[dim] {
			return false
		}
	}
	return true
}

func (o *ChunkedVoxelObject) chunkAt(ci [3]int) *chunk {
	if !o.chunkInGrid(ci) {
		return nil
	}
	return &o.chunks[o.chunkLinearIdx(ci)]
}

func (o *ChunkedVoxelObject) ChunkKindAt(ci [3]int) ChunkKind {
	if c := o.chunkAt(ci); c != nil {
		return c.kind
	}
	return ChunkEmpty
}

func (o *ChunkedVoxelObject) ChunkRegionState(ci [3]int) RegionState {
	if c := o.chunkAt(ci); c != nil {
		return c.regionState
	}
	return RegionGloballyResolved
}

// ChunkFaceDistribution reports the distribution of non-empty voxels on the
// face of the chunk normal to dim; side 0 is the lower face.
func (o *ChunkedVoxelObject) ChunkFaceDistribution(ci [3]int, dim, side int) FaceDistribution {
	if c := o.chunkAt(ci); c != nil {
		return c.faces[dim][side]
	}
	return FaceEmpty
}

// NonUniformChunkVoxels returns the voxels of a non-uniform chunk, indexed by
// LocalVoxelIdx, or nil for any other kind. The slice must not be modified and
// is only valid until the next mutation of the object.
func (o *ChunkedVoxelObject) NonUniformChunkVoxels(ci [3]int) []Voxel {
	c := o.chunkAt(ci)
	if c == nil || c.kind != ChunkNonUniform {
		return nil
	}
	return o.arena.slot(c.dataOffset)
}

// UniformChunkVoxel returns the voxel shared by all voxels of a uniform chunk.
func (o *ChunkedVoxelObject) UniformChunkVoxel(ci [3]int) (Voxel, bool) {
	c := o.chunkAt(ci)
	if c == nil || c.kind != ChunkUniform {
		return Voxel{}, false
	}
	return c.uniform, true
}

// LocalVoxelIdx is the position of a voxel within its chunk's voxel slice.
func LocalVoxelIdx(i, j, k int) int {
	return linearVoxelIdx(i, j, k)
}

func LocalVoxelIndices(idx int) [3]int {
	i, j, k := voxelIdxFromLinear(idx)
	return [3]int{i, j, k}
}

// GetVoxel returns the voxel at the given object voxel indices. Indices
// outside the grid and voxels of empty chunks read as empty.
func (o *ChunkedVoxelObject) GetVoxel(i, j, k int) Voxel {
	if i < 0 || j < 0 || k < 0 {
		return MaximallyOutside()
	}
	c := o.chunkAt([3]int{i / ChunkSize, j / ChunkSize, k / ChunkSize})
	if c == nil {
		return MaximallyOutside()
	}
	switch c.kind {
	case ChunkUniform:
		return c.uniform
	case ChunkNonUniform:
		return o.arena.slot(c.dataOffset)[linearVoxelIdx(i%ChunkSize, j%ChunkSize, k%ChunkSize)]
	default:
		return MaximallyOutside()
	}
}

func (o *ChunkedVoxelObject) NonEmptyVoxelCount() int {
	count := 0
	for i := range o.chunks {
		count += o.chunks[i].nonEmptyCount
	}
	return count
}

func (o *ChunkedVoxelObject) ContainsOnlyEmptyVoxels() bool {
	for i := range o.chunks {
		if o.chunks[i].isNonEmpty() {
			return false
		}
	}
	return true
}

func (o *ChunkedVoxelObject) CountChunksOfKind(kind ChunkKind) int {
	count := 0
	for i := range o.chunks {
		if o.chunks[i].kind == kind {
			count++
		}
	}
	return count
}

// ForEachNonEmptyVoxel calls fn for every non-empty voxel, in chunk order.
func (o *ChunkedVoxelObject) ForEachNonEmptyVoxel(fn func(indices [3]int, voxel Voxel)) {
	for ci := range o.chunks {
		c := &o.chunks[ci]
		if !c.isNonEmpty() {
			continue
		}
		chunkIdx := o.chunkIdxFromLinear(ci)
		base := [3]int{chunkIdx[0] * ChunkSize, chunkIdx[1] * ChunkSize, chunkIdx[2] * ChunkSize}
		var voxels []Voxel
		if c.kind == ChunkNonUniform {
			voxels = o.arena.slot(c.dataOffset)
		}
		for idx := 0; idx < ChunkVoxelCount; idx++ {
			v := c.uniform
			if voxels != nil {
				v = voxels[idx]
				if v.IsEmpty() {
					continue
				}
			}
			i, j, k := voxelIdxFromLinear(idx)
			fn([3]int{base[0] + i, base[1] + j, base[2] + k}, v)
		}
	}
}

func (o *ChunkedVoxelObject) invalidateChunkMesh(linearIdx int) {
	o.invalidatedMeshChunks[linearIdx] = struct{}{}
}

// InvalidatedMeshChunkIndices returns the chunks whose mesh must be rebuilt,
// sorted in chunk order.
func (o *ChunkedVoxelObject) InvalidatedMeshChunkIndices() [][3]int {
	linear := make([]int, 0, len(o.invalidatedMeshChunks))
	for idx := range o.invalidatedMeshChunks {
		linear = append(linear, idx)
	}
	sort.Ints(linear)
	indices := make([][3]int, len(linear))
	for n, idx := range linear {
		indices[n] = o.chunkIdxFromLinear(idx)
	}
	return indices
}

func (o *ChunkedVoxelObject) InvalidatedMeshChunkCount() int {
	return len(o.invalidatedMeshChunks)
}

func (o *ChunkedVoxelObject) ClearInvalidatedMeshChunks() {
	clear(o.invalidatedMeshChunks)
}

func (o *ChunkedVoxelObject) invalidateAllNonEmptyChunkMeshes() {
	for idx := range o.chunks {
		if o.chunks[idx].isNonEmpty() {
			o.invalidateChunkMesh(idx)
		}
	}
}

// ComputeAABB returns the object-space bounds of the occupied voxel ranges.
func (o *ChunkedVoxelObject) ComputeAABB() (mgl32.Vec3, mgl32.Vec3) {
	e := float32(o.voxelExtent)
	r := o.occupiedVoxelRanges
	minB := mgl32.Vec3{float32(r[0].Start) * e, float32(r[1].Start) * e, float32(r[2].Start) * e}
	maxB := mgl32.Vec3{float32(r[0].End) * e, float32(r[1].End) * e, float32(r[2].End) * e}
	return minB, maxB
}

// MemoryUsage reports the approximate number of bytes held by the voxel
// arena and chunk table.
func (o *ChunkedVoxelObject) MemoryUsage() int {
	const voxelBytes = 8
	return len(o.arena.voxels)*voxelBytes + len(o.arena.labels)*2 + len(o.chunks)*200
}

// promoteUniformToNonUniform expands a uniform chunk into an arena slot. The
// expanded voxels keep full adjacency and the single local region.
func (o *ChunkedVoxelObject) promoteUniformToNonUniform(linearIdx int) {
	c := &o.chunks[linearIdx]
	if c.kind != ChunkUniform {
		panic(fmt.Sprintf("chunks: cannot promote %s chunk %v", c.kind, o.chunkIdxFromLinear(linearIdx)))
	}
	offset := o.arena.allocateSlot()
	voxels := o.arena.slot(offset)
	labels := o.arena.labelSlot(offset)
	v := c.uniform
	v.setAdjacencyMask(FullAdjacency)
	for i := range voxels {
		voxels[i] = v
		labels[i] = 0
	}
	c.kind = ChunkNonUniform
	c.dataOffset = offset
}

// demoteIfEmptyOrUniform releases the slot of a non-uniform chunk whose
// voxels are all empty or all identical. It reports whether the chunk kind
// changed.
func (o *ChunkedVoxelObject) demoteIfEmptyOrUniform(linearIdx int) bool {
	c := &o.chunks[linearIdx]
	c.mustBeNonUniform("demotion")
	voxels := o.arena.slot(c.dataOffset)
	if c.nonEmptyCount == 0 {
		o.arena.freeSlot(c.dataOffset)
		*c = emptyChunk()
		return true
	}
	if c.nonEmptyCount < ChunkVoxelCount {
		return false
	}
	first := voxels[0]
	for _, v := range voxels[1:] {
		if !v.sameContent(first) {
			return false
		}
	}
	o.arena.freeSlot(c.dataOffset)
	*c = uniformChunk(first)
	return true
}
