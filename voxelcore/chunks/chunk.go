package chunks

import "fmt"

const (
	ChunkSize       = 8
	ChunkSizeSq     = ChunkSize * ChunkSize
	ChunkVoxelCount = ChunkSize * ChunkSize * ChunkSize

	noRegion = ^uint16(0)
)

type ChunkKind uint8

const (
	ChunkEmpty ChunkKind = iota
	ChunkUniform
	ChunkNonUniform
)

func (k ChunkKind) String() string {
	switch k {
	case ChunkEmpty:
		return "empty"
	case ChunkUniform:
		return "uniform"
	default:
		return "non-uniform"
	}
}

// FaceDistribution summarizes the non-empty voxels on one chunk face.
type FaceDistribution uint8

const (
	FaceEmpty FaceDistribution = iota
	FaceFull
	FaceMixed
)

type RegionState uint8

const (
	RegionStale RegionState = iota
	RegionLocalLabeled
	RegionGloballyResolved
)

func (s RegionState) String() string {
	switch s {
	case RegionStale:
		return "stale"
	case RegionLocalLabeled:
		return "local"
	default:
		return "resolved"
	}
}

type chunk struct {
	kind       ChunkKind
	uniform    Voxel
	dataOffset uint32

	// Indexed by [dim][side], side 0 is the lower face.
	faces         [3][2]FaceDistribution
	faceRowCounts [3][2][ChunkSize]uint8

	nonEmptyCount int
	regionCount   int
	regionSizes   []int
	regionState   RegionState
}

func emptyChunk() chunk {
	return chunk{kind: ChunkEmpty, regionState: RegionGloballyResolved}
}

func uniformChunk(v Voxel) chunk {
	v.setAdjacencyMask(FullAdjacency)
	c := chunk{
		kind:          ChunkUniform,
		uniform:       v,
		nonEmptyCount: ChunkVoxelCount,
		regionCount:   1,
		regionSizes:   []int{ChunkVoxelCount},
		regionState:   RegionLocalLabeled,
	}
	c.setAllFaces(FaceFull)
	return c
}

func (c *chunk) setAllFaces(dist FaceDistribution) {
	var rowCount uint8
	if dist == FaceFull {
		rowCount = ChunkSize
	}
	for dim := 0; dim < 3; dim++ {
		for side := 0; side < 2; side++ {
			c.faces[dim][side] = dist
			for r := range c.faceRowCounts[dim][side] {
				c.faceRowCounts[dim][side][r] = rowCount
			}
		}
	}
}

func (c *chunk) isNonEmpty() bool {
	return c.kind != ChunkEmpty
}

func (c *chunk) mustBeNonUniform(op string) {
	if c.kind != ChunkNonUniform {
		panic(fmt.Sprintf("chunks: %s requires a non-uniform chunk, got %s", op, c.kind))
	}
}

func linearVoxelIdx(i, j, k int) int {
	return i*ChunkSizeSq + j*ChunkSize + k
}

func voxelIdxFromLinear(idx int) (int, int, int) {
	return idx / ChunkSizeSq, (idx / ChunkSize) % ChunkSize, idx % ChunkSize
}

// faceAxes returns the two axes spanning the face normal to dim, in the order
// used for face rows (first axis selects the row).
func faceAxes(dim int) (int, int) {
	switch dim {
	case 0:
		return 1, 2
	case 1:
		return 0, 2
	default:
		return 0, 1
	}
}

// faceVoxelIdx returns the linear index of the voxel at (a, b) on the face
// normal to dim. side 0 is the lower face.
func faceVoxelIdx(dim, side, a, b int) int {
	var local [3]int
	local[dim] = side * (ChunkSize - 1)
	axisA, axisB := faceAxes(dim)
	local[axisA] = a
	local[axisB] = b
	return linearVoxelIdx(local[0], local[1], local[2])
}

// voxelArena pools the voxels of all non-uniform chunks of an object in one
// buffer, with region labels alongside.
type voxelArena struct {
	voxels    []Voxel
	labels    []uint16
	freeSlots []uint32
}

func (a *voxelArena) allocateSlot() uint32 {
	if len(a.freeSlots) > 0 {
		offset := a.freeSlots[len(a.freeSlots)-1]
		a.freeSlots = a.freeSlots[:len(a.freeSlots)-1]
		return offset
	}
	offset := uint32(len(a.voxels))
	outside := MaximallyOutside()
	for i := 0; i < ChunkVoxelCount; i++ {
		a.voxels = append(a.voxels, outside)
		a.labels = append(a.labels, noRegion)
	}
	return offset
}

func (a *voxelArena) freeSlot(offset uint32) {
	voxels := a.slot(offset)
	labels := a.labelSlot(offset)
	outside := MaximallyOutside()
	for i := range voxels {
		voxels[i] = outside
		labels[i] = noRegion
	}
	a.freeSlots = append(a.freeSlots, offset)
}

func (a *voxelArena) checkOffset(offset uint32) {
	if offset%ChunkVoxelCount != 0 || int(offset)+ChunkVoxelCount > len(a.voxels) {
		panic(fmt.Sprintf("chunks: data offset %d out of range (arena holds %d voxels)", offset, len(a.voxels)))
	}
}

func (a *voxelArena) slot(offset uint32) []Voxel {
	a.checkOffset(offset)
	return a.voxels[offset : offset+ChunkVoxelCount : offset+ChunkVoxelCount]
}

func (a *voxelArena) labelSlot(offset uint32) []uint16 {
	a.checkOffset(offset)
	return a.labels[offset : offset+ChunkVoxelCount : offset+ChunkVoxelCount]
}

func (a *voxelArena) slotCount() int {
	return len(a.voxels) / ChunkVoxelCount
}

func (a *voxelArena) usedSlotCount() int {
	return a.slotCount() - len(a.freeSlots)
}
