package chunkvox

import (
	"github.com/chewxy/math32"
	"github.com/gekko3d/chunkvox/voxelcore/geometry"
	"github.com/go-gl/mathgl/mgl32"
)

// SpatialHashGrid buckets object ids by the cells their world AABB covers.
// Queries return broadphase candidates only.
type SpatialHashGrid struct {
	cellSize float32
	cells    map[uint64][]VoxelObjectID
}

func NewSpatialHashGrid(cellSize float32) *SpatialHashGrid {
	if cellSize <= 0 {
		panic("chunkvox: spatial hash grid cell size must be positive")
	}
	return &SpatialHashGrid{
		cellSize: cellSize,
		cells:    make(map[uint64][]VoxelObjectID),
	}
}

func (grid *SpatialHashGrid) Clear() {
	clear(grid.cells)
}

func (grid *SpatialHashGrid) Insert(id VoxelObjectID, aabb geometry.AABB) {
	grid.forEachCell(aabb, func(key uint64) {
		grid.cells[key] = append(grid.cells[key], id)
	})
}

func (grid *SpatialHashGrid) QueryAABB(aabb geometry.AABB) []VoxelObjectID {
	unique := make(map[VoxelObjectID]struct{})
	var results []VoxelObjectID
	grid.forEachCell(aabb, func(key uint64) {
		for _, id := range grid.cells[key] {
			if _, ok := unique[id]; !ok {
				unique[id] = struct{}{}
				results = append(results, id)
			}
		}
	})
	return results
}

func (grid *SpatialHashGrid) QueryRadius(center mgl32.Vec3, radius float32) []VoxelObjectID {
	return grid.QueryAABB(geometry.NewSphere(center, radius).AABB())
}

func (grid *SpatialHashGrid) forEachCell(aabb geometry.AABB, fn func(key uint64)) {
	minX, maxX := grid.cellIndex(aabb.Min.X()), grid.cellIndex(aabb.Max.X())
	minY, maxY := grid.cellIndex(aabb.Min.Y()), grid.cellIndex(aabb.Max.Y())
	minZ, maxZ := grid.cellIndex(aabb.Min.Z()), grid.cellIndex(aabb.Max.Z())
	for x := minX; x <= maxX; x++ {
		for y := minY; y <= maxY; y++ {
			for z := minZ; z <= maxZ; z++ {
				fn(hashCell(x, y, z))
			}
		}
	}
}

func (grid *SpatialHashGrid) cellIndex(pos float32) int {
	return int(math32.Floor(pos / grid.cellSize))
}

// hashCell may map distinct cells to the same key; that only adds candidates.
func hashCell(x, y, z int) uint64 {
	const p1 = 73856093
	const p2 = 19349663
	const p3 = 83492791
	return uint64(x*p1 ^ y*p2 ^ z*p3)
}
