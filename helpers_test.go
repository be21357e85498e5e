package chunkvox

import (
	"testing"

	"github.com/gekko3d/chunkvox/voxelcore/chunks"
	"github.com/gekko3d/chunkvox/voxelcore/generation"
	"github.com/gekko3d/chunkvox/voxelcore/mesh"
)

// voxelBox is a half-open range of voxel indices.
type voxelBox struct {
	lo, hi [3]int
}

func (b voxelBox) contains(i, j, k int) bool {
	idx := [3]int{i, j, k}
	for d := 0; d < 3; d++ {
		if idx[d] < b.lo[d] || idx[d] >= b.hi[d] {
			return false
		}
	}
	return true
}

type boxesSDF struct {
	shape [3]int
	boxes []voxelBox
}

func (s boxesSDF) GridShape() [3]int { return s.shape }

func (s boxesSDF) Evaluate(i, j, k int) float32 {
	for _, b := range s.boxes {
		if b.contains(i, j, k) {
			return -2
		}
	}
	return 2
}

func generateBoxes(t *testing.T, extent float64, shape [3]int, boxes ...voxelBox) *chunks.ChunkedVoxelObject {
	t.Helper()
	obj := chunks.Generate(extent, boxesSDF{shape: shape, boxes: boxes}, generation.SameVoxelType(0))
	if obj == nil {
		t.Fatalf("Expected boxes %v to generate an object", boxes)
	}
	return obj
}

func meshedBoxes(t *testing.T, extent float64, shape [3]int, boxes ...voxelBox) *mesh.MeshedChunkedVoxelObject {
	t.Helper()
	return mesh.NewMeshedChunkedVoxelObject(generateBoxes(t, extent, shape, boxes...))
}

// dumbbellBoxes are two 16³ boxes joined by a 4x4 bar along x from 16 to 24,
// symmetric about (20, 8, 8).
func dumbbellBoxes() ([3]int, []voxelBox) {
	return [3]int{40, 16, 16}, []voxelBox{
		{lo: [3]int{0, 0, 0}, hi: [3]int{16, 16, 16}},
		{lo: [3]int{16, 6, 6}, hi: [3]int{24, 10, 10}},
		{lo: [3]int{24, 0, 0}, hi: [3]int{40, 16, 16}},
	}
}
