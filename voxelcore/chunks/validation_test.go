package chunks

import (
	"testing"

	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

type testSDF struct {
	shape [3]int
	eval  func(p mgl32.Vec3) float32
}

func (s testSDF) GridShape() [3]int { return s.shape }

func (s testSDF) Evaluate(i, j, k int) float32 {
	return s.eval(voxelCenter(i, j, k))
}

type sameType VoxelType

func (t sameType) VoxelTypeAt(int, int, int) VoxelType { return VoxelType(t) }

// typeByX assigns type 0 below the given x and type 1 above.
type typeByX int

func (t typeByX) VoxelTypeAt(i, _, _ int) VoxelType {
	if i < int(t) {
		return 0
	}
	return 1
}

func sphereDistance(center mgl32.Vec3, radius float32) func(p mgl32.Vec3) float32 {
	return func(p mgl32.Vec3) float32 {
		return p.Sub(center).Len() - radius
	}
}

func boxDistance(minB, maxB mgl32.Vec3) func(p mgl32.Vec3) float32 {
	center := minB.Add(maxB).Mul(0.5)
	half := maxB.Sub(minB).Mul(0.5)
	return func(p mgl32.Vec3) float32 {
		q := p.Sub(center)
		d := mgl32.Vec3{math32.Abs(q[0]) - half[0], math32.Abs(q[1]) - half[1], math32.Abs(q[2]) - half[2]}
		outside := mgl32.Vec3{math32.Max(d[0], 0), math32.Max(d[1], 0), math32.Max(d[2], 0)}.Len()
		inside := math32.Min(math32.Max(d[0], math32.Max(d[1], d[2])), 0)
		return outside + inside
	}
}

func unionDistance(fns ...func(p mgl32.Vec3) float32) func(p mgl32.Vec3) float32 {
	return func(p mgl32.Vec3) float32 {
		d := math32.Inf(1)
		for _, fn := range fns {
			d = math32.Min(d, fn(p))
		}
		return d
	}
}

func generateSphere(t *testing.T, radius float32) *ChunkedVoxelObject {
	t.Helper()
	size := int(math32.Ceil(2 * radius))
	c := float32(size) / 2
	obj := Generate(1.0, testSDF{
		shape: [3]int{size, size, size},
		eval:  sphereDistance(mgl32.Vec3{c, c, c}, radius),
	}, sameType(0))
	if obj == nil {
		t.Fatalf("Expected a sphere of radius %g to generate an object", radius)
	}
	return obj
}

// generateDumbbell builds a large sphere on the low x side and a smaller one on
// the high x side, joined by a thin box along x from 20 to 36.
func generateDumbbell(t *testing.T) *ChunkedVoxelObject {
	t.Helper()
	obj := Generate(1.0, testSDF{
		shape: [3]int{56, 24, 24},
		eval: unionDistance(
			sphereDistance(mgl32.Vec3{12, 12, 12}, 11),
			sphereDistance(mgl32.Vec3{44, 12, 12}, 10),
			boxDistance(mgl32.Vec3{20, 10, 10}, mgl32.Vec3{36, 14, 14}),
		),
	}, typeByX(28))
	if obj == nil {
		t.Fatal("Expected dumbbell to generate an object")
	}
	return obj
}

func forEachGridVoxel(obj *ChunkedVoxelObject, fn func(i, j, k int)) {
	shape := obj.GridShape()
	for i := 0; i < shape[0]; i++ {
		for j := 0; j < shape[1]; j++ {
			for k := 0; k < shape[2]; k++ {
				fn(i, j, k)
			}
		}
	}
}

// validateAdjacencies checks every stored adjacency mask against the actual
// neighbors.
func validateAdjacencies(t *testing.T, obj *ChunkedVoxelObject) {
	t.Helper()
	failures := 0
	forEachGridVoxel(obj, func(i, j, k int) {
		v := obj.GetVoxel(i, j, k)
		if v.IsEmpty() {
			if v.AdjacencyMask() != 0 {
				t.Errorf("Empty voxel (%d,%d,%d) has adjacency %06b", i, j, k, v.AdjacencyMask())
				failures++
			}
			return
		}
		var want VoxelFlags
		idx := [3]int{i, j, k}
		for dim := 0; dim < 3; dim++ {
			for _, up := range []bool{false, true} {
				n := idx
				if up {
					n[dim]++
				} else {
					n[dim]--
				}
				if !obj.GetVoxel(n[0], n[1], n[2]).IsEmpty() {
					want |= AdjacencyFlag(dim, up)
				}
			}
		}
		if got := v.AdjacencyMask(); got != want && failures < 10 {
			t.Errorf("Voxel (%d,%d,%d) adjacency %06b, expected %06b", i, j, k, got, want)
			failures++
		}
	})
}

// validateChunkKinds checks the uniform and empty invariants and the stored
// counts and face distributions.
func validateChunkKinds(t *testing.T, obj *ChunkedVoxelObject) {
	t.Helper()
	for idx := range obj.chunks {
		c := &obj.chunks[idx]
		ci := obj.chunkIdxFromLinear(idx)
		switch c.kind {
		case ChunkEmpty:
			if c.nonEmptyCount != 0 {
				t.Errorf("Empty chunk %v reports %d non-empty voxels", ci, c.nonEmptyCount)
			}
		case ChunkUniform:
			if c.uniform.IsEmpty() {
				t.Errorf("Uniform chunk %v holds an empty voxel", ci)
			}
			if !obj.isFullyObscuredByNeighbors(ci) {
				t.Errorf("Uniform chunk %v is not fully obscured", ci)
			}
		case ChunkNonUniform:
			voxels := obj.arena.slot(c.dataOffset)
			nonEmpty := 0
			for _, v := range voxels {
				if !v.IsEmpty() {
					nonEmpty++
				}
			}
			if nonEmpty == 0 {
				t.Errorf("Non-uniform chunk %v has no non-empty voxels", ci)
			}
			if nonEmpty != c.nonEmptyCount {
				t.Errorf("Chunk %v non-empty count %d, expected %d", ci, c.nonEmptyCount, nonEmpty)
			}
			var check chunk
			updateFaceDistributions(&check, voxels)
			if check.faces != c.faces {
				t.Errorf("Chunk %v face distributions %v, expected %v", ci, c.faces, check.faces)
			}
		}
	}
}

// bruteForceRegions labels 6-connected components over the whole grid.
func bruteForceRegions(obj *ChunkedVoxelObject) (map[[3]int]int, int) {
	shape := obj.GridShape()
	labels := make(map[[3]int]int)
	count := 0
	forEachGridVoxel(obj, func(i, j, k int) {
		start := [3]int{i, j, k}
		if _, seen := labels[start]; seen || obj.GetVoxel(i, j, k).IsEmpty() {
			return
		}
		labels[start] = count
		stack := [][3]int{start}
		for len(stack) > 0 {
			cur := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			for dim := 0; dim < 3; dim++ {
				for _, d := range []int{-1, 1} {
					n := cur
					n[dim] += d
					if n[dim] < 0 || n[dim] >= shape[dim] {
						continue
					}
					if _, seen := labels[n]; seen || obj.GetVoxel(n[0], n[1], n[2]).IsEmpty() {
						continue
					}
					labels[n] = count
					stack = append(stack, n)
				}
			}
		}
		count++
	})
	return labels, count
}

// validateRegionCount compares the resolved regions with a flood fill over
// the full grid, including which voxels share a region.
func validateRegionCount(t *testing.T, obj *ChunkedVoxelObject) {
	t.Helper()
	labels, count := bruteForceRegions(obj)
	if got := obj.CountRegions(); got != count {
		t.Fatalf("Expected %d regions, got %d", count, got)
	}
	toRegion := make(map[int]uint32)
	fromRegion := make(map[uint32]int)
	for idx, label := range labels {
		id, ok := obj.RegionIDAt(idx[0], idx[1], idx[2])
		if !ok {
			t.Fatalf("Non-empty voxel %v has no region", idx)
		}
		if prev, seen := toRegion[label]; seen && prev != id {
			t.Fatalf("Connected voxels in regions %d and %d", prev, id)
		}
		if prev, seen := fromRegion[id]; seen && prev != label {
			t.Fatalf("Region %d spans disconnected components", id)
		}
		toRegion[label] = id
		fromRegion[id] = label
	}
}

func validateObject(t *testing.T, obj *ChunkedVoxelObject) {
	t.Helper()
	validateChunkKinds(t, obj)
	validateAdjacencies(t, obj)
	validateRegionCount(t, obj)
	validateOccupiedRanges(t, obj)
}

func validateOccupiedRanges(t *testing.T, obj *ChunkedVoxelObject) {
	t.Helper()
	lo := obj.GridShape()
	hi := [3]int{-1, -1, -1}
	forEachGridVoxel(obj, func(i, j, k int) {
		if obj.GetVoxel(i, j, k).IsEmpty() {
			return
		}
		for dim, x := range [3]int{i, j, k} {
			lo[dim] = min(lo[dim], x)
			hi[dim] = max(hi[dim], x)
		}
	})
	ranges := obj.OccupiedVoxelRanges()
	for dim := 0; dim < 3; dim++ {
		if hi[dim] < 0 {
			continue
		}
		if ranges[dim].Start > lo[dim] || ranges[dim].End <= hi[dim] {
			t.Errorf("Occupied range %v along %d does not cover voxels %d..%d", ranges[dim], dim, lo[dim], hi[dim])
		}
	}
}

func snapshotVoxels(obj *ChunkedVoxelObject) []Voxel {
	var out []Voxel
	forEachGridVoxel(obj, func(i, j, k int) {
		out = append(out, obj.GetVoxel(i, j, k))
	})
	return out
}
