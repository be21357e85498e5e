package chunks

import (
	"context"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateEmptyReturnsNil(t *testing.T) {
	outside := testSDF{shape: [3]int{16, 16, 16}, eval: func(mgl32.Vec3) float32 { return 1 }}
	if obj := Generate(1.0, outside, sameType(0)); obj != nil {
		t.Errorf("Expected nil for an all-empty generator")
	}
	zero := testSDF{shape: [3]int{0, 8, 8}, eval: func(mgl32.Vec3) float32 { return -1 }}
	if obj := Generate(1.0, zero, sameType(0)); obj != nil {
		t.Errorf("Expected nil for a zero-size grid")
	}
}

func TestGeneratePanicsOnBadInput(t *testing.T) {
	sdf := testSDF{shape: [3]int{8, 8, 8}, eval: func(mgl32.Vec3) float32 { return -1 }}
	assert.Panics(t, func() { Generate(0, sdf, sameType(0)) })
	bad := testSDF{shape: [3]int{8, -1, 8}, eval: func(mgl32.Vec3) float32 { return -1 }}
	assert.Panics(t, func() { Generate(1, bad, sameType(0)) })
}

func TestGenerateSphere(t *testing.T) {
	obj := generateSphere(t, 20)

	assert.Equal(t, [3]int{5, 5, 5}, obj.ChunkCounts())
	for dim, r := range obj.OccupiedVoxelRanges() {
		if r.Start < 0 || r.End > 40 {
			t.Errorf("Occupied voxel range %v along %d exceeds [0, 40)", r, dim)
		}
	}
	assert.Equal(t, 1, obj.CountRegions())
	assert.Greater(t, obj.CountChunksOfKind(ChunkUniform), 0, "deep interior chunks should be uniform")
	validateObject(t, obj)

	// The center chunk is deep inside
	v := obj.GetVoxel(20, 20, 20)
	assert.False(t, v.IsEmpty())
	assert.Equal(t, -MaxSignedDistance, v.SignedDistance())

	// Out of range reads are empty
	assert.True(t, obj.GetVoxel(-1, 0, 0).IsEmpty())
	assert.True(t, obj.GetVoxel(0, 1000, 0).IsEmpty())
	assert.Equal(t, ChunkEmpty, obj.ChunkKindAt([3]int{9, 0, 0}))
}

func TestGeneratedCubeIsFullyConnectedAndPromoted(t *testing.T) {
	// All voxels inside: every chunk is uniform until the outer faces promote it
	obj := Generate(1.0, testSDF{shape: [3]int{16, 16, 16}, eval: func(mgl32.Vec3) float32 { return -10 }}, sameType(1))
	require.NotNil(t, obj)

	assert.Equal(t, 8, obj.CountChunksOfKind(ChunkNonUniform))
	assert.Equal(t, 16*16*16, obj.NonEmptyVoxelCount())
	validateObject(t, obj)

	surface := 0
	obj.ForEachSurfaceVoxel(func([3]int, Voxel) { surface++ })
	// 16^3 minus the 14^3 interior
	assert.Equal(t, 16*16*16-14*14*14, surface)
}

func TestComputeAllDerivedStateIsIdempotent(t *testing.T) {
	obj := generateDumbbell(t)
	before := snapshotVoxels(obj)
	kinds := make([]ChunkKind, len(obj.chunks))
	for i := range obj.chunks {
		kinds[i] = obj.chunks[i].kind
	}
	regions := obj.RegionVoxelCounts()

	obj.ComputeAllDerivedState()

	assert.Equal(t, before, snapshotVoxels(obj))
	for i := range obj.chunks {
		assert.Equal(t, kinds[i], obj.chunks[i].kind)
	}
	assert.Equal(t, regions, obj.RegionVoxelCounts())
}

func TestStepwiseBuildersMatchGenerate(t *testing.T) {
	sdf := testSDF{shape: [3]int{30, 20, 26}, eval: sphereDistance(mgl32.Vec3{15, 10, 13}, 9.3)}
	full := Generate(1.0, sdf, sameType(0))
	require.NotNil(t, full)

	stepwise := GenerateWithoutDerivedState(1.0, sdf, sameType(0))
	require.NotNil(t, stepwise)
	for idx := range stepwise.chunks {
		if stepwise.chunks[idx].kind == ChunkNonUniform {
			assert.Equal(t, RegionStale, stepwise.chunks[idx].regionState)
		}
	}
	stepwise.UpdateInternalAdjacenciesForAllChunks()
	stepwise.UpdateLocalConnectedRegionsForAllChunks()
	stepwise.UpdateAllChunkBoundaryAdjacencies()
	stepwise.ResolveConnectedRegionsBetweenAllChunks()
	stepwise.UpdateOccupiedVoxelRanges()

	assert.Equal(t, snapshotVoxels(full), snapshotVoxels(stepwise))
	assert.Equal(t, full.OccupiedVoxelRanges(), stepwise.OccupiedVoxelRanges())
	assert.Equal(t, full.RegionVoxelCounts(), stepwise.RegionVoxelCounts())
	for idx := range stepwise.chunks {
		assert.Equal(t, RegionGloballyResolved, stepwise.ChunkRegionState(stepwise.chunkIdxFromLinear(idx)))
	}
}

func TestGenerateParallelMatchesGenerate(t *testing.T) {
	sdf := testSDF{
		shape: [3]int{56, 24, 24},
		eval: unionDistance(
			sphereDistance(mgl32.Vec3{12, 12, 12}, 11),
			sphereDistance(mgl32.Vec3{44, 12, 12}, 10),
		),
	}
	serial := Generate(1.0, sdf, typeByX(28))
	parallel, err := GenerateParallel(context.Background(), 1.0, sdf, typeByX(28), 3)
	require.NoError(t, err)
	require.NotNil(t, parallel)

	assert.Equal(t, snapshotVoxels(serial), snapshotVoxels(parallel))
	assert.Equal(t, serial.arena.voxels, parallel.arena.voxels)
	assert.Equal(t, 2, parallel.CountRegions())
}

func TestGenerateParallelCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	obj, err := GenerateParallel(ctx, 1.0, testSDF{shape: [3]int{32, 32, 32}, eval: sphereDistance(mgl32.Vec3{16, 16, 16}, 10)}, sameType(0), 2)
	assert.Nil(t, obj)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestOccupiedVoxelRangesAreTight(t *testing.T) {
	obj := Generate(1.0, testSDF{
		shape: [3]int{40, 40, 40},
		eval:  boxDistance(mgl32.Vec3{3, 9, 17}, mgl32.Vec3{21, 12, 30}),
	}, sameType(0))
	require.NotNil(t, obj)

	want := [3]IndexRange{{3, 21}, {9, 12}, {17, 30}}
	assert.Equal(t, want, obj.OccupiedVoxelRanges())
	assert.Equal(t, [3]IndexRange{{0, 3}, {1, 2}, {2, 4}}, obj.OccupiedChunkRanges())

	minB, maxB := obj.ComputeAABB()
	assert.Equal(t, mgl32.Vec3{3, 9, 17}, minB)
	assert.Equal(t, mgl32.Vec3{21, 12, 30}, maxB)

	// Chunk (1, 1, 2) holds y 9..11 and z 17..23 across its full x extent
	ci := [3]int{1, 1, 2}
	assert.Equal(t, FaceMixed, obj.ChunkFaceDistribution(ci, 0, 0))
	assert.Equal(t, FaceMixed, obj.ChunkFaceDistribution(ci, 0, 1))
	assert.Equal(t, FaceEmpty, obj.ChunkFaceDistribution(ci, 1, 0))
	assert.Equal(t, FaceEmpty, obj.ChunkFaceDistribution(ci, 2, 0))
	assert.Equal(t, FaceMixed, obj.ChunkFaceDistribution(ci, 2, 1))
	assert.Equal(t, FaceEmpty, obj.ChunkFaceDistribution([3]int{4, 4, 4}, 0, 0))
}
