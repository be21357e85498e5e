package chunkvox

import (
	"bytes"
	"testing"

	"github.com/gekko3d/chunkvox/voxelcore/chunks"
	"github.com/gekko3d/chunkvox/voxelcore/geometry"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func cube(size int) ([3]int, voxelBox) {
	return [3]int{size, size, size}, voxelBox{hi: [3]int{size, size, size}}
}

func assertAABBNear(t *testing.T, expected, actual geometry.AABB) {
	t.Helper()
	for d := 0; d < 3; d++ {
		assert.InDelta(t, expected.Min[d], actual.Min[d], 1e-4, "min %d", d)
		assert.InDelta(t, expected.Max[d], actual.Max[d], 1e-4, "max %d", d)
	}
}

func TestManagerAddGetRemove(t *testing.T) {
	m := NewVoxelObjectManager(4, nil)
	shape, box := cube(8)
	a := meshedBoxes(t, 1, shape, box)
	b := meshedBoxes(t, 1, shape, box)

	idA := m.Add(a)
	idB := m.Add(b)
	assert.NotEqual(t, idA, idB)
	assert.Equal(t, 2, m.Count())

	got, ok := m.Get(idA)
	require.True(t, ok)
	assert.Same(t, a, got)
	_, ctx, ok := m.GetWithPhysicsContext(idB)
	require.True(t, ok)
	assert.Nil(t, ctx)

	ids := m.IDs()
	require.Len(t, ids, 2)
	assert.Negative(t, bytes.Compare(ids[0][:], ids[1][:]))

	assert.True(t, m.Remove(idA))
	assert.False(t, m.Remove(idA))
	_, ok = m.Get(idA)
	assert.False(t, ok)
	assert.False(t, m.AddPhysicsContext(idA, &VoxelPhysicsContext{}))
	assert.Equal(t, 1, m.Count())

	assert.Panics(t, func() { m.Add(nil) })
}

func TestObjectsOverlapping(t *testing.T) {
	m := NewVoxelObjectManager(4, nil)
	shape, box := cube(8)
	near := m.AddAt(meshedBoxes(t, 0.5, shape, box), mgl64.Vec3{})
	far := m.AddAt(meshedBoxes(t, 0.5, shape, box), mgl64.Vec3{100, 0, 0})

	aabb, ok := m.WorldAABB(far)
	require.True(t, ok)
	assertAABBNear(t, geometry.NewAABB(mgl32.Vec3{100, 0, 0}, mgl32.Vec3{104, 4, 4}), aabb)

	assert.Equal(t, []VoxelObjectID{near}, m.ObjectsOverlapping(geometry.NewAABB(mgl32.Vec3{1, 1, 1}, mgl32.Vec3{2, 2, 2})))
	assert.Equal(t, []VoxelObjectID{far}, m.ObjectsOverlapping(geometry.NewSphere(mgl32.Vec3{105, 2, 2}, 1.5).AABB()))
	// Same broadphase cell as near, but outside its box
	assert.Empty(t, m.ObjectsOverlapping(geometry.NewAABB(mgl32.Vec3{4.5, 4.5, 4.5}, mgl32.Vec3{5, 5, 5})))

	all := m.ObjectsOverlapping(geometry.NewAABB(mgl32.Vec3{-10, -10, -10}, mgl32.Vec3{200, 10, 10}))
	assert.ElementsMatch(t, []VoxelObjectID{near, far}, all)

	m.Remove(near)
	assert.Equal(t, []VoxelObjectID{far}, m.ObjectsOverlapping(geometry.NewAABB(mgl32.Vec3{-10, -10, -10}, mgl32.Vec3{200, 10, 10})))
}

func TestDynamicObjectFollowsItsBody(t *testing.T) {
	m := NewVoxelObjectManager(4, nil)
	shape, box := cube(8)
	obj := generateBoxes(t, 0.5, shape, box)
	id := NewDynamicVoxelObject(m, obj, []float64{1000}, mgl64.Vec3{5, 0, 0})

	meshed, ctx, ok := m.GetWithPhysicsContext(id)
	require.True(t, ok)
	require.NotNil(t, ctx)
	assert.Same(t, obj, meshed.Object)
	assert.Greater(t, meshed.Mesh.TriangleCount(), 0)
	assert.Zero(t, obj.InvalidatedMeshChunkCount())

	// 8³ voxels of 0.5³ at density 1000
	assert.InDelta(t, 64000.0, ctx.Body.Mass, 1e-6)
	assertVec3Near(t, mgl64.Vec3{7, 2, 2}, ctx.Body.Position, 1e-9)

	aabb, _ := m.WorldAABB(id)
	assertAABBNear(t, geometry.NewAABB(mgl32.Vec3{5, 0, 0}, mgl32.Vec3{9, 4, 4}), aabb)

	ctx.Body.Velocity = mgl64.Vec3{10, 0, 0}
	m.StepBodies(1, mgl64.Vec3{})
	aabb, _ = m.WorldAABB(id)
	assertAABBNear(t, geometry.NewAABB(mgl32.Vec3{15, 0, 0}, mgl32.Vec3{19, 4, 4}), aabb)
	assert.Equal(t, []VoxelObjectID{id}, m.ObjectsOverlapping(geometry.NewAABB(mgl32.Vec3{16, 1, 1}, mgl32.Vec3{17, 2, 2})))
	assert.Empty(t, m.ObjectsOverlapping(geometry.NewAABB(mgl32.Vec3{6, 1, 1}, mgl32.Vec3{7, 2, 2})))
}

func TestSyncMeshesReportsChangedObjects(t *testing.T) {
	m := NewVoxelObjectManager(4, nil)
	shape, box := cube(16)
	idA := m.Add(meshedBoxes(t, 1, shape, box))
	m.AddAt(meshedBoxes(t, 1, shape, box), mgl64.Vec3{50, 0, 0})
	assert.Empty(t, m.SyncMeshes())

	a, _ := m.Get(idA)
	a.Object.ModifyVoxelsWithinSphere(geometry.NewSphere(mgl32.Vec3{0, 0, 0}, 3), func(_ [3]int, _ float32, v *chunks.Voxel) {
		v.IncreaseSignedDistance(10, nil)
	})

	diffs := m.SyncMeshes()
	require.Len(t, diffs, 1)
	assert.Equal(t, [][3]int{{0, 0, 0}}, diffs[idA].Changed)
	assert.Empty(t, m.SyncMeshes())
}
