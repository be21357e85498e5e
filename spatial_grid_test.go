package chunkvox

import (
	"testing"

	"github.com/gekko3d/chunkvox/voxelcore/geometry"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestSpatialHashGrid_InsertionAndQuery(t *testing.T) {
	grid := NewSpatialHashGrid(2.0)

	id1 := uuid.New()
	aabb1 := geometry.NewAABB(mgl32.Vec3{0, 0, 0}, mgl32.Vec3{1, 1, 1})
	id2 := uuid.New()
	aabb2 := geometry.NewAABB(mgl32.Vec3{3, 3, 3}, mgl32.Vec3{4, 4, 4})

	grid.Insert(id1, aabb1)
	grid.Insert(id2, aabb2)

	res1 := grid.QueryAABB(aabb1)
	if len(res1) != 1 || res1[0] != id1 {
		t.Errorf("Expected id1, got %v", res1)
	}
	res2 := grid.QueryAABB(aabb2)
	if len(res2) != 1 || res2[0] != id2 {
		t.Errorf("Expected id2, got %v", res2)
	}

	// Cells 0 and 1 along every axis: aabb1 lives in cell 0, aabb2 starts in cell 1
	resMid := grid.QueryAABB(geometry.NewAABB(mgl32.Vec3{1, 1, 1}, mgl32.Vec3{3, 3, 3}))
	if len(resMid) != 2 {
		t.Errorf("Expected 2 objects, got %d: %v", len(resMid), resMid)
	}
}

func TestSpatialHashGrid_NegativeCoordinates(t *testing.T) {
	grid := NewSpatialHashGrid(2.0)
	id := uuid.New()
	grid.Insert(id, geometry.NewAABB(mgl32.Vec3{-3, -3, -3}, mgl32.Vec3{-2.5, -2.5, -2.5}))

	// -3 and -2.5 both floor into cell -2
	assert.Equal(t, []VoxelObjectID{id}, grid.QueryAABB(geometry.NewAABB(mgl32.Vec3{-4, -4, -4}, mgl32.Vec3{-3.9, -3.9, -3.9})))
	assert.Empty(t, grid.QueryAABB(geometry.NewAABB(mgl32.Vec3{0, 0, 0}, mgl32.Vec3{1, 1, 1})))
}

func TestSpatialHashGrid_QueryRadiusAndClear(t *testing.T) {
	grid := NewSpatialHashGrid(1.0)
	id := uuid.New()
	// Spans several cells; the id is reported once
	grid.Insert(id, geometry.NewAABB(mgl32.Vec3{0, 0, 0}, mgl32.Vec3{5, 5, 5}))

	assert.Equal(t, []VoxelObjectID{id}, grid.QueryRadius(mgl32.Vec3{2.5, 2.5, 2.5}, 3))
	assert.Equal(t, []VoxelObjectID{id}, grid.QueryRadius(mgl32.Vec3{7, 2, 2}, 2.5))

	grid.Clear()
	assert.Empty(t, grid.QueryRadius(mgl32.Vec3{2.5, 2.5, 2.5}, 3))
}

func TestSpatialHashGrid_RejectsBadCellSize(t *testing.T) {
	assert.Panics(t, func() { NewSpatialHashGrid(0) })
}
