package chunkvox

import (
	"math"

	"github.com/gekko3d/chunkvox/voxelcore/chunks"
	"github.com/gekko3d/chunkvox/voxelcore/geometry"
	"github.com/go-gl/mathgl/mgl64"
)

// VoxelContact is a contact between a surface voxel, treated as a sphere of
// half the voxel extent, and another shape. Everything is in world space.
// Normal points from the voxel towards the other shape and Position is the
// point of the voxel sphere deepest inside it.
type VoxelContact struct {
	Object           VoxelObjectID
	Voxel            [3]int
	Position         mgl64.Vec3
	Normal           mgl64.Vec3
	PenetrationDepth float64
}

// ForEachSphereContact calls fn for every surface voxel of every object that
// touches the world space sphere.
func (m *VoxelObjectManager) ForEachSphereContact(sphere geometry.Sphere, fn func(VoxelContact)) {
	center := vec3To64(sphere.Center)
	radius := float64(sphere.Radius)
	for _, id := range m.ObjectsOverlapping(sphere.AABB()) {
		entry := m.objects[id]
		obj := entry.meshed.Object
		extent := obj.VoxelExtent()
		voxelRadius := 0.5 * extent
		maxDistance := radius + voxelRadius

		local := sphere.Transformed(mat4To32(entry.worldToObject()))
		obj.ForEachSurfaceVoxelMaybeIntersectingSphere(local, func(indices [3]int, _ float32, _ chunks.Voxel) {
			voxelCenter := entry.pointToWorld(voxelCenterInObject(indices, extent))
			displacement := center.Sub(voxelCenter)
			distance := displacement.Len()
			if distance > maxDistance {
				return
			}
			normal := mgl64.Vec3{0, 0, 1}
			if distance > 1e-8 {
				normal = displacement.Mul(1 / distance)
			}
			fn(VoxelContact{
				Object:           id,
				Voxel:            indices,
				Position:         voxelCenter.Add(normal.Mul(voxelRadius)),
				Normal:           normal,
				PenetrationDepth: math.Max(0, maxDistance-distance),
			})
		})
	}
}

// ForEachPlaneContact calls fn for every corner voxel that reaches into the
// negative halfspace of the world space plane. Corner voxels are enough to
// support an object resting on the plane.
func (m *VoxelObjectManager) ForEachPlaneContact(plane geometry.Plane, fn func(VoxelContact)) {
	normal := vec3To64(plane.Normal)
	for _, id := range m.IDs() {
		entry := m.objects[id]
		obj := entry.meshed.Object
		if obj.ContainsOnlyEmptyVoxels() {
			continue
		}
		extent := obj.VoxelExtent()
		voxelRadius := 0.5 * extent
		if float64(plane.MinSignedDistanceOverBox(entry.worldAABB())) >= voxelRadius {
			continue
		}

		local := plane.Transformed(mat4To32(entry.worldToObject()))
		obj.ForEachSurfaceVoxelMaybeIntersectingNegativeHalfspace(local, func(indices [3]int, _ float32, voxel chunks.Voxel) {
			if voxel.Placement() != chunks.PlacementSurfaceCorner {
				return
			}
			voxelCenter := entry.pointToWorld(voxelCenterInObject(indices, extent))
			signedDistance := normal.Dot(voxelCenter) - float64(plane.Displacement)
			if signedDistance >= voxelRadius {
				return
			}
			fn(VoxelContact{
				Object:           id,
				Voxel:            indices,
				Position:         voxelCenter.Sub(normal.Mul(voxelRadius)),
				Normal:           normal.Mul(-1),
				PenetrationDepth: voxelRadius - signedDistance,
			})
		})
	}
}

func voxelCenterInObject(indices [3]int, extent float64) mgl64.Vec3 {
	return mgl64.Vec3{
		(float64(indices[0]) + 0.5) * extent,
		(float64(indices[1]) + 0.5) * extent,
		(float64(indices[2]) + 0.5) * extent,
	}
}
