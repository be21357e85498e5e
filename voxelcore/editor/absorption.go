// Package editor carves voxel objects with absorbing brushes and picks
// voxels along rays.
package editor

import (
	"github.com/chewxy/math32"
	"github.com/gekko3d/chunkvox/voxelcore/chunks"
	"github.com/gekko3d/chunkvox/voxelcore/geometry"
)

// EmptiedFunc receives the indices of a voxel that became empty and its
// state before the change.
type EmptiedFunc func(indices [3]int, pre chunks.Voxel)

// AbsorbingSphere raises signed distances inside the sphere by up to Rate
// voxels per second, falling off quadratically towards the surface.
// The sphere is in the object's space.
type AbsorbingSphere struct {
	Sphere geometry.Sphere
	Rate   float32
}

func (a AbsorbingSphere) Apply(obj *chunks.ChunkedVoxelObject, dt float32, onEmpty EmptiedFunc) {
	amount := a.Rate * dt
	if amount <= 0 || a.Sphere.Radius <= 0 {
		return
	}
	invR2 := invSquaredRadiusInVoxels(a.Sphere.Radius, obj.VoxelExtent())
	obj.ModifyVoxelsWithinSphere(a.Sphere, absorb(amount, invR2, onEmpty))
}

// AbsorbingCapsule is AbsorbingSphere swept along a segment; the falloff
// uses the distance to the segment.
type AbsorbingCapsule struct {
	Capsule geometry.Capsule
	Rate    float32
}

func (a AbsorbingCapsule) Apply(obj *chunks.ChunkedVoxelObject, dt float32, onEmpty EmptiedFunc) {
	amount := a.Rate * dt
	if amount <= 0 || a.Capsule.Radius <= 0 {
		return
	}
	invR2 := invSquaredRadiusInVoxels(a.Capsule.Radius, obj.VoxelExtent())
	obj.ModifyVoxelsWithinCapsule(a.Capsule, absorb(amount, invR2, onEmpty))
}

func invSquaredRadiusInVoxels(radius float32, voxelExtent float64) float32 {
	r := radius / float32(voxelExtent)
	return 1 / (r * r)
}

func absorb(amount, invR2 float32, onEmpty EmptiedFunc) func([3]int, float32, *chunks.Voxel) {
	return func(indices [3]int, squaredDistance float32, v *chunks.Voxel) {
		delta := amount * math32.Max(0, 1-squaredDistance*invR2)
		v.IncreaseSignedDistance(delta, func(pre chunks.Voxel) {
			if onEmpty != nil {
				onEmpty(indices, pre)
			}
		})
	}
}

// AbsorbedVoxels totals what a brush removed of one voxel type.
type AbsorbedVoxels struct {
	Count  int
	Volume float64
}

// AbsorptionTracker accumulates absorbed voxels per type.
type AbsorptionTracker struct {
	byType [chunks.MaxVoxelTypes]AbsorbedVoxels
}

func (t *AbsorptionTracker) Record(voxelType chunks.VoxelType, voxelExtent float64) {
	if int(voxelType) >= len(t.byType) {
		return
	}
	a := &t.byType[voxelType]
	a.Count++
	a.Volume += voxelExtent * voxelExtent * voxelExtent
}

// Recorder returns an EmptiedFunc that records each voxel and then calls
// next, if any.
func (t *AbsorptionTracker) Recorder(voxelExtent float64, next EmptiedFunc) EmptiedFunc {
	return func(indices [3]int, pre chunks.Voxel) {
		t.Record(pre.Type(), voxelExtent)
		if next != nil {
			next(indices, pre)
		}
	}
}

func (t *AbsorptionTracker) Absorbed(voxelType chunks.VoxelType) AbsorbedVoxels {
	if int(voxelType) >= len(t.byType) {
		return AbsorbedVoxels{}
	}
	return t.byType[voxelType]
}

func (t *AbsorptionTracker) Total() AbsorbedVoxels {
	var total AbsorbedVoxels
	for _, a := range t.byType {
		total.Count += a.Count
		total.Volume += a.Volume
	}
	return total
}

func (t *AbsorptionTracker) Reset() {
	t.byType = [chunks.MaxVoxelTypes]AbsorbedVoxels{}
}
