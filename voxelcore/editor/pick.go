package editor

import (
	"github.com/chewxy/math32"
	"github.com/gekko3d/chunkvox/voxelcore/chunks"
	"github.com/gekko3d/chunkvox/voxelcore/geometry"
	"github.com/go-gl/mathgl/mgl32"
)

// Ray in object space.
type Ray struct {
	Origin    mgl32.Vec3
	Direction mgl32.Vec3
}

type HitResult struct {
	Voxel  [3]int
	T      float32
	Normal mgl32.Vec3
}

// Pick returns the first non-empty voxel along the ray within maxT.
func Pick(obj *chunks.ChunkedVoxelObject, ray Ray, maxT float32) (HitResult, bool) {
	dir := ray.Direction
	if dir.Len() == 0 {
		return HitResult{}, false
	}
	dir = dir.Normalize()
	minB, maxB := obj.ComputeAABB()
	tMin, tMax := intersectAABB(ray.Origin, dir, minB, maxB)
	if tMin > tMax || tMax < 0 || tMin > maxT {
		return HitResult{}, false
	}
	tMax = math32.Min(tMax, maxT)

	// March in voxel units from the entry point.
	extent := float32(obj.VoxelExtent())
	start := ray.Origin.Add(dir.Mul(tMin)).Mul(1 / extent)
	var cell [3]int
	var step [3]int
	var tNext, tDelta [3]float32
	for d := 0; d < 3; d++ {
		cell[d] = int(math32.Floor(start[d]))
		switch {
		case dir[d] > 0:
			step[d] = 1
			tDelta[d] = 1 / dir[d]
			tNext[d] = (float32(cell[d]+1) - start[d]) / dir[d]
		case dir[d] < 0:
			step[d] = -1
			tDelta[d] = -1 / dir[d]
			tNext[d] = (float32(cell[d]) - start[d]) / dir[d]
		default:
			tDelta[d] = math32.Inf(1)
			tNext[d] = math32.Inf(1)
		}
	}
	// The entry cell can lie just outside the box on its upper faces.
	ranges := obj.OccupiedVoxelRanges()
	for d := 0; d < 3; d++ {
		if cell[d] == ranges[d].End && step[d] < 0 {
			cell[d]--
		}
	}

	limit := (tMax - tMin) / extent
	t := float32(0)
	normal := entryNormal(start, minB.Mul(1/extent), maxB.Mul(1/extent))
	for t <= limit {
		if !obj.GetVoxel(cell[0], cell[1], cell[2]).IsEmpty() {
			return HitResult{Voxel: cell, T: tMin + t*extent, Normal: normal}, true
		}
		d := 0
		if tNext[1] < tNext[d] {
			d = 1
		}
		if tNext[2] < tNext[d] {
			d = 2
		}
		t = tNext[d]
		tNext[d] += tDelta[d]
		cell[d] += step[d]
		normal = mgl32.Vec3{}
		normal[d] = float32(-step[d])
	}
	return HitResult{}, false
}

// entryNormal is the face of the box the ray entered through, or zero when
// it starts inside.
func entryNormal(p, minB, maxB mgl32.Vec3) mgl32.Vec3 {
	const eps = 1e-4
	var n mgl32.Vec3
	for d := 0; d < 3; d++ {
		if math32.Abs(p[d]-minB[d]) < eps {
			n[d] = -1
			return n
		}
		if math32.Abs(p[d]-maxB[d]) < eps {
			n[d] = 1
			return n
		}
	}
	return n
}

func intersectAABB(origin, dir, minB, maxB mgl32.Vec3) (float32, float32) {
	tMin := float32(0)
	tMax := float32(math32.MaxFloat32)
	for d := 0; d < 3; d++ {
		if dir[d] == 0 {
			if origin[d] < minB[d] || origin[d] > maxB[d] {
				return 1, 0
			}
			continue
		}
		inv := 1 / dir[d]
		t1 := (minB[d] - origin[d]) * inv
		t2 := (maxB[d] - origin[d]) * inv
		tMin = math32.Max(tMin, math32.Min(t1, t2))
		tMax = math32.Min(tMax, math32.Max(t1, t2))
	}
	return tMin, tMax
}

// Editor carves the voxel under a picked point with an absorbing sphere.
type Editor struct {
	BrushRadius float32
	BrushRate   float32
	Tracker     AbsorptionTracker
}

func NewEditor() *Editor {
	return &Editor{BrushRadius: 2, BrushRate: 4}
}

// ApplyBrush absorbs around the center of the hit voxel for dt seconds.
func (e *Editor) ApplyBrush(obj *chunks.ChunkedVoxelObject, hit HitResult, dt float32, onEmpty EmptiedFunc) {
	extent := float32(obj.VoxelExtent())
	center := mgl32.Vec3{float32(hit.Voxel[0]) + 0.5, float32(hit.Voxel[1]) + 0.5, float32(hit.Voxel[2]) + 0.5}.Mul(extent)
	brush := AbsorbingSphere{Sphere: geometry.NewSphere(center, e.BrushRadius*extent), Rate: e.BrushRate}
	brush.Apply(obj, dt, e.Tracker.Recorder(obj.VoxelExtent(), onEmpty))
}
