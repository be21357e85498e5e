package generation

import (
	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"
	"github.com/gekko3d/chunkvox/voxelcore/geometry"
	"github.com/go-gl/mathgl/mgl32"
)

// SDFXNode adapts an sdfx solid. VoxelsPerUnit converts sdfx model units to
// voxels; zero means one voxel per unit.
type SDFXNode struct {
	Solid         sdf.SDF3
	VoxelsPerUnit float32
}

func NewSDFXNode(solid sdf.SDF3, voxelsPerUnit float32) SDFXNode {
	return SDFXNode{Solid: solid, VoxelsPerUnit: voxelsPerUnit}
}

func (n SDFXNode) scale() float64 {
	if n.VoxelsPerUnit <= 0 {
		return 1
	}
	return float64(n.VoxelsPerUnit)
}

func (n SDFXNode) Distance(p mgl32.Vec3) float32 {
	s := n.scale()
	d := n.Solid.Evaluate(v3.Vec{X: float64(p[0]) / s, Y: float64(p[1]) / s, Z: float64(p[2]) / s})
	return float32(d * s)
}

func (n SDFXNode) Bounds() geometry.AABB {
	bb := n.Solid.BoundingBox()
	s := n.scale()
	return geometry.NewAABB(
		mgl32.Vec3{float32(bb.Min.X * s), float32(bb.Min.Y * s), float32(bb.Min.Z * s)},
		mgl32.Vec3{float32(bb.Max.X * s), float32(bb.Max.Y * s), float32(bb.Max.Z * s)},
	)
}
