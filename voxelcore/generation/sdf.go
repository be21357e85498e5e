// Package generation provides signed distance fields and voxel type sources
// for building voxel objects.
package generation

import (
	"github.com/chewxy/math32"
	"github.com/gekko3d/chunkvox/voxelcore/geometry"
	"github.com/go-gl/mathgl/mgl32"
)

// SDFNode is a signed distance field in voxel units, negative inside.
type SDFNode interface {
	Distance(p mgl32.Vec3) float32
	// Bounds is a box outside of which the field is positive.
	Bounds() geometry.AABB
}

// SphereSDF is centered at the origin.
type SphereSDF struct {
	Radius float32
}

func (s SphereSDF) Distance(p mgl32.Vec3) float32 {
	return p.Len() - s.Radius
}

func (s SphereSDF) Bounds() geometry.AABB {
	r := mgl32.Vec3{s.Radius, s.Radius, s.Radius}
	return geometry.NewAABB(r.Mul(-1), r)
}

// BoxSDF is centered at the origin.
type BoxSDF struct {
	Extents mgl32.Vec3
}

func (b BoxSDF) Distance(p mgl32.Vec3) float32 {
	half := b.Extents.Mul(0.5)
	q := mgl32.Vec3{math32.Abs(p[0]) - half[0], math32.Abs(p[1]) - half[1], math32.Abs(p[2]) - half[2]}
	outside := mgl32.Vec3{math32.Max(q[0], 0), math32.Max(q[1], 0), math32.Max(q[2], 0)}.Len()
	return outside + math32.Min(math32.Max(q[0], math32.Max(q[1], q[2])), 0)
}

func (b BoxSDF) Bounds() geometry.AABB {
	half := b.Extents.Mul(0.5)
	return geometry.NewAABB(half.Mul(-1), half)
}

// CapsuleSDF has its segment along the y-axis, centered at the origin.
type CapsuleSDF struct {
	SegmentLength float32
	Radius        float32
}

func (c CapsuleSDF) Distance(p mgl32.Vec3) float32 {
	half := 0.5 * c.SegmentLength
	p[1] -= mgl32.Clamp(p[1], -half, half)
	return p.Len() - c.Radius
}

func (c CapsuleSDF) Bounds() geometry.AABB {
	half := mgl32.Vec3{c.Radius, c.Radius + 0.5*c.SegmentLength, c.Radius}
	return geometry.NewAABB(half.Mul(-1), half)
}

// Translated moves its child by Offset.
type Translated struct {
	Child  SDFNode
	Offset mgl32.Vec3
}

func (t Translated) Distance(p mgl32.Vec3) float32 {
	return t.Child.Distance(p.Sub(t.Offset))
}

func (t Translated) Bounds() geometry.AABB {
	b := t.Child.Bounds()
	return geometry.NewAABB(b.Min.Add(t.Offset), b.Max.Add(t.Offset))
}

// Union of two fields. A positive Smoothness blends them over roughly that
// many voxels.
type Union struct {
	A, B       SDFNode
	Smoothness float32
}

func (u Union) Distance(p mgl32.Vec3) float32 {
	return unionDistance(u.A.Distance(p), u.B.Distance(p), u.Smoothness)
}

func (u Union) Bounds() geometry.AABB {
	return u.A.Bounds().Union(u.B.Bounds()).Expanded(smoothingPadding(u.Smoothness))
}

// Subtraction removes B from A.
type Subtraction struct {
	A, B       SDFNode
	Smoothness float32
}

func (s Subtraction) Distance(p mgl32.Vec3) float32 {
	return -unionDistance(-s.A.Distance(p), s.B.Distance(p), s.Smoothness)
}

func (s Subtraction) Bounds() geometry.AABB {
	return s.A.Bounds().Expanded(smoothingPadding(s.Smoothness))
}

type Intersection struct {
	A, B       SDFNode
	Smoothness float32
}

func (i Intersection) Distance(p mgl32.Vec3) float32 {
	return -unionDistance(-i.A.Distance(p), -i.B.Distance(p), i.Smoothness)
}

func (i Intersection) Bounds() geometry.AABB {
	a, b := i.A.Bounds(), i.B.Bounds()
	var out geometry.AABB
	for d := 0; d < 3; d++ {
		out.Min[d] = math32.Max(a.Min[d], b.Min[d])
		out.Max[d] = math32.Max(out.Min[d], math32.Min(a.Max[d], b.Max[d]))
	}
	return out.Expanded(smoothingPadding(i.Smoothness))
}

func unionDistance(d1, d2, smoothness float32) float32 {
	if smoothness <= 0 {
		return math32.Min(d1, d2)
	}
	h := mgl32.Clamp(0.5+0.5*(d2-d1)/smoothness, 0, 1)
	return d2 + (d1-d2)*h - smoothness*h*(1-h)
}

// The smooth blend can move the surface outwards by at most a quarter of the
// smoothness.
func smoothingPadding(smoothness float32) float32 {
	return 0.25 * math32.Max(smoothness, 0)
}
