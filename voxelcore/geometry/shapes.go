package geometry

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

type AABB struct {
	Min mgl32.Vec3
	Max mgl32.Vec3
}

func NewAABB(minB, maxB mgl32.Vec3) AABB {
	return AABB{Min: minB, Max: maxB}
}

func (b AABB) Center() mgl32.Vec3 {
	return b.Min.Add(b.Max).Mul(0.5)
}

func (b AABB) Extents() mgl32.Vec3 {
	return b.Max.Sub(b.Min)
}

func (b AABB) Contains(p mgl32.Vec3) bool {
	return p.X() >= b.Min.X() && p.X() <= b.Max.X() &&
		p.Y() >= b.Min.Y() && p.Y() <= b.Max.Y() &&
		p.Z() >= b.Min.Z() && p.Z() <= b.Max.Z()
}

func (b AABB) Intersects(o AABB) bool {
	return b.Min.X() <= o.Max.X() && b.Max.X() >= o.Min.X() &&
		b.Min.Y() <= o.Max.Y() && b.Max.Y() >= o.Min.Y() &&
		b.Min.Z() <= o.Max.Z() && b.Max.Z() >= o.Min.Z()
}

func (b AABB) Union(o AABB) AABB {
	return AABB{
		Min: mgl32.Vec3{math32.Min(b.Min.X(), o.Min.X()), math32.Min(b.Min.Y(), o.Min.Y()), math32.Min(b.Min.Z(), o.Min.Z())},
		Max: mgl32.Vec3{math32.Max(b.Max.X(), o.Max.X()), math32.Max(b.Max.Y(), o.Max.Y()), math32.Max(b.Max.Z(), o.Max.Z())},
	}
}

func (b AABB) Expanded(margin float32) AABB {
	m := mgl32.Vec3{margin, margin, margin}
	return AABB{Min: b.Min.Sub(m), Max: b.Max.Add(m)}
}

// Transformed returns the box enclosing the eight transformed corners.
func (b AABB) Transformed(m mgl32.Mat4) AABB {
	inf := math32.Inf(1)
	out := AABB{Min: mgl32.Vec3{inf, inf, inf}, Max: mgl32.Vec3{-inf, -inf, -inf}}
	for c := 0; c < 8; c++ {
		corner := b.Min
		if c&1 != 0 {
			corner[0] = b.Max[0]
		}
		if c&2 != 0 {
			corner[1] = b.Max[1]
		}
		if c&4 != 0 {
			corner[2] = b.Max[2]
		}
		p := mgl32.TransformCoordinate(corner, m)
		out = out.Union(AABB{Min: p, Max: p})
	}
	return out
}

type Sphere struct {
	Center mgl32.Vec3
	Radius float32
}

func NewSphere(center mgl32.Vec3, radius float32) Sphere {
	return Sphere{Center: center, Radius: radius}
}

func (s Sphere) Scaled(factor float32) Sphere {
	return Sphere{Center: s.Center.Mul(factor), Radius: s.Radius * factor}
}

func (s Sphere) Translated(offset mgl32.Vec3) Sphere {
	return Sphere{Center: s.Center.Add(offset), Radius: s.Radius}
}

// Transformed applies a rigid transform to the sphere.
func (s Sphere) Transformed(m mgl32.Mat4) Sphere {
	return Sphere{Center: mgl32.TransformCoordinate(s.Center, m), Radius: s.Radius}
}

func (s Sphere) AABB() AABB {
	r := mgl32.Vec3{s.Radius, s.Radius, s.Radius}
	return AABB{Min: s.Center.Sub(r), Max: s.Center.Add(r)}
}

func (s Sphere) SquaredDistanceToCenter(p mgl32.Vec3) float32 {
	d := p.Sub(s.Center)
	return d.Dot(d)
}

func (s Sphere) Contains(p mgl32.Vec3) bool {
	return s.SquaredDistanceToCenter(p) < s.Radius*s.Radius
}

// Capsule is the set of points within Radius of the segment.
type Capsule struct {
	SegmentStart mgl32.Vec3
	SegmentEnd   mgl32.Vec3
	Radius       float32
}

func NewCapsule(start, end mgl32.Vec3, radius float32) Capsule {
	return Capsule{SegmentStart: start, SegmentEnd: end, Radius: radius}
}

func (c Capsule) Scaled(factor float32) Capsule {
	return Capsule{SegmentStart: c.SegmentStart.Mul(factor), SegmentEnd: c.SegmentEnd.Mul(factor), Radius: c.Radius * factor}
}

func (c Capsule) Translated(offset mgl32.Vec3) Capsule {
	return Capsule{SegmentStart: c.SegmentStart.Add(offset), SegmentEnd: c.SegmentEnd.Add(offset), Radius: c.Radius}
}

func (c Capsule) Transformed(m mgl32.Mat4) Capsule {
	return Capsule{
		SegmentStart: mgl32.TransformCoordinate(c.SegmentStart, m),
		SegmentEnd:   mgl32.TransformCoordinate(c.SegmentEnd, m),
		Radius:       c.Radius,
	}
}

func (c Capsule) AABB() AABB {
	r := mgl32.Vec3{c.Radius, c.Radius, c.Radius}
	a := AABB{Min: c.SegmentStart.Sub(r), Max: c.SegmentStart.Add(r)}
	return a.Union(AABB{Min: c.SegmentEnd.Sub(r), Max: c.SegmentEnd.Add(r)})
}

// SquaredDistanceToSegment returns the squared distance from p to the
// closest point on the capsule axis.
func (c Capsule) SquaredDistanceToSegment(p mgl32.Vec3) float32 {
	seg := c.SegmentEnd.Sub(c.SegmentStart)
	rel := p.Sub(c.SegmentStart)
	lenSq := seg.Dot(seg)
	t := float32(0)
	if lenSq > 0 {
		t = math32.Max(0, math32.Min(1, rel.Dot(seg)/lenSq))
	}
	d := rel.Sub(seg.Mul(t))
	return d.Dot(d)
}

func (c Capsule) Contains(p mgl32.Vec3) bool {
	return c.SquaredDistanceToSegment(p) < c.Radius*c.Radius
}

// Plane holds the points p with Normal.Dot(p) == Displacement. Normal is unit
// length; the negative halfspace is Normal.Dot(p) - Displacement <= 0.
type Plane struct {
	Normal       mgl32.Vec3
	Displacement float32
}

func NewPlane(normal mgl32.Vec3, displacement float32) Plane {
	return Plane{Normal: normal.Normalize(), Displacement: displacement}
}

func NewPlaneFromPointAndNormal(point, normal mgl32.Vec3) Plane {
	n := normal.Normalize()
	return Plane{Normal: n, Displacement: n.Dot(point)}
}

func (p Plane) SignedDistance(point mgl32.Vec3) float32 {
	return p.Normal.Dot(point) - p.Displacement
}

func (p Plane) Scaled(factor float32) Plane {
	return Plane{Normal: p.Normal, Displacement: p.Displacement * factor}
}

func (p Plane) Transformed(m mgl32.Mat4) Plane {
	n := m.Mat3().Mul3x1(p.Normal).Normalize()
	point := mgl32.TransformCoordinate(p.Normal.Mul(p.Displacement), m)
	return Plane{Normal: n, Displacement: n.Dot(point)}
}

// MinSignedDistanceOverBox returns the smallest signed distance of any point
// in the box.
func (p Plane) MinSignedDistanceOverBox(b AABB) float32 {
	var closest mgl32.Vec3
	for dim := 0; dim < 3; dim++ {
		if p.Normal[dim] >= 0 {
			closest[dim] = b.Min[dim]
		} else {
			closest[dim] = b.Max[dim]
		}
	}
	return p.SignedDistance(closest)
}
