package geometry

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
)

func TestSphereScaledAndAABB(t *testing.T) {
	s := NewSphere(mgl32.Vec3{1, 2, 3}, 2).Scaled(2)
	assert.Equal(t, mgl32.Vec3{2, 4, 6}, s.Center)
	assert.Equal(t, float32(4), s.Radius)

	box := s.AABB()
	assert.Equal(t, mgl32.Vec3{-2, 0, 2}, box.Min)
	assert.Equal(t, mgl32.Vec3{6, 8, 10}, box.Max)
	assert.True(t, s.Contains(mgl32.Vec3{2, 4, 9.9}))
	assert.False(t, s.Contains(mgl32.Vec3{2, 4, 10}))
}

func TestCapsuleSquaredDistanceToSegment(t *testing.T) {
	c := NewCapsule(mgl32.Vec3{0, 0, 0}, mgl32.Vec3{10, 0, 0}, 1)

	// Beside the middle of the segment
	assert.InDelta(t, 4.0, c.SquaredDistanceToSegment(mgl32.Vec3{5, 2, 0}), 1e-6)
	// Beyond the end caps the distance is to the endpoints
	assert.InDelta(t, 9.0, c.SquaredDistanceToSegment(mgl32.Vec3{13, 0, 0}), 1e-6)
	assert.InDelta(t, 2.0, c.SquaredDistanceToSegment(mgl32.Vec3{-1, 1, 0}), 1e-6)

	// Degenerate capsule acts as a sphere
	d := NewCapsule(mgl32.Vec3{1, 1, 1}, mgl32.Vec3{1, 1, 1}, 1)
	assert.InDelta(t, 3.0, d.SquaredDistanceToSegment(mgl32.Vec3{2, 2, 2}), 1e-6)

	box := c.AABB()
	assert.Equal(t, mgl32.Vec3{-1, -1, -1}, box.Min)
	assert.Equal(t, mgl32.Vec3{11, 1, 1}, box.Max)
}

func TestPlaneSignedDistance(t *testing.T) {
	p := NewPlaneFromPointAndNormal(mgl32.Vec3{0, 5, 0}, mgl32.Vec3{0, 2, 0})
	assert.InDelta(t, 5.0, p.Displacement, 1e-6)
	assert.InDelta(t, -5.0, p.SignedDistance(mgl32.Vec3{3, 0, 3}), 1e-6)
	assert.InDelta(t, 1.0, p.SignedDistance(mgl32.Vec3{0, 6, 0}), 1e-6)

	box := AABB{Min: mgl32.Vec3{0, 6, 0}, Max: mgl32.Vec3{1, 8, 1}}
	assert.InDelta(t, 1.0, p.MinSignedDistanceOverBox(box), 1e-6)

	scaled := p.Scaled(0.5)
	assert.InDelta(t, 2.5, scaled.Displacement, 1e-6)
}

func TestShapesTransformedByRigidTransform(t *testing.T) {
	m := mgl32.Translate3D(10, 0, 0).Mul4(mgl32.HomogRotate3DZ(mgl32.DegToRad(90)))

	s := NewSphere(mgl32.Vec3{1, 0, 0}, 3).Transformed(m)
	assert.InDelta(t, 10.0, s.Center.X(), 1e-5)
	assert.InDelta(t, 1.0, s.Center.Y(), 1e-5)
	assert.Equal(t, float32(3), s.Radius)

	p := NewPlane(mgl32.Vec3{1, 0, 0}, 2).Transformed(m)
	// The plane x = 2 rotates to y = 2 and is unaffected by the x translation
	assert.InDelta(t, 1.0, p.Normal.Y(), 1e-5)
	assert.InDelta(t, 2.0, p.Displacement, 1e-5)
}

func TestAABBIntersectsAndTransformed(t *testing.T) {
	a := AABB{Min: mgl32.Vec3{0, 0, 0}, Max: mgl32.Vec3{1, 1, 1}}
	b := AABB{Min: mgl32.Vec3{1, 1, 1}, Max: mgl32.Vec3{2, 2, 2}}
	c := AABB{Min: mgl32.Vec3{1.5, 0, 0}, Max: mgl32.Vec3{2, 1, 1}}
	assert.True(t, a.Intersects(b))
	assert.False(t, a.Intersects(c))

	moved := a.Transformed(mgl32.Translate3D(5, 0, 0))
	assert.InDelta(t, 5.0, moved.Min.X(), 1e-6)
	assert.InDelta(t, 6.0, moved.Max.X(), 1e-6)
}
