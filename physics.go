package chunkvox

import (
	"math"

	"github.com/gekko3d/chunkvox/voxelcore/chunks"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/go-gl/mathgl/mgl64"
)

// RigidBody is a rigid voxel object. Position and Orientation place the
// center of mass in the world; LocalCenterOfMass is the center of mass in
// the object's own space, whose origin is the lower corner of its voxel grid.
type RigidBody struct {
	Mass              float64
	InertiaTensor     mgl64.Mat3 // body frame, about the center of mass
	LocalCenterOfMass mgl64.Vec3
	Position          mgl64.Vec3
	Orientation       mgl64.Quat
	Velocity          mgl64.Vec3
	AngularVelocity   mgl64.Vec3
}

// NewRigidBody places a body with the given inertial properties so that the
// object's origin lands on origin with the given orientation.
func NewRigidBody(props chunks.InertialProperties, origin mgl64.Vec3, orientation mgl64.Quat) *RigidBody {
	rb := &RigidBody{
		Mass:              props.Mass,
		InertiaTensor:     props.InertiaTensor,
		LocalCenterOfMass: props.CenterOfMass,
		Orientation:       orientation.Normalize(),
	}
	rb.Position = origin.Add(rb.Orientation.Rotate(props.CenterOfMass))
	return rb
}

// ObjectToWorld maps the object's space to world space.
func (rb *RigidBody) ObjectToWorld() mgl64.Mat4 {
	c := rb.LocalCenterOfMass
	return mgl64.Translate3D(rb.Position.X(), rb.Position.Y(), rb.Position.Z()).
		Mul4(rb.Orientation.Mat4()).
		Mul4(mgl64.Translate3D(-c.X(), -c.Y(), -c.Z()))
}

func (rb *RigidBody) WorldToObject() mgl64.Mat4 {
	p := rb.Position
	c := rb.LocalCenterOfMass
	return mgl64.Translate3D(c.X(), c.Y(), c.Z()).
		Mul4(rb.Orientation.Conjugate().Mat4()).
		Mul4(mgl64.Translate3D(-p.X(), -p.Y(), -p.Z()))
}

// PointToWorld transforms a point in object space.
func (rb *RigidBody) PointToWorld(p mgl64.Vec3) mgl64.Vec3 {
	return rb.Position.Add(rb.Orientation.Rotate(p.Sub(rb.LocalCenterOfMass)))
}

// VelocityAt is the velocity of the body's material at a world point.
func (rb *RigidBody) VelocityAt(worldPoint mgl64.Vec3) mgl64.Vec3 {
	return rb.Velocity.Add(rb.AngularVelocity.Cross(worldPoint.Sub(rb.Position)))
}

// WorldInertiaTensor is R I Rᵀ.
func (rb *RigidBody) WorldInertiaTensor() mgl64.Mat3 {
	r := rb.Orientation.Mat4().Mat3()
	return r.Mul3(rb.InertiaTensor).Mul3(r.Transpose())
}

// ApplyImpulse applies an impulse through the center of mass.
func (rb *RigidBody) ApplyImpulse(impulse mgl64.Vec3) {
	if rb.Mass <= 0 {
		return
	}
	rb.Velocity = rb.Velocity.Add(impulse.Mul(1 / rb.Mass))
}

// ApplyImpulseAt applies an impulse at a world point.
func (rb *RigidBody) ApplyImpulseAt(impulse, worldPoint mgl64.Vec3) {
	if rb.Mass <= 0 {
		return
	}
	rb.ApplyImpulse(impulse)
	inertia := rb.WorldInertiaTensor()
	if math.Abs(inertia.Det()) < 1e-12 {
		return
	}
	torque := worldPoint.Sub(rb.Position).Cross(impulse)
	rb.AngularVelocity = rb.AngularVelocity.Add(inertia.Inv().Mul3x1(torque))
}

// Step advances the body by dt with semi-implicit Euler integration.
func (rb *RigidBody) Step(dt float64, gravity mgl64.Vec3) {
	if dt <= 0 {
		return
	}
	rb.Velocity = rb.Velocity.Add(gravity.Mul(dt))
	displacement := rb.Velocity.Mul(dt)
	if math.IsNaN(displacement.Len()) || math.IsInf(displacement.Len(), 0) {
		rb.Velocity = mgl64.Vec3{}
		return
	}
	rb.Position = rb.Position.Add(displacement)

	w := rb.AngularVelocity
	if w.Len() == 0 {
		return
	}
	spin := mgl64.Quat{W: 0, V: w}.Mul(rb.Orientation).Scale(0.5 * dt)
	rb.Orientation = rb.Orientation.Add(spin).Normalize()
}

// UpdateInertialProperties replaces the mass distribution while keeping the
// object's placement in the world fixed.
func (rb *RigidBody) UpdateInertialProperties(props chunks.InertialProperties) {
	rb.Position = rb.PointToWorld(props.CenterOfMass)
	rb.LocalCenterOfMass = props.CenterOfMass
	rb.Mass = props.Mass
	rb.InertiaTensor = props.InertiaTensor
}

// VoxelPhysicsContext is the physical state of a dynamic voxel object.
type VoxelPhysicsContext struct {
	Inertia *chunks.InertialPropertyManager
	Body    *RigidBody
}

func mat4To32(m mgl64.Mat4) mgl32.Mat4 {
	var out mgl32.Mat4
	for i, v := range m {
		out[i] = float32(v)
	}
	return out
}

func vec3To32(v mgl64.Vec3) mgl32.Vec3 {
	return mgl32.Vec3{float32(v[0]), float32(v[1]), float32(v[2])}
}

func vec3To64(v mgl32.Vec3) mgl64.Vec3 {
	return mgl64.Vec3{float64(v[0]), float64(v[1]), float64(v[2])}
}
