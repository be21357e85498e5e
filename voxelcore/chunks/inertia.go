package chunks

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl64"
	"gonum.org/v1/gonum/mat"
)

// InertialProperties are derived from an InertialPropertyManager. The
// inertia tensor is about the center of mass.
type InertialProperties struct {
	Mass          float64
	CenterOfMass  mgl64.Vec3
	InertiaTensor mgl64.Mat3
}

// InertialPropertyManager accumulates mass, first moments and the second
// moments of a set of voxels about a reference point (initially the object's
// voxel grid origin). Each voxel is a solid cube of its type's density.
type InertialPropertyManager struct {
	mass              float64
	firstMoments      mgl64.Vec3
	momentsOfInertia  mgl64.Vec3
	productsOfInertia mgl64.Vec3 // sum of m*x*y, m*y*z, m*z*x
}

func NewInertialPropertyManager() *InertialPropertyManager {
	return &InertialPropertyManager{}
}

// InitializedFrom integrates all non-empty voxels of the object.
// densities is indexed by voxel type; a type without a density panics.
func InitializedFrom(obj *ChunkedVoxelObject, densities []float64) *InertialPropertyManager {
	m := NewInertialPropertyManager()
	extent := obj.VoxelExtent()
	obj.ForEachNonEmptyVoxel(func(indices [3]int, voxel Voxel) {
		m.addVoxel(extent, densityFor(densities, voxel.Type()), indices, 1)
	})
	return m
}

func densityFor(densities []float64, voxelType VoxelType) float64 {
	if int(voxelType) >= len(densities) {
		panic(fmt.Sprintf("chunks: no mass density for voxel type %d (%d densities)", voxelType, len(densities)))
	}
	return densities[voxelType]
}

func (m *InertialPropertyManager) Mass() float64 { return m.mass }

func (m *InertialPropertyManager) FirstMoments() mgl64.Vec3 { return m.firstMoments }

func (m *InertialPropertyManager) MomentsOfInertia() mgl64.Vec3 { return m.momentsOfInertia }

func (m *InertialPropertyManager) ProductsOfInertia() mgl64.Vec3 { return m.productsOfInertia }

// addVoxel adds (sign 1) or removes (sign -1) one voxel.
func (m *InertialPropertyManager) addVoxel(extent, density float64, indices [3]int, sign float64) {
	mass := sign * density * extent * extent * extent
	x := (float64(indices[0]) + 0.5) * extent
	y := (float64(indices[1]) + 0.5) * extent
	z := (float64(indices[2]) + 0.5) * extent
	// Moment of a cube about its own center axes.
	cube := mass * extent * extent / 6

	m.mass += mass
	m.firstMoments = m.firstMoments.Add(mgl64.Vec3{mass * x, mass * y, mass * z})
	m.momentsOfInertia = m.momentsOfInertia.Add(mgl64.Vec3{
		mass*(y*y+z*z) + cube,
		mass*(z*z+x*x) + cube,
		mass*(x*x+y*y) + cube,
	})
	m.productsOfInertia = m.productsOfInertia.Add(mgl64.Vec3{mass * x * y, mass * y * z, mass * z * x})
}

// Add merges the properties of another manager with the same reference point.
func (m *InertialPropertyManager) Add(other *InertialPropertyManager) {
	m.mass += other.mass
	m.firstMoments = m.firstMoments.Add(other.firstMoments)
	m.momentsOfInertia = m.momentsOfInertia.Add(other.momentsOfInertia)
	m.productsOfInertia = m.productsOfInertia.Add(other.productsOfInertia)
}

// OffsetReferencePointBy moves the reference point by offset, expressing all
// moments relative to the new point.
func (m *InertialPropertyManager) OffsetReferencePointBy(offset mgl64.Vec3) {
	dx, dy, dz := offset.X(), offset.Y(), offset.Z()
	sx, sy, sz := m.firstMoments.X(), m.firstMoments.Y(), m.firstMoments.Z()
	mass := m.mass

	m.momentsOfInertia = m.momentsOfInertia.Add(mgl64.Vec3{
		-2*(dy*sy+dz*sz) + mass*(dy*dy+dz*dz),
		-2*(dz*sz+dx*sx) + mass*(dz*dz+dx*dx),
		-2*(dx*sx+dy*sy) + mass*(dx*dx+dy*dy),
	})
	m.productsOfInertia = m.productsOfInertia.Add(mgl64.Vec3{
		-dx*sy - dy*sx + mass*dx*dy,
		-dy*sz - dz*sy + mass*dy*dz,
		-dz*sx - dx*sz + mass*dz*dx,
	})
	m.firstMoments = m.firstMoments.Sub(offset.Mul(mass))
}

// DeriveCenterOfMass returns the center of mass relative to the reference
// point, or false when the mass is zero.
func (m *InertialPropertyManager) DeriveCenterOfMass() (mgl64.Vec3, bool) {
	if m.mass == 0 {
		return mgl64.Vec3{}, false
	}
	return m.firstMoments.Mul(1 / m.mass), true
}

func (m *InertialPropertyManager) DeriveInertialProperties() InertialProperties {
	props := InertialProperties{Mass: m.mass}
	com, ok := m.DeriveCenterOfMass()
	if !ok {
		return props
	}
	props.CenterOfMass = com

	ixx, iyy, izz := m.momentsOfInertia.X(), m.momentsOfInertia.Y(), m.momentsOfInertia.Z()
	pxy, pyz, pzx := m.productsOfInertia.X(), m.productsOfInertia.Y(), m.productsOfInertia.Z()
	cx, cy, cz := com.X(), com.Y(), com.Z()

	// Parallel axis theorem towards the center of mass.
	ixx -= m.mass * (cy*cy + cz*cz)
	iyy -= m.mass * (cz*cz + cx*cx)
	izz -= m.mass * (cx*cx + cy*cy)
	pxy -= m.mass * cx * cy
	pyz -= m.mass * cy * cz
	pzx -= m.mass * cz * cx

	props.InertiaTensor = mgl64.Mat3{
		ixx, -pxy, -pzx,
		-pxy, iyy, -pyz,
		-pzx, -pyz, izz,
	}
	return props
}

// PrincipalMoments returns the eigenvalues of the inertia tensor about the
// center of mass in ascending order.
func (p InertialProperties) PrincipalMoments() (mgl64.Vec3, bool) {
	t := p.InertiaTensor
	sym := mat.NewSymDense(3, []float64{
		t.At(0, 0), t.At(0, 1), t.At(0, 2),
		t.At(1, 0), t.At(1, 1), t.At(1, 2),
		t.At(2, 0), t.At(2, 1), t.At(2, 2),
	})
	var eig mat.EigenSym
	if !eig.Factorize(sym, false) {
		return mgl64.Vec3{}, false
	}
	values := eig.Values(nil)
	return mgl64.Vec3{values[0], values[1], values[2]}, true
}

// InertialPropertyUpdater removes voxels that become empty during an edit.
type InertialPropertyUpdater struct {
	manager   *InertialPropertyManager
	extent    float64
	densities []float64
}

func (m *InertialPropertyManager) BeginUpdate(voxelExtent float64, densities []float64) *InertialPropertyUpdater {
	return &InertialPropertyUpdater{manager: m, extent: voxelExtent, densities: densities}
}

// RemoveVoxel has the shape of a became-empty callback.
func (u *InertialPropertyUpdater) RemoveVoxel(indices [3]int, voxel Voxel) {
	u.manager.addVoxel(u.extent, densityFor(u.densities, voxel.Type()), indices, -1)
}

// InertialPropertyTransferrer moves the contribution of split-off voxels from
// one manager to another, keeping the source's reference point.
type InertialPropertyTransferrer struct {
	source    *InertialPropertyManager
	dest      *InertialPropertyManager
	extent    float64
	densities []float64
}

func (m *InertialPropertyManager) BeginTransferTo(dest *InertialPropertyManager, voxelExtent float64, densities []float64) *InertialPropertyTransferrer {
	return &InertialPropertyTransferrer{source: m, dest: dest, extent: voxelExtent, densities: densities}
}

func (t *InertialPropertyTransferrer) transfer(indices [3]int, voxel Voxel) {
	density := densityFor(t.densities, voxel.Type())
	t.source.addVoxel(t.extent, density, indices, -1)
	t.dest.addVoxel(t.extent, density, indices, 1)
}

func (t *InertialPropertyTransferrer) TransferVoxel(indices [3]int, voxel Voxel) {
	t.transfer(indices, voxel)
}

func (t *InertialPropertyTransferrer) TransferNonUniformChunk(chunkIndices [3]int, voxels []Voxel) {
	for idx, v := range voxels {
		if v.IsEmpty() {
			continue
		}
		i, j, k := voxelIdxFromLinear(idx)
		t.transfer([3]int{chunkIndices[0]*ChunkSize + i, chunkIndices[1]*ChunkSize + j, chunkIndices[2]*ChunkSize + k}, v)
	}
}

func (t *InertialPropertyTransferrer) TransferUniformChunk(chunkIndices [3]int, voxel Voxel) {
	for idx := 0; idx < ChunkVoxelCount; idx++ {
		i, j, k := voxelIdxFromLinear(idx)
		t.transfer([3]int{chunkIndices[0]*ChunkSize + i, chunkIndices[1]*ChunkSize + j, chunkIndices[2]*ChunkSize + k}, voxel)
	}
}
