package chunkvox

import (
	"bytes"
	"slices"

	"github.com/gekko3d/chunkvox/voxelcore/chunks"
	"github.com/gekko3d/chunkvox/voxelcore/geometry"
	"github.com/gekko3d/chunkvox/voxelcore/mesh"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/google/uuid"
)

type VoxelObjectID = uuid.UUID

type voxelObjectEntry struct {
	meshed  *mesh.MeshedChunkedVoxelObject
	physics *VoxelPhysicsContext
	// origin places objects without a physics context.
	origin mgl64.Vec3
}

// VoxelObjectManager owns the voxel objects of a world. It is not safe for
// concurrent use.
type VoxelObjectManager struct {
	objects   map[VoxelObjectID]*voxelObjectEntry
	grid      *SpatialHashGrid
	gridStale bool
	logger    Logger
	newID     func() VoxelObjectID
}

func NewVoxelObjectManager(cellSize float32, logger Logger) *VoxelObjectManager {
	return &VoxelObjectManager{
		objects: make(map[VoxelObjectID]*voxelObjectEntry),
		grid:    NewSpatialHashGrid(cellSize),
		logger:  orNop(logger),
		newID:   uuid.New,
	}
}

// Add registers an object whose space coincides with world space.
func (m *VoxelObjectManager) Add(meshed *mesh.MeshedChunkedVoxelObject) VoxelObjectID {
	return m.AddAt(meshed, mgl64.Vec3{})
}

// AddAt registers an object whose origin is at the given world position.
func (m *VoxelObjectManager) AddAt(meshed *mesh.MeshedChunkedVoxelObject, origin mgl64.Vec3) VoxelObjectID {
	if meshed == nil || meshed.Object == nil {
		panic("chunkvox: adding a nil voxel object")
	}
	id := m.newID()
	m.objects[id] = &voxelObjectEntry{meshed: meshed, origin: origin}
	m.gridStale = true
	m.logger.Debugf("Added voxel object %s with %d chunks", id, chunkTotal(meshed.Object))
	return id
}

// AddPhysicsContext makes an object dynamic. It returns false for unknown ids.
func (m *VoxelObjectManager) AddPhysicsContext(id VoxelObjectID, ctx *VoxelPhysicsContext) bool {
	entry, ok := m.objects[id]
	if !ok {
		return false
	}
	entry.physics = ctx
	m.gridStale = true
	return true
}

func (m *VoxelObjectManager) Get(id VoxelObjectID) (*mesh.MeshedChunkedVoxelObject, bool) {
	entry, ok := m.objects[id]
	if !ok {
		return nil, false
	}
	return entry.meshed, true
}

// GetWithPhysicsContext returns a nil context for static objects.
func (m *VoxelObjectManager) GetWithPhysicsContext(id VoxelObjectID) (*mesh.MeshedChunkedVoxelObject, *VoxelPhysicsContext, bool) {
	entry, ok := m.objects[id]
	if !ok {
		return nil, nil, false
	}
	return entry.meshed, entry.physics, true
}

func (m *VoxelObjectManager) Remove(id VoxelObjectID) bool {
	if _, ok := m.objects[id]; !ok {
		return false
	}
	delete(m.objects, id)
	m.gridStale = true
	m.logger.Debugf("Removed voxel object %s", id)
	return true
}

func (m *VoxelObjectManager) Count() int { return len(m.objects) }

// IDs returns all object ids in a stable order.
func (m *VoxelObjectManager) IDs() []VoxelObjectID {
	ids := make([]VoxelObjectID, 0, len(m.objects))
	for id := range m.objects {
		ids = append(ids, id)
	}
	sortIDs(ids)
	return ids
}

// ObjectToWorld returns the transform from the object's space to the world.
func (m *VoxelObjectManager) ObjectToWorld(id VoxelObjectID) (mgl64.Mat4, bool) {
	entry, ok := m.objects[id]
	if !ok {
		return mgl64.Ident4(), false
	}
	return entry.objectToWorld(), true
}

func (e *voxelObjectEntry) objectToWorld() mgl64.Mat4 {
	if e.physics != nil && e.physics.Body != nil {
		return e.physics.Body.ObjectToWorld()
	}
	return mgl64.Translate3D(e.origin.X(), e.origin.Y(), e.origin.Z())
}

func (e *voxelObjectEntry) worldToObject() mgl64.Mat4 {
	if e.physics != nil && e.physics.Body != nil {
		return e.physics.Body.WorldToObject()
	}
	return mgl64.Translate3D(-e.origin.X(), -e.origin.Y(), -e.origin.Z())
}

// pointToWorld places a point given in the object's space.
func (e *voxelObjectEntry) pointToWorld(p mgl64.Vec3) mgl64.Vec3 {
	if e.physics != nil && e.physics.Body != nil {
		return e.physics.Body.PointToWorld(p)
	}
	return e.origin.Add(p)
}

func (e *voxelObjectEntry) worldAABB() geometry.AABB {
	minB, maxB := e.meshed.Object.ComputeAABB()
	return geometry.NewAABB(minB, maxB).Transformed(mat4To32(e.objectToWorld()))
}

// WorldAABB is the world space box around the object's occupied voxels.
func (m *VoxelObjectManager) WorldAABB(id VoxelObjectID) (geometry.AABB, bool) {
	entry, ok := m.objects[id]
	if !ok {
		return geometry.AABB{}, false
	}
	return entry.worldAABB(), true
}

// MarkMoved must be called after bodies move so the broadphase is rebuilt.
func (m *VoxelObjectManager) MarkMoved() { m.gridStale = true }

func (m *VoxelObjectManager) rebuildBroadphase() {
	if !m.gridStale {
		return
	}
	m.grid.Clear()
	for id, entry := range m.objects {
		if entry.meshed.Object.ContainsOnlyEmptyVoxels() {
			continue
		}
		m.grid.Insert(id, entry.worldAABB())
	}
	m.gridStale = false
}

// ObjectsOverlapping returns the ids of objects whose world AABB intersects
// the box, sorted.
func (m *VoxelObjectManager) ObjectsOverlapping(aabb geometry.AABB) []VoxelObjectID {
	m.rebuildBroadphase()
	var hits []VoxelObjectID
	for _, id := range m.grid.QueryAABB(aabb) {
		if m.objects[id].worldAABB().Intersects(aabb) {
			hits = append(hits, id)
		}
	}
	sortIDs(hits)
	return hits
}

// SyncMeshes brings every mesh up to date and returns the non-empty diffs.
func (m *VoxelObjectManager) SyncMeshes() map[VoxelObjectID]mesh.MeshDiff {
	diffs := make(map[VoxelObjectID]mesh.MeshDiff)
	for id, entry := range m.objects {
		if diff := entry.meshed.SyncMeshWithObject(); !diff.IsEmpty() {
			diffs[id] = diff
		}
	}
	return diffs
}

// StepBodies advances every dynamic object.
func (m *VoxelObjectManager) StepBodies(dt float64, gravity mgl64.Vec3) {
	for _, entry := range m.objects {
		if entry.physics != nil && entry.physics.Body != nil {
			entry.physics.Body.Step(dt, gravity)
		}
	}
	m.gridStale = true
}

// NewDynamicVoxelObject meshes the object, derives its inertial properties
// from the densities and registers it with a rigid body whose object origin
// is at origin.
func NewDynamicVoxelObject(m *VoxelObjectManager, obj *chunks.ChunkedVoxelObject, densities []float64, origin mgl64.Vec3) VoxelObjectID {
	meshed := mesh.NewMeshedChunkedVoxelObject(obj)
	inertia := chunks.InitializedFrom(obj, densities)
	body := NewRigidBody(inertia.DeriveInertialProperties(), origin, mgl64.QuatIdent())
	id := m.Add(meshed)
	m.AddPhysicsContext(id, &VoxelPhysicsContext{Inertia: inertia, Body: body})
	m.logger.Debugf("Voxel object %s has mass %.3f", id, body.Mass)
	return id
}

func sortIDs(ids []VoxelObjectID) {
	slices.SortFunc(ids, func(a, b VoxelObjectID) int { return bytes.Compare(a[:], b[:]) })
}

func chunkTotal(obj *chunks.ChunkedVoxelObject) int {
	c := obj.ChunkCounts()
	return c[0] * c[1] * c[2]
}
