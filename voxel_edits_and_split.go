package chunkvox

import (
	"github.com/gekko3d/chunkvox/voxelcore/chunks"
	"github.com/gekko3d/chunkvox/voxelcore/editor"
	"github.com/gekko3d/chunkvox/voxelcore/geometry"
	"github.com/gekko3d/chunkvox/voxelcore/mesh"
	"github.com/go-gl/mathgl/mgl64"
)

// AbsorptionOutcome lists the objects an Apply removed because they became
// empty and the fragments it split off and registered.
type AbsorptionOutcome struct {
	Emptied []VoxelObjectID
	Created []VoxelObjectID
}

// AbsorptionSystem applies world space absorbing brushes to the objects of a
// manager and splits off the regions they disconnect.
type AbsorptionSystem struct {
	// Densities are the mass densities by voxel type, used to keep the
	// inertial properties of dynamic objects current.
	Densities          []float64
	MaxSplitsPerObject int
	// Tracker, when set, records every voxel the brushes empty.
	Tracker *editor.AbsorptionTracker
	Logger  Logger
}

func NewAbsorptionSystem(densities []float64, cfg AbsorptionConfig, logger Logger) *AbsorptionSystem {
	return &AbsorptionSystem{
		Densities:          densities,
		MaxSplitsPerObject: cfg.MaxSplitsPerObject,
		Tracker:            &editor.AbsorptionTracker{},
		Logger:             logger,
	}
}

// Apply runs one step of dt seconds. Brush shapes are in world space.
func (s *AbsorptionSystem) Apply(m *VoxelObjectManager, spheres []editor.AbsorbingSphere, capsules []editor.AbsorbingCapsule, dt float32) AbsorptionOutcome {
	var outcome AbsorptionOutcome
	if dt <= 0 || len(spheres)+len(capsules) == 0 {
		return outcome
	}
	logger := orNop(s.Logger)

	touched := make(map[VoxelObjectID]bool)
	for _, sphere := range spheres {
		for _, id := range m.ObjectsOverlapping(sphere.Sphere.AABB()) {
			touched[id] = true
		}
	}
	for _, capsule := range capsules {
		for _, id := range m.ObjectsOverlapping(capsule.Capsule.AABB()) {
			touched[id] = true
		}
	}
	ids := make([]VoxelObjectID, 0, len(touched))
	for id := range touched {
		ids = append(ids, id)
	}
	sortIDs(ids)

	for _, id := range ids {
		entry := m.objects[id]
		obj := entry.meshed.Object
		toObject := mat4To32(entry.worldToObject())
		onEmpty := s.emptiedCallback(entry)
		obj.BatchModifications(func() {
			for _, sphere := range spheres {
				editor.AbsorbingSphere{Sphere: sphere.Sphere.Transformed(toObject), Rate: sphere.Rate}.Apply(obj, dt, onEmpty)
			}
			for _, capsule := range capsules {
				editor.AbsorbingCapsule{Capsule: capsule.Capsule.Transformed(toObject), Rate: capsule.Rate}.Apply(obj, dt, onEmpty)
			}
		})

		if obj.ContainsOnlyEmptyVoxels() {
			m.Remove(id)
			outcome.Emptied = append(outcome.Emptied, id)
			logger.Infof("Voxel object %s was fully absorbed", id)
			continue
		}
		outcome.Created = append(outcome.Created, s.splitDisconnected(m, id, entry)...)
		if entry.physics != nil {
			entry.physics.Body.UpdateInertialProperties(entry.physics.Inertia.DeriveInertialProperties())
		}
	}
	if len(ids) > 0 {
		m.MarkMoved()
	}
	return outcome
}

func (s *AbsorptionSystem) emptiedCallback(entry *voxelObjectEntry) editor.EmptiedFunc {
	extent := entry.meshed.Object.VoxelExtent()
	var onEmpty editor.EmptiedFunc
	if entry.physics != nil {
		onEmpty = entry.physics.Inertia.BeginUpdate(extent, s.Densities).RemoveVoxel
	}
	if s.Tracker != nil {
		onEmpty = s.Tracker.Recorder(extent, onEmpty)
	}
	return onEmpty
}

// splitDisconnected splits regions off the object until it is connected or
// the split limit is reached, registering each fragment.
func (s *AbsorptionSystem) splitDisconnected(m *VoxelObjectManager, parentID VoxelObjectID, parent *voxelObjectEntry) []VoxelObjectID {
	logger := orNop(s.Logger)
	obj := parent.meshed.Object
	extent := obj.VoxelExtent()

	var created []VoxelObjectID
	for s.MaxSplitsPerObject == 0 || len(created) < s.MaxSplitsPerObject {
		var childInertia *chunks.InertialPropertyManager
		var split *chunks.DisconnectedVoxelObject
		if parent.physics != nil {
			childInertia = chunks.NewInertialPropertyManager()
			split = obj.SplitOffAnyDisconnectedRegionWithPropertyTransferrer(
				parent.physics.Inertia.BeginTransferTo(childInertia, extent, s.Densities))
		} else {
			split = obj.SplitOffAnyDisconnectedRegion()
		}
		if split == nil {
			break
		}

		offset := mgl64.Vec3{
			float64(split.OriginOffsetInParent[0]) * extent,
			float64(split.OriginOffsetInParent[1]) * extent,
			float64(split.OriginOffsetInParent[2]) * extent,
		}
		meshed := mesh.NewMeshedChunkedVoxelObject(split.Object)

		var id VoxelObjectID
		if parent.physics == nil {
			id = m.AddAt(meshed, parent.pointToWorld(offset))
		} else {
			// The transferred moments are relative to the parent's origin.
			childInertia.OffsetReferencePointBy(offset)
			props := childInertia.DeriveInertialProperties()
			parentBody := parent.physics.Body
			body := NewRigidBody(props, parent.pointToWorld(offset), parentBody.Orientation)
			body.Velocity = parentBody.VelocityAt(body.Position)
			body.AngularVelocity = parentBody.AngularVelocity
			id = m.Add(meshed)
			m.AddPhysicsContext(id, &VoxelPhysicsContext{Inertia: childInertia, Body: body})
		}
		created = append(created, id)
		logger.Infof("Split voxel object %s off %s (%d voxels)", id, parentID, split.Object.NonEmptyVoxelCount())
	}
	return created
}

// AbsorbingSphereAt is a world space absorbing sphere.
func AbsorbingSphereAt(center mgl64.Vec3, radius, rate float32) editor.AbsorbingSphere {
	return editor.AbsorbingSphere{Sphere: geometry.NewSphere(vec3To32(center), radius), Rate: rate}
}

// AbsorbingCapsuleBetween is a world space absorbing capsule.
func AbsorbingCapsuleBetween(start, end mgl64.Vec3, radius, rate float32) editor.AbsorbingCapsule {
	return editor.AbsorbingCapsule{Capsule: geometry.NewCapsule(vec3To32(start), vec3To32(end), radius), Rate: rate}
}
