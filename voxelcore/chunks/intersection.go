package chunks

import (
	"github.com/chewxy/math32"
	"github.com/gekko3d/chunkvox/voxelcore/geometry"
	"github.com/go-gl/mathgl/mgl32"
)

// Half the diagonal of a unit voxel. Voxels whose center is within this
// distance of a shape may intersect it.
const halfVoxelDiagonal = 0.8660254

func voxelCenter(i, j, k int) mgl32.Vec3 {
	return mgl32.Vec3{float32(i) + 0.5, float32(j) + 0.5, float32(k) + 0.5}
}

// voxelRangesForBox returns the occupied voxels overlapping a voxel-space box.
func (o *ChunkedVoxelObject) voxelRangesForBox(box geometry.AABB) ([3]IndexRange, bool) {
	var ranges [3]IndexRange
	for dim := 0; dim < 3; dim++ {
		occupied := o.occupiedVoxelRanges[dim]
		if occupied.IsEmpty() {
			return ranges, false
		}
		lo := math32.Max(box.Min[dim], float32(occupied.Start-1))
		hi := math32.Min(box.Max[dim], float32(occupied.End+1))
		if !(lo <= hi) {
			return ranges, false
		}
		r := IndexRange{Start: int(math32.Floor(lo)), End: int(math32.Floor(hi)) + 1}
		r = r.intersect(occupied)
		if r.IsEmpty() {
			return ranges, false
		}
		ranges[dim] = r
	}
	return ranges, true
}

func (o *ChunkedVoxelObject) toVoxelSpace() float32 {
	return float32(1 / o.voxelExtent)
}

// ForEachSurfaceVoxelMaybeIntersectingSphere calls fn for every surface voxel
// that may intersect the sphere (object space), with the squared distance in
// voxel units from the voxel center to the sphere center.
func (o *ChunkedVoxelObject) ForEachSurfaceVoxelMaybeIntersectingSphere(sphere geometry.Sphere, fn func(indices [3]int, squaredDistance float32, voxel Voxel)) {
	s := sphere.Scaled(o.toVoxelSpace())
	reach := s.Radius + halfVoxelDiagonal
	ranges, ok := o.voxelRangesForBox(geometry.NewSphere(s.Center, reach).AABB())
	if !ok {
		return
	}
	reachSq := reach * reach
	o.forEachSurfaceVoxelInRanges(ranges, nil, func(indices [3]int, voxel Voxel) {
		d2 := s.SquaredDistanceToCenter(voxelCenter(indices[0], indices[1], indices[2]))
		if d2 < reachSq {
			fn(indices, d2, voxel)
		}
	})
}

// ForEachSurfaceVoxelMaybeIntersectingCapsule is the capsule counterpart of
// ForEachSurfaceVoxelMaybeIntersectingSphere; distances are to the capsule
// axis.
func (o *ChunkedVoxelObject) ForEachSurfaceVoxelMaybeIntersectingCapsule(capsule geometry.Capsule, fn func(indices [3]int, squaredDistance float32, voxel Voxel)) {
	c := capsule.Scaled(o.toVoxelSpace())
	reach := c.Radius + halfVoxelDiagonal
	ranges, ok := o.voxelRangesForBox(geometry.NewCapsule(c.SegmentStart, c.SegmentEnd, reach).AABB())
	if !ok {
		return
	}
	reachSq := reach * reach
	o.forEachSurfaceVoxelInRanges(ranges, nil, func(indices [3]int, voxel Voxel) {
		d2 := c.SquaredDistanceToSegment(voxelCenter(indices[0], indices[1], indices[2]))
		if d2 < reachSq {
			fn(indices, d2, voxel)
		}
	})
}

// ForEachSurfaceVoxelMaybeIntersectingNegativeHalfspace calls fn for every
// surface voxel that may lie in the negative halfspace of the plane, with
// the signed distance in voxel units from the voxel center to the plane.
func (o *ChunkedVoxelObject) ForEachSurfaceVoxelMaybeIntersectingNegativeHalfspace(plane geometry.Plane, fn func(indices [3]int, signedDistance float32, voxel Voxel)) {
	p := plane.Scaled(o.toVoxelSpace())
	skipChunk := func(ci [3]int) bool {
		minB := mgl32.Vec3{float32(ci[0] * ChunkSize), float32(ci[1] * ChunkSize), float32(ci[2] * ChunkSize)}
		box := geometry.NewAABB(minB, minB.Add(mgl32.Vec3{ChunkSize, ChunkSize, ChunkSize}))
		return p.MinSignedDistanceOverBox(box) >= halfVoxelDiagonal
	}
	o.forEachSurfaceVoxelInRanges(o.occupiedVoxelRanges, skipChunk, func(indices [3]int, voxel Voxel) {
		sd := p.SignedDistance(voxelCenter(indices[0], indices[1], indices[2]))
		if sd < halfVoxelDiagonal {
			fn(indices, sd, voxel)
		}
	})
}

// ForEachSurfaceVoxel calls fn for every non-empty voxel with at least one
// empty neighbor.
func (o *ChunkedVoxelObject) ForEachSurfaceVoxel(fn func(indices [3]int, voxel Voxel)) {
	o.forEachSurfaceVoxelInRanges(o.occupiedVoxelRanges, nil, fn)
}

// Uniform chunks are fully obscured and never hold surface voxels.
func (o *ChunkedVoxelObject) forEachSurfaceVoxelInRanges(ranges [3]IndexRange, skipChunk func(ci [3]int) bool, fn func(indices [3]int, voxel Voxel)) {
	chunkRanges := o.voxelRangesToChunkRanges(ranges)
	forEachChunkInRanges(chunkRanges, func(ci [3]int) {
		c := &o.chunks[o.chunkLinearIdx(ci)]
		if c.kind != ChunkNonUniform {
			return
		}
		if skipChunk != nil && skipChunk(ci) {
			return
		}
		voxels := o.arena.slot(c.dataOffset)
		overlap := chunkOverlap(ci, ranges)
		for i := overlap[0].Start; i < overlap[0].End; i++ {
			for j := overlap[1].Start; j < overlap[1].End; j++ {
				for k := overlap[2].Start; k < overlap[2].End; k++ {
					v := voxels[linearVoxelIdx(i%ChunkSize, j%ChunkSize, k%ChunkSize)]
					if v.IsSurface() {
						fn([3]int{i, j, k}, v)
					}
				}
			}
		}
	})
}

func chunkOverlap(ci [3]int, ranges [3]IndexRange) [3]IndexRange {
	var overlap [3]IndexRange
	for dim := 0; dim < 3; dim++ {
		overlap[dim] = ranges[dim].intersect(IndexRange{Start: ci[dim] * ChunkSize, End: (ci[dim] + 1) * ChunkSize})
	}
	return overlap
}

// ModifyVoxelsWithinSphere calls modify for every non-empty voxel whose center
// lies strictly inside the sphere (object space). The squared distance is in
// voxel units. Derived state of changed chunks is updated afterwards and
// their meshes invalidated.
func (o *ChunkedVoxelObject) ModifyVoxelsWithinSphere(sphere geometry.Sphere, modify func(indices [3]int, squaredDistance float32, voxel *Voxel)) {
	s := sphere.Scaled(o.toVoxelSpace())
	if !(s.Radius > 0) {
		return
	}
	ranges, ok := o.voxelRangesForBox(s.AABB())
	if !ok {
		return
	}
	radiusSq := s.Radius * s.Radius
	o.modifyVoxelsInRanges(ranges, func(center mgl32.Vec3) (float32, bool) {
		d2 := s.SquaredDistanceToCenter(center)
		return d2, d2 < radiusSq
	}, modify)
}

// ModifyVoxelsWithinCapsule is the capsule counterpart of
// ModifyVoxelsWithinSphere; distances are to the capsule axis.
func (o *ChunkedVoxelObject) ModifyVoxelsWithinCapsule(capsule geometry.Capsule, modify func(indices [3]int, squaredDistance float32, voxel *Voxel)) {
	c := capsule.Scaled(o.toVoxelSpace())
	if !(c.Radius > 0) {
		return
	}
	ranges, ok := o.voxelRangesForBox(c.AABB())
	if !ok {
		return
	}
	radiusSq := c.Radius * c.Radius
	o.modifyVoxelsInRanges(ranges, func(center mgl32.Vec3) (float32, bool) {
		d2 := c.SquaredDistanceToSegment(center)
		return d2, d2 < radiusSq
	}, modify)
}

func (o *ChunkedVoxelObject) modifyVoxelsInRanges(ranges [3]IndexRange, inside func(center mgl32.Vec3) (float32, bool), modify func(indices [3]int, squaredDistance float32, voxel *Voxel)) {
	s := acquireScratch()
	defer s.release()

	touchedLo := [3]int{o.chunkCounts[0], o.chunkCounts[1], o.chunkCounts[2]}
	touchedHi := [3]int{-1, -1, -1}
	chunksRemoved := false

	forEachChunkInRanges(o.voxelRangesToChunkRanges(ranges), func(ci [3]int) {
		idx := o.chunkLinearIdx(ci)
		c := &o.chunks[idx]
		if c.kind == ChunkEmpty {
			return
		}
		var voxels []Voxel
		if c.kind == ChunkNonUniform {
			voxels = o.arena.slot(c.dataOffset)
		}
		localLo := [3]int{ChunkSize, ChunkSize, ChunkSize}
		localHi := [3]int{-1, -1, -1}
		overlap := chunkOverlap(ci, ranges)
		for i := overlap[0].Start; i < overlap[0].End; i++ {
			for j := overlap[1].Start; j < overlap[1].End; j++ {
				for k := overlap[2].Start; k < overlap[2].End; k++ {
					d2, ok := inside(voxelCenter(i, j, k))
					if !ok {
						continue
					}
					local := [3]int{i % ChunkSize, j % ChunkSize, k % ChunkSize}
					li := linearVoxelIdx(local[0], local[1], local[2])
					if c.kind == ChunkUniform {
						v := c.uniform
						modify([3]int{i, j, k}, d2, &v)
						if v == c.uniform {
							continue
						}
						o.promoteUniformToNonUniform(idx)
						voxels = o.arena.slot(c.dataOffset)
						voxels[li] = v
					} else {
						vp := &voxels[li]
						if vp.IsEmpty() {
							continue
						}
						before := *vp
						modify([3]int{i, j, k}, d2, vp)
						if *vp == before {
							continue
						}
					}
					for dim := 0; dim < 3; dim++ {
						localLo[dim] = min(localLo[dim], local[dim])
						localHi[dim] = max(localHi[dim], local[dim])
					}
				}
			}
		}
		if localHi[0] < 0 {
			return
		}
		for dim := 0; dim < 3; dim++ {
			touchedLo[dim] = min(touchedLo[dim], ci[dim])
			touchedHi[dim] = max(touchedHi[dim], ci[dim])
		}
		if o.updateDerivedStateOfModifiedChunk(idx, s) {
			chunksRemoved = true
		}
		o.invalidateChunkAndHalo(ci, localLo, localHi)
	})

	if touchedHi[0] < 0 {
		return
	}
	if chunksRemoved || o.onOccupiedChunkBoundary(touchedLo, touchedHi) {
		o.UpdateOccupiedVoxelRanges()
	}
	var boundaryRanges [3]IndexRange
	for dim := 0; dim < 3; dim++ {
		boundaryRanges[dim] = IndexRange{Start: touchedLo[dim] - 1, End: touchedHi[dim] + 1}
	}
	o.updateChunkBoundaryAdjacencies(boundaryRanges)
	if !o.batchingModifications {
		o.ResolveConnectedRegionsBetweenAllChunks()
	}
}

// onOccupiedChunkBoundary reports whether the chunk box reaches an outer
// layer of the occupied chunks, where an edit can shrink the occupied voxel
// ranges.
func (o *ChunkedVoxelObject) onOccupiedChunkBoundary(lo, hi [3]int) bool {
	for dim := 0; dim < 3; dim++ {
		r := o.occupiedChunkRanges[dim]
		if lo[dim] <= r.Start || hi[dim] >= r.End-1 {
			return true
		}
	}
	return false
}

// BatchModifications runs edits, which may call the ModifyVoxelsWithin
// methods any number of times, and resolves the regions between chunks once
// at the end instead of after every call.
func (o *ChunkedVoxelObject) BatchModifications(edits func()) {
	if o.batchingModifications {
		edits()
		return
	}
	o.batchingModifications = true
	defer func() {
		o.batchingModifications = false
		o.ensureRegionsResolved()
	}()
	edits()
}

// updateDerivedStateOfModifiedChunk refreshes the chunk-local derived state
// and reports whether the chunk became empty.
func (o *ChunkedVoxelObject) updateDerivedStateOfModifiedChunk(idx int, s *scratch) bool {
	o.chunks[idx].regionState = RegionStale
	o.updateInternalAdjacenciesForChunk(idx)
	removed := false
	if o.chunks[idx].kind == ChunkNonUniform && o.demoteIfEmptyOrUniform(idx) {
		removed = o.chunks[idx].kind == ChunkEmpty
	}
	o.updateLocalConnectedRegionsForChunk(idx, s)
	return removed
}

// invalidateChunkAndHalo invalidates the chunk mesh and the meshes of
// neighbors whose shared face lies within two voxels of a modified voxel.
func (o *ChunkedVoxelObject) invalidateChunkAndHalo(ci [3]int, localLo, localHi [3]int) {
	o.invalidateChunkMesh(o.chunkLinearIdx(ci))
	for dim := 0; dim < 3; dim++ {
		if localLo[dim] < 2 && ci[dim] > 0 {
			n := ci
			n[dim]--
			o.invalidateChunkMesh(o.chunkLinearIdx(n))
		}
		if localHi[dim] >= ChunkSize-2 && ci[dim] < o.chunkCounts[dim]-1 {
			n := ci
			n[dim]++
			o.invalidateChunkMesh(o.chunkLinearIdx(n))
		}
	}
}
