package chunks

// PropertyTransferrer is notified of every non-empty voxel moved out of an
// object by a split. Indices are voxel indices in the source object.
type PropertyTransferrer interface {
	TransferVoxel(indices [3]int, voxel Voxel)
	// TransferNonUniformChunk receives all voxels of the chunk, empty ones
	// included, indexed by LocalVoxelIdx.
	TransferNonUniformChunk(chunkIndices [3]int, voxels []Voxel)
	TransferUniformChunk(chunkIndices [3]int, voxel Voxel)
}

// DisconnectedVoxelObject is a region split off from a voxel object.
// OriginOffsetInParent is the voxel offset of the new object's grid within
// the grid of the object it was split from.
type DisconnectedVoxelObject struct {
	Object               *ChunkedVoxelObject
	OriginOffsetInParent [3]int
}

type nopTransferrer struct{}

func (nopTransferrer) TransferVoxel([3]int, Voxel)             {}
func (nopTransferrer) TransferNonUniformChunk([3]int, []Voxel) {}
func (nopTransferrer) TransferUniformChunk([3]int, Voxel)      {}

// SplitOffAnyDisconnectedRegion moves one disconnected region into a new
// object. It returns nil, leaving the object untouched, when the object has
// fewer than two regions.
func (o *ChunkedVoxelObject) SplitOffAnyDisconnectedRegion() *DisconnectedVoxelObject {
	return o.SplitOffAnyDisconnectedRegionWithPropertyTransferrer(nopTransferrer{})
}

// SplitOffAnyDisconnectedRegionWithPropertyTransferrer is
// SplitOffAnyDisconnectedRegion reporting every moved voxel to transferrer.
//
// The largest region (ties broken by the smaller region id) always stays.
// Of the others, the one with the smallest id is split off.
func (o *ChunkedVoxelObject) SplitOffAnyDisconnectedRegionWithPropertyTransferrer(transferrer PropertyTransferrer) *DisconnectedVoxelObject {
	o.ensureRegionsResolved()
	sd := &o.splitDetector
	if len(sd.rootVoxelCounts) < 2 {
		return nil
	}
	roots := o.sortedRegionRoots()
	largest := roots[0]
	for _, root := range roots[1:] {
		if sd.rootVoxelCounts[root] > sd.rootVoxelCounts[largest] {
			largest = root
		}
	}
	target := roots[0]
	if target == largest {
		target = roots[1]
	}

	// Which chunks hold the target region, and whether they hold only it.
	type regionChunk struct {
		idx  int
		pure bool
	}
	var regionChunks []regionChunk
	lo := o.chunkCounts
	hi := [3]int{-1, -1, -1}
	for idx := range o.chunks {
		c := &o.chunks[idx]
		holds, pure := false, true
		for label := 0; label < c.regionCount; label++ {
			if sd.regions.find(sd.regionBases[idx]+uint32(label)) == target {
				holds = true
			} else {
				pure = false
			}
		}
		if !holds {
			continue
		}
		regionChunks = append(regionChunks, regionChunk{idx: idx, pure: pure})
		ci := o.chunkIdxFromLinear(idx)
		for dim := 0; dim < 3; dim++ {
			lo[dim] = min(lo[dim], ci[dim])
			hi[dim] = max(hi[dim], ci[dim])
		}
	}

	dest := newChunkedVoxelObject(o.voxelExtent, [3]int{hi[0] - lo[0] + 1, hi[1] - lo[1] + 1, hi[2] - lo[2] + 1})
	originOffset := [3]int{lo[0] * ChunkSize, lo[1] * ChunkSize, lo[2] * ChunkSize}
	for dim := 0; dim < 3; dim++ {
		dest.originOffsetInRoot[dim] = o.originOffsetInRoot[dim] + originOffset[dim]
	}

	s := acquireScratch()
	defer s.release()

	for _, rc := range regionChunks {
		ci := o.chunkIdxFromLinear(rc.idx)
		destIdx := dest.chunkLinearIdx([3]int{ci[0] - lo[0], ci[1] - lo[1], ci[2] - lo[2]})
		src := &o.chunks[rc.idx]
		switch {
		case src.kind == ChunkUniform:
			transferrer.TransferUniformChunk(ci, src.uniform)
			dest.chunks[destIdx] = uniformChunk(src.uniform)
			*src = emptyChunk()
		case rc.pure:
			offset := dest.arena.allocateSlot()
			voxels := o.arena.slot(src.dataOffset)
			copy(dest.arena.slot(offset), voxels)
			transferrer.TransferNonUniformChunk(ci, voxels)
			dest.chunks[destIdx] = chunk{kind: ChunkNonUniform, dataOffset: offset, regionState: RegionStale}
			o.arena.freeSlot(src.dataOffset)
			*src = emptyChunk()
		default:
			o.moveRegionVoxels(rc.idx, ci, target, dest, destIdx, transferrer)
			o.updateDerivedStateOfModifiedChunk(rc.idx, s)
		}
		o.invalidateChunkMesh(rc.idx)
	}

	dest.ComputeAllDerivedState()
	dest.invalidateAllNonEmptyChunkMeshes()

	o.UpdateOccupiedVoxelRanges()
	o.updateChunkBoundaryAdjacencies([3]IndexRange{
		{Start: lo[0] - 1, End: hi[0] + 1},
		{Start: lo[1] - 1, End: hi[1] + 1},
		{Start: lo[2] - 1, End: hi[2] + 1},
	})
	o.ResolveConnectedRegionsBetweenAllChunks()

	return &DisconnectedVoxelObject{Object: dest, OriginOffsetInParent: originOffset}
}

// moveRegionVoxels moves the voxels of one region from a mixed chunk into a
// fresh slot of dest. Empty voxels are copied so distances survive; voxels of
// other regions are left behind.
func (o *ChunkedVoxelObject) moveRegionVoxels(srcIdx int, ci [3]int, target uint32, dest *ChunkedVoxelObject, destIdx int, transferrer PropertyTransferrer) {
	src := &o.chunks[srcIdx]
	sd := &o.splitDetector
	offset := dest.arena.allocateSlot()
	destVoxels := dest.arena.slot(offset)
	srcVoxels := o.arena.slot(src.dataOffset)
	labels := o.arena.labelSlot(src.dataOffset)
	base := sd.regionBases[srcIdx]
	outside := MaximallyOutside()
	for idx, v := range srcVoxels {
		if v.IsEmpty() {
			destVoxels[idx] = v
			continue
		}
		if sd.regions.find(base+uint32(labels[idx])) != target {
			destVoxels[idx] = outside
			continue
		}
		i, j, k := voxelIdxFromLinear(idx)
		transferrer.TransferVoxel([3]int{ci[0]*ChunkSize + i, ci[1]*ChunkSize + j, ci[2]*ChunkSize + k}, v)
		destVoxels[idx] = v
		srcVoxels[idx] = outside
	}
	dest.chunks[destIdx] = chunk{kind: ChunkNonUniform, dataOffset: offset, regionState: RegionStale}
}
