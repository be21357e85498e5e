package chunks

func (o *ChunkedVoxelObject) updateOccupiedChunkRanges() {
	lo := o.chunkCounts
	hi := [3]int{-1, -1, -1}
	for idx := range o.chunks {
		if !o.chunks[idx].isNonEmpty() {
			continue
		}
		ci := o.chunkIdxFromLinear(idx)
		for dim := 0; dim < 3; dim++ {
			lo[dim] = min(lo[dim], ci[dim])
			hi[dim] = max(hi[dim], ci[dim])
		}
	}
	if hi[0] < 0 {
		o.occupiedChunkRanges = [3]IndexRange{}
		return
	}
	for dim := 0; dim < 3; dim++ {
		o.occupiedChunkRanges[dim] = IndexRange{Start: lo[dim], End: hi[dim] + 1}
	}
}

// UpdateOccupiedVoxelRanges recomputes the occupied chunk ranges and tightens
// the occupied voxel ranges to the non-empty voxels. Only the outermost
// layers of occupied chunks are scanned.
func (o *ChunkedVoxelObject) UpdateOccupiedVoxelRanges() {
	o.updateOccupiedChunkRanges()
	chunkRanges := o.occupiedChunkRanges
	for dim := 0; dim < 3; dim++ {
		r := chunkRanges[dim]
		if r.IsEmpty() {
			o.occupiedVoxelRanges = [3]IndexRange{}
			return
		}
		lowest, highest := ChunkSize, -1
		layer := chunkRanges
		layer[dim] = IndexRange{Start: r.Start, End: r.Start + 1}
		forEachChunkInRanges(layer, func(ci [3]int) {
			if lo, _, ok := o.chunkLocalExtent(o.chunkAt(ci), dim); ok {
				lowest = min(lowest, lo)
			}
		})
		layer[dim] = IndexRange{Start: r.End - 1, End: r.End}
		forEachChunkInRanges(layer, func(ci [3]int) {
			if _, hi, ok := o.chunkLocalExtent(o.chunkAt(ci), dim); ok {
				highest = max(highest, hi)
			}
		})
		o.occupiedVoxelRanges[dim] = IndexRange{
			Start: r.Start*ChunkSize + lowest,
			End:   (r.End-1)*ChunkSize + highest + 1,
		}
	}
}

// chunkLocalExtent returns the lowest and highest local coordinate along dim
// holding a non-empty voxel.
func (o *ChunkedVoxelObject) chunkLocalExtent(c *chunk, dim int) (int, int, bool) {
	switch c.kind {
	case ChunkEmpty:
		return 0, 0, false
	case ChunkUniform:
		return 0, ChunkSize - 1, true
	}
	if c.nonEmptyCount == 0 {
		return 0, 0, false
	}
	voxels := o.arena.slot(c.dataOffset)
	lo, hi := -1, -1
	for layer := 0; layer < ChunkSize; layer++ {
		if layerHasNonEmpty(voxels, dim, layer) {
			lo = layer
			break
		}
	}
	for layer := ChunkSize - 1; layer >= 0; layer-- {
		if layerHasNonEmpty(voxels, dim, layer) {
			hi = layer
			break
		}
	}
	return lo, hi, lo >= 0
}

func layerHasNonEmpty(voxels []Voxel, dim, layer int) bool {
	var local [3]int
	local[dim] = layer
	axisA, axisB := faceAxes(dim)
	for a := 0; a < ChunkSize; a++ {
		local[axisA] = a
		for b := 0; b < ChunkSize; b++ {
			local[axisB] = b
			if !voxels[linearVoxelIdx(local[0], local[1], local[2])].IsEmpty() {
				return true
			}
		}
	}
	return false
}

func (o *ChunkedVoxelObject) voxelRangesToChunkRanges(voxelRanges [3]IndexRange) [3]IndexRange {
	var chunkRanges [3]IndexRange
	for dim := 0; dim < 3; dim++ {
		r := voxelRanges[dim]
		if r.IsEmpty() {
			return [3]IndexRange{}
		}
		chunkRanges[dim] = IndexRange{Start: r.Start / ChunkSize, End: (r.End-1)/ChunkSize + 1}
	}
	return chunkRanges
}
