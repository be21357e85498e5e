package chunks

var voxelStrides = [3]int{ChunkSizeSq, ChunkSize, 1}

// UpdateInternalAdjacenciesForAllChunks recomputes the in-chunk adjacency
// flags and face distributions of every non-uniform chunk.
func (o *ChunkedVoxelObject) UpdateInternalAdjacenciesForAllChunks() {
	for idx := range o.chunks {
		o.updateInternalAdjacenciesForChunk(idx)
	}
}

// updateInternalAdjacenciesForChunk sweeps a non-uniform chunk once. Flags
// pointing out of the chunk are left as they are; they belong to the
// boundary update.
func (o *ChunkedVoxelObject) updateInternalAdjacenciesForChunk(linearIdx int) {
	c := &o.chunks[linearIdx]
	if c.kind != ChunkNonUniform {
		return
	}
	voxels := o.arena.slot(c.dataOffset)
	nonEmpty := 0
	for idx := range voxels {
		v := &voxels[idx]
		if v.IsEmpty() {
			v.flags = IsEmpty
			continue
		}
		nonEmpty++
		local := [3]int{idx / ChunkSizeSq, (idx / ChunkSize) % ChunkSize, idx % ChunkSize}
		mask := v.AdjacencyMask()
		for dim := 0; dim < 3; dim++ {
			if local[dim] > 0 {
				if voxels[idx-voxelStrides[dim]].IsEmpty() {
					mask &^= AdjacencyFlag(dim, false)
				} else {
					mask |= AdjacencyFlag(dim, false)
				}
			}
			if local[dim] < ChunkSize-1 {
				if voxels[idx+voxelStrides[dim]].IsEmpty() {
					mask &^= AdjacencyFlag(dim, true)
				} else {
					mask |= AdjacencyFlag(dim, true)
				}
			}
		}
		v.setAdjacencyMask(mask)
	}
	c.nonEmptyCount = nonEmpty
	updateFaceDistributions(c, voxels)
}

func updateFaceDistributions(c *chunk, voxels []Voxel) {
	for dim := 0; dim < 3; dim++ {
		for side := 0; side < 2; side++ {
			total := 0
			for a := 0; a < ChunkSize; a++ {
				count := 0
				for b := 0; b < ChunkSize; b++ {
					if !voxels[faceVoxelIdx(dim, side, a, b)].IsEmpty() {
						count++
					}
				}
				c.faceRowCounts[dim][side][a] = uint8(count)
				total += count
			}
			switch total {
			case 0:
				c.faces[dim][side] = FaceEmpty
			case ChunkSizeSq:
				c.faces[dim][side] = FaceFull
			default:
				c.faces[dim][side] = FaceMixed
			}
		}
	}
}

// UpdateAllChunkBoundaryAdjacencies recomputes the adjacency flags of voxels on
// every chunk face, promoting uniform chunks that are not fully obscured.
func (o *ChunkedVoxelObject) UpdateAllChunkBoundaryAdjacencies() {
	o.updateChunkBoundaryAdjacencies([3]IndexRange{
		{0, o.chunkCounts[0]}, {0, o.chunkCounts[1]}, {0, o.chunkCounts[2]},
	})
}

// updateChunkBoundaryAdjacencies handles every chunk in the given ranges
// together with its upper neighbors. Callers wanting the lower faces of a
// range covered must extend its start by one.
func (o *ChunkedVoxelObject) updateChunkBoundaryAdjacencies(chunkRanges [3]IndexRange) {
	var pairRanges, promotionRanges [3]IndexRange
	for dim := 0; dim < 3; dim++ {
		pairRanges[dim] = chunkRanges[dim].intersect(IndexRange{0, o.chunkCounts[dim]})
		promotionRanges[dim] = IndexRange{pairRanges[dim].Start, min(pairRanges[dim].End+1, o.chunkCounts[dim])}
		if pairRanges[dim].IsEmpty() {
			return
		}
	}

	var promoted []int
	forEachChunkInRanges(promotionRanges, func(ci [3]int) {
		idx := o.chunkLinearIdx(ci)
		if o.chunks[idx].kind == ChunkUniform && !o.isFullyObscuredByNeighbors(ci) {
			o.promoteUniformToNonUniform(idx)
			promoted = append(promoted, idx)
		}
	})

	forEachChunkInRanges(pairRanges, func(ci [3]int) {
		o.updateUpperAndOuterFaces(ci)
	})

	for _, idx := range promoted {
		ci := o.chunkIdxFromLinear(idx)
		for dim := 0; dim < 3; dim++ {
			o.updateLowerFace(ci, dim)
		}
		if !inRanges(pairRanges, ci) {
			o.updateUpperAndOuterFaces(ci)
		}
	}
}

func forEachChunkInRanges(ranges [3]IndexRange, fn func(ci [3]int)) {
	for i := ranges[0].Start; i < ranges[0].End; i++ {
		for j := ranges[1].Start; j < ranges[1].End; j++ {
			for k := ranges[2].Start; k < ranges[2].End; k++ {
				fn([3]int{i, j, k})
			}
		}
	}
}

func inRanges(ranges [3]IndexRange, ci [3]int) bool {
	return ranges[0].Contains(ci[0]) && ranges[1].Contains(ci[1]) && ranges[2].Contains(ci[2])
}

// neighborFace returns the distribution of the neighbor's face that touches
// the given face of the chunk. Chunks outside the grid count as empty.
func (o *ChunkedVoxelObject) neighborFace(ci [3]int, dim int, up bool) FaceDistribution {
	n := ci
	side := 1
	if up {
		n[dim]++
		side = 0
	} else {
		n[dim]--
	}
	nc := o.chunkAt(n)
	if nc == nil {
		return FaceEmpty
	}
	return nc.faces[dim][side]
}

func (o *ChunkedVoxelObject) isFullyObscuredByNeighbors(ci [3]int) bool {
	for dim := 0; dim < 3; dim++ {
		if o.neighborFace(ci, dim, false) != FaceFull || o.neighborFace(ci, dim, true) != FaceFull {
			return false
		}
	}
	return true
}

func (o *ChunkedVoxelObject) updateUpperAndOuterFaces(ci [3]int) {
	for dim := 0; dim < 3; dim++ {
		if ci[dim] == 0 {
			o.setFaceAdjacency(o.chunkLinearIdx(ci), dim, 0, false)
		}
		upper := ci
		upper[dim]++
		if upper[dim] >= o.chunkCounts[dim] {
			o.setFaceAdjacency(o.chunkLinearIdx(ci), dim, 1, false)
			continue
		}
		o.updateFacePair(o.chunkLinearIdx(ci), o.chunkLinearIdx(upper), dim)
	}
}

func (o *ChunkedVoxelObject) updateLowerFace(ci [3]int, dim int) {
	if ci[dim] == 0 {
		o.setFaceAdjacency(o.chunkLinearIdx(ci), dim, 0, false)
		return
	}
	lower := ci
	lower[dim]--
	o.updateFacePair(o.chunkLinearIdx(lower), o.chunkLinearIdx(ci), dim)
}

// setFaceAdjacency sets the outward adjacency flag of every non-empty voxel on
// one face of a non-uniform chunk.
func (o *ChunkedVoxelObject) setFaceAdjacency(linearIdx, dim, side int, adjacent bool) {
	c := &o.chunks[linearIdx]
	if c.kind != ChunkNonUniform || c.faces[dim][side] == FaceEmpty {
		return
	}
	voxels := o.arena.slot(c.dataOffset)
	flag := AdjacencyFlag(dim, side == 1)
	for a := 0; a < ChunkSize; a++ {
		if c.faceRowCounts[dim][side][a] == 0 {
			continue
		}
		for b := 0; b < ChunkSize; b++ {
			v := &voxels[faceVoxelIdx(dim, side, a, b)]
			if !v.IsEmpty() {
				v.setAdjacency(flag, adjacent)
			}
		}
	}
}

// updateFacePair writes the adjacency flags across the face shared by a chunk
// and its upper neighbor along dim.
func (o *ChunkedVoxelObject) updateFacePair(lowerIdx, upperIdx, dim int) {
	lower := &o.chunks[lowerIdx]
	upper := &o.chunks[upperIdx]
	if lower.kind != ChunkNonUniform && upper.kind != ChunkNonUniform {
		return
	}
	lowerFace := lower.faces[dim][1]
	upperFace := upper.faces[dim][0]
	if upperFace != FaceMixed {
		o.setFaceAdjacency(lowerIdx, dim, 1, upperFace == FaceFull)
	}
	if lowerFace != FaceMixed {
		o.setFaceAdjacency(upperIdx, dim, 0, lowerFace == FaceFull)
	}
	if lowerFace != FaceMixed && upperFace != FaceMixed {
		return
	}

	// A mixed face always belongs to a non-uniform chunk.
	var lowerVoxels, upperVoxels []Voxel
	if lower.kind == ChunkNonUniform {
		lowerVoxels = o.arena.slot(lower.dataOffset)
	}
	if upper.kind == ChunkNonUniform {
		upperVoxels = o.arena.slot(upper.dataOffset)
	}
	upFlag := AdjacencyFlag(dim, true)
	dnFlag := AdjacencyFlag(dim, false)
	for a := 0; a < ChunkSize; a++ {
		if lower.faceRowCounts[dim][1][a] == 0 && upper.faceRowCounts[dim][0][a] == 0 {
			continue
		}
		for b := 0; b < ChunkSize; b++ {
			li := faceVoxelIdx(dim, 1, a, b)
			ui := faceVoxelIdx(dim, 0, a, b)
			lowerNonEmpty := lowerFace == FaceFull || (lowerFace == FaceMixed && !lowerVoxels[li].IsEmpty())
			upperNonEmpty := upperFace == FaceFull || (upperFace == FaceMixed && !upperVoxels[ui].IsEmpty())
			if upperFace == FaceMixed && lowerNonEmpty && lowerVoxels != nil {
				lowerVoxels[li].setAdjacency(upFlag, upperNonEmpty)
			}
			if lowerFace == FaceMixed && upperNonEmpty && upperVoxels != nil {
				upperVoxels[ui].setAdjacency(dnFlag, lowerNonEmpty)
			}
		}
	}
}
