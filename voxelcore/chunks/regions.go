package chunks

import "sort"

type splitDetector struct {
	regionBases     []uint32
	regions         unionFind
	rootVoxelCounts map[uint32]int
	resolved        bool
}

// UpdateLocalConnectedRegionsForAllChunks labels the connected regions inside
// every chunk. Internal adjacencies must be current.
func (o *ChunkedVoxelObject) UpdateLocalConnectedRegionsForAllChunks() {
	s := acquireScratch()
	defer s.release()
	for idx := range o.chunks {
		o.updateLocalConnectedRegionsForChunk(idx, s)
	}
}

func (o *ChunkedVoxelObject) UpdateLocalConnectedRegionsForChunk(ci [3]int) {
	if !o.chunkInGrid(ci) {
		return
	}
	s := acquireScratch()
	defer s.release()
	o.updateLocalConnectedRegionsForChunk(o.chunkLinearIdx(ci), s)
}

func (o *ChunkedVoxelObject) updateLocalConnectedRegionsForChunk(linearIdx int, s *scratch) {
	c := &o.chunks[linearIdx]
	o.splitDetector.resolved = false
	c.regionState = RegionLocalLabeled
	switch c.kind {
	case ChunkEmpty:
		c.regionCount = 0
		c.regionSizes = c.regionSizes[:0]
		return
	case ChunkUniform:
		c.regionCount = 1
		c.regionSizes = append(c.regionSizes[:0], ChunkVoxelCount)
		return
	}

	voxels := o.arena.slot(c.dataOffset)
	labels := o.arena.labelSlot(c.dataOffset)
	uf := &s.localRegions
	uf.reset(ChunkVoxelCount)
	for idx, v := range voxels {
		if v.IsEmpty() {
			continue
		}
		if idx/ChunkSizeSq < ChunkSize-1 && v.HasAdjacent(0, true) {
			uf.union(uint32(idx), uint32(idx+ChunkSizeSq))
		}
		if (idx/ChunkSize)%ChunkSize < ChunkSize-1 && v.HasAdjacent(1, true) {
			uf.union(uint32(idx), uint32(idx+ChunkSize))
		}
		if idx%ChunkSize < ChunkSize-1 && v.HasAdjacent(2, true) {
			uf.union(uint32(idx), uint32(idx+1))
		}
	}

	for i := range s.rootLabels {
		s.rootLabels[i] = noRegion
	}
	sizes := c.regionSizes[:0]
	for idx, v := range voxels {
		if v.IsEmpty() {
			labels[idx] = noRegion
			continue
		}
		root := uf.find(uint32(idx))
		label := s.rootLabels[root]
		if label == noRegion {
			label = uint16(len(sizes))
			s.rootLabels[root] = label
			sizes = append(sizes, 0)
		}
		labels[idx] = label
		sizes[label]++
	}
	c.regionSizes = sizes
	c.regionCount = len(sizes)
}

// ResolveConnectedRegionsBetweenAllChunks joins the local regions of
// face-adjacent chunks into global regions. A global region id is the
// chunk's base id (regions of preceding chunks in chunk order) plus the
// local label.
func (o *ChunkedVoxelObject) ResolveConnectedRegionsBetweenAllChunks() {
	sd := &o.splitDetector
	if cap(sd.regionBases) < len(o.chunks) {
		sd.regionBases = make([]uint32, len(o.chunks))
	}
	sd.regionBases = sd.regionBases[:len(o.chunks)]
	total := 0
	for idx := range o.chunks {
		sd.regionBases[idx] = uint32(total)
		total += o.chunks[idx].regionCount
	}
	sd.regions.reset(total)

	for idx := range o.chunks {
		if o.chunks[idx].regionCount == 0 {
			continue
		}
		ci := o.chunkIdxFromLinear(idx)
		for dim := 0; dim < 3; dim++ {
			upper := ci
			upper[dim]++
			if upper[dim] >= o.chunkCounts[dim] {
				continue
			}
			upperIdx := o.chunkLinearIdx(upper)
			if o.chunks[upperIdx].regionCount == 0 {
				continue
			}
			o.unionRegionsAcrossFace(idx, upperIdx, dim)
		}
	}

	if sd.rootVoxelCounts == nil {
		sd.rootVoxelCounts = make(map[uint32]int)
	}
	clear(sd.rootVoxelCounts)
	for idx := range o.chunks {
		c := &o.chunks[idx]
		for label, size := range c.regionSizes[:c.regionCount] {
			sd.rootVoxelCounts[sd.regions.find(sd.regionBases[idx]+uint32(label))] += size
		}
		c.regionState = RegionGloballyResolved
	}
	sd.resolved = true
}

func (o *ChunkedVoxelObject) localLabel(c *chunk, voxelIdx int) uint16 {
	if c.kind == ChunkUniform {
		return 0
	}
	return o.arena.labelSlot(c.dataOffset)[voxelIdx]
}

func (o *ChunkedVoxelObject) unionRegionsAcrossFace(lowerIdx, upperIdx, dim int) {
	lower := &o.chunks[lowerIdx]
	upper := &o.chunks[upperIdx]
	lowerFace := lower.faces[dim][1]
	upperFace := upper.faces[dim][0]
	if lowerFace == FaceEmpty || upperFace == FaceEmpty {
		return
	}
	sd := &o.splitDetector
	lowerBase := sd.regionBases[lowerIdx]
	upperBase := sd.regionBases[upperIdx]
	if lower.regionCount == 1 && upper.regionCount == 1 && (lowerFace == FaceFull || upperFace == FaceFull) {
		sd.regions.union(lowerBase, upperBase)
		return
	}

	var lowerVoxels, upperVoxels []Voxel
	if lower.kind == ChunkNonUniform {
		lowerVoxels = o.arena.slot(lower.dataOffset)
	}
	if upper.kind == ChunkNonUniform {
		upperVoxels = o.arena.slot(upper.dataOffset)
	}
	lastLower, lastUpper := noRegion, noRegion
	for a := 0; a < ChunkSize; a++ {
		if lower.faceRowCounts[dim][1][a] == 0 || upper.faceRowCounts[dim][0][a] == 0 {
			continue
		}
		for b := 0; b < ChunkSize; b++ {
			li := faceVoxelIdx(dim, 1, a, b)
			ui := faceVoxelIdx(dim, 0, a, b)
			if lowerVoxels != nil && lowerVoxels[li].IsEmpty() {
				continue
			}
			if upperVoxels != nil && upperVoxels[ui].IsEmpty() {
				continue
			}
			lowerLabel := o.localLabel(lower, li)
			upperLabel := o.localLabel(upper, ui)
			if lowerLabel == lastLower && upperLabel == lastUpper {
				continue
			}
			lastLower, lastUpper = lowerLabel, upperLabel
			sd.regions.union(lowerBase+uint32(lowerLabel), upperBase+uint32(upperLabel))
		}
	}
}

func (o *ChunkedVoxelObject) ensureRegionsResolved() {
	if o.splitDetector.resolved {
		return
	}
	for idx := range o.chunks {
		if o.chunks[idx].regionState == RegionStale {
			o.ComputeAllDerivedState()
			return
		}
	}
	o.ResolveConnectedRegionsBetweenAllChunks()
}

// CountRegions returns the number of disconnected regions of non-empty
// voxels, resolving regions first if needed.
func (o *ChunkedVoxelObject) CountRegions() int {
	o.ensureRegionsResolved()
	return len(o.splitDetector.rootVoxelCounts)
}

// RegionVoxelCounts returns the voxel count of each region, ordered by
// region id.
func (o *ChunkedVoxelObject) RegionVoxelCounts() []int {
	o.ensureRegionsResolved()
	roots := o.sortedRegionRoots()
	counts := make([]int, len(roots))
	for n, root := range roots {
		counts[n] = o.splitDetector.rootVoxelCounts[root]
	}
	return counts
}

func (o *ChunkedVoxelObject) sortedRegionRoots() []uint32 {
	roots := make([]uint32, 0, len(o.splitDetector.rootVoxelCounts))
	for root := range o.splitDetector.rootVoxelCounts {
		roots = append(roots, root)
	}
	sort.Slice(roots, func(a, b int) bool { return roots[a] < roots[b] })
	return roots
}

// RegionIDAt returns the global region id of a non-empty voxel.
func (o *ChunkedVoxelObject) RegionIDAt(i, j, k int) (uint32, bool) {
	o.ensureRegionsResolved()
	if o.GetVoxel(i, j, k).IsEmpty() {
		return 0, false
	}
	idx := o.chunkLinearIdx([3]int{i / ChunkSize, j / ChunkSize, k / ChunkSize})
	c := &o.chunks[idx]
	label := o.localLabel(c, linearVoxelIdx(i%ChunkSize, j%ChunkSize, k%ChunkSize))
	return o.splitDetector.regions.find(o.splitDetector.regionBases[idx] + uint32(label)), true
}
