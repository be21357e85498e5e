package chunks

import (
	"context"
	"fmt"
	"slices"

	"golang.org/x/sync/errgroup"
)

// SDFSource supplies signed distances (in voxel units, negative inside) on an
// integer grid. Evaluate is called at indices within GridShape.
type SDFSource interface {
	GridShape() [3]int
	Evaluate(i, j, k int) float32
}

// VoxelTypeSource supplies the type of the voxel at the given indices.
// Returning EmptyVoxelType leaves the voxel empty.
type VoxelTypeSource interface {
	VoxelTypeAt(i, j, k int) VoxelType
}

// Generate builds an object from the given sources and computes all derived
// state. It returns nil if every voxel is empty.
func Generate(voxelExtent float64, sdf SDFSource, types VoxelTypeSource) *ChunkedVoxelObject {
	obj := GenerateWithoutDerivedState(voxelExtent, sdf, types)
	if obj == nil {
		return nil
	}
	obj.ComputeAllDerivedState()
	return obj
}

// GenerateWithoutDerivedState evaluates and classifies every chunk but leaves
// adjacencies, regions and voxel ranges to the stepwise builders.
func GenerateWithoutDerivedState(voxelExtent float64, sdf SDFSource, types VoxelTypeSource) *ChunkedVoxelObject {
	gridShape, chunkCounts, ok := chunkGridFor(voxelExtent, sdf)
	if !ok {
		return nil
	}
	obj := newChunkedVoxelObject(voxelExtent, chunkCounts)
	s := acquireScratch()
	defer s.release()
	buf := s.voxels[:]
	for idx := range obj.chunks {
		kind := evaluateChunk(sdf, types, gridShape, obj.chunkIdxFromLinear(idx), buf)
		obj.storeEvaluatedChunk(idx, kind, buf)
	}
	return obj.finishGeneration()
}

// GenerateParallel is Generate with chunk evaluation spread over up to
// workers goroutines (unlimited if workers <= 0). The sources must be safe for
// concurrent use. The result is identical to Generate.
func GenerateParallel(ctx context.Context, voxelExtent float64, sdf SDFSource, types VoxelTypeSource, workers int) (*ChunkedVoxelObject, error) {
	gridShape, chunkCounts, ok := chunkGridFor(voxelExtent, sdf)
	if !ok {
		return nil, nil
	}
	obj := newChunkedVoxelObject(voxelExtent, chunkCounts)

	type evaluatedChunk struct {
		kind   ChunkKind
		voxels []Voxel
	}
	evaluated := make([]evaluatedChunk, len(obj.chunks))

	g, gctx := errgroup.WithContext(ctx)
	if workers > 0 {
		g.SetLimit(workers)
	}
	for i := 0; i < chunkCounts[0]; i++ {
		g.Go(func() error {
			buf := make([]Voxel, ChunkVoxelCount)
			for j := 0; j < chunkCounts[1]; j++ {
				if err := gctx.Err(); err != nil {
					return err
				}
				for k := 0; k < chunkCounts[2]; k++ {
					ci := [3]int{i, j, k}
					idx := obj.chunkLinearIdx(ci)
					kind := evaluateChunk(sdf, types, gridShape, ci, buf)
					evaluated[idx].kind = kind
					switch kind {
					case ChunkUniform:
						evaluated[idx].voxels = slices.Clone(buf[:1])
					case ChunkNonUniform:
						evaluated[idx].voxels = slices.Clone(buf)
					}
				}
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("generate voxel object: %w", err)
	}

	for idx := range evaluated {
		obj.storeEvaluatedChunk(idx, evaluated[idx].kind, evaluated[idx].voxels)
	}
	obj = obj.finishGeneration()
	if obj == nil {
		return nil, nil
	}
	obj.ComputeAllDerivedState()
	return obj, nil
}

func chunkGridFor(voxelExtent float64, sdf SDFSource) ([3]int, [3]int, bool) {
	if voxelExtent <= 0 {
		panic(fmt.Sprintf("chunks: voxel extent must be positive, got %g", voxelExtent))
	}
	gridShape := sdf.GridShape()
	var chunkCounts [3]int
	for dim := 0; dim < 3; dim++ {
		if gridShape[dim] < 0 {
			panic(fmt.Sprintf("chunks: invalid generator grid shape %v", gridShape))
		}
		if gridShape[dim] == 0 {
			return gridShape, chunkCounts, false
		}
		chunkCounts[dim] = (gridShape[dim] + ChunkSize - 1) / ChunkSize
	}
	return gridShape, chunkCounts, true
}

// evaluateChunk fills buf with the voxels of one chunk and classifies it.
// Voxels outside the generator grid are maximally outside.
func evaluateChunk(sdf SDFSource, types VoxelTypeSource, gridShape [3]int, ci [3]int, buf []Voxel) ChunkKind {
	base := [3]int{ci[0] * ChunkSize, ci[1] * ChunkSize, ci[2] * ChunkSize}
	outside := MaximallyOutside()
	allEmpty, allSame := true, true
	for i := 0; i < ChunkSize; i++ {
		gi := base[0] + i
		for j := 0; j < ChunkSize; j++ {
			gj := base[1] + j
			for k := 0; k < ChunkSize; k++ {
				gk := base[2] + k
				idx := linearVoxelIdx(i, j, k)
				v := outside
				if gi < gridShape[0] && gj < gridShape[1] && gk < gridShape[2] {
					sd := sdf.Evaluate(gi, gj, gk)
					if sd < 0 {
						v = NonEmptyVoxel(types.VoxelTypeAt(gi, gj, gk), sd)
					} else {
						v = EmptyVoxel(sd)
					}
				}
				buf[idx] = v
				if !v.IsEmpty() {
					allEmpty = false
				}
				if allSame && !v.sameContent(buf[0]) {
					allSame = false
				}
			}
		}
	}
	switch {
	case allEmpty:
		return ChunkEmpty
	case allSame:
		return ChunkUniform
	default:
		return ChunkNonUniform
	}
}

func (o *ChunkedVoxelObject) storeEvaluatedChunk(idx int, kind ChunkKind, voxels []Voxel) {
	switch kind {
	case ChunkEmpty:
		o.chunks[idx] = emptyChunk()
	case ChunkUniform:
		o.chunks[idx] = uniformChunk(voxels[0])
	case ChunkNonUniform:
		offset := o.arena.allocateSlot()
		copy(o.arena.slot(offset), voxels)
		nonEmpty := 0
		for _, v := range voxels {
			if !v.IsEmpty() {
				nonEmpty++
			}
		}
		o.chunks[idx] = chunk{
			kind:          ChunkNonUniform,
			dataOffset:    offset,
			nonEmptyCount: nonEmpty,
			regionState:   RegionStale,
		}
	}
}

func (o *ChunkedVoxelObject) finishGeneration() *ChunkedVoxelObject {
	o.updateOccupiedChunkRanges()
	if o.occupiedChunkRanges[0].IsEmpty() {
		return nil
	}
	for dim := 0; dim < 3; dim++ {
		r := o.occupiedChunkRanges[dim]
		o.occupiedVoxelRanges[dim] = IndexRange{Start: r.Start * ChunkSize, End: r.End * ChunkSize}
	}
	return o
}

// ComputeAllDerivedState runs every stepwise builder in dependency order.
// Running it again leaves the object unchanged.
func (o *ChunkedVoxelObject) ComputeAllDerivedState() {
	o.UpdateInternalAdjacenciesForAllChunks()
	o.UpdateLocalConnectedRegionsForAllChunks()
	o.UpdateAllChunkBoundaryAdjacencies()
	o.ResolveConnectedRegionsBetweenAllChunks()
	o.UpdateOccupiedVoxelRanges()
}
