package chunkvox

import (
	"context"
	"fmt"
	"time"

	"github.com/gekko3d/chunkvox/voxelcore/chunks"
	"github.com/gekko3d/chunkvox/voxelcore/generation"
	"github.com/go-gl/mathgl/mgl64"
)

// GenerateVoxelObject voxelizes an SDF graph given in voxel units with the
// configured extent and worker count. It returns the world position of the
// object's origin, taking the graph's origin as the world origin, and a nil
// object when the graph has no interior.
func GenerateVoxelObject(ctx context.Context, cfg Config, root generation.SDFNode, types chunks.VoxelTypeSource, logger Logger) (*chunks.ChunkedVoxelObject, mgl64.Vec3, error) {
	logger = orNop(logger)
	start := time.Now()
	gen := generation.NewSDFVoxelGenerator(root, 1)
	obj, err := chunks.GenerateParallel(ctx, cfg.VoxelExtent, gen, types, cfg.GenerationWorkers)
	if err != nil {
		return nil, mgl64.Vec3{}, fmt.Errorf("generate voxel object: %w", err)
	}
	corner := gen.RootOrigin()
	origin := mgl64.Vec3{float64(corner[0]), float64(corner[1]), float64(corner[2])}.Mul(cfg.VoxelExtent)
	if obj == nil {
		logger.Warnf("SDF with grid %v generated no voxels", gen.GridShape())
		return nil, origin, nil
	}
	logger.Infof("Generated %v chunks (%d voxels) in %s", obj.ChunkCounts(), obj.NonEmptyVoxelCount(), time.Since(start))
	return obj, origin, nil
}
