package generation

import (
	"github.com/chewxy/math32"
	"github.com/gekko3d/chunkvox/voxelcore/chunks"
	"github.com/go-gl/mathgl/mgl32"
)

// SDFVoxelGenerator samples an SDF graph at voxel centers. The grid covers
// the root's bounds plus Margin empty voxels on every side.
type SDFVoxelGenerator struct {
	Root   SDFNode
	Margin int

	gridShape   [3]int
	lowerCorner mgl32.Vec3
}

var _ chunks.SDFSource = (*SDFVoxelGenerator)(nil)

func NewSDFVoxelGenerator(root SDFNode, margin int) *SDFVoxelGenerator {
	if margin < 0 {
		margin = 0
	}
	g := &SDFVoxelGenerator{Root: root, Margin: margin}
	bounds := root.Bounds()
	extents := bounds.Extents()
	for d := 0; d < 3; d++ {
		if extents[d] <= 0 {
			g.gridShape = [3]int{}
			return g
		}
		g.gridShape[d] = int(math32.Ceil(extents[d])) + 2*margin
	}
	center := bounds.Center()
	for d := 0; d < 3; d++ {
		g.lowerCorner[d] = center[d] - 0.5*float32(g.gridShape[d])
	}
	return g
}

func (g *SDFVoxelGenerator) GridShape() [3]int { return g.gridShape }

// VoxelCenter returns the position of a voxel center in the root's space.
func (g *SDFVoxelGenerator) VoxelCenter(i, j, k int) mgl32.Vec3 {
	return g.lowerCorner.Add(mgl32.Vec3{float32(i) + 0.5, float32(j) + 0.5, float32(k) + 0.5})
}

// RootOrigin is the root-space position of the grid's lower corner.
func (g *SDFVoxelGenerator) RootOrigin() mgl32.Vec3 { return g.lowerCorner }

func (g *SDFVoxelGenerator) Evaluate(i, j, k int) float32 {
	return g.Root.Distance(g.VoxelCenter(i, j, k))
}
