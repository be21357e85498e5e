package chunks

import "github.com/chewxy/math32"

// VoxelType tags the material class of a voxel. EmptyVoxelType is reserved.
type VoxelType uint8

const (
	EmptyVoxelType VoxelType = 255
	MaxVoxelTypes            = int(EmptyVoxelType)
)

// MaxSignedDistance bounds the stored signed distance (in voxel units) on both
// sides. Deep interior voxels saturate at -MaxSignedDistance.
const MaxSignedDistance float32 = 2.54

type VoxelFlags uint8

const (
	AdjacentXDn VoxelFlags = 1 << iota
	AdjacentXUp
	AdjacentYDn
	AdjacentYUp
	AdjacentZDn
	AdjacentZUp
	IsEmpty

	FullAdjacency = AdjacentXDn | AdjacentXUp | AdjacentYDn | AdjacentYUp | AdjacentZDn | AdjacentZUp
)

// AdjacencyFlag returns the flag for the neighbor along dim (0..2), on the
// upper side if up is set.
func AdjacencyFlag(dim int, up bool) VoxelFlags {
	if up {
		return AdjacentXUp << (2 * dim)
	}
	return AdjacentXDn << (2 * dim)
}

type VoxelPlacement uint8

const (
	PlacementInterior VoxelPlacement = iota
	PlacementSurfaceFace
	PlacementSurfaceEdge
	PlacementSurfaceCorner
)

func (p VoxelPlacement) String() string {
	switch p {
	case PlacementInterior:
		return "interior"
	case PlacementSurfaceFace:
		return "face"
	case PlacementSurfaceEdge:
		return "edge"
	default:
		return "corner"
	}
}

type Voxel struct {
	signedDistance float32
	voxelType      VoxelType
	flags          VoxelFlags
}

func clampSignedDistance(sd float32) float32 {
	return math32.Max(-MaxSignedDistance, math32.Min(MaxSignedDistance, sd))
}

// NonEmptyVoxel creates a voxel of the given type. A non-negative signed
// distance yields an empty voxel.
func NonEmptyVoxel(voxelType VoxelType, signedDistance float32) Voxel {
	if signedDistance >= 0 || voxelType == EmptyVoxelType {
		return EmptyVoxel(signedDistance)
	}
	return Voxel{signedDistance: clampSignedDistance(signedDistance), voxelType: voxelType}
}

func EmptyVoxel(signedDistance float32) Voxel {
	return Voxel{
		signedDistance: clampSignedDistance(math32.Max(0, signedDistance)),
		voxelType:      EmptyVoxelType,
		flags:          IsEmpty,
	}
}

func MaximallyInside(voxelType VoxelType) Voxel {
	return NonEmptyVoxel(voxelType, -MaxSignedDistance)
}

func MaximallyOutside() Voxel {
	return EmptyVoxel(MaxSignedDistance)
}

func (v Voxel) SignedDistance() float32 { return v.signedDistance }

func (v Voxel) Type() VoxelType { return v.voxelType }

func (v Voxel) Flags() VoxelFlags { return v.flags }

func (v Voxel) IsEmpty() bool { return v.flags&IsEmpty != 0 }

func (v Voxel) AdjacencyMask() VoxelFlags { return v.flags & FullAdjacency }

func (v Voxel) HasAdjacent(dim int, up bool) bool {
	return v.flags&AdjacencyFlag(dim, up) != 0
}

// IsFullyObscured reports whether all six neighbors are non-empty.
func (v Voxel) IsFullyObscured() bool {
	return v.AdjacencyMask() == FullAdjacency
}

// IsSurface reports whether the voxel is non-empty with at least one empty
// neighbor.
func (v Voxel) IsSurface() bool {
	return !v.IsEmpty() && !v.IsFullyObscured()
}

func (v Voxel) sameContent(other Voxel) bool {
	return v.signedDistance == other.signedDistance && v.voxelType == other.voxelType && v.IsEmpty() == other.IsEmpty()
}

func (v *Voxel) setAdjacency(flag VoxelFlags, adjacent bool) {
	if adjacent {
		v.flags |= flag
	} else {
		v.flags &^= flag
	}
}

func (v *Voxel) setAdjacencyMask(mask VoxelFlags) {
	v.flags = (v.flags &^ FullAdjacency) | (mask & FullAdjacency)
}

// IncreaseSignedDistance moves the voxel outwards by delta. Once the signed
// distance reaches zero the voxel becomes empty and onEmpty (if any) is
// called with the voxel as it was before the change. Empty voxels are never
// modified, and neither is any voxel for a delta that is not positive or NaN.
func (v *Voxel) IncreaseSignedDistance(delta float32, onEmpty func(pre Voxel)) {
	if !(delta > 0) || v.IsEmpty() {
		return
	}
	pre := *v
	v.signedDistance = clampSignedDistance(v.signedDistance + delta)
	if v.signedDistance >= 0 {
		v.voxelType = EmptyVoxelType
		v.flags = IsEmpty
		if onEmpty != nil {
			onEmpty(pre)
		}
	}
}

// Placement classifies a non-empty voxel by how many of its faces are
// blocked by non-empty neighbors.
func (v Voxel) Placement() VoxelPlacement {
	blocked := 0
	for mask := v.AdjacencyMask(); mask != 0; mask &= mask - 1 {
		blocked++
	}
	switch blocked {
	case 6:
		return PlacementInterior
	case 5:
		return PlacementSurfaceFace
	case 4:
		return PlacementSurfaceEdge
	default:
		return PlacementSurfaceCorner
	}
}
