package netsession

import (
	"math"

	"github.com/voxelcore/voxelserver/internal/protocol"
)

// FacingSide is the cardinal/vertical direction a session's rotation
// resolves to.
type FacingSide uint8

const (
	FacingNorth FacingSide = iota
	FacingSouth
	FacingEast
	FacingWest
	FacingTop
	FacingBottom
)

func (f FacingSide) String() string {
	switch f {
	case FacingNorth:
		return "North"
	case FacingSouth:
		return "South"
	case FacingEast:
		return "East"
	case FacingWest:
		return "West"
	case FacingTop:
		return "Top"
	case FacingBottom:
		return "Bottom"
	default:
		return "Unknown"
	}
}

// deriveFacing is a pure function of rotation: the axis with the largest
// absolute component dominates, and its sign selects the side. Ties
// favor X over Y over Z, matching the order checked below.
func deriveFacing(rotation protocol.Vec3F) FacingSide {
	ax, ay, az := math.Abs(rotation.X), math.Abs(rotation.Y), math.Abs(rotation.Z)

	switch {
	case ax >= ay && ax >= az:
		if rotation.X >= 0 {
			return FacingEast
		}
		return FacingWest
	case ay >= ax && ay >= az:
		if rotation.Y >= 0 {
			return FacingTop
		}
		return FacingBottom
	default:
		if rotation.Z >= 0 {
			return FacingSouth
		}
		return FacingNorth
	}
}

// normalizeRotation returns rotation unit-length, unless it is the zero
// vector, in which case it is returned unchanged.
func normalizeRotation(rotation protocol.Vec3F) protocol.Vec3F {
	lengthSq := rotation.X*rotation.X + rotation.Y*rotation.Y + rotation.Z*rotation.Z
	if lengthSq == 0 {
		return rotation
	}
	length := math.Sqrt(lengthSq)
	return protocol.Vec3F{X: rotation.X / length, Y: rotation.Y / length, Z: rotation.Z / length}
}
