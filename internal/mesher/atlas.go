package mesher

import "github.com/annel0/mmo-game/internal/world/block"

// sideFaces are the four horizontal faces the orientation rotation
// table applies to; Up/Down are never rotated.
var sideFaces = [4]Face{FaceNorth, FaceEast, FaceSouth, FaceWest}

// rotationTable maps a block's horizontal orientation and the side
// face being drawn to the side face whose base UVs should be sampled,
// so that e.g. a log rotated to face East still shows its "front"
// texture on the face the player now sees as north-facing.
var rotationTable = [4][4]Face{
	// orientation North
	{FaceNorth, FaceEast, FaceSouth, FaceWest},
	// orientation East
	{FaceWest, FaceNorth, FaceEast, FaceSouth},
	// orientation South
	{FaceSouth, FaceWest, FaceNorth, FaceEast},
	// orientation West
	{FaceEast, FaceSouth, FaceWest, FaceNorth},
}

func sideIndex(f Face) (int, bool) {
	for i, sf := range sideFaces {
		if sf == f {
			return i, true
		}
	}
	return 0, false
}

// RotateFace returns the base face whose texture region should be
// sampled for face f on a block with the given horizontal
// orientation. Top/bottom faces and non-horizontal orientations pass
// through unrotated.
func RotateFace(orientation block.Orientation, f Face) Face {
	if orientation != block.North && orientation != block.East &&
		orientation != block.South && orientation != block.West {
		return f
	}
	idx, ok := sideIndex(f)
	if !ok {
		return f
	}
	return rotationTable[orientation][idx]
}

// unitRegion is a 0..1 UV rect with no atlas packing, wound to match
// faceCorners' vertex order.
var unitRegion = [4][2]float32{{0, 1}, {0, 0}, {1, 0}, {1, 1}}

// StaticAtlas is a minimal Atlas that maps a block state to
// array-texture layer id*4 plus the face the orientation rotation table
// selects, without any real packing/region logic. It exists so
// the mesher is independently testable without the rendering
// collaborator's real atlas.
type StaticAtlas struct{}

// GetRegion implements Atlas. Region packing is the rendering
// collaborator's concern; this stub only honors the face the
// orientation table selects, not a packed UV rect.
func (StaticAtlas) GetRegion(state block.BlockState, face Face) Region {
	base := RotateFace(state.Orientation(), face)
	return Region{Layer: int(state.ID())*len(sideFaces) + int(base), UV: unitRegion}
}
