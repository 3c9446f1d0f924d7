// Package culling decides, per block face, whether a neighbor hides
// that face. Two independent rule sets exist side by side: shape
// culling (plain booleans) for solid model geometry and water culling
// (optional fluid levels) for waterlogged cells. The two vocabularies
// are never mixed.
package culling

import (
	"errors"
	"fmt"

	"structviz/internal/structure"
)

// Face identifies one of the six block faces.
type Face int

const (
	FaceDown Face = iota
	FaceUp
	FaceNorth
	FaceSouth
	FaceWest
	FaceEast

	FaceCount = 6
)

var faceNames = [FaceCount]string{"down", "up", "north", "south", "west", "east"}

func (f Face) String() string {
	if f < 0 || f >= FaceCount {
		return fmt.Sprintf("Face(%d)", int(f))
	}
	return faceNames[f]
}

// Offset returns the unit step towards the neighbor across this face.
// North is -Z, west is -X.
func (f Face) Offset() (dx, dy, dz int) {
	switch f {
	case FaceDown:
		return 0, -1, 0
	case FaceUp:
		return 0, 1, 0
	case FaceNorth:
		return 0, 0, -1
	case FaceSouth:
		return 0, 0, 1
	case FaceWest:
		return -1, 0, 0
	default:
		return 1, 0, 0
	}
}

// Faces lists all six faces in a fixed order.
func Faces() [FaceCount]Face {
	return [FaceCount]Face{FaceDown, FaceUp, FaceNorth, FaceSouth, FaceWest, FaceEast}
}

// Metadata is the slice of the block metadata service the cull rules
// need: per-name flags plus the model-derived shape queries.
type Metadata interface {
	// SelfCulling reports whether identical adjacent blocks of this name
	// hide their shared faces.
	SelfCulling(name string) bool
	// OpaqueOverride returns an explicit per-name opacity override. When
	// ok is false the queried IsOpaque test applies instead.
	OpaqueOverride(name string) (value, ok bool)
	// IsFullCube reports whether the block's shape fills its whole cell.
	IsFullCube(b structure.Block) bool
	// IsOpaque is the queried opacity test, consulted only when no
	// explicit override exists.
	IsOpaque(b structure.Block) bool
}

// NeighborFunc resolves the neighbor block across a face. ok is false
// when there is no block (outside the structure, or an empty cell).
type NeighborFunc func(Face) (structure.Block, bool)

// ShapeCullResult records, per face, whether solid model geometry for
// that face should be omitted.
type ShapeCullResult struct {
	Cull [FaceCount]bool
}

// Culled reports whether the given face is hidden.
func (r ShapeCullResult) Culled(f Face) bool {
	return r.Cull[f]
}

// WaterLevel is an optional fluid level. Valid is false when the face
// carries no cull signal.
type WaterLevel struct {
	Valid bool
	Level int
}

// WaterCullResult records, per face, an optional neighbor water level.
// A valid entry means the water face is hidden and carries the
// neighbor's fluid level; an invalid entry means the face renders.
type WaterCullResult struct {
	Levels [FaceCount]WaterLevel
}

// Culled reports whether the given water face is hidden.
func (r WaterCullResult) Culled(f Face) bool {
	return r.Levels[f].Valid
}

// ErrWaterCullInvariant marks the unreachable branch of the water-cull
// table. Hitting it means the rule set no longer covers all waterlogged
// cases and the rebuild must abort rather than emit wrong geometry.
var ErrWaterCullInvariant = errors.New("culling: water cull rules reached an impossible state")

func isOpaque(n structure.Block, meta Metadata) bool {
	if v, ok := meta.OpaqueOverride(n.Name); ok {
		return v
	}
	return meta.IsOpaque(n)
}

// ShapeCull evaluates the shape rule for every face of b.
func ShapeCull(b structure.Block, neighbor NeighborFunc, meta Metadata) ShapeCullResult {
	var res ShapeCullResult
	fullCube := meta.IsFullCube(b)
	for _, f := range Faces() {
		n, ok := neighbor(f)
		if !ok || n.IsAir() {
			continue
		}
		if !fullCube {
			continue
		}
		if n.Name == b.Name && meta.SelfCulling(n.Name) {
			res.Cull[f] = true
			continue
		}
		if isOpaque(n, meta) {
			res.Cull[f] = true
		}
	}
	return res
}

// WaterCull evaluates the water rule for every face of b. The final
// branch of the table is unreachable by construction; reaching it
// returns ErrWaterCullInvariant.
func WaterCull(b structure.Block, neighbor NeighborFunc, meta Metadata) (WaterCullResult, error) {
	var res WaterCullResult
	waterlogged := b.IsWaterlogged()
	for _, f := range Faces() {
		n, ok := neighbor(f)
		if !ok || n.IsAir() {
			continue
		}
		opaque := isOpaque(n, meta)
		switch {
		case waterlogged && n.IsWaterlogged():
			res.Levels[f] = WaterLevel{Valid: true, Level: n.WaterLevel()}
		case waterlogged && !opaque:
			// visible water face
		case waterlogged && opaque && f == FaceUp:
			// sky-facing water surface renders even under an opaque block
		case waterlogged && opaque && f != FaceUp:
			res.Levels[f] = WaterLevel{Valid: true, Level: n.WaterLevel()}
		case !waterlogged:
			res.Levels[f] = WaterLevel{Valid: true, Level: n.WaterLevel()}
		default:
			return WaterCullResult{}, fmt.Errorf("%w: block %q face %s", ErrWaterCullInvariant, b.Name, f)
		}
	}
	return res, nil
}
