// Package structure holds the block-level data model for a voxel
// structure: immutable block snapshots, their positions, and an
// in-memory structure that the mesh builder consumes.
package structure

import (
	"strconv"
	"strings"

	"github.com/Tnze/go-mc/nbt"
	"github.com/go-gl/mathgl/mgl32"
)

// BlockPos is an integer position in structure-local coordinates.
type BlockPos struct {
	X, Y, Z int
}

// Offset returns the position shifted by the given deltas.
func (p BlockPos) Offset(dx, dy, dz int) BlockPos {
	return BlockPos{X: p.X + dx, Y: p.Y + dy, Z: p.Z + dz}
}

// Vec3 converts the position to a float vector.
func (p BlockPos) Vec3() mgl32.Vec3 {
	return mgl32.Vec3{float32(p.X), float32(p.Y), float32(p.Z)}
}

// Block is an immutable snapshot of a single block state: a namespaced
// name, its property mapping, and an optional NBT payload (block entity
// data). Blocks are owned by the structure source and read-only here.
type Block struct {
	Name       string
	Properties map[string]string
	NBT        nbt.RawMessage
}

// Property returns the named property value, if set.
func (b Block) Property(name string) (string, bool) {
	v, ok := b.Properties[name]
	return v, ok
}

// IsAir reports whether the block is any air variant.
func (b Block) IsAir() bool {
	switch baseName(b.Name) {
	case "air", "cave_air", "void_air":
		return true
	}
	return false
}

// IsCaveAir reports whether the block is specifically cave air.
func (b Block) IsCaveAir() bool {
	return baseName(b.Name) == "cave_air"
}

// IsWaterlogged reports whether a fluid occupies the block's cell,
// either through the waterlogged property or because the block is
// inherently water-filled.
func (b Block) IsWaterlogged() bool {
	if b.Properties["waterlogged"] == "true" {
		return true
	}
	switch baseName(b.Name) {
	case "water", "bubble_column", "kelp", "kelp_plant", "seagrass", "tall_seagrass":
		return true
	}
	return false
}

// WaterLevel returns the parsed fluid level property, defaulting to 0
// (a source block) when absent or malformed.
func (b Block) WaterLevel() int {
	v, ok := b.Properties["level"]
	if !ok {
		return 0
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return 0
	}
	return n
}

// PlacedBlock is a Block bound to a structure-local position.
type PlacedBlock struct {
	Block
	Pos BlockPos
}

func baseName(name string) string {
	if i := strings.IndexByte(name, ':'); i >= 0 {
		return name[i+1:]
	}
	return name
}
