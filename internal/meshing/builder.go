// Package meshing partitions a voxel structure into fixed-size chunks
// and builds GPU-ready opaque and transparent quad batches for every
// occupied chunk, applying per-face culling between neighboring blocks.
package meshing

import (
	"errors"
	"fmt"

	"github.com/go-gl/mathgl/mgl32"

	"structviz/internal/culling"
	"structviz/internal/floatsort"
	"structviz/internal/logger"
	"structviz/internal/mesh"
	"structviz/internal/profiling"
	"structviz/internal/structure"
)

// DefaultChunkSize is the edge length of a chunk cell in blocks.
const DefaultChunkSize = 16

// ModelSpaceSize is the edge length of the block-local coordinate space
// geometry resolvers produce ([0,16]³ maps onto one world-space block).
const ModelSpaceSize = 16

// maxChunkCoord bounds chunk coordinates. The grid is a dense nested
// array per axis, so an absurd coordinate would allocate a branch
// proportional to its magnitude; such input is rejected up front.
const maxChunkCoord = 1 << 20

// BlockSource enumerates placed blocks and answers point lookups. It is
// the structure provider the builder reads from; the builder never
// mutates it.
type BlockSource interface {
	Blocks() []structure.PlacedBlock
	BlockAt(structure.BlockPos) (structure.Block, bool)
}

// ModelResolver returns block-local model geometry in [0,16]³ for a
// resolved block name, its merged properties, and the shape cull result.
type ModelResolver interface {
	BlockGeometry(name string, properties map[string]string, cull culling.ShapeCullResult) (*mesh.Mesh, error)
}

// SpecialGeometryResolver returns supplementary non-model geometry
// (fluids and similar) in [0,16]³, gated by the water cull result.
type SpecialGeometryResolver interface {
	SpecialGeometry(b structure.Block, pos structure.BlockPos, cull culling.WaterCullResult) (*mesh.Mesh, error)
}

// BlockMetadata is the full metadata service surface the builder needs.
type BlockMetadata interface {
	culling.Metadata
	SemiTransparentOverride(name string) (value, ok bool)
	DefaultProperties(name string) map[string]string
	IsNonTransparent(b structure.Block) bool
}

// BlockError records a recoverable per-block geometry failure. The
// block is skipped; the rebuild continues.
type BlockError struct {
	Pos  structure.BlockPos
	Name string
	Err  error
}

func (e BlockError) Error() string {
	return fmt.Sprintf("block %q at (%d,%d,%d): %v", e.Name, e.Pos.X, e.Pos.Y, e.Pos.Z, e.Err)
}

func (e BlockError) Unwrap() error { return e.Err }

// ChunkBuilder maintains one chunk per occupied grid cell, each holding
// disjoint opaque and transparent geometry for the blocks inside it.
// It is single-writer: callers must not mutate the source concurrently
// with an in-flight rebuild, and all reads happen-before the next call.
type ChunkBuilder struct {
	chunkSize int
	source    BlockSource
	models    ModelResolver
	special   SpecialGeometryResolver
	meta      BlockMetadata

	grid     *chunkGrid
	failures []BlockError

	// scratch reused across frames for transparent ordering
	sortKeys   []float32
	sortChunks []*Chunk
}

// NewChunkBuilder creates a builder. chunkSize must be positive; models
// and meta are required, special may be nil.
func NewChunkBuilder(chunkSize int, models ModelResolver, special SpecialGeometryResolver, meta BlockMetadata) (*ChunkBuilder, error) {
	if chunkSize < 1 {
		return nil, fmt.Errorf("meshing: chunk size must be positive, got %d", chunkSize)
	}
	if models == nil {
		return nil, errors.New("meshing: model resolver is required")
	}
	if meta == nil {
		return nil, errors.New("meshing: block metadata is required")
	}
	return &ChunkBuilder{
		chunkSize: chunkSize,
		models:    models,
		special:   special,
		meta:      meta,
		grid:      newChunkGrid(),
	}, nil
}

// ChunkSize returns the configured chunk edge length.
func (b *ChunkBuilder) ChunkSize() int { return b.chunkSize }

// ChunkCoordFor maps a block position to its chunk coordinate.
func (b *ChunkBuilder) ChunkCoordFor(pos structure.BlockPos) ChunkCoord {
	return ChunkCoord{
		X: floorDiv(pos.X, b.chunkSize),
		Y: floorDiv(pos.Y, b.chunkSize),
		Z: floorDiv(pos.Z, b.chunkSize),
	}
}

// UpdateStructureBuffers rebuilds chunk geometry from the source.
// Passing no changed coordinates (or a source different from the last
// call) triggers a full rebuild; otherwise only the named chunks are
// cleared and rebuilt, leaving all others untouched.
//
// A geometry failure on a single block is logged, recorded (see
// BlockErrors) and skipped. A water-cull invariant violation aborts the
// rebuild with culling.ErrWaterCullInvariant.
func (b *ChunkBuilder) UpdateStructureBuffers(source BlockSource, changed ...ChunkCoord) error {
	defer profiling.Track("meshing.UpdateStructureBuffers")()

	if source == nil {
		return errors.New("meshing: nil structure source")
	}
	for _, c := range changed {
		if err := validateChunkCoord(c); err != nil {
			return err
		}
	}

	b.failures = b.failures[:0]

	// Structure (re)assignment resets the grid and forces a full rebuild.
	if source != b.source {
		b.grid.release()
		b.grid = newChunkGrid()
		b.source = source
		changed = nil
	}

	if len(changed) == 0 {
		b.grid.release()
		b.grid = newChunkGrid()
		return b.rebuild(nil)
	}

	set := make(map[ChunkCoord]struct{}, len(changed))
	for _, c := range changed {
		set[c] = struct{}{}
		if ch := b.grid.at(c); ch != nil {
			ch.clear()
		}
	}
	return b.rebuild(set)
}

// rebuild fills chunks from the source, restricted to the given chunk
// set when non-nil.
func (b *ChunkBuilder) rebuild(only map[ChunkCoord]struct{}) error {
	for _, pb := range b.source.Blocks() {
		if pb.IsAir() {
			continue
		}
		coord := b.ChunkCoordFor(pb.Pos)
		if err := validateChunkCoord(coord); err != nil {
			return err
		}
		if only != nil {
			if _, ok := only[coord]; !ok {
				continue
			}
		}
		ch := b.grid.ensure(coord)
		if err := b.buildBlock(ch, pb); err != nil {
			return err
		}
	}
	if n := len(b.failures); n > 0 {
		logger.Sugar.Warnw("structure rebuild finished with skipped blocks", "skipped", n)
	}
	return nil
}

// buildBlock appends one block's geometry to its chunk. Only the
// water-cull invariant violation is returned as an error; resolver
// failures are recorded and the block skipped.
func (b *ChunkBuilder) buildBlock(ch *Chunk, pb structure.PlacedBlock) error {
	block := pb.Block
	if defaults := b.meta.DefaultProperties(block.Name); len(defaults) > 0 {
		block.Properties = mergeProperties(block.Properties, defaults)
	}

	neighbor := func(f culling.Face) (structure.Block, bool) {
		dx, dy, dz := f.Offset()
		return b.source.BlockAt(pb.Pos.Offset(dx, dy, dz))
	}

	shape := culling.ShapeCull(block, neighbor, b.meta)
	water, err := culling.WaterCull(block, neighbor, b.meta)
	if err != nil {
		return err
	}

	transparent := b.isTransparent(block)

	if geom, err := b.models.BlockGeometry(block.Name, block.Properties, shape); err != nil {
		b.recordFailure(pb, fmt.Errorf("model geometry: %w", err))
	} else if geom != nil && !geom.Empty() {
		geom.Transform(blockTransform(pb.Pos))
		if transparent {
			ch.appendTransparent(geom.Quads())
		} else {
			ch.appendOpaque(geom.Quads())
		}
	}

	if b.special != nil {
		if geom, err := b.special.SpecialGeometry(block, pb.Pos, water); err != nil {
			b.recordFailure(pb, fmt.Errorf("special geometry: %w", err))
		} else if geom != nil && !geom.Empty() {
			geom.Transform(blockTransform(pb.Pos))
			// Fluid surfaces always draw in the transparent pass.
			ch.appendTransparent(geom.Quads())
		}
	}
	return nil
}

// OpaqueMeshes returns one merged mesh per chunk with opaque geometry.
// Pending quads appended since the last read are merged in; repeated
// calls without an intervening update return identical data.
func (b *ChunkBuilder) OpaqueMeshes() []*mesh.Mesh {
	defer profiling.Track("meshing.OpaqueMeshes")()

	var out []*mesh.Mesh
	b.grid.forEach(func(_ ChunkCoord, ch *Chunk) {
		m := ch.OpaqueMesh()
		if !m.Empty() {
			out = append(out, m)
		}
	})
	return out
}

// TransparentMeshesOrderedByDistance returns the merged transparent
// meshes of all non-empty chunks ordered back-to-front relative to the
// camera position. Ordering is recomputed on every call; ties keep the
// grid enumeration order (the sort is stable).
func (b *ChunkBuilder) TransparentMeshesOrderedByDistance(camera mgl32.Vec3) []*mesh.Mesh {
	defer profiling.Track("meshing.TransparentMeshesOrderedByDistance")()

	keys := b.sortKeys[:0]
	chunks := b.sortChunks[:0]
	half := float32(b.chunkSize) / 2
	b.grid.forEach(func(coord ChunkCoord, ch *Chunk) {
		if ch.empty() {
			return
		}
		center := mgl32.Vec3{
			float32(coord.X*b.chunkSize) + half,
			float32(coord.Y*b.chunkSize) + half,
			float32(coord.Z*b.chunkSize) + half,
		}
		d := center.Sub(camera)
		// Negated squared distance sorts ascending into farthest-first.
		keys = append(keys, -d.Dot(d))
		chunks = append(chunks, ch)
	})

	floatsort.SortWithPayload(keys, chunks)
	b.sortKeys, b.sortChunks = keys, chunks

	out := make([]*mesh.Mesh, 0, len(chunks))
	for _, ch := range chunks {
		m := ch.TransparentMesh()
		if !m.Empty() {
			out = append(out, m)
		}
	}
	return out
}

// BlockErrors returns the per-block failures recorded by the last
// update call.
func (b *ChunkBuilder) BlockErrors() []BlockError {
	return b.failures
}

// ChunkCount returns the number of allocated chunks.
func (b *ChunkBuilder) ChunkCount() int {
	n := 0
	b.grid.forEach(func(_ ChunkCoord, _ *Chunk) { n++ })
	return n
}

func (b *ChunkBuilder) isTransparent(block structure.Block) bool {
	if v, ok := b.meta.SemiTransparentOverride(block.Name); ok {
		return v
	}
	return !b.meta.IsNonTransparent(block)
}

func (b *ChunkBuilder) recordFailure(pb structure.PlacedBlock, err error) {
	be := BlockError{Pos: pb.Pos, Name: pb.Name, Err: err}
	b.failures = append(b.failures, be)
	logger.Sugar.Warnw("skipping block geometry",
		"block", pb.Name,
		"x", pb.Pos.X, "y", pb.Pos.Y, "z", pb.Pos.Z,
		"err", err,
	)
}

// blockTransform moves [0,16]³ block-local geometry into world space.
func blockTransform(pos structure.BlockPos) mgl32.Mat4 {
	s := float32(1) / ModelSpaceSize
	return mgl32.Translate3D(float32(pos.X), float32(pos.Y), float32(pos.Z)).
		Mul4(mgl32.Scale3D(s, s, s))
}

func validateChunkCoord(c ChunkCoord) error {
	for _, v := range [3]int{c.X, c.Y, c.Z} {
		if v < -maxChunkCoord || v > maxChunkCoord {
			return fmt.Errorf("meshing: chunk coordinate %+v out of range", c)
		}
	}
	return nil
}

func floorDiv(a, b int) int {
	q := a / b
	if a%b != 0 && (a < 0) != (b < 0) {
		q--
	}
	return q
}

func mergeProperties(props, defaults map[string]string) map[string]string {
	merged := make(map[string]string, len(props)+len(defaults))
	for k, v := range defaults {
		merged[k] = v
	}
	for k, v := range props {
		merged[k] = v
	}
	return merged
}
