package meshing

import (
	"structviz/internal/mesh"
)

// Chunk accumulates geometry for one fixed-size cell of the structure
// grid. Quads land in pending lists first and are folded into the
// cached merged meshes lazily, so repeated reads cost O(pending since
// last read) rather than O(total).
type Chunk struct {
	pendingOpaque      []mesh.Quad
	pendingTransparent []mesh.Quad

	opaque      *mesh.Mesh
	transparent *mesh.Mesh
}

func newChunk() *Chunk {
	return &Chunk{
		opaque:      mesh.New(),
		transparent: mesh.New(),
	}
}

// clear drops all pending and cached state and releases GPU buffers
// owned by the cached meshes. Called before a chunk is rebuilt.
func (c *Chunk) clear() {
	c.opaque.Release()
	c.transparent.Release()
	c.opaque = mesh.New()
	c.transparent = mesh.New()
	c.pendingOpaque = nil
	c.pendingTransparent = nil
}

func (c *Chunk) appendOpaque(quads []mesh.Quad) {
	c.pendingOpaque = append(c.pendingOpaque, quads...)
}

func (c *Chunk) appendTransparent(quads []mesh.Quad) {
	c.pendingTransparent = append(c.pendingTransparent, quads...)
}

// OpaqueMesh drains pending opaque quads into the cached mesh and
// returns it. Pending quads are merged exactly once.
func (c *Chunk) OpaqueMesh() *mesh.Mesh {
	if len(c.pendingOpaque) > 0 {
		c.opaque.Merge(c.pendingOpaque...)
		c.pendingOpaque = c.pendingOpaque[:0]
	}
	return c.opaque
}

// TransparentMesh drains pending transparent quads into the cached
// mesh and returns it.
func (c *Chunk) TransparentMesh() *mesh.Mesh {
	if len(c.pendingTransparent) > 0 {
		c.transparent.Merge(c.pendingTransparent...)
		c.pendingTransparent = c.pendingTransparent[:0]
	}
	return c.transparent
}

// empty reports whether the chunk holds no geometry at all.
func (c *Chunk) empty() bool {
	return len(c.pendingOpaque) == 0 && len(c.pendingTransparent) == 0 &&
		c.opaque.Empty() && c.transparent.Empty()
}
