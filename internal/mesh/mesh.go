// Package mesh implements the GPU-ready quad batch: an append-only
// collection of textured quads plus debug line segments, with merge,
// transform and capacity-split operations and per-attribute dirty
// tracking for lazy re-upload.
package mesh

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
)

// VertexStride is the number of float32 per interleaved vertex:
// position(3) + color(4) + uv(2) + uvclamp(4) + normal(3) + blockpos(3).
const VertexStride = 19

// VerticesPerQuad is fixed; a quad is never split across batches.
const VerticesPerQuad = 4

// indicesPerQuad: two triangles per quad.
const indicesPerQuad = 6

// Attr is a bit set of mesh attributes used for dirty tracking.
type Attr uint8

const (
	AttrPositions Attr = 1 << iota
	AttrColors
	AttrUVs
	AttrNormals
	AttrBlockPos
	AttrLines

	attrQuads = AttrPositions | AttrColors | AttrUVs | AttrNormals | AttrBlockPos
)

// Vertex is one corner of a textured quad.
type Vertex struct {
	Position mgl32.Vec3
	Color    mgl32.Vec4
	UV       mgl32.Vec2
	// UVClamp is the min-u, min-v, max-u, max-v box the fragment shader
	// clamps samples into, preventing atlas bleeding on merged batches.
	UVClamp mgl32.Vec4
	Normal  mgl32.Vec3
	// BlockPos is the optional block-local position, meaningful when the
	// owning quad sets HasBlockPos (used e.g. for fluid surface waves).
	BlockPos mgl32.Vec3
}

// Quad is the atomic four-vertex primitive merged into meshes.
type Quad struct {
	Vertices    [4]Vertex
	HasBlockPos bool
}

// Line is a debug line segment.
type Line struct {
	From, To mgl32.Vec3
	Color    mgl32.Vec4
}

// Mesh is an ordered sequence of quads plus a separate line buffer.
// All mutating operations mark the affected attributes dirty; reading
// for draw resolves rebuild-if-dirty, and rebuilds are idempotent.
type Mesh struct {
	quads []Quad
	lines []Line

	dirty   Attr
	version uint64

	vertexData []float32
	indexData  []uint32
	lineData   []float32

	// GPU-side state, owned by this mesh (see gl.go).
	vao, vbo, ebo  uint32
	lineVAO        uint32
	lineVBO        uint32
	uploaded       bool
	gpuVersion     uint64
	gpuIndexCount  int32
	gpuLineVerts   int32
	gpuLineBufCap  int
	gpuQuadBufCap  int
	gpuIndexBufCap int
}

// New creates an empty mesh.
func New() *Mesh {
	return &Mesh{}
}

// FromQuads creates a mesh holding the given quads.
func FromQuads(quads []Quad) *Mesh {
	m := New()
	m.Merge(quads...)
	return m
}

// Merge appends quads. Cost is O(len(quads)).
func (m *Mesh) Merge(quads ...Quad) {
	if len(quads) == 0 {
		return
	}
	m.quads = append(m.quads, quads...)
	m.markDirty(attrQuads)
}

// MergeMesh appends all quads and lines of other.
func (m *Mesh) MergeMesh(other *Mesh) {
	if other == nil {
		return
	}
	if len(other.quads) > 0 {
		m.quads = append(m.quads, other.quads...)
		m.markDirty(attrQuads)
	}
	if len(other.lines) > 0 {
		m.lines = append(m.lines, other.lines...)
		m.markDirty(AttrLines)
	}
}

// MergeAll appends every mesh in order, pre-sizing storage.
func (m *Mesh) MergeAll(meshes []*Mesh) {
	total, totalLines := 0, 0
	for _, o := range meshes {
		if o == nil {
			continue
		}
		total += len(o.quads)
		totalLines += len(o.lines)
	}
	if total > 0 && cap(m.quads)-len(m.quads) < total {
		grown := make([]Quad, len(m.quads), len(m.quads)+total)
		copy(grown, m.quads)
		m.quads = grown
	}
	if totalLines > 0 && cap(m.lines)-len(m.lines) < totalLines {
		grown := make([]Line, len(m.lines), len(m.lines)+totalLines)
		copy(grown, m.lines)
		m.lines = grown
	}
	for _, o := range meshes {
		m.MergeMesh(o)
	}
}

// AddLine appends a debug line segment.
func (m *Mesh) AddLine(from, to mgl32.Vec3, color mgl32.Vec4) {
	m.lines = append(m.lines, Line{From: from, To: to, Color: color})
	m.markDirty(AttrLines)
}

// Transform applies an affine transform to every vertex position and
// line endpoint, and the corresponding normal transform to every
// normal. Block-local positions are left untouched.
func (m *Mesh) Transform(mat mgl32.Mat4) {
	normalMat := mat.Mat3()
	if inv := mat.Inv(); inv != (mgl32.Mat4{}) {
		normalMat = inv.Transpose().Mat3()
	}

	for qi := range m.quads {
		for vi := range m.quads[qi].Vertices {
			v := &m.quads[qi].Vertices[vi]
			v.Position = mat.Mul4x1(v.Position.Vec4(1)).Vec3()
			n := normalMat.Mul3x1(v.Normal)
			if l := n.Len(); l > 0 {
				n = n.Mul(1 / l)
			}
			v.Normal = n
		}
	}
	for li := range m.lines {
		m.lines[li].From = mat.Mul4x1(m.lines[li].From.Vec4(1)).Vec3()
		m.lines[li].To = mat.Mul4x1(m.lines[li].To.Vec4(1)).Vec3()
	}
	if len(m.quads) > 0 {
		m.markDirty(AttrPositions | AttrNormals)
	}
	if len(m.lines) > 0 {
		m.markDirty(AttrLines)
	}
}

// Split partitions the mesh into batches of at most maxVertices
// vertices each. A quad is never split across two batches. Line
// segments stay with the first batch. maxVertices must hold at least
// one quad.
func (m *Mesh) Split(maxVertices int) ([]*Mesh, error) {
	if maxVertices < VerticesPerQuad {
		return nil, fmt.Errorf("mesh: split ceiling %d cannot hold a quad", maxVertices)
	}
	if m.VertexCount() <= maxVertices {
		return []*Mesh{m}, nil
	}
	quadsPerBatch := maxVertices / VerticesPerQuad
	var out []*Mesh
	for start := 0; start < len(m.quads); start += quadsPerBatch {
		end := start + quadsPerBatch
		if end > len(m.quads) {
			end = len(m.quads)
		}
		part := New()
		part.Merge(m.quads[start:end]...)
		if start == 0 && len(m.lines) > 0 {
			part.lines = append(part.lines, m.lines...)
			part.markDirty(AttrLines)
		}
		out = append(out, part)
	}
	return out, nil
}

// QuadCount returns the number of quads.
func (m *Mesh) QuadCount() int { return len(m.quads) }

// VertexCount returns the number of quad vertices.
func (m *Mesh) VertexCount() int { return len(m.quads) * VerticesPerQuad }

// LineCount returns the number of debug line segments.
func (m *Mesh) LineCount() int { return len(m.lines) }

// Empty reports whether the mesh holds no quads and no lines.
func (m *Mesh) Empty() bool { return len(m.quads) == 0 && len(m.lines) == 0 }

// Version is a monotonic change counter, bumped by every mutation.
func (m *Mesh) Version() uint64 { return m.version }

// Dirty reports whether any attribute changed since the last rebuild.
func (m *Mesh) Dirty() bool { return m.dirty != 0 }

// DirtyAttrs returns the currently dirty attribute set.
func (m *Mesh) DirtyAttrs() Attr { return m.dirty }

// Quads exposes the quad slice for read-only inspection.
func (m *Mesh) Quads() []Quad { return m.quads }

// VertexData returns the interleaved vertex buffer, rebuilding it if
// any quad attribute is dirty. The rebuild is idempotent: an unchanged
// mesh always yields identical buffer contents.
func (m *Mesh) VertexData() []float32 {
	if m.dirty&attrQuads != 0 || m.vertexData == nil {
		m.rebuildQuadBuffers()
		m.dirty &^= attrQuads
	}
	return m.vertexData
}

// IndexData returns the triangle index buffer matching VertexData.
func (m *Mesh) IndexData() []uint32 {
	m.VertexData()
	return m.indexData
}

// LineData returns the interleaved line vertex buffer (position +
// color), rebuilding it if the line attribute is dirty.
func (m *Mesh) LineData() []float32 {
	if m.dirty&AttrLines != 0 || (m.lineData == nil && len(m.lines) > 0) {
		m.rebuildLineBuffer()
		m.dirty &^= AttrLines
	}
	return m.lineData
}

func (m *Mesh) markDirty(bits Attr) {
	m.dirty |= bits
	m.version++
}

func (m *Mesh) rebuildQuadBuffers() {
	need := len(m.quads) * VerticesPerQuad * VertexStride
	if cap(m.vertexData) < need {
		m.vertexData = make([]float32, 0, need)
	}
	m.vertexData = m.vertexData[:0]
	for _, q := range m.quads {
		for _, v := range q.Vertices {
			m.vertexData = append(m.vertexData,
				v.Position[0], v.Position[1], v.Position[2],
				v.Color[0], v.Color[1], v.Color[2], v.Color[3],
				v.UV[0], v.UV[1],
				v.UVClamp[0], v.UVClamp[1], v.UVClamp[2], v.UVClamp[3],
				v.Normal[0], v.Normal[1], v.Normal[2],
				v.BlockPos[0], v.BlockPos[1], v.BlockPos[2],
			)
		}
	}

	needIdx := len(m.quads) * indicesPerQuad
	if cap(m.indexData) < needIdx {
		m.indexData = make([]uint32, 0, needIdx)
	}
	m.indexData = m.indexData[:0]
	for i := range m.quads {
		base := uint32(i * VerticesPerQuad)
		m.indexData = append(m.indexData, base, base+1, base+2, base+2, base+3, base)
	}
}

func (m *Mesh) rebuildLineBuffer() {
	need := len(m.lines) * 2 * 7
	if cap(m.lineData) < need {
		m.lineData = make([]float32, 0, need)
	}
	m.lineData = m.lineData[:0]
	for _, l := range m.lines {
		m.lineData = append(m.lineData,
			l.From[0], l.From[1], l.From[2], l.Color[0], l.Color[1], l.Color[2], l.Color[3],
			l.To[0], l.To[1], l.To[2], l.Color[0], l.Color[1], l.Color[2], l.Color[3],
		)
	}
}
