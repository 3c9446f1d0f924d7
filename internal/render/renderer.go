// Package render is the drawing facade: it takes the chunk builder's
// opaque and distance-ordered transparent batches and issues the GL
// passes for a frame.
package render

import (
	_ "embed"
	"fmt"

	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/go-gl/mathgl/mgl32"

	"structviz/internal/graphics"
	"structviz/internal/mesh"
	"structviz/internal/meshing"
	"structviz/internal/profiling"
)

//go:embed shaders/block.vert
var blockVertSrc string

//go:embed shaders/block.frag
var blockFragSrc string

//go:embed shaders/line.vert
var lineVertSrc string

//go:embed shaders/line.frag
var lineFragSrc string

// Context carries the per-frame camera state and timing.
type Context struct {
	View      mgl32.Mat4
	Proj      mgl32.Mat4
	CameraPos mgl32.Vec3
	Time      float32
}

// Renderable is a drawable unit with GL lifecycle hooks.
type Renderable interface {
	Init() error
	Render(ctx Context)
	Dispose()
}

// StructureRenderer draws the structure geometry: an opaque pass, a
// back-to-front transparent pass with depth writes off, and a debug
// line pass.
type StructureRenderer struct {
	builder *meshing.ChunkBuilder
	atlas   *graphics.Atlas

	blockShader *graphics.Shader
	lineShader  *graphics.Shader

	// maxBatchVertices caps the vertex count of a single draw; larger
	// meshes are split and the parts cached per source version.
	maxBatchVertices int
	splits           map[*mesh.Mesh]*splitEntry
}

type splitEntry struct {
	version uint64
	parts   []*mesh.Mesh
}

// NewStructureRenderer creates the renderer. atlas may be nil for
// untextured (flat-shaded) output; maxBatchVertices zero disables
// splitting.
func NewStructureRenderer(builder *meshing.ChunkBuilder, atlas *graphics.Atlas, maxBatchVertices int) (*StructureRenderer, error) {
	if maxBatchVertices != 0 && maxBatchVertices < mesh.VerticesPerQuad {
		return nil, fmt.Errorf("render: batch vertex cap %d cannot hold a quad", maxBatchVertices)
	}
	return &StructureRenderer{
		builder:          builder,
		atlas:            atlas,
		maxBatchVertices: maxBatchVertices,
		splits:           make(map[*mesh.Mesh]*splitEntry),
	}, nil
}

// Init compiles the shader programs. Requires a current GL context.
func (r *StructureRenderer) Init() error {
	blockShader, err := graphics.NewShader(blockVertSrc, blockFragSrc)
	if err != nil {
		return fmt.Errorf("render: block shader: %w", err)
	}
	lineShader, err := graphics.NewShader(lineVertSrc, lineFragSrc)
	if err != nil {
		blockShader.Delete()
		return fmt.Errorf("render: line shader: %w", err)
	}
	r.blockShader = blockShader
	r.lineShader = lineShader
	return nil
}

// Render draws one frame of the structure.
func (r *StructureRenderer) Render(ctx Context) {
	defer profiling.Track("render.StructureRenderer")()

	opaque := r.builder.OpaqueMeshes()
	transparent := r.builder.TransparentMeshesOrderedByDistance(ctx.CameraPos)

	r.blockShader.Use()
	r.blockShader.SetMatrix4("view", &ctx.View[0])
	r.blockShader.SetMatrix4("projection", &ctx.Proj[0])
	r.blockShader.SetFloat("time", ctx.Time)
	r.blockShader.SetVector3("lightDir", -0.5, -1, -0.3)
	r.blockShader.SetBool("useTexture", r.atlas != nil)
	if r.atlas != nil {
		r.atlas.Bind(0)
		r.blockShader.SetInt("atlas", 0)
	}

	gl.Enable(gl.DEPTH_TEST)
	gl.Enable(gl.CULL_FACE)
	gl.Disable(gl.BLEND)
	for _, m := range opaque {
		r.drawBatched(m)
	}

	// Transparent geometry blends back-to-front without touching depth.
	gl.Enable(gl.BLEND)
	gl.BlendFunc(gl.SRC_ALPHA, gl.ONE_MINUS_SRC_ALPHA)
	gl.DepthMask(false)
	for _, m := range transparent {
		r.drawBatched(m)
	}
	gl.DepthMask(true)
	gl.Disable(gl.BLEND)

	r.lineShader.Use()
	r.lineShader.SetMatrix4("view", &ctx.View[0])
	r.lineShader.SetMatrix4("projection", &ctx.Proj[0])
	for _, m := range opaque {
		for _, p := range r.lineSources(m) {
			p.DrawLines()
		}
	}
	for _, m := range transparent {
		for _, p := range r.lineSources(m) {
			p.DrawLines()
		}
	}

	r.pruneSplits(opaque, transparent)
}

// lineSources returns the meshes carrying m's line buffers: the cached
// split parts when m was split this frame, otherwise m itself. Split
// keeps line segments with the first part, and the unsplit source is
// never uploaded, so lines must be drawn from the parts.
func (r *StructureRenderer) lineSources(m *mesh.Mesh) []*mesh.Mesh {
	if entry, ok := r.splits[m]; ok {
		return entry.parts
	}
	return []*mesh.Mesh{m}
}

// pruneSplits evicts split entries whose source mesh was not drawn this
// frame. Chunk rebuilds discard their old meshes, so stale keys would
// otherwise pin dead GPU buffers until Dispose.
func (r *StructureRenderer) pruneSplits(drawn ...[]*mesh.Mesh) {
	if len(r.splits) == 0 {
		return
	}
	seen := make(map[*mesh.Mesh]struct{})
	for _, meshes := range drawn {
		for _, m := range meshes {
			seen[m] = struct{}{}
		}
	}
	for m, entry := range r.splits {
		if _, ok := seen[m]; ok {
			continue
		}
		for _, p := range entry.parts {
			p.Release()
		}
		delete(r.splits, m)
	}
}

// drawBatched uploads and draws a mesh, splitting it when it exceeds
// the batch vertex cap. Split parts are cached until the source mesh
// changes.
func (r *StructureRenderer) drawBatched(m *mesh.Mesh) {
	if r.maxBatchVertices == 0 || m.VertexCount() <= r.maxBatchVertices {
		m.Upload()
		m.Draw()
		return
	}

	entry, ok := r.splits[m]
	if !ok || entry.version != m.Version() {
		if ok {
			for _, p := range entry.parts {
				p.Release()
			}
		}
		parts, err := m.Split(r.maxBatchVertices)
		if err != nil {
			// Cap already validated at construction; draw unsplit.
			m.Upload()
			m.Draw()
			return
		}
		entry = &splitEntry{version: m.Version(), parts: parts}
		r.splits[m] = entry
	}
	for _, p := range entry.parts {
		p.Upload()
		p.Draw()
	}
}

// Dispose frees shaders and cached split buffers.
func (r *StructureRenderer) Dispose() {
	for _, entry := range r.splits {
		for _, p := range entry.parts {
			p.Release()
		}
	}
	r.splits = make(map[*mesh.Mesh]*splitEntry)
	if r.blockShader != nil {
		r.blockShader.Delete()
	}
	if r.lineShader != nil {
		r.lineShader.Delete()
	}
}
