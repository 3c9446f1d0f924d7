package meshing

import (
	"github.com/go-gl/mathgl/mgl32"

	"structviz/internal/culling"
	"structviz/internal/mesh"
	"structviz/internal/structure"
)

// waterColor is the flat tint applied to fluid quads. Alpha keeps the
// surface in the transparent pass.
var waterColor = mgl32.Vec4{0.25, 0.46, 0.90, 0.72}

// fullClamp disables atlas clamping for untextured fluid quads.
var fullClamp = mgl32.Vec4{0, 0, 1, 1}

// FluidResolver emits water geometry for waterlogged blocks in
// block-local [0,16]³ space. Faces hidden by the water cull record are
// skipped; a culled up face means water continues above and the column
// fills the whole cell.
type FluidResolver struct{}

func NewFluidResolver() *FluidResolver { return &FluidResolver{} }

func (FluidResolver) SpecialGeometry(b structure.Block, pos structure.BlockPos, cull culling.WaterCullResult) (*mesh.Mesh, error) {
	if !b.IsWaterlogged() {
		return nil, nil
	}

	top := surfaceHeight(b.WaterLevel())
	if cull.Culled(culling.FaceUp) {
		top = ModelSpaceSize
	}

	var quads []mesh.Quad

	if !cull.Culled(culling.FaceUp) {
		quads = append(quads, fluidQuad(
			[4]mgl32.Vec3{
				{0, top, 0},
				{0, top, 16},
				{16, top, 16},
				{16, top, 0},
			},
			[4]mgl32.Vec2{{0, 0}, {0, 1}, {1, 1}, {1, 0}},
			mgl32.Vec3{0, 1, 0},
		))
	}
	if !cull.Culled(culling.FaceDown) {
		quads = append(quads, fluidQuad(
			[4]mgl32.Vec3{
				{0, 0, 0},
				{16, 0, 0},
				{16, 0, 16},
				{0, 0, 16},
			},
			[4]mgl32.Vec2{{0, 0}, {1, 0}, {1, 1}, {0, 1}},
			mgl32.Vec3{0, -1, 0},
		))
	}

	vTop := 1 - top/ModelSpaceSize
	sides := []struct {
		face    culling.Face
		corners [4]mgl32.Vec3
		normal  mgl32.Vec3
	}{
		{culling.FaceNorth, [4]mgl32.Vec3{{16, 0, 0}, {0, 0, 0}, {0, top, 0}, {16, top, 0}}, mgl32.Vec3{0, 0, -1}},
		{culling.FaceSouth, [4]mgl32.Vec3{{0, 0, 16}, {16, 0, 16}, {16, top, 16}, {0, top, 16}}, mgl32.Vec3{0, 0, 1}},
		{culling.FaceWest, [4]mgl32.Vec3{{0, 0, 0}, {0, 0, 16}, {0, top, 16}, {0, top, 0}}, mgl32.Vec3{-1, 0, 0}},
		{culling.FaceEast, [4]mgl32.Vec3{{16, 0, 16}, {16, 0, 0}, {16, top, 0}, {16, top, 16}}, mgl32.Vec3{1, 0, 0}},
	}
	for _, s := range sides {
		if cull.Culled(s.face) {
			continue
		}
		quads = append(quads, fluidQuad(
			s.corners,
			[4]mgl32.Vec2{{0, 1}, {1, 1}, {1, vTop}, {0, vTop}},
			s.normal,
		))
	}

	if len(quads) == 0 {
		return nil, nil
	}
	return mesh.FromQuads(quads), nil
}

// fluidQuad builds one water quad. Block-local positions ride along in
// the vertex so the shader can animate the surface per cell.
func fluidQuad(corners [4]mgl32.Vec3, uvs [4]mgl32.Vec2, normal mgl32.Vec3) mesh.Quad {
	q := mesh.Quad{HasBlockPos: true}
	for i := range corners {
		q.Vertices[i] = mesh.Vertex{
			Position: corners[i],
			Color:    waterColor,
			UV:       uvs[i],
			UVClamp:  fullClamp,
			Normal:   normal,
			BlockPos: corners[i].Mul(1 / float32(ModelSpaceSize)),
		}
	}
	return q
}

// surfaceHeight maps a fluid level to the surface height in [0,16]
// space. Level 0 is a full source; each level drops the surface, with a
// floor of one unit.
func surfaceHeight(level int) float32 {
	h := 14 - 1.5*float32(level)
	if h < 1 {
		return 1
	}
	return h
}
