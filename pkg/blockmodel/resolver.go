package blockmodel

import (
	"fmt"
	"sort"
	"strings"

	"github.com/go-gl/mathgl/mgl32"

	"structviz/internal/culling"
	"structviz/internal/mesh"
	"structviz/internal/structure"
)

// modelSpace is the edge length of the element coordinate space.
const modelSpace = 16

// AtlasLookup maps a resolved texture name to its normalized region
// (min-u, min-v, max-u, max-v) on the texture atlas.
type AtlasLookup interface {
	Region(texture string) (mgl32.Vec4, bool)
}

// Resolver turns blockstate variants and their models into quad
// geometry in [0,16]³ block-local space. It also answers the shape
// queries (full cube, opacity) the cull rules need, inferred from the
// resolved model elements.
//
// Element rotation is not modeled (see Model); rotated elements are
// emitted axis-aligned.
type Resolver struct {
	loader *Loader
	atlas  AtlasLookup
}

// NewResolver creates a resolver. atlas may be nil, in which case UVs
// span the full [0,1] texture range.
func NewResolver(loader *Loader, atlas AtlasLookup) *Resolver {
	return &Resolver{loader: loader, atlas: atlas}
}

// Per-face brightness, matching classic directional block shading.
var faceShade = map[string]float32{
	"up":    1.0,
	"down":  0.5,
	"north": 0.8,
	"south": 0.8,
	"west":  0.6,
	"east":  0.6,
}

var faceOrder = []string{"down", "up", "north", "south", "west", "east"}

// BlockGeometry resolves the blockstate variant for the given name and
// properties and emits its model elements as quads, omitting faces the
// cull result hides.
func (r *Resolver) BlockGeometry(name string, properties map[string]string, cull culling.ShapeCullResult) (*mesh.Mesh, error) {
	model, err := r.resolveModel(name, properties)
	if err != nil {
		return nil, err
	}

	var quads []mesh.Quad
	for _, elem := range model.Elements {
		for _, dir := range faceOrder {
			face, ok := elem.Faces[dir]
			if !ok {
				continue
			}
			if cf, ok := cullFaceFor(face.CullFace); ok && cull.Culled(cf) {
				continue
			}
			quads = append(quads, r.faceQuad(elem, dir, face))
		}
	}

	if len(quads) == 0 {
		return nil, nil
	}
	return mesh.FromQuads(quads), nil
}

func (r *Resolver) resolveModel(name string, properties map[string]string) (*Model, error) {
	state, err := r.loader.LoadBlockState(name)
	if err != nil {
		return nil, err
	}
	variant, ok := selectVariant(state, properties)
	if !ok {
		return nil, fmt.Errorf("blockmodel: no variant of %q matches properties %v", name, properties)
	}
	return r.loader.LoadModel(variant.Model)
}

// selectVariant picks the most specific variant whose property
// conditions all hold. The empty and "normal" keys match anything.
// Candidate keys are walked in sorted order so selection is
// deterministic.
func selectVariant(state *BlockState, properties map[string]string) (Variant, bool) {
	keys := make([]string, 0, len(state.Variants))
	for k := range state.Variants {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	best := ""
	bestSpecificity := -1
	for _, k := range keys {
		conds := parseVariantKey(k)
		if !condsMatch(conds, properties) {
			continue
		}
		if len(conds) > bestSpecificity {
			best, bestSpecificity = k, len(conds)
		}
	}
	if bestSpecificity < 0 {
		return Variant{}, false
	}
	variants := state.Variants[best]
	if len(variants) == 0 {
		return Variant{}, false
	}
	return variants[0], true
}

func parseVariantKey(key string) map[string]string {
	if key == "" || key == "normal" {
		return nil
	}
	conds := make(map[string]string)
	for _, pair := range strings.Split(key, ",") {
		if k, v, ok := strings.Cut(pair, "="); ok {
			conds[k] = v
		}
	}
	return conds
}

func condsMatch(conds, properties map[string]string) bool {
	for k, want := range conds {
		if properties[k] != want {
			return false
		}
	}
	return true
}

func cullFaceFor(name string) (culling.Face, bool) {
	switch name {
	case "down", "bottom":
		return culling.FaceDown, true
	case "up", "top":
		return culling.FaceUp, true
	case "north":
		return culling.FaceNorth, true
	case "south":
		return culling.FaceSouth, true
	case "west":
		return culling.FaceWest, true
	case "east":
		return culling.FaceEast, true
	default:
		return 0, false
	}
}

// faceQuad emits one element face as a quad in [0,16]³ space, keeping
// sub-voxel element precision.
func (r *Resolver) faceQuad(elem Element, dir string, face Face) mesh.Quad {
	x0, y0, z0 := elem.From[0], elem.From[1], elem.From[2]
	x1, y1, z1 := elem.To[0], elem.To[1], elem.To[2]

	var corners [4]mgl32.Vec3
	var normal mgl32.Vec3
	switch dir {
	case "up":
		corners = [4]mgl32.Vec3{{x0, y1, z0}, {x0, y1, z1}, {x1, y1, z1}, {x1, y1, z0}}
		normal = mgl32.Vec3{0, 1, 0}
	case "down":
		corners = [4]mgl32.Vec3{{x0, y0, z0}, {x1, y0, z0}, {x1, y0, z1}, {x0, y0, z1}}
		normal = mgl32.Vec3{0, -1, 0}
	case "north":
		corners = [4]mgl32.Vec3{{x1, y0, z0}, {x0, y0, z0}, {x0, y1, z0}, {x1, y1, z0}}
		normal = mgl32.Vec3{0, 0, -1}
	case "south":
		corners = [4]mgl32.Vec3{{x0, y0, z1}, {x1, y0, z1}, {x1, y1, z1}, {x0, y1, z1}}
		normal = mgl32.Vec3{0, 0, 1}
	case "west":
		corners = [4]mgl32.Vec3{{x0, y0, z0}, {x0, y0, z1}, {x0, y1, z1}, {x0, y1, z0}}
		normal = mgl32.Vec3{-1, 0, 0}
	default: // east
		corners = [4]mgl32.Vec3{{x1, y0, z1}, {x1, y0, z0}, {x1, y1, z0}, {x1, y1, z1}}
		normal = mgl32.Vec3{1, 0, 0}
	}

	uvs := faceUVs(elem, dir, face)
	region := mgl32.Vec4{0, 0, 1, 1}
	if r.atlas != nil {
		if reg, ok := r.atlas.Region(face.Texture); ok {
			region = reg
		}
	}

	shade := faceShade[dir]
	q := mesh.Quad{}
	for i := range corners {
		u := region[0] + uvs[i][0]*(region[2]-region[0])
		v := region[1] + uvs[i][1]*(region[3]-region[1])
		q.Vertices[i] = mesh.Vertex{
			Position: corners[i],
			Color:    mgl32.Vec4{shade, shade, shade, 1},
			UV:       mgl32.Vec2{u, v},
			UVClamp:  region,
			Normal:   normal,
		}
	}
	return q
}

// faceUVs returns normalized texture coordinates per corner, in the
// corner order faceQuad emits. Explicit face UVs are honored; otherwise
// they derive from the element bounds. Texture v grows downward.
func faceUVs(elem Element, dir string, face Face) [4]mgl32.Vec2 {
	uv := face.UV
	if uv == ([4]float32{}) {
		uv = defaultUV(elem, dir)
	}
	u1, v1 := uv[0]/modelSpace, uv[1]/modelSpace
	u2, v2 := uv[2]/modelSpace, uv[3]/modelSpace

	switch dir {
	case "up":
		return [4]mgl32.Vec2{{u1, v1}, {u1, v2}, {u2, v2}, {u2, v1}}
	case "down":
		return [4]mgl32.Vec2{{u1, v1}, {u2, v1}, {u2, v2}, {u1, v2}}
	default:
		// Sides all share bottom-bottom-top-top corner order.
		return [4]mgl32.Vec2{{u1, v2}, {u2, v2}, {u2, v1}, {u1, v1}}
	}
}

func defaultUV(elem Element, dir string) [4]float32 {
	switch dir {
	case "up", "down":
		return [4]float32{elem.From[0], elem.From[2], elem.To[0], elem.To[2]}
	case "north", "south":
		return [4]float32{elem.From[0], modelSpace - elem.To[1], elem.To[0], modelSpace - elem.From[1]}
	default:
		return [4]float32{elem.From[2], modelSpace - elem.To[1], elem.To[2], modelSpace - elem.From[1]}
	}
}

// IsFullCube reports whether any element of the block's resolved model
// spans the whole cell.
func (r *Resolver) IsFullCube(b structure.Block) bool {
	if b.IsAir() {
		return false
	}
	model, err := r.resolveModel(b.Name, b.Properties)
	if err != nil {
		return false
	}
	const epsilon = 0.001
	for _, e := range model.Elements {
		if near(e.From, 0, epsilon) && near(e.To, modelSpace, epsilon) {
			return true
		}
	}
	return false
}

// IsOpaque approximates opacity by shape: a full-cube model hides
// whatever is behind it. Per-name overrides refine this upstream.
func (r *Resolver) IsOpaque(b structure.Block) bool {
	return r.IsFullCube(b)
}

// IsNonTransparent routes full-cube blocks to the opaque draw pass.
func (r *Resolver) IsNonTransparent(b structure.Block) bool {
	return r.IsFullCube(b)
}

func near(v [3]float32, target, epsilon float32) bool {
	for _, c := range v {
		if c < target-epsilon || c > target+epsilon {
			return false
		}
	}
	return true
}
