package culling

import (
	"errors"
	"fmt"
	"testing"

	"structviz/internal/structure"
)

type fakeMeta struct {
	selfCulling map[string]bool
	overrides   map[string]bool
	notFullCube map[string]bool
	notOpaque   map[string]bool
}

func (m fakeMeta) SelfCulling(name string) bool { return m.selfCulling[name] }

func (m fakeMeta) OpaqueOverride(name string) (bool, bool) {
	v, ok := m.overrides[name]
	return v, ok
}

func (m fakeMeta) IsFullCube(b structure.Block) bool {
	return !b.IsAir() && !m.notFullCube[b.Name]
}

func (m fakeMeta) IsOpaque(b structure.Block) bool {
	return !b.IsAir() && !m.notOpaque[b.Name]
}

func neighbors(blocks map[Face]structure.Block) NeighborFunc {
	return func(f Face) (structure.Block, bool) {
		b, ok := blocks[f]
		return b, ok
	}
}

func stone() structure.Block { return structure.Block{Name: "minecraft:stone"} }

func waterlogged(level string) structure.Block {
	return structure.Block{
		Name:       "minecraft:sea_pickle",
		Properties: map[string]string{"waterlogged": "true", "level": level},
	}
}

func TestShapeCullNoNeighbors(t *testing.T) {
	res := ShapeCull(stone(), neighbors(nil), fakeMeta{})
	for _, f := range Faces() {
		if res.Culled(f) {
			t.Fatalf("face %s culled with no neighbors", f)
		}
	}
}

func TestShapeCullAirNeighborsRender(t *testing.T) {
	n := map[Face]structure.Block{
		FaceUp:   {Name: "minecraft:air"},
		FaceDown: {Name: "minecraft:cave_air"},
	}
	res := ShapeCull(stone(), neighbors(n), fakeMeta{})
	for _, f := range Faces() {
		if res.Culled(f) {
			t.Fatalf("face %s culled against air", f)
		}
	}
}

func TestShapeCullOpaqueSurroundCullsAll(t *testing.T) {
	n := map[Face]structure.Block{}
	for _, f := range Faces() {
		n[f] = stone()
	}
	res := ShapeCull(stone(), neighbors(n), fakeMeta{})
	for _, f := range Faces() {
		if !res.Culled(f) {
			t.Fatalf("face %s not culled against opaque neighbor", f)
		}
	}
}

func TestShapeCullNonFullCubeNeverCulls(t *testing.T) {
	meta := fakeMeta{notFullCube: map[string]bool{"minecraft:sea_pickle": true}}
	n := map[Face]structure.Block{}
	for _, f := range Faces() {
		n[f] = stone()
	}
	b := structure.Block{Name: "minecraft:sea_pickle"}
	res := ShapeCull(b, neighbors(n), meta)
	for _, f := range Faces() {
		if res.Culled(f) {
			t.Fatalf("non-full-cube face %s culled", f)
		}
	}
}

func TestShapeCullSelfCullingBeatsTransparency(t *testing.T) {
	meta := fakeMeta{
		selfCulling: map[string]bool{"minecraft:glass": true},
		notOpaque:   map[string]bool{"minecraft:glass": true},
	}
	glass := structure.Block{Name: "minecraft:glass"}
	n := map[Face]structure.Block{FaceEast: glass, FaceWest: stone()}

	res := ShapeCull(glass, neighbors(n), meta)
	if !res.Culled(FaceEast) {
		t.Fatal("identical self-culling neighbor did not hide the shared face")
	}
	if !res.Culled(FaceWest) {
		t.Fatal("opaque neighbor did not hide the face")
	}
	if res.Culled(FaceNorth) {
		t.Fatal("missing neighbor culled a face")
	}
}

func TestShapeCullHonorsOpaqueOverride(t *testing.T) {
	// Neighbor queries as opaque, but an explicit override says it is not.
	meta := fakeMeta{overrides: map[string]bool{"minecraft:stone": false}}
	n := map[Face]structure.Block{FaceUp: stone()}

	res := ShapeCull(stone(), neighbors(n), meta)
	if res.Culled(FaceUp) {
		t.Fatal("override to non-opaque should keep the face visible")
	}
}

func TestWaterCullNeighborWaterCarriesLevel(t *testing.T) {
	meta := fakeMeta{notOpaque: map[string]bool{"minecraft:sea_pickle": true}}
	n := map[Face]structure.Block{FaceNorth: waterlogged("3")}

	res, err := WaterCull(waterlogged("0"), neighbors(n), meta)
	if err != nil {
		t.Fatalf("WaterCull: %v", err)
	}
	if !res.Culled(FaceNorth) {
		t.Fatal("water face against waterlogged neighbor should be hidden")
	}
	if got := res.Levels[FaceNorth].Level; got != 3 {
		t.Fatalf("carried level: got %d, want 3", got)
	}
	if res.Culled(FaceSouth) {
		t.Fatal("face with no neighbor should render")
	}
}

func TestWaterCullUpFaceRendersUnderOpaque(t *testing.T) {
	n := map[Face]structure.Block{
		FaceUp:    stone(),
		FaceNorth: stone(),
	}
	res, err := WaterCull(waterlogged("0"), neighbors(n), fakeMeta{})
	if err != nil {
		t.Fatalf("WaterCull: %v", err)
	}
	if res.Culled(FaceUp) {
		t.Fatal("water surface under an opaque block must still render")
	}
	if !res.Culled(FaceNorth) {
		t.Fatal("water side against an opaque block should be hidden")
	}
}

func TestWaterCullTransparentNeighborRenders(t *testing.T) {
	meta := fakeMeta{notOpaque: map[string]bool{"minecraft:glass": true}}
	n := map[Face]structure.Block{FaceEast: {Name: "minecraft:glass"}}

	res, err := WaterCull(waterlogged("0"), neighbors(n), meta)
	if err != nil {
		t.Fatalf("WaterCull: %v", err)
	}
	if res.Culled(FaceEast) {
		t.Fatal("water face against a transparent neighbor should render")
	}
}

func TestWaterCullNonWaterloggedAlwaysHidden(t *testing.T) {
	n := map[Face]structure.Block{
		FaceUp:   stone(),
		FaceDown: waterlogged("2"),
	}
	res, err := WaterCull(stone(), neighbors(n), fakeMeta{})
	if err != nil {
		t.Fatalf("WaterCull: %v", err)
	}
	if !res.Culled(FaceUp) || !res.Culled(FaceDown) {
		t.Fatal("non-waterlogged block should hide every water face with a neighbor")
	}
	if got := res.Levels[FaceDown].Level; got != 2 {
		t.Fatalf("carried level: got %d, want 2", got)
	}
}

func TestErrWaterCullInvariantIsSentinel(t *testing.T) {
	wrapped := fmt.Errorf("rebuild aborted: %w", ErrWaterCullInvariant)
	if !errors.Is(wrapped, ErrWaterCullInvariant) {
		t.Fatal("wrapped invariant error does not match the sentinel")
	}
}
