package meshing

import (
	"testing"

	"structviz/internal/culling"
	"structviz/internal/structure"
)

func waterBlock(level string) structure.Block {
	return structure.Block{
		Name:       "minecraft:water",
		Properties: map[string]string{"level": level},
	}
}

func TestFluidResolverIgnoresDryBlocks(t *testing.T) {
	r := NewFluidResolver()
	m, err := r.SpecialGeometry(structure.Block{Name: "minecraft:stone"}, structure.BlockPos{}, culling.WaterCullResult{})
	if err != nil {
		t.Fatalf("SpecialGeometry: %v", err)
	}
	if m != nil {
		t.Fatal("dry block produced fluid geometry")
	}
}

func TestFluidResolverEmitsAllFacesWhenUncovered(t *testing.T) {
	r := NewFluidResolver()
	m, err := r.SpecialGeometry(waterBlock("0"), structure.BlockPos{}, culling.WaterCullResult{})
	if err != nil {
		t.Fatalf("SpecialGeometry: %v", err)
	}
	if m == nil || m.QuadCount() != 6 {
		t.Fatalf("quad count: got %v, want 6", m.QuadCount())
	}
	for i, q := range m.Quads() {
		if !q.HasBlockPos {
			t.Fatalf("quad %d missing block-local positions", i)
		}
	}
}

func TestFluidResolverSkipsCulledFaces(t *testing.T) {
	r := NewFluidResolver()
	var cull culling.WaterCullResult
	cull.Levels[culling.FaceDown] = culling.WaterLevel{Valid: true}
	cull.Levels[culling.FaceNorth] = culling.WaterLevel{Valid: true}

	m, err := r.SpecialGeometry(waterBlock("0"), structure.BlockPos{}, cull)
	if err != nil {
		t.Fatalf("SpecialGeometry: %v", err)
	}
	if got := m.QuadCount(); got != 4 {
		t.Fatalf("quad count with two culled faces: got %d, want 4", got)
	}
}

func TestFluidResolverFullyCulledYieldsNothing(t *testing.T) {
	r := NewFluidResolver()
	var cull culling.WaterCullResult
	for _, f := range culling.Faces() {
		cull.Levels[f] = culling.WaterLevel{Valid: true, Level: 0}
	}

	m, err := r.SpecialGeometry(waterBlock("0"), structure.BlockPos{}, cull)
	if err != nil {
		t.Fatalf("SpecialGeometry: %v", err)
	}
	if m != nil {
		t.Fatalf("fully culled water still produced %d quads", m.QuadCount())
	}
}

func TestFluidSurfaceHeightFollowsLevel(t *testing.T) {
	r := NewFluidResolver()

	source, err := r.SpecialGeometry(waterBlock("0"), structure.BlockPos{}, culling.WaterCullResult{})
	if err != nil {
		t.Fatalf("SpecialGeometry: %v", err)
	}
	// The up face comes first; a source block surfaces at 14/16.
	if got := source.Quads()[0].Vertices[0].Position.Y(); got != 14 {
		t.Fatalf("source surface height: got %v, want 14", got)
	}

	drained, err := r.SpecialGeometry(waterBlock("7"), structure.BlockPos{}, culling.WaterCullResult{})
	if err != nil {
		t.Fatalf("SpecialGeometry: %v", err)
	}
	if got := drained.Quads()[0].Vertices[0].Position.Y(); got != 3.5 {
		t.Fatalf("level 7 surface height: got %v, want 3.5", got)
	}
}

func TestFluidColumnFillsCellUnderWater(t *testing.T) {
	r := NewFluidResolver()
	var cull culling.WaterCullResult
	cull.Levels[culling.FaceUp] = culling.WaterLevel{Valid: true, Level: 0}

	m, err := r.SpecialGeometry(waterBlock("0"), structure.BlockPos{}, cull)
	if err != nil {
		t.Fatalf("SpecialGeometry: %v", err)
	}
	// Up face hidden, five faces remain, sides reach the cell top.
	if got := m.QuadCount(); got != 5 {
		t.Fatalf("quad count: got %d, want 5", got)
	}
	var maxY float32
	for _, q := range m.Quads() {
		for _, v := range q.Vertices {
			if v.Position.Y() > maxY {
				maxY = v.Position.Y()
			}
		}
	}
	if maxY != 16 {
		t.Fatalf("side height under water above: got %v, want 16", maxY)
	}
}

func TestSurfaceHeightClampsToFloor(t *testing.T) {
	if got := surfaceHeight(0); got != 14 {
		t.Fatalf("surfaceHeight(0): got %v, want 14", got)
	}
	if got := surfaceHeight(9); got != 1 {
		t.Fatalf("surfaceHeight(9): got %v, want 1 (floor)", got)
	}
}
