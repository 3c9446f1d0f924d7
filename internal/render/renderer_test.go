package render

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"

	"structviz/internal/mesh"
)

func quadMesh(t *testing.T, quads int) *mesh.Mesh {
	t.Helper()
	m := mesh.New()
	for i := 0; i < quads; i++ {
		var q mesh.Quad
		for v := range q.Vertices {
			q.Vertices[v] = mesh.Vertex{Position: mgl32.Vec3{float32(i), float32(v), 0}}
		}
		m.Merge(q)
	}
	return m
}

func TestNewStructureRendererValidatesBatchCap(t *testing.T) {
	if _, err := NewStructureRenderer(nil, nil, 0); err != nil {
		t.Fatalf("cap 0 (splitting disabled) rejected: %v", err)
	}
	if _, err := NewStructureRenderer(nil, nil, mesh.VerticesPerQuad); err != nil {
		t.Fatalf("cap of one quad rejected: %v", err)
	}
	if _, err := NewStructureRenderer(nil, nil, 2); err == nil {
		t.Fatal("cap below one quad accepted")
	}
}

func TestPruneSplitsEvictsStaleEntries(t *testing.T) {
	r, err := NewStructureRenderer(nil, nil, 8)
	if err != nil {
		t.Fatalf("NewStructureRenderer: %v", err)
	}

	live := quadMesh(t, 4)
	dead := quadMesh(t, 4)
	liveParts, err := live.Split(8)
	if err != nil {
		t.Fatalf("Split: %v", err)
	}
	deadParts, err := dead.Split(8)
	if err != nil {
		t.Fatalf("Split: %v", err)
	}
	r.splits[live] = &splitEntry{version: live.Version(), parts: liveParts}
	r.splits[dead] = &splitEntry{version: dead.Version(), parts: deadParts}

	// A rebuild replaced dead's chunk mesh; only live is drawn now.
	r.pruneSplits([]*mesh.Mesh{live})

	if _, ok := r.splits[live]; !ok {
		t.Fatal("drawn mesh's split entry was evicted")
	}
	if _, ok := r.splits[dead]; ok {
		t.Fatal("stale split entry survived the frame sweep")
	}
	if len(r.splits) != 1 {
		t.Fatalf("split cache size: got %d, want 1", len(r.splits))
	}
}

func TestLineSourcesPreferSplitParts(t *testing.T) {
	r, err := NewStructureRenderer(nil, nil, 8)
	if err != nil {
		t.Fatalf("NewStructureRenderer: %v", err)
	}

	m := quadMesh(t, 4)
	m.AddLine(mgl32.Vec3{}, mgl32.Vec3{1, 1, 1}, mgl32.Vec4{1, 0, 0, 1})
	parts, err := m.Split(8)
	if err != nil {
		t.Fatalf("Split: %v", err)
	}
	r.splits[m] = &splitEntry{version: m.Version(), parts: parts}

	src := r.lineSources(m)
	if len(src) != len(parts) {
		t.Fatalf("line source count: got %d, want %d", len(src), len(parts))
	}
	lines := 0
	for _, p := range src {
		lines += p.LineCount()
	}
	if lines != 1 {
		t.Fatalf("line segments reachable through split parts: got %d, want 1", lines)
	}

	// Unsplit meshes draw their own line buffer.
	plain := quadMesh(t, 1)
	src = r.lineSources(plain)
	if len(src) != 1 || src[0] != plain {
		t.Fatal("unsplit mesh should be its own line source")
	}
}
