package mesh

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
)

func quadAt(x, y, z float32) Quad {
	var q Quad
	corners := [4]mgl32.Vec3{
		{x, y, z},
		{x + 1, y, z},
		{x + 1, y + 1, z},
		{x, y + 1, z},
	}
	for i, c := range corners {
		q.Vertices[i] = Vertex{
			Position: c,
			Color:    mgl32.Vec4{1, 1, 1, 1},
			UV:       mgl32.Vec2{0, 0},
			UVClamp:  mgl32.Vec4{0, 0, 1, 1},
			Normal:   mgl32.Vec3{0, 0, 1},
		}
	}
	return q
}

func TestMergeAccumulatesQuads(t *testing.T) {
	m := New()
	if !m.Empty() {
		t.Fatal("new mesh should be empty")
	}

	m.Merge(quadAt(0, 0, 0), quadAt(1, 0, 0))
	m.Merge(quadAt(2, 0, 0))

	if got := m.QuadCount(); got != 3 {
		t.Fatalf("quad count: got %d, want 3", got)
	}
	if got := m.VertexCount(); got != 12 {
		t.Fatalf("vertex count: got %d, want 12", got)
	}
}

func TestVertexDataLayout(t *testing.T) {
	m := FromQuads([]Quad{quadAt(0, 0, 0)})

	data := m.VertexData()
	if got, want := len(data), VerticesPerQuad*VertexStride; got != want {
		t.Fatalf("vertex buffer length: got %d, want %d", got, want)
	}

	idx := m.IndexData()
	want := []uint32{0, 1, 2, 2, 3, 0}
	if len(idx) != len(want) {
		t.Fatalf("index buffer length: got %d, want %d", len(idx), len(want))
	}
	for i := range want {
		if idx[i] != want[i] {
			t.Fatalf("index[%d]: got %d, want %d", i, idx[i], want[i])
		}
	}
}

func TestVertexDataIsIdempotent(t *testing.T) {
	m := FromQuads([]Quad{quadAt(0, 0, 0), quadAt(3, 1, 2)})

	first := append([]float32(nil), m.VertexData()...)
	if m.Dirty() {
		t.Fatal("mesh still dirty after VertexData")
	}
	second := m.VertexData()
	if len(first) != len(second) {
		t.Fatalf("rebuild changed length: %d vs %d", len(first), len(second))
	}
	for i := range first {
		if first[i] != second[i] {
			t.Fatalf("rebuild changed contents at %d: %v vs %v", i, first[i], second[i])
		}
	}
}

func TestDirtyTracking(t *testing.T) {
	m := New()
	m.Merge(quadAt(0, 0, 0))
	if m.DirtyAttrs()&AttrPositions == 0 {
		t.Fatal("merge did not mark positions dirty")
	}

	m.VertexData()
	if m.Dirty() {
		t.Fatal("read did not clear quad dirt")
	}

	v1 := m.Version()
	m.Transform(mgl32.Translate3D(1, 0, 0))
	if m.DirtyAttrs()&AttrPositions == 0 {
		t.Fatal("transform did not mark positions dirty")
	}
	if m.Version() == v1 {
		t.Fatal("transform did not bump the version")
	}

	m.VertexData()
	m.AddLine(mgl32.Vec3{}, mgl32.Vec3{1, 1, 1}, mgl32.Vec4{1, 0, 0, 1})
	if m.DirtyAttrs() != AttrLines {
		t.Fatalf("line append dirt: got %v, want only lines", m.DirtyAttrs())
	}
}

func TestTransformMovesPositionsNotBlockPos(t *testing.T) {
	q := quadAt(0, 0, 0)
	q.HasBlockPos = true
	for i := range q.Vertices {
		q.Vertices[i].BlockPos = mgl32.Vec3{0.5, 0.5, 0.5}
	}
	m := FromQuads([]Quad{q})

	m.Transform(mgl32.Translate3D(10, 20, 30))

	got := m.Quads()[0].Vertices[0]
	want := mgl32.Vec3{10, 20, 30}
	if got.Position != want {
		t.Fatalf("position: got %v, want %v", got.Position, want)
	}
	if got.BlockPos != (mgl32.Vec3{0.5, 0.5, 0.5}) {
		t.Fatalf("block-local position changed: %v", got.BlockPos)
	}
}

func TestTransformRotatesNormals(t *testing.T) {
	m := FromQuads([]Quad{quadAt(0, 0, 0)})

	// Rotate 90 degrees around Y: +Z normal becomes +X.
	m.Transform(mgl32.HomogRotate3DY(mgl32.DegToRad(90)))

	n := m.Quads()[0].Vertices[0].Normal
	if n.Sub(mgl32.Vec3{1, 0, 0}).Len() > 1e-5 {
		t.Fatalf("normal after rotation: got %v, want (1,0,0)", n)
	}
}

func TestMergeMeshCombinesQuadsAndLines(t *testing.T) {
	a := FromQuads([]Quad{quadAt(0, 0, 0)})
	b := FromQuads([]Quad{quadAt(1, 0, 0), quadAt(2, 0, 0)})
	b.AddLine(mgl32.Vec3{}, mgl32.Vec3{1, 0, 0}, mgl32.Vec4{1, 1, 1, 1})

	a.MergeMesh(b)

	if got := a.QuadCount(); got != 3 {
		t.Fatalf("merged quad count: got %d, want 3", got)
	}
	if got := a.LineCount(); got != 1 {
		t.Fatalf("merged line count: got %d, want 1", got)
	}
}

func TestSplitRespectsCeilingAndKeepsQuadsWhole(t *testing.T) {
	quads := make([]Quad, 10)
	for i := range quads {
		quads[i] = quadAt(float32(i), 0, 0)
	}
	m := FromQuads(quads)
	m.AddLine(mgl32.Vec3{}, mgl32.Vec3{1, 1, 1}, mgl32.Vec4{1, 1, 1, 1})

	// 10 quads = 40 vertices; ceiling 14 holds 3 quads per batch.
	parts, err := m.Split(14)
	if err != nil {
		t.Fatalf("Split: %v", err)
	}
	if len(parts) != 4 {
		t.Fatalf("batch count: got %d, want 4", len(parts))
	}

	total := 0
	for i, p := range parts {
		if p.VertexCount() > 14 {
			t.Fatalf("batch %d exceeds ceiling: %d vertices", i, p.VertexCount())
		}
		if p.VertexCount()%VerticesPerQuad != 0 {
			t.Fatalf("batch %d split a quad: %d vertices", i, p.VertexCount())
		}
		total += p.QuadCount()
	}
	if total != 10 {
		t.Fatalf("quads across batches: got %d, want 10", total)
	}
	if parts[0].LineCount() != 1 {
		t.Fatal("line segments should stay with the first batch")
	}
}

func TestSplitBelowCeilingReturnsSelf(t *testing.T) {
	m := FromQuads([]Quad{quadAt(0, 0, 0)})
	parts, err := m.Split(100)
	if err != nil {
		t.Fatalf("Split: %v", err)
	}
	if len(parts) != 1 || parts[0] != m {
		t.Fatal("small mesh should come back unsplit")
	}
}

func TestSplitRejectsTinyCeiling(t *testing.T) {
	m := FromQuads([]Quad{quadAt(0, 0, 0), quadAt(1, 0, 0)})
	if _, err := m.Split(3); err == nil {
		t.Fatal("ceiling below one quad should error")
	}
}

func TestLineData(t *testing.T) {
	m := New()
	m.AddLine(mgl32.Vec3{1, 2, 3}, mgl32.Vec3{4, 5, 6}, mgl32.Vec4{1, 0, 0, 1})

	data := m.LineData()
	if got, want := len(data), 2*7; got != want {
		t.Fatalf("line buffer length: got %d, want %d", got, want)
	}
	if data[0] != 1 || data[1] != 2 || data[2] != 3 {
		t.Fatalf("from position: got %v", data[:3])
	}
	if data[7] != 4 || data[8] != 5 || data[9] != 6 {
		t.Fatalf("to position: got %v", data[7:10])
	}
}

func TestMergeAllPreSizes(t *testing.T) {
	var src []*Mesh
	for i := 0; i < 5; i++ {
		src = append(src, FromQuads([]Quad{quadAt(float32(i), 0, 0)}))
	}
	m := New()
	m.MergeAll(src)
	if got := m.QuadCount(); got != 5 {
		t.Fatalf("merged quad count: got %d, want 5", got)
	}
}
