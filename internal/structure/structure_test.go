package structure

import (
	"bytes"
	"testing"

	"github.com/Tnze/go-mc/nbt"
	"github.com/klauspost/compress/gzip"
)

func TestBlockAirVariants(t *testing.T) {
	cases := []struct {
		name string
		air  bool
		cave bool
	}{
		{"minecraft:air", true, false},
		{"minecraft:cave_air", true, true},
		{"minecraft:void_air", true, false},
		{"air", true, false},
		{"minecraft:stone", false, false},
	}
	for _, tc := range cases {
		b := Block{Name: tc.name}
		if got := b.IsAir(); got != tc.air {
			t.Fatalf("IsAir(%q): got %v, want %v", tc.name, got, tc.air)
		}
		if got := b.IsCaveAir(); got != tc.cave {
			t.Fatalf("IsCaveAir(%q): got %v, want %v", tc.name, got, tc.cave)
		}
	}
}

func TestBlockWaterlogging(t *testing.T) {
	if !(Block{Name: "minecraft:water"}).IsWaterlogged() {
		t.Fatal("water should be waterlogged")
	}
	if !(Block{Name: "minecraft:kelp"}).IsWaterlogged() {
		t.Fatal("kelp should be inherently waterlogged")
	}
	fence := Block{
		Name:       "minecraft:oak_fence",
		Properties: map[string]string{"waterlogged": "true"},
	}
	if !fence.IsWaterlogged() {
		t.Fatal("waterlogged=true property should mark the block waterlogged")
	}
	dryFence := Block{
		Name:       "minecraft:oak_fence",
		Properties: map[string]string{"waterlogged": "false"},
	}
	if dryFence.IsWaterlogged() {
		t.Fatal("waterlogged=false block reported waterlogged")
	}
}

func TestBlockWaterLevel(t *testing.T) {
	cases := []struct {
		props map[string]string
		want  int
	}{
		{nil, 0},
		{map[string]string{"level": "3"}, 3},
		{map[string]string{"level": "nonsense"}, 0},
		{map[string]string{"level": "-2"}, 0},
	}
	for _, tc := range cases {
		b := Block{Name: "minecraft:water", Properties: tc.props}
		if got := b.WaterLevel(); got != tc.want {
			t.Fatalf("WaterLevel(%v): got %d, want %d", tc.props, got, tc.want)
		}
	}
}

func TestSetBlockReplacesInPlace(t *testing.T) {
	s := New(2, 2, 2)
	pos := BlockPos{X: 1, Y: 0, Z: 1}
	s.SetBlock(pos, Block{Name: "minecraft:dirt"})
	s.SetBlock(BlockPos{}, Block{Name: "minecraft:stone"})
	s.SetBlock(pos, Block{Name: "minecraft:grass_block"})

	if got := s.Len(); got != 2 {
		t.Fatalf("Len after replace: got %d, want 2", got)
	}
	b, ok := s.BlockAt(pos)
	if !ok || b.Name != "minecraft:grass_block" {
		t.Fatalf("BlockAt(%+v): got %q, %v", pos, b.Name, ok)
	}
	// Replacement keeps the original enumeration slot.
	if s.Blocks()[0].Name != "minecraft:grass_block" {
		t.Fatalf("enumeration order changed: first block is %q", s.Blocks()[0].Name)
	}
}

func TestBlockAtMissing(t *testing.T) {
	s := New(1, 1, 1)
	if _, ok := s.BlockAt(BlockPos{X: 9}); ok {
		t.Fatal("lookup of empty cell reported a block")
	}
}

// encodableEntry mirrors blockEntry without the raw NBT payload, which
// the decoder simply leaves unset when absent.
type encodableEntry struct {
	State int32   `nbt:"state"`
	Pos   []int32 `nbt:"pos"`
}

type encodableFile struct {
	Size    [3]int32         `nbt:"size"`
	Palette []paletteEntry   `nbt:"palette"`
	Blocks  []encodableEntry `nbt:"blocks"`
}

func marshalFile(t *testing.T, file encodableFile) []byte {
	t.Helper()
	data, err := nbt.Marshal(file)
	if err != nil {
		t.Fatalf("marshal structure nbt: %v", err)
	}
	return data
}

func marshalStructure(t *testing.T) []byte {
	return marshalFile(t, encodableFile{
		Size: [3]int32{2, 1, 1},
		Palette: []paletteEntry{
			{Name: "minecraft:stone"},
			{Name: "minecraft:water", Properties: map[string]string{"level": "0"}},
		},
		Blocks: []encodableEntry{
			{State: 0, Pos: []int32{0, 0, 0}},
			{State: 1, Pos: []int32{1, 0, 0}},
		},
	})
}

func checkDecoded(t *testing.T, s *Structure) {
	t.Helper()
	if got := s.Size(); got != (BlockPos{X: 2, Y: 1, Z: 1}) {
		t.Fatalf("size: got %+v", got)
	}
	if got := s.Len(); got != 2 {
		t.Fatalf("block count: got %d, want 2", got)
	}
	b, ok := s.BlockAt(BlockPos{X: 1})
	if !ok || b.Name != "minecraft:water" {
		t.Fatalf("water block: got %q, %v", b.Name, ok)
	}
	if lvl, _ := b.Property("level"); lvl != "0" {
		t.Fatalf("water level property: got %q", lvl)
	}
}

func TestReadRawNBT(t *testing.T) {
	s, err := Read(bytes.NewReader(marshalStructure(t)))
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	checkDecoded(t, s)
}

func TestReadGzippedNBT(t *testing.T) {
	var buf bytes.Buffer
	gz := gzip.NewWriter(&buf)
	if _, err := gz.Write(marshalStructure(t)); err != nil {
		t.Fatalf("gzip write: %v", err)
	}
	if err := gz.Close(); err != nil {
		t.Fatalf("gzip close: %v", err)
	}

	s, err := Read(&buf)
	if err != nil {
		t.Fatalf("Read (gzip): %v", err)
	}
	checkDecoded(t, s)
}

func TestReadRejectsBadPaletteIndex(t *testing.T) {
	data := marshalFile(t, encodableFile{
		Size:    [3]int32{1, 1, 1},
		Palette: []paletteEntry{{Name: "minecraft:stone"}},
		Blocks:  []encodableEntry{{State: 5, Pos: []int32{0, 0, 0}}},
	})
	if _, err := Read(bytes.NewReader(data)); err == nil {
		t.Fatal("out-of-range palette index accepted")
	}
}

func TestReadRejectsBadPosition(t *testing.T) {
	data := marshalFile(t, encodableFile{
		Size:    [3]int32{1, 1, 1},
		Palette: []paletteEntry{{Name: "minecraft:stone"}},
		Blocks:  []encodableEntry{{State: 0, Pos: []int32{0, 0}}},
	})
	if _, err := Read(bytes.NewReader(data)); err == nil {
		t.Fatal("two-coordinate position accepted")
	}
}
