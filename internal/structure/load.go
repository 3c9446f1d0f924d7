package structure

import (
	"bufio"
	"fmt"
	"io"
	"os"

	"github.com/Tnze/go-mc/nbt"
	"github.com/klauspost/compress/gzip"
)

// Vanilla structure-file NBT layout.
type structureFile struct {
	Size    [3]int32       `nbt:"size"`
	Palette []paletteEntry `nbt:"palette"`
	Blocks  []blockEntry   `nbt:"blocks"`
}

type paletteEntry struct {
	Name       string            `nbt:"Name"`
	Properties map[string]string `nbt:"Properties"`
}

type blockEntry struct {
	State int32          `nbt:"state"`
	Pos   []int32        `nbt:"pos"`
	NBT   nbt.RawMessage `nbt:"nbt"`
}

// Load reads a structure from a .nbt file. Both gzip-compressed and raw
// NBT files are accepted.
func Load(path string) (*Structure, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open structure file: %w", err)
	}
	defer f.Close()
	return Read(f)
}

// Read decodes a structure from NBT data on r.
func Read(r io.Reader) (*Structure, error) {
	br := bufio.NewReader(r)

	// gzip magic sniff
	if head, err := br.Peek(2); err == nil && head[0] == 0x1f && head[1] == 0x8b {
		gz, err := gzip.NewReader(br)
		if err != nil {
			return nil, fmt.Errorf("open gzip stream: %w", err)
		}
		defer gz.Close()
		return decode(gz)
	}

	return decode(br)
}

func decode(r io.Reader) (*Structure, error) {
	var file structureFile
	if _, err := nbt.NewDecoder(r).Decode(&file); err != nil {
		return nil, fmt.Errorf("decode structure nbt: %w", err)
	}

	s := New(int(file.Size[0]), int(file.Size[1]), int(file.Size[2]))
	for _, e := range file.Blocks {
		if e.State < 0 || int(e.State) >= len(file.Palette) {
			return nil, fmt.Errorf("block palette index %d out of range (palette size %d)", e.State, len(file.Palette))
		}
		if len(e.Pos) != 3 {
			return nil, fmt.Errorf("block position has %d coordinates, want 3", len(e.Pos))
		}
		p := file.Palette[e.State]
		s.SetBlock(
			BlockPos{X: int(e.Pos[0]), Y: int(e.Pos[1]), Z: int(e.Pos[2])},
			Block{Name: p.Name, Properties: p.Properties, NBT: e.NBT},
		)
	}
	return s, nil
}
