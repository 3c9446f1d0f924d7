package meshing

// ChunkCoord addresses a chunk cell on the chunk grid. Coordinates may
// be negative.
type ChunkCoord struct {
	X, Y, Z int
}

// encodeAxis maps a signed chunk coordinate to a non-negative array
// index: non-negative values double, negative values double plus one.
// The mapping is total and collision-free over all integers.
func encodeAxis(c int) int {
	if c < 0 {
		return -c*2 + 1
	}
	return c * 2
}

// decodeAxis is the exact inverse of encodeAxis.
func decodeAxis(i int) int {
	if i%2 == 0 {
		return i / 2
	}
	return -((i - 1) / 2)
}

// chunkGrid stores chunks in a 3-level nested growable array indexed by
// the encoded coordinates, with branches allocated lazily. The grid is
// created or reset whenever a structure is (re)assigned to the builder.
type chunkGrid struct {
	cells [][][]*Chunk
}

func newChunkGrid() *chunkGrid {
	return &chunkGrid{}
}

// at returns the chunk at the coordinate, or nil.
func (g *chunkGrid) at(c ChunkCoord) *Chunk {
	ex := encodeAxis(c.X)
	if ex >= len(g.cells) || g.cells[ex] == nil {
		return nil
	}
	ey := encodeAxis(c.Y)
	if ey >= len(g.cells[ex]) || g.cells[ex][ey] == nil {
		return nil
	}
	ez := encodeAxis(c.Z)
	if ez >= len(g.cells[ex][ey]) {
		return nil
	}
	return g.cells[ex][ey][ez]
}

// ensure returns the chunk at the coordinate, allocating grid branches
// and the chunk itself as needed.
func (g *chunkGrid) ensure(c ChunkCoord) *Chunk {
	ex, ey, ez := encodeAxis(c.X), encodeAxis(c.Y), encodeAxis(c.Z)
	if ex >= len(g.cells) {
		g.cells = append(g.cells, make([][][]*Chunk, ex+1-len(g.cells))...)
	}
	if ey >= len(g.cells[ex]) {
		g.cells[ex] = append(g.cells[ex], make([][]*Chunk, ey+1-len(g.cells[ex]))...)
	}
	if ez >= len(g.cells[ex][ey]) {
		g.cells[ex][ey] = append(g.cells[ex][ey], make([]*Chunk, ez+1-len(g.cells[ex][ey]))...)
	}
	if g.cells[ex][ey][ez] == nil {
		g.cells[ex][ey][ez] = newChunk()
	}
	return g.cells[ex][ey][ez]
}

// forEach visits every allocated chunk in a fixed enumeration order
// (ascending encoded indices), decoding the grid coordinate exactly.
func (g *chunkGrid) forEach(fn func(ChunkCoord, *Chunk)) {
	for ex := range g.cells {
		for ey := range g.cells[ex] {
			for ez := range g.cells[ex][ey] {
				ch := g.cells[ex][ey][ez]
				if ch == nil {
					continue
				}
				fn(ChunkCoord{X: decodeAxis(ex), Y: decodeAxis(ey), Z: decodeAxis(ez)}, ch)
			}
		}
	}
}

// release frees GPU-side state of every chunk. Used when the grid is
// reset on structure reassignment.
func (g *chunkGrid) release() {
	g.forEach(func(_ ChunkCoord, ch *Chunk) {
		ch.clear()
	})
}
