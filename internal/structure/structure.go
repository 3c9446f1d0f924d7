package structure

// Structure is a sparse in-memory voxel structure. It enumerates placed
// blocks in insertion order and supports point lookup, which is what
// the chunk builder needs for neighbor queries during face culling.
type Structure struct {
	size   BlockPos
	blocks []PlacedBlock
	index  map[BlockPos]int
}

// New creates an empty structure with the given bounding size.
func New(sx, sy, sz int) *Structure {
	return &Structure{
		size:  BlockPos{X: sx, Y: sy, Z: sz},
		index: make(map[BlockPos]int),
	}
}

// Size returns the structure's declared bounding size.
func (s *Structure) Size() BlockPos {
	return s.size
}

// SetBlock places a block, replacing any previous block at the position.
func (s *Structure) SetBlock(pos BlockPos, b Block) {
	if i, ok := s.index[pos]; ok {
		s.blocks[i] = PlacedBlock{Block: b, Pos: pos}
		return
	}
	s.index[pos] = len(s.blocks)
	s.blocks = append(s.blocks, PlacedBlock{Block: b, Pos: pos})
}

// Blocks enumerates all placed blocks in insertion order.
func (s *Structure) Blocks() []PlacedBlock {
	return s.blocks
}

// BlockAt looks up the block at the given position.
func (s *Structure) BlockAt(pos BlockPos) (Block, bool) {
	i, ok := s.index[pos]
	if !ok {
		return Block{}, false
	}
	return s.blocks[i].Block, true
}

// Len returns the number of placed blocks.
func (s *Structure) Len() int {
	return len(s.blocks)
}
