package world

import (
	"errors"
	"fmt"
)

const (
	// Size is the chunk's horizontal extent in blocks (X and Z).
	Size = 16
	// Height is the chunk's vertical extent in blocks.
	Height = 64
	// BlockCount is the total number of addressable cells in one chunk.
	BlockCount = Size * Height * Size
)

var ErrOutOfBounds = errors.New("voxelserver: block coordinate out of bounds")

// Chunk is a fixed-size 3D block buffer keyed by its world-space origin.
type Chunk struct {
	Position Vec3
	blocks   [BlockCount]Block
}

// NewChunk allocates a chunk at the given world origin, every cell defaulted
// to Air with a sequential identity.
func NewChunk(position Vec3) *Chunk {
	c := &Chunk{Position: position}
	for i := range c.blocks {
		c.blocks[i] = Block{ID: int64(i), Kind: Air}
	}
	return c
}

// Index maps local (x,y,z) onto the flat storage offset. The convention is
// x + y*Size + z*Size*Height, matching the spec's wire-compatible layout.
func Index(x, y, z int) (int, error) {
	if x < 0 || x >= Size || y < 0 || y >= Height || z < 0 || z >= Size {
		return 0, fmt.Errorf("%w: (%d,%d,%d)", ErrOutOfBounds, x, y, z)
	}
	return x + y*Size + z*Size*Height, nil
}

// Block returns the block at local coordinates, or ErrOutOfBounds.
func (c *Chunk) Block(x, y, z int) (Block, error) {
	idx, err := Index(x, y, z)
	if err != nil {
		return Block{}, err
	}
	return c.blocks[idx], nil
}

// BlockAt is the unchecked equivalent of Block for hot generation-step loops
// that already validated their bounds.
func (c *Chunk) BlockAt(idx int) Block {
	return c.blocks[idx]
}

// SetBlock sets the kind at local coordinates. Unlike the source's
// SetBlock(int,int,int,*Block) overload, passing a nil-equivalent kind is
// not possible in Go's type system, so this single form is always valid
// once the bounds check passes — unifying the asymmetry noted in spec.md's
// open questions on "SetBlock(null) always throws".
func (c *Chunk) SetBlock(x, y, z int, kind BlockKind) error {
	idx, err := Index(x, y, z)
	if err != nil {
		return err
	}
	c.blocks[idx].Kind = kind
	return nil
}

// SetBlockAt is the unchecked equivalent of SetBlock for generation steps.
func (c *Chunk) SetBlockAt(idx int, kind BlockKind) {
	c.blocks[idx].Kind = kind
}

// TopmostNonAirNonWater returns the highest y at which a block is neither
// Air nor Water, or -1 if the column is entirely air/water. Used by the
// tree placement step to find a plantable surface.
func (c *Chunk) TopmostNonAirNonWater(x, z int) int {
	for y := Height - 1; y >= 0; y-- {
		idx, _ := Index(x, y, z)
		k := c.blocks[idx].Kind
		if k != Air && k != Water {
			return y
		}
	}
	return -1
}

// WorldOrigin computes the world-space origin of the chunk identified by the
// given chunk coordinates (not world coordinates).
func WorldOrigin(cx, cy, cz int) Vec3 {
	return Vec3{X: cx * Size, Y: cy * Height, Z: cz * Size}
}
