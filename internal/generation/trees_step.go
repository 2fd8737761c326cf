package generation

import (
	"github.com/voxelcore/voxelserver/internal/noise"
	"github.com/voxelcore/voxelserver/internal/world"
)

const (
	MinTreeHeight = 4
	MaxTreeHeight = 8
	canopyRadius  = 2
)

// plantableSurfaces lists the surface kinds a trunk may root into.
var plantableSurfaces = map[world.BlockKind]bool{
	world.Grass: true,
	world.Dirt:  true,
	world.Moss:  true,
}

// TreesStep places trunk-and-canopy trees according to the biome's tree
// density threshold, using a dedicated placement noise field independent
// of terrain and caves.
type TreesStep struct{}

func (TreesStep) Name() string { return "trees" }

func (TreesStep) Run(ctx *Context) error {
	biome := ctx.BiomeData()
	if biome.TreeThreshold <= 0 {
		return nil
	}

	n := noise.New(int32(ctx.Seed) + seedOffsetTrees)
	n.Type = noise.OpenSimplex2
	n.Frequency = 0.1

	origin := ctx.Chunk.Position

	for x := 2; x <= world.Size-3; x++ {
		for z := 2; z <= world.Size-3; z++ {
			wx := float64(origin.X + x)
			wz := float64(origin.Z + z)

			v := normalize(n.GetNoise2D(wx, wz))
			if v <= biome.TreeThreshold {
				continue
			}

			top := ctx.Chunk.TopmostNonAirNonWater(x, z)
			if top < 0 || top >= world.Height-1 {
				continue
			}

			surface, err := ctx.Chunk.Block(x, top, z)
			if err != nil {
				return err
			}
			if !plantableSurfaces[surface.Kind] {
				continue
			}

			trunkBase := top + 1
			trunkHeight := pseudoRandomTreeHeight(ctx.Seed, origin.X+x, origin.Z+z)

			if !hasHeadroom(ctx.Chunk, x, trunkBase, z, trunkHeight) {
				continue
			}
			if hasWaterAbove(ctx.Chunk, x, top, z) {
				continue
			}

			plantTree(ctx.Chunk, x, trunkBase, z, trunkHeight)
		}
	}
	return nil
}

// pseudoRandomTreeHeight deterministically derives a trunk height in
// [MinTreeHeight, MaxTreeHeight] from (seed, x, z) so regeneration of the
// same chunk always yields the same forest layout.
func pseudoRandomTreeHeight(seed int64, x, z int) int {
	h := uint32(seed)*2654435761 + uint32(x)*974797989 + uint32(z)*3266489917
	h ^= h >> 15
	h *= 0x85ebca6b
	h ^= h >> 13
	span := uint32(MaxTreeHeight - MinTreeHeight + 1)
	return MinTreeHeight + int(h%span)
}

func hasWaterAbove(c *world.Chunk, x, y, z int) bool {
	if y+1 >= world.Height {
		return false
	}
	b, err := c.Block(x, y+1, z)
	if err != nil {
		return false
	}
	return b.Kind == world.Water
}

func hasHeadroom(c *world.Chunk, x, trunkBase, z, trunkHeight int) bool {
	needed := trunkHeight + 3
	for dy := 0; dy < needed; dy++ {
		y := trunkBase + dy
		if y >= world.Height {
			return false
		}
		b, err := c.Block(x, y, z)
		if err != nil {
			return false
		}
		if b.Kind != world.Air {
			return false
		}
	}
	return true
}

func plantTree(c *world.Chunk, x, trunkBase, z, trunkHeight int) {
	trunkTop := trunkBase + trunkHeight - 1
	for y := trunkBase; y <= trunkTop && y < world.Height; y++ {
		c.SetBlock(x, y, z, world.Wood)
	}

	canopyCenterY := trunkTop
	for dx := -canopyRadius; dx <= canopyRadius; dx++ {
		for dz := -canopyRadius; dz <= canopyRadius; dz++ {
			for dy := -canopyRadius; dy <= canopyRadius; dy++ {
				if dx == 0 && dz == 0 && dy >= 0 {
					continue // leave the trunk's own top column clear
				}
				distSq := dx*dx + dy*dy + dz*dz
				if distSq > canopyRadius*canopyRadius {
					continue
				}

				cx, cy, cz := x+dx, canopyCenterY+dy, z+dz
				if cx < 0 || cx >= world.Size || cz < 0 || cz >= world.Size {
					continue
				}
				if cy < 0 || cy >= world.Height {
					continue
				}

				existing, err := c.Block(cx, cy, cz)
				if err != nil || existing.Kind != world.Air {
					continue
				}
				c.SetBlock(cx, cy, cz, world.Leaves)
			}
		}
	}
}
