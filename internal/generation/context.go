package generation

import (
	"github.com/voxelcore/voxelserver/internal/noise"
	"github.com/voxelcore/voxelserver/internal/world"
)

// Context is the per-chunk scratchpad shared by every Step in a Pipeline
// run. Steps communicate through Scratch rather than return values, so a
// later step (Trees) can depend on data a prior step (Biome) derived
// without the pipeline itself knowing the concrete types involved.
type Context struct {
	Chunk         *world.Chunk
	WorldPosition world.Vec3
	Noise         *noise.Noise
	Seed          int64
	Scratch       map[string]any
}

// newContext builds the per-chunk scratchpad for worldPos, seeding the
// primary terrain-height noise field from seed. Individual steps that need
// additional noise fields (biome classification, caves, tree placement)
// construct their own *noise.Noise instances from seed offsets, so that
// each concern's frequency/fractal parameters stay local to its step.
func newContext(worldPos world.Vec3, seed int64) *Context {
	n := noise.New(int32(seed))
	n.Frequency = 0.01
	n.FractalType = noise.FractalFBm
	n.SetFractalOctaves(4, 0.5, 2.0)

	return &Context{
		WorldPosition: worldPos,
		Noise:         n,
		Seed:          seed,
		Scratch:       make(map[string]any),
	}
}

// BiomeData retrieves the biome classification written by the biome step.
// It panics if called before the biome step has run, since every later
// step in the default pipeline requires it.
func (c *Context) BiomeData() BiomeData {
	v, ok := c.Scratch[ScratchBiomeData]
	if !ok {
		panic("generation: BiomeData requested before biome step ran")
	}
	return v.(BiomeData)
}
