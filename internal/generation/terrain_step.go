package generation

import "github.com/voxelcore/voxelserver/internal/world"

// bedrockDepthY mirrors the spec's "y == worldY(-1024)" bedrock layer: a
// second bedrock plane far below the playable surface, expressed in world
// Y: it is compared against each cell's world-space Y, so it only applies
// to a chunk whose origin places that Y within its [0, Height) span.
const bedrockDepthY = -1024

// TerrainStep fills each column up to a biome-aware height with the
// biome's subsurface block, capping the column with the biome's surface
// block at the exact surface and bedrock at the world floor.
type TerrainStep struct{}

func (TerrainStep) Name() string { return "terrain" }

func (TerrainStep) Run(ctx *Context) error {
	biome := ctx.BiomeData()
	origin := ctx.Chunk.Position

	for x := 0; x < world.Size; x++ {
		for z := 0; z < world.Size; z++ {
			wx := float64(origin.X + x)
			wz := float64(origin.Z + z)

			raw := ctx.Noise.GetNoise2D(wx, wz)
			terrainHeight := clampHeight(biome.BaseHeight + int(raw*16*biome.HeightMultiplier))

			for y := 0; y < world.Height; y++ {
				worldY := origin.Y + y
				kind := world.Air

				switch {
				case worldY == 0 || worldY == bedrockDepthY:
					kind = world.Bedrock
				case y == terrainHeight:
					kind = biome.SurfaceBlock
				case y < terrainHeight:
					kind = biome.SubsurfaceBlock
				default:
					kind = world.Air
				}

				ctx.Chunk.SetBlock(x, y, z, kind)
			}
		}
	}
	return nil
}

func clampHeight(h int) int {
	if h < 1 {
		return 1
	}
	if h > world.Height-1 {
		return world.Height - 1
	}
	return h
}
