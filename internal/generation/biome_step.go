package generation

import (
	"github.com/voxelcore/voxelserver/internal/noise"
	"github.com/voxelcore/voxelserver/internal/world"
)

// Seed offsets keep each auxiliary noise field statistically independent of
// the primary terrain field and of each other, while remaining fully
// deterministic functions of the chunk's generation seed.
const (
	seedOffsetTemperature = 1000
	seedOffsetMoisture    = 2000
	seedOffsetElevation   = 3000
	seedOffsetCaves       = 4000
	seedOffsetTrees       = 5000
)

// BiomeStep samples three independent low-frequency noise fields at the
// chunk center and classifies the chunk into a Biome via Whittaker
// thresholds, publishing the result for every later step to consume.
type BiomeStep struct{}

func (BiomeStep) Name() string { return "biome" }

func (BiomeStep) Run(ctx *Context) error {
	centerX := float64(ctx.WorldPosition.X) + world.Size/2
	centerZ := float64(ctx.WorldPosition.Z) + world.Size/2

	temp := sampleLowFrequency(int32(ctx.Seed)+seedOffsetTemperature, centerX, centerZ)
	moisture := sampleLowFrequency(int32(ctx.Seed)+seedOffsetMoisture, centerX, centerZ)
	elevation := sampleLowFrequency(int32(ctx.Seed)+seedOffsetElevation, centerX, centerZ)

	ctx.Scratch[ScratchBiomeData] = newBiomeData(
		normalize(temp),
		normalize(moisture),
		normalize(elevation),
	)
	return nil
}

func sampleLowFrequency(seed int32, x, z float64) float64 {
	n := noise.New(seed)
	n.Type = noise.Perlin
	n.Frequency = 0.003
	n.FractalType = noise.FractalNone
	return n.GetNoise2D(x, z)
}

// normalize maps a [-1, 1] noise sample into [0, 1].
func normalize(v float64) float64 {
	n := (v + 1) / 2
	if n < 0 {
		return 0
	}
	if n > 1 {
		return 1
	}
	return n
}
