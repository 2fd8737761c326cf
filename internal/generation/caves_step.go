package generation

import (
	"github.com/voxelcore/voxelserver/internal/noise"
	"github.com/voxelcore/voxelserver/internal/world"
)

// DefaultCaveThreshold is the normalized 3D noise value above which a solid
// block is carved to Air. CavesStep.Threshold lets a caller (e.g. a test
// exercising the testable cave-carve-out property) construct a CavesStep
// with a different threshold without forking the step.
const DefaultCaveThreshold = 0.55

// CavesStep carves Air pockets out of solid terrain using a 3D two-octave
// FBm noise field, leaving Air, Water, and Bedrock untouched.
type CavesStep struct {
	Threshold float64
}

// NewCavesStep builds a CavesStep with the default threshold.
func NewCavesStep() CavesStep {
	return CavesStep{Threshold: DefaultCaveThreshold}
}

func (s CavesStep) Name() string { return "caves" }

func (s CavesStep) Run(ctx *Context) error {
	threshold := s.Threshold
	if threshold == 0 {
		threshold = DefaultCaveThreshold
	}

	n := noise.New(int32(ctx.Seed) + seedOffsetCaves)
	n.Type = noise.OpenSimplex2
	n.Frequency = 0.05
	n.FractalType = noise.FractalFBm
	n.SetFractalOctaves(2, 0.5, 2.0)

	origin := ctx.Chunk.Position
	for x := 0; x < world.Size; x++ {
		for z := 0; z < world.Size; z++ {
			for y := 1; y < 128 && y < world.Height; y++ {
				b, err := ctx.Chunk.Block(x, y, z)
				if err != nil {
					return err
				}
				if b.Kind == world.Air || b.Kind == world.Water || b.Kind == world.Bedrock {
					continue
				}

				wx := float64(origin.X + x)
				wy := float64(origin.Y + y)
				wz := float64(origin.Z + z)

				v := normalize(n.GetNoise3D(wx, wy, wz))
				if v > threshold {
					ctx.Chunk.SetBlock(x, y, z, world.Air)
				}
			}
		}
	}
	return nil
}
