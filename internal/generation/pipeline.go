// Package generation implements the ordered chunk generation pipeline
// (single-flight deduplication of concurrent requests lives in
// internal/chunkcache): a fixed sequence of Steps sharing a per-chunk Context, each
// writing into the chunk's block buffer and optionally publishing derived
// data for later steps to read back.
package generation

import "github.com/voxelcore/voxelserver/internal/world"

// Pipeline runs a fixed, ordered sequence of Steps against a freshly
// allocated chunk. The default ordering mirrors the game's biome ->
// terrain -> caves -> trees dependency chain: each step depends only on
// data published by steps before it.
type Pipeline struct {
	Seed  int64
	Steps []Step
}

// NewPipeline builds the default generation pipeline for the given world
// seed.
func NewPipeline(seed int64) *Pipeline {
	return &Pipeline{
		Seed: seed,
		Steps: []Step{
			BiomeStep{},
			TerrainStep{},
			NewCavesStep(),
			TreesStep{},
		},
	}
}

// Generate runs every step in order against a new chunk at worldPos. A
// failing step aborts the run immediately; the partially generated chunk is
// discarded and the error is a *StepError identifying which stage failed.
func (p *Pipeline) Generate(worldPos world.Vec3) (*world.Chunk, error) {
	chunk := world.NewChunk(worldPos)
	ctx := newContext(worldPos, p.Seed)
	ctx.Chunk = chunk

	for _, step := range p.Steps {
		if err := step.Run(ctx); err != nil {
			return nil, &StepError{Step: step.Name(), Err: err}
		}
	}
	return chunk, nil
}
