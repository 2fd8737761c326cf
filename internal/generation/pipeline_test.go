package generation

import (
	"testing"

	"github.com/voxelcore/voxelserver/internal/world"
)

func TestGenerateDeterministic(t *testing.T) {
	pos := world.Vec3{X: 0, Y: 0, Z: 0}

	p1 := NewPipeline(42)
	p2 := NewPipeline(42)

	c1, err := p1.Generate(pos)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	c2, err := p2.Generate(pos)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}

	for i := 0; i < world.BlockCount; i++ {
		if c1.BlockAt(i).Kind != c2.BlockAt(i).Kind {
			t.Fatalf("block %d diverged between independent generations: %v != %v",
				i, c1.BlockAt(i).Kind, c2.BlockAt(i).Kind)
		}
	}
}

func TestGenerateBedrockFloor(t *testing.T) {
	pos := world.Vec3{X: 0, Y: 0, Z: 0}
	p := NewPipeline(1)

	c, err := p.Generate(pos)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}

	for x := 0; x < world.Size; x++ {
		for z := 0; z < world.Size; z++ {
			b, err := c.Block(x, 0, z)
			if err != nil {
				t.Fatalf("Block: %v", err)
			}
			if b.Kind != world.Bedrock {
				t.Fatalf("expected bedrock at y=0 (%d,%d), got %v", x, z, b.Kind)
			}
		}
	}
}

func TestCaveCarveOutThresholdSensitivity(t *testing.T) {
	pos := world.Vec3{X: 0, Y: 0, Z: 0}

	countAirInCaveRange := func(threshold float64) int {
		p := NewPipeline(7)
		p.Steps = []Step{
			BiomeStep{},
			TerrainStep{},
			CavesStep{Threshold: threshold},
		}
		c, err := p.Generate(pos)
		if err != nil {
			t.Fatalf("Generate: %v", err)
		}
		count := 0
		for y := 1; y < 128 && y < world.Height; y++ {
			for x := 0; x < world.Size; x++ {
				for z := 0; z < world.Size; z++ {
					b, _ := c.Block(x, y, z)
					if b.Kind == world.Air {
						count++
					}
				}
			}
		}
		return count
	}

	lowThreshold := countAirInCaveRange(0.55)
	highThreshold := countAirInCaveRange(0.9)

	if lowThreshold <= highThreshold {
		t.Fatalf("expected CaveThreshold=0.55 to carve more air than 0.9, got %d <= %d",
			lowThreshold, highThreshold)
	}
}

func TestGenerateStepFailureWrapsStepName(t *testing.T) {
	p := NewPipeline(1)
	p.Steps = []Step{failingStep{}}

	_, err := p.Generate(world.Vec3{})
	if err == nil {
		t.Fatal("expected error")
	}
	stepErr, ok := err.(*StepError)
	if !ok {
		t.Fatalf("expected *StepError, got %T", err)
	}
	if stepErr.Step != "always-fails" {
		t.Fatalf("unexpected step name: %q", stepErr.Step)
	}
}

type failingStep struct{}

func (failingStep) Name() string { return "always-fails" }
func (failingStep) Run(ctx *Context) error {
	return errAlwaysFails
}

var errAlwaysFails = errFixture("synthetic failure")

type errFixture string

func (e errFixture) Error() string { return string(e) }
