package generation

import "github.com/voxelcore/voxelserver/internal/world"

// Biome is one Whittaker-classified climate zone.
type Biome int

const (
	Tundra Biome = iota
	Taiga
	Grassland
	Desert
	Savanna
	TemperateForest
	TropicalRainforest
	Swamp
	Mountain
)

func (b Biome) String() string {
	switch b {
	case Tundra:
		return "Tundra"
	case Taiga:
		return "Taiga"
	case Grassland:
		return "Grassland"
	case Desert:
		return "Desert"
	case Savanna:
		return "Savanna"
	case TemperateForest:
		return "TemperateForest"
	case TropicalRainforest:
		return "TropicalRainforest"
	case Swamp:
		return "Swamp"
	case Mountain:
		return "Mountain"
	default:
		return "Unknown"
	}
}

// BiomeData is written by the biome step into GenerationContext.Scratch and
// read back by the terrain and tree steps.
type BiomeData struct {
	Type             Biome
	Temperature      float64 // normalized [0,1]
	Moisture         float64 // normalized [0,1]
	Elevation        float64 // normalized [0,1]
	SurfaceBlock     world.BlockKind
	SubsurfaceBlock  world.BlockKind
	HeightMultiplier float64
	BaseHeight       int
	TreeThreshold    float64
}

// ScratchBiomeData is the key under which the biome step publishes BiomeData.
const ScratchBiomeData = "BiomeData"

// biomeProfile captures the static per-biome properties looked up once a
// biome classification has been made.
type biomeProfile struct {
	surface          world.BlockKind
	subsurface       world.BlockKind
	heightMultiplier float64
	baseHeight       int
	treeThreshold    float64
}

var biomeProfiles = map[Biome]biomeProfile{
	Tundra:             {world.Snow, world.Dirt, 0.6, 28, 0.0},
	Taiga:              {world.Snow, world.Stone, 0.8, 30, 0.15},
	Grassland:          {world.Grass, world.Dirt, 0.7, 32, 0.85},
	Desert:             {world.Dirt, world.Stone, 0.5, 30, 0.0},
	Savanna:            {world.Grass, world.Dirt, 0.75, 31, 0.1},
	TemperateForest:    {world.Grass, world.Dirt, 1.0, 33, 0.55},
	TropicalRainforest: {world.Moss, world.Dirt, 1.2, 34, 0.4},
	Swamp:              {world.Moss, world.Dirt, 0.4, 29, 0.2},
	Mountain:           {world.Stone, world.Stone, 1.6, 38, 0.0},
}

// classifyWhittaker assigns a biome from normalized temperature, moisture,
// and elevation scalars, each in [0, 1]. Elevation dominates at the
// extremes (mountains, tundra-like peaks); temperature and moisture decide
// among the rest, following the conventional Whittaker diagram layout.
func classifyWhittaker(temperature, moisture, elevation float64) Biome {
	switch {
	case elevation > 0.82:
		return Mountain
	case elevation > 0.7 && temperature < 0.35:
		return Tundra
	case temperature < 0.25:
		return Tundra
	case temperature < 0.4:
		if moisture > 0.5 {
			return Taiga
		}
		return Tundra
	case temperature < 0.6:
		if moisture > 0.66 {
			return Swamp
		}
		if moisture > 0.33 {
			return TemperateForest
		}
		return Grassland
	default: // temperature >= 0.6
		if moisture > 0.66 {
			return TropicalRainforest
		}
		if moisture > 0.33 {
			return Savanna
		}
		return Desert
	}
}

func newBiomeData(temperature, moisture, elevation float64) BiomeData {
	b := classifyWhittaker(temperature, moisture, elevation)
	p := biomeProfiles[b]
	return BiomeData{
		Type:             b,
		Temperature:      temperature,
		Moisture:         moisture,
		Elevation:        elevation,
		SurfaceBlock:     p.surface,
		SubsurfaceBlock:  p.subsurface,
		HeightMultiplier: p.heightMultiplier,
		BaseHeight:       p.baseHeight,
		TreeThreshold:    p.treeThreshold,
	}
}
