// Package noise implements deterministic coherent noise sampling for
// terrain generation. It is deliberately built on hand-rolled lattice
// algorithms rather than a third-party port: chunk regeneration after a
// cache eviction must reproduce the exact same blocks given the same seed,
// and that guarantee only holds for code this package owns outright —
// pinning an external noise library would tie byte-for-byte determinism to
// that library's own versioning and bugfix history.
package noise

// Noise samples a configurable coherent-noise field. The zero value is not
// usable; construct with New.
type Noise struct {
	Seed        int32
	Type        Type
	Frequency   float64
	FractalType FractalType
	Octaves     int
	Lacunarity  float64
	Gain        float64

	CellularDistance CellularDistance

	PingPongStrength float64
	DomainWarpAmp    float64

	fractalBound float64
}

// New constructs a Noise sampler with the given seed and sensible defaults
// matching FastNoiseLite's defaults: single-octave, no fractal combination.
func New(seed int32) *Noise {
	n := &Noise{
		Seed:             seed,
		Type:             OpenSimplex2,
		Frequency:        0.02,
		FractalType:      FractalNone,
		Octaves:          3,
		Lacunarity:       2.0,
		Gain:             0.5,
		CellularDistance: DistEuclidean,
		PingPongStrength: 2.0,
		DomainWarpAmp:    1.0,
	}
	n.recompute()
	return n
}

// recompute must run after any field affecting fractalBound changes.
func (n *Noise) recompute() {
	n.fractalBound = fractalBounding(n.Octaves, n.Gain)
}

// SetFractalOctaves updates the octave count and gain together, since both
// factor into the precomputed normalization bound.
func (n *Noise) SetFractalOctaves(octaves int, gain, lacunarity float64) {
	n.Octaves = octaves
	n.Gain = gain
	n.Lacunarity = lacunarity
	n.recompute()
}

func (n *Noise) sample2D(x, y float64) float64 {
	switch n.Type {
	case OpenSimplex2:
		return simplexCell2D(n.Seed, x, y, false)
	case OpenSimplex2S:
		return simplexCell2D(n.Seed, x, y, true)
	case Cellular:
		return cellular2D(n.Seed, x, y)
	case Perlin:
		return perlin2D(n.Seed, x, y)
	case ValueCubic:
		return valueCubic2D(n.Seed, x, y)
	case Value:
		return value2D(n.Seed, x, y)
	default:
		return simplexCell2D(n.Seed, x, y, false)
	}
}

func (n *Noise) sample3D(x, y, z float64) float64 {
	switch n.Type {
	case OpenSimplex2, OpenSimplex2S:
		return simplexCell3D(n.Seed, x, y, z)
	case Cellular:
		return cellular3D(n.Seed, x, y, z)
	case Perlin:
		return perlin3D(n.Seed, x, y, z)
	case ValueCubic, Value:
		return value3D(n.Seed, x, y, z)
	default:
		return simplexCell3D(n.Seed, x, y, z)
	}
}

// GetNoise2D samples the configured noise field at world-space (x, z),
// applying Frequency scaling and, if FractalType is set, combining Octaves
// samples per the chosen fractal strategy.
func (n *Noise) GetNoise2D(x, z float64) float64 {
	fx, fz := x*n.Frequency, z*n.Frequency

	switch n.FractalType {
	case FractalFBm:
		return n.fbm2D(fx, fz, n.sample2D)
	case FractalRidged:
		return n.ridged2D(fx, fz, n.sample2D)
	case FractalPingPong:
		return n.pingPong2D(fx, fz, n.sample2D)
	case FractalDomainWarpProgressive, FractalDomainWarpIndependent:
		wx, wz := n.domainWarp2D(fx, fz, n.sample2D)
		return n.sample2D(wx, wz)
	default:
		return n.sample2D(fx, fz)
	}
}

// GetNoise3D samples the configured noise field at world-space (x, y, z).
func (n *Noise) GetNoise3D(x, y, z float64) float64 {
	fx, fy, fz := x*n.Frequency, y*n.Frequency, z*n.Frequency

	switch n.FractalType {
	case FractalFBm:
		return n.fbm3D(fx, fy, fz, n.sample3D)
	case FractalRidged:
		return n.ridged3D(fx, fy, fz, n.sample3D)
	case FractalPingPong:
		return n.pingPong3D(fx, fy, fz, n.sample3D)
	default:
		return n.sample3D(fx, fy, fz)
	}
}
