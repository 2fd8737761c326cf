package noise

import "math"

// fractalBounding computes the normalization factor that keeps an Octaves-deep
// fBm-style sum within roughly [-1, 1] regardless of Gain.
func fractalBounding(octaves int, gain float64) float64 {
	amp := gain
	total := 1.0
	for i := 1; i < octaves; i++ {
		total += amp
		amp *= gain
	}
	if total == 0 {
		return 1
	}
	return 1 / total
}

func (n *Noise) fbm2D(x, y float64, sample func(x, y float64) float64) float64 {
	sum := 0.0
	amp := n.fractalBound
	freq := 1.0
	for o := 0; o < n.Octaves; o++ {
		v := sample(x*freq, y*freq)
		sum += v * amp
		freq *= n.Lacunarity
		amp *= n.Gain
	}
	return sum
}

func (n *Noise) fbm3D(x, y, z float64, sample func(x, y, z float64) float64) float64 {
	sum := 0.0
	amp := n.fractalBound
	freq := 1.0
	for o := 0; o < n.Octaves; o++ {
		v := sample(x*freq, y*freq, z*freq)
		sum += v * amp
		freq *= n.Lacunarity
		amp *= n.Gain
	}
	return sum
}

func (n *Noise) ridged2D(x, y float64, sample func(x, y float64) float64) float64 {
	sum := 0.0
	amp := n.fractalBound
	freq := 1.0
	for o := 0; o < n.Octaves; o++ {
		v := 1 - math.Abs(sample(x*freq, y*freq))
		sum += (v*2 - 1) * amp
		freq *= n.Lacunarity
		amp *= n.Gain
	}
	return sum
}

func (n *Noise) ridged3D(x, y, z float64, sample func(x, y, z float64) float64) float64 {
	sum := 0.0
	amp := n.fractalBound
	freq := 1.0
	for o := 0; o < n.Octaves; o++ {
		v := 1 - math.Abs(sample(x*freq, y*freq, z*freq))
		sum += (v*2 - 1) * amp
		freq *= n.Lacunarity
		amp *= n.Gain
	}
	return sum
}

func (n *Noise) pingPong2D(x, y float64, sample func(x, y float64) float64) float64 {
	sum := 0.0
	amp := n.fractalBound
	freq := 1.0
	for o := 0; o < n.Octaves; o++ {
		v := pingPong((sample(x*freq, y*freq) + 1) * n.PingPongStrength)
		sum += (v - 0.5) * 2 * amp
		freq *= n.Lacunarity
		amp *= n.Gain
	}
	return sum
}

func (n *Noise) pingPong3D(x, y, z float64, sample func(x, y, z float64) float64) float64 {
	sum := 0.0
	amp := n.fractalBound
	freq := 1.0
	for o := 0; o < n.Octaves; o++ {
		v := pingPong((sample(x*freq, y*freq, z*freq) + 1) * n.PingPongStrength)
		sum += (v - 0.5) * 2 * amp
		freq *= n.Lacunarity
		amp *= n.Gain
	}
	return sum
}

func pingPong(t float64) float64 {
	t -= math.Floor(t*0.5) * 2
	if t < 1 {
		return t
	}
	return 2 - t
}

// domainWarp2D offsets (x,y) using the noise field itself, the "progressive"
// and "independent" variants differing only in whether each octave's offset
// is added to the point warped by the previous octaves (progressive) or to
// the original (x,y) (independent).
func (n *Noise) domainWarp2D(x, y float64, sample func(x, y float64) float64) (float64, float64) {
	amp := n.DomainWarpAmp * n.fractalBound
	freq := 1.0
	wx, wy := x, y
	for o := 0; o < n.Octaves; o++ {
		dx := sample(wx*freq+0.0, wy*freq+0.0) * amp
		dy := sample(wx*freq+37.2, wy*freq+91.1) * amp
		if n.FractalType == FractalDomainWarpProgressive {
			wx += dx
			wy += dy
		} else {
			wx = x + dx
			wy = y + dy
		}
		freq *= n.Lacunarity
		amp *= n.Gain
	}
	return wx, wy
}
