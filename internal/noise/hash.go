package noise

// Deterministic integer hashing used to turn (seed, latticeX, latticeY,
// latticeZ) into a reproducible pseudo-random stream. Every base algorithm
// in this package derives its gradients/values from hash2D/hash3D rather
// than from a seeded math/rand generator, so a chunk regenerated after
// cache eviction (spec.md §3, CacheEntry) reproduces byte-for-byte.
const (
	primeX = 501125321
	primeY = 1136930381
	primeZ = 1720413743
)

func hash2D(seed, x, y int32) int32 {
	h := seed ^ (x * primeX) ^ (y * primeY)
	h *= 0x27d4eb2d
	return h
}

func hash3D(seed, x, y, z int32) int32 {
	h := seed ^ (x * primeX) ^ (y * primeY) ^ (z * primeZ)
	h *= 0x27d4eb2d
	return h
}

// valCoord2D turns a lattice hash into a value in [-1, 1].
func valCoord2D(seed, x, y int32) float64 {
	h := hash2D(seed, x, y)
	h *= h
	h ^= h << 19
	return float64(h) / float64(int64(1)<<31)
}

func valCoord3D(seed, x, y, z int32) float64 {
	h := hash3D(seed, x, y, z)
	h *= h
	h ^= h << 19
	return float64(h) / float64(int64(1)<<31)
}

// gradient2D returns a deterministic unit-ish gradient vector selected by
// hashing the lattice point, following the small fixed gradient table
// standard to Perlin/Simplex implementations.
var gradients2D = [8][2]float64{
	{1, 0}, {-1, 0}, {0, 1}, {0, -1},
	{0.7071, 0.7071}, {-0.7071, 0.7071}, {0.7071, -0.7071}, {-0.7071, -0.7071},
}

func gradient2D(seed, x, y int32) (float64, float64) {
	h := hash2D(seed, x, y)
	idx := uint32(h) % uint32(len(gradients2D))
	g := gradients2D[idx]
	return g[0], g[1]
}

var gradients3D = [12][3]float64{
	{1, 1, 0}, {-1, 1, 0}, {1, -1, 0}, {-1, -1, 0},
	{1, 0, 1}, {-1, 0, 1}, {1, 0, -1}, {-1, 0, -1},
	{0, 1, 1}, {0, -1, 1}, {0, 1, -1}, {0, -1, -1},
}

func gradient3D(seed, x, y, z int32) (float64, float64, float64) {
	h := hash3D(seed, x, y, z)
	idx := uint32(h) % uint32(len(gradients3D))
	g := gradients3D[idx]
	return g[0], g[1], g[2]
}

func floorToInt(v float64) int32 {
	i := int32(v)
	if v < float64(i) {
		i--
	}
	return i
}

func lerp(a, b, t float64) float64 { return a + t*(b-a) }

// quintic is Perlin's improved fade curve, 6t^5 - 15t^4 + 10t^3.
func quintic(t float64) float64 {
	return t * t * t * (t*(t*6-15) + 10)
}
