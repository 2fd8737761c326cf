package noise

import "math"

// perlin2D is classic gradient noise with a quintic fade curve.
func perlin2D(seed int32, x, y float64) float64 {
	x0 := floorToInt(x)
	y0 := floorToInt(y)
	x1, y1 := x0+1, y0+1

	sx := x - float64(x0)
	sy := y - float64(y0)

	g00x, g00y := gradient2D(seed, x0, y0)
	g10x, g10y := gradient2D(seed, x1, y0)
	g01x, g01y := gradient2D(seed, x0, y1)
	g11x, g11y := gradient2D(seed, x1, y1)

	d00 := g00x*sx + g00y*sy
	d10 := g10x*(sx-1) + g10y*sy
	d01 := g01x*sx + g01y*(sy-1)
	d11 := g11x*(sx-1) + g11y*(sy-1)

	u := quintic(sx)
	v := quintic(sy)

	nx0 := lerp(d00, d10, u)
	nx1 := lerp(d01, d11, u)
	return lerp(nx0, nx1, v) * 1.4142135623730951
}

func perlin3D(seed int32, x, y, z float64) float64 {
	x0, y0, z0 := floorToInt(x), floorToInt(y), floorToInt(z)
	x1, y1, z1 := x0+1, y0+1, z0+1
	sx, sy, sz := x-float64(x0), y-float64(y0), z-float64(z0)

	lerpCorner := func(ix, iy, iz int32, fx, fy, fz float64) float64 {
		gx, gy, gz := gradient3D(seed, ix, iy, iz)
		return gx*fx + gy*fy + gz*fz
	}

	c000 := lerpCorner(x0, y0, z0, sx, sy, sz)
	c100 := lerpCorner(x1, y0, z0, sx-1, sy, sz)
	c010 := lerpCorner(x0, y1, z0, sx, sy-1, sz)
	c110 := lerpCorner(x1, y1, z0, sx-1, sy-1, sz)
	c001 := lerpCorner(x0, y0, z1, sx, sy, sz-1)
	c101 := lerpCorner(x1, y0, z1, sx-1, sy, sz-1)
	c011 := lerpCorner(x0, y1, z1, sx, sy-1, sz-1)
	c111 := lerpCorner(x1, y1, z1, sx-1, sy-1, sz-1)

	u, v, w := quintic(sx), quintic(sy), quintic(sz)

	x00 := lerp(c000, c100, u)
	x10 := lerp(c010, c110, u)
	x01 := lerp(c001, c101, u)
	x11 := lerp(c011, c111, u)
	y0l := lerp(x00, x10, v)
	y1l := lerp(x01, x11, v)
	return lerp(y0l, y1l, w)
}

// value2D samples the lattice-value noise used by Value; ValueCubic
// interpolates the same valCoord2D lattice values cubically instead.
func value2D(seed int32, x, y float64) float64 {
	x0, y0 := floorToInt(x), floorToInt(y)
	x1, y1 := x0+1, y0+1
	sx, sy := x-float64(x0), y-float64(y0)

	v00 := valCoord2D(seed, x0, y0)
	v10 := valCoord2D(seed, x1, y0)
	v01 := valCoord2D(seed, x0, y1)
	v11 := valCoord2D(seed, x1, y1)

	u := quintic(sx)
	v := quintic(sy)
	return lerp(lerp(v00, v10, u), lerp(v01, v11, u), v)
}

func value3D(seed int32, x, y, z float64) float64 {
	x0, y0, z0 := floorToInt(x), floorToInt(y), floorToInt(z)
	x1, y1, z1 := x0+1, y0+1, z0+1
	sx, sy, sz := x-float64(x0), y-float64(y0), z-float64(z0)

	c000 := valCoord3D(seed, x0, y0, z0)
	c100 := valCoord3D(seed, x1, y0, z0)
	c010 := valCoord3D(seed, x0, y1, z0)
	c110 := valCoord3D(seed, x1, y1, z0)
	c001 := valCoord3D(seed, x0, y0, z1)
	c101 := valCoord3D(seed, x1, y0, z1)
	c011 := valCoord3D(seed, x0, y1, z1)
	c111 := valCoord3D(seed, x1, y1, z1)

	u, v, w := quintic(sx), quintic(sy), quintic(sz)
	x00 := lerp(c000, c100, u)
	x10 := lerp(c010, c110, u)
	x01 := lerp(c001, c101, u)
	x11 := lerp(c011, c111, u)
	y0l := lerp(x00, x10, v)
	y1l := lerp(x01, x11, v)
	return lerp(y0l, y1l, w)
}

// cubic interpolates four samples with a Catmull-Rom-style cubic, giving
// ValueCubic its smoother second derivative relative to plain Value noise.
func cubic(a, b, c, d, t float64) float64 {
	p := (d - c) - (a - b)
	q := (a - b) - p
	r := c - a
	s := b
	return p*t*t*t + q*t*t + r*t + s
}

func valueCubic2D(seed int32, x, y float64) float64 {
	x1, y1 := floorToInt(x), floorToInt(y)
	sx, sy := x-float64(x1), y-float64(y1)

	var samples [4][4]float64
	for j := -1; j <= 2; j++ {
		for i := -1; i <= 2; i++ {
			samples[j+1][i+1] = valCoord2D(seed, x1+int32(i), y1+int32(j))
		}
	}
	var col [4]float64
	for j := 0; j < 4; j++ {
		col[j] = cubic(samples[j][0], samples[j][1], samples[j][2], samples[j][3], sx)
	}
	return cubic(col[0], col[1], col[2], col[3], sy) * 0.7
}

// cellular2D implements Worley/cellular noise, returning the signed
// normalized distance to the nearest feature point (F1).
func cellular2D(seed int32, x, y float64) float64 {
	xr, yr := floorToInt(x), floorToInt(y)
	minDist := math.MaxFloat64

	for yi := yr - 1; yi <= yr+1; yi++ {
		for xi := xr - 1; xi <= xr+1; xi++ {
			h := hash2D(seed, xi, yi)
			fx := float64(xi) + 0.5 + (float64(uint32(h)%1000)/1000.0-0.5)*0.9
			fy := float64(yi) + 0.5 + (float64(uint32(h>>8)%1000)/1000.0-0.5)*0.9
			dx, dy := fx-x, fy-y
			d := dx*dx + dy*dy
			if d < minDist {
				minDist = d
			}
		}
	}
	return math.Min(math.Sqrt(minDist)*1.2-1, 1)
}

func cellular3D(seed int32, x, y, z float64) float64 {
	xr, yr, zr := floorToInt(x), floorToInt(y), floorToInt(z)
	minDist := math.MaxFloat64

	for zi := zr - 1; zi <= zr+1; zi++ {
		for yi := yr - 1; yi <= yr+1; yi++ {
			for xi := xr - 1; xi <= xr+1; xi++ {
				h := hash3D(seed, xi, yi, zi)
				fx := float64(xi) + 0.5 + (float64(uint32(h)%1000)/1000.0-0.5)*0.9
				fy := float64(yi) + 0.5 + (float64(uint32(h>>8)%1000)/1000.0-0.5)*0.9
				fz := float64(zi) + 0.5 + (float64(uint32(h>>16)%1000)/1000.0-0.5)*0.9
				dx, dy, dz := fx-x, fy-y, fz-z
				d := dx*dx + dy*dy + dz*dz
				if d < minDist {
					minDist = d
				}
			}
		}
	}
	return math.Min(math.Sqrt(minDist)*1.0-1, 1)
}

// simplexCell2D backs both OpenSimplex2 (smooth=false) and OpenSimplex2S
// (smooth=true). It is not a bit-for-bit port of the reference OpenSimplex2
// lattice but shares its skewed-simplex-cell structure; the smooth variant
// differs only in doubling each corner's contribution.
const skew2D = 0.366025403784439
const unskew2D = 0.21132486540518713

func simplexCell2D(seed int32, x, y float64, smooth bool) float64 {
	s := (x + y) * skew2D
	xs, ys := x+s, y+s
	xsb, ysb := floorToInt(xs), floorToInt(ys)

	xi, yi := xs-float64(xsb), ys-float64(ysb)
	t := (xi + yi) * unskew2D
	x0, y0 := xi-t, yi-t

	var xsv, ysv int32
	if x0 > y0 {
		xsv, ysv = 1, 0
	} else {
		xsv, ysv = 0, 1
	}

	contribute := func(cx, cy int32, dx, dy float64) float64 {
		attn := 0.5 - dx*dx - dy*dy
		if attn <= 0 {
			return 0
		}
		gx, gy := gradient2D(seed, xsb+cx, ysb+cy)
		grad := gx*dx + gy*dy
		if smooth {
			attn *= attn
			return attn * attn * grad * 2
		}
		attn *= attn
		return attn * attn * grad
	}

	n0 := contribute(0, 0, x0, y0)
	n1 := contribute(xsv, ysv, x0-float64(xsv)+unskew2D, y0-float64(ysv)+unskew2D)
	n2 := contribute(1, 1, x0-1+2*unskew2D, y0-1+2*unskew2D)

	return (n0 + n1 + n2) * 70
}

func simplexCell3D(seed int32, x, y, z float64) float64 {
	const f3 = 1.0 / 3.0
	const g3 = 1.0 / 6.0
	s := (x + y + z) * f3
	xs, ys, zs := x+s, y+s, z+s
	i, j, k := floorToInt(xs), floorToInt(ys), floorToInt(zs)

	t := float64(i+j+k) * g3
	x0 := x - (float64(i) - t)
	y0 := y - (float64(j) - t)
	z0 := z - (float64(k) - t)

	var i1, j1, k1, i2, j2, k2 int32
	switch {
	case x0 >= y0 && y0 >= z0:
		i1, j1, k1, i2, j2, k2 = 1, 0, 0, 1, 1, 0
	case x0 >= z0 && z0 >= y0:
		i1, j1, k1, i2, j2, k2 = 1, 0, 0, 1, 0, 1
	case z0 >= x0 && x0 >= y0:
		i1, j1, k1, i2, j2, k2 = 0, 0, 1, 1, 0, 1
	case z0 >= y0 && y0 >= x0:
		i1, j1, k1, i2, j2, k2 = 0, 0, 1, 0, 1, 1
	case y0 >= z0 && z0 >= x0:
		i1, j1, k1, i2, j2, k2 = 0, 1, 0, 0, 1, 1
	default:
		i1, j1, k1, i2, j2, k2 = 0, 1, 0, 1, 1, 0
	}

	contribute := func(ci, cj, ck int32, dx, dy, dz float64) float64 {
		attn := 0.6 - dx*dx - dy*dy - dz*dz
		if attn <= 0 {
			return 0
		}
		gx, gy, gz := gradient3D(seed, i+ci, j+cj, k+ck)
		grad := gx*dx + gy*dy + gz*dz
		attn *= attn
		return attn * attn * grad
	}

	n0 := contribute(0, 0, 0, x0, y0, z0)
	n1 := contribute(i1, j1, k1, x0-float64(i1)+g3, y0-float64(j1)+g3, z0-float64(k1)+g3)
	n2 := contribute(i2, j2, k2, x0-float64(i2)+2*g3, y0-float64(j2)+2*g3, z0-float64(k2)+2*g3)
	n3 := contribute(1, 1, 1, x0-1+3*g3, y0-1+3*g3, z0-1+3*g3)

	return (n0 + n1 + n2 + n3) * 32
}
