package noise

import "testing"

func TestGetNoise2DDeterministic(t *testing.T) {
	n1 := New(42)
	n2 := New(42)

	for _, pt := range [][2]float64{{0, 0}, {12.5, -7.25}, {1000, 1000}} {
		a := n1.GetNoise2D(pt[0], pt[1])
		b := n2.GetNoise2D(pt[0], pt[1])
		if a != b {
			t.Fatalf("GetNoise2D(%v) not deterministic: %v != %v", pt, a, b)
		}
	}
}

func TestGetNoise2DDifferentSeedsDiverge(t *testing.T) {
	n1 := New(1)
	n2 := New(2)

	same := true
	for x := 0.0; x < 64; x++ {
		if n1.GetNoise2D(x, 0) != n2.GetNoise2D(x, 0) {
			same = false
			break
		}
	}
	if same {
		t.Fatal("expected different seeds to produce different noise fields")
	}
}

func TestGetNoise2DBounded(t *testing.T) {
	n := New(7)
	n.FractalType = FractalFBm
	n.SetFractalOctaves(4, 0.5, 2.0)

	for x := 0.0; x < 256; x += 3.7 {
		for z := 0.0; z < 256; z += 5.3 {
			v := n.GetNoise2D(x, z)
			if v < -1.5 || v > 1.5 {
				t.Fatalf("GetNoise2D(%v,%v) = %v out of expected range", x, z, v)
			}
		}
	}
}

func TestGetNoise3DDeterministic(t *testing.T) {
	n1 := New(99)
	n2 := New(99)
	n1.Type = Cellular
	n2.Type = Cellular

	for _, pt := range [][3]float64{{0, 0, 0}, {3, 40, -3}, {128, 10, 128}} {
		a := n1.GetNoise3D(pt[0], pt[1], pt[2])
		b := n2.GetNoise3D(pt[0], pt[1], pt[2])
		if a != b {
			t.Fatalf("GetNoise3D(%v) not deterministic: %v != %v", pt, a, b)
		}
	}
}

func TestAllBaseTypesProduceFiniteValues(t *testing.T) {
	types := []Type{OpenSimplex2, OpenSimplex2S, Cellular, Perlin, ValueCubic, Value}
	for _, ty := range types {
		n := New(5)
		n.Type = ty
		v2 := n.GetNoise2D(10, 20)
		v3 := n.GetNoise3D(10, 20, 30)
		if v2 != v2 || v3 != v3 {
			t.Fatalf("type %v produced NaN", ty)
		}
	}
}
