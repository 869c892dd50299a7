package colorspace

import (
	"math"
	"math/rand"
	"testing"
)

func near(a, b, tol float64) bool { return math.Abs(a-b) <= tol }

func channelDiff(a, b RGB) int {
	d := 0
	for _, p := range [][2]uint8{{a.R, b.R}, {a.G, b.G}, {a.B, b.B}} {
		x := int(p[0]) - int(p[1])
		if x < 0 {
			x = -x
		}
		d = max(d, x)
	}
	return d
}

func TestRGBToLabReferencePoints(t *testing.T) {
	tests := []struct {
		name    string
		in      RGB
		l, a, b float64
	}{
		{"white", RGB{255, 255, 255}, 100, 0, 0},
		{"black", RGB{0, 0, 0}, 0, 0, 0},
		{"red", RGB{255, 0, 0}, 53.24, 80.09, 67.20},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lab := RGBToLab(tt.in)
			if !near(lab.L(), tt.l, 0.5) || !near(lab.A(), tt.a, 0.5) || !near(lab.B(), tt.b, 0.5) {
				t.Errorf("RGBToLab(%v) = %v, want ≈ (%v, %v, %v)", tt.in, lab, tt.l, tt.a, tt.b)
			}
		})
	}
}

func TestLabRoundTrip(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	for i := 0; i < 5000; i++ {
		c := RGB{uint8(rng.Intn(256)), uint8(rng.Intn(256)), uint8(rng.Intn(256))}
		if got := LabToRGB(RGBToLab(c)); channelDiff(got, c) > 1 {
			t.Fatalf("Lab round trip of %v = %v", c, got)
		}
	}
}

func TestHSLRoundTrip(t *testing.T) {
	for r := 0; r < 256; r += 5 {
		for g := 0; g < 256; g += 5 {
			for b := 0; b < 256; b += 5 {
				c := RGB{uint8(r), uint8(g), uint8(b)}
				if got := RGBToHSL(c).RGB(); channelDiff(got, c) > 1 {
					t.Fatalf("HSL round trip of %v = %v", c, got)
				}
			}
		}
	}
}

func TestHSLSaturationIsChroma(t *testing.T) {
	hsl := RGBToHSL(RGB{0, 0, 255})
	if !near(hsl.S, 1, 1e-12) || !near(hsl.L, 0.5, 1e-12) || !near(hsl.H, 2.0/3, 1e-12) {
		t.Errorf("blue HSL = %+v", hsl)
	}
	if gray := RGBToHSL(RGB{128, 128, 128}); gray.S != 0 || gray.H != 0 {
		t.Errorf("gray HSL = %+v, want achromatic", gray)
	}

	// Halving S must leave L untouched.
	c := RGBToHSL(RGB{200, 40, 90})
	c2 := c
	c2.S /= 2
	if got := RGBToHSL(c2.RGB()); !near(got.L, c.L, 1.0/255) {
		t.Errorf("lightness moved from %v to %v", c.L, got.L)
	}
}

func TestHueDiff(t *testing.T) {
	tests := []struct{ h1, h2, want float64 }{
		{0.1, 0.1, 0},
		{0.2, 0.1, 0.1},
		{0.1, 0.2, -0.1},
		{0.95, 0.05, -0.1},
		{0.05, 0.95, 0.1},
	}
	for _, tt := range tests {
		if got := HueDiff(tt.h1, tt.h2); !near(got, tt.want, 1e-12) {
			t.Errorf("HueDiff(%v, %v) = %v, want %v", tt.h1, tt.h2, got, tt.want)
		}
	}
}

func TestRound(t *testing.T) {
	tests := []struct {
		in   float64
		want uint8
	}{
		{-3, 0}, {0.49, 0}, {0.5, 1}, {127.5, 128}, {254.49, 254}, {254.5, 255}, {300, 255}, {math.NaN(), 0},
	}
	for _, tt := range tests {
		if got := Round(tt.in); got != tt.want {
			t.Errorf("Round(%v) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestCIEDE2000Identity(t *testing.T) {
	rng := rand.New(rand.NewSource(2))
	for i := 0; i < 1000; i++ {
		lab := RGBToLab(RGB{uint8(rng.Intn(256)), uint8(rng.Intn(256)), uint8(rng.Intn(256))})
		if d := CIEDE2000(lab, lab); d != 0 {
			t.Fatalf("CIEDE2000(x, x) = %v for %v", d, lab)
		}
	}
}

func TestCIEDE2000Symmetric(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	for i := 0; i < 1000; i++ {
		a := RGBToLab(RGB{uint8(rng.Intn(256)), uint8(rng.Intn(256)), uint8(rng.Intn(256))})
		b := RGBToLab(RGB{uint8(rng.Intn(256)), uint8(rng.Intn(256)), uint8(rng.Intn(256))})
		if d1, d2 := CIEDE2000(a, b), CIEDE2000(b, a); !near(d1, d2, 1e-10) {
			t.Fatalf("asymmetric: %v vs %v", d1, d2)
		}
	}
}

// Reference pairs from Sharma, Wu and Dalal (2005).
func TestCIEDE2000Sharma(t *testing.T) {
	tests := []struct {
		a, b Lab
		want float64
	}{
		{Lab{50, 2.6772, -79.7751}, Lab{50, 0, -82.7485}, 2.0425},
		{Lab{50, 3.1571, -77.2803}, Lab{50, 0, -82.7485}, 2.8615},
		{Lab{50, -1.3802, -84.2814}, Lab{50, 0, -82.7485}, 1.0000},
		{Lab{50, 0, 0}, Lab{50, -1, 2}, 2.3669},
		{Lab{50, 2.49, -0.001}, Lab{50, -2.49, 0.0009}, 7.1792},
		{Lab{50, 2.5, 0}, Lab{73, 25, -18}, 27.1492},
		{Lab{2.0776, 0.0795, -1.135}, Lab{0.9033, -0.0636, -0.5514}, 0.9082},
	}
	for _, tt := range tests {
		if got := CIEDE2000(tt.a, tt.b); !near(got, tt.want, 5e-4) {
			t.Errorf("CIEDE2000(%v, %v) = %.4f, want %.4f", tt.a, tt.b, got, tt.want)
		}
	}
}

func BenchmarkCIEDE2000(b *testing.B) {
	x := RGBToLab(RGB{200, 30, 40})
	y := RGBToLab(RGB{255, 255, 0})
	for i := 0; i < b.N; i++ {
		CIEDE2000(x, y)
	}
}
