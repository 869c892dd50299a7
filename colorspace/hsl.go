package colorspace

import "math"

// HSL is a hue/saturation/lightness triple with every component in [0,1].
//
// Unlike textbook HSL, S is the raw chroma max−min and is not divided by a
// lightness-dependent term. S and L are therefore independent: scaling S
// leaves L exactly unchanged.
type HSL struct {
	H, S, L float64
}

// RGBToHSL converts an 8-bit color to HSL. Achromatic colors get H = 0.
func RGBToHSL(c RGB) HSL {
	return hslFromUnit(float64(c.R)/255, float64(c.G)/255, float64(c.B)/255)
}

func hslFromUnit(r, g, b float64) HSL {
	hi := math.Max(math.Max(r, g), b)
	lo := math.Min(math.Min(r, g), b)
	d := hi - lo

	var h float64
	if d > 0 {
		switch hi {
		case r:
			h = Mod1(((g - b) / d) / 6)
		case g:
			h = ((b-r)/d + 2) / 6
		default:
			h = ((r-g)/d + 4) / 6
		}
	}
	return HSL{H: Mod1(h), S: d, L: (hi + lo) / 2}
}

// RGB converts back to 8-bit sRGB with round-half-up and clamping.
func (c HSL) RGB() RGB {
	r, g, b := c.unit()
	return RGB{Round(r * 255), Round(g * 255), Round(b * 255)}
}

func (c HSL) unit() (r, g, b float64) {
	if c.S == 0 {
		return c.L, c.L, c.L
	}
	hi := c.L + c.S/2
	lo := c.L - c.S/2
	rng := hi - lo
	h6 := (c.H - math.Floor(c.H)) * 6

	switch {
	case h6 < 1:
		r, g, b = hi, lo+rng*h6, lo
	case h6 < 2:
		r, g, b = lo+rng*(2-h6), hi, lo
	case h6 < 3:
		r, g, b = lo, hi, lo+rng*(h6-2)
	case h6 < 4:
		r, g, b = lo, lo+rng*(4-h6), hi
	case h6 < 5:
		r, g, b = lo+rng*(h6-4), lo, hi
	default:
		r, g, b = hi, lo, lo+rng*(6-h6)
	}
	return clamp01(r), clamp01(g), clamp01(b)
}

// Mod1 wraps x into [0,1).
func Mod1(x float64) float64 {
	x -= math.Floor(x)
	if x >= 1 {
		return 0
	}
	return x
}

// HueDiff returns the signed circular difference h1−h2 in [−0.5, 0.5),
// both hues measured in turns.
func HueDiff(h1, h2 float64) float64 {
	d := Mod1(h1 - h2)
	if d < 0.5 {
		return d
	}
	return d - 1
}
