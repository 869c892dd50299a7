package gamut

import (
	"math"

	"github.com/mmuldo/inkdither/colorspace"
)

// HueTolerance is the hue distance, in turns, at or beyond which Grayout
// fully desaturates a clipped color.
const HueTolerance = 60.0 / 360.0

// chromaticS is the minimum HSL saturation for a palette color to count
// towards the hue span.
const chromaticS = 0.01

// GrayoutMapper desaturates colors whose hue falls outside the hue span of
// the palette's chromatic colors, keeping HSL lightness exactly.
type GrayoutMapper struct {
	strength float64
	hueMin   float64
	hueRange float64
}

// NewGrayout derives the hue span from p. strength is clamped to [0,1];
// zero yields the identity.
func NewGrayout(p []colorspace.RGB, strength float64) *GrayoutMapper {
	g := &GrayoutMapper{strength: math.Min(math.Max(strength, 0), 1)}
	g.hueMin, g.hueRange = HueSpan(p)
	return g
}

// HueSpan returns the hue interval [min, min+span) in turns covering every
// chromatic color of p, measured around the hue of p's RGB centroid.
// A palette without chromatic colors yields the centroid hue and span 0.
func HueSpan(p []colorspace.RGB) (hueMin, span float64) {
	if len(p) == 0 {
		return 0, 0
	}
	var rs, gs, bs float64
	for _, c := range p {
		rs += float64(c.R)
		gs += float64(c.G)
		bs += float64(c.B)
	}
	n := float64(len(p))
	center := colorspace.RGBToHSL(colorspace.RGB{
		R: uint8(rs / n), G: uint8(gs / n), B: uint8(bs / n),
	}).H

	var lo, hi float64
	for _, c := range p {
		hsl := colorspace.RGBToHSL(c)
		if hsl.S <= chromaticS {
			continue
		}
		d := colorspace.HueDiff(hsl.H, center)
		lo = math.Min(lo, d)
		hi = math.Max(hi, d)
	}
	return colorspace.Mod1(center + lo), hi - lo
}

// clipHue moves h to the nearer end of the span when it lies outside.
func (g *GrayoutMapper) clipHue(h float64) float64 {
	radius := g.hueRange / 2
	center := colorspace.Mod1(g.hueMin + radius)
	switch d := colorspace.HueDiff(h, center); {
	case d < -radius:
		return colorspace.Mod1(center - radius)
	case d > radius:
		return colorspace.Mod1(center + radius)
	}
	return h
}

// shift returns the signed hue move towards the span and the saturation
// factor that Grayout applies to a color of hue h. Both depend only on h.
func (g *GrayoutMapper) shift(h float64) (delta, factor float64) {
	delta = colorspace.HueDiff(g.clipHue(h), h)
	desat := 0.0
	if d := math.Abs(delta); d < HueTolerance {
		desat = 1 - d/HueTolerance
	}
	return delta, 1 - g.strength*(1-desat)
}

// MapColor implements Mapper.
func (g *GrayoutMapper) MapColor(c colorspace.RGB) colorspace.RGB {
	if g.strength <= 0 {
		return c
	}
	hsl := colorspace.RGBToHSL(c)
	if hsl.S == 0 {
		return c
	}
	delta, factor := g.shift(hsl.H)
	return colorspace.HSL{
		H: colorspace.Mod1(hsl.H + g.strength*delta),
		S: hsl.S * factor,
		L: hsl.L,
	}.RGB()
}

// InvertColor implements Inverter. It divides out the saturation factor
// Grayout would apply at the observed hue. The hue itself is kept: the
// original hue diversity was destroyed by clipping.
func (g *GrayoutMapper) InvertColor(c colorspace.RGB) colorspace.RGB {
	if g.strength <= 0 {
		return c
	}
	hsl := colorspace.RGBToHSL(c)
	if hsl.S == 0 {
		return c
	}
	_, factor := g.shift(hsl.H)
	// Fully desaturated colors are unrecoverable.
	if math.Abs(factor) <= 1e-12 {
		return c
	}
	hsl.S /= factor
	return hsl.RGB()
}
