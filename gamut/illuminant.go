package gamut

import (
	"math"

	"github.com/mmuldo/inkdither/colorspace"
)

// zeroScale is the magnitude below which a channel scale counts as zero.
const zeroScale = 1e-12

// IlluminantMapper multiplies each channel by a fixed scale, as if the
// image were lit by colored light. Scales are normalised so that the
// BT.709 luma of a neutral color is preserved.
type IlluminantMapper struct {
	scale         [3]float64
	whitePreserve float64
}

// NewIlluminant builds an Illuminant from raw channel scales and a
// white-preserve strength in [0,1]. When the luma of the raw scales is zero
// they are used unnormalised.
func NewIlluminant(r, g, b, whitePreserve float64) *IlluminantMapper {
	norm := 1.0
	if lum := colorspace.Luma709(r, g, b); lum > zeroScale {
		norm = 1 / lum
	}
	return &IlluminantMapper{
		scale:         [3]float64{r * norm, g * norm, b * norm},
		whitePreserve: math.Max(whitePreserve, 0),
	}
}

// Scale returns the normalised per-channel scales.
func (m *IlluminantMapper) Scale() [3]float64 { return m.scale }

// preserve is the fraction of the original kept for a color whose channel
// mean is mean (0–255): quadratic in brightness so highlights stay white.
func (m *IlluminantMapper) preserve(mean float64) float64 {
	l := mean / 255
	return math.Min(math.Max(l*l*m.whitePreserve, 0), 1)
}

// MapColor implements Mapper.
func (m *IlluminantMapper) MapColor(c colorspace.RGB) colorspace.RGB {
	in := [3]float64{float64(c.R), float64(c.G), float64(c.B)}
	p := 0.0
	if m.whitePreserve > 0 {
		p = m.preserve((in[0] + in[1] + in[2]) / 3)
	}
	var out [3]uint8
	for i, v := range in {
		out[i] = colorspace.Round(v*m.scale[i]*(1-p) + v*p)
	}
	return colorspace.RGB{R: out[0], G: out[1], B: out[2]}
}

// InvertColor implements Inverter.
//
// Without white preservation every channel is divided by its scale; a
// channel scaled to zero cannot be recovered and comes back as 0. With
// white preservation the blend depends on the unknown original brightness,
// so the estimate is refined twice. Channels scaled to zero are seeded from
// the mean of the others and then blended towards the observed value in
// the shadows, which keeps dark areas from turning into a strong color cast
// that the forward pass never produced.
func (m *IlluminantMapper) InvertColor(c colorspace.RGB) colorspace.RGB {
	out := [3]float64{float64(c.R), float64(c.G), float64(c.B)}
	var zero [3]bool
	var inv [3]float64
	for i, s := range m.scale {
		if math.Abs(s) > zeroScale {
			inv[i] = 1 / s
		} else {
			zero[i] = true
		}
	}

	if m.whitePreserve <= 0 {
		return round3(out[0]*inv[0], out[1]*inv[1], out[2]*inv[2])
	}

	var est [3]float64
	var sum float64
	var valid int
	for i := range out {
		est[i] = out[i] * inv[i]
		if !zero[i] {
			sum += est[i]
			valid++
		}
	}
	if valid > 0 && valid < 3 {
		for i := range est {
			if zero[i] {
				est[i] = sum / float64(valid)
			}
		}
	}
	for i := range est {
		est[i] = clamp255(est[i])
	}

	for iter := 0; iter < 2; iter++ {
		p := m.preserve((est[0] + est[1] + est[2]) / 3)
		for i := range est {
			combined := m.scale[i]*(1-p) + p
			if math.Abs(combined) <= zeroScale {
				combined = 1
			}
			est[i] = clamp255(out[i] / combined)
			if zero[i] {
				est[i] = p*est[i] + (1-p)*out[i]
			}
		}
	}
	return round3(est[0], est[1], est[2])
}

func clamp255(v float64) float64 {
	return math.Min(math.Max(v, 0), 255)
}

func round3(r, g, b float64) colorspace.RGB {
	return colorspace.RGB{R: colorspace.Round(r), G: colorspace.Round(g), B: colorspace.Round(b)}
}
