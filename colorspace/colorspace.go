// Package colorspace converts between 8-bit sRGB, linear RGB, CIE XYZ and
// CIE L*a*b* (D65), implements an HSL variant whose saturation is the raw
// chroma max−min, and measures color differences with CIEDE2000.
package colorspace

import (
	"image/color"
	"math"

	"github.com/jkl1337/go-chromath"
)

// RGB is an 8-bit sRGB color. It implements color.Color as an opaque color.
type RGB struct {
	R, G, B uint8
}

// Lab is a CIE L*a*b* color: L in [0,100], a and b unbounded.
type Lab = chromath.Lab

// XYZ is a CIE XYZ color with Y normalised to 1 for reference white.
type XYZ = chromath.XYZ

// RGBA implements color.Color.
func (c RGB) RGBA() (r, g, b, a uint32) {
	r = uint32(c.R) * 0x101
	g = uint32(c.G) * 0x101
	b = uint32(c.B) * 0x101
	return r, g, b, 0xffff
}

// FromColor converts any color.Color to RGB, dropping alpha after
// un-premultiplying.
func FromColor(c color.Color) RGB {
	if rgb, ok := c.(RGB); ok {
		return rgb
	}
	n := color.NRGBAModel.Convert(c).(color.NRGBA)
	return RGB{n.R, n.G, n.B}
}

// D65 reference white.
const (
	WhiteX = 0.95047
	WhiteY = 1.00000
	WhiteZ = 1.08883
)

const (
	labDelta = 6.0 / 29.0
	// labDelta³ and 3·labDelta²
	labDelta3  = labDelta * labDelta * labDelta
	labDelta2x = 3 * labDelta * labDelta
)

// srgbLinear maps every 8-bit channel value to linear light.
var srgbLinear = func() (t [256]float64) {
	for i := range t {
		t[i] = decode(float64(i) / 255)
	}
	return t
}()

func decode(v float64) float64 {
	if v <= 0.04045 {
		return v / 12.92
	}
	return math.Pow((v+0.055)/1.055, 2.4)
}

// SRGBToLinear returns the linear-light value in [0,1] of an 8-bit channel.
func SRGBToLinear(c uint8) float64 {
	return srgbLinear[c]
}

// LinearToSRGB applies the sRGB transfer curve to a linear value in [0,1]
// and returns the encoded value in [0,1]. Out-of-range input is clamped.
func LinearToSRGB(v float64) float64 {
	v = clamp01(v)
	if v <= 0.0031308 {
		return v * 12.92
	}
	return 1.055*math.Pow(v, 1/2.4) - 0.055
}

// LinearToXYZ converts linear sRGB to XYZ with the D65 matrix.
func LinearToXYZ(r, g, b float64) XYZ {
	return XYZ{
		0.4124564*r + 0.3575761*g + 0.1804375*b,
		0.2126729*r + 0.7151522*g + 0.0721750*b,
		0.0193339*r + 0.1191920*g + 0.9503041*b,
	}
}

// XYZToLinear is the inverse of LinearToXYZ. The result is not clamped.
func XYZToLinear(c XYZ) (r, g, b float64) {
	x, y, z := c.X(), c.Y(), c.Z()
	r = 3.2404542*x - 1.5371385*y - 0.4985314*z
	g = -0.9692660*x + 1.8760108*y + 0.0415560*z
	b = 0.0556434*x - 0.2040259*y + 1.0572252*z
	return r, g, b
}

func labF(t float64) float64 {
	if t > labDelta3 {
		return math.Cbrt(t)
	}
	return t/labDelta2x + 4.0/29.0
}

func labFInv(f float64) float64 {
	if f > labDelta {
		return f * f * f
	}
	return labDelta2x * (f - 4.0/29.0)
}

// XYZToLab converts XYZ to L*a*b* relative to D65.
func XYZToLab(c XYZ) Lab {
	fx := labF(c.X() / WhiteX)
	fy := labF(c.Y() / WhiteY)
	fz := labF(c.Z() / WhiteZ)
	return Lab{116*fy - 16, 500 * (fx - fy), 200 * (fy - fz)}
}

// LabToXYZ is the inverse of XYZToLab.
func LabToXYZ(c Lab) XYZ {
	fy := (c.L() + 16) / 116
	fx := fy + c.A()/500
	fz := fy - c.B()/200
	return XYZ{WhiteX * labFInv(fx), WhiteY * labFInv(fy), WhiteZ * labFInv(fz)}
}

// RGBToLab converts an 8-bit sRGB color to L*a*b*.
func RGBToLab(c RGB) Lab {
	return XYZToLab(LinearToXYZ(srgbLinear[c.R], srgbLinear[c.G], srgbLinear[c.B]))
}

// LabToRGB converts L*a*b* back to 8-bit sRGB, clamping out-of-gamut values.
func LabToRGB(c Lab) RGB {
	r, g, b := XYZToLinear(LabToXYZ(c))
	return RGB{
		Round(255 * LinearToSRGB(r)),
		Round(255 * LinearToSRGB(g)),
		Round(255 * LinearToSRGB(b)),
	}
}

// Round converts a channel value on the 0–255 scale to uint8 by adding 0.5,
// truncating and clamping. NaN maps to 0.
func Round(v float64) uint8 {
	v += 0.5
	switch {
	case !(v > 0):
		return 0
	case v >= 255:
		return 255
	}
	return uint8(v)
}

// Luma709 returns the BT.709 weighted sum of three channel values.
func Luma709(r, g, b float64) float64 {
	return 0.2126*r + 0.7152*g + 0.0722*b
}

func clamp01(v float64) float64 {
	switch {
	case !(v > 0):
		return 0
	case v > 1:
		return 1
	}
	return v
}
