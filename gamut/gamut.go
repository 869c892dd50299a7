// Package gamut compresses colors a palette cannot reproduce into the
// range it can, and partially undoes that compression for previews.
//
// Four interchangeable strategies implement Mapper: Grayout desaturates
// hues outside the palette's hue span, Illuminant simulates a colored
// light, and AntiSaturation / CentroidClip project onto the tetrahedron
// spanned by a 4-color palette. Grayout and Illuminant also implement
// Inverter.
package gamut

import (
	"errors"
	"fmt"
	"image"

	"github.com/mmuldo/inkdither/colorspace"
	"github.com/mmuldo/inkdither/internal/raster"
)

// ErrPaletteSize is returned when a tetrahedral strategy is given a palette
// that does not have exactly 4 colors.
var ErrPaletteSize = errors.New("gamut: tetrahedral mapping needs exactly 4 palette colors")

// Mode names a gamut mapping strategy.
type Mode string

const (
	Grayout        Mode = "grayout"
	AntiSaturation Mode = "anti-saturation"
	CentroidClip   Mode = "centroid-clip"
	Illuminant     Mode = "illuminant"
)

// Modes lists every supported Mode.
var Modes = []Mode{Grayout, AntiSaturation, CentroidClip, Illuminant}

// ParseMode accepts a Mode name, case-sensitively.
func ParseMode(s string) (Mode, error) {
	for _, m := range Modes {
		if string(m) == s {
			return m, nil
		}
	}
	return "", fmt.Errorf("gamut: unknown mode %q", s)
}

// Mapper maps a single color into the palette's reproducible range.
// Implementations are immutable and safe for concurrent use.
type Mapper interface {
	MapColor(colorspace.RGB) colorspace.RGB
}

// Inverter approximately undoes a Mapper.
type Inverter interface {
	InvertColor(colorspace.RGB) colorspace.RGB
}

// Map applies m to every pixel of img and returns a new image.
func Map(m Mapper, img *image.NRGBA) *image.NRGBA {
	return raster.Map(img, m.MapColor)
}

// Invert applies the inverse of m when it has one and returns an unchanged
// copy of img otherwise.
func Invert(m Mapper, img *image.NRGBA) *image.NRGBA {
	inv, ok := m.(Inverter)
	if !ok {
		return raster.Clone(img)
	}
	return raster.Map(img, inv.InvertColor)
}

// Params carries the per-mode tuning of New.
type Params struct {
	// Strength is the Grayout strength in [0,1].
	Strength float64

	// Red, Yellow and White are the Illuminant controls in [0,1].
	Red, Yellow, White float64

	// Lab builds the AntiSaturation/CentroidClip tetrahedron in L*a*b*
	// rather than normalised RGB.
	Lab bool
}

// New builds the Mapper for mode from palette p.
func New(mode Mode, p []colorspace.RGB, params Params) (Mapper, error) {
	switch mode {
	case Grayout:
		return NewGrayout(p, params.Strength), nil
	case Illuminant:
		return NewIlluminant(params.Red+params.Yellow, params.Yellow, 0, params.White), nil
	case AntiSaturation, CentroidClip:
		newHull := NewAntiSaturation
		if mode == CentroidClip {
			newHull = NewCentroidClip
		}
		m, err := newHull(p, space(params.Lab))
		if err != nil {
			return nil, err
		}
		return m, nil
	}
	return nil, fmt.Errorf("gamut: unknown mode %q", mode)
}

func space(lab bool) Space {
	if lab {
		return LabSpace
	}
	return RGBSpace
}
