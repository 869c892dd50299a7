// Package palette holds the fixed output palettes of an e-paper panel and
// resolves arbitrary colors to the perceptually nearest palette entry.
package palette

import (
	"errors"
	"fmt"
	"image/color"
	"strings"

	"github.com/lucasb-eyer/go-colorful"

	"github.com/mmuldo/inkdither/colorspace"
)

// ErrLength is returned when a palette and its perceived counterpart differ
// in length, or a palette is empty.
var ErrLength = errors.New("palette: bad length")

// MaxColors is the largest palette a resolver or ditherer accepts.
const MaxColors = 256

// Palette is an ordered list of output colors. Index i of a Palette and of
// its perceived Palette always refer to the same physical ink.
type Palette []colorspace.RGB

var (
	// EInk is the 4-color white/black/red/yellow panel palette.
	EInk = Palette{
		{R: 255, G: 255, B: 255},
		{R: 0, G: 0, B: 0},
		{R: 200, G: 0, B: 0},
		{R: 255, G: 255, B: 0},
	}

	// EInkPerceived is how the EInk inks measure on a real panel.
	EInkPerceived = Palette{
		{R: 177, G: 175, B: 157},
		{R: 46, G: 38, B: 43},
		{R: 177, G: 51, B: 37},
		{R: 198, G: 166, B: 26},
	}
)

// Parse builds a Palette from hex color strings such as "#c80000".
func Parse(hex []string) (Palette, error) {
	if len(hex) == 0 {
		return nil, fmt.Errorf("%w: no colors", ErrLength)
	}
	p := make(Palette, len(hex))
	for i, h := range hex {
		c, err := colorful.Hex(strings.TrimSpace(h))
		if err != nil {
			return nil, fmt.Errorf("palette entry %d: %w", i, err)
		}
		r, g, b := c.RGB255()
		p[i] = colorspace.RGB{R: r, G: g, B: b}
	}
	return p, nil
}

// Hex formats every entry as "#rrggbb".
func (p Palette) Hex() []string {
	out := make([]string, len(p))
	for i, c := range p {
		out[i] = Hex(c)
	}
	return out
}

// Hex formats c as "#rrggbb".
func Hex(c colorspace.RGB) string {
	return colorful.Color{R: float64(c.R) / 255, G: float64(c.G) / 255, B: float64(c.B) / 255}.Hex()
}

// Labs returns the Lab value of every entry.
func (p Palette) Labs() []colorspace.Lab {
	labs := make([]colorspace.Lab, len(p))
	for i, c := range p {
		labs[i] = colorspace.RGBToLab(c)
	}
	return labs
}

// Color returns the palette as a color.Palette.
func (p Palette) Color() color.Palette {
	cp := make(color.Palette, len(p))
	for i, c := range p {
		cp[i] = c
	}
	return cp
}

// Index returns the position of c in p, or -1.
func (p Palette) Index(c colorspace.RGB) int {
	for i, pc := range p {
		if pc == c {
			return i
		}
	}
	return -1
}

// CheckPerceived verifies that perceived, when present, pairs up with p.
func (p Palette) CheckPerceived(perceived Palette) error {
	if len(p) == 0 {
		return fmt.Errorf("%w: empty palette", ErrLength)
	}
	if perceived != nil && len(perceived) != len(p) {
		return fmt.Errorf("%w: %d perceived colors for %d palette colors", ErrLength, len(perceived), len(p))
	}
	return nil
}

// IsReddish reports whether c reads as the panel's red ink.
func IsReddish(c colorspace.RGB) bool {
	return c.R > 150 && c.G < 50 && c.B < 50
}

// IsYellowish reports whether c reads as the panel's yellow ink.
func IsYellowish(c colorspace.RGB) bool {
	return c.R > 200 && c.G > 200 && c.B < 50
}
