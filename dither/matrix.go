package dither

import (
	"fmt"
	"image"
	"sort"

	"github.com/makeworld-the-better-one/dither/v2"

	"github.com/mmuldo/inkdither/internal/raster"
	"github.com/mmuldo/inkdither/palette"
)

// FloydSteinbergName selects FloydSteinberg in New.
const FloydSteinbergName = "floyd-steinberg"

var kernels = map[string]dither.ErrorDiffusionMatrix{
	"atkinson":            dither.Atkinson,
	"burkes":              dither.Burkes,
	"jarvis-judice-ninke": dither.JarvisJudiceNinke,
	"sierra":              dither.Sierra,
	"sierra-lite":         dither.SierraLite,
	"stucki":              dither.Stucki,
}

// Algorithms lists the names accepted by New, FloydSteinbergName first.
func Algorithms() []string {
	names := make([]string, 0, len(kernels)+1)
	for k := range kernels {
		names = append(names, k)
	}
	sort.Strings(names)
	return append([]string{FloydSteinbergName}, names...)
}

// Matrix diffuses error with one of the library's kernels. It measures
// distance in linear RGB and ignores penalties, clamping and chroma
// weighting.
type Matrix struct {
	p palette.Palette
	d *dither.Ditherer
}

// NewMatrix returns a Matrix ditherer for the named kernel.
func NewMatrix(name string, p palette.Palette, serpentine bool) (*Matrix, error) {
	k, ok := kernels[name]
	if !ok {
		return nil, fmt.Errorf("dither: unknown algorithm %q", name)
	}
	if len(p) > palette.MaxColors {
		return nil, fmt.Errorf("dither: %w: %d colors, at most %d", palette.ErrLength, len(p), palette.MaxColors)
	}
	d := dither.NewDitherer(p.Color())
	if d == nil {
		return nil, fmt.Errorf("dither: empty palette")
	}
	d.Matrix = dither.ErrorDiffusionStrength(k, 1)
	d.Serpentine = serpentine
	return &Matrix{p: p, d: d}, nil
}

// Dither implements Ditherer.
func (m *Matrix) Dither(img *image.NRGBA) *image.NRGBA {
	pi := m.d.DitherPaletted(img)
	w, h := raster.Size(img)
	out := raster.New(w, h)
	b := pi.Bounds()
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			raster.Set(out, x, y, m.p[pi.ColorIndexAt(b.Min.X+x, b.Min.Y+y)])
		}
	}
	return out
}

// New returns the ditherer for algorithm. Options apply to
// FloydSteinberg only.
func New(algorithm string, p palette.Palette, opts Options) (Ditherer, error) {
	if algorithm == "" || algorithm == FloydSteinbergName {
		fs, err := NewFloydSteinberg(p, opts)
		if err != nil {
			return nil, err
		}
		return fs, nil
	}
	m, err := NewMatrix(algorithm, p, false)
	if err != nil {
		return nil, err
	}
	return m, nil
}
