// Package dither reduces an image to the colors of a palette.
package dither

import (
	"fmt"
	"image"
	"math"

	"github.com/mmuldo/inkdither/colorspace"
	"github.com/mmuldo/inkdither/internal/raster"
	"github.com/mmuldo/inkdither/palette"
)

// Ditherer quantizes img to a fixed palette. Every pixel of the result is
// an exact palette color. img is not modified.
type Ditherer interface {
	Dither(img *image.NRGBA) *image.NRGBA
}

// Options configures FloydSteinberg.
type Options struct {
	// Perceived is the palette as it appears on the device. When set it is
	// used for nearest-color measurement and as the error reference.
	Perceived palette.Palette

	// ErrorClamp bounds each residual channel to ±ErrorClamp before
	// diffusion. 0 disables clamping.
	ErrorClamp int

	// ChromaWeight scales the opponent color channels of the residual.
	// 1 propagates the full error, 0 propagates luminance error only.
	ChromaWeight float64

	RedPenalty    float64
	YellowPenalty float64

	// Exact disables the LUT resolver.
	Exact bool
}

// FloydSteinberg is the error diffusion ditherer with clamped residuals,
// chroma attenuation and brightness-dependent penalties.
type FloydSteinberg struct {
	out      palette.Palette
	ref      palette.Palette
	resolver palette.Resolver
	clamp    float64
	chroma   float64
}

// NewFloydSteinberg builds the ditherer and its nearest-color resolver.
func NewFloydSteinberg(p palette.Palette, opts Options) (*FloydSteinberg, error) {
	if len(p) == 0 {
		return nil, fmt.Errorf("dither: empty palette")
	}
	r, err := palette.NewResolver(p, palette.Options{
		Perceived:     opts.Perceived,
		RedPenalty:    opts.RedPenalty,
		YellowPenalty: opts.YellowPenalty,
		Exact:         opts.Exact,
	})
	if err != nil {
		return nil, fmt.Errorf("dither: %w", err)
	}
	ref := p
	if opts.Perceived != nil {
		ref = opts.Perceived
	}
	return &FloydSteinberg{
		out:      p,
		ref:      ref,
		resolver: r,
		clamp:    float64(max(opts.ErrorClamp, 0)),
		chroma:   math.Min(math.Max(opts.ChromaWeight, 0), 1),
	}, nil
}

// Resolver returns the nearest-color resolver used for each pixel.
func (f *FloydSteinberg) Resolver() palette.Resolver { return f.resolver }

type residual [3]float64

// Dither runs a single sequential raster scan.
func (f *FloydSteinberg) Dither(img *image.NRGBA) *image.NRGBA {
	w, h := raster.Size(img)
	out := raster.New(w, h)
	buf := make([]residual, w*h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			c := raster.At(img, x, y)
			buf[y*w+x] = residual{float64(c.R), float64(c.G), float64(c.B)}
		}
	}

	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			i := y*w + x
			v := buf[i]
			c := colorspace.RGB{
				R: colorspace.Round(v[0]),
				G: colorspace.Round(v[1]),
				B: colorspace.Round(v[2]),
			}
			k := f.resolver.Index(c, Brightness(c))
			o, ref := f.out[k], f.ref[k]
			raster.Set(out, x, y, o)
			buf[i] = residual{float64(o.R), float64(o.G), float64(o.B)}

			e := residual{v[0] - float64(ref.R), v[1] - float64(ref.G), v[2] - float64(ref.B)}
			if f.clamp > 0 {
				for j := range e {
					e[j] = math.Min(math.Max(e[j], -f.clamp), f.clamp)
				}
			}
			if f.chroma < 1 {
				e[0], e[1], e[2] = WeightChroma(e[0], e[1], e[2], f.chroma)
			}

			spread(buf, w, h, x, y, e)
		}
	}
	return out
}

func spread(buf []residual, w, h, x, y int, e residual) {
	add := func(dx, dy int, weight float64) {
		nx, ny := x+dx, y+dy
		if nx < 0 || nx >= w || ny >= h {
			return
		}
		p := &buf[ny*w+nx]
		p[0] += e[0] * weight
		p[1] += e[1] * weight
		p[2] += e[2] * weight
	}
	add(1, 0, 7.0/16)
	add(-1, 1, 3.0/16)
	add(0, 1, 5.0/16)
	add(1, 1, 1.0/16)
}

// Brightness is the normalised BT.709 luma of c in [0,1].
func Brightness(c colorspace.RGB) float64 {
	v := colorspace.Luma709(float64(c.R), float64(c.G), float64(c.B)) / 255
	return math.Min(math.Max(v, 0), 1)
}

// WeightChroma splits an RGB residual into luma and red-green / blue-yellow opponent
// channels, scales the opponent channels by weight and recomposes RGB.
// Luma is unchanged for any weight.
func WeightChroma(r, g, b, weight float64) (float64, float64, float64) {
	y := colorspace.Luma709(r, g, b)
	rg := (r - g) * weight
	by := (b - (r+g)/2) * weight

	g = y - 0.2487*rg - 0.0722*by
	r = g + rg
	b = by + (r+g)/2
	return r, g, b
}
