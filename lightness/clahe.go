// Package lightness redistributes L* with contrast-limited adaptive
// histogram equalization (CLAHE) so an image uses the palette's full
// lightness range. Chroma (a*, b*) is left untouched.
package lightness

import (
	"image"
	"math"

	"github.com/mmuldo/inkdither/colorspace"
	"github.com/mmuldo/inkdither/internal/parallel"
	"github.com/mmuldo/inkdither/internal/raster"
)

// Bins is the number of histogram bins spanning L* in [0,100].
const Bins = 256

const (
	DefaultClipLimit = 2.0
	DefaultGridSize  = 8
)

// Options configures Remap.
type Options struct {
	// ClipLimit caps each histogram bin at ClipLimit × the mean bin count.
	ClipLimit float64
	// GridSize is the number of tiles along each axis.
	GridSize int
}

func (o Options) withDefaults() Options {
	if o.ClipLimit <= 0 {
		o.ClipLimit = DefaultClipLimit
	}
	if o.GridSize <= 0 {
		o.GridSize = DefaultGridSize
	}
	return o
}

// Remap applies CLAHE to the L* channel of img and returns a new image.
func Remap(img *image.NRGBA, opts Options) *image.NRGBA {
	opts = opts.withDefaults()
	w, h := raster.Size(img)
	if w == 0 || h == 0 {
		return raster.Clone(img)
	}

	labs := make([]colorspace.Lab, w*h)
	l := make([]float64, w*h)
	parallel.Rows(h, func(y0, y1 int) {
		for y := y0; y < y1; y++ {
			for x := 0; x < w; x++ {
				lab := colorspace.RGBToLab(raster.At(img, x, y))
				labs[y*w+x] = lab
				l[y*w+x] = lab.L()
			}
		}
	})

	l = Equalize(l, w, h, 0, 100, opts)

	out := image.NewNRGBA(image.Rect(0, 0, w, h))
	parallel.Rows(h, func(y0, y1 int) {
		for y := y0; y < y1; y++ {
			for x := 0; x < w; x++ {
				i := y*w + x
				nl := math.Min(math.Max(l[i], 0), 100)
				lab := labs[i]
				raster.Set(out, x, y, colorspace.LabToRGB(colorspace.Lab{nl, lab.A(), lab.B()}))
			}
		}
	})
	return out
}

// Equalize runs CLAHE on a single w×h channel whose values lie in [lo, hi]
// and returns the remapped channel in the same range.
func Equalize(ch []float64, w, h int, lo, hi float64, opts Options) []float64 {
	opts = opts.withDefaults()
	out := make([]float64, len(ch))
	span := hi - lo
	if span < 1e-10 || w == 0 || h == 0 {
		copy(out, ch)
		return out
	}

	scaled := make([]float64, len(ch))
	for i, v := range ch {
		scaled[i] = math.Min(math.Max((v-lo)/span*(Bins-1), 0), Bins-1)
	}

	g := newGrid(w, h, opts.GridSize)
	cdfs := make([][Bins]float64, g.n*g.n)
	parallel.Each(len(cdfs), func(i int) {
		ty, tx := i/g.n, i%g.n
		y0, y1 := g.span(ty, g.rowStep)
		x0, x1 := g.span(tx, g.colStep)
		cdfs[i] = tileCDF(scaled, w, x0, min(x1, w), y0, min(y1, h), opts.ClipLimit)
	})

	parallel.Rows(h, func(y0, y1 int) {
		for y := y0; y < y1; y++ {
			ty0, ty1, fy := g.neighbours(y, g.rowStep)
			for x := 0; x < w; x++ {
				tx0, tx1, fx := g.neighbours(x, g.colStep)

				v := scaled[y*w+x]
				bin := int(math.Min(v, Bins-2))
				frac := v - float64(bin)
				at := func(ty, tx int) float64 {
					c := &cdfs[ty*g.n+tx]
					return c[bin]*(1-frac) + c[bin+1]*frac
				}

				top := at(ty0, tx0)*(1-fx) + at(ty0, tx1)*fx
				bot := at(ty1, tx0)*(1-fx) + at(ty1, tx1)*fx
				m := top*(1-fy) + bot*fy
				out[y*w+x] = m/(Bins-1)*span + lo
			}
		}
	})
	return out
}

type grid struct {
	n                int
	rowStep, colStep float64
}

func newGrid(w, h, n int) grid {
	return grid{n: n, rowStep: float64(h) / float64(n), colStep: float64(w) / float64(n)}
}

// span returns the pixel range of tile i along one axis; every tile covers
// at least one pixel.
func (g grid) span(i int, step float64) (int, int) {
	a := int(math.Round(float64(i) * step))
	b := int(math.Round(float64(i+1) * step))
	return a, max(b, a+1)
}

// neighbours returns the two tiles whose centers bracket pixel p and the
// interpolation weight of the second.
func (g grid) neighbours(p int, step float64) (int, int, float64) {
	f := (float64(p)+0.5)/step - 0.5
	t0 := int(math.Floor(f))
	frac := f - float64(t0)
	return clampTile(t0, g.n), clampTile(t0+1, g.n), frac
}

func clampTile(t, n int) int {
	return min(max(t, 0), n-1)
}

// tileCDF builds the clipped, redistributed and normalised cumulative
// histogram of one tile. A tile holding a single value gets the identity.
func tileCDF(scaled []float64, w, x0, x1, y0, y1 int, clipLimit float64) (cdf [Bins]float64) {
	var hist [Bins]float64
	n := 0
	first, uniform := -1, true
	for y := y0; y < y1; y++ {
		for x := x0; x < x1; x++ {
			b := int(scaled[y*w+x])
			hist[b]++
			n++
			if first < 0 {
				first = b
			} else if b != first {
				uniform = false
			}
		}
	}
	if n == 0 || uniform {
		return identity()
	}

	limit := clipLimit * float64(n) / Bins
	excess := 0.0
	for i, v := range hist {
		if v > limit {
			excess += v - limit
			hist[i] = limit
		}
	}
	redist := excess / Bins

	sum := 0.0
	for i := range hist {
		sum += hist[i] + redist
		cdf[i] = sum
	}
	lo := 0.0
	for _, v := range cdf {
		if v > 0 {
			lo = v
			break
		}
	}
	den := float64(n) - lo
	if den < 1 {
		return identity()
	}
	for i := range cdf {
		cdf[i] = math.Max(cdf[i]-lo, 0) / den * (Bins - 1)
	}
	return cdf
}

func identity() (cdf [Bins]float64) {
	for i := range cdf {
		cdf[i] = float64(i)
	}
	return cdf
}
