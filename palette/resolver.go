package palette

import (
	"fmt"
	"math"

	"github.com/mmuldo/inkdither/colorspace"
)

// Resolver maps a color to the index of its nearest palette entry.
//
// brightness is the normalised luma of c in [0,1]; resolvers without
// brightness-dependent penalties ignore it.
type Resolver interface {
	Index(c colorspace.RGB, brightness float64) int
}

// Options configures NewResolver.
type Options struct {
	// Perceived, when non-nil, is measured against instead of the output
	// palette. It must have the same length.
	Perceived Palette

	// RedPenalty is added, scaled by brightness, to the distance of every
	// reddish output color. YellowPenalty is added, scaled by
	// 1−brightness, to every yellowish one. Zero disables each.
	RedPenalty    float64
	YellowPenalty float64

	// Exact forces the CIEDE2000 resolver even when no penalty is active.
	Exact bool
}

func (o Options) penalized() bool {
	return o.RedPenalty > 0 || o.YellowPenalty > 0
}

// NewResolver returns the quantized LUT resolver when no penalty is active
// and Exact is unset, and the CIEDE2000 resolver otherwise.
func NewResolver(p Palette, opts Options) (Resolver, error) {
	if err := p.CheckPerceived(opts.Perceived); err != nil {
		return nil, err
	}
	if len(p) > MaxColors {
		return nil, fmt.Errorf("%w: %d colors, at most %d", ErrLength, len(p), MaxColors)
	}
	if !opts.penalized() && !opts.Exact {
		return BuildLUT(p.measured(opts.Perceived)), nil
	}
	return NewExact(p, opts), nil
}

func (p Palette) measured(perceived Palette) Palette {
	if perceived != nil {
		return perceived
	}
	return p
}

// Exact resolves colors by brute-force search over the palette.
type Exact struct {
	labs      []colorspace.Lab
	reddish   []bool
	yellowish []bool
	red       float64
	yellow    float64
	metric    colorspace.Metric
}

// NewExact builds a CIEDE2000 resolver. The caller must ensure a perceived
// palette, if any, matches p in length.
func NewExact(p Palette, opts Options) *Exact {
	e := &Exact{
		labs:      p.measured(opts.Perceived).Labs(),
		reddish:   make([]bool, len(p)),
		yellowish: make([]bool, len(p)),
		red:       math.Max(opts.RedPenalty, 0),
		yellow:    math.Max(opts.YellowPenalty, 0),
		metric:    colorspace.CIEDE2000,
	}
	// Penalties classify the output ink, whichever palette is measured.
	for i, c := range p {
		e.reddish[i] = IsReddish(c)
		e.yellowish[i] = IsYellowish(c)
	}
	return e
}

// NewEuclidean builds a resolver that uses plain Lab distance and no
// penalties. It is the reference the LUT is built against.
func NewEuclidean(p Palette) *Exact {
	e := NewExact(p, Options{})
	e.metric = colorspace.Euclidean
	return e
}

// Index implements Resolver. Ties resolve to the lowest index.
func (e *Exact) Index(c colorspace.RGB, brightness float64) int {
	return e.IndexLab(colorspace.RGBToLab(c), brightness)
}

// IndexLab is Index for a color already converted to Lab.
func (e *Exact) IndexLab(lab colorspace.Lab, brightness float64) int {
	best := 0
	bestDist := math.Inf(1)
	for i, pl := range e.labs {
		d := e.metric(lab, pl)
		if e.red > 0 && e.reddish[i] {
			d += e.red * brightness
		}
		if e.yellow > 0 && e.yellowish[i] {
			d += e.yellow * (1 - brightness)
		}
		if d < bestDist {
			bestDist = d
			best = i
		}
	}
	return best
}

// Nearest returns the palette color closest to c by CIEDE2000, with no
// penalties and no perceived palette.
func (p Palette) Nearest(c colorspace.RGB) colorspace.RGB {
	return p[NewExact(p, Options{}).Index(c, 0)]
}
