package palette

import (
	"fmt"
	"image"
	"sort"

	"github.com/esimov/colorquant"
	"github.com/jkl1337/go-chromath/deltae"

	"github.com/mmuldo/inkdither/colorspace"
)

// mergeDelta is the CIEDE2000 distance below which two quantized colors are
// folded into one swatch.
const mergeDelta = 10

// sampleStep is the pixel stride used when counting quantized colors.
const sampleStep = 2

// oversample is how many quantized colors are produced per requested one.
const oversample = 4

var klch = &deltae.KLChDefault

// Swatch is a candidate palette color, its Lab equivalent and the number of
// sampled pixels it covers.
type Swatch struct {
	RGB   colorspace.RGB
	Lab   colorspace.Lab
	Count int
}

type byCount []Swatch

func (s byCount) Len() int           { return len(s) }
func (s byCount) Less(i, j int) bool { return s[i].Count > s[j].Count }
func (s byCount) Swap(i, j int)      { s[i], s[j] = s[j], s[i] }

type byLightness []Swatch

func (s byLightness) Len() int           { return len(s) }
func (s byLightness) Less(i, j int) bool { return s[i].Lab.L() > s[j].Lab.L() }
func (s byLightness) Swap(i, j int)      { s[i], s[j] = s[j], s[i] }

// Extract proposes an n-color palette for img. The image is quantized,
// perceptually near-identical colors are merged and the n most common
// survivors are returned ordered from lightest to darkest.
func Extract(img image.Image, n int) ([]Swatch, error) {
	if n <= 0 {
		return nil, fmt.Errorf("%w: cannot extract %d colors", ErrLength, n)
	}
	b := img.Bounds()
	if b.Empty() {
		return nil, fmt.Errorf("empty image")
	}

	// quantize image, oversampling so merging still leaves n colors
	o := image.NewNRGBA(b)
	colorquant.NoDither.Quantize(img, o, min(n*oversample, 256), false, true)

	// map each quantized color to its prevalence
	m := make(map[colorspace.RGB]int)
	for y := b.Min.Y; y < b.Max.Y; y += sampleStep {
		for x := b.Min.X; x < b.Max.X; x += sampleStep {
			c := o.NRGBAAt(x, y)
			if c.A == 0 {
				continue
			}
			m[colorspace.RGB{R: c.R, G: c.G, B: c.B}]++
		}
	}

	swatches := make([]Swatch, 0, len(m))
	for c, count := range m {
		swatches = append(swatches, Swatch{c, colorspace.RGBToLab(c), count})
	}
	sort.Sort(byCount(swatches))
	swatches = merge(swatches)

	if len(swatches) < n {
		return nil, fmt.Errorf("image does not have enough variation to support a %d color palette", n)
	}
	swatches = swatches[:n]
	sort.Stable(byLightness(swatches))
	return swatches, nil
}

// merge folds every swatch into the first, more common swatch within
// mergeDelta of it. The input must be sorted by descending count.
func merge(swatches []Swatch) []Swatch {
	out := swatches[:0:0]
	for _, s := range swatches {
		merged := false
		for i := range out {
			if deltae.CIE2000(out[i].Lab, s.Lab, klch) < mergeDelta {
				out[i].Count += s.Count
				merged = true
				break
			}
		}
		if !merged {
			out = append(out, s)
		}
	}
	return out
}

// FromSwatches returns the swatch colors as a Palette.
func FromSwatches(swatches []Swatch) Palette {
	p := make(Palette, len(swatches))
	for i, s := range swatches {
		p[i] = s.RGB
	}
	return p
}
