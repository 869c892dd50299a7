package palette

import (
	"github.com/mmuldo/inkdither/colorspace"
	"github.com/mmuldo/inkdither/internal/parallel"
)

const (
	// LUTStep is the width of one quantization bucket per channel.
	LUTStep = 4
	// LUTSize is the number of buckets per channel.
	LUTSize = 256 / LUTStep
)

// LUT is a read-only 64×64×64 table from quantized RGB to palette index.
// Entries hold the Lab-Euclidean nearest color of each bucket center, an
// approximation of CIEDE2000 that may disagree near decision boundaries.
type LUT struct {
	table [LUTSize * LUTSize * LUTSize]uint8
}

// BuildLUT precomputes the table for p. Palettes longer than MaxColors
// are not representable.
func BuildLUT(p Palette) *LUT {
	ref := NewEuclidean(p)
	lut := new(LUT)
	parallel.Each(LUTSize, func(ri int) {
		r := uint8(ri*LUTStep + LUTStep/2)
		for gi := 0; gi < LUTSize; gi++ {
			g := uint8(gi*LUTStep + LUTStep/2)
			base := (ri*LUTSize + gi) * LUTSize
			for bi := 0; bi < LUTSize; bi++ {
				b := uint8(bi*LUTStep + LUTStep/2)
				lut.table[base+bi] = uint8(ref.Index(colorspace.RGB{R: r, G: g, B: b}, 0))
			}
		}
	})
	return lut
}

// Index implements Resolver. brightness is ignored.
func (l *LUT) Index(c colorspace.RGB, _ float64) int {
	i := (int(c.R>>2)*LUTSize+int(c.G>>2))*LUTSize + int(c.B>>2)
	return int(l.table[i])
}
