package palette

import (
	"math"

	"github.com/mmuldo/inkdither/colorspace"
)

var inf = math.Inf(1)

// Closest returns the two palette entries that are perceptually closest
// and their CIEDE2000 distance. d is +Inf for palettes with fewer than two
// colors.
func (p Palette) Closest() (i, j int, d float64) {
	labs := p.Labs()
	i, j, d = -1, -1, inf
	for a := range labs {
		for b := a + 1; b < len(labs); b++ {
			if de := colorspace.CIEDE2000(labs[a], labs[b]); de < d {
				i, j, d = a, b, de
			}
		}
	}
	return i, j, d
}

// Distinguishable reports whether every pair of entries is at least
// mergeDelta apart, the threshold Extract uses to fold colors together.
func (p Palette) Distinguishable() bool {
	_, _, d := p.Closest()
	return d >= mergeDelta
}
