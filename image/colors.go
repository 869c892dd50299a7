package image

import (
	"image"
	"sort"

	"github.com/mmuldo/inkdither/colorspace"
)

type ColorCount struct {
	Color colorspace.RGB
	Count int
}

type ColorCountList []ColorCount

func (ccl ColorCountList) Len() int { return len(ccl) }
func (ccl ColorCountList) Less(i, j int) bool {
	if ccl[i].Count != ccl[j].Count {
		return ccl[i].Count > ccl[j].Count
	}
	a, b := ccl[i].Color, ccl[j].Color
	return uint32(a.R)<<16|uint32(a.G)<<8|uint32(a.B) < uint32(b.R)<<16|uint32(b.G)<<8|uint32(b.B)
}
func (ccl ColorCountList) Swap(i, j int) { ccl[i], ccl[j] = ccl[j], ccl[i] }

// Total is the number of pixels counted.
func (ccl ColorCountList) Total() int {
	n := 0
	for _, cc := range ccl {
		n += cc.Count
	}
	return n
}

// GetColors returns a map of an image's colors
// and the number of times each color occurs
func GetColors(img image.Image) map[colorspace.RGB]int {
	m := make(map[colorspace.RGB]int)

	b := img.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			m[colorspace.FromColor(img.At(x, y))]++
		}
	}

	return m
}

// RankColors orders counted colors from most to least frequent.
func RankColors(m map[colorspace.RGB]int) ColorCountList {
	cc := make(ColorCountList, 0, len(m))

	for k, v := range m {
		cc = append(cc, ColorCount{k, v})
	}

	sort.Sort(cc)
	return cc
}
