package colorspace

import (
	"math"

	"github.com/jkl1337/go-chromath/deltae"
)

var klch = &deltae.KLChDefault

// CIEDE2000 returns the CIE ΔE00 color difference between two Lab colors
// with unit weighting factors kL = kC = kH = 1. It is symmetric and zero
// for identical inputs.
func CIEDE2000(lab1, lab2 Lab) float64 {
	return deltae.CIE2000(lab1, lab2, klch)
}

// Euclidean returns the CIE76 distance, the straight-line distance in Lab.
func Euclidean(lab1, lab2 Lab) float64 {
	dl := lab1.L() - lab2.L()
	da := lab1.A() - lab2.A()
	db := lab1.B() - lab2.B()
	return math.Sqrt(dl*dl + da*da + db*db)
}

// Metric measures the perceptual distance between two Lab colors.
type Metric func(Lab, Lab) float64
