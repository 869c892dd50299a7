package image

import (
	"image"
	"math"

	"golang.org/x/image/draw"
)

// Fit returns the size an sw×sh image is resized to for a w×h request.
// A zero dimension follows the other one's scale; when both are zero the
// size is unchanged. With keepAspect the result fits inside w×h.
func Fit(sw, sh, w, h int, keepAspect bool) (int, int) {
	switch {
	case sw == 0 || sh == 0:
		return sw, sh
	case w <= 0 && h <= 0:
		return sw, sh
	case w <= 0:
		return scaled(sw, float64(h)/float64(sh)), h
	case h <= 0:
		return w, scaled(sh, float64(w)/float64(sw))
	case !keepAspect:
		return w, h
	}
	s := math.Min(float64(w)/float64(sw), float64(h)/float64(sh))
	return scaled(sw, s), scaled(sh, s)
}

func scaled(v int, s float64) int {
	return max(int(math.Round(float64(v)*s)), 1)
}

// Resize resamples img with Catmull-Rom to the size chosen by Fit.
func Resize(img *image.NRGBA, w, h int, keepAspect bool) *image.NRGBA {
	b := img.Bounds()
	nw, nh := Fit(b.Dx(), b.Dy(), w, h, keepAspect)
	dst := image.NewNRGBA(image.Rect(0, 0, nw, nh))
	if nw == b.Dx() && nh == b.Dy() {
		draw.Draw(dst, dst.Bounds(), img, b.Min, draw.Src)
		return dst
	}
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, b, draw.Src, nil)
	return dst
}
