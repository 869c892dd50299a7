// Package raster provides the opaque NRGBA buffers passed between pipeline
// stages.
package raster

import (
	"image"
	"image/draw"

	"github.com/mmuldo/inkdither/colorspace"
	"github.com/mmuldo/inkdither/internal/parallel"
)

// New returns an opaque black w×h image anchored at the origin.
func New(w, h int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for i := 3; i < len(img.Pix); i += 4 {
		img.Pix[i] = 0xff
	}
	return img
}

// From copies src into a new origin-anchored NRGBA with alpha forced to
// opaque.
func From(src image.Image) *image.NRGBA {
	b := src.Bounds()
	dst := image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(dst, dst.Bounds(), src, b.Min, draw.Src)
	for i := 3; i < len(dst.Pix); i += 4 {
		dst.Pix[i] = 0xff
	}
	return dst
}

// Clone returns a deep copy of img.
func Clone(img *image.NRGBA) *image.NRGBA {
	dst := &image.NRGBA{
		Pix:    make([]uint8, len(img.Pix)),
		Stride: img.Stride,
		Rect:   img.Rect,
	}
	copy(dst.Pix, img.Pix)
	return dst
}

// Size returns the width and height of img.
func Size(img image.Image) (w, h int) {
	b := img.Bounds()
	return b.Dx(), b.Dy()
}

// At returns the color at (x, y) relative to the image origin.
func At(img *image.NRGBA, x, y int) colorspace.RGB {
	i := y*img.Stride + x*4
	p := img.Pix[i : i+3 : i+3]
	return colorspace.RGB{R: p[0], G: p[1], B: p[2]}
}

// Set writes an opaque color at (x, y) relative to the image origin.
func Set(img *image.NRGBA, x, y int, c colorspace.RGB) {
	i := y*img.Stride + x*4
	p := img.Pix[i : i+4 : i+4]
	p[0], p[1], p[2], p[3] = c.R, c.G, c.B, 0xff
}

// Map applies fn to every pixel of src, rows in parallel, and returns the
// result as a new image. fn must be safe for concurrent use.
func Map(src *image.NRGBA, fn func(colorspace.RGB) colorspace.RGB) *image.NRGBA {
	w, h := Size(src)
	dst := image.NewNRGBA(image.Rect(0, 0, w, h))
	parallel.Rows(h, func(y0, y1 int) {
		for y := y0; y < y1; y++ {
			for x := 0; x < w; x++ {
				Set(dst, x, y, fn(At(src, x, y)))
			}
		}
	})
	return dst
}

// Uniform returns a w×h image filled with c.
func Uniform(w, h int, c colorspace.RGB) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			Set(img, x, y, c)
		}
	}
	return img
}

// FromRows builds an image from rows of colors; all rows must have the
// same length.
func FromRows(rows [][]colorspace.RGB) *image.NRGBA {
	h := len(rows)
	w := 0
	if h > 0 {
		w = len(rows[0])
	}
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y, row := range rows {
		for x, c := range row {
			Set(img, x, y, c)
		}
	}
	return img
}

// Rows returns the pixels of img as rows of colors.
func Rows(img *image.NRGBA) [][]colorspace.RGB {
	w, h := Size(img)
	rows := make([][]colorspace.RGB, h)
	for y := range rows {
		rows[y] = make([]colorspace.RGB, w)
		for x := range rows[y] {
			rows[y][x] = At(img, x, y)
		}
	}
	return rows
}
