package raster

import (
	"image"
	"image/color"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/mmuldo/inkdither/colorspace"
)

func TestFromNormalisesOriginAndAlpha(t *testing.T) {
	src := image.NewNRGBA(image.Rect(5, 7, 8, 9))
	src.SetNRGBA(5, 7, color.NRGBA{10, 20, 30, 0xff})
	src.SetNRGBA(7, 8, color.NRGBA{40, 50, 60, 0xff})

	img := From(src)
	if img.Rect != image.Rect(0, 0, 3, 2) {
		t.Fatalf("bounds = %v", img.Rect)
	}
	if got := At(img, 0, 0); got != (colorspace.RGB{R: 10, G: 20, B: 30}) {
		t.Errorf("At(0,0) = %v", got)
	}
	if got := At(img, 2, 1); got != (colorspace.RGB{R: 40, G: 50, B: 60}) {
		t.Errorf("At(2,1) = %v", got)
	}
	for i := 3; i < len(img.Pix); i += 4 {
		if img.Pix[i] != 0xff {
			t.Fatal("alpha not opaque")
		}
	}
}

func TestMapAndRows(t *testing.T) {
	rows := [][]colorspace.RGB{
		{{R: 1}, {G: 2}},
		{{B: 3}, {R: 4, G: 5, B: 6}},
	}
	img := FromRows(rows)
	if diff := cmp.Diff(rows, Rows(img)); diff != "" {
		t.Errorf("round trip (-want +got):\n%s", diff)
	}

	inv := Map(img, func(c colorspace.RGB) colorspace.RGB {
		return colorspace.RGB{R: 255 - c.R, G: 255 - c.G, B: 255 - c.B}
	})
	if got := At(inv, 1, 1); got != (colorspace.RGB{R: 251, G: 250, B: 249}) {
		t.Errorf("Map result = %v", got)
	}
	if got := At(img, 1, 1); got != (colorspace.RGB{R: 4, G: 5, B: 6}) {
		t.Errorf("Map modified its input: %v", got)
	}
}
