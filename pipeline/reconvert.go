package pipeline

import (
	"context"
	"image"
	"math"

	"github.com/disintegration/gift"

	"github.com/mmuldo/inkdither/colorspace"
	"github.com/mmuldo/inkdither/gamut"
	"github.com/mmuldo/inkdither/internal/raster"
)

// Reconvert approximates the continuous-tone image a dithered result
// represents: blur away the dot pattern, undo the gamut mapping where the
// mode has an inverse, then restore the blurred image's mean luminance
// scaled by the configured brightness.
func (p *Pipeline) Reconvert(ctx context.Context, dithered image.Image) (*image.NRGBA, error) {
	blurred, err := p.stage(ctx, StageBlur, func() *image.NRGBA {
		src := raster.From(dithered)
		g := gift.New(gift.GaussianBlur(float32(p.cfg.BlurRadius)))
		dst := image.NewNRGBA(g.Bounds(src.Bounds()))
		g.Draw(dst, src)
		return dst
	})
	if err != nil {
		return nil, err
	}

	restored, err := p.stage(ctx, StageInverse, func() *image.NRGBA {
		return gamut.Invert(p.mapper, blurred)
	})
	if err != nil {
		return nil, err
	}

	out, err := p.stage(ctx, StageBrightness, func() *image.NRGBA {
		k := p.cfg.Brightness
		if b, r := meanLuminance(blurred), meanLuminance(restored); b > 1e-6 && r > 1e-6 {
			k *= math.Min(math.Max(b/r, 0.5), 2)
		}
		if math.Abs(k-1) <= 1e-6 {
			return restored
		}
		return raster.Map(restored, func(c colorspace.RGB) colorspace.RGB {
			return colorspace.RGB{
				R: colorspace.Round(float64(c.R) * k),
				G: colorspace.Round(float64(c.G) * k),
				B: colorspace.Round(float64(c.B) * k),
			}
		})
	})
	if err != nil {
		return nil, err
	}
	p.report(StageDone)
	return out, nil
}

// meanLuminance is the mean linear-light BT.709 luminance of img.
func meanLuminance(img *image.NRGBA) float64 {
	w, h := raster.Size(img)
	if w == 0 || h == 0 {
		return 0
	}
	sum := 0.0
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			c := raster.At(img, x, y)
			sum += colorspace.Luma709(
				colorspace.SRGBToLinear(c.R),
				colorspace.SRGBToLinear(c.G),
				colorspace.SRGBToLinear(c.B),
			)
		}
	}
	return sum / float64(w*h)
}
