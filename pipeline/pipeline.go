// Package pipeline converts photographs to a fixed e-paper palette:
// resize, gamut map, optional lightness remap, then dither.
//
// A Pipeline is built once per Config and may be shared by concurrent
// callers; each Run owns its buffers.
package pipeline

import (
	"context"
	"fmt"
	"image"
	"time"

	"github.com/mmuldo/inkdither/dither"
	"github.com/mmuldo/inkdither/gamut"
	inkimage "github.com/mmuldo/inkdither/image"
	"github.com/mmuldo/inkdither/internal/raster"
	"github.com/mmuldo/inkdither/lightness"
	"github.com/mmuldo/inkdither/palette"
)

// Stage names a step of Run, MapGamut or Reconvert.
type Stage string

const (
	StageResize     Stage = "resize"
	StageGamut      Stage = "gamut"
	StageLightness  Stage = "lightness"
	StageDither     Stage = "dither"
	StageBlur       Stage = "blur"
	StageInverse    Stage = "inverse"
	StageBrightness Stage = "brightness"
	StageDone       Stage = "done"
)

var fractions = map[Stage]float64{
	StageResize:     0.1,
	StageGamut:      0.25,
	StageLightness:  0.4,
	StageDither:     0.5,
	StageBlur:       0.1,
	StageInverse:    0.5,
	StageBrightness: 0.8,
	StageDone:       1,
}

// Fraction is the share of the work completed when s starts.
func (s Stage) Fraction() float64 { return fractions[s] }

// Progress is called as each stage starts. It runs on the caller's
// goroutine and must not block for long.
type Progress func(s Stage, fraction float64)

// Resizer scales img to w×h. A zero dimension is derived from the other,
// or left unchanged if both are zero.
type Resizer func(img *image.NRGBA, w, h int, keepAspect bool) *image.NRGBA

// Pipeline holds the palette-derived state for one Config.
type Pipeline struct {
	cfg       Config
	palette   palette.Palette
	perceived palette.Palette
	mapper    gamut.Mapper
	ditherer  dither.Ditherer

	// Resize defaults to a Catmull-Rom resampler.
	Resize Resizer
	// Progress is optional.
	Progress Progress
}

// New validates cfg and builds the gamut mapper, resolver and ditherer.
func New(cfg Config) (*Pipeline, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	p, err := palette.Parse(cfg.Palette)
	if err != nil {
		return nil, err
	}
	var perceived palette.Palette
	if cfg.UsePerceivedPalette {
		if perceived, err = palette.Parse(cfg.PerceivedPalette); err != nil {
			return nil, err
		}
	}

	mode, _ := gamut.ParseMode(cfg.GamutMode)
	m, err := gamut.New(mode, p, cfg.gamutParams())
	if err != nil {
		return nil, fmt.Errorf("pipeline: %w", err)
	}
	d, err := dither.New(cfg.Algorithm, p, dither.Options{
		Perceived:     perceived,
		ErrorClamp:    cfg.ErrorClamp,
		ChromaWeight:  cfg.CSFChromaWeight,
		RedPenalty:    cfg.RedPenalty,
		YellowPenalty: cfg.YellowPenalty,
		Exact:         cfg.ExactNearest,
	})
	if err != nil {
		return nil, fmt.Errorf("pipeline: %w", err)
	}

	Logger().Info("pipeline configured",
		"palette", p.Hex(),
		"gamut_mode", cfg.GamutMode,
		"algorithm", cfg.Algorithm,
		"perceived", perceived != nil,
		"lightness_remap", cfg.LightnessRemap,
	)
	return &Pipeline{
		cfg:       cfg,
		palette:   p,
		perceived: perceived,
		mapper:    m,
		ditherer:  d,
		Resize:    inkimage.Resize,
	}, nil
}

// Config returns the configuration p was built from.
func (p *Pipeline) Config() Config { return p.cfg }

// Palette returns the output palette.
func (p *Pipeline) Palette() palette.Palette { return p.palette }

// Run converts img to the palette. Cancellation is checked between stages.
func (p *Pipeline) Run(ctx context.Context, img image.Image) (*image.NRGBA, error) {
	mapped, err := p.prepare(ctx, img)
	if err != nil {
		return nil, err
	}
	out, err := p.stage(ctx, StageDither, func() *image.NRGBA {
		return p.ditherer.Dither(mapped)
	})
	if err != nil {
		return nil, err
	}
	p.report(StageDone)
	return out, nil
}

// MapGamut runs every stage of Run except dithering.
func (p *Pipeline) MapGamut(ctx context.Context, img image.Image) (*image.NRGBA, error) {
	out, err := p.prepare(ctx, img)
	if err != nil {
		return nil, err
	}
	p.report(StageDone)
	return out, nil
}

func (p *Pipeline) prepare(ctx context.Context, img image.Image) (*image.NRGBA, error) {
	cur, err := p.stage(ctx, StageResize, func() *image.NRGBA {
		src := raster.From(img)
		if p.cfg.Width == 0 && p.cfg.Height == 0 || p.Resize == nil {
			return src
		}
		return p.Resize(src, p.cfg.Width, p.cfg.Height, p.cfg.KeepAspect)
	})
	if err != nil {
		return nil, err
	}

	if cur, err = p.stage(ctx, StageGamut, func() *image.NRGBA {
		return gamut.Map(p.mapper, cur)
	}); err != nil {
		return nil, err
	}

	if !p.cfg.LightnessRemap {
		return cur, nil
	}
	return p.stage(ctx, StageLightness, func() *image.NRGBA {
		return lightness.Remap(cur, lightness.Options{
			ClipLimit: p.cfg.LightnessClipLimit,
			GridSize:  p.cfg.GridSize,
		})
	})
}

// stage reports s, runs fn unless ctx is done and logs its duration.
func (p *Pipeline) stage(ctx context.Context, s Stage, fn func() *image.NRGBA) (*image.NRGBA, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	p.report(s)
	start := time.Now()
	out := fn()
	w, h := out.Rect.Dx(), out.Rect.Dy()
	Logger().Debug("stage", "name", string(s), "width", w, "height", h, "elapsed", time.Since(start))
	return out, nil
}

func (p *Pipeline) report(s Stage) {
	if p.Progress != nil {
		p.Progress(s, s.Fraction())
	}
}
