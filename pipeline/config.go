package pipeline

import (
	"errors"
	"fmt"
	"math"

	"github.com/mmuldo/inkdither/dither"
	"github.com/mmuldo/inkdither/gamut"
	"github.com/mmuldo/inkdither/palette"
)

// ErrInvalidConfig wraps every configuration error reported by Validate.
var ErrInvalidConfig = errors.New("invalid config")

// Config is the full set of tunable parameters. Keys match the config file
// and the INKDITHER_ environment variables.
type Config struct {
	Palette          []string `mapstructure:"palette"`
	PerceivedPalette []string `mapstructure:"perceived_palette"`

	GamutMode     string  `mapstructure:"gamut_mode"`
	GamutStrength float64 `mapstructure:"gamut_strength"`
	UseLabSpace   bool    `mapstructure:"use_lab_space"`

	IlluminantRed    float64 `mapstructure:"illuminant_red"`
	IlluminantYellow float64 `mapstructure:"illuminant_yellow"`
	IlluminantWhite  float64 `mapstructure:"illuminant_white"`

	Algorithm       string  `mapstructure:"algorithm"`
	ErrorClamp      int     `mapstructure:"error_clamp"`
	RedPenalty      float64 `mapstructure:"red_penalty"`
	YellowPenalty   float64 `mapstructure:"yellow_penalty"`
	CSFChromaWeight float64 `mapstructure:"csf_chroma_weight"`
	ExactNearest    bool    `mapstructure:"exact_nearest"`

	UsePerceivedPalette bool `mapstructure:"use_perceived_palette"`

	LightnessRemap     bool    `mapstructure:"lightness_remap"`
	LightnessClipLimit float64 `mapstructure:"lightness_clip_limit"`
	GridSize           int     `mapstructure:"grid_size"`

	BlurRadius int     `mapstructure:"blur_radius"`
	Brightness float64 `mapstructure:"brightness"`

	Width      int  `mapstructure:"width"`
	Height     int  `mapstructure:"height"`
	KeepAspect bool `mapstructure:"keep_aspect"`
}

// DefaultConfig returns the defaults for the 4-color e-paper panel.
func DefaultConfig() Config {
	return Config{
		Palette:          palette.EInk.Hex(),
		PerceivedPalette: palette.EInkPerceived.Hex(),

		GamutMode:     string(gamut.Grayout),
		GamutStrength: 0.7,
		UseLabSpace:   true,

		IlluminantRed:    1,
		IlluminantYellow: 1,
		IlluminantWhite:  1,

		Algorithm:       dither.FloydSteinbergName,
		ErrorClamp:      85,
		CSFChromaWeight: 0.6,

		LightnessClipLimit: 2,
		GridSize:           8,

		BlurRadius: 1,
		Brightness: 1,

		KeepAspect: true,
	}
}

func inRange(name string, v, lo, hi float64) error {
	if v < lo || v > hi || math.IsNaN(v) {
		return fmt.Errorf("%w: %s = %v, want [%v, %v]", ErrInvalidConfig, name, v, lo, hi)
	}
	return nil
}

// Validate reports the first out-of-range or unknown value.
func (c Config) Validate() error {
	if _, err := gamut.ParseMode(c.GamutMode); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	known := false
	for _, a := range dither.Algorithms() {
		known = known || a == c.Algorithm
	}
	if !known {
		return fmt.Errorf("%w: unknown algorithm %q", ErrInvalidConfig, c.Algorithm)
	}

	checks := []struct {
		name   string
		v      float64
		lo, hi float64
	}{
		{"gamut_strength", c.GamutStrength, 0, 1},
		{"illuminant_red", c.IlluminantRed, 0, 1},
		{"illuminant_yellow", c.IlluminantYellow, 0, 1},
		{"illuminant_white", c.IlluminantWhite, 0, 1},
		{"error_clamp", float64(c.ErrorClamp), 0, 128},
		{"red_penalty", c.RedPenalty, 0, 100},
		{"yellow_penalty", c.YellowPenalty, 0, 100},
		{"csf_chroma_weight", c.CSFChromaWeight, 0, 1},
		{"lightness_clip_limit", c.LightnessClipLimit, 1, 4},
		{"grid_size", float64(c.GridSize), 1, 64},
		{"blur_radius", float64(c.BlurRadius), 1, 20},
		{"brightness", c.Brightness, 0.5, 2},
		{"width", float64(c.Width), 0, 1 << 16},
		{"height", float64(c.Height), 0, 1 << 16},
	}
	for _, ch := range checks {
		if err := inRange(ch.name, ch.v, ch.lo, ch.hi); err != nil {
			return err
		}
	}

	p, err := palette.Parse(c.Palette)
	if err != nil {
		return fmt.Errorf("%w: palette: %v", ErrInvalidConfig, err)
	}
	if len(p) > palette.MaxColors {
		return fmt.Errorf("%w: palette has %d colors, at most %d", ErrInvalidConfig, len(p), palette.MaxColors)
	}
	if c.UsePerceivedPalette {
		pp, err := palette.Parse(c.PerceivedPalette)
		if err != nil {
			return fmt.Errorf("%w: perceived_palette: %v", ErrInvalidConfig, err)
		}
		if err := p.CheckPerceived(pp); err != nil {
			return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
		}
	}
	return nil
}

func (c Config) gamutParams() gamut.Params {
	return gamut.Params{
		Strength: c.GamutStrength,
		Red:      c.IlluminantRed,
		Yellow:   c.IlluminantYellow,
		White:    c.IlluminantWhite,
		Lab:      c.UseLabSpace,
	}
}
