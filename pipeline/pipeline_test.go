package pipeline

import (
	"context"
	"errors"
	"image"
	"log/slog"
	"math/rand"
	"strings"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/mmuldo/inkdither/colorspace"
	"github.com/mmuldo/inkdither/gamut"
	"github.com/mmuldo/inkdither/internal/raster"
	"github.com/mmuldo/inkdither/palette"
)

func photo(w, h int) *image.NRGBA {
	rng := rand.New(rand.NewSource(11))
	img := raster.New(w, h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			raster.Set(img, x, y, colorspace.RGB{
				R: uint8(x * 255 / w),
				G: uint8(y * 255 / h),
				B: uint8(rng.Intn(256)),
			})
		}
	}
	return img
}

func mustNew(t *testing.T, cfg Config) *Pipeline {
	t.Helper()
	p, err := New(cfg)
	if err != nil {
		t.Fatal(err)
	}
	return p
}

func TestDefaultConfigValid(t *testing.T) {
	if err := DefaultConfig().Validate(); err != nil {
		t.Fatal(err)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name string
		edit func(*Config)
	}{
		{"mode", func(c *Config) { c.GamutMode = "vivid" }},
		{"algorithm", func(c *Config) { c.Algorithm = "ordered" }},
		{"strength", func(c *Config) { c.GamutStrength = 1.5 }},
		{"illuminant", func(c *Config) { c.IlluminantYellow = -0.1 }},
		{"clamp", func(c *Config) { c.ErrorClamp = 200 }},
		{"red penalty", func(c *Config) { c.RedPenalty = 101 }},
		{"csf", func(c *Config) { c.CSFChromaWeight = 2 }},
		{"clip limit", func(c *Config) { c.LightnessClipLimit = 0.5 }},
		{"grid", func(c *Config) { c.GridSize = 0 }},
		{"blur", func(c *Config) { c.BlurRadius = 0 }},
		{"brightness", func(c *Config) { c.Brightness = 3 }},
		{"width", func(c *Config) { c.Width = -1 }},
		{"palette", func(c *Config) { c.Palette = []string{"#fff", "nope"} }},
		{"empty palette", func(c *Config) { c.Palette = nil }},
		{"too many colors", func(c *Config) { c.Palette = make(palette.Palette, palette.MaxColors+1).Hex() }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.edit(&cfg)
			if err := cfg.Validate(); !errors.Is(err, ErrInvalidConfig) {
				t.Errorf("err = %v, want ErrInvalidConfig", err)
			}
		})
	}
}

func TestValidatePerceivedLength(t *testing.T) {
	cfg := DefaultConfig()
	cfg.UsePerceivedPalette = true
	cfg.PerceivedPalette = cfg.PerceivedPalette[:3]
	err := cfg.Validate()
	if !errors.Is(err, ErrInvalidConfig) || !errors.Is(err, palette.ErrLength) {
		t.Errorf("err = %v", err)
	}

	// the perceived palette is ignored while disabled
	cfg.UsePerceivedPalette = false
	if err := cfg.Validate(); err != nil {
		t.Errorf("disabled perceived palette: %v", err)
	}
}

func TestNewRejectsNonTetrahedralPalette(t *testing.T) {
	for _, mode := range []gamut.Mode{gamut.AntiSaturation, gamut.CentroidClip} {
		cfg := DefaultConfig()
		cfg.GamutMode = string(mode)
		cfg.Palette = cfg.Palette[:3]
		if _, err := New(cfg); !errors.Is(err, gamut.ErrPaletteSize) {
			t.Errorf("%s: err = %v, want ErrPaletteSize", mode, err)
		}
	}
}

func onlyPalette(t *testing.T, img *image.NRGBA, p palette.Palette) {
	t.Helper()
	for y, row := range raster.Rows(img) {
		for x, c := range row {
			if p.Index(c) < 0 {
				t.Fatalf("(%d,%d) = %v is not a palette color", x, y, c)
			}
		}
	}
}

func TestRunEveryMode(t *testing.T) {
	img := photo(32, 24)
	for _, mode := range gamut.Modes {
		for _, remap := range []bool{false, true} {
			cfg := DefaultConfig()
			cfg.GamutMode = string(mode)
			cfg.LightnessRemap = remap
			cfg.UsePerceivedPalette = remap
			p := mustNew(t, cfg)
			out, err := p.Run(context.Background(), img)
			if err != nil {
				t.Fatalf("%s: %v", mode, err)
			}
			if w, h := raster.Size(out); w != 32 || h != 24 {
				t.Fatalf("%s: size %dx%d", mode, w, h)
			}
			onlyPalette(t, out, palette.EInk)
		}
	}
}

func TestRunWhiteUnchanged(t *testing.T) {
	white := colorspace.RGB{R: 255, G: 255, B: 255}
	out, err := mustNew(t, DefaultConfig()).Run(context.Background(), raster.Uniform(12, 7, white))
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(raster.Rows(raster.Uniform(12, 7, white)), raster.Rows(out)); diff != "" {
		t.Errorf("(-want +got):\n%s", diff)
	}
}

// Grayout at the default strength pulls green, blue and magenta towards
// the red-yellow span before dithering.
func TestRunGolden(t *testing.T) {
	img := raster.FromRows([][]colorspace.RGB{
		{{R: 255}, {G: 255}, {B: 255}},
		{{R: 255, G: 255}, {R: 128, G: 128, B: 128}, {R: 255, B: 255}},
		{{G: 255, B: 255}, {R: 200, G: 100, B: 50}, {R: 50, G: 50, B: 50}},
	})
	var (
		w = colorspace.RGB{R: 255, G: 255, B: 255}
		k = colorspace.RGB{}
		r = colorspace.RGB{R: 200}
		y = colorspace.RGB{R: 255, G: 255}
	)
	want := [][]colorspace.RGB{
		{r, w, k},
		{y, k, w},
		{w, r, k},
	}
	out, err := mustNew(t, DefaultConfig()).Run(context.Background(), img)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(want, raster.Rows(out)); diff != "" {
		t.Errorf("(-want +got):\n%s", diff)
	}
}

func TestRunResizes(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Width = 16
	out, err := mustNew(t, cfg).Run(context.Background(), photo(64, 32))
	if err != nil {
		t.Fatal(err)
	}
	if w, h := raster.Size(out); w != 16 || h != 8 {
		t.Errorf("size = %dx%d, want 16x8", w, h)
	}
}

func TestRunNonOriginBounds(t *testing.T) {
	src := photo(20, 20).SubImage(image.Rect(5, 5, 15, 12))
	out, err := mustNew(t, DefaultConfig()).Run(context.Background(), src)
	if err != nil {
		t.Fatal(err)
	}
	if out.Rect != image.Rect(0, 0, 10, 7) {
		t.Errorf("bounds = %v", out.Rect)
	}
}

func TestProgress(t *testing.T) {
	for _, remap := range []bool{false, true} {
		cfg := DefaultConfig()
		cfg.LightnessRemap = remap
		p := mustNew(t, cfg)
		var stages []Stage
		last := -1.0
		p.Progress = func(s Stage, f float64) {
			if f <= last {
				t.Errorf("fraction %v after %v", f, last)
			}
			last = f
			stages = append(stages, s)
		}
		if _, err := p.Run(context.Background(), photo(8, 8)); err != nil {
			t.Fatal(err)
		}
		want := []Stage{StageResize, StageGamut, StageDither, StageDone}
		if remap {
			want = []Stage{StageResize, StageGamut, StageLightness, StageDither, StageDone}
		}
		if diff := cmp.Diff(want, stages); diff != "" {
			t.Errorf("lightness_remap=%v stages (-want +got):\n%s", remap, diff)
		}
	}
}

func TestRunCancelled(t *testing.T) {
	p := mustNew(t, DefaultConfig())
	called := false
	p.Progress = func(Stage, float64) { called = true }
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := p.Run(ctx, photo(8, 8)); !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
	if called {
		t.Error("stage started after cancellation")
	}
}

func TestCancelBetweenStages(t *testing.T) {
	p := mustNew(t, DefaultConfig())
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	var stages []Stage
	p.Progress = func(s Stage, _ float64) {
		stages = append(stages, s)
		if s == StageGamut {
			cancel()
		}
	}
	if _, err := p.Run(ctx, photo(8, 8)); !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v", err)
	}
	if diff := cmp.Diff([]Stage{StageResize, StageGamut}, stages); diff != "" {
		t.Errorf("(-want +got):\n%s", diff)
	}
}

func TestRunConcurrent(t *testing.T) {
	p := mustNew(t, DefaultConfig())
	img := photo(24, 24)
	want, err := p.Run(context.Background(), img)
	if err != nil {
		t.Fatal(err)
	}
	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			got, err := p.Run(context.Background(), img)
			if err != nil {
				t.Error(err)
				return
			}
			if diff := cmp.Diff(raster.Rows(want), raster.Rows(got)); diff != "" {
				t.Errorf("concurrent run differs:\n%s", diff)
			}
		}()
	}
	wg.Wait()
}

func TestMapGamutIdentity(t *testing.T) {
	cfg := DefaultConfig()
	cfg.GamutStrength = 0
	img := photo(16, 16)
	out, err := mustNew(t, cfg).MapGamut(context.Background(), img)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(raster.Rows(img), raster.Rows(out)); diff != "" {
		t.Errorf("strength 0 changed the image:\n%s", diff)
	}
}

func meanSRGB(img *image.NRGBA) float64 {
	sum := 0.0
	for _, row := range raster.Rows(img) {
		for _, c := range row {
			sum += float64(c.R) + float64(c.G) + float64(c.B)
		}
	}
	w, h := raster.Size(img)
	return sum / float64(3*w*h)
}

func TestReconvert(t *testing.T) {
	cfg := DefaultConfig()
	p := mustNew(t, cfg)
	dithered, err := p.Run(context.Background(), photo(32, 32))
	if err != nil {
		t.Fatal(err)
	}
	base, err := p.Reconvert(context.Background(), dithered)
	if err != nil {
		t.Fatal(err)
	}
	if w, h := raster.Size(base); w != 32 || h != 32 {
		t.Fatalf("size = %dx%d", w, h)
	}

	cfg.Brightness = 1.5
	bright, err := mustNew(t, cfg).Reconvert(context.Background(), dithered)
	if err != nil {
		t.Fatal(err)
	}
	if b0, b1 := meanSRGB(base), meanSRGB(bright); b1 <= b0 {
		t.Errorf("brightness 1.5 mean %.1f, not brighter than %.1f", b1, b0)
	}
}

func TestReconvertWhite(t *testing.T) {
	white := colorspace.RGB{R: 255, G: 255, B: 255}
	// the illuminant inverse does not map white to white
	for _, mode := range []gamut.Mode{gamut.Grayout, gamut.AntiSaturation, gamut.CentroidClip} {
		cfg := DefaultConfig()
		cfg.GamutMode = string(mode)
		cfg.BlurRadius = 3
		out, err := mustNew(t, cfg).Reconvert(context.Background(), raster.Uniform(10, 10, white))
		if err != nil {
			t.Fatal(err)
		}
		for _, row := range raster.Rows(out) {
			for _, c := range row {
				if c.R < 254 || c.G < 254 || c.B < 254 {
					t.Fatalf("%s: white reconverted to %v", mode, c)
				}
			}
		}
	}
}

type recorder struct {
	mu   sync.Mutex
	msgs []string
}

func (r *recorder) Enabled(context.Context, slog.Level) bool { return true }
func (r *recorder) Handle(_ context.Context, rec slog.Record) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.msgs = append(r.msgs, rec.Message)
	return nil
}
func (r *recorder) WithAttrs([]slog.Attr) slog.Handler { return r }
func (r *recorder) WithGroup(string) slog.Handler      { return r }

func TestLogger(t *testing.T) {
	rec := &recorder{}
	SetLogger(slog.New(rec))
	defer SetLogger(nil)

	p := mustNew(t, DefaultConfig())
	if _, err := p.Run(context.Background(), photo(4, 4)); err != nil {
		t.Fatal(err)
	}
	got := strings.Join(rec.msgs, ",")
	if !strings.Contains(got, "pipeline configured") || !strings.Contains(got, "stage") {
		t.Errorf("logged %q", got)
	}

	SetLogger(nil)
	if Logger().Enabled(context.Background(), slog.LevelError) {
		t.Error("default logger enabled")
	}
}
