package report

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"github.com/mmuldo/inkdither/colorspace"
	"github.com/mmuldo/inkdither/internal/raster"
	"github.com/mmuldo/inkdither/palette"
	"github.com/mmuldo/inkdither/pipeline"
)

func TestUsages(t *testing.T) {
	w, k, r := palette.EInk[0], palette.EInk[1], palette.EInk[2]
	img := raster.FromRows([][]colorspace.RGB{
		{w, w, k, r},
		{w, k, k, {R: 1, G: 2, B: 3}},
	})
	got := Usages(img, palette.EInk)
	want := []Usage{
		{Index: 0, Hex: "#ffffff", Count: 3, Percent: 37.5},
		{Index: 1, Hex: "#000000", Count: 3, Percent: 37.5},
		{Index: 2, Hex: "#c80000", Count: 1, Percent: 12.5},
		{Index: 3, Hex: "#ffff00", Count: 0, Percent: 0},
	}
	if diff := cmp.Diff(want, got, cmpopts.IgnoreFields(Usage{}, "Escape")); diff != "" {
		t.Errorf("(-want +got):\n%s", diff)
	}
}

func TestRender(t *testing.T) {
	cfg := pipeline.DefaultConfig()
	cfg.LightnessRemap = true
	var buf bytes.Buffer
	err := Render(&buf, Data{
		Input:   "in & out.jpg",
		Output:  "out.png",
		Width:   4,
		Height:  2,
		Elapsed: 1500 * time.Millisecond,
		Config:  cfg,
		Usage:   []Usage{{Index: 0, Hex: "#ffffff", Count: 8, Percent: 100}},
	})
	if err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	for _, s := range []string{
		"input:  in & out.jpg",
		"out.png (4x2, 1.5s)",
		"gamut:  grayout strength=0.70",
		"dither: floyd-steinberg clamp=85 csf=0.60",
		"clahe:  clip=2.0 grid=8",
		"0 #ffffff 8 100.0%",
	} {
		if !strings.Contains(out, s) {
			t.Errorf("report missing %q:\n%s", s, out)
		}
	}
	if strings.Contains(out, "\033[") {
		t.Errorf("uncolored report contains escapes:\n%q", out)
	}
}

func TestRenderColor(t *testing.T) {
	var buf bytes.Buffer
	err := Render(&buf, Data{
		Config: pipeline.DefaultConfig(),
		Usage:  Usages(raster.Uniform(2, 2, palette.EInk[2]), palette.EInk),
		Color:  true,
	})
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), "\033[38;2;200;0;0m") {
		t.Errorf("missing red escape:\n%q", buf.String())
	}
	if strings.Contains(buf.String(), "clahe:") {
		t.Error("clahe line printed with lightness remap off")
	}
}
