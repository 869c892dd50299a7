// Package report renders a plain-text summary of a conversion.
package report

import (
	"fmt"
	"image"
	"io"
	"time"

	"github.com/flosch/pongo2"

	inkimage "github.com/mmuldo/inkdither/image"
	"github.com/mmuldo/inkdither/palette"
	"github.com/mmuldo/inkdither/pipeline"
)

const text = `{% autoescape off %}input:  {{ input }}
output: {{ output }} ({{ width }}x{{ height }}, {{ elapsed }})
gamut:  {{ config.GamutMode }} strength={{ config.GamutStrength|floatformat:2 }} lab={{ config.UseLabSpace }}
dither: {{ config.Algorithm }} clamp={{ config.ErrorClamp }} csf={{ config.CSFChromaWeight|floatformat:2 }} red={{ config.RedPenalty|floatformat:1 }} yellow={{ config.YellowPenalty|floatformat:1 }} perceived={{ config.UsePerceivedPalette }}
{% if config.LightnessRemap %}clahe:  clip={{ config.LightnessClipLimit|floatformat:1 }} grid={{ config.GridSize }}
{% endif %}
{% for u in usage %}{% if color %}{{ u.Escape }}{% endif %} {{ u.Index }} {{ u.Hex }} {{ u.Count }} {{ u.Percent|floatformat:1 }}%{% if color %}` + reset + `{% endif %}
{% endfor %}{% endautoescape %}`

const reset = "\033[0m"

var tpl = pongo2.Must(pongo2.FromString(text))

// Usage is how many output pixels one palette color covers.
type Usage struct {
	Index   int
	Hex     string
	Escape  string
	Count   int
	Percent float64
}

// Data is everything a report shows.
type Data struct {
	Input, Output string
	Width, Height int
	Elapsed       time.Duration
	Config        pipeline.Config
	Usage         []Usage
	// Color prints each usage line in its palette color.
	Color bool
}

// Usages counts the pixels of img per palette entry, in palette order.
// Colors outside p are ignored.
func Usages(img image.Image, p palette.Palette) []Usage {
	ranked := inkimage.RankColors(inkimage.GetColors(img))
	total := ranked.Total()

	out := make([]Usage, len(p))
	for i, c := range p {
		out[i] = Usage{
			Index:  i,
			Hex:    palette.Hex(c),
			Escape: fmt.Sprintf("\033[38;2;%d;%d;%dm", c.R, c.G, c.B),
		}
	}
	for _, cc := range ranked {
		if i := p.Index(cc.Color); i >= 0 {
			out[i].Count = cc.Count
		}
	}
	if total > 0 {
		for i := range out {
			out[i].Percent = 100 * float64(out[i].Count) / float64(total)
		}
	}
	return out
}

// Render writes the report for d to w.
func Render(w io.Writer, d Data) error {
	return tpl.ExecuteWriter(pongo2.Context{
		"input":   d.Input,
		"output":  d.Output,
		"width":   d.Width,
		"height":  d.Height,
		"elapsed": d.Elapsed.Round(time.Millisecond).String(),
		"config":  d.Config,
		"usage":   d.Usage,
		"color":   d.Color,
	}, w)
}
