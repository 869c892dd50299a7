package cmd

import (
	"context"
	"image"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	inkimage "github.com/mmuldo/inkdither/image"
	"github.com/mmuldo/inkdither/pipeline"
	"github.com/mmuldo/inkdither/report"
)

var (
	output    string
	gamutOnly bool
	showStats bool
)

// convertCmd represents the convert command
var convertCmd = &cobra.Command{
	Use:   "convert <image>",
	Short: "Converts an image to the panel palette",
	Long: `Converts an image to the panel palette: resize, gamut map,
optional lightness remap and dither. With --gamut-only the dither stage
is skipped so the mapped image can be inspected.`,
	Args:   cobra.ExactArgs(1),
	PreRun: func(cmd *cobra.Command, args []string) { bindFlags(cmd) },
	Run: func(cmd *cobra.Command, args []string) {
		cfg, e := loadConfig()
		if e != nil {
			log.Fatal(e)
		}
		p, e := pipeline.New(cfg)
		if e != nil {
			log.Fatal(e)
		}
		p.Progress = logProgress

		src, e := inkimage.Load(args[0])
		if e != nil {
			log.Fatal(e)
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()

		start := time.Now()
		var out *image.NRGBA
		if gamutOnly {
			out, e = p.MapGamut(ctx, src)
		} else {
			out, e = p.Run(ctx, src)
		}
		if e != nil {
			log.Fatal(e)
		}

		path := outputPath(args[0], "dither")
		if e := inkimage.Save(path, out); e != nil {
			log.Fatal(e)
		}

		if showStats {
			e = report.Render(os.Stdout, report.Data{
				Input:   args[0],
				Output:  path,
				Width:   out.Rect.Dx(),
				Height:  out.Rect.Dy(),
				Elapsed: time.Since(start),
				Config:  cfg,
				Usage:   report.Usages(out, p.Palette()),
				Color:   isTerminal(),
			})
			if e != nil {
				log.Fatal(e)
			}
		}
	},
}

func init() {
	rootCmd.AddCommand(convertCmd)

	d := pipeline.DefaultConfig()
	f := convertCmd.Flags()
	f.StringVarP(&output, "output", "o", "", "output file (default <image>.dither.png)")
	f.BoolVar(&gamutOnly, "gamut-only", false, "skip dithering")
	f.BoolVar(&showStats, "report", false, "print a conversion report")

	f.String("gamut-mode", d.GamutMode, "grayout, illuminant, anti-saturation or centroid-clip")
	f.Float64("gamut-strength", d.GamutStrength, "grayout strength in [0,1]")
	f.Bool("use-lab-space", d.UseLabSpace, "build the tetrahedron in L*a*b*")
	f.Float64("illuminant-red", d.IlluminantRed, "illuminant red in [0,1]")
	f.Float64("illuminant-yellow", d.IlluminantYellow, "illuminant yellow in [0,1]")
	f.Float64("illuminant-white", d.IlluminantWhite, "illuminant white preserve in [0,1]")
	f.String("algorithm", d.Algorithm, "dithering algorithm")
	f.Int("error-clamp", d.ErrorClamp, "clamp diffused error to ±N, 0 disables")
	f.Float64("red-penalty", d.RedPenalty, "bias against red in bright areas")
	f.Float64("yellow-penalty", d.YellowPenalty, "bias against yellow in dark areas")
	f.Float64("csf-chroma-weight", d.CSFChromaWeight, "share of chroma error diffused")
	f.Bool("exact-nearest", d.ExactNearest, "always use CIEDE2000 nearest color search")
	f.Bool("use-perceived-palette", d.UsePerceivedPalette, "measure error against the perceived palette")
	f.Bool("lightness-remap", d.LightnessRemap, "apply CLAHE to L* before dithering")
	f.Float64("lightness-clip-limit", d.LightnessClipLimit, "CLAHE clip limit in [1,4]")
	f.Int("grid-size", d.GridSize, "CLAHE tiles per axis")
	f.Int("width", d.Width, "target width, 0 keeps")
	f.Int("height", d.Height, "target height, 0 keeps")
	f.Bool("keep-aspect", d.KeepAspect, "fit inside width x height")
}

// outputPath returns --output or <input>.<suffix>.png.
func outputPath(input, suffix string) string {
	if output != "" {
		return output
	}
	base := strings.TrimSuffix(input, filepath.Ext(input))
	return base + "." + suffix + ".png"
}

func logProgress(s pipeline.Stage, f float64) {
	pipeline.Logger().Info("progress", "stage", string(s), "percent", int(f*100))
}

// isTerminal reports whether stdout can show ANSI colors.
func isTerminal() bool {
	return term.IsTerminal(int(os.Stdout.Fd()))
}
