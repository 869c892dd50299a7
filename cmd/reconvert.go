package cmd

import (
	"context"
	"log"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	inkimage "github.com/mmuldo/inkdither/image"
	"github.com/mmuldo/inkdither/pipeline"
)

// reconvertCmd represents the reconvert command
var reconvertCmd = &cobra.Command{
	Use:   "reconvert <dithered image>",
	Short: "Previews the continuous-tone image a dithered result represents",
	Long: `Blurs a dithered image, undoes the gamut mapping where the mode allows
it and restores brightness. Use the same gamut settings as the conversion.`,
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

		out, e := p.Reconvert(ctx, src)
		if e != nil {
			log.Fatal(e)
		}
		if e := inkimage.Save(outputPath(args[0], "reconvert"), out); e != nil {
			log.Fatal(e)
		}
	},
}

func init() {
	rootCmd.AddCommand(reconvertCmd)

	d := pipeline.DefaultConfig()
	f := reconvertCmd.Flags()
	f.StringVarP(&output, "output", "o", "", "output file (default <image>.reconvert.png)")
	f.String("gamut-mode", d.GamutMode, "gamut mode used for the conversion")
	f.Float64("gamut-strength", d.GamutStrength, "grayout strength used for the conversion")
	f.Float64("illuminant-red", d.IlluminantRed, "illuminant red used for the conversion")
	f.Float64("illuminant-yellow", d.IlluminantYellow, "illuminant yellow used for the conversion")
	f.Float64("illuminant-white", d.IlluminantWhite, "illuminant white used for the conversion")
	f.Int("blur-radius", d.BlurRadius, "Gaussian blur sigma in pixels")
	f.Float64("brightness", d.Brightness, "brightness multiplier in [0.5,2]")
}
