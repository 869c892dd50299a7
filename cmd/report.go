package cmd

import (
	"log"
	"os"

	"github.com/spf13/cobra"

	inkimage "github.com/mmuldo/inkdither/image"
	"github.com/mmuldo/inkdither/internal/raster"
	"github.com/mmuldo/inkdither/palette"
	"github.com/mmuldo/inkdither/report"
)

// reportCmd represents the report command
var reportCmd = &cobra.Command{
	Use:   "report <dithered image>",
	Short: "Prints palette usage of a converted image",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		cfg, e := loadConfig()
		if e != nil {
			log.Fatal(e)
		}
		p, e := palette.Parse(cfg.Palette)
		if e != nil {
			log.Fatal(e)
		}

		img, e := inkimage.Load(args[0])
		if e != nil {
			log.Fatal(e)
		}
		w, h := raster.Size(img)

		e = report.Render(os.Stdout, report.Data{
			Input:  args[0],
			Width:  w,
			Height: h,
			Config: cfg,
			Usage:  report.Usages(img, p),
			Color:  isTerminal(),
		})
		if e != nil {
			log.Fatal(e)
		}
	},
}

func init() {
	rootCmd.AddCommand(reportCmd)
}
