package cmd

import (
	"fmt"
	"log"
	"path/filepath"

	homedir "github.com/mitchellh/go-homedir"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	inkimage "github.com/mmuldo/inkdither/image"
	"github.com/mmuldo/inkdither/palette"
	"github.com/mmuldo/inkdither/pipeline"
)

var (
	numColors int
	write     bool
)

// paletteCmd represents the palette command
var paletteCmd = &cobra.Command{
	Use:   "palette",
	Short: "Shows or extracts palettes",
	Run: func(cmd *cobra.Command, args []string) {
		cfg, e := loadConfig()
		if e != nil {
			log.Fatal(e)
		}
		p, pp, e := configPalettes(cfg)
		if e != nil {
			log.Fatal(e)
		}

		fmt.Println("palette:")
		printPalette(p)
		if len(pp) == len(p) {
			fmt.Println("perceived_palette:")
			printPalette(pp)
		}
		if i, j, d := p.Closest(); !p.Distinguishable() {
			fmt.Printf("warning: colors %d and %d are only %.1f apart\n", i, j, d)
		}
	},
}

// extractCmd represents the palette extract command
var extractCmd = &cobra.Command{
	Use:   "extract <image>",
	Short: "Proposes a palette from the dominant colors of an image",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		img, e := inkimage.Load(args[0])
		if e != nil {
			log.Fatal(e)
		}

		swatches, e := palette.Extract(img, numColors)
		if e != nil {
			log.Fatal(e)
		}
		for i, s := range swatches {
			c := s.RGB
			fmt.Printf("\033[38;2;%d;%d;%dm color%d = %s (%d)\033[0m\n", c.R, c.G, c.B, i, palette.Hex(c), s.Count)
		}

		if write {
			viper.Set("palette", palette.FromSwatches(swatches).Hex())
			path := viper.ConfigFileUsed()
			if path == "" {
				home, e := homedir.Dir()
				if e != nil {
					log.Fatal(e)
				}
				path = filepath.Join(home, ".inkdither.yaml")
			}
			if e := viper.WriteConfigAs(path); e != nil {
				log.Fatal(e)
			}
			fmt.Println("wrote", path)
		}
	},
}

func init() {
	rootCmd.AddCommand(paletteCmd)
	paletteCmd.AddCommand(extractCmd)

	extractCmd.Flags().IntVarP(&numColors, "colors", "n", 4, "number of colors")
	extractCmd.Flags().BoolVarP(&write, "write", "w", false, "store the palette in the config file")
}

func printPalette(p palette.Palette) {
	for i, c := range p {
		fmt.Printf("\033[38;2;%d;%d;%dm color%d = %s\033[0m\n", c.R, c.G, c.B, i, palette.Hex(c))
	}
}

// configPalettes parses both configured palettes, whether or not the
// perceived one is enabled.
func configPalettes(cfg pipeline.Config) (p, pp palette.Palette, e error) {
	if p, e = palette.Parse(cfg.Palette); e != nil {
		return nil, nil, fmt.Errorf("palette: %w", e)
	}
	if pp, e = palette.Parse(cfg.PerceivedPalette); e != nil {
		return nil, nil, fmt.Errorf("perceived_palette: %w", e)
	}
	return p, pp, nil
}
