package cmd

import (
	"fmt"
	"log"
	"log/slog"
	"os"
	"strings"

	homedir "github.com/mitchellh/go-homedir"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/mmuldo/inkdither/pipeline"
)

var (
	cfgFile string
	verbose bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "inkdither",
	Short: "Converts photographs for 4-color e-paper panels",
	Long: `inkdither maps photographs onto a small fixed e-paper palette:
gamut mapping, optional CLAHE lightness remapping and error diffusion
dithering, plus an approximate reconversion preview.

Settings come from flags, INKDITHER_* environment variables and
$HOME/.inkdither.yaml, in that order of precedence.`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if verbose {
			pipeline.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
				Level: slog.LevelDebug,
			})))
		}
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if e := rootCmd.Execute(); e != nil {
		fmt.Println(e)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.inkdither.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log pipeline stages to stderr")
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, e := homedir.Dir()
		if e != nil {
			log.Fatal(e)
		}

		viper.AddConfigPath(home)
		viper.SetConfigName(".inkdither")
	}

	setDefaults()
	viper.SetEnvPrefix("inkdither")
	viper.AutomaticEnv()

	if e := viper.ReadInConfig(); e == nil && verbose {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// setDefaults registers every pipeline key with viper so that environment
// variables and config files can override any of them.
func setDefaults() {
	d := pipeline.DefaultConfig()
	defaults := map[string]interface{}{
		"palette":               d.Palette,
		"perceived_palette":     d.PerceivedPalette,
		"gamut_mode":            d.GamutMode,
		"gamut_strength":        d.GamutStrength,
		"use_lab_space":         d.UseLabSpace,
		"illuminant_red":        d.IlluminantRed,
		"illuminant_yellow":     d.IlluminantYellow,
		"illuminant_white":      d.IlluminantWhite,
		"algorithm":             d.Algorithm,
		"error_clamp":           d.ErrorClamp,
		"red_penalty":           d.RedPenalty,
		"yellow_penalty":        d.YellowPenalty,
		"csf_chroma_weight":     d.CSFChromaWeight,
		"exact_nearest":         d.ExactNearest,
		"use_perceived_palette": d.UsePerceivedPalette,
		"lightness_remap":       d.LightnessRemap,
		"lightness_clip_limit":  d.LightnessClipLimit,
		"grid_size":             d.GridSize,
		"blur_radius":           d.BlurRadius,
		"brightness":            d.Brightness,
		"width":                 d.Width,
		"height":                d.Height,
		"keep_aspect":           d.KeepAspect,
	}
	for k, v := range defaults {
		viper.SetDefault(k, v)
	}
}

// bindFlags binds the flags of cmd to the viper key of the same name with
// dashes replaced by underscores. Binding happens when cmd runs so that
// commands sharing a key do not shadow each other.
func bindFlags(cmd *cobra.Command) {
	cmd.Flags().VisitAll(func(f *pflag.Flag) {
		key := strings.ReplaceAll(f.Name, "-", "_")
		if viper.IsSet(key) || viper.InConfig(key) {
			if e := viper.BindPFlag(key, f); e != nil {
				log.Fatal(e)
			}
		}
	})
}

// loadConfig assembles the pipeline configuration from viper.
func loadConfig() (pipeline.Config, error) {
	cfg := pipeline.DefaultConfig()
	if e := viper.Unmarshal(&cfg); e != nil {
		return cfg, e
	}
	return cfg, cfg.Validate()
}
