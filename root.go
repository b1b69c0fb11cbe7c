package main

import (
	"fmt"

	"vidshelf/internal/logging"
	"vidshelf/internal/startup"

	"github.com/samber/lo"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// cfg holds the environment bindings and defaults; command flags are bound
// onto it when the command runs.
var cfg = startup.NewViper()

func init() {
	rootCmd.PersistentFlags().String("log-level", "", "Log level (debug, info, warn, error); overrides LOG_LEVEL")
	rootCmd.PersistentFlags().Bool("vips", true, "Render thumbnails with libvips when it is available")
	rootCmd.PersistentFlags().String("ffmpeg", "ffmpeg", "Path to the ffmpeg binary")
	rootCmd.PersistentFlags().String("ffprobe", "ffprobe", "Path to the ffprobe binary")

	lo.Must0(cfg.BindPFlag(startup.KeyVips, rootCmd.PersistentFlags().Lookup("vips")))
	lo.Must0(cfg.BindPFlag(startup.KeyFFmpeg, rootCmd.PersistentFlags().Lookup("ffmpeg")))
	lo.Must0(cfg.BindPFlag(startup.KeyFFprobe, rootCmd.PersistentFlags().Lookup("ffprobe")))

	addServeFlags(rootCmd)
}

// rootCmd runs the server when no sub-command is given.
var rootCmd = &cobra.Command{
	Use:   "vidshelf",
	Short: "Browse a folder of videos from the browser",
	Long: "vidshelf scans a local folder of videos, extracts thumbnails and metadata with ffmpeg,\n" +
		"and serves the library, playlist and settings over HTTP.",
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return applyLogLevel(cmd)
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe(cmd, args)
	},
}

func applyLogLevel(cmd *cobra.Command) error {
	name, err := cmd.Flags().GetString("log-level")
	if err != nil || name == "" {
		return nil
	}
	level, ok := logging.ParseLevel(name)
	if !ok {
		return fmt.Errorf("unknown log level %q", name)
	}
	logging.SetLevel(level)
	return nil
}

// bindFlags binds the named flags of cmd onto v under the given keys.
// Flags that cmd does not define are ignored.
func bindFlags(v *viper.Viper, cmd *cobra.Command, keys map[string]string) {
	for flag, key := range keys {
		if f := cmd.Flags().Lookup(flag); f != nil {
			lo.Must0(v.BindPFlag(key, f))
		}
	}
}
