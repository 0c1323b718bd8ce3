package cmd

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"

	"audio-converter/infrastructure/config"

	"github.com/spf13/cobra"
)

var (
	cfgFile   string
	verbose   bool
	assumeYes bool
	cfg       *config.Config
	cfgErr    error
	logger    *slog.Logger
)

var rootCmd = &cobra.Command{
	Use:   "audio-converter",
	Short: "Convert media files to audio with ffmpeg",
	Long: `audio-converter turns any media file ffmpeg can read into an audio file:

  - Pick a file, a format and a quality preset
  - ffmpeg is found next to the program or on PATH, or installed on request
  - The ffmpeg log is streamed while the conversion runs

Example:
  audio-converter convert --input clip.mov --format opus --quality "Smaller file"`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./config/config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "print debug diagnostics")
	rootCmd.PersistentFlags().BoolVarP(&assumeYes, "yes", "y", false, "answer yes to install prompts")
}

func initConfig() {
	if cfgFile == "" {
		cfgFile = "config/config.yaml"
	}

	cfg, cfgErr = config.Load(cfgFile)
	if errors.Is(cfgErr, fs.ErrNotExist) {
		// The config file is optional; built-in defaults apply
		cfg, cfgErr = config.Default(), nil
	}

	level := slog.LevelInfo
	if cfg != nil {
		level = cfg.LogLevel()
	}
	if verbose {
		level = slog.LevelDebug
	}
	logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)
}

// GetConfig returns the loaded configuration, or the error that prevented loading it
func GetConfig() (*config.Config, error) {
	if cfgErr != nil {
		return nil, fmt.Errorf("configuration error in %s: %w", cfgFile, cfgErr)
	}
	if cfg == nil {
		return config.Default(), nil
	}
	return cfg, nil
}

// GetLogger returns the diagnostics logger
func GetLogger() *slog.Logger {
	if logger == nil {
		return slog.Default()
	}
	return logger
}

// OutputWriter allows capturing output in tests
type OutputWriter interface {
	Write(p []byte) (n int, err error)
}
