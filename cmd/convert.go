package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	appconversion "audio-converter/application/conversion"
	"audio-converter/domain/conversion"
	"audio-converter/infrastructure/config"
	"audio-converter/infrastructure/ffmpeg"
	"audio-converter/infrastructure/filesystem"

	"github.com/spf13/cobra"
)

// ErrConversionFailed is returned when ffmpeg ran but did not succeed
var ErrConversionFailed = errors.New("conversion did not succeed; check the log above for details")

var (
	convertInput          string
	convertOutputDir      string
	convertFormat         string
	convertQuality        string
	convertNormalize      bool
	convertStripSubtitles bool
)

var convertCmd = &cobra.Command{
	Use:   "convert",
	Short: "Convert a media file to audio",
	Long: `Convert a media file to an audio file with ffmpeg.

The output is written to the output folder as <input name>.<format>; an
existing file with that name is overwritten. Video streams are always dropped.

Formats: mp3, opus, wav, flac, m4a, aac, ogg, wma
Quality: "High quality", "Balanced", "Smaller file" (or high, balanced, small)

Example:
  audio-converter convert --input talk.mp4
  audio-converter convert --input clip.mov --output-dir ~/Music --format flac
  audio-converter convert --input show.mkv --format mp3 --quality high --normalize=false --strip-subtitles`,
	RunE: runConvert,
}

func init() {
	rootCmd.AddCommand(convertCmd)
	convertCmd.Flags().StringVarP(&convertInput, "input", "i", "", "Path to the media file to convert (required)")
	convertCmd.Flags().StringVarP(&convertOutputDir, "output-dir", "o", "", "Existing folder for the converted file (default from config or home directory)")
	convertCmd.Flags().StringVarP(&convertFormat, "format", "f", "", "Output format (default from config or mp3)")
	convertCmd.Flags().StringVarP(&convertQuality, "quality", "q", "", "Quality preset (default from config or Balanced)")
	convertCmd.Flags().BoolVar(&convertNormalize, "normalize", true, "Normalize loudness with the loudnorm filter")
	convertCmd.Flags().BoolVar(&convertStripSubtitles, "strip-subtitles", false, "Drop subtitle streams")
	convertCmd.MarkFlagRequired("input")
}

func runConvert(cmd *cobra.Command, args []string) error {
	cfg, err := GetConfig()
	if err != nil {
		return err
	}

	input := appconversion.Input{
		InputPath:      convertInput,
		OutputDir:      convertOutputDir,
		Format:         convertFormat,
		Quality:        convertQuality,
		Normalize:      convertNormalize,
		StripSubtitles: convertStripSubtitles,
	}
	applyDefaults(&input, cfg, cmd)

	logger := GetLogger()
	confirmer := NewDialogConfirmer(DefaultPrompter, os.Stderr, assumeYes)

	// Create dependencies using production implementations
	locator := ffmpeg.NewLocator(locatorOptions(cfg, confirmer, logger)...)
	runner := ffmpeg.NewStreamRunner(ffmpeg.WithRunnerLogger(logger))
	fileChecker := filesystem.NewChecker()

	return RunConvertWithDependencies(
		cmd.Context(),
		locator,
		runner,
		fileChecker,
		logger,
		input,
		os.Stdout,
	)
}

// applyDefaults fills options the user did not set from the configuration
func applyDefaults(input *appconversion.Input, cfg *config.Config, cmd *cobra.Command) {
	if input.OutputDir == "" {
		input.OutputDir = cfg.Defaults.OutputDirectory
	}
	if input.Format == "" {
		input.Format = cfg.Defaults.Format
	}
	if input.Quality == "" {
		input.Quality = cfg.Defaults.Quality
	}
	if !cmd.Flags().Changed("normalize") {
		input.Normalize = cfg.Defaults.Normalize
	}
	if !cmd.Flags().Changed("strip-subtitles") {
		input.StripSubtitles = cfg.Defaults.StripSubtitles
	}
}

func locatorOptions(cfg *config.Config, confirmer conversion.Confirmer, logger *slog.Logger) []ffmpeg.LocatorOption {
	opts := []ffmpeg.LocatorOption{
		ffmpeg.WithConfirmer(confirmer),
		ffmpeg.WithLocatorLogger(logger),
	}
	if cfg.Tool.Path != "" {
		opts = append(opts, ffmpeg.WithToolPath(cfg.Tool.Path))
	}
	if cfg.Tool.BundleDir != "" {
		opts = append(opts, ffmpeg.WithBaseDir(cfg.Tool.BundleDir))
	}
	return opts
}

// RunConvertWithDependencies runs the convert command with injected dependencies (for testing)
func RunConvertWithDependencies(
	ctx context.Context,
	locator conversion.ToolLocator,
	runner conversion.ProcessRunner,
	fileChecker conversion.FileChecker,
	logger *slog.Logger,
	input appconversion.Input,
	output OutputWriter,
) error {
	service := appconversion.NewService(locator, runner, fileChecker, ffmpeg.BuildCommand, logger)

	fmt.Fprintf(output, "INPUT: %s\n", input.InputPath)
	fmt.Fprintf(output, "OUTPUT DIR: %s\n", input.OutputDir)

	run, err := service.Start(ctx, input)
	if err != nil {
		return err
	}

	fmt.Fprintln(output, "=== Starting conversion ===")
	fmt.Fprintf(output, "CMD: %s\n", strings.Join(run.Command, " "))

	var outcome conversion.Outcome
	for ev := range run.Events {
		switch e := ev.(type) {
		case conversion.LogLine:
			fmt.Fprintln(output, e.Text)
		case conversion.Finished:
			outcome = e.Outcome
		}
	}

	if !outcome.Success {
		fmt.Fprintln(output, "\n=== Conversion failed ===")
		return ErrConversionFailed
	}

	fmt.Fprintln(output, "\n=== Conversion finished successfully ===")
	fmt.Fprintf(output, "Created: %s\n", run.OutputPath)
	return nil
}
