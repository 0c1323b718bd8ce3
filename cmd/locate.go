package cmd

import (
	"context"
	"fmt"
	"os"
	"time"

	"audio-converter/infrastructure/ffmpeg"

	"github.com/spf13/cobra"
)

var locateCmd = &cobra.Command{
	Use:   "locate",
	Short: "Show which ffmpeg will be used",
	Long: `Resolve the ffmpeg executable the same way convert does and print its
path and version.

ffmpeg is looked up in this order: tool.path from the config, a binary next
to the program, then PATH. If none is found you are offered an install
(Homebrew on macOS, the bundled ffmpeginstall.bat on Windows).

Example:
  audio-converter locate
  audio-converter locate --yes`,
	RunE: runLocate,
}

func init() {
	rootCmd.AddCommand(locateCmd)
}

// ToolProber resolves ffmpeg and reports its version
type ToolProber interface {
	Locate(ctx context.Context) (string, error)
	Version(ctx context.Context, path string) (string, error)
}

func runLocate(cmd *cobra.Command, args []string) error {
	cfg, err := GetConfig()
	if err != nil {
		return err
	}

	confirmer := NewDialogConfirmer(DefaultPrompter, os.Stderr, assumeYes)
	locator := ffmpeg.NewLocator(locatorOptions(cfg, confirmer, GetLogger())...)

	return RunLocateWithDependencies(cmd.Context(), locator, os.Stdout)
}

// RunLocateWithDependencies runs the locate command with injected dependencies (for testing)
func RunLocateWithDependencies(ctx context.Context, prober ToolProber, output OutputWriter) error {
	path, err := prober.Locate(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(output, "ffmpeg: %s\n", path)

	versionCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	version, err := prober.Version(versionCtx, path)
	if err != nil {
		return fmt.Errorf("ffmpeg verification failed: %w", err)
	}
	fmt.Fprintln(output, version)
	return nil
}
