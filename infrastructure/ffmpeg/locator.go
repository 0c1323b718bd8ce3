package ffmpeg

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"

	"audio-converter/domain/conversion"
	"audio-converter/infrastructure/filesystem"
)

// ToolName is the transcoder's command name on the search path
const ToolName = "ffmpeg"

// InstallerScript is the optional windows installer shipped next to the executable
const InstallerScript = "ffmpeginstall.bat"

// ExecutableName returns the bundled binary name for the given GOOS
func ExecutableName(goos string) string {
	if goos == "windows" {
		return ToolName + ".exe"
	}
	return ToolName
}

// AppBaseDir returns the directory holding the running executable
func AppBaseDir() string {
	exe, err := os.Executable()
	if err != nil {
		return ""
	}
	if resolved, err := filepath.EvalSymlinks(exe); err == nil {
		exe = resolved
	}
	return filepath.Dir(exe)
}

// Locator implements conversion.ToolLocator. It never caches: every call
// probes the filesystem and search path again.
type Locator struct {
	goos        string
	baseDir     string
	toolPath    string
	lookPath    func(string) (string, error)
	fileChecker conversion.FileChecker
	confirmer   conversion.Confirmer
	runner      CommandRunner
	launcher    ConsoleLauncher
	logger      *slog.Logger
}

// LocatorOption is a functional option for configuring Locator
type LocatorOption func(*Locator)

// WithGOOS overrides the platform used to pick binary names and install pathways
func WithGOOS(goos string) LocatorOption {
	return func(l *Locator) {
		l.goos = goos
	}
}

// WithBaseDir sets the directory searched for a bundled binary and installer
func WithBaseDir(dir string) LocatorOption {
	return func(l *Locator) {
		l.baseDir = dir
	}
}

// WithToolPath sets an explicit ffmpeg path that is tried before anything else
func WithToolPath(path string) LocatorOption {
	return func(l *Locator) {
		l.toolPath = path
	}
}

// WithLookPath sets the search-path lookup (for testing)
func WithLookPath(fn func(string) (string, error)) LocatorOption {
	return func(l *Locator) {
		l.lookPath = fn
	}
}

// WithLocatorFileChecker sets the file checker (for testing)
func WithLocatorFileChecker(fc conversion.FileChecker) LocatorOption {
	return func(l *Locator) {
		l.fileChecker = fc
	}
}

// WithConfirmer sets the user-interaction capability used by the bootstrap flow
func WithConfirmer(c conversion.Confirmer) LocatorOption {
	return func(l *Locator) {
		l.confirmer = c
	}
}

// WithLocatorCommandRunner sets a custom command runner (for testing)
func WithLocatorCommandRunner(runner CommandRunner) LocatorOption {
	return func(l *Locator) {
		l.runner = runner
	}
}

// WithConsoleLauncher sets a custom console launcher (for testing)
func WithConsoleLauncher(launcher ConsoleLauncher) LocatorOption {
	return func(l *Locator) {
		l.launcher = launcher
	}
}

// WithLocatorLogger sets the diagnostics logger
func WithLocatorLogger(logger *slog.Logger) LocatorOption {
	return func(l *Locator) {
		l.logger = logger
	}
}

// NewLocator creates a new ffmpeg locator
func NewLocator(opts ...LocatorOption) *Locator {
	l := &Locator{
		goos:        runtime.GOOS,
		baseDir:     AppBaseDir(),
		lookPath:    exec.LookPath,
		fileChecker: filesystem.NewChecker(),
		runner:      &ExecCommandRunner{},
		launcher:    &ExecConsoleLauncher{},
		logger:      slog.Default(),
	}

	for _, opt := range opts {
		opt(l)
	}

	return l
}

// Locate implements conversion.ToolLocator
func (l *Locator) Locate(ctx context.Context) (string, error) {
	if path, ok := l.probe(); ok {
		return path, nil
	}

	l.logger.InfoContext(ctx, "ffmpeg not found, trying bootstrap", "os", l.goos)

	switch l.goos {
	case "windows":
		return l.bootstrapWindows(ctx)
	case "darwin":
		return l.bootstrapDarwin(ctx)
	}

	l.notify(ctx, "FFmpeg not available",
		"FFmpeg is required.\nPlease install ffmpeg (e.g. sudo apt install ffmpeg).")
	return "", conversion.ErrToolNotFound
}

// probe checks the explicit path, the bundled binary, then the search path.
func (l *Locator) probe() (string, bool) {
	if l.toolPath != "" && l.fileChecker.IsFile(l.toolPath) {
		return absPath(l.toolPath), true
	}

	if l.baseDir != "" {
		bundled := filepath.Join(l.baseDir, ExecutableName(l.goos))
		if l.fileChecker.IsFile(bundled) {
			return absPath(bundled), true
		}
	}

	if path, err := l.lookPath(ToolName); err == nil {
		return absPath(path), true
	}

	return "", false
}

func (l *Locator) bootstrapWindows(ctx context.Context) (string, error) {
	installer := filepath.Join(l.baseDir, InstallerScript)
	if l.baseDir != "" && l.fileChecker.IsFile(installer) && l.runWindowsInstaller(ctx, installer) {
		if path, ok := l.probe(); ok {
			return path, nil
		}
	}

	l.notify(ctx, "FFmpeg Missing",
		"FFmpeg is required but cannot be found.\n"+
			"Please install it manually (download from ffmpeg.org or use 'winget install ffmpeg')\n"+
			"and ensure 'ffmpeg' is in your system PATH.")
	return "", conversion.ErrToolNotFound
}

// runWindowsInstaller starts the installer in a new console and returns
// without waiting for it.
func (l *Locator) runWindowsInstaller(ctx context.Context, installer string) bool {
	ok := l.confirm(ctx, "FFmpeg not found",
		"FFmpeg is not installed or not in PATH.\n\n"+
			"Do you want to run the included installer now?\n"+
			"(Requires Windows 10/11, internet, and winget.)")
	if !ok {
		return false
	}

	if err := l.launcher.Launch("cmd", "/c", installer); err != nil {
		l.logger.ErrorContext(ctx, "failed to launch installer", "path", installer, "error", err)
		l.notify(ctx, "Installer error",
			"Could not run ffmpeg installer.\nPlease install ffmpeg manually and try again.")
		return false
	}

	l.logger.InfoContext(ctx, "installer launched", "path", installer)
	return true
}

func (l *Locator) bootstrapDarwin(ctx context.Context) (string, error) {
	if l.runBrewInstall(ctx) {
		if path, ok := l.probe(); ok {
			return path, nil
		}
	}

	l.notify(ctx, "FFmpeg not available",
		"FFmpeg is required.\nRun 'brew install ffmpeg' in Terminal.")
	return "", conversion.ErrToolNotFound
}

// runBrewInstall runs "brew install ffmpeg" synchronously. A non-zero brew
// exit still counts as attempted; only the re-probe decides the result.
func (l *Locator) runBrewInstall(ctx context.Context) bool {
	brew, err := l.lookPath("brew")
	if err != nil {
		l.notify(ctx, "Homebrew not found",
			"FFmpeg is missing and Homebrew (brew) is not installed.\n\n"+
				"On macOS, please install Homebrew first from:\n"+
				"https://brew.sh\n\n"+
				"Then run in Terminal:\n"+
				"  brew install ffmpeg")
		return false
	}

	ok := l.confirm(ctx, "Install FFmpeg",
		"FFmpeg is not installed.\n\n"+
			"Do you want to run:\n"+
			"  brew install ffmpeg\n"+
			"This may take a few minutes.")
	if !ok {
		return false
	}

	l.logger.InfoContext(ctx, "running brew install", "brew", brew)
	if err := l.runner.Run(ctx, brew, "install", ToolName); err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			l.logger.WarnContext(ctx, "brew install exited with failure", "exit_code", exitErr.ExitCode())
			return true
		}
		l.logger.ErrorContext(ctx, "failed to run brew", "error", err)
		l.notify(ctx, "Install error",
			"Could not run 'brew install ffmpeg'.\nInstall FFmpeg manually and try again.")
		return false
	}
	return true
}

// Version runs "<path> -version" and returns the first line of its output
func (l *Locator) Version(ctx context.Context, path string) (string, error) {
	out, err := l.runner.Output(ctx, path, "-version")
	if err != nil {
		return "", fmt.Errorf("ffmpeg not found or not executable: %w", err)
	}
	line, _, _ := bytes.Cut(out, []byte("\n"))
	return string(bytes.TrimSpace(line)), nil
}

func (l *Locator) confirm(ctx context.Context, title, message string) bool {
	if l.confirmer == nil {
		l.logger.WarnContext(ctx, "no confirmer configured, declining", "prompt", title)
		return false
	}
	ok := l.confirmer.Confirm(title, message)
	l.logger.DebugContext(ctx, "confirmation answered", "prompt", title, "accepted", ok)
	return ok
}

func (l *Locator) notify(ctx context.Context, title, message string) {
	l.logger.WarnContext(ctx, "tool locator notice", "title", title)
	if l.confirmer != nil {
		l.confirmer.Notify(title, message)
	}
}

func absPath(path string) string {
	if abs, err := filepath.Abs(path); err == nil {
		return abs
	}
	return path
}

// Ensure Locator implements conversion.ToolLocator
var _ conversion.ToolLocator = (*Locator)(nil)
