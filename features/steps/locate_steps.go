//go:build integration

package steps

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os/exec"
	"path/filepath"
	"strings"

	"audio-converter/cmd"
	"audio-converter/domain/conversion"
	"audio-converter/infrastructure/ffmpeg"

	"github.com/cucumber/godog"
)

const bundleDir = "/opt/audio-converter"

// recordingConfirmer answers prompts with a fixed choice and records notices
type recordingConfirmer struct {
	accept  bool
	prompts []string
	notices []string
}

func (r *recordingConfirmer) Confirm(title, message string) bool {
	r.prompts = append(r.prompts, title)
	return r.accept
}

func (r *recordingConfirmer) Notify(title, message string) {
	r.notices = append(r.notices, title)
}

// fakeCommandRunner records commands and flips the install state on brew install
type fakeCommandRunner struct {
	lc    *locateContext
	calls []string
}

func (f *fakeCommandRunner) Run(ctx context.Context, name string, args ...string) error {
	f.calls = append(f.calls, strings.Join(append([]string{filepath.Base(name)}, args...), " "))
	if filepath.Base(name) == "brew" && f.lc.installTarget != "" {
		f.lc.searchPath[ffmpeg.ToolName] = f.lc.installTarget
	}
	return nil
}

func (f *fakeCommandRunner) Output(ctx context.Context, name string, args ...string) ([]byte, error) {
	f.calls = append(f.calls, strings.Join(append([]string{name}, args...), " "))
	return []byte("ffmpeg version 7.1 Copyright (c) 2000-2024 the FFmpeg developers\nbuilt with gcc\n"), nil
}

// fakeLauncher records console launches
type fakeLauncher struct {
	launches []string
}

func (f *fakeLauncher) Launch(name string, args ...string) error {
	f.launches = append(f.launches, strings.Join(append([]string{name}, args...), " "))
	return nil
}

// locateContext holds test state for locate scenarios
type locateContext struct {
	goos          string
	searchPath    map[string]string
	files         map[string]bool
	installTarget string
	confirmer     *recordingConfirmer
	runner        *fakeCommandRunner
	launcher      *fakeLauncher
	output        *bytes.Buffer
	located       string
	err           error
}

// SharedLocateContext is reset before each scenario via Before hook
var SharedLocateContext *locateContext

func getLocateContext() *locateContext {
	return SharedLocateContext
}

func (lc *locateContext) lookPath(name string) (string, error) {
	if path, ok := lc.searchPath[name]; ok {
		return path, nil
	}
	return "", exec.ErrNotFound
}

func (lc *locateContext) IsFile(path string) bool { return lc.files[path] }
func (lc *locateContext) IsDir(path string) bool  { return false }

func InitializeLocateScenario(ctx *godog.ScenarioContext) {
	ctx.Before(func(c context.Context, sc *godog.Scenario) (context.Context, error) {
		lc := &locateContext{
			goos:       "linux",
			searchPath: make(map[string]string),
			files:      make(map[string]bool),
			confirmer:  &recordingConfirmer{},
			launcher:   &fakeLauncher{},
			output:     &bytes.Buffer{},
		}
		lc.runner = &fakeCommandRunner{lc: lc}
		SharedLocateContext = lc
		return c, nil
	})

	ctx.After(func(c context.Context, sc *godog.Scenario, err error) (context.Context, error) {
		SharedLocateContext = nil
		return c, nil
	})

	ctx.Step(`^the platform is "([^"]*)"$`, thePlatformIs)
	ctx.Step(`^ffmpeg is on the search path at "([^"]*)"$`, ffmpegIsOnTheSearchPathAt)
	ctx.Step(`^ffmpeg is bundled next to the program$`, ffmpegIsBundledNextToTheProgram)
	ctx.Step(`^Homebrew is installed$`, homebrewIsInstalled)
	ctx.Step(`^I will accept the install prompt$`, iWillAcceptTheInstallPrompt)
	ctx.Step(`^I will decline the install prompt$`, iWillDeclineTheInstallPrompt)
	ctx.Step(`^installing puts ffmpeg at "([^"]*)"$`, installingPutsFfmpegAt)
	ctx.Step(`^the installer script is bundled next to the program$`, theInstallerScriptIsBundledNextToTheProgram)
	ctx.Step(`^I locate ffmpeg$`, iLocateFfmpeg)
	ctx.Step(`^the located path should be "([^"]*)"$`, theLocatedPathShouldBe)
	ctx.Step(`^the located path should be the bundled binary$`, theLocatedPathShouldBeTheBundledBinary)
	ctx.Step(`^the locate output should contain "([^"]*)"$`, theLocateOutputShouldContain)
	ctx.Step(`^no notice should have been shown$`, noNoticeShouldHaveBeenShown)
	ctx.Step(`^locating should fail$`, locatingShouldFail)
	ctx.Step(`^the notice "([^"]*)" should have been shown$`, theNoticeShouldHaveBeenShown)
	ctx.Step(`^"brew install ffmpeg" should have been run$`, brewInstallShouldHaveBeenRun)
	ctx.Step(`^"brew install ffmpeg" should not have been run$`, brewInstallShouldNotHaveBeenRun)
	ctx.Step(`^the installer should have been launched in a new console$`, theInstallerShouldHaveBeenLaunched)
}

func thePlatformIs(goos string) error {
	getLocateContext().goos = goos
	return nil
}

func ffmpegIsOnTheSearchPathAt(path string) error {
	getLocateContext().searchPath[ffmpeg.ToolName] = path
	return nil
}

func bundledBinary() string {
	return filepath.Join(bundleDir, ffmpeg.ExecutableName(getLocateContext().goos))
}

func ffmpegIsBundledNextToTheProgram() error {
	getLocateContext().files[bundledBinary()] = true
	return nil
}

func homebrewIsInstalled() error {
	getLocateContext().searchPath["brew"] = "/opt/homebrew/bin/brew"
	return nil
}

func iWillAcceptTheInstallPrompt() error {
	getLocateContext().confirmer.accept = true
	return nil
}

func iWillDeclineTheInstallPrompt() error {
	getLocateContext().confirmer.accept = false
	return nil
}

func installingPutsFfmpegAt(path string) error {
	getLocateContext().installTarget = path
	return nil
}

func theInstallerScriptIsBundledNextToTheProgram() error {
	getLocateContext().files[filepath.Join(bundleDir, ffmpeg.InstallerScript)] = true
	return nil
}

func iLocateFfmpeg() error {
	lc := getLocateContext()
	locator := ffmpeg.NewLocator(
		ffmpeg.WithGOOS(lc.goos),
		ffmpeg.WithBaseDir(bundleDir),
		ffmpeg.WithLookPath(lc.lookPath),
		ffmpeg.WithLocatorFileChecker(lc),
		ffmpeg.WithConfirmer(lc.confirmer),
		ffmpeg.WithLocatorCommandRunner(lc.runner),
		ffmpeg.WithConsoleLauncher(lc.launcher),
		ffmpeg.WithLocatorLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
	)

	lc.err = cmd.RunLocateWithDependencies(context.Background(), locator, lc.output)
	if lc.err == nil {
		lc.located = strings.TrimPrefix(strings.SplitN(lc.output.String(), "\n", 2)[0], "ffmpeg: ")
	}
	return nil
}

func theLocatedPathShouldBe(expected string) error {
	lc := getLocateContext()
	if lc.err != nil {
		return fmt.Errorf("locate failed: %v", lc.err)
	}
	if lc.located != expected {
		return fmt.Errorf("expected located path %q, got %q", expected, lc.located)
	}
	return nil
}

func theLocatedPathShouldBeTheBundledBinary() error {
	return theLocatedPathShouldBe(bundledBinary())
}

func theLocateOutputShouldContain(expected string) error {
	if !strings.Contains(getLocateContext().output.String(), expected) {
		return fmt.Errorf("expected %q in output:\n%s", expected, getLocateContext().output.String())
	}
	return nil
}

func noNoticeShouldHaveBeenShown() error {
	if notices := getLocateContext().confirmer.notices; len(notices) != 0 {
		return fmt.Errorf("expected no notices, got %v", notices)
	}
	return nil
}

func locatingShouldFail() error {
	if err := getLocateContext().err; !errors.Is(err, conversion.ErrToolNotFound) {
		return fmt.Errorf("expected ErrToolNotFound, got: %v", err)
	}
	return nil
}

func theNoticeShouldHaveBeenShown(title string) error {
	notices := getLocateContext().confirmer.notices
	for _, n := range notices {
		if n == title {
			return nil
		}
	}
	return fmt.Errorf("expected notice %q, got %v", title, notices)
}

func ranBrewInstall() bool {
	for _, call := range getLocateContext().runner.calls {
		if call == "brew install ffmpeg" {
			return true
		}
	}
	return false
}

func brewInstallShouldHaveBeenRun() error {
	if !ranBrewInstall() {
		return fmt.Errorf("expected brew install ffmpeg, got calls %v", getLocateContext().runner.calls)
	}
	return nil
}

func brewInstallShouldNotHaveBeenRun() error {
	if ranBrewInstall() {
		return fmt.Errorf("brew install ffmpeg was run")
	}
	return nil
}

func theInstallerShouldHaveBeenLaunched() error {
	want := "cmd /c " + filepath.Join(bundleDir, ffmpeg.InstallerScript)
	launches := getLocateContext().launcher.launches
	if len(launches) != 1 || launches[0] != want {
		return fmt.Errorf("expected one launch of %q, got %v", want, launches)
	}
	return nil
}
