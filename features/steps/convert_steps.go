//go:build integration

package steps

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	appconversion "audio-converter/application/conversion"
	"audio-converter/cmd"
	"audio-converter/domain/conversion"

	"github.com/cucumber/godog"
)

// mockLocator returns a fixed ffmpeg path or error
type mockLocator struct {
	path string
	err  error
}

func (m *mockLocator) Locate(ctx context.Context) (string, error) {
	return m.path, m.err
}

// mockRunner records argv and replays scripted output
type mockRunner struct {
	calls   [][]string
	lines   []string
	success bool
}

func (m *mockRunner) Run(ctx context.Context, argv []string, workdir string, onLine func(string)) conversion.Outcome {
	m.calls = append(m.calls, argv)
	for _, line := range m.lines {
		onLine(line)
	}
	return conversion.Outcome{Success: m.success}
}

// mockFileChecker answers from fixed sets of files and folders
type mockFileChecker struct {
	files map[string]bool
	dirs  map[string]bool
}

func (m *mockFileChecker) IsFile(path string) bool { return m.files[path] }
func (m *mockFileChecker) IsDir(path string) bool  { return m.dirs[path] }

// convertContext holds test state for convert scenarios
type convertContext struct {
	locator        *mockLocator
	runner         *mockRunner
	fileChecker    *mockFileChecker
	inputPath      string
	outputDir      string
	normalize      bool
	stripSubtitles bool
	output         *bytes.Buffer
	err            error
}

// SharedConvertContext is reset before each scenario via Before hook
var SharedConvertContext *convertContext

func getConvertContext() *convertContext {
	return SharedConvertContext
}

func InitializeConvertScenario(ctx *godog.ScenarioContext) {
	ctx.Before(func(c context.Context, sc *godog.Scenario) (context.Context, error) {
		SharedConvertContext = &convertContext{
			locator: &mockLocator{},
			runner:  &mockRunner{success: true},
			fileChecker: &mockFileChecker{
				files: make(map[string]bool),
				dirs:  make(map[string]bool),
			},
			output: &bytes.Buffer{},
		}
		return c, nil
	})

	ctx.After(func(c context.Context, sc *godog.Scenario, err error) (context.Context, error) {
		SharedConvertContext = nil
		return c, nil
	})

	ctx.Step(`^ffmpeg is available at "([^"]*)"$`, ffmpegIsAvailableAt)
	ctx.Step(`^ffmpeg cannot be found$`, ffmpegCannotBeFound)
	ctx.Step(`^an input file at "([^"]*)"$`, anInputFileAt)
	ctx.Step(`^no input file exists at "([^"]*)"$`, noInputFileExistsAt)
	ctx.Step(`^the output folder "([^"]*)" exists$`, theOutputFolderExists)
	ctx.Step(`^the output folder "([^"]*)" does not exist$`, theOutputFolderDoesNotExist)
	ctx.Step(`^loudness normalization is enabled$`, loudnessNormalizationIsEnabled)
	ctx.Step(`^subtitle stripping is enabled$`, subtitleStrippingIsEnabled)
	ctx.Step(`^ffmpeg will print:$`, ffmpegWillPrint)
	ctx.Step(`^ffmpeg will exit with failure$`, ffmpegWillExitWithFailure)
	ctx.Step(`^I convert to "([^"]*)" with quality "([^"]*)"$`, iConvertToWithQuality)
	ctx.Step(`^I attempt to convert to "([^"]*)" with quality "([^"]*)"$`, iAttemptToConvertToWithQuality)
	ctx.Step(`^the conversion should succeed$`, theConversionShouldSucceed)
	ctx.Step(`^the conversion should fail$`, theConversionShouldFail)
	ctx.Step(`^the output file should be "([^"]*)"$`, theOutputFileShouldBe)
	ctx.Step(`^ffmpeg should have been called with arguments:$`, ffmpegShouldHaveBeenCalledWithArguments)
	ctx.Step(`^ffmpeg should not have been called with "([^"]*)"$`, ffmpegShouldNotHaveBeenCalledWith)
	ctx.Step(`^the last ffmpeg argument should be "([^"]*)"$`, theLastFfmpegArgumentShouldBe)
	ctx.Step(`^the log should show, in order:$`, theLogShouldShowInOrder)
	ctx.Step(`^the log should contain "([^"]*)"$`, theLogShouldContain)
	ctx.Step(`^I should receive an error about missing ffmpeg$`, iShouldReceiveAnErrorAboutMissingFfmpeg)
	ctx.Step(`^I should receive an error containing "([^"]*)"$`, iShouldReceiveAnErrorContaining)
	ctx.Step(`^ffmpeg should not have been run$`, ffmpegShouldNotHaveBeenRun)
}

func ffmpegIsAvailableAt(path string) error {
	getConvertContext().locator.path = path
	return nil
}

func ffmpegCannotBeFound() error {
	c := getConvertContext()
	c.locator.path = ""
	c.locator.err = conversion.ErrToolNotFound
	return nil
}

func anInputFileAt(path string) error {
	c := getConvertContext()
	c.inputPath = path
	c.fileChecker.files[path] = true
	return nil
}

func noInputFileExistsAt(path string) error {
	c := getConvertContext()
	c.inputPath = path
	c.fileChecker.files[path] = false
	return nil
}

func theOutputFolderExists(dir string) error {
	c := getConvertContext()
	c.outputDir = dir
	c.fileChecker.dirs[dir] = true
	return nil
}

func theOutputFolderDoesNotExist(dir string) error {
	c := getConvertContext()
	c.outputDir = dir
	c.fileChecker.dirs[dir] = false
	return nil
}

func loudnessNormalizationIsEnabled() error {
	getConvertContext().normalize = true
	return nil
}

func subtitleStrippingIsEnabled() error {
	getConvertContext().stripSubtitles = true
	return nil
}

func ffmpegWillPrint(doc *godog.DocString) error {
	getConvertContext().runner.lines = strings.Split(doc.Content, "\n")
	return nil
}

func ffmpegWillExitWithFailure() error {
	c := getConvertContext()
	c.runner.success = false
	c.runner.lines = []string{"Conversion failed!"}
	return nil
}

func runConvert(format, quality string) error {
	c := getConvertContext()
	c.err = cmd.RunConvertWithDependencies(
		context.Background(),
		c.locator,
		c.runner,
		c.fileChecker,
		slog.New(slog.NewTextHandler(io.Discard, nil)),
		appconversion.Input{
			InputPath:      c.inputPath,
			OutputDir:      c.outputDir,
			Format:         format,
			Quality:        quality,
			Normalize:      c.normalize,
			StripSubtitles: c.stripSubtitles,
		},
		c.output,
	)
	return c.err
}

func iConvertToWithQuality(format, quality string) error {
	if err := runConvert(format, quality); err != nil {
		return fmt.Errorf("unexpected error: %v", err)
	}
	return nil
}

func iAttemptToConvertToWithQuality(format, quality string) error {
	_ = runConvert(format, quality)
	return nil
}

func theConversionShouldSucceed() error {
	c := getConvertContext()
	if c.err != nil {
		return fmt.Errorf("expected success, got: %v", c.err)
	}
	if !strings.Contains(c.output.String(), "Conversion finished successfully") {
		return fmt.Errorf("expected success message in output:\n%s", c.output.String())
	}
	return nil
}

func theConversionShouldFail() error {
	c := getConvertContext()
	if !errors.Is(c.err, cmd.ErrConversionFailed) {
		return fmt.Errorf("expected ErrConversionFailed, got: %v", c.err)
	}
	return nil
}

func lastCall() ([]string, error) {
	c := getConvertContext()
	if len(c.runner.calls) == 0 {
		return nil, fmt.Errorf("ffmpeg was not called")
	}
	return c.runner.calls[len(c.runner.calls)-1], nil
}

func theOutputFileShouldBe(expected string) error {
	if !strings.Contains(getConvertContext().output.String(), "Created: "+expected+"\n") {
		return fmt.Errorf("expected output file %q in output:\n%s", expected, getConvertContext().output.String())
	}
	return nil
}

func ffmpegShouldHaveBeenCalledWithArguments(table *godog.Table) error {
	args, err := lastCall()
	if err != nil {
		return err
	}

	for i, row := range table.Rows {
		if i == 0 {
			continue // Skip header row
		}
		expectedArg := row.Cells[0].Value
		found := false
		for _, arg := range args {
			if arg == expectedArg {
				found = true
				break
			}
		}
		if !found {
			return fmt.Errorf("expected argument %q not found in ffmpeg call: %v", expectedArg, args)
		}
	}
	return nil
}

func ffmpegShouldNotHaveBeenCalledWith(unexpected string) error {
	args, err := lastCall()
	if err != nil {
		return err
	}
	for _, arg := range args {
		if arg == unexpected {
			return fmt.Errorf("unexpected argument %q in ffmpeg call: %v", unexpected, args)
		}
	}
	return nil
}

func theLastFfmpegArgumentShouldBe(expected string) error {
	args, err := lastCall()
	if err != nil {
		return err
	}
	if last := args[len(args)-1]; last != expected {
		return fmt.Errorf("expected last argument %q, got %q", expected, last)
	}
	return nil
}

func theLogShouldShowInOrder(table *godog.Table) error {
	log := getConvertContext().output.String()
	pos := 0
	for i, row := range table.Rows {
		if i == 0 {
			continue // Skip header row
		}
		want := row.Cells[0].Value
		idx := strings.Index(log[pos:], want)
		if idx < 0 {
			return fmt.Errorf("expected %q after position %d in log:\n%s", want, pos, log)
		}
		pos += idx + len(want)
	}
	return nil
}

func theLogShouldContain(expected string) error {
	if !strings.Contains(getConvertContext().output.String(), expected) {
		return fmt.Errorf("expected %q in log:\n%s", expected, getConvertContext().output.String())
	}
	return nil
}

func iShouldReceiveAnErrorAboutMissingFfmpeg() error {
	c := getConvertContext()
	if !errors.Is(c.err, conversion.ErrToolNotFound) {
		return fmt.Errorf("expected ErrToolNotFound, got: %v", c.err)
	}
	return nil
}

func iShouldReceiveAnErrorContaining(expected string) error {
	c := getConvertContext()
	if c.err == nil {
		return fmt.Errorf("expected an error but got none")
	}
	if !strings.Contains(strings.ToLower(c.err.Error()), strings.ToLower(expected)) {
		return fmt.Errorf("expected error containing %q, got: %v", expected, c.err)
	}
	return nil
}

func ffmpegShouldNotHaveBeenRun() error {
	if n := len(getConvertContext().runner.calls); n != 0 {
		return fmt.Errorf("expected ffmpeg not to run, but it ran %d time(s)", n)
	}
	return nil
}
