package conversion

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"audio-converter/domain/conversion"

	"github.com/google/uuid"
)

// eventBuffer bounds how far the worker may run ahead of the consumer.
const eventBuffer = 64

// CommandBuilder turns a request and a resolved tool path into an argv
type CommandBuilder func(toolPath string, req conversion.Request) []string

// Service coordinates conversions: the single-flight gate, pre-flight
// validation, tool lookup, and the background run.
type Service struct {
	locator     conversion.ToolLocator
	runner      conversion.ProcessRunner
	fileChecker conversion.FileChecker
	build       CommandBuilder
	logger      *slog.Logger

	mu    sync.Mutex
	state conversion.State
}

// NewService creates a new conversion service
func NewService(
	locator conversion.ToolLocator,
	runner conversion.ProcessRunner,
	fileChecker conversion.FileChecker,
	build CommandBuilder,
	logger *slog.Logger,
) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		locator:     locator,
		runner:      runner,
		fileChecker: fileChecker,
		build:       build,
		logger:      logger,
		state:       conversion.StateIdle,
	}
}

// Input represents the options collected by the front end
type Input struct {
	InputPath      string
	OutputDir      string
	Format         string
	Quality        string // Optional, Balanced if empty
	Normalize      bool
	StripSubtitles bool
}

// Run is the handle for one started conversion
type Run struct {
	ID         string
	Command    []string
	OutputPath string
	// Events yields LogLine events in emission order, then exactly one
	// Finished event, then is closed. It must be drained. The service accepts
	// a new Start once Events is closed.
	Events <-chan conversion.Event
}

// ValidationError contains details about a pre-flight failure with a suggestion
type ValidationError struct {
	Err        error
	Message    string
	Suggestion string
}

func (e *ValidationError) Error() string {
	if e.Suggestion != "" {
		return fmt.Sprintf("%s\n\n%s", e.Message, e.Suggestion)
	}
	return e.Message
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

// State reports whether a conversion is running
func (s *Service) State() conversion.State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Start validates the input, resolves ffmpeg and launches the conversion in
// the background. It returns ErrBusy while another conversion is running.
// On any pre-flight error no process is started.
func (s *Service) Start(ctx context.Context, input Input) (*Run, error) {
	if !s.acquire() {
		return nil, conversion.ErrBusy
	}

	run, err := s.start(ctx, input)
	if err != nil {
		s.release()
		return nil, err
	}
	return run, nil
}

func (s *Service) start(ctx context.Context, input Input) (*Run, error) {
	req, err := s.validate(input)
	if err != nil {
		s.logger.WarnContext(ctx, "conversion rejected", "error", err)
		return nil, err
	}

	toolPath, err := s.locator.Locate(ctx)
	if err != nil {
		return nil, fmt.Errorf("cannot start conversion: %w", err)
	}

	id := uuid.NewString()
	argv := s.build(toolPath, req)
	events := make(chan conversion.Event, eventBuffer)

	logger := s.logger.With("run_id", id)
	logger.InfoContext(ctx, "conversion started",
		"input", req.InputPath,
		"output", req.OutputPath(),
		"format", req.Format,
		"quality", req.Quality,
	)

	go s.work(ctx, logger, argv, req.OutputDir, events)

	return &Run{
		ID:         id,
		Command:    argv,
		OutputPath: req.OutputPath(),
		Events:     events,
	}, nil
}

// work owns the child process for one run. It is the only sender on events.
// The gate stays closed until Finished is queued and is released before
// events is closed.
func (s *Service) work(ctx context.Context, logger *slog.Logger, argv []string, workdir string, events chan<- conversion.Event) {
	seq := 0
	outcome := s.runner.Run(ctx, argv, workdir, func(line string) {
		seq++
		events <- conversion.LogLine{Seq: seq, Text: line}
	})

	logger.InfoContext(ctx, "conversion finished", "success", outcome.Success, "lines", seq)

	events <- conversion.Finished{Outcome: outcome}
	s.release()
	close(events)
}

func (s *Service) validate(input Input) (conversion.Request, error) {
	req, err := conversion.NewRequest(
		input.InputPath,
		input.OutputDir,
		input.Format,
		input.Quality,
		input.Normalize,
		input.StripSubtitles,
	)
	switch {
	case errors.Is(err, conversion.ErrNoInput):
		return req, &ValidationError{Err: err, Message: "No input: pick a file first.", Suggestion: "Pass --input <file>."}
	case errors.Is(err, conversion.ErrOutputDirMissing):
		return req, &ValidationError{Err: err, Message: "Invalid output: output folder does not exist."}
	case err != nil:
		return req, &ValidationError{Err: err, Message: err.Error(), Suggestion: "Run 'audio-converter formats' to list the choices."}
	}

	if !s.fileChecker.IsFile(req.InputPath) {
		return req, &ValidationError{
			Err:     conversion.ErrInputNotFound,
			Message: fmt.Sprintf("Input file does not exist: %s", req.InputPath),
		}
	}
	if !s.fileChecker.IsDir(req.OutputDir) {
		return req, &ValidationError{
			Err:     conversion.ErrOutputDirMissing,
			Message: fmt.Sprintf("Invalid output: output folder does not exist: %s", req.OutputDir),
		}
	}

	return req, nil
}

func (s *Service) acquire() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == conversion.StateRunning {
		return false
	}
	s.state = conversion.StateRunning
	return true
}

func (s *Service) release() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = conversion.StateIdle
}
