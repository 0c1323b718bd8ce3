package ffmpeg

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"strings"

	"audio-converter/domain/conversion"
)

// LaunchFailureLine is the single log line reported when ffmpeg cannot be started
const LaunchFailureLine = "ERROR: ffmpeg execution failed. Check installation."

// maxLineSize bounds a single delivered line. Longer output lines are
// delivered in pieces of this size.
const maxLineSize = 1 << 20

// StreamRunner implements conversion.ProcessRunner, streaming the child's
// combined stdout/stderr line by line.
type StreamRunner struct {
	logger *slog.Logger
}

// StreamRunnerOption is a functional option for configuring StreamRunner
type StreamRunnerOption func(*StreamRunner)

// WithRunnerLogger sets the diagnostics logger
func WithRunnerLogger(logger *slog.Logger) StreamRunnerOption {
	return func(r *StreamRunner) {
		r.logger = logger
	}
}

// NewStreamRunner creates a new streaming process runner
func NewStreamRunner(opts ...StreamRunnerOption) *StreamRunner {
	r := &StreamRunner{
		logger: slog.Default(),
	}

	for _, opt := range opts {
		opt(r)
	}

	return r
}

// Run implements conversion.ProcessRunner. The child is not bound to ctx:
// once started it runs to completion.
func (r *StreamRunner) Run(ctx context.Context, argv []string, workdir string, onLine func(string)) conversion.Outcome {
	if len(argv) == 0 {
		onLine(LaunchFailureLine)
		return conversion.Outcome{}
	}

	cmd := exec.Command(argv[0], argv[1:]...)
	cmd.Dir = workdir
	hideWindow(cmd)

	// stdout and stderr share one pipe so lines keep the child's write order.
	pr, pw, err := os.Pipe()
	if err != nil {
		r.logger.ErrorContext(ctx, "failed to create output pipe", "error", err)
		onLine(LaunchFailureLine)
		return conversion.Outcome{}
	}
	cmd.Stdout = pw
	cmd.Stderr = pw

	if err := cmd.Start(); err != nil {
		_ = pw.Close()
		_ = pr.Close()
		r.logger.ErrorContext(ctx, "failed to start ffmpeg", "path", argv[0], "error", err)
		onLine(LaunchFailureLine)
		return conversion.Outcome{}
	}
	// The child holds its own copy of the write end; EOF arrives when it exits.
	_ = pw.Close()

	r.logger.DebugContext(ctx, "ffmpeg started", "pid", cmd.Process.Pid, "workdir", workdir)

	if err := streamLines(pr, onLine); err != nil {
		r.logger.WarnContext(ctx, "output stream interrupted", "error", err)
		_, _ = io.Copy(io.Discard, pr)
	}
	_ = pr.Close()

	err = cmd.Wait()
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			r.logger.InfoContext(ctx, "ffmpeg exited with failure", "exit_code", exitErr.ExitCode())
		} else {
			r.logger.ErrorContext(ctx, "waiting for ffmpeg failed", "error", err)
		}
		return conversion.Outcome{}
	}

	r.logger.DebugContext(ctx, "ffmpeg exited cleanly")
	return conversion.Outcome{Success: true}
}

// streamLines delivers each line of r to onLine as soon as it is complete.
// Invalid UTF-8 is replaced with U+FFFD.
func streamLines(r io.Reader, onLine func(string)) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)
	scanner.Split(scanTerminalLines)
	for scanner.Scan() {
		onLine(strings.ToValidUTF8(scanner.Text(), "\uFFFD"))
	}
	return scanner.Err()
}

// scanTerminalLines is a bufio.SplitFunc that ends lines at "\n", "\r\n" or a
// bare "\r". ffmpeg redraws its status line with "\r". A full buffer without
// a line end is returned as a line so the scanner never fails with
// bufio.ErrTooLong.
func scanTerminalLines(data []byte, atEOF bool) (advance int, token []byte, err error) {
	if atEOF && len(data) == 0 {
		return 0, nil, nil
	}
	if i := bytes.IndexAny(data, "\r\n"); i >= 0 {
		if data[i] == '\n' {
			return i + 1, data[:i], nil
		}
		if i+1 < len(data) {
			if data[i+1] == '\n' {
				return i + 2, data[:i], nil
			}
			return i + 1, data[:i], nil
		}
		if atEOF || len(data) >= maxLineSize {
			return i + 1, data[:i], nil
		}
		// Need one more byte to tell "\r" from "\r\n".
		return 0, nil, nil
	}
	if atEOF || len(data) >= maxLineSize {
		return len(data), data, nil
	}
	return 0, nil, nil
}

// Ensure StreamRunner implements conversion.ProcessRunner
var _ conversion.ProcessRunner = (*StreamRunner)(nil)
