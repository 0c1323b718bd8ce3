package ffmpeg

import (
	"context"
	"os"
	"os/exec"
)

// CommandRunner defines the interface for running short-lived external commands
// such as package-manager installs and version probes.
// This allows mocking exec.Command in tests
type CommandRunner interface {
	Run(ctx context.Context, name string, args ...string) error
	Output(ctx context.Context, name string, args ...string) ([]byte, error)
}

// ExecCommandRunner is the production implementation using os/exec
type ExecCommandRunner struct{}

// Run executes a command attached to the terminal and returns any error
func (r *ExecCommandRunner) Run(ctx context.Context, name string, args ...string) error {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	return cmd.Run()
}

// Output executes a command and returns its output
func (r *ExecCommandRunner) Output(ctx context.Context, name string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	hideWindow(cmd)
	return cmd.Output()
}

// ConsoleLauncher starts a command in its own console window without waiting for it
type ConsoleLauncher interface {
	Launch(name string, args ...string) error
}

// ExecConsoleLauncher is the production ConsoleLauncher
type ExecConsoleLauncher struct{}

// Launch starts the command and reaps it in the background
func (l *ExecConsoleLauncher) Launch(name string, args ...string) error {
	cmd := exec.Command(name, args...)
	newConsole(cmd)
	if err := cmd.Start(); err != nil {
		return err
	}
	go func() { _ = cmd.Wait() }()
	return nil
}
