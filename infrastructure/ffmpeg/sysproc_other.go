//go:build !windows

package ffmpeg

import "os/exec"

// hideWindow is a no-op: only windows attaches consoles to child processes.
func hideWindow(cmd *exec.Cmd) {}

// newConsole is a no-op outside windows.
func newConsole(cmd *exec.Cmd) {}
