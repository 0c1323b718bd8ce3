package conversion

import "context"

// ToolLocator resolves a runnable ffmpeg path, or returns ErrToolNotFound
type ToolLocator interface {
	Locate(ctx context.Context) (string, error)
}

// ProcessRunner runs argv in workdir, calling onLine for each output line,
// and reports whether the process exited with status zero.
// Start failures are reported through onLine and a failed Outcome.
type ProcessRunner interface {
	Run(ctx context.Context, argv []string, workdir string, onLine func(string)) Outcome
}

// FileChecker defines the filesystem checks done before a conversion starts
type FileChecker interface {
	// IsFile returns true if path is an existing regular file
	IsFile(path string) bool
	// IsDir returns true if path is an existing directory
	IsDir(path string) bool
}

// Confirmer is the user-interaction capability the tool locator depends on.
// It asks yes/no questions and shows blocking notices.
type Confirmer interface {
	Confirm(title, message string) bool
	Notify(title, message string)
}
