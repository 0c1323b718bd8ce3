package conversion

import "errors"

var (
	// ErrNoInput is returned when no input file was chosen
	ErrNoInput = errors.New("no input file selected")

	// ErrInputNotFound is returned when the input path does not reference an existing file
	ErrInputNotFound = errors.New("input file does not exist")

	// ErrOutputDirMissing is returned when the output directory does not exist
	ErrOutputDirMissing = errors.New("output folder does not exist")

	// ErrUnsupportedFormat is returned when the target format is not one of SupportedFormats
	ErrUnsupportedFormat = errors.New("unsupported output format")

	// ErrUnsupportedQuality is returned when the quality preset is unknown
	ErrUnsupportedQuality = errors.New("unsupported quality preset")

	// ErrToolNotFound is returned when no ffmpeg executable could be resolved
	ErrToolNotFound = errors.New("ffmpeg not found")

	// ErrBusy is returned when a conversion is already running
	ErrBusy = errors.New("a conversion is already running")
)
