package conversion

import (
	"fmt"
	"path/filepath"
	"strings"
)

// Request represents one conversion attempt. It is built fresh per attempt
// and passed by value, so a submitted request is never modified.
type Request struct {
	InputPath      string
	OutputDir      string
	Format         Format
	Quality        Quality
	Normalize      bool // apply the loudnorm audio filter
	StripSubtitles bool // drop subtitle streams
}

// NewRequest creates a Request, parsing format and quality names
func NewRequest(inputPath, outputDir, format, quality string, normalize, stripSubtitles bool) (Request, error) {
	if strings.TrimSpace(inputPath) == "" {
		return Request{}, ErrNoInput
	}
	if strings.TrimSpace(outputDir) == "" {
		return Request{}, fmt.Errorf("%w: no output folder given", ErrOutputDirMissing)
	}

	f, err := ParseFormat(format)
	if err != nil {
		return Request{}, err
	}

	q := DefaultQuality
	if quality != "" {
		q, err = ParseQuality(quality)
		if err != nil {
			return Request{}, err
		}
	}

	return Request{
		InputPath:      inputPath,
		OutputDir:      outputDir,
		Format:         f,
		Quality:        q,
		Normalize:      normalize,
		StripSubtitles: stripSubtitles,
	}, nil
}

// OutputFilename returns the input basename with its extension replaced by the format.
// Leading dots are part of the name, so ".hidden" has no extension.
func (r Request) OutputFilename() string {
	return stem(filepath.Base(r.InputPath)) + "." + r.Format.String()
}

func stem(base string) string {
	if !strings.Contains(strings.TrimLeft(base, "."), ".") {
		return base
	}
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// OutputPath returns the full output path inside the output directory
func (r Request) OutputPath() string {
	return filepath.Join(r.OutputDir, r.OutputFilename())
}
