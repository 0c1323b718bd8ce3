package ffmpeg

import (
	"audio-converter/domain/conversion"
)

// BuildCommand translates a request into the full ffmpeg argv, tool path first.
// The output path is always the last element and is overwritten if it exists.
func BuildCommand(toolPath string, req conversion.Request) []string {
	args := []string{
		toolPath,
		"-y", // Overwrite output file if it exists
		"-i", req.InputPath,
		"-vn", // No video
	}

	args = append(args, conversion.CodecArgs(req.Format, req.Quality)...)

	if req.Normalize {
		args = append(args, "-af", "loudnorm")
	}
	if req.StripSubtitles {
		args = append(args, "-sn")
	}

	return append(args, req.OutputPath())
}
