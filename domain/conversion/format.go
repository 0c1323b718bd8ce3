package conversion

import (
	"fmt"
	"strings"
)

// Format is a target audio container/extension
type Format string

const (
	FormatMP3  Format = "mp3"
	FormatOpus Format = "opus"
	FormatWAV  Format = "wav"
	FormatFLAC Format = "flac"
	FormatM4A  Format = "m4a"
	FormatAAC  Format = "aac"
	FormatOGG  Format = "ogg"
	FormatWMA  Format = "wma"
)

// DefaultFormat is used when no format is configured
const DefaultFormat = FormatMP3

// SupportedFormats lists the formats in display order
var SupportedFormats = []Format{
	FormatMP3, FormatOpus, FormatWAV, FormatFLAC, FormatM4A, FormatAAC, FormatOGG, FormatWMA,
}

// ParseFormat parses a format name, ignoring case and a leading dot
func ParseFormat(s string) (Format, error) {
	name := strings.TrimPrefix(strings.ToLower(strings.TrimSpace(s)), ".")
	for _, f := range SupportedFormats {
		if string(f) == name {
			return f, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, s)
}

// String returns the file extension without the dot
func (f Format) String() string {
	return string(f)
}

// Quality is a user-facing quality preset
type Quality string

const (
	QualityHigh     Quality = "High quality"
	QualityBalanced Quality = "Balanced"
	QualitySmaller  Quality = "Smaller file"
)

// DefaultQuality is used when no quality is configured
const DefaultQuality = QualityBalanced

// SupportedQualities lists the presets in display order
var SupportedQualities = []Quality{QualityHigh, QualityBalanced, QualitySmaller}

var qualityAliases = map[string]Quality{
	"high quality": QualityHigh,
	"high":         QualityHigh,
	"balanced":     QualityBalanced,
	"smaller file": QualitySmaller,
	"smaller":      QualitySmaller,
	"small":        QualitySmaller,
}

// ParseQuality accepts the preset labels case-insensitively plus short aliases
func ParseQuality(s string) (Quality, error) {
	if q, ok := qualityAliases[strings.ToLower(strings.TrimSpace(s))]; ok {
		return q, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnsupportedQuality, s)
}

// String returns the preset label
func (q Quality) String() string {
	return string(q)
}

// CodecArgs returns the encoder and bitrate/quality arguments for a format and preset.
// Unknown presets fall back to the Balanced value, matching the preset menu default.
func CodecArgs(f Format, q Quality) []string {
	switch f {
	case FormatMP3:
		return []string{"-c:a", "libmp3lame", "-b:a", pick(q, "320k", "192k", "128k")}
	case FormatOpus:
		return []string{"-c:a", "libopus", "-b:a", pick(q, "160k", "128k", "64k")}
	case FormatWAV:
		return []string{"-c:a", "pcm_s16le"}
	case FormatFLAC:
		return []string{"-c:a", "flac"}
	case FormatM4A, FormatAAC:
		// No distinct "Smaller file" tier.
		return []string{"-c:a", "aac", "-b:a", pick(q, "256k", "192k", "192k")}
	case FormatOGG:
		return []string{"-c:a", "libvorbis", "-q:a", pick(q, "6", "4", "4")}
	case FormatWMA:
		return []string{"-c:a", "wmav2", "-b:a", "192k"}
	}
	return nil
}

func pick(q Quality, high, balanced, smaller string) string {
	switch q {
	case QualityHigh:
		return high
	case QualitySmaller:
		return smaller
	default:
		return balanced
	}
}
