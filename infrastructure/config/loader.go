package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"audio-converter/domain/conversion"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// Config represents the complete application configuration.
// It is read-only: the program never writes it back.
type Config struct {
	Defaults DefaultsConfig `yaml:"defaults"`
	Tool     ToolConfig     `yaml:"tool"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// DefaultsConfig contains the initial conversion options
type DefaultsConfig struct {
	Format          string `yaml:"format" validate:"audioformat"`
	Quality         string `yaml:"quality" validate:"quality"`
	Normalize       bool   `yaml:"normalize"`
	StripSubtitles  bool   `yaml:"strip_subtitles"`
	OutputDirectory string `yaml:"output_directory"`
}

// ToolConfig contains ffmpeg discovery overrides
type ToolConfig struct {
	Path      string `yaml:"path"`       // explicit ffmpeg binary, tried first
	BundleDir string `yaml:"bundle_dir"` // replaces the executable's directory for bundled lookups
}

// LoggingConfig contains diagnostics settings
type LoggingConfig struct {
	Level string `yaml:"level" validate:"omitempty,oneof=debug info warn error"`
}

// validate is the shared validator instance for configuration checks.
var validate *validator.Validate

func init() {
	validate = validator.New(validator.WithRequiredStructEnabled())
	_ = validate.RegisterValidation("audioformat", func(fl validator.FieldLevel) bool {
		_, err := conversion.ParseFormat(fl.Field().String())
		return err == nil
	})
	_ = validate.RegisterValidation("quality", func(fl validator.FieldLevel) bool {
		_, err := conversion.ParseQuality(fl.Field().String())
		return err == nil
	})
}

// Default returns the built-in configuration
func Default() *Config {
	home, _ := os.UserHomeDir()
	return &Config{
		Defaults: DefaultsConfig{
			Format:          conversion.DefaultFormat.String(),
			Quality:         conversion.DefaultQuality.String(),
			Normalize:       true,
			OutputDirectory: home,
		},
		Logging: LoggingConfig{Level: "info"},
	}
}

// Load reads and parses the configuration from the specified YAML file.
// Keys missing from the file keep their Default values.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	cfg.Defaults.OutputDirectory = expandHome(cfg.Defaults.OutputDirectory)
	cfg.Tool.Path = expandHome(cfg.Tool.Path)
	cfg.Tool.BundleDir = expandHome(cfg.Tool.BundleDir)

	return cfg, nil
}

// Validate checks field values against their validation tags
func (c *Config) Validate() error {
	err := validate.Struct(c)
	if err == nil {
		return nil
	}

	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return fmt.Errorf("invalid config: %w", err)
	}

	msgs := make([]string, 0, len(validationErrors))
	for _, e := range validationErrors {
		msgs = append(msgs, formatValidationMessage(e))
	}
	return fmt.Errorf("invalid config: %s", strings.Join(msgs, "; "))
}

func formatValidationMessage(e validator.FieldError) string {
	switch e.Tag() {
	case "audioformat":
		return fmt.Sprintf("%s: unsupported format %q", e.Namespace(), e.Value())
	case "quality":
		return fmt.Sprintf("%s: unsupported quality preset %q", e.Namespace(), e.Value())
	case "oneof":
		return fmt.Sprintf("%s: must be one of: %s", e.Namespace(), e.Param())
	default:
		return fmt.Sprintf("%s: failed %s validation", e.Namespace(), e.Tag())
	}
}

// LogLevel maps the configured level name to a slog level
func (c *Config) LogLevel() slog.Level {
	switch c.Logging.Level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func expandHome(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}
