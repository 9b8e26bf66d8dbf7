package configs

import (
	"fmt"
	"slices"

	"github.com/spf13/viper"

	"github.com/RyanBlaney/stft-explainer/algorithms/common"
	"github.com/RyanBlaney/stft-explainer/algorithms/spectral"
	"github.com/RyanBlaney/stft-explainer/explainer"
	"github.com/RyanBlaney/stft-explainer/logging"
	"github.com/RyanBlaney/stft-explainer/transcode"
)

// Config represents the application configuration
type Config struct {
	// Application settings
	LogLevel     string `mapstructure:"log_level"`
	OutputFormat string `mapstructure:"output_format"`
	SamplesDir   string `mapstructure:"samples_dir"`

	Analysis AnalysisConfig          `mapstructure:"analysis"`
	Editing  EditingConfig           `mapstructure:"editing"`
	Display  DisplayConfig           `mapstructure:"display"`
	Decoder  transcode.DecoderConfig `mapstructure:"decoder"`
}

// AnalysisConfig contains STFT settings
type AnalysisConfig struct {
	ChunkSize    int `mapstructure:"chunk_size"`
	OverlapRatio int `mapstructure:"overlap_ratio"`
	// Workers bounds the transform worker pool; 0 picks one from the CPU count
	Workers int `mapstructure:"workers"`
}

// EditingConfig contains the default band edit
type EditingConfig struct {
	// Guidelines is a [lowerHz, upperHz] pair
	Guidelines []float64 `mapstructure:"guidelines"`
}

// DisplayConfig contains spectrogram preprocessing settings
type DisplayConfig struct {
	ZeroReference  float64 `mapstructure:"zero_reference"`
	TrimTolerance  int     `mapstructure:"trim_tolerance"`
	LabelSpacingHz int     `mapstructure:"label_spacing_hz"`
}

// OutputFormats lists the accepted values of output_format
var OutputFormats = []string{"table", "json", "yaml"}

// LoadConfig decodes and validates the configuration held by v
func LoadConfig(v *viper.Viper) (*Config, error) {
	config := &Config{}

	if err := v.Unmarshal(config); err != nil {
		return nil, fmt.Errorf("unable to decode configuration: %w", err)
	}

	if err := ValidateConfig(config); err != nil {
		return nil, err
	}

	return config, nil
}

// ValidateConfig validates the configuration
func ValidateConfig(config *Config) error {
	if !common.IsPowerOfTwo(config.Analysis.ChunkSize) || config.Analysis.ChunkSize < 2 {
		return fmt.Errorf("analysis chunk size must be a power of two >= 2, got %d", config.Analysis.ChunkSize)
	}

	if config.Analysis.OverlapRatio < 2 || config.Analysis.ChunkSize%config.Analysis.OverlapRatio != 0 {
		return fmt.Errorf("analysis overlap ratio must be >= 2 and divide the chunk size, got %d", config.Analysis.OverlapRatio)
	}

	if config.Analysis.Workers < 0 {
		return fmt.Errorf("analysis workers cannot be negative")
	}

	if len(config.Editing.Guidelines) != 0 && len(config.Editing.Guidelines) != 2 {
		return fmt.Errorf("editing guidelines must be a [lower, upper] pair, got %d values", len(config.Editing.Guidelines))
	}

	if config.Display.ZeroReference <= 0 {
		return fmt.Errorf("display zero reference must be positive")
	}

	if config.Display.TrimTolerance < 0 {
		return fmt.Errorf("display trim tolerance cannot be negative")
	}

	if config.Display.LabelSpacingHz <= 0 {
		return fmt.Errorf("display label spacing must be positive")
	}

	if !slices.Contains(OutputFormats, config.OutputFormat) {
		return fmt.Errorf("unsupported output format %q (want one of %v)", config.OutputFormat, OutputFormats)
	}

	if _, err := logging.ParseLevel(config.LogLevel); err != nil {
		return err
	}

	return transcode.NewDecoder(&config.Decoder).ValidateConfig()
}

// DisplayOptions returns the display settings for the preprocessor
func (c *Config) DisplayOptions() spectral.DisplayOptions {
	return spectral.DisplayOptions{
		ZeroReference: c.Display.ZeroReference,
		TrimTolerance: c.Display.TrimTolerance,
	}
}

// SessionOptions returns explainer session settings that log to logger
func (c *Config) SessionOptions(logger logging.Logger) explainer.Options {
	return explainer.Options{
		ChunkSize:    c.Analysis.ChunkSize,
		OverlapRatio: c.Analysis.OverlapRatio,
		Workers:      c.Analysis.Workers,
		SamplesDir:   c.SamplesDir,
		Display:      c.DisplayOptions(),
		Logger:       logger,
	}
}

// Guidelines returns the configured [lowerHz, upperHz] pair, if any
func (c *Config) Guidelines() (float64, float64, bool) {
	if len(c.Editing.Guidelines) != 2 {
		return 0, 0, false
	}
	return c.Editing.Guidelines[0], c.Editing.Guidelines[1], true
}
