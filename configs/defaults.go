package configs

import (
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/RyanBlaney/stft-explainer/algorithms/spectral"
)

// EnvPrefix is the prefix of environment overrides, e.g.
// STFT_EXPLAINER_ANALYSIS_CHUNK_SIZE
const EnvPrefix = "STFT_EXPLAINER"

// NewViper returns a viper instance with defaults and environment overrides
// applied. A non-empty configFile is read as YAML.
func NewViper(configFile string) (*viper.Viper, error) {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	v.AutomaticEnv()

	SetDefaults(v)

	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, err
		}
	}

	return v, nil
}

// SetDefaults sets default configuration values for all components
func SetDefaults(v *viper.Viper) {
	// Application defaults
	v.SetDefault("log_level", "info")
	v.SetDefault("output_format", "table")
	v.SetDefault("samples_dir", "samples")

	// Analysis defaults
	v.SetDefault("analysis.chunk_size", spectral.DefaultChunkSize)
	v.SetDefault("analysis.overlap_ratio", spectral.DefaultOverlapRatio)
	v.SetDefault("analysis.workers", 0)

	// Editing defaults
	v.SetDefault("editing.guidelines", []float64{})

	// Display defaults
	v.SetDefault("display.zero_reference", spectral.DefaultZeroReference)
	v.SetDefault("display.trim_tolerance", spectral.DefaultTrimTolerance)
	v.SetDefault("display.label_spacing_hz", spectral.DefaultLabelSpacingHz)

	// Decoder defaults
	v.SetDefault("decoder.ffmpeg_path", "ffmpeg")
	v.SetDefault("decoder.ffprobe_path", "ffprobe")
	v.SetDefault("decoder.timeout", 30*time.Second)
	v.SetDefault("decoder.target_sample_rate", 0)
	v.SetDefault("decoder.max_duration", time.Duration(0))
	v.SetDefault("decoder.force_ffmpeg", false)
}
