package configs

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/RyanBlaney/stft-explainer/logging"
)

func TestDefaults(t *testing.T) {
	v, err := NewViper("")
	require.NoError(t, err)

	cfg, err := LoadConfig(v)
	require.NoError(t, err)

	assert.Equal(t, 512, cfg.Analysis.ChunkSize)
	assert.Equal(t, 8, cfg.Analysis.OverlapRatio)
	assert.Zero(t, cfg.Analysis.Workers)
	assert.Equal(t, 0.1, cfg.Display.ZeroReference)
	assert.Equal(t, 25, cfg.Display.TrimTolerance)
	assert.Equal(t, 500, cfg.Display.LabelSpacingHz)
	assert.Equal(t, "table", cfg.OutputFormat)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "samples", cfg.SamplesDir)
	assert.Equal(t, "ffmpeg", cfg.Decoder.FFmpegPath)
	assert.Equal(t, 30*time.Second, cfg.Decoder.Timeout)

	_, _, ok := cfg.Guidelines()
	assert.False(t, ok)
}

func TestLoadFromFileAndEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "stft-explainer.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
log_level: debug
output_format: json
analysis:
  chunk_size: 1024
  overlap_ratio: 4
editing:
  guidelines: [200, 1800]
display:
  trim_tolerance: 10
decoder:
  timeout: 5s
`), 0o644))

	t.Setenv("STFT_EXPLAINER_ANALYSIS_WORKERS", "3")
	t.Setenv("STFT_EXPLAINER_SAMPLES_DIR", "/srv/samples")

	v, err := NewViper(path)
	require.NoError(t, err)

	cfg, err := LoadConfig(v)
	require.NoError(t, err)

	assert.Equal(t, 1024, cfg.Analysis.ChunkSize)
	assert.Equal(t, 4, cfg.Analysis.OverlapRatio)
	assert.Equal(t, 3, cfg.Analysis.Workers)
	assert.Equal(t, "/srv/samples", cfg.SamplesDir)
	assert.Equal(t, 10, cfg.Display.TrimTolerance)
	assert.Equal(t, 0.1, cfg.Display.ZeroReference)
	assert.Equal(t, 5*time.Second, cfg.Decoder.Timeout)

	lower, upper, ok := cfg.Guidelines()
	require.True(t, ok)
	assert.Equal(t, 200.0, lower)
	assert.Equal(t, 1800.0, upper)

	opts := cfg.SessionOptions(&logging.NoOpLogger{})
	assert.Equal(t, 1024, opts.ChunkSize)
	assert.Equal(t, 4, opts.OverlapRatio)
	assert.Equal(t, 3, opts.Workers)
	assert.Equal(t, "/srv/samples", opts.SamplesDir)
	assert.Equal(t, 10, opts.Display.TrimTolerance)
}

func TestNewViperMissingFile(t *testing.T) {
	_, err := NewViper(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestValidateConfig(t *testing.T) {
	valid := func() *Config {
		v, err := NewViper("")
		require.NoError(t, err)
		cfg, err := LoadConfig(v)
		require.NoError(t, err)
		return cfg
	}

	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{name: "chunk size not power of two", mutate: func(c *Config) { c.Analysis.ChunkSize = 500 }},
		{name: "chunk size one", mutate: func(c *Config) { c.Analysis.ChunkSize = 1 }},
		{name: "overlap ratio one", mutate: func(c *Config) { c.Analysis.OverlapRatio = 1 }},
		{name: "overlap ratio does not divide", mutate: func(c *Config) { c.Analysis.OverlapRatio = 3 }},
		{name: "negative workers", mutate: func(c *Config) { c.Analysis.Workers = -1 }},
		{name: "single guideline", mutate: func(c *Config) { c.Editing.Guidelines = []float64{100} }},
		{name: "zero reference", mutate: func(c *Config) { c.Display.ZeroReference = 0 }},
		{name: "negative tolerance", mutate: func(c *Config) { c.Display.TrimTolerance = -1 }},
		{name: "label spacing", mutate: func(c *Config) { c.Display.LabelSpacingHz = 0 }},
		{name: "output format", mutate: func(c *Config) { c.OutputFormat = "csv" }},
		{name: "log level", mutate: func(c *Config) { c.LogLevel = "chatty" }},
		{name: "decoder path", mutate: func(c *Config) { c.Decoder.FFmpegPath = "" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			assert.Error(t, ValidateConfig(cfg))
		})
	}
}
