package transcode

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/RyanBlaney/stft-explainer/logging"
)

// AudioData represents decoded mono audio
type AudioData struct {
	PCM            []float32     `json:"-"`
	SampleRate     int           `json:"sample_rate"`
	SourceChannels int           `json:"source_channels"`
	Duration       time.Duration `json:"duration"`
	Source         string        `json:"source"`
	Codec          string        `json:"codec,omitempty"`
	Timestamp      time.Time     `json:"timestamp"`
}

// DecoderConfig holds decoder configuration
type DecoderConfig struct {
	FFmpegPath  string        `json:"ffmpeg_path" mapstructure:"ffmpeg_path"`
	FFprobePath string        `json:"ffprobe_path" mapstructure:"ffprobe_path"`
	Timeout     time.Duration `json:"timeout" mapstructure:"timeout"`
	// TargetSampleRate resamples ffmpeg output; 0 keeps the source rate
	TargetSampleRate int           `json:"target_sample_rate" mapstructure:"target_sample_rate"`
	MaxDuration      time.Duration `json:"max_duration" mapstructure:"max_duration"`
	// ForceFFmpeg sends WAV files through ffmpeg as well
	ForceFFmpeg bool `json:"force_ffmpeg" mapstructure:"force_ffmpeg"`
}

// DefaultDecoderConfig returns default decoder configuration
func DefaultDecoderConfig() *DecoderConfig {
	return &DecoderConfig{
		FFmpegPath:       "ffmpeg",
		FFprobePath:      "ffprobe",
		Timeout:          30 * time.Second,
		TargetSampleRate: 0,
		MaxDuration:      0,
	}
}

// AudioMetadata holds detected audio properties from FFprobe
type AudioMetadata struct {
	SampleRate int     `json:"sample_rate"`
	Channels   int     `json:"channels"`
	Codec      string  `json:"codec"`
	Duration   float64 `json:"duration"`
	Bitrate    int     `json:"bitrate"`
	Format     string  `json:"format"`
}

// Decoder loads audio files as mono float32 PCM. Integer PCM WAV is read
// natively; everything else goes through ffmpeg.
type Decoder struct {
	config *DecoderConfig
	logger logging.Logger
}

// NewDecoder creates a new audio decoder
func NewDecoder(config *DecoderConfig) *Decoder {
	if config == nil {
		config = DefaultDecoderConfig()
	}
	return &Decoder{
		config: config,
		logger: logging.WithFields(logging.Fields{"component": "audio_decoder"}),
	}
}

// WithLogger returns a copy of the decoder that logs to logger
func (d *Decoder) WithLogger(logger logging.Logger) *Decoder {
	return &Decoder{config: d.config, logger: logger}
}

// Load decodes the file at path
func (d *Decoder) Load(ctx context.Context, path string) (*AudioData, error) {
	logger := d.logger.WithContext(ctx).WithFields(logging.Fields{
		"function": "Load",
		"path":     path,
	})

	if !d.config.ForceFFmpeg && strings.EqualFold(filepath.Ext(path), ".wav") {
		data, err := DecodeWAVFile(path)
		if err == nil {
			logger.Debug("Decoded WAV natively", logging.Fields{
				"samples":     len(data.PCM),
				"sample_rate": data.SampleRate,
				"channels":    data.SourceChannels,
			})
			return data, nil
		}
		if !errors.Is(err, errUnsupportedWAV) {
			return nil, err
		}
		logger.Debug("WAV encoding not handled natively, falling back to ffmpeg")
	}

	return d.DecodeFile(ctx, path)
}

// DecodeFile decodes any ffmpeg-readable file
func (d *Decoder) DecodeFile(ctx context.Context, path string) (*AudioData, error) {
	logger := d.logger.WithContext(ctx).WithFields(logging.Fields{
		"function": "DecodeFile",
		"path":     path,
	})

	metadata, err := d.probeAudioFile(ctx, path)
	if err != nil {
		logger.Error(err, "Failed to probe audio file")
		return nil, err
	}

	logger.Debug("Audio metadata detected", logging.Fields{
		"input_sample_rate": metadata.SampleRate,
		"input_channels":    metadata.Channels,
		"input_codec":       metadata.Codec,
		"input_duration":    metadata.Duration,
	})

	args := append([]string{"-i", path}, d.buildFFmpegArgs(metadata)...)
	args = append(args, "pipe:1")

	output, err := d.run(ctx, d.config.FFmpegPath, args)
	if err != nil {
		return nil, d.commandError(path, ErrCodeDecoding, "ffmpeg decode failed", err, logger)
	}

	samples := bytesToFloat32(output)
	if len(samples) == 0 {
		return nil, NewDecodeError(path, ErrCodeEmpty, "no audio samples decoded", nil)
	}

	sampleRate := d.outputSampleRate(metadata)
	logger.Debug("FFmpeg decode completed", logging.Fields{
		"output_samples":     len(samples),
		"output_sample_rate": sampleRate,
	})

	return &AudioData{
		PCM:            samples,
		SampleRate:     sampleRate,
		SourceChannels: metadata.Channels,
		Duration:       durationOf(len(samples), sampleRate),
		Source:         path,
		Codec:          metadata.Codec,
		Timestamp:      time.Now(),
	}, nil
}

func (d *Decoder) run(ctx context.Context, name string, args []string) ([]byte, error) {
	if d.config.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d.config.Timeout)
		defer cancel()
	}

	output, err := exec.CommandContext(ctx, name, args...).Output()
	if err != nil && ctx.Err() != nil {
		return nil, ctx.Err()
	}
	return output, err
}

func (d *Decoder) commandError(path, code, message string, err error, logger logging.Logger) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return NewDecodeError(path, ErrCodeTimeout, message, err)
	}

	var exitError *exec.ExitError
	if errors.As(err, &exitError) {
		logger.Error(err, message, logging.Fields{
			"stderr": string(exitError.Stderr),
		})
		return NewDecodeError(path, code, fmt.Sprintf("%s, stderr: %s", message, strings.TrimSpace(string(exitError.Stderr))), err)
	}
	return NewDecodeError(path, code, message, err)
}

// probeAudioFile uses ffprobe to get audio information from a file
func (d *Decoder) probeAudioFile(ctx context.Context, path string) (*AudioMetadata, error) {
	args := []string{
		"-v", "quiet",
		"-print_format", "json",
		"-show_streams",
		"-select_streams", "a:0",
		path,
	}

	output, err := d.run(ctx, d.config.FFprobePath, args)
	if err != nil {
		return nil, d.commandError(path, ErrCodeProbe, "ffprobe failed", err, d.logger)
	}

	metadata, err := parseFFprobeOutput(output)
	if err != nil {
		return nil, NewDecodeError(path, ErrCodeProbe, "failed to parse ffprobe output", err)
	}
	return metadata, nil
}

func parseFFprobeOutput(jsonData []byte) (*AudioMetadata, error) {
	var probe struct {
		Streams []struct {
			CodecType     string `json:"codec_type"`
			CodecName     string `json:"codec_name"`
			SampleRate    string `json:"sample_rate"`
			Channels      int    `json:"channels"`
			Duration      string `json:"duration"`
			BitRate       string `json:"bit_rate"`
			CodecLongName string `json:"codec_long_name"`
		} `json:"streams"`
	}

	if err := json.Unmarshal(jsonData, &probe); err != nil {
		return nil, err
	}

	if len(probe.Streams) == 0 {
		return nil, fmt.Errorf("no audio streams found")
	}

	stream := probe.Streams[0]
	if stream.CodecType != "audio" {
		return nil, fmt.Errorf("stream is not audio type: %s", stream.CodecType)
	}

	sampleRate, err := strconv.Atoi(stream.SampleRate)
	if err != nil {
		sampleRate = 44100
	}

	duration, err := strconv.ParseFloat(stream.Duration, 64)
	if err != nil {
		duration = 0
	}

	bitrate, err := strconv.Atoi(stream.BitRate)
	if err != nil {
		bitrate = 0
	}

	if stream.Channels <= 0 || stream.Channels > 8 {
		return nil, fmt.Errorf("invalid channel count: %d", stream.Channels)
	}

	return &AudioMetadata{
		SampleRate: sampleRate,
		Channels:   stream.Channels,
		Codec:      stream.CodecName,
		Duration:   duration,
		Bitrate:    bitrate,
		Format:     stream.CodecLongName,
	}, nil
}

func (d *Decoder) outputSampleRate(metadata *AudioMetadata) int {
	if d.config.TargetSampleRate > 0 {
		return d.config.TargetSampleRate
	}
	return metadata.SampleRate
}

// buildFFmpegArgs returns the output half of the ffmpeg command line: mono
// float32 little-endian at the output sample rate
func (d *Decoder) buildFFmpegArgs(metadata *AudioMetadata) []string {
	args := []string{
		"-vn",
		"-f", "f32le",
		"-ac", "1",
		"-ar", strconv.Itoa(d.outputSampleRate(metadata)),
	}

	if d.config.TargetSampleRate > 0 && metadata.SampleRate != d.config.TargetSampleRate {
		args = append(args, "-af", "aresample=resampler=soxr:precision=20")
	}

	if d.config.MaxDuration > 0 {
		args = append(args, "-t", fmt.Sprintf("%.2f", d.config.MaxDuration.Seconds()))
	}

	return append(args, "-v", "error")
}

// bytesToFloat32 decodes f32le samples, dropping a trailing partial sample
func bytesToFloat32(data []byte) []float32 {
	sampleCount := len(data) / 4
	if sampleCount == 0 {
		return nil
	}

	samples := make([]float32, sampleCount)
	for i := range sampleCount {
		bits := binary.LittleEndian.Uint32(data[i*4 : i*4+4])
		samples[i] = math.Float32frombits(bits)
	}

	return samples
}

// ValidateConfig checks the decoder configuration
func (d *Decoder) ValidateConfig() error {
	if d.config.FFmpegPath == "" {
		return fmt.Errorf("ffmpeg path must not be empty")
	}
	if d.config.FFprobePath == "" {
		return fmt.Errorf("ffprobe path must not be empty")
	}
	if d.config.TargetSampleRate < 0 {
		return fmt.Errorf("target sample rate must not be negative: %d", d.config.TargetSampleRate)
	}
	if d.config.Timeout < 0 {
		return fmt.Errorf("timeout must not be negative: %s", d.config.Timeout)
	}
	return nil
}
