package transcode

import (
	"context"
	"encoding/binary"
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/RyanBlaney/stft-explainer/logging"
)

func TestWAVRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tone.wav")

	pcm := make([]float32, 4410)
	for i := range pcm {
		pcm[i] = float32(0.5 * math.Sin(2*math.Pi*440*float64(i)/44100))
	}
	pcm[10] = 1.7 // clips

	require.NoError(t, EncodeWAVFile(path, pcm, 44100))

	data, err := DecodeWAVFile(path)
	require.NoError(t, err)
	assert.Equal(t, 44100, data.SampleRate)
	assert.Equal(t, 1, data.SourceChannels)
	assert.Equal(t, path, data.Source)
	assert.Equal(t, 100*time.Millisecond, data.Duration)
	require.Len(t, data.PCM, len(pcm))

	for i, v := range data.PCM {
		want := math.Max(-1, math.Min(1, float64(pcm[i])))
		assert.InDelta(t, want, float64(v), 1.0/16384, "sample %d", i)
	}
}

func TestDecodeWAVMixesStereoToMono(t *testing.T) {
	path := filepath.Join(t.TempDir(), "stereo.wav")
	file, err := os.Create(path)
	require.NoError(t, err)

	encoder := wav.NewEncoder(file, 8000, 16, 2, 1)
	buf := &audio.IntBuffer{
		Format:         &audio.Format{NumChannels: 2, SampleRate: 8000},
		Data:           []int{16384, 0, -16384, -16384, 8192, 24576},
		SourceBitDepth: 16,
	}
	require.NoError(t, encoder.Write(buf))
	require.NoError(t, encoder.Close())
	require.NoError(t, file.Close())

	data, err := DecodeWAVFile(path)
	require.NoError(t, err)
	assert.Equal(t, 2, data.SourceChannels)
	assert.Equal(t, 8000, data.SampleRate)
	assert.InDeltaSlice(t, []float32{0.25, -0.5, 0.5}, data.PCM, 1e-6)
}

func TestDecodeWAVRejectsGarbage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "noise.wav")
	require.NoError(t, os.WriteFile(path, []byte("definitely not a RIFF file"), 0o644))

	_, err := DecodeWAVFile(path)
	require.Error(t, err)

	var decodeErr *DecodeError
	require.True(t, errors.As(err, &decodeErr))
	assert.Equal(t, ErrCodeInvalidFormat, decodeErr.Code)
	assert.Equal(t, path, decodeErr.Source)

	_, err = DecodeWAVFile(filepath.Join(t.TempDir(), "missing.wav"))
	require.True(t, errors.As(err, &decodeErr))
	assert.Equal(t, ErrCodeOpen, decodeErr.Code)
	assert.True(t, errors.Is(err, os.ErrNotExist))
}

func TestEncodeWAVRejectsBadSampleRate(t *testing.T) {
	err := EncodeWAVFile(filepath.Join(t.TempDir(), "bad.wav"), []float32{0}, 0)
	var decodeErr *DecodeError
	require.True(t, errors.As(err, &decodeErr))
	assert.Equal(t, ErrCodeEncoding, decodeErr.Code)
	assert.Contains(t, decodeErr.Source, "bad.wav")
}

func TestIntBufferToMono(t *testing.T) {
	// 8-bit WAV is unsigned around 128
	assert.Equal(t, []float32{0.5, -1}, intBufferToMono([]int{192, 0}, 1, 8))
	assert.Equal(t, []float32{0.5, -0.25}, intBufferToMono([]int{16384, -8192}, 1, 16))
	// trailing partial frame is dropped
	assert.Len(t, intBufferToMono([]int{1, 2, 3}, 2, 16), 1)
	assert.Nil(t, intBufferToMono([]int{1}, 0, 16))
}

func TestBytesToFloat32(t *testing.T) {
	want := []float32{0, 1, -0.5, 0.25}
	data := make([]byte, 0, len(want)*4+3)
	for _, v := range want {
		data = binary.LittleEndian.AppendUint32(data, math.Float32bits(v))
	}

	assert.Equal(t, want, bytesToFloat32(data))
	assert.Equal(t, want, bytesToFloat32(append(data, 1, 2, 3)))
	assert.Nil(t, bytesToFloat32([]byte{1, 2}))
}

func TestBuildFFmpegArgs(t *testing.T) {
	metadata := &AudioMetadata{SampleRate: 48000, Channels: 2}

	d := NewDecoder(nil)
	assert.Equal(t, []string{"-vn", "-f", "f32le", "-ac", "1", "-ar", "48000", "-v", "error"}, d.buildFFmpegArgs(metadata))

	d = NewDecoder(&DecoderConfig{
		FFmpegPath:       "ffmpeg",
		FFprobePath:      "ffprobe",
		TargetSampleRate: 44100,
		MaxDuration:      1500 * time.Millisecond,
	})
	args := d.buildFFmpegArgs(metadata)
	assert.Equal(t, []string{
		"-vn", "-f", "f32le", "-ac", "1", "-ar", "44100",
		"-af", "aresample=resampler=soxr:precision=20",
		"-t", "1.50",
		"-v", "error",
	}, args)
}

func TestParseFFprobeOutput(t *testing.T) {
	metadata, err := parseFFprobeOutput([]byte(`{"streams":[{"codec_type":"audio","codec_name":"mp3","sample_rate":"22050","channels":2,"duration":"3.5","bit_rate":"128000","codec_long_name":"MP3 (MPEG audio layer 3)"}]}`))
	require.NoError(t, err)
	assert.Equal(t, &AudioMetadata{
		SampleRate: 22050,
		Channels:   2,
		Codec:      "mp3",
		Duration:   3.5,
		Bitrate:    128000,
		Format:     "MP3 (MPEG audio layer 3)",
	}, metadata)

	for _, bad := range []string{
		`not json`,
		`{"streams":[]}`,
		`{"streams":[{"codec_type":"video","channels":1}]}`,
		`{"streams":[{"codec_type":"audio","channels":0}]}`,
	} {
		_, err := parseFFprobeOutput([]byte(bad))
		assert.Error(t, err, bad)
	}
}

func TestLoadReadsWAVNatively(t *testing.T) {
	path := filepath.Join(t.TempDir(), "native.WAV")
	require.NoError(t, EncodeWAVFile(path, []float32{0, 0.5, -0.5}, 22050))

	d := NewDecoder(&DecoderConfig{FFmpegPath: "/nonexistent/ffmpeg", FFprobePath: "/nonexistent/ffprobe"}).
		WithLogger(&logging.NoOpLogger{})

	data, err := d.Load(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, 22050, data.SampleRate)
	assert.Len(t, data.PCM, 3)
}

func TestLoadReportsMissingProbe(t *testing.T) {
	path := filepath.Join(t.TempDir(), "clip.mp3")
	require.NoError(t, os.WriteFile(path, []byte{0xff, 0xfb}, 0o644))

	d := NewDecoder(&DecoderConfig{
		FFmpegPath:  "/nonexistent/ffmpeg",
		FFprobePath: "/nonexistent/ffprobe",
		Timeout:     time.Second,
	}).WithLogger(&logging.NoOpLogger{})

	_, err := d.Load(context.Background(), path)
	require.Error(t, err)

	var decodeErr *DecodeError
	require.True(t, errors.As(err, &decodeErr))
	assert.Equal(t, ErrCodeProbe, decodeErr.Code)
	assert.Equal(t, path, decodeErr.Source)
	assert.NotNil(t, decodeErr.Unwrap())
}

func TestValidateConfig(t *testing.T) {
	assert.NoError(t, NewDecoder(nil).ValidateConfig())

	tests := []DecoderConfig{
		{FFmpegPath: "", FFprobePath: "ffprobe"},
		{FFmpegPath: "ffmpeg", FFprobePath: ""},
		{FFmpegPath: "ffmpeg", FFprobePath: "ffprobe", TargetSampleRate: -1},
		{FFmpegPath: "ffmpeg", FFprobePath: "ffprobe", Timeout: -time.Second},
	}
	for _, cfg := range tests {
		assert.Error(t, NewDecoder(&cfg).ValidateConfig(), "%+v", cfg)
	}
}

func TestDecodeErrorMessage(t *testing.T) {
	cause := errors.New("exit status 1")
	err := NewDecodeError("a.mp3", ErrCodeDecoding, "ffmpeg decode failed", cause)

	assert.Equal(t, "DECODING_FAILED: ffmpeg decode failed (a.mp3): exit status 1", err.Error())
	assert.True(t, errors.Is(err, cause))
	assert.Equal(t, "NO_SAMPLES: no audio samples decoded", NewDecodeError("", ErrCodeEmpty, "no audio samples decoded", nil).Error())
}
