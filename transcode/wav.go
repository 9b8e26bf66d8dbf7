package transcode

import (
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"time"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

const (
	wavFormatPCM      = 1
	wavOutputBitDepth = 16
)

// errUnsupportedWAV marks WAV files go-audio cannot read as integer PCM
var errUnsupportedWAV = errors.New("unsupported wav encoding")

// DecodeWAV reads an integer PCM WAV stream and mixes it down to mono
func DecodeWAV(r io.ReadSeeker, source string) (*AudioData, error) {
	decoder := wav.NewDecoder(r)
	if !decoder.IsValidFile() {
		return nil, NewDecodeError(source, ErrCodeInvalidFormat, "invalid WAV file", decoder.Err())
	}

	if decoder.WavAudioFormat != wavFormatPCM {
		return nil, NewDecodeError(source, ErrCodeInvalidFormat,
			fmt.Sprintf("wav audio format %d is not integer PCM", decoder.WavAudioFormat), errUnsupportedWAV)
	}

	buf, err := decoder.FullPCMBuffer()
	if err != nil {
		return nil, NewDecodeError(source, ErrCodeDecoding, "could not read PCM buffer", err)
	}

	bitDepth := buf.SourceBitDepth
	if bitDepth == 0 {
		bitDepth = int(decoder.BitDepth)
	}

	channels := 1
	sampleRate := int(decoder.SampleRate)
	if buf.Format != nil {
		channels = max(buf.Format.NumChannels, 1)
		sampleRate = buf.Format.SampleRate
	}

	pcm := intBufferToMono(buf.Data, channels, bitDepth)
	if len(pcm) == 0 {
		return nil, NewDecodeError(source, ErrCodeEmpty, "no audio samples decoded", nil)
	}

	return &AudioData{
		PCM:            pcm,
		SampleRate:     sampleRate,
		SourceChannels: channels,
		Duration:       durationOf(len(pcm), sampleRate),
		Source:         source,
		Timestamp:      time.Now(),
	}, nil
}

// DecodeWAVFile opens path and decodes it with DecodeWAV
func DecodeWAVFile(path string) (*AudioData, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, NewDecodeError(path, ErrCodeOpen, "could not open file", err)
	}
	defer file.Close()

	return DecodeWAV(file, path)
}

// intBufferToMono scales interleaved integer samples to [-1, 1) and averages
// channels per frame
func intBufferToMono(data []int, channels, bitDepth int) []float32 {
	if channels <= 0 || bitDepth <= 0 {
		return nil
	}

	scale := math.Exp2(float64(bitDepth - 1))
	// 8-bit WAV is unsigned
	offset := 0.0
	if bitDepth == 8 {
		offset = 128
	}

	frames := len(data) / channels
	out := make([]float32, frames)
	for f := range frames {
		var sum float64
		for c := range channels {
			sum += (float64(data[f*channels+c]) - offset) / scale
		}
		out[f] = float32(sum / float64(channels))
	}
	return out
}

// EncodeWAV writes mono samples as 16-bit PCM. Samples outside [-1, 1] clip.
func EncodeWAV(w io.WriteSeeker, pcm []float32, sampleRate int) error {
	if sampleRate <= 0 {
		return NewDecodeError("", ErrCodeEncoding, fmt.Sprintf("invalid sample rate %d", sampleRate), nil)
	}

	encoder := wav.NewEncoder(w, sampleRate, wavOutputBitDepth, 1, wavFormatPCM)

	maxValue := math.Exp2(wavOutputBitDepth-1) - 1
	data := make([]int, len(pcm))
	for i, v := range pcm {
		clipped := math.Max(-1, math.Min(1, float64(v)))
		data[i] = int(math.Round(clipped * maxValue))
	}

	buf := &audio.IntBuffer{
		Format: &audio.Format{
			NumChannels: 1,
			SampleRate:  sampleRate,
		},
		Data:           data,
		SourceBitDepth: wavOutputBitDepth,
	}

	if err := encoder.Write(buf); err != nil {
		encoder.Close()
		return NewDecodeError("", ErrCodeEncoding, "data writing error", err)
	}
	if err := encoder.Close(); err != nil {
		return NewDecodeError("", ErrCodeEncoding, "could not finalize WAV header", err)
	}

	return nil
}

// EncodeWAVFile creates path and writes pcm to it with EncodeWAV
func EncodeWAVFile(path string, pcm []float32, sampleRate int) error {
	file, err := os.Create(path)
	if err != nil {
		return NewDecodeError(path, ErrCodeOpen, "output file creation error", err)
	}

	if err := EncodeWAV(file, pcm, sampleRate); err != nil {
		file.Close()
		var decodeErr *DecodeError
		if errors.As(err, &decodeErr) {
			decodeErr.Source = path
		}
		return err
	}

	return file.Close()
}

func durationOf(samples, sampleRate int) time.Duration {
	if sampleRate <= 0 {
		return 0
	}
	return time.Duration(samples) * time.Second / time.Duration(sampleRate)
}
