package spectral

import (
	"math"

	"gonum.org/v1/gonum/floats"
)

const (
	// DefaultZeroReference is the amplitude mapped to 0 dB
	DefaultZeroReference = 0.1

	// DefaultTrimTolerance is the number of bins kept above the highest content
	DefaultTrimTolerance = 25

	// MagnitudeEpsilon is the level above which a bin counts as content
	MagnitudeEpsilon = 1e-6

	// DefaultLabelSpacingHz is the distance between frequency axis labels
	DefaultLabelSpacingHz = 500

	// magnitudeFloor keeps log10 finite for silent bins
	magnitudeFloor = 1e-12
)

// DisplayOptions controls display preparation
type DisplayOptions struct {
	ZeroReference float64 `json:"zero_reference" yaml:"zero_reference"`
	TrimTolerance int     `json:"trim_tolerance" yaml:"trim_tolerance"`
}

// DefaultDisplayOptions returns the options used by the explainer
func DefaultDisplayOptions() DisplayOptions {
	return DisplayOptions{
		ZeroReference: DefaultZeroReference,
		TrimTolerance: DefaultTrimTolerance,
	}
}

// DisplayData is a rectangular time x frequency matrix of decibel values ready
// for a spectrogram renderer
type DisplayData struct {
	Decibels     [][]float64 `json:"decibels" yaml:"decibels"`           // frames x trimmed bins
	SampleRate   float64     `json:"sample_rate" yaml:"sample_rate"`     // Hz
	Bands        int         `json:"bands" yaml:"bands"`                 // untrimmed bands, size/2
	TrimmedBands int         `json:"trimmed_bands" yaml:"trimmed_bands"` // bands kept after trimming
	Frames       int         `json:"frames" yaml:"frames"`               // analyzed chunks
}

// FrequencyLabel is a frequency axis tick. Position is the fraction of the
// displayed axis height (0 = bottom) at which Hz sits.
type FrequencyLabel struct {
	Hz       int     `json:"hz" yaml:"hz"`
	Band     int     `json:"band" yaml:"band"`
	Position float64 `json:"position" yaml:"position"`
}

// Magnitudes returns the squared magnitude re^2 + im^2 of every bin
func Magnitudes(s Spectrum) []float64 {
	mags := make([]float64, s.Len())
	floats.MulTo(mags, s.Real, s.Real)
	for i, im := range s.Imag {
		mags[i] += im * im
	}
	return mags
}

// TrimTrailingZeros cuts every row to a common width: the lowest "last
// content index" across rows plus tolerance, clamped to the row length.
// Rows without any content do not narrow the result.
func TrimTrailingZeros(matrix [][]float64, tolerance int) [][]float64 {
	if len(matrix) == 0 {
		return [][]float64{}
	}

	rowLen := len(matrix[0])
	for _, row := range matrix[1:] {
		rowLen = min(rowLen, len(row))
	}

	highestNonZero := rowLen
	for _, row := range matrix {
		for i := len(row) - 1; i >= 0; i-- {
			if row[i] > MagnitudeEpsilon {
				highestNonZero = min(highestNonZero, i)
				break
			}
		}
	}

	width := min(highestNonZero+max(tolerance, 0), rowLen)

	trimmed := make([][]float64, len(matrix))
	for i, row := range matrix {
		trimmed[i] = make([]float64, width)
		copy(trimmed[i], row[:width])
	}

	return trimmed
}

// ToDecibels converts amplitudes to 20*log10(value/zeroReference).
// Values at or below a tiny floor, and non-finite values, are floored first.
func ToDecibels(values []float64, zeroReference float64) []float64 {
	if zeroReference <= 0 {
		zeroReference = DefaultZeroReference
	}

	out := make([]float64, len(values))
	for i, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) || v < magnitudeFloor {
			v = magnitudeFloor
		}
		out[i] = 20 * math.Log10(v/zeroReference)
	}

	return out
}

// PrepareForDisplay converts a spectrum sequence into trimmed decibel rows
func PrepareForDisplay(seq []Spectrum, sampleRate float64, opts DisplayOptions) DisplayData {
	bands := 0
	if len(seq) > 0 {
		bands = seq[0].Len()
	}

	mags := make([][]float64, len(seq))
	for i, s := range seq {
		mags[i] = Magnitudes(s)
	}

	trimmed := TrimTrailingZeros(mags, opts.TrimTolerance)

	decibels := make([][]float64, len(trimmed))
	for i, row := range trimmed {
		decibels[i] = ToDecibels(row, opts.ZeroReference)
	}

	trimmedBands := 0
	if len(decibels) > 0 {
		trimmedBands = len(decibels[0])
	}

	return DisplayData{
		Decibels:     decibels,
		SampleRate:   sampleRate,
		Bands:        bands,
		TrimmedBands: trimmedBands,
		Frames:       len(decibels),
	}
}

// HighestFrequency returns the frequency at the top of the trimmed display
func (d DisplayData) HighestFrequency() float64 {
	if d.Bands == 0 {
		return 0
	}
	return d.SampleRate / 2 * float64(d.TrimmedBands) / float64(d.Bands)
}

// Position returns where freqHz sits on the displayed axis, as a fraction of
// its height. Values above 1 are off the top of the trimmed display.
func (d DisplayData) Position(freqHz float64) float64 {
	highest := d.HighestFrequency()
	if highest == 0 {
		return 0
	}
	return freqHz / highest
}

// GuidelineBand returns the display row that freqHz falls in
func (d DisplayData) GuidelineBand(freqHz float64) int {
	if d.Bands == 0 || d.SampleRate <= 0 {
		return 0
	}
	freqPerBand := d.SampleRate / 2 / float64(d.Bands)
	return int(math.Floor(freqHz / freqPerBand))
}

// FrequencyLabels returns one label every spacingHz below the highest
// displayed frequency, starting at 0 Hz
func (d DisplayData) FrequencyLabels(spacingHz int) []FrequencyLabel {
	highest := d.HighestFrequency()
	if spacingHz <= 0 || highest <= 0 {
		return nil
	}

	numLabels := int(highest) / spacingHz
	labels := make([]FrequencyLabel, 0, numLabels)
	for n := range numLabels {
		hz := n * spacingHz
		labels = append(labels, FrequencyLabel{
			Hz:       hz,
			Band:     d.GuidelineBand(float64(hz)),
			Position: float64(hz) / highest,
		})
	}

	return labels
}
