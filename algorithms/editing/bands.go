package editing

import (
	"math"

	"github.com/RyanBlaney/stft-explainer/algorithms/common"
	"github.com/RyanBlaney/stft-explainer/algorithms/spectral"
)

// BandRange is a half-open interval [Lower, Upper) of band indices
type BandRange struct {
	Lower int `json:"lower" yaml:"lower"`
	Upper int `json:"upper" yaml:"upper"`
}

// Len returns the number of bands in the range
func (r BandRange) Len() int {
	return max(r.Upper-r.Lower, 0)
}

// BandForFrequency maps freqHz to the band that contains it. Each of the
// numBands bands spans (sampleRate/2)/numBands Hz. The result is not clamped.
func BandForFrequency(freqHz, sampleRate float64, numBands int) int {
	nyquist := sampleRate / 2
	freqPerBand := nyquist / float64(numBands)
	return int(math.Floor(freqHz / freqPerBand))
}

// FrequencyForBand returns the lowest frequency covered by band
func FrequencyForBand(band int, sampleRate float64, numBands int) float64 {
	nyquist := sampleRate / 2
	return float64(band) * nyquist / float64(numBands)
}

// RangeForFrequencies maps a [lowerHz, upperHz] pair to a band range
func RangeForFrequencies(lowerHz, upperHz, sampleRate float64, numBands int) BandRange {
	return BandRange{
		Lower: BandForFrequency(lowerHz, sampleRate, numBands),
		Upper: BandForFrequency(upperHz, sampleRate, numBands),
	}
}

// ValidateBandRange checks [lower, upper) against numBands. Rules are checked
// in order: upper beyond numBands, upper below lower, lower below zero.
func ValidateBandRange(lower, upper, numBands int) error {
	var kind RangeErrorKind
	switch {
	case upper > numBands:
		kind = OutOfRange
	case upper < lower:
		kind = MinGreaterThanMax
	case lower < 0:
		kind = NegativeMin
	default:
		return nil
	}

	return &RangeError{
		Kind:     kind,
		Lower:    lower,
		Upper:    upper,
		NumBands: numBands,
	}
}

// Validate is ValidateBandRange for r
func (r BandRange) Validate(numBands int) error {
	return ValidateBandRange(r.Lower, r.Upper, numBands)
}

// ZeroBand sets the real and imaginary values of bands [lower, upper) to zero
// in every spectrum, in place. Callers validate the range with
// ValidateBandRange first; indices outside a spectrum are ignored.
func ZeroBand(seq []spectral.Spectrum, lower, upper int) {
	for _, s := range seq {
		lo := common.Clamp(lower, 0, s.Len())
		hi := common.Clamp(upper, lo, s.Len())
		clear(s.Real[lo:hi])
		clear(s.Imag[lo:hi])
	}
}
