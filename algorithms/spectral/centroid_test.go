package spectral

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCentroidOfBinCentredSine(t *testing.T) {
	e := newTestEngine(t, 512, 8)
	// 1000 Hz at 8 kHz sits on bin 64 and leaks symmetrically
	spectra, err := e.Analyze(deterministicSine(1000, 8000, 1, 4096))
	require.NoError(t, err)

	c := NewCentroid(8000)
	assert.InDelta(t, 1000, c.Compute(Magnitudes(spectra[2])), 1)
	assert.InDelta(t, 1000, c.Mean(spectra), 1)
}

func TestCentroidSilence(t *testing.T) {
	c := NewCentroid(44100)
	assert.Zero(t, c.Compute(nil))
	assert.Zero(t, c.Compute(make([]float64, 256)))
	assert.Zero(t, c.Mean([]Spectrum{NewSpectrum(256), NewSpectrum(256)}))
	assert.Zero(t, c.Mean(nil))
}

func TestCentroidWeights(t *testing.T) {
	c := NewCentroid(16)
	// 8 bands of 1 Hz
	mags := []float64{0, 1, 0, 3, 0, 0, 0, 0}
	assert.InDelta(t, 2.5, c.Compute(mags), 1e-12)
}

func TestCentroidMeanWeightsByEnergy(t *testing.T) {
	c := NewCentroid(16)
	loud := NewSpectrum(8)
	loud.Real[2] = 100
	quiet := NewSpectrum(8)
	quiet.Real[7] = 1

	// a faint high frame barely moves the centroid of a loud low one
	mean := c.Mean([]Spectrum{loud, loud, quiet})
	assert.InDelta(t, 2, mean, 0.01)
	assert.Greater(t, mean, 2.0)
}

func TestCentroidIgnoresReconstructionTail(t *testing.T) {
	const sampleRate = 44100.0
	e := newTestEngine(t, 512, 8)
	signal := deterministicSine(440, sampleRate, 0.5, 16384)
	high := deterministicSine(5000, sampleRate, 0.5, 16384)
	for i := range signal {
		signal[i] += high[i]
	}

	spectra, err := e.AnalyzeOLA(signal)
	require.NoError(t, err)
	// silence 4000 Hz to 6000 Hz (bands 46 to 69)
	for _, s := range spectra {
		for k := 46; k < 70; k++ {
			s.Real[k], s.Imag[k] = 0, 0
		}
	}
	modified, err := e.SynthesizeOLA(spectra)
	require.NoError(t, err)
	require.Greater(t, len(modified), len(signal))

	display, err := e.Analyze(modified)
	require.NoError(t, err)
	assert.InDelta(t, 440, NewCentroid(sampleRate).Mean(display), 15)
}
