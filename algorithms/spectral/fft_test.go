package spectral

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/dsp/fourier"
)

func TestNewWindowedFFTRejectsInvalidSizes(t *testing.T) {
	for _, size := range []int{-512, 0, 1, 3, 6, 500, 1000} {
		_, err := NewWindowedFFT(size)
		require.Error(t, err, "size %d", size)
		assert.True(t, errors.Is(err, ErrInvalidParameter), "size %d: %v", size, err)
	}

	for _, size := range []int{2, 4, 64, 512, 4096} {
		unit, err := NewWindowedFFT(size)
		require.NoError(t, err, "size %d", size)
		assert.Equal(t, size, unit.Size())
		assert.Equal(t, size/2, unit.Bins())
	}
}

func TestForwardMatchesReferenceRealFFT(t *testing.T) {
	for _, size := range []int{8, 64, 512} {
		unit, err := NewWindowedFFT(size)
		require.NoError(t, err)

		chunk := deterministicNoise(int64(size), 1, size)
		spectrum, err := unit.Forward(chunk)
		require.NoError(t, err)
		require.Equal(t, size/2, spectrum.Len())
		require.Len(t, spectrum.Imag, size/2)

		windowed, err := unit.Window().Apply(chunk)
		require.NoError(t, err)
		ref := fourier.NewFFT(size).Coefficients(nil, windowed)

		half := size / 2
		assert.InDelta(t, 2*real(ref[0]), spectrum.Real[0], 1e-9, "size %d DC", size)
		assert.InDelta(t, 2*real(ref[half]), spectrum.Imag[0], 1e-9, "size %d Nyquist", size)

		for k := 1; k < half; k++ {
			assert.InDelta(t, 2*real(ref[k]), spectrum.Real[k], 1e-9, "size %d bin %d real", size, k)
			assert.InDelta(t, 2*imag(ref[k]), spectrum.Imag[k], 1e-9, "size %d bin %d imag", size, k)
		}
	}
}

func TestInverseReturnsWindowedChunk(t *testing.T) {
	for _, size := range []int{2, 16, 512} {
		unit, err := NewWindowedFFT(size)
		require.NoError(t, err)

		chunk := deterministicNoise(42, 0.8, size)
		spectrum, err := unit.Forward(chunk)
		require.NoError(t, err)

		out, err := unit.Inverse(spectrum)
		require.NoError(t, err)
		require.Len(t, out, size)

		windowed, err := unit.Window().Apply(chunk)
		require.NoError(t, err)
		assert.InDeltaSlice(t, windowed, out, 1e-12, "size %d", size)
	}
}

func TestForwardRejectsWrongLength(t *testing.T) {
	unit, err := NewWindowedFFT(16)
	require.NoError(t, err)

	_, err = unit.Forward(make([]float64, 15))
	assert.Error(t, err)

	_, err = unit.Inverse(NewSpectrum(7))
	assert.Error(t, err)

	_, err = unit.Inverse(Spectrum{Real: make([]float64, 8), Imag: make([]float64, 4)})
	assert.Error(t, err)
}

func TestForwardOfSilenceIsZero(t *testing.T) {
	unit, err := NewWindowedFFT(64)
	require.NoError(t, err)

	spectrum, err := unit.Forward(make([]float64, 64))
	require.NoError(t, err)

	for k := range spectrum.Len() {
		assert.Zero(t, spectrum.Real[k])
		assert.Zero(t, spectrum.Imag[k])
	}
}
