package spectral

import (
	"fmt"
	"math"
	"math/cmplx"

	"github.com/mjibson/go-dsp/fft"

	"github.com/RyanBlaney/stft-explainer/algorithms/common"
	"github.com/RyanBlaney/stft-explainer/algorithms/windowing"
)

// WindowedFFT transforms fixed-size real chunks to packed half spectra and back.
//
// A real chunk of N samples is windowed, then reinterpreted as N/2 complex
// values (even samples real, odd samples imaginary) and run through an N/2
// point radix-2 FFT. A split step turns that into bins 0..N/2 of the real
// chunk's DFT. Forward output is scaled by 2; Inverse scales by 1/(2N), so
// Inverse(Forward(x)) returns the windowed chunk.
//
// A WindowedFFT is immutable after construction and safe for concurrent use.
type WindowedFFT struct {
	size     int
	half     int
	window   *windowing.Hann
	twiddles []complex128 // exp(-2*pi*i*k/size), k < size/2
}

// NewWindowedFFT creates a transform unit for chunks of length size.
// size must be a power of two and at least 2.
func NewWindowedFFT(size int) (*WindowedFFT, error) {
	if size < 2 || !common.IsPowerOfTwo(size) {
		return nil, fmt.Errorf("%w: transform size %d must be a power of two >= 2", ErrInvalidParameter, size)
	}

	half := size / 2
	twiddles := make([]complex128, half)
	for k := range half {
		angle := -2 * math.Pi * float64(k) / float64(size)
		twiddles[k] = complex(math.Cos(angle), math.Sin(angle))
	}

	return &WindowedFFT{
		size:     size,
		half:     half,
		window:   windowing.NewPeriodicHann(size),
		twiddles: twiddles,
	}, nil
}

// Size returns the chunk length
func (w *WindowedFFT) Size() int {
	return w.size
}

// Bins returns the spectrum length, size/2
func (w *WindowedFFT) Bins() int {
	return w.half
}

// Window returns the Hann window applied before every forward transform
func (w *WindowedFFT) Window() *windowing.Hann {
	return w.window
}

// Forward windows chunk and returns its packed half spectrum
func (w *WindowedFFT) Forward(chunk []float64) (Spectrum, error) {
	windowed, err := w.window.Apply(chunk)
	if err != nil {
		return Spectrum{}, fmt.Errorf("forward transform: %w", err)
	}

	// even-indexed samples -> real part, odd-indexed -> imaginary part
	packed := make([]complex128, w.half)
	for m := range w.half {
		packed[m] = complex(windowed[2*m], windowed[2*m+1])
	}

	z := fft.FFT(packed)

	spectrum := NewSpectrum(w.half)
	for k := range w.half {
		zk := z[k]
		zc := cmplx.Conj(z[(w.half-k)%w.half])

		even := (zk + zc) / 2
		odd := (zk - zc) / complex(0, 2)

		if k == 0 {
			// both terms are real; DC and Nyquist share bin 0
			spectrum.Real[0] = 2 * real(even+odd)
			spectrum.Imag[0] = 2 * real(even-odd)
			continue
		}

		x := 2 * (even + w.twiddles[k]*odd)
		spectrum.Real[k] = real(x)
		spectrum.Imag[k] = imag(x)
	}

	return spectrum, nil
}

// Inverse converts a packed half spectrum back into a real chunk of length size
func (w *WindowedFFT) Inverse(spectrum Spectrum) ([]float64, error) {
	if spectrum.Len() != w.half || len(spectrum.Imag) != w.half {
		return nil, fmt.Errorf("inverse transform: %w: spectrum has %d/%d bins, want %d",
			errLengthMismatch, len(spectrum.Real), len(spectrum.Imag), w.half)
	}

	z := make([]complex128, w.half)
	for k := range w.half {
		if k == 0 {
			dc, nyquist := spectrum.Real[0], spectrum.Imag[0]
			z[0] = complex(dc+nyquist, dc-nyquist)
			continue
		}

		y := spectrum.At(k)
		yc := cmplx.Conj(spectrum.At(w.half - k))
		z[k] = (y + yc) + complex(0, 1)*cmplx.Conj(w.twiddles[k])*(y-yc)
	}

	// go-dsp normalizes the inverse by 1/half; undo that so the round trip
	// carries the 2*size gain removed below.
	values := fft.IFFT(z)
	scale := float64(w.half) / float64(2*w.size)

	out := make([]float64, w.size)
	for m, v := range values {
		out[2*m] = real(v) * scale
		out[2*m+1] = imag(v) * scale
	}

	return out, nil
}
