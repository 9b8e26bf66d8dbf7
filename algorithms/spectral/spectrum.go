package spectral

// Spectrum is a split-complex half spectrum: Real and Imag always have the
// same length, size/2 for a transform of the given size.
//
// Packed layout produced by WindowedFFT.Forward:
//   - Real[0] holds the DC term, Imag[0] holds the Nyquist term
//   - Real[k] + i*Imag[k] for k >= 1 holds frequency bin k
//
// All values carry the forward transform's factor of 2.
type Spectrum struct {
	Real []float64 `json:"real"`
	Imag []float64 `json:"imag"`
}

// NewSpectrum allocates a zeroed spectrum with n bins
func NewSpectrum(n int) Spectrum {
	return Spectrum{
		Real: make([]float64, n),
		Imag: make([]float64, n),
	}
}

// Len returns the number of bins
func (s Spectrum) Len() int {
	return len(s.Real)
}

// At returns bin k as a complex number
func (s Spectrum) At(k int) complex128 {
	return complex(s.Real[k], s.Imag[k])
}
