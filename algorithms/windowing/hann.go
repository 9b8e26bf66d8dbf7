package windowing

import (
	"fmt"
	"math"
)

// Hann represents a Hann window function.
//
// The periodic form w[n] = 0.5*(1 - cos(2*pi*n/N)) sums to a constant when
// shifted by N/R for any integer R >= 2, which is what overlap-add relies on.
// The symmetric form uses N-1 in the denominator and is not COLA at those hops.
type Hann struct {
	size         int
	symmetric    bool
	coefficients []float64
}

// NewHann creates a new Hann window
func NewHann(size int, symmetric bool) *Hann {
	h := &Hann{
		size:      max(size, 0),
		symmetric: symmetric,
	}
	h.generate()
	return h
}

// NewPeriodicHann creates the FFT-framing Hann window used by the STFT engine
func NewPeriodicHann(size int) *Hann {
	return NewHann(size, false)
}

func (h *Hann) generate() {
	h.coefficients = make([]float64, h.size)

	denominator := float64(h.size)
	if h.symmetric {
		denominator = float64(h.size - 1)
	}
	if denominator <= 0 {
		// a single-point window has no taper
		for i := range h.coefficients {
			h.coefficients[i] = 1
		}
		return
	}

	for i := range h.size {
		h.coefficients[i] = 0.5 * (1.0 - math.Cos(2*math.Pi*float64(i)/denominator))
	}
}

// Apply multiplies signal by the window into a new slice
func (h *Hann) Apply(signal []float64) ([]float64, error) {
	if len(signal) != h.size {
		return nil, fmt.Errorf("signal length (%d) doesn't match window size (%d)", len(signal), h.size)
	}

	windowed := make([]float64, h.size)
	for i := range h.size {
		windowed[i] = signal[i] * h.coefficients[i]
	}

	return windowed, nil
}

// ApplyInPlace applies the window to a signal in-place
func (h *Hann) ApplyInPlace(signal []float64) error {
	if len(signal) != h.size {
		return fmt.Errorf("signal length (%d) doesn't match window size (%d)", len(signal), h.size)
	}

	for i := range h.size {
		signal[i] *= h.coefficients[i]
	}

	return nil
}

// OverlapGain returns the constant sum of the window shifted by size/ratio.
// For the periodic form this is ratio/2. It returns an error when the hop
// does not divide the window or the sum is not constant (symmetric form).
func (h *Hann) OverlapGain(ratio int) (float64, error) {
	if ratio < 1 || h.size%ratio != 0 {
		return 0, fmt.Errorf("overlap ratio %d does not divide window size %d", ratio, h.size)
	}

	hop := h.size / ratio
	sums := make([]float64, hop)
	for i, c := range h.coefficients {
		sums[i%hop] += c
	}

	gain := sums[0]
	for _, s := range sums[1:] {
		if math.Abs(s-gain) > 1e-9*math.Max(1, gain) {
			return 0, fmt.Errorf("hann window is not constant-overlap-add at ratio %d", ratio)
		}
	}

	return gain, nil
}

// GetCoefficients returns a copy of the window coefficients
func (h *Hann) GetCoefficients() []float64 {
	coeffs := make([]float64, len(h.coefficients))
	copy(coeffs, h.coefficients)
	return coeffs
}

// IsSymmetric reports whether the symmetric (N-1) form was generated
func (h *Hann) IsSymmetric() bool {
	return h.symmetric
}

// GetType returns the window type
func (h *Hann) GetType() string {
	return "hann"
}
