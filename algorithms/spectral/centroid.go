package spectral

import "gonum.org/v1/gonum/floats"

// Centroid computes the spectral centroid (center of mass) of spectra from a
// single analysis, weighted by squared magnitude. Band k sits at
// k * (sampleRate/2) / bands Hz.
type Centroid struct {
	sampleRate float64
	freqBins   []float64
}

// NewCentroid creates a centroid calculator for audio at sampleRate
func NewCentroid(sampleRate float64) *Centroid {
	return &Centroid{sampleRate: sampleRate}
}

// Compute returns the centroid in Hz of one magnitude row, or 0 for silence
func (c *Centroid) Compute(mags []float64) float64 {
	if len(mags) == 0 {
		return 0
	}

	if len(c.freqBins) != len(mags) {
		c.initializeFreqBins(len(mags))
	}

	total := floats.Sum(mags)
	if total <= MagnitudeEpsilon {
		return 0
	}

	return floats.Dot(c.freqBins, mags) / total
}

// Mean returns the energy-weighted centroid over all spectra of seq, so
// quiet frames move it in proportion to their energy. It is 0 for silence.
func (c *Centroid) Mean(seq []Spectrum) float64 {
	var weighted, total float64
	for _, s := range seq {
		mags := Magnitudes(s)
		if len(mags) == 0 {
			continue
		}
		if len(c.freqBins) != len(mags) {
			c.initializeFreqBins(len(mags))
		}
		weighted += floats.Dot(c.freqBins, mags)
		total += floats.Sum(mags)
	}

	if total <= MagnitudeEpsilon {
		return 0
	}
	return weighted / total
}

func (c *Centroid) initializeFreqBins(numBins int) {
	c.freqBins = make([]float64, numBins)
	freqPerBand := c.sampleRate / 2 / float64(numBins)
	for i := range numBins {
		c.freqBins[i] = float64(i) * freqPerBand
	}
}
