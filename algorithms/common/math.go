package common

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// IsPowerOfTwo reports whether n equals 2 raised to round(log2(n)).
// Non-positive values are never powers of two.
func IsPowerOfTwo(n int) bool {
	if n <= 0 {
		return false
	}
	exp := math.Round(math.Log2(float64(n)))
	return n == 1<<int(exp)
}

// Clamp restricts value to [lo, hi]
func Clamp(value, lo, hi int) int {
	if value < lo {
		return lo
	}
	if value > hi {
		return hi
	}
	return value
}

// ToFloat32 narrows a float64 signal
func ToFloat32(signal []float64) []float32 {
	out := make([]float32, len(signal))
	for i, v := range signal {
		out[i] = float32(v)
	}
	return out
}

// ErrorStats summarizes the sample-wise difference between two signals
type ErrorStats struct {
	MeanAbsolute float64 `json:"mean_absolute" yaml:"mean_absolute"`
	MaxAbsolute  float64 `json:"max_absolute" yaml:"max_absolute"`
	RMS          float64 `json:"rms" yaml:"rms"`
	Samples      int     `json:"samples" yaml:"samples"`
}

// CompareSignals computes error statistics between reference and candidate
// over reference[start:end]. end is clipped to the shorter of the two signals.
func CompareSignals(reference, candidate []float32, start, end int) ErrorStats {
	end = min(end, len(reference), len(candidate))
	start = Clamp(start, 0, end)
	if end-start == 0 {
		return ErrorStats{}
	}

	diff := make([]float64, end-start)
	for i := range diff {
		diff[i] = math.Abs(float64(reference[start+i]) - float64(candidate[start+i]))
	}

	squares := make([]float64, len(diff))
	floats.MulTo(squares, diff, diff)

	return ErrorStats{
		MeanAbsolute: stat.Mean(diff, nil),
		MaxAbsolute:  floats.Max(diff),
		RMS:          math.Sqrt(stat.Mean(squares, nil)),
		Samples:      len(diff),
	}
}
