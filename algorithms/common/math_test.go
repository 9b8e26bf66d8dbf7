package common

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsPowerOfTwo(t *testing.T) {
	for _, n := range []int{1, 2, 4, 64, 512, 1024, 1 << 20} {
		assert.True(t, IsPowerOfTwo(n), "%d", n)
	}
	for _, n := range []int{-512, 0, 3, 6, 500, 513, 1000} {
		assert.False(t, IsPowerOfTwo(n), "%d", n)
	}
}

func TestCompareSignals(t *testing.T) {
	ref := []float32{0, 1, 2, 3, 4}
	cand := []float32{0, 1, 2.5, 3, 3}

	stats := CompareSignals(ref, cand, 1, 5)
	assert.Equal(t, 4, stats.Samples)
	assert.InDelta(t, 0.375, stats.MeanAbsolute, 1e-9)
	assert.InDelta(t, 1.0, stats.MaxAbsolute, 1e-9)

	// end beyond both signals is clipped
	stats = CompareSignals(ref, cand[:3], 0, 100)
	assert.Equal(t, 3, stats.Samples)

	assert.Equal(t, ErrorStats{}, CompareSignals(ref, cand, 4, 2))
}

func TestClamp(t *testing.T) {
	assert.Equal(t, 0, Clamp(-3, 0, 10))
	assert.Equal(t, 10, Clamp(12, 0, 10))
	assert.Equal(t, 5, Clamp(5, 0, 10))
}
