package common

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOverlapAccumulatorLength(t *testing.T) {
	acc, err := NewOverlapAccumulator(512, 64, 25)
	require.NoError(t, err)
	assert.Len(t, acc.Samples(), 25*64+512)
}

func TestOverlapAccumulatorSumsOverlaps(t *testing.T) {
	acc, err := NewOverlapAccumulator(4, 2, 3)
	require.NoError(t, err)

	ones := []float64{1, 1, 1, 1}
	for i := 0; i < 3; i++ {
		require.NoError(t, acc.AddFrame(i, ones))
	}

	assert.Equal(t, []float64{1, 1, 2, 2, 2, 2, 1, 1, 0, 0}, acc.Samples())

	acc.Scale(2)
	assert.Equal(t, []float64{0.5, 0.5, 1, 1, 1, 1, 0.5, 0.5, 0, 0}, acc.Samples())

	acc.Reset()
	for _, v := range acc.Samples() {
		assert.Zero(t, v)
	}
}

func TestOverlapAccumulatorValidation(t *testing.T) {
	_, err := NewOverlapAccumulator(0, 1, 1)
	assert.Error(t, err)

	_, err = NewOverlapAccumulator(8, 16, 1)
	assert.Error(t, err)

	acc, err := NewOverlapAccumulator(4, 2, 2)
	require.NoError(t, err)

	assert.Error(t, acc.AddFrame(0, []float64{1, 2}))
	assert.Error(t, acc.AddFrame(2, []float64{1, 2, 3, 4}))
	assert.Error(t, acc.AddFrame(-1, []float64{1, 2, 3, 4}))
}

func TestOverlapAccumulatorNoFrames(t *testing.T) {
	acc, err := NewOverlapAccumulator(8, 2, 0)
	require.NoError(t, err)
	assert.Len(t, acc.Samples(), 8)
}
