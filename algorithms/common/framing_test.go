package common

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ramp(n int) []float32 {
	out := make([]float32, n)
	for i := range out {
		out[i] = float32(i + 1)
	}
	return out
}

func TestChunkPadsFinalChunk(t *testing.T) {
	signal := ramp(1000)

	chunks := Chunk(signal, 512)
	require.Len(t, chunks, 2)

	for i, chunk := range chunks {
		assert.Len(t, chunk, 512, "chunk %d", i)
	}

	// second chunk: 488 real samples followed by 24 zeros
	second := chunks[1]
	for i := 0; i < 488; i++ {
		require.Equal(t, float64(513+i), second[i], "sample %d", i)
	}
	for i := 488; i < 512; i++ {
		require.Zero(t, second[i], "padding %d", i)
	}
}

func TestChunkExactMultiple(t *testing.T) {
	chunks := Chunk(ramp(1024), 512)
	require.Len(t, chunks, 2)
	assert.Equal(t, 1024.0, chunks[1][511])
}

func TestChunkEmptySignal(t *testing.T) {
	assert.Empty(t, Chunk(nil, 512))
	assert.Empty(t, ChunkWithHop([]float32{}, 512, 64))
}

func TestChunkWithHopCountAndPadding(t *testing.T) {
	signal := ramp(1600)

	chunks := ChunkWithHop(signal, 512, 64)
	require.Len(t, chunks, 25)

	for i, chunk := range chunks {
		require.Len(t, chunk, 512, "chunk %d", i)
		assert.Equal(t, float64(i*64+1), chunk[0], "chunk %d starts at hop multiple", i)
	}

	// last chunk starts at 1536 and carries 64 samples before padding
	last := chunks[24]
	assert.Equal(t, 1600.0, last[63])
	assert.Zero(t, last[64])
	assert.Zero(t, last[511])
}

func TestChunkWithHopOverlap(t *testing.T) {
	chunks := ChunkWithHop(ramp(16), 8, 4)
	require.Len(t, chunks, 4)

	// chunk 1 overlaps the second half of chunk 0
	assert.Equal(t, chunks[0][4:], chunks[1][:4])
}

func TestPadTruncatesLongInput(t *testing.T) {
	out := Pad(ramp(10), 4)
	assert.Equal(t, []float64{1, 2, 3, 4}, out)
}
