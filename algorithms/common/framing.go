package common

// Chunk splits signal into consecutive non-overlapping chunks of length size.
// The final chunk is zero-padded on the right. An empty signal yields no chunks.
func Chunk(signal []float32, size int) [][]float64 {
	return ChunkWithHop(signal, size, size)
}

// ChunkWithHop splits signal into chunks of length size whose start positions
// are multiples of hop. A hop smaller than size gives overlapping chunks.
// Every chunk is zero-padded to size, so the result has ceil(len/hop) chunks.
func ChunkWithHop(signal []float32, size, hop int) [][]float64 {
	if len(signal) == 0 || size <= 0 || hop <= 0 {
		return nil
	}

	numChunks := (len(signal) + hop - 1) / hop
	chunks := make([][]float64, 0, numChunks)

	for start := 0; start < len(signal); start += hop {
		end := min(start+size, len(signal))
		chunks = append(chunks, Pad(signal[start:end], size))
	}

	return chunks
}

// Pad copies samples into a new slice of length size, filling the remainder
// with zeros. Samples beyond size are dropped.
func Pad(samples []float32, size int) []float64 {
	out := make([]float64, size)
	for i := 0; i < len(samples) && i < size; i++ {
		out[i] = float64(samples[i])
	}
	return out
}
