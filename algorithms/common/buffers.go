package common

import (
	"fmt"

	"gonum.org/v1/gonum/floats"
)

// OverlapAccumulator sums fixed-size frames into one output buffer at
// multiples of the hop size. Overlapping regions are added, never overwritten.
type OverlapAccumulator struct {
	buffer    []float64
	frameSize int
	hopSize   int
	numFrames int
}

// NewOverlapAccumulator creates an accumulator for numFrames frames.
// The output holds numFrames*hopSize + frameSize samples.
func NewOverlapAccumulator(frameSize, hopSize, numFrames int) (*OverlapAccumulator, error) {
	if frameSize <= 0 {
		return nil, fmt.Errorf("frame size must be positive: %d", frameSize)
	}
	if hopSize <= 0 || hopSize > frameSize {
		return nil, fmt.Errorf("hop size must be in [1, %d]: %d", frameSize, hopSize)
	}
	numFrames = max(numFrames, 0)

	return &OverlapAccumulator{
		buffer:    make([]float64, numFrames*hopSize+frameSize),
		frameSize: frameSize,
		hopSize:   hopSize,
		numFrames: numFrames,
	}, nil
}

// AddFrame adds frame into the output starting at index*hopSize
func (oa *OverlapAccumulator) AddFrame(index int, frame []float64) error {
	if len(frame) != oa.frameSize {
		return fmt.Errorf("frame size (%d) doesn't match accumulator frame size (%d)", len(frame), oa.frameSize)
	}
	if index < 0 || index >= oa.numFrames {
		return fmt.Errorf("frame index %d out of range [0, %d)", index, oa.numFrames)
	}

	start := index * oa.hopSize
	floats.Add(oa.buffer[start:start+oa.frameSize], frame)

	return nil
}

// Scale divides every accumulated sample by divisor
func (oa *OverlapAccumulator) Scale(divisor float64) {
	if divisor == 0 {
		return
	}
	floats.Scale(1/divisor, oa.buffer)
}

// Samples returns the accumulated output. The slice is owned by the accumulator.
func (oa *OverlapAccumulator) Samples() []float64 {
	return oa.buffer
}

// Reset clears the accumulated output
func (oa *OverlapAccumulator) Reset() {
	for i := range oa.buffer {
		oa.buffer[i] = 0.0
	}
}
