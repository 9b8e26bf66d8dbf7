package spectral

import (
	"fmt"
	"runtime"
	"sync"

	"github.com/RyanBlaney/stft-explainer/algorithms/common"
	"github.com/RyanBlaney/stft-explainer/logging"
)

const (
	DefaultChunkSize    = 512
	DefaultOverlapRatio = 8
)

// Engine runs the short-time Fourier transform and its inverse for one
// (size, overlapRatio) pair. Window coefficients and twiddles are computed
// once at construction; every method is a pure function of its input.
type Engine struct {
	fft          *WindowedFFT
	size         int
	overlapRatio int
	hop          int
	olaGain      float64
	workers      int
	logger       logging.Logger
}

// EngineOption configures an Engine
type EngineOption func(*Engine)

// WithWorkers caps the number of goroutines used for per-chunk transforms.
// Zero or a negative value picks a count from the workload and CPU count.
func WithWorkers(n int) EngineOption {
	return func(e *Engine) {
		e.workers = n
	}
}

// WithLogger sets the engine logger
func WithLogger(logger logging.Logger) EngineOption {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// NewEngine creates an STFT engine. size must be a power of two; overlapRatio
// must be at least 2 and divide size so that hop = size/overlapRatio is exact.
// The window must sum to a constant at that hop.
func NewEngine(size, overlapRatio int, opts ...EngineOption) (*Engine, error) {
	unit, err := NewWindowedFFT(size)
	if err != nil {
		return nil, err
	}

	if overlapRatio < 2 {
		return nil, fmt.Errorf("%w: overlap ratio %d must be >= 2", ErrInvalidParameter, overlapRatio)
	}

	gain, err := unit.Window().OverlapGain(overlapRatio)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidParameter, err)
	}

	e := &Engine{
		fft:          unit,
		size:         size,
		overlapRatio: overlapRatio,
		hop:          size / overlapRatio,
		olaGain:      gain,
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.logger == nil {
		e.logger = logging.WithFields(logging.Fields{
			"component": "stft_engine",
		})
	}

	return e, nil
}

// Size returns the transform (chunk) size
func (e *Engine) Size() int { return e.size }

// OverlapRatio returns how many chunks cover each sample in OLA mode
func (e *Engine) OverlapRatio() int { return e.overlapRatio }

// Hop returns the distance between OLA chunk starts
func (e *Engine) Hop() int { return e.hop }

// OverlapGain returns the constant sum of the analysis windows at hop
// spacing, overlapRatio/2 for periodic Hann. SynthesizeOLA divides by it.
func (e *Engine) OverlapGain() float64 { return e.olaGain }

// NumBands returns the number of frequency bands per spectrum, size/2
func (e *Engine) NumBands() int { return e.fft.Bins() }

// Transform returns the underlying windowed FFT unit
func (e *Engine) Transform() *WindowedFFT { return e.fft }

// Analyze computes spectra of contiguous, non-overlapping chunks (display mode)
func (e *Engine) Analyze(signal []float32) ([]Spectrum, error) {
	return e.forwardAll(common.Chunk(signal, e.size))
}

// AnalyzeOLA computes spectra of chunks starting every hop samples
// (reconstruction mode)
func (e *Engine) AnalyzeOLA(signal []float32) ([]Spectrum, error) {
	return e.forwardAll(common.ChunkWithHop(signal, e.size, e.hop))
}

// Synthesize inverts each spectrum and concatenates the chunks.
//
// The analysis window is not compensated, so the output is amplitude
// modulated at the chunk rate. SynthesizeOLA is the faithful inverse.
func (e *Engine) Synthesize(seq []Spectrum) ([]float32, error) {
	chunks, err := e.inverseAll(seq)
	if err != nil {
		return nil, err
	}

	out := make([]float32, 0, len(chunks)*e.size)
	for _, chunk := range chunks {
		for _, v := range chunk {
			out = append(out, float32(v))
		}
	}

	return out, nil
}

// SynthesizeOLA reconstructs a signal from spectra produced by AnalyzeOLA.
//
// Chunk i is added into the output at i*hop, giving len(seq)*hop + size
// samples. Dividing by OverlapGain restores the original level wherever
// overlapRatio chunks overlap.
func (e *Engine) SynthesizeOLA(seq []Spectrum) ([]float32, error) {
	chunks, err := e.inverseAll(seq)
	if err != nil {
		return nil, err
	}

	acc, err := common.NewOverlapAccumulator(e.size, e.hop, len(chunks))
	if err != nil {
		return nil, err
	}

	for i, chunk := range chunks {
		if err := acc.AddFrame(i, chunk); err != nil {
			return nil, fmt.Errorf("overlap-add chunk %d: %w", i, err)
		}
	}

	acc.Scale(e.olaGain)

	e.logger.Debug("Overlap-add reconstruction complete", logging.Fields{
		"chunks":        len(chunks),
		"output_length": len(acc.Samples()),
		"hop":           e.hop,
	})

	return common.ToFloat32(acc.Samples()), nil
}

func (e *Engine) forwardAll(chunks [][]float64) ([]Spectrum, error) {
	spectra := make([]Spectrum, len(chunks))

	err := e.parallel(len(chunks), func(i int) error {
		s, err := e.fft.Forward(chunks[i])
		if err != nil {
			return fmt.Errorf("chunk %d: %w", i, err)
		}
		spectra[i] = s
		return nil
	})
	if err != nil {
		return nil, err
	}

	e.logger.Debug("Forward transform complete", logging.Fields{
		"chunks":     len(chunks),
		"chunk_size": e.size,
	})

	return spectra, nil
}

func (e *Engine) inverseAll(seq []Spectrum) ([][]float64, error) {
	chunks := make([][]float64, len(seq))

	err := e.parallel(len(seq), func(i int) error {
		c, err := e.fft.Inverse(seq[i])
		if err != nil {
			return fmt.Errorf("spectrum %d: %w", i, err)
		}
		chunks[i] = c
		return nil
	})
	if err != nil {
		return nil, err
	}

	return chunks, nil
}

// parallel runs fn for every index in [0, n) on a bounded worker pool.
// Results are written by index, so ordering is preserved. The first error wins.
func (e *Engine) parallel(n int, fn func(i int) error) error {
	if n == 0 {
		return nil
	}

	numWorkers := e.getOptimalWorkerCount(n)
	if numWorkers == 1 {
		for i := range n {
			if err := fn(i); err != nil {
				return err
			}
		}
		return nil
	}

	jobs := make(chan int, n)
	for i := range n {
		jobs <- i
	}
	close(jobs)

	var (
		wg       sync.WaitGroup
		once     sync.Once
		firstErr error
	)

	for range numWorkers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				if err := fn(i); err != nil {
					once.Do(func() { firstErr = err })
				}
			}
		}()
	}

	wg.Wait()
	return firstErr
}

// getOptimalWorkerCount determines the number of workers for n chunks
func (e *Engine) getOptimalWorkerCount(n int) int {
	if e.workers > 0 {
		return min(e.workers, n)
	}

	numCPU := runtime.NumCPU()

	// small workloads are not worth the goroutine overhead
	if n < 100 {
		return max(1, min(numCPU/2, n))
	}

	if n < 1000 {
		return min(numCPU, 8, n)
	}

	return min(numCPU, n)
}
