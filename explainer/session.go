package explainer

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"

	"github.com/RyanBlaney/stft-explainer/algorithms/common"
	"github.com/RyanBlaney/stft-explainer/algorithms/editing"
	"github.com/RyanBlaney/stft-explainer/algorithms/spectral"
	"github.com/RyanBlaney/stft-explainer/logging"
	"github.com/RyanBlaney/stft-explainer/transcode"
)

// ErrNoSignal is returned when an operation needs a loaded signal
var ErrNoSignal = errors.New("no signal loaded")

// Loader reads an audio file as mono PCM
type Loader interface {
	Load(ctx context.Context, path string) (*transcode.AudioData, error)
}

// Options configures a Session
type Options struct {
	ChunkSize    int
	OverlapRatio int
	Workers      int
	SamplesDir   string
	Display      spectral.DisplayOptions
	Logger       logging.Logger
}

// DefaultOptions returns the standard analysis settings
func DefaultOptions() Options {
	return Options{
		ChunkSize:    spectral.DefaultChunkSize,
		OverlapRatio: spectral.DefaultOverlapRatio,
		SamplesDir:   "samples",
		Display:      spectral.DefaultDisplayOptions(),
	}
}

type engineKey struct {
	size         int
	overlapRatio int
}

// ReconstructionReport compares the original signal with both
// reconstructions over the fully overlapped region
type ReconstructionReport struct {
	OLA   common.ErrorStats `json:"ola" yaml:"ola"`
	NoOLA common.ErrorStats `json:"no_ola" yaml:"no_ola"`
}

// Session holds a loaded signal and everything derived from it. A successful
// Recompute or ApplyGuidelines replaces its outputs together; a failed one
// leaves the previous outputs in place, except that a rejected edit clears
// the modified outputs.
type Session struct {
	mu      sync.RWMutex
	loader  Loader
	opts    Options
	logger  logging.Logger
	engines map[engineKey]*spectral.Engine

	source     string
	signal     []float32
	sampleRate float64

	original           spectral.DisplayData
	originalCentroid   float64
	reconstructedOLA   []float32
	reconstructedNoOLA []float32

	guidelines       [2]float64
	modified         []float32
	modifiedDisplay  *spectral.DisplayData
	modifiedCentroid float64
	lastError        string
}

// NewSession validates opts and returns an empty session
func NewSession(loader Loader, opts Options) (*Session, error) {
	if opts.Logger == nil {
		opts.Logger = logging.WithFields(logging.Fields{"component": "explainer_session"})
	}

	s := &Session{
		loader:  loader,
		opts:    opts,
		logger:  opts.Logger,
		engines: make(map[engineKey]*spectral.Engine),
	}

	if _, err := s.engine(); err != nil {
		return nil, err
	}

	return s, nil
}

// engine returns the cached engine for the current chunk size and overlap
// ratio. Callers hold mu.
func (s *Session) engine() (*spectral.Engine, error) {
	key := engineKey{size: s.opts.ChunkSize, overlapRatio: s.opts.OverlapRatio}
	if e, ok := s.engines[key]; ok {
		return e, nil
	}

	e, err := spectral.NewEngine(key.size, key.overlapRatio,
		spectral.WithWorkers(s.opts.Workers),
		spectral.WithLogger(s.logger),
	)
	if err != nil {
		return nil, err
	}

	s.engines[key] = e
	return e, nil
}

// SetAnalysis changes chunk size and overlap ratio and recomputes. On error
// the previous settings stay in effect.
func (s *Session) SetAnalysis(size, overlapRatio int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	previous := s.opts
	s.opts.ChunkSize = size
	s.opts.OverlapRatio = overlapRatio
	if _, err := s.engine(); err != nil {
		s.opts = previous
		return err
	}

	if s.signal == nil {
		return nil
	}
	if err := s.recomputeLocked(); err != nil {
		s.opts = previous
		return err
	}
	return nil
}

// LoadSample loads a bundled sample from the samples directory
func (s *Session) LoadSample(ctx context.Context, f SampleFile) error {
	return s.LoadFile(ctx, f.Path(s.opts.SamplesDir))
}

// LoadFile loads an audio file through the session's Loader and recomputes
func (s *Session) LoadFile(ctx context.Context, path string) error {
	if s.loader == nil {
		return fmt.Errorf("session has no loader")
	}

	data, err := s.loader.Load(ctx, path)
	if err != nil {
		return fmt.Errorf("failed to load %s: %w", path, err)
	}

	s.logger.WithContext(ctx).Info("Loaded audio", logging.Fields{
		"source":      path,
		"samples":     len(data.PCM),
		"sample_rate": data.SampleRate,
	})

	return s.setSignal(path, data.PCM, float64(data.SampleRate))
}

// SetSignal replaces the signal directly and recomputes
func (s *Session) SetSignal(signal []float32, sampleRate float64) error {
	return s.setSignal("", signal, sampleRate)
}

func (s *Session) setSignal(source string, signal []float32, sampleRate float64) error {
	if sampleRate <= 0 {
		return fmt.Errorf("sample rate must be positive: %v", sampleRate)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	prevSource, prevSignal, prevRate := s.source, s.signal, s.sampleRate
	s.source = source
	s.signal = slices.Clone(signal)
	if s.signal == nil {
		s.signal = []float32{}
	}
	s.sampleRate = sampleRate

	if err := s.recomputeLocked(); err != nil {
		s.source, s.signal, s.sampleRate = prevSource, prevSignal, prevRate
		return err
	}
	return nil
}

// Recompute rebuilds the original display and both reconstructions, and
// discards any edit
func (s *Session) Recompute() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.recomputeLocked()
}

func (s *Session) recomputeLocked() error {
	if s.signal == nil {
		return ErrNoSignal
	}

	e, err := s.engine()
	if err != nil {
		return err
	}

	playSpectra, err := e.AnalyzeOLA(s.signal)
	if err != nil {
		return fmt.Errorf("overlap analysis failed: %w", err)
	}
	displaySpectra, err := e.Analyze(s.signal)
	if err != nil {
		return fmt.Errorf("analysis failed: %w", err)
	}

	reconstructedOLA, err := e.SynthesizeOLA(playSpectra)
	if err != nil {
		return fmt.Errorf("overlap-add synthesis failed: %w", err)
	}
	reconstructedNoOLA, err := e.Synthesize(displaySpectra)
	if err != nil {
		return fmt.Errorf("synthesis failed: %w", err)
	}

	s.original = spectral.PrepareForDisplay(displaySpectra, s.sampleRate, s.opts.Display)
	s.originalCentroid = spectral.NewCentroid(s.sampleRate).Mean(displaySpectra)
	s.reconstructedOLA = reconstructedOLA
	s.reconstructedNoOLA = reconstructedNoOLA
	s.clearModifiedLocked()

	s.logger.Debug("Recomputed session", logging.Fields{
		"samples":       len(s.signal),
		"frames":        s.original.Frames,
		"trimmed_bands": s.original.TrimmedBands,
		"centroid_hz":   s.originalCentroid,
	})

	return nil
}

func (s *Session) clearModifiedLocked() {
	s.modified = nil
	s.modifiedDisplay = nil
	s.modifiedCentroid = 0
}

// ApplyGuidelines silences every band between lowerHz and upperHz. A
// rejected range clears the modified outputs, records the message in
// LastError and returns the *editing.RangeError.
func (s *Session) ApplyGuidelines(lowerHz, upperHz float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.signal == nil {
		return ErrNoSignal
	}

	e, err := s.engine()
	if err != nil {
		return err
	}

	s.guidelines = [2]float64{lowerHz, upperHz}
	numBands := e.NumBands()
	lower := editing.BandForFrequency(lowerHz, s.sampleRate, numBands)
	upper := editing.BandForFrequency(upperHz, s.sampleRate, numBands)

	if err := editing.ValidateBandRange(lower, upper, numBands); err != nil {
		s.lastError = err.Error()
		s.clearModifiedLocked()

		var rangeErr *editing.RangeError
		if errors.As(err, &rangeErr) {
			s.logger.Warn("Rejected band edit", logging.Fields{"detail": rangeErr.Detail()})
		}
		return err
	}
	s.lastError = ""

	spectra, err := e.AnalyzeOLA(s.signal)
	if err != nil {
		return fmt.Errorf("overlap analysis failed: %w", err)
	}
	editing.ZeroBand(spectra, lower, upper)

	modified, err := e.SynthesizeOLA(spectra)
	if err != nil {
		return fmt.Errorf("overlap-add synthesis failed: %w", err)
	}

	modifiedSpectra, err := e.Analyze(modified)
	if err != nil {
		return fmt.Errorf("analysis of modified signal failed: %w", err)
	}
	display := spectral.PrepareForDisplay(modifiedSpectra, s.sampleRate, s.opts.Display)

	s.modified = modified
	s.modifiedDisplay = &display
	s.modifiedCentroid = spectral.NewCentroid(s.sampleRate).Mean(modifiedSpectra)

	s.logger.Debug("Applied band edit", logging.Fields{
		"lower_hz":   lowerHz,
		"upper_hz":   upperHz,
		"lower_band": lower,
		"upper_band": upper,
	})

	return nil
}

// Source returns the path of the loaded file, or "" for a signal set directly
func (s *Session) Source() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.source
}

// Signal returns a copy of the loaded signal
func (s *Session) Signal() []float32 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.signal)
}

// SampleRate returns the sample rate of the loaded signal in Hz
func (s *Session) SampleRate() float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.sampleRate
}

// NumBands returns the number of frequency bands of the current analysis
func (s *Session) NumBands() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.opts.ChunkSize / 2
}

// ChunkSize returns the current analysis chunk size
func (s *Session) ChunkSize() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.opts.ChunkSize
}

// OverlapRatio returns the current overlap ratio
func (s *Session) OverlapRatio() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.opts.OverlapRatio
}

// OriginalDisplay returns the display data of the non-overlapped analysis
func (s *Session) OriginalDisplay() spectral.DisplayData {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.original
}

// ReconstructedOLA returns the overlap-add reconstruction
func (s *Session) ReconstructedOLA() []float32 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.reconstructedOLA)
}

// ReconstructedNoOLA returns the plain concatenated reconstruction
func (s *Session) ReconstructedNoOLA() []float32 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.reconstructedNoOLA)
}

// Modified returns the edited signal, or nil without a valid edit
func (s *Session) Modified() []float32 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.modified)
}

// ModifiedDisplay returns the display data of the edited signal
func (s *Session) ModifiedDisplay() (spectral.DisplayData, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.modifiedDisplay == nil {
		return spectral.DisplayData{}, false
	}
	return *s.modifiedDisplay, true
}

// Centroids returns the mean spectral centroid in Hz of the original signal
// and of the edited one. The second value is 0 without an edit.
func (s *Session) Centroids() (original, modified float64) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.originalCentroid, s.modifiedCentroid
}

// ModifiedAvailable reports whether an edited signal exists
func (s *Session) ModifiedAvailable() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.modified) != 0
}

// Guidelines returns the last requested [lowerHz, upperHz] pair
func (s *Session) Guidelines() (float64, float64) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.guidelines[0], s.guidelines[1]
}

// LastError returns the message of the last rejected edit, or ""
func (s *Session) LastError() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastError
}

// Report compares both reconstructions with the original signal, skipping
// the first chunk, which fewer than overlapRatio chunks cover
func (s *Session) Report() ReconstructionReport {
	s.mu.RLock()
	defer s.mu.RUnlock()

	start := s.opts.ChunkSize
	return ReconstructionReport{
		OLA:   common.CompareSignals(s.signal, s.reconstructedOLA, start, len(s.signal)),
		NoOLA: common.CompareSignals(s.signal, s.reconstructedNoOLA, start, len(s.signal)),
	}
}
