// Package analysis holds the shared frequency-analysis sink that
// visualization code reads from, plus its two producers: the media
// backend's sample tap (real data) and a synthetic generator used when
// the active backend cannot expose its decoded signal.
package analysis

import "sync"

// DefaultBins is the number of frequency bins the sink carries.
const DefaultBins = 64

// Sink is the node visualizers read amplitude-per-bin data from.
// Amplitudes are byte-range (0-255). Exactly one producer writes to it
// at a time; the engine selects the producer by backend kind.
type Sink struct {
	mu   sync.RWMutex
	bins []byte
}

// NewSink creates a sink with the given number of bins.
// A non-positive count falls back to DefaultBins.
func NewSink(bins int) *Sink {
	if bins <= 0 {
		bins = DefaultBins
	}
	return &Sink{bins: make([]byte, bins)}
}

// BinCount returns the number of frequency bins.
func (s *Sink) BinCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.bins)
}

// Write replaces the sink's frame with the given amplitudes.
// Frames shorter than the bin count leave the tail untouched.
func (s *Sink) Write(frame []byte) {
	s.mu.Lock()
	copy(s.bins, frame)
	s.mu.Unlock()
}

// Snapshot returns a copy of the current frame.
func (s *Sink) Snapshot() []byte {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]byte, len(s.bins))
	copy(out, s.bins)
	return out
}

// Clear zeroes the frame, silencing the visualizer.
func (s *Sink) Clear() {
	s.mu.Lock()
	for i := range s.bins {
		s.bins[i] = 0
	}
	s.mu.Unlock()
}
