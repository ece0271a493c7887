package analysis

import (
	"math"
	"math/rand/v2"
	"sync"
	"time"
)

// DefaultFrameInterval approximates an animation tick.
const DefaultFrameInterval = 33 * time.Millisecond

// Generator fabricates plausible frequency frames when the active
// backend cannot supply a real decoded signal. Low bins are biased
// toward strong, slow-varying amplitude, mids are moderate, and highs
// are weak and fast-varying, with bounded jitter plus a periodic
// amplitude boost driven by a slow oscillating phase.
//
// It runs on its own ticker and must be started exactly once per play
// transition and stopped on pause, switch, or teardown; Start and Stop
// are idempotent so callers don't have to track whether it is running.
type Generator struct {
	mu       sync.Mutex
	sink     *Sink
	interval time.Duration
	stop     chan struct{}

	phase  float64
	levels []float64 // smoothed per-bin levels
}

// NewGenerator creates a generator feeding the given sink.
func NewGenerator(sink *Sink) *Generator {
	return &Generator{
		sink:     sink,
		interval: DefaultFrameInterval,
		levels:   make([]float64, sink.BinCount()),
	}
}

// Start begins producing frames. Calling Start on a running generator
// is a no-op.
func (g *Generator) Start() {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.stop != nil {
		return
	}
	stop := make(chan struct{})
	g.stop = stop
	go g.run(stop)
}

// Stop cancels frame production. Safe to call repeatedly and on a
// generator that never started.
func (g *Generator) Stop() {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.stop == nil {
		return
	}
	close(g.stop)
	g.stop = nil
}

// Running reports whether the generator is producing frames.
func (g *Generator) Running() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.stop != nil
}

func (g *Generator) run(stop chan struct{}) {
	ticker := time.NewTicker(g.interval)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			g.frame()
		}
	}
}

// frame synthesizes one frame and writes it to the sink.
func (g *Generator) frame() {
	g.mu.Lock()
	defer g.mu.Unlock()

	n := len(g.levels)
	if n == 0 {
		return
	}

	// Slow phase drives the periodic "drop": a pulse of extra energy
	// concentrated in the low bins.
	g.phase += 0.02
	drop := math.Sin(g.phase)
	drop = math.Max(0, drop)
	drop = drop * drop * drop * 70

	frame := make([]byte, n)
	for i := 0; i < n; i++ {
		x := float64(i) / float64(n-1)

		// Layered spectrum shape: strong bass, moderate mids, weak highs.
		base := 190*math.Pow(1-x, 2.2) + 70*math.Exp(-math.Pow((x-0.4)/0.2, 2)) + 18*(1-x*0.5)

		// Jitter grows toward the high bins, which also smooth less so
		// they flicker faster than the bass.
		jitter := (rand.Float64()*2 - 1) * (12 + 40*x)
		target := base + jitter + drop*math.Pow(1-x, 3)

		smoothing := 0.85 - 0.55*x
		g.levels[i] = g.levels[i]*smoothing + target*(1-smoothing)

		v := g.levels[i]
		if v < 0 {
			v = 0
		}
		if v > 255 {
			v = 255
		}
		frame[i] = byte(v)
	}

	g.sink.Write(frame)
}
