package media

import (
	"math"

	"github.com/gopxl/beep/v2"

	"github.com/driftfm/drift/internal/analysis"
)

// analysisWindow is the number of mono samples the spectrum is
// computed over.
const analysisWindow = 512

// tap sits in the streaming chain, feeding the analysis sink with
// amplitude bins computed from the decoded signal and emitting
// throttled progress callbacks. All Stream calls arrive from the
// speaker goroutine; setPosition is only called under the speaker
// lock and close only after the tap is detached from the mixer, so no
// extra synchronization is needed.
type tap struct {
	src  beep.Streamer
	sink *analysis.Sink
	sr   beep.SampleRate

	window []float64
	wpos   int

	streamed   int     // samples since load or last seek
	posOffset  float64 // seconds, set by seeks
	duration   float64
	sinceFrame int
	sinceTime  int
	frameEvery int
	timeEvery  int

	updates chan timeUpdate
}

type timeUpdate struct {
	pos, dur float64
}

func newTap(src beep.Streamer, sink *analysis.Sink, sr beep.SampleRate, duration float64, onTime func(pos, dur float64)) *tap {
	t := &tap{
		src:        src,
		sink:       sink,
		sr:         sr,
		window:     make([]float64, analysisWindow),
		duration:   duration,
		frameEvery: int(sr) / 30, // animation rate
		timeEvery:  int(sr) / 4,  // 250ms of audio
	}
	if onTime != nil {
		// A single dispatcher keeps updates in order. The handler may
		// take locks that other callers hold while waiting on the
		// speaker, so it must run off the speaker goroutine.
		t.updates = make(chan timeUpdate, 8)
		go func() {
			for u := range t.updates {
				onTime(u.pos, u.dur)
			}
		}()
	}
	return t
}

// Stream passes audio through while folding samples into the analysis
// window.
func (t *tap) Stream(samples [][2]float64) (int, bool) {
	n, ok := t.src.Stream(samples)

	for i := 0; i < n; i++ {
		t.window[t.wpos] = (samples[i][0] + samples[i][1]) / 2
		t.wpos = (t.wpos + 1) % len(t.window)
	}

	t.streamed += n
	t.sinceFrame += n
	t.sinceTime += n

	if t.sinceFrame >= t.frameEvery {
		t.sinceFrame = 0
		t.sink.Write(t.analyze())
	}
	if t.sinceTime >= t.timeEvery && t.updates != nil {
		t.sinceTime = 0
		pos := t.posOffset + float64(t.streamed)/float64(t.sr)
		// Drop rather than block the speaker goroutine when the
		// dispatcher lags.
		select {
		case t.updates <- timeUpdate{pos, t.duration}:
		default:
		}
	}

	return n, ok
}

func (t *tap) Err() error {
	return t.src.Err()
}

// close stops the progress dispatcher. The tap must be detached from
// the streaming chain first.
func (t *tap) close() {
	if t.updates != nil {
		close(t.updates)
		t.updates = nil
	}
}

// setPosition resynchronizes progress reporting after a seek.
func (t *tap) setPosition(seconds float64) {
	t.posOffset = seconds
	t.streamed = 0
}

// analyze computes amplitude per bin over the window with a direct
// DFT at log-spaced frequencies, scaled into the byte range.
func (t *tap) analyze() []byte {
	bins := t.sink.BinCount()
	out := make([]byte, bins)
	n := len(t.window)

	const minFreq, maxFreq = 40.0, 8000.0
	for b := 0; b < bins; b++ {
		freq := minFreq * math.Pow(maxFreq/minFreq, float64(b)/float64(bins-1))
		w := 2 * math.Pi * freq / float64(t.sr)

		var re, im float64
		for i, s := range t.window {
			re += s * math.Cos(w*float64(i))
			im -= s * math.Sin(w*float64(i))
		}

		mag := math.Hypot(re, im) / float64(n)
		v := mag * 510 // full-scale sine peaks near 255
		if v > 255 {
			v = 255
		}
		out[b] = byte(v)
	}

	return out
}
