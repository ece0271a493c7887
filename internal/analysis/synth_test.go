package analysis

import (
	"testing"
	"time"
)

func TestSinkWriteSnapshot(t *testing.T) {
	s := NewSink(4)
	s.Write([]byte{10, 20, 30, 40})

	got := s.Snapshot()
	want := []byte{10, 20, 30, 40}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("bin %d = %d, want %d", i, got[i], want[i])
		}
	}

	s.Clear()
	for i, v := range s.Snapshot() {
		if v != 0 {
			t.Errorf("bin %d after Clear = %d, want 0", i, v)
		}
	}
}

func TestSinkDefaultBins(t *testing.T) {
	if got := NewSink(0).BinCount(); got != DefaultBins {
		t.Errorf("BinCount = %d, want %d", got, DefaultBins)
	}
}

func TestGeneratorFrameShape(t *testing.T) {
	sink := NewSink(DefaultBins)
	g := NewGenerator(sink)

	// Let the smoothed levels settle.
	for i := 0; i < 60; i++ {
		g.frame()
	}

	frame := sink.Snapshot()

	var low, high float64
	third := len(frame) / 3
	for i := 0; i < third; i++ {
		low += float64(frame[i])
		high += float64(frame[len(frame)-1-i])
	}

	if low <= high {
		t.Errorf("low-bin energy %.0f not greater than high-bin energy %.0f", low, high)
	}
}

func TestGeneratorValuesStayInByteRange(t *testing.T) {
	sink := NewSink(32)
	g := NewGenerator(sink)

	for i := 0; i < 500; i++ {
		g.frame()
	}
	// Byte frames can't leave range by construction; verify the frame
	// is actually populated rather than silent.
	frame := sink.Snapshot()
	var sum int
	for _, v := range frame {
		sum += int(v)
	}
	if sum == 0 {
		t.Error("frame is silent after 500 ticks")
	}
}

func TestGeneratorStartStopIdempotent(t *testing.T) {
	g := NewGenerator(NewSink(8))

	g.Stop() // never started
	g.Start()
	g.Start()
	if !g.Running() {
		t.Fatal("generator not running after Start")
	}
	g.Stop()
	g.Stop()
	if g.Running() {
		t.Fatal("generator still running after Stop")
	}

	// Restartable after a stop.
	g.Start()
	time.Sleep(2 * DefaultFrameInterval)
	g.Stop()
}
