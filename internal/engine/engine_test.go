package engine

import (
	"sync"
	"testing"
	"time"

	"github.com/driftfm/drift/internal/analysis"
	"github.com/driftfm/drift/internal/backend"
	"github.com/driftfm/drift/internal/core"
	"github.com/driftfm/drift/internal/queue"
)

// fakeBackend implements backend.Backend for engine tests. With async
// set it mimics the embedded player: Load leaves it unready and Play
// becomes a pending intent until becomeReady is called.
type fakeBackend struct {
	mu      sync.Mutex
	async   bool
	loads   []core.Song
	ready   bool
	pending bool
	playing bool
	vol     float64
	pos     float64
	dur     float64
	closed  int
	onEnded func()
}

func (f *fakeBackend) Load(s core.Song) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.loads = append(f.loads, s)
	f.playing = false
	f.pending = false
	f.ready = !f.async
	return nil
}

func (f *fakeBackend) Play() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.ready {
		f.pending = true
		return nil
	}
	f.playing = true
	return nil
}

func (f *fakeBackend) Pause() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.pending = false
	f.playing = false
	return nil
}

func (f *fakeBackend) Seek(seconds float64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.pos = seconds
	return nil
}

func (f *fakeBackend) Time() float64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.pos
}

func (f *fakeBackend) Duration() float64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.dur
}

func (f *fakeBackend) SetVolume(v float64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.vol = v
	return nil
}

func (f *fakeBackend) Volume() float64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.vol
}

func (f *fakeBackend) Playing() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.playing && f.ready
}

func (f *fakeBackend) SetOnEnded(fn func()) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.onEnded = fn
}

func (f *fakeBackend) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed++
	return nil
}

func (f *fakeBackend) becomeReady() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.ready = true
	if f.pending {
		f.pending = false
		f.playing = true
	}
}

func (f *fakeBackend) triggerEnded() {
	f.mu.Lock()
	f.playing = false
	fn := f.onEnded
	f.mu.Unlock()
	if fn != nil {
		fn()
	}
}

func (f *fakeBackend) lastLoad() (core.Song, int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.loads) == 0 {
		return core.Song{}, 0
	}
	return f.loads[len(f.loads)-1], len(f.loads)
}

func (f *fakeBackend) isPending() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.pending
}

var _ backend.Backend = (*fakeBackend)(nil)

func newTestEngine(t *testing.T) (*Engine, *queue.Sequencer, *fakeBackend, *fakeBackend) {
	t.Helper()

	q := queue.New()
	sink := analysis.NewSink(16)
	media := &fakeBackend{dur: 180}
	embed := &fakeBackend{async: true, dur: 240}

	e := New(q, sink, Options{
		Media:    media,
		NewEmbed: func() (backend.Backend, error) { return embed, nil },
	})
	t.Cleanup(func() { _ = e.Close() })
	return e, q, media, embed
}

var (
	songA = core.Song{Name: "A", URL: "https://cdn.example.com/a.mp3", Author: "One"}
	songB = core.Song{Name: "B", URL: "https://cdn.example.com/b.mp3", Author: "Two"}
	songV = core.Song{Name: "V", URL: "https://youtu.be/XYZ123abc", Author: "Three"}
	songW = core.Song{Name: "W", URL: "https://www.youtube.com/watch?v=ABC987zyx", Author: "Four"}
)

func TestPlayPauseLifecycle(t *testing.T) {
	e, q, media, _ := newTestEngine(t)
	q.SetSongs([]core.Song{songA})

	if !e.Paused() {
		t.Error("Paused = false before anything started, want true")
	}

	if err := q.SelectIndex(0); err != nil {
		t.Fatalf("SelectIndex error: %v", err)
	}
	if !e.Paused() {
		t.Error("Paused = false after load without play, want true")
	}
	if media.Playing() {
		t.Error("media playing after load without play")
	}

	if err := e.Play(); err != nil {
		t.Fatalf("Play error: %v", err)
	}
	if e.Paused() {
		t.Error("Paused = true after Play, want false")
	}

	if err := e.Pause(); err != nil {
		t.Fatalf("Pause error: %v", err)
	}
	if !e.Paused() {
		t.Error("Paused = false after Pause, want true")
	}
}

func TestSwitchLeavesExactlyOneBackendLive(t *testing.T) {
	e, q, media, embed := newTestEngine(t)
	q.SetSongs([]core.Song{songA, songV})

	if err := q.SelectIndex(0); err != nil {
		t.Fatalf("SelectIndex error: %v", err)
	}
	if err := e.Play(); err != nil {
		t.Fatalf("Play error: %v", err)
	}

	// Switch to the embedded-video song while playing.
	if err := q.SelectIndex(1); err != nil {
		t.Fatalf("SelectIndex error: %v", err)
	}

	if media.Playing() {
		t.Error("media backend still playing after switch")
	}
	if !e.synth.Running() {
		t.Error("synthetic generator not running while embedded backend is the playing source")
	}
	e.mu.Lock()
	polling := e.pollStop != nil
	e.mu.Unlock()
	if !polling {
		t.Error("poll timer not running for embedded backend")
	}

	embed.becomeReady()
	if !embed.Playing() {
		t.Error("embedded backend not playing after becoming ready")
	}

	// Switch back: embedded side must be fully silenced.
	if err := q.SelectIndex(0); err != nil {
		t.Fatalf("SelectIndex error: %v", err)
	}
	if embed.Playing() {
		t.Error("embedded backend still playing after switching back")
	}
	if e.synth.Running() {
		t.Error("synthetic generator still running after switching to direct media")
	}
	e.mu.Lock()
	polling = e.pollStop != nil
	e.mu.Unlock()
	if polling {
		t.Error("poll timer still running after switching to direct media")
	}
	if !media.Playing() {
		t.Error("media backend did not resume after switching back")
	}
}

func TestLoadNormalizesEmbeddedURL(t *testing.T) {
	e, _, _, embed := newTestEngine(t)

	if err := e.SetPlaying(&songV); err != nil {
		t.Fatalf("SetPlaying error: %v", err)
	}

	loaded, n := embed.lastLoad()
	if n != 1 {
		t.Fatalf("embed loads = %d, want 1", n)
	}
	if loaded.URL != "https://www.youtube.com/watch?v=XYZ123abc" {
		t.Errorf("loaded URL = %q, want canonical watch form", loaded.URL)
	}
}

func TestPendingPlayHonoredOnceReady(t *testing.T) {
	e, _, _, embed := newTestEngine(t)

	if err := e.SetPlaying(&songV); err != nil {
		t.Fatalf("SetPlaying error: %v", err)
	}
	if err := e.Play(); err != nil {
		t.Fatalf("Play error: %v", err)
	}

	if embed.Playing() {
		t.Fatal("embedded backend playing before ready")
	}
	if !e.Paused() {
		t.Error("Paused = false while embedded backend is loading, want true")
	}

	embed.becomeReady()
	if !embed.Playing() {
		t.Error("pending play intent not honored once ready")
	}
	if e.Paused() {
		t.Error("Paused = true after pending play applied, want false")
	}
}

func TestPendingPlayAbandonedWhenSuperseded(t *testing.T) {
	e, _, _, embed := newTestEngine(t)

	if err := e.SetPlaying(&songV); err != nil {
		t.Fatalf("SetPlaying error: %v", err)
	}
	if err := e.Play(); err != nil {
		t.Fatalf("Play error: %v", err)
	}

	// A second selection arrives before the first load is ready.
	if err := e.SetPlaying(&songW); err != nil {
		t.Fatalf("second SetPlaying error: %v", err)
	}

	loaded, n := embed.lastLoad()
	if n != 2 {
		t.Fatalf("embed loads = %d, want 2", n)
	}
	if loaded.URL != "https://www.youtube.com/watch?v=ABC987zyx" {
		t.Errorf("last load = %q, want second song", loaded.URL)
	}

	// Playback was in progress (as an intent), so the new load carries
	// a fresh pending play; readiness starts the second song, not the
	// first.
	if !embed.isPending() {
		t.Error("no pending play on superseding load; resume intent was dropped")
	}
	embed.becomeReady()
	if !embed.Playing() {
		t.Error("superseding song did not start once ready")
	}
}

func TestEndedAdvancesQueue(t *testing.T) {
	e, q, media, _ := newTestEngine(t)
	q.SetSongs([]core.Song{songA, songB})

	if err := q.SelectIndex(0); err != nil {
		t.Fatalf("SelectIndex error: %v", err)
	}
	if err := e.Play(); err != nil {
		t.Fatalf("Play error: %v", err)
	}

	media.triggerEnded()

	song, idx := q.Current()
	if idx != 1 || song == nil || song.Name != "B" {
		t.Fatalf("queue after ended = (%v, %d), want song B at 1", song, idx)
	}
	loaded, _ := media.lastLoad()
	if loaded.URL != songB.URL {
		t.Errorf("media loaded %q after ended, want song B", loaded.URL)
	}
	if !media.Playing() {
		t.Error("playback did not continue on the next song")
	}
}

func TestEndedWithSingleSongRestartsIt(t *testing.T) {
	e, q, media, _ := newTestEngine(t)
	q.SetSongs([]core.Song{songA})

	if err := q.SelectIndex(0); err != nil {
		t.Fatalf("SelectIndex error: %v", err)
	}
	if err := e.Play(); err != nil {
		t.Fatalf("Play error: %v", err)
	}

	media.triggerEnded()

	_, n := media.lastLoad()
	if n != 2 {
		t.Errorf("media loads = %d, want 2 (wrap policy restarts the only song)", n)
	}
	if !media.Playing() {
		t.Error("single-song wrap did not restart playback")
	}
}

func TestEndedWhilePausedDoesNotResume(t *testing.T) {
	e, q, media, _ := newTestEngine(t)
	q.SetSongs([]core.Song{songA, songB})

	if err := q.SelectIndex(0); err != nil {
		t.Fatalf("SelectIndex error: %v", err)
	}
	if err := e.Play(); err != nil {
		t.Fatalf("Play error: %v", err)
	}
	if err := e.Pause(); err != nil {
		t.Fatalf("Pause error: %v", err)
	}

	media.triggerEnded()

	if media.Playing() {
		t.Error("playback resumed after ended even though it was paused")
	}
}

func TestVolumeRoundTripAcrossBackends(t *testing.T) {
	e, q, media, embed := newTestEngine(t)
	q.SetSongs([]core.Song{songA, songV})

	if err := q.SelectIndex(0); err != nil {
		t.Fatalf("SelectIndex error: %v", err)
	}
	if err := e.SetVolume(0.3); err != nil {
		t.Fatalf("SetVolume error: %v", err)
	}
	if got := e.Volume(); got != 0.3 {
		t.Errorf("Volume = %v, want 0.3", got)
	}
	if got := media.Volume(); got != 0.3 {
		t.Errorf("media volume = %v, want 0.3", got)
	}

	// The volume carries across backend switches.
	if err := q.SelectIndex(1); err != nil {
		t.Fatalf("SelectIndex error: %v", err)
	}
	if got := embed.Volume(); got != 0.3 {
		t.Errorf("embed volume after switch = %v, want 0.3", got)
	}

	if err := e.SetVolume(1.7); err != nil {
		t.Fatalf("SetVolume error: %v", err)
	}
	if got := e.Volume(); got != 1 {
		t.Errorf("Volume after out-of-range set = %v, want 1", got)
	}
}

func TestExplicitZeroVolumeMutes(t *testing.T) {
	e, q, media, embed := newTestEngine(t)
	q.SetSongs([]core.Song{songA, songV})

	if err := e.SetVolume(0.5); err != nil {
		t.Fatalf("SetVolume error: %v", err)
	}
	if err := q.SelectIndex(0); err != nil {
		t.Fatalf("SelectIndex error: %v", err)
	}
	if got := media.Volume(); got != 0.5 {
		t.Fatalf("media volume = %v, want 0.5", got)
	}

	// Zero is a real volume, not "unset": it must mute, and must carry
	// to backends activated afterwards.
	if err := e.SetVolume(0); err != nil {
		t.Fatalf("SetVolume(0) error: %v", err)
	}
	if got := e.Volume(); got != 0 {
		t.Errorf("Volume = %v after SetVolume(0), want 0", got)
	}
	if got := media.Volume(); got != 0 {
		t.Errorf("media volume = %v after SetVolume(0), want 0", got)
	}

	if err := q.SelectIndex(1); err != nil {
		t.Fatalf("SelectIndex error: %v", err)
	}
	if got := embed.Volume(); got != 0 {
		t.Errorf("embed volume after switch = %v, want 0", got)
	}
}

func TestTimeUpdatesPolledForEmbeddedBackend(t *testing.T) {
	q := queue.New()
	sink := analysis.NewSink(16)
	media := &fakeBackend{}
	embed := &fakeBackend{async: true, pos: 12, dur: 240}

	e := New(q, sink, Options{
		Media:        media,
		NewEmbed:     func() (backend.Backend, error) { return embed, nil },
		PollInterval: 5 * time.Millisecond,
	})
	defer e.Close()

	var mu sync.Mutex
	var updates []float64
	e.OnTimeUpdate(func(pos, dur float64) {
		mu.Lock()
		updates = append(updates, pos)
		mu.Unlock()
	})

	if err := e.SetPlaying(&songV); err != nil {
		t.Fatalf("SetPlaying error: %v", err)
	}
	if err := e.Play(); err != nil {
		t.Fatalf("Play error: %v", err)
	}
	embed.becomeReady()

	deadline := time.Now().Add(time.Second)
	for {
		mu.Lock()
		n := len(updates)
		mu.Unlock()
		if n >= 2 || time.Now().After(deadline) {
			break
		}
		time.Sleep(5 * time.Millisecond)
	}

	mu.Lock()
	defer mu.Unlock()
	if len(updates) < 2 {
		t.Fatalf("got %d polled time updates, want >= 2", len(updates))
	}
	if updates[0] != 12 {
		t.Errorf("polled position = %v, want 12", updates[0])
	}
}

func TestStateChangeDoesNotDoubleFire(t *testing.T) {
	e, q, _, _ := newTestEngine(t)
	q.SetSongs([]core.Song{songA, songB})

	var mu sync.Mutex
	var states []core.PlaybackState
	e.OnStateChange(func(st core.PlaybackState) {
		mu.Lock()
		states = append(states, st)
		mu.Unlock()
	})

	if err := q.SelectIndex(0); err != nil {
		t.Fatalf("SelectIndex error: %v", err)
	}
	if err := e.Play(); err != nil {
		t.Fatalf("Play error: %v", err)
	}
	// Switch between two direct-media songs while playing: exactly one
	// transition (song B, playing) may be observed for the switch.
	if err := q.SelectIndex(1); err != nil {
		t.Fatalf("SelectIndex error: %v", err)
	}

	mu.Lock()
	defer mu.Unlock()
	if len(states) != 3 {
		t.Fatalf("state changes = %d, want 3 (loaded, playing, switched)", len(states))
	}
	last := states[2]
	if last.Song == nil || last.Song.Name != "B" || !last.Playing {
		t.Errorf("final state = %+v, want song B playing", last)
	}
}

func TestSetPlayingNilStopsPlayback(t *testing.T) {
	e, q, media, _ := newTestEngine(t)
	q.SetSongs([]core.Song{songA})

	if err := q.SelectIndex(0); err != nil {
		t.Fatalf("SelectIndex error: %v", err)
	}
	if err := e.Play(); err != nil {
		t.Fatalf("Play error: %v", err)
	}

	// Reloading the catalog without the current song clears the
	// selection, which must stop playback.
	q.SetSongs([]core.Song{songB})

	if media.Playing() {
		t.Error("media still playing after selection cleared")
	}
	if !e.Paused() {
		t.Error("Paused = false after selection cleared, want true")
	}
	if st := e.State(); st.Song != nil {
		t.Errorf("state song = %v after stop, want nil", st.Song)
	}
}

func TestCloseStopsEverythingAndIsIdempotent(t *testing.T) {
	e, q, media, embed := newTestEngine(t)
	q.SetSongs([]core.Song{songV})

	if err := q.SelectIndex(0); err != nil {
		t.Fatalf("SelectIndex error: %v", err)
	}
	if err := e.Play(); err != nil {
		t.Fatalf("Play error: %v", err)
	}
	embed.becomeReady()

	if err := e.Close(); err != nil {
		t.Fatalf("Close error: %v", err)
	}

	if e.synth.Running() {
		t.Error("synthetic generator still running after Close")
	}
	e.mu.Lock()
	polling := e.pollStop != nil
	e.mu.Unlock()
	if polling {
		t.Error("poll timer still running after Close")
	}
	if media.closed != 1 {
		t.Errorf("media backend closed %d times, want 1", media.closed)
	}
	if embed.closed != 1 {
		t.Errorf("embedded backend closed %d times, want 1", embed.closed)
	}

	if err := e.Close(); err != nil {
		t.Fatalf("second Close error: %v", err)
	}
	if media.closed != 1 {
		t.Errorf("media backend closed %d times after double Close, want 1", media.closed)
	}

	if err := e.Play(); err == nil {
		t.Error("Play after Close succeeded, want error")
	}
}
