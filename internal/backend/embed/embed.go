// Package embed implements the embedded-video backend: video-host
// links played for their audio track through libmpv, which resolves
// them via its ytdl hook.
//
// The underlying player is event-driven and its readiness is not
// synchronously observable. The backend models this as a small state
// machine (uninitialized -> initializing -> ready) with at most one
// pending play intent, applied when the file finishes loading and
// discarded when a later Load supersedes it.
package embed

import (
	"fmt"
	"strconv"
	"sync"

	"github.com/wildeyedskies/go-mpv/mpv"

	bk "github.com/driftfm/drift/internal/backend"
	"github.com/driftfm/drift/internal/core"
	drifterrors "github.com/driftfm/drift/internal/errors"
)

type readiness int

const (
	stateUninitialized readiness = iota
	stateInitializing
	stateReady
)

// Options configures the embedded player.
type Options struct {
	// YtdlFormat selects the stream format, e.g. "bestaudio".
	YtdlFormat string
}

// Backend drives a libmpv instance. The player's native volume range
// is 0-100; the contract surface rescales it to 0-1.
type Backend struct {
	mu sync.Mutex

	m    *mpv.Mpv
	stop chan struct{}

	state          readiness
	loadInProgress bool
	pendingPlay    bool
	playing        bool
	level          float64 // 0.0 to 1.0
	closed         bool

	onEnded func()
}

// New creates and initializes the embedded player.
func New(opts Options) (*Backend, error) {
	m := mpv.Create()
	m.SetOptionString("video", "no")
	m.SetOptionString("audio-display", "no")
	m.SetOptionString("idle", "yes")
	m.SetOptionString("ytdl", "yes")
	if opts.YtdlFormat != "" {
		m.SetOptionString("ytdl-format", opts.YtdlFormat)
	}

	if err := m.Initialize(); err != nil {
		m.TerminateDestroy()
		return nil, fmt.Errorf("initialize mpv: %w", err)
	}

	b := &Backend{
		m:     m,
		stop:  make(chan struct{}),
		level: 1,
	}
	go b.eventLoop()
	return b, nil
}

func (b *Backend) eventLoop() {
	for {
		select {
		case <-b.stop:
			return
		default:
		}

		e := b.m.WaitEvent(1)
		if e == nil {
			continue
		}
		switch e.Event_Id {
		case mpv.EVENT_SHUTDOWN:
			return
		case mpv.EVENT_FILE_LOADED:
			b.handleLoaded()
		case mpv.EVENT_END_FILE:
			b.handleEndFile()
		}
	}
}

// handleLoaded transitions to ready and applies the pending intent.
func (b *Backend) handleLoaded() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return
	}

	b.state = stateReady
	b.loadInProgress = false
	b.applyVolumeLocked()

	if b.pendingPlay {
		b.pendingPlay = false
		if err := b.m.SetPropertyString("pause", "no"); err == nil {
			b.playing = true
		}
	}
}

func (b *Backend) handleEndFile() {
	b.mu.Lock()

	// END_FILE also fires when a new load replaces the current file;
	// that is not a natural completion.
	if b.closed || b.loadInProgress {
		b.mu.Unlock()
		return
	}

	b.playing = false
	b.state = stateUninitialized
	fn := b.onEnded
	b.mu.Unlock()

	if fn != nil {
		fn()
	}
}

// Load requests the song's source. Loading is asynchronous: the
// backend is not ready until the player reports the file loaded. Any
// pending play intent from a previous load is discarded.
func (b *Backend) Load(song core.Song) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return drifterrors.ErrEngineClosed
	}

	b.pendingPlay = false
	b.playing = false
	b.state = stateInitializing
	b.loadInProgress = true

	// Hold the new file paused; the engine decides when to start.
	if err := b.m.SetPropertyString("pause", "yes"); err != nil {
		b.loadInProgress = false
		b.state = stateUninitialized
		return fmt.Errorf("pause before load: %w", err)
	}
	if err := b.m.Command([]string{"loadfile", song.URL}); err != nil {
		b.loadInProgress = false
		b.state = stateUninitialized
		return fmt.Errorf("load %q: %w", song.URL, err)
	}

	return nil
}

// Play starts playback, or records the intent when the player is still
// loading. The intent is applied once ready and dropped if a newer
// Load arrives first.
func (b *Backend) Play() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return drifterrors.ErrEngineClosed
	}

	if b.state != stateReady {
		if b.state == stateUninitialized && !b.loadInProgress {
			return drifterrors.ErrNoSong
		}
		b.pendingPlay = true
		return nil
	}

	if err := b.m.SetPropertyString("pause", "no"); err != nil {
		return fmt.Errorf("%w: %v", drifterrors.ErrPlaybackRejected, err)
	}
	b.playing = true
	return nil
}

// Pause pauses playback and abandons any pending play intent.
func (b *Backend) Pause() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return drifterrors.ErrEngineClosed
	}

	b.pendingPlay = false
	b.playing = false
	if b.state == stateReady {
		if err := b.m.SetPropertyString("pause", "yes"); err != nil {
			return fmt.Errorf("pause: %w", err)
		}
	}
	return nil
}

// Seek jumps to the given position in seconds.
func (b *Backend) Seek(seconds float64) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return drifterrors.ErrEngineClosed
	}
	if b.state != stateReady {
		return drifterrors.ErrBackendNotReady
	}

	arg := strconv.FormatFloat(seconds, 'f', 3, 64)
	if err := b.m.Command([]string{"seek", arg, "absolute"}); err != nil {
		return fmt.Errorf("seek: %w", err)
	}
	return nil
}

// Time returns the playback position in seconds, 0 when unavailable.
func (b *Backend) Time() float64 {
	return b.property("time-pos")
}

// Duration returns the track length in seconds, 0 when unavailable.
func (b *Backend) Duration() float64 {
	return b.property("duration")
}

func (b *Backend) property(name string) float64 {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed || b.state != stateReady {
		return 0
	}

	v, err := b.m.GetProperty(name, mpv.FORMAT_DOUBLE)
	if err != nil {
		return 0
	}
	f, ok := v.(float64)
	if !ok {
		return 0
	}
	return f
}

// SetVolume sets the volume, rescaling [0, 1] onto the player's
// native 0-100 range.
func (b *Backend) SetVolume(v float64) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return drifterrors.ErrEngineClosed
	}

	if v < 0 {
		v = 0
	}
	if v > 1 {
		v = 1
	}
	b.level = v
	b.applyVolumeLocked()
	return nil
}

func (b *Backend) applyVolumeLocked() {
	arg := strconv.FormatFloat(b.level*100, 'f', 2, 64)
	_ = b.m.SetPropertyString("volume", arg)
}

// Volume returns the current volume in [0, 1].
func (b *Backend) Volume() float64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.level
}

// Playing reports whether audio is actively playing. Any non-playing
// player state, including loading, counts as not playing.
func (b *Backend) Playing() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.playing && b.state == stateReady
}

// SetOnEnded registers the natural-completion callback.
func (b *Backend) SetOnEnded(fn func()) {
	b.mu.Lock()
	b.onEnded = fn
	b.mu.Unlock()
}

// Close shuts the player down and releases its native resources.
// Safe to call more than once.
func (b *Backend) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return nil
	}
	b.closed = true
	b.pendingPlay = false
	b.playing = false

	close(b.stop)
	_ = b.m.Command([]string{"quit"})
	b.m.TerminateDestroy()
	return nil
}

var _ bk.Backend = (*Backend)(nil)
