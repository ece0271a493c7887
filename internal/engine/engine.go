// Package engine coordinates playback across the two backends.
//
// The engine owns exactly one live backend at a time. It classifies
// each selected song, silences the previous backend, loads the new
// source, and republishes normalized state-change and time-update
// events so downstream consumers never observe both backends active.
package engine

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/driftfm/drift/internal/analysis"
	"github.com/driftfm/drift/internal/backend"
	"github.com/driftfm/drift/internal/core"
	drifterrors "github.com/driftfm/drift/internal/errors"
	"github.com/driftfm/drift/internal/queue"
	"github.com/driftfm/drift/internal/source"
)

// DefaultPollInterval is how often time updates are synthesized for
// backends without native progress events.
const DefaultPollInterval = 250 * time.Millisecond

// Options configures an Engine.
type Options struct {
	// Media is the direct-media backend. Required.
	Media backend.Backend

	// NewEmbed lazily creates the embedded-video backend on first
	// need. Optional; without it embedded-video songs fail to load.
	NewEmbed func() (backend.Backend, error)

	// PollInterval overrides DefaultPollInterval when positive.
	PollInterval time.Duration

	// Volume is the initial volume in [0, 1]. The zero value selects
	// full volume; use SetVolume(0) to start muted.
	Volume float64
}

// Engine is the playback engine. All exported methods are safe for
// concurrent use; callbacks are never invoked with internal locks held.
type Engine struct {
	mu sync.Mutex

	q     *queue.Sequencer
	sink  *analysis.Sink
	synth *analysis.Generator

	media    backend.Backend
	newEmbed func() (backend.Backend, error)
	embed    backend.Backend

	active backend.Backend
	kind   core.SourceKind
	song   *core.Song

	// intent tracks whether the user wants playback running, which
	// can differ from the backend's actual state while an asynchronous
	// load is pending.
	intent      bool
	autoAdvance bool

	volume       float64
	pollInterval time.Duration
	pollStop     chan struct{}
	closed       bool

	onState   func(core.PlaybackState)
	onTime    func(pos, dur float64)
	lastState *core.PlaybackState
}

// New creates an engine driving the given sequencer and analysis sink.
// The engine subscribes to the sequencer: selection changes are the
// only path into song loading.
func New(q *queue.Sequencer, sink *analysis.Sink, opts Options) *Engine {
	if opts.PollInterval <= 0 {
		opts.PollInterval = DefaultPollInterval
	}
	if opts.Volume == 0 {
		opts.Volume = 1
	}
	if opts.Volume < 0 {
		opts.Volume = 0
	}
	if opts.Volume > 1 {
		opts.Volume = 1
	}

	e := &Engine{
		q:            q,
		sink:         sink,
		synth:        analysis.NewGenerator(sink),
		media:        opts.Media,
		newEmbed:     opts.NewEmbed,
		volume:       opts.Volume,
		pollInterval: opts.PollInterval,
	}

	if e.media != nil {
		e.hookBackend(e.media)
	}
	q.OnUpdate(e.handleSelection)
	return e
}

// hookBackend wires a backend's callbacks into the engine.
func (e *Engine) hookBackend(b backend.Backend) {
	b.SetOnEnded(func() { e.handleEnded(b) })
	if tn, ok := b.(backend.TimeNotifier); ok {
		tn.SetOnTime(func(pos, dur float64) { e.handleTime(b, pos, dur) })
	}
}

// OnStateChange registers the single state-change callback.
func (e *Engine) OnStateChange(fn func(core.PlaybackState)) {
	e.mu.Lock()
	e.onState = fn
	e.mu.Unlock()
}

// OnTimeUpdate registers the time-update callback. Both backends feed
// the same callback shape: the direct-media backend from its native
// progress path, the embedded backend from the engine's poll timer.
func (e *Engine) OnTimeUpdate(fn func(pos, dur float64)) {
	e.mu.Lock()
	e.onTime = fn
	e.mu.Unlock()
}

// Queue returns the playlist sequencer.
func (e *Engine) Queue() *queue.Sequencer {
	return e.q
}

// Sink returns the frequency analysis sink.
func (e *Engine) Sink() *analysis.Sink {
	return e.sink
}

// SetPlaying loads the given song, switching backends as its URL
// requires. If playback was in progress (or intended), it resumes on
// the new backend. A nil song stops playback entirely.
func (e *Engine) SetPlaying(song *core.Song) error {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return drifterrors.ErrEngineClosed
	}

	wasPlaying := e.intent || e.autoAdvance
	e.autoAdvance = false

	// Fully silence the previous backend before anything else: pause
	// it, stop the poll timer, and stop the synthetic generator.
	if e.active != nil {
		_ = e.active.Pause()
	}
	e.stopPollLocked()
	e.synth.Stop()
	e.sink.Clear()

	if song == nil {
		e.song = nil
		e.active = nil
		e.kind = ""
		e.intent = false
		e.mu.Unlock()
		e.notifyState()
		return nil
	}

	kind, normalized := source.Classify(song.URL)
	b, err := e.backendFor(kind)
	if err != nil {
		e.intent = false
		e.mu.Unlock()
		e.notifyState()
		return err
	}

	e.active = b
	e.kind = kind
	_ = b.SetVolume(e.volume)

	loadSong := *song
	loadSong.URL = normalized
	if err := b.Load(loadSong); err != nil {
		e.intent = false
		e.song = nil
		e.mu.Unlock()
		e.notifyState()
		return err
	}

	s := *song
	e.song = &s

	if wasPlaying {
		if err := e.playLocked(); err != nil {
			e.mu.Unlock()
			e.notifyState()
			return err
		}
	}

	e.mu.Unlock()
	e.notifyState()
	return nil
}

// Play starts or resumes playback on the active backend. Failures
// leave the engine paused rather than in a half-started state.
func (e *Engine) Play() error {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return drifterrors.ErrEngineClosed
	}
	if e.active == nil {
		e.mu.Unlock()
		return drifterrors.ErrNoSong
	}

	err := e.playLocked()
	e.mu.Unlock()
	e.notifyState()
	return err
}

// playLocked issues play on the active backend and brings up the
// timers that accompany it.
func (e *Engine) playLocked() error {
	if err := e.active.Play(); err != nil {
		e.intent = false
		e.stopPollLocked()
		e.synth.Stop()
		return err
	}

	e.intent = true
	if e.kind == core.SourceEmbeddedVideo {
		// The embedded player exposes no decoded signal and no
		// progress events; both are synthesized while it plays.
		e.synth.Start()
		e.startPollLocked()
	}
	return nil
}

// Pause pauses the active backend and stops the timers bound to
// playback.
func (e *Engine) Pause() error {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return drifterrors.ErrEngineClosed
	}

	if e.active != nil {
		_ = e.active.Pause()
	}
	e.intent = false
	e.stopPollLocked()
	e.synth.Stop()
	e.mu.Unlock()
	e.notifyState()
	return nil
}

// Paused reports true when nothing has ever started, when explicitly
// paused, and when the active backend reports any non-playing state.
func (e *Engine) Paused() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.active == nil || !e.active.Playing()
}

// Time returns the playback position in seconds.
func (e *Engine) Time() float64 {
	e.mu.Lock()
	b := e.active
	e.mu.Unlock()

	if b == nil {
		return 0
	}
	return b.Time()
}

// Duration returns the current track length in seconds.
func (e *Engine) Duration() float64 {
	e.mu.Lock()
	b := e.active
	e.mu.Unlock()

	if b == nil {
		return 0
	}
	return b.Duration()
}

// Seek jumps to the given position in seconds.
func (e *Engine) Seek(seconds float64) error {
	e.mu.Lock()
	b := e.active
	e.mu.Unlock()

	if b == nil {
		return drifterrors.ErrNoSong
	}
	return b.Seek(seconds)
}

// SetVolume sets the volume, clamped to [0, 1], on whichever backend
// is active now and on any backend activated later.
func (e *Engine) SetVolume(v float64) error {
	if v < 0 {
		v = 0
	}
	if v > 1 {
		v = 1
	}

	e.mu.Lock()
	e.volume = v
	b := e.active
	e.mu.Unlock()

	if b != nil {
		return b.SetVolume(v)
	}
	return nil
}

// Volume returns the current volume in [0, 1].
func (e *Engine) Volume() float64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.volume
}

// State returns a snapshot of the observable playback state.
func (e *Engine) State() core.PlaybackState {
	e.mu.Lock()
	st := e.stateLocked()
	e.mu.Unlock()
	return st
}

// Close tears the engine down: pauses playback, cancels the poll timer
// and synthetic generator, unhooks the sequencer, and releases both
// backends. Safe to call more than once.
func (e *Engine) Close() error {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return nil
	}
	e.closed = true
	e.intent = false

	if e.active != nil {
		_ = e.active.Pause()
	}
	e.stopPollLocked()
	e.synth.Stop()
	e.sink.Clear()

	media := e.media
	embed := e.embed
	e.active = nil
	e.song = nil
	e.mu.Unlock()

	e.q.OnUpdate(nil)

	var errs []error
	if media != nil {
		if err := media.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close media backend: %w", err))
		}
	}
	if embed != nil {
		if err := embed.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close embedded backend: %w", err))
		}
	}
	return errors.Join(errs...)
}

// backendFor returns the backend handling the given kind, creating the
// embedded backend lazily on first need.
func (e *Engine) backendFor(kind core.SourceKind) (backend.Backend, error) {
	switch kind {
	case core.SourceEmbeddedVideo:
		if e.embed == nil {
			if e.newEmbed == nil {
				return nil, errors.New("no embedded-video backend configured")
			}
			b, err := e.newEmbed()
			if err != nil {
				return nil, fmt.Errorf("create embedded backend: %w", err)
			}
			e.hookBackend(b)
			e.embed = b
		}
		return e.embed, nil
	default:
		if e.media == nil {
			return nil, errors.New("no direct-media backend configured")
		}
		return e.media, nil
	}
}

// handleSelection is the sequencer's OnUpdate target.
func (e *Engine) handleSelection(song *core.Song) {
	if err := e.SetPlaying(song); err != nil {
		slog.Warn("song selection failed", "error", err)
	}
}

// handleEnded reacts to a backend's natural completion by advancing
// the playlist and resuming on whatever comes next.
func (e *Engine) handleEnded(b backend.Backend) {
	e.mu.Lock()
	if e.closed || e.active != b {
		e.mu.Unlock()
		return
	}
	e.stopPollLocked()
	e.synth.Stop()
	e.autoAdvance = e.intent
	e.intent = false
	e.mu.Unlock()

	e.notifyState()
	e.q.Next()
}

// handleTime forwards a backend's native progress callback, dropping
// reports from a backend that is no longer active.
func (e *Engine) handleTime(b backend.Backend, pos, dur float64) {
	e.mu.Lock()
	if e.closed || e.active != b {
		e.mu.Unlock()
		return
	}
	fn := e.onTime
	e.mu.Unlock()

	if fn != nil {
		fn(pos, dur)
	}
}

// startPollLocked starts the time-update poll for the active backend.
// At most one poll timer exists at a time.
func (e *Engine) startPollLocked() {
	if e.pollStop != nil {
		return
	}
	stop := make(chan struct{})
	e.pollStop = stop
	go e.poll(stop, e.active)
}

func (e *Engine) stopPollLocked() {
	if e.pollStop == nil {
		return
	}
	close(e.pollStop)
	e.pollStop = nil
}

func (e *Engine) poll(stop chan struct{}, b backend.Backend) {
	ticker := time.NewTicker(e.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			e.mu.Lock()
			if e.closed || e.active != b {
				e.mu.Unlock()
				return
			}
			fn := e.onTime
			e.mu.Unlock()

			if fn != nil {
				fn(b.Time(), b.Duration())
			}
			// The embedded player flips to playing asynchronously;
			// surface that transition through the state callback.
			e.notifyState()
		}
	}
}

func (e *Engine) stateLocked() core.PlaybackState {
	st := core.PlaybackState{
		Kind:   e.kind,
		Volume: e.volume,
	}
	if e.song != nil {
		s := *e.song
		st.Song = &s
	}
	if e.active != nil {
		st.Playing = e.active.Playing()
		st.Time = e.active.Time()
		st.Duration = e.active.Duration()
	}
	return st
}

// notifyState fires the state-change callback once per observable
// transition, suppressing duplicates so a backend switch never
// double-fires.
func (e *Engine) notifyState() {
	e.mu.Lock()
	fn := e.onState
	st := e.stateLocked()
	if e.lastState != nil && sameState(*e.lastState, st) {
		e.mu.Unlock()
		return
	}
	e.lastState = &st
	e.mu.Unlock()

	if fn != nil {
		fn(st)
	}
}

func sameState(a, b core.PlaybackState) bool {
	aURL, bURL := "", ""
	if a.Song != nil {
		aURL = a.Song.URL
	}
	if b.Song != nil {
		bURL = b.Song.URL
	}
	return aURL == bURL && a.Kind == b.Kind && a.Playing == b.Playing
}
