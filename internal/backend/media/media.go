// Package media implements the direct-media backend: decodable audio
// URLs and files played in-process through the beep speaker.
package media

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path"
	"strings"
	"sync"
	"time"

	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/effects"
	"github.com/gopxl/beep/v2/flac"
	"github.com/gopxl/beep/v2/mp3"
	"github.com/gopxl/beep/v2/speaker"
	"github.com/gopxl/beep/v2/vorbis"
	"github.com/gopxl/beep/v2/wav"

	"github.com/driftfm/drift/internal/analysis"
	bk "github.com/driftfm/drift/internal/backend"
	"github.com/driftfm/drift/internal/core"
	drifterrors "github.com/driftfm/drift/internal/errors"
)

// Backend plays decodable audio through the system speaker. The
// speaker is initialized lazily on the first Play, which can fail when
// the environment refuses to open an audio device; that failure
// surfaces as ErrPlaybackRejected and leaves the backend paused.
type Backend struct {
	mu sync.Mutex

	sampleRate beep.SampleRate
	buffer     time.Duration
	client     *http.Client
	sink       *analysis.Sink

	// started is true once the speaker is running with our mixer.
	started bool
	mixer   *beep.Mixer
	volume  *effects.Volume

	ctrl     *beep.Ctrl
	streamer beep.StreamSeekCloser
	format   beep.Format
	tap      *tap
	attached bool

	song    core.Song
	loaded  bool
	playing bool
	level   float64 // 0.0 to 1.0
	gen     uint64  // invalidates stale ended callbacks
	closed  bool

	onEnded func()
	onTime  func(pos, dur float64)
}

// New creates a direct-media backend feeding the given analysis sink.
// Zero sampleRate or buffer select sane defaults.
func New(sink *analysis.Sink, sampleRate int, buffer time.Duration) *Backend {
	if sampleRate <= 0 {
		sampleRate = 44100
	}
	if buffer <= 0 {
		buffer = 100 * time.Millisecond
	}

	mixer := &beep.Mixer{}
	vol := &effects.Volume{
		Streamer: mixer,
		Base:     2,
		Volume:   0,
		Silent:   false,
	}

	return &Backend{
		sampleRate: beep.SampleRate(sampleRate),
		buffer:     buffer,
		client:     &http.Client{Timeout: 30 * time.Second},
		sink:       sink,
		mixer:      mixer,
		volume:     vol,
		level:      1,
	}
}

// Load fetches and decodes the song's source without starting
// playback. Any previous source is stopped and released first.
func (b *Backend) Load(song core.Song) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return drifterrors.ErrEngineClosed
	}

	b.gen++
	b.stopLocked()

	rc, err := b.open(song.URL)
	if err != nil {
		return fmt.Errorf("open %q: %w", song.URL, err)
	}

	streamer, format, err := decode(song.URL, rc)
	if err != nil {
		rc.Close()
		return fmt.Errorf("decode %q: %w", song.URL, err)
	}

	var resampled beep.Streamer = streamer
	if format.SampleRate != b.sampleRate {
		resampled = beep.Resample(4, format.SampleRate, b.sampleRate, streamer)
	}

	duration := format.SampleRate.D(streamer.Len()).Seconds()
	b.tap = newTap(resampled, b.sink, b.sampleRate, duration, b.emitTime)

	gen := b.gen
	seq := beep.Seq(b.tap, beep.Callback(func() {
		// Separate goroutine: the callback runs on the speaker
		// goroutine and the handler takes our lock.
		go b.handleEnded(gen)
	}))
	b.ctrl = &beep.Ctrl{Streamer: seq, Paused: true}

	b.streamer = streamer
	b.format = format
	b.song = song
	b.loaded = true
	b.playing = false
	b.attached = false

	return nil
}

// Play starts or resumes playback, initializing the speaker on first
// use. Environments that refuse to open an audio device yield
// ErrPlaybackRejected and the backend stays paused.
func (b *Backend) Play() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return drifterrors.ErrEngineClosed
	}
	if !b.loaded {
		return drifterrors.ErrNoSong
	}

	if err := b.ensureSpeakerLocked(); err != nil {
		return err
	}

	speaker.Lock()
	if !b.attached {
		b.mixer.Add(b.ctrl)
		b.attached = true
	}
	b.applyVolumeLocked()
	b.ctrl.Paused = false
	speaker.Unlock()

	b.playing = true
	return nil
}

// Pause pauses playback, keeping the position.
func (b *Backend) Pause() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.started && b.ctrl != nil {
		speaker.Lock()
		b.ctrl.Paused = true
		speaker.Unlock()
	}
	b.playing = false
	return nil
}

// Seek jumps to the given position in seconds.
func (b *Backend) Seek(seconds float64) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.streamer == nil {
		return nil
	}
	if seconds < 0 {
		seconds = 0
	}

	if b.started {
		speaker.Lock()
		defer speaker.Unlock()
	}

	samples := b.format.SampleRate.N(time.Duration(seconds * float64(time.Second)))
	if max := b.streamer.Len(); samples > max {
		samples = max
	}
	if err := b.streamer.Seek(samples); err != nil {
		return fmt.Errorf("seek: %w", err)
	}
	b.tap.setPosition(seconds)
	return nil
}

// Time returns the playback position in seconds.
func (b *Backend) Time() float64 {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.streamer == nil {
		return 0
	}

	if b.started {
		speaker.Lock()
		defer speaker.Unlock()
	}
	return b.format.SampleRate.D(b.streamer.Position()).Seconds()
}

// Duration returns the track length in seconds.
func (b *Backend) Duration() float64 {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.streamer == nil {
		return 0
	}
	return b.format.SampleRate.D(b.streamer.Len()).Seconds()
}

// SetVolume sets the output volume, clamped to [0, 1].
func (b *Backend) SetVolume(v float64) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if v < 0 {
		v = 0
	}
	if v > 1 {
		v = 1
	}
	b.level = v

	if b.started {
		speaker.Lock()
		b.applyVolumeLocked()
		speaker.Unlock()
	}
	return nil
}

// Volume returns the current volume in [0, 1].
func (b *Backend) Volume() float64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.level
}

// Playing reports whether audio is actively playing.
func (b *Backend) Playing() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.playing
}

// SetOnEnded registers the natural-completion callback.
func (b *Backend) SetOnEnded(fn func()) {
	b.mu.Lock()
	b.onEnded = fn
	b.mu.Unlock()
}

// SetOnTime registers the native progress callback, fired from the
// streaming path roughly every 250ms of audio.
func (b *Backend) SetOnTime(fn func(pos, dur float64)) {
	b.mu.Lock()
	b.onTime = fn
	b.mu.Unlock()
}

// Close releases the active source and shuts the speaker down.
// Safe to call more than once.
func (b *Backend) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return nil
	}
	b.closed = true
	b.gen++
	b.stopLocked()

	if b.started {
		speaker.Close()
		b.started = false
	}
	return nil
}

// applyVolumeLocked maps the 0-1 level onto beep's log scale.
// Caller must hold the speaker lock.
func (b *Backend) applyVolumeLocked() {
	if b.level == 0 {
		b.volume.Silent = true
		return
	}
	b.volume.Silent = false
	b.volume.Volume = b.level*2 - 1 // maps nicely to log scale
}

// ensureSpeakerLocked initializes the speaker on first use.
func (b *Backend) ensureSpeakerLocked() error {
	if b.started {
		return nil
	}

	if err := speaker.Init(b.sampleRate, b.sampleRate.N(b.buffer)); err != nil {
		return fmt.Errorf("%w: audio output unavailable: %v", drifterrors.ErrPlaybackRejected, err)
	}
	speaker.Play(b.volume)
	b.started = true
	return nil
}

// stopLocked silences and releases the current source.
func (b *Backend) stopLocked() {
	if b.started && b.ctrl != nil {
		speaker.Lock()
		b.ctrl.Paused = true
		b.mixer.Clear()
		speaker.Unlock()
	}
	if b.streamer != nil {
		b.streamer.Close()
		b.streamer = nil
	}
	b.ctrl = nil
	if b.tap != nil {
		b.tap.close()
		b.tap = nil
	}
	b.attached = false
	b.loaded = false
	b.playing = false
}

func (b *Backend) handleEnded(gen uint64) {
	b.mu.Lock()
	if b.closed || gen != b.gen {
		b.mu.Unlock()
		return
	}
	b.playing = false
	fn := b.onEnded
	b.mu.Unlock()

	if fn != nil {
		fn()
	}
}

// emitTime forwards tap progress to the registered callback.
func (b *Backend) emitTime(pos, dur float64) {
	b.mu.Lock()
	fn := b.onTime
	playing := b.playing
	b.mu.Unlock()

	if fn != nil && playing {
		fn(pos, dur)
	}
}

// open fetches the source. Remote media is buffered into memory so the
// decoder can seek; everything else is treated as a local path.
func (b *Backend) open(rawURL string) (io.ReadCloser, error) {
	if strings.HasPrefix(rawURL, "http://") || strings.HasPrefix(rawURL, "https://") {
		resp, err := b.client.Get(rawURL)
		if err != nil {
			return nil, err
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			return nil, fmt.Errorf("unexpected status %s", resp.Status)
		}
		data, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, err
		}
		return nopCloser{bytes.NewReader(data)}, nil
	}

	return os.Open(strings.TrimPrefix(rawURL, "file://"))
}

// decode picks the decoder from the URL's extension, defaulting to mp3.
func decode(rawURL string, rc io.ReadCloser) (beep.StreamSeekCloser, beep.Format, error) {
	ext := strings.ToLower(path.Ext(rawURL))
	if u, err := url.Parse(rawURL); err == nil && u.Path != "" {
		ext = strings.ToLower(path.Ext(u.Path))
	}

	switch ext {
	case ".wav":
		return wav.Decode(rc)
	case ".flac":
		return flac.Decode(rc)
	case ".ogg", ".oga":
		return vorbis.Decode(rc)
	default:
		return mp3.Decode(rc)
	}
}

type nopCloser struct {
	*bytes.Reader
}

func (nopCloser) Close() error { return nil }

// Ensure Backend implements the playback contracts.
var (
	_ bk.Backend      = (*Backend)(nil)
	_ bk.TimeNotifier = (*Backend)(nil)
)
