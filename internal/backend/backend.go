// Package backend defines the capability contract the playback engine
// drives. Both players implement it; the engine never branches on the
// backend kind outside its dispatch boundary.
package backend

import "github.com/driftfm/drift/internal/core"

// Backend is a single playback backend. Times are seconds and volume
// is normalized to 0-1 regardless of the backend's native range.
//
// Load prepares a source without starting playback. For backends with
// asynchronous readiness, Play issued before the source is ready must
// be held as a pending intent and applied on readiness, not dropped; a
// later Load discards the intent.
type Backend interface {
	Load(song core.Song) error
	Play() error
	Pause() error
	Seek(seconds float64) error
	Time() float64
	Duration() float64
	SetVolume(v float64) error
	Volume() float64
	Playing() bool

	// SetOnEnded registers the natural-completion callback. It must not
	// fire for sources replaced by a new Load.
	SetOnEnded(fn func())

	Close() error
}

// TimeNotifier is implemented by backends that emit native progress
// callbacks. For backends without it the engine synthesizes time
// updates by polling.
type TimeNotifier interface {
	// SetOnTime registers a callback receiving (position, duration) in
	// seconds, fired from the backend's own playback path.
	SetOnTime(fn func(pos, dur float64))
}
