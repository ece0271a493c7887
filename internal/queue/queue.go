// Package queue owns the ordered playlist and the current selection.
//
// Every successful selection change is reported through a single
// OnUpdate callback, which is the only path by which the playback
// engine learns "load and possibly play this song".
package queue

import (
	"fmt"
	"sync"

	"github.com/driftfm/drift/internal/core"
	drifterrors "github.com/driftfm/drift/internal/errors"
)

// Sequencer holds the ordered song list and the current position.
// Navigation wraps at both ends of the list.
type Sequencer struct {
	mu       sync.Mutex
	songs    []core.Song
	current  int // -1 when nothing is selected
	onUpdate func(*core.Song)
}

// New creates an empty sequencer.
func New() *Sequencer {
	return &Sequencer{current: -1}
}

// OnUpdate registers the selection callback. It is invoked exactly once
// per selection change, with nil when the selection is cleared.
func (s *Sequencer) OnUpdate(fn func(*core.Song)) {
	s.mu.Lock()
	s.onUpdate = fn
	s.mu.Unlock()
}

// SetSongs replaces the song list. If the currently selected song still
// appears in the new list (by URL), the selection is re-pointed to its
// new position without firing OnUpdate; otherwise the selection is
// cleared and OnUpdate fires with nil so playback can stop.
func (s *Sequencer) SetSongs(songs []core.Song) {
	s.mu.Lock()

	var selected *core.Song
	if s.current >= 0 && s.current < len(s.songs) {
		c := s.songs[s.current]
		selected = &c
	}

	s.songs = make([]core.Song, len(songs))
	copy(s.songs, songs)

	cleared := false
	if selected == nil {
		s.current = -1
	} else {
		s.current = indexByURL(s.songs, selected.URL)
		cleared = s.current < 0
	}

	fn := s.onUpdate
	s.mu.Unlock()

	if cleared && fn != nil {
		fn(nil)
	}
}

// Next advances the selection, wrapping to the first song at the end.
// On an empty list the selection clears and OnUpdate fires with nil.
func (s *Sequencer) Next() *core.Song {
	return s.step(+1)
}

// Previous moves the selection back, wrapping to the last song at the
// start. On an empty list the selection clears and OnUpdate fires with nil.
func (s *Sequencer) Previous() *core.Song {
	return s.step(-1)
}

func (s *Sequencer) step(dir int) *core.Song {
	s.mu.Lock()

	var song *core.Song
	if len(s.songs) == 0 {
		s.current = -1
	} else {
		if s.current < 0 {
			// Nothing selected yet: start at the natural end.
			if dir > 0 {
				s.current = 0
			} else {
				s.current = len(s.songs) - 1
			}
		} else {
			s.current = (s.current + dir + len(s.songs)) % len(s.songs)
		}
		c := s.songs[s.current]
		song = &c
	}

	fn := s.onUpdate
	s.mu.Unlock()

	if fn != nil {
		fn(song)
	}
	return song
}

// SelectIndex jumps directly to the song at index i. Selecting the
// current index again still fires OnUpdate, so a song can be restarted.
func (s *Sequencer) SelectIndex(i int) error {
	s.mu.Lock()

	if i < 0 || i >= len(s.songs) {
		s.mu.Unlock()
		return fmt.Errorf("select index %d of %d songs: %w", i, len(s.songs), drifterrors.ErrOutOfRange)
	}

	s.current = i
	c := s.songs[i]
	fn := s.onUpdate
	s.mu.Unlock()

	if fn != nil {
		fn(&c)
	}
	return nil
}

// Current returns the selected song and its index, or (nil, -1).
func (s *Sequencer) Current() (*core.Song, int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.current < 0 || s.current >= len(s.songs) {
		return nil, -1
	}
	c := s.songs[s.current]
	return &c, s.current
}

// Songs returns a copy of the song list.
func (s *Sequencer) Songs() []core.Song {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]core.Song, len(s.songs))
	copy(out, s.songs)
	return out
}

// Len returns the number of songs in the list.
func (s *Sequencer) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.songs)
}

// IsEmpty returns true if the list has no songs.
func (s *Sequencer) IsEmpty() bool {
	return s.Len() == 0
}

func indexByURL(songs []core.Song, url string) int {
	for i, song := range songs {
		if song.URL == url {
			return i
		}
	}
	return -1
}
