package queue

import (
	"errors"
	"testing"

	"github.com/driftfm/drift/internal/core"
	drifterrors "github.com/driftfm/drift/internal/errors"
)

func testSongs() []core.Song {
	return []core.Song{
		{Name: "A", URL: "a.mp3", Author: "One"},
		{Name: "B", URL: "b.mp3", Author: "Two"},
		{Name: "C", URL: "https://youtu.be/XYZ123abc", Author: "Three"},
	}
}

// recorder captures OnUpdate invocations.
type recorder struct {
	calls []*core.Song
}

func (r *recorder) fn(s *core.Song) {
	r.calls = append(r.calls, s)
}

func TestNextWrapsAtEnd(t *testing.T) {
	s := New()
	s.SetSongs(testSongs())

	if song := s.Next(); song == nil || song.Name != "A" {
		t.Fatalf("first Next = %v, want song A", song)
	}
	s.Next()
	if song := s.Next(); song == nil || song.Name != "C" {
		t.Fatalf("third Next = %v, want song C", song)
	}
	if song := s.Next(); song == nil || song.Name != "A" {
		t.Errorf("Next at end = %v, want wrap to song A", song)
	}
}

func TestPreviousWrapsAtStart(t *testing.T) {
	s := New()
	s.SetSongs(testSongs())

	if err := s.SelectIndex(0); err != nil {
		t.Fatalf("SelectIndex(0) error: %v", err)
	}
	if song := s.Previous(); song == nil || song.Name != "C" {
		t.Errorf("Previous at start = %v, want wrap to song C", song)
	}
}

func TestNextOnEmptyList(t *testing.T) {
	s := New()
	var rec recorder
	s.OnUpdate(rec.fn)

	if song := s.Next(); song != nil {
		t.Errorf("Next on empty list = %v, want nil", song)
	}
	if len(rec.calls) != 1 || rec.calls[0] != nil {
		t.Errorf("OnUpdate calls = %v, want single nil call", rec.calls)
	}
}

func TestSelectIndexOutOfRange(t *testing.T) {
	s := New()
	s.SetSongs(testSongs())

	for _, i := range []int{-1, 3, 100} {
		err := s.SelectIndex(i)
		if !errors.Is(err, drifterrors.ErrOutOfRange) {
			t.Errorf("SelectIndex(%d) error = %v, want ErrOutOfRange", i, err)
		}
	}
	if _, idx := s.Current(); idx != -1 {
		t.Errorf("selection after failed SelectIndex = %d, want -1", idx)
	}
}

func TestOnUpdateFiresOncePerChange(t *testing.T) {
	s := New()
	s.SetSongs(testSongs())
	var rec recorder
	s.OnUpdate(rec.fn)

	s.Next()
	if err := s.SelectIndex(2); err != nil {
		t.Fatalf("SelectIndex error: %v", err)
	}
	s.Previous()

	if len(rec.calls) != 3 {
		t.Fatalf("OnUpdate fired %d times, want 3", len(rec.calls))
	}
	want := []string{"A", "C", "B"}
	for i, call := range rec.calls {
		if call == nil || call.Name != want[i] {
			t.Errorf("call %d = %v, want song %s", i, call, want[i])
		}
	}
}

func TestSelectSameIndexRefires(t *testing.T) {
	s := New()
	s.SetSongs(testSongs())
	var rec recorder
	s.OnUpdate(rec.fn)

	if err := s.SelectIndex(1); err != nil {
		t.Fatalf("SelectIndex error: %v", err)
	}
	if err := s.SelectIndex(1); err != nil {
		t.Fatalf("second SelectIndex error: %v", err)
	}
	if len(rec.calls) != 2 {
		t.Errorf("OnUpdate fired %d times, want 2 (re-selection restarts a song)", len(rec.calls))
	}
}

func TestSetSongsRepointsByURL(t *testing.T) {
	s := New()
	s.SetSongs(testSongs())
	if err := s.SelectIndex(1); err != nil {
		t.Fatalf("SelectIndex error: %v", err)
	}

	var rec recorder
	s.OnUpdate(rec.fn)

	// Song B moves to the front in the new list.
	s.SetSongs([]core.Song{
		{Name: "B", URL: "b.mp3"},
		{Name: "D", URL: "d.mp3"},
	})

	song, idx := s.Current()
	if idx != 0 || song == nil || song.URL != "b.mp3" {
		t.Errorf("Current after SetSongs = (%v, %d), want song B at 0", song, idx)
	}
	if len(rec.calls) != 0 {
		t.Errorf("OnUpdate fired %d times on re-point, want 0", len(rec.calls))
	}
}

func TestSetSongsClearsStaleSelection(t *testing.T) {
	s := New()
	s.SetSongs(testSongs())
	if err := s.SelectIndex(2); err != nil {
		t.Fatalf("SelectIndex error: %v", err)
	}

	var rec recorder
	s.OnUpdate(rec.fn)

	s.SetSongs([]core.Song{{Name: "D", URL: "d.mp3"}})

	if _, idx := s.Current(); idx != -1 {
		t.Errorf("selection after vanished song = %d, want -1", idx)
	}
	if len(rec.calls) != 1 || rec.calls[0] != nil {
		t.Errorf("OnUpdate calls = %v, want single nil call", rec.calls)
	}
}

func TestSingleSongWrapRestartsSameSong(t *testing.T) {
	s := New()
	s.SetSongs([]core.Song{{Name: "A", URL: "a.mp3"}})
	var rec recorder
	s.OnUpdate(rec.fn)

	s.Next() // selects A
	s.Next() // wraps back to A

	if len(rec.calls) != 2 {
		t.Fatalf("OnUpdate fired %d times, want 2", len(rec.calls))
	}
	for i, call := range rec.calls {
		if call == nil || call.URL != "a.mp3" {
			t.Errorf("call %d = %v, want song A", i, call)
		}
	}
}
