package source

import (
	"testing"

	"github.com/driftfm/drift/internal/core"
)

func TestClassifyWatchForm(t *testing.T) {
	kind, normalized := Classify("https://www.youtube.com/watch?v=jfKfPfyJRdk")
	if kind != core.SourceEmbeddedVideo {
		t.Errorf("kind = %q, want %q", kind, core.SourceEmbeddedVideo)
	}
	if normalized != "https://www.youtube.com/watch?v=jfKfPfyJRdk" {
		t.Errorf("normalized = %q, want canonical watch URL", normalized)
	}
}

func TestClassifyShortForm(t *testing.T) {
	kind, normalized := Classify("https://youtu.be/jfKfPfyJRdk")
	if kind != core.SourceEmbeddedVideo {
		t.Errorf("kind = %q, want %q", kind, core.SourceEmbeddedVideo)
	}
	if normalized != "https://www.youtube.com/watch?v=jfKfPfyJRdk" {
		t.Errorf("normalized = %q, want canonical watch URL", normalized)
	}
}

func TestVideoIDStableAcrossForms(t *testing.T) {
	forms := []string{
		"https://www.youtube.com/watch?v=XYZ123abc_-",
		"https://youtube.com/watch?v=XYZ123abc_-",
		"https://m.youtube.com/watch?v=XYZ123abc_-&t=42",
		"https://youtu.be/XYZ123abc_-",
		"https://youtu.be/XYZ123abc_-?t=42",
	}
	for _, f := range forms {
		id, ok := VideoID(f)
		if !ok {
			t.Errorf("VideoID(%q) not recognized", f)
			continue
		}
		if id != "XYZ123abc_-" {
			t.Errorf("VideoID(%q) = %q, want %q", f, id, "XYZ123abc_-")
		}
	}
}

func TestClassifyDirectMedia(t *testing.T) {
	urls := []string{
		"https://example.com/song.mp3",
		"https://cdn.example.org/streams/lofi.ogg",
		"file:///home/u/music/a.flac",
		"a.mp3",
	}
	for _, u := range urls {
		kind, normalized := Classify(u)
		if kind != core.SourceDirectMedia {
			t.Errorf("Classify(%q) kind = %q, want %q", u, kind, core.SourceDirectMedia)
		}
		if normalized != u {
			t.Errorf("Classify(%q) normalized = %q, want unchanged", u, normalized)
		}
	}
}

func TestClassifyUnrecognizedDefaultsSafely(t *testing.T) {
	// Video-host lookalikes that don't carry a valid id must not be
	// treated as embedded video.
	urls := []string{
		"https://www.youtube.com/watch",
		"https://www.youtube.com/watch?v=",
		"https://www.youtube.com/playlist?list=PL123",
		"https://youtu.be/",
		"https://notyoutube.com/watch?v=abc123",
		"://bad url",
	}
	for _, u := range urls {
		kind, _ := Classify(u)
		if kind != core.SourceDirectMedia {
			t.Errorf("Classify(%q) kind = %q, want default %q", u, kind, core.SourceDirectMedia)
		}
	}
}
