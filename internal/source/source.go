// Package source classifies song URLs into backend kinds.
//
// Classification is derived from the URL alone and is deterministic:
// the kind is never persisted on the song, so the same URL must always
// classify the same way.
package source

import (
	"net/url"
	"strings"

	"github.com/driftfm/drift/internal/core"
)

// watchURL is the canonical form embedded-video URLs are normalized to.
const watchURL = "https://www.youtube.com/watch?v="

// Classify determines which backend handles the URL and returns the
// normalized URL the backend should load. Video-host links are
// canonicalized to the long watch form; anything unrecognized defaults
// to direct media rather than failing.
func Classify(rawURL string) (core.SourceKind, string) {
	if id, ok := VideoID(rawURL); ok {
		return core.SourceEmbeddedVideo, watchURL + id
	}
	return core.SourceDirectMedia, rawURL
}

// VideoID extracts the video id from a video-host URL. It accepts both
// the long watch form (.../watch?v=<id>) and the short-link form
// (youtu.be/<id>), returning false for anything else.
func VideoID(rawURL string) (string, bool) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", false
	}

	host := strings.TrimPrefix(strings.ToLower(u.Hostname()), "www.")
	switch {
	case host == "youtube.com" || strings.HasSuffix(host, ".youtube.com"):
		if u.Path != "/watch" {
			return "", false
		}
		id := u.Query().Get("v")
		if !validID(id) {
			return "", false
		}
		return id, true
	case host == "youtu.be":
		id := strings.Trim(u.Path, "/")
		if i := strings.IndexByte(id, '/'); i >= 0 {
			id = id[:i]
		}
		if !validID(id) {
			return "", false
		}
		return id, true
	}

	return "", false
}

// validID checks that the id looks like a video id: non-empty and made
// of the URL-safe base64 alphabet video hosts use.
func validID(id string) bool {
	if id == "" {
		return false
	}
	for _, r := range id {
		switch {
		case r >= 'a' && r <= 'z':
		case r >= 'A' && r <= 'Z':
		case r >= '0' && r <= '9':
		case r == '-' || r == '_':
		default:
			return false
		}
	}
	return true
}
