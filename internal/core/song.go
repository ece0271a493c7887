package core

// SourceKind indicates which backend handles a song's URL.
type SourceKind string

const (
	// SourceDirectMedia is a directly decodable audio URL or file path.
	SourceDirectMedia SourceKind = "direct-media"
	// SourceEmbeddedVideo is a video-host link played for its audio track.
	SourceEmbeddedVideo SourceKind = "embedded-video"
)

// Song represents a playable entry in the catalog.
// Identity within a playlist is the URL; there is no separate id.
type Song struct {
	Name     string `json:"name"`
	URL      string `json:"url"`
	Author   string `json:"author"`
	IsCustom bool   `json:"is_custom"`
}

// SameAs reports whether two songs refer to the same source.
func (s Song) SameAs(other Song) bool {
	return s.URL == other.URL
}

// IsZero reports whether the song is the empty value.
func (s Song) IsZero() bool {
	return s.URL == "" && s.Name == ""
}
