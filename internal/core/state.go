package core

// PlaybackState is a snapshot of the engine's observable state.
// It is derived, never stored: the engine is the single source of truth
// and exactly one backend contributes to it at a time.
type PlaybackState struct {
	Song     *Song      `json:"song"`
	Kind     SourceKind `json:"kind"`
	Playing  bool       `json:"playing"`
	Time     float64    `json:"time"`     // seconds
	Duration float64    `json:"duration"` // seconds
	Volume   float64    `json:"volume"`   // 0.0 to 1.0
}

// HasSong returns true if a song is loaded.
func (s *PlaybackState) HasSong() bool {
	return s != nil && s.Song != nil
}

// ProgressPercent returns playback progress as a percentage (0-100).
func (s *PlaybackState) ProgressPercent() float64 {
	if s == nil || s.Duration == 0 {
		return 0
	}
	return s.Time / s.Duration * 100
}
