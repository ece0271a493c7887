package config

// Config is the root configuration structure.
type Config struct {
	Player  PlayerConfig  `toml:"player"`
	Media   MediaConfig   `toml:"media"`
	Embed   EmbedConfig   `toml:"embed"`
	Catalog CatalogConfig `toml:"catalog"`
	TUI     TUIConfig     `toml:"tui"`
	Log     LogConfig     `toml:"log"`
}

// PlayerConfig holds engine-level playback settings.
type PlayerConfig struct {
	// Volume is the initial volume (0-100).
	Volume int `toml:"volume"`
	// PollInterval is the progress poll period in milliseconds, used
	// for backends without native time events.
	PollInterval int `toml:"poll_interval"`
}

// MediaConfig holds direct-media backend settings.
type MediaConfig struct {
	SampleRate int `toml:"sample_rate"`
	// BufferMs is the speaker buffer length in milliseconds.
	BufferMs int `toml:"buffer_ms"`
}

// EmbedConfig holds embedded-video backend settings.
type EmbedConfig struct {
	// YtdlFormat selects the stream format requested from the video
	// host, e.g. "bestaudio".
	YtdlFormat string `toml:"ytdl_format"`
}

// CatalogConfig holds song catalog settings.
type CatalogConfig struct {
	// Path overrides the custom-songs file location.
	Path string `toml:"path"`
}

// TUIConfig holds terminal UI settings.
type TUIConfig struct {
	Theme           string `toml:"theme"`
	RefreshInterval int    `toml:"refresh_interval"`
	// FocusMinutes and BreakMinutes configure the focus timer.
	FocusMinutes int `toml:"focus_minutes"`
	BreakMinutes int `toml:"break_minutes"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level string `toml:"level"`
	File  string `toml:"file"`
}
