package config

// Default returns a Config populated with sensible defaults.
func Default() *Config {
	return &Config{
		Player: PlayerConfig{
			Volume:       100,
			PollInterval: 250,
		},
		Media: MediaConfig{
			SampleRate: 44100,
			BufferMs:   100,
		},
		Embed: EmbedConfig{
			YtdlFormat: "bestaudio",
		},
		TUI: TUIConfig{
			Theme:           "auto",
			RefreshInterval: 100,
			FocusMinutes:    25,
			BreakMinutes:    5,
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// ApplyDefaults fills in zero values with sensible defaults.
func (c *Config) ApplyDefaults() {
	d := Default()

	// Player
	if c.Player.Volume == 0 {
		c.Player.Volume = d.Player.Volume
	}
	if c.Player.PollInterval == 0 {
		c.Player.PollInterval = d.Player.PollInterval
	}

	// Media
	if c.Media.SampleRate == 0 {
		c.Media.SampleRate = d.Media.SampleRate
	}
	if c.Media.BufferMs == 0 {
		c.Media.BufferMs = d.Media.BufferMs
	}

	// Embed
	if c.Embed.YtdlFormat == "" {
		c.Embed.YtdlFormat = d.Embed.YtdlFormat
	}

	// TUI
	if c.TUI.Theme == "" {
		c.TUI.Theme = d.TUI.Theme
	}
	if c.TUI.RefreshInterval == 0 {
		c.TUI.RefreshInterval = d.TUI.RefreshInterval
	}
	if c.TUI.FocusMinutes == 0 {
		c.TUI.FocusMinutes = d.TUI.FocusMinutes
	}
	if c.TUI.BreakMinutes == 0 {
		c.TUI.BreakMinutes = d.TUI.BreakMinutes
	}

	// Log
	if c.Log.Level == "" {
		c.Log.Level = d.Log.Level
	}
}
