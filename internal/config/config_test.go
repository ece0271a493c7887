package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestApplyDefaults(t *testing.T) {
	cfg := &Config{}
	cfg.ApplyDefaults()

	if cfg.Player.Volume != 100 {
		t.Errorf("Player.Volume = %d, want 100", cfg.Player.Volume)
	}
	if cfg.Player.PollInterval != 250 {
		t.Errorf("Player.PollInterval = %d, want 250", cfg.Player.PollInterval)
	}
	if cfg.Embed.YtdlFormat != "bestaudio" {
		t.Errorf("Embed.YtdlFormat = %q, want %q", cfg.Embed.YtdlFormat, "bestaudio")
	}
	if cfg.Log.Level != "info" {
		t.Errorf("Log.Level = %q, want %q", cfg.Log.Level, "info")
	}
}

func TestApplyDefaultsKeepsExplicitValues(t *testing.T) {
	cfg := &Config{}
	cfg.Player.Volume = 40
	cfg.TUI.Theme = "dark"
	cfg.ApplyDefaults()

	if cfg.Player.Volume != 40 {
		t.Errorf("Player.Volume = %d, want 40", cfg.Player.Volume)
	}
	if cfg.TUI.Theme != "dark" {
		t.Errorf("TUI.Theme = %q, want %q", cfg.TUI.Theme, "dark")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"defaults valid", func(c *Config) {}, false},
		{"volume too high", func(c *Config) { c.Player.Volume = 150 }, true},
		{"negative poll interval", func(c *Config) { c.Player.PollInterval = -1 }, true},
		{"bad theme", func(c *Config) { c.TUI.Theme = "neon" }, true},
		{"bad log level", func(c *Config) { c.Log.Level = "loud" }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("DRIFT_PLAYER_VOLUME", "30")
	t.Setenv("DRIFT_EMBED_YTDL_FORMAT", "worstaudio")
	t.Setenv("DRIFT_LOG_LEVEL", "debug")

	cfg := Default()
	applyEnvOverrides(cfg)

	if cfg.Player.Volume != 30 {
		t.Errorf("Player.Volume = %d, want 30", cfg.Player.Volume)
	}
	if cfg.Embed.YtdlFormat != "worstaudio" {
		t.Errorf("Embed.YtdlFormat = %q, want %q", cfg.Embed.YtdlFormat, "worstaudio")
	}
	if cfg.Log.Level != "debug" {
		t.Errorf("Log.Level = %q, want %q", cfg.Log.Level, "debug")
	}
}

func TestLoadFrom(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	content := `
[player]
volume = 55

[tui]
theme = "dark"
`
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("LoadFrom() error = %v", err)
	}

	if cfg.Player.Volume != 55 {
		t.Errorf("Player.Volume = %d, want 55", cfg.Player.Volume)
	}
	if cfg.TUI.Theme != "dark" {
		t.Errorf("TUI.Theme = %q, want %q", cfg.TUI.Theme, "dark")
	}
	// Unset fields fall back to defaults
	if cfg.Player.PollInterval != 250 {
		t.Errorf("Player.PollInterval = %d, want 250", cfg.Player.PollInterval)
	}
}
