package cli

import (
	"fmt"
	"time"

	"github.com/driftfm/drift/internal/analysis"
	"github.com/driftfm/drift/internal/backend"
	"github.com/driftfm/drift/internal/backend/embed"
	"github.com/driftfm/drift/internal/backend/media"
	"github.com/driftfm/drift/internal/engine"
	"github.com/driftfm/drift/internal/queue"
	"github.com/driftfm/drift/internal/tui"
	"github.com/spf13/cobra"
)

var tuiRefresh int

var tuiCmd = &cobra.Command{
	Use:     "ui",
	Aliases: []string{"tui"},
	Short:   "Launch the interactive player",
	Long: `Launch the interactive terminal player.

The player provides:
  • Now Playing - current song, progress, volume
  • Playlist - built-in and custom songs
  • Visualizer - live frequency display
  • Focus Timer - work/break intervals

Keyboard shortcuts:
  q, Ctrl+C    Quit
  Space        Play/Pause
  n            Next song
  p            Previous song
  +/-          Volume up/down
  a            Add a song
  f            Start/stop focus timer
  Tab          Switch panel`,
	RunE: runTUI,
}

func init() {
	tuiCmd.Flags().IntVar(&tuiRefresh, "refresh", 0, "Refresh interval in milliseconds (overrides config)")
	rootCmd.AddCommand(tuiCmd)
}

func runTUI(cmd *cobra.Command, args []string) error {
	store, err := openStore()
	if err != nil {
		return err
	}

	sink := analysis.NewSink(analysis.DefaultBins)
	q := queue.New()

	eng := engine.New(q, sink, engine.Options{
		Media: media.New(sink, cfg.Media.SampleRate, time.Duration(cfg.Media.BufferMs)*time.Millisecond),
		NewEmbed: func() (backend.Backend, error) {
			return embed.New(embed.Options{YtdlFormat: cfg.Embed.YtdlFormat})
		},
		PollInterval: time.Duration(cfg.Player.PollInterval) * time.Millisecond,
	})
	defer func() { _ = eng.Close() }()

	if err := eng.SetVolume(float64(cfg.Player.Volume) / 100); err != nil {
		return fmt.Errorf("failed to set volume: %w", err)
	}

	refresh := cfg.TUI.RefreshInterval
	if tuiRefresh > 0 {
		refresh = tuiRefresh
	}

	err = tui.Run(tui.Options{
		Engine:  eng,
		Store:   store,
		Theme:   cfg.TUI.Theme,
		Refresh: time.Duration(refresh) * time.Millisecond,
		Focus:   time.Duration(cfg.TUI.FocusMinutes) * time.Minute,
		Break:   time.Duration(cfg.TUI.BreakMinutes) * time.Minute,
	})
	if err != nil {
		return fmt.Errorf("ui error: %w", err)
	}
	return nil
}
