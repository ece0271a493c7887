package cli

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/driftfm/drift/internal/analysis"
	"github.com/driftfm/drift/internal/backend"
	"github.com/driftfm/drift/internal/backend/embed"
	"github.com/driftfm/drift/internal/backend/media"
	"github.com/driftfm/drift/internal/core"
	"github.com/driftfm/drift/internal/engine"
	"github.com/driftfm/drift/internal/queue"
	"github.com/spf13/cobra"
)

var playVolume int

var playCmd = &cobra.Command{
	Use:   "play [song]",
	Short: "Play the playlist in the foreground",
	Long: `Start playback from the catalog and follow it in the terminal.
Without arguments, playback starts at the first song. Songs may be
selected by number (from 'drift songs list') or by name.

Playback continues through the playlist, wrapping at the end, until
interrupted with Ctrl+C.

Examples:
  drift play                 # Start from the top
  drift play 3               # Start at song 3
  drift play "night rain"    # Start at the first matching name`,
	Args: cobra.MaximumNArgs(1),
	RunE: runPlay,
}

func init() {
	playCmd.Flags().IntVar(&playVolume, "volume", -1, "Initial volume (0-100, overrides config)")
	rootCmd.AddCommand(playCmd)
}

func runPlay(cmd *cobra.Command, args []string) error {
	store, err := openStore()
	if err != nil {
		return err
	}

	songs, err := store.LoadSongs()
	if err != nil {
		return fmt.Errorf("failed to load songs: %w", err)
	}
	if len(songs) == 0 {
		return fmt.Errorf("no songs in catalog. Run 'drift songs add' first")
	}

	idx := 0
	if len(args) > 0 {
		idx, err = resolveSong(songs, args[0])
		if err != nil {
			return err
		}
	}

	volume := cfg.Player.Volume
	if playVolume >= 0 {
		volume = playVolume
	}
	if volume > 100 {
		volume = 100
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

	// Set explicitly rather than through Options, whose zero value
	// means "default": --volume 0 must actually mute.
	if err := eng.SetVolume(float64(volume) / 100); err != nil {
		return fmt.Errorf("failed to set volume: %w", err)
	}

	// Feed engine events into the render loop; callbacks must not block.
	stateCh := make(chan core.PlaybackState, 16)
	timeCh := make(chan [2]float64, 16)
	eng.OnStateChange(func(s core.PlaybackState) {
		select {
		case stateCh <- s:
		default:
		}
	})
	eng.OnTimeUpdate(func(pos, dur float64) {
		select {
		case timeCh <- [2]float64{pos, dur}:
		default:
		}
	})

	// Pick up catalog edits made while playing.
	watcher, err := store.Watch(func() {
		fresh, err := store.LoadSongs()
		if err != nil {
			slog.Warn("catalog reload failed", "error", err)
			return
		}
		q.SetSongs(fresh)
	})
	if err == nil {
		defer func() { _ = watcher.Close() }()
	}

	q.SetSongs(songs)
	if err := q.SelectIndex(idx); err != nil {
		return err
	}
	if err := eng.Play(); err != nil {
		return fmt.Errorf("failed to start playback: %w", err)
	}

	// Handle Ctrl+C gracefully
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	var lastDur float64
	for {
		select {
		case s := <-stateCh:
			renderState(s)
		case t := <-timeCh:
			lastDur = t[1]
			renderProgress(t[0], lastDur)
		case <-sigCh:
			if !JSONOutput() {
				fmt.Println()
			}
			return nil
		}
	}
}

func renderState(s core.PlaybackState) {
	if JSONOutput() {
		_ = json.NewEncoder(os.Stdout).Encode(s)
		return
	}
	if !s.HasSong() {
		fmt.Println("\r⏹ Stopped")
		return
	}
	icon := "⏸"
	if s.Playing {
		icon = "▶"
	}
	fmt.Printf("\r\033[K%s %s — %s\n", icon, s.Song.Name, s.Song.Author)
}

func renderProgress(pos, dur float64) {
	if JSONOutput() {
		return
	}
	fmt.Printf("\r\033[K  %s / %s  %s",
		FormatDuration(pos),
		FormatDuration(dur),
		FormatProgress(pos, dur, 30),
	)
}

// resolveSong maps a user argument to a catalog index: a number from
// 'songs list' first, then a case-insensitive name match.
func resolveSong(songs []core.Song, arg string) (int, error) {
	if n, err := strconv.Atoi(arg); err == nil {
		if n < 1 || n > len(songs) {
			return 0, fmt.Errorf("song number %d out of range (1-%d)", n, len(songs))
		}
		return n - 1, nil
	}

	argLower := strings.ToLower(arg)
	for i, s := range songs {
		if strings.ToLower(s.Name) == argLower {
			return i, nil
		}
	}
	for i, s := range songs {
		if strings.Contains(strings.ToLower(s.Name), argLower) {
			return i, nil
		}
	}

	return 0, fmt.Errorf("song '%s' not found", arg)
}
