package components

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/driftfm/drift/internal/core"
	"github.com/driftfm/drift/internal/tui/styles"
)

// NowPlaying displays the currently playing song
type NowPlaying struct{}

// NewNowPlaying creates a new NowPlaying component
func NewNowPlaying() *NowPlaying {
	return &NowPlaying{}
}

// Render renders the now playing panel
func (n *NowPlaying) Render(state core.PlaybackState, width, height int, focused bool) string {
	title := styles.PanelTitle("Now Playing", focused)

	var content string
	if !state.HasSong() {
		content = styles.Muted.Render("Nothing playing")
	} else {
		content = n.renderSong(state, width-4)
	}

	panel := styles.Panel(focused).
		Width(width).
		Height(height)

	return panel.Render(lipgloss.JoinVertical(lipgloss.Left,
		title,
		"",
		content,
	))
}

func (n *NowPlaying) renderSong(state core.PlaybackState, width int) string {
	song := state.Song

	// Status icon and song name
	icon := styles.StatusIcon(state.Playing)
	nameStyle := styles.Title.Width(width - 4)
	name := nameStyle.Render(song.Name)

	author := styles.Subtitle.Render(song.Author)
	source := styles.Dim.Render(styles.SourceIcon(state.Kind == core.SourceEmbeddedVideo) + " " + sourceLabel(state.Kind))

	// Progress bar
	progressWidth := width - 14 // Account for times on either side
	if progressWidth < 10 {
		progressWidth = 10
	}
	progressBar := styles.ProgressBar(state.ProgressPercent(), progressWidth)
	progress := fmt.Sprintf("%s %s %s",
		FormatSeconds(state.Time),
		progressBar,
		FormatSeconds(state.Duration),
	)

	volume := styles.Muted.Render(fmt.Sprintf("🔊 %d%%", int(state.Volume*100+0.5)))

	return lipgloss.JoinVertical(lipgloss.Left,
		icon+" "+name,
		"  "+author,
		"  "+source,
		"",
		progress,
		"",
		volume,
	)
}

func sourceLabel(kind core.SourceKind) string {
	if kind == core.SourceEmbeddedVideo {
		return "video stream"
	}
	return "audio"
}

// FormatSeconds formats a position in seconds as m:ss.
func FormatSeconds(seconds float64) string {
	total := int(seconds)
	if total < 0 {
		total = 0
	}
	return fmt.Sprintf("%d:%02d", total/60, total%60)
}
