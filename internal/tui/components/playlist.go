package components

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/driftfm/drift/internal/core"
	"github.com/driftfm/drift/internal/tui/styles"
)

// Playlist displays the song list with a movable cursor
type Playlist struct {
	cursor int
	offset int
}

// NewPlaylist creates a new Playlist component
func NewPlaylist() *Playlist {
	return &Playlist{}
}

// CursorDown moves the cursor down
func (p *Playlist) CursorDown(count int) {
	if p.cursor < count-1 {
		p.cursor++
	}
}

// CursorUp moves the cursor up
func (p *Playlist) CursorUp() {
	if p.cursor > 0 {
		p.cursor--
	}
}

// Cursor returns the cursor index
func (p *Playlist) Cursor() int {
	return p.cursor
}

// Render renders the playlist panel
func (p *Playlist) Render(songs []core.Song, current, width, height int, focused bool) string {
	title := styles.PanelTitle("Playlist", focused)

	var content string
	if len(songs) == 0 {
		content = styles.Muted.Render("No songs. Press 'a' to add one.")
	} else {
		content = p.renderSongs(songs, current, width-4, height-4, focused)
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

func (p *Playlist) renderSongs(songs []core.Song, current, width, maxLines int, focused bool) string {
	if p.cursor >= len(songs) {
		p.cursor = len(songs) - 1
	}

	// Keep the cursor visible
	visibleCount := maxLines - 1 // Leave room for "more" indicator
	if visibleCount < 1 {
		visibleCount = 1
	}
	if p.cursor < p.offset {
		p.offset = p.cursor
	}
	if p.cursor >= p.offset+visibleCount {
		p.offset = p.cursor - visibleCount + 1
	}

	start := p.offset
	end := start + visibleCount
	if end > len(songs) {
		end = len(songs)
	}

	lines := make([]string, 0, end-start+1)

	// Fixed overhead: "XX. " (4) + marker (2) + " — " (3) = 9 chars
	const overhead = 9

	for i := start; i < end; i++ {
		song := songs[i]

		num := fmt.Sprintf("%2d.", i+1)

		available := width - overhead
		name := song.Name
		author := song.Author
		if len(name)+len(author) > available {
			authorSpace := available / 3
			if authorSpace > len(author) {
				authorSpace = len(author)
			}
			name = truncate(name, available-authorSpace)
			author = truncate(author, authorSpace)
		}

		marker := "  "
		if i == current {
			marker = "▶ "
		}

		var line string
		switch {
		case i == current:
			line = styles.Playing.Render(fmt.Sprintf("%s %s%s — %s", num, marker, name, author))
		default:
			line = fmt.Sprintf("%s %s%s — %s",
				styles.Dim.Render(num),
				marker,
				name,
				styles.Muted.Render(author))
		}

		if focused && i == p.cursor {
			line = lipgloss.NewStyle().Background(lipgloss.Color("237")).Render("> ") + line
		} else {
			line = "  " + line
		}

		lines = append(lines, line)
	}

	// Show "more" indicator
	if end < len(songs) {
		more := styles.Dim.Render(fmt.Sprintf("    ... and %d more", len(songs)-end))
		lines = append(lines, more)
	}

	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func truncate(s string, max int) string {
	if max <= 0 {
		return ""
	}
	if len(s) <= max {
		return s
	}
	if max <= 3 {
		return s[:max]
	}
	return s[:max-3] + "..."
}
