package styles

import "github.com/charmbracelet/lipgloss"

// Colors - a muted lo-fi palette
var (
	// Primary colors
	Primary   = lipgloss.Color("#8B5CF6") // Violet
	Secondary = lipgloss.Color("#34D399") // Mint
	Accent    = lipgloss.Color("#F472B6") // Pink

	// Status colors
	Success = lipgloss.Color("#34D399") // Mint
	Warning = lipgloss.Color("#FBBF24") // Amber
	Error   = lipgloss.Color("#F87171") // Red

	// Neutral colors
	Border    = lipgloss.Color("#4B5563") // Light gray
	Text      = lipgloss.Color("#F9FAFB") // White
	TextMuted = lipgloss.Color("#9CA3AF") // Gray
	TextDim   = lipgloss.Color("#6B7280") // Darker gray
)

// ApplyTheme adjusts the palette for the terminal background.
func ApplyTheme(theme string) {
	if theme == "light" {
		Text = lipgloss.Color("#111827")
		TextMuted = lipgloss.Color("#4B5563")
		TextDim = lipgloss.Color("#6B7280")
		Border = lipgloss.Color("#D1D5DB")
		rebuild()
	}
}

// Text styles
var (
	Title = lipgloss.NewStyle().
		Bold(true).
		Foreground(Text)

	Subtitle = lipgloss.NewStyle().
			Foreground(TextMuted)

	Label = lipgloss.NewStyle().
		Foreground(TextDim)

	Highlight = lipgloss.NewStyle().
			Bold(true).
			Foreground(Primary)

	Muted = lipgloss.NewStyle().
		Foreground(TextMuted)

	Dim = lipgloss.NewStyle().
		Foreground(TextDim)

	Playing = lipgloss.NewStyle().
		Foreground(Secondary)

	Paused = lipgloss.NewStyle().
		Foreground(Warning)

	ErrorText = lipgloss.NewStyle().
			Foreground(Error)
)

// Border styles
var (
	BorderStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(Border)

	FocusedBorder = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(Primary)
)

func rebuild() {
	Title = Title.Foreground(Text)
	Subtitle = Subtitle.Foreground(TextMuted)
	Label = Label.Foreground(TextDim)
	Muted = Muted.Foreground(TextMuted)
	Dim = Dim.Foreground(TextDim)
	BorderStyle = BorderStyle.BorderForeground(Border)
}

// Panel creates a styled panel with optional focus
func Panel(focused bool) lipgloss.Style {
	if focused {
		return FocusedBorder.Padding(0, 1)
	}
	return BorderStyle.Padding(0, 1)
}

// PanelTitle creates a styled panel title
func PanelTitle(title string, focused bool) string {
	style := Label
	if focused {
		style = Highlight
	}
	return style.Render(" " + title + " ")
}

// ProgressBar creates a progress bar string
func ProgressBar(percent float64, width int) string {
	filled := int(percent / 100 * float64(width))
	if filled > width {
		filled = width
	}
	if filled < 0 {
		filled = 0
	}

	filledStyle := lipgloss.NewStyle().Foreground(Primary)
	emptyStyle := lipgloss.NewStyle().Foreground(Border)

	return filledStyle.Render(Repeat("━", filled)) +
		emptyStyle.Render(Repeat("─", width-filled))
}

// StatusIcon returns an icon for playback status
func StatusIcon(playing bool) string {
	if playing {
		return Playing.Render("▶")
	}
	return Paused.Render("⏸")
}

// SourceIcon returns an icon for a song source
func SourceIcon(embedded bool) string {
	if embedded {
		return "📺"
	}
	return "🎵"
}

// Repeat repeats a string n times
func Repeat(s string, n int) string {
	result := ""
	for i := 0; i < n; i++ {
		result += s
	}
	return result
}
