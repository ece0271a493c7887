package components

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/driftfm/drift/internal/tui/styles"
)

// blockRamp maps amplitude eighths to partial block characters.
var blockRamp = []rune(" ▁▂▃▄▅▆▇█")

// Visualizer renders frequency bins as a bar field
type Visualizer struct{}

// NewVisualizer creates a new Visualizer component
func NewVisualizer() *Visualizer {
	return &Visualizer{}
}

// Render renders the visualizer panel from a frame of frequency bins.
func (v *Visualizer) Render(bins []byte, width, height int, focused bool) string {
	title := styles.PanelTitle("Visualizer", focused)

	rows := height - 4
	if rows < 1 {
		rows = 1
	}
	cols := width - 4
	if cols < 1 {
		cols = 1
	}

	content := v.renderBars(bins, cols, rows)

	panel := styles.Panel(focused).
		Width(width).
		Height(height)

	return panel.Render(lipgloss.JoinVertical(lipgloss.Left,
		title,
		"",
		content,
	))
}

func (v *Visualizer) renderBars(bins []byte, cols, rows int) string {
	barStyle := lipgloss.NewStyle().Foreground(styles.Primary)
	peakStyle := lipgloss.NewStyle().Foreground(styles.Accent)

	lines := make([]string, rows)
	for row := 0; row < rows; row++ {
		var b strings.Builder
		for col := 0; col < cols; col++ {
			level := sampleBin(bins, col, cols)

			// Each row covers an equal slice of the 0-255 range, drawn
			// top-down. A cell is full, partial, or empty depending on
			// where the bar tip falls.
			cellTop := float64(rows-row) / float64(rows) * 255
			cellBottom := float64(rows-row-1) / float64(rows) * 255

			switch {
			case level >= cellTop:
				b.WriteRune(blockRamp[8])
			case level <= cellBottom:
				b.WriteRune(blockRamp[0])
			default:
				frac := (level - cellBottom) / (cellTop - cellBottom)
				idx := int(frac * 8)
				if idx > 8 {
					idx = 8
				}
				b.WriteRune(blockRamp[idx])
			}
		}
		style := barStyle
		if row < rows/4 {
			style = peakStyle
		}
		lines[row] = style.Render(b.String())
	}

	return strings.Join(lines, "\n")
}

// sampleBin maps a display column onto the bin array.
func sampleBin(bins []byte, col, cols int) float64 {
	if len(bins) == 0 {
		return 0
	}
	idx := col * len(bins) / cols
	if idx >= len(bins) {
		idx = len(bins) - 1
	}
	return float64(bins[idx])
}
