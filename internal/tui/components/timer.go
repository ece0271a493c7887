package components

import (
	"fmt"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/driftfm/drift/internal/tui/styles"
	"github.com/dustin/go-humanize"
)

// TimerPhase is the focus timer state
type TimerPhase int

const (
	PhaseIdle TimerPhase = iota
	PhaseFocus
	PhaseBreak
)

// Timer is a focus/break interval timer
type Timer struct {
	phase    TimerPhase
	deadline time.Time
	focus    time.Duration
	rest     time.Duration
	rounds   int
}

// NewTimer creates a timer with the given focus and break lengths.
func NewTimer(focus, rest time.Duration) *Timer {
	return &Timer{
		focus: focus,
		rest:  rest,
	}
}

// Toggle starts the timer when idle and stops it otherwise.
func (t *Timer) Toggle() {
	if t.phase == PhaseIdle {
		t.phase = PhaseFocus
		t.deadline = time.Now().Add(t.focus)
		return
	}
	t.phase = PhaseIdle
}

// Running reports whether the timer is active.
func (t *Timer) Running() bool {
	return t.phase != PhaseIdle
}

// Advance rolls the timer into the next phase when the deadline has
// passed, and reports whether a phase change happened.
func (t *Timer) Advance(now time.Time) bool {
	if t.phase == PhaseIdle || now.Before(t.deadline) {
		return false
	}
	switch t.phase {
	case PhaseFocus:
		t.phase = PhaseBreak
		t.deadline = now.Add(t.rest)
		t.rounds++
	case PhaseBreak:
		t.phase = PhaseFocus
		t.deadline = now.Add(t.focus)
	}
	return true
}

// Phase returns the current phase.
func (t *Timer) Phase() TimerPhase {
	return t.phase
}

// Render renders the timer panel
func (t *Timer) Render(now time.Time, width, height int, focused bool) string {
	title := styles.PanelTitle("Focus Timer", focused)

	var content string
	switch t.phase {
	case PhaseIdle:
		content = styles.Muted.Render("Press 'f' to start a focus session")
	default:
		content = t.renderActive(now)
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

func (t *Timer) renderActive(now time.Time) string {
	remaining := t.deadline.Sub(now)
	if remaining < 0 {
		remaining = 0
	}

	label := styles.Playing.Render("● Focus")
	if t.phase == PhaseBreak {
		label = styles.Paused.Render("● Break")
	}

	clock := styles.Title.Render(fmt.Sprintf("%02d:%02d",
		int(remaining.Minutes()),
		int(remaining.Seconds())%60,
	))

	next := styles.Dim.Render("ends " + humanize.Time(t.deadline))

	rounds := ""
	if t.rounds > 0 {
		rounds = styles.Muted.Render(fmt.Sprintf("%d focus rounds done", t.rounds))
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		label,
		"",
		clock,
		next,
		rounds,
	)
}
