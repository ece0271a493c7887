package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/driftfm/drift/internal/catalog"
	"github.com/driftfm/drift/internal/core"
	"github.com/driftfm/drift/internal/engine"
	"github.com/driftfm/drift/internal/tui/components"
	"github.com/driftfm/drift/internal/tui/styles"
)

// Panel represents which panel is focused
type Panel int

const (
	PanelPlaylist Panel = iota
	PanelTimer
)

const panelCount = 2

// Options configures the TUI.
type Options struct {
	Engine  *engine.Engine
	Store   *catalog.Store
	Theme   string
	Refresh time.Duration
	Focus   time.Duration
	Break   time.Duration
}

// Model is the main TUI model
type Model struct {
	opts         Options
	width        int
	height       int
	focusedPanel Panel

	// State
	state core.PlaybackState
	songs []core.Song

	// Components
	nowPlaying *components.NowPlaying
	playlist   *components.Playlist
	visualizer *components.Visualizer
	timer      *components.Timer

	// Overlays
	showHelp bool

	// Add-song form state
	showAdd   bool
	nameInput textinput.Model
	urlInput  textinput.Model
	addField  int
	addErr    error

	// Error handling
	lastError   error
	errorExpiry time.Time

	// Quit flag
	quitting bool
}

// NewModel creates a new TUI model
func NewModel(opts Options) Model {
	name := textinput.New()
	name.Placeholder = "Song name"
	name.CharLimit = 100
	name.Width = 40

	url := textinput.New()
	url.Placeholder = "https://..."
	url.CharLimit = 500
	url.Width = 40

	return Model{
		opts:       opts,
		nowPlaying: components.NewNowPlaying(),
		playlist:   components.NewPlaylist(),
		visualizer: components.NewVisualizer(),
		timer:      components.NewTimer(opts.Focus, opts.Break),
		nameInput:  name,
		urlInput:   url,
	}
}

// Messages
type tickMsg time.Time
type stateMsg core.PlaybackState
type timeMsg struct{ pos, dur float64 }
type songsMsg []core.Song
type errMsg error

// Commands
func (m Model) tick() tea.Cmd {
	return tea.Tick(m.opts.Refresh, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (m Model) loadSongs() tea.Cmd {
	return func() tea.Msg {
		songs, err := m.opts.Store.LoadSongs()
		if err != nil {
			return errMsg(err)
		}
		return songsMsg(songs)
	}
}

// Init initializes the model
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		m.tick(),
		m.loadSongs(),
	)
}

// Update handles messages
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKeyPress(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tickMsg:
		if time.Now().After(m.errorExpiry) {
			m.lastError = nil
		}
		m.timer.Advance(time.Time(msg))
		return m, m.tick()

	case stateMsg:
		m.state = core.PlaybackState(msg)
		return m, nil

	case timeMsg:
		m.state.Time = msg.pos
		if msg.dur > 0 {
			m.state.Duration = msg.dur
		}
		return m, nil

	case songsMsg:
		m.songs = msg
		m.opts.Engine.Queue().SetSongs(msg)
		return m, nil

	case errMsg:
		m.lastError = msg
		m.errorExpiry = time.Now().Add(5 * time.Second)
		return m, nil
	}

	// Forward other messages to the inputs when the form is open
	if m.showAdd {
		return m.updateAddInputs(msg)
	}

	return m, nil
}

func (m Model) handleKeyPress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	// Global keys (always work)
	if msg.String() == "ctrl+c" {
		m.quitting = true
		return m, tea.Quit
	}

	// Help overlay
	if m.showHelp {
		switch msg.String() {
		case "?", "esc", "q":
			m.showHelp = false
		}
		return m, nil
	}

	// Add-song overlay
	if m.showAdd {
		return m.handleAddKeyPress(msg)
	}

	// Normal mode
	switch msg.String() {
	case "q":
		m.quitting = true
		return m, tea.Quit

	case "?":
		m.showHelp = true
		return m, nil

	case "a":
		m.showAdd = true
		m.addErr = nil
		m.addField = 0
		m.nameInput.SetValue("")
		m.urlInput.SetValue("")
		m.urlInput.Blur()
		m.nameInput.Focus()
		return m, textinput.Blink

	case "f":
		m.timer.Toggle()
		return m, nil

	case "tab":
		m.focusedPanel = (m.focusedPanel + 1) % panelCount
		return m, nil

	case "shift+tab":
		m.focusedPanel = (m.focusedPanel + panelCount - 1) % panelCount
		return m, nil
	}

	// Playback controls
	switch msg.String() {
	case " ":
		return m, m.togglePlayPause()
	case "n":
		return m, m.nextSong()
	case "p":
		return m, m.prevSong()
	case "+", "=":
		return m, m.volumeBy(0.05)
	case "-":
		return m, m.volumeBy(-0.05)
	}

	// Panel-specific keys
	if m.focusedPanel == PanelPlaylist {
		switch msg.String() {
		case "j", "down":
			m.playlist.CursorDown(len(m.songs))
		case "k", "up":
			m.playlist.CursorUp()
		case "enter":
			return m, m.selectSong(m.playlist.Cursor())
		}
	}

	return m, nil
}

func (m Model) handleAddKeyPress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.showAdd = false
		m.nameInput.Blur()
		m.urlInput.Blur()
		return m, nil

	case "tab", "shift+tab":
		m.addField = 1 - m.addField
		if m.addField == 0 {
			m.urlInput.Blur()
			m.nameInput.Focus()
		} else {
			m.nameInput.Blur()
			m.urlInput.Focus()
		}
		return m, textinput.Blink

	case "enter":
		if m.addField == 0 {
			m.addField = 1
			m.nameInput.Blur()
			m.urlInput.Focus()
			return m, textinput.Blink
		}
		return m.submitAdd()
	}

	return m.updateAddInputs(msg)
}

func (m Model) updateAddInputs(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	if m.addField == 0 {
		m.nameInput, cmd = m.nameInput.Update(msg)
	} else {
		m.urlInput, cmd = m.urlInput.Update(msg)
	}
	return m, cmd
}

func (m Model) submitAdd() (tea.Model, tea.Cmd) {
	song, err := catalog.NewSong(m.nameInput.Value(), m.urlInput.Value())
	if err != nil {
		m.addErr = err
		return m, nil
	}

	m.showAdd = false
	m.nameInput.Blur()
	m.urlInput.Blur()

	return m, func() tea.Msg {
		custom, err := m.opts.Store.CustomSongs()
		if err != nil {
			return errMsg(err)
		}
		for _, s := range custom {
			if s.SameAs(song) {
				return errMsg(fmt.Errorf("song with URL %s already exists", song.URL))
			}
		}
		custom = append(custom, song)
		if err := m.opts.Store.SaveCustomSongs(custom); err != nil {
			return errMsg(err)
		}
		songs, err := m.opts.Store.LoadSongs()
		if err != nil {
			return errMsg(err)
		}
		return songsMsg(songs)
	}
}

func (m Model) togglePlayPause() tea.Cmd {
	eng := m.opts.Engine
	return func() tea.Msg {
		var err error
		if eng.Paused() {
			err = eng.Play()
		} else {
			err = eng.Pause()
		}
		if err != nil {
			return errMsg(err)
		}
		return nil
	}
}

func (m Model) nextSong() tea.Cmd {
	eng := m.opts.Engine
	return func() tea.Msg {
		eng.Queue().Next()
		return nil
	}
}

func (m Model) prevSong() tea.Cmd {
	eng := m.opts.Engine
	return func() tea.Msg {
		eng.Queue().Previous()
		return nil
	}
}

func (m Model) selectSong(idx int) tea.Cmd {
	eng := m.opts.Engine
	return func() tea.Msg {
		if err := eng.Queue().SelectIndex(idx); err != nil {
			return errMsg(err)
		}
		if err := eng.Play(); err != nil {
			return errMsg(err)
		}
		return nil
	}
}

func (m Model) volumeBy(delta float64) tea.Cmd {
	eng := m.opts.Engine
	return func() tea.Msg {
		if err := eng.SetVolume(eng.Volume() + delta); err != nil {
			return errMsg(err)
		}
		return stateMsg(eng.State())
	}
}

// View renders the UI
func (m Model) View() string {
	if m.quitting {
		return ""
	}

	if m.width == 0 {
		return "Loading..."
	}

	if m.showHelp {
		return m.renderHelp()
	}

	if m.showAdd {
		return m.renderAddForm()
	}

	// Main layout: two columns
	// Left: Now Playing (top), Playlist (bottom)
	// Right: Visualizer (top), Focus Timer (bottom)

	leftWidth := m.width * 55 / 100
	rightWidth := m.width - leftWidth - 2
	topHeight := m.height * 45 / 100
	bottomHeight := m.height - topHeight - 2

	_, current := m.opts.Engine.Queue().Current()
	bins := m.opts.Engine.Sink().Snapshot()

	nowPlaying := m.nowPlaying.Render(m.state, leftWidth-2, topHeight-2, false)
	playlist := m.playlist.Render(m.songs, current, leftWidth-2, bottomHeight-2, m.focusedPanel == PanelPlaylist)
	visualizer := m.visualizer.Render(bins, rightWidth-2, topHeight-2, false)
	timer := m.timer.Render(time.Now(), rightWidth-2, bottomHeight-2, m.focusedPanel == PanelTimer)

	leftCol := lipgloss.JoinVertical(lipgloss.Left, nowPlaying, playlist)
	rightCol := lipgloss.JoinVertical(lipgloss.Left, visualizer, timer)

	main := lipgloss.JoinHorizontal(lipgloss.Top, leftCol, rightCol)

	statusBar := m.renderStatusBar()

	return lipgloss.JoinVertical(lipgloss.Left, main, statusBar)
}

func (m Model) renderStatusBar() string {
	status := styles.Dim.Render("q:quit  ?:help  space:play/pause  n:next  p:prev  +/-:volume  a:add  f:timer  tab:switch panel")

	if m.lastError != nil {
		status = styles.ErrorText.Render("Error: " + m.lastError.Error())
	}

	return lipgloss.NewStyle().
		Width(m.width).
		Padding(0, 1).
		Render(status)
}

func (m Model) renderHelp() string {
	title := "Drift - Keyboard Shortcuts"
	divider := styles.Repeat("═", len(title))

	help := `
  ` + title + `
  ` + divider + `

  Global
  ──────
  q, Ctrl+C    Quit
  ?            Toggle help
  Tab          Next panel
  Shift+Tab    Previous panel

  Playback
  ────────
  Space        Play/Pause
  n            Next song
  p            Previous song
  +/=          Volume up
  -            Volume down

  Playlist Panel
  ──────────────
  j/↓          Cursor down
  k/↑          Cursor up
  Enter        Play selected

  Other
  ─────
  a            Add a song
  f            Start/stop focus timer

  Press ? or Esc to close
`

	return lipgloss.NewStyle().
		Width(m.width).
		Height(m.height).
		Align(lipgloss.Center, lipgloss.Center).
		Render(styles.BorderStyle.Render(help))
}

func (m Model) renderAddForm() string {
	var b strings.Builder

	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(styles.Primary)
	b.WriteString(titleStyle.Render("Add Song"))
	b.WriteString("\n\n")

	b.WriteString(m.nameInput.View())
	b.WriteString("\n\n")
	b.WriteString(m.urlInput.View())
	b.WriteString("\n\n")

	if m.addErr != nil {
		b.WriteString(styles.ErrorText.Render(m.addErr.Error()))
		b.WriteString("\n\n")
	}

	b.WriteString(styles.Dim.Render("Tab:switch field  Enter:save  Esc:cancel"))

	content := lipgloss.NewStyle().
		Width(50).
		Padding(1, 2).
		Render(b.String())

	return lipgloss.NewStyle().
		Width(m.width).
		Height(m.height).
		Align(lipgloss.Center, lipgloss.Center).
		Render(styles.FocusedBorder.Render(content))
}

// Run starts the TUI application
func Run(opts Options) error {
	if opts.Refresh <= 0 {
		opts.Refresh = 100 * time.Millisecond
	}
	styles.ApplyTheme(opts.Theme)

	model := NewModel(opts)
	p := tea.NewProgram(model, tea.WithAltScreen())

	// Engine callbacks feed the update loop.
	opts.Engine.OnStateChange(func(s core.PlaybackState) {
		p.Send(stateMsg(s))
	})
	opts.Engine.OnTimeUpdate(func(pos, dur float64) {
		p.Send(timeMsg{pos: pos, dur: dur})
	})

	// Pick up catalog edits made outside the UI.
	watcher, err := opts.Store.Watch(func() {
		songs, err := opts.Store.LoadSongs()
		if err != nil {
			p.Send(errMsg(err))
			return
		}
		p.Send(songsMsg(songs))
	})
	if err == nil {
		defer func() { _ = watcher.Close() }()
	}

	_, err = p.Run()

	opts.Engine.OnStateChange(nil)
	opts.Engine.OnTimeUpdate(nil)
	return err
}
