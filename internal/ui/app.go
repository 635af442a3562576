// Package ui is the front panel: a terminal stand-in for the reference
// hardware's OLED, buttons and volume knob. It polls the shared playback
// state at its own refresh cadence (there is no push contract) and turns key
// presses into transport signals and rotation events.
package ui

import (
	"context"
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"pcmdeck/api"
	"pcmdeck/internal/config"
	"pcmdeck/internal/control"
	"pcmdeck/internal/ui/components"
)

// refreshInterval is the display poll cadence.
const refreshInterval = 100 * time.Millisecond

// StateReader is the display's read-only view of the shared playback state.
type StateReader interface {
	Snapshot() api.Status
}

// TickMsg is sent periodically to refresh the panel
type TickMsg time.Time

// Model is the front panel bubbletea model
type Model struct {
	width  int
	height int

	state     StateReader
	titles    []string
	transport *control.Transport
	rotation  *control.RotationQueue
	keys      config.KeyMap

	status api.Status

	ctx    context.Context
	cancel context.CancelFunc

	// Styles
	titleStyle  lipgloss.Style
	statusStyle lipgloss.Style
	labelStyle  lipgloss.Style
	helpStyle   lipgloss.Style
	borderStyle lipgloss.Style

	progressBar components.Bar
	volumeBar   components.Bar
}

// NewModel creates a new front panel model
func NewModel(st StateReader, titles []string, tr *control.Transport, rot *control.RotationQueue, keys config.KeyMap) Model {
	ctx, cancel := context.WithCancel(context.Background())

	return Model{
		width:     80,
		height:    24,
		state:     st,
		titles:    titles,
		transport: tr,
		rotation:  rot,
		keys:      keys,
		status:    st.Snapshot(),
		ctx:       ctx,
		cancel:    cancel,
		titleStyle: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("212")).
			MarginBottom(1),
		statusStyle: lipgloss.NewStyle().
			Foreground(lipgloss.Color("214")).
			Bold(true),
		labelStyle: lipgloss.NewStyle().
			Foreground(lipgloss.Color("86")),
		helpStyle: lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")).
			MarginTop(1),
		borderStyle: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("62")).
			Padding(1, 2),
		progressBar: components.NewBar(40),
		volumeBar:   components.NewBar(20),
	}
}

// Init initializes the model
func (m Model) Init() tea.Cmd {
	return tickCmd()
}

// tickCmd returns a command that ticks at the panel refresh cadence
func tickCmd() tea.Cmd {
	return tea.Tick(refreshInterval, func(t time.Time) tea.Msg {
		return TickMsg(t)
	})
}

// Update handles messages
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case TickMsg:
		m.status = m.state.Snapshot()
		return m, tickCmd()

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", m.keys.Quit:
			m.cancel()
			return m, tea.Quit

		case m.keys.PlayPause:
			m.transport.PlayPause.Raise()

		case m.keys.Next:
			m.transport.Next.Raise()

		case m.keys.Previous:
			m.transport.Previous.Raise()

		case m.keys.VolumeUp:
			// Blocking send: the knob producer suspends while the queue is
			// full rather than dropping detents.
			m.rotation.Send(m.ctx, api.Clockwise)

		case m.keys.VolumeDown:
			m.rotation.Send(m.ctx, api.CounterClockwise)
		}
	}

	return m, nil
}

// View renders the panel
func (m Model) View() string {
	status := m.status

	title := "(no track)"
	if int(status.TrackIndex) < len(m.titles) {
		title = m.titles[status.TrackIndex]
	}

	glyph := "▶ playing"
	if !status.Playing {
		glyph = "⏸ paused"
	}

	body := lipgloss.JoinVertical(lipgloss.Left,
		m.titleStyle.Render(fmt.Sprintf("%d/%d  %s", status.TrackIndex+1, len(m.titles), title)),
		m.statusStyle.Render(glyph),
		"",
		m.labelStyle.Render("progress ")+m.progressBar.View(status.Progress)+fmt.Sprintf(" %3d%%", status.Progress),
		m.labelStyle.Render("volume   ")+m.volumeBar.View(status.Volume)+fmt.Sprintf(" %3d%%", status.Volume),
		m.helpStyle.Render(fmt.Sprintf("[%s] play/pause  [%s] next  [%s] prev  [%s/%s] volume  [%s] quit",
			keyLabel(m.keys.PlayPause), m.keys.Next, m.keys.Previous,
			m.keys.VolumeUp, m.keys.VolumeDown, m.keys.Quit)),
	)

	return m.borderStyle.Render(body)
}

// keyLabel makes the space binding readable in the help line
func keyLabel(key string) string {
	if key == " " {
		return "space"
	}
	return key
}

// Run starts the front panel and blocks until it exits
func Run(ctx context.Context, st StateReader, titles []string, tr *control.Transport, rot *control.RotationQueue, keys config.KeyMap) error {
	p := tea.NewProgram(
		NewModel(st, titles, tr, rot, keys),
		tea.WithAltScreen(),
		tea.WithContext(ctx),
	)
	_, err := p.Run()
	return err
}
