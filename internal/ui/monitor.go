package ui

import (
	"fmt"
	"maps"
	"slices"
	"strings"
	"time"

	"github.com/bnema/wayime/internal/ipc"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// StatusSource is what the monitor polls, usually an *ipc.Client.
type StatusSource interface {
	SendStatus() (*ipc.StatusResponse, error)
	SendRelease() (bool, error)
}

type statusMsg struct {
	status *ipc.StatusResponse
	err    error
	poll   bool
}

type pollMsg struct{}

type releaseMsg struct {
	released bool
	err      error
}

// MonitorModel is the Bubble Tea model of the live status view
type MonitorModel struct {
	source   StatusSource
	interval time.Duration

	statusBar *StatusBar
	controls  *ControlsHelp

	status   *ipc.StatusResponse
	err      error
	notice   string
	width    int
	quitting bool
}

// NewMonitorModel creates a monitor polling source every interval.
func NewMonitorModel(source StatusSource, interval time.Duration) *MonitorModel {
	statusBar := NewStatusBar("wayime monitor")
	statusBar.Status = "Connecting..."

	return &MonitorModel{
		source:    source,
		interval:  interval,
		statusBar: statusBar,
		controls: &ControlsHelp{
			Controls: []Control{
				{Key: "q", Desc: "Quit"},
				{Key: "r", Desc: "Refresh"},
				{Key: "x", Desc: "Release keyboard grab"},
			},
		},
	}
}

// Init implements tea.Model
func (m *MonitorModel) Init() tea.Cmd {
	return tea.Batch(m.statusBar.Init(), m.fetch(true))
}

func (m *MonitorModel) fetch(poll bool) tea.Cmd {
	return func() tea.Msg {
		st, err := m.source.SendStatus()
		return statusMsg{status: st, err: err, poll: poll}
	}
}

func (m *MonitorModel) release() tea.Cmd {
	return func() tea.Msg {
		released, err := m.source.SendRelease()
		return releaseMsg{released: released, err: err}
	}
}

// Update implements tea.Model
func (m *MonitorModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			m.quitting = true
			return m, tea.Quit
		case "r":
			return m, m.fetch(false)
		case "x":
			return m, m.release()
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.controls.Width = msg.Width

	case statusMsg:
		m.status, m.err = msg.status, msg.err
		if msg.err != nil {
			m.statusBar.Active = false
			m.statusBar.Status = "Server unreachable"
		} else {
			m.statusBar.Active = true
			m.statusBar.Status = fmt.Sprintf("Serving %s", msg.status.Seat)
		}
		if msg.poll {
			return m, tea.Tick(m.interval, func(time.Time) tea.Msg { return pollMsg{} })
		}
		return m, nil

	case pollMsg:
		return m, m.fetch(true)

	case releaseMsg:
		switch {
		case msg.err != nil:
			m.notice = ErrorStyle.Render(IconError + " " + msg.err.Error())
		case msg.released:
			m.notice = SuccessStyle.Render(IconSuccess + " Keyboard grab released")
		default:
			m.notice = WarningStyle.Render(IconWarning + " No keyboard grab to release")
		}
		return m, m.fetch(false)
	}

	statusBar, cmd := m.statusBar.Update(msg)
	m.statusBar = statusBar
	return m, cmd
}

// View implements tea.Model
func (m *MonitorModel) View() string {
	if m.quitting {
		return ""
	}

	sections := []string{m.statusBar.View()}

	switch {
	case m.err != nil:
		sections = append(sections, ErrorStyle.Render(m.err.Error()))
	case m.status != nil:
		sections = append(sections, StatusPanels(m.status, m.width)...)
	}

	if m.notice != "" {
		sections = append(sections, m.notice)
	}
	sections = append(sections, m.controls.View())

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

// StatusPanels renders a server snapshot: the focus chain, then object
// counts.
func StatusPanels(st *ipc.StatusResponse, width int) []string {
	focus := &InfoPanel{
		Title: "Focus",
		Width: width,
		Rows: []Row{
			{Label: "Seat", Value: st.Seat},
			{Label: "Keyboard focus", Value: st.KeyboardFocus},
			{Label: "Keyboard", Value: st.Keyboard},
			{Label: "Text input", Value: st.FocusedTextInput},
			{Label: "Input method", Value: st.InputMethod},
			{Label: "Keyboard grab", Value: st.KeyboardGrab},
		},
	}

	counts := &InfoPanel{
		Title: "Objects",
		Width: width,
		Rows: []Row{
			{Label: "Text inputs", Value: fmt.Sprint(st.TextInputs)},
			{Label: "Popups", Value: fmt.Sprint(st.Popups)},
			{Label: "Virtual keyboards", Value: fmt.Sprint(st.VirtualKeyboards)},
			{Label: "Events", Value: fmt.Sprint(st.Transcript)},
		},
	}
	panels := []string{focus.View(), counts.View()}

	if len(st.Objects) > 0 {
		lines := []string{SubheaderStyle.Render("By kind")}
		for _, kind := range slices.Sorted(maps.Keys(st.Objects)) {
			n := st.Objects[kind]
			lines = append(lines, FormatListItem(fmt.Sprintf("%s: %d", kind, n), n > 0))
		}
		panels = append(panels, lipgloss.JoinVertical(lipgloss.Left, lines...))
	}
	return panels
}

// RenderStatus renders a snapshot for one-shot commands. Plain output is
// key: value lines.
func RenderStatus(st *ipc.StatusResponse, plain bool) string {
	if !plain {
		return lipgloss.JoinVertical(lipgloss.Left, StatusPanels(st, 0)...)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "seat: %s\n", st.Seat)
	fmt.Fprintf(&b, "keyboard_focus: %s\n", st.KeyboardFocus)
	fmt.Fprintf(&b, "keyboard: %s\n", st.Keyboard)
	fmt.Fprintf(&b, "focused_text_input: %s\n", st.FocusedTextInput)
	fmt.Fprintf(&b, "input_method: %s\n", st.InputMethod)
	fmt.Fprintf(&b, "keyboard_grab: %s\n", st.KeyboardGrab)
	fmt.Fprintf(&b, "text_inputs: %d\n", st.TextInputs)
	fmt.Fprintf(&b, "popups: %d\n", st.Popups)
	fmt.Fprintf(&b, "virtual_keyboards: %d\n", st.VirtualKeyboards)
	fmt.Fprintf(&b, "transcript: %d\n", st.Transcript)
	for _, kind := range slices.Sorted(maps.Keys(st.Objects)) {
		fmt.Fprintf(&b, "objects.%s: %d\n", kind, st.Objects[kind])
	}
	return b.String()
}
