package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// StatusBar represents a reusable status bar component
type StatusBar struct {
	Width       int
	Title       string
	Status      string
	Active      bool
	ShowSpinner bool
	spinner     spinner.Model
}

// NewStatusBar creates a new status bar
func NewStatusBar(title string) *StatusBar {
	s := spinner.New()
	s.Spinner = spinner.Spinner{
		Frames: SpinnerDot,
		FPS:    time.Second / 10,
	}
	s.Style = SpinnerStyle

	return &StatusBar{
		Title:       title,
		ShowSpinner: true,
		spinner:     s,
	}
}

// Init implements tea.Model
func (s *StatusBar) Init() tea.Cmd {
	return s.spinner.Tick
}

// Update implements tea.Model
func (s *StatusBar) Update(msg tea.Msg) (*StatusBar, tea.Cmd) {
	switch msg := msg.(type) {
	case spinner.TickMsg:
		var cmd tea.Cmd
		s.spinner, cmd = s.spinner.Update(msg)
		return s, cmd
	case tea.WindowSizeMsg:
		s.Width = msg.Width
	}
	return s, nil
}

// View renders the status bar
func (s *StatusBar) View() string {
	title := TitleStyle.Render(s.Title)

	status := s.Status
	if s.ShowSpinner {
		status = s.spinner.View() + " " + s.Status
	}
	statusFormatted := FormatStatus(s.Active, status)

	gap := s.Width - lipgloss.Width(title) - lipgloss.Width(statusFormatted) - 8
	if gap < 1 {
		gap = 1
	}

	return BoxStyle.Width(s.Width).Render(title + strings.Repeat(" ", gap) + statusFormatted)
}

// InfoPanel shows labelled values
type InfoPanel struct {
	Title string
	Rows  []Row
	Width int
}

// Row is one label/value line of an InfoPanel
type Row struct {
	Label string
	Value string
}

// View renders the info panel
func (p *InfoPanel) View() string {
	var b strings.Builder

	if p.Title != "" {
		b.WriteString(SubheaderStyle.Render(p.Title))
		b.WriteString("\n\n")
	}

	labelWidth := 0
	for _, row := range p.Rows {
		labelWidth = max(labelWidth, lipgloss.Width(row.Label))
	}

	for i, row := range p.Rows {
		value := TextStyle.Render(row.Value)
		if row.Value == "" {
			value = MutedStyle.Render("none")
		}
		b.WriteString(SubtleStyle.Width(labelWidth).Render(row.Label))
		b.WriteString("  ")
		b.WriteString(value)
		if i < len(p.Rows)-1 {
			b.WriteString("\n")
		}
	}

	return BoxStyle.Width(p.Width).Render(b.String())
}

// ControlsHelp displays keyboard controls
type ControlsHelp struct {
	Controls []Control
	Width    int
}

// Control represents a keyboard control
type Control struct {
	Key  string
	Desc string
}

// View renders the controls help
func (c *ControlsHelp) View() string {
	parts := make([]string, len(c.Controls))
	for i, ctrl := range c.Controls {
		parts[i] = FormatControl(ctrl.Key, ctrl.Desc)
	}
	return SubtleStyle.Render(fmt.Sprintf(" %s", strings.Join(parts, "  •  ")))
}
