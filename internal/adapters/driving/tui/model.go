package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// phase enumerates the pipeline stages shown to the user.
type phase int

const (
	phaseDiscovering phase = iota
	phaseWriting
	phaseDone
	phaseFailed
	phaseCancelled
)

// maxLogLines is how many recent progress lines the view keeps visible.
const maxLogLines = 6

// Messages delivered from the synthesis goroutine.

// themesDiscoveredMsg reports how many themes clustering produced.
type themesDiscoveredMsg struct {
	count int
}

// progressMsg is one synthesis progress callback.
type progressMsg struct {
	current int
	total   int
	message string
}

// bookDoneMsg reports successful completion.
type bookDoneMsg struct{}

// bookFailedMsg reports a pipeline failure.
type bookFailedMsg struct {
	err error
}

// keyMap defines the keybindings for the progress view.
type keyMap struct {
	Quit key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Quit: key.NewBinding(
			key.WithKeys("q", "esc", "ctrl+c"),
			key.WithHelp("q", "cancel"),
		),
	}
}

// Styles for the progress view.
var (
	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#7C3AED"))
	phaseStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#CDD6F4"))
	logStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#6C7086"))
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#F38BA8"))
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#A6E3A1"))
	helpStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#45475A"))
)

// Model is the synthesis progress view following the Elm architecture.
// It implements tea.Model for use with Bubbletea.
type Model struct {
	keys     keyMap
	spinner  spinner.Model
	progress progress.Model
	cancel   context.CancelFunc

	phase   phase
	current int
	total   int
	log     []string
	err     error
	width   int
}

// NewModel creates a progress view. The cancel function is invoked when
// the user aborts; the pipeline then winds down cooperatively.
func NewModel(cancel context.CancelFunc) *Model {
	sp := spinner.New()
	sp.Spinner = spinner.Dot

	return &Model{
		keys:     defaultKeyMap(),
		spinner:  sp,
		progress: progress.New(progress.WithDefaultGradient()),
		cancel:   cancel,
		phase:    phaseDiscovering,
	}
}

// Init starts the spinner.
func (m *Model) Init() tea.Cmd {
	return m.spinner.Tick
}

// Update handles messages from the terminal and the synthesis goroutine.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		w := msg.Width - 8
		if w > 60 {
			w = 60
		}
		if w > 0 {
			m.progress.Width = w
		}
		return m, nil

	case tea.KeyMsg:
		if key.Matches(msg, m.keys.Quit) {
			if m.cancel != nil {
				m.cancel()
			}
			m.phase = phaseCancelled
			// The pipeline reports back between chapters; the view quits
			// on the resulting done or failed message.
			return m, nil
		}
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case progress.FrameMsg:
		updated, cmd := m.progress.Update(msg)
		m.progress = updated.(progress.Model)
		return m, cmd

	case themesDiscoveredMsg:
		m.phase = phaseWriting
		m.appendLog(fmt.Sprintf("Discovered %d theme(s)", msg.count))
		return m, nil

	case progressMsg:
		m.current = msg.current
		m.total = msg.total
		m.appendLog(msg.message)
		if msg.total > 0 {
			return m, m.progress.SetPercent(float64(msg.current) / float64(msg.total))
		}
		return m, nil

	case bookDoneMsg:
		if m.phase != phaseCancelled {
			m.phase = phaseDone
		}
		return m, tea.Quit

	case bookFailedMsg:
		if m.phase != phaseCancelled {
			m.phase = phaseFailed
		}
		m.err = msg.err
		return m, tea.Quit
	}

	return m, nil
}

// View renders the progress view.
func (m *Model) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("BookForge synthesis"))
	b.WriteString("\n\n")

	switch m.phase {
	case phaseDiscovering:
		b.WriteString(m.spinner.View())
		b.WriteString(phaseStyle.Render(" Discovering themes..."))
	case phaseWriting:
		b.WriteString(m.spinner.View())
		b.WriteString(phaseStyle.Render(fmt.Sprintf(" Writing chapters (%d/%d)", m.current, m.total)))
		b.WriteString("\n\n")
		b.WriteString(m.progress.View())
	case phaseCancelled:
		b.WriteString(errorStyle.Render("Cancelling..."))
	case phaseDone:
		b.WriteString(successStyle.Render(fmt.Sprintf("Done: %d chapter(s) written", m.total)))
	case phaseFailed:
		b.WriteString(errorStyle.Render(fmt.Sprintf("Failed: %v", m.err)))
	}
	b.WriteString("\n")

	if len(m.log) > 0 {
		b.WriteString("\n")
		for _, line := range m.log {
			b.WriteString(logStyle.Render("  " + line))
			b.WriteString("\n")
		}
	}

	b.WriteString("\n")
	b.WriteString(helpStyle.Render("q to cancel"))
	b.WriteString("\n")

	return b.String()
}

// appendLog keeps the most recent progress lines.
func (m *Model) appendLog(line string) {
	if line == "" {
		return
	}
	m.log = append(m.log, line)
	if len(m.log) > maxLogLines {
		m.log = m.log[len(m.log)-maxLogLines:]
	}
}
