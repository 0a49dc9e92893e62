package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// Stage represents the current stage of a run
type Stage int

const (
	StageBuild Stage = iota
	StageAnalyze
	StageAggregate
	StageDone
)

// Message types for updating the model
type (
	StageMsg     Stage
	PairCountMsg int
	// PairDoneMsg carries the "[N/M] ..." line of a finished pair
	PairDoneMsg string
	DoneMsg     struct{ Err error }
)

// Model is the Bubbletea model for progress display
type Model struct {
	stage     Stage
	spinner   spinner.Model
	progress  progress.Model
	lastLine  string
	pairCount int
	pairsDone int
	width     int
	quitting  bool
	err       error
}

// NewModel creates a new progress model
func NewModel() Model {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))

	p := progress.New(progress.WithDefaultGradient())

	return Model{
		stage:    StageBuild,
		spinner:  s,
		progress: p,
	}
}

// Init initializes the model
func (m Model) Init() tea.Cmd {
	return m.spinner.Tick
}

// Update handles messages and updates the model
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			m.quitting = true
			return m, tea.Quit
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.progress.Width = msg.Width - 4
		if m.progress.Width > 60 {
			m.progress.Width = 60
		}
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case StageMsg:
		m.stage = Stage(msg)
		return m, nil

	case PairCountMsg:
		m.pairCount = int(msg)
		return m, nil

	case PairDoneMsg:
		m.pairsDone++
		m.lastLine = string(msg)
		// keep finished pairs in the scrollback above the bar
		return m, tea.Println(m.lastLine)

	case DoneMsg:
		m.err = msg.Err
		m.stage = StageDone
		m.quitting = true
		return m, tea.Quit
	}

	return m, nil
}

// View renders the model
func (m Model) View() string {
	if m.quitting {
		return ""
	}

	var sb strings.Builder

	switch m.stage {
	case StageBuild:
		sb.WriteString(m.spinner.View())
		sb.WriteString(" Capturing compilation units...")

	case StageAnalyze:
		if m.pairCount > 0 {
			pct := float64(m.pairsDone) / float64(m.pairCount)
			sb.WriteString(m.progress.ViewAs(pct))
			sb.WriteString("\n")
		}
		sb.WriteString(m.spinner.View())
		sb.WriteString(fmt.Sprintf(" Analyzing (%d/%d)", m.pairsDone, m.pairCount))

	case StageAggregate:
		sb.WriteString(m.spinner.View())
		sb.WriteString(" Aggregating results...")
	}

	return sb.String()
}
