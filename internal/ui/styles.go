package ui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/pthm/cchecker/internal/results"
)

// Styles contains all lipgloss styles for terminal output
type Styles struct {
	enabled bool

	// Severity styles
	Critical lipgloss.Style
	High     lipgloss.Style
	Medium   lipgloss.Style
	Low      lipgloss.Style
	Style    lipgloss.Style
	Success  lipgloss.Style
	Warning  lipgloss.Style

	// Structural styles
	Header    lipgloss.Style
	Path      lipgloss.Style
	Checker   lipgloss.Style
	Snippet   lipgloss.Style
	Caret     lipgloss.Style
	Separator lipgloss.Style

	// Icons (degraded to ASCII when not interactive)
	IconWarning string
	IconSuccess string
}

// NewStyles creates a new Styles instance
// When enabled is false, styles return text unchanged (for non-TTY output)
func NewStyles(enabled bool) *Styles {
	s := &Styles{enabled: enabled}

	if enabled {
		s.Critical = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("9")) // Red bold
		s.High = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))                // Red
		s.Medium = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))             // Yellow
		s.Low = lipgloss.NewStyle().Foreground(lipgloss.Color("12"))                // Blue
		s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("14"))              // Cyan
		s.Success = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))            // Green
		s.Warning = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))            // Yellow

		s.Header = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("15"))
		s.Path = lipgloss.NewStyle().Bold(true)
		s.Checker = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
		s.Snippet = lipgloss.NewStyle()
		s.Caret = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
		s.Separator = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))

		s.IconWarning = "⚠"
		s.IconSuccess = "✓"
	} else {
		// No-op styles for non-TTY (plain text output)
		s.Critical = lipgloss.NewStyle()
		s.High = lipgloss.NewStyle()
		s.Medium = lipgloss.NewStyle()
		s.Low = lipgloss.NewStyle()
		s.Style = lipgloss.NewStyle()
		s.Success = lipgloss.NewStyle()
		s.Warning = lipgloss.NewStyle()

		s.Header = lipgloss.NewStyle()
		s.Path = lipgloss.NewStyle()
		s.Checker = lipgloss.NewStyle()
		s.Snippet = lipgloss.NewStyle()
		s.Caret = lipgloss.NewStyle()
		s.Separator = lipgloss.NewStyle()

		s.IconWarning = "WARN:"
		s.IconSuccess = "OK:"
	}

	return s
}

// Enabled returns whether styling is enabled
func (s *Styles) Enabled() bool {
	return s.enabled
}

// Severity returns the style for a severity label
func (s *Styles) Severity(sev results.Severity) lipgloss.Style {
	switch sev {
	case results.Critical:
		return s.Critical
	case results.High:
		return s.High
	case results.Medium:
		return s.Medium
	case results.Low:
		return s.Low
	default:
		return s.Style
	}
}
