package reporter

import (
	"fmt"
	"io"
	"strings"

	"github.com/pthm/cchecker/internal/results"
	"github.com/pthm/cchecker/internal/ui"
)

// Reporter writes a run result to its destination
type Reporter interface {
	Report(r *results.RunResult) error
}

// Format selects a Reporter implementation
type Format int

const (
	FormatTerminal Format = iota
	FormatJSON
	FormatSARIF
	FormatHTML
)

func (f Format) String() string {
	switch f {
	case FormatTerminal:
		return "terminal"
	case FormatJSON:
		return "json"
	case FormatSARIF:
		return "sarif"
	case FormatHTML:
		return "html"
	default:
		return "unknown"
	}
}

// ParseFormat converts an export format name
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "terminal", "plaintext", "text":
		return FormatTerminal, nil
	case "json":
		return FormatJSON, nil
	case "sarif":
		return FormatSARIF, nil
	case "html":
		return FormatHTML, nil
	default:
		return 0, fmt.Errorf("unknown export format: %q (supported: terminal, json, sarif, html)", s)
	}
}

// New creates the reporter for format writing to w
func New(format Format, w io.Writer, u *ui.UI) (Reporter, error) {
	switch format {
	case FormatTerminal:
		return NewTerminalReporter(w, u), nil
	case FormatJSON:
		return NewJSONReporter(w), nil
	case FormatSARIF:
		return NewSARIFReporter(w), nil
	case FormatHTML:
		return NewHTMLReporter(w), nil
	default:
		return nil, fmt.Errorf("unsupported export format %d", int(format))
	}
}
