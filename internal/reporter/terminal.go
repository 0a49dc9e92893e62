package reporter

import (
	"fmt"
	"io"
	"strings"

	"github.com/pthm/cchecker/internal/results"
	"github.com/pthm/cchecker/internal/ui"
)

// TerminalReporter prints the detail listing and summary. Without styling the
// output is exactly Render's text.
type TerminalReporter struct {
	w      io.Writer
	styles *ui.Styles
	// Stats appends the per-checker statistics table
	Stats bool
}

// NewTerminalReporter creates a new terminal reporter
func NewTerminalReporter(w io.Writer, u *ui.UI) *TerminalReporter {
	styles := ui.NewStyles(false)
	if u != nil {
		styles = u.Styles
	}
	return &TerminalReporter{w: w, styles: styles}
}

// Report writes the result
func (t *TerminalReporter) Report(r *results.RunResult) error {
	rendered := Render(r)

	var out strings.Builder
	if t.styles.Enabled() {
		t.writeStyledDetail(&out, r)
	} else {
		out.WriteString(rendered.Detail)
	}
	out.WriteString(rendered.Summary)
	if t.Stats {
		out.WriteByte('\n')
		out.WriteString(Statistics(r))
	}

	_, err := io.WriteString(t.w, out.String())
	return err
}

func (t *TerminalReporter) writeStyledDetail(out *strings.Builder, r *results.RunResult) {
	sorted := make([]results.Finding, len(r.Findings))
	copy(sorted, r.Findings)
	results.SortFindings(sorted)

	s := t.styles
	for _, f := range sorted {
		fmt.Fprintf(out, "%s %s: %s %s\n",
			s.Severity(f.Severity).Render("["+f.Severity.String()+"]"),
			s.Path.Render(fmt.Sprintf("%s:%d:%d", f.FilePath, f.Line, f.Column)),
			f.Message,
			s.Checker.Render("["+f.Checker+"]"),
		)
		if f.Snippet != "" {
			out.WriteString(s.Snippet.Render(f.Snippet))
			out.WriteByte('\n')
			out.WriteString(s.Caret.Render(CaretLine(f.Snippet, f.Column)))
			out.WriteByte('\n')
		}
		out.WriteByte('\n')
	}
}
