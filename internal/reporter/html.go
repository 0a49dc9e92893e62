package reporter

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"

	"github.com/pthm/cchecker/internal/results"
	"github.com/pthm/cchecker/internal/version"
)

const htmlHeader = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>%s report</title>
<style>
body { font-family: sans-serif; max-width: 960px; margin: 2em auto; }
pre { background: #f6f8fa; padding: 0.5em; }
table { border-collapse: collapse; }
th, td { border: 1px solid #ccc; padding: 0.2em 0.6em; }
</style>
</head>
<body>
`

const htmlFooter = `</body>
</html>
`

// HTMLReporter writes a standalone HTML page rendered from a markdown report
type HTMLReporter struct {
	w  io.Writer
	md goldmark.Markdown
}

// NewHTMLReporter creates a new HTML reporter
func NewHTMLReporter(w io.Writer) *HTMLReporter {
	return &HTMLReporter{
		w:  w,
		md: goldmark.New(goldmark.WithExtensions(extension.Table)),
	}
}

// Report writes the HTML page
func (h *HTMLReporter) Report(r *results.RunResult) error {
	var body bytes.Buffer
	if err := h.md.Convert([]byte(Markdown(r)), &body); err != nil {
		return fmt.Errorf("render html: %w", err)
	}

	if _, err := fmt.Fprintf(h.w, htmlHeader, version.Name); err != nil {
		return err
	}
	if _, err := h.w.Write(body.Bytes()); err != nil {
		return err
	}
	_, err := io.WriteString(h.w, htmlFooter)
	return err
}

// Markdown renders the result as a markdown document grouped by file
func Markdown(r *results.RunResult) string {
	sorted := make([]results.Finding, len(r.Findings))
	copy(sorted, r.Findings)
	results.SortFindings(sorted)

	var sb strings.Builder
	fmt.Fprintf(&sb, "# %s report\n\n", version.Name)
	if r.ID != "" {
		fmt.Fprintf(&sb, "Run `%s`, %d compilation units.\n\n", r.ID, r.Units)
	}

	if len(r.Diagnostics) > 0 {
		sb.WriteString("## Diagnostics\n\n")
		for _, d := range r.Diagnostics {
			fmt.Fprintf(&sb, "- %s\n", escapeMarkdown(d.String()))
		}
		sb.WriteString("\n")
	}

	sb.WriteString("## Findings\n\n")
	if len(sorted) == 0 {
		sb.WriteString("No reports.\n\n")
	}
	current := ""
	for _, f := range sorted {
		if f.FilePath != current {
			current = f.FilePath
			fmt.Fprintf(&sb, "### %s\n\n", escapeMarkdown(f.FilePath))
		}
		fmt.Fprintf(&sb, "**\\[%s\\]** `%d:%d` %s `[%s]`\n\n", f.Severity, f.Line, f.Column, escapeMarkdown(f.Message), f.Checker)
		if f.Snippet != "" {
			fmt.Fprintf(&sb, "```\n%s\n%s\n```\n\n", f.Snippet, CaretLine(f.Snippet, f.Column))
		}
	}

	sb.WriteString("## Summary\n\n")
	sb.WriteString("| Filename | Report count |\n|---|---:|\n")
	for _, file := range r.Files() {
		fmt.Fprintf(&sb, "| %s | %d |\n", escapeMarkdown(file), r.PerFile[file])
	}
	sb.WriteString("\n| Severity | Report count |\n|---|---:|\n")
	for _, sev := range results.Severities {
		if n := r.PerSeverity[sev]; n > 0 {
			fmt.Fprintf(&sb, "| %s | %d |\n", sev, n)
		}
	}
	fmt.Fprintf(&sb, "\n**Total number of reports: %d**\n", r.Total)
	return sb.String()
}

var markdownEscaper = strings.NewReplacer(
	`\`, `\\`, "`", "\\`", `*`, `\*`, `_`, `\_`, `[`, `\[`, `]`, `\]`,
	`<`, `\<`, `>`, `\>`, `|`, `\|`, `#`, `\#`, `&`, `\&`,
)

func escapeMarkdown(s string) string {
	return markdownEscaper.Replace(s)
}
