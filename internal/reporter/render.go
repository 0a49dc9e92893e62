package reporter

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/pthm/cchecker/internal/results"
)

// Rendered is the plain-text form of a run result
type Rendered struct {
	Detail  string
	Summary string
}

func (r Rendered) String() string {
	return r.Detail + r.Summary
}

// Render formats a run result. It is a pure function of its input: the same
// result always renders to the same text.
func Render(r *results.RunResult) Rendered {
	return Rendered{
		Detail:  renderDetail(r.Findings),
		Summary: renderSummary(r),
	}
}

func renderDetail(findings []results.Finding) string {
	sorted := make([]results.Finding, len(findings))
	copy(sorted, findings)
	results.SortFindings(sorted)

	var sb strings.Builder
	for _, f := range sorted {
		sb.WriteString(FormatFinding(f))
		sb.WriteByte('\n')
		if f.Snippet != "" {
			sb.WriteString(f.Snippet)
			sb.WriteByte('\n')
			sb.WriteString(CaretLine(f.Snippet, f.Column))
			sb.WriteByte('\n')
		}
		sb.WriteByte('\n')
	}
	return sb.String()
}

// FormatFinding returns the header line of a finding
func FormatFinding(f results.Finding) string {
	return fmt.Sprintf("[%s] %s:%d:%d: %s [%s]", f.Severity, f.FilePath, f.Line, f.Column, f.Message, f.Checker)
}

// CaretLine returns a marker pointing at the 1-based byte column of snippet.
// Tabs before the column are kept so the caret lines up.
func CaretLine(snippet string, column int) string {
	var sb strings.Builder
	for i := 0; i < column-1; i++ {
		if i < len(snippet) && snippet[i] == '\t' {
			sb.WriteByte('\t')
		} else {
			sb.WriteByte(' ')
		}
	}
	sb.WriteByte('^')
	return sb.String()
}

func renderSummary(r *results.RunResult) string {
	var sb strings.Builder

	if len(r.Diagnostics) > 0 {
		sb.WriteString("----==== Diagnostics ====----\n")
		for _, d := range r.Diagnostics {
			sb.WriteString(d.String())
			sb.WriteByte('\n')
		}
		sb.WriteByte('\n')
	}

	sb.WriteString("----==== Summary ====----\n")

	files := r.Files()
	fileRows := make([][]string, 0, len(files))
	for _, f := range files {
		fileRows = append(fileRows, []string{f, strconv.Itoa(r.PerFile[f])})
	}
	sb.WriteString(formatTable([]string{"Filename", "Report count"}, fileRows, []bool{false, true}))

	var sevRows [][]string
	for _, sev := range results.Severities {
		if n := r.PerSeverity[sev]; n > 0 {
			sevRows = append(sevRows, []string{sev.String(), strconv.Itoa(n)})
		}
	}
	sb.WriteString(formatTable([]string{"Severity", "Report count"}, sevRows, []bool{false, true}))

	sb.WriteString("----=================----\n")
	fmt.Fprintf(&sb, "Total number of reports: %d\n", r.Total)
	sb.WriteString("----=================----\n")
	return sb.String()
}

// Statistics renders the per-checker report counts, sorted by checker name
func Statistics(r *results.RunResult) string {
	type key struct {
		checker  string
		severity results.Severity
	}
	counts := make(map[key]int)
	for _, f := range r.Findings {
		counts[key{f.Checker, f.Severity}]++
	}

	keys := make([]key, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].checker != keys[j].checker {
			return keys[i].checker < keys[j].checker
		}
		return keys[i].severity > keys[j].severity
	})

	rows := make([][]string, 0, len(keys))
	for _, k := range keys {
		rows = append(rows, []string{k.checker, k.severity.String(), strconv.Itoa(counts[k])})
	}

	var sb strings.Builder
	sb.WriteString("----==== Checker Statistics ====----\n")
	sb.WriteString(formatTable([]string{"Checker name", "Severity", "Number of reports"}, rows, []bool{false, false, true}))
	return sb.String()
}

// formatTable renders a fixed-width table with dashed rules above and below the header
func formatTable(headers []string, rows [][]string, rightAlign []bool) string {
	widths := make([]int, len(headers))
	for i, h := range headers {
		widths[i] = len(h)
	}
	for _, row := range rows {
		for i, cell := range row {
			if len(cell) > widths[i] {
				widths[i] = len(cell)
			}
		}
	}

	total := 0
	for _, w := range widths {
		total += w
	}
	total += 3 * (len(widths) - 1)
	rule := strings.Repeat("-", total) + "\n"

	line := func(cells []string, align bool) string {
		parts := make([]string, len(cells))
		for i, cell := range cells {
			if align && rightAlign[i] {
				parts[i] = fmt.Sprintf("%*s", widths[i], cell)
			} else {
				parts[i] = fmt.Sprintf("%-*s", widths[i], cell)
			}
		}
		return strings.TrimRight(strings.Join(parts, " | "), " ") + "\n"
	}

	var sb strings.Builder
	sb.WriteString(rule)
	sb.WriteString(line(headers, false))
	sb.WriteString(rule)
	for _, row := range rows {
		sb.WriteString(line(row, true))
	}
	sb.WriteString(rule)
	return sb.String()
}
