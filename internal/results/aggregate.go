package results

import (
	"sort"
)

// Aggregate builds a RunResult from collected findings. Findings are copied and
// stably sorted by (path, line, column, checker); counts are computed once here.
func Aggregate(findings []Finding, diagnostics []Diagnostic) *RunResult {
	r := &RunResult{
		Findings:    make([]Finding, len(findings)),
		PerFile:     make(map[string]int),
		PerSeverity: make(map[Severity]int),
	}
	copy(r.Findings, findings)
	SortFindings(r.Findings)

	for _, f := range r.Findings {
		r.PerFile[f.FilePath]++
		r.PerSeverity[f.Severity]++
	}
	r.Total = len(r.Findings)

	if len(diagnostics) > 0 {
		r.Diagnostics = make([]Diagnostic, len(diagnostics))
		copy(r.Diagnostics, diagnostics)
		sort.SliceStable(r.Diagnostics, func(i, j int) bool {
			a, b := r.Diagnostics[i], r.Diagnostics[j]
			if a.Analyzer != b.Analyzer {
				return a.Analyzer < b.Analyzer
			}
			if a.File != b.File {
				return a.File < b.File
			}
			return a.Kind < b.Kind
		})
	}

	return r
}

// SortFindings orders findings by path, line, column and checker
func SortFindings(fs []Finding) {
	sort.SliceStable(fs, func(i, j int) bool {
		return Less(fs[i], fs[j])
	})
}

// Less reports whether a sorts before b in report order
func Less(a, b Finding) bool {
	if a.FilePath != b.FilePath {
		return a.FilePath < b.FilePath
	}
	if a.Line != b.Line {
		return a.Line < b.Line
	}
	if a.Column != b.Column {
		return a.Column < b.Column
	}
	if a.Checker != b.Checker {
		return a.Checker < b.Checker
	}
	return a.Message < b.Message
}

// Consistent reports whether the per-file and per-severity counts both sum to Total
func (r *RunResult) Consistent() bool {
	fileSum, sevSum := 0, 0
	for _, n := range r.PerFile {
		fileSum += n
	}
	for _, n := range r.PerSeverity {
		sevSum += n
	}
	return fileSum == r.Total && sevSum == r.Total && len(r.Findings) == r.Total
}
