package results

import (
	"fmt"
	"sort"
	"time"
)

// Finding is one defect reported by an analyzer for a compilation unit
type Finding struct {
	FilePath string   `json:"file"`
	Line     int      `json:"line"`
	Column   int      `json:"column"`
	Severity Severity `json:"severity"`
	Checker  string   `json:"checker"`
	Message  string   `json:"message"`
	Snippet  string   `json:"snippet,omitempty"`
	Analyzer string   `json:"analyzer,omitempty"`
}

// Location returns the finding position as path:line:column
func (f Finding) Location() string {
	return fmt.Sprintf("%s:%d:%d", f.FilePath, f.Line, f.Column)
}

// DiagnosticKind classifies a problem recorded during a run
type DiagnosticKind string

const (
	DiagToolNotFound DiagnosticKind = "tool-not-found"
	DiagToolCrashed  DiagnosticKind = "tool-crashed"
	DiagTimeout      DiagnosticKind = "timeout"
	DiagParseError   DiagnosticKind = "parse-error"
	DiagRejected     DiagnosticKind = "rejected"
)

// Diagnostic is a non-fatal problem attached to a run result
type Diagnostic struct {
	Kind     DiagnosticKind `json:"kind"`
	Analyzer string         `json:"analyzer,omitempty"`
	File     string         `json:"file,omitempty"`
	Message  string         `json:"message"`
}

func (d Diagnostic) String() string {
	s := string(d.Kind)
	if d.Analyzer != "" {
		s += " [" + d.Analyzer + "]"
	}
	if d.File != "" {
		s += " " + d.File
	}
	return s + ": " + d.Message
}

// RunResult is the aggregated outcome of one analysis run.
// It is derived by Aggregate and never mutated afterwards.
type RunResult struct {
	ID          string           `json:"id,omitempty"`
	CreatedAt   time.Time        `json:"created_at,omitempty"`
	Units       int              `json:"units"`
	Findings    []Finding        `json:"findings"`
	PerFile     map[string]int   `json:"per_file"`
	PerSeverity map[Severity]int `json:"per_severity"`
	Total       int              `json:"total"`
	Diagnostics []Diagnostic     `json:"diagnostics,omitempty"`
}

// Empty returns a result with no findings
func Empty() *RunResult {
	return Aggregate(nil, nil)
}

// Files returns the paths that have at least one finding, sorted ascending
func (r *RunResult) Files() []string {
	files := make([]string, 0, len(r.PerFile))
	for f := range r.PerFile {
		files = append(files, f)
	}
	sort.Strings(files)
	return files
}
