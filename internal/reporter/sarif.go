package reporter

import (
	"io"
	"sort"
	"strings"

	"github.com/pthm/cchecker/internal/results"
	"github.com/pthm/cchecker/internal/sarif"
	"github.com/pthm/cchecker/internal/version"
)

// SARIFReporter exports findings as a SARIF 2.1.0 log
type SARIFReporter struct {
	w io.Writer
}

// NewSARIFReporter creates a new SARIF reporter
func NewSARIFReporter(w io.Writer) *SARIFReporter {
	return &SARIFReporter{w: w}
}

// Report writes the SARIF log
func (s *SARIFReporter) Report(r *results.RunResult) error {
	return sarif.Encode(s.w, ToSARIF(r))
}

// ToSARIF converts a run result to a SARIF log with one run
func ToSARIF(r *results.RunResult) *sarif.Log {
	sorted := make([]results.Finding, len(r.Findings))
	copy(sorted, r.Findings)
	results.SortFindings(sorted)

	checkers := make(map[string]bool)
	out := make([]sarif.Result, 0, len(sorted))
	for _, f := range sorted {
		checkers[f.Checker] = true

		region := sarif.Region{StartLine: f.Line, StartColumn: f.Column}
		if f.Snippet != "" {
			region.Snippet = &sarif.Message{Text: f.Snippet}
		}
		props := map[string]string{
			"severity":    f.Severity.String(),
			"report_hash": results.Hash(f),
		}
		if f.Analyzer != "" {
			props["analyzer"] = f.Analyzer
		}

		out = append(out, sarif.Result{
			RuleID:  f.Checker,
			Level:   sevToLevel(f.Severity),
			Message: sarif.Message{Text: strings.TrimSpace(f.Message)},
			Locations: []sarif.Location{{
				PhysicalLocation: sarif.PhysicalLocation{
					ArtifactLocation: sarif.ArtifactLocation{URI: sarif.URIFromPath(f.FilePath)},
					Region:           region,
				},
			}},
			Properties: props,
		})
	}

	ids := make([]string, 0, len(checkers))
	for id := range checkers {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	rules := make([]sarif.Rule, 0, len(ids))
	for _, id := range ids {
		rules = append(rules, sarif.Rule{ID: id})
	}

	return &sarif.Log{
		Version: sarif.Version,
		Schema:  sarif.Schema,
		Runs: []sarif.Run{{
			Tool: sarif.Tool{Driver: sarif.Driver{
				Name:    version.Name,
				Version: version.Short(),
				Rules:   rules,
			}},
			Results: out,
		}},
	}
}

func sevToLevel(sev results.Severity) string {
	switch sev {
	case results.Critical, results.High:
		return "error"
	case results.Medium:
		return "warning"
	default:
		return "note"
	}
}
