package reporter

import (
	"encoding/json"
	"io"

	"github.com/pthm/cchecker/internal/results"
)

// JSONReporter outputs the run result as JSON, in the same shape as results.json
type JSONReporter struct {
	w io.Writer
}

// NewJSONReporter creates a new JSON reporter
func NewJSONReporter(w io.Writer) *JSONReporter {
	return &JSONReporter{w: w}
}

// Report outputs the result as JSON
func (j *JSONReporter) Report(r *results.RunResult) error {
	encoder := json.NewEncoder(j.w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(r)
}
