package results

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// FileName is the name of the serialized run result inside an output directory
const FileName = "results.json"

// Save writes the result to <dir>/results.json, creating dir if needed
func Save(dir string, r *RunResult) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create output dir: %w", err)
	}

	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal results: %w", err)
	}

	path := filepath.Join(dir, FileName)
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return "", fmt.Errorf("write results: %w", err)
	}
	return path, nil
}

// Load reads a result saved by Save. path may be the output directory or the file itself.
func Load(path string) (*RunResult, error) {
	if info, err := os.Stat(path); err == nil && info.IsDir() {
		path = filepath.Join(path, FileName)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read results: %w", err)
	}

	var r RunResult
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if r.PerFile == nil {
		r.PerFile = make(map[string]int)
	}
	if r.PerSeverity == nil {
		r.PerSeverity = make(map[Severity]int)
	}
	if r.Findings == nil {
		r.Findings = []Finding{}
	}
	if !r.Consistent() {
		return nil, fmt.Errorf("parse %s: report counts do not match findings", path)
	}
	return &r, nil
}
