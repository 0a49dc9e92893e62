package results

import (
	"crypto/sha256"
	"encoding/hex"
	"path/filepath"
	"strconv"
	"strings"
)

// Hash returns a stable identity for a finding. Line numbers are left out so a
// report survives unrelated edits above it; the file base name, checker, message,
// column and trimmed source line are used instead.
func Hash(f Finding) string {
	h := sha256.New()
	parts := []string{
		filepath.Base(f.FilePath),
		f.Checker,
		f.Message,
		strconv.Itoa(f.Column),
		strings.TrimSpace(f.Snippet),
	}
	h.Write([]byte(strings.Join(parts, "|||")))
	return hex.EncodeToString(h.Sum(nil))[:32]
}

// Diff holds the outcome of comparing two runs
type Diff struct {
	// New findings appear only in the current run
	New []Finding
	// Resolved findings appear only in the base run
	Resolved []Finding
	// Unresolved findings appear in both runs (current run's copy)
	Unresolved []Finding
}

// Compare matches findings of two runs by Hash
func Compare(base, current *RunResult) Diff {
	baseCount := make(map[string]int)
	for _, f := range base.Findings {
		baseCount[Hash(f)]++
	}

	var d Diff
	for _, f := range current.Findings {
		h := Hash(f)
		if baseCount[h] > 0 {
			baseCount[h]--
			d.Unresolved = append(d.Unresolved, f)
			continue
		}
		d.New = append(d.New, f)
	}

	for _, f := range base.Findings {
		h := Hash(f)
		if baseCount[h] > 0 {
			baseCount[h]--
			d.Resolved = append(d.Resolved, f)
		}
	}

	SortFindings(d.New)
	SortFindings(d.Resolved)
	SortFindings(d.Unresolved)
	return d
}
