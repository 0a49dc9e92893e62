package results

import (
	"regexp"
	"strings"

	"github.com/bmatcuk/doublestar"
)

// Query selects a subset of findings for display. Empty fields match everything.
// Checker and file patterns support * and ** wildcards.
type Query struct {
	Severities []Severity
	Checkers   []string
	Files      []string
	// Messages are whole-message patterns where * matches any text, including '/'
	Messages []string
	// Hashes select findings by Hash; a prefix of at least 8 characters is enough
	Hashes []string
}

// Empty reports whether the query matches every finding
func (q Query) Empty() bool {
	return len(q.Severities) == 0 && len(q.Checkers) == 0 && len(q.Files) == 0 &&
		len(q.Messages) == 0 && len(q.Hashes) == 0
}

// Match reports whether a single finding satisfies the query
func (q Query) Match(f Finding) bool {
	if len(q.Severities) > 0 {
		found := false
		for _, s := range q.Severities {
			if f.Severity == s {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	if len(q.Checkers) > 0 && !matchAny(q.Checkers, f.Checker) {
		return false
	}
	if len(q.Files) > 0 && !matchAny(q.Files, f.FilePath) {
		return false
	}
	if len(q.Messages) > 0 && !matchMessage(q.Messages, f.Message) {
		return false
	}
	if len(q.Hashes) > 0 && !matchHash(q.Hashes, Hash(f)) {
		return false
	}
	return true
}

// Apply returns a new result holding only matching findings, with counts recomputed
func (q Query) Apply(r *RunResult) *RunResult {
	if q.Empty() {
		return r
	}

	var kept []Finding
	for _, f := range r.Findings {
		if q.Match(f) {
			kept = append(kept, f)
		}
	}
	out := Aggregate(kept, r.Diagnostics)
	out.ID = r.ID
	out.CreatedAt = r.CreatedAt
	out.Units = r.Units
	return out
}

func matchAny(patterns []string, value string) bool {
	for _, p := range patterns {
		if ok, err := doublestar.Match(p, value); err == nil && ok {
			return true
		}
		// Allow file patterns like "*foo.cpp" to match absolute paths by basename
		if !strings.Contains(p, "/") {
			if i := strings.LastIndex(value, "/"); i >= 0 {
				if ok, err := doublestar.Match(p, value[i+1:]); err == nil && ok {
					return true
				}
			}
		}
	}
	return false
}

func matchMessage(patterns []string, msg string) bool {
	for _, p := range patterns {
		expr := "^" + strings.ReplaceAll(regexp.QuoteMeta(p), `\*`, ".*") + "$"
		if ok, err := regexp.MatchString(expr, msg); err == nil && ok {
			return true
		}
	}
	return false
}

func matchHash(prefixes []string, hash string) bool {
	for _, p := range prefixes {
		if len(p) >= 8 && strings.HasPrefix(hash, strings.ToLower(p)) {
			return true
		}
	}
	return false
}

// TrimPathPrefix returns a copy of r with the longest matching prefix removed from
// every file path. Counts are recomputed.
func TrimPathPrefix(r *RunResult, prefixes []string) *RunResult {
	if len(prefixes) == 0 {
		return r
	}

	trim := func(path string) string {
		best := ""
		for _, p := range prefixes {
			if p != "" && strings.HasPrefix(path, p) && len(p) > len(best) {
				best = p
			}
		}
		return strings.TrimPrefix(strings.TrimPrefix(path, best), "/")
	}

	findings := make([]Finding, len(r.Findings))
	for i, f := range r.Findings {
		f.FilePath = trim(f.FilePath)
		findings[i] = f
	}
	diags := make([]Diagnostic, len(r.Diagnostics))
	for i, d := range r.Diagnostics {
		if d.File != "" {
			d.File = trim(d.File)
		}
		diags[i] = d
	}

	out := Aggregate(findings, diags)
	out.ID = r.ID
	out.CreatedAt = r.CreatedAt
	out.Units = r.Units
	return out
}
