package analyzer

import (
	"fmt"
	"sort"
	"strings"

	"github.com/pthm/cchecker/internal/results"
)

// Kind identifies a supported analyzer back end
type Kind int

const (
	ClangTidy Kind = iota
	ClangSA
	Cppcheck
)

// Kinds returns every supported analyzer in a stable order
func Kinds() []Kind {
	return []Kind{ClangTidy, ClangSA, Cppcheck}
}

func (k Kind) String() string {
	switch k {
	case ClangTidy:
		return "clang-tidy"
	case ClangSA:
		return "clangsa"
	case Cppcheck:
		return "cppcheck"
	default:
		return "unknown"
	}
}

// DefaultBinary returns the executable looked up on PATH when no override is configured
func (k Kind) DefaultBinary() string {
	switch k {
	case ClangTidy:
		return "clang-tidy"
	case ClangSA:
		return "clang"
	case Cppcheck:
		return "cppcheck"
	default:
		return ""
	}
}

// ParseKind converts an analyzer name to a Kind
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "clang-tidy", "clangtidy", "tidy":
		return ClangTidy, nil
	case "clangsa", "clang-sa", "clang-static-analyzer":
		return ClangSA, nil
	case "cppcheck":
		return Cppcheck, nil
	default:
		return 0, fmt.Errorf("unknown analyzer: %q (supported: clang-tidy, clangsa, cppcheck)", s)
	}
}

// ParseKinds converts a list of analyzer names, dropping duplicates while keeping order
func ParseKinds(names []string) ([]Kind, error) {
	seen := make(map[Kind]bool)
	var kinds []Kind
	for _, name := range names {
		if strings.TrimSpace(name) == "" {
			continue
		}
		k, err := ParseKind(name)
		if err != nil {
			return nil, err
		}
		if seen[k] {
			continue
		}
		seen[k] = true
		kinds = append(kinds, k)
	}
	return kinds, nil
}

// RuleFilter selects analyzers and excludes checkers for a run. It is read-only once built.
type RuleFilter struct {
	EnabledAnalyzers []Kind
	excluded         map[string]bool
}

// NewRuleFilter builds a filter. Checker names are matched exactly and case-sensitively.
func NewRuleFilter(analyzers []Kind, excludedCheckers []string) RuleFilter {
	f := RuleFilter{
		EnabledAnalyzers: append([]Kind(nil), analyzers...),
		excluded:         make(map[string]bool, len(excludedCheckers)),
	}
	for _, c := range excludedCheckers {
		if c = strings.TrimSpace(c); c != "" {
			f.excluded[c] = true
		}
	}
	return f
}

// Excludes reports whether findings of the checker must be dropped
func (f RuleFilter) Excludes(checker string) bool {
	return f.excluded[checker]
}

// Enabled reports whether the analyzer is selected
func (f RuleFilter) Enabled(k Kind) bool {
	for _, e := range f.EnabledAnalyzers {
		if e == k {
			return true
		}
	}
	return false
}

// ExcludedCheckers returns the excluded checker names sorted
func (f RuleFilter) ExcludedCheckers() []string {
	names := make([]string, 0, len(f.excluded))
	for name := range f.excluded {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Apply drops findings produced by excluded checkers
func (f RuleFilter) Apply(findings []results.Finding) []results.Finding {
	if len(f.excluded) == 0 {
		return findings
	}
	kept := findings[:0:0]
	for _, finding := range findings {
		if !f.Excludes(finding.Checker) {
			kept = append(kept, finding)
		}
	}
	return kept
}
