package analyzer

import (
	_ "embed"
	"fmt"

	"github.com/bmatcuk/doublestar"
	"gopkg.in/yaml.v3"

	"github.com/pthm/cchecker/internal/results"
)

//go:embed configs/severities.yaml
var builtinSeverities []byte

// SeverityRule maps a checker name pattern to a severity
type SeverityRule struct {
	Pattern  string `yaml:"pattern"`
	Severity string `yaml:"severity"`

	severity results.Severity
}

type analyzerSeverities struct {
	Default  string         `yaml:"default"`
	Checkers []SeverityRule `yaml:"checkers"`

	defaultSeverity results.Severity
	hasDefault      bool
}

// SeverityMap assigns severities to checker names per analyzer
type SeverityMap struct {
	analyzers map[Kind]*analyzerSeverities
}

type severityFile struct {
	Analyzers map[string]*analyzerSeverities `yaml:"analyzers"`
}

// DefaultSeverityMap returns the builtin severity map
func DefaultSeverityMap() *SeverityMap {
	m, err := ParseSeverityMap(builtinSeverities)
	if err != nil {
		panic(fmt.Sprintf("builtin severity map: %v", err))
	}
	return m
}

// ParseSeverityMap parses a severity map document
func ParseSeverityMap(data []byte) (*SeverityMap, error) {
	var doc severityFile
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse severity map: %w", err)
	}

	m := &SeverityMap{analyzers: make(map[Kind]*analyzerSeverities)}
	for name, entry := range doc.Analyzers {
		kind, err := ParseKind(name)
		if err != nil {
			return nil, err
		}
		if entry == nil {
			entry = &analyzerSeverities{}
		}
		if err := entry.compile(); err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}
		m.analyzers[kind] = entry
	}
	return m, nil
}

func (a *analyzerSeverities) compile() error {
	if a.Default != "" {
		sev, err := results.ParseSeverity(a.Default)
		if err != nil {
			return err
		}
		a.defaultSeverity = sev
		a.hasDefault = true
	}
	for i := range a.Checkers {
		if err := a.Checkers[i].compile(); err != nil {
			return err
		}
	}
	return nil
}

func (r *SeverityRule) compile() error {
	if r.Pattern == "" {
		return fmt.Errorf("severity rule without pattern")
	}
	sev, err := results.ParseSeverity(r.Severity)
	if err != nil {
		return fmt.Errorf("pattern %q: %w", r.Pattern, err)
	}
	r.severity = sev
	return nil
}

// WithOverrides returns a copy of the map where the given rules take precedence
// over the existing ones for that analyzer.
func (m *SeverityMap) WithOverrides(kind Kind, rules []SeverityRule) (*SeverityMap, error) {
	out := &SeverityMap{analyzers: make(map[Kind]*analyzerSeverities, len(m.analyzers)+1)}
	for k, v := range m.analyzers {
		cp := *v
		cp.Checkers = append([]SeverityRule(nil), v.Checkers...)
		out.analyzers[k] = &cp
	}

	compiled := make([]SeverityRule, len(rules))
	for i, r := range rules {
		if err := r.compile(); err != nil {
			return nil, fmt.Errorf("%s: %w", kind, err)
		}
		compiled[i] = r
	}

	entry, ok := out.analyzers[kind]
	if !ok {
		entry = &analyzerSeverities{}
		out.analyzers[kind] = entry
	}
	entry.Checkers = append(compiled, entry.Checkers...)
	return out, nil
}

// Lookup returns the severity configured for a checker. ok is false when neither
// a pattern nor an analyzer default applies.
func (m *SeverityMap) Lookup(kind Kind, checker string) (sev results.Severity, ok bool) {
	if m == nil {
		return 0, false
	}
	entry, found := m.analyzers[kind]
	if !found {
		return 0, false
	}
	for _, rule := range entry.Checkers {
		if matched, err := doublestar.Match(rule.Pattern, checker); err == nil && matched {
			return rule.severity, true
		}
	}
	if entry.hasDefault {
		return entry.defaultSeverity, true
	}
	return 0, false
}

// SeverityOf returns the configured severity for a checker, falling back to fallback
func (m *SeverityMap) SeverityOf(kind Kind, checker string, fallback results.Severity) results.Severity {
	if sev, ok := m.Lookup(kind, checker); ok {
		return sev
	}
	return fallback
}
