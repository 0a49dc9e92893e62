package results

import (
	"fmt"
	"strings"
)

// Severity represents the ordinal importance of a finding
type Severity int

const (
	Style Severity = iota
	Low
	Medium
	High
	Critical
)

// Severities lists every severity in report order
var Severities = []Severity{Style, Low, Medium, High, Critical}

func (s Severity) String() string {
	switch s {
	case Style:
		return "STYLE"
	case Low:
		return "LOW"
	case Medium:
		return "MEDIUM"
	case High:
		return "HIGH"
	case Critical:
		return "CRITICAL"
	default:
		return "UNKNOWN"
	}
}

// ParseSeverity converts a case-insensitive severity name to a Severity
func ParseSeverity(s string) (Severity, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "STYLE":
		return Style, nil
	case "LOW":
		return Low, nil
	case "MEDIUM":
		return Medium, nil
	case "HIGH":
		return High, nil
	case "CRITICAL":
		return Critical, nil
	default:
		return Style, fmt.Errorf("unknown severity: %q", s)
	}
}

// MarshalText implements encoding.TextMarshaler so severities serialize by name,
// including when used as map keys.
func (s Severity) MarshalText() ([]byte, error) {
	if s < Style || s > Critical {
		return nil, fmt.Errorf("invalid severity: %d", int(s))
	}
	return []byte(s.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler
func (s *Severity) UnmarshalText(text []byte) error {
	parsed, err := ParseSeverity(string(text))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}
