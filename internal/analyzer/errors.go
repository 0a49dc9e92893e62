package analyzer

import (
	"fmt"
	"strings"
)

// ToolNotFoundError means the analyzer binary is missing. Only the affected
// analyzer is disabled; the run continues with the others.
type ToolNotFoundError struct {
	Kind   Kind
	Binary string
	Err    error
}

func (e *ToolNotFoundError) Error() string {
	return fmt.Sprintf("%s: executable %q not found", e.Kind, e.Binary)
}

func (e *ToolNotFoundError) Unwrap() error {
	return e.Err
}

// ToolCrashedError means the analyzer exited without producing usable output,
// or did not finish within its timeout.
type ToolCrashedError struct {
	Kind     Kind
	File     string
	ExitCode int
	TimedOut bool
	Stderr   string
	Err      error
}

func (e *ToolCrashedError) Error() string {
	if e.TimedOut {
		return fmt.Sprintf("%s timed out analyzing %s", e.Kind, e.File)
	}
	msg := fmt.Sprintf("%s crashed analyzing %s (exit code %d)", e.Kind, e.File, e.ExitCode)
	if tail := lastLine(e.Stderr); tail != "" {
		msg += ": " + tail
	}
	return msg
}

func (e *ToolCrashedError) Unwrap() error {
	return e.Err
}

// ParseError means the analyzer produced output that could not be fully parsed.
// It is returned together with the findings that were parsed successfully.
type ParseError struct {
	Kind Kind
	File string
	Line int
	Text string
	Err  error
}

func (e *ParseError) Error() string {
	msg := fmt.Sprintf("%s: malformed output for %s", e.Kind, e.File)
	if e.Line > 0 {
		msg += fmt.Sprintf(" at line %d", e.Line)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	} else if e.Text != "" {
		msg += ": " + e.Text
	}
	return msg
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

func lastLine(s string) string {
	lines := strings.Split(strings.TrimSpace(s), "\n")
	return strings.TrimSpace(lines[len(lines)-1])
}
