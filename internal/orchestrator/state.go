package orchestrator

import (
	"errors"
	"fmt"
	"os/exec"
)

// State is the phase of a run
type State int

const (
	Idle State = iota
	Building
	Analyzing
	Aggregating
	Done
	Failed
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Building:
		return "building"
	case Analyzing:
		return "analyzing"
	case Aggregating:
		return "aggregating"
	case Done:
		return "done"
	case Failed:
		return "failed"
	default:
		return "unknown"
	}
}

// Reason classifies a failed run
type Reason int

const (
	BuildFailed Reason = iota
	AllAdaptersFailed
	Cancelled
)

func (r Reason) String() string {
	switch r {
	case BuildFailed:
		return "build failure"
	case AllAdaptersFailed:
		return "all analyzers failed"
	case Cancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

// Process exit codes
const (
	ExitSuccess           = 0
	ExitFailure           = 1
	ExitAllAdaptersFailed = 2
	ExitCancelled         = 130
)

// RunError is returned when a run ends in the Failed state
type RunError struct {
	Reason Reason
	Err    error
}

func (e *RunError) Error() string {
	if e.Err == nil {
		return e.Reason.String()
	}
	return fmt.Sprintf("%s: %v", e.Reason, e.Err)
}

func (e *RunError) Unwrap() error {
	return e.Err
}

// ExitCode returns the process exit code for the failure
func (e *RunError) ExitCode() int {
	switch e.Reason {
	case AllAdaptersFailed:
		return ExitAllAdaptersFailed
	case Cancelled:
		return ExitCancelled
	default:
		return ExitFailure
	}
}

// ExitCode maps any error returned by a command to a process exit code
func ExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}
	var runErr *RunError
	if errors.As(err, &runErr) {
		return runErr.ExitCode()
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) && exitErr.ExitCode() > 0 {
		return exitErr.ExitCode()
	}
	return ExitFailure
}
