package buildlog

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"

	"go.uber.org/zap"
)

// Capturer produces the compilation database for a run
type Capturer interface {
	Capture(ctx context.Context) (*Database, error)
}

// BuildFailure is returned when the build command exits unsuccessfully
type BuildFailure struct {
	Command  string
	ExitCode int
	Output   string
	Err      error
}

func (e *BuildFailure) Error() string {
	if e.ExitCode >= 0 {
		return fmt.Sprintf("build command %q failed with exit code %d", e.Command, e.ExitCode)
	}
	return fmt.Sprintf("build command %q failed: %v", e.Command, e.Err)
}

func (e *BuildFailure) Unwrap() error {
	return e.Err
}

// Command captures compilation units by running a build command through the shell
// and parsing the compiler invocations it echoes.
type Command struct {
	// Build is the shell command line to run
	Build string
	// Dir is the working directory; empty means the current directory
	Dir string
	// Output receives the build's combined output as it runs (optional)
	Output io.Writer
	Logger *zap.SugaredLogger
}

// Capture runs the build. A non-zero exit yields a *BuildFailure and no units.
func (c *Command) Capture(ctx context.Context) (*Database, error) {
	dir := c.Dir
	if dir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("resolve working directory: %w", err)
		}
		dir = wd
	}

	if c.Logger != nil {
		c.Logger.Debugw("running build", "command", c.Build, "dir", dir)
	}

	var buf bytes.Buffer
	var out io.Writer = &buf
	if c.Output != nil {
		out = io.MultiWriter(&buf, c.Output)
	}

	cmd := exec.CommandContext(ctx, "sh", "-c", c.Build)
	cmd.Dir = dir
	cmd.Stdout = out
	cmd.Stderr = out

	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		failure := &BuildFailure{Command: c.Build, ExitCode: -1, Output: buf.String(), Err: err}
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			failure.ExitCode = exitErr.ExitCode()
		}
		return nil, failure
	}

	units, err := ParseBuildOutput(&buf, dir)
	if err != nil {
		return nil, err
	}

	if c.Logger != nil {
		c.Logger.Debugw("build captured", "units", len(units))
	}
	return &Database{Units: units}, nil
}

// File loads a previously saved compilation database
type File struct {
	Path string
}

// Capture reads the database from disk
func (f *File) Capture(ctx context.Context) (*Database, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return Load(f.Path)
}
