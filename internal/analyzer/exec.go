package analyzer

import (
	"bytes"
	"context"
	"errors"
	"os/exec"
	"time"

	"github.com/pthm/cchecker/internal/buildlog"
)

// invocation describes one external analyzer process
type invocation struct {
	binary  string
	args    []string
	dir     string
	timeout time.Duration
}

type execResult struct {
	stdout   []byte
	stderr   []byte
	exitCode int
}

// runTool executes an analyzer process. A non-zero exit is reported through
// execResult.exitCode and is not an error; the caller decides whether the output
// is usable. Cancellation of ctx is returned as ctx.Err().
func runTool(ctx context.Context, kind Kind, unit buildlog.CompilationUnit, inv invocation) (*execResult, error) {
	runCtx := ctx
	if inv.timeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, inv.timeout)
		defer cancel()
	}

	cmd := exec.CommandContext(runCtx, inv.binary, inv.args...)
	cmd.Dir = inv.dir
	cmd.WaitDelay = 2 * time.Second

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()

	if ctx.Err() != nil {
		return nil, ctx.Err()
	}
	if runCtx.Err() == context.DeadlineExceeded {
		return nil, &ToolCrashedError{
			Kind:     kind,
			File:     unit.AbsPath(),
			ExitCode: -1,
			TimedOut: true,
			Stderr:   stderr.String(),
			Err:      runCtx.Err(),
		}
	}

	res := &execResult{stdout: stdout.Bytes(), stderr: stderr.Bytes()}
	if err != nil {
		var exitErr *exec.ExitError
		switch {
		case errors.As(err, &exitErr):
			res.exitCode = exitErr.ExitCode()
		case errors.Is(err, exec.ErrNotFound):
			return nil, &ToolNotFoundError{Kind: kind, Binary: inv.binary, Err: err}
		default:
			return nil, &ToolCrashedError{
				Kind:     kind,
				File:     unit.AbsPath(),
				ExitCode: -1,
				Stderr:   stderr.String(),
				Err:      err,
			}
		}
	}
	return res, nil
}
