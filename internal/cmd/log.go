package cmd

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pthm/cchecker/internal/buildlog"
	"github.com/pthm/cchecker/internal/orchestrator"
	"github.com/pthm/cchecker/internal/ui"
)

var (
	logOutput          string
	logBuild           string
	logCompileCommands string
)

var logCmd = &cobra.Command{
	Use:   "log",
	Short: "Record the compilation units of a build",
	Long: `Run a build command and record every compiler invocation it performs
as a JSON compilation database in the output directory.

Examples:
  cchecker log --build "make -j4" --output ./reports
  cchecker log --compile-commands build/compile_commands.json --output ./reports`,
	Args:         cobra.NoArgs,
	RunE:         runLog,
	SilenceUsage: true,
}

func init() {
	logCmd.Flags().StringVarP(&logOutput, "output", "o", "", "Directory to write compile_commands.json to")
	logCmd.Flags().StringVarP(&logBuild, "build", "b", "", "Build command to run through the shell")
	logCmd.Flags().StringVar(&logCompileCommands, "compile-commands", "", "Import an existing compilation database instead of building")
	_ = logCmd.MarkFlagRequired("output")
	logCmd.MarkFlagsOneRequired("build", "compile-commands")
	logCmd.MarkFlagsMutuallyExclusive("build", "compile-commands")
	RootCmd.AddCommand(logCmd)
}

// buildCapturer returns the capturer for the build/compile-commands flags
func buildCapturer(build, compileCommands string, output io.Writer) buildlog.Capturer {
	if compileCommands != "" {
		return &buildlog.File{Path: compileCommands}
	}
	return &buildlog.Command{Build: build, Output: output, Logger: newLogger()}
}

func runLog(cmd *cobra.Command, args []string) error {
	u := ui.New(cmd.OutOrStdout(), cmd.ErrOrStderr(), "terminal")

	var output io.Writer = u.ErrWriter
	var spinner *ui.SimpleSpinner
	if showProgress(u) {
		output = nil
		spinner = u.StartSimpleSpinner(u.ErrWriter, "Capturing compilation units...")
	} else {
		u.Status("Capturing compilation units...")
	}
	capturer := buildCapturer(logBuild, logCompileCommands, output)

	db, err := capturer.Capture(cmd.Context())
	spinner.Stop()
	if err != nil {
		echoBuildOutput(u, err, output == nil)
		return captureError(cmd, err)
	}

	path, err := buildlog.Save(logOutput, db)
	if err != nil {
		return err
	}

	fmt.Fprintln(u.Writer, u.Styles.Success.Render(fmt.Sprintf(
		"%s Recorded %d compilation units to %s", u.Styles.IconSuccess, db.Len(), path)))
	return nil
}

// captureError converts a capture failure into a run error
func captureError(cmd *cobra.Command, err error) error {
	if cmd.Context().Err() != nil {
		return &orchestrator.RunError{Reason: orchestrator.Cancelled, Err: cmd.Context().Err()}
	}
	var failure *buildlog.BuildFailure
	if errors.As(err, &failure) {
		return &orchestrator.RunError{Reason: orchestrator.BuildFailed, Err: err}
	}
	return fmt.Errorf("failed to capture compilation units: %w", err)
}

// echoBuildOutput prints the tail of a failed build's output when it was not streamed
func echoBuildOutput(u *ui.UI, err error, echo bool) {
	var failure *buildlog.BuildFailure
	if echo && errors.As(err, &failure) && failure.Output != "" {
		fmt.Fprintln(u.ErrWriter, tail(failure.Output, 20))
	}
}

func tail(s string, n int) string {
	lines := strings.Split(strings.TrimRight(s, "\n"), "\n")
	if len(lines) > n {
		lines = lines[len(lines)-n:]
	}
	return strings.Join(lines, "\n")
}
