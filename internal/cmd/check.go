package cmd

import (
	"context"
	"io"

	"github.com/spf13/cobra"

	"github.com/pthm/cchecker/internal/orchestrator"
	"github.com/pthm/cchecker/internal/reporter"
	"github.com/pthm/cchecker/internal/results"
	"github.com/pthm/cchecker/internal/ui"
)

var (
	checkOutput string
	checkBuild  string
	checkCDB    string
)

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Build, analyze and report in one step",
	Long: `Run log, analyze and parse in one invocation. The compilation database
and the results are kept in the output directory.

Examples:
  cchecker check --build "make" --output ./reports
  cchecker check -b "g++ -c tidy_alias.cpp -o /dev/null" -o ./reports --analyzers clang-tidy`,
	Args:         cobra.NoArgs,
	RunE:         runCheck,
	SilenceUsage: true,
}

func init() {
	checkCmd.Flags().StringVarP(&checkOutput, "output", "o", "", "Directory for compile_commands.json and results.json")
	checkCmd.Flags().StringVarP(&checkBuild, "build", "b", "", "Build command to run through the shell")
	checkCmd.Flags().StringVar(&checkCDB, "compile-commands", "", "Use an existing compilation database instead of building")
	_ = checkCmd.MarkFlagRequired("output")
	checkCmd.MarkFlagsOneRequired("build", "compile-commands")
	checkCmd.MarkFlagsMutuallyExclusive("build", "compile-commands")
	addAnalysisFlags(checkCmd)
	RootCmd.AddCommand(checkCmd)
}

func runCheck(cmd *cobra.Command, args []string) error {
	u := ui.New(cmd.OutOrStdout(), cmd.ErrOrStderr(), "terminal")

	var output io.Writer = u.ErrWriter
	if showProgress(u) {
		output = nil
	}
	capturer := &savingCapturer{
		inner: buildCapturer(checkBuild, checkCDB, output),
		dir:   checkOutput,
	}

	r, runErr := runAnalysis(cmd.Context(), cmd, u, func(ctx context.Context, o *orchestrator.Orchestrator) (*results.RunResult, error) {
		return o.Run(ctx, capturer)
	})
	if r == nil {
		echoBuildOutput(u, runErr, output == nil)
		return runErr
	}
	if orchestrator.ExitCode(runErr) == orchestrator.ExitCancelled {
		return runErr
	}
	if err := saveRun(u, r, checkOutput); err != nil {
		return err
	}

	if err := reporter.NewTerminalReporter(u.Writer, u).Report(r); err != nil {
		return err
	}
	return runErr
}
