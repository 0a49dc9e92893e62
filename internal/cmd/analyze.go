package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pthm/cchecker/internal/buildlog"
	"github.com/pthm/cchecker/internal/orchestrator"
	"github.com/pthm/cchecker/internal/results"
	"github.com/pthm/cchecker/internal/ui"
)

var analyzeOutput string

var analyzeCmd = &cobra.Command{
	Use:   "analyze <logdir>",
	Short: "Run analyzers over recorded compilation units",
	Long: `Run the selected analyzers over every compilation unit recorded by
"cchecker log" and store the aggregated results in the output directory.

Examples:
  cchecker analyze ./reports --output ./reports
  cchecker analyze ./reports -o ./reports --analyzers clang-tidy -e readability-magic-numbers
  cchecker analyze compile_commands.json -o ./reports -j 8 --timeout 2m`,
	Args:         cobra.ExactArgs(1),
	RunE:         runAnalyze,
	SilenceUsage: true,
}

func init() {
	analyzeCmd.Flags().StringVarP(&analyzeOutput, "output", "o", "", "Directory to write results.json to")
	_ = analyzeCmd.MarkFlagRequired("output")
	addAnalysisFlags(analyzeCmd)
	RootCmd.AddCommand(analyzeCmd)
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	u := ui.New(cmd.OutOrStdout(), cmd.ErrOrStderr(), "terminal")

	db, err := buildlog.Load(args[0])
	if err != nil {
		return fmt.Errorf("failed to load compilation database: %w", err)
	}

	r, runErr := runAnalysis(cmd.Context(), cmd, u, func(ctx context.Context, o *orchestrator.Orchestrator) (*results.RunResult, error) {
		return o.Analyze(ctx, db)
	})
	if r == nil || orchestrator.ExitCode(runErr) == orchestrator.ExitCancelled {
		return runErr
	}
	if err := saveRun(u, r, analyzeOutput); err != nil {
		return err
	}
	return runErr
}

// saveRun stores a finished run and prints its summary. Results of a run where
// every analyzer failed are saved as well, for inspection.
func saveRun(u *ui.UI, r *results.RunResult, dir string) error {
	path, err := results.Save(dir, r)
	if err != nil {
		return fmt.Errorf("failed to save results: %w", err)
	}
	printRunSummary(u, r, path)
	return nil
}
