package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pthm/cchecker/internal/reporter"
	"github.com/pthm/cchecker/internal/results"
	"github.com/pthm/cchecker/internal/ui"
)

var (
	diffNew        bool
	diffResolved   bool
	diffUnresolved bool
	diffExport     string
)

var diffCmd = &cobra.Command{
	Use:   "diff <base> <new>",
	Short: "Compare the findings of two stored runs",
	Long: `Compare two result directories and print the findings that are new,
resolved or still present.

Findings are matched by file name, checker, message, column and source line,
so a finding that only moved to another line is not reported as new.

Examples:
  cchecker diff ./reports-main ./reports
  cchecker diff ./reports-main ./reports --resolved`,
	Args: cobra.ExactArgs(2),
	RunE: runDiff,
}

func init() {
	diffCmd.Flags().BoolVar(&diffNew, "new", false, "Show findings only present in <new> (default)")
	diffCmd.Flags().BoolVar(&diffResolved, "resolved", false, "Show findings only present in <base>")
	diffCmd.Flags().BoolVar(&diffUnresolved, "unresolved", false, "Show findings present in both runs")
	diffCmd.Flags().StringVarP(&diffExport, "export", "x", "terminal", "Output format: terminal, json, sarif, html")
	diffCmd.MarkFlagsMutuallyExclusive("new", "resolved", "unresolved")

	RootCmd.AddCommand(diffCmd)
}

func runDiff(cmd *cobra.Command, args []string) error {
	format, err := reporter.ParseFormat(diffExport)
	if err != nil {
		return err
	}

	base, err := results.Load(args[0])
	if err != nil {
		return fmt.Errorf("failed to load base results: %w", err)
	}
	current, err := results.Load(args[1])
	if err != nil {
		return fmt.Errorf("failed to load new results: %w", err)
	}

	d := results.Compare(base, current)
	selected := d.New
	switch {
	case diffResolved:
		selected = d.Resolved
	case diffUnresolved:
		selected = d.Unresolved
	}

	u := ui.New(cmd.OutOrStdout(), cmd.ErrOrStderr(), format.String())
	return report(u, format, results.Aggregate(selected, nil), false)
}
