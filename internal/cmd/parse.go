package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pthm/cchecker/internal/reporter"
	"github.com/pthm/cchecker/internal/results"
	"github.com/pthm/cchecker/internal/ui"
)

var (
	parseExport     string
	parseSeverities []string
	parseCheckers   []string
	parseFiles      []string
	parseMessages   []string
	parseHashes     []string
	parseTrimPrefix []string
	parseStats      bool
)

var parseCmd = &cobra.Command{
	Use:   "parse <dir>",
	Short: "Print the findings of a stored analysis run",
	Long: `Read the results saved by analyze or check and print them.

The default export prints every finding followed by a summary. Findings can be
narrowed by severity, checker name or file before they are printed; counts are
recomputed from what remains.

Examples:
  cchecker parse ./reports
  cchecker parse ./reports --severity high --severity critical
  cchecker parse ./reports --checker-name 'bugprone-*' --file '**/src/**'
  cchecker parse ./reports --checker-msg '*magic number*'
  cchecker parse ./reports --export sarif > report.sarif`,
	Args: cobra.ExactArgs(1),
	RunE: runParse,
}

func init() {
	parseCmd.Flags().StringVarP(&parseExport, "export", "x", "terminal", "Output format: terminal, json, sarif, html")
	parseCmd.Flags().StringArrayVar(&parseSeverities, "severity", nil, "Only show findings of this severity (repeatable)")
	parseCmd.Flags().StringArrayVar(&parseCheckers, "checker-name", nil, "Only show findings of matching checkers (glob, repeatable)")
	parseCmd.Flags().StringArrayVar(&parseFiles, "file", nil, "Only show findings in matching files (glob, repeatable)")
	parseCmd.Flags().StringArrayVar(&parseMessages, "checker-msg", nil, "Only show findings whose message matches (* wildcard, repeatable)")
	parseCmd.Flags().StringArrayVar(&parseHashes, "report-hash", nil, "Only show the finding with this report hash or hash prefix (repeatable)")
	parseCmd.Flags().StringArrayVar(&parseTrimPrefix, "trim-path-prefix", nil, "Remove this prefix from file paths (repeatable)")
	parseCmd.Flags().BoolVar(&parseStats, "stats", false, "Print per-checker statistics")

	RootCmd.AddCommand(parseCmd)
}

func runParse(cmd *cobra.Command, args []string) error {
	format, err := reporter.ParseFormat(parseExport)
	if err != nil {
		return err
	}
	query, err := parseQuery(parseSeverities, parseCheckers, parseFiles)
	query.Messages = parseMessages
	query.Hashes = parseHashes
	if err != nil {
		return err
	}

	r, err := results.Load(args[0])
	if err != nil {
		return fmt.Errorf("failed to load results: %w", err)
	}
	r = results.TrimPathPrefix(query.Apply(r), parseTrimPrefix)

	u := ui.New(cmd.OutOrStdout(), cmd.ErrOrStderr(), format.String())
	return report(u, format, r, parseStats)
}

func parseQuery(severities, checkers, files []string) (results.Query, error) {
	q := results.Query{Checkers: checkers, Files: files}
	for _, s := range severities {
		sev, err := results.ParseSeverity(s)
		if err != nil {
			return results.Query{}, err
		}
		q.Severities = append(q.Severities, sev)
	}
	return q, nil
}

// report writes r to stdout in the requested format
func report(u *ui.UI, format reporter.Format, r *results.RunResult, stats bool) error {
	if format == reporter.FormatTerminal {
		rep := reporter.NewTerminalReporter(u.Writer, u)
		rep.Stats = stats
		return rep.Report(r)
	}
	rep, err := reporter.New(format, u.Writer, u)
	if err != nil {
		return err
	}
	return rep.Report(r)
}
