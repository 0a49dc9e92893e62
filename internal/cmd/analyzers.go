package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pthm/cchecker/internal/analyzer"
)

var analyzersCmd = &cobra.Command{
	Use:   "analyzers",
	Short: "List the supported analyzers and whether they are installed",
	Args:  cobra.NoArgs,
	RunE:  runAnalyzers,
}

func init() {
	RootCmd.AddCommand(analyzersCmd)
}

func runAnalyzers(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	rows := make([][3]string, 0, len(analyzer.Kinds()))
	width := [3]int{len("Name"), len("Binary"), len("Status")}
	for _, kind := range analyzer.Kinds() {
		a, err := analyzer.New(kind, analyzer.Options{Binary: cfg.Binary(kind)})
		if err != nil {
			return err
		}
		status := "available"
		if err := a.Available(); err != nil {
			status = "not found"
		}
		row := [3]string{a.Name(), a.Binary(), status}
		for i, cell := range row {
			width[i] = max(width[i], len(cell))
		}
		rows = append(rows, row)
	}

	out := cmd.OutOrStdout()
	line := func(row [3]string) {
		fmt.Fprintf(out, "%-*s  %-*s  %s\n", width[0], row[0], width[1], row[1], row[2])
	}
	line([3]string{"Name", "Binary", "Status"})
	fmt.Fprintln(out, strings.Repeat("-", width[0]+width[1]+width[2]+4))
	for _, row := range rows {
		line(row)
	}
	return nil
}
