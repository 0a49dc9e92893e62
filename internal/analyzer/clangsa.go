package analyzer

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/pthm/cchecker/internal/buildlog"
	"github.com/pthm/cchecker/internal/results"
	"github.com/pthm/cchecker/internal/sarif"
)

// clangSA runs the clang static analyzer with SARIF output
type clangSA struct {
	base
}

func (c *clangSA) Analyze(ctx context.Context, unit buildlog.CompilationUnit, filter RuleFilter) ([]results.Finding, error) {
	tmp, err := os.MkdirTemp("", "cchecker-clangsa-")
	if err != nil {
		return nil, fmt.Errorf("create report directory: %w", err)
	}
	defer os.RemoveAll(tmp)
	report := filepath.Join(tmp, "report.sarif")

	args := []string{"--analyze", "-Xclang", "-analyzer-output=sarif", "-o", report}
	for _, name := range filter.ExcludedCheckers() {
		args = append(args, "-Xclang", "-analyzer-disable-checker="+name)
	}
	args = append(args, c.extraArgs...)
	args = append(args, unit.Flags()...)
	args = append(args, unit.AbsPath())

	c.logger.Debugw("running analyzer", "analyzer", c.kind.String(), "file", unit.AbsPath())
	res, err := runTool(ctx, c.kind, unit, c.invocation(unit, args))
	if err != nil {
		return nil, err
	}

	f, err := os.Open(report)
	if errors.Is(err, fs.ErrNotExist) {
		if res.exitCode != 0 {
			return nil, c.crashed(unit, res)
		}
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("open %s report: %w", c.kind, err)
	}
	defer f.Close()

	log, err := sarif.Decode(f)
	if err != nil {
		if res.exitCode != 0 {
			return nil, c.crashed(unit, res)
		}
		return nil, &ParseError{Kind: c.kind, File: unit.AbsPath(), Err: err}
	}

	findings, perr := c.convert(unit, log)
	findings = filter.Apply(findings)
	if perr != nil {
		return findings, perr
	}
	return findings, nil
}

func (c *clangSA) convert(unit buildlog.CompilationUnit, log *sarif.Log) ([]results.Finding, error) {
	var (
		findings []results.Finding
		perr     error
	)
	for _, run := range log.Runs {
		for _, r := range run.Results {
			if r.RuleID == "" || len(r.Locations) == 0 {
				if perr == nil {
					perr = &ParseError{Kind: c.kind, File: unit.AbsPath(), Text: "result without rule or location"}
				}
				continue
			}
			loc := r.Locations[0].PhysicalLocation
			path := sarif.PathFromURI(loc.ArtifactLocation.URI)
			if path == "" {
				path = unit.AbsPath()
			}
			finding := c.finding(unit, path, loc.Region.StartLine, loc.Region.StartColumn, r.RuleID, r.Message.Text, levelSeverity(r.Level))
			if loc.Region.Snippet != nil {
				finding.Snippet = loc.Region.Snippet.Text
			}
			findings = append(findings, finding)
		}
	}
	return findings, perr
}

func levelSeverity(level string) results.Severity {
	switch level {
	case "error":
		return results.High
	case "note":
		return results.Low
	default:
		return results.Medium
	}
}
