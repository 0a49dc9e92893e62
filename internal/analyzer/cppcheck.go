package analyzer

import (
	"bufio"
	"bytes"
	"context"
	"strconv"
	"strings"

	"github.com/pthm/cchecker/internal/buildlog"
	"github.com/pthm/cchecker/internal/results"
)

// cppcheckTemplate makes cppcheck emit one machine-readable line per finding.
// The message is last so it may contain separators.
const cppcheckTemplate = "{file}\x1f{line}\x1f{column}\x1f{severity}\x1f{id}\x1f{message}"

type cppcheck struct {
	base
}

func (c *cppcheck) Analyze(ctx context.Context, unit buildlog.CompilationUnit, filter RuleFilter) ([]results.Finding, error) {
	args := []string{
		"--enable=warning,style,performance,portability",
		"--quiet",
		"--inline-suppr",
		"--template=" + cppcheckTemplate,
	}
	if unit.Language() == buildlog.LanguageCXX {
		args = append(args, "--language=c++")
	}
	for _, name := range filter.ExcludedCheckers() {
		args = append(args, "--suppress="+name)
	}
	args = append(args, c.extraArgs...)
	args = append(args, preprocessorFlags(unit.Flags())...)
	args = append(args, unit.AbsPath())

	c.logger.Debugw("running analyzer", "analyzer", c.kind.String(), "file", unit.AbsPath())
	res, err := runTool(ctx, c.kind, unit, c.invocation(unit, args))
	if err != nil {
		return nil, err
	}

	// cppcheck reports on stderr
	findings, perr := c.parse(unit, res.stderr)
	if res.exitCode != 0 && len(findings) == 0 {
		return nil, c.crashed(unit, res)
	}
	findings = filter.Apply(findings)
	if perr != nil {
		return findings, perr
	}
	return findings, nil
}

func (c *cppcheck) parse(unit buildlog.CompilationUnit, out []byte) ([]results.Finding, error) {
	var (
		findings []results.Finding
		perr     error
		lineNo   int
	)

	scanner := bufio.NewScanner(bytes.NewReader(out))
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	for scanner.Scan() {
		lineNo++
		line := strings.TrimRight(scanner.Text(), "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}

		fields := strings.SplitN(line, "\x1f", 6)
		if len(fields) != 6 {
			// cppcheck echoes a source line and caret after each finding
			if len(findings) > 0 && findings[len(findings)-1].Snippet == "" && !caretPattern.MatchString(line) {
				findings[len(findings)-1].Snippet = strings.TrimRight(line, " \t")
			}
			continue
		}

		category, id := fields[3], fields[4]
		fallback, keep := cppcheckSeverity(category)
		if !keep {
			continue
		}
		ln, lerr := strconv.Atoi(fields[1])
		col, cerr := strconv.Atoi(fields[2])
		if lerr != nil || cerr != nil || id == "" {
			if perr == nil {
				perr = &ParseError{Kind: c.kind, File: unit.AbsPath(), Line: lineNo, Text: line}
			}
			continue
		}
		if fields[0] == "" || ln == 0 {
			// whole-program findings without a location
			continue
		}
		findings = append(findings, c.finding(unit, fields[0], ln, col, id, fields[5], fallback))
	}
	if err := scanner.Err(); err != nil && perr == nil {
		perr = &ParseError{Kind: c.kind, File: unit.AbsPath(), Err: err}
	}
	return findings, perr
}

// cppcheckSeverity maps a cppcheck category. Information and debug output are not findings.
func cppcheckSeverity(category string) (results.Severity, bool) {
	switch category {
	case "error":
		return results.High, true
	case "warning":
		return results.Medium, true
	case "performance", "portability":
		return results.Low, true
	case "style":
		return results.Style, true
	default:
		return 0, false
	}
}

// preprocessorFlags keeps the compiler flags cppcheck understands
func preprocessorFlags(flags []string) []string {
	var out []string
	for i := 0; i < len(flags); i++ {
		f := flags[i]
		switch {
		case f == "-I" || f == "-D" || f == "-U" || f == "-include":
			if i+1 < len(flags) {
				out = append(out, f, flags[i+1])
				i++
			}
		case strings.HasPrefix(f, "-I"), strings.HasPrefix(f, "-D"), strings.HasPrefix(f, "-U"):
			out = append(out, f)
		case strings.HasPrefix(f, "-std="):
			out = append(out, "-"+f)
		}
	}
	return out
}
