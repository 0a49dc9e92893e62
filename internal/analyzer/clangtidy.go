package analyzer

import (
	"bufio"
	"bytes"
	"context"
	"regexp"
	"strconv"
	"strings"

	"github.com/pthm/cchecker/internal/buildlog"
	"github.com/pthm/cchecker/internal/results"
)

var (
	// file:line:col: warning: message [checker,alias]
	tidyDiagPattern = regexp.MustCompile(`^(.+?):(\d+):(\d+): (warning|error|fatal error): (.*) \[([^\[\]]+)\]$`)
	// any located diagnostic, used to detect lines the strict pattern rejects
	tidyLoosePattern = regexp.MustCompile(`^(.+?):(\d+):(\d+): (warning|error|fatal error|note): `)
	caretPattern     = regexp.MustCompile(`^[\s~^]*\^[\s~^]*$`)
)

type clangTidy struct {
	base
}

func (t *clangTidy) Analyze(ctx context.Context, unit buildlog.CompilationUnit, filter RuleFilter) ([]results.Finding, error) {
	args := []string{"--quiet"}
	if checks := t.checksArg(filter); checks != "" {
		args = append(args, "--checks="+checks)
	}
	args = append(args, t.extraArgs...)
	args = append(args, unit.AbsPath(), "--")
	args = append(args, unit.Flags()...)

	t.logger.Debugw("running analyzer", "analyzer", t.kind.String(), "file", unit.AbsPath())
	res, err := runTool(ctx, t.kind, unit, t.invocation(unit, args))
	if err != nil {
		return nil, err
	}

	findings, perr := t.parse(unit, res.stdout)
	if res.exitCode != 0 && len(findings) == 0 {
		return nil, t.crashed(unit, res)
	}
	findings = filter.Apply(findings)
	if perr != nil {
		return findings, perr
	}
	return findings, nil
}

// checksArg combines the configured checks with negative entries for the
// excluded checkers
func (t *clangTidy) checksArg(filter RuleFilter) string {
	parts := []string{}
	if t.checks != "" {
		parts = append(parts, t.checks)
	}
	for _, name := range filter.ExcludedCheckers() {
		parts = append(parts, "-"+name)
	}
	return strings.Join(parts, ",")
}

// parse converts clang-tidy's text output. A diagnostic tagged with several
// checker aliases yields one finding per alias. The source line echoed before
// the caret marker becomes the snippet.
func (t *clangTidy) parse(unit buildlog.CompilationUnit, out []byte) ([]results.Finding, error) {
	var (
		findings  []results.Finding
		perr      error
		pending   = -1
		candidate string
		haveLine  bool
		lineNo    int
	)

	scanner := bufio.NewScanner(bytes.NewReader(out))
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	for scanner.Scan() {
		lineNo++
		line := strings.TrimRight(scanner.Text(), "\r")

		if m := tidyDiagPattern.FindStringSubmatch(line); m != nil {
			ln, _ := strconv.Atoi(m[2])
			col, _ := strconv.Atoi(m[3])
			fallback := results.Medium
			if m[4] != "warning" {
				fallback = results.High
			}

			pending = len(findings)
			haveLine = false
			for _, checker := range splitCheckers(m[6]) {
				findings = append(findings, t.finding(unit, m[1], ln, col, checker, m[5], fallback))
			}
			if len(findings) == pending {
				pending = -1
			}
			continue
		}

		if m := tidyLoosePattern.FindStringSubmatch(line); m != nil {
			pending = -1
			haveLine = false
			if m[4] != "note" && perr == nil {
				perr = &ParseError{Kind: t.kind, File: unit.AbsPath(), Line: lineNo, Text: line}
			}
			continue
		}

		if pending < 0 {
			continue
		}
		if caretPattern.MatchString(line) {
			if haveLine {
				for i := pending; i < len(findings); i++ {
					findings[i].Snippet = candidate
				}
			}
			pending = -1
			haveLine = false
			continue
		}
		if haveLine {
			// two lines without a caret: not a snippet block
			pending = -1
			haveLine = false
			continue
		}
		candidate = strings.TrimRight(line, " \t")
		haveLine = true
	}
	if err := scanner.Err(); err != nil && perr == nil {
		perr = &ParseError{Kind: t.kind, File: unit.AbsPath(), Err: err}
	}
	return findings, perr
}

// splitCheckers splits "a,b,-warnings-as-errors" into checker names
func splitCheckers(s string) []string {
	var names []string
	for _, name := range strings.Split(s, ",") {
		name = strings.TrimSpace(name)
		if name == "" || strings.HasPrefix(name, "-") {
			continue
		}
		names = append(names, name)
	}
	return names
}
