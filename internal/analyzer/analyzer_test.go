package analyzer

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pthm/cchecker/internal/buildlog"
	"github.com/pthm/cchecker/internal/results"
	"github.com/pthm/cchecker/internal/sarif"
)

const tidyAliasOutput = `tidy_alias.cpp:4:11: warning: 42 is a magic number; consider replacing it with a named constant [cppcoreguidelines-avoid-magic-numbers,readability-magic-numbers]
  int x = 42;
          ^
tidy_alias.cpp:4:11: note: expanded from here
`

// fakeTool writes an executable shell script and returns its path
func fakeTool(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "fake-tool")
	require.NoError(t, os.WriteFile(path, []byte("#!/bin/sh\n"+body+"\n"), 0o755))
	return path
}

func testUnit(dir string) buildlog.CompilationUnit {
	return buildlog.CompilationUnit{
		SourcePath: "tidy_alias.cpp",
		Arguments:  []string{"g++", "-c", "tidy_alias.cpp", "-o", "/dev/null"},
		Directory:  dir,
	}
}

func TestParseKind(t *testing.T) {
	tests := []struct {
		input   string
		want    Kind
		wantErr bool
	}{
		{"clang-tidy", ClangTidy, false},
		{"ClangSA", ClangSA, false},
		{" cppcheck ", Cppcheck, false},
		{"pvs-studio", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseKind(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	kinds, err := ParseKinds([]string{"cppcheck", "clang-tidy", "cppcheck", ""})
	require.NoError(t, err)
	assert.Equal(t, []Kind{Cppcheck, ClangTidy}, kinds)
}

func TestNewCoversEveryKind(t *testing.T) {
	for _, k := range Kinds() {
		a, err := New(k, Options{})
		require.NoError(t, err)
		assert.Equal(t, k, a.Kind())
		assert.Equal(t, k.DefaultBinary(), a.Binary())
	}

	_, err := New(Kind(99), Options{})
	assert.Error(t, err)
}

func TestRuleFilter(t *testing.T) {
	f := NewRuleFilter([]Kind{ClangTidy}, []string{"readability-magic-numbers", " ", "b"})

	assert.True(t, f.Enabled(ClangTidy))
	assert.False(t, f.Enabled(Cppcheck))
	assert.True(t, f.Excludes("readability-magic-numbers"))
	assert.False(t, f.Excludes("Readability-magic-numbers"))
	assert.Equal(t, []string{"b", "readability-magic-numbers"}, f.ExcludedCheckers())

	kept := f.Apply([]results.Finding{
		{Checker: "readability-magic-numbers"},
		{Checker: "cppcoreguidelines-avoid-magic-numbers"},
	})
	require.Len(t, kept, 1)
	assert.Equal(t, "cppcoreguidelines-avoid-magic-numbers", kept[0].Checker)
}

func TestDefaultSeverityMap(t *testing.T) {
	m := DefaultSeverityMap()

	tests := []struct {
		kind    Kind
		checker string
		want    results.Severity
	}{
		{ClangTidy, "readability-magic-numbers", results.Style},
		{ClangTidy, "cppcoreguidelines-avoid-magic-numbers", results.Style},
		{ClangTidy, "cppcoreguidelines-pro-type-cstyle-cast", results.Low},
		{ClangTidy, "clang-diagnostic-error", results.Critical},
		{ClangTidy, "clang-diagnostic-unused-variable", results.Medium},
		{ClangTidy, "something-unknown", results.Low},
		{ClangSA, "core.DivideZero", results.High},
		{ClangSA, "optin.portability.UnixAPI", results.Medium},
		{Cppcheck, "nullPointer", results.High},
	}

	for _, tt := range tests {
		t.Run(tt.kind.String()+"/"+tt.checker, func(t *testing.T) {
			assert.Equal(t, tt.want, m.SeverityOf(tt.kind, tt.checker, results.Critical))
		})
	}

	// cppcheck has no default; callers keep the tool's own category
	_, ok := m.Lookup(Cppcheck, "unusedFunction")
	assert.False(t, ok)
}

func TestSeverityOverrides(t *testing.T) {
	base := DefaultSeverityMap()
	m, err := base.WithOverrides(ClangTidy, []SeverityRule{{Pattern: "readability-*", Severity: "high"}})
	require.NoError(t, err)

	assert.Equal(t, results.High, m.SeverityOf(ClangTidy, "readability-magic-numbers", results.Low))
	assert.Equal(t, results.Style, base.SeverityOf(ClangTidy, "readability-magic-numbers", results.Low))

	_, err = base.WithOverrides(ClangTidy, []SeverityRule{{Pattern: "x", Severity: "severe"}})
	assert.Error(t, err)

	_, err = ParseSeverityMap([]byte("analyzers:\n  lint:\n    default: LOW\n"))
	assert.Error(t, err)
}

func TestClangTidyParse(t *testing.T) {
	a, err := New(ClangTidy, Options{})
	require.NoError(t, err)
	tidy := a.(*clangTidy)

	findings, err := tidy.parse(testUnit("/proj"), []byte(tidyAliasOutput))
	require.NoError(t, err)
	require.Len(t, findings, 2)

	for _, f := range findings {
		assert.Equal(t, "/proj/tidy_alias.cpp", f.FilePath)
		assert.Equal(t, 4, f.Line)
		assert.Equal(t, 11, f.Column)
		assert.Equal(t, "  int x = 42;", f.Snippet)
		assert.Equal(t, results.Style, f.Severity)
		assert.Equal(t, "clang-tidy", f.Analyzer)
	}
	assert.Equal(t, "cppcoreguidelines-avoid-magic-numbers", findings[0].Checker)
	assert.Equal(t, "readability-magic-numbers", findings[1].Checker)
}

func TestClangTidyParseMalformed(t *testing.T) {
	a, err := New(ClangTidy, Options{})
	require.NoError(t, err)
	tidy := a.(*clangTidy)

	out := "a.cpp:1:1: warning: missing checker tag\n" +
		"a.cpp:2:3: error: use of undeclared identifier 'y' [clang-diagnostic-error,-warnings-as-errors]\n" +
		"3 warnings generated.\n"
	findings, err := tidy.parse(testUnit("/proj"), []byte(out))

	var perr *ParseError
	require.True(t, errors.As(err, &perr))
	assert.Equal(t, 1, perr.Line)

	require.Len(t, findings, 1)
	assert.Equal(t, "clang-diagnostic-error", findings[0].Checker)
	assert.Equal(t, results.Critical, findings[0].Severity)
	assert.Empty(t, findings[0].Snippet)
}

func TestClangTidyAnalyze(t *testing.T) {
	dir := t.TempDir()
	tool := fakeTool(t, "cat <<'OUT'\n"+tidyAliasOutput+"OUT")

	a, err := New(ClangTidy, Options{Binary: tool})
	require.NoError(t, err)
	require.NoError(t, a.Available())

	findings, err := a.Analyze(context.Background(), testUnit(dir), NewRuleFilter([]Kind{ClangTidy}, nil))
	require.NoError(t, err)
	assert.Len(t, findings, 2)

	excluded := NewRuleFilter([]Kind{ClangTidy}, []string{"cppcoreguidelines-avoid-magic-numbers", "readability-magic-numbers"})
	findings, err = a.Analyze(context.Background(), testUnit(dir), excluded)
	require.NoError(t, err)
	assert.Empty(t, findings)
}

func TestClangTidyChecksArg(t *testing.T) {
	a, err := New(ClangTidy, Options{Checks: "readability-*"})
	require.NoError(t, err)
	tidy := a.(*clangTidy)

	assert.Equal(t, "readability-*,-readability-magic-numbers",
		tidy.checksArg(NewRuleFilter(nil, []string{"readability-magic-numbers"})))
}

func TestToolNotFound(t *testing.T) {
	a, err := New(ClangTidy, Options{Binary: "definitely-not-a-real-tool-xyz123"})
	require.NoError(t, err)

	var notFound *ToolNotFoundError
	require.True(t, errors.As(a.Available(), &notFound))
	assert.Equal(t, ClangTidy, notFound.Kind)

	_, err = a.Analyze(context.Background(), testUnit(t.TempDir()), RuleFilter{})
	require.True(t, errors.As(err, &notFound))
}

func TestToolCrashed(t *testing.T) {
	tool := fakeTool(t, "echo 'Segmentation fault' >&2\nexit 139")
	a, err := New(Cppcheck, Options{Binary: tool})
	require.NoError(t, err)

	findings, err := a.Analyze(context.Background(), testUnit(t.TempDir()), RuleFilter{})
	assert.Nil(t, findings)

	var crashed *ToolCrashedError
	require.True(t, errors.As(err, &crashed))
	assert.Equal(t, 139, crashed.ExitCode)
	assert.False(t, crashed.TimedOut)
	assert.Contains(t, crashed.Error(), "Segmentation fault")
}

func TestToolTimeout(t *testing.T) {
	tool := fakeTool(t, "exec sleep 5")
	a, err := New(ClangTidy, Options{Binary: tool, Timeout: 100 * time.Millisecond})
	require.NoError(t, err)

	_, err = a.Analyze(context.Background(), testUnit(t.TempDir()), RuleFilter{})

	var crashed *ToolCrashedError
	require.True(t, errors.As(err, &crashed))
	assert.True(t, crashed.TimedOut)
}

func TestAnalyzeCancelled(t *testing.T) {
	tool := fakeTool(t, "exec sleep 5")
	a, err := New(ClangTidy, Options{Binary: tool})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = a.Analyze(ctx, testUnit(t.TempDir()), RuleFilter{})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestCppcheckParse(t *testing.T) {
	a, err := New(Cppcheck, Options{})
	require.NoError(t, err)
	cc := a.(*cppcheck)

	sep := "\x1f"
	out := strings.Join([]string{
		"src/a.c" + sep + "3" + sep + "7" + sep + "error" + sep + "nullPointer" + sep + "Null pointer dereference: p",
		"    *p = 1;",
		"     ^",
		"src/a.c" + sep + "9" + sep + "0" + sep + "style" + sep + "variableScope" + sep + "The scope of the variable 'i' can be reduced.",
		"" + sep + "0" + sep + "0" + sep + "information" + sep + "missingIncludeSystem" + sep + "Include file not found",
		"src/a.c" + sep + "x" + sep + "1" + sep + "warning" + sep + "bad" + sep + "broken line",
	}, "\n")

	findings, err := cc.parse(testUnit("/proj"), []byte(out))

	var perr *ParseError
	require.True(t, errors.As(err, &perr))
	assert.Equal(t, 6, perr.Line)

	require.Len(t, findings, 2)
	assert.Equal(t, "/proj/src/a.c", findings[0].FilePath)
	assert.Equal(t, results.High, findings[0].Severity)
	assert.Equal(t, "    *p = 1;", findings[0].Snippet)
	assert.Equal(t, "variableScope", findings[1].Checker)
	assert.Equal(t, 1, findings[1].Column)
	assert.Equal(t, results.Style, findings[1].Severity)
}

func TestPreprocessorFlags(t *testing.T) {
	got := preprocessorFlags([]string{"-Iinc", "-I", "other", "-DX=1", "-O2", "-std=c++17", "-Wall", "-UY"})
	assert.Equal(t, []string{"-Iinc", "-I", "other", "-DX=1", "--std=c++17", "-UY"}, got)
}

const clangSAReport = `{
  "version": "2.1.0",
  "runs": [{
    "tool": {"driver": {"name": "clang"}},
    "results": [{
      "ruleId": "core.DivideZero",
      "level": "warning",
      "message": {"text": "Division by zero"},
      "locations": [{"physicalLocation": {
        "artifactLocation": {"uri": "file:///proj/div.c"},
        "region": {"startLine": 5, "startColumn": 12}
      }}]
    }]
  }]
}`

func TestClangSAAnalyze(t *testing.T) {
	tool := fakeTool(t, `while [ $# -gt 0 ]; do
  if [ "$1" = "-o" ]; then out="$2"; fi
  shift
done
cat > "$out" <<'OUT'
`+clangSAReport+`
OUT`)

	a, err := New(ClangSA, Options{Binary: tool})
	require.NoError(t, err)

	findings, err := a.Analyze(context.Background(), testUnit(t.TempDir()), RuleFilter{})
	require.NoError(t, err)
	require.Len(t, findings, 1)

	f := findings[0]
	assert.Equal(t, "/proj/div.c", f.FilePath)
	assert.Equal(t, 5, f.Line)
	assert.Equal(t, 12, f.Column)
	assert.Equal(t, "core.DivideZero", f.Checker)
	assert.Equal(t, results.High, f.Severity)
	assert.Equal(t, "clangsa", f.Analyzer)
}

func TestClangSAConvertRejectsIncompleteResults(t *testing.T) {
	a, err := New(ClangSA, Options{})
	require.NoError(t, err)
	sa := a.(*clangSA)

	log := &sarif.Log{Runs: []sarif.Run{{Results: []sarif.Result{{Message: sarif.Message{Text: "no rule"}}}}}}
	findings, err := sa.convert(testUnit("/proj"), log)
	assert.Empty(t, findings)

	var perr *ParseError
	assert.True(t, errors.As(err, &perr))
}
