package orchestrator

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pthm/cchecker/internal/analyzer"
	"github.com/pthm/cchecker/internal/buildlog"
	"github.com/pthm/cchecker/internal/results"
)

const tidyAliasSource = `int main() {
  int x = 42;
  return x;
}
`

// fakeClangTidy prints what clang-tidy reports for tidy_alias.cpp: one
// diagnostic tagged with two aliased checkers.
const fakeClangTidy = `#!/bin/sh
cat <<'OUT'
tidy_alias.cpp:2:11: warning: 42 is a magic number; consider replacing it with a named constant [cppcoreguidelines-avoid-magic-numbers,readability-magic-numbers]
  int x = 42;
          ^
OUT
`

func setupTidyAlias(t *testing.T) (dir string, adapter analyzer.Adapter) {
	t.Helper()
	dir = t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "tidy_alias.cpp"), []byte(tidyAliasSource), 0o644))

	tool := filepath.Join(t.TempDir(), "clang-tidy")
	require.NoError(t, os.WriteFile(tool, []byte(fakeClangTidy), 0o755))

	adapter, err := analyzer.New(analyzer.ClangTidy, analyzer.Options{Binary: tool})
	require.NoError(t, err)
	return dir, adapter
}

func TestPipelineTidyAlias(t *testing.T) {
	dir, adapter := setupTidyAlias(t)

	var events []string
	o := New(Options{
		Adapters:   []analyzer.Adapter{adapter},
		Filter:     analyzer.NewRuleFilter([]analyzer.Kind{analyzer.ClangTidy}, nil),
		OnProgress: func(e Event) { events = append(events, e.String()) },
	})

	build := &buildlog.Command{Build: "echo g++ -c tidy_alias.cpp -o /dev/null", Dir: dir}
	r, err := o.Run(context.Background(), build)
	require.NoError(t, err)

	assert.Equal(t, []string{"[1/1] clang-tidy analyzed tidy_alias.cpp successfully"}, events)
	assert.Equal(t, 1, r.Units)
	assert.Equal(t, 2, r.Total)
	assert.Equal(t, 2, r.PerSeverity[results.Style])
	assert.Equal(t, map[string]int{filepath.Join(dir, "tidy_alias.cpp"): 2}, r.PerFile)
	assert.Equal(t, "cppcoreguidelines-avoid-magic-numbers", r.Findings[0].Checker)
	assert.Equal(t, "readability-magic-numbers", r.Findings[1].Checker)
	assert.Equal(t, "  int x = 42;", r.Findings[0].Snippet)
}

func TestPipelineTidyAliasExcluded(t *testing.T) {
	dir, adapter := setupTidyAlias(t)

	o := New(Options{
		Adapters: []analyzer.Adapter{adapter},
		Filter: analyzer.NewRuleFilter([]analyzer.Kind{analyzer.ClangTidy},
			[]string{"cppcoreguidelines-avoid-magic-numbers", "readability-magic-numbers"}),
	})

	build := &buildlog.Command{Build: "echo g++ -c tidy_alias.cpp -o /dev/null", Dir: dir}
	r, err := o.Run(context.Background(), build)
	require.NoError(t, err)

	assert.Equal(t, 0, r.Total)
	assert.Empty(t, r.PerFile)
	assert.Empty(t, r.Diagnostics)
}

func TestPipelineBuildFailure(t *testing.T) {
	_, adapter := setupTidyAlias(t)
	o := New(Options{Adapters: []analyzer.Adapter{adapter}})

	_, err := o.Run(context.Background(), &buildlog.Command{Build: "exit 4", Dir: t.TempDir()})
	assert.Equal(t, ExitFailure, ExitCode(err))
}
