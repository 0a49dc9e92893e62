package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pthm/cchecker/internal/analyzer"
	"github.com/pthm/cchecker/internal/results"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), DefaultFile)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadDefaultsWithoutFile(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := Load("")
	require.NoError(t, err)

	kinds, err := cfg.Kinds()
	require.NoError(t, err)
	assert.Equal(t, analyzer.Kinds(), kinds)
	assert.GreaterOrEqual(t, cfg.Jobs, 1)
	assert.Equal(t, analyzer.DefaultTimeout, cfg.Timeout)
}

func TestLoadExplicitMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestLoadFile(t *testing.T) {
	path := writeConfig(t, `
analyzers: [clang-tidy, cppcheck]
exclude: [readability-magic-numbers]
jobs: 3
timeout: 90s
binaries:
  clang-tidy: /opt/llvm/bin/clang-tidy
clang_tidy_checks: "readability-*"
severities:
  clang-tidy:
    - pattern: readability-*
      severity: high
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	kinds, err := cfg.Kinds()
	require.NoError(t, err)
	assert.Equal(t, []analyzer.Kind{analyzer.ClangTidy, analyzer.Cppcheck}, kinds)
	assert.Equal(t, []string{"readability-magic-numbers"}, cfg.Exclude)
	assert.Equal(t, 3, cfg.Jobs)
	assert.Equal(t, 90*time.Second, cfg.Timeout)
	assert.Equal(t, "/opt/llvm/bin/clang-tidy", cfg.Binary(analyzer.ClangTidy))
	assert.Equal(t, "", cfg.Binary(analyzer.Cppcheck))
	assert.Equal(t, "readability-*", cfg.ClangTidyChecks)

	m, err := cfg.SeverityMap()
	require.NoError(t, err)
	assert.Equal(t, results.High, m.SeverityOf(analyzer.ClangTidy, "readability-magic-numbers", results.Low))
}

func TestEnvOverrides(t *testing.T) {
	path := writeConfig(t, "jobs: 2\n")
	t.Setenv("CCHECKER_ANALYZERS", "cppcheck")
	t.Setenv("CCHECKER_EXCLUDE", "a, b")
	t.Setenv("CCHECKER_JOBS", "7")
	t.Setenv("CCHECKER_TIMEOUT", "2m")
	t.Setenv("CCHECKER_CPPCHECK", "/usr/local/bin/cppcheck")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"cppcheck"}, cfg.Analyzers)
	assert.Equal(t, []string{"a", "b"}, cfg.Exclude)
	assert.Equal(t, 7, cfg.Jobs)
	assert.Equal(t, 2*time.Minute, cfg.Timeout)
	assert.Equal(t, "/usr/local/bin/cppcheck", cfg.Binary(analyzer.Cppcheck))
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"unknown analyzer", "analyzers: [lint]\n"},
		{"no analyzers", "analyzers: []\n"},
		{"zero jobs", "jobs: 0\n"},
		{"negative timeout", "timeout: -1s\n"},
		{"unknown binary key", "binaries:\n  lint: /bin/lint\n"},
		{"bad severity", "severities:\n  cppcheck:\n    - pattern: x\n      severity: severe\n"},
		{"malformed yaml", "jobs: [\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.content))
			assert.Error(t, err)
		})
	}
}

func TestBadEnv(t *testing.T) {
	path := writeConfig(t, "")
	t.Setenv("CCHECKER_JOBS", "many")
	_, err := Load(path)
	assert.Error(t, err)
}
