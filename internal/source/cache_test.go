package source

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pthm/cchecker/internal/results"
)

func writeSource(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLine(t *testing.T) {
	path := writeSource(t, t.TempDir(), "a.c", "int main() {\r\n  return 0;\n}\n")
	c, err := NewCache(0)
	require.NoError(t, err)

	line, err := c.Line(path, 2)
	require.NoError(t, err)
	assert.Equal(t, "  return 0;", line)

	line, err = c.Line(path, 1)
	require.NoError(t, err)
	assert.Equal(t, "int main() {", line)

	_, err = c.Line(path, 4)
	assert.Error(t, err)
	_, err = c.Line(path, 0)
	assert.Error(t, err)

	assert.Equal(t, 1, c.Len())
}

func TestEviction(t *testing.T) {
	dir := t.TempDir()
	c, err := NewCache(1)
	require.NoError(t, err)

	a := writeSource(t, dir, "a.c", "a\n")
	b := writeSource(t, dir, "b.c", "b\n")

	_, err = c.Line(a, 1)
	require.NoError(t, err)
	_, err = c.Line(b, 1)
	require.NoError(t, err)
	assert.Equal(t, 1, c.Len())
}

func TestEnrich(t *testing.T) {
	path := writeSource(t, t.TempDir(), "x.cpp", "int f() {\n  int x = 42;  \n}\n")
	c, err := NewCache(4)
	require.NoError(t, err)

	findings := []results.Finding{
		{FilePath: path, Line: 2, Column: 11},
		{FilePath: path, Line: 1, Snippet: "kept"},
		{FilePath: filepath.Join(filepath.Dir(path), "missing.cpp"), Line: 1},
	}
	c.Enrich(findings)

	assert.Equal(t, "  int x = 42;", findings[0].Snippet)
	assert.Equal(t, "kept", findings[1].Snippet)
	assert.Empty(t, findings[2].Snippet)
}
