package buildlog

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplitCommandLine(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    []string
		wantErr bool
	}{
		{"plain", "g++ -c a.cpp -o a.o", []string{"g++", "-c", "a.cpp", "-o", "a.o"}, false},
		{"double quotes", `gcc -DNAME="a b" x.c`, []string{"gcc", "-DNAME=a b", "x.c"}, false},
		{"single quotes keep backslash", `gcc '-DP=a\b' x.c`, []string{"gcc", `-DP=a\b`, "x.c"}, false},
		{"escaped space", `gcc my\ file.c`, []string{"gcc", "my file.c"}, false},
		{"extra whitespace", "  cc\t -c  x.c  ", []string{"cc", "-c", "x.c"}, false},
		{"unterminated", `gcc "oops`, nil, true},
		{"empty", "", nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := SplitCommandLine(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestIsCompiler(t *testing.T) {
	tests := []struct {
		program string
		want    bool
	}{
		{"gcc", true},
		{"g++", true},
		{"/usr/bin/clang++", true},
		{"clang-15", true},
		{"g++-12", true},
		{"cc", true},
		{"c++", true},
		{"x86_64-linux-gnu-gcc", true},
		{"clang-tidy", false},
		{"make", false},
		{"ld", false},
		{"icc", false},
	}

	for _, tt := range tests {
		t.Run(tt.program, func(t *testing.T) {
			assert.Equal(t, tt.want, IsCompiler(tt.program))
		})
	}
}

func TestGetLanguage(t *testing.T) {
	assert.Equal(t, LanguageC, GetLanguage("x.c"))
	assert.Equal(t, LanguageCXX, GetLanguage("x.C"))
	assert.Equal(t, LanguageCXX, GetLanguage("dir/x.cpp"))
	assert.Equal(t, LanguageObjCXX, GetLanguage("x.mm"))
	assert.Equal(t, LanguageUnknown, GetLanguage("x.o"))
	assert.Equal(t, "c++", LanguageCXX.String())
}

func TestParseBuildOutput(t *testing.T) {
	output := strings.Join([]string{
		"g++ -c tidy_alias.cpp -o /dev/null",
		"make[1]: Entering directory '/proj/sub'",
		"ccache gcc -Iinclude -c util.c main.c",
		"make[1]: Leaving directory '/proj/sub'",
		"cd lib && clang++ -std=c++17 -c lib.cpp -o lib.o",
		"g++ tidy_alias.o -o app",
		"g++ -c tidy_alias.cpp -o /dev/null",
		"g++ -E tidy_alias.cpp",
		"Some unrelated output with an 'unbalanced quote",
		"3 warnings generated.",
	}, "\n")

	units, err := ParseBuildOutput(strings.NewReader(output), "/proj")
	require.NoError(t, err)

	var got []string
	for _, u := range units {
		got = append(got, u.AbsPath())
	}
	assert.Equal(t, []string{
		"/proj/tidy_alias.cpp",
		"/proj/sub/util.c",
		"/proj/sub/main.c",
		"/proj/lib/lib.cpp",
	}, got)

	assert.Equal(t, "gcc", units[1].Compiler())
	assert.Equal(t, "/proj/sub", units[1].Directory)
}

func TestParseBuildOutputNoUnits(t *testing.T) {
	units, err := ParseBuildOutput(strings.NewReader("make: Nothing to be done for 'all'.\n"), "/proj")
	require.NoError(t, err)
	assert.Empty(t, units)
}

func TestUnitFlags(t *testing.T) {
	u := CompilationUnit{
		SourcePath: "src/a.cpp",
		Arguments:  []string{"g++", "-Iinc", "-DX=1", "-c", "src/a.cpp", "-o", "a.o", "-MD", "-MF", "a.d", "-std=c++17"},
		Directory:  "/proj",
	}
	assert.Equal(t, []string{"-Iinc", "-DX=1", "-std=c++17"}, u.Flags())
	assert.Equal(t, "/proj/src/a.cpp", u.AbsPath())
}

func TestUnitFlagsMultiSourceCommand(t *testing.T) {
	units, err := ParseBuildOutput(strings.NewReader("gcc -Iinc -c a.c b.c\n"), "/proj")
	require.NoError(t, err)
	require.Len(t, units, 2)

	for _, u := range units {
		t.Run(u.SourcePath, func(t *testing.T) {
			assert.Equal(t, []string{"-Iinc"}, u.Flags())
		})
	}
	assert.Equal(t, "a.c", units[0].SourcePath)
	assert.Equal(t, "b.c", units[1].SourcePath)
}

func TestSaveLoadRoundTrip(t *testing.T) {
	dir := t.TempDir()
	db := &Database{Units: []CompilationUnit{
		{SourcePath: "b.cpp", Arguments: []string{"g++", "-c", "b.cpp"}, Directory: "/p"},
		{SourcePath: "a.cpp", Arguments: []string{"g++", "-c", "a.cpp"}, Directory: "/p"},
	}}

	path, err := Save(dir, db)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, DatabaseFile), path)

	loaded, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, db.Units, loaded.Units)
}

func TestLoadCommandForm(t *testing.T) {
	path := filepath.Join(t.TempDir(), "compile_commands.json")
	content := `[{"directory": "/p", "file": "x.c", "command": "cc -DA=\"1 2\" -c x.c"}]`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	db, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, 1, db.Len())
	assert.Equal(t, []string{"cc", "-DA=1 2", "-c", "x.c"}, db.Units[0].Arguments)
}

func TestCommandCapture(t *testing.T) {
	dir := t.TempDir()
	c := &Command{
		Build: "echo g++ -c tidy_alias.cpp -o /dev/null",
		Dir:   dir,
	}

	db, err := c.Capture(context.Background())
	require.NoError(t, err)
	require.Equal(t, 1, db.Len())
	assert.Equal(t, filepath.Join(dir, "tidy_alias.cpp"), db.Units[0].AbsPath())
}

func TestCommandCaptureBuildFailure(t *testing.T) {
	var sink strings.Builder
	c := &Command{
		Build:  "echo g++ -c a.cpp; echo boom >&2; exit 3",
		Dir:    t.TempDir(),
		Output: &sink,
	}

	db, err := c.Capture(context.Background())
	assert.Nil(t, db)

	var failure *BuildFailure
	require.True(t, errors.As(err, &failure))
	assert.Equal(t, 3, failure.ExitCode)
	assert.Contains(t, failure.Output, "boom")
	assert.Contains(t, sink.String(), "boom")
}

func TestFileCapture(t *testing.T) {
	dir := t.TempDir()
	_, err := Save(dir, &Database{})
	require.NoError(t, err)

	db, err := (&File{Path: dir}).Capture(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, db.Len())
}
