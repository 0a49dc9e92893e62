package buildlog

import (
	"bufio"
	"fmt"
	"io"
	"path/filepath"
	"regexp"
	"strings"
)

var (
	enterDirPattern = regexp.MustCompile(`^\S*make(?:\[\d+\])?: Entering directory [` + "`'\"" + `](.+)['"]$`)
	leaveDirPattern = regexp.MustCompile(`^\S*make(?:\[\d+\])?: Leaving directory `)
)

// compiler launchers that wrap the real compiler invocation
var launchers = map[string]bool{
	"ccache": true,
	"distcc": true,
	"sccache": true,
}

// ParseBuildOutput extracts compilation units from echoed build output.
// Units are returned in the order they were observed; exact duplicates are dropped.
func ParseBuildOutput(r io.Reader, startDir string) ([]CompilationUnit, error) {
	var units []CompilationUnit
	seen := make(map[string]bool)

	dirStack := []string{startDir}
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 4*1024*1024)

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		if m := enterDirPattern.FindStringSubmatch(line); m != nil {
			dirStack = append(dirStack, m[1])
			continue
		}
		if leaveDirPattern.MatchString(line) {
			if len(dirStack) > 1 {
				dirStack = dirStack[:len(dirStack)-1]
			}
			continue
		}

		dir := dirStack[len(dirStack)-1]
		for _, segment := range strings.Split(line, "&&") {
			args, err := SplitCommandLine(segment)
			if err != nil || len(args) == 0 {
				// Not every output line is a shell command
				continue
			}

			if args[0] == "cd" && len(args) == 2 {
				dir = resolveDir(dir, args[1])
				continue
			}

			for _, unit := range unitsFromCommand(args, dir) {
				key := unit.Directory + "\x00" + strings.Join(unit.Arguments, "\x00") + "\x00" + unit.SourcePath
				if seen[key] {
					continue
				}
				seen[key] = true
				units = append(units, unit)
			}
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read build output: %w", err)
	}
	return units, nil
}

// unitsFromCommand returns one unit per source file in a compiler invocation
func unitsFromCommand(args []string, dir string) []CompilationUnit {
	if launchers[filepath.Base(args[0])] && len(args) > 1 {
		args = args[1:]
	}
	if !IsCompiler(args[0]) {
		return nil
	}

	var sources []string
	for i := 1; i < len(args); i++ {
		arg := args[i]
		if arg == "-o" || arg == "-MF" || arg == "-MT" || arg == "-MQ" || arg == "-x" {
			i++
			continue
		}
		if arg == "-E" || arg == "-M" || arg == "-MM" {
			// Preprocessing only, nothing is compiled
			return nil
		}
		if !strings.HasPrefix(arg, "-") && isSourceFile(arg) {
			sources = append(sources, arg)
		}
	}

	units := make([]CompilationUnit, 0, len(sources))
	for _, src := range sources {
		argsCopy := make([]string, len(args))
		copy(argsCopy, args)
		units = append(units, CompilationUnit{
			SourcePath: src,
			Arguments:  argsCopy,
			Directory:  dir,
		})
	}
	return units
}

func resolveDir(base, target string) string {
	if filepath.IsAbs(target) {
		return filepath.Clean(target)
	}
	return filepath.Join(base, target)
}

// SplitCommandLine splits a shell command line into words, honouring single and
// double quotes and backslash escapes. Unbalanced quotes are an error.
func SplitCommandLine(s string) ([]string, error) {
	var (
		words   []string
		current strings.Builder
		inWord  bool
		quote   rune
		escaped bool
	)

	for _, r := range s {
		switch {
		case escaped:
			current.WriteRune(r)
			escaped = false
			inWord = true
		case r == '\\' && quote != '\'':
			escaped = true
			inWord = true
		case quote != 0:
			if r == quote {
				quote = 0
			} else {
				current.WriteRune(r)
			}
		case r == '\'' || r == '"':
			quote = r
			inWord = true
		case r == ' ' || r == '\t' || r == '\n':
			if inWord {
				words = append(words, current.String())
				current.Reset()
				inWord = false
			}
		default:
			current.WriteRune(r)
			inWord = true
		}
	}

	if quote != 0 {
		return nil, fmt.Errorf("unterminated %c quote", quote)
	}
	if escaped {
		return nil, fmt.Errorf("trailing backslash")
	}
	if inWord {
		words = append(words, current.String())
	}
	return words, nil
}
