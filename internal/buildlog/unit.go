package buildlog

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// CompilationUnit is one source file together with the exact command that compiled it.
// Field names follow the JSON Compilation Database format.
type CompilationUnit struct {
	SourcePath string   `json:"file"`
	Arguments  []string `json:"arguments"`
	Directory  string   `json:"directory"`
}

// AbsPath returns the unit's source path resolved against its directory
func (u CompilationUnit) AbsPath() string {
	if filepath.IsAbs(u.SourcePath) {
		return filepath.Clean(u.SourcePath)
	}
	return filepath.Join(u.Directory, u.SourcePath)
}

// Language returns the source language inferred from the file extension
func (u CompilationUnit) Language() Language {
	return GetLanguage(u.SourcePath)
}

// Compiler returns the compiler driver of the unit's command
func (u CompilationUnit) Compiler() string {
	if len(u.Arguments) == 0 {
		return ""
	}
	return u.Arguments[0]
}

// Flags returns the compile flags with the compiler, every source file, output and
// compile-only options removed. Sibling sources of a multi-source command are dropped
// too, so the result can be appended to a single-file analyzer invocation.
func (u CompilationUnit) Flags() []string {
	if len(u.Arguments) < 2 {
		return nil
	}

	var flags []string
	args := u.Arguments[1:]
	for i := 0; i < len(args); i++ {
		arg := args[i]
		switch {
		case arg == "-c":
			continue
		case arg == "-o" || arg == "-MF" || arg == "-MT" || arg == "-MQ":
			i++ // skip value
			continue
		case strings.HasPrefix(arg, "-o") && len(arg) > 2:
			continue
		case arg == "-MD" || arg == "-MMD" || arg == "-M" || arg == "-MM":
			continue
		case !strings.HasPrefix(arg, "-") && isSourceFile(arg):
			continue
		}
		flags = append(flags, arg)
	}
	return flags
}

// Database is the ordered list of compilation units observed during a build
type Database struct {
	Units []CompilationUnit
}

// Len returns the number of units
func (db *Database) Len() int {
	if db == nil {
		return 0
	}
	return len(db.Units)
}

// DatabaseFile is the name of the serialized compilation database inside a log directory
const DatabaseFile = "compile_commands.json"

// Save writes the database to <dir>/compile_commands.json
func Save(dir string, db *Database) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create log dir: %w", err)
	}

	units := db.Units
	if units == nil {
		units = []CompilationUnit{}
	}
	data, err := json.MarshalIndent(units, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal compilation database: %w", err)
	}

	path := filepath.Join(dir, DatabaseFile)
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return "", fmt.Errorf("write compilation database: %w", err)
	}
	return path, nil
}

// commandEntry accepts both the "arguments" and the "command" forms of a
// compilation database entry.
type commandEntry struct {
	Directory string   `json:"directory"`
	File      string   `json:"file"`
	Arguments []string `json:"arguments"`
	Command   string   `json:"command"`
}

// Load reads a compilation database. path may be the file or a directory containing it.
func Load(path string) (*Database, error) {
	if info, err := os.Stat(path); err == nil && info.IsDir() {
		path = filepath.Join(path, DatabaseFile)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read compilation database: %w", err)
	}

	var entries []commandEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}

	db := &Database{Units: make([]CompilationUnit, 0, len(entries))}
	for i, e := range entries {
		args := e.Arguments
		if len(args) == 0 && e.Command != "" {
			args, err = SplitCommandLine(e.Command)
			if err != nil {
				return nil, fmt.Errorf("parse %s: entry %d: %w", path, i, err)
			}
		}
		if e.File == "" {
			return nil, fmt.Errorf("parse %s: entry %d has no file", path, i)
		}
		db.Units = append(db.Units, CompilationUnit{
			SourcePath: e.File,
			Arguments:  args,
			Directory:  e.Directory,
		})
	}
	return db, nil
}
