package buildlog

import (
	"path/filepath"
	"regexp"
	"strings"
)

// Language represents the source language of a compilation unit
type Language int

const (
	LanguageUnknown Language = iota
	LanguageC
	LanguageCXX
	LanguageObjC
	LanguageObjCXX
)

func (l Language) String() string {
	switch l {
	case LanguageC:
		return "c"
	case LanguageCXX:
		return "c++"
	case LanguageObjC:
		return "objective-c"
	case LanguageObjCXX:
		return "objective-c++"
	default:
		return "unknown"
	}
}

// GetLanguage returns the Language for a given source path
func GetLanguage(path string) Language {
	ext := filepath.Ext(path)
	// .C is C++ by convention, so the case-sensitive check comes first
	if ext == ".C" {
		return LanguageCXX
	}
	switch strings.ToLower(ext) {
	case ".c":
		return LanguageC
	case ".cc", ".cpp", ".cxx", ".c++", ".cp":
		return LanguageCXX
	case ".m":
		return LanguageObjC
	case ".mm":
		return LanguageObjCXX
	default:
		return LanguageUnknown
	}
}

func isSourceFile(path string) bool {
	return GetLanguage(path) != LanguageUnknown
}

// compilerPattern matches compiler driver basenames such as gcc, g++-12, clang++,
// cc, c++ and target-prefixed variants like x86_64-linux-gnu-gcc.
var compilerPattern = regexp.MustCompile(`^(?:[\w.]+-)*(?:cc|c\+\+|gcc|g\+\+|clang|clang\+\+)(?:-[0-9.]+)?(?:\.exe)?$`)

// IsCompiler reports whether the given program looks like a C/C++ compiler driver
func IsCompiler(program string) bool {
	return compilerPattern.MatchString(filepath.Base(program))
}
