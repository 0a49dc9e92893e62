package version

import (
	"fmt"
	"runtime"
)

// Name is the tool name used in exported reports
const Name = "cchecker"

// These variables are set via ldflags at release time
var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

// Info returns formatted version information
func Info() string {
	return fmt.Sprintf("%s %s (%s) built on %s with %s",
		Name, Version, Commit, Date, runtime.Version())
}

// Short returns just the version string
func Short() string {
	return Version
}
