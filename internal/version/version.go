// Package version reports which parsoid build is running.
package version

import (
	"fmt"
	"runtime/debug"
)

// Set at release time with -ldflags "-X .../internal/version.Version=...".
var (
	Version = "dev"
	Commit  = "unknown"
	Date    = "unknown"
)

// Build identifies a binary.
type Build struct {
	Version string
	Commit  string
	Date    string
}

// Current returns the identity of the running binary. A binary built with
// go install has no ldflags; its module version and VCS stamp fill in.
func Current() Build {
	info, _ := debug.ReadBuildInfo()
	return resolve(Build{Version: Version, Commit: Commit, Date: Date}, info)
}

func resolve(b Build, info *debug.BuildInfo) Build {
	if info == nil {
		return b
	}
	if b.Version == "dev" && info.Main.Version != "" && info.Main.Version != "(devel)" {
		b.Version = info.Main.Version
	}
	for _, s := range info.Settings {
		switch {
		case s.Key == "vcs.revision" && b.Commit == "unknown":
			b.Commit = s.Value
		case s.Key == "vcs.time" && b.Date == "unknown":
			b.Date = s.Value
		}
	}
	return b
}

// String renders the line printed by parsoid --version.
func (b Build) String() string {
	return fmt.Sprintf("parsoid version %s (commit: %s, built: %s)", b.Version, b.Commit, b.Date)
}
