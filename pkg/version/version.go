// Package version reports the cdkforge build. Release builds set the
// variables with -ldflags, for example:
//
//	-X github.com/cdkforge/cdkforge/pkg/version.Version=v1.2.0
package version

import (
	"fmt"
	"runtime"
	"runtime/debug"
)

// devVersion marks a build without a linked version.
const devVersion = "v0.0.0-dev"

// Build-time variables injected via -ldflags.
var (
	Version = devVersion
	Commit  = ""
	Date    = ""
)

// Info describes the running build.
type Info struct {
	Version   string
	Commit    string
	Date      string
	GoVersion string
}

// Get returns the build information. Values not set at link time are taken
// from the module build info when available: `go install` records the
// module version and VCS stamping records the commit and time.
func Get() Info {
	info := Info{
		Version:   Version,
		Commit:    Commit,
		Date:      Date,
		GoVersion: runtime.Version(),
	}

	bi, ok := debug.ReadBuildInfo()
	if !ok {
		return info
	}
	if info.Version == devVersion && bi.Main.Version != "" && bi.Main.Version != "(devel)" {
		info.Version = bi.Main.Version
	}
	for _, s := range bi.Settings {
		switch s.Key {
		case "vcs.revision":
			if info.Commit == "" {
				info.Commit = s.Value
			}
		case "vcs.time":
			if info.Date == "" {
				info.Date = s.Value
			}
		}
	}
	return info
}

// GetVersion returns the current version string.
func GetVersion() string {
	return Get().Version
}

// String formats the build as "<version> (commit: ..., built: ..., go: ...)".
func (i Info) String() string {
	return fmt.Sprintf("%s (commit: %s, built: %s, %s)",
		i.Version, orUnknown(i.Commit), orUnknown(i.Date), i.GoVersion)
}

func orUnknown(s string) string {
	if s == "" {
		return "unknown"
	}
	return s
}
