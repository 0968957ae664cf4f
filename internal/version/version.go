// Package version reports which swatch build is running. Release builds
// set the variables below with -ldflags "-X"; builds made with go install
// fall back to the module build info.
package version

import (
	"fmt"
	"runtime"
	"runtime/debug"
	"sync"
)

// Name is the application name used in the CLI and the User-Agent header.
const Name = "swatch"

// Set at link time, e.g.
// -X github.com/jmylchreest/swatch/internal/version.Version=1.2.0
var (
	Version = "dev"
	Commit  = "unknown"
	Date    = "unknown"
)

// Info is the build description served by GET /health.
type Info struct {
	Version   string `json:"version"`
	Commit    string `json:"commit"`
	Date      string `json:"date"`
	GoVersion string `json:"go_version"`
	Platform  string `json:"platform"`
}

var (
	infoOnce sync.Once
	info     Info
)

// GetInfo returns the build description. It is resolved once.
func GetInfo() Info {
	infoOnce.Do(func() {
		info = resolve(Version, Commit, Date)
	})
	return info
}

func resolve(ver, commit, date string) Info {
	i := Info{
		Version:   ver,
		Commit:    commit,
		Date:      date,
		GoVersion: runtime.Version(),
		Platform:  runtime.GOOS + "/" + runtime.GOARCH,
	}
	bi, ok := debug.ReadBuildInfo()
	if !ok {
		return i
	}
	return fillFromBuildInfo(i, bi)
}

// fillFromBuildInfo replaces unset fields with what the toolchain recorded.
func fillFromBuildInfo(i Info, bi *debug.BuildInfo) Info {
	if i.Version == "dev" && bi.Main.Version != "" && bi.Main.Version != "(devel)" {
		i.Version = bi.Main.Version
	}
	for _, s := range bi.Settings {
		switch s.Key {
		case "vcs.revision":
			if i.Commit == "unknown" {
				i.Commit = s.Value
			}
		case "vcs.time":
			if i.Date == "unknown" {
				i.Date = s.Value
			}
		}
	}
	return i
}

// String returns the line printed by "swatch version".
func String() string {
	i := GetInfo()
	if i.Commit == "unknown" {
		return fmt.Sprintf("%s %s (%s, %s)", Name, i.Version, i.GoVersion, i.Platform)
	}
	commit := i.Commit
	if len(commit) > 8 {
		commit = commit[:8]
	}
	return fmt.Sprintf("%s %s (commit %s, built %s, %s, %s)", Name, i.Version, commit, i.Date, i.GoVersion, i.Platform)
}

// Short returns the bare version, as shown by --version.
func Short() string {
	return GetInfo().Version
}

// UserAgent returns the User-Agent for outbound requests, e.g. "swatch/1.2.0".
func UserAgent() string {
	return Name + "/" + GetInfo().Version
}
