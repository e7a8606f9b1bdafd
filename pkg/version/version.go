// Package version provides build information for the dirdump CLI.
package version

import (
	"fmt"
	"runtime"
	"runtime/debug"
	"strings"
)

// These variables are populated at build time using -ldflags.
// Example:
// go build -ldflags "-X 'dirdump/pkg/version.Version=1.2.3' -X 'dirdump/pkg/version.Commit=abcdefg' -X 'dirdump/pkg/version.BuildTime=2024-04-27T15:04:05Z'"
// Values left unset are filled from the module and VCS data embedded by the go
// command, which covers `go install dirdump@version` builds.
var (
	Version   = defaultVersion
	Commit    = defaultCommit
	BuildTime = defaultBuildTime
)

const (
	defaultVersion   = "dev"
	defaultCommit    = "none"
	defaultBuildTime = "unknown"

	shortCommitLen = 7
)

// Info contains comprehensive version information.
type Info struct {
	Version   string
	GitCommit string // short hash, "-dirty" when built from a modified tree
	BuildTime string
	GoVersion string
	Platform  string // OS and architecture
}

// Get returns the current version information.
func Get() Info {
	info := Info{
		Version:   Version,
		GitCommit: Commit,
		BuildTime: BuildTime,
		GoVersion: runtime.Version(),
		Platform:  fmt.Sprintf("%s/%s", runtime.GOOS, runtime.GOARCH),
	}
	if bi, ok := debug.ReadBuildInfo(); ok {
		info = withBuildInfo(info, bi)
	}
	return info
}

// withBuildInfo replaces the fields still at their defaults with embedded
// build data. Values set through ldflags are never overridden.
func withBuildInfo(info Info, bi *debug.BuildInfo) Info {
	if info.Version == defaultVersion {
		if v := bi.Main.Version; v != "" && v != "(devel)" {
			info.Version = strings.TrimPrefix(v, "v")
		}
	}

	var revision, modified string
	for _, s := range bi.Settings {
		switch s.Key {
		case "vcs.revision":
			revision = s.Value
		case "vcs.modified":
			modified = s.Value
		case "vcs.time":
			if info.BuildTime == defaultBuildTime && s.Value != "" {
				info.BuildTime = s.Value
			}
		}
	}
	if info.GitCommit == defaultCommit && revision != "" {
		if len(revision) > shortCommitLen {
			revision = revision[:shortCommitLen]
		}
		if modified == "true" {
			revision += "-dirty"
		}
		info.GitCommit = revision
	}
	return info
}

// String returns the version information on one line, e.g.
// dirdump version 1.2.3 (commit: abcdefg) built at 2024-04-27T15:04:05Z with go1.23.1 on linux/amd64
func (i Info) String() string {
	return fmt.Sprintf(
		"dirdump version %s (commit: %s) built at %s with %s on %s",
		i.Version,
		i.GitCommit,
		i.BuildTime,
		i.GoVersion,
		i.Platform,
	)
}
