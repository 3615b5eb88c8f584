// Package version exposes build metadata stamped at build time via
// -ldflags.
package version

import (
	"fmt"
	"runtime"
	"runtime/debug"
)

// Set with:
//
//	go build -ldflags "-X .../internal/version.Version=v1.2.3 \
//	                   -X .../internal/version.GitCommit=$(git rev-parse --short HEAD)"
var (
	Version   = "dev"
	GitCommit = "unknown"
	BuildTime = "unknown"
)

// BuildInfo bundles everything the version command reports.
type BuildInfo struct {
	Version   string `json:"version"`
	GitCommit string `json:"git_commit"`
	BuildTime string `json:"build_time"`
	GoVersion string `json:"go_version"`
	Platform  string `json:"platform"`
}

// Get returns the build information, falling back to the module build
// info when no version was stamped.
func Get() BuildInfo {
	v := Version
	if v == "dev" {
		if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" && info.Main.Version != "(devel)" {
			v = info.Main.Version
		}
	}
	return BuildInfo{
		Version:   v,
		GitCommit: GitCommit,
		BuildTime: BuildTime,
		GoVersion: runtime.Version(),
		Platform:  fmt.Sprintf("%s/%s", runtime.GOOS, runtime.GOARCH),
	}
}

// String renders the one-line form used by `weft version`.
func (b BuildInfo) String() string {
	return fmt.Sprintf("weft %s (%s, %s, %s)", b.Version, b.GitCommit, b.GoVersion, b.Platform)
}
