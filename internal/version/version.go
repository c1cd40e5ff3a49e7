package version

import (
	"github.com/carlmjohnson/versioninfo"
)

var (
	// Version is the current application version
	Version = "dev"
	// GitSHA is the git commit SHA
	GitSHA = "unknown"
	// BuildTime is the build timestamp
	BuildTime = "unknown"
)

// Info describes the running build.
type Info struct {
	Version   string `json:"version"`
	GitSHA    string `json:"git_sha"`
	BuildTime string `json:"build_time"`
	Dirty     bool   `json:"dirty"`
}

// Get returns the build information. Values not injected at link time fall
// back to the VCS stamp embedded by the Go toolchain.
func Get() Info {
	info := Info{
		Version:   Version,
		GitSHA:    GitSHA,
		BuildTime: BuildTime,
		Dirty:     versioninfo.DirtyBuild,
	}
	if info.GitSHA == "unknown" && versioninfo.Revision != "unknown" {
		info.GitSHA = versioninfo.Revision
	}
	if info.BuildTime == "unknown" && !versioninfo.LastCommit.IsZero() {
		info.BuildTime = versioninfo.LastCommit.UTC().Format("2006-01-02T15:04:05Z")
	}
	return info
}
