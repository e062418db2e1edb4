// Package misc keeps build time information.
package misc

import (
	"runtime/debug"
)

// Set with -ldflags "-X fontdl/misc.version=... -X fontdl/misc.gitHash=...".
var (
	appName = "fontdl"
	version = "dev"
	gitHash string
)

func GetAppName() string {
	return appName
}

func GetVersion() string {
	return version
}

// GetGitHash returns commit program was built from, falling back to
// information recorded by the go tool.
func GetGitHash() string {
	if gitHash != "" {
		return gitHash
	}
	if bi, ok := debug.ReadBuildInfo(); ok {
		for _, s := range bi.Settings {
			if s.Key == "vcs.revision" {
				return s.Value
			}
		}
	}
	return "unknown"
}
