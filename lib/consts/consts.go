// Package consts houses some constants needed across pageflow
package consts

import (
	"fmt"
	"runtime"
	"runtime/debug"
)

// Version contains the current semantic version of pageflow.
const Version = "0.3.0"

// FullVersion returns the maximally full version and build information for
// the currently running pageflow executable.
func FullVersion() string {
	goVersionArch := fmt.Sprintf("%s, %s/%s", runtime.Version(), runtime.GOOS, runtime.GOARCH)

	buildInfo, ok := debug.ReadBuildInfo()
	if !ok {
		return fmt.Sprintf("%s (%s)", Version, goVersionArch)
	}

	var (
		commit string
		dirty  bool
	)
	for _, s := range buildInfo.Settings {
		switch s.Key {
		case "vcs.revision":
			commitLen := 10
			if len(s.Value) < commitLen {
				commitLen = len(s.Value)
			}
			commit = s.Value[:commitLen]
		case "vcs.modified":
			if s.Value == "true" {
				dirty = true
			}
		}
	}

	if commit == "" {
		return fmt.Sprintf("%s (%s)", Version, goVersionArch)
	}

	if dirty {
		commit += "-dirty"
	}

	return fmt.Sprintf("%s (commit/%s, %s)", Version, commit, goVersionArch)
}

// Banner is printed by the command when a session starts.
const Banner = `
                          ______
   ___  ___ ____ ____ ___/ _/ /__ _    __
  / _ \/ _ ` + "`" + `/ _ ` + "`" + `/ -_)_/ _/ / _ \ |/|/ /
 / .__/\_,_/\_, /\__/ /_//_/\___/__,__/
/_/        /___/
`
