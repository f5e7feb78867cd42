// Package buildinfo contains build information.
//
// Build information should be set during compilation by passing
// -ldflags "-X src.circular.dev/pkg/buildinfo.Var=value" to "go build".
package buildinfo

import (
	"encoding/json"
	"fmt"
	"os"
	"runtime"

	"src.circular.dev/pkg/prog"
)

// Version identifies the version of circular. On development commits, it
// identifies the next release.
const Version = "0.1.0"

// VersionSuffix is appended to Version in the output of "circular -version"
// and "circular -buildinfo" to build the full version string.
var VersionSuffix = "-dev.unknown"

// Info is the build information.
type Info struct {
	Version   string `json:"version"`
	GoVersion string `json:"goversion"`
}

// Value returns the build information of the running binary.
func Value() Info {
	return Info{Version + VersionSuffix, runtime.Version()}
}

// Program is the buildinfo subprogram.
type Program struct{}

// Run implements prog.Program.
func (Program) Run(fds [3]*os.File, f *prog.Flags, _ []string) error {
	if !f.Version && !f.BuildInfo {
		return prog.ErrNotSuitable
	}
	info := Value()
	switch {
	case f.Version && f.JSON:
		fmt.Fprintln(fds[1], mustToJSON(info.Version))
	case f.Version:
		fmt.Fprintln(fds[1], info.Version)
	case f.JSON:
		fmt.Fprintln(fds[1], mustToJSON(info))
	default:
		fmt.Fprintln(fds[1], "Version:", info.Version)
		fmt.Fprintln(fds[1], "Go version:", info.GoVersion)
	}
	return nil
}

func mustToJSON(v any) string {
	b, err := json.Marshal(v)
	if err != nil {
		panic(err)
	}
	return string(b)
}
