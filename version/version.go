package version

import (
	"fmt"
	"runtime/debug"
)

// You can set the version at build time using something like:
// go build -ldflags "-X github.com/zynmi/mutseq/version.Version=$(git describe --dirty)"

var Version string

// Hash is the short VCS revision the binary was built from, with a -dirty
// suffix for modified trees.
var Hash = func() string {
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return ""
	}
	var revision string
	modified := false
	for _, setting := range info.Settings {
		switch setting.Key {
		case "vcs.revision":
			revision = setting.Value
		case "vcs.modified":
			modified = setting.Value == "true"
		}
	}
	if len(revision) > 7 {
		revision = revision[:7]
	}
	if revision != "" && modified {
		revision += "-dirty"
	}
	return revision
}()

var VersionOrHash = func() string {
	if Version != "" {
		return Version
	}
	return Hash
}()

// Banner is the line printed by the -v flag of the tools.
func Banner(tool string) string {
	if VersionOrHash == "" {
		return tool + " (devel)"
	}
	return fmt.Sprintf("%s %s", tool, VersionOrHash)
}
