// Package version holds build metadata for the optimix CLI.
// The variables are overridden at link time:
//
//	go build -ldflags "-X optimix/internal/version.GitCommit=$(git rev-parse HEAD)"
package version

import (
	"strings"

	"github.com/fatih/color"
)

var (
	majorColor = color.New(color.FgYellow, color.Bold)
	minorColor = color.New(color.FgGreen, color.Bold)
	patchColor = color.New(color.FgBlue, color.Bold)
)

var (
	// Version is the plain semantic version.
	Version = "0.1.0-dev"

	// GitCommit is the commit hash, if known.
	GitCommit = ""

	// GitMessage is the commit subject, if known.
	GitMessage = ""

	// BuildDate is the ISO-8601 build time, if known.
	BuildDate = ""
)

// Colored renders Version with each numeric component highlighted.
// Anything that is not a dotted triple is returned as is.
func Colored() string {
	core, suffix := Version, ""
	if i := strings.IndexAny(Version, "-+"); i >= 0 {
		core, suffix = Version[:i], Version[i:]
	}
	parts := strings.Split(core, ".")
	if len(parts) != 3 {
		return Version
	}
	return majorColor.Sprint(parts[0]) + "." + minorColor.Sprint(parts[1]) + "." + patchColor.Sprint(parts[2]) + suffix
}
