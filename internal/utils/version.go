package utils

import "runtime/debug"

const (
	unknownVersion     = "unknown"
	developmentVersion = "(devel)"
)

// Version is set at link time with -ldflags "-X github.com/temirov/walktree/internal/utils.Version=...".
var Version = ""

// GetApplicationVersion returns the linked version, then the module version
// recorded in the build information, then "unknown".
func GetApplicationVersion() string {
	if Version != "" {
		return Version
	}
	buildInfo, buildInfoAvailable := debug.ReadBuildInfo()
	if buildInfoAvailable && buildInfo.Main.Version != "" && buildInfo.Main.Version != developmentVersion {
		return buildInfo.Main.Version
	}
	return unknownVersion
}
